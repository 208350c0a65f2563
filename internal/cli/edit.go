package cli

import (
	"fmt"

	"github.com/alexanderramin/panotour/internal/service"
	"github.com/alexanderramin/panotour/internal/validator"
	"github.com/spf13/cobra"
)

// editTour resolves the tour argument, applies fn through the authoring
// service and prints a one-line status.
func editTour(cmd *cobra.Command, app *App, tourArg string, fn service.EditFunc) error {
	_, err := editTourResult(cmd, app, tourArg, fn)
	return err
}

func editTourResult(cmd *cobra.Command, app *App, tourArg string, fn service.EditFunc) (*service.EditResult, error) {
	ctx := cmd.Context()
	id, err := resolveTourID(ctx, app, tourArg)
	if err != nil {
		return nil, err
	}
	res, err := app.Authoring.Edit(ctx, id, fn)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated tour %s%s\n", res.Tour.Title, issueSummary(res.Result))
	return res, nil
}

func issueSummary(r validator.Result) string {
	switch {
	case len(r.Errors) > 0:
		return fmt.Sprintf(" (%d errors, %d warnings; run tour validate)", len(r.Errors), len(r.Warnings))
	case len(r.Warnings) > 0:
		return fmt.Sprintf(" (%d warnings)", len(r.Warnings))
	}
	return ""
}
