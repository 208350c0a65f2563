package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/alexanderramin/panotour/internal/authoring"
	"github.com/alexanderramin/panotour/internal/cli/formatter"
	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/limits"
	"github.com/spf13/cobra"
)

// errValidationFailed is returned after printing a report with errors, so the
// process exits non-zero.
var errValidationFailed = errors.New("validation failed")

func newTourCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tour",
		Short: "Manage tours",
	}

	cmd.AddCommand(
		newTourNewCmd(app),
		newTourListCmd(app),
		newTourShowCmd(app),
		newTourDeleteCmd(app),
		newTourValidateCmd(app),
		newTourEditCmd(app),
		newTourStartCmd(app),
		newTourAutorotateCmd(app),
	)

	return cmd
}

func newTourNewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "new TITLE",
		Short: "Create a tour with one empty scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.Tours.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created tour %s (%s)\n", t.Title, t.ID)
			return nil
		},
	}
}

func newTourListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored tours",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tours, err := app.Tours.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTourList(tours))
			return nil
		},
	}
}

func newTourShowCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show TOUR",
		Short: "Show a tour's scenes and hotspots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTourID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				data, err := app.Export.Export(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			t, err := app.Tours.Get(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTourDetail(t, app.Tours.Policy()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the canonical JSON document")
	return cmd
}

func newTourDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete TOUR",
		Aliases: []string{"rm"},
		Short:   "Delete a tour with all its scenes",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTourID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Tours.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted tour %s\n", id)
			return nil
		},
	}
}

func newTourValidateCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate [TOUR]",
		Short: "Validate a stored tour or a document file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("reading %s: %w", file, err)
				}
				checked, err := app.Tours.Check(ctx, data)
				if err != nil {
					return err
				}
				failed := false
				for _, c := range checked {
					fmt.Fprint(out, formatter.FormatValidation(c.Tour.Title, c.Result))
					failed = failed || !c.Valid
				}
				if failed {
					return errValidationFailed
				}
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("specify a tour or --file")
			}
			id, err := resolveTourID(ctx, app, args[0])
			if err != nil {
				return err
			}
			t, err := app.Tours.Get(ctx, id)
			if err != nil {
				return err
			}
			res, err := app.Tours.Validate(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatter.FormatValidation(t.Title, res))
			if !res.Valid() {
				return errValidationFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Validate a JSON document instead of a stored tour")
	return cmd
}

func newTourEditCmd(app *App) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "edit TOUR",
		Short: "Change a tour's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch authoring.TourPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if patch.Title == nil && patch.Description == nil {
				return fmt.Errorf("nothing to change: pass --title or --description")
			}
			return editTour(cmd, app, args[0], func(t *domain.Tour, _ limits.Policy) (*domain.Tour, error) {
				return authoring.EditTour(t, patch)
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	return cmd
}

func newTourStartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "start TOUR SCENE",
		Short: "Set the scene the tour opens on",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editTour(cmd, app, args[0], func(t *domain.Tour, _ limits.Policy) (*domain.Tour, error) {
				return authoring.SetInitialScene(t, args[1])
			})
		},
	}
}

func newTourAutorotateCmd(app *App) *cobra.Command {
	var on, off bool
	var speed float64

	cmd := &cobra.Command{
		Use:   "autorotate TOUR",
		Short: "Configure automatic camera rotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if on && off {
				return fmt.Errorf("--on and --off are mutually exclusive")
			}
			speedSet := cmd.Flags().Changed("speed")
			if !on && !off && !speedSet {
				return fmt.Errorf("nothing to change: pass --on, --off or --speed")
			}
			if speedSet && (!domain.IsFinite(speed) || speed <= 0) {
				return fmt.Errorf("--speed must be a positive number of degrees per second")
			}
			return editTour(cmd, app, args[0], func(t *domain.Tour, _ limits.Policy) (*domain.Tour, error) {
				return authoring.UpdateSettings(t, func(s *domain.Settings) {
					if on || off {
						s.Autorotate.Enabled = on
					}
					if speedSet {
						s.Autorotate.Speed = speed
					}
				})
			})
		},
	}

	cmd.Flags().BoolVar(&on, "on", false, "Enable autorotate")
	cmd.Flags().BoolVar(&off, "off", false, "Disable autorotate")
	cmd.Flags().Float64Var(&speed, "speed", domain.DefaultAutorotateSpeed, "Rotation speed in degrees per second")
	return cmd
}
