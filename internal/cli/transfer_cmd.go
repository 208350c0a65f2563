package cli

import (
	"fmt"
	"os"

	"github.com/alexanderramin/panotour/internal/cli/formatter"
	"github.com/alexanderramin/panotour/internal/limits"
	"github.com/alexanderramin/panotour/internal/service"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	var opts service.ImportOptions

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a tour document or a {\"tours\": [...]} collection",
		Long: `Import stores every tour of the document in one transaction: if any tour
cannot be stored, none is. Tours with validation errors abort the import
unless --skip-invalid is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := app.Import.ImportFile(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatImportReport(report))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "Replace stored tours with the same id")
	cmd.Flags().BoolVar(&opts.SkipInvalid, "skip-invalid", false, "Import the valid tours and report the rest")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var all bool
	var output string

	cmd := &cobra.Command{
		Use:   "export [TOUR]",
		Short: "Export a tour, or all tours, as canonical JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				data []byte
				err  error
			)
			switch {
			case all && len(args) > 0:
				return fmt.Errorf("pass a tour or --all, not both")
			case all:
				data, err = app.Export.ExportAll(ctx)
			case len(args) == 1:
				var id string
				if id, err = resolveTourID(ctx, app, args[0]); err != nil {
					return err
				}
				data, err = app.Export.Export(ctx, id)
			default:
				return fmt.Errorf("specify a tour or --all")
			}
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Export every stored tour as one collection")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newTiersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "Show the limits of each tier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var policies []limits.Policy
			for _, t := range limits.Tiers() {
				policies = append(policies, limits.MustPolicy(t))
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTiers(policies, app.Tours.Policy().Tier))
			return nil
		},
	}
}
