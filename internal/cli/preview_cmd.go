package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/panotour/internal/navigation"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var errNotInteractive = errors.New("preview needs an interactive terminal")

func newPreviewCmd(app *App) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "preview TOUR",
		Short: "Walk through a tour in the terminal",
		Long: "Walk through a tour in the terminal using the same navigation engine\n" +
			"as the viewer. Scene loads are simulated with a short delay.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.IsInteractive() {
				return errNotInteractive
			}
			id, err := resolveTourID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			tour, err := app.Tours.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			// The alternate screen owns stderr while the preview runs, so
			// engine logs only go somewhere when a file is named.
			opts := []navigation.Option{navigation.WithEdgePolicy(app.Config.Edge())}
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer f.Close()
				opts = append(opts, navigation.WithLogger(app.Config.NewLogger(f).With(slog.String("tour", id))))
			}

			r := &termRenderer{}
			engine, err := navigation.New(tour, r, r, opts...)
			if err != nil {
				return err
			}
			model := newPreviewModel(engine, r, app.Config.PreviewLoadDelay())
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().String("edge-policy", "", "Next/previous at the ends of the tour: clamp or wrap")
	cmd.Flags().Int("preview-load-delay-ms", 0, "Simulated scene load time in milliseconds (default 150)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write navigation logs to this file")
	return cmd
}
