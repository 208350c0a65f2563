package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/panotour/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored tours over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.NewServer(server.Config{
				Addr:   app.Config.Addr,
				Tours:  app.Tours,
				Import: app.Import,
				Export: app.Export,
				Logger: app.Logger,
			})
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default :8080)")
	return cmd
}
