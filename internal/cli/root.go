package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alexanderramin/panotour/internal/config"
	"github.com/alexanderramin/panotour/internal/db"
	"github.com/alexanderramin/panotour/internal/repository"
	"github.com/alexanderramin/panotour/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
// Fields left nil are filled from the loaded configuration before a command
// runs; tests set them up front instead.
type App struct {
	Tours     service.TourService
	Authoring service.AuthoringService
	Import    service.ImportService
	Export    service.ExportService

	Config *config.Config
	Logger *slog.Logger

	// IsInteractive reports whether stdin is a terminal. Commands that need
	// one (preview, interactive forms) refuse to run otherwise.
	IsInteractive func() bool

	cfgFile string
	closer  func() error
}

// NewRootCmd creates the top-level "panotour" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "panotour",
		Short:         "Author, validate and preview 360° panorama tours",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return app.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&app.cfgFile, "config", "", "config file (default ./panotour.yaml)")
	pf.String("db-path", "", "SQLite database path (default ~/.panotour/panotour.db)")
	pf.String("tier", "", "limit tier: lite or pro")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("log-format", "", "text or json")

	root.AddCommand(
		newTourCmd(app),
		newSceneCmd(app),
		newHotspotCmd(app),
		newImportCmd(app),
		newExportCmd(app),
		newTiersCmd(app),
		newServeCmd(app),
		newPreviewCmd(app),
	)

	return root
}

func (a *App) setup(cmd *cobra.Command) error {
	if a.Config == nil {
		cfg, err := config.Load(a.cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		a.Config = cfg
	}
	if a.Logger == nil {
		a.Logger = a.Config.NewLogger(cmd.ErrOrStderr())
	}
	if a.IsInteractive == nil {
		a.IsInteractive = func() bool { return false }
	}
	if a.Tours != nil {
		return nil
	}
	return a.connect()
}

// connect opens the configured database and wires the services on it.
func (a *App) connect() error {
	path := a.Config.DBPath
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}
	database, err := db.OpenDB(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.Logger.Debug("database opened", "path", path, "config_file", a.Config.File)

	repo := repository.NewSQLiteTourRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)
	policy := a.Config.Policy()
	obs := service.NewLogUseCaseObserver(a.Logger)

	a.Tours = service.NewTourService(repo, policy, obs)
	a.Authoring = service.NewAuthoringService(uow, policy, obs)
	a.Import = service.NewImportService(uow, policy, obs)
	a.Export = service.NewExportService(repo, obs)
	a.closer = database.Close
	return nil
}

func (a *App) close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer()
	a.closer = nil
	return err
}
