// Package cli holds the desk command tree: serve, tui and migrate.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sangjo/reservation-desk/internal/app"
	"github.com/sangjo/reservation-desk/internal/config"
	"github.com/sangjo/reservation-desk/internal/database"
	"github.com/sangjo/reservation-desk/pkg/tui"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "./config/application.yaml"

// Execute runs the command selected on the command line.
func Execute() error {
	return NewRootCommand().Execute()
}

func NewRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "desk",
		Short:         "Funeral service reservation desk",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML configuration file")

	loadConfig := func() (config.Application, error) {
		return config.Load(configPath)
	}

	root.AddCommand(newServeCommand(loadConfig), newTuiCommand(loadConfig), newMigrateCommand(loadConfig))
	return root
}

func newServeCommand(loadConfig func() (config.Application, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the reservation HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.NewApplication(ctx, cfg)
			if err != nil {
				return err
			}
			return application.Run(ctx)
		},
	}
}

func newTuiCommand(loadConfig func() (config.Application, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the staff console in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// the console owns the terminal; keep log lines out of it
			log.SetLevel(log.ErrorLevel)
			return runConsole(cmd.Context(), cfg)
		},
	}
}

func runConsole(ctx context.Context, cfg config.Application) error {
	notifier := tui.NewStatusNotifier()
	deps, closeDB, err := app.OpenDesk(ctx, cfg, notifier)
	if err != nil {
		return err
	}
	defer closeDB()

	scheduler, err := app.NewRefreshScheduler(cfg.Refresh.Schedule, deps.ReservationStore)
	if err != nil {
		return err
	}
	if scheduler != nil {
		scheduler.Start()
		defer scheduler.Stop()
	}

	return tui.Run(ctx, tui.Options{
		Commands: deps.ReservationService,
		Store:    deps.ReservationStore,
		Bus:      deps.EventBus,
		Notifier: notifier,
		Clock:    deps.Clock,
		Location: deps.Location,
		Slots:    deps.Slots,
	})
}

func newMigrateCommand(loadConfig func() (config.Application, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := database.Migrate(cfg.Database); err != nil {
				return err
			}
			log.Info("Database schema is up to date")
			return nil
		},
	}
}
