package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kilianp07/telework/app"
	"github.com/kilianp07/telework/config"
	coremon "github.com/kilianp07/telework/core/monitoring"
	"github.com/kilianp07/telework/infra/logger"
	"github.com/kilianp07/telework/infra/monitoring"
)

var (
	cfgPath  string
	envPath  string
	cfg      *config.Config
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:                "telework",
	Short:              "Commute and telework status reporting",
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", ".env", "dotenv file loaded before the configuration")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// setup loads the environment file and configuration, then starts logging
// and error monitoring. A missing default config file is not an error.
func setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envPath, err)
	}
	path := cfgPath
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		path = ""
	}
	c, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c

	closer, err := logger.Setup(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	closeLog = closer

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		logger.New("main").Warnf("sentry disabled: %v", err)
	} else {
		coremon.Init(mon)
	}
	return nil
}

func teardown(*cobra.Command, []string) error {
	if !coremon.Flush(2 * time.Second) {
		logger.New("main").Warnf("sentry flush timed out")
	}
	return closeLog()
}

// withService runs fn with a service bound to a context cancelled on
// SIGINT or SIGTERM. Failures are reported to the monitor.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *app.Service) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := app.New(cfg)
	if err != nil {
		coremon.CaptureCommand(cmd.Name(), err)
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	svc.StartMetricsServer(ctx)

	if err := fn(ctx, svc); err != nil {
		coremon.CaptureCommand(cmd.Name(), err)
		return err
	}
	return nil
}
