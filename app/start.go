package app

import (
	"github.com/spf13/cobra"

	"github.com/zalando-stups/stups-auth-adapter/internal/config"
	"github.com/zalando-stups/stups-auth-adapter/internal/daemon"
	"github.com/zalando-stups/stups-auth-adapter/internal/logger"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode (console writer, no shutdown drain)")

	rootCmd.AddCommand(startCmd)
}

var (
	devMode bool

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the stups-auth-adapter web service",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			var err error

			if cfg, err = config.ReadConfig(configPath); err != nil {
				return err
			}

			if devMode {
				cfg.DevMode = true
				cfg.Log.Console.UseConsoleWriter = true
			}

			return logger.Init(cfg.Log)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := daemon.New(&cfg)
			if err != nil {
				return err
			}

			return d.Start()
		},
	}
)
