package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zalando-stups/stups-auth-adapter/internal/config"
)

func init() { //nolint: gochecknoinits
	configCmd.Flags().StringVarP(&dumpFormat, "format", "f", "toml", "Output format: toml or json")

	rootCmd.AddCommand(configCmd)
}

var (
	dumpFormat string

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := config.ReadConfig(configPath)
			if err != nil {
				return err
			}

			var out string

			switch dumpFormat {
			case "toml":
				out, err = config.DumpConfig(&c)
			case "json":
				out, err = config.DumpConfigJSON(&c)
			default:
				return fmt.Errorf("unknown format %q", dumpFormat)
			}

			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), out)

			return err
		},
	}
)
