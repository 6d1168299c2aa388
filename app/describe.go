package app

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/zalando-stups/stups-auth-adapter/internal/config"
	"github.com/zalando-stups/stups-auth-adapter/internal/plugin"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(describeCmd)
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the capability descriptor announced to the host",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.ReadConfig(configPath)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(plugin.Descriptor(c.Plugin.DisplayName))
	},
}
