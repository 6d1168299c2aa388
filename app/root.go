// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/zalando-stups/stups-auth-adapter/internal/config"
)

var (
	configPath string // Path to the configuration directory holding main.toml

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "stups-auth-adapter",
	Short: "stups-auth-adapter authenticates users and searches teams against STUPS",
	Long: `stups-auth-adapter is an authentication plugin backend: it verifies user passwords
with the STUPS OAuth2 token issuer and searches users through the team service.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "Directory containing main.toml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
