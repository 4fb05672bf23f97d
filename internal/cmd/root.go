package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pmos/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "pmos",
	Short: "Access gate for the PMOS workspace",
	Long: `pmos sits in front of the PMOS web application. Every request passes
through its access gate, which resolves the session identity, classifies the
user as manager, team member, both or neither, and allows, rejects or
redirects the request. It also serves the recurring task generation endpoint
called by the external scheduler.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var configPath string

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, usually cancelled on SIGINT/SIGTERM
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./pmos.yaml or $HOME/.pmos/config.yaml)")
}

// loadConfig loads and validates configuration for cmd, honouring the
// command's own flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
