package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var landingCmd = &cobra.Command{
	Use:   "landing <user-id>",
	Short: "Print the landing page of a user",
	Long: `Classify a user and print the page they land on after signing in.

Team members land on the team-member view; everyone else, including users
with no records, lands on the main dashboard.`,
	Args: cobra.ExactArgs(1),
	RunE: runLanding,
}

func init() {
	landingCmd.Flags().String("driver", "supabase", "Record backend: supabase or sqlite")
	landingCmd.Flags().String("sqlite-path", "", "SQLite database path for the sqlite driver")
	rootCmd.AddCommand(landingCmd)
}

func runLanding(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	path, err := a.classifier.LandingPath(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
