package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pmos/internal/cron"
)

var generateTasksCmd = &cobra.Command{
	Use:   "generate-tasks",
	Short: "Run recurring task generation once",
	Long: `Call the backend procedure that materialises due recurring tasks, the same
call the scheduler triggers through /api/cron/generate-tasks, and print the
procedure result.

Useful for backfilling after a missed schedule or for checking the
procedure from a shell.`,
	Args: cobra.NoArgs,
	RunE: runGenerateTasks,
}

func init() {
	generateTasksCmd.Flags().String("driver", "supabase", "Record backend: supabase or sqlite")
	generateTasksCmd.Flags().String("sqlite-path", "", "SQLite database path for the sqlite driver")
	rootCmd.AddCommand(generateTasksCmd)
}

func runGenerateTasks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := a.cronHandler().Run(cmd.Context())
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(cron.Response{
		Success: true,
		Message: cron.SuccessMessage,
		Data:    data,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
