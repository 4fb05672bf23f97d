package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pmos/internal/role"
)

var roleCmd = &cobra.Command{
	Use:   "role <user-id>...",
	Short: "Classify users against the record backend",
	Long: `Look up each user in the managers and team members stores and print the
resulting role with the outcome of both lookups.

A failed lookup is reported as an error, never as role "none".

Example:
  pmos role 3b9e6a0c-5f7e-4c61-9d5e-7c1e2b0f4a11
  pmos role --driver sqlite --sqlite-path .pmos/pmos.db user-1 user-2 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRole,
}

var roleJSON bool

func init() {
	roleCmd.Flags().BoolVar(&roleJSON, "json", false, "output classifications as JSON")
	roleCmd.Flags().String("driver", "supabase", "Record backend: supabase or sqlite")
	roleCmd.Flags().String("sqlite-path", "", "SQLite database path for the sqlite driver")
	rootCmd.AddCommand(roleCmd)
}

type roleOutput struct {
	UserID      string `json:"user_id"`
	Role        string `json:"role,omitempty"`
	LandingPath string `json:"landing_path,omitempty"`
	Manager     string `json:"manager_record"`
	TeamMember  string `json:"team_member_record"`
	Error       string `json:"error,omitempty"`
}

func runRole(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var (
		results  []roleOutput
		firstErr error
	)
	for _, userID := range args {
		if strings.TrimSpace(userID) == "" {
			return userIDRequired()
		}
		cl, err := a.classifier.Explain(cmd.Context(), userID)
		out := roleOutput{
			UserID:     cl.UserID,
			Manager:    cl.Manager.String(),
			TeamMember: cl.TeamMember.String(),
		}
		if err != nil {
			out.Error = err.Error()
			if firstErr == nil {
				firstErr = err
			}
		} else {
			out.Role = cl.Role.String()
			out.LandingPath = a.classifier.LandingForRole(cl.Role)
		}
		results = append(results, out)
	}

	w := cmd.OutOrStdout()
	if roleJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal classifications: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return firstErr
	}

	for _, r := range results {
		fmt.Fprintln(w, titleStyle.Render(r.UserID))
		if r.Error != "" {
			keyValues(w,
				"role", errStyle.Render("lookup failed"),
				"manager", r.Manager,
				"team member", r.TeamMember,
			)
			continue
		}
		keyValues(w,
			"role", roleStyle(role.Role(r.Role)).Render(r.Role),
			"landing", r.LandingPath,
			"manager", r.Manager,
			"team member", r.TeamMember,
		)
	}
	return firstErr
}
