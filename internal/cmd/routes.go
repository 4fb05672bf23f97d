package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pmos/internal/auth"
	"github.com/felixgeelhaar/pmos/internal/config"
	"github.com/felixgeelhaar/pmos/internal/gate"
	"github.com/felixgeelhaar/pmos/internal/role"
	"github.com/felixgeelhaar/pmos/internal/route"
)

var routesCmd = &cobra.Command{
	Use:   "routes <path>...",
	Short: "Show how the gate treats request paths",
	Long: `Classify request paths without contacting any backend. Manager
sections and page guards are read from the configuration.

With --as, each path is also run through the access gate for a simulated
visitor: "anonymous" or one of the roles manager, team_member, both, none.

Example:
  pmos routes /dashboard /dashboard/vision /api/tasks
  pmos routes /dashboard/vision --as team_member
  pmos routes /dashboard/team-member --as manager --page-guards`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRoutes,
}

var (
	routesAs         string
	routesPageGuards bool
	routesJSON       bool
)

const anonymous = "anonymous"

func init() {
	routesCmd.Flags().StringVar(&routesAs, "as", "", "simulate a visitor: anonymous, manager, team_member, both or none")
	routesCmd.Flags().BoolVar(&routesPageGuards, "page-guards", false, "simulate with page guards enabled")
	routesCmd.Flags().BoolVar(&routesJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(routesCmd)
}

type routeOutput struct {
	Path     string         `json:"path"`
	Category route.Category `json:"category"`
	Decision *gate.Decision `json:"decision,omitempty"`
}

func runRoutes(cmd *cobra.Command, args []string) error {
	// Not validated: classification needs no backend settings.
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return err
	}
	g, err := simulatedGate(routesAs, cfg)
	if err != nil {
		return err
	}

	results := make([]routeOutput, 0, len(args))
	for _, p := range args {
		out := routeOutput{Path: p, Category: g.Routes().Classify(p)}
		if routesAs != "" {
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, "http://pmos.local"+p, nil)
			if err != nil {
				return fmt.Errorf("invalid argument %q: %w", p, err)
			}
			d := g.Decide(req.Context(), req)
			out.Decision = &d
		}
		results = append(results, out)
	}

	w := cmd.OutOrStdout()
	if routesJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal routes: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	for _, r := range results {
		line := fmt.Sprintf("%-36s %s", r.Path, keyStyle.Render(r.Category.String()))
		if d := r.Decision; d != nil {
			line += "  " + actionStyle(d.Action).Render(string(d.Action))
			if d.Location != "" {
				line += " " + valueStyle.Render("-> "+d.Location)
			}
			line += " " + mutedStyle.Render("("+d.Reason+")")
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

// simulatedGate builds a gate whose every request carries the same visitor.
// An empty visitor is anonymous.
func simulatedGate(as string, cfg *config.Config) (*gate.Gate, error) {
	var (
		id *auth.Identity
		r  = role.None
	)
	if as != "" && as != anonymous {
		parsed, err := role.ParseRole(as)
		if err != nil {
			return nil, fmt.Errorf("invalid argument %q for --as: expected anonymous, manager, team_member, both or none", as)
		}
		id = &auth.Identity{UserID: "simulated-" + as}
		r = parsed
	}
	return gate.New(staticIdentity{id}, fixedRole(r),
		gate.WithRoutes(route.TableFor(cfg.Gate.ManagerSections)),
		gate.WithPageGuards(cfg.Gate.PageGuards),
	), nil
}

type staticIdentity struct{ id *auth.Identity }

func (s staticIdentity) Resolve(*http.Request) (*auth.Identity, error) { return s.id, nil }

type fixedRole role.Role

func (f fixedRole) Classify(context.Context, string) (role.Role, error) { return role.Role(f), nil }

func (f fixedRole) LandingForRole(r role.Role) string { return role.LandingFor(r) }
