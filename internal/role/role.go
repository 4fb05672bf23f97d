// Package role classifies an authenticated identity as a manager, a team
// member, both or neither, and maps that classification to a landing page.
package role

import (
	"fmt"

	"github.com/felixgeelhaar/pmos/internal/route"
)

// Role is the classification derived from record existence. It is never
// persisted and must be recomputed for every access decision.
type Role string

const (
	Manager    Role = "manager"
	TeamMember Role = "team_member"
	Both       Role = "both"
	None       Role = "none"
)

// String returns the role name.
func (r Role) String() string {
	return string(r)
}

// ManagerCapable reports whether r may use manager features.
// Both is manager capable: dual-role identities get the manager experience.
func (r Role) ManagerCapable() bool {
	return r == Manager || r == Both
}

// ParseRole parses a role name.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case Manager, TeamMember, Both, None:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Resolve applies the classification table:
//
//	manager record | membership record | role
//	yes            | yes               | both
//	yes            | no                | manager
//	no             | yes               | team_member
//	no             | no                | none
func Resolve(managerExists, teamMemberExists bool) Role {
	switch {
	case managerExists && teamMemberExists:
		return Both
	case managerExists:
		return Manager
	case teamMemberExists:
		return TeamMember
	default:
		return None
	}
}

// LandingFor returns the default landing page for r. Only an exact
// team_member lands on the team-member view; none lands on the main dashboard.
func LandingFor(r Role) string {
	return landing(r, route.DashboardRoot, route.TeamMemberLanding)
}

func landing(r Role, main, teamMember string) string {
	if r == TeamMember {
		return teamMember
	}
	return main
}
