// Package route classifies request paths for the access gate.
package route

import "strings"

// Category is the access class of a request path.
type Category string

const (
	Public             Category = "public"
	AuthRequired       Category = "auth_required"
	ManagerOnly        Category = "manager_only"
	MainLanding        Category = "main_landing"
	SelfAuthenticating Category = "self_authenticating"
	AuthPage           Category = "auth_page"
)

// String returns the category name.
func (c Category) String() string {
	return string(c)
}

// Well-known paths of the application.
const (
	DashboardRoot     = "/dashboard"
	TeamMemberLanding = "/dashboard/team-member"
	APIRoot           = "/api"
	CronPath          = "/api/cron/generate-tasks"
	LoginPath         = "/auth/login"
	SignUpPath        = "/auth/sign-up"
	AcceptInvitePath  = "/auth/accept-invite"
	SessionLanding    = "/api/session/landing"
)

// ManagerSections are the dashboard sections reserved for manager-capable roles.
var ManagerSections = []string{
	"vision",
	"strategy",
	"execution",
	"reviews",
	"team",
	"calendar",
	"analytics",
	"recurring-tasks",
	"templates",
	"settings",
}

// Table holds the path sets a Classifier matches against. Every set except
// the exact matches (cron path, dashboard root) is matched by prefix.
type Table struct {
	CronPath          string
	DashboardRoot     string
	TeamMemberLanding string
	LoginPath         string
	APIRoot           string
	ManagerPrefixes   []string
	AuthPages         []string
	ProtectedPrefixes []string
}

// DefaultTable returns the application's path table.
func DefaultTable() Table {
	return TableFor(ManagerSections)
}

// TableFor returns the application's path table with sections as the
// manager-only dashboard sections. Empty names are skipped.
func TableFor(sections []string) Table {
	managers := make([]string, 0, len(sections))
	for _, s := range sections {
		s = strings.Trim(strings.TrimSpace(s), "/")
		if s == "" {
			continue
		}
		managers = append(managers, DashboardRoot+"/"+s)
	}
	return Table{
		CronPath:          CronPath,
		DashboardRoot:     DashboardRoot,
		TeamMemberLanding: TeamMemberLanding,
		LoginPath:         LoginPath,
		APIRoot:           APIRoot,
		ManagerPrefixes:   managers,
		AuthPages:         []string{LoginPath, SignUpPath, AcceptInvitePath},
		ProtectedPrefixes: []string{DashboardRoot, APIRoot},
	}
}

var defaultTable = DefaultTable()

// Classify classifies path against the default table.
func Classify(path string) Category {
	return defaultTable.Classify(path)
}

// IsAPI reports whether path is under the default API root.
func IsAPI(path string) bool {
	return defaultTable.IsAPI(path)
}

// Classify returns the category of path. First match wins:
// cron (exact), dashboard root (exact), manager section, auth page,
// dashboard or API prefix, otherwise public.
//
// Prefixes match on raw strings, so "/dashboard/team-member" falls in the
// "/dashboard/team" manager section. Callers that route team members to
// that page must exempt it.
func (t Table) Classify(path string) Category {
	switch {
	case path == t.CronPath:
		return SelfAuthenticating
	case path == t.DashboardRoot:
		return MainLanding
	case anyPrefix(path, t.ManagerPrefixes):
		return ManagerOnly
	case anyPrefix(path, t.AuthPages):
		return AuthPage
	case anyPrefix(path, t.ProtectedPrefixes):
		return AuthRequired
	default:
		return Public
	}
}

// IsTeamMemberLanding reports whether path is the team-member landing page
// or one of its sub-pages.
func (t Table) IsTeamMemberLanding(path string) bool {
	return path == t.TeamMemberLanding || strings.HasPrefix(path, t.TeamMemberLanding+"/")
}

// IsAPI reports whether path is under the table's API root. Anonymous
// requests there are rejected instead of redirected to the login page.
func (t Table) IsAPI(path string) bool {
	return hasPrefix(path, t.APIRoot)
}

func anyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if hasPrefix(path, p) {
			return true
		}
	}
	return false
}

func hasPrefix(path, prefix string) bool {
	return prefix != "" && strings.HasPrefix(path, prefix)
}
