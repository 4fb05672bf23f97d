package route

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func genSuffix() *rapid.Generator[string] {
	return rapid.StringMatching(`(/[a-z0-9-]{0,12}){0,3}`)
}

// TestManagerSectionsAlwaysManagerOnly checks that anything under a manager
// section is manager-only, however deep.
func TestManagerSectionsAlwaysManagerOnly(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		section := rapid.SampledFrom(ManagerSections).Draw(t, "section")
		path := DashboardRoot + "/" + section + genSuffix().Draw(t, "suffix")

		if got := Classify(path); got != ManagerOnly {
			t.Fatalf("Classify(%q) = %s, want manager_only", path, got)
		}
	})
}

// TestClassifyIsTotalAndStable checks every path gets exactly one category
// and that protected categories imply a protected prefix.
func TestClassifyIsTotalAndStable(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		root := rapid.SampledFrom([]string{"", "/dashboard", "/api", "/auth", "/blog"}).Draw(t, "root")
		path := root + genSuffix().Draw(t, "suffix")

		got := Classify(path)
		if again := Classify(path); again != got {
			t.Fatalf("Classify(%q) unstable: %s then %s", path, got, again)
		}

		switch got {
		case MainLanding:
			if path != DashboardRoot {
				t.Fatalf("main landing must be exact, got %q", path)
			}
		case ManagerOnly:
			if !strings.HasPrefix(path, DashboardRoot+"/") {
				t.Fatalf("manager-only path %q outside dashboard", path)
			}
		case AuthRequired:
			if !strings.HasPrefix(path, DashboardRoot) && !strings.HasPrefix(path, APIRoot) {
				t.Fatalf("auth-required path %q outside protected roots", path)
			}
		case SelfAuthenticating:
			if path != CronPath {
				t.Fatalf("self-authenticating must be exact, got %q", path)
			}
		case Public, AuthPage:
		default:
			t.Fatalf("unknown category %q", got)
		}
	})
}
