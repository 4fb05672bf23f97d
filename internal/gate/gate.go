// Package gate decides, for every incoming request, whether it is allowed,
// rejected, redirected or failed, based on the route category, the session
// identity and the identity's role.
package gate

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/pmos/internal/auth"
	"github.com/felixgeelhaar/pmos/internal/errors"
	"github.com/felixgeelhaar/pmos/internal/log"
	"github.com/felixgeelhaar/pmos/internal/metrics"
	"github.com/felixgeelhaar/pmos/internal/role"
	"github.com/felixgeelhaar/pmos/internal/route"
	"github.com/felixgeelhaar/pmos/internal/telemetry"
)

// Action is the outcome of a gate decision.
type Action string

const (
	Allow    Action = "allow"
	Reject   Action = "reject"
	Redirect Action = "redirect"
	Fail     Action = "fail"
)

// Decision is the result of evaluating one request.
type Decision struct {
	Action   Action         `json:"action"`
	Status   int            `json:"status"`
	Location string         `json:"location,omitempty"`
	Category route.Category `json:"category"`

	// Role is empty when the decision did not need one
	Role role.Role `json:"role,omitempty"`

	Identity *auth.Identity `json:"identity,omitempty"`
	Reason   string         `json:"reason"`
	Err      error          `json:"-"`
}

// IdentityResolver returns the session identity of r, nil for anonymous.
type IdentityResolver interface {
	Resolve(r *http.Request) (*auth.Identity, error)
}

// RoleClassifier classifies identities and maps roles to landing pages.
type RoleClassifier interface {
	Classify(ctx context.Context, userID string) (role.Role, error)
	LandingForRole(r role.Role) string
}

// Gate evaluates requests. It holds no per-request state.
type Gate struct {
	identities IdentityResolver
	roles      RoleClassifier
	routes     route.Table
	pageGuards bool
	logger     *log.Logger
	metrics    *metrics.Metrics
}

// Option configures a Gate.
type Option func(*Gate)

// WithRoutes replaces the default path table.
func WithRoutes(t route.Table) Option {
	return func(g *Gate) { g.routes = t }
}

// WithPageGuards enables the stricter page guards: an identity without any
// role is sent to the login page from manager sections, and only team
// members may open the team-member landing page.
func WithPageGuards(enabled bool) Option {
	return func(g *Gate) { g.pageGuards = enabled }
}

// WithLogger sets the decision logger.
func WithLogger(l *log.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMetrics records decisions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) { g.metrics = m }
}

// New creates a Gate.
func New(identities IdentityResolver, roles RoleClassifier, opts ...Option) *Gate {
	g := &Gate{
		identities: identities,
		roles:      roles,
		routes:     route.DefaultTable(),
		logger:     log.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "gate")
	return g
}

// Routes returns the path table in use.
func (g *Gate) Routes() route.Table {
	return g.routes
}

// Decide evaluates r. Identity and role are resolved only when a rule needs
// them. Any failure to resolve either fails closed.
func (g *Gate) Decide(ctx context.Context, r *http.Request) Decision {
	path := r.URL.Path
	ctx, span := telemetry.StartGateSpan(ctx, path)
	defer span.End()

	start := time.Now()
	d := g.decide(ctx, r.WithContext(ctx), path)
	elapsed := time.Since(start)

	g.metrics.ObserveGate(string(d.Action), d.Category.String(), d.roleLabel(), elapsed)
	span.SetAttributes(
		attribute.String("gate.action", string(d.Action)),
		attribute.String("gate.category", d.Category.String()),
		attribute.String("gate.role", d.Role.String()),
	)
	telemetry.RecordDuration(span, "gate.duration", elapsed)

	if d.Action == Fail {
		telemetry.RecordError(span, d.Err)
		g.metrics.ObserveError(string(errors.CodeOf(d.Err)), "gate")
		g.logger.WithContext(ctx).With("path", path, "category", d.Category.String()).
			LogErrorContext(ctx, "access gate failed closed", d.Err)
		return d
	}

	telemetry.RecordSuccess(span)
	if g.logger.Enabled(ctx, log.LevelDebug) {
		args := []any{
			"path", path,
			"category", d.Category.String(),
			"action", string(d.Action),
			"reason", d.Reason,
		}
		if d.Role != "" {
			args = append(args, "role", d.Role.String())
		}
		if d.Location != "" {
			args = append(args, "location", d.Location)
		}
		g.logger.WithContext(ctx).DebugContext(ctx, "gate decision", args...)
	}
	return d
}

func (g *Gate) decide(ctx context.Context, r *http.Request, path string) Decision {
	d := Decision{Category: g.routes.Classify(path)}

	// Rule 1: the route checks its own credentials.
	if d.Category == route.SelfAuthenticating {
		return d.allow("route authenticates itself")
	}
	if d.Category == route.Public {
		return d.allow("public route")
	}

	id, err := g.identities.Resolve(r)
	if err != nil {
		return d.fail(err)
	}
	d.Identity = id

	if id == nil {
		switch {
		case d.Category == route.AuthPage:
			return d.allow("anonymous on auth page")
		case g.routes.IsAPI(path):
			// Rule 2
			return d.reject("no session on api route")
		default:
			// Rule 3
			return d.redirect(g.loginURL(path), "no session")
		}
	}

	// The landing page sits inside a manager section by prefix; without
	// page guards anyone signed in may open it.
	memberLanding := g.routes.IsTeamMemberLanding(path)
	if memberLanding && !g.pageGuards {
		return d.allow("team-member landing")
	}

	needsRole := d.Category == route.ManagerOnly ||
		d.Category == route.MainLanding ||
		d.Category == route.AuthPage ||
		memberLanding
	if !needsRole {
		return d.allow("authenticated")
	}

	d.Role, err = g.roles.Classify(ctx, id.UserID)
	if err != nil {
		d.Role = ""
		return d.fail(err)
	}

	switch {
	case d.Category == route.AuthPage:
		// Rule 5
		return d.redirect(g.roles.LandingForRole(d.Role), "already signed in")

	case memberLanding:
		if d.Role != role.TeamMember && d.Role != role.Both {
			return d.redirect(g.routes.DashboardRoot, "not a team member")
		}
		return d.allow("team-member landing")

	case d.Role.ManagerCapable():
		return d.allow("role permitted")

	case d.Role == role.TeamMember:
		// Rule 4
		return d.redirect(g.routes.TeamMemberLanding, "manager route for team member")

	case g.pageGuards && d.Role == role.None && d.Category == route.ManagerOnly:
		return d.redirect(g.routes.LoginPath, "no role for manager route")
	}

	return d.allow("no role")
}

// roleLabel is the role reported to metrics. Signed-in requests that never
// needed a role are "unresolved"; "" is left for anonymous ones.
func (d Decision) roleLabel() string {
	if d.Role == "" && d.Identity != nil {
		return "unresolved"
	}
	return d.Role.String()
}

func (g *Gate) loginURL(path string) string {
	return g.routes.LoginPath + "?" + url.Values{"redirect": {path}}.Encode()
}

func (d Decision) allow(reason string) Decision {
	d.Action, d.Status, d.Reason = Allow, http.StatusOK, reason
	return d
}

func (d Decision) reject(reason string) Decision {
	d.Action, d.Status, d.Reason = Reject, http.StatusUnauthorized, reason
	return d
}

func (d Decision) redirect(location, reason string) Decision {
	d.Action, d.Status, d.Location, d.Reason = Redirect, http.StatusTemporaryRedirect, location, reason
	return d
}

func (d Decision) fail(err error) Decision {
	d.Action, d.Status, d.Reason, d.Err = Fail, http.StatusServiceUnavailable, "lookup failed", err
	return d
}
