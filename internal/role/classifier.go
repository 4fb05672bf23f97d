package role

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/pmos/internal/errors"
	"github.com/felixgeelhaar/pmos/internal/metrics"
	"github.com/felixgeelhaar/pmos/internal/route"
	"github.com/felixgeelhaar/pmos/internal/telemetry"
)

// Table names used in lookups, logs and metrics.
const (
	ManagersTable    = "users"
	TeamMembersTable = "team_members"
)

// ErrLookupFailed matches any error returned when a record lookup could not
// be completed. Use errors.Is(err, role.ErrLookupFailed).
var ErrLookupFailed = errors.New(errors.ErrCodeRoleLookupFailed, "role lookup failed")

// RecordStore answers the two existence questions classification needs.
// (false, nil) means the record is absent; a non-nil error means the lookup
// failed and says nothing about existence.
type RecordStore interface {
	// ManagerExists checks the users store by primary key.
	ManagerExists(ctx context.Context, userID string) (bool, error)
	// TeamMemberExists checks the team members store by its user_id column.
	TeamMemberExists(ctx context.Context, userID string) (bool, error)
}

// Lookup is the tri-state outcome of a single record lookup.
type Lookup int

const (
	NotFound Lookup = iota
	Found
	Failed
)

func (l Lookup) String() string {
	switch l {
	case Found:
		return "found"
	case Failed:
		return "failed"
	default:
		return "not_found"
	}
}

// Classification is a role together with the lookups that produced it.
type Classification struct {
	UserID     string
	Manager    Lookup
	TeamMember Lookup
	Role       Role
}

// Classifier computes roles from a RecordStore. It holds no per-identity
// state and is safe for concurrent use.
type Classifier struct {
	store         RecordStore
	metrics       *metrics.Metrics
	mainLanding   string
	memberLanding string
	lookupTimeout time.Duration
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithMetrics records lookup latency and classification counts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Classifier) { c.metrics = m }
}

// WithLandingPaths overrides the main and team-member landing pages.
func WithLandingPaths(main, teamMember string) Option {
	return func(c *Classifier) {
		if main != "" {
			c.mainLanding = main
		}
		if teamMember != "" {
			c.memberLanding = teamMember
		}
	}
}

// WithLookupTimeout bounds both lookups of one classification. Zero means
// the caller's context alone bounds them.
func WithLookupTimeout(d time.Duration) Option {
	return func(c *Classifier) { c.lookupTimeout = d }
}

// NewClassifier creates a Classifier reading from store.
func NewClassifier(store RecordStore, opts ...Option) *Classifier {
	c := &Classifier{
		store:         store,
		mainLanding:   route.DashboardRoot,
		memberLanding: route.TeamMemberLanding,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the role of userID. Both lookups run concurrently; if
// either fails the error matches ErrLookupFailed and the role is empty.
// A failed lookup is never reported as None.
func (c *Classifier) Classify(ctx context.Context, userID string) (Role, error) {
	cl, err := c.Explain(ctx, userID)
	if err != nil {
		return "", err
	}
	return cl.Role, nil
}

// Explain is Classify with the individual lookup outcomes. On failure the
// returned Classification still carries the per-table states.
func (c *Classifier) Explain(ctx context.Context, userID string) (Classification, error) {
	cl := Classification{UserID: strings.TrimSpace(userID)}
	if cl.UserID == "" {
		return cl, errors.NewInvalidIdentityError()
	}

	if c.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.lookupTimeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cl.Manager, err = c.lookup(gctx, ManagersTable, cl.UserID, c.store.ManagerExists)
		return err
	})
	g.Go(func() error {
		var err error
		cl.TeamMember, err = c.lookup(gctx, TeamMembersTable, cl.UserID, c.store.TeamMemberExists)
		return err
	})
	if err := g.Wait(); err != nil {
		return cl, err
	}

	cl.Role = Resolve(cl.Manager == Found, cl.TeamMember == Found)
	c.metrics.ObserveRole(cl.Role.String())
	return cl, nil
}

func (c *Classifier) lookup(ctx context.Context, table, userID string, exists func(context.Context, string) (bool, error)) (Lookup, error) {
	ctx, span := telemetry.StartLookupSpan(ctx, table)
	defer span.End()

	start := time.Now()
	found, err := exists(ctx, userID)
	c.metrics.ObserveLookup(table, time.Since(start), err)
	if err != nil {
		telemetry.RecordError(span, err)
		return Failed, errors.NewLookupFailedError(table, err)
	}

	telemetry.RecordSuccess(span)
	if found {
		return Found, nil
	}
	return NotFound, nil
}

// LandingPath classifies userID and returns its landing page.
func (c *Classifier) LandingPath(ctx context.Context, userID string) (string, error) {
	r, err := c.Classify(ctx, userID)
	if err != nil {
		return "", err
	}
	return c.LandingForRole(r), nil
}

// LandingForRole maps r to this classifier's landing pages.
func (c *Classifier) LandingForRole(r Role) string {
	return landing(r, c.mainLanding, c.memberLanding)
}
