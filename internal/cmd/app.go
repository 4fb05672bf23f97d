package cmd

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/felixgeelhaar/pmos/internal/auth"
	"github.com/felixgeelhaar/pmos/internal/backend"
	"github.com/felixgeelhaar/pmos/internal/config"
	"github.com/felixgeelhaar/pmos/internal/cron"
	"github.com/felixgeelhaar/pmos/internal/errors"
	"github.com/felixgeelhaar/pmos/internal/gate"
	"github.com/felixgeelhaar/pmos/internal/health"
	"github.com/felixgeelhaar/pmos/internal/log"
	"github.com/felixgeelhaar/pmos/internal/metrics"
	"github.com/felixgeelhaar/pmos/internal/role"
	"github.com/felixgeelhaar/pmos/internal/route"
	"github.com/felixgeelhaar/pmos/internal/store"
	"github.com/felixgeelhaar/pmos/internal/version"
)

// recordBackend is what both drivers provide.
type recordBackend interface {
	role.RecordStore
	health.Pinger
	cron.Generator
}

// app holds the components built from one configuration. Everything is
// constructed here once and passed down; no package keeps a client of its own.
type app struct {
	cfg        *config.Config
	logger     *log.Logger
	registry   *prometheus.Registry
	metrics    *metrics.Metrics
	backend    recordBackend
	users      auth.UserFetcher
	classifier *role.Classifier
	closers    []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := log.New(log.FromSettings(cfg.Log.Level, cfg.Log.Format, version.GetInfo().Version))
	log.SetDefaultLogger(logger)

	reg, m := metrics.NewRegistry()
	a := &app{cfg: cfg, logger: logger, registry: reg, metrics: m}

	switch cfg.Backend.Driver {
	case config.DriverSQLite:
		st, err := store.Open(ctx, cfg.Backend.SQLitePath)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to open sqlite store", err)
		}
		a.backend = st
		a.closers = append(a.closers, st.Close)
		logger.Info("using local sqlite backend", "path", st.Path())
	default:
		client, err := backend.NewClient(backend.Config{
			URL:        cfg.Backend.URL,
			AnonKey:    cfg.Backend.AnonKey,
			ServiceKey: cfg.Backend.ServiceKey,
			Timeout:    cfg.Backend.Timeout,
			CACert:     cfg.Backend.CACert,
			Metrics:    m,
		})
		if err != nil {
			return nil, err
		}
		a.backend = recordClient{RecordStore: backend.NewRecordStore(client), Client: client}
		a.users = client
	}

	a.classifier = role.NewClassifier(a.backend,
		role.WithMetrics(m),
		role.WithLookupTimeout(cfg.Gate.LookupTimeout),
	)
	return a, nil
}

// recordClient joins the REST record adapter with the client's procedure calls.
type recordClient struct {
	*backend.RecordStore
	Client *backend.Client
}

func (r recordClient) RPC(ctx context.Context, fn string, args any) (json.RawMessage, error) {
	return r.Client.RPC(ctx, fn, args)
}

// verifier picks local JWT verification when a secret is configured and
// the backend's user endpoint otherwise.
func (a *app) verifier() auth.Verifier {
	if a.cfg.Auth.JWTSecret != "" {
		return auth.NewJWTVerifier(a.cfg.Auth.JWTSecret, a.cfg.Auth.Audience)
	}
	if a.users != nil {
		return auth.NewRemoteVerifier(a.users)
	}
	a.logger.Warn("no session verifier available; every request is anonymous",
		"suggestion", "set SUPABASE_JWT_SECRET when using the sqlite backend")
	return auth.VerifierFunc(func(ctx context.Context, token string) (*auth.Identity, error) {
		return nil, auth.ErrTokenInvalid
	})
}

func (a *app) gate() *gate.Gate {
	resolver := auth.NewResolver(a.verifier(), a.cfg.Auth.CookieName, a.metrics)
	return gate.New(resolver, a.classifier,
		gate.WithRoutes(route.TableFor(a.cfg.Gate.ManagerSections)),
		gate.WithPageGuards(a.cfg.Gate.PageGuards),
		gate.WithLogger(a.logger),
		gate.WithMetrics(a.metrics),
	)
}

func (a *app) cronHandler() *cron.Handler {
	return cron.NewHandler(a.backend, cron.Config{
		Secret:          a.cfg.Cron.Secret,
		SignatureHeader: a.cfg.Cron.SignatureHeader,
		Logger:          a.logger,
		Metrics:         a.metrics,
	})
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return stderrors.Join(errs...)
}
