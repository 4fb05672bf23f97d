package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pmos/internal/health"
	"github.com/felixgeelhaar/pmos/internal/server"
	"github.com/felixgeelhaar/pmos/internal/telemetry"
	"github.com/felixgeelhaar/pmos/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the access gate",
	Long: `Run the access gate in front of the PMOS web application.

Requests the gate allows are forwarded to the upstream (--upstream). The
server also exposes:
  /api/cron/generate-tasks  - recurring task generation (shared secret)
  /api/session/landing      - landing page of the signed-in user
  /health/live              - liveness probe
  /health/ready             - readiness probe (fails while the backend is down)
  /health/startup           - startup probe
  /metrics                  - Prometheus metrics

On SIGTERM or SIGINT readiness fails first and connections are drained.

Example:
  # Gate a local Next.js dev server against the managed backend
  SUPABASE_URL=https://abcd.supabase.co SUPABASE_ANON_KEY=... \
    pmos serve --upstream http://localhost:3000

  # Local development against a SQLite file
  pmos serve --driver sqlite --sqlite-path .pmos/pmos.db`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("upstream", "", "URL of the web application to forward allowed requests to")
	serveCmd.Flags().String("driver", "supabase", "Record backend: supabase or sqlite")
	serveCmd.Flags().String("sqlite-path", "", "SQLite database path for the sqlite driver")
	serveCmd.Flags().Bool("page-guards", false, "Enable the stricter page guards for manager and team-member pages")
	serveCmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	serveCmd.Flags().String("log-format", "json", "Log format: json or text")
	serveCmd.Flags().Duration("shutdown-timeout", 30*time.Second, "Maximum time to wait for connections to drain during shutdown")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	info := version.GetInfo()
	tc := cfg.Telemetry
	shutdownTracing, err := telemetry.InitProvider(ctx,
		telemetry.FromSettings(tc.Enabled, tc.Endpoint, tc.Insecure, tc.SampleRate, tc.Environment, info.Version))
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	pm := health.NewProbeManager(info.Version)
	pm.AddChecker(health.NewBackendChecker(a.backend))
	if cfg.Server.UpstreamURL != "" {
		pm.AddChecker(health.NewUpstreamChecker(cfg.Server.UpstreamURL, nil))
	}

	srv, err := server.NewServer(server.Deps{
		Probes:   pm,
		Gate:     a.gate(),
		Roles:    a.classifier,
		Cron:     a.cronHandler(),
		Registry: a.registry,
		Metrics:  a.metrics,
		Logger:   a.logger,
	}, server.Config{
		Address:         cfg.Server.Address,
		UpstreamURL:     cfg.Server.UpstreamURL,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, boxStyle.Render(titleStyle.Render("pmos")+" "+mutedStyle.Render(info.Version)))
	upstream := cfg.Server.UpstreamURL
	if upstream == "" {
		upstream = mutedStyle.Render("(none, allowed requests get 404)")
	}
	keyValues(out,
		"listening", cfg.Server.Address,
		"backend", cfg.Backend.Driver,
		"upstream", upstream,
		"page guards", fmt.Sprint(cfg.Gate.PageGuards),
		"cron secret", fmt.Sprint(cfg.Cron.Secret != ""),
	)
	fmt.Fprintln(out)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		_ = shutdownTracing(context.Background())
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		a.logger.Info("shutting down", "reason", context.Cause(ctx).Error())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout+5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			a.logger.LogError("failed to flush traces", err)
		}
		a.logger.Info("server stopped gracefully")
		return nil
	}
}
