// Package main is the entry point for the quiz board server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/quizboard/internal/adapters/clients"
	"github.com/jsamuelsen/quizboard/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quizboard/internal/adapters/http"
	"github.com/jsamuelsen/quizboard/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quizboard/internal/adapters/identity"
	"github.com/jsamuelsen/quizboard/internal/app"
	"github.com/jsamuelsen/quizboard/internal/platform/config"
	"github.com/jsamuelsen/quizboard/internal/platform/logging"
	"github.com/jsamuelsen/quizboard/internal/platform/telemetry"
	"github.com/jsamuelsen/quizboard/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting quizboard",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("auth_mode", cfg.Auth.Mode),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
		Insecure:     cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 5. Prometheus registry for /-/metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics, err := app.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("registering board metrics: %w", err)
	}

	// 6. Quiz backend behind the resilient client (ACL pattern)
	healthRegistry := ports.NewHealthRegistry()

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Services.Backend.BaseURL,
		ServiceName: cfg.Services.Backend.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating backend client: %w", err)
	}

	backend := acl.NewQuizBackend(acl.QuizBackendConfig{Client: httpClient, Logger: logger})

	if err := healthRegistry.Register(backend); err != nil {
		return fmt.Errorf("registering backend health check: %w", err)
	}

	// 7. Identity and board sessions
	identityProvider, err := identity.New(cfg.Auth)
	if err != nil {
		return fmt.Errorf("creating identity provider: %w", err)
	}

	sessions := app.NewSessions(app.SessionsConfig{
		Backend:         backend,
		Identity:        identityProvider,
		Metrics:         metrics,
		Logger:          logger,
		TTL:             cfg.Board.SessionTTL,
		JanitorInterval: cfg.Board.JanitorInterval,
	})

	// 8. HTTP server, handlers and routes
	server := http.New(&cfg.Server, logger)

	routerCfg := http.NewDefaultRouterConfig(logger, &cfg.App, &cfg.Server,
		handlers.NewHealthHandler(healthRegistry, handlers.NewBuildInfo(Version, Commit, BuildTime), registry).WithBoards(sessions))
	routerCfg.PageHandler = handlers.NewPageHandler(handlers.PageConfig{
		Sessions:     sessions,
		CookieName:   cfg.Board.CookieName,
		SecureCookie: cfg.Board.SecureCookie,
		Logger:       logger,
	})
	routerCfg.BoardHandler = handlers.NewBoardHandler(sessions)

	if cfg.Auth.Mode != config.AuthModeAnonymous {
		routerCfg.Identity = identityProvider
	}

	http.SetupRouter(server.Engine(), routerCfg)

	// 9. Run until a signal or a failure, closing boards before the server drains
	g, gctx := errgroup.WithContext(ctx)

	serverCtx, stopServer := context.WithCancel(context.WithoutCancel(gctx))
	defer stopServer()

	sessions.Start(gctx)

	g.Go(func() error {
		return server.Run(serverCtx)
	})

	g.Go(func() error {
		<-gctx.Done()
		defer stopServer()

		logger.Info("initiating graceful shutdown", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := sessions.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("closing boards: %w", err)
		}

		return sessions.Wait(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("shutdown complete")

	return nil
}
