package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quizboard/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quizboard/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quizboard/internal/platform/config"
	"github.com/jsamuelsen/quizboard/internal/platform/telemetry"
	"github.com/jsamuelsen/quizboard/internal/ports"
)

// DefaultRequestTimeout is the default timeout for page and API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AppConfig names the service for tracing.
	AppConfig *config.AppConfig

	// CORS lists the browser origins allowed to call the JSON API.
	CORS config.CORSConfig

	HealthHandler *handlers.HealthHandler
	PageHandler   *handlers.PageHandler
	BoardHandler  *handlers.BoardHandler

	// Identity, when set, rejects API requests it cannot identify before
	// they reach a handler.
	Identity ports.IdentityProvider

	// Timeout is the request deadline for page and API routes.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle distributed tracing correlation
//  4. OpenTelemetry - tracing and metrics
//  5. Logging - request logging (skips health endpoints)
//  6. CORS - when origins are configured
//  7. Credentials and Timeout - page and API routes only
//
// Route groups:
//   - /-/ (internal): health and metrics, no timeout
//   - /teacher/quizzes: the HTML page
//   - /api/v1/boards: the JSON view API
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	name := "quizboard"
	if cfg.AppConfig != nil {
		name = cfg.AppConfig.Name
	}

	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(name)...)
	engine.Use(middleware.Logging(cfg.Logger))

	if corsHandler, ok := middleware.CORS(cfg.CORS); ok {
		engine.Use(corsHandler)
	}

	engine.HandleMethodNotAllowed = true
	engine.NoRoute(notFound)
	engine.NoMethod(methodNotAllowed)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	views := engine.Group("", middleware.Credentials())
	if cfg.Timeout > 0 {
		views.Use(middleware.Timeout(cfg.Timeout))
	}

	if cfg.PageHandler != nil {
		cfg.PageHandler.RegisterPageRoutes(views)
	}

	apiV1 := views.Group("/api/v1")
	if cfg.Identity != nil {
		apiV1.Use(middleware.RequireIdentity(cfg.Identity))
	}

	if cfg.BoardHandler != nil {
		cfg.BoardHandler.RegisterBoardRoutes(apiV1)
	}
}

// NewDefaultRouterConfig creates a RouterConfig with the default timeout.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	serverCfg *config.ServerConfig,
	healthHandler *handlers.HealthHandler,
) RouterConfig {
	cfg := RouterConfig{
		Logger:        logger,
		AppConfig:     appCfg,
		HealthHandler: healthHandler,
		Timeout:       DefaultRequestTimeout,
	}

	if serverCfg != nil {
		cfg.CORS = serverCfg.CORS
	}

	return cfg
}
