package middleware

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quizboard/internal/platform/config"
	"github.com/jsamuelsen/quizboard/internal/platform/telemetry"
)

// CORS allows the configured browser origins to call the JSON API.
// The boolean is false when no origins are configured and nothing should be installed.
func CORS(cfg config.CORSConfig) (gin.HandlerFunc, bool) {
	if len(cfg.AllowedOrigins) == 0 {
		return nil, false
	}

	return cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization", HeaderRequestID, HeaderCorrelationID,
		},
		ExposeHeaders:    []string{"Content-Length", "Location", HeaderRequestID, telemetry.TraceIDHeader},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}), true
}
