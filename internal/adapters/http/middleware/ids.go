// Package middleware provides HTTP middleware for the Gin framework.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/quizboard/internal/platform/logging"
)

const (
	// HeaderRequestID is the header name for request ID.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID is the header name for correlation ID. Unlike the
	// request ID it is kept across every call a board makes for one action.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyRequestID is the gin context key for the request ID.
	ContextKeyRequestID = "request_id"

	// ContextKeyCorrelationID is the gin context key for the correlation ID.
	ContextKeyCorrelationID = "correlation_id"
)

// maxIDLength bounds inbound IDs; longer values are replaced.
const maxIDLength = 128

type idKey int

const (
	requestIDKey idKey = iota
	correlationIDKey
)

// tracingID describes one id header: where it is read from and echoed to,
// and where it is kept for handlers, the backend client and the logger.
type tracingID struct {
	header string
	ginKey string
	ctxKey idKey
	logged func(context.Context, string) context.Context
}

var (
	requestID     = tracingID{HeaderRequestID, ContextKeyRequestID, requestIDKey, logging.WithRequestID}
	correlationID = tracingID{HeaderCorrelationID, ContextKeyCorrelationID, correlationIDKey, logging.WithCorrelationID}
)

// RequestID returns middleware that extracts or generates a request ID.
// The ID is echoed in the response header, stored in the gin context and the
// request context, and added to the context logger.
func RequestID() gin.HandlerFunc {
	return requestID.middleware()
}

// CorrelationID returns middleware that propagates the upstream correlation
// ID, or starts a new one when this request is the transaction origin.
func CorrelationID() gin.HandlerFunc {
	return correlationID.middleware()
}

// GetRequestID extracts the request ID from the gin.Context.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// GetCorrelationID extracts the correlation ID from the gin.Context.
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(ContextKeyCorrelationID)
}

// RequestIDFromContext returns the request ID stored by RequestID.
// The backend client forwards it on every call.
func RequestIDFromContext(ctx context.Context) string {
	return requestID.from(ctx)
}

// CorrelationIDFromContext returns the correlation ID stored by CorrelationID.
func CorrelationIDFromContext(ctx context.Context) string {
	return correlationID.from(ctx)
}

// ContextWithRequestID stores a request ID in the context.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ContextWithCorrelationID stores a correlation ID in the context.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

func (t tracingID) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(t.header)
		if !acceptableID(id) {
			id = uuid.NewString()
		}

		c.Set(t.ginKey, id)
		c.Header(t.header, id)

		ctx := context.WithValue(c.Request.Context(), t.ctxKey, id)
		c.Request = c.Request.WithContext(t.logged(ctx, id))

		c.Next()
	}
}

func (t tracingID) from(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(t.ctxKey).(string)

	return id
}

// acceptableID rejects empty, oversized and non-printable inbound ids so
// they cannot forge log lines or headers downstream.
func acceptableID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}

	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}

	return true
}
