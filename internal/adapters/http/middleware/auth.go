package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quizboard/internal/adapters/identity"
	"github.com/jsamuelsen/quizboard/internal/ports"
)

// Credentials returns middleware that exposes the inbound request to
// identity providers through the request context.
func Credentials() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(identity.WithRequest(c.Request.Context(), c.Request))
		c.Next()
	}
}

// RequireIdentity returns middleware that resolves the caller with provider
// and aborts with 403 when it cannot. Credentials must run first.
func RequireIdentity(provider ports.IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := provider.Identity(c.Request.Context()); err != nil {
			abortWithForbidden(c, err.Error())
			return
		}

		c.Next()
	}
}
