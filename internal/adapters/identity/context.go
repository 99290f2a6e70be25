// Package identity resolves the teacher using a board from request credentials.
//
// The HTTP layer attaches the inbound request to the context with
// [WithRequest]; providers read headers and cookies from it. A context without
// a request carries no credentials.
package identity

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jsamuelsen/quizboard/internal/domain"
	"github.com/jsamuelsen/quizboard/internal/platform/config"
	"github.com/jsamuelsen/quizboard/internal/ports"
)

type requestKey struct{}

// WithRequest returns a context carrying r for providers to read credentials from.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestKey{}, r)
}

// RequestFrom returns the request attached with WithRequest, if any.
func RequestFrom(ctx context.Context) (*http.Request, bool) {
	r, ok := ctx.Value(requestKey{}).(*http.Request)
	return r, ok && r != nil
}

// New builds the provider selected by cfg.Mode.
func New(cfg config.AuthConfig) (ports.IdentityProvider, error) {
	switch cfg.Mode {
	case "", config.AuthModeAnonymous:
		return Anonymous{}, nil
	case config.AuthModeHeader:
		return NewHeaderProvider(cfg), nil
	case config.AuthModeJWT:
		return NewJWTProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}

func unauthenticated(reason string) error {
	return domain.NewForbiddenError("identify", reason)
}

// Anonymous resolves every caller to the anonymous identity.
type Anonymous struct{}

// Identity implements ports.IdentityProvider.
func (Anonymous) Identity(context.Context) (*domain.Identity, error) {
	return domain.Anonymous(), nil
}
