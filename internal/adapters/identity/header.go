package identity

import (
	"context"
	"strings"

	"github.com/jsamuelsen/quizboard/internal/domain"
	"github.com/jsamuelsen/quizboard/internal/platform/config"
)

// Default header names if not configured.
const (
	defaultSubjectHeader = "X-User-ID"
	defaultNameHeader    = "X-User-Name"
	defaultRolesHeader   = "X-User-Roles"
)

// HeaderProvider trusts identity headers set by an authenticating gateway.
type HeaderProvider struct {
	subjectHeader string
	nameHeader    string
	rolesHeader   string
}

// NewHeaderProvider creates a provider reading the headers named in cfg.
func NewHeaderProvider(cfg config.AuthConfig) *HeaderProvider {
	return &HeaderProvider{
		subjectHeader: orDefault(cfg.SubjectHeader, defaultSubjectHeader),
		nameHeader:    orDefault(cfg.NameHeader, defaultNameHeader),
		rolesHeader:   orDefault(cfg.RolesHeader, defaultRolesHeader),
	}
}

// Identity implements ports.IdentityProvider.
func (p *HeaderProvider) Identity(ctx context.Context) (*domain.Identity, error) {
	r, ok := RequestFrom(ctx)
	if !ok {
		return nil, unauthenticated("no request credentials")
	}

	subject := strings.TrimSpace(r.Header.Get(p.subjectHeader))
	if subject == "" {
		return nil, unauthenticated("missing " + p.subjectHeader + " header")
	}

	return &domain.Identity{
		Subject: subject,
		Name:    strings.TrimSpace(r.Header.Get(p.nameHeader)),
		Roles:   parseCommaSeparated(r.Header.Get(p.rolesHeader)),
	}, nil
}

// parseCommaSeparated splits a comma-separated string into trimmed values.
func parseCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")

	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
