package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jsamuelsen/quizboard/internal/domain"
	"github.com/jsamuelsen/quizboard/internal/platform/config"
)

const (
	defaultTokenCookie = "session"
	bearerPrefix       = "Bearer "

	// leeway absorbs clock skew between the issuer and this service.
	leeway = 30 * time.Second
)

// Claims are the token claims the board reads.
type Claims struct {
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTProvider validates HS256 tokens from the Authorization header or a cookie.
type JWTProvider struct {
	secret   []byte
	issuer   string
	audience string
	cookie   string
	parser   *jwt.Parser
}

// NewJWTProvider creates a provider from cfg. The secret is required.
func NewJWTProvider(cfg config.AuthConfig) (*JWTProvider, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(leeway),
		jwt.WithIssuedAt(),
	}

	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &JWTProvider{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		cookie:   orDefault(cfg.TokenCookie, defaultTokenCookie),
		parser:   jwt.NewParser(opts...),
	}, nil
}

// Identity implements ports.IdentityProvider.
func (p *JWTProvider) Identity(ctx context.Context) (*domain.Identity, error) {
	tokenString, err := p.token(ctx)
	if err != nil {
		return nil, err
	}

	claims, err := p.Parse(tokenString)
	if err != nil {
		return nil, err
	}

	return &domain.Identity{
		Subject: claims.Subject,
		Name:    claims.Name,
		Roles:   claims.Roles,
	}, nil
}

// Parse validates tokenString and returns its claims.
func (p *JWTProvider) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := p.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	})
	if err != nil {
		return nil, unauthenticated(fmt.Sprintf("invalid token: %v", err))
	}

	if !token.Valid {
		return nil, unauthenticated("invalid token")
	}

	if claims.Subject == "" {
		return nil, unauthenticated("token has no subject")
	}

	return claims, nil
}

// Sign issues a token for identity that expires after ttl, using the
// configured issuer and audience.
func (p *JWTProvider) Sign(identity domain.Identity, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		Name:  identity.Name,
		Roles: identity.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	if p.audience != "" {
		claims.Audience = jwt.ClaimStrings{p.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

func (p *JWTProvider) token(ctx context.Context) (string, error) {
	r, ok := RequestFrom(ctx)
	if !ok {
		return "", unauthenticated("no request credentials")
	}

	if auth := r.Header.Get("Authorization"); auth != "" {
		if !strings.HasPrefix(auth, bearerPrefix) {
			return "", unauthenticated("unsupported authorization scheme")
		}

		return strings.TrimSpace(strings.TrimPrefix(auth, bearerPrefix)), nil
	}

	if c, err := r.Cookie(p.cookie); err == nil && c.Value != "" {
		return c.Value, nil
	}

	return "", unauthenticated("missing bearer token")
}
