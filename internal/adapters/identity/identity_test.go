package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quizboard/internal/domain"
	"github.com/jsamuelsen/quizboard/internal/platform/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func requestContext(r *http.Request) context.Context {
	return WithRequest(context.Background(), r)
}

func TestRequestFrom(t *testing.T) {
	_, ok := RequestFrom(context.Background())
	assert.False(t, ok)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	got, ok := RequestFrom(requestContext(r))
	require.True(t, ok)
	assert.Same(t, r, got)

	_, ok = RequestFrom(WithRequest(context.Background(), nil))
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.AuthConfig
		want    any
		wantErr bool
	}{
		{name: "empty mode", cfg: config.AuthConfig{}, want: Anonymous{}},
		{name: "anonymous", cfg: config.AuthConfig{Mode: config.AuthModeAnonymous}, want: Anonymous{}},
		{name: "header", cfg: config.AuthConfig{Mode: config.AuthModeHeader}, want: &HeaderProvider{}},
		{name: "jwt", cfg: config.AuthConfig{Mode: config.AuthModeJWT, JWTSecret: testSecret}, want: &JWTProvider{}},
		{name: "jwt without secret", cfg: config.AuthConfig{Mode: config.AuthModeJWT}, wantErr: true},
		{name: "unknown", cfg: config.AuthConfig{Mode: "saml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := New(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.IsType(t, tt.want, provider)
		})
	}
}

func TestAnonymous(t *testing.T) {
	id, err := Anonymous{}.Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.AnonymousSubject, id.Subject)
}

func TestHeaderProvider(t *testing.T) {
	provider := NewHeaderProvider(config.AuthConfig{})

	t.Run("reads default headers", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-User-ID", " t-1 ")
		r.Header.Set("X-User-Name", "Ms. Frizzle")
		r.Header.Set("X-User-Roles", "teacher, ,admin")

		id, err := provider.Identity(requestContext(r))
		require.NoError(t, err)
		assert.Equal(t, &domain.Identity{Subject: "t-1", Name: "Ms. Frizzle", Roles: []string{"teacher", "admin"}}, id)
	})

	t.Run("missing subject", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		_, err := provider.Identity(requestContext(r))
		require.ErrorIs(t, err, domain.ErrForbidden)
		assert.Contains(t, err.Error(), "X-User-ID")
	})

	t.Run("no request", func(t *testing.T) {
		_, err := provider.Identity(context.Background())
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestHeaderProvider_CustomHeaders(t *testing.T) {
	provider := NewHeaderProvider(config.AuthConfig{
		SubjectHeader: "X-Sub",
		NameHeader:    "X-Display",
		RolesHeader:   "X-Groups",
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Sub", "t-2")
	r.Header.Set("X-Display", "Mr. Keating")

	id, err := provider.Identity(requestContext(r))
	require.NoError(t, err)
	assert.Equal(t, "Mr. Keating", id.DisplayName())
	assert.Nil(t, id.Roles)
}

func newJWT(t *testing.T, cfg config.AuthConfig) *JWTProvider {
	t.Helper()

	cfg.JWTSecret = testSecret

	p, err := NewJWTProvider(cfg)
	require.NoError(t, err)

	return p
}

func TestJWTProvider_BearerRoundTrip(t *testing.T) {
	p := newJWT(t, config.AuthConfig{Issuer: "school", Audience: "quizboard"})

	token, err := p.Sign(domain.Identity{Subject: "t-1", Name: "Ada", Roles: []string{"teacher"}}, time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	id, err := p.Identity(requestContext(r))
	require.NoError(t, err)
	assert.Equal(t, &domain.Identity{Subject: "t-1", Name: "Ada", Roles: []string{"teacher"}}, id)
}

func TestJWTProvider_Cookie(t *testing.T) {
	p := newJWT(t, config.AuthConfig{TokenCookie: "qb_token"})

	token, err := p.Sign(domain.Identity{Subject: "t-3"}, time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "qb_token", Value: token})

	id, err := p.Identity(requestContext(r))
	require.NoError(t, err)
	assert.Equal(t, "t-3", id.Subject)
}

func TestJWTProvider_Rejects(t *testing.T) {
	p := newJWT(t, config.AuthConfig{Issuer: "school", Audience: "quizboard"})

	valid, err := p.Sign(domain.Identity{Subject: "t-1"}, time.Hour)
	require.NoError(t, err)

	expired, err := p.Sign(domain.Identity{Subject: "t-1"}, -time.Hour)
	require.NoError(t, err)

	other := newJWT(t, config.AuthConfig{Issuer: "elsewhere", Audience: "quizboard"})
	wrongIssuer, err := other.Sign(domain.Identity{Subject: "t-1"}, time.Hour)
	require.NoError(t, err)

	noSubject, err := p.Sign(domain.Identity{}, time.Hour)
	require.NoError(t, err)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  "t-1",
		Issuer:   "school",
		Audience: jwt.ClaimStrings{"quizboard"},
	}).SignedString([]byte("another-secret-another-secret-xx"))
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "t-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"garbage", "Bearer not-a-token"},
		{"expired", "Bearer " + expired},
		{"wrong issuer", "Bearer " + wrongIssuer},
		{"no subject", "Bearer " + noSubject},
		{"wrong secret", "Bearer " + forged},
		{"alg none", "Bearer " + none},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			_, err := p.Identity(requestContext(r))
			require.ErrorIs(t, err, domain.ErrForbidden)
		})
	}

	t.Run("sanity", func(t *testing.T) {
		_, err := p.Parse(valid)
		require.NoError(t, err)
	})
}

func TestJWTProvider_HeaderBeatsCookie(t *testing.T) {
	p := newJWT(t, config.AuthConfig{})

	header, err := p.Sign(domain.Identity{Subject: "from-header"}, time.Hour)
	require.NoError(t, err)

	cookie, err := p.Sign(domain.Identity{Subject: "from-cookie"}, time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+header)
	r.AddCookie(&http.Cookie{Name: "session", Value: cookie})

	id, err := p.Identity(requestContext(r))
	require.NoError(t, err)
	assert.Equal(t, "from-header", id.Subject)
}
