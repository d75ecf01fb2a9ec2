package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/jwtkeeper/internal/common"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/auth"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	principal *auth.Principal
	err       error
	calls     int
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, username, password string) (*auth.Principal, error) {
	f.calls++
	return f.principal, f.err
}

type fakeVerifier struct {
	claims *auth.Claims
	err    error
	calls  int
}

func (f *fakeVerifier) Verify(token string) (*auth.Claims, error) {
	f.calls++
	return f.claims, f.err
}

func newTestGate(a Authenticator, v TokenVerifier, public ...string) (*Gate, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	return NewGate(public, a, v, discardLogger(), m, "test"), m
}

// capture records the identity the gate attached.
func capture(got **Identity, called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		*got, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestGate_RuleOrder(t *testing.T) {
	alice, err := auth.Adapt(&models.User{Username: "alice", Authorities: []string{"user"}, Enabled: true})
	require.NoError(t, err)

	tests := []struct {
		name         string
		path         string
		header       string
		wantStatus   int
		wantMethod   string
		wantVerify   int
		wantAuthCall int
	}{
		{name: "public path is anonymous", path: "/health", header: "Bearer whatever", wantStatus: http.StatusNoContent},
		{name: "public prefix", path: "/docs/index.html", wantStatus: http.StatusNoContent},
		{name: "bearer", path: "/private", header: "Bearer tok", wantStatus: http.StatusNoContent, wantMethod: MethodBearer, wantVerify: 1},
		{name: "bearer scheme is case insensitive", path: "/private", header: "bearer tok", wantStatus: http.StatusNoContent, wantMethod: MethodBearer, wantVerify: 1},
		{name: "basic", path: "/private", header: "Basic YWxpY2U6c2VjcmV0", wantStatus: http.StatusNoContent, wantMethod: MethodBasic, wantAuthCall: 1},
		{name: "unknown scheme denied", path: "/private", header: "Digest abc", wantStatus: http.StatusUnauthorized},
		{name: "no header denied", path: "/private", wantStatus: http.StatusUnauthorized},
		{name: "dot segments are cleaned", path: "/docs/../private", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &fakeAuthenticator{principal: alice}
			v := &fakeVerifier{claims: &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"}, Scope: "user"}}
			g, _ := newTestGate(a, v, "/health", "/docs/*")

			var got *Identity
			var called bool
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "http://example.com"+tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			g.Middleware(capture(&got, &called)).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantVerify, v.calls)
			assert.Equal(t, tt.wantAuthCall, a.calls)
			if tt.wantStatus != http.StatusNoContent {
				assert.False(t, called, "handler must not run")
				return
			}
			if tt.wantMethod == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, "alice", got.Subject)
			assert.Equal(t, tt.wantMethod, got.Method)
			assert.Equal(t, []string{"user"}, got.Authorities)
		})
	}
}

func TestGate_BearerFailureDoesNotFallThrough(t *testing.T) {
	a := &fakeAuthenticator{}
	v := &fakeVerifier{err: fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrTokenExpired)}
	g, m := newTestGate(a, v)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer expired")

	var got *Identity
	var called bool
	g.Middleware(capture(&got, &called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
	assert.Equal(t, 0, a.calls)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
	assert.Equal(t, `Bearer realm="test"`, rec.Header().Get("WWW-Authenticate"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokenVerifications.WithLabelValues("failure", "token_expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GateDecisions.WithLabelValues("bearer", "denied")))
}

func TestGate_StoreFailureIs500(t *testing.T) {
	a := &fakeAuthenticator{err: fmt.Errorf("%w: %w", common.ErrorInternal, errors.New("db down"))}
	g, _ := newTestGate(a, &fakeVerifier{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/authenticate", nil)
	req.SetBasicAuth("alice", "secret")

	var got *Identity
	var called bool
	g.Middleware(capture(&got, &called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, called)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestSplitAuthorization(t *testing.T) {
	tests := []struct {
		header, scheme, creds string
	}{
		{"Bearer abc", "Bearer", "abc"},
		{"  Bearer   abc  ", "Bearer", "abc"},
		{"Bearer", "Bearer", ""},
		{"", "", ""},
		{"Basic dXNlcjpwdw==", "Basic", "dXNlcjpwdw=="},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		scheme, creds := splitAuthorization(r)
		assert.Equal(t, tt.scheme, scheme, tt.header)
		assert.Equal(t, tt.creds, creds, tt.header)
	}
}
