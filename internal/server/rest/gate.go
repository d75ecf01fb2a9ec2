package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/dmitrijs2005/jwtkeeper/internal/common"
	"github.com/dmitrijs2005/jwtkeeper/internal/logging"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/auth"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/metrics"
)

// Authenticator checks username/password credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*auth.Principal, error)
}

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// rule is one step of the gate. The first rule whose match returns true
// decides the request: apply either yields an identity (nil for anonymous
// access) or an error that rejects the request.
type rule struct {
	name  string
	match func(r *http.Request) bool
	apply func(r *http.Request) (*Identity, error)
}

// Gate decides, for every request, whether it proceeds and as whom. Rules
// are evaluated in order: public paths, bearer token, basic credentials,
// deny. Nothing is cached between requests.
type Gate struct {
	rules         []rule
	publicPaths   []string
	authenticator Authenticator
	verifier      TokenVerifier
	logger        logging.Logger
	metrics       *metrics.Metrics
	realm         string
}

func NewGate(publicPaths []string, a Authenticator, v TokenVerifier, l logging.Logger, m *metrics.Metrics, realm string) *Gate {
	g := &Gate{
		publicPaths:   publicPaths,
		authenticator: a,
		verifier:      v,
		logger:        l.With("module", "gate"),
		metrics:       m,
		realm:         realm,
	}

	g.rules = []rule{
		{name: "public", match: g.isPublic, apply: anonymous},
		{name: "bearer", match: hasScheme(common.BearerScheme), apply: g.bearer},
		{name: "basic", match: hasScheme(common.BasicScheme), apply: g.basic},
		{name: "deny", match: always, apply: deny},
	}

	return g
}

// Middleware applies the gate in front of next.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, rl := range g.rules {
			if !rl.match(r) {
				continue
			}

			id, err := rl.apply(r)
			g.metrics.RecordGateDecision(rl.name, err == nil)
			if err != nil {
				g.reject(w, r, rl.name, err)
				return
			}

			if id != nil {
				r = r.WithContext(withIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
			return
		}
	})
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, ruleName string, err error) {
	ctx := r.Context()

	if errors.Is(err, common.ErrorInternal) {
		g.logger.Error(ctx, "authentication error", "rule", ruleName, "path", r.URL.Path, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	g.logger.Warn(ctx, "request rejected", "rule", ruleName, "path", r.URL.Path, "reason", common.Reason(err))

	scheme := common.BearerScheme
	if ruleName == "basic" {
		scheme = common.BasicScheme
	}
	w.Header().Set("WWW-Authenticate", fmt.Sprintf("%s realm=%q", scheme, g.realm))
	writeError(w, http.StatusUnauthorized, "unauthorized")
}

func (g *Gate) isPublic(r *http.Request) bool {
	p := path.Clean("/" + r.URL.Path)
	for _, pattern := range g.publicPaths {
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
			if strings.HasPrefix(p, prefix) {
				return true
			}
			continue
		}
		if p == pattern {
			return true
		}
	}
	return false
}

func (g *Gate) bearer(r *http.Request) (*Identity, error) {
	_, token := splitAuthorization(r)

	claims, err := g.verifier.Verify(token)
	g.metrics.RecordTokenVerification(common.Reason(err))
	if err != nil {
		return nil, err
	}

	return &Identity{
		Subject:     claims.Subject,
		Authorities: claims.Authorities(),
		Method:      MethodBearer,
	}, nil
}

func (g *Gate) basic(r *http.Request) (*Identity, error) {
	username, password, ok := r.BasicAuth()
	if !ok {
		err := fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrBadCredentials)
		g.metrics.RecordAuthentication(common.Reason(err))
		return nil, err
	}

	principal, err := g.authenticator.Authenticate(r.Context(), username, password)
	g.metrics.RecordAuthentication(common.Reason(err))
	if err != nil {
		return nil, err
	}

	return &Identity{
		Subject:     principal.Username(),
		Authorities: principal.Authorities(),
		Method:      MethodBasic,
		Principal:   principal,
	}, nil
}

func anonymous(*http.Request) (*Identity, error) { return nil, nil }

func deny(*http.Request) (*Identity, error) { return nil, common.ErrorUnauthorized }

func always(*http.Request) bool { return true }

func hasScheme(scheme string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		s, _ := splitAuthorization(r)
		return strings.EqualFold(s, scheme)
	}
}

// splitAuthorization returns the scheme and credentials of the
// Authorization header.
func splitAuthorization(r *http.Request) (scheme, credentials string) {
	h := strings.TrimSpace(r.Header.Get(common.AuthorizationHeaderName))
	scheme, credentials, _ = strings.Cut(h, " ")
	return scheme, strings.TrimSpace(credentials)
}
