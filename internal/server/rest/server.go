// Package rest exposes the HTTP interface: the login endpoint, the
// protected endpoints and the request gate in front of all of them.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/jwtkeeper/internal/logging"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/keys"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/metrics"
	"github.com/gorilla/mux"
)

const (
	LoginPath   = "/authenticate"
	PrivatePath = "/private"
	AdminPath   = "/admin"
	HealthPath  = "/health"
	MetricsPath = "/metrics"
	JWKSPath    = "/.well-known/jwks.json"

	AdminAuthority = "admin"
)

// Options carries everything the HTTP layer depends on.
type Options struct {
	Address        string
	PublicPaths    []string
	Realm          string
	LoginRateLimit float64
	LoginRateBurst int

	Authenticator Authenticator
	Verifier      TokenVerifier
	Issuer        TokenIssuer
	Keys          *keys.KeyPair
	Metrics       *metrics.Metrics
}

type HTTPServer struct {
	address string
	handler http.Handler
	logger  logging.Logger
}

func NewHTTPServer(l logging.Logger, opts Options) (*HTTPServer, error) {
	if opts.Authenticator == nil || opts.Verifier == nil || opts.Issuer == nil || opts.Keys == nil {
		return nil, errors.New("http server: missing dependency")
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}

	logger := l.With("module", "http_server")

	set, err := opts.Keys.JWKS()
	if err != nil {
		return nil, fmt.Errorf("jwks: %w", err)
	}
	jwks, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("jwks: %w", err)
	}

	h := &handler{
		issuer:  opts.Issuer,
		jwks:    jwks,
		logger:  logger,
		metrics: opts.Metrics,
	}

	router := mux.NewRouter()
	router.HandleFunc(LoginPath, h.authenticate).Methods(http.MethodPost)
	router.HandleFunc(PrivatePath, h.private).Methods(http.MethodGet)
	router.Handle(AdminPath, RequireAuthority(AdminAuthority)(http.HandlerFunc(h.admin))).Methods(http.MethodGet)
	router.HandleFunc(HealthPath, h.health).Methods(http.MethodGet)
	router.Handle(MetricsPath, opts.Metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc(JWKSPath, h.keySet).Methods(http.MethodGet)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	gate := NewGate(opts.PublicPaths, opts.Authenticator, opts.Verifier, logger, opts.Metrics, opts.Realm)

	var limiter *loginLimiter
	if opts.LoginRateLimit > 0 {
		limiter = newLoginLimiter(opts.LoginRateLimit, opts.LoginRateBurst)
	}

	var handler http.Handler = gate.Middleware(router)
	handler = rateLimitLogin(limiter, logger, opts.Metrics, handler)
	handler = accessLog(logger, opts.Metrics, routeLabel(router), handler)
	handler = requestID(handler)

	return &HTTPServer{address: opts.Address, handler: handler, logger: logger}, nil
}

// Handler returns the fully wrapped handler chain.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP server shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// routeLabel resolves a request to its route template, or "unmatched".
func routeLabel(router *mux.Router) func(r *http.Request) string {
	return func(r *http.Request) string {
		var match mux.RouteMatch
		if router.Match(r, &match) && match.Route != nil {
			if tpl, err := match.Route.GetPathTemplate(); err == nil {
				return tpl
			}
		}
		return "unmatched"
	}
}
