package rest

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/jwtkeeper/internal/common"
	"github.com/dmitrijs2005/jwtkeeper/internal/logging"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/metrics"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.written {
		return
	}
	r.status = code
	r.written = true
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}

// requestID reuses a caller supplied X-Request-ID or generates one, echoes
// it in the response and adds it to the request logger.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(common.RequestIDHeaderName)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeaderName, id)
		r.Header.Set(common.RequestIDHeaderName, id)
		next.ServeHTTP(w, r)
	})
}

// accessLog logs every request and records it in the HTTP metrics. route
// maps a request to a low-cardinality label.
func accessLog(l logging.Logger, m *metrics.Metrics, route func(r *http.Request) string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if p := recover(); p != nil {
				l.Error(r.Context(), "panic serving request", "path", r.URL.Path, "panic", p)
				if !rec.written {
					writeError(rec, http.StatusInternalServerError, "internal error")
				}
			}

			elapsed := time.Since(start)
			m.RecordHTTPRequest(r.Method, route(r), strconv.Itoa(rec.status), elapsed)
			l.Info(r.Context(), "request",
				"request_id", r.Header.Get(common.RequestIDHeaderName),
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", elapsed.String(),
			)
		}()

		next.ServeHTTP(rec, r)
	})
}

// loginLimiter rate limits credential checks per client IP.
type loginLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	clients  map[string]*client
	lastScan time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const clientIdleTimeout = 10 * time.Minute

func newLoginLimiter(perSecond float64, burst int) *loginLimiter {
	if burst < 1 {
		burst = 1
	}
	return &loginLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		clients: make(map[string]*client),
	}
}

func (l *loginLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastScan) > clientIdleTimeout {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > clientIdleTimeout {
				delete(l.clients, k)
			}
		}
		l.lastScan = now
	}

	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// rateLimitLogin rejects requests carrying Basic credentials with 429 once
// a client IP exceeds its budget, whatever the path. Those are the only
// requests that reach a password check. A limiter of nil disables it.
func rateLimitLogin(lim *loginLimiter, l logging.Logger, m *metrics.Metrics, next http.Handler) http.Handler {
	if lim == nil {
		return next
	}
	isBasic := hasScheme(common.BasicScheme)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isBasic(r) && !lim.allow(clientIP(r), time.Now()) {
			m.RecordRateLimitHit()
			l.Warn(r.Context(), "login rate limit exceeded", "client", clientIP(r))
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RequireAuthority responds 403 unless the gate attached an identity
// holding authority.
func RequireAuthority(authority string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if !id.HasAuthority(authority) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
