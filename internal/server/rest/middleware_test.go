package rest

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/jwtkeeper/internal/server/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestRequireAuthority(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RequireAuthority("admin")(ok)

	tests := []struct {
		name string
		id   *Identity
		want int
	}{
		{name: "anonymous", want: http.StatusUnauthorized},
		{name: "missing authority", id: &Identity{Subject: "alice", Authorities: []string{"user"}}, want: http.StatusForbidden},
		{name: "granted", id: &Identity{Subject: "root", Authorities: []string{"user", "admin"}}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.id != nil {
				req = req.WithContext(withIdentity(req.Context(), tt.id))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestLoginLimiter_PerClient(t *testing.T) {
	l := newLoginLimiter(1, 1)
	now := time.Now()

	assert.True(t, l.allow("10.0.0.1", now))
	assert.False(t, l.allow("10.0.0.1", now))
	assert.True(t, l.allow("10.0.0.2", now), "clients are limited independently")
	assert.True(t, l.allow("10.0.0.1", now.Add(time.Second)), "tokens refill")
}

func TestLoginLimiter_EvictsIdleClients(t *testing.T) {
	l := newLoginLimiter(1, 1)
	now := time.Now()

	l.allow("10.0.0.1", now)
	l.allow("10.0.0.2", now.Add(clientIdleTimeout+time.Minute))

	assert.Len(t, l.clients, 1)
	assert.Contains(t, l.clients, "10.0.0.2")
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:5555"
	assert.Equal(t, "192.0.2.7", clientIP(r))

	r.RemoteAddr = "weird"
	assert.Equal(t, "weird", clientIP(r))
}

func TestAccessLog_RecoversPanic(t *testing.T) {
	route := func(*http.Request) string { return "/x" }

	t.Run("before any write", func(t *testing.T) {
		h := accessLog(discardLogger(), metrics.New(prometheus.NewRegistry()), route,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") }))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "internal error")
	})

	t.Run("after headers were written", func(t *testing.T) {
		h := accessLog(discardLogger(), metrics.New(prometheus.NewRegistry()), route,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusAccepted)
				_, _ = w.Write([]byte("partial"))
				panic("boom")
			}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "partial", rec.Body.String())
	})
}

func TestStatusRecorder_FirstWriteWins(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}

	_, _ = rec.Write([]byte("ok"))
	rec.WriteHeader(http.StatusInternalServerError)

	assert.True(t, rec.written)
	assert.Equal(t, http.StatusOK, rec.status)
}
