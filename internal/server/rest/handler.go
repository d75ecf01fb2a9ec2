package rest

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/jwtkeeper/internal/logging"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/auth"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/metrics"
)

// TokenIssuer signs tokens for authenticated principals.
type TokenIssuer interface {
	Issue(p *auth.Principal) (string, error)
}

type handler struct {
	issuer  TokenIssuer
	jwks    []byte
	logger  logging.Logger
	metrics *metrics.Metrics
}

type tokenResponse struct {
	Token string `json:"token"`
}

type greetingResponse struct {
	Message     string   `json:"message"`
	Subject     string   `json:"subject"`
	Authorities []string `json:"authorities"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// authenticate issues a token for a caller that presented HTTP Basic
// credentials. Bearer callers cannot mint new tokens here.
func (h *handler) authenticate(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok || id.Method != MethodBasic || id.Principal == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	token, err := h.issuer.Issue(id.Principal)
	if err != nil {
		h.logger.Error(r.Context(), "token issue failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.metrics.RecordTokenIssued()

	h.logger.Info(r.Context(), "token issued", "subject", id.Subject)
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *handler) private(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, greetingResponse{
		Message:     "Hello, " + id.Subject + "!",
		Subject:     id.Subject,
		Authorities: id.Authorities,
	})
}

func (h *handler) admin(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, greetingResponse{
		Message:     "Welcome to the admin area, " + id.Subject + "!",
		Subject:     id.Subject,
		Authorities: id.Authorities,
	})
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (h *handler) keySet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.jwks)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
