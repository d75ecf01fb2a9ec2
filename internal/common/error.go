// Package common defines shared constants and sentinel errors used across
// jwtkeeper layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Credential errors. Unknown usernames and wrong passwords are both
	// reported to clients as ErrorUnauthorized.
	ErrBadCredentials     = errors.New("bad credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrAccountLocked      = errors.New("account locked")
	ErrAccountExpired     = errors.New("account expired")
	ErrCredentialsExpired = errors.New("credentials expired")

	// Token errors.
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenIssuerMismatch   = errors.New("token issuer mismatch")
	ErrUnsupportedAlgorithm  = errors.New("unsupported signing algorithm")
	ErrInvalidToken          = errors.New("invalid token")

	// Startup errors. Fatal: the server must not start.
	ErrConfiguration = errors.New("configuration error")
)

// Reason returns a short stable label for an authentication error, suitable
// for logs and metric labels. Unknown errors map to "internal".
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrorNotFound):
		return "not_found"
	case errors.Is(err, ErrBadCredentials):
		return "bad_credentials"
	case errors.Is(err, ErrAccountDisabled):
		return "account_disabled"
	case errors.Is(err, ErrAccountLocked):
		return "account_locked"
	case errors.Is(err, ErrAccountExpired):
		return "account_expired"
	case errors.Is(err, ErrCredentialsExpired):
		return "credentials_expired"
	case errors.Is(err, ErrUnsupportedAlgorithm):
		return "unsupported_algorithm"
	case errors.Is(err, ErrTokenMalformed):
		return "token_malformed"
	case errors.Is(err, ErrTokenSignatureInvalid):
		return "token_signature_invalid"
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrTokenIssuerMismatch):
		return "token_issuer_mismatch"
	case errors.Is(err, ErrInvalidToken):
		return "token_invalid"
	case errors.Is(err, ErrorForbidden):
		return "forbidden"
	case errors.Is(err, ErrorUnauthorized):
		return "unauthorized"
	default:
		return "internal"
	}
}
