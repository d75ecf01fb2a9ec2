package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the claims carried by an issued token: sub, iss, iat, exp and
// scope (space separated authorities).
type Claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope,omitempty"`
}

// Authorities splits Scope into individual authorities.
func (c *Claims) Authorities() []string {
	return strings.Fields(c.Scope)
}

// options configures Issuer and Verifier.
type options struct {
	now func() time.Time
}

type Option func(*options)

// WithClock replaces time.Now as the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
