// Package auth adapts stored users into authenticated principals and issues
// and verifies the RS256 JWTs that carry them between requests.
package auth

import (
	"errors"
	"slices"

	"github.com/dmitrijs2005/jwtkeeper/internal/server/models"
)

var ErrNilUser = errors.New("auth: nil user")

// Principal is the authenticated view of a stored user. It lives for one
// request and is never persisted.
type Principal struct {
	user *models.User
}

// Adapt wraps u as a Principal.
func Adapt(u *models.User) (*Principal, error) {
	if u == nil {
		return nil, ErrNilUser
	}
	return &Principal{user: u}, nil
}

func (p *Principal) Username() string { return p.user.Username }

func (p *Principal) PasswordHash() string { return p.user.PasswordHash }

// Authorities returns a copy of the granted authorities.
func (p *Principal) Authorities() []string { return slices.Clone(p.user.Authorities) }

func (p *Principal) IsEnabled() bool { return p.user.Enabled }

func (p *Principal) IsAccountNonLocked() bool { return !p.user.Locked }

// IsAccountNonExpired is always true: accounts carry no expiry.
func (p *Principal) IsAccountNonExpired() bool { return true }

// IsCredentialsNonExpired is always true: passwords carry no expiry.
func (p *Principal) IsCredentialsNonExpired() bool { return true }
