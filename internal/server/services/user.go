// Package services implements the server use cases on top of the
// repositories: authenticating credentials and provisioning users.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dmitrijs2005/jwtkeeper/internal/common"
	"github.com/dmitrijs2005/jwtkeeper/internal/cryptox"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/auth"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/config"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/models"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/repositories/users"
)

type UserService struct {
	repomanager repomanager.RepositoryManager
	cost        int
	// dummyCost is the highest hash cost seen so far; unknown usernames
	// are checked against a dummy hash of that cost.
	dummyCost atomic.Int64
}

func NewUserService(m repomanager.RepositoryManager) *UserService {
	s := &UserService{
		repomanager: m,
		cost:        cryptox.MinCost,
	}
	s.dummyCost.Store(int64(s.cost))
	return s
}

func (s *UserService) observeCost(hash string) {
	c, err := cryptox.Cost(hash)
	if err != nil {
		return
	}
	for {
		cur := s.dummyCost.Load()
		if int64(c) <= cur || s.dummyCost.CompareAndSwap(cur, int64(c)) {
			return
		}
	}
}

// Authenticate checks username and password against the credential store
// and returns the authenticated principal.
//
// Rejections wrap common.ErrorUnauthorized together with the reason
// (ErrorNotFound, ErrBadCredentials, ErrAccountDisabled, ErrAccountLocked,
// ErrAccountExpired, ErrCredentialsExpired). Store failures wrap
// common.ErrorInternal. Account state is only examined after the password
// matched.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*auth.Principal, error) {

	user, err := s.repomanager.Users().FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.CheckDummy(password, int(s.dummyCost.Load()))
			return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	s.observeCost(user.PasswordHash)
	if !cryptox.CheckPassword(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrBadCredentials)
	}

	principal, err := auth.Adapt(user)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	if err := checkAccount(principal); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	return principal, nil
}

func checkAccount(p *auth.Principal) error {
	switch {
	case !p.IsAccountNonLocked():
		return common.ErrAccountLocked
	case !p.IsEnabled():
		return common.ErrAccountDisabled
	case !p.IsAccountNonExpired():
		return common.ErrAccountExpired
	case !p.IsCredentialsNonExpired():
		return common.ErrCredentialsExpired
	}
	return nil
}

// Register hashes password and creates an enabled user with authorities
// in one transaction.
func (s *UserService) Register(ctx context.Context, username, password string, authorities []string) (*models.User, error) {

	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}

	hash, err := cryptox.HashPassword(password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Authorities:  authorities,
		Enabled:      true,
	}

	err = s.repomanager.WithUsersTx(ctx, func(ctx context.Context, repo users.Repository) error {
		user, err = repo.Create(ctx, user)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Seed creates the configured users that do not exist yet and returns how
// many were created. Existing users are left untouched.
func (s *UserService) Seed(ctx context.Context, seeds []config.SeedUser) (int, error) {

	created := 0
	for _, seed := range seeds {
		if !cryptox.IsHash(seed.PasswordHash) {
			return created, fmt.Errorf("%w: seed user %q has no bcrypt hash", common.ErrConfiguration, seed.Username)
		}
		s.observeCost(seed.PasswordHash)

		_, err := s.repomanager.Users().FindByUsername(ctx, seed.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return created, fmt.Errorf("error looking up seed user %q: %w", seed.Username, err)
		}

		user := &models.User{
			Username:     seed.Username,
			PasswordHash: seed.PasswordHash,
			Authorities:  seed.Authorities,
			Enabled:      true,
		}
		err = s.repomanager.WithUsersTx(ctx, func(ctx context.Context, repo users.Repository) error {
			_, err := repo.Create(ctx, user)
			return err
		})
		if err != nil && !errors.Is(err, common.ErrorAlreadyExists) {
			return created, fmt.Errorf("error creating seed user %q: %w", seed.Username, err)
		}
		if err == nil {
			created++
		}
	}

	return created, nil
}
