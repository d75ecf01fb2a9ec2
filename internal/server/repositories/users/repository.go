// Package users provides the credential store: lookups of accounts by
// username plus the writes needed to provision them.
package users

import (
	"context"

	"github.com/dmitrijs2005/jwtkeeper/internal/server/models"
)

// Repository is the credential store. FindByUsername returns
// common.ErrorNotFound for unknown users; any other error is transient.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	AddAuthority(ctx context.Context, userID, authority string) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}
