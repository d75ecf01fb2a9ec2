package repomanager

import (
	"context"

	"github.com/dmitrijs2005/jwtkeeper/internal/server/repositories/users"
)

// RepositoryManager vends the credential store and owns its backing
// resources.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	// WithUsersTx runs fn with a users.Repository whose writes commit
	// together or not at all.
	WithUsersTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error
	Close() error
}
