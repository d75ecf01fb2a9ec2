package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/jwtkeeper/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps everything in process memory. Nothing
// survives a restart.
type InMemoryRepositoryManager struct {
	mu    sync.Mutex
	users *users.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{users: users.NewMemoryRepository()}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

// WithUsersTx serialises fn against other transactions. Writes made before
// an error are not undone.
func (m *InMemoryRepositoryManager) WithUsersTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m.users)
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}
