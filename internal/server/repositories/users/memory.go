package users

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/jwtkeeper/internal/common"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps users in process memory. It is used when no
// database DSN is configured.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
	byID  map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[string]*models.User),
		byID:  make(map[string]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return nil, common.ErrorAlreadyExists
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()

	stored := clone(user)
	slices.Sort(stored.Authorities)
	r.users[user.Username] = stored
	r.byID[user.ID] = user.Username
	return user, nil
}

func (r *MemoryRepository) AddAuthority(_ context.Context, userID, authority string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u := r.users[name]
	if !slices.Contains(u.Authorities, authority) {
		u.Authorities = append(u.Authorities, authority)
		slices.Sort(u.Authorities)
	}
	return nil
}

func (r *MemoryRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func clone(u *models.User) *models.User {
	c := *u
	c.Authorities = slices.Clone(u.Authorities)
	return &c
}
