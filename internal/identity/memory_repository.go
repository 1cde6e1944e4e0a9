package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// memoryUserRepository backs the identity provider when no Postgres DSN is
// configured. It reports pgx.ErrNoRows for misses so callers do not need to
// care which implementation they hold.
type memoryUserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*User
}

// NewMemoryUserRepository builds an empty in-memory repository.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{byEmail: make(map[string]*User)}
}

func (r *memoryUserRepository) Create(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	copied := *user
	r.byEmail[user.Email] = &copied
	return nil
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepository) TouchLastLogin(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.byEmail {
		if user.ID == id {
			now := time.Now()
			user.LastLoginAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}
