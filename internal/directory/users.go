// Package directory resolves the people a report refers to: the account that
// owns a dataset and the citizens a dataset can be linked to.
package directory

import (
	"context"
	"sync"

	"github.com/icancodefyi/sarthi-ai/internal/model"
	"github.com/icancodefyi/sarthi-ai/internal/repository"
	"go.uber.org/zap"
)

// UserDirectory looks up account profiles. Get returns (nil, nil) for an
// unknown id.
type UserDirectory interface {
	Get(ctx context.Context, userID string) (*model.User, error)
}

// MemoryUsers is a fixed user directory, typically seeded from config
type MemoryUsers struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewMemoryUsers(users []model.User) *MemoryUsers {
	m := &MemoryUsers{users: make(map[string]model.User, len(users))}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *MemoryUsers) Get(_ context.Context, userID string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// Put adds or replaces a user
func (m *MemoryUsers) Put(u model.User) {
	m.mu.Lock()
	m.users[u.ID] = u
	m.mu.Unlock()
}

// SQLUsers is a user directory persisted in the users table
type SQLUsers struct {
	repo *repository.UserRepo
}

func NewSQLUsers(repo *repository.UserRepo) *SQLUsers {
	return &SQLUsers{repo: repo}
}

// Seed upserts the given users, so configured accounts always exist
func (s *SQLUsers) Seed(ctx context.Context, users []model.User) error {
	for i := range users {
		if err := s.repo.Upsert(ctx, &users[i]); err != nil {
			return err
		}
	}
	zap.L().Info("User directory seeded", zap.Int("users", len(users)))
	return nil
}

func (s *SQLUsers) Get(ctx context.Context, userID string) (*model.User, error) {
	return s.repo.GetByID(ctx, userID)
}
