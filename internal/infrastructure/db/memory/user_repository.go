// Package memory provides a process-local user store for development, tests
// and single-instance deployments without MongoDB.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/indumine/catalog-auth/internal/core/domain"
)

type UserRepository struct {
	mu         sync.RWMutex
	byID       map[string]*domain.User
	byEmail    map[string]string
	byUsername map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[string]*domain.User),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}
}

// clone copies u so callers never alias stored state.
func clone(u *domain.User) *domain.User {
	c := *u
	c.AllowedCategories = slices.Clone(u.AllowedCategories)
	if c.AllowedCategories == nil {
		c.AllowedCategories = []string{}
	}
	if u.LastLoginAt != nil {
		ts := *u.LastLoginAt
		c.LastLoginAt = &ts
	}
	return &c
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if user.Username == "" || user.Email == "" || user.PasswordHash == "" {
		return nil, domain.Validationf("username, email and password hash are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, domain.ErrDuplicateIdentity
	}
	if _, ok := r.byUsername[user.Username]; ok {
		return nil, domain.ErrDuplicateIdentity
	}

	stored := clone(user)
	stored.ID = uuid.NewString()
	r.byID[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID
	r.byUsername[stored.Username] = stored.ID
	return clone(stored), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id, ok := r.byEmail[domain.NormalizeEmail(email)]; ok {
		return clone(r.byID[id]), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id, ok := r.byUsername[domain.NormalizeUsername(username)]; ok {
		return clone(r.byID[id]), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	if passwordHash == "" {
		return domain.Validationf("password hash is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *UserRepository) UpdateLastLogin(_ context.Context, id string, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	ts = ts.UTC()
	u.LastLoginAt = &ts
	return nil
}

// ListAll returns every user without password hashes, oldest first.
func (r *UserRepository) ListAll(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		c := clone(u)
		c.PasswordHash = ""
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Username < out[j].Username
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *UserRepository) UpdateAccess(_ context.Context, id string, role domain.Role, categories []string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Role = role
	u.AllowedCategories = slices.Clone(categories)
	u.UpdatedAt = time.Now().UTC()

	c := clone(u)
	c.PasswordHash = ""
	return c, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.byUsername, u.Username)
	delete(r.byID, id)
	return nil
}
