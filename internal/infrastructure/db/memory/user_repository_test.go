package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/indumine/catalog-auth/internal/core/domain"
)

func newUser(username, email string) *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$04$hash",
		Role:         domain.RoleGuest,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()

	created, err := r.Create(ctx, newUser("alice", "alice@x.com"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected id")
	}

	if _, err := r.FindByEmail(ctx, "ALICE@x.com "); err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if _, err := r.FindByUsername(ctx, " alice "); err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if _, err := r.FindByUsername(ctx, "alice@x.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("username lookup must not match emails, got %v", err)
	}
	if _, err := r.FindByID(ctx, "nope"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_EmailLookupIgnoresUsernames(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()

	mallory, _ := r.Create(ctx, newUser("Bob@X.com", "mallory@x.com"))
	bob, _ := r.Create(ctx, newUser("bob", "bob@x.com"))

	got, err := r.FindByEmail(ctx, "Bob@X.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if got.ID != bob.ID || got.ID == mallory.ID {
		t.Fatalf("expected bob, got %+v", got)
	}
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()
	a, _ := r.Create(ctx, newUser("a", "a@x.com"))

	if err := r.UpdatePassword(ctx, a.ID, "$2a$04$other"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	got, _ := r.FindByID(ctx, a.ID)
	if got.PasswordHash != "$2a$04$other" {
		t.Fatalf("hash not replaced: %q", got.PasswordHash)
	}
	if err := r.UpdatePassword(ctx, "nope", "$2a$04$x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := r.UpdatePassword(ctx, a.ID, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUserRepository_Duplicates(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()
	if _, err := r.Create(ctx, newUser("alice", "alice@x.com")); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := r.Create(ctx, newUser("other", "alice@x.com")); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
	if _, err := r.Create(ctx, newUser("alice", "other@x.com")); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected duplicate username, got %v", err)
	}
}

func TestUserRepository_ConcurrentCreate(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Create(ctx, newUser("race", "race@x.com")); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if ok != 1 {
		t.Fatalf("exactly one concurrent create must win, got %d", ok)
	}
}

func TestUserRepository_NoAliasing(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()
	created, _ := r.Create(ctx, newUser("alice", "alice@x.com"))

	created.Role = domain.RoleAdmin
	got, _ := r.FindByID(ctx, created.ID)
	if got.Role != domain.RoleGuest {
		t.Fatalf("mutating a returned user must not change the store")
	}
}

func TestUserRepository_ListUpdateDelete(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()
	a, _ := r.Create(ctx, newUser("a", "a@x.com"))
	_, _ = r.Create(ctx, newUser("b", "b@x.com"))

	users, err := r.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		if u.PasswordHash != "" {
			t.Fatalf("hash leaked for %s", u.Username)
		}
	}

	ts := time.Now()
	if err := r.UpdateLastLogin(ctx, a.ID, ts); err != nil {
		t.Fatalf("update last login: %v", err)
	}

	updated, err := r.UpdateAccess(ctx, a.ID, domain.RoleSales, []string{"panels"})
	if err != nil {
		t.Fatalf("update access: %v", err)
	}
	if updated.Role != domain.RoleSales || len(updated.AllowedCategories) != 1 || updated.LastLoginAt == nil {
		t.Fatalf("unexpected user: %+v", updated)
	}

	if err := r.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := r.Delete(ctx, a.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// Identity is free again after deletion.
	if _, err := r.Create(ctx, newUser("a", "a@x.com")); err != nil {
		t.Fatalf("recreate: %v", err)
	}
}
