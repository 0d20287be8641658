package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/indumine/catalog-auth/internal/core/domain"
)

func TestSeedDemoUsers_Idempotent(t *testing.T) {
	repo := newStubUserRepo()
	hasher := NewPasswordHasher(bcrypt.MinCost)

	n, err := SeedDemoUsers(context.Background(), repo, hasher, DemoUsers, zerolog.Nop())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != len(DemoUsers) {
		t.Fatalf("expected %d users created, got %d", len(DemoUsers), n)
	}

	n, err = SeedDemoUsers(context.Background(), repo, hasher, DemoUsers, zerolog.Nop())
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if n != 0 || len(repo.users) != len(DemoUsers) {
		t.Fatalf("second run must create nothing, created=%d total=%d", n, len(repo.users))
	}
}

func TestSeedDemoUsers_CanLogIn(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)

	if _, err := SeedDemoUsers(context.Background(), repo, svc.hasher, DemoUsers, zerolog.Nop()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := svc.Login(context.Background(), "admin@weg.com", "1234")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if res.Claims.Role != domain.RoleAdmin {
		t.Fatalf("expected admin, got %s", res.Claims.Role)
	}
}

func TestSeedDemoUsers_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("down")

	_, err := SeedDemoUsers(context.Background(), repo, NewPasswordHasher(bcrypt.MinCost), DemoUsers, zerolog.Nop())
	if err == nil {
		t.Fatalf("expected error")
	}
}
