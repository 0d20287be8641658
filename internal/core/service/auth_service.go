package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/indumine/catalog-auth/internal/core/domain"
	"github.com/indumine/catalog-auth/internal/core/ports"
	"github.com/indumine/catalog-auth/internal/pkg/metrics"
)

// AuthService implements registration, login, token introspection and user
// administration on top of the credential store.
type AuthService struct {
	repo   ports.UserRepository
	hasher *PasswordHasher
	tokens ports.TokenService
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(repo ports.UserRepository, hasher *PasswordHasher, tokens ports.TokenService, log zerolog.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
}

// Register creates a user and returns a token for it.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	username := domain.NormalizeUsername(in.Username)
	email := domain.NormalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		metrics.RegistrationsTotal.WithLabelValues("validation_error").Inc()
		return nil, domain.Validationf("username, email and password are required")
	}

	if err := domain.ValidateUsername(username); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("validation_error").Inc()
		return nil, err
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("validation_error").Inc()
		return nil, err
	}

	if err := s.ensureAvailable(ctx, email, username); err != nil {
		return nil, s.registerFailure(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, s.registerFailure(err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:          username,
		Email:             email,
		PasswordHash:      hash,
		Role:              role,
		AllowedCategories: []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		// The store's unique indexes decide concurrent registrations.
		return nil, s.registerFailure(err)
	}

	result, err := s.issue(created)
	if err != nil {
		return nil, s.registerFailure(err)
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")
	return result, nil
}

// ensureAvailable rejects an email or username that is already taken before
// paying for a bcrypt hash.
func (s *AuthService) ensureAvailable(ctx context.Context, email, username string) error {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return domain.ErrDuplicateIdentity
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check email: %w", err)
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return domain.ErrDuplicateIdentity
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check username: %w", err)
	}
	return nil
}

func (s *AuthService) registerFailure(err error) error {
	switch {
	case errors.Is(err, domain.ErrDuplicateIdentity):
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		return domain.ErrDuplicateIdentity
	case errors.Is(err, domain.ErrValidation):
		metrics.RegistrationsTotal.WithLabelValues("validation_error").Inc()
		return err
	default:
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("register: %w", err)
	}
}

// Login authenticates by email (or username) and password. An identifier
// containing "@" is only ever matched against emails. Unknown identities and
// wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*ports.AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("validation_error").Inc()
		return nil, domain.Validationf("email and password are required")
	}

	user, err := s.lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.hasher.burn(password)
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to update last login")
	} else {
		user.LastLoginAt = &now
	}

	result, err := s.issue(user)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return result, nil
}

func (s *AuthService) lookup(ctx context.Context, identifier string) (*domain.User, error) {
	if domain.IsEmailIdentifier(identifier) {
		return s.repo.FindByEmail(ctx, identifier)
	}
	return s.repo.FindByUsername(ctx, identifier)
}

func (s *AuthService) issue(user *domain.User) (*ports.AuthResult, error) {
	token, claims, err := s.tokens.Issue(domain.ClaimsFor(user))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &ports.AuthResult{Token: token, User: user, Claims: claims}, nil
}

// Verify returns the claims of a valid token.
func (s *AuthService) Verify(_ context.Context, token string) (*domain.Claims, error) {
	return s.tokens.Verify(token)
}

// Refresh issues a new token for the holder of a valid one. Role and
// categories are re-read from the store, so admin changes take effect and a
// deleted user cannot refresh.
func (s *AuthService) Refresh(ctx context.Context, claims *domain.Claims) (*ports.AuthResult, error) {
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.TokenRefreshesTotal.WithLabelValues("unknown_user").Inc()
			return nil, fmt.Errorf("%w: user no longer exists", domain.ErrUnauthenticated)
		}
		metrics.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("refresh: %w", err)
	}

	result, err := s.issue(user)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("refresh: %w", err)
	}
	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
	return result, nil
}

// ChangePassword replaces the caller's password after checking the current
// one. Tokens issued before the change stay valid until they expire.
func (s *AuthService) ChangePassword(ctx context.Context, actor *domain.Claims, current, next string) error {
	if current == "" || next == "" {
		metrics.PasswordChangesTotal.WithLabelValues("validation_error").Inc()
		return domain.Validationf("currentPassword and newPassword are required")
	}

	user, err := s.repo.FindByID(ctx, actor.UserID)
	if err != nil {
		metrics.PasswordChangesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("change password: %w", err)
	}
	if !s.hasher.Verify(current, user.PasswordHash) {
		metrics.PasswordChangesTotal.WithLabelValues("invalid_credentials").Inc()
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			metrics.PasswordChangesTotal.WithLabelValues("validation_error").Inc()
			return err
		}
		metrics.PasswordChangesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("change password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		metrics.PasswordChangesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("change password: %w", err)
	}

	metrics.PasswordChangesTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("password changed")
	return nil
}

// UsernameAvailable reports whether username can still be registered.
func (s *AuthService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	username = domain.NormalizeUsername(username)
	if username == "" {
		return false, domain.Validationf("username is required")
	}
	if err := domain.ValidateUsername(username); err != nil {
		return false, err
	}
	return s.available(s.repo.FindByUsername(ctx, username))
}

// EmailAvailable reports whether email can still be registered.
func (s *AuthService) EmailAvailable(ctx context.Context, email string) (bool, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return false, domain.Validationf("email is required")
	}
	return s.available(s.repo.FindByEmail(ctx, email))
}

func (s *AuthService) available(_ *domain.User, err error) (bool, error) {
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, domain.ErrNotFound):
		return true, nil
	default:
		return false, fmt.Errorf("check availability: %w", err)
	}
}

// Logout is stateless: the client discards its token, which stays valid until
// it expires.
func (s *AuthService) Logout(_ context.Context, claims *domain.Claims) error {
	s.log.Info().Str("user_id", claims.UserID).Msg("user logged out")
	return nil
}

// Permissions describes the caller's role entry and resolved categories.
func (s *AuthService) Permissions(claims *domain.Claims) (*ports.PermissionsView, error) {
	policy, ok := domain.PolicyFor(claims.Role)
	if !ok {
		return nil, domain.Authorize(claims.Principal(), domain.ActionView, "").Err()
	}
	return &ports.PermissionsView{
		Role:                 claims.Role,
		Policy:               policy,
		AccessibleCategories: domain.ResolveAccessibleCategories(claims.Principal()),
	}, nil
}

// ListUsers returns every user; the caller must be allowed to manage users.
func (s *AuthService) ListUsers(ctx context.Context, actor *domain.Claims) ([]*domain.User, error) {
	if err := domain.Authorize(actor.Principal(), domain.ActionManageUsers, "").Err(); err != nil {
		return nil, err
	}

	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	metrics.AdminActionsTotal.WithLabelValues("list").Inc()
	return users, nil
}

// GetUser returns one user without its password hash; the caller must be
// allowed to manage users.
func (s *AuthService) GetUser(ctx context.Context, actor *domain.Claims, id string) (*domain.User, error) {
	if err := domain.Authorize(actor.Principal(), domain.ActionManageUsers, "").Err(); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.PasswordHash = ""
	metrics.AdminActionsTotal.WithLabelValues("get").Inc()
	return user, nil
}

// UpdateUserAccess changes a user's role and/or category override. Tokens
// already issued to that user keep their old claims until they expire.
func (s *AuthService) UpdateUserAccess(ctx context.Context, actor *domain.Claims, id string, in ports.UpdateAccessInput) (*domain.User, error) {
	if err := domain.Authorize(actor.Principal(), domain.ActionManageUsers, "").Err(); err != nil {
		return nil, err
	}
	if in.Role == nil && in.AllowedCategories == nil {
		return nil, domain.Validationf("role or allowedCategories must be provided")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	role := existing.Role
	if in.Role != nil {
		if strings.TrimSpace(*in.Role) == "" {
			return nil, domain.Validationf("role must not be empty")
		}
		if role, err = domain.ParseRole(*in.Role); err != nil {
			return nil, err
		}
	}

	categories := existing.AllowedCategories
	if in.AllowedCategories != nil {
		categories = domain.NormalizeCategories(in.AllowedCategories)
		if err := domain.ValidateCategories(categories); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.UpdateAccess(ctx, id, role, categories)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	metrics.AdminActionsTotal.WithLabelValues("update").Inc()
	s.log.Info().
		Str("actor_id", actor.UserID).
		Str("user_id", id).
		Str("role", string(role)).
		Strs("allowed_categories", categories).
		Msg("user access updated")
	return updated, nil
}

// DeleteUser permanently removes a user.
func (s *AuthService) DeleteUser(ctx context.Context, actor *domain.Claims, id string) error {
	if err := domain.Authorize(actor.Principal(), domain.ActionManageUsers, "").Err(); err != nil {
		return err
	}
	if id == actor.UserID {
		return domain.Validationf("administrators cannot delete their own account")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	metrics.AdminActionsTotal.WithLabelValues("delete").Inc()
	s.log.Info().Str("actor_id", actor.UserID).Str("user_id", id).Msg("user deleted")
	return nil
}
