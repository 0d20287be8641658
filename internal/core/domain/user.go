package domain

import (
	"strings"
	"time"
)

// User is the only persisted entity: an identity with a hashed secret, a role
// and an optional per-user category override.
type User struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Role              Role       `json:"role"`
	AllowedCategories []string   `json:"allowedCategories"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	LastLoginAt       *time.Time `json:"lastLoginAt,omitempty"`
}

// Principal returns the authorization view of the user.
func (u *User) Principal() Principal {
	return Principal{Role: u.Role, AllowedCategories: u.AllowedCategories}
}

// NormalizeEmail lowercases and trims an email so lookups and the unique
// index agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername trims surrounding whitespace.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// ValidateUsername rejects usernames that could be mistaken for an email.
// Logins route identifiers containing "@" to the email index.
func ValidateUsername(username string) error {
	if strings.Contains(username, "@") {
		return Validationf("username must not contain '@'")
	}
	return nil
}

// IsEmailIdentifier reports whether a login identifier names an email.
func IsEmailIdentifier(identifier string) bool {
	return strings.Contains(identifier, "@")
}

// NormalizeCategories lowercases, trims and deduplicates category ids while
// keeping their first-seen order. Blank entries are dropped.
func NormalizeCategories(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, c := range in {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Claims is the payload carried by a bearer token. AllowedCategories holds the
// resolved set, not the raw per-user override.
type Claims struct {
	UserID            string    `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	Role              Role      `json:"role"`
	AllowedCategories []string  `json:"allowedCategories"`
	IssuedAt          time.Time `json:"issuedAt"`
	ExpiresAt         time.Time `json:"expiresAt"`
}

// Principal returns the authorization view of the token holder. The
// categories are already resolved, so they act as the override.
func (c *Claims) Principal() Principal {
	return Principal{Role: c.Role, AllowedCategories: c.AllowedCategories}
}

// ClaimsFor builds the token payload for a user.
func ClaimsFor(u *User) Claims {
	return Claims{
		UserID:            u.ID,
		Username:          u.Username,
		Email:             u.Email,
		Role:              u.Role,
		AllowedCategories: ResolveAccessibleCategories(u.Principal()),
	}
}
