package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/indumine/catalog-auth/internal/core/domain"
	"github.com/indumine/catalog-auth/internal/pkg/metrics"
)

// TokenConfig is the process-wide signing configuration. It is read once at
// startup and never changed afterwards.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// JWTService issues and verifies HS256-signed bearer tokens.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// tokenClaims is the wire form of domain.Claims.
type tokenClaims struct {
	UserID            string      `json:"id"`
	Username          string      `json:"username"`
	Email             string      `json:"email"`
	Role              domain.Role `json:"role"`
	AllowedCategories []string    `json:"allowedCategories"`
	jwt.RegisteredClaims
}

var errEmptySecret = errors.New("token service: signing secret is empty")

// NewTokenService validates cfg and returns a JWTService. A non-positive TTL
// falls back to 24 hours.
func NewTokenService(cfg TokenConfig) (*JWTService, error) {
	if cfg.Secret == "" {
		return nil, errEmptySecret
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTService{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

// Issue signs claims with an expiry of now + TTL. The returned claims carry
// the issued-at and expiry timestamps as encoded in the token.
func (s *JWTService) Issue(claims domain.Claims) (string, domain.Claims, error) {
	now := s.now()
	iat := jwt.NewNumericDate(now)
	exp := jwt.NewNumericDate(now.Add(s.ttl))

	categories := claims.AllowedCategories
	if categories == nil {
		categories = []string{}
	}

	tc := tokenClaims{
		UserID:            claims.UserID,
		Username:          claims.Username,
		Email:             claims.Email,
		Role:              claims.Role,
		AllowedCategories: categories,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			Issuer:    s.issuer,
			IssuedAt:  iat,
			ExpiresAt: exp,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(s.secret)
	if err != nil {
		return "", domain.Claims{}, err
	}

	claims.AllowedCategories = categories
	claims.IssuedAt = iat.Time
	claims.ExpiresAt = exp.Time
	return signed, claims, nil
}

// Verify parses token and checks signature, expiry and claim shape.
func (s *JWTService) Verify(token string) (*domain.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var tc tokenClaims
	_, err := jwt.ParseWithClaims(token, &tc, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, s.classify(err)
	}

	if tc.UserID == "" || !tc.Role.Valid() {
		metrics.TokenVerificationsTotal.WithLabelValues("malformed").Inc()
		return nil, domain.ErrTokenMalformed
	}

	metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
	claims := &domain.Claims{
		UserID:            tc.UserID,
		Username:          tc.Username,
		Email:             tc.Email,
		Role:              tc.Role,
		AllowedCategories: tc.AllowedCategories,
	}
	if tc.IssuedAt != nil {
		claims.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		claims.ExpiresAt = tc.ExpiresAt.Time
	}
	if claims.AllowedCategories == nil {
		claims.AllowedCategories = []string{}
	}
	return claims, nil
}

func (s *JWTService) classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		metrics.TokenVerificationsTotal.WithLabelValues("expired").Inc()
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		metrics.TokenVerificationsTotal.WithLabelValues("invalid_signature").Inc()
		return domain.ErrTokenInvalidSignature
	default:
		metrics.TokenVerificationsTotal.WithLabelValues("malformed").Inc()
		return domain.ErrTokenMalformed
	}
}
