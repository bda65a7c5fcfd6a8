package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// minSecretLength is the minimum HS256 key size accepted.
const minSecretLength = 32

// TokenConfig configures session tokens.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Claims are the verified contents of a session token.
type Claims struct {
	UserID    uuid.UUID
	ExpiresAt time.Time
}

type jwtClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenManager issues and parses HS256 session tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a TokenManager.
func NewTokenManager(config TokenConfig) (*TokenManager, error) {
	if len(config.Secret) < minSecretLength {
		return nil, ErrInvalidSecret
	}
	if config.TTL <= 0 {
		config.TTL = 24 * time.Hour
	}
	return &TokenManager{
		secret: []byte(config.Secret),
		issuer: config.Issuer,
		ttl:    config.TTL,
		now:    time.Now,
	}, nil
}

// Issue creates a token for userID and returns it with its expiry.
func (m *TokenManager) Issue(userID uuid.UUID) (string, time.Time, error) {
	now := m.now().UTC()
	expiresAt := now.Add(m.ttl)

	claims := jwtClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Parse verifies raw and returns its claims.
func (m *TokenManager) Parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	var claims jwtClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad user_id claim", ErrInvalidToken)
	}

	return &Claims{UserID: userID, ExpiresAt: claims.ExpiresAt.Time}, nil
}
