package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the token lifetime when none is configured
const DefaultTokenTTL = 24 * time.Hour

// Identity is the user data embedded into a token at login
type Identity struct {
	UserID    string
	Username  string
	Email     string
	Name      string
	Role      Role
	RoleLevel int
}

// Claims is the verified content of a token. Timestamps are Unix seconds.
type Claims struct {
	Identity
	IssuedAt  int64
	ExpiresAt int64
}

// tokenClaims is the JWT payload layout
type tokenClaims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Role      Role   `json:"role"`
	RoleLevel int    `json:"role_level"`
	jwt.RegisteredClaims
}

// TokenConfig configures a TokenService
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Clock  Clock
}

// TokenService issues and verifies HS256-signed tokens.
// It holds no mutable state and is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	clock  Clock
}

// NewTokenService creates a token service. An empty secret is accepted so the
// process can start; Issue and Verify then fail with ErrSecretNotConfigured.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	if ttl < time.Second {
		return nil, fmt.Errorf("token ttl must be at least 1s, got %s", ttl)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		clock:  clock,
	}, nil
}

// TTL returns the configured token lifetime
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for id, valid from now until now+TTL
func (s *TokenService) Issue(id Identity) (string, *Claims, error) {
	if len(s.secret) == 0 {
		return "", nil, ErrSecretNotConfigured
	}

	now := s.clock.Now().Unix()
	exp := now + int64(s.ttl/time.Second)

	payload := tokenClaims{
		UserID:    id.UserID,
		Username:  id.Username,
		Email:     id.Email,
		Name:      id.Name,
		Role:      id.Role,
		RoleLevel: id.RoleLevel,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(time.Unix(now, 0)),
			ExpiresAt: jwt.NewNumericDate(time.Unix(exp, 0)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, &Claims{Identity: id, IssuedAt: now, ExpiresAt: exp}, nil
}

// Verify checks the signature and expiry of token and returns its claims.
// Failures are *Error values tagged malformed_token, bad_signature or expired.
func (s *TokenService) Verify(token string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, ErrSecretNotConfigured
	}
	if token == "" {
		return nil, ErrNoToken
	}

	var payload tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &payload, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		return nil, classify(err)
	}
	if !parsed.Valid {
		return nil, newError(ReasonMalformedToken, errors.New("token not valid"))
	}

	return payload.claims(), nil
}

func (p *tokenClaims) claims() *Claims {
	c := &Claims{
		Identity: Identity{
			UserID:    p.UserID,
			Username:  p.Username,
			Email:     p.Email,
			Name:      p.Name,
			Role:      p.Role,
			RoleLevel: p.RoleLevel,
		},
	}
	if p.IssuedAt != nil {
		c.IssuedAt = p.IssuedAt.Unix()
	}
	if p.ExpiresAt != nil {
		c.ExpiresAt = p.ExpiresAt.Unix()
	}
	return c
}

// classify maps jwt parse errors onto the token failure reasons. The parser
// checks the signature before the claims, so a forged token that is also
// expired reports bad_signature.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return newError(ReasonMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return newError(ReasonBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return newError(ReasonExpired, err)
	default:
		return newError(ReasonMalformedToken, err)
	}
}
