package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gccn-chatbot/session-service/internal/core/domain"
	"github.com/gccn-chatbot/session-service/internal/core/ports"
)

// DefaultTokenTTL is the lifetime of every session token.
const DefaultTokenTTL = 7 * 24 * time.Hour

// JWTService issues and verifies HS256 session tokens. It holds no state
// besides the key, so there is no revocation: logout is a client-side discard.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService refuses an empty secret so a misconfigured process cannot start.
func NewJWTService(secret string, ttl time.Duration) (*JWTService, error) {
	if secret == "" {
		return nil, domain.ErrMissingSigningKey
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock replaces the time source. Used by tests.
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

// Issue signs {sub, iat, exp=iat+ttl, jti}. The random jti keeps two tokens
// issued within the same second distinct.
func (s *JWTService) Issue(userID string) (string, error) {
	issuedAt := s.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		ID:        uuid.NewString(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify checks signature and expiry. A token is valid iff the signature
// verifies and now < exp.
func (s *JWTService) Verify(token string) ports.Verification {
	if token == "" {
		return ports.Verification{Status: ports.TokenMalformed}
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ports.Verification{Status: ports.TokenMalformed}
	case errors.Is(err, jwt.ErrTokenExpired):
		return ports.Verification{Status: ports.TokenExpired}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ports.Verification{Status: ports.TokenInvalidSignature}
	default:
		return ports.Verification{Status: ports.TokenMalformed}
	}

	if claims.Subject == "" {
		return ports.Verification{Status: ports.TokenMalformed}
	}
	return ports.Verification{Status: ports.TokenValid, UserID: claims.Subject}
}
