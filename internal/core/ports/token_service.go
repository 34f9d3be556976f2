package ports

import "github.com/gccn-chatbot/session-service/internal/core/domain"

// TokenStatus is the outcome of verifying a session token.
type TokenStatus int

const (
	TokenValid TokenStatus = iota
	TokenExpired
	TokenInvalidSignature
	TokenMalformed
)

func (s TokenStatus) String() string {
	switch s {
	case TokenValid:
		return "valid"
	case TokenExpired:
		return "expired"
	case TokenInvalidSignature:
		return "invalid_signature"
	default:
		return "malformed"
	}
}

// Verification is the tagged result of TokenService.Verify. UserID is only
// set when Status is TokenValid.
type Verification struct {
	Status TokenStatus
	UserID string
}

// Err maps a non-valid verification to its domain error.
func (v Verification) Err() error {
	switch v.Status {
	case TokenValid:
		return nil
	case TokenExpired:
		return domain.ErrTokenExpired
	case TokenInvalidSignature:
		return domain.ErrTokenInvalidSignature
	default:
		return domain.ErrTokenMalformed
	}
}

// TokenService issues and verifies stateless session tokens.
type TokenService interface {
	Issue(userID string) (string, error)
	Verify(token string) Verification
}
