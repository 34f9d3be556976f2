package domain

import "errors"

// Account flow.
var (
	ErrMissingField       = errors.New("username and password are required")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
)

// Tokens and authentication.
var (
	ErrUnauthenticated       = errors.New("authentication required")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrMissingSigningKey     = errors.New("signing key is not configured")
)

// Chat pipeline.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrThrottled          = errors.New("too many requests, please wait a moment between questions")
	ErrUpstreamThrottled  = errors.New("model quota exceeded, please retry in a few seconds")
	ErrGenerationFailed   = errors.New("generation request failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
