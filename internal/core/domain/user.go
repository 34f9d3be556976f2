package domain

import "time"

// User models a registered account. Username is case-sensitive and never
// changes after creation.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuthResult is what registration and login hand back to the caller.
type AuthResult struct {
	User  *User
	Token string
}
