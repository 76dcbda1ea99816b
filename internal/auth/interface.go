package auth

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned when a connection credential is missing,
// malformed, expired, or refers to a deactivated user.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is a user record owned by the auth service. The chat core
// reads it, never writes it.
type Identity struct {
	UserID   string
	Email    string
	Username string
	IsActive bool
}

// IdentityStore resolves user ids to identities.
type IdentityStore interface {
	GetByID(ctx context.Context, userID string) (*Identity, error)
}

// Authenticator validates connection credentials and resolves them to
// an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Identity, error)
}
