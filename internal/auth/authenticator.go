package auth

import (
	"context"

	"github.com/athenalobo/muditha-platform/pkg/jwt"
	"github.com/athenalobo/muditha-platform/pkg/log"
)

// TokenAuthenticator validates bearer tokens locally and checks the
// user is still active. Rejection happens before any session state is
// created, so a failed connection leaves nothing behind.
type TokenAuthenticator struct {
	manager    *jwt.Manager
	identities IdentityStore
}

// NewTokenAuthenticator creates a new token authenticator.
func NewTokenAuthenticator(manager *jwt.Manager, identities IdentityStore) *TokenAuthenticator {
	return &TokenAuthenticator{manager: manager, identities: identities}
}

// Authenticate validates a bearer token and resolves the identity.
func (a *TokenAuthenticator) Authenticate(ctx context.Context, token string) (*Identity, error) {
	l := log.Ctx(ctx)

	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := a.manager.ValidateToken(token)
	if err != nil {
		l.Debug().Err(err).Msg("token validation failed")
		return nil, ErrUnauthenticated
	}

	identity, err := a.identities.GetByID(ctx, claims.UserID)
	if err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, claims.UserID).Msg("identity lookup failed")
		return nil, ErrUnauthenticated
	}
	if !identity.IsActive {
		l.Debug().Str(log.FieldUserID, claims.UserID).Msg("rejected deactivated user")
		return nil, ErrUnauthenticated
	}

	// Prefer token claims for display fields when the store has none.
	if identity.Username == "" {
		identity.Username = claims.Username
	}
	if identity.Email == "" {
		identity.Email = claims.Email
	}

	return identity, nil
}
