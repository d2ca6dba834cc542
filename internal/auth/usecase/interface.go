package usecase

import (
	"context"

	authdomain "cubent-backend/internal/auth/domain"
	"cubent-backend/pkg/identity"
)

// AuthUsecase resolves browser sessions through the identity provider and
// maintains the local user mirror.
type AuthUsecase interface {
	// Authenticate verifies either a provider session cookie or a bearer ID
	// token and returns the provider identity. Exactly one of the two
	// credentials is expected to be non-empty.
	Authenticate(ctx context.Context, sessionCookie, bearerToken string) (*identity.Identity, error)

	// SyncUser finds or creates the local user row for a verified identity,
	// refreshing profile fields on every call.
	SyncUser(ctx context.Context, ident *identity.Identity) (*authdomain.User, error)

	// UserForIdentity looks up the local row for a verified identity without
	// creating one. Returns (nil, nil) when no row exists.
	UserForIdentity(ident *identity.Identity) (*authdomain.User, error)

	// AcceptTerms stamps terms acceptance for the user.
	AcceptTerms(userID string) error

	// GenerateSessionToken mints the signed session token handed to paired
	// devices.
	GenerateSessionToken(user *authdomain.User) (string, error)
}
