package usecase

import (
	"context"
	"errors"

	authdomain "cubent-backend/internal/auth/domain"
	"cubent-backend/internal/pairing/dto"
	"cubent-backend/pkg/identity"
)

var (
	// ErrUnauthorized means no valid browser session backs the call.
	ErrUnauthorized = errors.New("authentication required")
	// ErrUserNotFound means the session resolves to no local user row.
	ErrUserNotFound = errors.New("user not found")
	// ErrTermsRequired means the user has not accepted the terms of service.
	ErrTermsRequired = errors.New("terms of service must be accepted")
	// ErrTokenNotFound means no live pending login matches; the device is
	// expected to keep polling until its own timeout.
	ErrTokenNotFound = errors.New("token not found or expired")
)

// PairingUsecase implements the device-pairing handshake: a browser session
// approves the pairing, the editor extension polls for the resulting token.
type PairingUsecase interface {
	// InitiateSignIn returns the URL to redirect the browser to: either back
	// to the device's redirect target with a one-time provider ticket (when
	// a session already exists) or into interactive sign-in with a return
	// URL threading state and redirect back to this entry point.
	InitiateSignIn(ctx context.Context, ident *identity.Identity, req *dto.InitiateSignInRequest) (string, error)

	// CompletePairing stores a fresh single-use token for the device after
	// the authenticated browser approves the flow.
	CompletePairing(ctx context.Context, ident *identity.Identity, req *dto.CompletePairingRequest) (*dto.CompletePairingResponse, error)

	// RedeemToken hands the stored token to the device exactly once.
	RedeemToken(deviceID, state string) (string, error)
}

// TokenMinter mints the session token bound into a pending login.
// AuthUsecase satisfies it.
type TokenMinter interface {
	GenerateSessionToken(user *authdomain.User) (string, error)
}

// RedirectPolicy sanitizes caller-supplied redirect targets. The bridge
// usecase satisfies it.
type RedirectPolicy interface {
	SafeRedirect(raw string) string
}
