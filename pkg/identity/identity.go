package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Identity is the provider-side view of a signed-in user.
type Identity struct {
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}

// Provider is the narrow surface of the identity provider the usecases need.
// The real implementation is Firebase Auth; tests substitute a fake.
type Provider interface {
	// VerifySessionCookie resolves a browser session cookie to an identity.
	VerifySessionCookie(ctx context.Context, cookie string) (*Identity, error)
	// VerifyIDToken resolves a bearer ID token to an identity.
	VerifyIDToken(ctx context.Context, idToken string) (*Identity, error)
	// MintTicket creates a short-lived one-time credential the caller
	// exchanges with the provider itself (a Firebase custom token).
	MintTicket(ctx context.Context, providerID string) (string, error)
}

// Client wraps the Firebase Auth admin SDK.
type Client struct {
	authClient *auth.Client
}

// NewClient creates an identity client using the provided credentials file.
func NewClient(credentialsFile string) (*Client, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth client: %w", err)
	}

	zap.L().Info("Identity client initialized")
	return &Client{authClient: authClient}, nil
}

func (c *Client) VerifySessionCookie(ctx context.Context, cookie string) (*Identity, error) {
	token, err := c.authClient.VerifySessionCookie(ctx, cookie)
	if err != nil {
		return nil, fmt.Errorf("invalid session cookie: %w", err)
	}
	return c.lookup(ctx, token.UID)
}

func (c *Client) VerifyIDToken(ctx context.Context, idToken string) (*Identity, error) {
	token, err := c.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("invalid id token: %w", err)
	}
	return c.lookup(ctx, token.UID)
}

func (c *Client) MintTicket(ctx context.Context, providerID string) (string, error) {
	ticket, err := c.authClient.CustomToken(ctx, providerID)
	if err != nil {
		return "", fmt.Errorf("failed to mint ticket: %w", err)
	}
	return ticket, nil
}

func (c *Client) lookup(ctx context.Context, uid string) (*Identity, error) {
	record, err := c.authClient.GetUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load provider user %s: %w", uid, err)
	}
	return &Identity{
		ProviderID: record.UID,
		Email:      record.Email,
		Name:       record.DisplayName,
		AvatarURL:  record.PhotoURL,
	}, nil
}
