package usecase

import (
	"context"
	"fmt"
	"net/url"
	"time"

	authrepo "cubent-backend/internal/auth/repository"
	pairingdomain "cubent-backend/internal/pairing/domain"
	"cubent-backend/internal/pairing/dto"
	"cubent-backend/internal/pairing/repository"
	"cubent-backend/pkg/config"
	"cubent-backend/pkg/identity"
	"cubent-backend/pkg/logger"

	"go.uber.org/zap"
)

// pairingUsecase implements PairingUsecase interface
type pairingUsecase struct {
	pendingRepo repository.PendingLoginRepository
	userRepo    authrepo.UserRepository
	provider    identity.Provider
	tokens      TokenMinter
	redirects   RedirectPolicy
	config      *config.Config
}

// NewPairingUsecase creates a new instance of pairingUsecase
func NewPairingUsecase(
	pendingRepo repository.PendingLoginRepository,
	userRepo authrepo.UserRepository,
	provider identity.Provider,
	tokens TokenMinter,
	redirects RedirectPolicy,
	cfg *config.Config,
) PairingUsecase {
	return &pairingUsecase{
		pendingRepo: pendingRepo,
		userRepo:    userRepo,
		provider:    provider,
		tokens:      tokens,
		redirects:   redirects,
		config:      cfg,
	}
}

func (u *pairingUsecase) InitiateSignIn(ctx context.Context, ident *identity.Identity, req *dto.InitiateSignInRequest) (string, error) {
	target := u.redirects.SafeRedirect(req.AuthRedirect)

	if ident == nil {
		// No browser session yet: bounce through interactive sign-in with a
		// return URL that lands back on this entry point.
		returnTo := fmt.Sprintf("/api/extension/sign-in?state=%s&device_id=%s&auth_redirect=%s",
			url.QueryEscape(req.State), url.QueryEscape(req.DeviceID), url.QueryEscape(req.AuthRedirect))
		return u.config.SignInURL + "?return_to=" + url.QueryEscape(returnTo), nil
	}

	ticket, err := u.provider.MintTicket(ctx, ident.ProviderID)
	if err != nil {
		return "", err
	}

	withTicket, err := appendQuery(target, url.Values{
		"ticket": {ticket},
		"state":  {req.State},
	})
	if err != nil {
		return "", err
	}

	zap.L().Info("Pairing initiated",
		zap.String("device", logger.Prefix(req.DeviceID, 8)),
		zap.String("state", logger.Prefix(req.State, 8)))
	return withTicket, nil
}

func (u *pairingUsecase) CompletePairing(ctx context.Context, ident *identity.Identity, req *dto.CompletePairingRequest) (*dto.CompletePairingResponse, error) {
	if ident == nil {
		return nil, ErrUnauthorized
	}

	user, err := u.userRepo.FindByProviderID(ident.ProviderID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if !user.HasAcceptedTerms() {
		if !req.AcceptTerms {
			return nil, ErrTermsRequired
		}
		if err := u.userRepo.SetTermsAccepted(user.ID, time.Now()); err != nil {
			return nil, err
		}
	}

	// Opportunistic sweep; expiry is enforced on lookup either way.
	if _, err := u.pendingRepo.DeleteExpired(); err != nil {
		zap.L().Warn("Expired pending-login sweep failed", zap.Error(err))
	}

	token, err := u.tokens.GenerateSessionToken(user)
	if err != nil {
		return nil, err
	}

	login := &pairingdomain.PendingLogin{
		DeviceID:  req.DeviceID,
		State:     req.State,
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(u.config.PendingLoginTTL),
	}
	// Last writer wins: a stale attempt from an earlier tab is invalidated.
	if err := u.pendingRepo.Replace(login); err != nil {
		return nil, err
	}

	redirectURL := fmt.Sprintf("%s://%s/auth/callback?token=%s&state=%s",
		u.config.AppScheme, u.config.AppDeepLinkHost,
		url.QueryEscape(token), url.QueryEscape(req.State))

	zap.L().Info("Pairing completed",
		zap.String("device", logger.Prefix(req.DeviceID, 8)),
		zap.String("user", user.ID))

	return &dto.CompletePairingResponse{
		Success:     true,
		Token:       token,
		RedirectURL: redirectURL,
	}, nil
}

func (u *pairingUsecase) RedeemToken(deviceID, state string) (string, error) {
	if deviceID == "" || state == "" {
		return "", ErrTokenNotFound
	}

	// Lazy cleanup before the lookup so stale rows never linger long.
	if _, err := u.pendingRepo.DeleteExpired(); err != nil {
		zap.L().Warn("Expired pending-login sweep failed", zap.Error(err))
	}

	login, err := u.pendingRepo.Redeem(deviceID, state)
	if err != nil {
		return "", err
	}
	if login == nil {
		return "", ErrTokenNotFound
	}

	zap.L().Info("Pairing token redeemed",
		zap.String("device", logger.Prefix(deviceID, 8)),
		zap.String("user", login.UserID))
	return login.Token, nil
}

// appendQuery adds params to a target URL, preserving any existing query.
func appendQuery(target string, params url.Values) (string, error) {
	parsed, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	for key, values := range params {
		for _, v := range values {
			query.Set(key, v)
		}
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
