package usecase

import (
	"context"
	"errors"
	"time"

	authdomain "cubent-backend/internal/auth/domain"
	"cubent-backend/internal/auth/repository"
	"cubent-backend/pkg/config"
	"cubent-backend/pkg/identity"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoCredentials = errors.New("no session credentials provided")

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo repository.UserRepository
	provider identity.Provider
	config   *config.Config
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, provider identity.Provider, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		provider: provider,
		config:   cfg,
	}
}

func (u *authUsecase) Authenticate(ctx context.Context, sessionCookie, bearerToken string) (*identity.Identity, error) {
	if bearerToken != "" {
		return u.provider.VerifyIDToken(ctx, bearerToken)
	}
	if sessionCookie != "" {
		return u.provider.VerifySessionCookie(ctx, sessionCookie)
	}
	return nil, ErrNoCredentials
}

func (u *authUsecase) SyncUser(ctx context.Context, ident *identity.Identity) (*authdomain.User, error) {
	user, err := u.userRepo.FindByProviderID(ident.ProviderID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &authdomain.User{
			ProviderID: ident.ProviderID,
			Email:      ident.Email,
			Name:       ident.Name,
			AvatarURL:  ident.AvatarURL,
		}
		if err := u.userRepo.Create(user); err != nil {
			return nil, err
		}
		return user, nil
	}

	// Refresh profile fields from the provider on every sync.
	user.Email = ident.Email
	user.Name = ident.Name
	user.AvatarURL = ident.AvatarURL
	if err := u.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *authUsecase) UserForIdentity(ident *identity.Identity) (*authdomain.User, error) {
	return u.userRepo.FindByProviderID(ident.ProviderID)
}

func (u *authUsecase) AcceptTerms(userID string) error {
	return u.userRepo.SetTermsAccepted(userID, time.Now())
}

func (u *authUsecase) GenerateSessionToken(user *authdomain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(u.config.SessionTokenExpiry).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}
