package usecase

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	authdomain "cubent-backend/internal/auth/domain"
	"cubent-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

// BridgeClaims is the payload of a signed cross-domain token.
type BridgeClaims struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"image_url"`
}

// SessionSnapshot is the coarse session mirror stored in the shared-domain
// cookie. It is readable by page script on sibling subdomains and carries no
// integrity protection: display-only, never a trust anchor.
type SessionSnapshot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	ImageURL  string `json:"imageUrl"`
	Timestamp int64  `json:"timestamp"`
}

// BridgeUsecase covers the server side of the cross-domain session bridge:
// signed short-lived tokens, the shared-domain cookie payload, and redirect
// target validation.
type BridgeUsecase interface {
	IssueBridgeToken(user *authdomain.User) (string, error)
	ParseBridgeToken(token string) (*BridgeClaims, error)
	EncodeSnapshot(snapshot *SessionSnapshot) string
	DecodeSnapshot(encoded string) (*SessionSnapshot, error)
	// SafeRedirect returns raw when its target is allowed (the native-app
	// scheme, or an allow-listed host or subdomain thereof) and the default
	// redirect path otherwise.
	SafeRedirect(raw string) string
}

// bridgeUsecase implements BridgeUsecase interface
type bridgeUsecase struct {
	config *config.Config
}

// NewBridgeUsecase creates a new instance of bridgeUsecase
func NewBridgeUsecase(cfg *config.Config) BridgeUsecase {
	return &bridgeUsecase{config: cfg}
}

func (u *bridgeUsecase) IssueBridgeToken(user *authdomain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":   user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"image_url": user.AvatarURL,
		"exp":       time.Now().Add(u.config.BridgeTokenExpiry).Unix(),
		"iat":       time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *bridgeUsecase) ParseBridgeToken(tokenString string) (*BridgeClaims, error) {
	// Pinned to HS256: this path upgrades the cookie's trust level, so the
	// caller must not accept a token that merely verifies under some method.
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid bridge token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	parsed := &BridgeClaims{UserID: userID}
	if name, ok := claims["name"].(string); ok {
		parsed.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		parsed.Email = email
	}
	if imageURL, ok := claims["image_url"].(string); ok {
		parsed.ImageURL = imageURL
	}
	return parsed, nil
}

func (u *bridgeUsecase) EncodeSnapshot(snapshot *SessionSnapshot) string {
	data, _ := json.Marshal(snapshot)
	return base64.StdEncoding.EncodeToString(data)
}

func (u *bridgeUsecase) DecodeSnapshot(encoded string) (*SessionSnapshot, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	var snapshot SessionSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (u *bridgeUsecase) SafeRedirect(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || raw == "" {
		return u.config.DefaultRedirectPath
	}

	if parsed.Scheme == u.config.AppScheme {
		return raw
	}

	if (parsed.Scheme == "http" || parsed.Scheme == "https") && u.hostAllowed(parsed.Hostname()) {
		return raw
	}

	return u.config.DefaultRedirectPath
}

func (u *bridgeUsecase) hostAllowed(host string) bool {
	host = strings.ToLower(host)
	for _, entry := range u.config.AllowedRedirectHosts {
		entry = strings.ToLower(strings.TrimPrefix(entry, "*."))
		if entry == "" {
			continue
		}
		if host == entry || strings.HasSuffix(host, "."+entry) {
			return true
		}
	}
	return false
}
