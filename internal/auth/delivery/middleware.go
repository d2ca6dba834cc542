package delivery

import (
	"net/http"
	"strings"

	"cubent-backend/internal/auth/usecase"
	"cubent-backend/pkg/identity"

	"github.com/gin-gonic/gin"
)

// ProviderSessionCookie is the identity provider's browser session cookie.
const ProviderSessionCookie = "__session"

const identityKey = "identity"

// RequireSession verifies the browser session and aborts with 401 when no
// valid credentials are present.
func RequireSession(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := resolveIdentity(c, authUsecase)
		if err != nil || ident == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		c.Set(identityKey, ident)
		c.Next()
	}
}

// OptionalSession resolves the browser session when present but never aborts;
// handlers check IdentityFrom for nil.
func OptionalSession(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ident, err := resolveIdentity(c, authUsecase); err == nil && ident != nil {
			c.Set(identityKey, ident)
		}
		c.Next()
	}
}

// IdentityFrom returns the verified identity set by the session middleware,
// or nil when the request is anonymous.
func IdentityFrom(c *gin.Context) *identity.Identity {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil
	}
	ident, ok := value.(*identity.Identity)
	if !ok {
		return nil
	}
	return ident
}

func resolveIdentity(c *gin.Context, authUsecase usecase.AuthUsecase) (*identity.Identity, error) {
	var bearer string
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			bearer = parts[1]
		}
	}

	sessionCookie, _ := c.Cookie(ProviderSessionCookie)
	if bearer == "" && sessionCookie == "" {
		return nil, nil
	}

	return authUsecase.Authenticate(c.Request.Context(), sessionCookie, bearer)
}
