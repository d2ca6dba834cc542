package delivery

import (
	"net/http"

	"cubent-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves the session-backed profile endpoints.
type AuthHandler struct {
	authUsecase usecase.AuthUsecase
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authUsecase usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase}
}

// Me returns the local user row for the authenticated session.
func (h *AuthHandler) Me(c *gin.Context) {
	ident := IdentityFrom(c)
	if ident == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	user, err := h.authUsecase.UserForIdentity(ident)
	if err != nil {
		zap.L().Error("Failed to load user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Sync creates or refreshes the local user row from the verified provider
// identity.
func (h *AuthHandler) Sync(c *gin.Context) {
	ident := IdentityFrom(c)
	if ident == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	user, err := h.authUsecase.SyncUser(c.Request.Context(), ident)
	if err != nil {
		zap.L().Error("Failed to sync user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// AcceptTerms stamps terms acceptance for the authenticated user.
func (h *AuthHandler) AcceptTerms(c *gin.Context) {
	ident := IdentityFrom(c)
	if ident == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	user, err := h.authUsecase.UserForIdentity(ident)
	if err != nil {
		zap.L().Error("Failed to load user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if err := h.authUsecase.AcceptTerms(user.ID); err != nil {
		zap.L().Error("Failed to record terms acceptance", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
