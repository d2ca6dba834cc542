package delivery

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"cubent-backend/internal/pairing/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CleanupHandler serves the external cleanup trigger. A cron service calls it
// with a shared-secret bearer header.
type CleanupHandler struct {
	pendingRepo repository.PendingLoginRepository
	secret      string
	maxAge      time.Duration
}

// NewCleanupHandler creates a new CleanupHandler
func NewCleanupHandler(pendingRepo repository.PendingLoginRepository, secret string, maxAge time.Duration) *CleanupHandler {
	return &CleanupHandler{
		pendingRepo: pendingRepo,
		secret:      secret,
		maxAge:      maxAge,
	}
}

// Trigger purges expired and stale pending logins and reports counts.
func (h *CleanupHandler) Trigger(c *gin.Context) {
	if !h.authorized(c.GetHeader("Authorization")) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	expired, err := h.pendingRepo.DeleteExpired()
	if err != nil {
		zap.L().Error("Cleanup failed deleting expired rows", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	old, err := h.pendingRepo.DeleteOlderThan(h.maxAge)
	if err != nil {
		zap.L().Error("Cleanup failed deleting stale rows", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"cleaned": gin.H{
			"expired": expired,
			"old":     old,
			"total":   expired + old,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *CleanupHandler) authorized(header string) bool {
	// An unset secret disables the endpoint rather than opening it.
	if h.secret == "" {
		return false
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(parts[1]), []byte(h.secret)) == 1
}
