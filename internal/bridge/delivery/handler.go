package delivery

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	authdelivery "cubent-backend/internal/auth/delivery"
	authusecase "cubent-backend/internal/auth/usecase"
	"cubent-backend/internal/bridge/usecase"
	"cubent-backend/internal/bridge/watcher"
	"cubent-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusPage is the iframe target. Its only job is to post the auth status to
// the embedding window, restricted to the one configured sibling origin.
var statusPage = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Auth Status</title></head>
<body>
<script>
(function () {
  var payload = {{.Payload}};
  var targetOrigin = {{.TargetOrigin}};
  if (window.parent !== window) {
    window.parent.postMessage(payload, targetOrigin);
  }
})();
</script>
</body>
</html>
`))

type statusUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl"`
}

type statusMessage struct {
	Type            string      `json:"type"`
	RequestID       string      `json:"requestId,omitempty"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	User            *statusUser `json:"user"`
}

// BridgeHandler serves the cross-domain session bridge endpoints.
type BridgeHandler struct {
	authUsecase   authusecase.AuthUsecase
	bridgeUsecase usecase.BridgeUsecase
	config        *config.Config
}

// NewBridgeHandler creates a new BridgeHandler
func NewBridgeHandler(authUsecase authusecase.AuthUsecase, bridgeUsecase usecase.BridgeUsecase, cfg *config.Config) *BridgeHandler {
	return &BridgeHandler{
		authUsecase:   authUsecase,
		bridgeUsecase: bridgeUsecase,
		config:        cfg,
	}
}

// Status renders the hidden-iframe page that posts AUTH_STATUS to the parent
// window. The target origin is always the configured sibling origin, never *.
func (h *BridgeHandler) Status(c *gin.Context) {
	// The embedding page sends a correlation id so its listener can match
	// this response to the check that opened the iframe.
	message := statusMessage{
		Type:      watcher.MessageTypeAuthStatus,
		RequestID: c.Query("request_id"),
	}

	if ident := authdelivery.IdentityFrom(c); ident != nil {
		message.IsAuthenticated = true
		user := &statusUser{Name: ident.Name, Email: ident.Email, ImageURL: ident.AvatarURL}
		if local, err := h.authUsecase.UserForIdentity(ident); err == nil && local != nil {
			user.ID = local.ID
		} else {
			user.ID = ident.ProviderID
		}
		message.User = user
	}

	payload, err := json.Marshal(message)
	if err != nil {
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	// The marketing site embeds this page; no other origin gets the message.
	c.Status(http.StatusOK)
	if err := statusPage.Execute(c.Writer, gin.H{
		"Payload":      template.JS(payload),
		"TargetOrigin": h.config.MarketingOrigin,
	}); err != nil {
		zap.L().Error("Failed to render status page", zap.Error(err))
	}
}

// BridgeToken issues the short-lived signed token variant of the bridge.
func (h *BridgeHandler) BridgeToken(c *gin.Context) {
	ident := authdelivery.IdentityFrom(c)
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

	token, err := h.bridgeUsecase.IssueBridgeToken(user)
	if err != nil {
		zap.L().Error("Failed to issue bridge token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"token":      token,
		"expires_in": int(h.config.BridgeTokenExpiry.Seconds()),
	})
}

// SetSessionCookie writes the shared-parent-domain session mirror cookie so
// sibling subdomains can read a coarse signed-in snapshot without the iframe
// handshake.
func (h *BridgeHandler) SetSessionCookie(c *gin.Context) {
	ident := authdelivery.IdentityFrom(c)
	if ident == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	snapshot := &usecase.SessionSnapshot{
		ID:        ident.ProviderID,
		Name:      ident.Name,
		Email:     ident.Email,
		ImageURL:  ident.AvatarURL,
		Timestamp: time.Now().UnixMilli(),
	}
	if local, err := h.authUsecase.UserForIdentity(ident); err != nil {
		zap.L().Error("Failed to load user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	} else if local != nil {
		snapshot.ID = local.ID
	}

	c.SetSameSite(http.SameSiteLaxMode)
	// httpOnly=false: page script on sibling subdomains must read it.
	c.SetCookie(
		h.config.SessionCookieName,
		h.bridgeUsecase.EncodeSnapshot(snapshot),
		int(h.config.SessionCookieMaxAge.Seconds()),
		"/",
		h.config.CookieDomain,
		true,
		false,
	)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ClearSessionCookie expires the mirror cookie by writing its immediately
// expiring twin with the same domain and path.
func (h *BridgeHandler) ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		h.config.SessionCookieName,
		"",
		-1,
		"/",
		h.config.CookieDomain,
		true,
		false,
	)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
