package api

import (
	"net/http"

	"cubent-backend/internal/auth/delivery"
	"cubent-backend/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes: local user mirror plus the cross-domain bridge
		auth := api.Group("/auth")
		{
			auth.GET("/me", delivery.RequireSession(h.authUsecase), h.authHandler.Me)
			auth.POST("/sync", delivery.RequireSession(h.authUsecase), h.authHandler.Sync)
			auth.POST("/accept-terms", delivery.RequireSession(h.authUsecase), h.authHandler.AcceptTerms)

			// Iframe target for the marketing site's hidden status check
			auth.GET("/status", delivery.OptionalSession(h.authUsecase), h.bridgeHandler.Status)
			auth.GET("/bridge-token", delivery.RequireSession(h.authUsecase), h.bridgeHandler.BridgeToken)
			auth.POST("/session-cookie", delivery.RequireSession(h.authUsecase), h.bridgeHandler.SetSessionCookie)
			auth.POST("/session-cookie/clear", h.bridgeHandler.ClearSessionCookie)
		}

		// Extension routes: the device-pairing handshake
		extension := api.Group("/extension")
		{
			extension.GET("/sign-in", delivery.OptionalSession(h.authUsecase), h.pairingHandler.InitiateSignIn)
			extension.POST("/complete", delivery.RequireSession(h.authUsecase), h.pairingHandler.CompletePairing)
			extension.GET("/token", ratelimit.Middleware(h.limiter), h.pairingHandler.RetrieveToken)
		}

		// Internal routes: shared-secret maintenance triggers
		internal := api.Group("/internal")
		{
			internal.GET("/cleanup", h.cleanupHandler.Trigger)
		}
	}
}
