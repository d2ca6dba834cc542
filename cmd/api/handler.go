package api

import (
	authdelivery "cubent-backend/internal/auth/delivery"
	authusecase "cubent-backend/internal/auth/usecase"
	bridgedelivery "cubent-backend/internal/bridge/delivery"
	bridgeusecase "cubent-backend/internal/bridge/usecase"
	cleanupdelivery "cubent-backend/internal/cleanup/delivery"
	pairingdelivery "cubent-backend/internal/pairing/delivery"
	pairingrepo "cubent-backend/internal/pairing/repository"
	pairingusecase "cubent-backend/internal/pairing/usecase"
	"cubent-backend/pkg/config"
	"cubent-backend/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase    authusecase.AuthUsecase
	authHandler    *authdelivery.AuthHandler
	pairingHandler *pairingdelivery.PairingHandler
	bridgeHandler  *bridgedelivery.BridgeHandler
	cleanupHandler *cleanupdelivery.CleanupHandler
	limiter        *ratelimit.Limiter
	config         *config.Config
}

func NewHandler(
	authUc authusecase.AuthUsecase,
	pairingUc pairingusecase.PairingUsecase,
	bridgeUc bridgeusecase.BridgeUsecase,
	pendingRepo pairingrepo.PendingLoginRepository,
	cfg *config.Config,
) *Handler {
	return &Handler{
		authUsecase:    authUc,
		authHandler:    authdelivery.NewAuthHandler(authUc),
		pairingHandler: pairingdelivery.NewPairingHandler(pairingUc),
		bridgeHandler:  bridgedelivery.NewBridgeHandler(authUc, bridgeUc, cfg),
		cleanupHandler: cleanupdelivery.NewCleanupHandler(pendingRepo, cfg.CleanupSecret, cfg.PendingLoginMaxAge),
		limiter:        ratelimit.New(cfg.RateLimitMax, cfg.RateLimitWindow),
		config:         cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{h.config.MarketingOrigin, h.config.AppOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))

	SetupRoutes(r, h)

	return r.Run(addr)
}
