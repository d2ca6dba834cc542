package main

import (
	"time"

	api "cubent-backend/cmd/api"
	authdomain "cubent-backend/internal/auth/domain"
	authRepo "cubent-backend/internal/auth/repository"
	authUsecase "cubent-backend/internal/auth/usecase"
	bridgeUsecase "cubent-backend/internal/bridge/usecase"
	"cubent-backend/internal/cleanup/scheduler"
	pairingdomain "cubent-backend/internal/pairing/domain"
	pairingRepo "cubent-backend/internal/pairing/repository"
	pairingUsecase "cubent-backend/internal/pairing/usecase"
	"cubent-backend/pkg/config"
	"cubent-backend/pkg/database"
	"cubent-backend/pkg/identity"
	"cubent-backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	log := logger.Initialize()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &pairingdomain.PendingLogin{}); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	pendingLoginRepo := pairingRepo.NewPendingLoginRepository(db)

	// Initialize identity provider client
	idClient, err := identity.NewClient(cfg.FirebaseCredentials)
	if err != nil {
		log.Fatal("Failed to initialize identity client", zap.Error(err))
	}

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, idClient, cfg)
	bridgeUsecaseInstance := bridgeUsecase.NewBridgeUsecase(cfg)
	pairingUsecaseInstance := pairingUsecase.NewPairingUsecase(
		pendingLoginRepo, userRepo, idClient, authUsecaseInstance, bridgeUsecaseInstance, cfg)

	// Background sweep alongside the external cleanup trigger
	sweeper := scheduler.NewSweepScheduler(pendingLoginRepo, 10*time.Minute, cfg.PendingLoginMaxAge)
	sweeper.Start()

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, pairingUsecaseInstance, bridgeUsecaseInstance, pendingLoginRepo, cfg)

	log.Info("Server starting", zap.String("port", cfg.Port))
	if err := handler.Start(":" + cfg.Port); err != nil {
		// Start blocks for the life of the process; stop the sweeper before
		// the fatal exit so its goroutine does not outlive the log flush.
		sweeper.Stop()
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
