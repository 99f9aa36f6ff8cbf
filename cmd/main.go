package main

import (
	"os"

	"order_service/config"
	"order_service/internal/auth"
	"order_service/internal/cache"
	"order_service/internal/delivery"
	"order_service/internal/domain"
	"order_service/internal/repository"
	"order_service/internal/usecase"
	"order_service/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
		logger.Warnf("Invalid LOG_LEVEL '%s', using default: %s", cfg.LogLevel, logLevel.String())
	}
	logger.SetLevel(logLevel)
	logger.Info("Starting Order Service...")

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connection established.")

	tokenManager, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Fatalf("Failed to initialize token manager: %v", err)
	}

	// --- Dependency Injection ---
	orderRepo := repository.NewPostgresOrderRepository(database, logger)
	userRepo := repository.NewPostgresUserRepository(database, logger)
	orderCache := cache.NewOrderCache()
	logger.Info("Repositories initialized.")

	orderUseCase := usecase.NewOrderUseCase(orderRepo, orderCache, logger)
	userUseCase := usecase.NewUserUseCase(userRepo, tokenManager, logger)
	logger.Info("Use cases initialized.")

	orderHandler := delivery.NewOrderHandler(orderUseCase, logger)
	userHandler := delivery.NewUserHandler(userUseCase, logger)
	logger.Info("Handlers initialized.")

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(delivery.RequestLogger(logger))
	router.RedirectTrailingSlash = false

	authMW := delivery.AuthMiddleware(tokenManager, logger)
	adminOnly := delivery.RequireRoles(logger, domain.RoleAdmin)

	userHandler.RegisterRoutes(router, authMW)
	orderHandler.RegisterRoutes(router, authMW, adminOnly)
	logger.Info("Routes registered.")

	logger.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		logger.Errorf("Failed to start server on port %s: %v", cfg.Port, err)
		os.Exit(1)
	}
}
