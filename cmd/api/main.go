package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/api"
	"github.com/platefeed/backend/internal/database"
	"github.com/platefeed/backend/internal/logger"
	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/router"
	"github.com/platefeed/backend/internal/server"
	"github.com/platefeed/backend/internal/service"
)

func main() {
	logger.Init()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	if err := database.WaitForDatabase(cfg, 10, 2*time.Second); err != nil {
		logger.Fatal("database unreachable", zap.Error(err))
	}

	db, err := database.New(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}

	s3Config, err := config.NewS3Config(context.Background())
	if err != nil {
		logger.Fatal("failed to initialize S3", zap.Error(err))
	}

	images := service.NewImageService(s3Config)
	validator := service.NewValidator(cfg)
	emailService := service.NewEmailService(cfg)
	authService := service.NewAuthService(db, cfg.JWTSecret, emailService)
	recipeService := service.NewRecipeService(db, images, validator)
	relationService := service.NewRelationService(db)
	userService := service.NewUserService(db, images)
	ingredientService := service.NewIngredientService(db)
	shoppingListService := service.NewShoppingListService(db)
	shortLinkService := service.NewShortLinkService(redisClient, cfg.ShortLinkLength)
	createLimiter := middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipesPerHour)

	userHandler := api.NewUserHandler(userService, relationService, authService, cfg.PageSize)
	recipeHandler := api.NewRecipeHandler(
		recipeService, relationService, shoppingListService, shortLinkService,
		authService, createLimiter, cfg.PageSize)
	ingredientHandler := api.NewIngredientHandler(ingredientService)

	engine := router.SetupRouter(userHandler, recipeHandler, ingredientHandler)
	srv := server.New(engine, cfg.ServerHost+":"+cfg.ServerPort)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}
