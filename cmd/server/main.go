package main

import (
	"alcyxob/fitness-catalog/internal/api"
	"alcyxob/fitness-catalog/internal/catalog"
	"alcyxob/fitness-catalog/internal/config"
	"alcyxob/fitness-catalog/internal/gifurl"
	"alcyxob/fitness-catalog/internal/logger"
	"alcyxob/fitness-catalog/internal/repository/mongo"
	"alcyxob/fitness-catalog/internal/service"
	"alcyxob/fitness-catalog/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// @title Fitness Exercise API
// @version 1.0
// @description Exercise library, exercise GIF proxy and catalog maintenance triggers.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	reqs := []config.Requirement{config.RequireStore, config.RequireCatalog}
	if cfg.JWT.Secret != "" {
		// Admin passes write gif URLs.
		reqs = append(reqs, config.RequireGif)
	}
	if err := cfg.Validate(reqs...); err != nil {
		log.Fatalf("FATAL: Invalid configuration: %v", err)
	}

	appLog, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("FATAL: Could not create logger: %v", err)
	}
	defer appLog.Sync()
	appLog.Info("Starting Fitness Exercise Server...", "address", cfg.Server.Address)

	gifs, err := cfg.GifBuilder()
	if err != nil {
		appLog.Fatal("Invalid gif configuration", "error", err)
	}
	if gifs.Mode == gifurl.ModeDirect {
		appLog.Warn("gif.mode is direct: stored gif URLs embed the catalog key and are rewritten to proxy URLs in API responses")
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(context.Background(), cfg.Database.URI)
	if err != nil {
		appLog.Fatal("Could not connect to MongoDB", "error", err)
	}
	defer func() {
		appLog.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			appLog.Error("Failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() { // Run index creation in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := mongo.EnsureExerciseIndexes(ctx, appDB.Collection(cfg.Database.Collection)); err != nil {
			appLog.Error("Failed to ensure exercise indexes", "error", err)
			return
		}
		appLog.Info("Index creation process completed.")
	}()

	// --- Catalog Client ---
	catalogClient, err := catalog.NewClient(catalog.Options{
		BaseURL:           cfg.Catalog.BaseURL,
		APIKey:            cfg.Catalog.APIKey,
		Timeout:           cfg.Catalog.Timeout,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
	})
	if err != nil {
		appLog.Fatal("Could not create catalog client", "error", err)
	}
	// Image traffic gets its own limiter so admin passes and page loads do not queue on each other.
	imageClient, err := catalog.NewClient(catalog.Options{
		BaseURL:           cfg.Catalog.BaseURL,
		APIKey:            cfg.Catalog.APIKey,
		Timeout:           cfg.Catalog.Timeout,
		RequestsPerSecond: cfg.Proxy.RequestsPerSecond,
		Burst:             cfg.Proxy.Burst,
	})
	if err != nil {
		appLog.Fatal("Could not create image client", "error", err)
	}

	// --- Initialize Storage ---
	var assetCache storage.AssetCache
	if cfg.S3.Enabled() {
		assetCache, err = storage.NewS3Storage(context.Background(), cfg.S3)
		if err != nil {
			appLog.Fatal("Failed to initialize S3 asset cache", "error", err)
		}
		appLog.Info("GIF asset cache enabled", "bucket", cfg.S3.BucketName)
	}

	// --- Repositories & Services ---
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB, cfg.Database.Collection)
	exerciseService := service.NewExerciseService(exerciseRepo)
	reconciler := service.NewReconciler(exerciseRepo, catalogClient, gifs, appLog)

	// --- Initialize Gin Engine ---
	if cfg.Log.Mode == "prod" || cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	api.SetupRoutes(router, api.RouterDeps{
		Logger:          appLog,
		JWTSecret:       cfg.JWT.Secret,
		ExerciseService: exerciseService,
		ProxyBaseURL:    cfg.Gif.ProxyBaseURL,
		Gifs: api.NewGifHandler(api.GifHandlerOptions{
			Source:          imageClient,
			Cache:           assetCache,
			Resolution:      cfg.Gif.Resolution,
			BreakerFailures: cfg.Proxy.BreakerFailures,
			BreakerTimeout:  cfg.Proxy.BreakerTimeout,
			Logger:          appLog,
		}),
		Admin: api.NewAdminHandler(reconciler, cfg.Catalog.ImportLimit, appLog),
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:        cfg.Server.Address,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// Admin passes answer only once they finish.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("ListenAndServe error", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the requests it is currently handling
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		appLog.Error("Server forced to shutdown", "error", err)
	}

	appLog.Info("Server exiting.")
}
