package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"recoverypilot/internal"
	"recoverypilot/internal/api"
	"recoverypilot/internal/config"
	"recoverypilot/internal/container"
	"recoverypilot/internal/ops"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel)).With("server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(ctx, appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	gin.SetMode(appConfig.Server.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	api.NewClusteringHandler(appContainer.Engine).RegisterRoutes(router)

	server := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	opsServer := &http.Server{
		Addr:              ":" + appConfig.Profiling.Port,
		Handler:           ops.NewRouter(appContainer.Engine, appConfig.Profiling.Enabled),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Ops listener starting on :%s (profiling=%t)", appConfig.Profiling.Port, appConfig.Profiling.Enabled)
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Ops listener failed: %v", err)
		}
	}()

	go func() {
		logger.Info("Starting recovery clustering server on port %s", appConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown: %v", err)
	}
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ops listener shutdown: %v", err)
	}
}
