package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/expotoworld/programs-service/internal/api"
	"github.com/expotoworld/programs-service/internal/auth"
	"github.com/expotoworld/programs-service/internal/config"
	"github.com/expotoworld/programs-service/internal/logging"
	"github.com/expotoworld/programs-service/internal/service"
	"github.com/expotoworld/programs-service/internal/storage"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Init("info")
		logging.LogKV("fatal", "configuration error", map[string]interface{}{"error": err})
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel)
	defer logging.Sync()

	logging.LogKV("info", "Programs Service starting", map[string]interface{}{
		"git_sha":    os.Getenv("GIT_SHA"),
		"build_time": os.Getenv("BUILD_TIME"),
	})

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg.Database())
	if err != nil {
		logging.LogKV("fatal", "database unavailable", map[string]interface{}{"error": err})
		os.Exit(1)
	}
	defer closeStore()

	uploader, err := storage.New(ctx, cfg.S3Bucket, cfg.AWSRegion, cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		logging.LogKV("fatal", "failed to initialise banner storage", map[string]interface{}{"error": err})
		os.Exit(1)
	}

	if cfg.JWTSecret == "" {
		logging.LogKV("warn", "JWT_SECRET not set, every bearer token will be rejected", nil)
	}
	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)

	gin.SetMode(cfg.GinMode)
	handler := api.NewHandler(service.New(store, uploader))
	routerCfg := api.RouterConfig{
		Verifier:       verifier,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.S3Bucket == "" {
		routerCfg.UploadDir = cfg.UploadDir
	}
	router := api.SetupRouter(handler, routerCfg)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.LogKV("info", "Starting server", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.LogKV("fatal", "server failed", map[string]interface{}{"error": err})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.LogKV("info", "Shutting down server...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.LogKV("error", "graceful shutdown failed", map[string]interface{}{"error": err})
	}
}
