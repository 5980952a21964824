package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aerolink/api/routes"
	"aerolink/internal/shared/app"
	"aerolink/internal/shared/config"
	"aerolink/internal/shared/middleware"
	"aerolink/pkg/logger"
	"aerolink/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// @title       Aerolink Booking API
// @version     1.0
// @description Flight search and the multi-step booking wizard.
// @BasePath    /api/v1
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// logger picks its handler from the gin mode
	appLogger := logger.New()
	logger.SetDefault(appLogger)

	switch {
	case envErr == nil:
		appLogger.Info("Development environment: loaded .env file")
	case cfg.IsProduction() || os.Getenv("DOCKER_CONTAINER") == "true":
		appLogger.Info("Production environment: using container environment variables")
	default:
		appLogger.Info("No .env file found, using system environment variables")
	}

	container, err := app.New(cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to start", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Error("error during cleanup", slog.Any("error", err))
		}
	}()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	container.Start(workerCtx)

	appLogger.Info("Application container ready",
		slog.Bool("rate_limiting", container.RateLimiter != nil),
		slog.Bool("notifications", container.Notifier != nil),
		slog.Bool("kafka", cfg.Kafka.Enabled),
	)

	router := setupRouter(container)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_status", fmt.Sprintf("http://localhost:%s/status", cfg.Port)),
			slog.String("swagger", fmt.Sprintf("http://localhost:%s/swagger/index.html", cfg.Port)),
			slog.String("version", Version),
			slog.String("commit", GitCommit),
			slog.String("built", BuildTime),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupRouter(container *app.Container) *gin.Engine {
	engine := gin.New()

	engine.Use(middleware.RequestID(), middleware.RequestLogger(container.Log), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID", "X-Search-Session"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if container.RateLimiter != nil {
		engine.Use(ratelimit.Middleware(container.RateLimiter, container.Log))
	}

	routes.NewRouter(container).SetupRoutes(engine)
	return engine
}
