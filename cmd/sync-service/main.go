package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisClient "github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"cartshare/internal/api/handlers"
	"cartshare/internal/api/middleware"
	"cartshare/internal/config"
	"cartshare/internal/domain"
	"cartshare/internal/infrastructure/memory"
	"cartshare/internal/infrastructure/redis"
	"cartshare/internal/infrastructure/upstream"
	ws "cartshare/internal/infrastructure/websocket"
	"cartshare/internal/services"
	"cartshare/pkg/logger"
)

func main() {
	log := logger.New()
	log.Info("Starting list sync service")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	log.Info("Configuration loaded", "config", cfg.GetConfigString())

	// Price cache store: redis when configured, in-memory otherwise.
	var priceStore domain.PriceCacheStore
	if cfg.Redis.Address != "" {
		rdb := redisClient.NewClient(&redisClient.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			cancel()
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		cancel()
		log.Info("Connected to Redis", "address", cfg.Redis.Address)

		defer rdb.Close()
		priceStore = redis.NewRedisPriceCache(rdb)
	} else {
		log.Warn("No redis address configured, price cache is in-memory only")
		priceStore = memory.NewMemoryPriceCache()
	}

	// Upstream providers
	geocoder := upstream.NewGeocoderClient(cfg.Upstream.GeocoderBaseURL,
		cfg.Upstream.GeocoderAPIKey, cfg.Upstream.RequestTimeout)
	priceProvider := upstream.NewPriceClient(cfg.Upstream.PricesBaseURL, cfg.Upstream.RequestTimeout)

	// Broadcast core
	registry := ws.NewRegistry(log)
	broadcaster := ws.NewBroadcaster(registry, log)

	// Services
	priceService := services.NewPriceService(priceStore, priceProvider, geocoder, cfg.Cache.PriceTTL, log)
	statsReporter := services.NewStatsReporter(registry, log)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			echo.GET, echo.HEAD, echo.PUT, echo.PATCH,
			echo.POST, echo.DELETE, echo.OPTIONS,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
		},
	}))

	// Initialize handlers
	priceHandler := handlers.NewPriceHandler(priceService, geocoder, log)
	wsHandlers := handlers.NewWebSocketHandlers(registry, broadcaster, cfg.WebSocket, log)

	// API routes
	api := e.Group("/api/v1", middleware.BearerToken(cfg.Auth.Token))
	api.POST("/prices/compare", priceHandler.ComparePrices)
	api.GET("/distance", priceHandler.GetDistance)

	// Socket entry point; the client authenticates before reaching here.
	e.GET("/ws", echo.WrapHandler(http.HandlerFunc(wsHandlers.HandleConnection)))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "sync-service",
			"instance":  cfg.Instance.ID,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Internal debug listener (gorilla mux)
	debugHandler := handlers.NewDebugHandler(registry, log)
	adminServer := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", cfg.Admin.Port),
		Handler: debugHandler.Router(),
	}
	go func() {
		log.Info("Starting admin listener", "port", cfg.Admin.Port)
		if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Admin listener failed", "error", err)
		}
	}()

	// Periodic registry stats
	if err := statsReporter.Start(); err != nil {
		log.Error("Failed to start stats reporter", "error", err)
		os.Exit(1)
	}

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		log.Info("Starting sync server", "address", serverAddr)
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down sync service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	statsReporter.Stop()

	if err := adminServer.Shutdown(ctx); err != nil {
		log.Error("Admin listener forced to shutdown", "error", err)
	}
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Sync service stopped")
}
