package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/ledger/internal/config"
	"github.com/dafibh/ledger/internal/handler"
	"github.com/dafibh/ledger/internal/middleware"
	"github.com/dafibh/ledger/internal/service"
	"github.com/dafibh/ledger/internal/store"
	"github.com/dafibh/ledger/internal/websocket"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load(config.ServerDefaults)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to the record store
	gateway, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open record store")
	}
	defer gateway.Close()

	// Forward changes written by the console to websocket clients
	go func() {
		if err := gateway.Watch(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Stopped watching record store")
		}
	}()

	// Initialize services
	ledgerService := service.NewLedgerService(gateway)

	// Initialize WebSocket hub and feed
	hub := websocket.NewHub()
	feed := websocket.NewFeed(gateway, hub)

	// Initialize handlers
	periodHandler := handler.NewPeriodHandler(ledgerService, gateway)
	wsHandler := handler.NewWebSocketHandler(feed, cfg.CORSOrigins)

	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, middleware.DefaultBurstSize)
	defer rateLimiter.Stop()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		MaxAge:       86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Per-IP rate limiting
	e.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"backend": cfg.Store.Backend,
			"clients": hub.TotalClientCount(),
		})
	})

	// Register API routes
	handler.RegisterRoutes(e, periodHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
