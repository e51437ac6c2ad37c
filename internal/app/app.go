package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chatnotify/internal/auth"
	"chatnotify/internal/config"
	"chatnotify/internal/handlers"
	"chatnotify/internal/listener"
	"chatnotify/internal/realtime"
	"chatnotify/internal/routes"
)

// Run wires the service together and blocks until shutdown. A failure to
// load the public key or to establish the LISTEN subscription is fatal: the
// service must not serve traffic event-blind.
func Run(log zerolog.Logger) {
	cfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// === Auth ===
	verifier, err := auth.LoadVerifier(cfg.Auth.PublicKeyFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load verifier")
	}

	// === Registry + Listener ===
	registry := realtime.NewRegistry(cfg.Notify.BufferSize)
	lst, err := listener.New(cfg.Database.DSN, cfg.Notify.Channels, registry, log)
	if err != nil {
		log.Fatal().Err(err).Msg("subscribe to change channels")
	}
	go lst.Run(ctx)

	// === Gin ===
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	eventsHandler := handlers.NewEventsHandler(registry, log)
	routes.SetupRoutes(router, verifier, eventsHandler)

	// === Run ===
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
		// request contexts inherit ctx, so open streams end on shutdown
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	stop()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown")
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
