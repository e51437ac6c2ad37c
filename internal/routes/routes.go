package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatnotify/internal/auth"
	"chatnotify/internal/handlers"
	"chatnotify/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	verifier *auth.Verifier,
	eventsHandler *handlers.EventsHandler,
) *gin.Engine {

	// ---- public
	r.GET("/", handlers.Index)
	r.GET("/healthz", handlers.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ---- protected
	events := r.Group("/events", middleware.AuthMiddleware(verifier))
	{
		events.GET("", eventsHandler.Stream)
	}

	return r
}
