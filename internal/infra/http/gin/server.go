package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	Accommodation  AccommodationHTTP
	Host           HostAccommodationHTTP
	Reservation    ReservationHTTP
	Comment        CommentHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Accommodation != nil {
		api.GET("/accommodations", h.Accommodation.Search)
		api.GET("/accommodations/:id", h.Accommodation.Get)
	}
	if h.Comment != nil {
		api.GET("/accommodations/:id/comments", h.Comment.ListByAccommodation)
		api.GET("/accommodations/:id/rating", h.Comment.AverageRating)
		api.POST("/comments", h.Comment.Submit)
		api.POST("/comments/:id/reply", h.Comment.Reply)
	}
	if h.Reservation != nil {
		api.POST("/reservations", h.Reservation.Create)
		api.POST("/reservations/:id/confirm", h.Reservation.Confirm)
		api.POST("/reservations/:id/cancel", h.Reservation.Cancel)
		api.POST("/reservations/:id/complete", h.Reservation.Complete)
		api.GET("/me/reservations", h.Reservation.ListMine)
		api.GET("/accommodations/:id/reservations", h.Reservation.ListByAccommodation)
	}
	if h.Host != nil {
		hostGroup := api.Group("/host/accommodations")
		hostGroup.POST("", h.Host.Create)
		hostGroup.PUT("/:id", h.Host.Update)
		hostGroup.DELETE("/:id", h.Host.Delete)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
