package http

import (
	"net/http"
	"time"

	"busbenin/internal/config"
	"busbenin/internal/http/handlers"
	"busbenin/internal/http/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	System       handlers.SystemHandler
	Auth         handlers.AuthHandler
	Compagnies   handlers.CompagnieHandler
	Trajets      handlers.TrajetHandler
	Reservations handlers.ReservationHandler
}

// NewRouter builds the gin engine with the full middleware chain and all
// API routes mounted under /api.
func NewRouter(env config.Env, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(env)))

	api := r.Group("/api")

	api.GET("/health", h.System.Health)
	api.GET("/db-check", h.System.DBCheck)

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)

	api.GET("/compagnies", h.Compagnies.List)
	api.GET("/compagnies/:id", h.Compagnies.Get)

	api.GET("/trajets", h.Trajets.Search)
	api.GET("/trajets/:id", h.Trajets.Get)

	authed := api.Group("")
	authed.Use(middleware.Auth(env.JWTSecret))

	authed.POST("/reservations", h.Reservations.Create)
	authed.GET("/reservations", h.Reservations.ListMine)
	authed.GET("/reservations/:id", h.Reservations.Get)
	authed.POST("/reservations/:id/verifier-paiement", h.Reservations.VerifyPayment)
	authed.POST("/reservations/:id/annuler", h.Reservations.Cancel)

	adminTrajets := api.Group("/trajets")
	adminTrajets.Use(middleware.Auth(env.JWTSecret), middleware.AdminOnly())
	adminTrajets.POST("", h.Trajets.Create)
	adminTrajets.PUT("/:id", h.Trajets.Update)
	adminTrajets.DELETE("/:id", h.Trajets.Delete)

	admin := api.Group("/admin")
	admin.Use(middleware.Auth(env.JWTSecret))
	admin.GET("/reservations", h.Reservations.ListAdmin)

	r.NoRoute(func(c *gin.Context) {
		handlers.RespondError(c, http.StatusNotFound, "route introuvable", nil)
	})

	return r
}

func corsConfig(env config.Env) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(env.CORSAllowedOrigins) > 0 {
		cfg.AllowOrigins = env.CORSAllowedOrigins
	} else {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cfg
}
