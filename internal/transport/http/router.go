package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/coursemarket/backend/internal/health"
	"github.com/coursemarket/backend/internal/ratelimit"
	"github.com/coursemarket/backend/internal/repository"
	"github.com/coursemarket/backend/internal/token"
	"github.com/coursemarket/backend/internal/transport/http/handler"
	"github.com/coursemarket/backend/internal/transport/http/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type RouterDeps struct {
	Logger         *slog.Logger
	Checker        *health.Checker
	AuthHandler    *handler.AuthHandler
	CartHandler    *handler.CartHandler
	PaymentHandler *handler.PaymentHandler
	Users          repository.UserRepository
	Codec          *token.Codec
	Limiter        *ratelimit.Limiter
	CORSOrigins    []string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(middleware.RateLimit(deps.Limiter))
	r.Use(cors.New(corsConfig(deps.CORSOrigins)))
	r.Use(sloggin.New(deps.Logger))
	r.Use(middleware.Metrics())

	authMW := middleware.Authenticate(deps.Users, deps.Codec)
	optionalAuthMW := middleware.OptionalAuthenticate(deps.Users, deps.Codec)

	auth := r.Group("/api/auth")
	auth.POST("/register", optionalAuthMW, deps.AuthHandler.Register)
	auth.POST("/login", deps.AuthHandler.Login)
	auth.GET("/profile", authMW, deps.AuthHandler.Profile)

	// Admin-only user management
	users := auth.Group("/users", authMW, middleware.RequireAdmin())
	users.GET("", deps.AuthHandler.ListUsers)
	users.PUT("/:id/role", deps.AuthHandler.UpdateRole)
	users.DELETE("/:id", deps.AuthHandler.Deactivate)

	cart := r.Group("/api/cart", authMW)
	cart.GET("", deps.CartHandler.List)
	cart.GET("/count", deps.CartHandler.Count)
	cart.POST("", deps.CartHandler.Add)
	cart.DELETE("/items/:courseId", deps.CartHandler.Remove)
	cart.DELETE("/clear", deps.CartHandler.Clear)

	pay := r.Group("/api/payment")
	pay.POST("", deps.PaymentHandler.Create)
	pay.GET("/:id", deps.PaymentHandler.Get)

	r.GET("/health", func(c *gin.Context) {
		result := deps.Checker.Readiness(c.Request.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, result)
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
