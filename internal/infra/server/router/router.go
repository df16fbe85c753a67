// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/money-tracker/backend/internal/integration/entrypoint/controller"
	"github.com/money-tracker/backend/internal/integration/entrypoint/middleware"
)

// Controllers groups the HTTP handlers. A nil controller leaves its routes unregistered.
type Controllers struct {
	Health    *controller.HealthController
	Auth      *controller.AuthController
	User      *controller.UserController
	Record    *controller.RecordController
	Analytics *controller.AnalyticsController
	Settings  *controller.SettingsController
	Advisor   *controller.AdvisorController
}

// Middlewares groups the shared request filters.
type Middlewares struct {
	Auth               *middleware.AuthMiddleware
	LoginRateLimiter   *middleware.RateLimiter
	AdvisorRateLimiter *middleware.RateLimiter
}

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine      *gin.Engine
	controllers Controllers
	middlewares Middlewares
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(controllers Controllers, middlewares Middlewares) *Router {
	return &Router{
		controllers: controllers,
		middlewares: middlewares,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	switch environment {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test", "e2e":
		gin.SetMode(gin.TestMode)
	}

	r.engine = gin.New()
	if gin.Mode() == gin.ReleaseMode {
		r.engine.Use(gin.Recovery())
	} else {
		r.engine.Use(middleware.RequestLogger(gin.DefaultWriter), gin.Recovery())
	}

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

func (r *Router) setupHealthRoutes() {
	if r.controllers.Health != nil {
		r.engine.GET("/health", r.controllers.Health.Check)
	}
}

func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")

	if c := r.controllers.Auth; c != nil {
		auth := v1.Group("/auth")
		{
			auth.POST("/register", c.Register)
			auth.POST("/login", limit(r.middlewares.LoginRateLimiter), c.Login)
			auth.POST("/refresh", c.RefreshToken)
			auth.POST("/logout", c.Logout)
			auth.POST("/verify-email", c.VerifyEmail)
			auth.POST("/resend-verification", c.ResendVerification)
		}
	}

	if r.middlewares.Auth == nil {
		return
	}

	// Account changes only need a valid token; an unverified user is told to verify first.
	if c := r.controllers.User; c != nil {
		account := v1.Group("/account")
		account.Use(r.middlewares.Auth.Authenticate())
		{
			account.PATCH("/password", c.ChangePassword)
			account.PATCH("/email", c.UpdateEmail)
		}
	}

	protected := v1.Group("")
	protected.Use(r.middlewares.Auth.Authenticate(), r.middlewares.Auth.RequireVerifiedEmail())

	if c := r.controllers.Record; c != nil {
		records := protected.Group("/records")
		{
			records.POST("", c.Create)
			records.GET("", c.List)
		}
	}

	if c := r.controllers.Analytics; c != nil {
		analytics := protected.Group("/analytics")
		{
			analytics.GET("", c.Get)
			analytics.GET("/stats", c.Stats)
			analytics.GET("/live", c.Live)
		}
	}

	if c := r.controllers.Settings; c != nil {
		settings := protected.Group("/settings")
		{
			settings.GET("", c.Get)
			settings.PATCH("", c.Update)
			settings.GET("/history", c.History)
		}
	}

	if c := r.controllers.Advisor; c != nil {
		advisor := protected.Group("/advisor")
		{
			advisor.POST("/questions", limit(r.middlewares.AdvisorRateLimiter), c.Ask)
		}
	}
}

// limit returns the limiter's handler, or a pass-through when none is configured.
func limit(limiter *middleware.RateLimiter) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return limiter.Middleware()
}
