package handler

import (
	"net/http"

	"airport-vms/internal/adapter/http/middleware"
	"airport-vms/internal/core/domain"
	"airport-vms/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AppSvc         ports.ApplicationService
	ReviewSvc      ports.ReviewService
	AuthSvc        ports.AuthService
	RateLimitStore middleware.RateLimitStore // nil = rate limiting disabled
	AuditSvc       ports.AuditService        // nil = audit logging disabled
	HealthCheckers []ports.HealthChecker
	Metrics        Instrumentation // nil = no /metrics endpoint
	SwaggerSpec    []byte
	Mode           string // gin mode; defaults to release
	Logger         zerolog.Logger
}

// Instrumentation is the HTTP face of the metrics adapter.
type Instrumentation interface {
	Middleware() gin.HandlerFunc
	Handler() http.Handler
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	mode := deps.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBodyBytes))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
	}

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec(deps.SwaggerSpec))
	}

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	jwtAuth := middleware.JWTAuth(deps.AuthSvc, deps.Logger)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// --- Auth ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/login", rl("auth_login"), authHandler.Login)
		auth.GET("/verify", jwtAuth, authHandler.Verify)
	}

	// --- Vendor applications ---
	appHandler := NewApplicationHandler(deps.AppSvc, deps.ReviewSvc)
	apps := v1.Group("/vendor-applications")
	{
		apps.POST("/submit", rl("applications_submit"), appHandler.Submit)
		apps.GET("/check/:email", rl("applications_check"), appHandler.CheckStatus)

		admin := apps.Group("", jwtAuth, adminOnly, rl("admin"))
		admin.GET("", appHandler.List)
		admin.GET("/status/:status", appHandler.ListByStatus)
		admin.GET("/:id", appHandler.Get)
		admin.PATCH("/:id/status", appHandler.Review)
	}

	return r
}
