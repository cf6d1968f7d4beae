package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/infra/config"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/transport/http/handlers"
	"github.com/arklim/social-platform-accounts/internal/transport/http/middleware"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Accounts      *usecase.AccountService
	PasswordReset *usecase.PasswordResetService
	Tokens        *usecase.TokenService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config            *config.AppConfig
	Logger            *zap.Logger
	RateLimiter       *middleware.RateLimiter
	Services          ServiceSet
	PasswordValidator *security.PasswordValidator
	Metrics           *middleware.HTTPMetrics
	Database          DatabaseChecker
	Cache             CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.App.CORSAllowedOrigins))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Services.Tokens)

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	passwords := deps.PasswordValidator
	if passwords == nil {
		passwords = security.DefaultPasswordValidator(8, 2)
	}

	accountHandler := handlers.NewAccountHandler(deps.Services.Accounts, passwords)
	authHandler := handlers.NewAuthHandler(deps.Services.Accounts, deps.Services.Tokens)
	passwordHandler := handlers.NewPasswordHandler(deps.Services.PasswordReset, passwords)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		loginHandlers := appendRateLimited(deps, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts, authHandler.Login)
		authGroup.POST("/login", loginHandlers...)

		accountsGroup := api.Group("/accounts")
		signupHandlers := appendRateLimited(deps, "account_signup_ip", deps.Config.RateLimit.SignupMaxAttempts, accountHandler.Signup)
		accountsGroup.POST("", signupHandlers...)

		accountsGroup.GET("", authMiddleware, accountHandler.List)
		accountsGroup.GET("/:username", authMiddleware, accountHandler.Get)
		accountsGroup.POST("/verify", authMiddleware, accountHandler.VerifyEmail)
		accountsGroup.PATCH("/me", authMiddleware, accountHandler.Update)
		accountsGroup.PATCH("/me/profile", authMiddleware, accountHandler.UpdateProfile)

		passwordGroup := api.Group("/password")
		resetHandlers := appendRateLimited(deps, "password_reset_ip", deps.Config.RateLimit.PasswordResetMaxAttempts, passwordHandler.RequestReset)
		passwordGroup.POST("/reset/request", resetHandlers...)
		passwordGroup.POST("/reset/confirm", authMiddleware, passwordHandler.ConfirmReset)
	}

	return r
}

func appendRateLimited(deps Dependencies, name string, limit int, handler gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, 2)

	if rule, ok := buildRateLimitRule(deps, name, limit); ok {
		chain = append(chain, deps.RateLimiter.RateLimit(rule))
	}

	return append(chain, handler)
}

func buildRateLimitRule(deps Dependencies, name string, limit int) (middleware.RateLimitRule, bool) {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return middleware.RateLimitRule{}, false
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	return middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}, true
}
