package router

import (
	"github.com/feedbackdesk/feedback-backend/config"
	"github.com/feedbackdesk/feedback-backend/handlers"
	"github.com/feedbackdesk/feedback-backend/middleware"
	"github.com/feedbackdesk/feedback-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config          *config.Config
	JWTValidator    middleware.Validator
	RateLimiter     services.RateLimiterInterface // nil disables rate limiting
	FeedbackHandler *handlers.FeedbackHandler
	ListsHandler    *handlers.ListsHandler
	SettingsHandler *handlers.SettingsHandler
	AuthHandler     *handlers.AuthHandler
	MailHandler     *handlers.MailHandler
	ExportHandler   *handlers.ExportHandler
	HealthHandler   *handlers.HealthHandler
	Logger          *zap.SugaredLogger
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.Default()

	if err := r.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil {
		deps.Logger.Warnw("Invalid trusted proxies, ignoring forwarded headers", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	// Global Middleware
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	// Health and Metrics Routes
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/health/components/:component", deps.HealthHandler.ComponentHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limits := deps.Config.RateLimit
	submitLimit := rateLimit(deps.RateLimiter, "submit", limits.SubmitRequestsPerWindow, limits)
	authLimit := rateLimit(deps.RateLimiter, "login", limits.AuthRequestsPerWindow, limits)

	requireAdmin := []gin.HandlerFunc{
		middleware.AuthMiddleware(deps.JWTValidator),
		middleware.RequireAdmin(),
	}

	api := r.Group("/api")
	{
		// Public form routes
		api.GET("/lists", deps.ListsHandler.GetLists)
		api.GET("/form/config", deps.SettingsHandler.GetFormConfig)
		api.POST("/feedback", submitLimit, deps.FeedbackHandler.SubmitFeedback)
		api.POST("/mail/send-email", submitLimit, deps.MailHandler.SendEmail)
		api.POST("/admin/login", authLimit, deps.AuthHandler.Login)

		admin := api.Group("", requireAdmin...)
		{
			feedbackRoutes := admin.Group("/feedback")
			{
				feedbackRoutes.GET("", deps.FeedbackHandler.ListFeedback)
				feedbackRoutes.GET("/suggestions", deps.FeedbackHandler.SuggestEmails)
				feedbackRoutes.GET("/date-range", deps.FeedbackHandler.FeedbackByDateRange)
				feedbackRoutes.GET("/:id", deps.FeedbackHandler.GetFeedback)
				feedbackRoutes.PUT("/:id", deps.FeedbackHandler.UpdateFeedback)
				feedbackRoutes.DELETE("/:id", deps.FeedbackHandler.DeleteFeedback)
			}

			listRoutes := admin.Group("/lists")
			{
				listRoutes.POST("/individuals", deps.ListsHandler.UpdateIndividuals)
				listRoutes.POST("/services", deps.ListsHandler.UpdateServices)
			}

			adminRoutes := admin.Group("/admin")
			{
				adminRoutes.GET("/form-defaults", deps.SettingsHandler.GetFormDefaults)
				adminRoutes.POST("/form-defaults", deps.SettingsHandler.SaveFormDefaults)
				adminRoutes.POST("/change-password", deps.AuthHandler.ChangePassword)
				adminRoutes.GET("/stats", deps.FeedbackHandler.GetStats)
				adminRoutes.GET("/export", deps.ExportHandler.DownloadExport)
				adminRoutes.POST("/exports", deps.ExportHandler.CreateExport)
			}

			admin.POST("/notify-open", deps.MailHandler.NotifyOpen)
		}
	}

	return r
}

func rateLimit(limiter services.RateLimiterInterface, scope string, limit int, cfg config.RateLimitConfig) gin.HandlerFunc {
	if limiter == nil || limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimiter(limiter, scope, limit, cfg.Window())
}
