package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/rootwork-enrollment-api/api/swagger"
	"github.com/noah-isme/rootwork-enrollment-api/internal/handler"
	"github.com/noah-isme/rootwork-enrollment-api/internal/middleware"
	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	"github.com/noah-isme/rootwork-enrollment-api/internal/service"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/config"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/rootwork-enrollment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/rootwork-enrollment-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	sessions     *handler.SessionHandler
	eligibility  *handler.EligibilityHandler
	registration *handler.RegistrationHandler
	payments     *handler.PaymentHandler
	enrollments  *handler.EnrollmentHandler
	auth         *handler.AuthHandler
	metrics      *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, authSvc *service.AuthService, metrics *service.MetricsService, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	sessions := api.Group("/sessions")
	sessions.GET("", h.sessions.List)
	sessions.GET("/dates", h.sessions.Dates)
	sessions.GET("/dates/:date/spots", h.sessions.DateSpots)
	sessions.GET("/:id", h.sessions.Get)

	api.POST("/eligibility", h.eligibility.Evaluate)
	api.GET("/scholarship", h.eligibility.Scholarship)
	api.POST("/payments/quote", h.eligibility.Quote)

	registrations := api.Group("/registrations")
	registrations.POST("", h.registration.Start)
	registrations.GET("/:token", h.registration.Get)
	registrations.PUT("/:token/steps/:step", h.registration.SaveStep)

	api.POST("/checkout", h.payments.Checkout)
	api.POST("/webhooks/stripe", h.payments.StripeWebhook)

	api.GET("/enrollments/:id/confirmation", h.enrollments.Confirmation)
	api.GET("/enrollments/:id/receipt", h.enrollments.Receipt)

	auth := api.Group("/auth")
	auth.POST("/login", h.auth.Login)
	auth.GET("/me", middleware.JWT(authSvc), h.auth.Me)

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
	admin.POST("/sessions/generate", h.sessions.Generate)
	admin.GET("/enrollments", h.enrollments.List)
	admin.GET("/enrollments/export", h.enrollments.Export)
	admin.POST("/enrollments/:id/cancel", h.enrollments.Cancel)

	return r
}
