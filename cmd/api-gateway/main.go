package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/rootwork-enrollment-api/internal/handler"
	"github.com/noah-isme/rootwork-enrollment-api/internal/repository"
	"github.com/noah-isme/rootwork-enrollment-api/internal/service"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/cache"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/config"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/database"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/export"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/jobs"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/logger"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/payments"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/roster"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/storage"
)

// @title RootWork Enrollment API
// @version 1.0.0
// @description Session availability, scholarship eligibility, registration and payments for the RootWork Framework program
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close() //nolint:errcheck

	policy := service.DefaultAvailabilityPolicy()
	if cfg.Availability.PolicyPath != "" {
		if policy, err = service.LoadAvailabilityPolicy(cfg.Availability.PolicyPath); err != nil {
			logr.Fatal("failed to load availability policy", zap.Error(err))
		}
	}
	location, err := time.LoadLocation(cfg.Availability.Timezone)
	if err != nil {
		logr.Fatal("invalid availability timezone", zap.String("timezone", cfg.Availability.Timezone), zap.Error(err))
	}

	schools := roster.Default()
	if cfg.Scholarship.RosterPath != "" {
		if schools, err = roster.Load(cfg.Scholarship.RosterPath); err != nil {
			logr.Fatal("failed to load scholarship roster", zap.Error(err))
		}
	}

	pricing, err := service.PricingFromConfig(cfg.Pricing)
	if err != nil {
		logr.Fatal("invalid pricing", zap.Error(err))
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	sessionRepo := repository.NewSessionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	draftRepo := repository.NewRegistrationDraftRepository(redisClient, logr)

	gateway := payments.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, logr)
	if cfg.Stripe.SecretKey == "" {
		logr.Warn("stripe credentials missing; paid checkouts will be refused")
	}
	receiptSigner := storage.NewSignedURLSigner(cfg.Receipts.SignedURLSecret, cfg.Receipts.SignedURLTTL)

	availabilitySvc := service.NewAvailabilityService(sessionRepo, service.AvailabilityOptions{
		Source:      cfg.Availability.Source,
		Policy:      policy,
		HorizonDays: cfg.Availability.HorizonDays,
		Location:    location,
	}, validate, metrics, logr)
	eligibilitySvc := service.NewEligibilityService(schools, pricing, validate, metrics, logr)
	registrationSvc := service.NewRegistrationService(draftRepo, availabilitySvc, cfg.Registration.DraftTTL, validate, logr)
	checkoutSvc := service.NewCheckoutService(service.CheckoutDeps{
		Tx:          db,
		Drafts:      draftRepo,
		Sessions:    availabilitySvc,
		Seats:       sessionRepo,
		Students:    studentRepo,
		Enrollments: enrollmentRepo,
		Pricer:      eligibilitySvc,
		Gateway:     gateway,
	}, validate, metrics, logr)
	confirmationSvc := service.NewConfirmationService(enrollmentRepo, schools, receiptSigner, export.NewDocumentRenderer(), service.ConfirmationOptions{
		BaseURL:   cfg.BaseURL,
		APIPrefix: cfg.APIPrefix,
		Currency:  pricing.Currency,
	}, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, sessionRepo, db, pricing.Currency, validate, logr)
	authSvc := service.NewAuthService(adminRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	paymentWorker := service.NewPaymentEventWorker(enrollmentRepo, metrics, logr)
	paymentQueue := jobs.NewQueue(service.PaymentEventsQueue, paymentWorker.Handle, jobs.QueueConfig{
		Workers:     cfg.Webhooks.Workers,
		MaxRetries:  cfg.Webhooks.MaxRetries,
		RetryDelay:  cfg.Webhooks.RetryDelay,
		Logger:      logr,
		OnExhausted: paymentWorker.Exhausted,
	})
	webhookSvc := service.NewPaymentWebhookService(gateway, paymentQueue, metrics, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	paymentQueue.Start(ctx)

	r := newRouter(cfg, logr, authSvc, metrics, routeHandlers{
		sessions:     handler.NewSessionHandler(availabilitySvc),
		eligibility:  handler.NewEligibilityHandler(eligibilitySvc),
		registration: handler.NewRegistrationHandler(registrationSvc),
		payments:     handler.NewPaymentHandler(checkoutSvc, webhookSvc),
		enrollments:  handler.NewEnrollmentHandler(confirmationSvc, enrollmentSvc),
		auth:         handler.NewAuthHandler(authSvc),
		metrics: handler.NewMetricsHandler(metrics, map[string]handler.HealthCheck{
			"postgres": db.PingContext,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		}),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "availability_source", cfg.Availability.Source)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	paymentQueue.Stop()
}
