package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/noah-isme/rootwork-enrollment-api/internal/dto"
	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	"github.com/noah-isme/rootwork-enrollment-api/internal/repository"
	"github.com/noah-isme/rootwork-enrollment-api/internal/service"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/config"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/database"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/logger"
)

func main() {
	var (
		adminEmail string
		adminName  string
		adminRole  string
		sessions   bool
		startDate  string
		horizon    int
		timeout    time.Duration
	)

	flag.StringVar(&adminEmail, "admin-email", "", "Email of the admin account to create (password read from SEED_ADMIN_PASSWORD)")
	flag.StringVar(&adminName, "admin-name", "RootWork Staff", "Display name for the admin account")
	flag.StringVar(&adminRole, "admin-role", string(models.RoleSuperAdmin), "Role for the admin account (ADMIN or SUPER_ADMIN)")
	flag.BoolVar(&sessions, "sessions", true, "Persist the generated session window")
	flag.StringVar(&startDate, "start", "", "First date to generate (YYYY-MM-DD, defaults to today)")
	flag.IntVar(&horizon, "horizon", 0, "Days to generate (defaults to AVAILABILITY_HORIZON_DAYS)")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := repository.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("schema", zap.Error(err))
	}
	logr.Info("schema ready")

	if adminEmail != "" {
		role := models.AdminRole(strings.ToUpper(adminRole))
		if role != models.RoleAdmin && role != models.RoleSuperAdmin {
			logr.Fatal("unknown admin role", zap.String("role", adminRole))
		}
		if err := seedAdmin(ctx, repository.NewAdminRepository(db), adminEmail, adminName, role, os.Getenv("SEED_ADMIN_PASSWORD")); err != nil {
			logr.Fatal("seed admin", zap.Error(err))
		}
		logr.Info("admin ready", zap.String("email", adminEmail), zap.String("role", string(role)))
	}

	if sessions {
		policy := service.DefaultAvailabilityPolicy()
		if cfg.Availability.PolicyPath != "" {
			if policy, err = service.LoadAvailabilityPolicy(cfg.Availability.PolicyPath); err != nil {
				logr.Fatal("failed to load availability policy", zap.Error(err))
			}
		}
		location, err := time.LoadLocation(cfg.Availability.Timezone)
		if err != nil {
			logr.Fatal("invalid availability timezone", zap.Error(err))
		}
		availability := service.NewAvailabilityService(repository.NewSessionRepository(db), service.AvailabilityOptions{
			Source:      config.AvailabilitySourcePersisted,
			Policy:      policy,
			HorizonDays: cfg.Availability.HorizonDays,
			Location:    location,
		}, nil, nil, logr)
		result, err := availability.Persist(ctx, dto.GenerateSessionsRequest{StartDate: startDate, HorizonDays: horizon})
		if err != nil {
			logr.Fatal("seed sessions", zap.Error(err))
		}
		logr.Sugar().Infow("sessions ready", "from", result.From.String(), "to", result.To.String(), "generated", result.Generated, "inserted", result.Inserted)
	}
}

type adminStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) error
}

// seedAdmin creates the account unless one with the same email exists.
func seedAdmin(ctx context.Context, repo adminStore, email, name string, role models.AdminRole, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}
	return repo.Create(ctx, &models.Admin{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		Active:       true,
	})
}
