package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Availability sources.
const (
	AvailabilitySourceGenerated = "generated"
	AvailabilitySourcePersisted = "persisted"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	BaseURL   string

	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Log          LogConfig
	Pricing      PricingConfig
	Availability AvailabilityConfig
	Scholarship  ScholarshipConfig
	Registration RegistrationConfig
	Stripe       StripeConfig
	Receipts     ReceiptsConfig
	Webhooks     WebhookWorkerConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PricingConfig holds the price constants used by the payment calculator.
type PricingConfig struct {
	SessionPrice    string
	CurriculumPrice string
	DepositRate     string
	Currency        string
}

// AvailabilityConfig selects where bookable sessions come from.
type AvailabilityConfig struct {
	Source      string
	PolicyPath  string
	HorizonDays int
	Timezone    string
}

// ScholarshipConfig points at the qualifying-school roster document.
type ScholarshipConfig struct {
	RosterPath string
}

// RegistrationConfig tunes the registration wizard drafts.
type RegistrationConfig struct {
	DraftTTL time.Duration
}

// StripeConfig carries gateway credentials.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// ReceiptsConfig configures signed receipt links.
type ReceiptsConfig struct {
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// WebhookWorkerConfig sizes the payment event worker pool.
type WebhookWorkerConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.BaseURL = strings.TrimRight(v.GetString("BASE_URL"), "/")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Pricing = PricingConfig{
		SessionPrice:    v.GetString("PRICE_SESSION"),
		CurriculumPrice: v.GetString("PRICE_CURRICULUM"),
		DepositRate:     v.GetString("DEPOSIT_RATE"),
		Currency:        strings.ToLower(v.GetString("CURRENCY")),
	}

	source := strings.ToLower(v.GetString("AVAILABILITY_SOURCE"))
	if source != AvailabilitySourcePersisted {
		source = AvailabilitySourceGenerated
	}
	cfg.Availability = AvailabilityConfig{
		Source:      source,
		PolicyPath:  v.GetString("AVAILABILITY_POLICY_PATH"),
		HorizonDays: v.GetInt("AVAILABILITY_HORIZON_DAYS"),
		Timezone:    v.GetString("AVAILABILITY_TIMEZONE"),
	}

	cfg.Scholarship = ScholarshipConfig{
		RosterPath: v.GetString("SCHOLARSHIP_ROSTER_PATH"),
	}

	cfg.Registration = RegistrationConfig{
		DraftTTL: parseDuration(v.GetString("REGISTRATION_DRAFT_TTL"), 24*time.Hour),
	}

	cfg.Stripe = StripeConfig{
		SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
		WebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
	}

	cfg.Receipts = ReceiptsConfig{
		SignedURLSecret: v.GetString("RECEIPTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("RECEIPTS_SIGNED_URL_TTL"), 30*24*time.Hour),
	}

	cfg.Webhooks = WebhookWorkerConfig{
		Workers:    v.GetInt("WEBHOOK_WORKERS"),
		MaxRetries: v.GetInt("WEBHOOK_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("WEBHOOK_RETRY_DELAY"), 2*time.Second),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("BASE_URL", "http://localhost:8080")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "rootwork_enrollment")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("JWT_ISSUER", "rootwork-enrollment-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PRICE_SESSION", "75")
	v.SetDefault("PRICE_CURRICULUM", "35")
	v.SetDefault("DEPOSIT_RATE", "0.5")
	v.SetDefault("CURRENCY", "usd")

	v.SetDefault("AVAILABILITY_SOURCE", AvailabilitySourceGenerated)
	v.SetDefault("AVAILABILITY_POLICY_PATH", "")
	v.SetDefault("AVAILABILITY_HORIZON_DAYS", 0)
	v.SetDefault("AVAILABILITY_TIMEZONE", "America/New_York")

	v.SetDefault("SCHOLARSHIP_ROSTER_PATH", "")
	v.SetDefault("REGISTRATION_DRAFT_TTL", "24h")

	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_WEBHOOK_SECRET", "")

	v.SetDefault("RECEIPTS_SIGNED_URL_SECRET", "dev_receipts_secret")
	v.SetDefault("RECEIPTS_SIGNED_URL_TTL", "720h")

	v.SetDefault("WEBHOOK_WORKERS", 2)
	v.SetDefault("WEBHOOK_MAX_RETRIES", 5)
	v.SetDefault("WEBHOOK_RETRY_DELAY", "2s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
