package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Joebakid/Gudrix/internal/notify"
	"github.com/Joebakid/Gudrix/internal/paystack"
	"github.com/Joebakid/Gudrix/internal/pricing"
	"github.com/Joebakid/Gudrix/internal/repository"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

type Config struct {
	HTTPPort           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
	AllowedOrigins     []string
	// VerifyRateLimit is verification requests per minute per client IP.
	VerifyRateLimit int
	SessionTTL      time.Duration

	StoreDriver string
	MongoURI    string
	MongoDB     string
	Postgres    repository.Credentials

	CatalogDBPath         string
	CatalogMigrationsPath string

	RedisAddr     string
	RedisPassword string

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	PaystackBaseURL string
	PaystackSecret  string
	ProviderTimeout time.Duration

	// PaystackSandbox serves a local provider stand-in instead of calling Paystack.
	PaystackSandbox    bool
	SandboxSuccessRate int

	SMTP notify.SMTPConfig

	AdminJWTSecret string

	MinOrderAmount decimal.Decimal
	ShippingTiers  pricing.ShippingSchedule
	Currency       string
	CurrencySymbol string
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return loadConfig()
}

func loadConfig() (*Config, error) {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		RequestTimeout:     30 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		MaxRequestBodySize: 1 << 20,
		AllowedOrigins:     splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		StoreDriver: strings.ToLower(getEnv("ORDER_STORE", StoreMemory)),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "storefront"),
		Postgres: repository.Credentials{
			Host:              getEnv("DB_HOST", "localhost"),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "storefront"),
			MigrationsDirPath: getEnv("DB_MIGRATIONS_PATH", "internal/repository/migrations"),
		},

		CatalogDBPath:         getEnv("CATALOG_DB_PATH", "catalog.db"),
		CatalogMigrationsPath: getEnv("CATALOG_MIGRATIONS_PATH", "internal/catalog/migrations"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", notify.DefaultTopic),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "order-notifier"),

		PaystackBaseURL: getEnv("PAYSTACK_BASE_URL", paystack.DefaultBaseURL),
		PaystackSecret:  getEnv("PAYSTACK_SECRET_KEY", ""),
		PaystackSandbox: getEnv("PAYSTACK_SANDBOX", "false") == "true",

		SMTP: notify.SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
			To:       splitList(getEnv("ORDER_NOTIFY_TO", "")),
		},

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		Currency:       strings.ToUpper(getEnv("CURRENCY", "NGN")),
		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₦"),
	}

	var err error
	cfg.Postgres.Port, err = getEnvInt("DB_PORT", 5432)
	collect(err)
	cfg.VerifyRateLimit, err = getEnvInt("VERIFY_RATE_LIMIT", 10)
	collect(err)
	cfg.ProviderTimeout, err = getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second)
	collect(err)
	cfg.SessionTTL, err = getEnvDuration("SESSION_TTL", 2*time.Hour)
	collect(err)
	cfg.SandboxSuccessRate, err = getEnvInt("PAYSTACK_SANDBOX_SUCCESS_RATE", 100)
	collect(err)
	if cfg.SandboxSuccessRate < 0 || cfg.SandboxSuccessRate > 100 {
		collect(fmt.Errorf("PAYSTACK_SANDBOX_SUCCESS_RATE must be between 0 and 100"))
	}

	cfg.MinOrderAmount, err = decimal.NewFromString(getEnv("MIN_ORDER_AMOUNT", "10000"))
	if err != nil {
		collect(fmt.Errorf("MIN_ORDER_AMOUNT: %w", err))
	} else if cfg.MinOrderAmount.IsNegative() {
		collect(fmt.Errorf("MIN_ORDER_AMOUNT must not be negative"))
	}

	cfg.ShippingTiers, err = pricing.ParseSchedule(getEnv("SHIPPING_TIERS", "0:0,1:3500,2:4000,3:5000"))
	if err != nil {
		collect(fmt.Errorf("SHIPPING_TIERS: %w", err))
	}

	switch cfg.StoreDriver {
	case StoreMemory, StoreMongo, StorePostgres:
	default:
		collect(fmt.Errorf("ORDER_STORE: unknown driver %q", cfg.StoreDriver))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
