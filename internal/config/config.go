// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"-"` // SERVER_TIMEOUT_SECONDS

	// Database Configuration
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"-"` // DB_CONN_MAX_LIFETIME_MINUTES
	DBSource          string        `mapstructure:"DB_SOURCE"`
	DBSQLitePath      string        `mapstructure:"DB_SQLITE_PATH"`
	DBAutoMigrate     bool          `mapstructure:"DB_AUTO_MIGRATE"`
	DBRetryAttempts   int           `mapstructure:"DB_RETRY_ATTEMPTS"`
	DBRetryBackoff    time.Duration `mapstructure:"-"` // DB_RETRY_BACKOFF_MS

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Introductions & search
	IntroductionTTL               time.Duration `mapstructure:"-"` // INTRODUCTION_TTL_HOURS
	IntroductionExpiryJobSchedule string        `mapstructure:"INTRODUCTION_EXPIRY_JOB_SCHEDULE"`
	SearchMaxPageSize             int           `mapstructure:"SEARCH_MAX_PAGE_SIZE"`
	ZipGeoDataPath                string        `mapstructure:"ZIP_GEO_DATA_PATH"`

	// Reference catalog
	CatalogAPIURL        string        `mapstructure:"CATALOG_API_URL"`
	CatalogCacheTTL      time.Duration `mapstructure:"-"` // CATALOG_CACHE_TTL_MINUTES
	CatalogCacheMaxMakes int           `mapstructure:"CATALOG_CACHE_MAX_MAKES"`
	CatalogHTTPTimeout   time.Duration `mapstructure:"-"` // CATALOG_HTTP_TIMEOUT_SECONDS

	// Outbound notifications
	NotifierChannel string `mapstructure:"NOTIFIER_CHANNEL"`
	SESRegion       string `mapstructure:"SES_REGION"`
	SESFromAddress  string `mapstructure:"SES_FROM_ADDRESS"`
	SNSRegion       string `mapstructure:"SNS_REGION"`
	SNSTopicARN     string `mapstructure:"SNS_TOPIC_ARN"`
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int    `mapstructure:"REDIS_DB"`
	RedisOutboxKey  string `mapstructure:"REDIS_OUTBOX_KEY"`

	// Vehicle image uploads
	S3Region         string        `mapstructure:"S3_REGION"`
	S3BucketName     string        `mapstructure:"S3_BUCKET_NAME"`
	S3PresignExpiry  time.Duration `mapstructure:"-"` // S3_PRESIGN_EXPIRY_MINUTES
	VehicleMaxImages int           `mapstructure:"VEHICLE_MAX_IMAGES"`

	// Metrics
	MetricsEnabled bool `mapstructure:"METRICS_ENABLED"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Duration fields are read as integers in their documented unit.
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.DBRetryBackoff = time.Duration(v.GetInt("DB_RETRY_BACKOFF_MS")) * time.Millisecond
	cfg.IntroductionTTL = time.Duration(v.GetInt("INTRODUCTION_TTL_HOURS")) * time.Hour
	cfg.CatalogCacheTTL = time.Duration(v.GetInt("CATALOG_CACHE_TTL_MINUTES")) * time.Minute
	cfg.CatalogHTTPTimeout = time.Duration(v.GetInt("CATALOG_HTTP_TIMEOUT_SECONDS")) * time.Second
	cfg.S3PresignExpiry = time.Duration(v.GetInt("S3_PRESIGN_EXPIRY_MINUTES")) * time.Minute

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.NotifierChannel = strings.ToLower(strings.TrimSpace(cfg.NotifierChannel))

	// GORM uses the key/value DSN built from the individual DB_* params.
	cfg.DBSource = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode, cfg.DBTimezone)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "carmatch_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)
	v.SetDefault("DB_SQLITE_PATH", "carmatch.db")
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("DB_RETRY_ATTEMPTS", 3)
	v.SetDefault("DB_RETRY_BACKOFF_MS", 200)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("INTRODUCTION_TTL_HOURS", 72)
	v.SetDefault("INTRODUCTION_EXPIRY_JOB_SCHEDULE", "@hourly")
	v.SetDefault("SEARCH_MAX_PAGE_SIZE", 50)
	v.SetDefault("ZIP_GEO_DATA_PATH", "")

	v.SetDefault("CATALOG_API_URL", "https://vpic.nhtsa.dot.gov/api/vehicles")
	v.SetDefault("CATALOG_CACHE_TTL_MINUTES", 1440)
	v.SetDefault("CATALOG_CACHE_MAX_MAKES", 200)
	v.SetDefault("CATALOG_HTTP_TIMEOUT_SECONDS", 10)

	v.SetDefault("NOTIFIER_CHANNEL", "log")
	v.SetDefault("SES_REGION", "us-east-1")
	v.SetDefault("SES_FROM_ADDRESS", "no-reply@carmatch.local")
	v.SetDefault("SNS_REGION", "us-east-1")
	v.SetDefault("SNS_TOPIC_ARN", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_OUTBOX_KEY", "carmatch:notifications:outbox")

	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET_NAME", "")
	v.SetDefault("S3_PRESIGN_EXPIRY_MINUTES", 5)
	v.SetDefault("VEHICLE_MAX_IMAGES", 5)

	v.SetDefault("METRICS_ENABLED", true)
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("FATAL: DB_DRIVER must be 'postgres' or 'sqlite', got %q", c.DBDriver)
	}
	switch c.NotifierChannel {
	case "log", "ses", "sns", "redis":
	default:
		return fmt.Errorf("FATAL: NOTIFIER_CHANNEL must be one of log, ses, sns, redis, got %q", c.NotifierChannel)
	}
	if c.NotifierChannel == "sns" && strings.TrimSpace(c.SNSTopicARN) == "" {
		return fmt.Errorf("FATAL: SNS_TOPIC_ARN is required when NOTIFIER_CHANNEL=sns")
	}
	if c.NotifierChannel == "ses" && strings.TrimSpace(c.SESFromAddress) == "" {
		return fmt.Errorf("FATAL: SES_FROM_ADDRESS is required when NOTIFIER_CHANNEL=ses")
	}
	if c.IntroductionTTL <= 0 {
		return fmt.Errorf("FATAL: INTRODUCTION_TTL_HOURS must be positive")
	}
	if c.SearchMaxPageSize <= 0 {
		return fmt.Errorf("FATAL: SEARCH_MAX_PAGE_SIZE must be positive")
	}
	if c.DBRetryAttempts < 1 {
		c.DBRetryAttempts = 1
	}
	return nil
}
