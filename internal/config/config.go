package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Store        StoreConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Escalation   EscalationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StoreConfig selects the row-store backend and tunes identifier/timestamp
// rendering.
type StoreConfig struct {
	Backend        string // memory | postgres | redis
	TicketPrefix   string
	UTCOffsetMin   int
	TimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunBootstrap   bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level   string
	Pretty  bool
	Service string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// NotificationConfig configures the outbound notification sink.
type NotificationConfig struct {
	WebhookURL        string
	SendTimeoutSec    int
	InterSendDelayMS  int
	RatingAlertEnable bool
}

// EscalationConfig tunes the stale-ticket scanner.
type EscalationConfig struct {
	ScanIntervalMinutes int
	Tier1Hours          int
	Tier2Hours          int
	OverdueBumpDays     []int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "facility-helpdesk"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Store: StoreConfig{
			Backend:        getEnv("STORE_BACKEND", "memory"),
			TicketPrefix:   getEnv("TICKET_ID_PREFIX", "SBH"),
			UTCOffsetMin:   getEnvAsInt("STORE_UTC_OFFSET_MINUTES", 330),
			TimeoutSeconds: getEnvAsInt("STORE_TIMEOUT_SECONDS", 10),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunBootstrap:   getEnvAsBool("POSTGRES_RUN_BOOTSTRAP", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Pretty:  getEnvAsBool("LOG_PRETTY", false),
			Service: getEnv("APP_NAME", "facility-helpdesk"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			WebhookURL:        getEnv("NOTIFY_WEBHOOK_URL", ""),
			SendTimeoutSec:    getEnvAsInt("NOTIFY_SEND_TIMEOUT_SECONDS", 10),
			InterSendDelayMS:  getEnvAsInt("NOTIFY_INTER_SEND_DELAY_MS", 1500),
			RatingAlertEnable: getEnvAsBool("NOTIFY_RATING_ALERTS", false),
		},
		Escalation: EscalationConfig{
			ScanIntervalMinutes: getEnvAsInt("ESCALATION_SCAN_INTERVAL_MINUTES", 60),
			Tier1Hours:          getEnvAsInt("ESCALATION_TIER1_HOURS", 24),
			Tier2Hours:          getEnvAsInt("ESCALATION_TIER2_HOURS", 4),
			OverdueBumpDays:     []int{10, 15},
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Location returns the fixed-offset location used when rendering
// human-readable timestamps.
func (s StoreConfig) Location() *time.Location {
	return time.FixedZone("local", s.UTCOffsetMin*60)
}

// ScanInterval returns the scheduler cadence.
func (e EscalationConfig) ScanInterval() time.Duration {
	if e.ScanIntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(e.ScanIntervalMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
