package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"equb-app-go/pkg/logger"
)

type Config struct {
	HTTPPort       string
	Env            string
	MetricsEnabled bool
	AllowedOrigins []string
	DB             DBConfig
	Auth           AuthConfig
	Sweep          SweepConfig
	Reporting      ReportingConfig
}

type DBConfig struct {
	Driver          string
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	JWTSecret   string
	SkipAuth    bool
	MockAdminID string
}

type SweepConfig struct {
	Enabled    bool
	RunAt      string
	TimeZone   string
	RunOnStart bool
}

type ReportingConfig struct {
	CacheTTL time.Duration
}

func Load(log logger.Logger) (Config, error) {
	err := loadDotEnv(log)
	if err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		DB: DBConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "equb"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			SQLitePath:      getEnv("DB_SQLITE_PATH", "equb.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("AUTH_JWT_SECRET", ""),
			SkipAuth:    getEnvBool("AUTH_SKIP", false),
			MockAdminID: getEnv("AUTH_MOCK_ADMIN_ID", "00000000-0000-0000-0000-000000000001"),
		},
		Sweep: SweepConfig{
			Enabled:    getEnvBool("SWEEP_ENABLED", true),
			RunAt:      getEnv("SWEEP_RUN_AT", "00:00"),
			TimeZone:   getEnv("SWEEP_TIMEZONE", "UTC"),
			RunOnStart: getEnvBool("SWEEP_RUN_ON_START", false),
		},
		Reporting: ReportingConfig{
			CacheTTL: getEnvDuration("REPORTING_CACHE_TTL", 30*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if !c.Auth.SkipAuth && c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: AUTH_JWT_SECRET is required unless AUTH_SKIP is set")
	}
	if _, _, err := ParseClock(c.Sweep.RunAt); err != nil {
		return fmt.Errorf("config: SWEEP_RUN_AT: %w", err)
	}
	if _, err := time.LoadLocation(c.Sweep.TimeZone); err != nil {
		return fmt.Errorf("config: SWEEP_TIMEZONE: %w", err)
	}
	return nil
}

// ParseClock parses an HH:MM wall-clock time.
func ParseClock(value string) (int, int, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	return parsed.Hour(), parsed.Minute(), nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var items []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
