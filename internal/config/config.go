package config

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type SessionBackend string

const (
	SessionBackendJWT   SessionBackend = "jwt"   // Signed, self-contained tokens (default)
	SessionBackendStore SessionBackend = "store" // Opaque tokens backed by the sessions table
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Logging
		Metrics
		Tasks
		Audit
		Pagination
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		Environment              string
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver       string // "sqlite" or "postgres"
		Path         string // SQLite file path
		DSN          string // PostgreSQL connection string
		MaxOpenConns int
		LogLevel     string // gorm logger level: silent, error, warn, info
	}
	Auth struct {
		SessionBackend SessionBackend
		JWTSecret      string
		TokenTTL       time.Duration
		CookieName     string
		SecureCookies  bool // Set to false for local dev without HTTPS
		BcryptCost     int

		LoginMaxAttempts int           // Failed logins before lockout; 0 disables
		LoginLockout     time.Duration // Lockout length and failure window
		RateLimitRPS     float64       // Per-IP requests/sec on /signup and /login; 0 disables
		RateLimitBurst   int
	}
	Logging struct {
		Level  string
		Format string // "text" or "json"
	}
	Metrics struct {
		Enabled bool
	}
	Tasks struct {
		Enabled         bool
		DatabasePath    string // Defaults to "<database>-tasks.db" next to the SQLite file
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Audit struct {
		Enabled         bool
		RetentionDays   int    // Days to keep audit events (default: 30)
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Pagination struct {
		PageSize int
	}
)

// IsProduction reports whether the service runs with production settings.
func (g Global) IsProduction() bool {
	return g.Environment == "production"
}

// loadDotEnv reads a .env file into the process environment when one exists.
// Variables already set in the environment win.
func loadDotEnv() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("WARNING: failed to load .env file: %v", err)
	}
}

func NewConfig() *Config {
	loadDotEnv()

	v := viper.New()
	v.AutomaticEnv()

	// Names used by earlier deployments of the service.
	_ = v.BindEnv("auth_token_ttl", "AUTH_TOKEN_TTL", "JWT_EXPIRES_IN")
	_ = v.BindEnv("auth_bcrypt_cost", "AUTH_BCRYPT_COST", "BCRYPT_ROUNDS")
	_ = v.BindEnv("environment", "ENVIRONMENT", "NODE_ENV")

	v.SetDefault("port", 3000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("environment", "development")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_max_open_conns", 1)
	v.SetDefault("database_log_level", "warn")

	// Auth defaults
	v.SetDefault("auth_session_backend", string(SessionBackendJWT))
	v.SetDefault("jwt_secret", "") // Auto-generated if empty
	v.SetDefault("auth_token_ttl", "1h")
	v.SetDefault("auth_cookie_name", DefaultCookieName)
	v.SetDefault("auth_secure_cookies", v.GetString("ENVIRONMENT") == "production")
	v.SetDefault("auth_bcrypt_cost", 10)
	v.SetDefault("auth_login_max_attempts", 5)
	v.SetDefault("auth_login_lockout", "15m")
	v.SetDefault("auth_rate_limit_rps", 5)
	v.SetDefault("auth_rate_limit_burst", 10)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("metrics_enabled", true)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_database_path", "")
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *")

	v.SetDefault("page_size", DefaultPageSize)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			Environment:              v.GetString("ENVIRONMENT"),
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver:       v.GetString("DATABASE_DRIVER"),
			Path:         v.GetString("DATABASE_PATH"),
			DSN:          v.GetString("DATABASE_DSN"),
			MaxOpenConns: v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			LogLevel:     v.GetString("DATABASE_LOG_LEVEL"),
		},
		Auth: Auth{
			SessionBackend: SessionBackend(v.GetString("AUTH_SESSION_BACKEND")),
			JWTSecret:      v.GetString("JWT_SECRET"),
			TokenTTL:       v.GetDuration("AUTH_TOKEN_TTL"),
			CookieName:     v.GetString("AUTH_COOKIE_NAME"),
			SecureCookies:  v.GetBool("AUTH_SECURE_COOKIES"),
			BcryptCost:     v.GetInt("AUTH_BCRYPT_COST"),

			LoginMaxAttempts: v.GetInt("AUTH_LOGIN_MAX_ATTEMPTS"),
			LoginLockout:     v.GetDuration("AUTH_LOGIN_LOCKOUT"),
			RateLimitRPS:     v.GetFloat64("AUTH_RATE_LIMIT_RPS"),
			RateLimitBurst:   v.GetInt("AUTH_RATE_LIMIT_BURST"),
		},
		Logging: Logging{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			DatabasePath:    v.GetString("TASK_DATABASE_PATH"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Audit: Audit{
			Enabled:         v.GetBool("AUDIT_ENABLED"),
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Pagination: Pagination{
			PageSize: v.GetInt("PAGE_SIZE"),
		},
	}
}
