package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	SMTP         SMTPConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `env:"APP_NAME" envDefault:"helpdesk-service"`
	Env                   string `env:"APP_ENV" envDefault:"development"`
	Host                  string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port                  string `env:"APP_PORT" envDefault:"5000"`
	Version               string `env:"APP_VERSION" envDefault:"dev"`
	RequestTimeoutSeconds int    `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
	CORSOrigins           string `env:"HTTP_CORS_ORIGINS" envDefault:"*"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN             string `env:"POSTGRES_DSN"`
	MaxConns        int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns        int32  `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	RunMigrations   bool   `env:"POSTGRES_RUN_MIGRATIONS" envDefault:"true"`
	MigrationsDir   string `env:"POSTGRES_MIGRATIONS_DIR" envDefault:"migrations"`
	ConnMaxIdleSec  int32  `env:"POSTGRES_CONN_MAX_IDLE_SECONDS" envDefault:"30"`
	ConnMaxLifeSec  int32  `env:"POSTGRES_CONN_MAX_LIFE_SECONDS" envDefault:"300"`
	ApplicationName string `env:"POSTGRES_APPLICATION_NAME" envDefault:"helpdesk-service"`
}

// RedisConfig holds Redis connection values. An empty Addr disables redis.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret            string        `env:"AUTH_JWT_SECRET" envDefault:"dev-secret"`
	SessionTTL           time.Duration `env:"AUTH_SESSION_TTL" envDefault:"24h"`
	VerificationSecret   string        `env:"AUTH_VERIFICATION_SECRET" envDefault:"dev-verification-secret"`
	VerificationTTL      time.Duration `env:"AUTH_VERIFICATION_TTL" envDefault:"15m"`
	BcryptCost           int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`
	LoginMaxFailures     int           `env:"AUTH_LOGIN_MAX_FAILURES" envDefault:"5"`
	LoginFailureWindow   time.Duration `env:"AUTH_LOGIN_FAILURE_WINDOW" envDefault:"15m"`
	LoginThrottleEnabled bool          `env:"AUTH_LOGIN_THROTTLE_ENABLED" envDefault:"true"`
}

// NotificationConfig controls outbound notices.
type NotificationConfig struct {
	EmailFrom  string `env:"NOTIFY_EMAIL_FROM" envDefault:"noreply@example.com"`
	SenderName string `env:"NOTIFY_SENDER_NAME" envDefault:"HelpDesk System"`
	AdminEmail string `env:"NOTIFY_ADMIN_EMAIL"`
}

// SMTPConfig configures the mail transport. An empty Host logs mail instead of sending it.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	User     string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASSWORD"`
	// TLSMode is one of "", "starttls", "smtps".
	TLSMode    string `env:"SMTP_TLS_MODE" envDefault:"starttls"`
	SkipVerify bool   `env:"SMTP_SKIP_VERIFY" envDefault:"false"`
	TimeoutSec int    `env:"SMTP_TIMEOUT_SECONDS" envDefault:"15"`
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET must not be empty")
	}
	if c.Auth.VerificationSecret == "" {
		return fmt.Errorf("AUTH_VERIFICATION_SECRET must not be empty")
	}
	if c.Auth.JWTSecret == c.Auth.VerificationSecret {
		return fmt.Errorf("AUTH_VERIFICATION_SECRET must differ from AUTH_JWT_SECRET")
	}
	if c.Auth.VerificationTTL <= 0 || c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	return nil
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

// Addr returns the SMTP dial address.
func (s SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Timeout returns the dial timeout for the mail transport.
func (s SMTPConfig) Timeout() time.Duration {
	if s.TimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(s.TimeoutSec) * time.Second
}
