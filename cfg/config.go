package cfg

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" env-default:"development"`
	HTTPAddr string `env:"HTTP_ADDR" env-default:":8080"`
	BaseURL  string `env:"BASE_URL" env-default:"http://localhost:8080"`

	// NodeID distinguishes instances generating ids; each running instance
	// needs a distinct value.
	NodeID int64 `env:"NODE_ID" env-default:"1"`

	Postgres      PostgresConfig
	Redis         RedisConfig
	OAuth2        OAuth2Config
	SMTP          SMTPConfig
	Observability ObservabilityConfig
}

type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `env:"POSTGRES_PORT" env-default:"5432"`
	User     string `env:"POSTGRES_USER" env-default:"skillswap"`
	Password string `env:"POSTGRES_PASSWORD" env-default:"skillswap"`
	DBName   string `env:"POSTGRES_DB" env-default:"skillswap"`
	SSLMode  string `env:"POSTGRES_SSLMODE" env-default:"disable"`
}

type RedisConfig struct {
	Host string `env:"REDIS_HOST" env-default:"localhost"`
	Port string `env:"REDIS_PORT" env-default:"6379"`
}

type OAuth2Config struct {
	IssuerURL    string `env:"OAUTH2_ISSUER_URL" env-default:"https://accounts.google.com"`
	ClientID     string `env:"OAUTH2_CLIENT_ID"`
	ClientSecret string `env:"OAUTH2_CLIENT_SECRET"`
	RedirectURL  string `env:"OAUTH2_REDIRECT_URL" env-default:"http://localhost:8080/auth/callback/google"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     string `env:"SMTP_PORT" env-default:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" env-default:"noreply@skillswap.local"`
}

type ObservabilityConfig struct {
	Enabled      bool   `env:"OTEL_ENABLED" env-default:"false"`
	Endpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4317"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" env-default:"skillswap"`
	ExportSecure bool   `env:"OTEL_EXPORTER_SECURE" env-default:"false"`
}

// Load reads configuration from the environment, with .env as an
// optional overlay for local development.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	var config Config
	if err := cleanenv.ReadEnv(&config); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	return &config, nil
}
