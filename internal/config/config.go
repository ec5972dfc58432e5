// Package config содержит логику чтения конфигурации портала.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config содержит параметры конфигурации портала.
type Config struct {
	RunAddress     string        `env:"RUN_ADDRESS"`
	BackendURL     string        `env:"BACKEND_URL"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT"`
	DatabaseURI    string        `env:"DATABASE_URI"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC"`

	OIDCIssuerURL    string `env:"OIDC_ISSUER_URL"`
	OIDCClientID     string `env:"OIDC_CLIENT_ID"`
	OIDCClientSecret string `env:"OIDC_CLIENT_SECRET"`
	OIDCRedirectURL  string `env:"OIDC_REDIRECT_URL"`
	OIDCPublicKey    string `env:"OIDC_PUBLIC_KEY"`

	CookieSecret  string        `env:"COOKIE_SECRET"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE"`
	PaymentWait   time.Duration `env:"PAYMENT_WAIT"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	LogLevel     string `env:"LOG_LEVEL"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами; файл .env, если он есть,
// дополняет окружение, не перезаписывая уже заданные переменные.
func Parse() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	var brokers string

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.BackendURL, "b", "", "backend API base URL")
	flag.DurationVar(&cfg.BackendTimeout, "t", 15*time.Second, "backend request timeout")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.RedisAddr, "r", "", "redis address")
	flag.StringVar(&brokers, "k", "", "comma-separated kafka brokers")
	flag.StringVar(&cfg.KafkaTopic, "topic", "portal.audit", "kafka topic for audit events")
	flag.StringVar(&cfg.OIDCIssuerURL, "issuer", "", "OIDC issuer URL")
	flag.StringVar(&cfg.OIDCClientID, "client-id", "", "OIDC client id")
	flag.StringVar(&cfg.OIDCRedirectURL, "redirect-url", "", "OIDC redirect URL")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "log level")

	flag.Parse()

	cfg.KafkaBrokers = splitList(brokers)
	cfg.SessionMaxAge = 30 * 24 * time.Hour
	cfg.PaymentWait = 2 * time.Minute

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	return cfg, nil
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
