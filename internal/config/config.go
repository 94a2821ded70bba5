package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port         int           `env:"PORT" envDefault:"3001"`
	DBDSN        string        `env:"DB_DSN"`
	RedisURL     string        `env:"REDIS_URL"`
	AutoMigrate  bool          `env:"AUTO_MIGRATE" envDefault:"false"`
	JWTSecret    string        `env:"JWT_SECRET"`
	JWTTTL       time.Duration `env:"JWT_TTL" envDefault:"24h"`
	AllowOrigins []string      `env:"ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string        `env:"LOG_FORMAT" envDefault:"console"`
	ListMaxLimit int           `env:"LIST_MAX_LIMIT" envDefault:"100"`

	RateLimitPublic RateLimitConfig `envPrefix:"RATE_LIMIT_PUBLIC_"`
	RateLimitAuth   RateLimitConfig `envPrefix:"RATE_LIMIT_AUTH_"`

	WebAuthnRPID     string `env:"WEBAUTHN_RP_ID" envDefault:"localhost"`
	WebAuthnRPOrigin string `env:"WEBAUTHN_RP_ORIGIN" envDefault:"http://localhost:5173"`
	WebAuthnRPName   string `env:"WEBAUTHN_RP_NAME" envDefault:"Participa DF"`

	Storage      StorageConfig      `envPrefix:"STORAGE_"`
	Notification NotificationConfig `envPrefix:"NOTIFY_"`
	Telemetry    TelemetryConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64 `env:"RPS" envDefault:"10"`
	Burst             int     `env:"BURST" envDefault:"20"`
}

// StorageConfig define o backend de anexos.
type StorageConfig struct {
	Provider    string `env:"PROVIDER" envDefault:"local"`
	LocalDir    string `env:"LOCAL_DIR" envDefault:"uploads"`
	PublicURL   string `env:"PUBLIC_URL"`
	MaxBytes    int64  `env:"MAX_BYTES" envDefault:"52428800"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION" envDefault:"auto"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
}

// NotificationConfig aponta o webhook avisado a cada nova manifestação.
type NotificationConfig struct {
	WebhookURL string        `env:"WEBHOOK_URL"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"5s"`
	Retries    int           `env:"RETRIES" envDefault:"2"`
}

// TelemetryConfig habilita exportação de traces OTLP.
type TelemetryConfig struct {
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"ouvidoria-api"`
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Port <= 0 {
		return nil, errors.New("PORT inválida")
	}

	cfg.DBDSN = strings.TrimSpace(cfg.DBDSN)
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}

	cfg.RedisURL = strings.TrimSpace(cfg.RedisURL)
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obrigatório")
	}

	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}
	if cfg.JWTTTL <= 0 {
		return nil, errors.New("JWT_TTL inválido")
	}

	origins := cfg.AllowOrigins[:0]
	for _, origin := range cfg.AllowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	cfg.AllowOrigins = origins

	if cfg.ListMaxLimit <= 0 {
		cfg.ListMaxLimit = 100
	}

	cfg.Storage.Provider = strings.ToLower(strings.TrimSpace(cfg.Storage.Provider))
	if cfg.Storage.MaxBytes <= 0 {
		return nil, errors.New("STORAGE_MAX_BYTES inválido")
	}

	if strings.TrimSpace(cfg.WebAuthnRPID) == "" {
		cfg.WebAuthnRPID = "localhost"
	}

	return cfg, nil
}
