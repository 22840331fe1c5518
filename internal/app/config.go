package app

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/storygrid-backend/internal/ai"
	"github.com/yungbote/storygrid-backend/internal/jobs/worker"
	"github.com/yungbote/storygrid-backend/internal/platform/envutil"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

type Config struct {
	Port           string
	ServiceName    string
	Environment    string
	Version        string
	AllowedOrigins string

	JWTSecret    string
	JWTIssuer    string
	AuthDisabled bool

	SettingsEncryptionKey string
	RedisChannel          string
	CacheTTL              time.Duration

	WorkerEnabled bool
	Worker        worker.Config
	AI            ai.Config
}

// LoadDotEnv reads .env (or ENV_FILE) when present. Variables already set in
// the environment win.
func LoadDotEnv() error {
	path := strings.TrimSpace(os.Getenv("ENV_FILE"))
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:           envutil.String("PORT", "8080"),
		ServiceName:    envutil.String("OTEL_SERVICE_NAME", "storygrid-backend"),
		Environment:    envutil.String("APP_ENV", "development"),
		Version:        envutil.String("APP_VERSION", "dev"),
		AllowedOrigins: envutil.String("CORS_ALLOWED_ORIGINS", ""),

		JWTSecret:    envutil.String("AUTH_JWT_SECRET", ""),
		JWTIssuer:    envutil.String("AUTH_JWT_ISSUER", ""),
		AuthDisabled: envutil.Bool("AUTH_DISABLED", false),

		SettingsEncryptionKey: envutil.String("SETTINGS_ENCRYPTION_KEY", ""),
		RedisChannel:          envutil.String("REDIS_CHANNEL", "storygrid:sse"),
		CacheTTL:              envutil.Seconds("CACHE_TTL_SECONDS", 60*time.Second),

		WorkerEnabled: envutil.Bool("WORKER_ENABLED", true),
		Worker:        worker.ConfigFromEnv(),
		AI:            ai.ConfigFromEnv(),
	}
	if cfg.AuthDisabled {
		log.Warn("AUTH_DISABLED is set; every request runs as the dev user or X-User-Id")
	}
	return cfg
}

func (c Config) validate() error {
	if !c.AuthDisabled && strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("AUTH_JWT_SECRET is required unless AUTH_DISABLED=true")
	}
	return nil
}
