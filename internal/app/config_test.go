package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "AUTH_DISABLED", "AUTH_JWT_SECRET", "CACHE_TTL_SECONDS", "REDIS_CHANNEL", "WORKER_ENABLED"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig(logger.Nop())
	if cfg.Port != "8080" {
		t.Fatalf("port: want=8080 got=%s", cfg.Port)
	}
	if cfg.RedisChannel != "storygrid:sse" {
		t.Fatalf("redis channel: got=%s", cfg.RedisChannel)
	}
	if cfg.CacheTTL != 60*time.Second {
		t.Fatalf("cache ttl: want=60s got=%s", cfg.CacheTTL)
	}
	if !cfg.WorkerEnabled {
		t.Fatalf("worker should default on")
	}
	if err := cfg.validate(); err == nil {
		t.Fatalf("expected missing secret to fail validation")
	}
}

func TestValidateAuthDisabled(t *testing.T) {
	t.Setenv("AUTH_DISABLED", "true")
	t.Setenv("AUTH_JWT_SECRET", "")
	cfg := LoadConfig(logger.Nop())
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("STORYGRID_DOTENV_PROBE=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", path)
	t.Setenv("STORYGRID_DOTENV_PROBE", "")
	os.Unsetenv("STORYGRID_DOTENV_PROBE")
	if err := LoadDotEnv(); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("STORYGRID_DOTENV_PROBE"); got != "from-file" {
		t.Fatalf("probe: want=from-file got=%q", got)
	}

	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	if err := LoadDotEnv(); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
}
