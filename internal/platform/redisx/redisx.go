package redisx

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/storygrid-backend/internal/platform/envutil"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

// NewClientFromEnv connects using REDIS_URL (redis://...) or REDIS_ADDR.
// It returns (nil, nil) when neither is configured.
func NewClientFromEnv(ctx context.Context, log *logger.Logger) (*goredis.Client, error) {
	var opts *goredis.Options
	if raw := envutil.String("REDIS_URL", ""); raw != "" {
		parsed, err := goredis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	} else if addr := envutil.String("REDIS_ADDR", ""); addr != "" {
		opts = &goredis.Options{Addr: addr}
	} else {
		return nil, nil
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	return Connect(ctx, log, opts)
}

// Connect dials and pings.
func Connect(ctx context.Context, log *logger.Logger, opts *goredis.Options) (*goredis.Client, error) {
	rdb := goredis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if log != nil {
		log.Info("Redis connected", "addr", strings.TrimSpace(opts.Addr), "db", opts.DB)
	}
	return rdb, nil
}
