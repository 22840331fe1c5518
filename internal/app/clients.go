package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/storygrid-backend/internal/cache"
	"github.com/yungbote/storygrid-backend/internal/platform/gcp"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
	"github.com/yungbote/storygrid-backend/internal/platform/redisx"
	"github.com/yungbote/storygrid-backend/internal/realtime/bus"
	"github.com/yungbote/storygrid-backend/internal/search"
)

// Clients are the optional integrations. Each one degrades to an in-process
// or disabled implementation when it is not configured.
type Clients struct {
	Redis  *goredis.Client
	Bus    bus.Bus
	Cache  cache.BlockListCache
	Search search.Index
	Bucket gcp.ExportBucket
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	out := Clients{Cache: cache.NewNoop()}

	rdb, err := redisx.NewClientFromEnv(ctx, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	if rdb != nil {
		out.Redis = rdb
		out.Cache = cache.NewRedisBlockListCache(rdb, log, cfg.CacheTTL)
		b, err := bus.NewRedisBus(log, rdb, cfg.RedisChannel)
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		out.Bus = b
	} else {
		log.Info("Redis not configured; using in-process cache and SSE fan-out")
	}

	out.Search = search.NewFromEnv(log)

	bucket, err := gcp.NewExportBucketFromEnv(ctx, log)
	if err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("init export bucket: %w", err)
	}
	out.Bucket = bucket
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Search != nil {
		c.Search.Close()
	}
	if c.Bucket != nil {
		_ = c.Bucket.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
