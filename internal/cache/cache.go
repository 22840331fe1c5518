package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

const DefaultTTL = 60 * time.Second

// BlockListCache holds the ordered content-block list of a project between
// writes. A miss is (nil, false, nil).
//
// Fills are guarded by a per-project generation that Invalidate bumps: a
// reader takes Generation before reading the database and passes it to Set,
// and Set stores nothing if an invalidation happened in between.
type BlockListCache interface {
	Get(ctx context.Context, projectID uuid.UUID) ([]*types.ContentBlock, bool, error)
	Generation(ctx context.Context, projectID uuid.UUID) (int64, error)
	Set(ctx context.Context, projectID uuid.UUID, generation int64, rows []*types.ContentBlock) (bool, error)
	Invalidate(ctx context.Context, projectID uuid.UUID) error
}

// generationTTL outlives any list entry; an expired generation reads as 0,
// which can only reject fills that started before it expired.
const generationTTL = 24 * time.Hour

// setIfGeneration: KEYS[1] list, KEYS[2] generation; ARGV generation, value, ttl ms.
var setIfGeneration = goredis.NewScript(`
local cur = redis.call('GET', KEYS[2]) or '0'
if cur ~= ARGV[1] then
  return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

type redisBlockListCache struct {
	rdb    *goredis.Client
	log    *logger.Logger
	prefix string
	ttl    time.Duration
}

func NewRedisBlockListCache(rdb *goredis.Client, log *logger.Logger, ttl time.Duration) BlockListCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisBlockListCache{
		rdb:    rdb,
		log:    log.With("component", "BlockListCache"),
		prefix: "storygrid:blocks:",
		ttl:    ttl,
	}
}

func (c *redisBlockListCache) key(projectID uuid.UUID) string {
	return c.prefix + projectID.String()
}

func (c *redisBlockListCache) genKey(projectID uuid.UUID) string {
	return c.prefix + "gen:" + projectID.String()
}

func (c *redisBlockListCache) Get(ctx context.Context, projectID uuid.UUID) ([]*types.ContentBlock, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(projectID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var rows []*types.ContentBlock
	if err := json.Unmarshal(raw, &rows); err != nil {
		// Corrupt entries are dropped and treated as a miss.
		c.log.Warn("discarding unreadable cache entry", "project_id", projectID, "error", err)
		_ = c.rdb.Del(ctx, c.key(projectID)).Err()
		return nil, false, nil
	}
	return rows, true, nil
}

func (c *redisBlockListCache) Generation(ctx context.Context, projectID uuid.UUID) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.genKey(projectID)).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return gen, nil
}

// Set stores rows unless the project was invalidated after generation was read.
func (c *redisBlockListCache) Set(ctx context.Context, projectID uuid.UUID, generation int64, rows []*types.ContentBlock) (bool, error) {
	if rows == nil {
		rows = []*types.ContentBlock{}
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return false, fmt.Errorf("cache marshal: %w", err)
	}
	stored, err := setIfGeneration.Run(ctx, c.rdb,
		[]string{c.key(projectID), c.genKey(projectID)},
		strconv.FormatInt(generation, 10), raw, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("cache set: %w", err)
	}
	if stored == 0 {
		c.log.Debug("skipping stale cache fill", "project_id", projectID, "generation", generation)
	}
	return stored == 1, nil
}

func (c *redisBlockListCache) Invalidate(ctx context.Context, projectID uuid.UUID) error {
	gen := c.genKey(projectID)
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Incr(ctx, gen)
		pipe.PExpire(ctx, gen, generationTTL)
		pipe.Del(ctx, c.key(projectID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

type noopBlockListCache struct{}

// NewNoop returns a cache that never hits.
func NewNoop() BlockListCache { return noopBlockListCache{} }

func (noopBlockListCache) Get(context.Context, uuid.UUID) ([]*types.ContentBlock, bool, error) {
	return nil, false, nil
}

func (noopBlockListCache) Generation(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func (noopBlockListCache) Set(context.Context, uuid.UUID, int64, []*types.ContentBlock) (bool, error) {
	return false, nil
}

func (noopBlockListCache) Invalidate(context.Context, uuid.UUID) error { return nil }
