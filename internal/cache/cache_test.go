package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

func newTestCache(t *testing.T, ttl time.Duration) (BlockListCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisBlockListCache(rdb, logger.Nop(), ttl), mr
}

func TestRedisBlockListCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()
	projectID := uuid.New()

	if _, ok, err := c.Get(ctx, projectID); err != nil || ok {
		t.Fatalf("Get empty: want miss, ok=%v err=%v", ok, err)
	}

	seq := 3
	dur := 4.5
	rows := []*types.ContentBlock{{
		Base:      types.Base{ID: uuid.New()},
		ProjectID: projectID,
		Title:     "Market walk",
		Sequence:  &seq,
		Duration:  &dur,
	}}
	if ok, err := c.Set(ctx, projectID, 0, rows); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	if !mr.Exists("storygrid:blocks:" + projectID.String()) {
		t.Fatalf("expected key in redis")
	}
	if ttl := mr.TTL("storygrid:blocks:" + projectID.String()); ttl != 30*time.Second {
		t.Fatalf("ttl: want=30s got=%v", ttl)
	}

	got, ok, err := c.Get(ctx, projectID)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].Title != "Market walk" || got[0].Sequence == nil || *got[0].Sequence != 3 {
		t.Fatalf("Get: unexpected rows %+v", got)
	}

	if err := c.Invalidate(ctx, projectID); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := c.Get(ctx, projectID); ok {
		t.Fatalf("Get after invalidate: want miss")
	}
}

func TestRedisBlockListCacheRejectsFillAfterInvalidate(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	projectID := uuid.New()
	key := "storygrid:blocks:" + projectID.String()

	// A reader misses and takes the generation before reading the database.
	gen, err := c.Generation(ctx, projectID)
	if err != nil || gen != 0 {
		t.Fatalf("Generation: want=0 got=%d err=%v", gen, err)
	}
	seq := 0
	stale := []*types.ContentBlock{{Base: types.Base{ID: uuid.New()}, Title: "before commit", Sequence: &seq}}

	// A writer commits and invalidates before the reader fills.
	if err := c.Invalidate(ctx, projectID); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	ok, err := c.Set(ctx, projectID, gen, stale)
	if err != nil {
		t.Fatalf("Set stale: %v", err)
	}
	if ok || mr.Exists(key) {
		t.Fatalf("stale fill must not be stored: ok=%v exists=%v", ok, mr.Exists(key))
	}

	// The next reader sees the new generation and fills normally.
	gen, err = c.Generation(ctx, projectID)
	if err != nil || gen != 1 {
		t.Fatalf("Generation after invalidate: want=1 got=%d err=%v", gen, err)
	}
	if ok, err := c.Set(ctx, projectID, gen, stale); err != nil || !ok {
		t.Fatalf("Set fresh: ok=%v err=%v", ok, err)
	}
	if _, hit, _ := c.Get(ctx, projectID); !hit {
		t.Fatalf("Get after fresh fill: want hit")
	}
	if ttl := mr.TTL("storygrid:blocks:gen:" + projectID.String()); ttl <= 0 {
		t.Fatalf("generation key should expire, ttl=%v", ttl)
	}
}

func TestRedisBlockListCacheExpiry(t *testing.T) {
	c, mr := newTestCache(t, time.Second)
	ctx := context.Background()
	projectID := uuid.New()
	if ok, err := c.Set(ctx, projectID, 0, nil); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	got, ok, err := c.Get(ctx, projectID)
	if err != nil || !ok || len(got) != 0 {
		t.Fatalf("Get empty list: ok=%v err=%v rows=%v", ok, err, got)
	}
	mr.FastForward(2 * time.Second)
	if _, ok, _ := c.Get(ctx, projectID); ok {
		t.Fatalf("Get after ttl: want miss")
	}
}

func TestRedisBlockListCacheCorruptEntry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	projectID := uuid.New()
	key := "storygrid:blocks:" + projectID.String()
	if err := mr.Set(key, "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok, err := c.Get(context.Background(), projectID); err != nil || ok {
		t.Fatalf("Get corrupt: want miss, ok=%v err=%v", ok, err)
	}
	if mr.Exists(key) {
		t.Fatalf("corrupt key should be deleted")
	}
}

func TestNoopCache(t *testing.T) {
	c := NewNoop()
	ctx := context.Background()
	id := uuid.New()
	if ok, err := c.Set(ctx, id, 0, []*types.ContentBlock{{}}); err != nil || ok {
		t.Fatalf("noop Set: ok=%v err=%v", ok, err)
	}
	if _, ok, err := c.Get(ctx, id); ok || err != nil {
		t.Fatalf("noop Get: ok=%v err=%v", ok, err)
	}
}
