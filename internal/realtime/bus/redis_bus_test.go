package bus

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/storygrid-backend/internal/platform/logger"
	"github.com/yungbote/storygrid-backend/internal/realtime"
)

func TestRedisBusForwardsPublishedMessages(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	b, err := NewRedisBus(logger.Nop(), rdb, "")
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan realtime.SSEMessage, 1)
	if err := b.StartForwarder(ctx, func(m realtime.SSEMessage) { got <- m }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}

	want := realtime.SSEMessage{Channel: "user-1", Event: realtime.SSEEventSettingsChanged, Data: map[string]any{"key": "citation_style"}}
	if err := b.Publish(ctx, want); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case m := <-got:
		if m.Channel != want.Channel || m.Event != want.Event {
			t.Fatalf("forwarded: want=%+v got=%+v", want, m)
		}
		data, _ := m.Data.(map[string]any)
		if data["key"] != "citation_style" {
			t.Fatalf("forwarded data: %v", m.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for forwarded message")
	}
}

func TestNewRedisBusRequiresClient(t *testing.T) {
	if _, err := NewRedisBus(logger.Nop(), nil, ""); err == nil {
		t.Fatalf("want error for nil client")
	}
}
