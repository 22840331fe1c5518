package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubReconnectAndOrdering(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	channel := UserChannel(uuid.New())

	clientA := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientA, channel)

	first := SSEMessage{Channel: channel, Event: SSEEventWriteTaskCommitted, Data: map[string]any{"seq": 1}}
	second := SSEMessage{Channel: channel, Event: SSEEventWriteBatchSettled, Data: map[string]any{"seq": 2}}
	hub.Broadcast(first)
	hub.Broadcast(second)

	gotFirst := recvMessage(t, clientA.Outbound, time.Second)
	gotSecond := recvMessage(t, clientA.Outbound, time.Second)
	if gotFirst.Event != SSEEventWriteTaskCommitted {
		t.Fatalf("first event: want=%s got=%s", SSEEventWriteTaskCommitted, gotFirst.Event)
	}
	if gotSecond.Event != SSEEventWriteBatchSettled {
		t.Fatalf("second event: want=%s got=%s", SSEEventWriteBatchSettled, gotSecond.Event)
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	if _, ok := <-clientA.Outbound; ok {
		t.Fatalf("clientA outbound should be closed after disconnect")
	}
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("subscribers after close: want=0 got=%d", n)
	}

	clientB := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientB, channel)
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventWriteTaskFailed})
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != SSEEventWriteTaskFailed {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventWriteTaskFailed, got.Event)
	}
}

func TestSSEHubChannelIsolation(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	a := hub.NewSSEClient(uuid.New())
	b := hub.NewSSEClient(uuid.New())
	hub.AddChannel(a, "a")
	hub.AddChannel(b, "b")

	hub.Broadcast(SSEMessage{Channel: "a", Event: SSEEventSettingsChanged})
	recvMessage(t, a.Outbound, time.Second)
	select {
	case m := <-b.Outbound:
		t.Fatalf("client b received foreign message %+v", m)
	default:
	}

	hub.RemoveChannel(a, "a")
	hub.Broadcast(SSEMessage{Channel: "a", Event: SSEEventSettingsChanged})
	select {
	case m := <-a.Outbound:
		t.Fatalf("client a received after unsubscribe %+v", m)
	default:
	}
}

type flushRecorder struct {
	*httptest.ResponseRecorder
	flushed chan struct{}
}

func (f *flushRecorder) Flush() {
	f.ResponseRecorder.Flush()
	select {
	case f.flushed <- struct{}{}:
	default:
	}
}

func TestSSEHubServeHTTPWritesEvents(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, "c")
	hub.Broadcast(SSEMessage{Channel: "c", Event: SSEEventContentBlockUpdated, Data: map[string]any{"id": "x"}})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/sse/stream", nil).WithContext(ctx)
	rec := &flushRecorder{ResponseRecorder: httptest.NewRecorder(), flushed: make(chan struct{}, 1)}

	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, client)
		close(done)
	}()

	select {
	case <-rec.flushed:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for flush")
	}
	cancel()
	<-done

	body := rec.Body.String()
	if !strings.Contains(body, "event: content_block_updated") {
		t.Fatalf("missing event line in %q", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type: want=text/event-stream got=%s", ct)
	}
}
