package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestUserID(t *testing.T) {
	if got := UserID(context.Background()); got != uuid.Nil {
		t.Fatalf("empty ctx: want=nil got=%s", got)
	}
	id := uuid.New()
	ctx := WithRequestData(context.Background(), &RequestData{UserID: id})
	if got := UserID(ctx); got != id {
		t.Fatalf("UserID: want=%s got=%s", id, got)
	}
}

func TestLogFields(t *testing.T) {
	if kv := LogFields(context.Background()); kv != nil {
		t.Fatalf("no trace data: want=nil got=%v", kv)
	}
	ctx := WithTraceData(context.Background(), &TraceData{RequestID: "req-1"})
	kv := LogFields(ctx)
	if len(kv) != 2 || kv[0] != "request_id" || kv[1] != "req-1" {
		t.Fatalf("LogFields: got=%v", kv)
	}
}
