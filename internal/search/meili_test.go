package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

const taskInfo = `{"taskUid":1,"indexUid":"storygrid_content_blocks","status":"enqueued","type":"documentAdditionOrUpdate","enqueuedAt":"2024-01-01T00:00:00Z"}`

type fakeMeili struct {
	mu        sync.Mutex
	documents [][]Document
	searches  []map[string]any
	hitID     string
}

func (f *fakeMeili) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	raw, _ := io.ReadAll(r.Body)
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/health":
		_, _ = io.WriteString(w, `{"status":"available"}`)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/search"):
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		f.mu.Lock()
		f.searches = append(f.searches, body)
		hit := f.hitID
		f.mu.Unlock()
		_, _ = io.WriteString(w, `{"hits":[{"id":"`+hit+`"},{"id":"not-a-uuid"}],"estimatedTotalHits":2,"limit":20,"offset":0,"processingTimeMs":1,"query":"q"}`)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/documents"):
		var docs []Document
		_ = json.Unmarshal(raw, &docs)
		f.mu.Lock()
		f.documents = append(f.documents, docs)
		f.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, taskInfo)
	default:
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, taskInfo)
	}
}

func TestMeiliIndexAndSearch(t *testing.T) {
	hitID := uuid.New()
	fake := &fakeMeili{hitID: hitID.String()}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	m := NewMeili(srv.URL, "", logger.Nop())
	t.Cleanup(m.Close)
	if !m.Enabled() {
		t.Fatalf("index should be healthy against fake server")
	}

	block := &types.ContentBlock{Title: "Sleep science", Description: "REM", Status: "draft", InStoryArc: true}
	block.ID = uuid.New()
	block.ProjectID = uuid.New()
	if err := m.Index(context.Background(), block); err != nil {
		t.Fatalf("Index: %v", err)
	}

	fake.mu.Lock()
	if len(fake.documents) != 1 || len(fake.documents[0]) != 1 {
		fake.mu.Unlock()
		t.Fatalf("documents posted: %v", fake.documents)
	}
	doc := fake.documents[0][0]
	fake.mu.Unlock()
	if doc.ID != block.ID.String() || doc.ProjectID != block.ProjectID.String() || !doc.InStoryArc {
		t.Fatalf("indexed document: %+v", doc)
	}

	ids, err := m.Search(context.Background(), block.ProjectID, "sleep", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(ids) != 1 || ids[0] != hitID {
		t.Fatalf("Search ids: want=[%s] got=%v", hitID, ids)
	}
	fake.mu.Lock()
	filter, _ := fake.searches[0]["filter"].(string)
	fake.mu.Unlock()
	if filter != `projectId = "`+block.ProjectID.String()+`"` {
		t.Fatalf("search filter: got=%q", filter)
	}
}

func TestNoopIndex(t *testing.T) {
	idx := NewNoop()
	if idx.Enabled() {
		t.Fatalf("noop index should report disabled")
	}
	if err := idx.Index(context.Background(), &types.ContentBlock{}); err != nil {
		t.Fatalf("noop Index: %v", err)
	}
	ids, err := idx.Search(context.Background(), uuid.New(), "x", 5)
	if err != nil || len(ids) != 0 {
		t.Fatalf("noop Search: ids=%v err=%v", ids, err)
	}
}
