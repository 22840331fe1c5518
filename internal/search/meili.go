package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	meili "github.com/meilisearch/meilisearch-go"

	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

// Meili implements Index on Meilisearch. Writes are skipped while the server
// is unreachable; a background probe reconfigures the index on recovery.
type Meili struct {
	client  meili.ServiceManager
	log     *logger.Logger
	healthy atomic.Bool
	done    chan struct{}
}

func NewMeili(url, apiKey string, baseLog *logger.Logger) *Meili {
	m := &Meili{
		client: meili.New(url, meili.WithAPIKey(apiKey)),
		log:    baseLog.With("component", "MeiliIndex"),
		done:   make(chan struct{}),
	}
	if _, err := m.client.Health(); err != nil {
		m.log.Warn("meilisearch unavailable", "url", url, "error", err)
	} else {
		m.healthy.Store(true)
		m.configure()
	}
	go m.healthLoop(10 * time.Second)
	return m
}

func (m *Meili) configure() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{Uid: IndexUID, PrimaryKey: "id"}); err != nil {
		m.log.Debug("create index (may already exist)", "index", IndexUID, "error", err)
	}
	index := m.client.Index(IndexUID)
	filterable := []interface{}{"projectId", "inStoryArc", "status"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		m.log.Warn("update filterable attributes failed", "index", IndexUID, "error", err)
	}
	searchable := []string{"title", "description", "notes"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		m.log.Warn("update searchable attributes failed", "index", IndexUID, "error", err)
	}
}

func (m *Meili) healthLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			was := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !was {
				m.log.Info("meilisearch recovered; reconfiguring index")
				m.configure()
			}
		}
	}
}

func (m *Meili) Close() { close(m.done) }

func (m *Meili) Enabled() bool { return m.healthy.Load() }

func (m *Meili) Index(_ context.Context, blocks ...*types.ContentBlock) error {
	if len(blocks) == 0 || !m.healthy.Load() {
		return nil
	}
	docs := make([]Document, 0, len(blocks))
	for _, b := range blocks {
		if b != nil {
			docs = append(docs, DocumentFor(b))
		}
	}
	if _, err := m.client.Index(IndexUID).AddDocuments(docs, nil); err != nil {
		return fmt.Errorf("meilisearch add documents: %w", err)
	}
	return nil
}

func (m *Meili) Delete(_ context.Context, ids ...uuid.UUID) error {
	if !m.healthy.Load() {
		return nil
	}
	for _, id := range ids {
		if _, err := m.client.Index(IndexUID).DeleteDocument(id.String(), nil); err != nil {
			return fmt.Errorf("meilisearch delete document %s: %w", id, err)
		}
	}
	return nil
}

func (m *Meili) Search(_ context.Context, projectID uuid.UUID, query string, limit int) ([]uuid.UUID, error) {
	if !m.healthy.Load() {
		return nil, fmt.Errorf("meilisearch unhealthy")
	}
	if blank(query) {
		return []uuid.UUID{}, nil
	}
	resp, err := m.client.Index(IndexUID).Search(query, &meili.SearchRequest{
		Limit:                int64(clampLimit(limit)),
		Filter:               fmt.Sprintf("projectId = %q", projectID.String()),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch search: %w", err)
	}
	out := make([]uuid.UUID, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		raw, ok := hit["id"]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		if id, err := uuid.Parse(s); err == nil {
			out = append(out, id)
		}
	}
	return out, nil
}
