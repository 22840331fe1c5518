package search

import (
	"context"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/platform/envutil"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

// IndexUID is the Meilisearch index holding content blocks.
const IndexUID = "storygrid_content_blocks"

// Document is the indexed projection of a content block.
type Document struct {
	ID          string `json:"id"`
	ProjectID   string `json:"projectId"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
	Status      string `json:"status"`
	InStoryArc  bool   `json:"inStoryArc"`
}

func DocumentFor(b *types.ContentBlock) Document {
	return Document{
		ID:          b.ID.String(),
		ProjectID:   b.ProjectID.String(),
		Type:        b.Type,
		Title:       b.Title,
		Description: b.Description,
		Notes:       b.Notes,
		Status:      b.Status,
		InStoryArc:  b.InStoryArc,
	}
}

// Index keeps content blocks searchable. Search returns block ids in rank order.
type Index interface {
	Enabled() bool
	Index(ctx context.Context, blocks ...*types.ContentBlock) error
	Delete(ctx context.Context, ids ...uuid.UUID) error
	Search(ctx context.Context, projectID uuid.UUID, query string, limit int) ([]uuid.UUID, error)
	Close()
}

// NewFromEnv returns a Meilisearch index when MEILI_URL is set and a no-op index otherwise.
func NewFromEnv(log *logger.Logger) Index {
	url := envutil.String("MEILI_URL", "")
	if url == "" {
		log.Info("MEILI_URL not set; search falls back to database queries")
		return NewNoop()
	}
	return NewMeili(url, envutil.String("MEILI_API_KEY", ""), log)
}

type noop struct{}

func NewNoop() Index { return noop{} }

func (noop) Enabled() bool { return false }

func (noop) Index(context.Context, ...*types.ContentBlock) error { return nil }

func (noop) Delete(context.Context, ...uuid.UUID) error { return nil }

func (noop) Search(context.Context, uuid.UUID, string, int) ([]uuid.UUID, error) {
	return nil, nil
}

func (noop) Close() {}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
