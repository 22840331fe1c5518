package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/storygrid-backend/internal/domain"
)

func SeedProject(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID) *types.Project {
	tb.Helper()
	p := &types.Project{
		OwnerUserID: ownerUserID,
		Title:       "It's a Jungle: Episode 1",
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	return p
}

// SeedContentBlock inserts a block. A negative seq leaves the sequence unset.
func SeedContentBlock(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID uuid.UUID, title string, seq int) *types.ContentBlock {
	tb.Helper()
	b := &types.ContentBlock{
		ProjectID: projectID,
		Type:      "interview",
		Title:     title,
		Status:    types.StatusDraft,
	}
	if seq >= 0 {
		s := seq
		b.Sequence = &s
	}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed content block: %v", err)
	}
	return b
}

func SeedWriteTask(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID, batchID, entityID uuid.UUID, op string) *types.WriteTask {
	tb.Helper()
	t := &types.WriteTask{
		OwnerUserID: uuid.New(),
		ProjectID:   projectID,
		BatchID:     batchID,
		EntityType:  "content_block",
		EntityID:    entityID,
		Op:          op,
		Payload:     []byte(`{}`),
		Status:      types.WriteTaskPending,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed write task: %v", err)
	}
	return t
}
