package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/storygrid-backend/internal/cache"
	"github.com/yungbote/storygrid-backend/internal/data/repos"
	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/mapping"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

// blockSource reads a project's ordered block list through the read cache.
// Cache failures are logged and fall through to the database.
type blockSource struct {
	log    *logger.Logger
	blocks repos.ContentBlockRepo
	tasks  repos.WriteTaskRepo
	cache  cache.BlockListCache
}

func newBlockSource(log *logger.Logger, blocks repos.ContentBlockRepo, tasks repos.WriteTaskRepo, c cache.BlockListCache) *blockSource {
	if c == nil {
		c = cache.NewNoop()
	}
	return &blockSource{log: log, blocks: blocks, tasks: tasks, cache: c}
}

// list returns the stored rows.
func (b *blockSource) list(dbc dbctx.Context, projectID uuid.UUID) ([]*types.ContentBlock, error) {
	// Inside a transaction the cache could hand back rows the tx already changed.
	if dbc.Tx != nil {
		return b.load(dbc, projectID)
	}
	rows, ok, err := b.cache.Get(dbc.Ctx, projectID)
	if err != nil {
		b.log.Warn("block list cache read failed", "project_id", projectID, "error", err)
	}
	if ok {
		return rows, nil
	}
	// The generation is taken before the read so a commit that lands in
	// between makes the fill a no-op instead of caching pre-commit rows.
	gen, err := b.cache.Generation(dbc.Ctx, projectID)
	if err != nil {
		b.log.Warn("block list cache generation read failed", "project_id", projectID, "error", err)
		return b.load(dbc, projectID)
	}
	rows, err = b.load(dbc, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := b.cache.Set(dbc.Ctx, projectID, gen, rows); err != nil {
		b.log.Warn("block list cache write failed", "project_id", projectID, "error", err)
	}
	return rows, nil
}

func (b *blockSource) load(dbc dbctx.Context, projectID uuid.UUID) ([]*types.ContentBlock, error) {
	rows, err := b.blocks.ListByProject(dbc, projectID, repos.ContentBlockFilter{})
	if err != nil {
		return nil, fmt.Errorf("list content blocks: %w", err)
	}
	return rows, nil
}

// current returns the stored rows with every queued sequence and arc
// membership write replayed on top, oldest first. This is the order the
// owner was last handed, so the next drag is planned against it.
func (b *blockSource) current(dbc dbctx.Context, projectID uuid.UUID) ([]*types.ContentBlock, error) {
	rows, err := b.list(dbc, projectID)
	if err != nil {
		return nil, err
	}
	if b.tasks == nil {
		return rows, nil
	}
	live, err := b.tasks.ListLiveByProject(dbc, projectID)
	if err != nil {
		return nil, fmt.Errorf("list queued writes: %w", err)
	}
	return overlayTasks(rows, live), nil
}

// currentBlock is current for a single row.
func (b *blockSource) currentBlock(dbc dbctx.Context, row *types.ContentBlock) (*types.ContentBlock, error) {
	if b.tasks == nil {
		return row, nil
	}
	live, err := b.tasks.ListLiveByProject(dbc, row.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("list queued writes: %w", err)
	}
	return overlayTasks([]*types.ContentBlock{row}, live)[0], nil
}

// overlayTasks returns copies of rows with the sequence and in_story_arc
// columns of tasks applied in order. Rows without tasks are shared.
func overlayTasks(rows []*types.ContentBlock, tasks []*types.WriteTask) []*types.ContentBlock {
	if len(tasks) == 0 {
		return rows
	}
	index := make(map[uuid.UUID]int, len(rows))
	out := make([]*types.ContentBlock, len(rows))
	for i, r := range rows {
		index[r.ID] = i
		out[i] = r
	}
	copied := make(map[uuid.UUID]bool)
	for _, t := range tasks {
		i, ok := index[t.EntityID]
		if !ok || t.EntityType != types.EntityContentBlock {
			continue
		}
		seq, arc := orderColumns(t)
		if seq == nil && arc == nil {
			continue
		}
		if !copied[t.EntityID] {
			next := *out[i]
			out[i] = &next
			copied[t.EntityID] = true
		}
		if seq != nil {
			out[i].Sequence = seq
		}
		if arc != nil {
			out[i].InStoryArc = *arc
		}
	}
	return out
}

// orderColumns decodes the sequence and in_story_arc values a task writes.
// Undecodable payloads contribute nothing; the worker fails them on its own.
func orderColumns(t *types.WriteTask) (*int, *bool) {
	switch t.Op {
	case types.OpSetSequence:
		var p mapping.SequencePayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return nil, nil
		}
		seq := p.Sequence
		return &seq, p.InStoryArc
	case types.OpSetFields:
		var p mapping.FieldsPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return nil, nil
		}
		var seq *int
		var arc *bool
		if v, ok := p.Columns["sequence"].(float64); ok {
			n := int(v)
			seq = &n
		}
		if v, ok := p.Columns["in_story_arc"].(bool); ok {
			arc = &v
		}
		return seq, arc
	}
	return nil, nil
}

func (b *blockSource) invalidate(ctx context.Context, projectID uuid.UUID) {
	if err := b.cache.Invalidate(ctx, projectID); err != nil {
		b.log.Warn("block list cache invalidate failed", "project_id", projectID, "error", err)
	}
}
