package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storygrid-backend/internal/cache"
	"github.com/yungbote/storygrid-backend/internal/data/repos"
	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/mapping"
	"github.com/yungbote/storygrid-backend/internal/ordering"
	"github.com/yungbote/storygrid-backend/internal/platform/apierr"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
	"github.com/yungbote/storygrid-backend/internal/search"
)

// SequenceHealth reports ordering problems in a stored collection.
type SequenceHealth struct {
	Duplicates []int `json:"duplicates"`
	Gaps       bool  `json:"gaps"`
}

func (h SequenceHealth) OK() bool { return len(h.Duplicates) == 0 && !h.Gaps }

type BlockList struct {
	Blocks []*types.ContentBlock
	Health SequenceHealth
}

// BlockFilter narrows a list; the zero value is the full project.
type BlockFilter struct {
	InStoryArc *bool
	Status     string
}

func (f BlockFilter) empty() bool { return f.InStoryArc == nil && strings.TrimSpace(f.Status) == "" }

// WriteResult is an optimistic row plus the queued task that will persist it.
type WriteResult struct {
	Block *types.ContentBlock
	Task  *types.WriteTask
}

type ContentService interface {
	List(dbc dbctx.Context, projectID uuid.UUID, filter BlockFilter) (*BlockList, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.ContentBlock, error)
	Search(dbc dbctx.Context, projectID uuid.UUID, query string, limit int) ([]*types.ContentBlock, error)

	Create(ctx context.Context, projectID uuid.UUID, in mapping.ContentBlockInput) (*types.ContentBlock, error)
	Update(ctx context.Context, id uuid.UUID, patch mapping.ContentBlockPatch) (*WriteResult, error)
	SetStoryArc(ctx context.Context, id uuid.UUID, inStoryArc bool) (*WriteResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type contentService struct {
	db       *gorm.DB
	log      *logger.Logger
	projects repos.ProjectRepo
	blocks   repos.ContentBlockRepo
	tasks    repos.WriteTaskRepo
	source   *blockSource
	index    search.Index
}

func NewContentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projects repos.ProjectRepo,
	blocks repos.ContentBlockRepo,
	tasks repos.WriteTaskRepo,
	listCache cache.BlockListCache,
	index search.Index,
) ContentService {
	log := baseLog.With("service", "ContentService")
	if index == nil {
		index = search.NewNoop()
	}
	return &contentService{
		db:       db,
		log:      log,
		projects: projects,
		blocks:   blocks,
		tasks:    tasks,
		source:   newBlockSource(log, blocks, tasks, listCache),
		index:    index,
	}
}

func (s *contentService) List(dbc dbctx.Context, projectID uuid.UUID, filter BlockFilter) (*BlockList, error) {
	if _, _, err := ownedProject(dbc, s.projects, projectID); err != nil {
		return nil, err
	}
	all, err := s.source.list(dbc, projectID)
	if err != nil {
		return nil, err
	}
	out := &BlockList{Blocks: all, Health: healthOf(all)}
	if !filter.empty() {
		out.Blocks = filterBlocks(all, filter)
	}
	return out, nil
}

func (s *contentService) Get(dbc dbctx.Context, id uuid.UUID) (*types.ContentBlock, error) {
	row, _, err := ownedBlock(dbc, s.projects, s.blocks, id)
	return row, err
}

// Search ranks through the search index when it is up and falls back to a
// substring match otherwise.
func (s *contentService) Search(dbc dbctx.Context, projectID uuid.UUID, query string, limit int) ([]*types.ContentBlock, error) {
	if _, _, err := ownedProject(dbc, s.projects, projectID); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []*types.ContentBlock{}, nil
	}
	if s.index.Enabled() {
		ids, err := s.index.Search(dbc.Ctx, projectID, query, limit)
		if err == nil {
			return s.inRankOrder(dbc, projectID, ids)
		}
		s.log.Warn("search index query failed; using database", "project_id", projectID, "error", err)
	}
	return s.blocks.SearchLike(dbc, projectID, query, limit)
}

func (s *contentService) inRankOrder(dbc dbctx.Context, projectID uuid.UUID, ids []uuid.UUID) ([]*types.ContentBlock, error) {
	rows, err := s.blocks.GetByIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*types.ContentBlock, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	out := make([]*types.ContentBlock, 0, len(ids))
	for _, id := range ids {
		// The index can lag behind deletes and must never cross projects.
		if r, ok := byID[id]; ok && r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Create appends the block to the project unless the caller picked a sequence.
func (s *contentService) Create(ctx context.Context, projectID uuid.UUID, in mapping.ContentBlockInput) (*types.ContentBlock, error) {
	dbc := dbctx.Of(ctx)
	if _, _, err := ownedProject(dbc, s.projects, projectID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apierr.BadRequest("missing_title", "content block title is required")
	}
	if err := validStatus(in.Status); err != nil {
		return nil, err
	}
	row := &types.ContentBlock{}
	mapping.ContentBlockFromInput(in, projectID, row)
	if row.Sequence == nil {
		n, err := s.blocks.CountByProject(dbc, projectID)
		if err != nil {
			return nil, fmt.Errorf("count content blocks: %w", err)
		}
		seq := ordering.NextSequence(int(n))
		row.Sequence = &seq
	}
	created, err := s.blocks.Create(dbc, []*types.ContentBlock{row})
	if err != nil {
		return nil, fmt.Errorf("create content block: %w", err)
	}
	s.source.invalidate(ctx, projectID)
	if err := s.index.Index(ctx, created[0]); err != nil {
		s.log.Warn("index content block failed", "block_id", row.ID, "error", err)
	}
	return created[0], nil
}

// Update queues a set_fields task and returns the block as it will read once
// the task commits.
func (s *contentService) Update(ctx context.Context, id uuid.UUID, patch mapping.ContentBlockPatch) (*WriteResult, error) {
	dbc := dbctx.Of(ctx)
	row, owner, err := ownedBlock(dbc, s.projects, s.blocks, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, apierr.BadRequest("missing_title", "content block title cannot be empty")
	}
	if patch.Status != nil {
		if err := validStatus(*patch.Status); err != nil {
			return nil, err
		}
	}
	cols := mapping.ContentBlockPatchColumns(patch)
	if len(cols) == 0 {
		return &WriteResult{Block: row}, nil
	}
	batch := newTaskBatch(ctx, owner, row.ProjectID)
	if err := batch.setFields(row.ID, cols); err != nil {
		return nil, err
	}
	tasks, err := batch.commit(dbc, s.tasks)
	if err != nil {
		return nil, err
	}
	return &WriteResult{Block: applyBlockPatch(row, patch), Task: tasks[0]}, nil
}

// SetStoryArc toggles arc membership. The shared sequence is left alone, so
// the arc view keeps the block at its project position.
func (s *contentService) SetStoryArc(ctx context.Context, id uuid.UUID, inStoryArc bool) (*WriteResult, error) {
	dbc := dbctx.Of(ctx)
	row, owner, err := ownedBlock(dbc, s.projects, s.blocks, id)
	if err != nil {
		return nil, err
	}
	if row, err = s.source.currentBlock(dbc, row); err != nil {
		return nil, err
	}
	if row.InStoryArc == inStoryArc {
		return &WriteResult{Block: row}, nil
	}
	batch := newTaskBatch(ctx, owner, row.ProjectID)
	if err := batch.setFields(row.ID, map[string]any{"in_story_arc": inStoryArc}); err != nil {
		return nil, err
	}
	tasks, err := batch.commit(dbc, s.tasks)
	if err != nil {
		return nil, err
	}
	next := *row
	next.InStoryArc = inStoryArc
	return &WriteResult{Block: &next, Task: tasks[0]}, nil
}

func (s *contentService) Delete(ctx context.Context, id uuid.UUID) error {
	dbc := dbctx.Of(ctx)
	row, _, err := ownedBlock(dbc, s.projects, s.blocks, id)
	if err != nil {
		return err
	}
	if _, err := s.blocks.SoftDelete(dbc, id); err != nil {
		return fmt.Errorf("delete content block: %w", err)
	}
	s.source.invalidate(ctx, row.ProjectID)
	if err := s.index.Delete(ctx, id); err != nil {
		s.log.Warn("remove content block from index failed", "block_id", id, "error", err)
	}
	return nil
}

func validStatus(status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil
	}
	for _, s := range types.BlockStatuses {
		if s == status {
			return nil
		}
	}
	return apierr.BadRequest("invalid_status", "unknown status %q", status)
}

func healthOf(rows []*types.ContentBlock) SequenceHealth {
	h := SequenceHealth{Duplicates: ordering.Duplicates(rows), Gaps: ordering.Gaps(rows)}
	if h.Duplicates == nil {
		h.Duplicates = []int{}
	}
	return h
}

func filterBlocks(rows []*types.ContentBlock, f BlockFilter) []*types.ContentBlock {
	status := strings.TrimSpace(f.Status)
	out := make([]*types.ContentBlock, 0, len(rows))
	for _, r := range rows {
		if f.InStoryArc != nil && r.InStoryArc != *f.InStoryArc {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, r)
	}
	return out
}

func applyBlockPatch(row *types.ContentBlock, p mapping.ContentBlockPatch) *types.ContentBlock {
	next := *row
	if p.Type != nil {
		next.Type = *p.Type
	}
	if p.Title != nil {
		next.Title = *p.Title
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.Notes != nil {
		next.Notes = *p.Notes
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.Duration != nil {
		d := *p.Duration
		next.Duration = &d
	}
	if p.InStoryArc != nil {
		next.InStoryArc = *p.InStoryArc
	}
	if p.AISource != nil {
		next.AISource = *p.AISource
	}
	if p.Position != nil {
		pos := *p.Position
		next.Position = &pos
	}
	return &next
}
