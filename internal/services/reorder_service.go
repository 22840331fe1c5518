package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storygrid-backend/internal/cache"
	"github.com/yungbote/storygrid-backend/internal/data/repos"
	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/ordering"
	"github.com/yungbote/storygrid-backend/internal/platform/apierr"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

// Reorder scopes. The story arc view orders only arc members; the board
// orders the whole project.
const (
	ScopeProject  = "project"
	ScopeStoryArc = "story-arc"
)

type ReorderRequest struct {
	BlockID     uuid.UUID
	TargetIndex int
	Scope       string
}

type TimelineDropRequest struct {
	BlockID        uuid.UUID
	DropPercentage float64
	Scope          string
}

// ReorderResult carries the optimistic order. Blocks already hold their new
// sequences; Tasks are pending and settle through the worker.
type ReorderResult struct {
	BatchID *uuid.UUID
	Plan    ordering.Plan
	Blocks  []*types.ContentBlock
	Tasks   []*types.WriteTask
}

type BatchStatus struct {
	Summary BatchSummary
	Tasks   []*types.WriteTask
}

type ReorderService interface {
	Reorder(ctx context.Context, projectID uuid.UUID, req ReorderRequest) (*ReorderResult, error)
	TimelineDrop(ctx context.Context, projectID uuid.UUID, req TimelineDropRequest) (*ReorderResult, error)
	Normalize(ctx context.Context, projectID uuid.UUID) (*ReorderResult, error)

	Batch(dbc dbctx.Context, batchID uuid.UUID) (*BatchStatus, error)
	ListTasks(dbc dbctx.Context, projectID uuid.UUID, statuses []string, limit int) ([]*types.WriteTask, error)
	RetryBatch(ctx context.Context, batchID uuid.UUID) (*BatchStatus, error)
	RetryTask(ctx context.Context, taskID uuid.UUID) (*types.WriteTask, error)
}

type reorderService struct {
	db       *gorm.DB
	log      *logger.Logger
	projects repos.ProjectRepo
	tasks    repos.WriteTaskRepo
	source   *blockSource
}

func NewReorderService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projects repos.ProjectRepo,
	blocks repos.ContentBlockRepo,
	tasks repos.WriteTaskRepo,
	listCache cache.BlockListCache,
) ReorderService {
	log := baseLog.With("service", "ReorderService")
	return &reorderService{
		db:       db,
		log:      log,
		projects: projects,
		tasks:    tasks,
		source:   newBlockSource(log, blocks, tasks, listCache),
	}
}

func (s *reorderService) Reorder(ctx context.Context, projectID uuid.UUID, req ReorderRequest) (*ReorderResult, error) {
	return s.plan(ctx, projectID, req.Scope, func(items []*types.ContentBlock) ordering.Plan {
		return ordering.PlanReorder(items, req.BlockID.String(), req.TargetIndex)
	})
}

func (s *reorderService) TimelineDrop(ctx context.Context, projectID uuid.UUID, req TimelineDropRequest) (*ReorderResult, error) {
	if math.IsInf(req.DropPercentage, 0) {
		return nil, apierr.BadRequest("invalid_drop_percentage", "drop percentage must be finite")
	}
	return s.plan(ctx, projectID, req.Scope, func(items []*types.ContentBlock) ordering.Plan {
		return ordering.PlanTimelineDrop(items, req.BlockID.String(), req.DropPercentage)
	})
}

// Normalize renumbers the whole project contiguously.
func (s *reorderService) Normalize(ctx context.Context, projectID uuid.UUID) (*ReorderResult, error) {
	return s.plan(ctx, projectID, ScopeProject, func(items []*types.ContentBlock) ordering.Plan {
		return ordering.Normalize(items)
	})
}

func (s *reorderService) plan(ctx context.Context, projectID uuid.UUID, scope string, build func([]*types.ContentBlock) ordering.Plan) (*ReorderResult, error) {
	dbc := dbctx.Of(ctx)
	_, owner, err := ownedProject(dbc, s.projects, projectID)
	if err != nil {
		return nil, err
	}
	items, err := s.scoped(dbc, projectID, scope)
	if err != nil {
		return nil, err
	}

	plan := build(items)
	out := &ReorderResult{Plan: plan, Tasks: []*types.WriteTask{}}
	out.Blocks = applyPlan(items, plan)
	if plan.NoOp() {
		return out, nil
	}

	batch := newTaskBatch(ctx, owner, projectID)
	for _, ch := range plan.Changes {
		id, err := uuid.Parse(ch.ID)
		if err != nil {
			return nil, fmt.Errorf("plan change id %q: %w", ch.ID, err)
		}
		if err := batch.setSequence(id, ch.To, nil); err != nil {
			return nil, err
		}
	}
	tasks, err := batch.commit(dbc, s.tasks)
	if err != nil {
		return nil, err
	}
	out.BatchID = &batch.id
	out.Tasks = tasks
	s.log.Info("Reorder queued",
		"project_id", projectID,
		"batch_id", batch.id,
		"changes", len(plan.Changes),
		"scope", normalizeScope(scope),
	)
	return out, nil
}

// scoped returns the rows a drag in scope operates on, in the order the
// owner currently sees, queued writes included.
func (s *reorderService) scoped(dbc dbctx.Context, projectID uuid.UUID, scope string) ([]*types.ContentBlock, error) {
	all, err := s.source.current(dbc, projectID)
	if err != nil {
		return nil, err
	}
	switch normalizeScope(scope) {
	case ScopeProject:
		return all, nil
	case ScopeStoryArc:
		in := true
		return filterBlocks(all, BlockFilter{InStoryArc: &in}), nil
	default:
		return nil, apierr.BadRequest("invalid_scope", "unknown reorder scope %q", scope)
	}
}

func normalizeScope(scope string) string {
	scope = strings.ToLower(strings.TrimSpace(scope))
	if scope == "" {
		return ScopeProject
	}
	return scope
}

// applyPlan returns copies of items in plan order carrying their new sequences.
func applyPlan(items []*types.ContentBlock, plan ordering.Plan) []*types.ContentBlock {
	byID := make(map[string]*types.ContentBlock, len(items))
	for _, it := range items {
		byID[it.OrderKey()] = it
	}
	moved := make(map[string]int, len(plan.Changes))
	for _, ch := range plan.Changes {
		moved[ch.ID] = ch.To
	}
	out := make([]*types.ContentBlock, 0, len(plan.Order))
	for _, id := range plan.Order {
		row, ok := byID[id]
		if !ok {
			continue
		}
		next := *row
		if to, ok := moved[id]; ok {
			seq := to
			next.Sequence = &seq
		}
		out = append(out, &next)
	}
	return out
}

func (s *reorderService) Batch(dbc dbctx.Context, batchID uuid.UUID) (*BatchStatus, error) {
	owner, err := requireUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByBatch(dbc, batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch: %w", err)
	}
	if len(tasks) == 0 || tasks[0].OwnerUserID != owner {
		return nil, apierr.NotFound("write_batch_not_found", "write batch %s not found", batchID)
	}
	return &BatchStatus{Summary: SummarizeBatch(batchID, tasks), Tasks: tasks}, nil
}

func (s *reorderService) ListTasks(dbc dbctx.Context, projectID uuid.UUID, statuses []string, limit int) ([]*types.WriteTask, error) {
	if _, _, err := ownedProject(dbc, s.projects, projectID); err != nil {
		return nil, err
	}
	for _, st := range statuses {
		switch st {
		case types.WriteTaskPending, types.WriteTaskRunning, types.WriteTaskCommitted, types.WriteTaskFailed:
		default:
			return nil, apierr.BadRequest("invalid_status", "unknown write task status %q", st)
		}
	}
	return s.tasks.ListByProject(dbc, projectID, statuses, limit)
}

// RetryBatch puts every failed task of the batch back in the queue with a
// fresh attempt budget.
func (s *reorderService) RetryBatch(ctx context.Context, batchID uuid.UUID) (*BatchStatus, error) {
	dbc := dbctx.Of(ctx)
	if _, err := s.Batch(dbc, batchID); err != nil {
		return nil, err
	}
	n, err := s.tasks.ResetFailedBatch(dbc, batchID)
	if err != nil {
		return nil, fmt.Errorf("retry batch: %w", err)
	}
	s.log.Info("Write batch retried", "batch_id", batchID, "requeued", n)
	return s.Batch(dbc, batchID)
}

func (s *reorderService) RetryTask(ctx context.Context, taskID uuid.UUID) (*types.WriteTask, error) {
	dbc := dbctx.Of(ctx)
	owner, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.GetByID(dbc, taskID)
	if err != nil {
		return nil, fmt.Errorf("load write task: %w", err)
	}
	if task == nil || task.OwnerUserID != owner {
		return nil, apierr.NotFound("write_task_not_found", "write task %s not found", taskID)
	}
	if task.Status != types.WriteTaskFailed {
		return nil, apierr.Conflict("write_task_not_failed", "write task %s is %s", taskID, task.Status)
	}
	if _, err := s.tasks.ResetFailed(dbc, []uuid.UUID{taskID}); err != nil {
		return nil, fmt.Errorf("retry write task: %w", err)
	}
	return s.tasks.GetByID(dbc, taskID)
}
