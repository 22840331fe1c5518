// Package persist holds the write-task handlers that apply queued content
// block writes.
package persist

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/storygrid-backend/internal/cache"
	"github.com/yungbote/storygrid-backend/internal/data/repos"
	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/jobs/runtime"
	"github.com/yungbote/storygrid-backend/internal/mapping"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
	"github.com/yungbote/storygrid-backend/internal/search"
)

// Deps are shared by both handlers.
type Deps struct {
	Log    *logger.Logger
	Blocks repos.ContentBlockRepo
	Cache  cache.BlockListCache
	Index  search.Index
}

// Register adds the set_sequence and set_fields handlers to reg.
func Register(reg *runtime.Registry, deps Deps) error {
	if err := reg.Register(NewSetSequenceHandler(deps)); err != nil {
		return err
	}
	return reg.Register(NewSetFieldsHandler(deps))
}

type base struct {
	log    *logger.Logger
	blocks repos.ContentBlockRepo
	cache  cache.BlockListCache
	index  search.Index
}

func newBase(deps Deps, name string) base {
	c := deps.Cache
	if c == nil {
		c = cache.NewNoop()
	}
	idx := deps.Index
	if idx == nil {
		idx = search.NewNoop()
	}
	return base{
		log:    deps.Log.With("handler", name),
		blocks: deps.Blocks,
		cache:  c,
		index:  idx,
	}
}

// pending returns the columns this task still has to write: columns that a
// newer live task for the same entity also writes are dropped, so an older
// task retried late never overwrites a newer value.
func (b base) pending(jc *runtime.Context) (map[string]any, error) {
	cols, err := columnsOf(jc.Task)
	if err != nil {
		return nil, err
	}
	newer, err := jc.Repo.ListNewerForEntity(dbctx.Context{Ctx: jc.Ctx}, jc.Task)
	if err != nil {
		return nil, fmt.Errorf("list newer tasks: %w", err)
	}
	for _, n := range newer {
		ncols, err := columnsOf(n)
		if err != nil {
			continue
		}
		for col := range ncols {
			delete(cols, col)
		}
	}
	if len(newer) > 0 {
		b.log.Debug("Write task overlaps newer tasks",
			"task_id", jc.Task.ID, "entity_id", jc.Task.EntityID, "newer", len(newer), "remaining", len(cols))
	}
	return cols, nil
}

// columnsOf decodes the storage columns a task writes.
func columnsOf(task *types.WriteTask) (map[string]any, error) {
	switch task.Op {
	case types.OpSetSequence:
		var p mapping.SequencePayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode set_sequence payload: %w", err)
		}
		cols := map[string]any{"sequence": p.Sequence}
		if p.InStoryArc != nil {
			cols["in_story_arc"] = *p.InStoryArc
		}
		return cols, nil
	case types.OpSetFields:
		var p mapping.FieldsPayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode set_fields payload: %w", err)
		}
		cols := make(map[string]any, len(p.Columns))
		for col, v := range p.Columns {
			if !mapping.ContentBlockColumns[col] {
				return nil, fmt.Errorf("column %q is not writable", col)
			}
			if f, ok := v.(float64); ok && col == "sequence" {
				v = int(f)
			}
			cols[col] = v
		}
		return cols, nil
	}
	return nil, fmt.Errorf("unsupported op=%s", task.Op)
}

// afterWrite drops the project's cached list, reindexes the block and tells
// the owner's sessions. Failures here are logged and never fail the task:
// the row is already written.
func (b base) afterWrite(jc *runtime.Context, blockID uuid.UUID) {
	task := jc.Task
	if err := b.cache.Invalidate(jc.Ctx, task.ProjectID); err != nil {
		b.log.Warn("Block list cache invalidation failed", "project_id", task.ProjectID, "error", err)
	}
	block, err := b.blocks.GetByID(dbctx.Context{Ctx: jc.Ctx}, blockID)
	if err != nil || block == nil {
		return
	}
	if err := b.index.Index(jc.Ctx, block); err != nil {
		b.log.Warn("Search reindex failed", "block_id", blockID, "error", err)
	}
	if jc.Notify != nil {
		jc.Notify.ContentBlockUpdated(jc.Ctx, task.OwnerUserID, block)
	}
}

func checkEntity(task *types.WriteTask) error {
	if task.EntityType != types.EntityContentBlock {
		return fmt.Errorf("unsupported entity_type=%s", task.EntityType)
	}
	if task.EntityID == uuid.Nil {
		return fmt.Errorf("missing entity_id")
	}
	return nil
}

type SetSequenceHandler struct{ base }

func NewSetSequenceHandler(deps Deps) *SetSequenceHandler {
	return &SetSequenceHandler{base: newBase(deps, "SetSequenceHandler")}
}

func (h *SetSequenceHandler) Type() string { return types.OpSetSequence }

func (h *SetSequenceHandler) Run(jc *runtime.Context) error {
	task := jc.Task
	if err := checkEntity(task); err != nil {
		return err
	}
	cols, err := h.pending(jc)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		jc.Commit()
		return nil
	}

	var ok bool
	if seq, has := cols["sequence"].(int); has {
		var arc *bool
		if v, has := cols["in_story_arc"].(bool); has {
			arc = &v
		}
		ok, err = h.blocks.SetSequence(dbctx.Context{Ctx: jc.Ctx}, task.EntityID, seq, arc)
	} else {
		ok, err = h.blocks.UpdateFields(dbctx.Context{Ctx: jc.Ctx}, task.EntityID, cols)
	}
	if err != nil {
		return fmt.Errorf("set sequence: %w", err)
	}
	if !ok {
		return fmt.Errorf("content block %s not found", task.EntityID)
	}
	h.afterWrite(jc, task.EntityID)
	jc.Commit()
	return nil
}

type SetFieldsHandler struct{ base }

func NewSetFieldsHandler(deps Deps) *SetFieldsHandler {
	return &SetFieldsHandler{base: newBase(deps, "SetFieldsHandler")}
}

func (h *SetFieldsHandler) Type() string { return types.OpSetFields }

func (h *SetFieldsHandler) Run(jc *runtime.Context) error {
	task := jc.Task
	if err := checkEntity(task); err != nil {
		return err
	}
	cols, err := h.pending(jc)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		jc.Commit()
		return nil
	}
	ok, err := h.blocks.UpdateFields(dbctx.Context{Ctx: jc.Ctx}, task.EntityID, cols)
	if err != nil {
		return fmt.Errorf("update fields: %w", err)
	}
	if !ok {
		return fmt.Errorf("content block %s not found", task.EntityID)
	}
	h.afterWrite(jc, task.EntityID)
	jc.Commit()
	return nil
}
