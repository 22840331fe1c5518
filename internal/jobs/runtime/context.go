package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storygrid-backend/internal/data/repos"
	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/platform/ctxutil"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/services"
)

/*
Context is the execution handle for one claimed write task.
It wraps:
	- The database handle the handler writes through,
	- The in-memory write_task row,
	- The notification side-effects,
	- And the only sanctioned ways to settle the task (Commit / Fail)
Struct:
	- Ctx: worker context plus the trace data copied from the payload
	- DB: DB handle for handlers
	- Task: the claimed WriteTask row
	- Repo: write_task storage
	- Notify: SSE notifier
	- MaxAttempts: attempt budget used to decide when a batch has settled
*Handlers never update write_task directly. They go through this object.*
*/
type Context struct {
	Ctx         context.Context
	DB          *gorm.DB
	Task        *types.WriteTask
	Repo        repos.WriteTaskRepo
	Notify      services.WriteTaskNotifier
	MaxAttempts int
	payload     map[string]any
}

/*
NewContext builds the handle for a claimed task and eagerly decodes its payload.
A payload decode failure is non-fatal here; handlers decode and validate the
raw payload themselves.
*/
func NewContext(ctx context.Context, db *gorm.DB, task *types.WriteTask, repo repos.WriteTaskRepo, notify services.WriteTaskNotifier, maxAttempts int) *Context {
	c := &Context{
		Ctx:         ctx,
		DB:          db,
		Task:        task,
		Repo:        repo,
		Notify:      notify,
		MaxAttempts: maxAttempts,
	}
	_ = c.decodePayload()
	c.applyTraceData()
	return c
}

func (c *Context) decodePayload() error {
	if c.Task == nil || len(c.Task.Payload) == 0 {
		c.payload = map[string]any{}
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(c.Task.Payload, &m); err != nil {
		c.payload = map[string]any{}
		return err
	}
	c.payload = m
	return nil
}

// applyTraceData carries the trace/request ids of the originating HTTP
// request into the worker context so both sides log the same ids.
func (c *Context) applyTraceData() {
	if c == nil || c.Ctx == nil {
		return
	}
	payload := c.Payload()
	traceID := payloadString(payload, "trace_id")
	reqID := payloadString(payload, "request_id")
	if traceID == "" && reqID == "" {
		return
	}
	c.Ctx = ctxutil.WithTraceData(c.Ctx, &ctxutil.TraceData{
		TraceID:   traceID,
		RequestID: reqID,
	})
}

func payloadString(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

/*
Payload returns the decoded payload map.
Never nil; an unset or unparseable payload yields an empty map.
*/
func (c *Context) Payload() map[string]any {
	if c.payload == nil {
		c.payload = map[string]any{}
	}
	return c.payload
}

func (c *Context) dbc() dbctx.Context {
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return dbctx.Context{Ctx: ctx}
}

// Heartbeat refreshes heartbeat_at so long handlers are not reclaimed as stale.
func (c *Context) Heartbeat() {
	if c == nil || c.Repo == nil || c.Task == nil || c.Task.ID == uuid.Nil {
		return
	}
	_ = c.Repo.Heartbeat(c.dbc(), c.Task.ID)
}

/*
Commit marks the task committed.
What it does:
	- Sets status=committed, clears error, stamps committed_at
	- Updates the in-memory task
	- Emits write_task_committed, then write_batch_settled when this was the
	  last open task of its batch
Guarding:
	- The repo refuses to touch an already committed row; in that case
	  nothing is emitted
*/
func (c *Context) Commit() {
	if c == nil || c.Task == nil {
		return
	}
	now := time.Now()
	if c.Repo != nil && c.Task.ID != uuid.Nil {
		ok, _ := c.Repo.MarkCommitted(c.dbc(), c.Task.ID)
		if !ok {
			return
		}
	}
	c.Task.Status = types.WriteTaskCommitted
	c.Task.Error = ""
	c.Task.CommittedAt = &now
	c.Task.LockedAt = nil
	c.Task.UpdatedAt = now

	if c.Notify != nil {
		c.Notify.TaskCommitted(c.Ctx, c.Task)
	}
	c.settleBatch()
}

/*
Fail records a failed attempt.
What it does:
	- Sets status=failed, error=<stage: err>, last_error_at=now, clears locked_at
	- Updates the in-memory task
	- Emits write_task_failed; the worker reclaims the task after the retry
	  delay until the attempt budget is spent
Guarding:
	- A committed task is never downgraded
*/
func (c *Context) Fail(stage string, err error) {
	if c == nil || c.Task == nil {
		return
	}
	now := time.Now()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if stage != "" {
		msg = stage + ": " + msg
	}
	if c.Repo != nil && c.Task.ID != uuid.Nil {
		ok, _ := c.Repo.MarkFailed(c.dbc(), c.Task.ID, msg)
		if !ok {
			return
		}
	}
	c.Task.Status = types.WriteTaskFailed
	c.Task.Error = msg
	c.Task.LastErrorAt = &now
	c.Task.LockedAt = nil
	c.Task.UpdatedAt = now

	if c.Notify != nil {
		c.Notify.TaskFailed(c.Ctx, c.Task, msg)
	}
	c.settleBatch()
}

// settleBatch emits write_batch_settled once no task of the batch can change
// without a manual retry. Two workers finishing together may both emit it.
func (c *Context) settleBatch() {
	if c.Repo == nil || c.Notify == nil || c.Task.BatchID == uuid.Nil {
		return
	}
	tasks, err := c.Repo.ListByBatch(c.dbc(), c.Task.BatchID)
	if err != nil || len(tasks) == 0 {
		return
	}
	for _, t := range tasks {
		if !t.Settled(c.MaxAttempts) {
			return
		}
	}
	c.Notify.BatchSettled(c.Ctx, c.Task.OwnerUserID, services.SummarizeBatch(c.Task.BatchID, tasks))
}
