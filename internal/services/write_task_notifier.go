package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/mapping"
	"github.com/yungbote/storygrid-backend/internal/realtime"
)

// BatchSummary counts the tasks of one write batch by status.
type BatchSummary struct {
	BatchID   uuid.UUID `json:"batchId"`
	Total     int       `json:"total"`
	Pending   int       `json:"pending"`
	Running   int       `json:"running"`
	Committed int       `json:"committed"`
	Failed    int       `json:"failed"`
}

func SummarizeBatch(batchID uuid.UUID, tasks []*types.WriteTask) BatchSummary {
	s := BatchSummary{BatchID: batchID, Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case types.WriteTaskPending:
			s.Pending++
		case types.WriteTaskRunning:
			s.Running++
		case types.WriteTaskCommitted:
			s.Committed++
		case types.WriteTaskFailed:
			s.Failed++
		}
	}
	return s
}

type WriteTaskNotifier interface {
	TaskCommitted(ctx context.Context, task *types.WriteTask)
	TaskFailed(ctx context.Context, task *types.WriteTask, errorMessage string)
	BatchSettled(ctx context.Context, ownerUserID uuid.UUID, summary BatchSummary)
	ContentBlockUpdated(ctx context.Context, ownerUserID uuid.UUID, block *types.ContentBlock)
}

type writeTaskNotifier struct {
	emit SSEEmitter
}

func NewWriteTaskNotifier(emit SSEEmitter) WriteTaskNotifier {
	return &writeTaskNotifier{emit: emit}
}

func (n *writeTaskNotifier) TaskCommitted(ctx context.Context, task *types.WriteTask) {
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(task.OwnerUserID),
		Event:   realtime.SSEEventWriteTaskCommitted,
		Data: map[string]any{
			"task_id":  task.ID,
			"batch_id": task.BatchID,
			"task":     mapping.WriteTaskToView(task),
		},
	})
}

func (n *writeTaskNotifier) TaskFailed(ctx context.Context, task *types.WriteTask, errorMessage string) {
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(task.OwnerUserID),
		Event:   realtime.SSEEventWriteTaskFailed,
		Data: map[string]any{
			"task_id":  task.ID,
			"batch_id": task.BatchID,
			"error":    errorMessage,
			"task":     mapping.WriteTaskToView(task),
		},
	})
}

func (n *writeTaskNotifier) BatchSettled(ctx context.Context, ownerUserID uuid.UUID, summary BatchSummary) {
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(ownerUserID),
		Event:   realtime.SSEEventWriteBatchSettled,
		Data:    summary,
	})
}

func (n *writeTaskNotifier) ContentBlockUpdated(ctx context.Context, ownerUserID uuid.UUID, block *types.ContentBlock) {
	if block == nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(ownerUserID),
		Event:   realtime.SSEEventContentBlockUpdated,
		Data:    map[string]any{"block": mapping.ContentBlockToView(block)},
	})
}
