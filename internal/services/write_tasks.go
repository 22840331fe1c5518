package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/storygrid-backend/internal/data/repos"
	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/mapping"
	"github.com/yungbote/storygrid-backend/internal/platform/ctxutil"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
)

// taskBatch accumulates the write tasks produced by one user action.
type taskBatch struct {
	owner     uuid.UUID
	projectID uuid.UUID
	id        uuid.UUID
	traceID   string
	requestID string
	tasks     []*types.WriteTask
}

func newTaskBatch(ctx context.Context, owner, projectID uuid.UUID) *taskBatch {
	b := &taskBatch{owner: owner, projectID: projectID, id: uuid.New()}
	if td := ctxutil.GetTraceData(ctx); td != nil {
		b.traceID = td.TraceID
		b.requestID = td.RequestID
	}
	return b
}

func (b *taskBatch) add(entityID uuid.UUID, op string, payload any) error {
	raw, err := mapping.EncodePayload(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", op, err)
	}
	b.tasks = append(b.tasks, &types.WriteTask{
		OwnerUserID: b.owner,
		ProjectID:   b.projectID,
		BatchID:     b.id,
		EntityType:  types.EntityContentBlock,
		EntityID:    entityID,
		Op:          op,
		Payload:     datatypes.JSON(raw),
		Status:      types.WriteTaskPending,
	})
	return nil
}

func (b *taskBatch) setSequence(entityID uuid.UUID, sequence int, inStoryArc *bool) error {
	return b.add(entityID, types.OpSetSequence, mapping.SequencePayload{
		Sequence:   sequence,
		InStoryArc: inStoryArc,
		TraceID:    b.traceID,
		RequestID:  b.requestID,
	})
}

func (b *taskBatch) setFields(entityID uuid.UUID, columns map[string]any) error {
	return b.add(entityID, types.OpSetFields, mapping.FieldsPayload{
		Columns:   columns,
		TraceID:   b.traceID,
		RequestID: b.requestID,
	})
}

func (b *taskBatch) commit(dbc dbctx.Context, repo repos.WriteTaskRepo) ([]*types.WriteTask, error) {
	if len(b.tasks) == 0 {
		return []*types.WriteTask{}, nil
	}
	out, err := repo.Create(dbc, b.tasks)
	if err != nil {
		return nil, fmt.Errorf("enqueue write tasks: %w", err)
	}
	return out, nil
}
