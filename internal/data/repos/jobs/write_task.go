package jobs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

type WriteTaskRepo interface {
	Create(dbc dbctx.Context, tasks []*types.WriteTask) ([]*types.WriteTask, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.WriteTask, error)
	ListByBatch(dbc dbctx.Context, batchID uuid.UUID) ([]*types.WriteTask, error)
	ListByProject(dbc dbctx.Context, projectID uuid.UUID, statuses []string, limit int) ([]*types.WriteTask, error)
	ListLiveByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.WriteTask, error)
	ClaimNextRunnable(dbc dbctx.Context, maxAttempts int, retryDelay time.Duration, staleRunning time.Duration) (*types.WriteTask, error)
	MarkCommitted(dbc dbctx.Context, id uuid.UUID) (bool, error)
	MarkFailed(dbc dbctx.Context, id uuid.UUID, errText string) (bool, error)
	Heartbeat(dbc dbctx.Context, id uuid.UUID) error
	ResetFailed(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
	ResetFailedBatch(dbc dbctx.Context, batchID uuid.UUID) (int64, error)
	ListNewerForEntity(dbc dbctx.Context, task *types.WriteTask) ([]*types.WriteTask, error)
}

type writeTaskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWriteTaskRepo(db *gorm.DB, baseLog *logger.Logger) WriteTaskRepo {
	return &writeTaskRepo{db: db, log: baseLog.With("repo", "WriteTaskRepo")}
}

func (r *writeTaskRepo) Create(dbc dbctx.Context, tasks []*types.WriteTask) ([]*types.WriteTask, error) {
	if len(tasks) == 0 {
		return []*types.WriteTask{}, nil
	}
	for _, t := range tasks {
		if t.Status == "" {
			t.Status = types.WriteTaskPending
		}
	}
	if err := dbc.DB(r.db).Create(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *writeTaskRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.WriteTask, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var task types.WriteTask
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&task).Error; err != nil {
		return nil, err
	}
	if task.ID == uuid.Nil {
		return nil, nil
	}
	return &task, nil
}

func (r *writeTaskRepo) ListByBatch(dbc dbctx.Context, batchID uuid.UUID) ([]*types.WriteTask, error) {
	out := []*types.WriteTask{}
	if batchID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).Where("batch_id = ?", batchID).Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *writeTaskRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID, statuses []string, limit int) ([]*types.WriteTask, error) {
	out := []*types.WriteTask{}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := dbc.DB(r.db).Where("project_id = ?", projectID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Order("created_at DESC, id ASC").Limit(limit).Find(&out).Error
	return out, err
}

// ListLiveByProject returns the project's pending and running tasks, oldest
// first. Replaying them over the stored rows gives the order the owner sees.
func (r *writeTaskRepo) ListLiveByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.WriteTask, error) {
	out := []*types.WriteTask{}
	err := dbc.DB(r.db).
		Where("project_id = ? AND status IN ?", projectID, []string{types.WriteTaskPending, types.WriteTaskRunning}).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// ClaimNextRunnable picks the oldest pending task, a failed task that is due
// for retry, or a running task whose heartbeat went stale, and marks it running.
func (r *writeTaskRepo) ClaimNextRunnable(dbc dbctx.Context, maxAttempts int, retryDelay time.Duration, staleRunning time.Duration) (*types.WriteTask, error) {
	now := time.Now()
	retryCutoff := now.Add(-retryDelay)
	staleCutoff := now.Add(-staleRunning)
	var claimed *types.WriteTask
	err := dbc.DB(r.db).Transaction(func(txx *gorm.DB) error {
		var task types.WriteTask
		q := txx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where(`
        (
          status = ?
          OR (
            status = ?
            AND attempts < ?
            AND (last_error_at IS NULL OR last_error_at < ?)
          )
          OR (
            status = ?
            AND heartbeat_at IS NOT NULL
            AND heartbeat_at < ?
          )
        )
      `, types.WriteTaskPending, types.WriteTaskFailed, maxAttempts, retryCutoff, types.WriteTaskRunning, staleCutoff).
			Order("created_at ASC, id ASC")
		qErr := q.First(&task).Error
		if errors.Is(qErr, gorm.ErrRecordNotFound) {
			return nil
		}
		if qErr != nil {
			return qErr
		}
		uErr := txx.Model(&types.WriteTask{}).
			Where("id = ?", task.ID).
			Updates(map[string]interface{}{
				"status":       types.WriteTaskRunning,
				"attempts":     gorm.Expr("attempts + 1"),
				"locked_at":    now,
				"heartbeat_at": now,
				"updated_at":   now,
			}).Error
		if uErr != nil {
			return uErr
		}
		task.Status = types.WriteTaskRunning
		task.Attempts++
		task.LockedAt = &now
		task.HeartbeatAt = &now
		claimed = &task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *writeTaskRepo) MarkCommitted(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	now := time.Now()
	res := dbc.DB(r.db).Model(&types.WriteTask{}).
		Where("id = ? AND status <> ?", id, types.WriteTaskCommitted).
		Updates(map[string]interface{}{
			"status":       types.WriteTaskCommitted,
			"error":        "",
			"committed_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *writeTaskRepo) MarkFailed(dbc dbctx.Context, id uuid.UUID, errText string) (bool, error) {
	now := time.Now()
	res := dbc.DB(r.db).Model(&types.WriteTask{}).
		Where("id = ? AND status <> ?", id, types.WriteTaskCommitted).
		Updates(map[string]interface{}{
			"status":        types.WriteTaskFailed,
			"error":         errText,
			"last_error_at": now,
			"updated_at":    now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *writeTaskRepo) Heartbeat(dbc dbctx.Context, id uuid.UUID) error {
	now := time.Now()
	return dbc.DB(r.db).Model(&types.WriteTask{}).
		Where("id = ? AND status = ?", id, types.WriteTaskRunning).
		Updates(map[string]interface{}{"heartbeat_at": now, "updated_at": now}).Error
}

var resetColumns = map[string]interface{}{
	"status":        types.WriteTaskPending,
	"attempts":      0,
	"error":         "",
	"last_error_at": nil,
	"locked_at":     nil,
	"heartbeat_at":  nil,
}

func resetUpdates() map[string]interface{} {
	out := make(map[string]interface{}, len(resetColumns)+1)
	for k, v := range resetColumns {
		out[k] = v
	}
	out["updated_at"] = time.Now()
	return out
}

// ResetFailed moves failed tasks back to pending with a fresh attempt budget.
func (r *writeTaskRepo) ResetFailed(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Model(&types.WriteTask{}).
		Where("id IN ? AND status = ?", ids, types.WriteTaskFailed).
		Updates(resetUpdates())
	return res.RowsAffected, res.Error
}

func (r *writeTaskRepo) ResetFailedBatch(dbc dbctx.Context, batchID uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).Model(&types.WriteTask{}).
		Where("batch_id = ? AND status = ?", batchID, types.WriteTaskFailed).
		Updates(resetUpdates())
	return res.RowsAffected, res.Error
}

// ListNewerForEntity returns the later, not-failed tasks targeting the same
// entity, oldest first. Columns they write supersede this task's.
func (r *writeTaskRepo) ListNewerForEntity(dbc dbctx.Context, task *types.WriteTask) ([]*types.WriteTask, error) {
	var out []*types.WriteTask
	if task == nil {
		return out, nil
	}
	err := dbc.DB(r.db).
		Where("entity_type = ? AND entity_id = ? AND id <> ?", task.EntityType, task.EntityID, task.ID).
		Where("created_at > ?", task.CreatedAt).
		Where("status <> ?", types.WriteTaskFailed).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
