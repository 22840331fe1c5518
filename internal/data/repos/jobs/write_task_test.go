package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/storygrid-backend/internal/data/repos/testutil"
	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
)

func newTask(projectID, batchID, entityID uuid.UUID, status string, createdAt time.Time) *types.WriteTask {
	return &types.WriteTask{
		Base:        types.Base{ID: uuid.New(), CreatedAt: createdAt, UpdatedAt: createdAt},
		OwnerUserID: uuid.New(),
		ProjectID:   projectID,
		BatchID:     batchID,
		EntityType:  "content_block",
		EntityID:    entityID,
		Op:          types.OpSetSequence,
		Payload:     datatypes.JSON([]byte(`{"sequence":1}`)),
		Status:      status,
	}
}

func TestWriteTaskRepoClaimOrder(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewWriteTaskRepo(db, testutil.Logger(t))

	now := time.Now()
	projectID := uuid.New()
	batchID := uuid.New()

	pending := newTask(projectID, batchID, uuid.New(), types.WriteTaskPending, now.Add(-3*time.Hour))
	failed := newTask(projectID, batchID, uuid.New(), types.WriteTaskFailed, now.Add(-2*time.Hour))
	lastErr := now.Add(-2 * time.Hour)
	failed.LastErrorAt = &lastErr
	failed.Attempts = 1
	stale := newTask(projectID, batchID, uuid.New(), types.WriteTaskRunning, now.Add(-1*time.Hour))
	hb := now.Add(-10 * time.Hour)
	stale.HeartbeatAt = &hb
	exhausted := newTask(projectID, batchID, uuid.New(), types.WriteTaskFailed, now.Add(-4*time.Hour))
	exhausted.Attempts = 3
	exhausted.LastErrorAt = &lastErr

	created, err := repo.Create(dbc, []*types.WriteTask{pending, failed, stale, exhausted})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 4 {
		t.Fatalf("Create: want=4 got=%d", len(created))
	}

	want := []uuid.UUID{pending.ID, failed.ID, stale.ID}
	for i, id := range want {
		got, err := repo.ClaimNextRunnable(dbc, 3, time.Hour, time.Hour)
		if err != nil {
			t.Fatalf("ClaimNextRunnable #%d: %v", i+1, err)
		}
		if got == nil || got.ID != id {
			t.Fatalf("ClaimNextRunnable #%d: want=%v got=%v", i+1, id, got)
		}
		if got.Status != types.WriteTaskRunning {
			t.Fatalf("ClaimNextRunnable #%d status: want=running got=%s", i+1, got.Status)
		}
	}
	if got, err := repo.ClaimNextRunnable(dbc, 3, time.Hour, time.Hour); err != nil || got != nil {
		t.Fatalf("ClaimNextRunnable #4: want=nil got=%v err=%v", got, err)
	}

	reloaded, err := repo.GetByID(dbc, failed.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("GetByID: err=%v row=%v", err, reloaded)
	}
	if reloaded.Attempts != 2 {
		t.Fatalf("attempts: want=2 got=%d", reloaded.Attempts)
	}
}

func TestWriteTaskRepoLifecycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewWriteTaskRepo(db, testutil.Logger(t))

	now := time.Now()
	projectID := uuid.New()
	batchID := uuid.New()
	a := newTask(projectID, batchID, uuid.New(), types.WriteTaskPending, now.Add(-2*time.Minute))
	b := newTask(projectID, batchID, uuid.New(), types.WriteTaskPending, now.Add(-1*time.Minute))
	if _, err := repo.Create(dbc, []*types.WriteTask{a, b}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if ok, err := repo.MarkCommitted(dbc, a.ID); err != nil || !ok {
		t.Fatalf("MarkCommitted: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.MarkFailed(dbc, a.ID, "late"); err != nil || ok {
		t.Fatalf("MarkFailed on committed: want no-op, ok=%v err=%v", ok, err)
	}
	if ok, err := repo.MarkFailed(dbc, b.ID, "boom"); err != nil || !ok {
		t.Fatalf("MarkFailed: ok=%v err=%v", ok, err)
	}

	rows, err := repo.ListByBatch(dbc, batchID)
	if err != nil {
		t.Fatalf("ListByBatch: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != a.ID || rows[1].ID != b.ID {
		t.Fatalf("ListByBatch: unexpected order %v", rows)
	}
	if rows[0].Status != types.WriteTaskCommitted || rows[0].CommittedAt == nil {
		t.Fatalf("committed row: %+v", rows[0])
	}
	if rows[1].Status != types.WriteTaskFailed || rows[1].Error != "boom" || rows[1].LastErrorAt == nil {
		t.Fatalf("failed row: %+v", rows[1])
	}

	failedOnly, err := repo.ListByProject(dbc, projectID, []string{types.WriteTaskFailed}, 0)
	if err != nil || len(failedOnly) != 1 || failedOnly[0].ID != b.ID {
		t.Fatalf("ListByProject(failed): err=%v rows=%v", err, failedOnly)
	}

	n, err := repo.ResetFailedBatch(dbc, batchID)
	if err != nil || n != 1 {
		t.Fatalf("ResetFailedBatch: n=%d err=%v", n, err)
	}
	reset, _ := repo.GetByID(dbc, b.ID)
	if reset.Status != types.WriteTaskPending || reset.Attempts != 0 || reset.Error != "" {
		t.Fatalf("reset row: %+v", reset)
	}
}

func TestWriteTaskRepoListNewerForEntity(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewWriteTaskRepo(db, testutil.Logger(t))

	now := time.Now()
	projectID := uuid.New()
	entityID := uuid.New()
	older := newTask(projectID, uuid.New(), entityID, types.WriteTaskPending, now.Add(-2*time.Minute))
	newer := newTask(projectID, uuid.New(), entityID, types.WriteTaskCommitted, now.Add(-1*time.Minute))
	other := newTask(projectID, uuid.New(), uuid.New(), types.WriteTaskPending, now)
	if _, err := repo.Create(dbc, []*types.WriteTask{older, newer, other}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.ListNewerForEntity(dbc, older)
	if err != nil || len(got) != 1 || got[0].ID != newer.ID {
		t.Fatalf("ListNewerForEntity(older): want=[%s] got=%v err=%v", newer.ID, got, err)
	}
	got, err = repo.ListNewerForEntity(dbc, newer)
	if err != nil || len(got) != 0 {
		t.Fatalf("ListNewerForEntity(newer): want=[] got=%v err=%v", got, err)
	}

	// A failed newer task does not supersede.
	if err := tx.Model(&types.WriteTask{}).Where("id = ?", newer.ID).Update("status", types.WriteTaskFailed).Error; err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	got, err = repo.ListNewerForEntity(dbc, older)
	if err != nil || len(got) != 0 {
		t.Fatalf("ListNewerForEntity after fail: want=[] got=%v err=%v", got, err)
	}
}

func TestWriteTaskRepoStatusDefaultsToPending(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewWriteTaskRepo(db, testutil.Logger(t))

	task := newTask(uuid.New(), uuid.New(), uuid.New(), "", time.Now().Add(-time.Minute))
	if err := tx.Create(task).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	stored, err := repo.GetByID(dbc, task.ID)
	if err != nil || stored == nil {
		t.Fatalf("GetByID: row=%v err=%v", stored, err)
	}
	if stored.Status != types.WriteTaskPending {
		t.Fatalf("status: want=pending got=%q", stored.Status)
	}
	claimed, err := repo.ClaimNextRunnable(dbc, 3, time.Minute, time.Minute)
	if err != nil || claimed == nil || claimed.ID != task.ID {
		t.Fatalf("ClaimNextRunnable: task=%v err=%v", claimed, err)
	}
}

func TestWriteTaskRepoListLiveByProject(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewWriteTaskRepo(db, testutil.Logger(t))

	now := time.Now()
	projectID := uuid.New()
	batchID := uuid.New()
	running := newTask(projectID, batchID, uuid.New(), types.WriteTaskRunning, now.Add(-3*time.Minute))
	committed := newTask(projectID, batchID, uuid.New(), types.WriteTaskCommitted, now.Add(-2*time.Minute))
	pending := newTask(projectID, batchID, uuid.New(), types.WriteTaskPending, now.Add(-time.Minute))
	failed := newTask(projectID, batchID, uuid.New(), types.WriteTaskFailed, now.Add(-time.Minute))
	other := newTask(uuid.New(), uuid.New(), uuid.New(), types.WriteTaskPending, now)
	if _, err := repo.Create(dbc, []*types.WriteTask{pending, committed, running, failed, other}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	live, err := repo.ListLiveByProject(dbc, projectID)
	if err != nil {
		t.Fatalf("ListLiveByProject: %v", err)
	}
	if len(live) != 2 || live[0].ID != running.ID || live[1].ID != pending.ID {
		t.Fatalf("live tasks: want=[running pending] got=%d rows", len(live))
	}
}
