package jobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/storygrid-backend/internal/domain/model"
)

const (
	WriteTaskPending   = "pending"
	WriteTaskRunning   = "running"
	WriteTaskCommitted = "committed"
	WriteTaskFailed    = "failed"

	OpSetSequence = "set_sequence"
	OpSetFields   = "set_fields"

	EntityContentBlock = "content_block"
)

// WriteTask is one durable write produced by a UI action (reorder, membership
// toggle, field edit). Tasks of one action share a BatchID.
type WriteTask struct {
	model.Base
	OwnerUserID uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	ProjectID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	BatchID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"batch_id"`
	EntityType  string         `gorm:"column:entity_type;not null" json:"entity_type"`
	EntityID    uuid.UUID      `gorm:"type:uuid;column:entity_id;not null;index" json:"entity_id"`
	Op          string         `gorm:"column:op;not null;index" json:"op"`
	Payload     datatypes.JSON `gorm:"column:payload" json:"payload"`
	Status      string         `gorm:"column:status;not null;default:pending;index" json:"status"`
	Attempts    int            `gorm:"column:attempts;not null;default:0" json:"attempts"`
	Error       string         `gorm:"column:error" json:"error,omitempty"`
	LockedAt    *time.Time     `gorm:"column:locked_at;index" json:"locked_at,omitempty"`
	HeartbeatAt *time.Time     `gorm:"column:heartbeat_at;index" json:"heartbeat_at,omitempty"`
	LastErrorAt *time.Time     `gorm:"column:last_error_at;index" json:"last_error_at,omitempty"`
	CommittedAt *time.Time     `gorm:"column:committed_at" json:"committed_at,omitempty"`
}

func (WriteTask) TableName() string { return "write_task" }

// Settled reports whether the task will not change again without a retry.
func (t *WriteTask) Settled(maxAttempts int) bool {
	switch t.Status {
	case WriteTaskCommitted:
		return true
	case WriteTaskFailed:
		return t.Attempts >= maxAttempts
	default:
		return false
	}
}
