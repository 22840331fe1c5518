package content

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storygrid-backend/internal/domain/model"
)

const (
	StatusDraft       = "draft"
	StatusNeedsReview = "needs-review"
	StatusApproved    = "approved"

	// Production timeline view statuses.
	StatusPlanned = "planned"
	StatusFilmed  = "filmed"
	StatusInEdit  = "in-edit"
)

// BlockStatuses is the closed set accepted on write; no transition rules apply.
var BlockStatuses = []string{StatusDraft, StatusNeedsReview, StatusApproved, StatusPlanned, StatusFilmed, StatusInEdit}

// ContentBlock is the ordered content unit shared by the ideation board, the
// story-arc timeline and the production timeline.
type ContentBlock struct {
	model.Base
	ProjectID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Type        string         `gorm:"column:type;not null" json:"type"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Description string         `gorm:"column:description" json:"description"`
	Notes       string         `gorm:"column:notes" json:"notes"`
	Status      string         `gorm:"column:status;not null;index" json:"status"`
	Duration    *float64       `gorm:"column:duration" json:"duration,omitempty"`
	InStoryArc  bool           `gorm:"column:in_story_arc;not null;default:false;index" json:"in_story_arc"`
	AISource    string         `gorm:"column:ai_source" json:"ai_source,omitempty"`
	Position    *float64       `gorm:"column:position" json:"position,omitempty"`
	Sequence    *int           `gorm:"column:sequence;index" json:"sequence,omitempty"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ContentBlock) TableName() string { return "content_block" }

func (b ContentBlock) OrderKey() string        { return b.ID.String() }
func (b ContentBlock) OrderSequence() *int     { return b.Sequence }
func (b ContentBlock) OrderDuration() *float64 { return b.Duration }
