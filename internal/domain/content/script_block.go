package content

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storygrid-backend/internal/domain/model"
)

// ScriptBlock is the three-column script (where / ears / eyes) for one content block.
type ScriptBlock struct {
	model.Base
	ProjectID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	ContentBlockID uuid.UUID      `gorm:"type:uuid;not null;index" json:"content_block_id"`
	Title          string         `gorm:"column:title" json:"title"`
	Where          string         `gorm:"column:where_text" json:"where"`
	Ears           string         `gorm:"column:ears_text" json:"ears"`
	Eyes           string         `gorm:"column:eyes_text" json:"eyes"`
	Status         string         `gorm:"column:status;not null" json:"status"`
	Version        int            `gorm:"column:version;not null;default:1" json:"version"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ScriptBlock) TableName() string { return "script_block" }
