package production

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/storygrid-backend/internal/domain/model"
)

var (
	TimelineStatuses  = []string{"planned", "confirmed", "in-review", "completed"}
	CrewRoles         = []string{"host", "guest", "camera", "sound", "producer", "director", "editor", "other"}
	EquipmentCategory = []string{"camera", "lens", "audio", "lighting", "misc"}
)

// TimelineItem is the shoot-scheduling metadata attached to a content block.
type TimelineItem struct {
	model.Base
	ProjectID      uuid.UUID                    `gorm:"type:uuid;not null;index" json:"project_id"`
	ContentBlockID uuid.UUID                    `gorm:"type:uuid;not null;index" json:"content_block_id"`
	Date           string                       `gorm:"column:date" json:"date"`
	StartTime      string                       `gorm:"column:start_time" json:"start_time"`
	EndTime        string                       `gorm:"column:end_time" json:"end_time"`
	LocationID     *uuid.UUID                   `gorm:"type:uuid;column:location_id" json:"location_id,omitempty"`
	Status         string                       `gorm:"column:status;not null" json:"status"`
	Notes          string                       `gorm:"column:notes" json:"notes"`
	CrewIDs        datatypes.JSONSlice[string]  `gorm:"column:crew_ids" json:"crew_ids"`
	EquipmentIDs   datatypes.JSONSlice[string]  `gorm:"column:equipment_ids" json:"equipment_ids"`
	DeletedAt      gorm.DeletedAt               `gorm:"index" json:"-"`
}

func (TimelineItem) TableName() string { return "timeline_item" }

type CrewMember struct {
	model.Base
	ProjectID uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Role      string         `gorm:"column:role;not null" json:"role"`
	Contact   string         `gorm:"column:contact" json:"contact"`
	Notes     string         `gorm:"column:notes" json:"notes"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CrewMember) TableName() string { return "crew_member" }

type Equipment struct {
	model.Base
	ProjectID uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Category  string         `gorm:"column:category;not null" json:"category"`
	Quantity  int            `gorm:"column:quantity;not null;default:1" json:"quantity"`
	IsPacked  bool           `gorm:"column:is_packed;not null;default:false" json:"is_packed"`
	Barcode   string         `gorm:"column:barcode" json:"barcode"`
	Notes     string         `gorm:"column:notes" json:"notes"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Equipment) TableName() string { return "equipment" }

type Location struct {
	model.Base
	ProjectID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Address     string         `gorm:"column:address" json:"address"`
	MapLink     string         `gorm:"column:map_link" json:"map_link"`
	ContactName string         `gorm:"column:contact_name" json:"contact_name"`
	ContactInfo string         `gorm:"column:contact_info" json:"contact_info"`
	Constraints string         `gorm:"column:constraints" json:"constraints"`
	Notes       string         `gorm:"column:notes" json:"notes"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Location) TableName() string { return "location" }
