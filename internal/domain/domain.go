package domain

import (
	"github.com/yungbote/storygrid-backend/internal/domain/content"
	"github.com/yungbote/storygrid-backend/internal/domain/jobs"
	"github.com/yungbote/storygrid-backend/internal/domain/model"
	"github.com/yungbote/storygrid-backend/internal/domain/production"
	"github.com/yungbote/storygrid-backend/internal/domain/project"
	"github.com/yungbote/storygrid-backend/internal/domain/settings"
)

const (
	WriteTaskPending   = jobs.WriteTaskPending
	WriteTaskRunning   = jobs.WriteTaskRunning
	WriteTaskCommitted = jobs.WriteTaskCommitted
	WriteTaskFailed    = jobs.WriteTaskFailed

	OpSetSequence = jobs.OpSetSequence
	OpSetFields   = jobs.OpSetFields

	EntityContentBlock = jobs.EntityContentBlock

	StatusDraft       = content.StatusDraft
	StatusNeedsReview = content.StatusNeedsReview
	StatusApproved    = content.StatusApproved
	StatusPlanned     = content.StatusPlanned
	StatusFilmed      = content.StatusFilmed
	StatusInEdit      = content.StatusInEdit
)

type (
	Base = model.Base

	ContentBlock = content.ContentBlock
	ScriptBlock  = content.ScriptBlock

	TimelineItem = production.TimelineItem
	CrewMember   = production.CrewMember
	Equipment    = production.Equipment
	Location     = production.Location

	Project         = project.Project
	ProjectTemplate = project.Template

	APIKey       = settings.APIKey
	UserSetting  = settings.UserSetting
	SettingValue = settings.Value

	WriteTask = jobs.WriteTask
)

var (
	BlockStatuses       = content.BlockStatuses
	TimelineStatuses    = production.TimelineStatuses
	CrewRoles           = production.CrewRoles
	EquipmentCategories = production.EquipmentCategory
)

// Models lists every table owned by this service, in migration order.
func Models() []any {
	return []any{
		&ProjectTemplate{},
		&Project{},
		&ContentBlock{},
		&ScriptBlock{},
		&TimelineItem{},
		&CrewMember{},
		&Equipment{},
		&Location{},
		&APIKey{},
		&UserSetting{},
		&WriteTask{},
	}
}
