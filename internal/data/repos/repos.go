package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/storygrid-backend/internal/data/repos/content"
	"github.com/yungbote/storygrid-backend/internal/data/repos/jobs"
	"github.com/yungbote/storygrid-backend/internal/data/repos/production"
	"github.com/yungbote/storygrid-backend/internal/data/repos/project"
	"github.com/yungbote/storygrid-backend/internal/data/repos/settings"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

type ProjectRepo = project.ProjectRepo
type TemplateRepo = project.TemplateRepo

type ContentBlockRepo = content.ContentBlockRepo
type ContentBlockFilter = content.ListFilter
type ScriptBlockRepo = content.ScriptBlockRepo

type TimelineItemRepo = production.TimelineItemRepo
type CrewMemberRepo = production.CrewMemberRepo
type EquipmentRepo = production.EquipmentRepo
type LocationRepo = production.LocationRepo

type UserSettingRepo = settings.UserSettingRepo
type APIKeyRepo = settings.APIKeyRepo

type WriteTaskRepo = jobs.WriteTaskRepo

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return project.NewProjectRepo(db, baseLog)
}
func NewTemplateRepo(db *gorm.DB, baseLog *logger.Logger) TemplateRepo {
	return project.NewTemplateRepo(db, baseLog)
}

func NewContentBlockRepo(db *gorm.DB, baseLog *logger.Logger) ContentBlockRepo {
	return content.NewContentBlockRepo(db, baseLog)
}
func NewScriptBlockRepo(db *gorm.DB, baseLog *logger.Logger) ScriptBlockRepo {
	return content.NewScriptBlockRepo(db, baseLog)
}

func NewTimelineItemRepo(db *gorm.DB, baseLog *logger.Logger) TimelineItemRepo {
	return production.NewTimelineItemRepo(db, baseLog)
}
func NewCrewMemberRepo(db *gorm.DB, baseLog *logger.Logger) CrewMemberRepo {
	return production.NewCrewMemberRepo(db, baseLog)
}
func NewEquipmentRepo(db *gorm.DB, baseLog *logger.Logger) EquipmentRepo {
	return production.NewEquipmentRepo(db, baseLog)
}
func NewLocationRepo(db *gorm.DB, baseLog *logger.Logger) LocationRepo {
	return production.NewLocationRepo(db, baseLog)
}

func NewUserSettingRepo(db *gorm.DB, baseLog *logger.Logger) UserSettingRepo {
	return settings.NewUserSettingRepo(db, baseLog)
}
func NewAPIKeyRepo(db *gorm.DB, baseLog *logger.Logger) APIKeyRepo {
	return settings.NewAPIKeyRepo(db, baseLog)
}

func NewWriteTaskRepo(db *gorm.DB, baseLog *logger.Logger) WriteTaskRepo {
	return jobs.NewWriteTaskRepo(db, baseLog)
}
