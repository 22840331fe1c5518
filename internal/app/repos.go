package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/storygrid-backend/internal/data/repos"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

type Repos struct {
	Project      repos.ProjectRepo
	Template     repos.TemplateRepo
	ContentBlock repos.ContentBlockRepo
	ScriptBlock  repos.ScriptBlockRepo
	TimelineItem repos.TimelineItemRepo
	CrewMember   repos.CrewMemberRepo
	Equipment    repos.EquipmentRepo
	Location     repos.LocationRepo
	UserSetting  repos.UserSettingRepo
	APIKey       repos.APIKeyRepo
	WriteTask    repos.WriteTaskRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Project:      repos.NewProjectRepo(db, log),
		Template:     repos.NewTemplateRepo(db, log),
		ContentBlock: repos.NewContentBlockRepo(db, log),
		ScriptBlock:  repos.NewScriptBlockRepo(db, log),
		TimelineItem: repos.NewTimelineItemRepo(db, log),
		CrewMember:   repos.NewCrewMemberRepo(db, log),
		Equipment:    repos.NewEquipmentRepo(db, log),
		Location:     repos.NewLocationRepo(db, log),
		UserSetting:  repos.NewUserSettingRepo(db, log),
		APIKey:       repos.NewAPIKeyRepo(db, log),
		WriteTask:    repos.NewWriteTaskRepo(db, log),
	}
}
