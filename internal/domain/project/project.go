package project

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/storygrid-backend/internal/domain/model"
)

type Project struct {
	model.Base
	OwnerUserID uuid.UUID                   `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	Title       string                      `gorm:"column:title;not null" json:"title"`
	TemplateID  *uuid.UUID                  `gorm:"type:uuid;column:template_id" json:"template_id,omitempty"`
	Tags        datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	Settings    datatypes.JSON              `gorm:"column:settings" json:"settings"`
	DeletedAt   gorm.DeletedAt              `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "project" }

type Template struct {
	model.Base
	Name            string         `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Description     string         `gorm:"column:description" json:"description"`
	DefaultSettings datatypes.JSON `gorm:"column:default_settings" json:"default_settings"`
}

func (Template) TableName() string { return "project_template" }
