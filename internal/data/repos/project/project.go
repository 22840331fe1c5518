package project

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

type ProjectRepo interface {
	Create(dbc dbctx.Context, row *types.Project) (*types.Project, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Project, error)
	GetOwned(dbc dbctx.Context, ownerUserID, id uuid.UUID) (*types.Project, error)
	ListByOwner(dbc dbctx.Context, ownerUserID uuid.UUID) ([]*types.Project, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error)
	SoftDelete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (r *projectRepo) Create(dbc dbctx.Context, row *types.Project) (*types.Project, error) {
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *projectRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Project, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Project
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *projectRepo) GetOwned(dbc dbctx.Context, ownerUserID, id uuid.UUID) (*types.Project, error) {
	row, err := r.GetByID(dbc, id)
	if err != nil || row == nil {
		return row, err
	}
	if row.OwnerUserID != ownerUserID {
		return nil, nil
	}
	return row, nil
}

func (r *projectRepo) ListByOwner(dbc dbctx.Context, ownerUserID uuid.UUID) ([]*types.Project, error) {
	out := []*types.Project{}
	err := dbc.DB(r.db).Where("owner_user_id = ?", ownerUserID).Order("updated_at DESC").Find(&out).Error
	return out, err
}

func (r *projectRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	if id == uuid.Nil || len(updates) == 0 {
		return false, nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	res := dbc.DB(r.db).Model(&types.Project{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *projectRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.Project{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type TemplateRepo interface {
	List(dbc dbctx.Context) ([]*types.ProjectTemplate, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ProjectTemplate, error)
}

type templateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTemplateRepo(db *gorm.DB, baseLog *logger.Logger) TemplateRepo {
	return &templateRepo{db: db, log: baseLog.With("repo", "TemplateRepo")}
}

func (r *templateRepo) List(dbc dbctx.Context) ([]*types.ProjectTemplate, error) {
	out := []*types.ProjectTemplate{}
	err := dbc.DB(r.db).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *templateRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ProjectTemplate, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.ProjectTemplate
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}
