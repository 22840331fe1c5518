package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

type ScriptBlockRepo interface {
	Create(dbc dbctx.Context, row *types.ScriptBlock) (*types.ScriptBlock, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ScriptBlock, error)
	ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.ScriptBlock, error)
	ListByContentBlock(dbc dbctx.Context, contentBlockID uuid.UUID) ([]*types.ScriptBlock, error)
	// SaveFields applies updates and bumps the version in the same statement.
	SaveFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error)
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type scriptBlockRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScriptBlockRepo(db *gorm.DB, baseLog *logger.Logger) ScriptBlockRepo {
	return &scriptBlockRepo{db: db, log: baseLog.With("repo", "ScriptBlockRepo")}
}

func (r *scriptBlockRepo) Create(dbc dbctx.Context, row *types.ScriptBlock) (*types.ScriptBlock, error) {
	if row.Version <= 0 {
		row.Version = 1
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *scriptBlockRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ScriptBlock, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.ScriptBlock
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *scriptBlockRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.ScriptBlock, error) {
	out := []*types.ScriptBlock{}
	err := dbc.DB(r.db).Where("project_id = ?", projectID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *scriptBlockRepo) ListByContentBlock(dbc dbctx.Context, contentBlockID uuid.UUID) ([]*types.ScriptBlock, error) {
	out := []*types.ScriptBlock{}
	err := dbc.DB(r.db).Where("content_block_id = ?", contentBlockID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *scriptBlockRepo) SaveFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["version"] = gorm.Expr("version + 1")
	updates["updated_at"] = time.Now()
	res := dbc.DB(r.db).Model(&types.ScriptBlock{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *scriptBlockRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.ScriptBlock{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
