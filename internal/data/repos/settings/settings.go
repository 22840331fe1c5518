package settings

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

type UserSettingRepo interface {
	Get(dbc dbctx.Context, ownerUserID uuid.UUID, key string) (*types.UserSetting, error)
	List(dbc dbctx.Context, ownerUserID uuid.UUID) ([]*types.UserSetting, error)
	Upsert(dbc dbctx.Context, row *types.UserSetting) error
}

type userSettingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserSettingRepo(db *gorm.DB, baseLog *logger.Logger) UserSettingRepo {
	return &userSettingRepo{db: db, log: baseLog.With("repo", "UserSettingRepo")}
}

func (r *userSettingRepo) Get(dbc dbctx.Context, ownerUserID uuid.UUID, key string) (*types.UserSetting, error) {
	var rows []*types.UserSetting
	err := dbc.DB(r.db).Where("owner_user_id = ? AND key = ?", ownerUserID, key).Limit(1).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *userSettingRepo) List(dbc dbctx.Context, ownerUserID uuid.UUID) ([]*types.UserSetting, error) {
	out := []*types.UserSetting{}
	err := dbc.DB(r.db).Where("owner_user_id = ?", ownerUserID).Order("key ASC").Find(&out).Error
	return out, err
}

func (r *userSettingRepo) Upsert(dbc dbctx.Context, row *types.UserSetting) error {
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now()
	}
	return dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_user_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(row).Error
}

type APIKeyRepo interface {
	Get(dbc dbctx.Context, ownerUserID uuid.UUID, provider string) (*types.APIKey, error)
	List(dbc dbctx.Context, ownerUserID uuid.UUID) ([]*types.APIKey, error)
	Upsert(dbc dbctx.Context, row *types.APIKey) error
	Delete(dbc dbctx.Context, ownerUserID uuid.UUID, provider string) (bool, error)
}

type apiKeyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAPIKeyRepo(db *gorm.DB, baseLog *logger.Logger) APIKeyRepo {
	return &apiKeyRepo{db: db, log: baseLog.With("repo", "APIKeyRepo")}
}

func (r *apiKeyRepo) Get(dbc dbctx.Context, ownerUserID uuid.UUID, provider string) (*types.APIKey, error) {
	var rows []*types.APIKey
	err := dbc.DB(r.db).Where("owner_user_id = ? AND provider = ?", ownerUserID, provider).Limit(1).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *apiKeyRepo) List(dbc dbctx.Context, ownerUserID uuid.UUID) ([]*types.APIKey, error) {
	out := []*types.APIKey{}
	err := dbc.DB(r.db).Where("owner_user_id = ?", ownerUserID).Order("provider ASC").Find(&out).Error
	return out, err
}

func (r *apiKeyRepo) Upsert(dbc dbctx.Context, row *types.APIKey) error {
	return dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_user_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{"sealed_key", "hint", "updated_at"}),
	}).Create(row).Error
}

func (r *apiKeyRepo) Delete(dbc dbctx.Context, ownerUserID uuid.UUID, provider string) (bool, error) {
	res := dbc.DB(r.db).Where("owner_user_id = ? AND provider = ?", ownerUserID, provider).Delete(&types.APIKey{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
