package production

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
)

// scoped implements the CRUD shared by every project-scoped production table.
type scoped[T any] struct {
	db    *gorm.DB
	order string
}

func (s scoped[T]) create(dbc dbctx.Context, row *T) (*T, error) {
	if err := dbc.DB(s.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (s scoped[T]) getByID(dbc dbctx.Context, id uuid.UUID) (*T, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var rows []*T
	if err := dbc.DB(s.db).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s scoped[T]) getByIDs(dbc dbctx.Context, projectID uuid.UUID, ids []uuid.UUID) ([]*T, error) {
	out := []*T{}
	if len(ids) == 0 {
		return out, nil
	}
	err := dbc.DB(s.db).Where("project_id = ? AND id IN ?", projectID, ids).Order(s.order).Find(&out).Error
	return out, err
}

func (s scoped[T]) listByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*T, error) {
	out := []*T{}
	if projectID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(s.db).Where("project_id = ?", projectID).Order(s.order).Find(&out).Error
	return out, err
}

func (s scoped[T]) updateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	if id == uuid.Nil || len(updates) == 0 {
		return false, nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	res := dbc.DB(s.db).Model(new(T)).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s scoped[T]) delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	res := dbc.DB(s.db).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
