package content

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

// ListFilter narrows ListByProject. Nil fields do not filter.
type ListFilter struct {
	InStoryArc *bool
	Status     string
}

type ContentBlockRepo interface {
	Create(dbc dbctx.Context, rows []*types.ContentBlock) ([]*types.ContentBlock, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ContentBlock, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.ContentBlock, error)
	ListByProject(dbc dbctx.Context, projectID uuid.UUID, filter ListFilter) ([]*types.ContentBlock, error)
	CountByProject(dbc dbctx.Context, projectID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error)
	SetSequence(dbc dbctx.Context, id uuid.UUID, sequence int, inStoryArc *bool) (bool, error)
	SearchLike(dbc dbctx.Context, projectID uuid.UUID, query string, limit int) ([]*types.ContentBlock, error)
	SoftDelete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type contentBlockRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentBlockRepo(db *gorm.DB, baseLog *logger.Logger) ContentBlockRepo {
	return &contentBlockRepo{db: db, log: baseLog.With("repo", "ContentBlockRepo")}
}

// sequenceOrder sorts a missing sequence as 0 and breaks ties by creation.
const sequenceOrder = "COALESCE(sequence, 0) ASC, created_at ASC, id ASC"

func (r *contentBlockRepo) Create(dbc dbctx.Context, rows []*types.ContentBlock) ([]*types.ContentBlock, error) {
	if len(rows) == 0 {
		return []*types.ContentBlock{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *contentBlockRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ContentBlock, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.ContentBlock
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *contentBlockRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.ContentBlock, error) {
	var out []*types.ContentBlock
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Order(sequenceOrder).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentBlockRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID, filter ListFilter) ([]*types.ContentBlock, error) {
	out := []*types.ContentBlock{}
	if projectID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).Where("project_id = ?", projectID)
	if filter.InStoryArc != nil {
		q = q.Where("in_story_arc = ?", *filter.InStoryArc)
	}
	if s := strings.TrimSpace(filter.Status); s != "" {
		q = q.Where("status = ?", s)
	}
	if err := q.Order(sequenceOrder).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentBlockRepo) CountByProject(dbc dbctx.Context, projectID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.ContentBlock{}).Where("project_id = ?", projectID).Count(&n).Error
	return n, err
}

func (r *contentBlockRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	if id == uuid.Nil || len(updates) == 0 {
		return false, nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	res := dbc.DB(r.db).Model(&types.ContentBlock{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *contentBlockRepo) SetSequence(dbc dbctx.Context, id uuid.UUID, sequence int, inStoryArc *bool) (bool, error) {
	updates := map[string]interface{}{"sequence": sequence}
	if inStoryArc != nil {
		updates["in_story_arc"] = *inStoryArc
	}
	return r.UpdateFields(dbc, id, updates)
}

func (r *contentBlockRepo) SearchLike(dbc dbctx.Context, projectID uuid.UUID, query string, limit int) ([]*types.ContentBlock, error) {
	out := []*types.ContentBlock{}
	query = strings.ToLower(strings.TrimSpace(query))
	if projectID == uuid.Nil || query == "" {
		return out, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	like := "%" + escapeLike(query) + "%"
	err := dbc.DB(r.db).
		Where("project_id = ?", projectID).
		Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(notes) LIKE ? ESCAPE '\')`, like, like, like).
		Order(sequenceOrder).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentBlockRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.ContentBlock{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
