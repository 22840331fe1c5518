package production

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

type TimelineItemRepo interface {
	Create(dbc dbctx.Context, row *types.TimelineItem) (*types.TimelineItem, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.TimelineItem, error)
	ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.TimelineItem, error)
	ListByContentBlock(dbc dbctx.Context, contentBlockID uuid.UUID) ([]*types.TimelineItem, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error)
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type timelineItemRepo struct {
	scoped[types.TimelineItem]
	log *logger.Logger
}

func NewTimelineItemRepo(db *gorm.DB, baseLog *logger.Logger) TimelineItemRepo {
	return &timelineItemRepo{
		scoped: scoped[types.TimelineItem]{db: db, order: "date ASC, start_time ASC, created_at ASC"},
		log:    baseLog.With("repo", "TimelineItemRepo"),
	}
}

func (r *timelineItemRepo) Create(dbc dbctx.Context, row *types.TimelineItem) (*types.TimelineItem, error) {
	return r.create(dbc, row)
}
func (r *timelineItemRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.TimelineItem, error) {
	return r.getByID(dbc, id)
}
func (r *timelineItemRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.TimelineItem, error) {
	return r.listByProject(dbc, projectID)
}
func (r *timelineItemRepo) ListByContentBlock(dbc dbctx.Context, contentBlockID uuid.UUID) ([]*types.TimelineItem, error) {
	out := []*types.TimelineItem{}
	err := dbc.DB(r.db).Where("content_block_id = ?", contentBlockID).Order(r.order).Find(&out).Error
	return out, err
}
func (r *timelineItemRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	return r.updateFields(dbc, id, updates)
}
func (r *timelineItemRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	return r.delete(dbc, id)
}

type CrewMemberRepo interface {
	Create(dbc dbctx.Context, row *types.CrewMember) (*types.CrewMember, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CrewMember, error)
	GetByIDs(dbc dbctx.Context, projectID uuid.UUID, ids []uuid.UUID) ([]*types.CrewMember, error)
	ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.CrewMember, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error)
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type crewMemberRepo struct {
	scoped[types.CrewMember]
	log *logger.Logger
}

func NewCrewMemberRepo(db *gorm.DB, baseLog *logger.Logger) CrewMemberRepo {
	return &crewMemberRepo{
		scoped: scoped[types.CrewMember]{db: db, order: "name ASC, created_at ASC"},
		log:    baseLog.With("repo", "CrewMemberRepo"),
	}
}

func (r *crewMemberRepo) Create(dbc dbctx.Context, row *types.CrewMember) (*types.CrewMember, error) {
	return r.create(dbc, row)
}
func (r *crewMemberRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CrewMember, error) {
	return r.getByID(dbc, id)
}
func (r *crewMemberRepo) GetByIDs(dbc dbctx.Context, projectID uuid.UUID, ids []uuid.UUID) ([]*types.CrewMember, error) {
	return r.getByIDs(dbc, projectID, ids)
}
func (r *crewMemberRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.CrewMember, error) {
	return r.listByProject(dbc, projectID)
}
func (r *crewMemberRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	return r.updateFields(dbc, id, updates)
}
func (r *crewMemberRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	return r.delete(dbc, id)
}

type EquipmentRepo interface {
	Create(dbc dbctx.Context, row *types.Equipment) (*types.Equipment, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Equipment, error)
	GetByIDs(dbc dbctx.Context, projectID uuid.UUID, ids []uuid.UUID) ([]*types.Equipment, error)
	ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Equipment, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error)
	SetPacked(dbc dbctx.Context, projectID uuid.UUID, ids []uuid.UUID, packed bool) (int64, error)
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type equipmentRepo struct {
	scoped[types.Equipment]
	log *logger.Logger
}

func NewEquipmentRepo(db *gorm.DB, baseLog *logger.Logger) EquipmentRepo {
	return &equipmentRepo{
		scoped: scoped[types.Equipment]{db: db, order: "category ASC, name ASC, created_at ASC"},
		log:    baseLog.With("repo", "EquipmentRepo"),
	}
}

func (r *equipmentRepo) Create(dbc dbctx.Context, row *types.Equipment) (*types.Equipment, error) {
	return r.create(dbc, row)
}
func (r *equipmentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Equipment, error) {
	return r.getByID(dbc, id)
}
func (r *equipmentRepo) GetByIDs(dbc dbctx.Context, projectID uuid.UUID, ids []uuid.UUID) ([]*types.Equipment, error) {
	return r.getByIDs(dbc, projectID, ids)
}
func (r *equipmentRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Equipment, error) {
	return r.listByProject(dbc, projectID)
}
func (r *equipmentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	return r.updateFields(dbc, id, updates)
}
func (r *equipmentRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	return r.delete(dbc, id)
}

// SetPacked flips is_packed for ids (all project equipment when ids is empty).
func (r *equipmentRepo) SetPacked(dbc dbctx.Context, projectID uuid.UUID, ids []uuid.UUID, packed bool) (int64, error) {
	q := dbc.DB(r.db).Model(&types.Equipment{}).Where("project_id = ?", projectID)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	res := q.Update("is_packed", packed)
	return res.RowsAffected, res.Error
}

type LocationRepo interface {
	Create(dbc dbctx.Context, row *types.Location) (*types.Location, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Location, error)
	ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Location, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error)
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type locationRepo struct {
	scoped[types.Location]
	log *logger.Logger
}

func NewLocationRepo(db *gorm.DB, baseLog *logger.Logger) LocationRepo {
	return &locationRepo{
		scoped: scoped[types.Location]{db: db, order: "name ASC, created_at ASC"},
		log:    baseLog.With("repo", "LocationRepo"),
	}
}

func (r *locationRepo) Create(dbc dbctx.Context, row *types.Location) (*types.Location, error) {
	return r.create(dbc, row)
}
func (r *locationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Location, error) {
	return r.getByID(dbc, id)
}
func (r *locationRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Location, error) {
	return r.listByProject(dbc, projectID)
}
func (r *locationRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	return r.updateFields(dbc, id, updates)
}
func (r *locationRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	return r.delete(dbc, id)
}
