package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storygrid-backend/internal/data/repos"
	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/mapping"
	"github.com/yungbote/storygrid-backend/internal/platform/apierr"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

// ResolvedTimelineItem is a timeline item with its references loaded. Dangling
// references are dropped, not reported.
type ResolvedTimelineItem struct {
	Item      *types.TimelineItem
	Block     *types.ContentBlock
	Location  *types.Location
	Crew      []*types.CrewMember
	Equipment []*types.Equipment
}

type ProductionService interface {
	ListScriptBlocks(dbc dbctx.Context, projectID uuid.UUID) ([]*types.ScriptBlock, error)
	CreateScriptBlock(ctx context.Context, projectID uuid.UUID, in mapping.ScriptBlockInput) (*types.ScriptBlock, error)
	UpdateScriptBlock(ctx context.Context, id uuid.UUID, patch mapping.ScriptBlockPatch) (*types.ScriptBlock, error)
	DeleteScriptBlock(ctx context.Context, id uuid.UUID) error

	ListTimelineItems(dbc dbctx.Context, projectID uuid.UUID) ([]*ResolvedTimelineItem, error)
	GetTimelineItem(dbc dbctx.Context, id uuid.UUID) (*ResolvedTimelineItem, error)
	CreateTimelineItem(ctx context.Context, projectID uuid.UUID, in mapping.TimelineItemInput) (*types.TimelineItem, error)
	UpdateTimelineItem(ctx context.Context, id uuid.UUID, patch mapping.TimelineItemPatch) (*types.TimelineItem, error)
	DeleteTimelineItem(ctx context.Context, id uuid.UUID) error

	ListCrew(dbc dbctx.Context, projectID uuid.UUID) ([]*types.CrewMember, error)
	CreateCrew(ctx context.Context, projectID uuid.UUID, in mapping.CrewMemberInput) (*types.CrewMember, error)
	UpdateCrew(ctx context.Context, id uuid.UUID, patch mapping.CrewMemberPatch) (*types.CrewMember, error)
	DeleteCrew(ctx context.Context, id uuid.UUID) error

	ListEquipment(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Equipment, error)
	CreateEquipment(ctx context.Context, projectID uuid.UUID, in mapping.EquipmentInput) (*types.Equipment, error)
	UpdateEquipment(ctx context.Context, id uuid.UUID, patch mapping.EquipmentPatch) (*types.Equipment, error)
	SetPacked(ctx context.Context, projectID uuid.UUID, ids []uuid.UUID, packed bool) (int64, error)
	DeleteEquipment(ctx context.Context, id uuid.UUID) error

	ListLocations(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Location, error)
	CreateLocation(ctx context.Context, projectID uuid.UUID, in mapping.LocationInput) (*types.Location, error)
	UpdateLocation(ctx context.Context, id uuid.UUID, patch mapping.LocationPatch) (*types.Location, error)
	DeleteLocation(ctx context.Context, id uuid.UUID) error
}

type productionService struct {
	db        *gorm.DB
	log       *logger.Logger
	projects  repos.ProjectRepo
	blocks    repos.ContentBlockRepo
	scripts   repos.ScriptBlockRepo
	timeline  repos.TimelineItemRepo
	crew      repos.CrewMemberRepo
	equipment repos.EquipmentRepo
	locations repos.LocationRepo
}

type ProductionRepos struct {
	Projects  repos.ProjectRepo
	Blocks    repos.ContentBlockRepo
	Scripts   repos.ScriptBlockRepo
	Timeline  repos.TimelineItemRepo
	Crew      repos.CrewMemberRepo
	Equipment repos.EquipmentRepo
	Locations repos.LocationRepo
}

func NewProductionService(db *gorm.DB, baseLog *logger.Logger, r ProductionRepos) ProductionService {
	return &productionService{
		db:        db,
		log:       baseLog.With("service", "ProductionService"),
		projects:  r.Projects,
		blocks:    r.Blocks,
		scripts:   r.Scripts,
		timeline:  r.Timeline,
		crew:      r.Crew,
		equipment: r.Equipment,
		locations: r.Locations,
	}
}

// inProject checks that the caller owns projectID; a foreign row answers as
// not found under code.
func (s *productionService) inProject(dbc dbctx.Context, projectID uuid.UUID, code string, id uuid.UUID) error {
	if _, _, err := ownedProject(dbc, s.projects, projectID); err != nil {
		return apierr.NotFound(code, "%s not found", id)
	}
	return nil
}

// blockInProject resolves a content block reference for a new script or timeline row.
func (s *productionService) blockInProject(dbc dbctx.Context, projectID uuid.UUID, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apierr.BadRequest("invalid_content_block_id", "invalid content block id %q", raw)
	}
	b, err := s.blocks.GetByID(dbc, id)
	if err != nil {
		return uuid.Nil, err
	}
	if b == nil || b.ProjectID != projectID {
		return uuid.Nil, apierr.NotFound("content_block_not_found", "content block %s not found", id)
	}
	return id, nil
}

func oneOf(code, field, value string, allowed []string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if a == value {
			return nil
		}
	}
	return apierr.BadRequest(code, "%s must be one of %s", field, strings.Join(allowed, ", "))
}

// ---- script blocks ----

func (s *productionService) ListScriptBlocks(dbc dbctx.Context, projectID uuid.UUID) ([]*types.ScriptBlock, error) {
	if _, _, err := ownedProject(dbc, s.projects, projectID); err != nil {
		return nil, err
	}
	return s.scripts.ListByProject(dbc, projectID)
}

func (s *productionService) CreateScriptBlock(ctx context.Context, projectID uuid.UUID, in mapping.ScriptBlockInput) (*types.ScriptBlock, error) {
	dbc := dbctx.Of(ctx)
	if _, _, err := ownedProject(dbc, s.projects, projectID); err != nil {
		return nil, err
	}
	if err := oneOf("invalid_status", "status", in.Status, []string{types.StatusDraft, types.StatusNeedsReview, types.StatusApproved}); err != nil {
		return nil, err
	}
	blockID, err := s.blockInProject(dbc, projectID, in.ContentBlockID)
	if err != nil {
		return nil, err
	}
	row := &types.ScriptBlock{}
	mapping.ScriptBlockFromInput(in, projectID, blockID, row)
	return s.scripts.Create(dbc, row)
}

// UpdateScriptBlock saves the patch as a new version.
func (s *productionService) UpdateScriptBlock(ctx context.Context, id uuid.UUID, patch mapping.ScriptBlockPatch) (*types.ScriptBlock, error) {
	dbc := dbctx.Of(ctx)
	row, err := s.scripts.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apierr.NotFound("script_block_not_found", "script block %s not found", id)
	}
	if err := s.inProject(dbc, row.ProjectID, "script_block_not_found", id); err != nil {
		return nil, err
	}
	if patch.Status != nil {
		if err := oneOf("invalid_status", "status", *patch.Status, []string{types.StatusDraft, types.StatusNeedsReview, types.StatusApproved}); err != nil {
			return nil, err
		}
	}
	if _, err := s.scripts.SaveFields(dbc, id, mapping.ScriptBlockPatchColumns(patch)); err != nil {
		return nil, fmt.Errorf("save script block: %w", err)
	}
	return s.scripts.GetByID(dbc, id)
}

func (s *productionService) DeleteScriptBlock(ctx context.Context, id uuid.UUID) error {
	dbc := dbctx.Of(ctx)
	row, err := s.scripts.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if row == nil {
		return apierr.NotFound("script_block_not_found", "script block %s not found", id)
	}
	if err := s.inProject(dbc, row.ProjectID, "script_block_not_found", id); err != nil {
		return err
	}
	_, err = s.scripts.Delete(dbc, id)
	return err
}

// ---- timeline items ----

func (s *productionService) ListTimelineItems(dbc dbctx.Context, projectID uuid.UUID) ([]*ResolvedTimelineItem, error) {
	if _, _, err := ownedProject(dbc, s.projects, projectID); err != nil {
		return nil, err
	}
	items, err := s.timeline.ListByProject(dbc, projectID)
	if err != nil {
		return nil, err
	}
	return s.resolve(dbc, projectID, items)
}

func (s *productionService) GetTimelineItem(dbc dbctx.Context, id uuid.UUID) (*ResolvedTimelineItem, error) {
	row, err := s.timeline.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apierr.NotFound("timeline_item_not_found", "timeline item %s not found", id)
	}
	if err := s.inProject(dbc, row.ProjectID, "timeline_item_not_found", id); err != nil {
		return nil, err
	}
	out, err := s.resolve(dbc, row.ProjectID, []*types.TimelineItem{row})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// resolve loads every referenced row of items in one query per table.
func (s *productionService) resolve(dbc dbctx.Context, projectID uuid.UUID, items []*types.TimelineItem) ([]*ResolvedTimelineItem, error) {
	var blockIDs, crewIDs, equipmentIDs []uuid.UUID
	for _, it := range items {
		blockIDs = append(blockIDs, it.ContentBlockID)
		crewIDs = append(crewIDs, parseUUIDs(it.CrewIDs)...)
		equipmentIDs = append(equipmentIDs, parseUUIDs(it.EquipmentIDs)...)
	}
	blocks, err := s.blocks.GetByIDs(dbc, blockIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve content blocks: %w", err)
	}
	crew, err := s.crew.GetByIDs(dbc, projectID, crewIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve crew: %w", err)
	}
	equipment, err := s.equipment.GetByIDs(dbc, projectID, equipmentIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve equipment: %w", err)
	}
	locations, err := s.locations.ListByProject(dbc, projectID)
	if err != nil {
		return nil, fmt.Errorf("resolve locations: %w", err)
	}

	blockByID := map[uuid.UUID]*types.ContentBlock{}
	for _, b := range blocks {
		if b.ProjectID == projectID {
			blockByID[b.ID] = b
		}
	}
	crewByID := map[string]*types.CrewMember{}
	for _, c := range crew {
		crewByID[c.ID.String()] = c
	}
	equipmentByID := map[string]*types.Equipment{}
	for _, e := range equipment {
		equipmentByID[e.ID.String()] = e
	}
	locationByID := map[uuid.UUID]*types.Location{}
	for _, l := range locations {
		locationByID[l.ID] = l
	}

	out := make([]*ResolvedTimelineItem, 0, len(items))
	for _, it := range items {
		r := &ResolvedTimelineItem{
			Item:      it,
			Block:     blockByID[it.ContentBlockID],
			Crew:      []*types.CrewMember{},
			Equipment: []*types.Equipment{},
		}
		if it.LocationID != nil {
			r.Location = locationByID[*it.LocationID]
		}
		for _, id := range it.CrewIDs {
			if c, ok := crewByID[id]; ok {
				r.Crew = append(r.Crew, c)
			}
		}
		for _, id := range it.EquipmentIDs {
			if e, ok := equipmentByID[id]; ok {
				r.Equipment = append(r.Equipment, e)
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func parseUUIDs(in []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(in))
	for _, s := range in {
		if id, err := uuid.Parse(s); err == nil {
			out = append(out, id)
		}
	}
	return out
}

func (s *productionService) CreateTimelineItem(ctx context.Context, projectID uuid.UUID, in mapping.TimelineItemInput) (*types.TimelineItem, error) {
	dbc := dbctx.Of(ctx)
	if _, _, err := ownedProject(dbc, s.projects, projectID); err != nil {
		return nil, err
	}
	if err := oneOf("invalid_status", "status", in.Status, types.TimelineStatuses); err != nil {
		return nil, err
	}
	blockID, err := s.blockInProject(dbc, projectID, in.ContentBlockID)
	if err != nil {
		return nil, err
	}
	row := &types.TimelineItem{}
	mapping.TimelineItemFromInput(in, projectID, blockID, row)
	return s.timeline.Create(dbc, row)
}

func (s *productionService) UpdateTimelineItem(ctx context.Context, id uuid.UUID, patch mapping.TimelineItemPatch) (*types.TimelineItem, error) {
	dbc := dbctx.Of(ctx)
	row, err := s.timeline.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apierr.NotFound("timeline_item_not_found", "timeline item %s not found", id)
	}
	if err := s.inProject(dbc, row.ProjectID, "timeline_item_not_found", id); err != nil {
		return nil, err
	}
	if patch.Status != nil {
		if err := oneOf("invalid_status", "status", *patch.Status, types.TimelineStatuses); err != nil {
			return nil, err
		}
	}
	if _, err := s.timeline.UpdateFields(dbc, id, mapping.TimelineItemPatchColumns(patch)); err != nil {
		return nil, fmt.Errorf("update timeline item: %w", err)
	}
	return s.timeline.GetByID(dbc, id)
}

func (s *productionService) DeleteTimelineItem(ctx context.Context, id uuid.UUID) error {
	dbc := dbctx.Of(ctx)
	row, err := s.timeline.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if row == nil {
		return apierr.NotFound("timeline_item_not_found", "timeline item %s not found", id)
	}
	if err := s.inProject(dbc, row.ProjectID, "timeline_item_not_found", id); err != nil {
		return err
	}
	_, err = s.timeline.Delete(dbc, id)
	return err
}

// ---- crew ----

func (s *productionService) ListCrew(dbc dbctx.Context, projectID uuid.UUID) ([]*types.CrewMember, error) {
	if _, _, err := ownedProject(dbc, s.projects, projectID); err != nil {
		return nil, err
	}
	return s.crew.ListByProject(dbc, projectID)
}

func (s *productionService) CreateCrew(ctx context.Context, projectID uuid.UUID, in mapping.CrewMemberInput) (*types.CrewMember, error) {
	dbc := dbctx.Of(ctx)
	if _, _, err := ownedProject(dbc, s.projects, projectID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apierr.BadRequest("missing_name", "crew member name is required")
	}
	if err := oneOf("invalid_role", "role", strings.ToLower(in.Role), types.CrewRoles); err != nil {
		return nil, err
	}
	row := &types.CrewMember{}
	mapping.CrewMemberFromInput(in, projectID, row)
	return s.crew.Create(dbc, row)
}

func (s *productionService) UpdateCrew(ctx context.Context, id uuid.UUID, patch mapping.CrewMemberPatch) (*types.CrewMember, error) {
	dbc := dbctx.Of(ctx)
	row, err := s.crew.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apierr.NotFound("crew_member_not_found", "crew member %s not found", id)
	}
	if err := s.inProject(dbc, row.ProjectID, "crew_member_not_found", id); err != nil {
		return nil, err
	}
	if patch.Role != nil {
		if err := oneOf("invalid_role", "role", strings.ToLower(*patch.Role), types.CrewRoles); err != nil {
			return nil, err
		}
	}
	if _, err := s.crew.UpdateFields(dbc, id, mapping.CrewMemberPatchColumns(patch)); err != nil {
		return nil, fmt.Errorf("update crew member: %w", err)
	}
	return s.crew.GetByID(dbc, id)
}

func (s *productionService) DeleteCrew(ctx context.Context, id uuid.UUID) error {
	dbc := dbctx.Of(ctx)
	row, err := s.crew.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if row == nil {
		return apierr.NotFound("crew_member_not_found", "crew member %s not found", id)
	}
	if err := s.inProject(dbc, row.ProjectID, "crew_member_not_found", id); err != nil {
		return err
	}
	_, err = s.crew.Delete(dbc, id)
	return err
}

// ---- equipment ----

func (s *productionService) ListEquipment(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Equipment, error) {
	if _, _, err := ownedProject(dbc, s.projects, projectID); err != nil {
		return nil, err
	}
	return s.equipment.ListByProject(dbc, projectID)
}

func (s *productionService) CreateEquipment(ctx context.Context, projectID uuid.UUID, in mapping.EquipmentInput) (*types.Equipment, error) {
	dbc := dbctx.Of(ctx)
	if _, _, err := ownedProject(dbc, s.projects, projectID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apierr.BadRequest("missing_name", "equipment name is required")
	}
	if err := oneOf("invalid_category", "category", strings.ToLower(in.Category), types.EquipmentCategories); err != nil {
		return nil, err
	}
	row := &types.Equipment{}
	mapping.EquipmentFromInput(in, projectID, row)
	return s.equipment.Create(dbc, row)
}

func (s *productionService) UpdateEquipment(ctx context.Context, id uuid.UUID, patch mapping.EquipmentPatch) (*types.Equipment, error) {
	dbc := dbctx.Of(ctx)
	row, err := s.equipment.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apierr.NotFound("equipment_not_found", "equipment %s not found", id)
	}
	if err := s.inProject(dbc, row.ProjectID, "equipment_not_found", id); err != nil {
		return nil, err
	}
	if patch.Category != nil {
		if err := oneOf("invalid_category", "category", strings.ToLower(*patch.Category), types.EquipmentCategories); err != nil {
			return nil, err
		}
	}
	if _, err := s.equipment.UpdateFields(dbc, id, mapping.EquipmentPatchColumns(patch)); err != nil {
		return nil, fmt.Errorf("update equipment: %w", err)
	}
	return s.equipment.GetByID(dbc, id)
}

// SetPacked marks ids (every project item when empty) packed or unpacked.
func (s *productionService) SetPacked(ctx context.Context, projectID uuid.UUID, ids []uuid.UUID, packed bool) (int64, error) {
	dbc := dbctx.Of(ctx)
	if _, _, err := ownedProject(dbc, s.projects, projectID); err != nil {
		return 0, err
	}
	return s.equipment.SetPacked(dbc, projectID, ids, packed)
}

func (s *productionService) DeleteEquipment(ctx context.Context, id uuid.UUID) error {
	dbc := dbctx.Of(ctx)
	row, err := s.equipment.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if row == nil {
		return apierr.NotFound("equipment_not_found", "equipment %s not found", id)
	}
	if err := s.inProject(dbc, row.ProjectID, "equipment_not_found", id); err != nil {
		return err
	}
	_, err = s.equipment.Delete(dbc, id)
	return err
}

// ---- locations ----

func (s *productionService) ListLocations(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Location, error) {
	if _, _, err := ownedProject(dbc, s.projects, projectID); err != nil {
		return nil, err
	}
	return s.locations.ListByProject(dbc, projectID)
}

func (s *productionService) CreateLocation(ctx context.Context, projectID uuid.UUID, in mapping.LocationInput) (*types.Location, error) {
	dbc := dbctx.Of(ctx)
	if _, _, err := ownedProject(dbc, s.projects, projectID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apierr.BadRequest("missing_name", "location name is required")
	}
	row := &types.Location{}
	mapping.LocationFromInput(in, projectID, row)
	return s.locations.Create(dbc, row)
}

func (s *productionService) UpdateLocation(ctx context.Context, id uuid.UUID, patch mapping.LocationPatch) (*types.Location, error) {
	dbc := dbctx.Of(ctx)
	row, err := s.locations.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apierr.NotFound("location_not_found", "location %s not found", id)
	}
	if err := s.inProject(dbc, row.ProjectID, "location_not_found", id); err != nil {
		return nil, err
	}
	if _, err := s.locations.UpdateFields(dbc, id, mapping.LocationPatchColumns(patch)); err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	return s.locations.GetByID(dbc, id)
}

func (s *productionService) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	dbc := dbctx.Of(ctx)
	row, err := s.locations.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if row == nil {
		return apierr.NotFound("location_not_found", "location %s not found", id)
	}
	if err := s.inProject(dbc, row.ProjectID, "location_not_found", id); err != nil {
		return err
	}
	_, err = s.locations.Delete(dbc, id)
	return err
}
