package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/storygrid-backend/internal/http/response"
	"github.com/yungbote/storygrid-backend/internal/mapping"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/services"
)

type ProductionHandler struct {
	production services.ProductionService
}

func NewProductionHandler(production services.ProductionService) *ProductionHandler {
	return &ProductionHandler{production: production}
}

func views[T any, V any](rows []T, fn func(T) V) []V {
	out := make([]V, 0, len(rows))
	for _, r := range rows {
		out = append(out, fn(r))
	}
	return out
}

func resolvedItemView(r *services.ResolvedTimelineItem) gin.H {
	out := gin.H{
		"timelineItem": mapping.TimelineItemToView(r.Item),
		"crew":         views(r.Crew, mapping.CrewMemberToView),
		"equipment":    views(r.Equipment, mapping.EquipmentToView),
	}
	if r.Block != nil {
		out["contentBlock"] = mapping.ContentBlockToView(r.Block)
	}
	if r.Location != nil {
		out["location"] = mapping.LocationToView(r.Location)
	}
	return out
}

// deleteByID runs del for the :id path param.
func deleteByID(c *gin.Context, del func(id uuid.UUID) error, code string) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := del(id); err != nil {
		response.RespondAPIError(c, err, code)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// Script blocks

// GET /api/projects/:id/script-blocks
func (h *ProductionHandler) ListScriptBlocks(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.production.ListScriptBlocks(dbctx.Of(c.Request.Context()), projectID)
	if err != nil {
		response.RespondAPIError(c, err, "load_script_blocks_failed")
		return
	}
	response.RespondOK(c, gin.H{"scriptBlocks": views(rows, mapping.ScriptBlockToView)})
}

// POST /api/projects/:id/script-blocks
func (h *ProductionHandler) CreateScriptBlock(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in mapping.ScriptBlockInput
	if !bindJSON(c, &in) {
		return
	}
	row, err := h.production.CreateScriptBlock(c.Request.Context(), projectID, in)
	if err != nil {
		response.RespondAPIError(c, err, "create_script_block_failed")
		return
	}
	response.RespondCreated(c, gin.H{"scriptBlock": mapping.ScriptBlockToView(row)})
}

// PATCH /api/script-blocks/:id
func (h *ProductionHandler) UpdateScriptBlock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch mapping.ScriptBlockPatch
	if !bindJSON(c, &patch) {
		return
	}
	row, err := h.production.UpdateScriptBlock(c.Request.Context(), id, patch)
	if err != nil {
		response.RespondAPIError(c, err, "update_script_block_failed")
		return
	}
	response.RespondOK(c, gin.H{"scriptBlock": mapping.ScriptBlockToView(row)})
}

// DELETE /api/script-blocks/:id
func (h *ProductionHandler) DeleteScriptBlock(c *gin.Context) {
	deleteByID(c, func(id uuid.UUID) error { return h.production.DeleteScriptBlock(c.Request.Context(), id) }, "delete_script_block_failed")
}

// Timeline items

// GET /api/projects/:id/timeline-items
func (h *ProductionHandler) ListTimelineItems(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.production.ListTimelineItems(dbctx.Of(c.Request.Context()), projectID)
	if err != nil {
		response.RespondAPIError(c, err, "load_timeline_items_failed")
		return
	}
	response.RespondOK(c, gin.H{"timelineItems": views(rows, resolvedItemView)})
}

// GET /api/timeline-items/:id
func (h *ProductionHandler) GetTimelineItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	row, err := h.production.GetTimelineItem(dbctx.Of(c.Request.Context()), id)
	if err != nil {
		response.RespondAPIError(c, err, "load_timeline_item_failed")
		return
	}
	response.RespondOK(c, resolvedItemView(row))
}

// POST /api/projects/:id/timeline-items
func (h *ProductionHandler) CreateTimelineItem(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in mapping.TimelineItemInput
	if !bindJSON(c, &in) {
		return
	}
	row, err := h.production.CreateTimelineItem(c.Request.Context(), projectID, in)
	if err != nil {
		response.RespondAPIError(c, err, "create_timeline_item_failed")
		return
	}
	response.RespondCreated(c, gin.H{"timelineItem": mapping.TimelineItemToView(row)})
}

// PATCH /api/timeline-items/:id
func (h *ProductionHandler) UpdateTimelineItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch mapping.TimelineItemPatch
	if !bindJSON(c, &patch) {
		return
	}
	row, err := h.production.UpdateTimelineItem(c.Request.Context(), id, patch)
	if err != nil {
		response.RespondAPIError(c, err, "update_timeline_item_failed")
		return
	}
	response.RespondOK(c, gin.H{"timelineItem": mapping.TimelineItemToView(row)})
}

// DELETE /api/timeline-items/:id
func (h *ProductionHandler) DeleteTimelineItem(c *gin.Context) {
	deleteByID(c, func(id uuid.UUID) error { return h.production.DeleteTimelineItem(c.Request.Context(), id) }, "delete_timeline_item_failed")
}

// Crew

// GET /api/projects/:id/crew
func (h *ProductionHandler) ListCrew(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.production.ListCrew(dbctx.Of(c.Request.Context()), projectID)
	if err != nil {
		response.RespondAPIError(c, err, "load_crew_failed")
		return
	}
	response.RespondOK(c, gin.H{"crew": views(rows, mapping.CrewMemberToView)})
}

// POST /api/projects/:id/crew
func (h *ProductionHandler) CreateCrew(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in mapping.CrewMemberInput
	if !bindJSON(c, &in) {
		return
	}
	row, err := h.production.CreateCrew(c.Request.Context(), projectID, in)
	if err != nil {
		response.RespondAPIError(c, err, "create_crew_member_failed")
		return
	}
	response.RespondCreated(c, gin.H{"crewMember": mapping.CrewMemberToView(row)})
}

// PATCH /api/crew/:id
func (h *ProductionHandler) UpdateCrew(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch mapping.CrewMemberPatch
	if !bindJSON(c, &patch) {
		return
	}
	row, err := h.production.UpdateCrew(c.Request.Context(), id, patch)
	if err != nil {
		response.RespondAPIError(c, err, "update_crew_member_failed")
		return
	}
	response.RespondOK(c, gin.H{"crewMember": mapping.CrewMemberToView(row)})
}

// DELETE /api/crew/:id
func (h *ProductionHandler) DeleteCrew(c *gin.Context) {
	deleteByID(c, func(id uuid.UUID) error { return h.production.DeleteCrew(c.Request.Context(), id) }, "delete_crew_member_failed")
}

// Equipment

// GET /api/projects/:id/equipment
func (h *ProductionHandler) ListEquipment(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.production.ListEquipment(dbctx.Of(c.Request.Context()), projectID)
	if err != nil {
		response.RespondAPIError(c, err, "load_equipment_failed")
		return
	}
	response.RespondOK(c, gin.H{"equipment": views(rows, mapping.EquipmentToView)})
}

// POST /api/projects/:id/equipment
func (h *ProductionHandler) CreateEquipment(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in mapping.EquipmentInput
	if !bindJSON(c, &in) {
		return
	}
	row, err := h.production.CreateEquipment(c.Request.Context(), projectID, in)
	if err != nil {
		response.RespondAPIError(c, err, "create_equipment_failed")
		return
	}
	response.RespondCreated(c, gin.H{"equipment": mapping.EquipmentToView(row)})
}

// PATCH /api/equipment/:id
func (h *ProductionHandler) UpdateEquipment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch mapping.EquipmentPatch
	if !bindJSON(c, &patch) {
		return
	}
	row, err := h.production.UpdateEquipment(c.Request.Context(), id, patch)
	if err != nil {
		response.RespondAPIError(c, err, "update_equipment_failed")
		return
	}
	response.RespondOK(c, gin.H{"equipment": mapping.EquipmentToView(row)})
}

// POST /api/projects/:id/equipment/packed
func (h *ProductionHandler) SetPacked(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		IDs    []uuid.UUID `json:"ids"`
		Packed bool        `json:"packed"`
	}
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.production.SetPacked(c.Request.Context(), projectID, req.IDs, req.Packed)
	if err != nil {
		response.RespondAPIError(c, err, "set_packed_failed")
		return
	}
	response.RespondOK(c, gin.H{"updated": n})
}

// DELETE /api/equipment/:id
func (h *ProductionHandler) DeleteEquipment(c *gin.Context) {
	deleteByID(c, func(id uuid.UUID) error { return h.production.DeleteEquipment(c.Request.Context(), id) }, "delete_equipment_failed")
}

// Locations

// GET /api/projects/:id/locations
func (h *ProductionHandler) ListLocations(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.production.ListLocations(dbctx.Of(c.Request.Context()), projectID)
	if err != nil {
		response.RespondAPIError(c, err, "load_locations_failed")
		return
	}
	response.RespondOK(c, gin.H{"locations": views(rows, mapping.LocationToView)})
}

// POST /api/projects/:id/locations
func (h *ProductionHandler) CreateLocation(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in mapping.LocationInput
	if !bindJSON(c, &in) {
		return
	}
	row, err := h.production.CreateLocation(c.Request.Context(), projectID, in)
	if err != nil {
		response.RespondAPIError(c, err, "create_location_failed")
		return
	}
	response.RespondCreated(c, gin.H{"location": mapping.LocationToView(row)})
}

// PATCH /api/locations/:id
func (h *ProductionHandler) UpdateLocation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch mapping.LocationPatch
	if !bindJSON(c, &patch) {
		return
	}
	row, err := h.production.UpdateLocation(c.Request.Context(), id, patch)
	if err != nil {
		response.RespondAPIError(c, err, "update_location_failed")
		return
	}
	response.RespondOK(c, gin.H{"location": mapping.LocationToView(row)})
}

// DELETE /api/locations/:id
func (h *ProductionHandler) DeleteLocation(c *gin.Context) {
	deleteByID(c, func(id uuid.UUID) error { return h.production.DeleteLocation(c.Request.Context(), id) }, "delete_location_failed")
}
