package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/storygrid-backend/internal/http/response"
	"github.com/yungbote/storygrid-backend/internal/mapping"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/services"
)

type ContentHandler struct {
	content services.ContentService
}

func NewContentHandler(content services.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

func writeResultView(res *services.WriteResult) gin.H {
	out := gin.H{"contentBlock": mapping.ContentBlockToView(res.Block)}
	if res.Task != nil {
		out["task"] = mapping.WriteTaskToView(res.Task)
	}
	return out
}

// GET /api/projects/:id/content-blocks?inStoryArc=&status=
func (h *ContentHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.content.List(dbctx.Of(c.Request.Context()), projectID, services.BlockFilter{
		InStoryArc: queryBool(c, "inStoryArc"),
		Status:     c.Query("status"),
	})
	if err != nil {
		response.RespondAPIError(c, err, "load_content_blocks_failed")
		return
	}
	response.RespondOK(c, gin.H{
		"contentBlocks":  mapping.ContentBlocksToView(list.Blocks),
		"sequenceHealth": list.Health,
	})
}

// POST /api/projects/:id/content-blocks
func (h *ContentHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in mapping.ContentBlockInput
	if !bindJSON(c, &in) {
		return
	}
	row, err := h.content.Create(c.Request.Context(), projectID, in)
	if err != nil {
		response.RespondAPIError(c, err, "create_content_block_failed")
		return
	}
	response.RespondCreated(c, gin.H{"contentBlock": mapping.ContentBlockToView(row)})
}

// GET /api/content-blocks/:id
func (h *ContentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	row, err := h.content.Get(dbctx.Of(c.Request.Context()), id)
	if err != nil {
		response.RespondAPIError(c, err, "load_content_block_failed")
		return
	}
	response.RespondOK(c, gin.H{"contentBlock": mapping.ContentBlockToView(row)})
}

// PATCH /api/content-blocks/:id
// The returned block is optimistic; the write is committed by the worker.
func (h *ContentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch mapping.ContentBlockPatch
	if !bindJSON(c, &patch) {
		return
	}
	res, err := h.content.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.RespondAPIError(c, err, "update_content_block_failed")
		return
	}
	response.RespondAccepted(c, writeResultView(res))
}

// POST /api/content-blocks/:id/story-arc
func (h *ContentHandler) SetStoryArc(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		InStoryArc bool `json:"inStoryArc"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.content.SetStoryArc(c.Request.Context(), id, req.InStoryArc)
	if err != nil {
		response.RespondAPIError(c, err, "set_story_arc_failed")
		return
	}
	response.RespondAccepted(c, writeResultView(res))
}

// DELETE /api/content-blocks/:id
func (h *ContentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.content.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err, "delete_content_block_failed")
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// GET /api/projects/:id/search?q=&limit=
func (h *ContentHandler) Search(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.content.Search(dbctx.Of(c.Request.Context()), projectID, c.Query("q"), queryInt(c, "limit", 20))
	if err != nil {
		response.RespondAPIError(c, err, "search_failed")
		return
	}
	response.RespondOK(c, gin.H{"contentBlocks": mapping.ContentBlocksToView(rows)})
}
