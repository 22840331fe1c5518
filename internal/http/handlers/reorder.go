package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/storygrid-backend/internal/http/response"
	"github.com/yungbote/storygrid-backend/internal/mapping"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/services"
)

type ReorderHandler struct {
	reorder services.ReorderService
}

func NewReorderHandler(reorder services.ReorderService) *ReorderHandler {
	return &ReorderHandler{reorder: reorder}
}

type reorderRequest struct {
	BlockID     uuid.UUID `json:"blockId" binding:"required"`
	TargetIndex int       `json:"targetIndex"`
	Scope       string    `json:"scope"`
}

type timelineDropRequest struct {
	BlockID        uuid.UUID `json:"blockId" binding:"required"`
	DropPercentage float64   `json:"dropPercentage"`
	Scope          string    `json:"scope"`
}

func reorderResultView(res *services.ReorderResult) gin.H {
	out := gin.H{
		"plan":          res.Plan,
		"contentBlocks": mapping.ContentBlocksToView(res.Blocks),
		"tasks":         mapping.WriteTasksToView(res.Tasks),
	}
	if res.BatchID != nil {
		out["batchId"] = res.BatchID.String()
	}
	return out
}

func batchView(b *services.BatchStatus) gin.H {
	return gin.H{"batch": b.Summary, "tasks": mapping.WriteTasksToView(b.Tasks)}
}

// POST /api/projects/:id/reorder
func (h *ReorderHandler) Reorder(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.reorder.Reorder(c.Request.Context(), projectID, services.ReorderRequest{
		BlockID:     req.BlockID,
		TargetIndex: req.TargetIndex,
		Scope:       req.Scope,
	})
	if err != nil {
		response.RespondAPIError(c, err, "reorder_failed")
		return
	}
	response.RespondAccepted(c, reorderResultView(res))
}

// POST /api/projects/:id/timeline-drop
func (h *ReorderHandler) TimelineDrop(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req timelineDropRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.reorder.TimelineDrop(c.Request.Context(), projectID, services.TimelineDropRequest{
		BlockID:        req.BlockID,
		DropPercentage: req.DropPercentage,
		Scope:          req.Scope,
	})
	if err != nil {
		response.RespondAPIError(c, err, "timeline_drop_failed")
		return
	}
	response.RespondAccepted(c, reorderResultView(res))
}

// POST /api/projects/:id/normalize-sequences
func (h *ReorderHandler) Normalize(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.reorder.Normalize(c.Request.Context(), projectID)
	if err != nil {
		response.RespondAPIError(c, err, "normalize_failed")
		return
	}
	response.RespondAccepted(c, reorderResultView(res))
}

// GET /api/write-batches/:id
func (h *ReorderHandler) Batch(c *gin.Context) {
	batchID, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.reorder.Batch(dbctx.Of(c.Request.Context()), batchID)
	if err != nil {
		response.RespondAPIError(c, err, "load_batch_failed")
		return
	}
	response.RespondOK(c, batchView(b))
}

// POST /api/write-batches/:id/retry
func (h *ReorderHandler) RetryBatch(c *gin.Context) {
	batchID, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.reorder.RetryBatch(c.Request.Context(), batchID)
	if err != nil {
		response.RespondAPIError(c, err, "retry_batch_failed")
		return
	}
	response.RespondAccepted(c, batchView(b))
}

// POST /api/write-tasks/:id/retry
func (h *ReorderHandler) RetryTask(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	task, err := h.reorder.RetryTask(c.Request.Context(), taskID)
	if err != nil {
		response.RespondAPIError(c, err, "retry_task_failed")
		return
	}
	response.RespondAccepted(c, gin.H{"task": mapping.WriteTaskToView(task)})
}

// GET /api/projects/:id/write-tasks?status=&limit=
func (h *ReorderHandler) ListTasks(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	tasks, err := h.reorder.ListTasks(dbctx.Of(c.Request.Context()), projectID, queryList(c, "status"), queryInt(c, "limit", 100))
	if err != nil {
		response.RespondAPIError(c, err, "load_write_tasks_failed")
		return
	}
	response.RespondOK(c, gin.H{"tasks": mapping.WriteTasksToView(tasks)})
}
