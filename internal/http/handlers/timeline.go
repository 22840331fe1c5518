package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/storygrid-backend/internal/export"
	"github.com/yungbote/storygrid-backend/internal/http/response"
	"github.com/yungbote/storygrid-backend/internal/mapping"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/services"
)

const (
	modePercent = "percent"
	modePixel   = "pixel"
)

type TimelineHandler struct {
	timeline services.TimelineService
	exports  services.ExportService
}

func NewTimelineHandler(timeline services.TimelineService, exports services.ExportService) *TimelineHandler {
	return &TimelineHandler{timeline: timeline, exports: exports}
}

func timelineOptions(c *gin.Context) services.TimelineOptions {
	return services.TimelineOptions{
		Scope: c.Query("scope"),
		Snap:  queryBool(c, "snap"),
		Scale: queryFloat(c, "scale"),
	}
}

// GET /api/projects/:id/timeline?mode=percent|pixel&snap=&scale=&scope=
func (h *TimelineHandler) Timeline(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	mode := strings.ToLower(strings.TrimSpace(c.DefaultQuery("mode", modePercent)))
	if mode != modePercent && mode != modePixel {
		response.RespondError(c, http.StatusBadRequest, "invalid_mode", fmt.Errorf("mode must be %s or %s", modePercent, modePixel))
		return
	}
	view, err := h.timeline.Timeline(dbctx.Of(c.Request.Context()), projectID, timelineOptions(c))
	if err != nil {
		response.RespondAPIError(c, err, "load_timeline_failed")
		return
	}
	response.RespondOK(c, gin.H{
		"mode":          mode,
		"scope":         view.Scope,
		"snap":          view.Snap,
		"layout":        view.Layout,
		"contentBlocks": mapping.ContentBlocksToView(view.Blocks),
	})
}

// GET /api/projects/:id/story-arc?structure=
func (h *TimelineHandler) StoryArc(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.timeline.StoryArc(dbctx.Of(c.Request.Context()), projectID, c.Query("structure"))
	if err != nil {
		response.RespondAPIError(c, err, "load_story_arc_failed")
		return
	}
	blocks := make([]gin.H, 0, len(view.Blocks))
	for _, b := range view.Blocks {
		blocks = append(blocks, gin.H{
			"contentBlock": mapping.ContentBlockToView(b.Block),
			"position":     b.Position,
			"act":          b.Act,
		})
	}
	response.RespondOK(c, gin.H{
		"structure": view.Structure,
		"blocks":    blocks,
		"metrics":   view.Metrics,
	})
}

// GET /api/story-arc/structures
func (h *TimelineHandler) Structures(c *gin.Context) {
	structures, err := h.timeline.Structures()
	if err != nil {
		response.RespondAPIError(c, err, "load_structures_failed")
		return
	}
	response.RespondOK(c, gin.H{"structures": structures})
}

func attachment(c *gin.Context, f *export.File) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	c.Data(http.StatusOK, f.Kind.ContentType(), f.Body)
}

// GET /api/projects/:id/export/timeline.csv
func (h *TimelineHandler) ExportCSV(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	f, err := h.exports.TimelineCSV(c.Request.Context(), projectID, timelineOptions(c))
	if err != nil {
		response.RespondAPIError(c, err, "export_failed")
		return
	}
	attachment(c, f)
}

// GET /api/projects/:id/export/timeline.png?maxWidth=
func (h *TimelineHandler) ExportPNG(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	f, err := h.exports.TimelinePNG(c.Request.Context(), projectID, timelineOptions(c), export.PNGOptions{
		MaxWidth: queryInt(c, "maxWidth", 0),
	})
	if err != nil {
		response.RespondAPIError(c, err, "export_failed")
		return
	}
	attachment(c, f)
}

// POST /api/projects/:id/export/archive
func (h *TimelineHandler) Archive(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !h.exports.ArchiveEnabled() {
		response.RespondError(c, http.StatusServiceUnavailable, "archive_not_configured", errors.New("export archive bucket is not configured"))
		return
	}
	files, err := h.exports.ArchiveTimeline(c.Request.Context(), projectID, timelineOptions(c))
	if err != nil {
		response.RespondAPIError(c, err, "archive_failed")
		return
	}
	response.RespondCreated(c, gin.H{"files": files})
}
