package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/storygrid-backend/internal/http/response"
	"github.com/yungbote/storygrid-backend/internal/services"
	"github.com/yungbote/storygrid-backend/internal/veracity"
)

type FactCheckHandler struct {
	factCheck services.FactCheckService
	exports   services.ExportService
}

func NewFactCheckHandler(factCheck services.FactCheckService, exports services.ExportService) *FactCheckHandler {
	return &FactCheckHandler{factCheck: factCheck, exports: exports}
}

// POST /api/fact-check
func (h *FactCheckHandler) Scan(c *gin.Context) {
	var req struct {
		Text             string `json:"text"`
		IncludeToneCheck bool   `json:"includeToneCheck"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.factCheck.Scan(c.Request.Context(), req.Text, req.IncludeToneCheck)
	if err != nil {
		response.RespondAPIError(c, err, "fact_check_failed")
		return
	}
	response.RespondOK(c, res)
}

// POST /api/fact-check/report
// Answers with the Markdown document, or with the archived file when archive is set.
func (h *FactCheckHandler) Report(c *gin.Context) {
	var req struct {
		Findings []veracity.Finding     `json:"findings"`
		Script   string                 `json:"script"`
		Options  veracity.ExportOptions `json:"options"`
		Archive  bool                   `json:"archive"`
	}
	if !bindJSON(c, &req) {
		return
	}
	f, err := h.exports.Report(c.Request.Context(), services.ReportRequest{
		Findings: req.Findings,
		Script:   req.Script,
		Options:  req.Options,
	}, req.Archive && h.exports.ArchiveEnabled())
	if err != nil {
		response.RespondAPIError(c, err, "report_failed")
		return
	}
	if req.Archive {
		response.RespondOK(c, gin.H{"file": f, "archived": f.URL != ""})
		return
	}
	attachment(c, f)
}
