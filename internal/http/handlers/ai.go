package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/storygrid-backend/internal/ai"
	"github.com/yungbote/storygrid-backend/internal/http/response"
	"github.com/yungbote/storygrid-backend/internal/mapping"
	"github.com/yungbote/storygrid-backend/internal/services"
)

type AIHandler struct {
	ai services.AIService
}

func NewAIHandler(aiService services.AIService) *AIHandler {
	return &AIHandler{ai: aiService}
}

// POST /api/ai/ask
func (h *AIHandler) Ask(c *gin.Context) {
	var req struct {
		Provider string       `json:"provider" binding:"required"`
		Prompt   string       `json:"prompt" binding:"required"`
		History  []ai.Message `json:"conversationHistory"`
	}
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.ai.Ask(c.Request.Context(), req.Provider, req.Prompt, req.History)
	if err != nil {
		response.RespondAPIError(c, err, "ai_request_failed")
		return
	}
	response.RespondOK(c, resp)
}

// POST /api/ai/ask-all
// Always 200; each result carries its own error.
func (h *AIHandler) AskAll(c *gin.Context) {
	var req struct {
		Prompt    string       `json:"prompt" binding:"required"`
		History   []ai.Message `json:"conversationHistory"`
		Providers []string     `json:"providers"`
	}
	if !bindJSON(c, &req) {
		return
	}
	results, err := h.ai.AskAll(c.Request.Context(), req.Prompt, req.History, req.Providers)
	if err != nil {
		response.RespondAPIError(c, err, "ai_request_failed")
		return
	}
	response.RespondOK(c, gin.H{"results": results})
}

// POST /api/ai/generate-script
func (h *AIHandler) GenerateScript(c *gin.Context) {
	var req struct {
		BlockID  uuid.UUID `json:"blockId" binding:"required"`
		Provider string    `json:"provider"`
		Tone     string    `json:"tone"`
		Save     bool      `json:"save"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.ai.GenerateScript(c.Request.Context(), services.GenerateScriptRequest{
		BlockID:  req.BlockID,
		Provider: req.Provider,
		Tone:     req.Tone,
		Save:     req.Save,
	})
	if err != nil {
		response.RespondAPIError(c, err, "generate_script_failed")
		return
	}
	out := gin.H{"draft": res.Draft}
	if res.Script != nil {
		out["scriptBlock"] = mapping.ScriptBlockToView(res.Script)
	}
	response.RespondOK(c, out)
}
