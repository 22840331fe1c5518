package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/storygrid-backend/internal/http/response"
	"github.com/yungbote/storygrid-backend/internal/platform/ctxutil"
	"github.com/yungbote/storygrid-backend/internal/settings"
)

type SettingsHandler struct {
	settings settings.Service
}

func NewSettingsHandler(svc settings.Service) *SettingsHandler {
	return &SettingsHandler{settings: svc}
}

// GET /api/settings
func (h *SettingsHandler) All(c *gin.Context) {
	values, err := h.settings.All(c.Request.Context(), ctxutil.UserID(c.Request.Context()))
	if err != nil {
		response.RespondAPIError(c, err, "load_settings_failed")
		return
	}
	response.RespondOK(c, gin.H{"settings": values})
}

// GET /api/settings/:key
func (h *SettingsHandler) Get(c *gin.Context) {
	key := c.Param("key")
	value, err := h.settings.Get(c.Request.Context(), ctxutil.UserID(c.Request.Context()), key)
	if err != nil {
		response.RespondAPIError(c, err, "load_setting_failed")
		return
	}
	response.RespondOK(c, gin.H{"key": key, "value": value})
}

// PUT /api/settings/:key  {"value": ...}
func (h *SettingsHandler) Set(c *gin.Context) {
	var req struct {
		Value json.RawMessage `json:"value"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if len(req.Value) == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("value is required"))
		return
	}
	key := c.Param("key")
	if err := h.settings.Set(c.Request.Context(), ctxutil.UserID(c.Request.Context()), key, req.Value); err != nil {
		response.RespondAPIError(c, err, "save_setting_failed")
		return
	}
	response.RespondOK(c, gin.H{"key": key, "value": req.Value})
}

// GET /api/settings/api-keys
func (h *SettingsHandler) APIKeys(c *gin.Context) {
	status, err := h.settings.APIKeyStatus(c.Request.Context(), ctxutil.UserID(c.Request.Context()))
	if err != nil {
		response.RespondAPIError(c, err, "load_api_keys_failed")
		return
	}
	response.RespondOK(c, gin.H{"apiKeys": status})
}

// PUT /api/settings/api-keys/:provider  {"key": "..."}
func (h *SettingsHandler) SetAPIKey(c *gin.Context) {
	var req struct {
		Key string `json:"key"`
	}
	if !bindJSON(c, &req) {
		return
	}
	status, err := h.settings.SetAPIKey(c.Request.Context(), ctxutil.UserID(c.Request.Context()), c.Param("provider"), req.Key)
	if err != nil {
		response.RespondAPIError(c, err, "save_api_key_failed")
		return
	}
	response.RespondOK(c, gin.H{"apiKey": status})
}

// DELETE /api/settings/api-keys/:provider
func (h *SettingsHandler) DeleteAPIKey(c *gin.Context) {
	if err := h.settings.DeleteAPIKey(c.Request.Context(), ctxutil.UserID(c.Request.Context()), c.Param("provider")); err != nil {
		response.RespondAPIError(c, err, "delete_api_key_failed")
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
