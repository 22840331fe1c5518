package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/http/response"
	"github.com/yungbote/storygrid-backend/internal/mapping"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/services"
)

type ProjectHandler struct {
	projects services.ProjectService
}

func NewProjectHandler(projects services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

func projectsToView(rows []*types.Project) []mapping.ProjectView {
	out := make([]mapping.ProjectView, 0, len(rows))
	for _, r := range rows {
		out = append(out, mapping.ProjectToView(r))
	}
	return out
}

// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	rows, err := h.projects.List(dbctx.Of(c.Request.Context()))
	if err != nil {
		response.RespondAPIError(c, err, "load_projects_failed")
		return
	}
	response.RespondOK(c, gin.H{"projects": projectsToView(rows)})
}

// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var in mapping.ProjectInput
	if !bindJSON(c, &in) {
		return
	}
	row, err := h.projects.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err, "create_project_failed")
		return
	}
	response.RespondCreated(c, gin.H{"project": mapping.ProjectToView(row)})
}

// GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	row, err := h.projects.Get(dbctx.Of(c.Request.Context()), id)
	if err != nil {
		response.RespondAPIError(c, err, "load_project_failed")
		return
	}
	response.RespondOK(c, gin.H{"project": mapping.ProjectToView(row)})
}

// PATCH /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch mapping.ProjectPatch
	if !bindJSON(c, &patch) {
		return
	}
	row, err := h.projects.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.RespondAPIError(c, err, "update_project_failed")
		return
	}
	response.RespondOK(c, gin.H{"project": mapping.ProjectToView(row)})
}

// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err, "delete_project_failed")
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// GET /api/project-templates
func (h *ProjectHandler) Templates(c *gin.Context) {
	rows, err := h.projects.Templates(dbctx.Of(c.Request.Context()))
	if err != nil {
		response.RespondAPIError(c, err, "load_templates_failed")
		return
	}
	out := make([]mapping.ProjectTemplateView, 0, len(rows))
	for _, r := range rows {
		out = append(out, mapping.ProjectTemplateToView(r))
	}
	response.RespondOK(c, gin.H{"templates": out})
}
