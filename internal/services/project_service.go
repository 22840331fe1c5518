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

type ProjectService interface {
	List(dbc dbctx.Context) ([]*types.Project, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Project, error)
	Templates(dbc dbctx.Context) ([]*types.ProjectTemplate, error)

	Create(ctx context.Context, in mapping.ProjectInput) (*types.Project, error)
	Update(ctx context.Context, id uuid.UUID, patch mapping.ProjectPatch) (*types.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type projectService struct {
	db        *gorm.DB
	log       *logger.Logger
	projects  repos.ProjectRepo
	templates repos.TemplateRepo
}

func NewProjectService(db *gorm.DB, baseLog *logger.Logger, projects repos.ProjectRepo, templates repos.TemplateRepo) ProjectService {
	return &projectService{
		db:        db,
		log:       baseLog.With("service", "ProjectService"),
		projects:  projects,
		templates: templates,
	}
}

func (s *projectService) List(dbc dbctx.Context) ([]*types.Project, error) {
	owner, err := requireUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	return s.projects.ListByOwner(dbc, owner)
}

func (s *projectService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Project, error) {
	row, _, err := ownedProject(dbc, s.projects, id)
	return row, err
}

func (s *projectService) Templates(dbc dbctx.Context) ([]*types.ProjectTemplate, error) {
	return s.templates.List(dbc)
}

// Create copies the template's default settings under the caller's own.
func (s *projectService) Create(ctx context.Context, in mapping.ProjectInput) (*types.Project, error) {
	owner, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apierr.BadRequest("missing_title", "project title is required")
	}

	var out *types.Project
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if strings.TrimSpace(in.TemplateID) != "" {
			tid, err := uuid.Parse(strings.TrimSpace(in.TemplateID))
			if err != nil {
				return apierr.BadRequest("invalid_template_id", "invalid template id %q", in.TemplateID)
			}
			tpl, err := s.templates.GetByID(dbc, tid)
			if err != nil {
				return fmt.Errorf("load template: %w", err)
			}
			if tpl == nil {
				return apierr.NotFound("template_not_found", "template %s not found", tid)
			}
			in.Settings = mapping.MergeSettings(mapping.JSONObject(tpl.DefaultSettings), in.Settings)
		}
		row := &types.Project{}
		mapping.ProjectFromInput(in, owner, row)
		created, err := s.projects.Create(dbc, row)
		if err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		out = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Project created", "project_id", out.ID, "user_id", owner)
	return out, nil
}

func (s *projectService) Update(ctx context.Context, id uuid.UUID, patch mapping.ProjectPatch) (*types.Project, error) {
	dbc := dbctx.Of(ctx)
	if _, _, err := ownedProject(dbc, s.projects, id); err != nil {
		return nil, err
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, apierr.BadRequest("missing_title", "project title cannot be empty")
	}
	cols := mapping.ProjectPatchColumns(patch)
	if len(cols) > 0 {
		if _, err := s.projects.UpdateFields(dbc, id, cols); err != nil {
			return nil, fmt.Errorf("update project: %w", err)
		}
	}
	return s.projects.GetByID(dbc, id)
}

func (s *projectService) Delete(ctx context.Context, id uuid.UUID) error {
	dbc := dbctx.Of(ctx)
	if _, _, err := ownedProject(dbc, s.projects, id); err != nil {
		return err
	}
	if _, err := s.projects.SoftDelete(dbc, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
