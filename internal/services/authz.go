package services

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/yungbote/storygrid-backend/internal/data/repos"
	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/platform/apierr"
	"github.com/yungbote/storygrid-backend/internal/platform/ctxutil"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
)

func requireUser(ctx context.Context) (uuid.UUID, error) {
	owner := ctxutil.UserID(ctx)
	if owner == uuid.Nil {
		return uuid.Nil, apierr.New(http.StatusUnauthorized, "unauthorized", apierr.ErrUnauthorized)
	}
	return owner, nil
}

// ownedProject loads a project visible to the caller. Projects of other users
// answer 404 so ids do not leak.
func ownedProject(dbc dbctx.Context, projects repos.ProjectRepo, projectID uuid.UUID) (*types.Project, uuid.UUID, error) {
	owner, err := requireUser(dbc.Ctx)
	if err != nil {
		return nil, uuid.Nil, err
	}
	row, err := projects.GetOwned(dbc, owner, projectID)
	if err != nil {
		return nil, owner, err
	}
	if row == nil {
		return nil, owner, apierr.NotFound("project_not_found", "project %s not found", projectID)
	}
	return row, owner, nil
}

func ownedBlock(dbc dbctx.Context, projects repos.ProjectRepo, blocks repos.ContentBlockRepo, blockID uuid.UUID) (*types.ContentBlock, uuid.UUID, error) {
	owner, err := requireUser(dbc.Ctx)
	if err != nil {
		return nil, uuid.Nil, err
	}
	row, err := blocks.GetByID(dbc, blockID)
	if err != nil {
		return nil, owner, err
	}
	if row == nil {
		return nil, owner, apierr.NotFound("content_block_not_found", "content block %s not found", blockID)
	}
	if _, _, err := ownedProject(dbc, projects, row.ProjectID); err != nil {
		return nil, owner, apierr.NotFound("content_block_not_found", "content block %s not found", blockID)
	}
	return row, owner, nil
}
