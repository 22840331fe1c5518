package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/storygrid-backend/internal/ai"
	"github.com/yungbote/storygrid-backend/internal/data/repos"
	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

type GenerateScriptRequest struct {
	BlockID  uuid.UUID
	Provider string
	Tone     string
	// Save stores the draft as a new script block for the content block.
	Save bool
}

type GeneratedScript struct {
	Draft  *ai.ScriptDraft
	Script *types.ScriptBlock
}

type AIService interface {
	Ask(ctx context.Context, provider, prompt string, history []ai.Message) (*ai.Response, error)
	AskAll(ctx context.Context, prompt string, history []ai.Message, providers []string) ([]ai.Result, error)
	GenerateScript(ctx context.Context, req GenerateScriptRequest) (*GeneratedScript, error)
}

type aiService struct {
	log      *logger.Logger
	gateway  *ai.Gateway
	projects repos.ProjectRepo
	blocks   repos.ContentBlockRepo
	scripts  repos.ScriptBlockRepo
}

func NewAIService(baseLog *logger.Logger, gateway *ai.Gateway, projects repos.ProjectRepo, blocks repos.ContentBlockRepo, scripts repos.ScriptBlockRepo) AIService {
	return &aiService{
		log:      baseLog.With("service", "AIService"),
		gateway:  gateway,
		projects: projects,
		blocks:   blocks,
		scripts:  scripts,
	}
}

func (s *aiService) Ask(ctx context.Context, provider, prompt string, history []ai.Message) (*ai.Response, error) {
	owner, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.gateway.Ask(ctx, owner, provider, prompt, history)
}

func (s *aiService) AskAll(ctx context.Context, prompt string, history []ai.Message, providers []string) ([]ai.Result, error) {
	owner, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.gateway.AskAll(ctx, owner, prompt, history, providers), nil
}

func (s *aiService) GenerateScript(ctx context.Context, req GenerateScriptRequest) (*GeneratedScript, error) {
	dbc := dbctx.Of(ctx)
	block, owner, err := ownedBlock(dbc, s.projects, s.blocks, req.BlockID)
	if err != nil {
		return nil, err
	}
	draft, err := s.gateway.GenerateScript(ctx, owner, req.Provider, block, req.Tone)
	if err != nil {
		return nil, err
	}
	out := &GeneratedScript{Draft: draft}
	if !req.Save {
		return out, nil
	}
	row, err := s.scripts.Create(dbc, &types.ScriptBlock{
		ProjectID:      block.ProjectID,
		ContentBlockID: block.ID,
		Title:          block.Title,
		Where:          draft.Where,
		Ears:           draft.Ears,
		Eyes:           draft.Eyes,
		Status:         types.StatusDraft,
		Version:        1,
	})
	if err != nil {
		return nil, fmt.Errorf("save generated script: %w", err)
	}
	out.Script = row
	s.log.Info("Generated script saved", "block_id", block.ID, "script_block_id", row.ID, "provider", draft.Provider)
	return out, nil
}
