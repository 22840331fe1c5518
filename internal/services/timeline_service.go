package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/storygrid-backend/internal/cache"
	"github.com/yungbote/storygrid-backend/internal/data/repos"
	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/ordering"
	"github.com/yungbote/storygrid-backend/internal/platform/apierr"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
	"github.com/yungbote/storygrid-backend/internal/projection"
	"github.com/yungbote/storygrid-backend/internal/settings"
	"github.com/yungbote/storygrid-backend/internal/storyarc"
)

// TimelineOptions override the caller's timeline preferences for one read.
type TimelineOptions struct {
	Scope string
	Snap  *bool
	Scale *float64
}

type TimelineView struct {
	Scope  string
	Snap   bool
	Layout projection.Layout
	Blocks []*types.ContentBlock
}

type ArcBlock struct {
	Block    *types.ContentBlock
	Position float64
	Act      int
}

type StoryArcView struct {
	Structure storyarc.Structure
	Blocks    []ArcBlock
	Metrics   storyarc.Metrics
}

type TimelineService interface {
	Timeline(dbc dbctx.Context, projectID uuid.UUID, opts TimelineOptions) (*TimelineView, error)
	StoryArc(dbc dbctx.Context, projectID uuid.UUID, structureID string) (*StoryArcView, error)
	Structures() ([]storyarc.Structure, error)
}

type timelineService struct {
	log      *logger.Logger
	projects repos.ProjectRepo
	source   *blockSource
	settings settings.Service
}

func NewTimelineService(
	baseLog *logger.Logger,
	projects repos.ProjectRepo,
	blocks repos.ContentBlockRepo,
	listCache cache.BlockListCache,
	settingsSvc settings.Service,
) TimelineService {
	log := baseLog.With("service", "TimelineService")
	return &timelineService{
		log:      log,
		projects: projects,
		source:   newBlockSource(log, blocks, nil, listCache),
		settings: settingsSvc,
	}
}

// Timeline defaults to the story arc; the production timeline shows arc
// members only.
func (s *timelineService) Timeline(dbc dbctx.Context, projectID uuid.UUID, opts TimelineOptions) (*TimelineView, error) {
	_, owner, err := ownedProject(dbc, s.projects, projectID)
	if err != nil {
		return nil, err
	}
	scope := strings.ToLower(strings.TrimSpace(opts.Scope))
	if scope == "" {
		scope = ScopeStoryArc
	}
	blocks, err := s.blocks(dbc, projectID, scope)
	if err != nil {
		return nil, err
	}

	snap := true
	if opts.Snap != nil {
		snap = *opts.Snap
	} else {
		s.preference(dbc.Ctx, owner, settings.KeyTimelineSnapToGrid, &snap)
	}
	scale := projection.DefaultScaleMn
	if opts.Scale != nil && *opts.Scale > 0 {
		scale = *opts.Scale
	} else {
		s.preference(dbc.Ctx, owner, settings.KeyTimelineScaleMinutes, &scale)
	}

	sorted := ordering.Sort(blocks)
	return &TimelineView{
		Scope:  scope,
		Snap:   snap,
		Layout: projection.Project(sorted, projection.Options{TimeScale: scale, Snap: snap}),
		Blocks: sorted,
	}, nil
}

func (s *timelineService) StoryArc(dbc dbctx.Context, projectID uuid.UUID, structureID string) (*StoryArcView, error) {
	if _, _, err := ownedProject(dbc, s.projects, projectID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(structureID) == "" {
		structureID = storyarc.DefaultStructure
	}
	st, ok := storyarc.Lookup(structureID)
	if !ok {
		return nil, apierr.BadRequest("unknown_structure", "unknown story structure %q", structureID)
	}
	blocks, err := s.blocks(dbc, projectID, ScopeStoryArc)
	if err != nil {
		return nil, err
	}
	sorted := ordering.Sort(blocks)

	out := &StoryArcView{Structure: st, Blocks: make([]ArcBlock, 0, len(sorted))}
	metricBlocks := make([]storyarc.Block, 0, len(sorted))
	for i, b := range sorted {
		pos := storyarc.Position(i, len(sorted))
		out.Blocks = append(out.Blocks, ArcBlock{Block: b, Position: pos, Act: storyarc.ActFor(st, pos)})
		metricBlocks = append(metricBlocks, storyarc.Block{ID: b.ID.String(), Type: b.Type, Duration: b.Duration, Position: pos})
	}
	out.Metrics = storyarc.ComputeMetrics(st, metricBlocks)
	return out, nil
}

func (s *timelineService) Structures() ([]storyarc.Structure, error) {
	return storyarc.Structures()
}

func (s *timelineService) blocks(dbc dbctx.Context, projectID uuid.UUID, scope string) ([]*types.ContentBlock, error) {
	all, err := s.source.list(dbc, projectID)
	if err != nil {
		return nil, err
	}
	switch scope {
	case ScopeProject:
		return all, nil
	case ScopeStoryArc:
		in := true
		return filterBlocks(all, BlockFilter{InStoryArc: &in}), nil
	default:
		return nil, apierr.BadRequest("invalid_scope", "unknown timeline scope %q", scope)
	}
}

// preference decodes a setting into dst, leaving dst alone on any failure.
func (s *timelineService) preference(ctx context.Context, owner uuid.UUID, key string, dst any) {
	if s.settings == nil {
		return
	}
	raw, err := s.settings.Get(ctx, owner, key)
	if err != nil {
		s.log.Warn("read timeline preference failed", "key", key, "error", err)
		return
	}
	_ = json.Unmarshal(raw, dst)
}
