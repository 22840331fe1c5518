package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/storygrid-backend/internal/data/repos"
	"github.com/yungbote/storygrid-backend/internal/export"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

type ExportService interface {
	TimelineCSV(ctx context.Context, projectID uuid.UUID, opts TimelineOptions) (*export.File, error)
	TimelinePNG(ctx context.Context, projectID uuid.UUID, opts TimelineOptions, png export.PNGOptions) (*export.File, error)
	// ArchiveTimeline renders both timeline formats and uploads them.
	ArchiveTimeline(ctx context.Context, projectID uuid.UUID, opts TimelineOptions) ([]*export.File, error)
	Report(ctx context.Context, req ReportRequest, archive bool) (*export.File, error)
	ArchiveEnabled() bool
}

type exportService struct {
	log       *logger.Logger
	exporter  *export.Exporter
	projects  repos.ProjectRepo
	timeline  TimelineService
	factCheck FactCheckService
}

func NewExportService(
	baseLog *logger.Logger,
	exporter *export.Exporter,
	projects repos.ProjectRepo,
	timeline TimelineService,
	factCheck FactCheckService,
) ExportService {
	return &exportService{
		log:       baseLog.With("service", "ExportService"),
		exporter:  exporter,
		projects:  projects,
		timeline:  timeline,
		factCheck: factCheck,
	}
}

func (s *exportService) ArchiveEnabled() bool { return s.exporter.ArchiveEnabled() }

func (s *exportService) view(ctx context.Context, projectID uuid.UUID, opts TimelineOptions) (string, *TimelineView, error) {
	dbc := dbctx.Of(ctx)
	project, _, err := ownedProject(dbc, s.projects, projectID)
	if err != nil {
		return "", nil, err
	}
	view, err := s.timeline.Timeline(dbc, projectID, opts)
	if err != nil {
		return "", nil, err
	}
	return project.Title, view, nil
}

func (s *exportService) TimelineCSV(ctx context.Context, projectID uuid.UUID, opts TimelineOptions) (*export.File, error) {
	title, view, err := s.view(ctx, projectID, opts)
	if err != nil {
		return nil, err
	}
	return s.exporter.TimelineCSV(title, view.Blocks, view.Layout)
}

func (s *exportService) TimelinePNG(ctx context.Context, projectID uuid.UUID, opts TimelineOptions, png export.PNGOptions) (*export.File, error) {
	title, view, err := s.view(ctx, projectID, opts)
	if err != nil {
		return nil, err
	}
	return s.exporter.TimelinePNG(title, view.Blocks, view.Layout, png)
}

func (s *exportService) ArchiveTimeline(ctx context.Context, projectID uuid.UUID, opts TimelineOptions) ([]*export.File, error) {
	title, view, err := s.view(ctx, projectID, opts)
	if err != nil {
		return nil, err
	}
	files, err := s.exporter.Timeline(ctx, title, view.Blocks, view.Layout, export.PNGOptions{})
	if err != nil {
		return nil, err
	}
	if err := s.exporter.ArchiveAll(ctx, files...); err != nil {
		return nil, err
	}
	s.log.Info("Timeline exported", "project_id", projectID, "archived", s.exporter.ArchiveEnabled())
	return files, nil
}

// Report renders the veracity report and, when asked and configured, archives it.
func (s *exportService) Report(ctx context.Context, req ReportRequest, archive bool) (*export.File, error) {
	body, err := s.factCheck.Report(ctx, req)
	if err != nil {
		return nil, err
	}
	name := req.Options.EpisodeTitle
	if name == "" {
		name = "episode"
	}
	f := &export.File{Kind: export.KindReport, Name: export.FileName(name, export.KindReport), Body: body}
	if archive {
		if err := s.exporter.ArchiveAll(ctx, f); err != nil {
			return nil, err
		}
	}
	return f, nil
}
