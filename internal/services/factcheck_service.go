package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/storygrid-backend/internal/platform/apierr"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
	"github.com/yungbote/storygrid-backend/internal/settings"
	"github.com/yungbote/storygrid-backend/internal/veracity"
)

// maxScanBytes bounds one scan request.
const maxScanBytes = 512 * 1024

type ScanResult struct {
	Enabled  bool               `json:"enabled"`
	Findings []veracity.Finding `json:"findings"`
	Summary  veracity.Summary   `json:"summary"`
}

type ReportRequest struct {
	Findings []veracity.Finding
	Script   string
	Options  veracity.ExportOptions
}

type FactCheckService interface {
	Scan(ctx context.Context, text string, includeTone bool) (*ScanResult, error)
	Report(ctx context.Context, req ReportRequest) ([]byte, error)
}

type factCheckService struct {
	log      *logger.Logger
	scanner  *veracity.Scanner
	settings settings.Service
	now      func() time.Time
}

func NewFactCheckService(baseLog *logger.Logger, settingsSvc settings.Service) (FactCheckService, error) {
	scanner, err := veracity.NewDefaultScanner()
	if err != nil {
		return nil, fmt.Errorf("load veracity rules: %w", err)
	}
	return &factCheckService{
		log:      baseLog.With("service", "FactCheckService"),
		scanner:  scanner,
		settings: settingsSvc,
		now:      time.Now,
	}, nil
}

// Scan honours the caller's global_fact_check_enabled preference; when it is
// off the result is empty and Enabled is false.
func (s *factCheckService) Scan(ctx context.Context, text string, includeTone bool) (*ScanResult, error) {
	owner, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if len(text) > maxScanBytes {
		return nil, apierr.BadRequest("text_too_large", "text exceeds %d bytes", maxScanBytes)
	}
	raw, err := s.settings.Get(ctx, owner, settings.KeyGlobalFactCheckEnabled)
	if err != nil {
		return nil, err
	}
	enabled := true
	if err := json.Unmarshal(raw, &enabled); err != nil {
		s.log.Warn("unreadable fact check setting; treating as enabled", "user_id", owner, "error", err)
		enabled = true
	}
	out := &ScanResult{Enabled: enabled, Findings: []veracity.Finding{}}
	if enabled {
		out.Findings = s.scanner.Scan(text, includeTone)
	}
	out.Summary = veracity.Summarize(out.Findings)
	return out, nil
}

// Report renders the Markdown report. An unset citation style falls back to
// the caller's citation_style preference.
func (s *factCheckService) Report(ctx context.Context, req ReportRequest) ([]byte, error) {
	owner, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range req.Findings {
		if f.Status != "" && !veracity.ValidStatus(f.Status) {
			return nil, apierr.BadRequest("invalid_status", "finding %s has unknown status %q", f.ID, f.Status)
		}
	}
	opts := req.Options
	if strings.TrimSpace(string(opts.CitationStyle)) == "" {
		raw, err := s.settings.Get(ctx, owner, settings.KeyCitationStyle)
		if err != nil {
			return nil, err
		}
		var style string
		_ = json.Unmarshal(raw, &style)
		opts.CitationStyle = veracity.ParseCitationStyle(style)
	}
	return veracity.RenderReport(veracity.ReportInput{
		Findings: req.Findings,
		Script:   req.Script,
		Options:  opts,
		Now:      s.now(),
	}), nil
}
