package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/platform/gcp"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
	"github.com/yungbote/storygrid-backend/internal/projection"
)

type Kind string

const (
	KindTimelineCSV Kind = "timeline-csv"
	KindTimelinePNG Kind = "timeline-png"
	KindReport      Kind = "veracity-report"
)

func (k Kind) ContentType() string {
	switch k {
	case KindTimelineCSV:
		return "text/csv; charset=utf-8"
	case KindTimelinePNG:
		return "image/png"
	case KindReport:
		return "text/markdown; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

func (k Kind) Ext() string {
	switch k {
	case KindTimelineCSV:
		return ".csv"
	case KindTimelinePNG:
		return ".png"
	case KindReport:
		return ".md"
	default:
		return ""
	}
}

// File is one rendered export. URL is set once the file has been archived.
type File struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
	Body []byte `json:"-"`
	URL  string `json:"url,omitempty"`
}

func (f *File) ContentType() string { return f.Kind.ContentType() }

type Exporter struct {
	log    *logger.Logger
	bucket gcp.ExportBucket
	render *Renderer
	now    func() time.Time
}

// New builds an Exporter. bucket may be nil, in which case Archive is a no-op.
func New(baseLog *logger.Logger, bucket gcp.ExportBucket) (*Exporter, error) {
	r, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return &Exporter{
		log:    baseLog.With("component", "Exporter"),
		bucket: bucket,
		render: r,
		now:    time.Now,
	}, nil
}

func (e *Exporter) ArchiveEnabled() bool { return e != nil && e.bucket != nil }

func (e *Exporter) TimelineCSV(name string, blocks []*types.ContentBlock, layout projection.Layout) (*File, error) {
	var buf bytes.Buffer
	if err := WriteTimelineCSV(&buf, blocks, layout); err != nil {
		return nil, err
	}
	return &File{Kind: KindTimelineCSV, Name: FileName(name, KindTimelineCSV), Body: buf.Bytes()}, nil
}

func (e *Exporter) TimelinePNG(name string, blocks []*types.ContentBlock, layout projection.Layout, opts PNGOptions) (*File, error) {
	body, err := e.render.TimelinePNG(blocks, layout, opts)
	if err != nil {
		return nil, err
	}
	return &File{Kind: KindTimelinePNG, Name: FileName(name, KindTimelinePNG), Body: body}, nil
}

// Timeline renders the CSV and PNG side by side.
func (e *Exporter) Timeline(ctx context.Context, name string, blocks []*types.ContentBlock, layout projection.Layout, opts PNGOptions) ([]*File, error) {
	out := make([]*File, 2)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := e.TimelineCSV(name, blocks, layout)
		out[0] = f
		return err
	})
	g.Go(func() error {
		f, err := e.TimelinePNG(name, blocks, layout, opts)
		out[1] = f
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Archive uploads body under exports/<kind>/ and returns its URL. It returns
// "" without error when no bucket is configured.
func (e *Exporter) Archive(ctx context.Context, kind Kind, name string, body []byte) (string, error) {
	if !e.ArchiveEnabled() {
		return "", nil
	}
	name = strings.TrimSuffix(name, kind.Ext())
	key := fmt.Sprintf("exports/%s/%s-%d%s", kind, slug(name), e.now().UTC().UnixNano(), kind.Ext())
	url, err := e.bucket.Upload(ctx, key, kind.ContentType(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", kind, err)
	}
	e.log.Info("Export archived", "kind", kind, "key", key, "bytes", len(body))
	return url, nil
}

// ArchiveAll uploads files concurrently and fills in their URLs.
func (e *Exporter) ArchiveAll(ctx context.Context, files ...*File) error {
	if !e.ArchiveEnabled() {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range files {
		f := f
		g.Go(func() error {
			url, err := e.Archive(gctx, f.Kind, f.Name, f.Body)
			if err != nil {
				return err
			}
			f.URL = url
			return nil
		})
	}
	return g.Wait()
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	s = nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "untitled"
	}
	if len(s) > 60 {
		s = strings.TrimRight(s[:60], "-")
	}
	return s
}

// FileName is the download name for an export of the named project.
func FileName(name string, kind Kind) string {
	base := slug(name)
	switch kind {
	case KindTimelineCSV, KindTimelinePNG:
		base += "-timeline"
	case KindReport:
		base += "-veracity-report"
	}
	return base + kind.Ext()
}
