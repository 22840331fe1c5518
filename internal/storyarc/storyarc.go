package storyarc

import (
	"embed"
	"fmt"
	"math"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/storygrid-backend/internal/projection"
)

//go:embed structures.yaml
var structuresFS embed.FS

const DefaultStructure = "3-act"

// Act spans [Start, End] percent of the episode.
type Act struct {
	Name        string  `yaml:"name" json:"name"`
	Start       float64 `yaml:"start" json:"start"`
	End         float64 `yaml:"end" json:"end"`
	Color       string  `yaml:"color" json:"color"`
	Description string  `yaml:"description" json:"description"`
}

type Structure struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Acts  []Act  `yaml:"acts" json:"acts"`
}

type structuresDoc struct {
	Structures []Structure `yaml:"structures"`
}

var (
	loadOnce   sync.Once
	structures []Structure
	byID       map[string]Structure
	loadErr    error
)

func load() error {
	loadOnce.Do(func() {
		raw, err := structuresFS.ReadFile("structures.yaml")
		if err != nil {
			loadErr = fmt.Errorf("read structures: %w", err)
			return
		}
		var doc structuresDoc
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			loadErr = fmt.Errorf("parse structures: %w", err)
			return
		}
		structures = doc.Structures
		byID = make(map[string]Structure, len(structures))
		for _, s := range structures {
			byID[s.ID] = s
		}
	})
	return loadErr
}

// Structures lists every known structure in declaration order.
func Structures() ([]Structure, error) {
	if err := load(); err != nil {
		return nil, err
	}
	out := make([]Structure, len(structures))
	copy(out, structures)
	return out, nil
}

func Lookup(id string) (Structure, bool) {
	if err := load(); err != nil {
		return Structure{}, false
	}
	s, ok := byID[strings.TrimSpace(id)]
	return s, ok
}

// ActFor returns the index of the first act containing positionPct, or -1.
func ActFor(s Structure, positionPct float64) int {
	for i, a := range s.Acts {
		if positionPct >= a.Start && positionPct <= a.End {
			return i
		}
	}
	return -1
}

// Block is the part of a content block the metrics look at.
type Block struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Duration *float64 `json:"duration,omitempty"`
	Position float64  `json:"position"`
}

type Metrics struct {
	Pacing           float64            `json:"pacing"`
	Balance          float64            `json:"balance"`
	Engagement       float64            `json:"engagement"`
	ActDistribution  map[string]float64 `json:"actDistribution"`
	ContentTypeCount map[string]int     `json:"contentTypeCount"`
	TotalDuration    float64            `json:"totalDuration"`
}

const (
	basePacing     = 8.2
	baseBalance    = 7.5
	baseEngagement = 9.1
	scoreFloor     = 5.0
	// actDefaultDuration is what an undated block contributes to its act.
	actDefaultDuration = 3.0
	dominantTypeShare  = 0.6
)

// ComputeMetrics scores an arc. blocks should already carry their even-spaced position.
func ComputeMetrics(s Structure, blocks []Block) Metrics {
	m := Metrics{
		ActDistribution:  map[string]float64{},
		ContentTypeCount: map[string]int{},
	}
	if len(blocks) == 0 {
		return m
	}
	for _, b := range blocks {
		m.ContentTypeCount[b.Type]++
		if b.Duration != nil {
			m.TotalDuration += *b.Duration
		}
		if idx := ActFor(s, b.Position); idx >= 0 {
			d := actDefaultDuration
			if b.Duration != nil && *b.Duration > 0 {
				d = *b.Duration
			}
			m.ActDistribution[s.Acts[idx].Name] += d
		}
	}

	m.Pacing, m.Balance, m.Engagement = basePacing, baseBalance, baseEngagement
	if len(m.ActDistribution) < len(s.Acts) {
		m.Pacing = math.Max(scoreFloor, m.Pacing-1.5)
		m.Engagement = math.Max(scoreFloor, m.Engagement-1)
	}
	maxType := 0
	for _, n := range m.ContentTypeCount {
		if n > maxType {
			maxType = n
		}
	}
	if float64(maxType) > float64(len(blocks))*dominantTypeShare {
		m.Balance = math.Max(scoreFloor, m.Balance-2)
	}
	return m
}

// Position assigns the even-spaced arc position to the i-th of n sorted blocks.
func Position(i, n int) float64 {
	return float64(projection.EvenPercent(i, n))
}
