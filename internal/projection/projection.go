package projection

import (
	"fmt"
	"math"

	"github.com/yungbote/storygrid-backend/internal/ordering"
)

const (
	// Padding is the fixed pixel gap between adjacent boxes.
	Padding        = 8.0
	MinBoxWidth    = 100.0
	MinTimelineW   = 1200.0
	MinScale       = 10.0
	MinWidthPct    = 8.0
	SnapPPM        = 15.0
	DefaultPPM     = 12.0
	DefaultScaleMn = 30.0
)

// EvenPercent spaces count items uniformly: round((index+1)/(count+1)*100).
func EvenPercent(index, count int) int {
	if count < 1 {
		return 0
	}
	if index < 0 {
		index = 0
	}
	if index > count-1 {
		index = count - 1
	}
	return int(math.Floor(float64(index+1)/float64(count+1)*100 + 0.5))
}

// WidthPercent is the duration-proportional width of one item.
func WidthPercent(duration, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return duration / total * 100
}

func TotalDuration[T ordering.Timed](items []T) float64 {
	total := 0.0
	for _, it := range items {
		total += ordering.EffectiveDuration(it.OrderDuration())
	}
	return total
}

// EffectiveScale is the minutes spanned by the scaled timeline.
func EffectiveScale(timeScale, totalDuration float64) float64 {
	return math.Max(math.Max(timeScale, totalDuration), MinScale)
}

func ScaledWidthPercent(duration, scale float64) float64 {
	if scale <= 0 {
		return MinWidthPct
	}
	return math.Max(duration/scale*100, MinWidthPct)
}

type Marker struct {
	Minute  int     `json:"minute"`
	Percent float64 `json:"percent"`
	Label   string  `json:"label"`
}

// MarkerInterval returns the minute spacing of time markers for scale.
func MarkerInterval(scale float64) int {
	switch {
	case scale <= 30:
		return 5
	case scale <= 60:
		return 10
	default:
		return 15
	}
}

func TimeMarkers(scale float64) []Marker {
	if scale <= 0 {
		return nil
	}
	interval := MarkerInterval(scale)
	count := int(math.Ceil(scale/float64(interval))) + 1
	out := make([]Marker, 0, count)
	for i := 0; i < count; i++ {
		m := i * interval
		out = append(out, Marker{
			Minute:  m,
			Percent: float64(m) / scale * 100,
			Label:   fmt.Sprintf("%dm", m),
		})
	}
	return out
}

func PixelsPerMinute(snap bool) float64 {
	if snap {
		return SnapPPM
	}
	return DefaultPPM
}

type Box struct {
	ID    string  `json:"id"`
	Start float64 `json:"start"`
	Width float64 `json:"width"`
}

// PixelLayout places items left to right. Items must already be sorted.
func PixelLayout[T ordering.Timed](items []T, ppm float64) []Box {
	out := make([]Box, 0, len(items))
	elapsed := 0.0
	for i, it := range items {
		d := ordering.EffectiveDuration(it.OrderDuration())
		out = append(out, Box{
			ID:    it.OrderKey(),
			Start: elapsed*ppm + float64(i)*Padding,
			Width: math.Max(d*ppm-Padding, MinBoxWidth),
		})
		elapsed += d
	}
	return out
}

func TimelineWidth(total float64, count int, ppm float64) float64 {
	return math.Max(total*ppm+float64(count)*Padding, MinTimelineW)
}

type Options struct {
	// TimeScale in minutes; 0 uses DefaultScaleMn.
	TimeScale float64
	Snap      bool
}

type Placement struct {
	ID                 string  `json:"id"`
	Index              int     `json:"index"`
	Sequence           int     `json:"sequence"`
	Duration           float64 `json:"duration"`
	StartMinute        float64 `json:"startMinute"`
	PositionPercent    int     `json:"positionPercent"`
	WidthPercent       float64 `json:"widthPercent"`
	ScaledWidthPercent float64 `json:"scaledWidthPercent"`
	PixelStart         float64 `json:"pixelStart"`
	PixelWidth         float64 `json:"pixelWidth"`
}

type Layout struct {
	TotalDuration   float64     `json:"totalDuration"`
	EffectiveScale  float64     `json:"effectiveScale"`
	PixelsPerMinute float64     `json:"pixelsPerMinute"`
	TimelineWidth   float64     `json:"timelineWidth"`
	Markers         []Marker    `json:"markers"`
	Items           []Placement `json:"items"`
}

// Project builds the presentational layout for a collection. The result is
// derived on every read and never stored.
func Project[T ordering.Timed](items []T, opts Options) Layout {
	sorted := ordering.Sort(items)
	total := TotalDuration(sorted)
	scaleIn := opts.TimeScale
	if scaleIn <= 0 {
		scaleIn = DefaultScaleMn
	}
	scale := EffectiveScale(scaleIn, total)
	ppm := PixelsPerMinute(opts.Snap)
	boxes := PixelLayout(sorted, ppm)

	out := Layout{
		TotalDuration:   total,
		EffectiveScale:  scale,
		PixelsPerMinute: ppm,
		TimelineWidth:   TimelineWidth(total, len(sorted), ppm),
		Markers:         TimeMarkers(scale),
		Items:           make([]Placement, 0, len(sorted)),
	}
	elapsed := 0.0
	for i, it := range sorted {
		d := ordering.EffectiveDuration(it.OrderDuration())
		out.Items = append(out.Items, Placement{
			ID:                 it.OrderKey(),
			Index:              i,
			Sequence:           ordering.EffectiveSequence(it.OrderSequence()),
			Duration:           d,
			StartMinute:        elapsed,
			PositionPercent:    EvenPercent(i, len(sorted)),
			WidthPercent:       WidthPercent(d, total),
			ScaledWidthPercent: ScaledWidthPercent(d, scale),
			PixelStart:         boxes[i].Start,
			PixelWidth:         boxes[i].Width,
		})
		elapsed += d
	}
	return out
}
