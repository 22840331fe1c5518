package observability

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

type collector interface {
	WritePrometheus(w io.Writer) error
}

func writeHeader(w io.Writer, name, help, kind string) error {
	_, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
	return err
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// series holds one float per label set and writes them in label order.
type series struct {
	name   string
	help   string
	kind   string
	labels []string
	mu     sync.RWMutex
	values map[string]float64
}

func newSeries(name, help, kind string, labels []string) *series {
	return &series{name: name, help: help, kind: kind, labels: labels, values: map[string]float64{}}
}

func (s *series) update(fn func(float64) float64, values ...string) {
	key := labelString(s.labels, values)
	s.mu.Lock()
	s.values[key] = fn(s.values[key])
	s.mu.Unlock()
}

func (s *series) get(values ...string) float64 {
	key := labelString(s.labels, values)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

func (s *series) WritePrometheus(w io.Writer) error {
	if err := writeHeader(w, s.name, s.help, s.kind); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s%s %s\n", s.name, k, fmtFloat(s.values[k])); err != nil {
			return err
		}
	}
	return nil
}

type CounterVec struct{ s *series }

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{s: newSeries(name, help, "counter", labels)}
}

func (c *CounterVec) Inc(values ...string) { c.Add(1, values...) }

func (c *CounterVec) Add(v float64, values ...string) {
	if c == nil || v < 0 {
		return
	}
	c.s.update(func(cur float64) float64 { return cur + v }, values...)
}

func (c *CounterVec) Value(values ...string) float64 { return c.s.get(values...) }

func (c *CounterVec) WritePrometheus(w io.Writer) error { return c.s.WritePrometheus(w) }

type GaugeVec struct{ s *series }

func NewGaugeVec(name, help string, labels []string) *GaugeVec {
	return &GaugeVec{s: newSeries(name, help, "gauge", labels)}
}

func (g *GaugeVec) Set(v float64, values ...string) {
	if g == nil {
		return
	}
	g.s.update(func(float64) float64 { return v }, values...)
}

func (g *GaugeVec) Value(values ...string) float64 { return g.s.get(values...) }

func (g *GaugeVec) WritePrometheus(w io.Writer) error { return g.s.WritePrometheus(w) }

// Gauge is an unlabelled GaugeVec.
type Gauge struct{ s *series }

func NewGauge(name, help string) *Gauge {
	return &Gauge{s: newSeries(name, help, "gauge", nil)}
}

func (g *Gauge) Set(v float64) { g.s.update(func(float64) float64 { return v }) }
func (g *Gauge) Inc()          { g.s.update(func(cur float64) float64 { return cur + 1 }) }
func (g *Gauge) Dec()          { g.s.update(func(cur float64) float64 { return cur - 1 }) }
func (g *Gauge) Value() float64 {
	return g.s.get()
}

func (g *Gauge) WritePrometheus(w io.Writer) error { return g.s.WritePrometheus(w) }

type HistogramVec struct {
	name    string
	help    string
	labels  []string
	buckets []float64
	mu      sync.Mutex
	values  map[string]*histogram
}

type histogram struct {
	counts []uint64 // cumulative per bucket, plus +Inf
	sum    float64
	total  uint64
}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	if len(buckets) == 0 {
		buckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
	}
	return &HistogramVec{name: name, help: help, labels: labels, buckets: buckets, values: map[string]*histogram{}}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	key := labelString(h.labels, values)
	h.mu.Lock()
	defer h.mu.Unlock()
	hist, ok := h.values[key]
	if !ok {
		hist = &histogram{counts: make([]uint64, len(h.buckets)+1)}
		h.values[key] = hist
	}
	hist.sum += v
	hist.total++
	for i, b := range h.buckets {
		if v <= b {
			hist.counts[i]++
		}
	}
	hist.counts[len(h.buckets)]++
}

// Count returns the number of observations for one label set.
func (h *HistogramVec) Count(values ...string) uint64 {
	key := labelString(h.labels, values)
	h.mu.Lock()
	defer h.mu.Unlock()
	if hist, ok := h.values[key]; ok {
		return hist.total
	}
	return 0
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if err := writeHeader(w, h.name, h.help, "histogram"); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	keys := make([]string, 0, len(h.values))
	for k := range h.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		hist := h.values[k]
		for i, b := range h.buckets {
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, fmtFloat(b)), hist.counts[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, "+Inf"), hist.counts[len(h.buckets)]); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s_sum%s %s\n%s_count%s %d\n", h.name, k, fmtFloat(hist.sum), h.name, k, hist.total); err != nil {
			return err
		}
	}
	return nil
}

func labelString(names, values []string) string {
	if len(names) == 0 {
		return ""
	}
	parts := make([]string, len(names))
	for i, name := range names {
		val := "unknown"
		if i < len(values) && values[i] != "" {
			val = values[i]
		}
		parts[i] = name + `="` + escapeLabel(val) + `"`
	}
	return "{" + strings.Join(parts, ",") + "}"
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escapeLabel(v string) string { return labelEscaper.Replace(v) }

func withLe(labels, le string) string {
	pair := `le="` + escapeLabel(le) + `"`
	if labels == "" {
		return "{" + pair + "}"
	}
	return strings.TrimSuffix(labels, "}") + "," + pair + "}"
}
