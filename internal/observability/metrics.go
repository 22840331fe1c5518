package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/platform/envutil"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

// Metrics is a small Prometheus text-format registry. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	apiRequests  *CounterVec
	apiLatency   *HistogramVec
	apiInflight  *Gauge
	writeTasks   *CounterVec
	writeLatency *HistogramVec
	aiRequests   *CounterVec
	aiLatency    *HistogramVec
	queueDepth   *GaugeVec
	sseClients   *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool { return envutil.Bool("METRICS_ENABLED", false) }

// Current returns the process-wide registry, or nil when metrics are off.
func Current() *Metrics { return instance }

// Init builds the process-wide registry when METRICS_ENABLED is set.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
		log.Info("metrics enabled")
	})
	return instance
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("storygrid_api_requests_total", "API requests by method, route and status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"storygrid_api_request_duration_seconds",
			"API request latency by method, route and status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		),
		apiInflight: NewGauge("storygrid_api_inflight_requests", "In-flight API requests."),
		writeTasks:  NewCounterVec("storygrid_write_tasks_total", "Write task executions by op and outcome.", []string{"op", "outcome"}),
		writeLatency: NewHistogramVec(
			"storygrid_write_task_duration_seconds",
			"Write task handler latency by op.",
			[]string{"op"},
			[]float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		),
		aiRequests: NewCounterVec("storygrid_ai_requests_total", "AI provider calls by provider and outcome.", []string{"provider", "outcome"}),
		aiLatency: NewHistogramVec(
			"storygrid_ai_request_duration_seconds",
			"AI provider call latency by provider.",
			[]string{"provider"},
			[]float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		),
		queueDepth: NewGaugeVec("storygrid_write_task_queue", "Write tasks by status.", []string{"status"}),
		sseClients: NewGauge("storygrid_sse_clients", "Connected SSE clients."),
	}
}

func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_ = m.WritePrometheus(w)
	})
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []collector{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.writeTasks, m.writeLatency,
		m.aiRequests, m.aiLatency,
		m.queueDepth, m.sseClients,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

// ObserveWriteTask records one handler run; outcome is committed, failed or panic.
func (m *Metrics) ObserveWriteTask(op, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.writeTasks.Inc(op, outcome)
	m.writeLatency.Observe(dur.Seconds(), op)
}

func (m *Metrics) ObserveAI(provider string, err error, dur time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.aiRequests.Inc(provider, outcome)
	m.aiLatency.Observe(dur.Seconds(), provider)
}

func (m *Metrics) SSEClientsInc() {
	if m != nil {
		m.sseClients.Inc()
	}
}

func (m *Metrics) SSEClientsDec() {
	if m != nil {
		m.sseClients.Dec()
	}
}

// StartQueueCollector samples write task counts by status until ctx ends.
func (m *Metrics) StartQueueCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := envutil.Seconds("METRICS_SCRAPE_INTERVAL_SECONDS", 10*time.Second)
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.sampleQueue(ctx, db); err != nil {
					log.Warn("metrics: write task queue query failed", "error", err)
				}
			}
		}
	}()
}

func (m *Metrics) sampleQueue(ctx context.Context, db *gorm.DB) error {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := db.WithContext(ctx).
		Model(&types.WriteTask{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return err
	}
	for _, s := range []string{types.WriteTaskPending, types.WriteTaskRunning, types.WriteTaskCommitted, types.WriteTaskFailed} {
		m.queueDepth.Set(0, s)
	}
	for _, row := range rows {
		status := strings.TrimSpace(row.Status)
		if status == "" {
			status = "unknown"
		}
		m.queueDepth.Set(float64(row.Count), status)
	}
	return nil
}
