package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/storygrid-backend/internal/data/db"
	"github.com/yungbote/storygrid-backend/internal/data/repos"
	"github.com/yungbote/storygrid-backend/internal/data/repos/testutil"
	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/export"
	storyhttp "github.com/yungbote/storygrid-backend/internal/http"
	httpH "github.com/yungbote/storygrid-backend/internal/http/handlers"
	httpMW "github.com/yungbote/storygrid-backend/internal/http/middleware"
	"github.com/yungbote/storygrid-backend/internal/jobs/persist"
	"github.com/yungbote/storygrid-backend/internal/jobs/runtime"
	"github.com/yungbote/storygrid-backend/internal/jobs/worker"
	"github.com/yungbote/storygrid-backend/internal/platform/secrets"
	"github.com/yungbote/storygrid-backend/internal/search"
	"github.com/yungbote/storygrid-backend/internal/services"
	"github.com/yungbote/storygrid-backend/internal/settings"
)

type nopNotifier struct{}

func (nopNotifier) TaskCommitted(context.Context, *types.WriteTask)                     {}
func (nopNotifier) TaskFailed(context.Context, *types.WriteTask, string)                {}
func (nopNotifier) BatchSettled(context.Context, uuid.UUID, services.BatchSummary)      {}
func (nopNotifier) ContentBlockUpdated(context.Context, uuid.UUID, *types.ContentBlock) {}

type apiFixture struct {
	router *gin.Engine
	worker *worker.Worker
	user   uuid.UUID
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	if err := db.SeedTemplates(context.Background(), gdb); err != nil {
		t.Fatalf("SeedTemplates: %v", err)
	}
	projects := repos.NewProjectRepo(gdb, log)
	blocks := repos.NewContentBlockRepo(gdb, log)
	tasks := repos.NewWriteTaskRepo(gdb, log)
	sealer, err := secrets.NewSealer("router test")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	settingsSvc := settings.NewService(gdb, log, repos.NewUserSettingRepo(gdb, log), repos.NewAPIKeyRepo(gdb, log), sealer)
	factCheck, err := services.NewFactCheckService(log, settingsSvc)
	if err != nil {
		t.Fatalf("NewFactCheckService: %v", err)
	}
	exporter, err := export.New(log, nil)
	if err != nil {
		t.Fatalf("export.New: %v", err)
	}
	reg := runtime.NewRegistry()
	if err := persist.Register(reg, persist.Deps{Log: log, Blocks: blocks, Index: search.NewNoop()}); err != nil {
		t.Fatalf("persist.Register: %v", err)
	}

	projectSvc := services.NewProjectService(gdb, log, projects, repos.NewTemplateRepo(gdb, log))
	timelineSvc := services.NewTimelineService(log, projects, blocks, nil, settingsSvc)
	exportSvc := services.NewExportService(log, exporter, projects, timelineSvc, factCheck)

	router := storyhttp.NewRouter(storyhttp.RouterConfig{
		Log:              log,
		AuthMiddleware:   httpMW.NewAuthMiddleware(log, nil, true),
		HealthHandler:    httpH.NewHealthHandler(),
		ProjectHandler:   httpH.NewProjectHandler(projectSvc),
		ContentHandler:   httpH.NewContentHandler(services.NewContentService(gdb, log, projects, blocks, tasks, nil, nil)),
		ReorderHandler:   httpH.NewReorderHandler(services.NewReorderService(gdb, log, projects, blocks, tasks, nil)),
		TimelineHandler:  httpH.NewTimelineHandler(timelineSvc, exportSvc),
		FactCheckHandler: httpH.NewFactCheckHandler(factCheck, exportSvc),
		SettingsHandler:  httpH.NewSettingsHandler(settingsSvc),
	})
	return &apiFixture{
		router: router,
		worker: worker.NewWorker(gdb, log, tasks, reg, nopNotifier{}, worker.Config{MaxAttempts: 3, RetryDelay: time.Hour}),
		user:   uuid.New(),
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return f.doAs(t, f.user, method, path, body)
}

func (f *apiFixture) doAs(t *testing.T, user uuid.UUID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", user.String())
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
}

type blockJSON struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Sequence int    `json:"sequence"`
}

func (f *apiFixture) createProject(t *testing.T) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/projects", map[string]any{"title": "It's a Jungle"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project: want=201 got=%d %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Project struct {
			ID string `json:"id"`
		} `json:"project"`
	}
	decode(t, rec, &out)
	return out.Project.ID
}

func (f *apiFixture) createBlocks(t *testing.T, projectID string, titles ...string) []blockJSON {
	t.Helper()
	var out []blockJSON
	for _, title := range titles {
		rec := f.do(t, http.MethodPost, "/api/projects/"+projectID+"/content-blocks", map[string]any{"title": title, "type": "interview", "duration": 10})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create block: want=201 got=%d %s", rec.Code, rec.Body.String())
		}
		var res struct {
			ContentBlock blockJSON `json:"contentBlock"`
		}
		decode(t, rec, &res)
		out = append(out, res.ContentBlock)
	}
	return out
}

func TestHealthAndStatus(t *testing.T) {
	f := newAPI(t)
	rec := f.do(t, http.MethodGet, "/healthcheck", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: got=%d %q", rec.Code, rec.Body.String())
	}
	rec = f.do(t, http.MethodGet, "/api/status", nil)
	var status map[string]string
	decode(t, rec, &status)
	if status["status"] != "operational" || status["service"] != "Story Grid Pro" || status["timestamp"] == "" {
		t.Fatalf("status: got=%v", status)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing X-Request-Id header")
	}
}

func TestReorderOverHTTP(t *testing.T) {
	f := newAPI(t)
	projectID := f.createProject(t)
	blocks := f.createBlocks(t, projectID, "A", "B", "C")

	rec := f.do(t, http.MethodPost, "/api/projects/"+projectID+"/reorder", map[string]any{
		"blockId":     blocks[2].ID,
		"targetIndex": 0,
		"scope":       "project",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("reorder: want=202 got=%d %s", rec.Code, rec.Body.String())
	}
	var res struct {
		BatchID string `json:"batchId"`
		Plan    struct {
			Order   []string `json:"order"`
			Changes []struct {
				ID string `json:"id"`
			} `json:"changes"`
		} `json:"plan"`
		Tasks []struct {
			Status string `json:"status"`
		} `json:"tasks"`
	}
	decode(t, rec, &res)
	wantOrder := []string{blocks[2].ID, blocks[0].ID, blocks[1].ID}
	if strings.Join(res.Plan.Order, ",") != strings.Join(wantOrder, ",") {
		t.Fatalf("order: want=%v got=%v", wantOrder, res.Plan.Order)
	}
	if len(res.Tasks) != 3 || res.Tasks[0].Status != types.WriteTaskPending {
		t.Fatalf("tasks: want 3 pending got=%+v", res.Tasks)
	}

	if n, err := f.worker.Drain(context.Background()); err != nil || n != 3 {
		t.Fatalf("Drain: want=3 got=%d err=%v", n, err)
	}

	rec = f.do(t, http.MethodGet, "/api/write-batches/"+res.BatchID, nil)
	var batch struct {
		Batch services.BatchSummary `json:"batch"`
	}
	decode(t, rec, &batch)
	if batch.Batch.Committed != 3 || batch.Batch.Pending != 0 {
		t.Fatalf("batch: got=%+v", batch.Batch)
	}

	rec = f.do(t, http.MethodGet, "/api/projects/"+projectID+"/content-blocks", nil)
	var list struct {
		ContentBlocks  []blockJSON             `json:"contentBlocks"`
		SequenceHealth services.SequenceHealth `json:"sequenceHealth"`
	}
	decode(t, rec, &list)
	got := make([]string, 0, len(list.ContentBlocks))
	for _, b := range list.ContentBlocks {
		got = append(got, b.Title)
	}
	if strings.Join(got, ",") != "C,A,B" {
		t.Fatalf("persisted order: want=C,A,B got=%v", got)
	}
	if len(list.SequenceHealth.Duplicates) != 0 || list.SequenceHealth.Gaps {
		t.Fatalf("health: got=%+v", list.SequenceHealth)
	}
}

func TestProjectIsolationAndValidation(t *testing.T) {
	f := newAPI(t)
	projectID := f.createProject(t)

	if rec := f.doAs(t, uuid.New(), http.MethodGet, "/api/projects/"+projectID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign project: want=404 got=%d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/projects/not-a-uuid", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: want=400 got=%d", rec.Code)
	}
	if rec := f.do(t, http.MethodPost, "/api/projects/"+projectID+"/reorder", map[string]any{"targetIndex": 1}); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing blockId: want=400 got=%d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/projects/"+projectID+"/timeline?mode=bogus", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad mode: want=400 got=%d", rec.Code)
	}
	if rec := f.do(t, http.MethodPut, "/api/settings/not_a_key", map[string]any{"value": true}); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown setting: want=400 got=%d", rec.Code)
	}
}

func TestTimelineAndCSVExport(t *testing.T) {
	f := newAPI(t)
	projectID := f.createProject(t)
	f.createBlocks(t, projectID, "Opening", "Closing")

	rec := f.do(t, http.MethodGet, "/api/projects/"+projectID+"/timeline?mode=pixel&scope=project&snap=false", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("timeline: want=200 got=%d %s", rec.Code, rec.Body.String())
	}
	var tl struct {
		Mode   string `json:"mode"`
		Layout struct {
			TotalDuration   float64 `json:"totalDuration"`
			PixelsPerMinute float64 `json:"pixelsPerMinute"`
			Items           []struct {
				PositionPercent int `json:"positionPercent"`
			} `json:"items"`
		} `json:"layout"`
	}
	decode(t, rec, &tl)
	if tl.Mode != "pixel" || tl.Layout.TotalDuration != 20 || tl.Layout.PixelsPerMinute != 12 {
		t.Fatalf("layout: got=%+v", tl)
	}
	if len(tl.Layout.Items) != 2 || tl.Layout.Items[0].PositionPercent != 33 || tl.Layout.Items[1].PositionPercent != 67 {
		t.Fatalf("positions: got=%+v", tl.Layout.Items)
	}

	rec = f.do(t, http.MethodGet, "/api/projects/"+projectID+"/export/timeline.csv?scope=project", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("csv: want=200 got=%d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type: got=%q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "timeline.csv") {
		t.Fatalf("content disposition: got=%q", cd)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "sequence,title") {
		t.Fatalf("csv body: got=%q", rec.Body.String())
	}

	if rec := f.do(t, http.MethodPost, "/api/projects/"+projectID+"/export/archive", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("archive without bucket: want=503 got=%d", rec.Code)
	}
}

func TestFactCheckOverHTTP(t *testing.T) {
	f := newAPI(t)
	rec := f.do(t, http.MethodPost, "/api/fact-check", map[string]any{
		"text":             "These superfoods are a staple of the jungle diet.",
		"includeToneCheck": false,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("fact-check: want=200 got=%d %s", rec.Code, rec.Body.String())
	}
	var res services.ScanResult
	decode(t, rec, &res)
	if !res.Enabled || len(res.Findings) == 0 || res.Summary.Total != len(res.Findings) {
		t.Fatalf("scan: got=%+v", res)
	}

	rec = f.do(t, http.MethodPut, "/api/settings/global_fact_check_enabled", map[string]any{"value": false})
	if rec.Code != http.StatusOK {
		t.Fatalf("disable fact check: want=200 got=%d %s", rec.Code, rec.Body.String())
	}
	rec = f.do(t, http.MethodPost, "/api/fact-check", map[string]any{"text": "These superfoods again."})
	decode(t, rec, &res)
	if res.Enabled || len(res.Findings) != 0 {
		t.Fatalf("disabled scan: got=%+v", res)
	}
}
