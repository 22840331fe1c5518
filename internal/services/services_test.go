package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storygrid-backend/internal/data/db"
	"github.com/yungbote/storygrid-backend/internal/data/repos"
	"github.com/yungbote/storygrid-backend/internal/data/repos/testutil"
	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/jobs/persist"
	"github.com/yungbote/storygrid-backend/internal/jobs/runtime"
	"github.com/yungbote/storygrid-backend/internal/jobs/worker"
	"github.com/yungbote/storygrid-backend/internal/mapping"
	"github.com/yungbote/storygrid-backend/internal/platform/apierr"
	"github.com/yungbote/storygrid-backend/internal/platform/ctxutil"
	"github.com/yungbote/storygrid-backend/internal/platform/dbctx"
	"github.com/yungbote/storygrid-backend/internal/platform/secrets"
	"github.com/yungbote/storygrid-backend/internal/search"
	"github.com/yungbote/storygrid-backend/internal/services"
	"github.com/yungbote/storygrid-backend/internal/settings"
	"github.com/yungbote/storygrid-backend/internal/veracity"
)

type nopNotifier struct{}

func (nopNotifier) TaskCommitted(context.Context, *types.WriteTask)                     {}
func (nopNotifier) TaskFailed(context.Context, *types.WriteTask, string)                {}
func (nopNotifier) BatchSettled(context.Context, uuid.UUID, services.BatchSummary)      {}
func (nopNotifier) ContentBlockUpdated(context.Context, uuid.UUID, *types.ContentBlock) {}

type fixture struct {
	db         *gorm.DB
	projects   services.ProjectService
	content    services.ContentService
	reorder    services.ReorderService
	timeline   services.TimelineService
	production services.ProductionService
	factCheck  services.FactCheckService
	settings   settings.Service
	worker     *worker.Worker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	if err := db.SeedTemplates(context.Background(), gdb); err != nil {
		t.Fatalf("SeedTemplates: %v", err)
	}

	projects := repos.NewProjectRepo(gdb, log)
	blocks := repos.NewContentBlockRepo(gdb, log)
	tasks := repos.NewWriteTaskRepo(gdb, log)
	sealer, err := secrets.NewSealer("test passphrase")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	settingsSvc := settings.NewService(gdb, log, repos.NewUserSettingRepo(gdb, log), repos.NewAPIKeyRepo(gdb, log), sealer)
	factCheck, err := services.NewFactCheckService(log, settingsSvc)
	if err != nil {
		t.Fatalf("NewFactCheckService: %v", err)
	}

	reg := runtime.NewRegistry()
	if err := persist.Register(reg, persist.Deps{Log: log, Blocks: blocks, Index: search.NewNoop()}); err != nil {
		t.Fatalf("persist.Register: %v", err)
	}

	return &fixture{
		db:       gdb,
		projects: services.NewProjectService(gdb, log, projects, repos.NewTemplateRepo(gdb, log)),
		content:  services.NewContentService(gdb, log, projects, blocks, tasks, nil, nil),
		reorder:  services.NewReorderService(gdb, log, projects, blocks, tasks, nil),
		timeline: services.NewTimelineService(log, projects, blocks, nil, settingsSvc),
		production: services.NewProductionService(gdb, log, services.ProductionRepos{
			Projects:  projects,
			Blocks:    blocks,
			Scripts:   repos.NewScriptBlockRepo(gdb, log),
			Timeline:  repos.NewTimelineItemRepo(gdb, log),
			Crew:      repos.NewCrewMemberRepo(gdb, log),
			Equipment: repos.NewEquipmentRepo(gdb, log),
			Locations: repos.NewLocationRepo(gdb, log),
		}),
		factCheck: factCheck,
		settings:  settingsSvc,
		worker:    worker.NewWorker(gdb, log, tasks, reg, nopNotifier{}, worker.Config{MaxAttempts: 3, RetryDelay: time.Hour}),
	}
}

func asUser(owner uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: owner})
}

func statusOf(err error) int {
	status, _ := apierr.StatusOf(err, "x")
	return status
}

func (f *fixture) newProject(t *testing.T, ctx context.Context) *types.Project {
	t.Helper()
	p, err := f.projects.Create(ctx, mapping.ProjectInput{Title: "It's a Jungle"})
	if err != nil {
		t.Fatalf("Create project: %v", err)
	}
	return p
}

func (f *fixture) newBlocks(t *testing.T, ctx context.Context, projectID uuid.UUID, titles ...string) []*types.ContentBlock {
	t.Helper()
	out := make([]*types.ContentBlock, 0, len(titles))
	for _, title := range titles {
		b, err := f.content.Create(ctx, projectID, mapping.ContentBlockInput{Title: title, Type: "interview"})
		if err != nil {
			t.Fatalf("Create block %s: %v", title, err)
		}
		out = append(out, b)
	}
	return out
}

func titles(blocks []*types.ContentBlock) []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.Title)
	}
	return out
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestProjectCreateFromTemplateAndOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(uuid.New())

	tpls, err := f.projects.Templates(dbctx.Of(ctx))
	if err != nil || len(tpls) != 3 {
		t.Fatalf("Templates: want=3 got=%d err=%v", len(tpls), err)
	}
	var tpl *types.ProjectTemplate
	for _, x := range tpls {
		if x.Name == "Interview Series" {
			tpl = x
		}
	}
	if tpl == nil {
		t.Fatalf("Interview Series template missing")
	}

	p, err := f.projects.Create(ctx, mapping.ProjectInput{
		Title:      "Guests",
		TemplateID: tpl.ID.String(),
		Settings:   map[string]any{"structure": "freytag"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	settingsMap := mapping.JSONObject(p.Settings)
	if settingsMap["structure"] != "freytag" {
		t.Fatalf("caller settings should win: got=%v", settingsMap["structure"])
	}
	if settingsMap["factCheck"] != true {
		t.Fatalf("template settings should be copied: %v", settingsMap)
	}

	other := asUser(uuid.New())
	if _, err := f.projects.Get(dbctx.Of(other), p.ID); statusOf(err) != 404 {
		t.Fatalf("foreign Get: want=404 got=%d (%v)", statusOf(err), err)
	}
	if _, err := f.projects.List(dbctx.Of(context.Background())); statusOf(err) != 401 {
		t.Fatalf("anonymous List: want=401 got=%d", statusOf(err))
	}
	if _, err := f.projects.Create(ctx, mapping.ProjectInput{Title: "  "}); statusOf(err) != 400 {
		t.Fatalf("blank title: want=400 got=%d", statusOf(err))
	}
}

func TestContentCreateAppendsAndReportsHealth(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(uuid.New())
	p := f.newProject(t, ctx)
	blocks := f.newBlocks(t, ctx, p.ID, "Intro", "Interview", "Outro")
	for i, b := range blocks {
		if b.Sequence == nil || *b.Sequence != i {
			t.Fatalf("block %d sequence: want=%d got=%v", i, i, b.Sequence)
		}
	}

	dup := 1
	if _, err := f.content.Create(ctx, p.ID, mapping.ContentBlockInput{Title: "Dup", Sequence: &dup}); err != nil {
		t.Fatalf("Create dup: %v", err)
	}
	list, err := f.content.List(dbctx.Of(ctx), p.ID, services.BlockFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := titles(list.Blocks); !sameStrings(got, []string{"Intro", "Interview", "Dup", "Outro"}) {
		t.Fatalf("List order: got=%v", got)
	}
	if len(list.Health.Duplicates) != 1 || list.Health.Duplicates[0] != 1 || !list.Health.Gaps {
		t.Fatalf("Health: %+v", list.Health)
	}

	if _, err := f.content.Create(ctx, p.ID, mapping.ContentBlockInput{Title: "Bad", Status: "shipped"}); statusOf(err) != 400 {
		t.Fatalf("bad status: want=400 got=%d", statusOf(err))
	}
}

func TestReorderQueuesTasksAndWorkerCommits(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(uuid.New())
	p := f.newProject(t, ctx)
	blocks := f.newBlocks(t, ctx, p.ID, "A", "B", "C", "D")

	res, err := f.reorder.Reorder(ctx, p.ID, services.ReorderRequest{BlockID: blocks[3].ID, TargetIndex: 1})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if got := titles(res.Blocks); !sameStrings(got, []string{"A", "D", "B", "C"}) {
		t.Fatalf("optimistic order: got=%v", got)
	}
	if res.BatchID == nil || len(res.Tasks) != 3 {
		t.Fatalf("tasks: want=3 in one batch got=%d batch=%v", len(res.Tasks), res.BatchID)
	}
	for _, task := range res.Tasks {
		if task.Status != types.WriteTaskPending || task.BatchID != *res.BatchID {
			t.Fatalf("task: %+v", task)
		}
	}

	n, err := f.worker.Drain(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("Drain: want=3 got=%d err=%v", n, err)
	}
	status, err := f.reorder.Batch(dbctx.Of(ctx), *res.BatchID)
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	if status.Summary.Committed != 3 || status.Summary.Total != 3 {
		t.Fatalf("summary: %+v", status.Summary)
	}
	list, err := f.content.List(dbctx.Of(ctx), p.ID, services.BlockFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := titles(list.Blocks); !sameStrings(got, []string{"A", "D", "B", "C"}) {
		t.Fatalf("durable order: got=%v", got)
	}
	if !list.Health.OK() {
		t.Fatalf("health after reorder: %+v", list.Health)
	}

	if _, err := f.reorder.Batch(dbctx.Of(asUser(uuid.New())), *res.BatchID); statusOf(err) != 404 {
		t.Fatalf("foreign batch: want=404 got=%d", statusOf(err))
	}
}

func TestReorderPlansAgainstQueuedOrder(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(uuid.New())
	p := f.newProject(t, ctx)
	blocks := f.newBlocks(t, ctx, p.ID, "A", "B", "C")

	first, err := f.reorder.Reorder(ctx, p.ID, services.ReorderRequest{BlockID: blocks[2].ID, TargetIndex: 0})
	if err != nil {
		t.Fatalf("Reorder #1: %v", err)
	}
	if got := titles(first.Blocks); !sameStrings(got, []string{"C", "A", "B"}) {
		t.Fatalf("first order: got=%v", got)
	}

	// The worker has not run; the second drag starts from [C A B].
	second, err := f.reorder.Reorder(ctx, p.ID, services.ReorderRequest{BlockID: blocks[0].ID, TargetIndex: 0})
	if err != nil {
		t.Fatalf("Reorder #2: %v", err)
	}
	if got := titles(second.Blocks); !sameStrings(got, []string{"A", "C", "B"}) {
		t.Fatalf("second order: got=%v", got)
	}
	if len(second.Tasks) != 2 {
		t.Fatalf("second tasks: want=2 got=%d", len(second.Tasks))
	}

	// Dropping A where it already sits in the queued order writes nothing.
	same, err := f.reorder.Reorder(ctx, p.ID, services.ReorderRequest{BlockID: blocks[0].ID, TargetIndex: 0})
	if err != nil || len(same.Tasks) != 0 {
		t.Fatalf("repeat drop: want no tasks got=%d err=%v", len(same.Tasks), err)
	}

	if _, err := f.worker.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	list, err := f.content.List(dbctx.Of(ctx), p.ID, services.BlockFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := titles(list.Blocks); !sameStrings(got, []string{"A", "C", "B"}) {
		t.Fatalf("durable order: want=[A C B] got=%v", got)
	}
	if !list.Health.OK() {
		t.Fatalf("health: %+v", list.Health)
	}
}

func TestStoryArcReorderSeesQueuedMembership(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(uuid.New())
	p := f.newProject(t, ctx)
	blocks := f.newBlocks(t, ctx, p.ID, "A", "B", "C")

	for _, b := range blocks[1:] {
		if _, err := f.content.SetStoryArc(ctx, b.ID, true); err != nil {
			t.Fatalf("SetStoryArc: %v", err)
		}
	}
	res, err := f.reorder.Reorder(ctx, p.ID, services.ReorderRequest{BlockID: blocks[2].ID, TargetIndex: 0, Scope: services.ScopeStoryArc})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if got := titles(res.Blocks); !sameStrings(got, []string{"C", "B"}) {
		t.Fatalf("arc order: want=[C B] got=%v", got)
	}

	// Removing before the add commits must not be mistaken for a no-op.
	removed, err := f.content.SetStoryArc(ctx, blocks[1].ID, false)
	if err != nil || removed.Task == nil {
		t.Fatalf("remove queued member: %+v err=%v", removed, err)
	}
	if _, err := f.worker.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	in := true
	arc, err := f.content.List(dbctx.Of(ctx), p.ID, services.BlockFilter{InStoryArc: &in})
	if err != nil {
		t.Fatalf("List arc: %v", err)
	}
	if got := titles(arc.Blocks); !sameStrings(got, []string{"C"}) {
		t.Fatalf("arc members: want=[C] got=%v", got)
	}
}

func TestReorderNoOpAndStaleDrag(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(uuid.New())
	p := f.newProject(t, ctx)
	blocks := f.newBlocks(t, ctx, p.ID, "A", "B", "C")

	same, err := f.reorder.Reorder(ctx, p.ID, services.ReorderRequest{BlockID: blocks[1].ID, TargetIndex: 1})
	if err != nil || same.BatchID != nil || len(same.Tasks) != 0 {
		t.Fatalf("self drop: want no tasks got=%+v err=%v", same, err)
	}
	stale, err := f.reorder.Reorder(ctx, p.ID, services.ReorderRequest{BlockID: uuid.New(), TargetIndex: 0})
	if err != nil || !stale.Plan.Ignored || len(stale.Tasks) != 0 {
		t.Fatalf("stale drop: want ignored got=%+v err=%v", stale, err)
	}
	if _, err := f.reorder.Reorder(ctx, p.ID, services.ReorderRequest{BlockID: blocks[0].ID, Scope: "sideways"}); statusOf(err) != 400 {
		t.Fatalf("bad scope: want=400 got=%d", statusOf(err))
	}

	drop, err := f.reorder.TimelineDrop(ctx, p.ID, services.TimelineDropRequest{BlockID: blocks[0].ID, DropPercentage: 150})
	if err != nil {
		t.Fatalf("TimelineDrop: %v", err)
	}
	if got := titles(drop.Blocks); !sameStrings(got, []string{"B", "C", "A"}) {
		t.Fatalf("timeline drop order: got=%v", got)
	}
}

func TestNormalizeRepairsDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(uuid.New())
	p := f.newProject(t, ctx)
	for _, seq := range []int{4, 4, 9} {
		s := seq
		if _, err := f.content.Create(ctx, p.ID, mapping.ContentBlockInput{Title: "x", Sequence: &s}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	res, err := f.reorder.Normalize(ctx, p.ID)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(res.Tasks) != 3 {
		t.Fatalf("Normalize tasks: want=3 got=%d", len(res.Tasks))
	}
	if _, err := f.worker.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	list, err := f.content.List(dbctx.Of(ctx), p.ID, services.BlockFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !list.Health.OK() {
		t.Fatalf("health after normalize: %+v", list.Health)
	}
}

func TestSetStoryArcKeepsProjectOrder(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(uuid.New())
	p := f.newProject(t, ctx)
	blocks := f.newBlocks(t, ctx, p.ID, "A", "B", "C", "D")

	for _, b := range []*types.ContentBlock{blocks[3], blocks[2]} {
		res, err := f.content.SetStoryArc(ctx, b.ID, true)
		if err != nil {
			t.Fatalf("SetStoryArc: %v", err)
		}
		if !res.Block.InStoryArc || res.Task == nil || res.Task.Op != types.OpSetFields {
			t.Fatalf("add result: block=%+v task=%+v", res.Block, res.Task)
		}
		if res.Block.Sequence == nil || *res.Block.Sequence != *b.Sequence {
			t.Fatalf("add must keep sequence: want=%d got=%v", *b.Sequence, res.Block.Sequence)
		}
	}
	if _, err := f.worker.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	list, err := f.content.List(dbctx.Of(ctx), p.ID, services.BlockFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := titles(list.Blocks); !sameStrings(got, []string{"A", "B", "C", "D"}) {
		t.Fatalf("project order: want=[A B C D] got=%v", got)
	}
	if !list.Health.OK() {
		t.Fatalf("health after toggles: %+v", list.Health)
	}
	in := true
	arc, err := f.content.List(dbctx.Of(ctx), p.ID, services.BlockFilter{InStoryArc: &in})
	if err != nil {
		t.Fatalf("List arc: %v", err)
	}
	if got := titles(arc.Blocks); !sameStrings(got, []string{"C", "D"}) {
		t.Fatalf("arc order: want=[C D] got=%v", got)
	}

	again, err := f.content.SetStoryArc(ctx, blocks[3].ID, true)
	if err != nil || again.Task != nil {
		t.Fatalf("repeat add should be a no-op: %+v err=%v", again, err)
	}
	removed, err := f.content.SetStoryArc(ctx, blocks[3].ID, false)
	if err != nil || removed.Task == nil || removed.Task.Op != types.OpSetFields || removed.Block.InStoryArc {
		t.Fatalf("remove: %+v err=%v", removed, err)
	}
}

func TestContentUpdateIsOptimistic(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(uuid.New())
	p := f.newProject(t, ctx)
	b := f.newBlocks(t, ctx, p.ID, "Draft title")[0]

	title := "Final title"
	res, err := f.content.Update(ctx, b.ID, mapping.ContentBlockPatch{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.Block.Title != title || res.Task == nil {
		t.Fatalf("optimistic result: %+v", res)
	}
	stored, err := f.content.Get(dbctx.Of(ctx), b.ID)
	if err != nil || stored.Title != "Draft title" {
		t.Fatalf("stored before drain: %+v err=%v", stored, err)
	}
	if _, err := f.worker.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	stored, err = f.content.Get(dbctx.Of(ctx), b.ID)
	if err != nil || stored.Title != title {
		t.Fatalf("stored after drain: %+v err=%v", stored, err)
	}

	if _, err := f.reorder.RetryTask(ctx, res.Task.ID); statusOf(err) != 409 {
		t.Fatalf("retry committed task: want=409 got=%d", statusOf(err))
	}
	if _, err := f.content.Update(asUser(uuid.New()), b.ID, mapping.ContentBlockPatch{Title: &title}); statusOf(err) != 404 {
		t.Fatalf("foreign update: want=404 got=%d", statusOf(err))
	}
}

func TestContentSearchFallsBackToDatabase(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(uuid.New())
	p := f.newProject(t, ctx)
	f.newBlocks(t, ctx, p.ID, "Rainforest canopy", "Jungle night walk", "Canopy interview")

	got, err := f.content.Search(dbctx.Of(ctx), p.ID, "canopy", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Search: want=2 got=%v", titles(got))
	}
}

func TestTimelineUsesPreferences(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	ctx := asUser(owner)
	p := f.newProject(t, ctx)
	blocks := f.newBlocks(t, ctx, p.ID, "A", "B")
	for _, b := range blocks {
		if _, err := f.content.SetStoryArc(ctx, b.ID, true); err != nil {
			t.Fatalf("SetStoryArc: %v", err)
		}
		if _, err := f.worker.Drain(context.Background()); err != nil {
			t.Fatalf("Drain: %v", err)
		}
	}
	if err := f.settings.Set(ctx, owner, settings.KeyTimelineSnapToGrid, json.RawMessage(`false`)); err != nil {
		t.Fatalf("Set snap: %v", err)
	}

	view, err := f.timeline.Timeline(dbctx.Of(ctx), p.ID, services.TimelineOptions{})
	if err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	if view.Snap || view.Layout.PixelsPerMinute != 12 {
		t.Fatalf("snap preference ignored: snap=%v ppm=%v", view.Snap, view.Layout.PixelsPerMinute)
	}
	if len(view.Layout.Items) != 2 || view.Layout.Items[0].PositionPercent != 33 || view.Layout.Items[1].PositionPercent != 67 {
		t.Fatalf("positions: %+v", view.Layout.Items)
	}
	if view.Layout.TotalDuration != 10 {
		t.Fatalf("total duration: want=10 got=%v", view.Layout.TotalDuration)
	}

	arc, err := f.timeline.StoryArc(dbctx.Of(ctx), p.ID, "")
	if err != nil {
		t.Fatalf("StoryArc: %v", err)
	}
	if arc.Structure.ID != "3-act" || len(arc.Blocks) != 2 {
		t.Fatalf("StoryArc: %+v", arc)
	}
	if _, err := f.timeline.StoryArc(dbctx.Of(ctx), p.ID, "five-act-opera"); statusOf(err) != 400 {
		t.Fatalf("unknown structure: want=400 got=%d", statusOf(err))
	}
}

func TestFactCheckRespectsSetting(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	ctx := asUser(owner)
	text := "This supplement boosts serotonin and is a superfood that detoxes your body."

	res, err := f.factCheck.Scan(ctx, text, true)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !res.Enabled || len(res.Findings) < 3 || res.Summary.Pending != len(res.Findings) {
		t.Fatalf("Scan enabled: %+v", res)
	}

	if err := f.settings.Set(ctx, owner, settings.KeyGlobalFactCheckEnabled, json.RawMessage(`false`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	res, err = f.factCheck.Scan(ctx, text, true)
	if err != nil || res.Enabled || len(res.Findings) != 0 {
		t.Fatalf("Scan disabled: %+v err=%v", res, err)
	}

	bad := []veracity.Finding{{ID: "x", Status: "maybe"}}
	if _, err := f.factCheck.Report(ctx, services.ReportRequest{Findings: bad}); statusOf(err) != 400 {
		t.Fatalf("bad status: want=400 got=%d", statusOf(err))
	}
}

func TestTimelineItemResolvesReferences(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(uuid.New())
	p := f.newProject(t, ctx)
	b := f.newBlocks(t, ctx, p.ID, "Interview")[0]

	host, err := f.production.CreateCrew(ctx, p.ID, mapping.CrewMemberInput{Name: "Ana", Role: "Host"})
	if err != nil {
		t.Fatalf("CreateCrew: %v", err)
	}
	cam, err := f.production.CreateEquipment(ctx, p.ID, mapping.EquipmentInput{Name: "FX6", Category: "camera"})
	if err != nil {
		t.Fatalf("CreateEquipment: %v", err)
	}
	loc, err := f.production.CreateLocation(ctx, p.ID, mapping.LocationInput{Name: "Base camp"})
	if err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}
	item, err := f.production.CreateTimelineItem(ctx, p.ID, mapping.TimelineItemInput{
		ContentBlockID: b.ID.String(),
		Date:           "2026-11-02",
		LocationID:     loc.ID.String(),
		CrewIDs:        []string{host.ID.String(), uuid.NewString()},
		EquipmentIDs:   []string{cam.ID.String()},
	})
	if err != nil {
		t.Fatalf("CreateTimelineItem: %v", err)
	}
	if item.Status != "planned" {
		t.Fatalf("default status: want=planned got=%s", item.Status)
	}

	resolved, err := f.production.GetTimelineItem(dbctx.Of(ctx), item.ID)
	if err != nil {
		t.Fatalf("GetTimelineItem: %v", err)
	}
	if resolved.Block == nil || resolved.Location == nil || len(resolved.Crew) != 1 || len(resolved.Equipment) != 1 {
		t.Fatalf("resolved: %+v", resolved)
	}

	n, err := f.production.SetPacked(ctx, p.ID, nil, true)
	if err != nil || n != 1 {
		t.Fatalf("SetPacked: want=1 got=%d err=%v", n, err)
	}
	if _, err := f.production.CreateCrew(ctx, p.ID, mapping.CrewMemberInput{Name: "X", Role: "stunt double"}); statusOf(err) != 400 {
		t.Fatalf("bad role: want=400 got=%d", statusOf(err))
	}
}

func TestScriptBlockVersioning(t *testing.T) {
	f := newFixture(t)
	ctx := asUser(uuid.New())
	p := f.newProject(t, ctx)
	b := f.newBlocks(t, ctx, p.ID, "Cold open")[0]

	sb, err := f.production.CreateScriptBlock(ctx, p.ID, mapping.ScriptBlockInput{ContentBlockID: b.ID.String(), Ears: "Hello"})
	if err != nil {
		t.Fatalf("CreateScriptBlock: %v", err)
	}
	if sb.Version != 1 || sb.Status != types.StatusDraft {
		t.Fatalf("new script block: %+v", sb)
	}
	eyes := "Wide shot"
	updated, err := f.production.UpdateScriptBlock(ctx, sb.ID, mapping.ScriptBlockPatch{Eyes: &eyes})
	if err != nil {
		t.Fatalf("UpdateScriptBlock: %v", err)
	}
	if updated.Version != 2 || updated.Eyes != eyes || updated.Ears != "Hello" {
		t.Fatalf("updated script block: %+v", updated)
	}
	if _, err := f.production.CreateScriptBlock(ctx, p.ID, mapping.ScriptBlockInput{ContentBlockID: uuid.NewString()}); statusOf(err) != 404 {
		t.Fatalf("unknown block: want=404 got=%d", statusOf(err))
	}
}
