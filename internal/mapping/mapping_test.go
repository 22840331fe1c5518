package mapping

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/storygrid-backend/internal/domain"
)

func strp(s string) *string { return &s }

func TestContentBlockRoundTrip(t *testing.T) {
	projectID := uuid.New()
	var row types.ContentBlock
	ContentBlockFromInput(ContentBlockInput{Title: "  Intro  ", InStoryArc: true}, projectID, &row)
	if row.Title != "Intro" || row.Status != types.StatusDraft || row.Type != "other" {
		t.Fatalf("FromInput defaults: got=%+v", row)
	}

	v := ContentBlockToView(&row)
	if v.Duration != 5 || v.Sequence != 0 || !v.InStoryArc || v.ProjectID != projectID.String() {
		t.Fatalf("ToView: got=%+v", v)
	}
}

func TestContentBlockPatchColumns(t *testing.T) {
	arc := false
	d := 7.5
	cols := ContentBlockPatchColumns(ContentBlockPatch{Title: strp("New"), InStoryArc: &arc, Duration: &d, AISource: strp("claude")})
	want := map[string]any{"title": "New", "in_story_arc": false, "duration": 7.5, "ai_source": "claude"}
	if !reflect.DeepEqual(cols, want) {
		t.Fatalf("PatchColumns: want=%v got=%v", want, cols)
	}
	for col := range cols {
		if !ContentBlockColumns[col] {
			t.Fatalf("column %s not allow-listed", col)
		}
	}
	if len(ContentBlockPatchColumns(ContentBlockPatch{})) != 0 {
		t.Fatalf("empty patch should map to no columns")
	}
}

func TestTimelineItemIDsAreCleaned(t *testing.T) {
	crew := uuid.New().String()
	var row types.TimelineItem
	TimelineItemFromInput(TimelineItemInput{
		CrewIDs:    []string{crew, "not-a-uuid", crew},
		LocationID: "",
	}, uuid.New(), uuid.New(), &row)
	if len(row.CrewIDs) != 1 || row.CrewIDs[0] != crew {
		t.Fatalf("crew ids: got=%v", row.CrewIDs)
	}
	if row.LocationID != nil || row.Status != "planned" {
		t.Fatalf("defaults: got location=%v status=%s", row.LocationID, row.Status)
	}
	v := TimelineItemToView(&row)
	if v.EquipmentIDs == nil {
		t.Fatalf("view should never carry nil slices")
	}
}

func TestProjectSettings(t *testing.T) {
	merged := MergeSettings(map[string]any{"a": 1.0, "b": "x"}, map[string]any{"b": "y"})
	if merged["a"] != 1.0 || merged["b"] != "y" {
		t.Fatalf("MergeSettings: got=%v", merged)
	}
	var row types.Project
	ProjectFromInput(ProjectInput{Title: "Ep 1", Tags: []string{"gut", " Gut ", ""}, Settings: merged}, uuid.New(), &row)
	if !reflect.DeepEqual([]string(row.Tags), []string{"gut"}) {
		t.Fatalf("tags: got=%v", row.Tags)
	}
	v := ProjectToView(&row)
	if v.Settings["b"] != "y" {
		t.Fatalf("settings: got=%v", v.Settings)
	}
	if got := JSONObject(datatypes.JSON("not json")); len(got) != 0 {
		t.Fatalf("invalid json should map to empty object")
	}
}

func TestEquipmentQuantityFloor(t *testing.T) {
	var row types.Equipment
	EquipmentFromInput(EquipmentInput{Name: "Tripod", Quantity: 0}, uuid.New(), &row)
	if row.Quantity != 1 || row.Category != "misc" {
		t.Fatalf("equipment defaults: got=%+v", row)
	}
	zero := 0
	if cols := EquipmentPatchColumns(EquipmentPatch{Quantity: &zero}); cols["quantity"] != 1 {
		t.Fatalf("patch quantity floor: got=%v", cols["quantity"])
	}
}
