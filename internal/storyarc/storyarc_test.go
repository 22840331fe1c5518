package storyarc

import (
	"math"
	"testing"
)

func d(v float64) *float64 { return &v }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestStructuresLoaded(t *testing.T) {
	all, err := Structures()
	if err != nil {
		t.Fatalf("Structures: %v", err)
	}
	want := []string{"3-act", "aristotelian", "heros-journey", "4-act", "save-the-cat", "freytag", "story-circle"}
	if len(all) != len(want) {
		t.Fatalf("Structures: want=%d got=%d", len(want), len(all))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Fatalf("structure %d: want=%s got=%s", i, id, all[i].ID)
		}
		acts := all[i].Acts
		if acts[0].Start != 0 || acts[len(acts)-1].End != 100 {
			t.Fatalf("%s: acts do not span 0-100", id)
		}
	}
}

func TestActDescriptionsKeepPunctuation(t *testing.T) {
	cat, ok := Lookup("save-the-cat")
	if !ok {
		t.Fatalf("Lookup save-the-cat failed")
	}
	if got := cat.Acts[3]; got.Name != "Debate" || got.Description != "Should they act?" {
		t.Fatalf("Debate act: got=%+v", got)
	}
	hero, ok := Lookup("heros-journey")
	if !ok {
		t.Fatalf("Lookup heros-journey failed")
	}
	if got := hero.Acts[4]; got.Name != "Tests & Allies" || got.Description != "Face challenges, build team" {
		t.Fatalf("Tests & Allies act: got=%+v", got)
	}
	for _, s := range mustStructures(t) {
		for _, a := range s.Acts {
			if a.Description == "" {
				t.Fatalf("%s/%s: empty description", s.ID, a.Name)
			}
		}
	}
}

func mustStructures(t *testing.T) []Structure {
	t.Helper()
	all, err := Structures()
	if err != nil {
		t.Fatalf("Structures: %v", err)
	}
	return all
}

func TestActForBoundaryGoesToEarlierAct(t *testing.T) {
	s, _ := Lookup("3-act")
	if got := ActFor(s, 25); got != 0 {
		t.Fatalf("ActFor(25): want=0 got=%d", got)
	}
	if got := ActFor(s, 100); got != 2 {
		t.Fatalf("ActFor(100): want=2 got=%d", got)
	}
	if got := ActFor(s, 120); got != -1 {
		t.Fatalf("ActFor(120): want=-1 got=%d", got)
	}
}

func TestComputeMetrics(t *testing.T) {
	s, ok := Lookup("3-act")
	if !ok {
		t.Fatalf("Lookup 3-act failed")
	}

	// Two interviews in one act: empty acts and a dominant type.
	m := ComputeMetrics(s, []Block{
		{ID: "a", Type: "interview", Duration: d(4), Position: Position(0, 2)},
		{ID: "b", Type: "interview", Position: Position(1, 2)},
	})
	if !near(m.Pacing, 6.7) || !near(m.Engagement, 8.1) || !near(m.Balance, 5.5) {
		t.Fatalf("penalized metrics: got pacing=%v engagement=%v balance=%v", m.Pacing, m.Engagement, m.Balance)
	}
	if m.ActDistribution["Confrontation"] != 7 {
		t.Fatalf("act distribution: got=%v", m.ActDistribution)
	}
	if m.TotalDuration != 4 {
		t.Fatalf("total duration: want=4 got=%v", m.TotalDuration)
	}

	full := ComputeMetrics(s, []Block{
		{Type: "interview", Position: 10},
		{Type: "b-roll", Position: 50},
		{Type: "narration", Position: 90},
	})
	if full.Pacing != 8.2 || full.Balance != 7.5 || full.Engagement != 9.1 {
		t.Fatalf("baseline metrics: got=%+v", full)
	}
}
