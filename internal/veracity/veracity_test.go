package veracity

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

const sample = "This supplement boosts serotonin and is a superfood that detoxes your body."

func TestScanFindsHealthClaims(t *testing.T) {
	got := Scan(sample, true)
	if len(got) < 3 {
		t.Fatalf("Scan: want>=3 findings got=%d", len(got))
	}
	wantText := map[string]string{
		"neurotransmitter_boost": "boosts serotonin",
		"superfood":              "superfood",
		"detox_claim":            "detoxes your body",
	}
	seen := map[string]bool{}
	for _, f := range got {
		if sample[f.Position.Start:f.Position.End] != f.FlaggedText {
			t.Fatalf("offsets for %s do not bound %q", f.Rule, f.FlaggedText)
		}
		if want, ok := wantText[f.Rule]; ok {
			if f.FlaggedText != want {
				t.Fatalf("%s: want=%q got=%q", f.Rule, want, f.FlaggedText)
			}
			seen[f.Rule] = true
		}
	}
	for rule := range wantText {
		if !seen[rule] {
			t.Fatalf("missing finding for %s", rule)
		}
	}
}

func TestScanOffsetsCountUTF16Units(t *testing.T) {
	cases := []struct {
		text       string
		start, end int
	}{
		{"superfood", 0, 9},
		{"café superfood", 5, 14},
		{"🥦 superfood", 3, 12},
	}
	for _, tc := range cases {
		got := Scan(tc.text, false)
		if len(got) != 1 {
			t.Fatalf("%q: want=1 finding got=%d", tc.text, len(got))
		}
		if got[0].Position.Start != tc.start || got[0].Position.End != tc.end {
			t.Fatalf("%q: want=%d-%d got=%d-%d", tc.text, tc.start, tc.end, got[0].Position.Start, got[0].Position.End)
		}
		if got[0].FlaggedText != "superfood" {
			t.Fatalf("%q: flagged=%q", tc.text, got[0].FlaggedText)
		}
	}
}

func TestScanMatchesUnicodeSpaces(t *testing.T) {
	for _, text := range []string{"vitamin\u00a0C boosts", "boosts\u2009serotonin"} {
		got := Scan(text, false)
		if len(got) != 1 || got[0].FlaggedText != text {
			t.Fatalf("%q: want one finding over the whole text got=%+v", text, got)
		}
		if got[0].Position.Start != 0 || got[0].Position.End != utf16Len(text) {
			t.Fatalf("%q: position=%+v", text, got[0].Position)
		}
	}
}

func TestScanDeterministic(t *testing.T) {
	a := Scan(sample+" Obviously amazing.", true)
	b := Scan(sample+" Obviously amazing.", true)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("Scan not deterministic")
	}
}

func TestScanOrderAndTone(t *testing.T) {
	text := "An amazing superfood. Clearly another superfood."
	got := Scan(text, true)
	var rules []string
	for _, f := range got {
		rules = append(rules, f.Rule)
	}
	want := []string{"superfood", "superfood", "dismissive", "promotional"}
	if !reflect.DeepEqual(rules, want) {
		t.Fatalf("order: want=%v got=%v", want, rules)
	}
	if got[0].Position.Start >= got[1].Position.Start {
		t.Fatalf("matches of one rule should be in text order")
	}
	if got[0].ID == got[1].ID {
		t.Fatalf("distinct matches share an id")
	}
	if len(got[2].Sources) != 0 {
		t.Fatalf("tone findings carry no sources")
	}

	factOnly := Scan(text, false)
	if len(factOnly) != 2 {
		t.Fatalf("tone disabled: want=2 got=%d", len(factOnly))
	}
}

func TestScanCaseInsensitive(t *testing.T) {
	got := Scan("Vitamin d helps and this CURES CANCER", false)
	if len(got) != 2 {
		t.Fatalf("want=2 got=%d", len(got))
	}
	if got[0].ConfidenceRating != ConfidenceMedium || got[1].ConfidenceRating != ConfidenceHigh {
		t.Fatalf("confidence: got=%d,%d", got[0].ConfidenceRating, got[1].ConfidenceRating)
	}
}

func TestConfidenceLabel(t *testing.T) {
	cases := map[int]string{95: "High Confidence", 70: "Medium Confidence", 50: "Low Confidence", 10: "Uncertain"}
	for score, want := range cases {
		if got := ConfidenceLabel(score); got != want {
			t.Fatalf("ConfidenceLabel(%d): want=%q got=%q", score, want, got)
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Finding{
		{Status: StatusAccepted},
		{Status: StatusDismissed},
		{Status: StatusNeedsRewrite},
		{},
		{},
	})
	want := Summary{Total: 5, Accepted: 1, Dismissed: 1, NeedsRewrite: 1, Pending: 2}
	if s != want {
		t.Fatalf("Summarize: want=%+v got=%+v", want, s)
	}
}

func TestFormatSource(t *testing.T) {
	now := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	src := Source{Title: "Sleep", URL: "https://x.test", Source: "CDC"}
	cases := map[CitationStyle]string{
		StyleAPA:     "CDC. (2024). Sleep. Retrieved from https://x.test",
		StyleMLA:     "\"Sleep.\" CDC, 3/9/2024. https://x.test",
		StyleEndnote: "[2] Sleep. CDC. https://x.test",
		StyleInline:  "[Sleep](https://x.test) (CDC)",
	}
	for style, want := range cases {
		if got := FormatSource(style, src, 1, now); got != want {
			t.Fatalf("FormatSource(%s): want=%q got=%q", style, want, got)
		}
	}
}

func TestRenderReport(t *testing.T) {
	findings := Scan(sample, false)
	findings[0].Status = StatusAccepted
	findings[0].Comment = "ok with legal"
	out := string(RenderReport(ReportInput{
		Findings: findings,
		Script:   sample,
		Options: ExportOptions{
			IncludeScriptText:  true,
			IncludeSourceLinks: true,
			IncludeComments:    true,
			CitationStyle:      StyleEndnote,
			EpisodeTitle:       "Gut Health",
		},
		Now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
	for _, want := range []string{"# Veracity Report: Gut Health", "| 3 | 1 | 0 | 0 | 2 |", "## Notes", "[6] ", "ok with legal", "## Script"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}
