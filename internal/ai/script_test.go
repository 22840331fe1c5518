package ai

import "testing"

func TestParseScriptSections(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want ScriptSections
	}{
		{
			name: "labelled",
			in:   "WHERE: Kitchen\nEARS: Hello there\nmore talk\nEYES: Close up",
			want: ScriptSections{Where: "Kitchen", Ears: "Hello there\nmore talk", Eyes: "Close up"},
		},
		{
			name: "alternate labels",
			in:   "Location: Park\n\nDialogue: Hi\nCamera: Wide",
			want: ScriptSections{Where: "Park", Ears: "Hi", Eyes: "Wide"},
		},
		{
			name: "label on its own line",
			in:   "VISUAL:\nSlow pan",
			want: ScriptSections{Where: DefaultWhere, Ears: "VISUAL:\nSlow pan", Eyes: "Slow pan"},
		},
		{
			name: "preamble goes to ears",
			in:   "Intro line\nWHERE: Lab",
			want: ScriptSections{Where: "Lab", Ears: "Intro line", Eyes: DefaultEyes},
		},
		{
			name: "no labels",
			in:   "  ",
			want: ScriptSections{Where: DefaultWhere, Ears: "  ", Eyes: DefaultEyes},
		},
	}
	for _, tc := range cases {
		got := ParseScriptSections(tc.in)
		if got != tc.want {
			t.Fatalf("%s: want=%+v got=%+v", tc.name, tc.want, got)
		}
	}
}
