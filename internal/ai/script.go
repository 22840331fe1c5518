package ai

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	types "github.com/yungbote/storygrid-backend/internal/domain"
)

const (
	DefaultWhere = "Location appropriate for content"
	DefaultEyes  = "Visual treatment for content"
)

// ScriptSections is one generated where / ears / eyes script.
type ScriptSections struct {
	Where string `json:"where"`
	Ears  string `json:"ears"`
	Eyes  string `json:"eyes"`
}

type sectionLabel struct {
	section string
	re      *regexp.Regexp
}

// Checked in order; the first label group found on a line switches the section.
var sectionLabels = []sectionLabel{
	{"where", regexp.MustCompile(`(?i)where:|location:`)},
	{"ears", regexp.MustCompile(`(?i)ears:|audio:|dialogue:`)},
	{"eyes", regexp.MustCompile(`(?i)eyes:|visual:|camera:`)},
}

// ParseScriptSections splits a free-form completion into the three script
// columns. Text before any label lands in ears; empty columns fall back to
// the defaults, and ears falls back to the whole completion.
func ParseScriptSections(text string) ScriptSections {
	parts := map[string]*strings.Builder{
		"where": {},
		"ears":  {},
		"eyes":  {},
	}
	current := ""
	appendLine := func(section, line string) {
		b := parts[section]
		b.WriteString(line)
		b.WriteString("\n")
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		switched := false
		for _, l := range sectionLabels {
			loc := l.re.FindStringIndex(line)
			if loc == nil {
				continue
			}
			current = l.section
			appendLine(current, strings.TrimSpace(line[:loc[0]]+line[loc[1]:]))
			switched = true
			break
		}
		if switched || line == "" {
			continue
		}
		if current == "" {
			appendLine("ears", line)
			continue
		}
		appendLine(current, line)
	}

	out := ScriptSections{
		Where: strings.TrimSpace(parts["where"].String()),
		Ears:  strings.TrimSpace(parts["ears"].String()),
		Eyes:  strings.TrimSpace(parts["eyes"].String()),
	}
	if out.Where == "" {
		out.Where = DefaultWhere
	}
	if out.Ears == "" {
		out.Ears = text
	}
	if out.Eyes == "" {
		out.Eyes = DefaultEyes
	}
	return out
}

// ScriptPrompt is the generation prompt for one content block. tone may be empty.
func ScriptPrompt(block *types.ContentBlock, tone string) string {
	duration := "Not specified"
	if block.Duration != nil && *block.Duration != 0 {
		duration = strconv.FormatFloat(*block.Duration, 'f', -1, 64)
	}
	toneLine := ""
	if tone = strings.TrimSpace(tone); tone != "" {
		toneLine = "Tone/Style: " + tone
	}
	return fmt.Sprintf(`Create a professional script for a %s segment about "%s".

Description: %s
Duration: %s minutes
%s

Please structure the response as a script with:
- WHERE: The location/setting description
- EARS: The dialogue, narration, or audio content
- EYES: The visual direction, camera work, and on-screen elements

Make it engaging, professional, and appropriate for the content type.`,
		block.Type, block.Title, block.Description, duration, toneLine)
}
