package veracity

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

type CitationStyle string

const (
	StyleInline  CitationStyle = "inline"
	StyleAPA     CitationStyle = "apa"
	StyleMLA     CitationStyle = "mla"
	StyleEndnote CitationStyle = "endnote"
)

func ParseCitationStyle(s string) CitationStyle {
	switch CitationStyle(strings.ToLower(strings.TrimSpace(s))) {
	case StyleAPA:
		return StyleAPA
	case StyleMLA:
		return StyleMLA
	case StyleEndnote:
		return StyleEndnote
	default:
		return StyleInline
	}
}

// FormatSource renders one source line. index is zero-based.
func FormatSource(style CitationStyle, src Source, index int, now time.Time) string {
	switch style {
	case StyleAPA:
		return fmt.Sprintf("%s. (%d). %s. Retrieved from %s", src.Source, now.Year(), src.Title, src.URL)
	case StyleMLA:
		return fmt.Sprintf("\"%s.\" %s, %s. %s", src.Title, src.Source, now.Format("1/2/2006"), src.URL)
	case StyleEndnote:
		return fmt.Sprintf("[%d] %s. %s. %s", index+1, src.Title, src.Source, src.URL)
	default:
		return fmt.Sprintf("[%s](%s) (%s)", src.Title, src.URL, src.Source)
	}
}

type ExportOptions struct {
	IncludeScriptText  bool          `json:"includeScriptText"`
	IncludeSourceLinks bool          `json:"includeSourceLinks"`
	IncludeComments    bool          `json:"includeComments"`
	CitationStyle      CitationStyle `json:"citationStyle"`
	EpisodeTitle       string        `json:"episodeTitle,omitempty"`
	ScriptVersion      string        `json:"scriptVersion,omitempty"`
	ReviewerName       string        `json:"reviewerName,omitempty"`
}

type ReportInput struct {
	Findings []Finding
	Script   string
	Options  ExportOptions
	Now      time.Time
}

// RenderReport produces the Markdown veracity report.
func RenderReport(in ReportInput) []byte {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	opts := in.Options
	style := ParseCitationStyle(string(opts.CitationStyle))

	var b bytes.Buffer
	title := strings.TrimSpace(opts.EpisodeTitle)
	if title == "" {
		title = "Untitled Episode"
	}
	fmt.Fprintf(&b, "# Veracity Report: %s\n\n", title)
	if v := strings.TrimSpace(opts.ScriptVersion); v != "" {
		fmt.Fprintf(&b, "- Script version: %s\n", v)
	}
	if r := strings.TrimSpace(opts.ReviewerName); r != "" {
		fmt.Fprintf(&b, "- Reviewer: %s\n", r)
	}
	fmt.Fprintf(&b, "- Generated: %s\n\n", now.UTC().Format(time.RFC3339))

	s := Summarize(in.Findings)
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "| Total | Accepted | Dismissed | Needs rewrite | Pending |\n|---|---|---|---|---|\n| %d | %d | %d | %d | %d |\n\n",
		s.Total, s.Accepted, s.Dismissed, s.NeedsRewrite, s.Pending)

	b.WriteString("## Findings\n\n")
	if len(in.Findings) == 0 {
		b.WriteString("No issues found.\n\n")
	}
	var endnotes []Source
	for i, f := range in.Findings {
		fmt.Fprintf(&b, "### %d. %s (%s)\n\n", i+1, f.Issue, f.Type)
		fmt.Fprintf(&b, "> %s\n\n", f.FlaggedText)
		fmt.Fprintf(&b, "- Position: %d-%d\n", f.Position.Start, f.Position.End)
		fmt.Fprintf(&b, "- Confidence: %d%% (%s)\n", f.ConfidenceRating, ConfidenceLabel(f.ConfidenceRating))
		status := string(f.Status)
		if status == "" {
			status = "pending"
		}
		fmt.Fprintf(&b, "- Status: %s\n", status)
		if f.Suggestion != "" {
			fmt.Fprintf(&b, "- Suggestion: %s\n", f.Suggestion)
		}
		if f.CitationSummary != "" {
			fmt.Fprintf(&b, "- Context: %s\n", f.CitationSummary)
		}
		if opts.IncludeComments && strings.TrimSpace(f.Comment) != "" {
			fmt.Fprintf(&b, "- Comment: %s\n", f.Comment)
		}
		if opts.IncludeSourceLinks && len(f.Sources) > 0 {
			if style == StyleEndnote {
				refs := make([]string, 0, len(f.Sources))
				for _, src := range f.Sources {
					endnotes = append(endnotes, src)
					refs = append(refs, fmt.Sprintf("[%d]", len(endnotes)))
				}
				fmt.Fprintf(&b, "- Sources: %s\n", strings.Join(refs, " "))
			} else {
				b.WriteString("- Sources:\n")
				for j, src := range f.Sources {
					fmt.Fprintf(&b, "  - %s\n", FormatSource(style, src, j, now))
				}
			}
		}
		b.WriteString("\n")
	}

	if len(endnotes) > 0 {
		b.WriteString("## Notes\n\n")
		for i, src := range endnotes {
			fmt.Fprintf(&b, "%s\n", FormatSource(StyleEndnote, src, i, now))
		}
		b.WriteString("\n")
	}

	if opts.IncludeScriptText && strings.TrimSpace(in.Script) != "" {
		b.WriteString("## Script\n\n```\n")
		b.WriteString(in.Script)
		if !strings.HasSuffix(in.Script, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("```\n")
	}
	return b.Bytes()
}
