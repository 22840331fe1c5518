package veracity

import (
	"fmt"

	"github.com/google/uuid"
)

type Type string

const (
	TypeFact Type = "fact"
	TypeTone Type = "tone"
)

type Status string

const (
	StatusAccepted     Status = "accepted"
	StatusDismissed    Status = "dismissed"
	StatusNeedsRewrite Status = "needs-rewrite"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusAccepted, StatusDismissed, StatusNeedsRewrite:
		return true
	}
	return false
}

type Position struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Finding is one pattern match. Status and Comment belong to the review
// workflow and are empty straight out of Scan.
type Finding struct {
	ID               string   `json:"id"`
	Type             Type     `json:"type"`
	Rule             string   `json:"rule"`
	Issue            string   `json:"issue"`
	FlaggedText      string   `json:"flaggedText"`
	Position         Position `json:"position"`
	Suggestion       string   `json:"suggestion,omitempty"`
	Sources          []Source `json:"sources,omitempty"`
	ConfidenceRating int      `json:"confidenceRating"`
	ConfidenceLabel  string   `json:"confidenceLabel"`
	CitationSummary  string   `json:"citationSummary,omitempty"`
	Status           Status   `json:"status,omitempty"`
	Comment          string   `json:"comment,omitempty"`
}

var findingNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("storygrid/veracity"))

type Scanner struct {
	rules *RuleSet
}

func NewScanner(rules *RuleSet) *Scanner {
	return &Scanner{rules: rules}
}

// NewDefaultScanner uses the embedded rule tables.
func NewDefaultScanner() (*Scanner, error) {
	rules, err := DefaultRules()
	if err != nil {
		return nil, err
	}
	return NewScanner(rules), nil
}

// Scan runs every fact rule, then every tone rule when includeTone is set.
// Each match yields one finding. Offsets count UTF-16 code units, the way a
// browser indexes the same string; for ASCII text they equal byte offsets.
func (s *Scanner) Scan(text string, includeTone bool) []Finding {
	out := []Finding{}
	if s == nil || s.rules == nil || text == "" {
		return out
	}
	for i, r := range s.rules.Fact {
		out = appendMatches(out, i, r, text)
	}
	if includeTone {
		for i, r := range s.rules.Tone {
			out = appendMatches(out, len(s.rules.Fact)+i, r, text)
		}
	}
	return out
}

func appendMatches(out []Finding, ruleIdx int, r Rule, text string) []Finding {
	for _, loc := range r.Re.FindAllStringIndex(text, -1) {
		if loc[0] == loc[1] {
			continue
		}
		match := text[loc[0]:loc[1]]
		start := utf16Offset(text, loc[0])
		end := start + utf16Len(match)
		f := Finding{
			ID:               findingID(ruleIdx, start, end, match),
			Type:             r.Type,
			Rule:             r.Name,
			Issue:            r.Issue,
			FlaggedText:      match,
			Position:         Position{Start: start, End: end},
			Suggestion:       r.Suggestion,
			ConfidenceRating: r.Confidence,
			ConfidenceLabel:  ConfidenceLabel(r.Confidence),
			CitationSummary:  r.CitationSummary,
		}
		if len(r.Sources) > 0 {
			f.Sources = append([]Source(nil), r.Sources...)
		}
		out = append(out, f)
	}
	return out
}

// utf16Offset converts a byte offset into text to a UTF-16 code unit offset.
func utf16Offset(text string, byteOff int) int {
	return utf16Len(text[:byteOff])
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func findingID(ruleIdx, start, end int, match string) string {
	return uuid.NewSHA1(findingNamespace, []byte(fmt.Sprintf("%d:%d:%d:%s", ruleIdx, start, end, match))).String()
}

// Scan uses the embedded rules. It returns an empty slice if they fail to load.
func Scan(text string, includeTone bool) []Finding {
	s, err := NewDefaultScanner()
	if err != nil {
		return []Finding{}
	}
	return s.Scan(text, includeTone)
}

// Summary counts findings by review status.
type Summary struct {
	Total        int `json:"totalIssues"`
	Accepted     int `json:"accepted"`
	Dismissed    int `json:"dismissed"`
	NeedsRewrite int `json:"needsRewrite"`
	Pending      int `json:"pending"`
}

func Summarize(findings []Finding) Summary {
	s := Summary{Total: len(findings)}
	for _, f := range findings {
		switch f.Status {
		case StatusAccepted:
			s.Accepted++
		case StatusDismissed:
			s.Dismissed++
		case StatusNeedsRewrite:
			s.NeedsRewrite++
		case "":
			s.Pending++
		}
	}
	return s
}
