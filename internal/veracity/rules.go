package veracity

import (
	"embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesFS embed.FS

const (
	ConfidenceHigh      = 90
	ConfidenceMedium    = 70
	ConfidenceLow       = 50
	ConfidenceUncertain = 30
)

var confidenceLevels = map[string]int{
	"HIGH":      ConfidenceHigh,
	"MEDIUM":    ConfidenceMedium,
	"LOW":       ConfidenceLow,
	"UNCERTAIN": ConfidenceUncertain,
}

// ConfidenceLabel buckets a 0-100 rating.
func ConfidenceLabel(score int) string {
	switch {
	case score >= ConfidenceHigh:
		return "High Confidence"
	case score >= ConfidenceMedium:
		return "Medium Confidence"
	case score >= ConfidenceLow:
		return "Low Confidence"
	default:
		return "Uncertain"
	}
}

type Source struct {
	Title  string `yaml:"title" json:"title"`
	URL    string `yaml:"url" json:"url"`
	Source string `yaml:"source" json:"source"`
}

type yamlRules struct {
	Version int        `yaml:"version"`
	Fact    []yamlRule `yaml:"fact"`
	Tone    []yamlRule `yaml:"tone"`
}

type yamlRule struct {
	Name            string   `yaml:"name"`
	Pattern         string   `yaml:"pattern"`
	Issue           string   `yaml:"issue"`
	CitationSummary string   `yaml:"citation_summary"`
	Confidence      string   `yaml:"confidence"`
	Suggestion      string   `yaml:"suggestion"`
	Sources         []Source `yaml:"sources"`
}

// Rule is one compiled pattern with its canned finding text.
type Rule struct {
	Name            string
	Type            Type
	Re              *regexp.Regexp
	Issue           string
	CitationSummary string
	Confidence      int
	Suggestion      string
	Sources         []Source
}

type RuleSet struct {
	Fact []Rule
	Tone []Rule
}

var (
	defaultOnce  sync.Once
	defaultRules *RuleSet
	defaultErr   error
)

// DefaultRules returns the embedded rule tables, compiled once.
func DefaultRules() (*RuleSet, error) {
	defaultOnce.Do(func() {
		raw, err := rulesFS.ReadFile("rules.yaml")
		if err != nil {
			defaultErr = fmt.Errorf("read rules: %w", err)
			return
		}
		defaultRules, defaultErr = ParseRules(raw)
	})
	return defaultRules, defaultErr
}

// ParseRules compiles a YAML rule document. Patterns are always case-insensitive.
func ParseRules(raw []byte) (*RuleSet, error) {
	var doc yamlRules
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	fact, err := compileRules(doc.Fact, TypeFact)
	if err != nil {
		return nil, err
	}
	tone, err := compileRules(doc.Tone, TypeTone)
	if err != nil {
		return nil, err
	}
	return &RuleSet{Fact: fact, Tone: tone}, nil
}

func compileRules(in []yamlRule, typ Type) ([]Rule, error) {
	out := make([]Rule, 0, len(in))
	for _, r := range in {
		if strings.TrimSpace(r.Pattern) == "" {
			return nil, fmt.Errorf("rule %q: empty pattern", r.Name)
		}
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		conf, ok := confidenceLevels[strings.ToUpper(strings.TrimSpace(r.Confidence))]
		if !ok {
			return nil, fmt.Errorf("rule %q: unknown confidence %q", r.Name, r.Confidence)
		}
		out = append(out, Rule{
			Name:            r.Name,
			Type:            typ,
			Re:              re,
			Issue:           r.Issue,
			CitationSummary: r.CitationSummary,
			Confidence:      conf,
			Suggestion:      r.Suggestion,
			Sources:         r.Sources,
		})
	}
	return out, nil
}
