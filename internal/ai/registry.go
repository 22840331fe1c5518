package ai

import (
	"net/http"
	"sort"
	"time"

	"github.com/yungbote/storygrid-backend/internal/platform/envutil"
)

type Config struct {
	OpenAIBaseURL      string
	ClaudeProxyURL     string
	ClaudeProxyAnonKey string
	GeminiBaseURL      string
	PerplexityBaseURL  string
	// Timeout of zero leaves outbound calls unbounded.
	Timeout time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		OpenAIBaseURL:      envutil.String("OPENAI_BASE_URL", "https://api.openai.com"),
		ClaudeProxyURL:     envutil.String("CLAUDE_PROXY_URL", ""),
		ClaudeProxyAnonKey: envutil.String("CLAUDE_PROXY_ANON_KEY", ""),
		GeminiBaseURL:      envutil.String("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		PerplexityBaseURL:  envutil.String("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
		Timeout:            envutil.Seconds("AI_HTTP_TIMEOUT_SECONDS", 0),
	}
}

// Registry resolves providers by id.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if p != nil {
			r.providers[p.Name()] = p
		}
	}
	return r
}

// NewDefaultRegistry wires the four built-in providers against cfg.
func NewDefaultRegistry(cfg Config) *Registry {
	hc := &http.Client{Timeout: cfg.Timeout}
	return NewRegistry(
		newChatGPT(cfg.OpenAIBaseURL, hc),
		newClaude(cfg.ClaudeProxyURL, cfg.ClaudeProxyAnonKey, hc),
		newGemini(cfg.GeminiBaseURL, hc),
		newPerplexity(cfg.PerplexityBaseURL, hc),
	)
}

func (r *Registry) Get(name string) (Provider, bool) {
	if r == nil {
		return nil, false
	}
	p, ok := r.providers[normalizeProvider(name)]
	return p, ok
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.providers))
	for name := range r.providers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
