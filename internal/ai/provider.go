package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/storygrid-backend/internal/settings"
)

// Provider ids accepted by the gateway.
const (
	ProviderChatGPT    = "chatgpt"
	ProviderClaude     = "claude"
	ProviderGemini     = "gemini"
	ProviderPerplexity = "perplexity"
)

// AllProviders is the fan-out order used by AskAll when the caller names none.
var AllProviders = []string{ProviderChatGPT, ProviderClaude, ProviderGemini, ProviderPerplexity}

// ErrKeyNotConfigured is returned when the owner has no stored key for a provider.
var ErrKeyNotConfigured = settings.ErrKeyNotConfigured

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Prompt  string
	History []Message
	APIKey  string
}

type Response struct {
	Provider string `json:"provider"`
	Content  string `json:"content"`
}

type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (*Response, error)
}

// ProviderError is an upstream failure. Status is 0 when the call succeeded
// but the body did not carry the expected field.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s API error: %d - %s", displayName(e.Provider), e.Status, e.Message)
}

func displayName(provider string) string {
	switch provider {
	case ProviderChatGPT:
		return "OpenAI"
	case ProviderClaude:
		return "Claude"
	case ProviderGemini:
		return "Gemini"
	case ProviderPerplexity:
		return "Perplexity"
	}
	return provider
}

// SettingsProvider maps a gateway provider id to the key slot in settings.
func SettingsProvider(provider string) string {
	if provider == ProviderChatGPT {
		return settings.ProviderOpenAI
	}
	return provider
}

func invalidFormat(provider string) error {
	return &ProviderError{Provider: provider, Message: "Invalid response format from " + displayName(provider)}
}

func normalizeProvider(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}
