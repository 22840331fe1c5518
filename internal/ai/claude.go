package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// claudeProxy reaches Anthropic through a serverless proxy that holds no key
// of its own: the user's key travels in the request body.
type claudeProxy struct {
	url     string
	anonKey string
	hc      *http.Client
}

type claudeProxyRequest struct {
	Prompt              string    `json:"prompt"`
	APIKey              string    `json:"apiKey"`
	ConversationHistory []Message `json:"conversationHistory"`
}

func newClaude(proxyURL, anonKey string, hc *http.Client) *claudeProxy {
	return &claudeProxy{url: strings.TrimSpace(proxyURL), anonKey: anonKey, hc: hc}
}

func (p *claudeProxy) Name() string { return ProviderClaude }

func (p *claudeProxy) Complete(ctx context.Context, req Request) (*Response, error) {
	if p.url == "" {
		return nil, &ProviderError{Provider: ProviderClaude, Message: "Claude proxy URL is not configured"}
	}
	history := req.History
	if history == nil {
		history = []Message{}
	}
	body := claudeProxyRequest{Prompt: req.Prompt, APIKey: req.APIKey, ConversationHistory: history}
	headers := map[string]string{}
	if p.anonKey != "" {
		headers["Authorization"] = "Bearer " + p.anonKey
		headers["apikey"] = p.anonKey
	}

	status, raw, err := postJSON(ctx, p.hc, ProviderClaude, p.url, headers, body)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		msg := upstreamMessage(raw, true, false)
		if msg == "" {
			msg = fmt.Sprintf("Proxy returned status %d", status)
		}
		return nil, &ProviderError{Provider: ProviderClaude, Status: status, Message: msg}
	}

	var out struct {
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || out.Content == nil {
		return nil, invalidFormat(ProviderClaude)
	}
	return &Response{Provider: ProviderClaude, Content: *out.Content}, nil
}

