package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	chatGPTSystemPrompt    = `You are a creative brainstorming assistant for "It's a Jungle", a health-focused video series. Help users develop compelling story ideas, interview subjects, visual concepts, and narrative structures. Be conversational, creative, and actionable.`
	perplexitySystemPrompt = `You are a real-time research assistant for "It's a Jungle", a health-focused video series. Search for the latest information, trends, and credible sources. Provide up-to-date insights with citations when possible.`

	defaultTemperature = 0.7
	defaultMaxTokens   = 1500
)

type chatCompletionsRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// chatCompletions speaks the OpenAI-compatible chat completions wire format
// shared by the chatgpt and perplexity providers.
type chatCompletions struct {
	name         string
	url          string
	model        string
	systemPrompt string
	// allowMessage also reads a top-level "message" field from error bodies.
	allowMessage bool
	hc           *http.Client
}

func newChatGPT(baseURL string, hc *http.Client) *chatCompletions {
	return &chatCompletions{
		name:         ProviderChatGPT,
		url:          strings.TrimRight(baseURL, "/") + "/v1/chat/completions",
		model:        "gpt-4o",
		systemPrompt: chatGPTSystemPrompt,
		hc:           hc,
	}
}

func newPerplexity(baseURL string, hc *http.Client) *chatCompletions {
	return &chatCompletions{
		name:         ProviderPerplexity,
		url:          strings.TrimRight(baseURL, "/") + "/chat/completions",
		model:        "sonar",
		systemPrompt: perplexitySystemPrompt,
		allowMessage: true,
		hc:           hc,
	}
}

func (p *chatCompletions) Name() string { return p.name }

func (p *chatCompletions) Complete(ctx context.Context, req Request) (*Response, error) {
	messages := make([]Message, 0, len(req.History)+2)
	messages = append(messages, Message{Role: "system", Content: p.systemPrompt})
	messages = append(messages, req.History...)
	messages = append(messages, Message{Role: "user", Content: req.Prompt})

	body := chatCompletionsRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}
	headers := map[string]string{"Authorization": "Bearer " + req.APIKey}

	status, raw, err := postJSON(ctx, p.hc, p.name, p.url, headers, body)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		msg := upstreamMessage(raw, false, p.allowMessage)
		if msg == "" {
			msg = fmt.Sprintf("API returned status %d", status)
		}
		return nil, &ProviderError{Provider: p.name, Status: status, Message: msg}
	}

	var out chatCompletionsResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, invalidFormat(p.name)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message == nil || out.Choices[0].Message.Content == nil {
		return nil, invalidFormat(p.name)
	}
	return &Response{Provider: p.name, Content: *out.Choices[0].Message.Content}, nil
}
