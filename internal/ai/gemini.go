package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type gemini struct {
	baseURL string
	hc      *http.Client
}

func newGemini(baseURL string, hc *http.Client) *gemini {
	return &gemini{baseURL: strings.TrimRight(baseURL, "/"), hc: hc}
}

func (p *gemini) Name() string { return ProviderGemini }

func (p *gemini) Complete(ctx context.Context, req Request) (*Response, error) {
	var body geminiRequest
	body.Contents = make([]geminiContent, 0, len(req.History)+1)
	for _, m := range req.History {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		body.Contents = append(body.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	body.Contents = append(body.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}})
	body.GenerationConfig.Temperature = defaultTemperature
	body.GenerationConfig.MaxOutputTokens = defaultMaxTokens

	endpoint := p.baseURL + "/v1/models/gemini-pro:generateContent?key=" + url.QueryEscape(req.APIKey)
	status, raw, err := postJSON(ctx, p.hc, ProviderGemini, endpoint, nil, body)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		msg := upstreamMessage(raw, false, false)
		if msg == "" {
			msg = fmt.Sprintf("API returned status %d", status)
		}
		return nil, &ProviderError{Provider: ProviderGemini, Status: status, Message: msg}
	}

	var out geminiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, invalidFormat(ProviderGemini)
	}
	if len(out.Candidates) == 0 || out.Candidates[0].Content == nil ||
		len(out.Candidates[0].Content.Parts) == 0 || out.Candidates[0].Content.Parts[0].Text == nil {
		return nil, invalidFormat(ProviderGemini)
	}
	return &Response{Provider: ProviderGemini, Content: *out.Candidates[0].Content.Parts[0].Text}, nil
}
