package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/storygrid-backend/internal/domain"
	"github.com/yungbote/storygrid-backend/internal/observability"
	"github.com/yungbote/storygrid-backend/internal/platform/apierr"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

// KeySource resolves the caller's stored key for a settings provider slot.
type KeySource interface {
	APIKey(ctx context.Context, owner uuid.UUID, provider string) (string, error)
}

// Result is one provider's outcome in a fan-out.
type Result struct {
	Provider string `json:"provider"`
	Content  string `json:"content,omitempty"`
	Error    string `json:"error,omitempty"`
	Err      error  `json:"-"`
}

// ScriptDraft is a generated script split into columns, with the raw completion.
type ScriptDraft struct {
	Provider string `json:"provider"`
	ScriptSections
	Raw string `json:"raw"`
}

type Gateway struct {
	log       *logger.Logger
	providers *Registry
	keys      KeySource
}

func NewGateway(baseLog *logger.Logger, providers *Registry, keys KeySource) *Gateway {
	return &Gateway{
		log:       baseLog.With("component", "AIGateway"),
		providers: providers,
		keys:      keys,
	}
}

// Ask sends prompt to one provider with the owner's key.
func (g *Gateway) Ask(ctx context.Context, owner uuid.UUID, provider, prompt string, history []Message) (*Response, error) {
	provider = normalizeProvider(provider)
	p, ok := g.providers.Get(provider)
	if !ok {
		return nil, apierr.BadRequest("unknown_provider", "unknown AI provider %q", provider)
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, apierr.BadRequest("empty_prompt", "prompt is required")
	}

	key, err := g.keys.APIKey(ctx, owner, SettingsProvider(provider))
	if err != nil {
		if errors.Is(err, ErrKeyNotConfigured) {
			return nil, apierr.New(http.StatusPreconditionFailed, "api_key_not_configured",
				fmt.Errorf("%w: %s API key not configured", ErrKeyNotConfigured, displayName(provider)))
		}
		return nil, err
	}

	resp, err := g.complete(ctx, provider, p, Request{Prompt: prompt, History: history, APIKey: key})
	if err != nil {
		g.log.Warn("AI provider call failed", "provider", provider, "error", err)
		var perr *ProviderError
		if errors.As(err, &perr) {
			return nil, apierr.New(http.StatusBadGateway, "provider_error", perr)
		}
		return nil, apierr.New(http.StatusBadGateway, "provider_unreachable", err)
	}
	return resp, nil
}

func (g *Gateway) complete(ctx context.Context, name string, p Provider, req Request) (*Response, error) {
	ctx, span := otel.Tracer("storygrid/ai").Start(ctx, "ai.complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("ai.provider", name)),
	)
	defer span.End()
	start := time.Now()
	resp, err := p.Complete(ctx, req)
	observability.Current().ObserveAI(name, err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider call failed")
	}
	return resp, err
}

// AskAll fans prompt out to providers concurrently. Every provider gets its
// own Result in request order; a failure never cancels siblings.
func (g *Gateway) AskAll(ctx context.Context, owner uuid.UUID, prompt string, history []Message, providers []string) []Result {
	if len(providers) == 0 {
		providers = AllProviders
	}
	results := make([]Result, len(providers))

	var eg errgroup.Group
	for i, name := range providers {
		i, name := i, normalizeProvider(name)
		eg.Go(func() error {
			res := Result{Provider: name}
			resp, err := g.Ask(ctx, owner, name, prompt, history)
			if err != nil {
				res.Err = err
				res.Error = err.Error()
			} else {
				res.Content = resp.Content
			}
			results[i] = res
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

// GenerateScript asks provider for a where / ears / eyes script for block.
func (g *Gateway) GenerateScript(ctx context.Context, owner uuid.UUID, provider string, block *types.ContentBlock, tone string) (*ScriptDraft, error) {
	if block == nil {
		return nil, apierr.BadRequest("missing_block", "content block is required")
	}
	if provider = normalizeProvider(provider); provider == "" {
		provider = ProviderChatGPT
	}
	resp, err := g.Ask(ctx, owner, provider, ScriptPrompt(block, tone), nil)
	if err != nil {
		return nil, err
	}
	return &ScriptDraft{
		Provider:       resp.Provider,
		ScriptSections: ParseScriptSections(resp.Content),
		Raw:            resp.Content,
	}, nil
}
