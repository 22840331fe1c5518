package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("storygrid/ai")

// postJSON performs a single POST; there are no retries. Non-2xx responses
// return the raw body with a nil error so callers can shape the upstream
// message themselves.
func postJSON(ctx context.Context, hc *http.Client, provider, url string, headers map[string]string, body any) (int, []byte, error) {
	ctx, span := tracer.Start(ctx, "ai."+provider+".complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("ai.provider", provider)),
	)
	defer span.End()

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode request")
		return 0, nil, fmt.Errorf("%s: encode request: %w", provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return 0, nil, fmt.Errorf("%s: build request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return 0, nil, fmt.Errorf("%s: request failed: %w", provider, err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if readErr != nil {
		span.RecordError(readErr)
		span.SetStatus(codes.Error, "read body")
		return resp.StatusCode, nil, fmt.Errorf("%s: read response: %w", provider, readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}
	return resp.StatusCode, raw, nil
}

func ok(status int) bool { return status >= 200 && status < 300 }

// upstreamMessage pulls a human readable message out of an error body.
// Recognized shapes: {"error":{"message"}}, {"error":"..."}, {"message":"..."}.
func upstreamMessage(raw []byte, allowBareError, allowMessage bool) string {
	var env struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	if len(env.Error) > 0 {
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(env.Error, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
		if allowBareError {
			var s string
			if json.Unmarshal(env.Error, &s) == nil && s != "" {
				return s
			}
		}
	}
	if allowMessage {
		return env.Message
	}
	return ""
}
