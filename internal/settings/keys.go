package settings

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/storygrid-backend/internal/platform/apierr"
	"github.com/yungbote/storygrid-backend/internal/veracity"
)

const (
	KeyCitationStyle          = "citation_style"
	KeyGlobalFactCheckEnabled = "global_fact_check_enabled"
	KeyProjectOverview        = "project_overview"
	KeyCurrentProjectID       = "current_project_id"
	KeyTimelineSnapToGrid     = "timeline_snap_to_grid"
	KeyTimelineScaleMinutes   = "timeline_scale_minutes"
)

// Provider ids for stored API keys.
const (
	ProviderOpenAI     = "openai"
	ProviderClaude     = "claude"
	ProviderGemini     = "gemini"
	ProviderPerplexity = "perplexity"
)

var Providers = []string{ProviderOpenAI, ProviderClaude, ProviderGemini, ProviderPerplexity}

// defaults are returned for keys the user never wrote.
var defaults = map[string]json.RawMessage{
	KeyCitationStyle:          json.RawMessage(`"inline"`),
	KeyGlobalFactCheckEnabled: json.RawMessage(`true`),
	KeyProjectOverview:        json.RawMessage(`{}`),
	KeyCurrentProjectID:       json.RawMessage(`null`),
	KeyTimelineSnapToGrid:     json.RawMessage(`true`),
	KeyTimelineScaleMinutes:   json.RawMessage(`30`),
}

// Keys lists every known setting key.
func Keys() []string {
	return []string{
		KeyCitationStyle,
		KeyGlobalFactCheckEnabled,
		KeyProjectOverview,
		KeyCurrentProjectID,
		KeyTimelineSnapToGrid,
		KeyTimelineScaleMinutes,
	}
}

func Default(key string) (json.RawMessage, bool) {
	v, ok := defaults[key]
	return v, ok
}

// validateValue checks value against the shape expected for key.
func validateValue(key string, value json.RawMessage) error {
	if len(value) == 0 || !json.Valid(value) {
		return apierr.BadRequest("invalid_setting_value", "%s: value must be valid JSON", key)
	}
	switch key {
	case KeyCitationStyle:
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return apierr.BadRequest("invalid_setting_value", "%s: expected a string", key)
		}
		if string(veracity.ParseCitationStyle(s)) != strings.ToLower(strings.TrimSpace(s)) {
			return apierr.BadRequest("invalid_setting_value", "%s: unknown citation style %q", key, s)
		}
	case KeyGlobalFactCheckEnabled, KeyTimelineSnapToGrid:
		var b bool
		if err := json.Unmarshal(value, &b); err != nil {
			return apierr.BadRequest("invalid_setting_value", "%s: expected a boolean", key)
		}
	case KeyTimelineScaleMinutes:
		var f float64
		if err := json.Unmarshal(value, &f); err != nil || f <= 0 {
			return apierr.BadRequest("invalid_setting_value", "%s: expected a positive number", key)
		}
	case KeyProjectOverview:
		var m map[string]any
		if err := json.Unmarshal(value, &m); err != nil || m == nil {
			return apierr.BadRequest("invalid_setting_value", "%s: expected an object", key)
		}
	case KeyCurrentProjectID:
		var s *string
		if err := json.Unmarshal(value, &s); err != nil {
			return apierr.BadRequest("invalid_setting_value", "%s: expected a project id or null", key)
		}
		if s != nil {
			if _, err := uuid.Parse(*s); err != nil {
				return apierr.BadRequest("invalid_setting_value", "%s: invalid project id", key)
			}
		}
	default:
		return apierr.BadRequest("unknown_setting", "unknown setting %q", key)
	}
	return nil
}

// ValidateAPIKey applies the per-provider prefix rules. The literal strings
// "null" and "undefined" are never accepted.
func ValidateAPIKey(provider, key string) error {
	key = strings.TrimSpace(key)
	if key == "" || key == "null" || key == "undefined" {
		return apierr.BadRequest("invalid_api_key", "%s: API key is empty", provider)
	}
	var prefix string
	switch provider {
	case ProviderOpenAI:
		prefix = "sk-"
	case ProviderClaude:
		prefix = "sk-ant-"
	case ProviderPerplexity:
		prefix = "pplx-"
	case ProviderGemini:
		return nil
	default:
		return apierr.BadRequest("unknown_provider", "unknown provider %q", provider)
	}
	if !strings.HasPrefix(key, prefix) {
		return apierr.BadRequest("invalid_api_key", "%s API keys start with %q", provider, prefix)
	}
	return nil
}

func knownProvider(provider string) bool {
	for _, p := range Providers {
		if p == provider {
			return true
		}
	}
	return false
}

// APIKeyChangeKey is the Change.Key used when a provider key is written or removed.
func APIKeyChangeKey(provider string) string {
	return fmt.Sprintf("api_key:%s", provider)
}
