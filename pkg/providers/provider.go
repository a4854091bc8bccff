// Package providers wraps the AI-assisted interpreter backends. Each
// provider takes free-form text describing a load test and asks a model to
// emit a LoadTestSpec JSON document; everything downstream (extraction,
// validation, recovery) treats the raw string as untrusted.
package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/loadclaw/loadclaw/pkg/config"
)

// InterpretRequest is one interpretation call.
type InterpretRequest struct {
	Text      string
	Model     string
	MaxTokens int
	// Enhanced switches to the clarified prompt, carrying feedback about the
	// previous failure. Used by the enhance_prompt recovery strategy.
	Enhanced      bool
	PreviousError string
}

// Provider is an AI interpreter backend.
type Provider interface {
	Interpret(ctx context.Context, req InterpretRequest) (string, error)
	Name() string
	DefaultModel() string
}

const systemPrompt = `You convert a natural-language description of an HTTP load test into JSON.
Respond with a single JSON object and nothing else, using exactly these fields:
{"name": string, "description": string, "test_type": "baseline"|"spike"|"soak"|"stress"|"ramp",
 "duration": {"value": int, "unit": "seconds"|"minutes"},
 "requests": [{"method": string, "url": string, "headers": {..}, "body": string}],
 "load_pattern": {"type": "constant"|"ramp-up"|"spike", "virtual_users": int, "requests_per_second": int}}
Every request needs a method and an absolute http(s) URL. Omit fields you cannot infer.`

const enhancedPromptSuffix = `
The previous attempt was rejected: %s
Return strictly valid JSON. Do not wrap it in markdown fences, do not add commentary,
and make sure requests is a non-empty array of {method, url} objects.`

// BuildSystemPrompt returns the instruction block for a request, enriched
// with failure feedback when the enhance_prompt strategy is driving.
func BuildSystemPrompt(req InterpretRequest) string {
	if !req.Enhanced {
		return systemPrompt
	}
	reason := strings.TrimSpace(req.PreviousError)
	if reason == "" {
		reason = "the response was not a usable load-test spec"
	}
	return systemPrompt + fmt.Sprintf(enhancedPromptSuffix, reason)
}

// ResolveProvider returns the provider name that would handle the given
// model string.
func ResolveProvider(model string, cfg *config.Config) string {
	lower := strings.ToLower(model)
	if strings.Contains(lower, "claude") || strings.HasPrefix(model, "anthropic/") {
		return "anthropic"
	}
	if strings.Contains(lower, "gpt") || strings.Contains(lower, "o1") || strings.Contains(lower, "o3") || strings.HasPrefix(model, "openai/") {
		return "openai"
	}
	if cfg != nil && cfg.Providers.Anthropic.APIKey != "" {
		return "anthropic"
	}
	if cfg != nil && cfg.Providers.OpenAI.APIKey != "" {
		return "openai"
	}
	return "unknown"
}

// NewFromConfig builds the provider for the configured model, or nil when no
// backend is configured (the caller then runs in offline heuristic mode).
func NewFromConfig(cfg *config.Config) Provider {
	switch ResolveProvider(cfg.Interpreter.Model, cfg) {
	case "anthropic":
		if cfg.Providers.Anthropic.APIKey == "" {
			return nil
		}
		return NewClaudeProvider(cfg.Providers.Anthropic.APIKey, cfg.Providers.Anthropic.APIBase)
	case "openai":
		if cfg.Providers.OpenAI.APIKey == "" {
			return nil
		}
		return NewOpenAIProvider(cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.APIBase)
	default:
		return nil
	}
}
