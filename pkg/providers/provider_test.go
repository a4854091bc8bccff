package providers

import (
	"strings"
	"testing"

	"github.com/loadclaw/loadclaw/pkg/config"
)

func TestResolveProvider(t *testing.T) {
	cases := []struct {
		model string
		want  string
	}{
		{"claude-sonnet-4-5-20250929", "anthropic"},
		{"anthropic/claude-haiku", "anthropic"},
		{"gpt-5.2", "openai"},
		{"openai/o3-mini", "openai"},
	}
	for _, tc := range cases {
		if got := ResolveProvider(tc.model, nil); got != tc.want {
			t.Errorf("ResolveProvider(%q) = %q, want %q", tc.model, got, tc.want)
		}
	}
}

func TestResolveProvider_FallsBackToConfiguredKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Providers.OpenAI.APIKey = "sk-x"
	if got := ResolveProvider("", cfg); got != "openai" {
		t.Errorf("expected configured provider, got %q", got)
	}
	if got := ResolveProvider("", config.DefaultConfig()); got != "unknown" {
		t.Errorf("expected unknown with no keys, got %q", got)
	}
}

func TestNewFromConfig_NilWithoutCredentials(t *testing.T) {
	if p := NewFromConfig(config.DefaultConfig()); p != nil {
		t.Fatalf("expected nil provider with no credentials, got %T", p)
	}
}

func TestNewFromConfig_BuildsConfiguredBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Providers.Anthropic.APIKey = "sk-ant"
	cfg.Interpreter.Model = "claude-sonnet-4-5-20250929"

	p := NewFromConfig(cfg)
	if p == nil || p.Name() != "anthropic" {
		t.Fatalf("expected anthropic provider, got %v", p)
	}
}

func TestBuildSystemPrompt_EnhancedCarriesFailure(t *testing.T) {
	plain := BuildSystemPrompt(InterpretRequest{Text: "x"})
	if strings.Contains(plain, "previous attempt") {
		t.Error("plain prompt must not mention a previous attempt")
	}

	enhanced := BuildSystemPrompt(InterpretRequest{
		Text:          "x",
		Enhanced:      true,
		PreviousError: "requests array was empty",
	})
	if !strings.Contains(enhanced, "requests array was empty") {
		t.Error("enhanced prompt must carry the failure reason")
	}
	if !strings.HasPrefix(enhanced, plain) {
		t.Error("enhanced prompt must extend the base instructions")
	}
}
