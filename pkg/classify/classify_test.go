package classify

import (
	"errors"
	"testing"

	"github.com/loadclaw/loadclaw/pkg/recovery"
)

func TestClassify_RuleTable(t *testing.T) {
	c := New(recovery.NewCatalog())

	cases := []struct {
		stage    Stage
		message  string
		wantType string
		wantKind recovery.Kind
	}{
		{StageInput, "unsupported input format", "invalid_format", recovery.KindFallback},
		{StageInput, "malformed request text", "malformed_input", recovery.KindFallback},
		{StageInput, "missing target url", "missing_data", recovery.KindFallback},
		{StageAI, "429 rate limit exceeded", "rate_limit", recovery.KindRetry},
		{StageAI, "request timeout after 30s", "ai_timeout", recovery.KindRetry},
		{StageAI, "network unreachable", "network_error", recovery.KindRetry},
		{StageAI, "invalid response payload", "invalid_ai_response", recovery.KindEnhancePrompt},
		{StageValidation, "schema validation: missing requests", "schema_validation_error", recovery.KindEnhancePrompt},
	}

	for _, tc := range cases {
		pe := c.Classify(errors.New(tc.message), tc.stage, nil)
		if pe.Type != tc.wantType {
			t.Errorf("Classify(%q, %s).Type = %q, want %q", tc.message, tc.stage, pe.Type, tc.wantType)
			continue
		}
		if pe.Stage != tc.stage {
			t.Errorf("stage = %q, want %q", pe.Stage, tc.stage)
		}
		if pe.Strategy == nil || pe.Strategy.Kind() != tc.wantKind {
			t.Errorf("Classify(%q).Strategy kind = %v, want %v", tc.message, pe.Strategy, tc.wantKind)
		}
		if !pe.Strategy.CanRecover() {
			t.Errorf("Classify(%q) strategy should be recoverable", tc.message)
		}
		if len(pe.Suggestions) == 0 {
			t.Errorf("Classify(%q) carries no suggestions", tc.message)
		}
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	c := New(recovery.NewCatalog())

	// Message matches both "timeout" and "invalid"; the timeout rule is
	// earlier in the AI table.
	pe := c.Classify(errors.New("invalid state after timeout"), StageAI, nil)
	if pe.Type != "ai_timeout" {
		t.Fatalf("expected first matching rule to win, got %q", pe.Type)
	}
}

func TestClassify_MatchingIsCaseInsensitive(t *testing.T) {
	c := New(recovery.NewCatalog())
	pe := c.Classify(errors.New("Rate Limit hit on upstream"), StageAI, nil)
	if pe.Type != "rate_limit" {
		t.Fatalf("expected rate_limit, got %q", pe.Type)
	}
}

func TestClassify_UnmatchedDegradesToStageGeneric(t *testing.T) {
	c := New(recovery.NewCatalog())

	for _, stage := range []Stage{StageInput, StageAI, StageValidation} {
		pe := c.Classify(errors.New("some entirely novel failure"), stage, nil)
		want := string(stage) + "_processing_error"
		if pe.Type != want {
			t.Errorf("stage %s generic type = %q, want %q", stage, pe.Type, want)
		}
		if pe.Strategy.Kind() != recovery.KindRetry || !pe.Strategy.CanRecover() {
			t.Errorf("stage %s generic strategy should be a recoverable retry, got %+v", stage, pe.Strategy)
		}
		if len(pe.Suggestions) == 0 {
			t.Errorf("stage %s generic error carries no suggestions", stage)
		}
	}
}

func TestClassify_UnknownStage(t *testing.T) {
	c := New(recovery.NewCatalog())
	pe := c.Classify(errors.New("boom"), Stage("mystery"), nil)
	if pe.Type != "unknown_error" {
		t.Fatalf("expected unknown_error, got %q", pe.Type)
	}
}

func TestClassify_PreservesContextAndOriginal(t *testing.T) {
	c := New(recovery.NewCatalog())
	orig := errors.New("network down")
	ctx := map[string]interface{}{"input": "GET https://example.com"}

	pe := c.Classify(orig, StageAI, ctx)
	if !errors.Is(pe, orig) {
		t.Error("expected the original error to be wrapped")
	}
	if pe.Context["input"] != "GET https://example.com" {
		t.Errorf("context not preserved: %+v", pe.Context)
	}
}

func TestClassify_NilError(t *testing.T) {
	c := New(recovery.NewCatalog())
	pe := c.Classify(nil, StageInput, nil)
	if pe.Type != "input_processing_error" {
		t.Fatalf("expected generic type for nil error, got %q", pe.Type)
	}
	if pe.Message == "" {
		t.Error("expected a placeholder message")
	}
}

func TestClassify_HonorsCatalogFlags(t *testing.T) {
	cat := recovery.NewCatalog()
	cat.EnableFallback = false
	c := New(cat)

	pe := c.Classify(errors.New("malformed text"), StageInput, nil)
	if pe.Strategy.CanRecover() {
		t.Fatal("disabled fallback must yield an unrecoverable default strategy")
	}
}

func TestParseError_ErrorString(t *testing.T) {
	c := New(recovery.NewCatalog())
	pe := c.Classify(errors.New("429 rate limit"), StageAI, nil)
	want := "ai/rate_limit: 429 rate limit"
	if pe.Error() != want {
		t.Fatalf("Error() = %q, want %q", pe.Error(), want)
	}
}
