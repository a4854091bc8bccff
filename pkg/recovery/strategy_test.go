package recovery

import (
	"testing"
)

func TestCatalog_RetryBackoffMonotonicity(t *testing.T) {
	cat := NewCatalog()

	prev := cat.Retry(0.9, 1)
	for attempt := 2; attempt <= 5; attempt++ {
		cur := cat.Retry(0.9, attempt)
		if cur.Delay <= prev.Delay {
			t.Fatalf("attempt %d delay %v not strictly greater than %v", attempt, cur.Delay, prev.Delay)
		}
		if cur.Conf >= prev.Conf {
			t.Fatalf("attempt %d confidence %v not strictly below %v", attempt, cur.Conf, prev.Conf)
		}
		prev = cur
	}
}

func TestCatalog_RetryClampsAttempt(t *testing.T) {
	cat := NewCatalog()
	if got := cat.Retry(0.9, 0); got.Conf != 0.9 {
		t.Errorf("attempt 0 should behave as attempt 1, got confidence %v", got.Conf)
	}
}

func TestCatalog_FallbackHasNoDelay(t *testing.T) {
	cat := NewCatalog()
	s := cat.Fallback(0.7)
	if s.Conf != 0.7 || !s.Recoverable {
		t.Fatalf("unexpected fallback: %+v", s)
	}
	if s.Kind() != KindFallback || s.Name() != "fallback" {
		t.Fatalf("unexpected kind/name: %v %q", s.Kind(), s.Name())
	}
}

func TestCatalog_EnhancePromptBoundedRetries(t *testing.T) {
	cat := NewCatalog()
	s := cat.EnhancePrompt(0.6)
	if s.MaxRetries != 2 {
		t.Errorf("expected MaxRetries 2, got %d", s.MaxRetries)
	}
	if s.Confidence() != 0.6 {
		t.Errorf("expected confidence 0.6, got %v", s.Confidence())
	}
}

func TestCatalog_FeatureFlagsForceUnrecoverable(t *testing.T) {
	cat := &Catalog{EnableRetry: false, EnableFallback: false, EnableEnhancePrompt: false}

	if cat.Retry(0.99, 1).CanRecover() {
		t.Error("disabled retry factory must not produce recoverable strategies")
	}
	if cat.Fallback(0.99).CanRecover() {
		t.Error("disabled fallback factory must not produce recoverable strategies")
	}
	if cat.EnhancePrompt(0.99).CanRecover() {
		t.Error("disabled enhance factory must not produce recoverable strategies")
	}
}
