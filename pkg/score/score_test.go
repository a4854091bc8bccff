package score

import (
	"strings"
	"testing"
)

func TestScore_ZeroWhenNoIndicator(t *testing.T) {
	cases := []string{
		"",
		"   \n\t  ",
		"hello there, how are you today",
		"the quick brown fox jumps over the lazy dog",
	}
	for _, text := range cases {
		if got := Score(text); got != 0 {
			t.Errorf("Score(%q) = %v, want exactly 0", text, got)
		}
	}
}

func TestScore_NeverExceedsCap(t *testing.T) {
	// Every signal present at once.
	text := strings.Join([]string{
		"name: full signal test",
		"POST https://api.example.com/orders with 100 users at 50 rps for 5 minutes",
		"Authorization: Bearer abc",
		`body: {"sku": "A-1"}`,
	}, "\n")

	got := Score(text)
	if got > Cap {
		t.Fatalf("Score = %v, must never exceed %v", got, Cap)
	}
	if got != Cap {
		t.Fatalf("Score = %v, expected cap %v with all signals present", got, Cap)
	}
}

func TestScore_Monotonicity(t *testing.T) {
	// Each added signal must not decrease the score.
	steps := []string{
		"run a load test",
		"run a load test against https://api.example.com",
		"GET a load test against https://api.example.com",
		"GET a load test against https://api.example.com with 50 users",
		"GET a load test against https://api.example.com with 50 users for 2 minutes",
	}
	prev := -1.0
	for _, text := range steps {
		got := Score(text)
		if got < prev {
			t.Fatalf("Score(%q) = %v, decreased from %v", text, got, prev)
		}
		prev = got
	}
}

func TestScore_BodyRequiresMutatingVerb(t *testing.T) {
	withVerb := `POST https://example.com {"a": 1}`
	withoutVerb := `https://example.com {"a": 1}`
	if !HasBodyOnMutation(withVerb) {
		t.Error("expected body signal with POST present")
	}
	if HasBodyOnMutation(withoutVerb) {
		t.Error("body without mutating verb should carry no body signal")
	}
	if Score(withVerb) <= Score(withoutVerb) {
		t.Errorf("body on mutation should add weight: %v vs %v", Score(withVerb), Score(withoutVerb))
	}
}

func TestHasSignal_Gate(t *testing.T) {
	if HasSignal("just words", 0.1) {
		t.Error("zero-signal text should not pass the gate")
	}
	if !HasSignal("GET https://api.example.com/users", 0.3) {
		t.Error("verb+url should pass a 0.3 gate")
	}
}

func TestSignals_TableNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, sig := range Signals {
		if seen[sig.Name] {
			t.Errorf("duplicate signal name %q", sig.Name)
		}
		seen[sig.Name] = true
		if sig.Weight <= 0 {
			t.Errorf("signal %q has non-positive weight", sig.Name)
		}
	}
}
