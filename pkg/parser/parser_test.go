package parser

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/loadclaw/loadclaw/pkg/spec"
)

func TestParse_ScenarioSingleGet(t *testing.T) {
	res := Parse("GET https://api.example.com/users")

	if res.Method != MethodPattern {
		t.Fatalf("expected %q, got %q", MethodPattern, res.Method)
	}
	if len(res.Spec.Requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(res.Spec.Requests))
	}
	req := res.Spec.Requests[0]
	if req.Method != "GET" || req.URL != "https://api.example.com/users" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if res.Spec.LoadPattern.Type != spec.PatternConstant {
		t.Fatalf("expected constant pattern, got %q", res.Spec.LoadPattern.Type)
	}
}

func TestParse_EmptyInputFallsToTemplate(t *testing.T) {
	res := Parse("")

	if res.Method != MethodTemplate {
		t.Fatalf("expected template tier, got %q", res.Method)
	}
	if len(res.Spec.Requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(res.Spec.Requests))
	}
	req := res.Spec.Requests[0]
	if req.Method != "GET" || req.URL != "http://example.com" {
		t.Fatalf("unexpected template request: %+v", req)
	}
	if res.Confidence >= 0.3 {
		t.Errorf("template confidence should be < 0.3, got %v", res.Confidence)
	}
	if len(res.Warnings) == 0 {
		t.Error("template result must carry a warning")
	}
	if res.Spec.Name != fallbackName {
		t.Errorf("expected %q, got %q", fallbackName, res.Spec.Name)
	}
}

func TestParse_Totality(t *testing.T) {
	inputs := []string{
		"",
		"   \n\n\t ",
		"\x00\x01\x02 garbled \xff control bytes",
		strings.Repeat("lorem ipsum dolor sit amet ", 500),
		strings.Repeat("GET https://api.example.com/x ", 400),
		"{{{{::}}}} ]][[ %% http:// ::: body:",
	}
	for _, in := range inputs {
		res := Parse(in)
		if res.Spec == nil || len(res.Spec.Requests) == 0 {
			t.Fatalf("Parse(%.30q) returned no requests", in)
		}
		if res.Spec.LoadPattern.Type == "" {
			t.Fatalf("Parse(%.30q) returned no load pattern", in)
		}
		if res.Method == "" {
			t.Fatalf("Parse(%.30q) returned no method", in)
		}
		if err := res.Spec.Validate(); err != nil {
			t.Fatalf("Parse(%.30q) produced invalid spec: %v", in, err)
		}
	}
}

func TestParse_OrderedMultiRequestExtraction(t *testing.T) {
	res := Parse("First POST https://api.example.com/login then GET https://api.example.com/me then DELETE https://api.example.com/session")

	if res.Method != MethodPattern {
		t.Fatalf("expected pattern tier, got %q", res.Method)
	}
	want := []struct{ method, url string }{
		{"POST", "https://api.example.com/login"},
		{"GET", "https://api.example.com/me"},
		{"DELETE", "https://api.example.com/session"},
	}
	if len(res.Spec.Requests) != len(want) {
		t.Fatalf("expected %d requests, got %d: %+v", len(want), len(res.Spec.Requests), res.Spec.Requests)
	}
	for i, w := range want {
		got := res.Spec.Requests[i]
		if got.Method != w.method || got.URL != w.url {
			t.Errorf("request %d = %s %s, want %s %s", i, got.Method, got.URL, w.method, w.url)
		}
	}
}

func TestParse_TierPrecedence(t *testing.T) {
	cases := []struct {
		input string
		tier  string
	}{
		{"GET https://api.example.com/users", MethodPattern},
		{"hit https://api.example.com with 50 users", MethodPattern},
		{"50 users for 2 minutes", MethodPattern},
		{"fetch the product catalog", MethodKeyword},
		{"gradually increase traffic", MethodKeyword},
		{"zzzz qqqq wwww", MethodTemplate},
		{"", MethodTemplate},
	}
	for _, tc := range cases {
		if res := Parse(tc.input); res.Method != tc.tier {
			t.Errorf("Parse(%q).Method = %q, want %q", tc.input, res.Method, tc.tier)
		}
	}
}

func TestParse_ConfidenceMonotonicity(t *testing.T) {
	steps := []string{
		"GET https://api.example.com/users",
		"GET https://api.example.com/users with 50 users",
		"GET https://api.example.com/users with 50 users at 20 rps",
		"GET https://api.example.com/users with 50 users at 20 rps for 3 minutes",
	}
	prev := -1.0
	for _, in := range steps {
		got := Parse(in).Confidence
		if got < prev {
			t.Fatalf("confidence decreased at %q: %v < %v", in, got, prev)
		}
		prev = got
	}
}

func TestParse_ConfidenceMonotonicityAcrossTiers(t *testing.T) {
	// Adding a recognized signal can promote the input to a higher tier;
	// the promotion must never lower the reported confidence.
	pairs := [][2]string{
		{"fetch the product catalog", "fetch the product catalog with 50 users"},
		{"gradually increase traffic", "gradually increase traffic to 50 users"},
		{"fetch the product catalog with 50 users", "fetch the product catalog with 50 users for 2 minutes"},
	}
	for _, p := range pairs {
		base := Parse(p[0])
		more := Parse(p[1])
		if more.Confidence < base.Confidence {
			t.Errorf("confidence decreased: Parse(%q)=%v (%s) -> Parse(%q)=%v (%s)",
				p[0], base.Confidence, base.Method, p[1], more.Confidence, more.Method)
		}
	}
}

func TestParse_ConversationalVerbCarriesIntoPatternTier(t *testing.T) {
	res := Parse("create an order at https://api.example.com/orders with 20 users")
	if res.Method != MethodPattern {
		t.Fatalf("expected pattern tier, got %q", res.Method)
	}
	if got := res.Spec.Requests[0].Method; got != "POST" {
		t.Errorf("request method = %q, want POST from the conversational verb", got)
	}

	res = Parse("create a new order with 20 users")
	if res.Method != MethodPattern {
		t.Fatalf("expected pattern tier, got %q", res.Method)
	}
	if got := res.Spec.Requests[0].Method; got != "POST" {
		t.Errorf("defaulted request method = %q, want POST", got)
	}
	if res.Confidence < 0.3 {
		t.Errorf("confidence = %v, want at least the keyword-tier 0.3", res.Confidence)
	}
}

func TestParse_MultiFieldCorroborationExceedsScorerCap(t *testing.T) {
	text := strings.Join([]string{
		"POST https://api.example.com/orders with 100 users at 50 rps for 5 minutes",
		"Content-Type: application/json",
		`body: {"sku": "A-1"}`,
	}, "\n")
	res := Parse(text)
	if res.Confidence <= 0.8 {
		t.Fatalf("expected corroborated confidence above the scorer cap, got %v", res.Confidence)
	}
	if res.Confidence > 1.0 {
		t.Fatalf("confidence must stay within [0,1], got %v", res.Confidence)
	}
}

func TestParse_BareHostInference(t *testing.T) {
	res := Parse("run a quick test against server api.example.com with 5 users")
	if res.Method != MethodPattern {
		t.Fatalf("expected pattern tier, got %q", res.Method)
	}
	if res.Spec.Requests[0].URL != "http://api.example.com" {
		t.Fatalf("expected inferred host url, got %q", res.Spec.Requests[0].URL)
	}
}

func TestParse_LoadParameters(t *testing.T) {
	res := Parse("GET https://shop.example.com/catalog with 200 virtual users at 80 rps for 10 minutes")

	lp := res.Spec.LoadPattern
	if lp.VirtualUsers != 200 {
		t.Errorf("virtual users = %d, want 200", lp.VirtualUsers)
	}
	if lp.RequestsPerSecond != 80 {
		t.Errorf("rps = %d, want 80", lp.RequestsPerSecond)
	}
	if res.Spec.Duration.Value != 10 || res.Spec.Duration.Unit != spec.UnitMinutes {
		t.Errorf("duration = %+v, want 10 minutes", res.Spec.Duration)
	}
}

func TestParse_HeadersAndBody(t *testing.T) {
	text := strings.Join([]string{
		"POST https://api.example.com/orders",
		"Authorization: Bearer token123",
		"X-Api-Key: secret",
		`body: {"sku": "A-1", "qty": 2}`,
	}, "\n")
	res := Parse(text)

	req := res.Spec.Requests[0]
	if req.Headers["Authorization"] != "Bearer token123" {
		t.Errorf("missing Authorization header, got %+v", req.Headers)
	}
	if req.Headers["X-Api-Key"] != "secret" {
		t.Errorf("missing X-Api-Key header, got %+v", req.Headers)
	}
	if !strings.Contains(req.Body, `"sku"`) {
		t.Errorf("body not attached to mutating request: %q", req.Body)
	}
}

func TestParse_ProseLinesAreNotHeaders(t *testing.T) {
	res := Parse("goal: stress the api\nGET https://api.example.com/ping")
	if len(res.Spec.Requests[0].Headers) != 0 {
		t.Fatalf("prose line misread as header: %+v", res.Spec.Requests[0].Headers)
	}
}

func TestParse_TestTypeAndRamp(t *testing.T) {
	res := Parse("spike test: POST https://api.example.com/checkout with 500 users")
	if res.Spec.TestType != spec.TestSpike {
		t.Errorf("test type = %q, want spike", res.Spec.TestType)
	}
	if res.Spec.LoadPattern.Type != spec.PatternSpike {
		t.Errorf("pattern = %q, want spike", res.Spec.LoadPattern.Type)
	}

	res = Parse("GET https://api.example.com/x with 50 users, ramp up over 2 minutes, run for 10 minutes")
	lp := res.Spec.LoadPattern
	if lp.Type != spec.PatternRampUp {
		t.Fatalf("pattern = %q, want ramp-up", lp.Type)
	}
	if lp.RampUp == nil || lp.RampUp.Value != 2 || lp.RampUp.Unit != spec.UnitMinutes {
		t.Fatalf("ramp-up window = %+v, want 2 minutes", lp.RampUp)
	}
	if res.Spec.Duration.Value != 10 || res.Spec.Duration.Unit != spec.UnitMinutes {
		t.Fatalf("duration = %+v, want 10 minutes", res.Spec.Duration)
	}
}

func TestResolveName_Precedence(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"name: Checkout burst\nGET https://api.example.com/checkout", "Checkout burst"},
		{"test: nightly soak\nGET https://api.example.com/ping", "nightly soak"},
		{"GET https://api.example.com/users", "Load test for api.example.com"},
		{"fetch the product catalog", "fetch the product catalog"},
		{"", fallbackName},
	}
	for _, tc := range cases {
		if got := Parse(tc.input).Spec.Name; got != tc.want {
			t.Errorf("Parse(%q).Spec.Name = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestResolveName_PrefixIndependentOfTier(t *testing.T) {
	cases := []struct {
		input string
		tier  string
		want  string
	}{
		{"name: Nightly soak\nfetch the product catalog", MethodKeyword, "Nightly soak"},
		{"name: Placeholder run\nzzzz qqqq", MethodTemplate, "Placeholder run"},
		{"test: Checkout burst\nGET https://api.example.com/checkout", MethodPattern, "Checkout burst"},
	}
	for _, tc := range cases {
		res := Parse(tc.input)
		if res.Method != tc.tier {
			t.Errorf("Parse(%q).Method = %q, want %q", tc.input, res.Method, tc.tier)
			continue
		}
		if res.Spec.Name != tc.want {
			t.Errorf("Parse(%q).Spec.Name = %q, want %q", tc.input, res.Spec.Name, tc.want)
		}
	}
}

func TestParse_TruncationKeepsValidUTF8(t *testing.T) {
	res := Parse(strings.Repeat("測", 100))
	if !utf8.ValidString(res.Spec.Name) {
		t.Errorf("name is not valid UTF-8: %q", res.Spec.Name)
	}
	if len(res.Spec.Name) > 80 {
		t.Errorf("name length = %d bytes, want <= 80", len(res.Spec.Name))
	}
	if !utf8.ValidString(res.Spec.Description) {
		t.Errorf("description is not valid UTF-8: %q", res.Spec.Description)
	}
}

func TestParse_KeywordVerbMapping(t *testing.T) {
	cases := []struct {
		input  string
		method string
	}{
		{"create a new order on the shop", "POST"},
		{"fetch the product catalog", "GET"},
		{"update customer records", "PUT"},
		{"remove stale sessions", "DELETE"},
	}
	for _, tc := range cases {
		res := Parse(tc.input)
		if res.Method != MethodKeyword {
			t.Errorf("Parse(%q).Method = %q, want keyword tier", tc.input, res.Method)
			continue
		}
		if got := res.Spec.Requests[0].Method; got != tc.method {
			t.Errorf("Parse(%q) request method = %q, want %q", tc.input, got, tc.method)
		}
	}
}

func TestParse_KeywordTrendWordsYieldRampPattern(t *testing.T) {
	res := Parse("gradually increase traffic to the catalog")
	if res.Method != MethodKeyword {
		t.Fatalf("expected keyword tier, got %q", res.Method)
	}
	if res.Spec.LoadPattern.Type != spec.PatternRampUp {
		t.Fatalf("expected ramp-up pattern, got %q", res.Spec.LoadPattern.Type)
	}
}
