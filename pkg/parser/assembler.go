package parser

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/loadclaw/loadclaw/pkg/score"
	"github.com/loadclaw/loadclaw/pkg/spec"
)

const fallbackName = "Fallback load test"

// assemble merges tier output into the canonical spec shape, applies
// defaults, resolves the name, and computes pipeline confidence.
func assemble(text string, ext *extraction, method string) ParseResult {
	s := &spec.LoadTestSpec{
		ID:          spec.NewID(),
		Description: compactDescription(text),
		Requests:    append([]spec.RequestSpec(nil), ext.requests...),
		CreatedAt:   time.Now(),
	}

	warnings := append([]string(nil), ext.warnings...)

	if len(s.Requests) == 0 {
		// A tier can be sufficient on load parameters alone. Keep the result
		// executable anyway.
		method := ext.defaultMethod
		if method == "" {
			method = "GET"
		}
		s.Requests = []spec.RequestSpec{{Method: method, URL: "http://example.com"}}
		warnings = append(warnings, "no explicit URL found; defaulted to http://example.com")
	}

	if len(ext.headers) > 0 {
		for i := range s.Requests {
			s.Requests[i].Headers = copyHeaders(ext.headers)
		}
	}
	if ext.body != "" {
		attachBody(s.Requests, ext.body)
	}

	s.LoadPattern = buildLoadPattern(ext)
	if ext.duration != nil {
		s.Duration = *ext.duration
	}
	s.TestType = resolveTestType(ext, s.LoadPattern.Type)
	s.Name = resolveName(text, ext)

	if method == MethodPattern && ext.users == 0 && ext.rps == 0 {
		warnings = append(warnings, "no load parameters found; defaulted to 10 virtual users")
	}

	s.Normalize()

	return ParseResult{
		Spec:       s,
		Confidence: pipelineConfidence(ext, method),
		Method:     method,
		Warnings:   warnings,
	}
}

func buildLoadPattern(ext *extraction) spec.LoadPattern {
	lp := spec.LoadPattern{Type: spec.PatternConstant}
	switch {
	case ext.testType == spec.TestSpike:
		lp.Type = spec.PatternSpike
	case ext.ramping || ext.testType == spec.TestRamp:
		lp.Type = spec.PatternRampUp
	}
	if lp.Type == spec.PatternRampUp {
		ramp := spec.Duration{Value: 30, Unit: spec.UnitSeconds}
		if ext.rampUp != nil {
			ramp = *ext.rampUp
		}
		lp.RampUp = &ramp
	}
	lp.VirtualUsers = ext.users
	lp.RequestsPerSecond = ext.rps
	return lp
}

func resolveTestType(ext *extraction, pattern spec.PatternType) spec.TestType {
	if ext.testType != "" {
		return ext.testType
	}
	switch pattern {
	case spec.PatternRampUp:
		return spec.TestRamp
	case spec.PatternSpike:
		return spec.TestSpike
	default:
		return spec.TestBaseline
	}
}

// resolveName applies the fixed precedence: explicit name prefix, host of the
// first extracted URL, first non-empty input line, fixed fallback. The prefix
// is matched against the raw text here so it wins no matter which tier
// claimed the input.
func resolveName(text string, ext *extraction) string {
	name := ext.name
	if name == "" {
		if m := namePrefixRe.FindStringSubmatch(text); m != nil {
			name = strings.TrimSpace(m[1])
		}
	}
	if name != "" {
		return name
	}
	if ext.urlExplicit && len(ext.requests) > 0 {
		if u, err := url.Parse(ext.requests[0].URL); err == nil && u.Host != "" {
			return fmt.Sprintf("Load test for %s", u.Host)
		}
	}
	if line := firstNonEmptyLine(text); line != "" {
		return truncate(line, 80)
	}
	return fallbackName
}

// pipelineConfidence applies the scorer's weight model to the fields the
// cascade actually assembled. Unlike the standalone scorer it is allowed to
// exceed the 0.8 cap, but only when three or more independent fields
// corroborate each other.
func pipelineConfidence(ext *extraction, method string) float64 {
	switch method {
	case MethodTemplate:
		return 0.1
	case MethodKeyword:
		conf := 0.3
		if ext.ramping {
			conf += 0.05
		}
		return conf
	}

	sum := 0.0
	fields := 0
	add := func(present bool, weight float64) {
		if present {
			sum += weight
			fields++
		}
	}
	add(ext.urlExplicit, score.WeightURL)
	add(ext.verbFound, score.WeightVerb)
	add(ext.users > 0, score.WeightUsers)
	add(ext.rps > 0, score.WeightRPS)
	add(ext.duration != nil, score.WeightDuration)
	add(len(ext.headers) > 0, score.WeightHeaders)
	add(ext.body != "" && hasMutatingRequest(ext.requests), score.WeightBody)

	conf := sum
	if fields >= 3 {
		conf = sum + 0.05*float64(fields-2)
		if conf > 1.0 {
			conf = 1.0
		}
	} else if conf > score.Cap {
		conf = score.Cap
	}

	// Winning the tier must never report less than the keyword tier would
	// have for the same verb or trend signal.
	if ext.verbFound || ext.ramping {
		floor := 0.3
		if ext.ramping {
			floor += 0.05
		}
		if conf < floor {
			conf = floor
		}
	}
	return conf
}

func hasMutatingRequest(requests []spec.RequestSpec) bool {
	for _, r := range requests {
		switch strings.ToUpper(r.Method) {
		case "POST", "PUT", "PATCH", "DELETE":
			return true
		}
	}
	return false
}

func attachBody(requests []spec.RequestSpec, body string) {
	for i := range requests {
		switch strings.ToUpper(requests[i].Method) {
		case "POST", "PUT", "PATCH", "DELETE":
			requests[i].Body = body
			return
		}
	}
}

func copyHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

func compactDescription(text string) string {
	return truncate(strings.Join(strings.Fields(strings.TrimSpace(text)), " "), 200)
}

// truncate cuts on a rune boundary so multi-byte input never yields invalid
// UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
