// Package parser turns free-form natural-language descriptions of a load test
// into executable LoadTestSpec values. Extraction runs as a cascade of three
// tiers (pattern-matching, keyword-extraction, template-based), tried in
// order of specificity; the first tier with sufficient signal wins. The
// template tier is unconditional, so Parse is total: any input, including
// empty or garbled text, yields a usable spec.
package parser

import (
	"strings"

	"github.com/loadclaw/loadclaw/pkg/spec"
)

// Tier names reported in ParseResult.Method.
const (
	MethodPattern  = "pattern-matching"
	MethodKeyword  = "keyword-extraction"
	MethodTemplate = "template-based"
)

// ParseResult is the outcome of one cascade run. Confidence and Method are
// always set; Spec always has at least one request and a load pattern.
type ParseResult struct {
	Spec       *spec.LoadTestSpec `json:"spec"`
	Confidence float64            `json:"confidence"`
	Method     string             `json:"method"`
	Warnings   []string           `json:"warnings,omitempty"`
}

// extraction is the intermediate tier output handed to the assembler.
type extraction struct {
	requests      []spec.RequestSpec
	urlExplicit   bool   // at least one URL came from the text, not a default
	verbFound     bool   // an explicit or keyword-derived verb was seen
	defaultMethod string // verb-derived method when no URL yielded a request
	headers       map[string]string
	body          string
	users         int
	rps           int
	duration      *spec.Duration
	rampUp        *spec.Duration
	ramping       bool
	testType      spec.TestType
	name          string
	warnings      []string
}

// sufficient reports whether a tier found enough to claim the result.
func (e *extraction) sufficient() bool {
	if e == nil {
		return false
	}
	return len(e.requests) > 0 || e.users > 0 || e.rps > 0 || e.duration != nil
}

// Parse runs the extraction cascade. It never fails: internal tier
// shortfalls demote silently to the next tier, and the template tier is
// always reachable.
func Parse(text string) ParseResult {
	if ext := extractPattern(text); ext.sufficient() {
		return assemble(text, ext, MethodPattern)
	}
	if ext := extractKeyword(text); ext.sufficient() {
		return assemble(text, ext, MethodKeyword)
	}
	return assemble(text, extractTemplate(), MethodTemplate)
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
