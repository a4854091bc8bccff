// Package classify maps raw pipeline failures onto a typed error taxonomy.
// Each pipeline stage has an ordered rule table of message substrings;
// evaluation is top-to-bottom, first match wins, and unmatched errors degrade
// to a stage-generic type instead of propagating raw text to callers.
package classify

import (
	"fmt"
	"strings"

	"github.com/loadclaw/loadclaw/pkg/recovery"
)

// Stage identifies where in the pipeline a failure occurred.
type Stage string

const (
	StageInput      Stage = "input"
	StageAI         Stage = "ai"
	StageValidation Stage = "validation"
)

// ParseError is a classified failure. Context and the original error are
// preserved verbatim for diagnostics; only Message and Suggestions are meant
// for end users.
type ParseError struct {
	Stage       Stage
	Type        string
	Message     string
	Suggestions []string
	Strategy    recovery.Strategy
	Context     map[string]interface{}
	Err         error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s/%s: %s", e.Stage, e.Type, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DefaultStrategy satisfies recovery.ClassifiedError.
func (e *ParseError) DefaultStrategy() recovery.Strategy {
	return e.Strategy
}

// Rule maps a message substring to an error type and a default strategy
// template built against the classifier's catalog.
type Rule struct {
	Substring string
	Type      string
	Build     func(cat *recovery.Catalog) recovery.Strategy
}

// Per-stage rule tables, evaluated top-to-bottom. Exported so the taxonomy
// is inspectable rather than buried in conditionals.
var (
	InputRules = []Rule{
		{"format", "invalid_format", func(c *recovery.Catalog) recovery.Strategy { return c.Fallback(0.8) }},
		{"malformed", "malformed_input", func(c *recovery.Catalog) recovery.Strategy { return c.Fallback(0.7) }},
		{"missing", "missing_data", func(c *recovery.Catalog) recovery.Strategy { return c.Fallback(0.6) }},
	}

	AIRules = []Rule{
		{"rate limit", "rate_limit", func(c *recovery.Catalog) recovery.Strategy { return c.Retry(0.9, 1) }},
		{"timeout", "ai_timeout", func(c *recovery.Catalog) recovery.Strategy { return c.Retry(0.8, 1) }},
		{"network", "network_error", func(c *recovery.Catalog) recovery.Strategy { return c.Retry(0.75, 1) }},
		{"invalid", "invalid_ai_response", func(c *recovery.Catalog) recovery.Strategy { return c.EnhancePrompt(0.7) }},
	}

	ValidationRules = []Rule{
		{"schema", "schema_validation_error", func(c *recovery.Catalog) recovery.Strategy { return c.EnhancePrompt(0.7) }},
	}
)

var suggestions = map[string][]string{
	"invalid_format": {
		"Describe the test in plain sentences, e.g. \"GET https://api.example.com with 50 users\".",
		"Include at least one URL and an HTTP method.",
	},
	"malformed_input": {
		"Remove stray control characters or unbalanced braces from the description.",
		"Try rephrasing the request in one or two sentences.",
	},
	"missing_data": {
		"Mention the target URL, the number of users, and how long the test should run.",
	},
	"rate_limit": {
		"The AI interpreter is rate limited; the request will be retried with backoff.",
		"Reduce request frequency or try again in a minute.",
	},
	"ai_timeout": {
		"The AI interpreter timed out; the request will be retried.",
		"Shorter descriptions are interpreted faster.",
	},
	"network_error": {
		"Check network connectivity to the AI interpreter endpoint.",
	},
	"invalid_ai_response": {
		"The AI interpreter returned an unusable answer; it will be re-asked with a clarified prompt.",
	},
	"schema_validation_error": {
		"The generated spec did not validate; it will be regenerated with stricter instructions.",
		"Add any missing detail (URL, method, duration) to the description.",
	},
}

var genericSuggestions = []string{
	"The failure did not match a known cause; a plain retry will be attempted.",
	"If the problem persists, rephrase the description or fall back to `parse`.",
}

// Classifier evaluates the rule tables against a shared strategy catalog so
// default strategies honor the catalog's feature flags.
type Classifier struct {
	catalog *recovery.Catalog
}

func New(catalog *recovery.Catalog) *Classifier {
	if catalog == nil {
		catalog = recovery.NewCatalog()
	}
	return &Classifier{catalog: catalog}
}

// Classify maps a raw failure plus its pipeline stage onto a typed,
// recoverable ParseError. Exactly one (stage, type) pair is assigned.
func (c *Classifier) Classify(err error, stage Stage, context map[string]interface{}) *ParseError {
	pe := &ParseError{
		Stage:   stage,
		Context: context,
		Err:     err,
	}

	msg := ""
	if err != nil {
		msg = err.Error()
	}
	lower := strings.ToLower(msg)

	for _, rule := range rulesForStage(stage) {
		if strings.Contains(lower, rule.Substring) {
			pe.Type = rule.Type
			pe.Message = msg
			pe.Suggestions = suggestionsFor(rule.Type)
			pe.Strategy = rule.Build(c.catalog)
			return pe
		}
	}

	// Unmatched failures degrade to a stage-generic type rather than
	// surfacing raw error text as a taxonomy tag.
	pe.Type = genericType(stage)
	pe.Message = msg
	if pe.Message == "" {
		pe.Message = "unclassified failure"
	}
	pe.Suggestions = genericSuggestions
	pe.Strategy = c.catalog.Retry(0.5, 1)
	return pe
}

func rulesForStage(stage Stage) []Rule {
	switch stage {
	case StageInput:
		return InputRules
	case StageAI:
		return AIRules
	case StageValidation:
		return ValidationRules
	default:
		return nil
	}
}

func genericType(stage Stage) string {
	switch stage {
	case StageInput, StageAI, StageValidation:
		return string(stage) + "_processing_error"
	default:
		return "unknown_error"
	}
}

func suggestionsFor(errType string) []string {
	if s, ok := suggestions[errType]; ok {
		out := make([]string, len(s))
		copy(out, s)
		return out
	}
	return genericSuggestions
}
