// Package recovery turns classified pipeline failures into a driven retry
// loop: a catalog of ranked recovery strategies and an orchestrator that
// tries them in confidence order against a caller-supplied callback until one
// succeeds or the session's attempt budget is spent.
package recovery

import (
	"math"
	"time"
)

// Kind tags the strategy variants.
type Kind string

const (
	KindRetry         Kind = "retry"
	KindFallback      Kind = "fallback"
	KindEnhancePrompt Kind = "enhance_prompt"
)

// Strategy is a recovery policy descriptor. The three variants carry only
// the fields that matter to them: retry has a backoff delay, enhance_prompt
// has a retry bound, fallback has neither.
type Strategy interface {
	Kind() Kind
	Name() string
	CanRecover() bool
	Confidence() float64
	EstimatedSuccess() float64
}

// RetryStrategy repeats the failed operation after a backoff delay.
type RetryStrategy struct {
	Recoverable bool
	Conf        float64
	Estimated   float64
	Delay       time.Duration
	Attempt     int
}

func (s RetryStrategy) Kind() Kind                { return KindRetry }
func (s RetryStrategy) Name() string              { return string(KindRetry) }
func (s RetryStrategy) CanRecover() bool          { return s.Recoverable }
func (s RetryStrategy) Confidence() float64       { return s.Conf }
func (s RetryStrategy) EstimatedSuccess() float64 { return s.Estimated }

// FallbackStrategy abandons the failed path and switches to the heuristic
// extraction cascade instead of repeating the same operation.
type FallbackStrategy struct {
	Recoverable bool
	Conf        float64
	Estimated   float64
}

func (s FallbackStrategy) Kind() Kind                { return KindFallback }
func (s FallbackStrategy) Name() string              { return string(KindFallback) }
func (s FallbackStrategy) CanRecover() bool          { return s.Recoverable }
func (s FallbackStrategy) Confidence() float64       { return s.Conf }
func (s FallbackStrategy) EstimatedSuccess() float64 { return s.Estimated }

// EnhancePromptStrategy retries with enriched context rather than blindly
// repeating the same call.
type EnhancePromptStrategy struct {
	Recoverable bool
	Conf        float64
	Estimated   float64
	MaxRetries  int
}

func (s EnhancePromptStrategy) Kind() Kind                { return KindEnhancePrompt }
func (s EnhancePromptStrategy) Name() string              { return string(KindEnhancePrompt) }
func (s EnhancePromptStrategy) CanRecover() bool          { return s.Recoverable }
func (s EnhancePromptStrategy) Confidence() float64       { return s.Conf }
func (s EnhancePromptStrategy) EstimatedSuccess() float64 { return s.Estimated }

const (
	retryBaseDelay    = time.Second
	retryDecayFactor  = 0.8
	enhanceMaxRetries = 2
)

// Catalog builds strategy descriptors, honoring instance-level feature flags.
// A disabled flag forces CanRecover=false for that variant regardless of
// computed confidence.
type Catalog struct {
	EnableRetry         bool
	EnableFallback      bool
	EnableEnhancePrompt bool
}

// NewCatalog returns a catalog with every strategy enabled.
func NewCatalog() *Catalog {
	return &Catalog{
		EnableRetry:         true,
		EnableFallback:      true,
		EnableEnhancePrompt: true,
	}
}

// Retry builds a retry descriptor for the given attempt number (1-based).
// Confidence decays geometrically and the delay backs off exponentially, so
// both are strictly directional as attempts accumulate.
func (c *Catalog) Retry(baseConfidence float64, attempt int) RetryStrategy {
	if attempt < 1 {
		attempt = 1
	}
	conf := baseConfidence * math.Pow(retryDecayFactor, float64(attempt-1))
	delay := retryBaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	return RetryStrategy{
		Recoverable: c.EnableRetry,
		Conf:        conf,
		Estimated:   conf * 0.9,
		Delay:       delay,
		Attempt:     attempt,
	}
}

// Fallback builds a fallback descriptor with static confidence and no delay.
func (c *Catalog) Fallback(confidence float64) FallbackStrategy {
	return FallbackStrategy{
		Recoverable: c.EnableFallback,
		Conf:        confidence,
		Estimated:   confidence,
	}
}

// EnhancePrompt builds an enhance-prompt descriptor with a bounded retry
// budget.
func (c *Catalog) EnhancePrompt(confidence float64) EnhancePromptStrategy {
	return EnhancePromptStrategy{
		Recoverable: c.EnableEnhancePrompt,
		Conf:        confidence,
		Estimated:   confidence * 0.85,
		MaxRetries:  enhanceMaxRetries,
	}
}
