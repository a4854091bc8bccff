// Package interpreter is the top of the generation pipeline. It asks an AI
// provider to interpret a natural-language load-test description, decodes and
// validates the answer, and routes every failure through classification and
// the recovery orchestrator. The heuristic extraction cascade backs the whole
// thing, so generation is total: with no provider, no signal, or an exhausted
// recovery budget the caller still gets a spec.
package interpreter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/loadclaw/loadclaw/pkg/audit"
	"github.com/loadclaw/loadclaw/pkg/classify"
	"github.com/loadclaw/loadclaw/pkg/config"
	"github.com/loadclaw/loadclaw/pkg/logger"
	"github.com/loadclaw/loadclaw/pkg/parser"
	"github.com/loadclaw/loadclaw/pkg/providers"
	"github.com/loadclaw/loadclaw/pkg/recovery"
	"github.com/loadclaw/loadclaw/pkg/score"
	"github.com/loadclaw/loadclaw/pkg/spec"
)

// MethodAI is reported when the provider's answer was used directly.
const MethodAI = "ai-interpretation"

// aiConfidence is the confidence assigned to a provider answer that decoded
// and validated on the first try. Recovered answers carry the confidence of
// the strategy that produced them instead.
const aiConfidence = 0.9

// fallbackCandidateConfidence ranks the always-available heuristic fallback
// below every classified default strategy, so it only runs when the targeted
// strategies are exhausted or disabled.
const fallbackCandidateConfidence = 0.5

// Result is the outcome of one generation run.
type Result struct {
	Spec         *spec.LoadTestSpec `json:"spec" yaml:"spec"`
	Confidence   float64            `json:"confidence" yaml:"confidence"`
	Method       string             `json:"method" yaml:"method"`
	Warnings     []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	RecoveryPath []string           `json:"recovery_path,omitempty" yaml:"recovery_path,omitempty"`
}

// Interpreter drives the provider-backed generation pipeline.
type Interpreter struct {
	cfg          *config.Config
	provider     providers.Provider
	catalog      *recovery.Catalog
	classifier   *classify.Classifier
	orchestrator *recovery.Orchestrator
	sink         audit.Sink
}

// New builds an interpreter from config. A nil provider puts the interpreter
// in offline mode, where every call goes straight to the heuristic cascade.
func New(cfg *config.Config, provider providers.Provider, sink audit.Sink) *Interpreter {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if sink == nil {
		sink = audit.NopSink{}
	}
	catalog := &recovery.Catalog{
		EnableRetry:         cfg.Recovery.EnableRetry,
		EnableFallback:      cfg.Recovery.EnableFallback,
		EnableEnhancePrompt: cfg.Recovery.EnableEnhancePrompt,
	}
	return &Interpreter{
		cfg:          cfg,
		provider:     provider,
		catalog:      catalog,
		classifier:   classify.New(catalog),
		orchestrator: recovery.NewOrchestrator(recovery.WithMaxAttempts(cfg.Recovery.MaxAttempts)),
		sink:         sink,
	}
}

// Generate interprets text under a fresh session.
func (i *Interpreter) Generate(ctx context.Context, text string) Result {
	return i.GenerateSession(ctx, spec.NewID(), text)
}

// GenerateSession interprets text, counting recovery attempts against the
// given session. Callers that re-submit the same input should reuse the
// session ID so the retry ceiling applies across submissions.
func (i *Interpreter) GenerateSession(ctx context.Context, sessionID, text string) Result {
	if i.provider == nil {
		return i.heuristic(text, "offline")
	}
	if !parserWorthy(text, i.cfg.Interpreter.SignalThreshold) {
		// Too little signal to justify a provider round trip.
		return i.heuristic(text, "below_signal_threshold")
	}

	s, err := i.attemptAI(ctx, text, false, "")
	if err == nil {
		i.audit(audit.Event{
			Stage:      "interpret",
			SpecID:     s.ID,
			Method:     MethodAI,
			Confidence: aiConfidence,
		})
		return Result{Spec: s, Confidence: aiConfidence, Method: MethodAI}
	}

	logger.WarnCF("interpreter", "AI interpretation failed, entering recovery", map[string]interface{}{
		"session": sessionID,
		"error":   err.Error(),
	})
	return i.recover(ctx, sessionID, text, err)
}

// recover classifies the failure and walks the strategy candidates until one
// produces a validated spec.
func (i *Interpreter) recover(ctx context.Context, sessionID, text string, cause error) Result {
	stage := stageOf(cause)
	cerr := i.classifier.Classify(cause, stage, map[string]interface{}{
		"input_length": len(text),
	})

	var fallbackRes *parser.ParseResult

	rctx := recovery.Context{
		SessionID:     sessionID,
		OriginalInput: text,
		Available:     []recovery.Strategy{i.catalog.Fallback(fallbackCandidateConfidence)},
	}

	res := i.orchestrator.Recover(ctx, cerr, rctx, func(ctx context.Context, strategy recovery.Strategy) (*spec.LoadTestSpec, error) {
		switch st := strategy.(type) {
		case recovery.RetryStrategy:
			return i.attemptAI(ctx, text, false, "")
		case recovery.EnhancePromptStrategy:
			budget := st.MaxRetries
			if budget < 1 {
				budget = 1
			}
			lastErr := cause
			for n := 0; n < budget; n++ {
				s, err := i.attemptAI(ctx, text, true, lastErr.Error())
				if err == nil {
					return s, nil
				}
				lastErr = err
			}
			return nil, lastErr
		case recovery.FallbackStrategy:
			pr := parser.Parse(text)
			fallbackRes = &pr
			return pr.Spec, nil
		default:
			return nil, fmt.Errorf("no handler for strategy %s", strategy.Name())
		}
	})

	out := Result{
		Confidence:   res.Confidence,
		Method:       MethodAI,
		RecoveryPath: res.Path,
	}
	if res.Success {
		out.Spec = res.Spec
		if fallbackRes != nil && len(res.Path) > 0 && res.Path[len(res.Path)-1] == string(recovery.KindFallback) {
			out.Method = fallbackRes.Method
			out.Warnings = fallbackRes.Warnings
		}
		i.audit(audit.Event{
			Stage:        "recovery",
			SpecID:       out.Spec.ID,
			Method:       out.Method,
			Confidence:   out.Confidence,
			RecoveryPath: res.Path,
		})
		return out
	}

	// Recovery exhausted or cut off at the ceiling. The cascade is still
	// total, so hand back a heuristic spec with the failure on record.
	i.audit(audit.Event{
		Stage:        "recovery",
		RecoveryPath: res.Path,
		Error:        errString(res.Err),
	})
	hres := i.heuristic(text, "recovery_exhausted")
	hres.RecoveryPath = res.Path
	return hres
}

// heuristic runs the deterministic extraction cascade.
func (i *Interpreter) heuristic(text, reason string) Result {
	pr := parser.Parse(text)
	i.audit(audit.Event{
		Stage:      "heuristic",
		SpecID:     pr.Spec.ID,
		Method:     pr.Method,
		Confidence: pr.Confidence,
		Metadata:   map[string]interface{}{"reason": reason},
	})
	return Result{
		Spec:       pr.Spec,
		Confidence: pr.Confidence,
		Method:     pr.Method,
		Warnings:   pr.Warnings,
	}
}

// attemptAI performs one full provider round trip: call, decode, validate.
func (i *Interpreter) attemptAI(ctx context.Context, text string, enhanced bool, previousError string) (*spec.LoadTestSpec, error) {
	model := i.cfg.Interpreter.Model
	if model == "" {
		model = i.provider.DefaultModel()
	}

	raw, err := i.provider.Interpret(ctx, providers.InterpretRequest{
		Text:          text,
		Model:         model,
		MaxTokens:     i.cfg.Interpreter.MaxTokens,
		Enhanced:      enhanced,
		PreviousError: previousError,
	})
	if err != nil {
		return nil, fmt.Errorf("provider call: %w", err)
	}

	s, err := decodeSpec(raw)
	if err != nil {
		return nil, err
	}

	s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// decodeSpec pulls a LoadTestSpec out of a raw model answer. Markdown fences
// and surrounding prose are tolerated; shape near-misses (a bare number for
// duration, string-typed fields) are recovered field by field.
func decodeSpec(raw string) (*spec.LoadTestSpec, error) {
	body := extractJSONObject(raw)
	if body == "" || !gjson.Valid(body) {
		return nil, errors.New("invalid JSON in interpreter response")
	}

	var s spec.LoadTestSpec
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		s = specFromFields(body)
	}
	if len(s.Requests) == 0 {
		return nil, errors.New("invalid interpreter response: no requests")
	}
	return &s, nil
}

// extractJSONObject slices the outermost {...} span, discarding fences and
// commentary the model wrapped around it.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

// specFromFields rebuilds a spec from individual JSON paths when the strict
// decode rejects the document shape.
func specFromFields(body string) spec.LoadTestSpec {
	var s spec.LoadTestSpec

	s.Name = gjson.Get(body, "name").String()
	s.Description = gjson.Get(body, "description").String()
	if tt, ok := spec.KnownTestType(gjson.Get(body, "test_type").String()); ok {
		s.TestType = tt
	}

	gjson.Get(body, "requests").ForEach(func(_, r gjson.Result) bool {
		req := spec.RequestSpec{
			Method: strings.ToUpper(r.Get("method").String()),
			URL:    r.Get("url").String(),
			Body:   r.Get("body").String(),
		}
		r.Get("headers").ForEach(func(k, v gjson.Result) bool {
			if req.Headers == nil {
				req.Headers = make(map[string]string)
			}
			req.Headers[k.String()] = v.String()
			return true
		})
		s.Requests = append(s.Requests, req)
		return true
	})

	if d := gjson.Get(body, "duration"); d.Exists() {
		if d.Type == gjson.Number {
			s.Duration = spec.Duration{Value: int(d.Int()), Unit: spec.UnitSeconds}
		} else {
			s.Duration = spec.Duration{
				Value: int(d.Get("value").Int()),
				Unit:  spec.DurationUnit(d.Get("unit").String()),
			}
		}
	}

	if lp := gjson.Get(body, "load_pattern"); lp.Exists() {
		s.LoadPattern = spec.LoadPattern{
			Type:              spec.PatternType(lp.Get("type").String()),
			VirtualUsers:      int(lp.Get("virtual_users").Int()),
			RequestsPerSecond: int(lp.Get("requests_per_second").Int()),
		}
		if ru := lp.Get("ramp_up"); ru.Exists() {
			s.LoadPattern.RampUp = &spec.Duration{
				Value: int(ru.Get("value").Int()),
				Unit:  spec.DurationUnit(ru.Get("unit").String()),
			}
		}
	}
	return s
}

// stageOf maps a pipeline failure to its classification stage. Validation
// failures come from spec.Validate; everything else on this path is the
// provider's fault.
func stageOf(err error) classify.Stage {
	if err == nil {
		return classify.StageAI
	}
	if strings.Contains(err.Error(), "schema validation") {
		return classify.StageValidation
	}
	return classify.StageAI
}

func parserWorthy(text string, threshold float64) bool {
	if threshold <= 0 {
		threshold = config.DefaultConfig().Interpreter.SignalThreshold
	}
	return score.HasSignal(text, threshold)
}

// ResetSession clears the recovery attempt count for a session.
func (i *Interpreter) ResetSession(sessionID string) {
	i.orchestrator.ResetSession(sessionID)
}

// Stats exposes the underlying orchestrator counters.
func (i *Interpreter) Stats() recovery.Stats {
	return i.orchestrator.Stats()
}

func (i *Interpreter) audit(event audit.Event) {
	if err := i.sink.Write(event); err != nil {
		logger.DebugCF("interpreter", "Audit write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
