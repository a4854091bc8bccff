package recovery

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/loadclaw/loadclaw/pkg/logger"
	"github.com/loadclaw/loadclaw/pkg/spec"
)

// DefaultMaxAttempts is the per-session recovery ceiling.
const DefaultMaxAttempts = 3

// PathMaxRetriesExceeded marks a session that was cut off at the ceiling
// without invoking the callback.
const PathMaxRetriesExceeded = "max_retries_exceeded"

// ClassifiedError is the orchestrator's view of a classified failure. The
// classifier package produces the concrete type.
type ClassifiedError interface {
	error
	DefaultStrategy() Strategy
}

// Context carries per-call recovery state, supplied fresh by the caller.
type Context struct {
	SessionID        string
	OriginalInput    string
	PreviousAttempts []string
	Available        []Strategy
}

// Callback attempts to produce a spec under the given strategy. It may block
// on I/O; the orchestrator awaits its outcome fully before moving on.
type Callback func(ctx context.Context, strategy Strategy) (*spec.LoadTestSpec, error)

// Result is the outcome of one recovery session.
type Result struct {
	Success      bool
	Spec         *spec.LoadTestSpec
	AttemptsUsed int
	Path         []string
	Confidence   float64
	Err          error
}

// Stats are orchestrator-wide counters.
type Stats struct {
	TotalAttempts    int64
	ActiveRecoveries int64
}

// Orchestrator drives the multi-strategy retry loop.
type Orchestrator struct {
	maxAttempts int
	ledger      *Ledger

	totalAttempts    atomic.Int64
	activeRecoveries atomic.Int64
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxAttempts overrides the per-session ceiling.
func WithMaxAttempts(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithLedger injects a shared attempt ledger so multiple orchestrators can
// count against the same sessions.
func WithLedger(l *Ledger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.ledger = l
		}
	}
}

func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		maxAttempts: DefaultMaxAttempts,
		ledger:      NewLedger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Recover selects and tries strategies until one succeeds or all are
// exhausted. Candidates are the error's default strategy plus any supplied
// in the context, filtered to recoverable ones and sorted by confidence
// descending; ties keep declaration order. The returned confidence is that
// of the strategy that actually produced the result.
func (o *Orchestrator) Recover(ctx context.Context, cerr ClassifiedError, rctx Context, cb Callback) Result {
	o.totalAttempts.Add(1)

	if o.ledger.Increment(rctx.SessionID) > o.maxAttempts {
		logger.WarnCF("recovery", "Session exceeded retry ceiling", map[string]interface{}{
			"session": rctx.SessionID,
			"ceiling": o.maxAttempts,
		})
		return Result{
			Success: false,
			Path:    []string{PathMaxRetriesExceeded},
			Err:     cerr,
		}
	}

	o.activeRecoveries.Add(1)
	defer o.activeRecoveries.Add(-1)

	candidates := rankCandidates(cerr, rctx)
	if len(candidates) == 0 {
		return Result{Success: false, Err: cerr}
	}

	var path []string
	var lastErr error = cerr

	for _, strategy := range candidates {
		path = append(path, strategy.Name())

		if rs, ok := strategy.(RetryStrategy); ok && rs.Delay > 0 {
			if err := wait(ctx, rs.Delay); err != nil {
				return Result{
					Success:      false,
					AttemptsUsed: len(path),
					Path:         path,
					Err:          err,
				}
			}
		}

		result, err := cb(ctx, strategy)
		if err == nil && result != nil {
			logger.InfoCF("recovery", "Strategy succeeded", map[string]interface{}{
				"session":  rctx.SessionID,
				"strategy": strategy.Name(),
				"attempts": len(path),
			})
			return Result{
				Success:      true,
				Spec:         result,
				AttemptsUsed: len(path),
				Path:         path,
				Confidence:   strategy.Confidence(),
			}
		}
		if err != nil {
			lastErr = err
		}
		logger.DebugCF("recovery", "Strategy failed, trying next candidate", map[string]interface{}{
			"session":  rctx.SessionID,
			"strategy": strategy.Name(),
		})
	}

	return Result{
		Success:      false,
		AttemptsUsed: len(path),
		Path:         path,
		Confidence:   0,
		Err:          lastErr,
	}
}

// ResetSession clears one session's attempt count.
func (o *Orchestrator) ResetSession(session string) {
	o.ledger.Reset(session)
}

// Stats returns a snapshot of the orchestrator-wide counters.
func (o *Orchestrator) Stats() Stats {
	return Stats{
		TotalAttempts:    o.totalAttempts.Load(),
		ActiveRecoveries: o.activeRecoveries.Load(),
	}
}

// ResetStats zeroes the counters and the attempt ledger.
func (o *Orchestrator) ResetStats() {
	o.totalAttempts.Store(0)
	o.activeRecoveries.Store(0)
	o.ledger.ResetAll()
}

func rankCandidates(cerr ClassifiedError, rctx Context) []Strategy {
	all := make([]Strategy, 0, len(rctx.Available)+1)
	if s := cerr.DefaultStrategy(); s != nil {
		all = append(all, s)
	}
	all = append(all, rctx.Available...)

	candidates := all[:0]
	for _, s := range all {
		if s.CanRecover() {
			candidates = append(candidates, s)
		}
	}

	// Stable sort keeps declaration order on equal confidence.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence() > candidates[j].Confidence()
	})
	return candidates
}

// wait suspends for the retry backoff without blocking other sessions,
// honoring context cancellation.
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
