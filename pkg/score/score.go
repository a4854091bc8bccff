// Package score implements the weighted-signal confidence model shared by the
// heuristic parser and the interpreter gate. Scoring is pure and
// deterministic: the same text always produces the same score.
package score

import (
	"regexp"
	"strings"
)

// Weights for each recognized signal. The parser reuses these when computing
// pipeline confidence, so both sides agree on what a signal is worth.
const (
	WeightURL      = 0.3
	WeightVerb     = 0.2
	WeightUsers    = 0.1
	WeightRPS      = 0.1
	WeightDuration = 0.1
	WeightHeaders  = 0.1
	WeightBody     = 0.1

	// Cap keeps the standalone scorer honest: raw text alone never proves a
	// fully-specified test. Only assembled multi-field corroboration may
	// exceed it (see parser).
	Cap = 0.8
)

var (
	urlRe      = regexp.MustCompile(`https?://[^\s"'<>]+`)
	verbRe     = regexp.MustCompile(`(?i)\b(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)\b`)
	usersRe    = regexp.MustCompile(`(?i)\b(\d+)\s*(virtual\s+)?(users?|vus?|clients?|concurrent)\b`)
	rpsRe      = regexp.MustCompile(`(?i)\b(\d+)\s*(rps|req/s|requests?\s+per\s+second)\b`)
	durationRe = regexp.MustCompile(`(?i)\b(\d+)\s*(seconds?|secs?|minutes?|mins?|hours?|hrs?)\b`)
	headerRe   = regexp.MustCompile(`(?im)^\s*(authorization|content-type|accept|user-agent|cookie|x-[a-z0-9-]+)\s*:`)
	mutatingRe = regexp.MustCompile(`(?i)\b(POST|PUT|PATCH|DELETE)\b`)
	bodyRe     = regexp.MustCompile(`(?s)\{.*\}`)
)

// Signal is one recognizable indicator in raw text. The table is exported so
// callers can inspect exactly what the scorer rewards.
type Signal struct {
	Name    string
	Weight  float64
	Present func(text string) bool
}

// Signals is the ordered signal table backing Score.
var Signals = []Signal{
	{"url", WeightURL, func(t string) bool { return urlRe.MatchString(t) }},
	{"http_verb", WeightVerb, func(t string) bool { return verbRe.MatchString(t) }},
	{"virtual_users", WeightUsers, func(t string) bool { return usersRe.MatchString(t) }},
	{"requests_per_second", WeightRPS, func(t string) bool { return rpsRe.MatchString(t) }},
	{"duration", WeightDuration, func(t string) bool { return durationRe.MatchString(t) }},
	{"headers", WeightHeaders, func(t string) bool { return headerRe.MatchString(t) }},
	{"body_on_mutation", WeightBody, HasBodyOnMutation},
}

// HasBodyOnMutation reports whether the text carries a JSON-ish body together
// with a mutating verb. A body without POST/PUT/PATCH/DELETE carries no
// signal on its own.
func HasBodyOnMutation(text string) bool {
	return mutatingRe.MatchString(text) && (bodyRe.MatchString(text) || strings.Contains(strings.ToLower(text), "body:"))
}

// Score rates raw text for recognizable load-test signal strength.
// Returns exactly 0 when no recognized indicator exists; otherwise the
// weighted sum of present signals, capped at Cap.
func Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	total := 0.0
	for _, sig := range Signals {
		if sig.Present(text) {
			total += sig.Weight
		}
	}
	if total > Cap {
		return Cap
	}
	return total
}

// HasSignal is the boolean gate form of Score.
func HasSignal(text string, threshold float64) bool {
	return Score(text) >= threshold
}
