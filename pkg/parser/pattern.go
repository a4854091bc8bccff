package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/loadclaw/loadclaw/pkg/spec"
)

var (
	verbURLRe  = regexp.MustCompile(`(?i)\b(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)\s+(https?://[^\s"'<>]+)`)
	bareURLRe  = regexp.MustCompile(`https?://[^\s"'<>]+`)
	bareHostRe = regexp.MustCompile(`(?i)\b(?:server|host|against|endpoint|target)\s+([a-z0-9][a-z0-9.-]*\.[a-z]{2,})\b`)

	usersCapRe    = regexp.MustCompile(`(?i)\b(\d+)\s*(?:virtual\s+)?(?:users?|vus?|clients?|concurrent)\b`)
	rpsCapRe      = regexp.MustCompile(`(?i)\b(\d+)\s*(?:rps|req/s|requests?\s+per\s+second)\b`)
	durationCapRe = regexp.MustCompile(`(?i)\b(\d+)\s*(seconds?|secs?|minutes?|mins?|hours?|hrs?)\b`)
	rampOverRe    = regexp.MustCompile(`(?i)ramp(?:\s*-?\s*up)?\s*(?:over|of|in)\s*(\d+)\s*(seconds?|secs?|minutes?|mins?)`)

	namePrefixRe = regexp.MustCompile(`(?im)^\s*(?:name|test)\s*:\s*(.+)$`)
	headerLineRe = regexp.MustCompile(`(?m)^\s*([A-Za-z][A-Za-z0-9-]*)\s*:\s*(\S.*)$`)
	quotedPairRe = regexp.MustCompile(`"([A-Za-z][A-Za-z0-9-]+)"\s*:\s*"([^"]*)"`)
	bodyBraceRe = regexp.MustCompile(`(?is)\bbody\s*:\s*(\{.*\})`)
	bodyLineRe  = regexp.MustCompile(`(?im)\bbody\s*:\s*(.+)$`)
	jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

	testTypeRe = regexp.MustCompile(`(?i)\b(spike|burst|soak|endurance|sustained|baseline|smoke|stress|ramp(?:\s*-?\s*up)?)\b`)

	mutatingVerbRe = regexp.MustCompile(`(?i)\b(POST|PUT|PATCH|DELETE)\b`)
)

// Header keys accepted without a dash; dashed keys (X-Api-Key, Content-Type)
// always qualify. Keeps prose lines like "goal: stress the api" from being
// read as headers.
var plainHeaderKeys = map[string]bool{
	"authorization": true,
	"accept":        true,
	"cookie":        true,
	"host":          true,
	"origin":        true,
	"referer":       true,
}

// extractPattern is the highest-specificity tier: direct regex extraction of
// VERB URL occurrences, header pairs, bodies, numeric load parameters, a
// test-type keyword and an explicit name.
func extractPattern(text string) *extraction {
	ext := &extraction{headers: map[string]string{}}
	if strings.TrimSpace(text) == "" {
		return ext
	}

	// One request per VERB URL occurrence, in reading order.
	for _, m := range verbURLRe.FindAllStringSubmatch(text, -1) {
		ext.requests = append(ext.requests, spec.RequestSpec{
			Method: strings.ToUpper(m[1]),
			URL:    trimURL(m[2]),
		})
	}
	ext.verbFound = len(ext.requests) > 0

	if len(ext.requests) == 0 {
		if url := bareURLRe.FindString(text); url != "" {
			ext.requests = append(ext.requests, spec.RequestSpec{Method: "GET", URL: trimURL(url)})
		} else if m := bareHostRe.FindStringSubmatch(text); m != nil {
			ext.requests = append(ext.requests, spec.RequestSpec{Method: "GET", URL: "http://" + strings.ToLower(m[1])})
		}
	}
	if len(ext.requests) > 0 {
		ext.urlExplicit = true
	}

	// No explicit verb: a conversational one still carries the same signal,
	// and decides the method the keyword tier would have chosen.
	if !ext.verbFound {
		if method, ok := keywordVerb(strings.ToLower(text)); ok {
			ext.verbFound = true
			if len(ext.requests) > 0 {
				for i := range ext.requests {
					ext.requests[i].Method = method
				}
			} else {
				ext.defaultMethod = method
			}
		}
	}

	extractHeaders(text, ext)
	extractBody(text, ext)
	extractLoadParams(text, ext)

	if m := testTypeRe.FindString(text); m != "" {
		if tt, ok := spec.KnownTestType(strings.ReplaceAll(m, " ", "")); ok {
			ext.testType = tt
			if tt == spec.TestRamp {
				ext.ramping = true
			}
		}
	}

	if trendRe.MatchString(text) {
		ext.ramping = true
	}

	if m := namePrefixRe.FindStringSubmatch(text); m != nil {
		ext.name = strings.TrimSpace(m[1])
	}

	return ext
}

func extractHeaders(text string, ext *extraction) {
	for _, m := range headerLineRe.FindAllStringSubmatch(text, -1) {
		key := m[1]
		lower := strings.ToLower(key)
		if lower == "name" || lower == "test" || lower == "body" {
			continue
		}
		if !strings.Contains(key, "-") && !plainHeaderKeys[lower] {
			continue
		}
		ext.headers[canonicalHeader(key)] = strings.TrimSpace(m[2])
	}
	for _, m := range quotedPairRe.FindAllStringSubmatch(text, -1) {
		key := m[1]
		if strings.Contains(key, "-") || plainHeaderKeys[strings.ToLower(key)] {
			ext.headers[canonicalHeader(key)] = m[2]
		}
	}
}

func extractBody(text string, ext *extraction) {
	if m := bodyBraceRe.FindStringSubmatch(text); m != nil {
		ext.body = strings.TrimSpace(m[1])
		return
	}
	if m := bodyLineRe.FindStringSubmatch(text); m != nil {
		ext.body = strings.TrimSpace(m[1])
		return
	}
	// A brace-delimited block counts as a body only alongside a mutating
	// verb; otherwise it is likelier to be quoted headers or prose.
	if mutatingVerbRe.MatchString(text) {
		if block := jsonBlockRe.FindString(text); block != "" {
			ext.body = strings.TrimSpace(block)
		}
	}
}

func extractLoadParams(text string, ext *extraction) {
	if m := usersCapRe.FindStringSubmatch(text); m != nil {
		ext.users = atoiSafe(m[1])
	}
	if m := rpsCapRe.FindStringSubmatch(text); m != nil {
		ext.rps = atoiSafe(m[1])
	}
	remaining := text
	if loc := rampOverRe.FindStringSubmatchIndex(text); loc != nil {
		m := rampOverRe.FindStringSubmatch(text)
		d := toDuration(atoiSafe(m[1]), m[2])
		ext.rampUp = &d
		ext.ramping = true
		// Cut the ramp-up window out so its number is not re-read as the
		// overall test duration.
		remaining = text[:loc[0]] + text[loc[1]:]
	}
	if m := durationCapRe.FindStringSubmatch(remaining); m != nil {
		d := toDuration(atoiSafe(m[1]), m[2])
		ext.duration = &d
	}
}

func toDuration(value int, unit string) spec.Duration {
	u := strings.ToLower(unit)
	switch {
	case strings.HasPrefix(u, "min"):
		return spec.Duration{Value: value, Unit: spec.UnitMinutes}
	case strings.HasPrefix(u, "hour"), strings.HasPrefix(u, "hr"):
		return spec.Duration{Value: value * 60, Unit: spec.UnitMinutes}
	default:
		return spec.Duration{Value: value, Unit: spec.UnitSeconds}
	}
}

func atoiSafe(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func trimURL(url string) string {
	return strings.TrimRight(url, ".,;:!?)")
}

func canonicalHeader(key string) string {
	parts := strings.Split(strings.ToLower(key), "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "-")
}
