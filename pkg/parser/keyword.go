package parser

import (
	"regexp"
	"strings"

	"github.com/loadclaw/loadclaw/pkg/spec"
)

// verbWords maps conversational verbs to HTTP methods. Ordered so the first
// hit in the table (not in the text) wins ties deterministically.
var verbWords = []struct {
	word   string
	method string
}{
	{"create", "POST"},
	{"add", "POST"},
	{"submit", "POST"},
	{"send", "POST"},
	{"post", "POST"},
	{"upload", "POST"},
	{"update", "PUT"},
	{"change", "PUT"},
	{"modify", "PUT"},
	{"edit", "PUT"},
	{"delete", "DELETE"},
	{"remove", "DELETE"},
	{"fetch", "GET"},
	{"get", "GET"},
	{"read", "GET"},
	{"retrieve", "GET"},
	{"load", "GET"},
	{"browse", "GET"},
	{"list", "GET"},
	{"view", "GET"},
}

var trendRe = regexp.MustCompile(`(?i)\b(gradually|ramp|ramping|increase|increasing|slowly|step\s*up)\b`)

// extractKeyword is the middle tier: no explicit method/URL/load parameters
// were found, so fall back to conversational verbs and trend words. Always
// produces at most one request.
func extractKeyword(text string) *extraction {
	ext := &extraction{headers: map[string]string{}}
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return ext
	}

	method, _ := keywordVerb(lower)

	ramping := trendRe.MatchString(text)

	if method == "" && !ramping {
		return ext
	}
	if method == "" {
		method = "GET"
	}

	ext.requests = []spec.RequestSpec{{Method: method, URL: "http://example.com"}}
	ext.verbFound = true
	ext.ramping = ramping
	ext.warnings = append(ext.warnings, "no explicit URL found; defaulted to http://example.com")
	return ext
}

// keywordVerb returns the HTTP method for the first conversational verb
// found in the (lowercased) text.
func keywordVerb(lower string) (string, bool) {
	for _, vw := range verbWords {
		if containsWord(lower, vw.word) {
			return vw.method, true
		}
	}
	return "", false
}

func containsWord(lower, word string) bool {
	idx := strings.Index(lower, word)
	for idx >= 0 {
		before := idx == 0 || !isWordByte(lower[idx-1])
		end := idx + len(word)
		after := end >= len(lower) || !isWordByte(lower[end])
		if before && after {
			return true
		}
		next := strings.Index(lower[idx+1:], word)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') || b == '_'
}
