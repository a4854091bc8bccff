package parser

import "github.com/loadclaw/loadclaw/pkg/spec"

// extractTemplate is the unconditional final tier. It carries no information
// from the input at all: one default request, a constant load pattern, and a
// warning telling the user what happened. Its existence is what makes the
// cascade total.
func extractTemplate() *extraction {
	return &extraction{
		requests: []spec.RequestSpec{{Method: "GET", URL: "http://example.com"}},
		headers:  map[string]string{},
		warnings: []string{
			"input had no recognizable load-test signal; produced a template spec",
		},
	}
}
