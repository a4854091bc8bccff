package spec

import (
	"fmt"
	"net/url"
	"strings"
)

var knownMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"PATCH":   true,
	"DELETE":  true,
	"HEAD":    true,
	"OPTIONS": true,
}

// Validate checks a spec is executable. Error text is stable: the error
// classifier matches on the "schema" and "missing" substrings below.
func (s *LoadTestSpec) Validate() error {
	if s == nil {
		return fmt.Errorf("schema validation: spec is nil")
	}
	if len(s.Requests) == 0 {
		return fmt.Errorf("schema validation: missing requests; at least one request is required")
	}
	for i, req := range s.Requests {
		method := strings.ToUpper(strings.TrimSpace(req.Method))
		if !knownMethods[method] {
			return fmt.Errorf("schema validation: request %d has unknown method %q", i, req.Method)
		}
		u, err := url.Parse(req.URL)
		if err != nil {
			return fmt.Errorf("schema validation: request %d has malformed url %q: %w", i, req.URL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("schema validation: request %d url %q must use http or https", i, req.URL)
		}
		if u.Host == "" {
			return fmt.Errorf("schema validation: request %d url %q is missing a host", i, req.URL)
		}
	}
	if s.Duration.Value <= 0 {
		return fmt.Errorf("schema validation: duration must be positive, got %d", s.Duration.Value)
	}
	if s.LoadPattern.Type == "" {
		return fmt.Errorf("schema validation: missing load pattern")
	}
	return nil
}

// Normalize fills identity and defaulted fields in place so any spec that
// passes through the pipeline is executable as-is.
func (s *LoadTestSpec) Normalize() {
	if s.ID == "" {
		s.ID = NewID()
	}
	if s.TestType == "" {
		s.TestType = TestBaseline
	}
	if s.Duration.Value <= 0 {
		s.Duration = DefaultDuration()
	}
	if s.Duration.Unit == "" {
		s.Duration.Unit = UnitSeconds
	}
	if s.LoadPattern.Type == "" {
		s.LoadPattern = DefaultLoadPattern()
	}
	if s.LoadPattern.VirtualUsers <= 0 && s.LoadPattern.RequestsPerSecond <= 0 {
		s.LoadPattern.VirtualUsers = DefaultLoadPattern().VirtualUsers
	}
	for i := range s.Requests {
		s.Requests[i].Method = strings.ToUpper(strings.TrimSpace(s.Requests[i].Method))
	}
}
