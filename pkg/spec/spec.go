package spec

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TestType describes the overall intent of a load test.
type TestType string

const (
	TestBaseline TestType = "baseline"
	TestSpike    TestType = "spike"
	TestSoak     TestType = "soak"
	TestStress   TestType = "stress"
	TestRamp     TestType = "ramp"
)

// PatternType describes how concurrency is shaped over the test run.
type PatternType string

const (
	PatternConstant PatternType = "constant"
	PatternRampUp   PatternType = "ramp-up"
	PatternSpike    PatternType = "spike"
)

// DurationUnit is the unit of a test duration value.
type DurationUnit string

const (
	UnitSeconds DurationUnit = "seconds"
	UnitMinutes DurationUnit = "minutes"
)

// Duration is a test duration with an explicit unit so specs stay
// human-readable when serialized.
type Duration struct {
	Value int          `json:"value" yaml:"value"`
	Unit  DurationUnit `json:"unit" yaml:"unit"`
}

// Seconds returns the duration normalized to seconds.
func (d Duration) Seconds() int {
	if d.Unit == UnitMinutes {
		return d.Value * 60
	}
	return d.Value
}

// RequestSpec is a single HTTP request to issue during the test.
type RequestSpec struct {
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    string            `json:"body,omitempty" yaml:"body,omitempty"`
}

// LoadPattern describes the concurrency shape of the test.
type LoadPattern struct {
	Type              PatternType `json:"type" yaml:"type"`
	VirtualUsers      int         `json:"virtual_users,omitempty" yaml:"virtual_users,omitempty"`
	RequestsPerSecond int         `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty"`
	RampUp            *Duration   `json:"ramp_up,omitempty" yaml:"ramp_up,omitempty"`
}

// LoadTestSpec is a structured, executable load-test description. It is the
// canonical output of both the heuristic parser and the AI interpreter.
type LoadTestSpec struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	TestType    TestType      `json:"test_type" yaml:"test_type"`
	Duration    Duration      `json:"duration" yaml:"duration"`
	Requests    []RequestSpec `json:"requests" yaml:"requests"`
	LoadPattern LoadPattern   `json:"load_pattern" yaml:"load_pattern"`
	CreatedAt   time.Time     `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// NewID mints a fresh spec identifier.
func NewID() string {
	return uuid.NewString()
}

// DefaultDuration is the duration applied when the input mentions none.
func DefaultDuration() Duration {
	return Duration{Value: 60, Unit: UnitSeconds}
}

// DefaultLoadPattern is the pattern applied when the input mentions none.
func DefaultLoadPattern() LoadPattern {
	return LoadPattern{Type: PatternConstant, VirtualUsers: 10}
}

// KnownTestType normalizes a free-form test-type word into a TestType,
// returning false when the word is not recognized.
func KnownTestType(word string) (TestType, bool) {
	switch strings.ToLower(strings.TrimSpace(word)) {
	case "baseline", "base", "smoke":
		return TestBaseline, true
	case "spike", "burst":
		return TestSpike, true
	case "soak", "endurance", "sustained":
		return TestSoak, true
	case "stress":
		return TestStress, true
	case "ramp", "ramp-up", "rampup":
		return TestRamp, true
	default:
		return "", false
	}
}
