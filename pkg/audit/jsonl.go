// Package audit persists pipeline events as JSONL for reproducibility and
// troubleshooting: every parse, interpretation and recovery session leaves a
// line describing what happened and with what confidence.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// Buffer writes so the pipeline never blocks on slow filesystems.
	queueSize = 256
)

// Event is one persisted pipeline outcome.
type Event struct {
	Timestamp    time.Time              `json:"timestamp"`
	Stage        string                 `json:"stage"`
	SpecID       string                 `json:"spec_id,omitempty"`
	Method       string                 `json:"method,omitempty"`
	Confidence   float64                `json:"confidence,omitempty"`
	RecoveryPath []string               `json:"recovery_path,omitempty"`
	Error        string                 `json:"error,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// Sink writes audit events.
type Sink interface {
	Write(event Event) error
}

// NopSink discards events; used when auditing is disabled.
type NopSink struct{}

func (NopSink) Write(Event) error { return nil }

// JSONLSink appends events as JSONL via a buffered background writer.
type JSONLSink struct {
	path  string
	queue chan []byte
}

func NewJSONLSink(workspace string) (*JSONLSink, error) {
	return NewJSONLSinkAt(filepath.Join(workspace, "audit", "events.jsonl"))
}

func NewJSONLSinkAt(path string) (*JSONLSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	sink := &JSONLSink{
		path:  path,
		queue: make(chan []byte, queueSize),
	}
	go sink.writeLoop()
	return sink, nil
}

func (s *JSONLSink) Path() string {
	return s.path
}

func (s *JSONLSink) Write(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	b, err := json.Marshal(event)
	if err != nil {
		return err
	}

	line := append(b, '\n')
	select {
	case s.queue <- line:
		return nil
	default:
	}

	// Queue full: drop the oldest pending line so the current event can
	// proceed.
	select {
	case <-s.queue:
	default:
	}
	select {
	case s.queue <- line:
	default:
	}
	return nil
}

func (s *JSONLSink) writeLoop() {
	for line := range s.queue {
		_ = s.appendLine(line)
	}
}

func (s *JSONLSink) appendLine(line []byte) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(line)
	return err
}
