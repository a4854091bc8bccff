// Package state persists the last pipeline outcome for a workspace so the
// CLI can report what was generated most recently.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/loadclaw/loadclaw/pkg/logger"
)

// State is the persisted per-workspace snapshot.
type State struct {
	// LastSpecID identifies the most recently generated spec.
	LastSpecID string `json:"last_spec_id,omitempty"`

	// LastMethod is the tier or pipeline path that produced it.
	LastMethod string `json:"last_method,omitempty"`

	// LastConfidence is the confidence reported alongside it.
	LastConfidence float64 `json:"last_confidence,omitempty"`

	// Timestamp is the last time this state was updated.
	Timestamp time.Time `json:"timestamp"`
}

// Manager manages persistent state with atomic saves.
type Manager struct {
	state     *State
	mu        sync.RWMutex
	stateFile string
}

// NewManager creates a state manager for the given workspace, loading any
// previously persisted snapshot.
func NewManager(workspace string) *Manager {
	stateDir := filepath.Join(workspace, "state")
	stateFile := filepath.Join(stateDir, "state.json")

	os.MkdirAll(stateDir, 0755)

	m := &Manager{
		stateFile: stateFile,
		state:     &State{},
	}

	loaded, err := loadStateFromPath(stateFile)
	if err != nil {
		logger.WarnCF("state", "State preload skipped", map[string]interface{}{
			"workspace": workspace,
			"error":     err.Error(),
		})
	} else if loaded != nil {
		m.state = loaded
	}

	return m
}

// RecordOutcome atomically updates the snapshot after a pipeline run.
func (m *Manager) RecordOutcome(specID, method string, confidence float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.LastSpecID = specID
	m.state.LastMethod = method
	m.state.LastConfidence = confidence
	m.state.Timestamp = time.Now()

	return m.saveAtomic()
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.state
}

// saveAtomic writes via temp file + rename so the state file is never left
// corrupted by a crash mid-write. Must be called with the lock held.
func (m *Manager) saveAtomic() error {
	tempFile := m.stateFile + ".tmp"

	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("writing temp state file: %w", err)
	}

	if err := os.Rename(tempFile, m.stateFile); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("renaming temp state file: %w", err)
	}

	return nil
}

func loadStateFromPath(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading state file %s: %w", path, err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("unmarshaling state %s: %w", path, err)
	}
	return &st, nil
}
