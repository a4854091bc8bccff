package state

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRecordOutcomeAndSnapshot(t *testing.T) {
	workspace := t.TempDir()
	m := NewManager(workspace)

	if err := m.RecordOutcome("spec-123", "pattern-matching", 0.8); err != nil {
		t.Fatalf("RecordOutcome failed: %v", err)
	}

	snap := m.Snapshot()
	if snap.LastSpecID != "spec-123" {
		t.Errorf("LastSpecID = %q, want %q", snap.LastSpecID, "spec-123")
	}
	if snap.LastMethod != "pattern-matching" {
		t.Errorf("LastMethod = %q, want %q", snap.LastMethod, "pattern-matching")
	}
	if snap.LastConfidence != 0.8 {
		t.Errorf("LastConfidence = %v, want 0.8", snap.LastConfidence)
	}
	if snap.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestStateSurvivesReload(t *testing.T) {
	workspace := t.TempDir()

	m1 := NewManager(workspace)
	if err := m1.RecordOutcome("spec-456", "keyword-extraction", 0.35); err != nil {
		t.Fatalf("RecordOutcome failed: %v", err)
	}

	m2 := NewManager(workspace)
	snap := m2.Snapshot()
	if snap.LastSpecID != "spec-456" {
		t.Errorf("reloaded LastSpecID = %q, want %q", snap.LastSpecID, "spec-456")
	}
	if snap.LastMethod != "keyword-extraction" {
		t.Errorf("reloaded LastMethod = %q, want %q", snap.LastMethod, "keyword-extraction")
	}
}

func TestEmptyWorkspaceStartsClean(t *testing.T) {
	m := NewManager(t.TempDir())
	snap := m.Snapshot()
	if snap.LastSpecID != "" || snap.LastMethod != "" {
		t.Errorf("fresh workspace should have empty state, got %+v", snap)
	}
}

func TestCorruptStateFileIgnored(t *testing.T) {
	workspace := t.TempDir()
	stateDir := filepath.Join(workspace, "state")
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(stateDir, "state.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(workspace)
	snap := m.Snapshot()
	if snap.LastSpecID != "" {
		t.Errorf("corrupt state should load clean, got %+v", snap)
	}

	if err := m.RecordOutcome("spec-789", "template-based", 0.1); err != nil {
		t.Fatalf("RecordOutcome after corrupt load failed: %v", err)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	workspace := t.TempDir()
	m := NewManager(workspace)
	if err := m.RecordOutcome("spec-1", "pattern-matching", 0.7); err != nil {
		t.Fatalf("RecordOutcome failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(workspace, "state", "state.json.tmp")); !os.IsNotExist(err) {
		t.Error("temp file should not remain after save")
	}
}
