package storage

import (
	"testing"
	"time"
)

func TestCandidateTrackerMarkAndCheck(t *testing.T) {
	tracker, err := NewCandidateTracker(t.TempDir(), 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewCandidateTracker() error = %v", err)
	}

	if tracker.IsEvaluated("v1") {
		t.Error("IsEvaluated() = true for unseen video")
	}

	if err := tracker.MarkEvaluated("v1"); err != nil {
		t.Fatalf("MarkEvaluated() error = %v", err)
	}
	if !tracker.IsEvaluated("v1") {
		t.Error("IsEvaluated() = false after MarkEvaluated")
	}

	if err := tracker.MarkMultipleEvaluated([]string{"v2", "v3"}); err != nil {
		t.Fatalf("MarkMultipleEvaluated() error = %v", err)
	}
	if got := tracker.EvaluatedCount(); got != 3 {
		t.Errorf("EvaluatedCount() = %d, want 3", got)
	}
}

func TestCandidateTrackerPersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()

	tracker, err := NewCandidateTracker(dir, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewCandidateTracker() error = %v", err)
	}
	if err := tracker.MarkMultipleEvaluated([]string{"v1", "v2"}); err != nil {
		t.Fatalf("MarkMultipleEvaluated() error = %v", err)
	}

	reloaded, err := NewCandidateTracker(dir, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewCandidateTracker() reload error = %v", err)
	}
	if !reloaded.IsEvaluated("v1") || !reloaded.IsEvaluated("v2") {
		t.Error("tracked IDs lost across reload")
	}
}

func TestCandidateTrackerExpiresOldEntries(t *testing.T) {
	dir := t.TempDir()

	tracker, err := NewCandidateTracker(dir, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewCandidateTracker() error = %v", err)
	}
	if err := tracker.MarkEvaluated("stale"); err != nil {
		t.Fatalf("MarkEvaluated() error = %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	if tracker.IsEvaluated("stale") {
		t.Error("IsEvaluated() = true past retention window")
	}

	// A reload drops the stale entry entirely.
	reloaded, err := NewCandidateTracker(dir, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewCandidateTracker() reload error = %v", err)
	}
	if got := reloaded.EvaluatedCount(); got != 0 {
		t.Errorf("EvaluatedCount() after expiry reload = %d, want 0", got)
	}
}
