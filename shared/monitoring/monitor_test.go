package monitoring

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMonitorHealthTransitions(t *testing.T) {
	m := NewMonitor()

	if !m.IsHealthy() {
		t.Error("IsHealthy() = false before any runs")
	}
	if got := m.GetStatusSummary(); got != "No ingestion runs yet" {
		t.Errorf("GetStatusSummary() = %q before any runs", got)
	}

	m.RecordSuccess("found 5 videos, analyzed 5, added 2 techniques", time.Second)
	if !m.IsHealthy() {
		t.Error("IsHealthy() = false after success")
	}

	m.RecordPartialFailure(errors.New("digest email failed"), time.Second)
	if !m.IsHealthy() {
		t.Error("partial failure must not flip health")
	}

	m.RecordCriticalFailure(errors.New("discovery failed"), time.Second)
	if m.IsHealthy() {
		t.Error("IsHealthy() = true after critical failure")
	}
	if summary := m.GetStatusSummary(); !strings.Contains(summary, "discovery failed") {
		t.Errorf("GetStatusSummary() = %q, want last failure included", summary)
	}

	m.RecordSuccess("found 3 videos, analyzed 3, added 1 techniques", time.Second)
	if !m.IsHealthy() {
		t.Error("IsHealthy() = false after recovery")
	}
	summary := m.GetStatusSummary()
	if !strings.Contains(summary, "3 runs, 1 failed") {
		t.Errorf("GetStatusSummary() = %q, want run counts", summary)
	}
}
