package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CandidateTracker manages a persistent store of evaluated video IDs so the
// batch never pays for the same candidate twice within the retention window.
type CandidateTracker struct {
	filePath     string
	evaluatedIDs map[string]time.Time
	mu           sync.RWMutex
	maxAge       time.Duration
}

// TrackedCandidate represents a video that has been through the pipeline.
type TrackedCandidate struct {
	VideoID     string    `json:"video_id"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// NewCandidateTracker creates a tracker backed by a JSON file under dataDir.
func NewCandidateTracker(dataDir string, maxAge time.Duration) (*CandidateTracker, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	tracker := &CandidateTracker{
		filePath:     filepath.Join(dataDir, "evaluated_candidates.json"),
		evaluatedIDs: make(map[string]time.Time),
		maxAge:       maxAge,
	}

	if err := tracker.load(); err != nil {
		return nil, fmt.Errorf("failed to load candidate tracker data: %w", err)
	}

	tracker.cleanup()

	return tracker, nil
}

// IsEvaluated checks whether a video ID went through the pipeline recently.
func (ct *CandidateTracker) IsEvaluated(videoID string) bool {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	evaluatedAt, exists := ct.evaluatedIDs[videoID]
	if !exists {
		return false
	}

	return time.Since(evaluatedAt) < ct.maxAge
}

// MarkEvaluated records a single video ID.
func (ct *CandidateTracker) MarkEvaluated(videoID string) error {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	ct.evaluatedIDs[videoID] = time.Now()
	return ct.save()
}

// MarkMultipleEvaluated records a batch of video IDs with one write.
func (ct *CandidateTracker) MarkMultipleEvaluated(videoIDs []string) error {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	now := time.Now()
	for _, videoID := range videoIDs {
		ct.evaluatedIDs[videoID] = now
	}
	return ct.save()
}

// EvaluatedCount returns the number of tracked videos.
func (ct *CandidateTracker) EvaluatedCount() int {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return len(ct.evaluatedIDs)
}

func (ct *CandidateTracker) cleanup() {
	cutoff := time.Now().Add(-ct.maxAge)

	for videoID, evaluatedAt := range ct.evaluatedIDs {
		if evaluatedAt.Before(cutoff) {
			delete(ct.evaluatedIDs, videoID)
		}
	}
}

func (ct *CandidateTracker) load() error {
	file, err := os.Open(ct.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open tracker file: %w", err)
	}
	defer file.Close()

	var tracked []TrackedCandidate
	if err := json.NewDecoder(file).Decode(&tracked); err != nil {
		return fmt.Errorf("failed to decode tracker data: %w", err)
	}

	for _, tc := range tracked {
		ct.evaluatedIDs[tc.VideoID] = tc.EvaluatedAt
	}

	return nil
}

func (ct *CandidateTracker) save() error {
	var tracked []TrackedCandidate
	for videoID, evaluatedAt := range ct.evaluatedIDs {
		tracked = append(tracked, TrackedCandidate{
			VideoID:     videoID,
			EvaluatedAt: evaluatedAt,
		})
	}

	file, err := os.Create(ct.filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(tracked)
}
