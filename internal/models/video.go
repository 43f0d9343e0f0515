package models

import "time"

// VideoCandidate is a video proposed for the knowledge base, as supplied by
// the discovery client. It is read-only inside the evaluation pipeline.
type VideoCandidate struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ChannelTitle    string    `json:"channel_title"`
	PublishedAt     time.Time `json:"published_at"`
	Duration        string    `json:"duration"` // ISO 8601, e.g. "PT12M30S"
	DurationSeconds int       `json:"duration_seconds"`
	ViewCount       int64     `json:"view_count"`
	URL             string    `json:"url"`
	Transcript      string    `json:"transcript,omitempty"`
}

// HasTranscript reports whether any transcript text came with the candidate.
func (v *VideoCandidate) HasTranscript() bool {
	return len(v.Transcript) > 0
}

// AudienceProfile is the example target audience the personalization stage
// scores against.
type AudienceProfile struct {
	SkillLevel       string   `json:"skill_level"`      // e.g. "blue belt"
	StylePreference  string   `json:"style_preference"` // e.g. "no-gi, leg lock heavy"
	FocusAreas       []string `json:"focus_areas"`
	RecentTechniques []string `json:"recent_techniques"`
}

// RunReport summarizes one batch run for the email digest and monitoring.
type RunReport struct {
	RunID    string              `json:"run_id"`
	Date     time.Time           `json:"date"`
	Accepted []*MultiStageResult `json:"accepted"`
	Analyzed int                 `json:"total_analyzed"`
	Added    int                 `json:"added"`
	Skipped  int                 `json:"skipped"`
	Errors   int                 `json:"errors"`
}
