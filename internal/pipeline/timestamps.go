package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/tkramer22/bjj-os-sub000/internal/models"
	"github.com/tkramer22/bjj-os-sub000/shared/ai"
)

type timestampResponse struct {
	Timestamps map[string]models.TimestampDetail `json:"timestamps"`
}

// runTimestampExtraction is Stage 6: build a comprehensive map of named
// teaching points. The count is soft-validated against a duration-derived
// minimum; an under-count logs a warning but never rejects the candidate.
func (p *Pipeline) runTimestampExtraction(ctx context.Context, cand *models.VideoCandidate) *models.TimestampResult {
	ctx, cancel := context.WithTimeout(ctx, judgeTimeout)
	defer cancel()

	resp, err := ai.CallJSON[timestampResponse](ctx, p.judge, buildTimestampPrompt(cand))
	if err != nil {
		log.Printf("Timestamp extraction failed for %s: %v", cand.ID, err)
		return &models.TimestampResult{
			Timestamps: map[string]models.TimestampDetail{},
			Confidence: "low",
			MetMinimum: false,
		}
	}

	timestamps := resp.Timestamps
	if timestamps == nil {
		timestamps = map[string]models.TimestampDetail{}
	}

	minimum := minimumTimestamps(cand.DurationSeconds)
	metMinimum := len(timestamps) >= minimum
	if !metMinimum {
		log.Printf("Warning: only %d timestamps extracted for %s (%ds video, expected at least %d)",
			len(timestamps), cand.ID, cand.DurationSeconds, minimum)
	}

	return &models.TimestampResult{
		Timestamps: timestamps,
		Confidence: timestampConfidence(len(timestamps)),
		MetMinimum: metMinimum,
	}
}

// minimumTimestamps derives the expected teaching-point count from video
// duration.
func minimumTimestamps(durationSeconds int) int {
	minutes := durationSeconds / 60
	switch {
	case minutes < 10:
		return 5
	case minutes < 20:
		return 8
	case minutes < 30:
		return 10
	default:
		return 12
	}
}

func timestampConfidence(count int) string {
	switch {
	case count >= 5:
		return "high"
	case count >= 3:
		return "medium"
	default:
		return "low"
	}
}

func buildTimestampPrompt(cand *models.VideoCandidate) string {
	transcript := ""
	if cand.HasTranscript() {
		transcript = "\nTranscript:\n" + truncate(cand.Transcript, 12000)
	}

	return fmt.Sprintf(`You are indexing a BJJ instructional video into named teaching points. Be COMPREHENSIVE: cover setup, grips, entries, execution steps, finishing mechanics, common mistakes, variations, troubleshooting, and drilling advice wherever the video touches them.

Title: %s
Description: %s
Duration: %s (%d seconds)%s

Respond in JSON, keyed by a short descriptive slug:
{
  "timestamps": {
    "setup": {"time": 45, "description": "...", "keywords": ["...", "..."]},
    "grip_details": {"time": 120, "description": "...", "keywords": ["..."]}
  }
}

"time" is seconds from the start and must not exceed the video duration.`,
		cand.Title, truncate(cand.Description, 1500), cand.Duration, cand.DurationSeconds, transcript)
}
