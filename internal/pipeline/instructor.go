package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/tkramer22/bjj-os-sub000/internal/models"
	"github.com/tkramer22/bjj-os-sub000/shared/ai"
)

const (
	maxCredibilityScore = 30
	// eliteCredibilityFloor is the minimum credibility for a roster match,
	// regardless of what the judge thought of the channel.
	eliteCredibilityFloor = 25
)

type instructorResponse struct {
	InstructorName   string `json:"instructor_name"`
	CredibilityScore int    `json:"credibility_score"`
	IsElite          bool   `json:"is_elite"`
	Reasoning        string `json:"reasoning"`
}

// runInstructorCheck is Stage 3: score the instructor's credibility from
// competition record, teaching reputation and academy affiliation. The roster
// overrides the judge on elite status. Never gates on its own; the score
// feeds the aggregator.
func (p *Pipeline) runInstructorCheck(ctx context.Context, cand *models.VideoCandidate) *models.InstructorResult {
	match, isElite := p.registry.Lookup(cand.ChannelTitle)

	ctx, cancel := context.WithTimeout(ctx, judgeTimeout)
	defer cancel()

	resp, err := ai.CallJSON[instructorResponse](ctx, p.judge, buildInstructorPrompt(cand))
	if err != nil {
		log.Printf("Instructor verification failed for %s: %v", cand.ID, err)
		result := &models.InstructorResult{
			InstructorName: cand.ChannelTitle,
			IsElite:        isElite,
			Reasoning:      "Analysis failed",
		}
		if isElite {
			result.InstructorName = match.Name
			result.CredibilityScore = eliteCredibilityFloor
		}
		return result
	}

	score := resp.CredibilityScore
	if score < 0 {
		score = 0
	} else if score > maxCredibilityScore {
		score = maxCredibilityScore
	}

	name := resp.InstructorName
	if isElite {
		name = match.Name
		if score < eliteCredibilityFloor {
			score = eliteCredibilityFloor
		}
	}

	return &models.InstructorResult{
		InstructorName:   name,
		CredibilityScore: score,
		IsElite:          isElite || resp.IsElite,
		Reasoning:        resp.Reasoning,
	}
}

func buildInstructorPrompt(cand *models.VideoCandidate) string {
	return fmt.Sprintf(`You are assessing the credibility of a BJJ instructor from video metadata.

Weigh competition record (IBJJF/ADCC level), teaching reputation, and academy affiliation. Unknown hobbyist channels score low; established black-belt competitors and famous coaches score high.

Title: %s
Channel: %s
Description: %s

Respond in JSON:
{
  "instructor_name": "most likely instructor name, or the channel name if unknown",
  "credibility_score": number (0-30),
  "is_elite": boolean (true only for world-class competitors or famous coaches),
  "reasoning": "one or two sentences"
}`,
		cand.Title, cand.ChannelTitle, truncate(cand.Description, 600))
}
