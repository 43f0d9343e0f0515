package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tkramer22/bjj-os-sub000/internal/models"
	"github.com/tkramer22/bjj-os-sub000/shared/ai"
)

type personalizationResponse struct {
	MatchScore      int    `json:"match_score"`
	BeltAppropriate bool   `json:"belt_appropriate"`
	StyleMatch      bool   `json:"style_match"`
	Reasoning       string `json:"reasoning"`
}

// runPersonalization is Stage 5: score the technique's fit against the
// example audience profile. Never gates; the aggregator uses it only as a
// small penalty, so judge errors degrade to a neutral result.
func (p *Pipeline) runPersonalization(ctx context.Context, keyDetail *models.KeyDetailResult) *models.PersonalizationResult {
	ctx, cancel := context.WithTimeout(ctx, judgeTimeout)
	defer cancel()

	resp, err := ai.CallJSON[personalizationResponse](ctx, p.judge, buildPersonalizationPrompt(keyDetail, p.profile))
	if err != nil {
		log.Printf("Personalization matching failed: %v", err)
		return &models.PersonalizationResult{
			MatchScore:      50,
			BeltAppropriate: true,
			StyleMatch:      true,
			Reasoning:       "Analysis failed",
		}
	}

	score := resp.MatchScore
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	return &models.PersonalizationResult{
		MatchScore:      score,
		BeltAppropriate: resp.BeltAppropriate,
		StyleMatch:      resp.StyleMatch,
		Reasoning:       resp.Reasoning,
	}
}

func buildPersonalizationPrompt(keyDetail *models.KeyDetailResult, profile models.AudienceProfile) string {
	return fmt.Sprintf(`You are matching a BJJ technique against a target student profile.

Technique: %s
Key detail: %s

Student profile:
- Skill level: %s
- Style preference: %s
- Focus areas: %s
- Recently studied: %s

Respond in JSON:
{
  "match_score": number (0-100),
  "belt_appropriate": boolean (false if the technique is too advanced or too basic for this level),
  "style_match": boolean,
  "reasoning": "one or two sentences"
}`,
		keyDetail.TechniqueName, keyDetail.KeyDetail,
		profile.SkillLevel, profile.StylePreference,
		strings.Join(profile.FocusAreas, ", "), strings.Join(profile.RecentTechniques, ", "))
}
