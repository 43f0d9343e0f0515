package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tkramer22/bjj-os-sub000/internal/models"
	"github.com/tkramer22/bjj-os-sub000/shared/ai"
)

type qualityControlResponse struct {
	QualityGrade           string   `json:"quality_grade"`
	SafetyConcerns         string   `json:"safety_concerns"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
	Reasoning              string   `json:"reasoning"`
}

// runQualityControl is Stage 4: an adversarial second opinion on the
// extracted detail. Approval requires grade A or B. Fails closed (grade F)
// on judge errors: a technique the reviewer never saw does not ship.
func (p *Pipeline) runQualityControl(ctx context.Context, cand *models.VideoCandidate, keyDetail *models.KeyDetailResult) *models.QualityControlResult {
	ctx, cancel := context.WithTimeout(ctx, judgeTimeout)
	defer cancel()

	resp, err := ai.CallJSON[qualityControlResponse](ctx, p.judge, buildQualityControlPrompt(cand, keyDetail))
	if err != nil {
		log.Printf("Quality control failed for %s: %v", cand.ID, err)
		return &models.QualityControlResult{
			Approved:     false,
			QualityGrade: "F",
			Reasoning:    "Analysis failed",
		}
	}

	grade := normalizeGrade(resp.QualityGrade)

	return &models.QualityControlResult{
		Approved:               grade == "A" || grade == "B",
		QualityGrade:           grade,
		SafetyConcerns:         resp.SafetyConcerns,
		ImprovementSuggestions: resp.ImprovementSuggestions,
		Reasoning:              resp.Reasoning,
	}
}

// bypassApproval synthesizes the Stage 4 result for elite no-transcript
// candidates that the seven-dimension evaluator already accepted. Grade B,
// never A: reputation alone does not earn the top grade.
func bypassApproval(instructor *models.InstructorResult) *models.QualityControlResult {
	return &models.QualityControlResult{
		Approved:     true,
		QualityGrade: "B",
		Reasoning:    fmt.Sprintf("Approved on %s's reputation; no transcript available for adversarial review", instructor.InstructorName),
	}
}

// normalizeGrade reduces judge output like "B ", "a", or "A+" to the bare
// letter. Anything unrecognizable defaults to F.
func normalizeGrade(grade string) string {
	grade = strings.ToUpper(strings.TrimSpace(grade))
	if grade == "" {
		return "F"
	}
	switch grade[0] {
	case 'A', 'B', 'C', 'D', 'F':
		return string(grade[0])
	default:
		return "F"
	}
}

func buildQualityControlPrompt(cand *models.VideoCandidate, keyDetail *models.KeyDetailResult) string {
	return fmt.Sprintf(`You are a skeptical senior BJJ practitioner reviewing a key detail extracted from an instructional video. Your job is to catch bad extractions before they enter a technique library.

Flag and downgrade:
- generic or vague claims dressed up as specifics
- technically inaccurate mechanics
- unsafe advice (uncontrolled heel hooks, spine cranks taught carelessly)
- advice that only works on a non-resisting partner

Video: %s (%s)
Technique: %s
Extracted key detail: %s

Respond in JSON:
{
  "quality_grade": "A" | "B" | "C" | "D" | "F",
  "safety_concerns": "empty string if none",
  "improvement_suggestions": ["..."],
  "reasoning": "two or three sentences"
}

Grade A is reserved for precise, verifiable, high-leverage details. Grade C or below means the detail should not enter the library.`,
		cand.Title, cand.ChannelTitle, keyDetail.TechniqueName, keyDetail.KeyDetail)
}
