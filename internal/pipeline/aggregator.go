package pipeline

import (
	"fmt"
	"log"

	"github.com/tkramer22/bjj-os-sub000/internal/models"
)

// Fixed components of the legacy composite. The composite predates the
// seven-dimension evaluator and is retained for audit; the effective gate
// runs on the seven-dimension score.
const (
	teachingClarityScore   = 15
	productionQualityScore = 10

	// Grade floors applied to the seven-dimension score.
	gradeAFloor = 80.0
	gradeBFloor = 72.0

	// Belt-appropriateness penalty, capped and floored.
	beltPenalty      = 5.0
	beltPenaltyFloor = 65.0

	// acceptThreshold is the final-score gate.
	acceptThreshold = 65.0
)

// aggregate reconciles the stage outputs into the final score and decision.
// It assumes Stages 2-5 and the seven-dimension evaluator have all run and
// passed their own gates; the remaining conditions here are checked in order
// and the first unmet one becomes the single rejection reason.
func aggregate(result *models.MultiStageResult) {
	result.LegacyScore = result.KeyDetail.QualityScore +
		result.Instructor.CredibilityScore +
		teachingClarityScore +
		productionQualityScore

	final := result.SevenDimension.FinalScore

	switch result.QualityControl.QualityGrade {
	case "A":
		if final < gradeAFloor {
			final = gradeAFloor
		}
	case "B":
		if final < gradeBFloor {
			final = gradeBFloor
		}
	}

	if !result.Personalization.BeltAppropriate {
		penalized := final - beltPenalty
		if penalized < beltPenaltyFloor {
			penalized = beltPenaltyFloor
		}
		final = penalized
	}

	result.FinalScore = clampScore(final)

	switch {
	case !result.SevenDimension.Accepted():
		reject(result, fmt.Sprintf("Seven-dimension evaluation rejected: %s", result.SevenDimension.AcceptanceReason))
	case !result.QualityControl.Approved:
		reject(result, fmt.Sprintf("Quality control grade %s below acceptance bar.", result.QualityControl.QualityGrade))
	case result.FinalScore < acceptThreshold:
		reject(result, fmt.Sprintf("Final score %.0f below acceptance threshold (%.0f).", result.FinalScore, acceptThreshold))
	default:
		result.Accepted = true
		log.Printf("Accepted %s: %s scored %.0f (legacy composite %d)",
			result.VideoID, result.TechniqueName, result.FinalScore, result.LegacyScore)
	}
}
