package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkramer22/bjj-os-sub000/internal/models"
	"github.com/tkramer22/bjj-os-sub000/shared/storage"
)

func evalFixture(t *testing.T) (*SevenDimensionEvaluator, *storage.Catalog) {
	t.Helper()
	catalog, err := storage.NewCatalog(t.TempDir())
	require.NoError(t, err)
	return NewSevenDimensionEvaluator(catalog), catalog
}

func TestSevenDimensionScoreBounds(t *testing.T) {
	evaluator, _ := evalFixture(t)

	candidates := []*models.VideoCandidate{
		{ID: "a", Title: "Armbar from closed guard", Description: "gi fundamentals"},
		{ID: "b", Title: "K guard entry to matrix back take", Description: "no-gi advanced"},
		{ID: "c", Title: "", Description: ""},
	}

	for _, cand := range candidates {
		result := evaluator.Evaluate(cand,
			&models.KeyDetailResult{TechniqueName: cand.Title, QualityScore: 20},
			&models.InstructorResult{CredibilityScore: 15},
			models.AudienceProfile{SkillLevel: "blue belt"})

		assert.GreaterOrEqual(t, result.FinalScore, 0.0)
		assert.LessOrEqual(t, result.FinalScore, 100.0)
		assert.Contains(t, []string{"ACCEPT", "REJECT"}, result.Decision)
		assert.NotEmpty(t, result.AcceptanceReason)
	}
}

func TestAuthorityEliteFloor(t *testing.T) {
	evaluator, _ := evalFixture(t)

	elite := evaluator.scoreAuthority(&models.InstructorResult{CredibilityScore: 10, IsElite: true})
	assert.Equal(t, 80.0, elite)

	plain := evaluator.scoreAuthority(&models.InstructorResult{CredibilityScore: 10})
	assert.InDelta(t, 33.3, plain, 0.1)
}

func TestCoverageBalancePrefersGaps(t *testing.T) {
	evaluator, catalog := evalFixture(t)

	// Saturate guard passing, leave back control nearly empty.
	for i := 0; i < 9; i++ {
		require.NoError(t, catalog.Add(&models.MultiStageResult{
			VideoID:  fmt.Sprintf("gp-%d", i),
			Accepted: true,
			Taxonomy: &models.TaxonomyData{PositionCategory: "guard_passing"},
		}))
	}
	require.NoError(t, catalog.Add(&models.MultiStageResult{
		VideoID:  "bc-0",
		Accepted: true,
		Taxonomy: &models.TaxonomyData{PositionCategory: "back_control"},
	}))

	saturated := evaluator.scoreCoverageBalance("guard_passing")
	gap := evaluator.scoreCoverageBalance("back_control")

	assert.Greater(t, gap, saturated)
}

func TestCoverageBalanceEmptyCatalogIsNeutral(t *testing.T) {
	evaluator, _ := evalFixture(t)
	assert.Equal(t, 70.0, evaluator.scoreCoverageBalance("mount"))
}

func TestUniquenessAgainstCatalog(t *testing.T) {
	evaluator, catalog := evalFixture(t)

	require.NoError(t, catalog.Add(&models.MultiStageResult{
		VideoID:       "dup",
		Accepted:      true,
		TechniqueName: "knee cut pass",
		Taxonomy:      &models.TaxonomyData{PositionCategory: "guard_passing"},
	}))

	duplicate := evaluator.scoreUniqueness("knee cut pass")
	novel := evaluator.scoreUniqueness("berimbolo back take")

	assert.Equal(t, 0.0, duplicate)
	assert.Equal(t, 100.0, novel)
}

func TestFeedbackSignal(t *testing.T) {
	evaluator, catalog := evalFixture(t)

	assert.Equal(t, 60.0, evaluator.scoreFeedback("Unknown Channel"))

	require.NoError(t, catalog.RecordFeedback("Great Channel", 5))
	require.NoError(t, catalog.RecordFeedback("Great Channel", 5))
	assert.Equal(t, 100.0, evaluator.scoreFeedback("Great Channel"))

	require.NoError(t, catalog.RecordFeedback("Bad Channel", 1))
	assert.Equal(t, 0.0, evaluator.scoreFeedback("Bad Channel"))
}

func TestEmergingTechniqueBoost(t *testing.T) {
	evaluator, _ := evalFixture(t)

	assert.Equal(t, 85.0, evaluator.scoreEmerging("k guard entry to the saddle"))
	assert.Equal(t, 50.0, evaluator.scoreEmerging("classic armbar from mount"))
}
