package pipeline

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/tkramer22/bjj-os-sub000/internal/models"
	"github.com/tkramer22/bjj-os-sub000/internal/taxonomy"
	"github.com/tkramer22/bjj-os-sub000/shared/storage"
)

// Dimension weights. Must sum to 1.
const (
	weightAuthority = 0.20
	weightTaxonomy  = 0.15
	weightCoverage  = 0.15
	weightUnique    = 0.15
	weightFeedback  = 0.10
	weightAudience  = 0.15
	weightEmerging  = 0.10

	// sevenDimAcceptThreshold is the evaluator's own accept bar; the
	// aggregator applies the separate final-score gate afterwards.
	sevenDimAcceptThreshold = 60.0
)

// emergingKeywords mark techniques currently trending in the competition
// meta; matches get a novelty boost.
var emergingKeywords = []string{
	"k guard", "k-guard", "buggy choke", "matrix back take", "false reap",
	"body lock pass", "z lock", "ruotolo", "cradle", "wrestle up",
	"front headlock system", "dagestani handcuff",
}

// advancedKeywords pull the audience-fit score down for beginner-profiled
// audiences.
var advancedKeywords = []string{
	"berimbolo", "heel hook", "reaping", "50/50", "matrix", "crab ride",
	"advanced", "competition only",
}

// SevenDimensionEvaluator is the independent holistic scorer. Unlike the
// judgment-call stages it is deterministic: every dimension is computed from
// candidate fields and catalog reads.
type SevenDimensionEvaluator struct {
	catalog *storage.Catalog
}

func NewSevenDimensionEvaluator(catalog *storage.Catalog) *SevenDimensionEvaluator {
	return &SevenDimensionEvaluator{catalog: catalog}
}

// Evaluate scores the candidate across all seven dimensions and renders an
// ACCEPT/REJECT verdict. A REJECT here terminates the pipeline regardless of
// how Stages 1-3 went.
func (e *SevenDimensionEvaluator) Evaluate(cand *models.VideoCandidate, keyDetail *models.KeyDetailResult, instructor *models.InstructorResult, profile models.AudienceProfile) *models.SevenDimensionResult {
	tax := taxonomy.Classify(cand.Title, cand.Description, keyDetail.TechniqueName)
	text := strings.ToLower(cand.Title + " " + cand.Description + " " + keyDetail.TechniqueName)

	result := &models.SevenDimensionResult{
		InstructorAuthority: e.scoreAuthority(instructor),
		TaxonomyFit:         e.scoreTaxonomyFit(tax),
		CoverageBalance:     e.scoreCoverageBalance(tax.PositionCategory),
		Uniqueness:          e.scoreUniqueness(keyDetail.TechniqueName),
		UserFeedback:        e.scoreFeedback(cand.ChannelTitle),
		AudienceFit:         e.scoreAudienceFit(text, profile),
		EmergingTechnique:   e.scoreEmerging(text),
	}

	result.FinalScore = clampScore(
		result.InstructorAuthority*weightAuthority +
			result.TaxonomyFit*weightTaxonomy +
			result.CoverageBalance*weightCoverage +
			result.Uniqueness*weightUnique +
			result.UserFeedback*weightFeedback +
			result.AudienceFit*weightAudience +
			result.EmergingTechnique*weightEmerging)

	if result.FinalScore >= sevenDimAcceptThreshold {
		result.Decision = "ACCEPT"
		result.AcceptanceReason = fmt.Sprintf("Scored %.0f/100; strongest dimension: %s", result.FinalScore, strongestDimension(result))
	} else {
		result.Decision = "REJECT"
		result.AcceptanceReason = fmt.Sprintf("Scored %.0f/100, below %.0f; weakest dimension: %s", result.FinalScore, sevenDimAcceptThreshold, weakestDimension(result))
	}

	return result
}

// scoreAuthority maps the 0-30 credibility score onto 0-100, with a floor
// for roster-confirmed elite instructors.
func (e *SevenDimensionEvaluator) scoreAuthority(instructor *models.InstructorResult) float64 {
	score := float64(instructor.CredibilityScore) / maxCredibilityScore * 100
	if instructor.IsElite && score < 80 {
		score = 80
	}
	return clampScore(score)
}

// scoreTaxonomyFit rewards candidates the classifier can place cleanly.
func (e *SevenDimensionEvaluator) scoreTaxonomyFit(tax *models.TaxonomyData) float64 {
	score := 50.0
	if tax.PositionCategory != "" {
		score = 80
	}
	score += float64(len(tax.Tags)) * 2
	return clampScore(score)
}

// scoreCoverageBalance rewards filling underrepresented catalog categories
// and penalizes piling onto oversaturated ones. Scored off the z-score of
// the candidate's category count against all category counts.
func (e *SevenDimensionEvaluator) scoreCoverageBalance(category string) float64 {
	counts := e.catalog.CategoryCounts()
	if len(counts) == 0 {
		return 70 // empty catalog: everything fills a gap
	}

	var data stats.Float64Data
	for _, n := range counts {
		data = append(data, float64(n))
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return 70
	}
	stddev, err := stats.StandardDeviation(data)
	if err != nil || stddev == 0 {
		if float64(counts[category]) > mean {
			return 50
		}
		return 70
	}

	z := (float64(counts[category]) - mean) / stddev
	return clampScore(70 - 25*z)
}

// scoreUniqueness compares the technique name against the stored catalog.
func (e *SevenDimensionEvaluator) scoreUniqueness(techniqueName string) float64 {
	return clampScore(100 * (1 - e.catalog.MaxSimilarity(techniqueName)))
}

// scoreFeedback folds in the aggregated user-rating signal for the channel;
// neutral when no feedback exists yet.
func (e *SevenDimensionEvaluator) scoreFeedback(channel string) float64 {
	signal, ok := e.catalog.ChannelFeedback(channel)
	if !ok || signal.Ratings == 0 {
		return 60
	}
	return clampScore((signal.AverageRating - 1) / 4 * 100)
}

// scoreAudienceFit checks the technique's difficulty against the target
// audience's skill level.
func (e *SevenDimensionEvaluator) scoreAudienceFit(text string, profile models.AudienceProfile) float64 {
	score := 70.0

	beginner := strings.Contains(strings.ToLower(profile.SkillLevel), "white") ||
		strings.Contains(strings.ToLower(profile.SkillLevel), "beginner")
	if beginner {
		for _, kw := range advancedKeywords {
			if strings.Contains(text, kw) {
				score -= 15
				break
			}
		}
	}

	for _, focus := range profile.FocusAreas {
		if focus != "" && strings.Contains(text, strings.ToLower(focus)) {
			score += 15
			break
		}
	}

	return clampScore(score)
}

// scoreEmerging boosts techniques from the current competition meta.
func (e *SevenDimensionEvaluator) scoreEmerging(text string) float64 {
	for _, kw := range emergingKeywords {
		if strings.Contains(text, kw) {
			return 85
		}
	}
	return 50
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func dimensionScores(r *models.SevenDimensionResult) map[string]float64 {
	return map[string]float64{
		"instructor authority": r.InstructorAuthority,
		"taxonomy fit":         r.TaxonomyFit,
		"coverage balance":     r.CoverageBalance,
		"uniqueness":           r.Uniqueness,
		"user feedback":        r.UserFeedback,
		"audience fit":         r.AudienceFit,
		"emerging technique":   r.EmergingTechnique,
	}
}

func strongestDimension(r *models.SevenDimensionResult) string {
	best, bestScore := "", -1.0
	for name, score := range dimensionScores(r) {
		if score > bestScore || (score == bestScore && name < best) {
			best, bestScore = name, score
		}
	}
	return best
}

func weakestDimension(r *models.SevenDimensionResult) string {
	worst, worstScore := "", 101.0
	for name, score := range dimensionScores(r) {
		if score < worstScore || (score == worstScore && name < worst) {
			worst, worstScore = name, score
		}
	}
	return worst
}
