// Package taxonomy derives the technique classification (type, position,
// gi/no-gi applicability, tags) from candidate text. Pure keyword matching,
// no external calls; the only "failure mode" is falling back to a default.
package taxonomy

import (
	"strings"

	"github.com/tkramer22/bjj-os-sub000/internal/models"
)

// Classify builds TaxonomyData from the candidate's title and description
// plus the technique name extracted in Stage 2. Always returns a complete
// structure.
func Classify(title, description, techniqueName string) *models.TaxonomyData {
	text := strings.ToLower(title + " " + description + " " + techniqueName)

	return &models.TaxonomyData{
		TechniqueType:    classifyType(text),
		PositionCategory: classifyPosition(text),
		GiOrNogi:         classifyGiNogi(text),
		Tags:             buildTags(text),
	}
}

// classifyType resolves the technique type with priority defense > attack >
// concept, defaulting to attack.
func classifyType(text string) string {
	if matchesAny(text, defenseKeywords) {
		return "defense"
	}
	if matchesAny(text, attackKeywords) {
		return "attack"
	}
	if matchesAny(text, conceptKeywords) {
		return "concept"
	}
	return "attack"
}

// classifyPosition returns the first matching position bucket, or "" when no
// bucket matches.
func classifyPosition(text string) string {
	for _, bucket := range positionCategories {
		if matchesAny(text, bucket.Keywords) {
			return bucket.Category
		}
	}
	return ""
}

func classifyGiNogi(text string) string {
	if matchesAny(text, bothKeywords) {
		return "both"
	}

	gi := matchesAny(text, giKeywords)
	nogi := matchesAny(text, nogiKeywords)

	switch {
	case gi && nogi:
		return "both"
	case gi:
		return "gi"
	case nogi:
		return "nogi"
	default:
		return "both"
	}
}

// buildTags unions matched common-technique keywords with the resolved
// position category, deduplicated in match order and capped at maxTags.
func buildTags(text string) []string {
	tags := make([]string, 0, maxTags)
	seen := make(map[string]bool)

	add := func(tag string) {
		if tag == "" || seen[tag] || len(tags) >= maxTags {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	for _, tech := range commonTechniques {
		if strings.Contains(text, tech) {
			add(strings.ReplaceAll(tech, " ", "_"))
		}
	}
	add(classifyPosition(text))

	return tags
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
