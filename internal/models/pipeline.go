package models

import "time"

// QuickFilterResult is the Stage 1 verdict: is this plausibly instructional
// content at all.
type QuickFilterResult struct {
	IsInstructional bool   `json:"is_instructional"`
	Reasoning       string `json:"reasoning"`
}

// KeyDetailResult is the Stage 2 extraction: exactly one specific, actionable
// coaching micro-adjustment plus a 0-40 quality score.
type KeyDetailResult struct {
	HasKeyDetail  bool   `json:"has_key_detail"`
	KeyDetail     string `json:"key_detail"`
	TechniqueName string `json:"technique_name"`
	Timestamp     string `json:"timestamp"` // best-guess "mm:ss"
	QualityScore  int    `json:"quality_score"` // 0-40
	Verified      bool   `json:"verified"`      // false when the elite no-transcript bypass was used
	Reasoning     string `json:"reasoning"`
}

// InstructorResult is the Stage 3 credibility check.
type InstructorResult struct {
	InstructorName   string `json:"instructor_name"`
	CredibilityScore int    `json:"credibility_score"` // 0-30
	IsElite          bool   `json:"is_elite"`
	Reasoning        string `json:"reasoning"`
}

// SevenDimensionResult is the holistic evaluator's verdict.
type SevenDimensionResult struct {
	Decision         string  `json:"decision"` // "ACCEPT" | "REJECT"
	FinalScore       float64 `json:"final_score"` // 0-100
	AcceptanceReason string  `json:"acceptance_reason"`

	InstructorAuthority float64 `json:"instructor_authority"`
	TaxonomyFit         float64 `json:"taxonomy_fit"`
	CoverageBalance     float64 `json:"coverage_balance"`
	Uniqueness          float64 `json:"uniqueness"`
	UserFeedback        float64 `json:"user_feedback"`
	AudienceFit         float64 `json:"audience_fit"`
	EmergingTechnique   float64 `json:"emerging_technique"`
}

// Accepted reports whether the evaluator voted to admit the candidate.
func (r *SevenDimensionResult) Accepted() bool {
	return r.Decision == "ACCEPT"
}

// QualityControlResult is the Stage 4 adversarial second opinion.
type QualityControlResult struct {
	Approved               bool     `json:"approved"` // grade A or B
	QualityGrade           string   `json:"quality_grade"` // "A".."F"
	SafetyConcerns         string   `json:"safety_concerns"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
	Reasoning              string   `json:"reasoning"`
}

// PersonalizationResult is the Stage 5 audience-fit score. Never gating on
// its own; the aggregator applies at most a small penalty from it.
type PersonalizationResult struct {
	MatchScore      int    `json:"match_score"` // 0-100
	BeltAppropriate bool   `json:"belt_appropriate"`
	StyleMatch      bool   `json:"style_match"`
	Reasoning       string `json:"reasoning"`
}

// TimestampDetail is one discrete teaching point inside a video.
type TimestampDetail struct {
	Time        int      `json:"time"` // seconds from start
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// TimestampResult is the Stage 6 teaching-point map, keyed by descriptive
// slug ("setup", "grip_details", "common_mistakes", ...).
type TimestampResult struct {
	Timestamps map[string]TimestampDetail `json:"timestamps"`
	Confidence string                     `json:"confidence"` // "high" | "medium" | "low"
	MetMinimum bool                       `json:"met_minimum"`
}

// TaxonomyData is the derived classification of a technique. Purely a
// function of text; recomputable at any time.
type TaxonomyData struct {
	TechniqueType    string   `json:"technique_type"` // "attack" | "defense" | "concept"
	PositionCategory string   `json:"position_category,omitempty"`
	GiOrNogi         string   `json:"gi_or_nogi,omitempty"` // "gi" | "nogi" | "both"
	Tags             []string `json:"tags"` // deduplicated, max 10
}

// MultiStageResult is the aggregate of one pipeline run. Only accepted
// results are persisted into the knowledge base; the per-stage records are
// diagnostic data.
type MultiStageResult struct {
	VideoID       string    `json:"video_id"`
	Title         string    `json:"title"`
	ChannelTitle  string    `json:"channel_title"`
	URL           string    `json:"url"`
	EvaluatedAt   time.Time `json:"evaluated_at"`
	TechniqueName string    `json:"technique_name"`

	QuickFilter     *QuickFilterResult    `json:"quick_filter,omitempty"`
	KeyDetail       *KeyDetailResult      `json:"key_detail,omitempty"`
	Instructor      *InstructorResult     `json:"instructor,omitempty"`
	SevenDimension  *SevenDimensionResult `json:"seven_dimension,omitempty"`
	QualityControl  *QualityControlResult `json:"quality_control,omitempty"`
	Personalization *PersonalizationResult `json:"personalization,omitempty"`
	TimestampMap    *TimestampResult      `json:"timestamp_map,omitempty"`
	Taxonomy        *TaxonomyData         `json:"taxonomy,omitempty"`

	// LegacyScore is the weighted composite retained for audit. The
	// effective gate runs on FinalScore, which is the seven-dimension
	// score after grade floors and the belt penalty.
	LegacyScore  int     `json:"legacy_score"`
	FinalScore   float64 `json:"final_score"` // 0-100
	Accepted     bool    `json:"accepted"`
	RejectReason string  `json:"reject_reason,omitempty"`
}
