package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkramer22/bjj-os-sub000/internal/models"
	"github.com/tkramer22/bjj-os-sub000/internal/registry"
	"github.com/tkramer22/bjj-os-sub000/shared/quota"
	"github.com/tkramer22/bjj-os-sub000/shared/storage"
)

// fakeJudge returns queued canned responses in call order. The pipeline's
// judgment calls are stochastic in production, so tests only assert the
// structural verdict fields, never reasoning text.
type fakeJudge struct {
	mu        sync.Mutex
	responses []string
	calls     int
	err       error
}

func (f *fakeJudge) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("fakeJudge: no responses queued")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func (f *fakeJudge) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

const (
	quickFilterPass = `{"is_instructional": true, "reasoning": "teaches a technique"}`
	quickFilterFail = `{"is_instructional": false, "reasoning": "competition recap"}`

	instructorOK = `{"instructor_name": "Some Coach", "credibility_score": 20, "is_elite": false, "reasoning": "regional competitor"}`
	gradeAQC     = `{"quality_grade": "A", "safety_concerns": "", "improvement_suggestions": [], "reasoning": "precise detail"}`
	gradeCQC     = `{"quality_grade": "C", "safety_concerns": "", "improvement_suggestions": ["be more specific"], "reasoning": "too generic"}`
	personaOK    = `{"match_score": 75, "belt_appropriate": true, "style_match": true, "reasoning": "fits profile"}`
)

func keyDetailResp(score int) string {
	return fmt.Sprintf(`{"has_key_detail": true, "key_detail": "point the knee outward before entering", "technique_name": "knee cut pass", "timestamp": "02:10", "quality_score": %d, "reasoning": "specific"}`, score)
}

func timestampsResp(n int) string {
	out := `{"timestamps": {`
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`"point_%d": {"time": %d, "description": "step %d", "keywords": ["knee cut"]}`, i, 30*(i+1), i)
	}
	return out + `}}`
}

func testCandidate(transcript string) *models.VideoCandidate {
	return &models.VideoCandidate{
		ID:              "vid-1",
		Title:           "Knee Cut Pass Details",
		ChannelTitle:    "Some Grappling Channel",
		Description:     "Passing the guard with the knee cut",
		Duration:        "PT12M0S",
		DurationSeconds: 720,
		Transcript:      transcript,
	}
}

func newTestPipeline(t *testing.T, judge *fakeJudge) *Pipeline {
	t.Helper()
	catalog, err := storage.NewCatalog(t.TempDir())
	require.NoError(t, err)
	return New(judge, registry.New(), catalog, quota.NewCancelSet(), models.AudienceProfile{SkillLevel: "blue belt"})
}

func TestQuickFilterRejectShortCircuits(t *testing.T) {
	judge := &fakeJudge{responses: []string{quickFilterFail}}
	p := newTestPipeline(t, judge)

	result, err := p.Evaluate(context.Background(), "run-1", testCandidate("some transcript"))
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.NotEmpty(t, result.RejectReason)
	assert.Equal(t, 1, judge.callCount(), "no stage after the quick filter may call the judge")
	assert.Nil(t, result.KeyDetail)
}

func TestNoTranscriptUnknownChannelRejects(t *testing.T) {
	judge := &fakeJudge{responses: []string{quickFilterPass}}
	p := newTestPipeline(t, judge)

	result, err := p.Evaluate(context.Background(), "run-1", testCandidate(""))
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.Equal(t, "Cannot verify key details without transcript.", result.RejectReason)
	assert.False(t, result.KeyDetail.HasKeyDetail)
	assert.Equal(t, 0, result.KeyDetail.QualityScore)
	// Only the quick filter may have hit the judge.
	assert.Equal(t, 1, judge.callCount())
}

func TestEliteBypassNoTranscript(t *testing.T) {
	// Stage 4 is skipped for the bypass, so after the quick filter only the
	// instructor check, personalization and timestamps reach the judge.
	judge := &fakeJudge{responses: []string{
		quickFilterPass,
		`{"instructor_name": "Lachlan Giles", "credibility_score": 30, "is_elite": true, "reasoning": "ADCC medalist"}`,
		personaOK,
		timestampsResp(6),
	}}
	p := newTestPipeline(t, judge)

	cand := testCandidate("")
	cand.ChannelTitle = "Absolute MMA"

	result, err := p.Evaluate(context.Background(), "run-1", cand)
	require.NoError(t, err)

	require.True(t, result.KeyDetail.HasKeyDetail)
	assert.False(t, result.KeyDetail.Verified)
	assert.Less(t, result.KeyDetail.QualityScore, maxKeyDetailScore)
	assert.Equal(t, bypassQualityScore, result.KeyDetail.QualityScore)

	require.NotNil(t, result.QualityControl)
	assert.Equal(t, "B", result.QualityControl.QualityGrade)
	assert.True(t, result.QualityControl.Approved)

	assert.True(t, result.Accepted)
	assert.GreaterOrEqual(t, result.FinalScore, gradeBFloor)
	assert.LessOrEqual(t, result.FinalScore, 100.0)
}

func TestLowQualityKeyDetailRejects(t *testing.T) {
	judge := &fakeJudge{responses: []string{quickFilterPass, keyDetailResp(10)}}
	p := newTestPipeline(t, judge)

	result, err := p.Evaluate(context.Background(), "run-1", testCandidate("full transcript here"))
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.Equal(t, "Key detail quality too low (10/40).", result.RejectReason)
	assert.Equal(t, 2, judge.callCount())
}

func TestFullPassAccepts(t *testing.T) {
	judge := &fakeJudge{responses: []string{
		quickFilterPass,
		keyDetailResp(32),
		instructorOK,
		gradeAQC,
		personaOK,
		timestampsResp(8),
	}}
	p := newTestPipeline(t, judge)

	result, err := p.Evaluate(context.Background(), "run-1", testCandidate("full transcript"))
	require.NoError(t, err)

	require.True(t, result.Accepted, "reject reason: %s", result.RejectReason)
	assert.Empty(t, result.RejectReason)
	assert.GreaterOrEqual(t, result.FinalScore, 0.0)
	assert.LessOrEqual(t, result.FinalScore, 100.0)
	assert.Equal(t, "knee cut pass", result.TechniqueName)
	require.NotNil(t, result.Taxonomy)
	assert.LessOrEqual(t, len(result.Taxonomy.Tags), 10)
	require.NotNil(t, result.TimestampMap)
	assert.Equal(t, "high", result.TimestampMap.Confidence)
}

func TestSevenDimensionRejectSkipsLaterStages(t *testing.T) {
	judge := &fakeJudge{responses: []string{
		quickFilterPass,
		keyDetailResp(16),
		// Hobbyist channel with zero credibility tanks authority.
		`{"instructor_name": "Unknown", "credibility_score": 0, "is_elite": false, "reasoning": "unknown"}`,
	}}
	catalog, err := storage.NewCatalog(t.TempDir())
	require.NoError(t, err)
	// Saturate the candidate's category so coverage balance drops too.
	seedCatalog(t, catalog, "guard_passing", 8)

	p := New(judge, registry.New(), catalog, quota.NewCancelSet(), models.AudienceProfile{SkillLevel: "white belt"})

	cand := testCandidate("transcript")
	cand.Title = "Knee cut pass"
	cand.Description = "guard pass knee cut advanced berimbolo counters"

	result, err := p.Evaluate(context.Background(), "run-1", cand)
	require.NoError(t, err)

	require.False(t, result.Accepted)

	// Stage 4/5/6 must not have called the judge after a 7-D reject.
	assert.Equal(t, 3, judge.callCount())
	assert.Nil(t, result.QualityControl)
	assert.Nil(t, result.Personalization)
	assert.Nil(t, result.TimestampMap)
	assert.Contains(t, result.RejectReason, "Seven-dimension evaluation rejected")
}

func TestQualityControlGateRejects(t *testing.T) {
	judge := &fakeJudge{responses: []string{
		quickFilterPass,
		keyDetailResp(30),
		instructorOK,
		gradeCQC,
	}}
	p := newTestPipeline(t, judge)

	result, err := p.Evaluate(context.Background(), "run-1", testCandidate("transcript"))
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.Equal(t, "Quality control grade C below acceptance bar.", result.RejectReason)
	assert.Nil(t, result.TimestampMap, "timestamps only run for accepted candidates")
}

func TestJudgeFailureFailsClosed(t *testing.T) {
	judge := &fakeJudge{err: errors.New("transport error")}
	p := newTestPipeline(t, judge)

	result, err := p.Evaluate(context.Background(), "run-1", testCandidate("transcript"))
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.False(t, result.QuickFilter.IsInstructional)
}

func TestCancelledRunStopsBetweenStages(t *testing.T) {
	judge := &fakeJudge{responses: []string{quickFilterPass}}
	cancels := quota.NewCancelSet()
	catalog, err := storage.NewCatalog(t.TempDir())
	require.NoError(t, err)
	p := New(judge, registry.New(), catalog, cancels, models.AudienceProfile{})

	cancels.Cancel("run-9")

	result, err := p.Evaluate(context.Background(), "run-9", testCandidate("transcript"))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrRunCancelled)
	assert.Equal(t, 0, judge.callCount())
}

func TestUndercountTimestampsDoesNotFlipDecision(t *testing.T) {
	// 35-minute video expects 12 teaching points; only 6 come back. The
	// result stays accepted with a logged warning.
	judge := &fakeJudge{responses: []string{
		quickFilterPass,
		keyDetailResp(35),
		instructorOK,
		gradeAQC,
		personaOK,
		timestampsResp(6),
	}}
	p := newTestPipeline(t, judge)

	cand := testCandidate("transcript")
	cand.Duration = "PT35M0S"
	cand.DurationSeconds = 2100

	result, err := p.Evaluate(context.Background(), "run-1", cand)
	require.NoError(t, err)

	require.True(t, result.Accepted, "reject reason: %s", result.RejectReason)
	require.NotNil(t, result.TimestampMap)
	assert.False(t, result.TimestampMap.MetMinimum)
	assert.Len(t, result.TimestampMap.Timestamps, 6)
	assert.Equal(t, "high", result.TimestampMap.Confidence)
}

func TestMalformedCandidateReturnsError(t *testing.T) {
	p := newTestPipeline(t, &fakeJudge{})

	_, err := p.Evaluate(context.Background(), "run-1", nil)
	assert.Error(t, err)

	_, err = p.Evaluate(context.Background(), "run-1", &models.VideoCandidate{})
	assert.Error(t, err)
}

// seedCatalog stores n accepted entries under one position category.
func seedCatalog(t *testing.T, catalog *storage.Catalog, category string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := catalog.Add(&models.MultiStageResult{
			VideoID:       fmt.Sprintf("seed-%s-%d", category, i),
			TechniqueName: fmt.Sprintf("%s variation %d", category, i),
			Accepted:      true,
			Taxonomy:      &models.TaxonomyData{TechniqueType: "attack", PositionCategory: category},
		})
		require.NoError(t, err)
	}
}
