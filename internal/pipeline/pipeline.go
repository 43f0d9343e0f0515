// Package pipeline implements the multi-stage evaluation that decides
// whether a candidate video is admitted into the technique knowledge base.
//
// Stages run strictly in order per candidate, and any gate can stop the run
// with a single rejection reason:
//
//	quick filter -> key detail -> instructor -> seven-dimension -> quality
//	control -> personalization -> aggregate (+ timestamps, taxonomy)
//
// Later stages assume earlier outputs exist; do not reorder.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tkramer22/bjj-os-sub000/internal/models"
	"github.com/tkramer22/bjj-os-sub000/internal/registry"
	"github.com/tkramer22/bjj-os-sub000/internal/taxonomy"
	"github.com/tkramer22/bjj-os-sub000/shared/ai"
	"github.com/tkramer22/bjj-os-sub000/shared/quota"
	"github.com/tkramer22/bjj-os-sub000/shared/storage"
)

// ErrRunCancelled signals a cooperative abort between stages. A cancelled
// candidate must not be persisted.
var ErrRunCancelled = errors.New("run cancelled")

// judgeTimeout bounds every external judgment call.
const judgeTimeout = 90 * time.Second

// Pipeline evaluates candidates. Stateless across candidates; safe to share
// between goroutines evaluating independent candidates.
type Pipeline struct {
	judge     ai.Judge
	registry  *registry.EliteRegistry
	catalog   *storage.Catalog
	cancels   *quota.CancelSet
	profile   models.AudienceProfile
	evaluator *SevenDimensionEvaluator
}

func New(judge ai.Judge, reg *registry.EliteRegistry, catalog *storage.Catalog, cancels *quota.CancelSet, profile models.AudienceProfile) *Pipeline {
	return &Pipeline{
		judge:     judge,
		registry:  reg,
		catalog:   catalog,
		cancels:   cancels,
		profile:   profile,
		evaluator: NewSevenDimensionEvaluator(catalog),
	}
}

// Evaluate runs the full pipeline for one candidate. Gate failures come back
// as a result with Accepted=false and exactly one RejectReason; an error is
// returned only for cancellation or malformed input, and the caller is
// expected to skip the candidate and continue the batch.
func (p *Pipeline) Evaluate(ctx context.Context, runID string, cand *models.VideoCandidate) (*models.MultiStageResult, error) {
	if cand == nil {
		return nil, fmt.Errorf("candidate cannot be nil")
	}
	if cand.ID == "" {
		return nil, fmt.Errorf("candidate ID is required")
	}

	result := &models.MultiStageResult{
		VideoID:      cand.ID,
		Title:        cand.Title,
		ChannelTitle: cand.ChannelTitle,
		URL:          cand.URL,
		EvaluatedAt:  time.Now(),
	}

	// Stage 1: quick filter
	if err := p.checkpoint(ctx, runID); err != nil {
		return nil, err
	}
	result.QuickFilter = p.runQuickFilter(ctx, cand)
	if !result.QuickFilter.IsInstructional {
		return reject(result, "Not instructional content."), nil
	}

	// Stage 2: key detail extraction
	if err := p.checkpoint(ctx, runID); err != nil {
		return nil, err
	}
	result.KeyDetail = p.runKeyDetail(ctx, cand)
	if !result.KeyDetail.HasKeyDetail {
		if !cand.HasTranscript() {
			return reject(result, "Cannot verify key details without transcript."), nil
		}
		return reject(result, "No actionable key detail found."), nil
	}
	if result.KeyDetail.QualityScore < minKeyDetailScore {
		return reject(result, fmt.Sprintf("Key detail quality too low (%d/40).", result.KeyDetail.QualityScore)), nil
	}
	result.TechniqueName = result.KeyDetail.TechniqueName

	// Stage 3: instructor verification (feeds scoring, never gates alone)
	if err := p.checkpoint(ctx, runID); err != nil {
		return nil, err
	}
	result.Instructor = p.runInstructorCheck(ctx, cand)

	// Seven-dimension evaluation: hard gate
	if err := p.checkpoint(ctx, runID); err != nil {
		return nil, err
	}
	result.SevenDimension = p.evaluator.Evaluate(cand, result.KeyDetail, result.Instructor, p.profile)
	if !result.SevenDimension.Accepted() {
		return reject(result, fmt.Sprintf("Seven-dimension evaluation rejected: %s", result.SevenDimension.AcceptanceReason)), nil
	}

	// Stage 4: quality control, skipped for elite no-transcript bypasses
	// that the seven-dimension evaluator already accepted.
	if err := p.checkpoint(ctx, runID); err != nil {
		return nil, err
	}
	if !result.KeyDetail.Verified {
		log.Printf("QC bypass for %s: elite instructor, no transcript, seven-dimension accept", cand.ID)
		result.QualityControl = bypassApproval(result.Instructor)
	} else {
		result.QualityControl = p.runQualityControl(ctx, cand, result.KeyDetail)
	}
	if !result.QualityControl.Approved {
		return reject(result, fmt.Sprintf("Quality control grade %s below acceptance bar.", result.QualityControl.QualityGrade)), nil
	}

	// Stage 5: personalization (penalty input only)
	if err := p.checkpoint(ctx, runID); err != nil {
		return nil, err
	}
	result.Personalization = p.runPersonalization(ctx, result.KeyDetail)

	// Aggregate scores and decide.
	if err := p.checkpoint(ctx, runID); err != nil {
		return nil, err
	}
	aggregate(result)
	if !result.Accepted {
		return result, nil
	}

	// Stage 6 and taxonomy only run for accepted candidates.
	result.TimestampMap = p.runTimestampExtraction(ctx, cand)
	result.Taxonomy = taxonomy.Classify(cand.Title, cand.Description, result.TechniqueName)

	return result, nil
}

// checkpoint is the cooperative cancellation check before each stage
// transition.
func (p *Pipeline) checkpoint(ctx context.Context, runID string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRunCancelled, err)
	}
	if p.cancels != nil && runID != "" && p.cancels.IsCancelled(runID) {
		return ErrRunCancelled
	}
	return nil
}

func reject(result *models.MultiStageResult, reason string) *models.MultiStageResult {
	result.Accepted = false
	result.RejectReason = reason
	log.Printf("Rejected %s: %s", result.VideoID, reason)
	return result
}
