// Package techniquecurator wires discovery, the multi-stage evaluation
// pipeline, the knowledge base and the digest email into a scheduled agent.
package techniquecurator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tkramer22/bjj-os-sub000/agents/technique-curator/youtube"
	"github.com/tkramer22/bjj-os-sub000/internal/models"
	"github.com/tkramer22/bjj-os-sub000/internal/pipeline"
	"github.com/tkramer22/bjj-os-sub000/internal/registry"
	"github.com/tkramer22/bjj-os-sub000/shared/ai"
	"github.com/tkramer22/bjj-os-sub000/shared/config"
	"github.com/tkramer22/bjj-os-sub000/shared/email"
	"github.com/tkramer22/bjj-os-sub000/shared/quota"
	"github.com/tkramer22/bjj-os-sub000/shared/scheduler"
	"github.com/tkramer22/bjj-os-sub000/shared/storage"
)

// trackerRetention is how long evaluated candidates stay suppressed.
const trackerRetention = 7 * 24 * time.Hour

// CuratorMetrics summarizes one batch run.
type CuratorMetrics struct {
	RunID       string
	VideosFound int
	Analyzed    int
	Added       int
	Skipped     int
	Errors      int
}

// GetSummary implements scheduler.Metrics.
func (m CuratorMetrics) GetSummary() string {
	return fmt.Sprintf("found %d videos, analyzed %d, added %d techniques", m.VideosFound, m.Analyzed, m.Added)
}

// TechniqueAgent implements the scheduler.Agent interface.
type TechniqueAgent struct {
	config        *config.Config
	youtubeClient *youtube.Client
	judge         ai.Judge
	pipeline      *pipeline.Pipeline
	emailSender   *email.Sender
	tracker       *storage.CandidateTracker
	catalog       *storage.Catalog
	quotaCounter  *quota.Counter
	cancels       *quota.CancelSet
}

func NewTechniqueAgent(cfg *config.Config) *TechniqueAgent {
	return &TechniqueAgent{
		config:  cfg,
		cancels: quota.NewCancelSet(),
	}
}

func (t *TechniqueAgent) Name() string {
	return "Technique Curator"
}

func (t *TechniqueAgent) Initialize() error {
	log.Printf("Initializing %s...", t.Name())

	if t.quotaCounter == nil {
		t.quotaCounter = quota.NewCounter(t.config.YouTube.DailyQuota, t.config.YouTube.RequestsPerSecond)
	}

	if t.youtubeClient == nil {
		client, err := youtube.NewClient(&t.config.YouTube, t.quotaCounter)
		if err != nil {
			return fmt.Errorf("failed to create YouTube client: %w", err)
		}
		t.youtubeClient = client
		log.Println("YouTube client initialized")
	}

	if t.judge == nil {
		judge, err := ai.NewClient(&t.config.AI)
		if err != nil {
			return fmt.Errorf("failed to create judgment client: %w", err)
		}
		t.judge = judge
		log.Println("Judgment client initialized")
	}

	if t.catalog == nil {
		catalog, err := storage.NewCatalog(t.config.Curator.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open knowledge base: %w", err)
		}
		t.catalog = catalog
		log.Printf("Knowledge base opened (%d techniques)", catalog.Size())
	}

	if t.tracker == nil {
		tracker, err := storage.NewCandidateTracker(t.config.Curator.DataDir, trackerRetention)
		if err != nil {
			return fmt.Errorf("failed to create candidate tracker: %w", err)
		}
		t.tracker = tracker
		log.Printf("Candidate tracker initialized (%d candidates tracked)", tracker.EvaluatedCount())
	}

	if t.pipeline == nil {
		profile := models.AudienceProfile{
			SkillLevel:       t.config.Curator.AudienceProfile.SkillLevel,
			StylePreference:  t.config.Curator.AudienceProfile.StylePreference,
			FocusAreas:       t.config.Curator.AudienceProfile.FocusAreas,
			RecentTechniques: t.config.Curator.AudienceProfile.RecentTechniques,
		}
		t.pipeline = pipeline.New(t.judge, registry.New(), t.catalog, t.cancels, profile)
	}

	if t.emailSender == nil {
		t.emailSender = email.NewSender(&t.config.Email)
		log.Println("Email sender initialized")
	}

	return nil
}

// CancelRun flags an in-flight run for cooperative abort between stages.
func (t *TechniqueAgent) CancelRun(runID string) {
	t.cancels.Cancel(runID)
}

func (t *TechniqueAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()
	runID := uuid.NewString()
	defer t.cancels.Clear(runID)

	log.Printf("Starting run %s", runID)

	log.Println("Searching YouTube for candidate videos...")
	candidates, err := t.youtubeClient.SearchCandidates(ctx, t.config.YouTube.MaxResults)
	if err != nil {
		return fmt.Errorf("failed to discover candidates: %w", err)
	}

	metrics := CuratorMetrics{RunID: runID, VideosFound: len(candidates)}

	// Filter out already evaluated candidates.
	var fresh []*models.VideoCandidate
	for _, cand := range candidates {
		if t.tracker.IsEvaluated(cand.ID) {
			metrics.Skipped++
			continue
		}
		fresh = append(fresh, cand)
	}

	log.Printf("Found %d videos (%d new, %d already evaluated)", len(candidates), len(fresh), metrics.Skipped)

	if len(fresh) == 0 {
		t.finish(events, metrics, startTime, nil)
		return nil
	}

	accepted, evaluatedIDs, errCount, err := t.evaluateBatch(ctx, runID, fresh)
	metrics.Analyzed = len(evaluatedIDs)
	metrics.Errors = errCount
	if err != nil {
		return err
	}

	// Mark candidates as evaluated, rejected ones included.
	if len(evaluatedIDs) > 0 {
		if err := t.tracker.MarkMultipleEvaluated(evaluatedIDs); err != nil {
			log.Printf("Warning: Failed to mark candidates as evaluated: %v", err)
		}
	}

	for _, result := range accepted {
		if err := t.catalog.Add(result); err != nil {
			log.Printf("Warning: Failed to persist %s: %v", result.VideoID, err)
			continue
		}
		metrics.Added++
	}

	log.Printf("Run %s complete: %d analyzed, %d added, %d errors", runID, metrics.Analyzed, metrics.Added, metrics.Errors)

	if metrics.Added > 0 {
		report := &models.RunReport{
			RunID:    runID,
			Date:     time.Now(),
			Accepted: accepted,
			Analyzed: metrics.Analyzed,
			Added:    metrics.Added,
			Skipped:  metrics.Skipped,
			Errors:   metrics.Errors,
		}
		if err := t.emailSender.SendReport(report); err != nil {
			log.Printf("Warning: Failed to send digest email: %v", err)
			if events != nil && events.OnPartialFailure != nil {
				events.OnPartialFailure(fmt.Errorf("digest email failed: %w", err), time.Since(startTime))
			}
		} else {
			log.Println("Digest email sent")
		}
	}

	t.finish(events, metrics, startTime, nil)
	return nil
}

// evaluateBatch runs the pipeline over the fresh candidates, bounded-parallel
// across candidates. Per-candidate failures are counted and skipped; the
// batch aborts when more than half of the candidates error, or when the run
// is cancelled.
func (t *TechniqueAgent) evaluateBatch(ctx context.Context, runID string, fresh []*models.VideoCandidate) ([]*models.MultiStageResult, []string, int, error) {
	var (
		mu           sync.Mutex
		accepted     []*models.MultiStageResult
		evaluatedIDs []string
		errCount     int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.config.Curator.Parallelism)

	for i, cand := range fresh {
		g.Go(func() error {
			log.Printf("Evaluating candidate %d/%d: %s", i+1, len(fresh), cand.Title)

			result, err := t.pipeline.Evaluate(gctx, runID, cand)
			if err != nil {
				if errors.Is(err, pipeline.ErrRunCancelled) {
					return err
				}
				log.Printf("Warning: Failed to evaluate %s (%s): %v", cand.ID, cand.Title, err)
				mu.Lock()
				errCount++
				tooMany := errCount > len(fresh)/2
				mu.Unlock()
				if tooMany {
					return fmt.Errorf("too many evaluation failures (%d/%d), stopping", errCount, len(fresh))
				}
				return nil
			}

			mu.Lock()
			evaluatedIDs = append(evaluatedIDs, cand.ID)
			if result.Accepted {
				accepted = append(accepted, result)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, pipeline.ErrRunCancelled) {
			log.Printf("Run %s cancelled; partial results discarded", runID)
			return nil, evaluatedIDs, errCount, err
		}
		return nil, evaluatedIDs, errCount, err
	}

	return accepted, evaluatedIDs, errCount, nil
}

func (t *TechniqueAgent) finish(events *scheduler.AgentEvents, metrics CuratorMetrics, startTime time.Time, err error) {
	if events == nil {
		return
	}
	duration := time.Since(startTime)
	if err == nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, duration)
	}
}
