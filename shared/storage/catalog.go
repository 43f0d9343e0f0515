package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tkramer22/bjj-os-sub000/internal/models"
)

// Catalog is the technique knowledge base. Accepted MultiStageResults are
// appended here, and the seven-dimension evaluator reads it for coverage
// balance, uniqueness and aggregated user feedback.
type Catalog struct {
	entriesPath  string
	feedbackPath string
	entries      []*models.MultiStageResult
	feedback     map[string]FeedbackSignal
	mu           sync.RWMutex
}

// FeedbackSignal is the aggregated user-feedback record for a channel.
type FeedbackSignal struct {
	AverageRating float64 `json:"average_rating"` // 1-5
	Ratings       int     `json:"ratings"`
}

// NewCatalog opens (or creates) the knowledge base under dataDir.
func NewCatalog(dataDir string) (*Catalog, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	c := &Catalog{
		entriesPath:  filepath.Join(dataDir, "knowledge_base.json"),
		feedbackPath: filepath.Join(dataDir, "user_feedback.json"),
		feedback:     make(map[string]FeedbackSignal),
	}

	if err := loadJSON(c.entriesPath, &c.entries); err != nil {
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}
	if err := loadJSON(c.feedbackPath, &c.feedback); err != nil {
		return nil, fmt.Errorf("failed to load feedback data: %w", err)
	}
	if c.feedback == nil {
		c.feedback = make(map[string]FeedbackSignal)
	}

	return c, nil
}

// Add persists an accepted result into the knowledge base.
func (c *Catalog) Add(result *models.MultiStageResult) error {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}
	if !result.Accepted {
		return fmt.Errorf("refusing to persist rejected candidate %s", result.VideoID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = append(c.entries, result)
	return saveJSON(c.entriesPath, c.entries)
}

// Size returns the number of techniques in the knowledge base.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CategoryCounts returns how many stored techniques fall into each position
// category. Entries without a resolved category are grouped under "".
func (c *Catalog) CategoryCounts() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := make(map[string]int)
	for _, e := range c.entries {
		category := ""
		if e.Taxonomy != nil {
			category = e.Taxonomy.PositionCategory
		}
		counts[category]++
	}
	return counts
}

// MaxSimilarity returns the highest token-overlap similarity between the
// given technique name and any stored technique, in [0,1].
func (c *Catalog) MaxSimilarity(techniqueName string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	queryTokens := tokenSet(techniqueName)
	if len(queryTokens) == 0 {
		return 0
	}

	var best float64
	for _, e := range c.entries {
		if sim := jaccard(queryTokens, tokenSet(e.TechniqueName)); sim > best {
			best = sim
		}
	}
	return best
}

// ChannelFeedback looks up the aggregated user-feedback signal for a channel.
func (c *Catalog) ChannelFeedback(channel string) (FeedbackSignal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	signal, ok := c.feedback[strings.ToLower(strings.TrimSpace(channel))]
	return signal, ok
}

// RecordFeedback folds one user rating (1-5) into the channel's aggregate.
func (c *Catalog) RecordFeedback(channel string, rating float64) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating %.1f out of range [1,5]", rating)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(channel))
	signal := c.feedback[key]
	total := signal.AverageRating*float64(signal.Ratings) + rating
	signal.Ratings++
	signal.AverageRating = total / float64(signal.Ratings)
	c.feedback[key] = signal

	return saveJSON(c.feedbackPath, c.feedback)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set[tok] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

func loadJSON(path string, target any) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func saveJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
