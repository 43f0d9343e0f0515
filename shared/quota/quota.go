// Package quota guards the shared mutable state around batch processing:
// the discovery API quota counter and the cancellation signal set. Both are
// injectable and safe under concurrent candidate evaluation.
package quota

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// ErrQuotaExhausted signals that the daily discovery budget is spent.
var ErrQuotaExhausted = errors.New("discovery API quota exhausted")

// Counter tracks spend against a daily API-unit budget. The window resets
// lazily on the first reservation of a new UTC day.
type Counter struct {
	limit   int64
	used    atomic.Int64
	day     atomic.Int64 // unix day of the current window
	limiter *rate.Limiter
}

// NewCounter creates a counter with the given daily unit budget and a
// request-per-second cap.
func NewCounter(dailyLimit int64, requestsPerSecond float64) *Counter {
	c := &Counter{
		limit:   dailyLimit,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
	c.day.Store(unixDay(time.Now()))
	return c
}

// Reserve blocks until the rate limiter admits the call, then charges the
// given number of quota units. Returns ErrQuotaExhausted when the daily
// budget cannot cover the charge.
func (c *Counter) Reserve(ctx context.Context, units int64) error {
	today := unixDay(time.Now())
	if c.day.Swap(today) != today {
		c.used.Store(0)
	}

	if c.used.Add(units) > c.limit {
		c.used.Add(-units)
		return ErrQuotaExhausted
	}

	if err := c.limiter.Wait(ctx); err != nil {
		c.used.Add(-units)
		return err
	}
	return nil
}

// Used returns the units charged in the current window.
func (c *Counter) Used() int64 {
	return c.used.Load()
}

func unixDay(t time.Time) int64 {
	return t.UTC().Unix() / 86400
}

// CancelSet is the shared "cancelled job" signal, checked between pipeline
// stages so a long batch can be aborted mid-flight without writing partial
// results.
type CancelSet struct {
	mu        sync.RWMutex
	cancelled map[string]bool
}

func NewCancelSet() *CancelSet {
	return &CancelSet{cancelled: make(map[string]bool)}
}

// Cancel flags a run ID for cooperative abort.
func (s *CancelSet) Cancel(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled[runID] = true
}

// IsCancelled reports whether the run has been flagged.
func (s *CancelSet) IsCancelled(runID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cancelled[runID]
}

// Clear removes the flag once the run has fully stopped.
func (s *CancelSet) Clear(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cancelled, runID)
}
