package cache

import (
	"strings"
	"sync"
	"sync/atomic"
)

// ScoreCache memoises sentiment scores by comment text. Repeated comments
// ("Thanks!", emoji-only replies) are common across posts and datasets.
type ScoreCache struct {
	scores sync.Map
	hits   atomic.Int64
	misses atomic.Int64
}

// NewScoreCache creates an empty cache.
func NewScoreCache() *ScoreCache {
	return &ScoreCache{}
}

// NormalizedKey returns the cache key for a text. Surrounding whitespace
// does not change the score.
func NormalizedKey(text string) string {
	return strings.TrimSpace(text)
}

// Get returns the score stored for text.
func (c *ScoreCache) Get(text string) (float64, bool) {
	value, ok := c.scores.Load(NormalizedKey(text))
	if !ok {
		c.misses.Add(1)
		return 0, false
	}
	c.hits.Add(1)
	return value.(float64), true
}

// Set stores the score for text.
func (c *ScoreCache) Set(text string, score float64) {
	c.scores.Store(NormalizedKey(text), score)
}

// GetOrCompute returns the stored score or computes, stores and returns it.
func (c *ScoreCache) GetOrCompute(text string, compute func(string) float64) float64 {
	if score, ok := c.Get(text); ok {
		return score
	}
	score := compute(text)
	c.Set(text, score)
	return score
}

// Stats reports lookups served from and missed by the cache.
func (c *ScoreCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
