package lemma

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedAnalyzer memoizes another analyzer. Unknown words are memoized too.
type CachedAnalyzer struct {
	next  Analyzer
	cache *cache.Cache
}

// NewCachedAnalyzer wraps next with a memo of the given TTL
func NewCachedAnalyzer(next Analyzer, ttl time.Duration) *CachedAnalyzer {
	return &CachedAnalyzer{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Analyze returns the memoized analyses of word, asking next on a miss
func (c *CachedAnalyzer) Analyze(ctx context.Context, word string) ([]Analysis, error) {
	if v, ok := c.cache.Get(word); ok {
		return v.([]Analysis), nil
	}

	analyses, err := c.next.Analyze(ctx, word)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(word, analyses)
	return analyses, nil
}

// Len returns the number of memoized words
func (c *CachedAnalyzer) Len() int {
	return c.cache.ItemCount()
}
