package token

import (
	"hash/fnv"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/gochunk/pkg/types"
)

const (
	// defaultCacheSize bounds the estimate cache.
	defaultCacheSize = 1000

	// cacheThreshold is the minimum text length worth caching.
	cacheThreshold = 100

	// sampleSpan is how many bytes of head, middle, and tail feed the
	// cache key. Sampling keeps key computation O(1) in text size;
	// distinct texts of equal length rarely share all three samples.
	sampleSpan = 64
)

// cacheKey identifies a text by length plus a hash of head/middle/tail
// samples, never the whole content.
type cacheKey struct {
	length   int
	strategy types.TokenEstimationStrategy
	hash     uint64
}

// estimateCache is a bounded LRU over token estimates. The underlying
// hashicorp cache is internally locked, so concurrent use is safe.
type estimateCache struct {
	entries *lru.Cache[cacheKey, int]
}

func newEstimateCache(size int) *estimateCache {
	if size <= 0 {
		size = defaultCacheSize
	}
	entries, err := lru.New[cacheKey, int](size)
	if err != nil {
		// Only reachable with a non-positive size, which is guarded above.
		panic(err)
	}
	return &estimateCache{entries: entries}
}

func (c *estimateCache) get(text string, strategy types.TokenEstimationStrategy) (int, bool) {
	return c.entries.Get(keyFor(text, strategy))
}

func (c *estimateCache) put(text string, strategy types.TokenEstimationStrategy, count int) {
	c.entries.Add(keyFor(text, strategy), count)
}

func (c *estimateCache) len() int { return c.entries.Len() }

func keyFor(text string, strategy types.TokenEstimationStrategy) cacheKey {
	h := fnv.New64a()
	n := len(text)

	head := sampleSpan
	if head > n {
		head = n
	}
	h.Write([]byte(text[:head]))

	if n > sampleSpan*2 {
		mid := n / 2
		end := mid + sampleSpan
		if end > n {
			end = n
		}
		h.Write([]byte(text[mid:end]))
	}
	if n > sampleSpan {
		h.Write([]byte(text[n-sampleSpan:]))
	}

	return cacheKey{length: n, strategy: strategy, hash: h.Sum64()}
}
