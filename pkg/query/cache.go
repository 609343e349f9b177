package query

import (
	"math"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// narrowMaxCandidates caps the cached result size that Narrow will filter;
// larger sets go back to the tree.
const narrowMaxCandidates = 4096

// ResultCache keeps recent query results in a patricia trie keyed by the
// query. While a user types, each query extends the previous one, and any
// word containing the longer query also contains the shorter one, so a cached
// result for a prefix of the query is a superset of the answer.
type ResultCache struct {
	trie        *patricia.Trie
	accessTime  map[string]int64
	accessCount int64
	maxEntries  int
	narrow      bool
	hits        int
	narrowed    int
	misses      int
	mu          sync.Mutex
}

func NewResultCache(maxEntries int, narrow bool) *ResultCache {
	return &ResultCache{
		trie:       patricia.NewTrie(),
		accessTime: make(map[string]int64, maxEntries),
		maxEntries: maxEntries,
		narrow:     narrow,
	}
}

// Get returns a copy of the cached result for exactly query.
func (rc *ResultCache) Get(query string) ([]Match, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	item := rc.trie.Get(patricia.Prefix(query))
	if item == nil {
		rc.misses++
		return nil, false
	}
	rc.markAccessed(query)
	rc.hits++
	return slices.Clone(item.([]Match)), true
}

// Narrow returns the cached result of the longest cached proper prefix of
// query, if narrowing is on and that result is small enough to filter. The
// returned slice is shared with the cache and must not be modified.
func (rc *ResultCache) Narrow(query string) ([]Match, bool) {
	if !rc.narrow {
		return nil, false
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()

	var best []Match
	bestKey := ""
	found := false
	err := rc.trie.VisitPrefixes(patricia.Prefix(query), func(p patricia.Prefix, item patricia.Item) error {
		if len(p) >= len(query) || len(p) < len(bestKey) {
			return nil
		}
		best = item.([]Match)
		bestKey = string(p)
		found = true
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting result cache: %v", err)
		return nil, false
	}
	if !found || len(best) > narrowMaxCandidates {
		return nil, false
	}
	rc.markAccessed(bestKey)
	rc.narrowed++
	return best, true
}

// Put stores a copy of matches for query, evicting the least recently used
// entry when full.
func (rc *ResultCache) Put(query string, matches []Match) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	key := patricia.Prefix(query)
	if rc.trie.Get(key) == nil && len(rc.accessTime) >= rc.maxEntries {
		rc.evictLRU()
	}
	rc.trie.Set(key, slices.Clone(matches))
	rc.markAccessed(query)
}

func (rc *ResultCache) Stats() map[string]int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return map[string]int{
		"cacheEntries":    len(rc.accessTime),
		"maxCacheEntries": rc.maxEntries,
		"cacheHits":       rc.hits,
		"cacheNarrowed":   rc.narrowed,
		"cacheMisses":     rc.misses,
	}
}

func (rc *ResultCache) markAccessed(query string) {
	rc.accessCount++
	rc.accessTime[query] = rc.accessCount
}

func (rc *ResultCache) evictLRU() {
	var oldestQuery string
	var oldestTime int64 = math.MaxInt64

	for query, accessTime := range rc.accessTime {
		if accessTime < oldestTime {
			oldestTime = accessTime
			oldestQuery = query
		}
	}

	if oldestTime != math.MaxInt64 {
		delete(rc.accessTime, oldestQuery)
		rc.trie.Delete(patricia.Prefix(oldestQuery))
		log.Debugf("Evicted query '%s' from result cache", oldestQuery)
	}
}
