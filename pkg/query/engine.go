package query

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordfind/pkg/dictionary"
	"github.com/bastiangx/wordfind/pkg/index"
	"github.com/charmbracelet/log"
)

// ErrNotReady is returned by searches issued before the first build completes.
var ErrNotReady = errors.New("index not ready")

// Match is one word containing the query. Offset is the byte offset of the
// first occurrence of the query in Word, for highlighting.
type Match struct {
	Index  int
	Word   string
	Offset int
}

// snapshot is one fully built index. It is published whole and never
// modified afterwards.
type snapshot struct {
	store     *dictionary.Store
	tree      *index.Tree
	cache     *ResultCache
	buildTime time.Duration
}

// Engine serves substring queries. Build publishes a complete index
// atomically; searches read whichever index was current when they started and
// need no locking.
type Engine struct {
	current   atomic.Pointer[snapshot]
	ready     chan struct{}
	readyOnce sync.Once
	buildMu   sync.Mutex
	cacheSize int
	narrow    bool
}

// NewEngine creates an engine with no index. cacheSize <= 0 disables the
// result cache; narrow lets cached results for a shorter query answer a
// longer one.
func NewEngine(cacheSize int, narrow bool) *Engine {
	return &Engine{
		ready:     make(chan struct{}),
		cacheSize: cacheSize,
		narrow:    narrow,
	}
}

// Build indexes every word in store and publishes the result. A rebuild
// replaces the previous index; searches already running finish on the old one.
func (e *Engine) Build(store *dictionary.Store) time.Duration {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	start := time.Now()
	tree := index.Build(store.Words())
	elapsed := time.Since(start)

	snap := &snapshot{
		store:     store,
		tree:      tree,
		buildTime: elapsed,
	}
	if e.cacheSize > 0 {
		snap.cache = NewResultCache(e.cacheSize, e.narrow)
	}
	e.current.Store(snap)
	e.readyOnce.Do(func() { close(e.ready) })

	log.Debugf("Index ready: words=[%d] took [ %v ]", store.Len(), elapsed)
	return elapsed
}

// Ready reports whether a build has completed.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// Wait blocks until the first build completes or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	select {
	case <-e.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Search returns every word containing query, ordered by word index, each
// word once. The empty query matches nothing, and so does a query that is not
// valid UTF-8: stored words always are.
func (e *Engine) Search(query string) ([]Match, error) {
	return e.SearchContext(context.Background(), query)
}

// SearchContext is Search with cancellation.
func (e *Engine) SearchContext(ctx context.Context, query string) ([]Match, error) {
	if query == "" || !utf8.ValidString(query) {
		return []Match{}, nil
	}
	snap := e.current.Load()
	if snap == nil {
		return nil, ErrNotReady
	}

	if snap.cache != nil {
		if matches, ok := snap.cache.Get(query); ok {
			return matches, nil
		}
		if candidates, ok := snap.cache.Narrow(query); ok {
			matches := filterMatches(candidates, query)
			snap.cache.Put(query, matches)
			return matches, nil
		}
	}

	matches, err := snap.search(ctx, query)
	if err != nil {
		return nil, err
	}
	if snap.cache != nil {
		snap.cache.Put(query, matches)
	}
	return matches, nil
}

// Words is Search without offsets.
func (e *Engine) Words(query string) ([]string, error) {
	matches, err := e.Search(query)
	if err != nil {
		return nil, err
	}
	words := make([]string, len(matches))
	for i, m := range matches {
		words[i] = m.Word
	}
	return words, nil
}

// Stats returns statistics about the current index.
func (e *Engine) Stats() map[string]int {
	snap := e.current.Load()
	if snap == nil {
		return map[string]int{"ready": 0}
	}
	treeStats := snap.tree.Stats()
	stats := map[string]int{
		"ready":        1,
		"totalWords":   snap.store.Len(),
		"nodes":        treeStats.Nodes,
		"leaves":       treeStats.Leaves,
		"internal":     treeStats.Internal,
		"symbols":      treeStats.Symbols,
		"buildMicros":  int(snap.buildTime.Microseconds()),
		"cacheEnabled": 0,
	}
	if snap.cache != nil {
		stats["cacheEnabled"] = 1
		for k, v := range snap.cache.Stats() {
			stats[k] = v
		}
	}
	return stats
}

func (s *snapshot) search(ctx context.Context, query string) ([]Match, error) {
	p, ok := s.tree.Find(query)
	if !ok {
		return []Match{}, nil
	}
	indices, err := s.tree.CollectContext(ctx, p)
	if err != nil {
		return nil, err
	}
	slices.Sort(indices)
	indices = slices.Compact(indices)

	matches := make([]Match, len(indices))
	for i, idx := range indices {
		word := s.store.Word(idx)
		matches[i] = Match{
			Index:  idx,
			Word:   word,
			Offset: strings.Index(word, query),
		}
	}
	return matches, nil
}

// filterMatches keeps the candidates that contain query. Candidates come
// from a query that is a prefix of this one, so they are a superset of the
// answer and already in index order.
func filterMatches(candidates []Match, query string) []Match {
	out := make([]Match, 0, len(candidates))
	for _, m := range candidates {
		if off := strings.Index(m.Word, query); off >= 0 {
			out = append(out, Match{Index: m.Index, Word: m.Word, Offset: off})
		}
	}
	return out
}
