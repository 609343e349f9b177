package query

import (
	"context"
	"sync"
	"time"
)

// Result is the outcome of one submitted query.
type Result struct {
	Query      string
	Matches    []Match
	Err        error
	Elapsed    time.Duration
	Generation uint64
	Tag        any
}

// Session runs searches for one interactive consumer with latest-wins
// delivery: each Submit cancels the search before it, and a result reaches
// deliver only if no newer query was submitted while it ran. Deliveries are
// serialized and arrive in submission order.
type Session struct {
	searcher ISearcher
	deliver  func(Result)

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// NewSession creates a session. deliver is called with the session lock held
// and must not call back into the session.
func NewSession(searcher ISearcher, deliver func(Result)) *Session {
	return &Session{
		searcher: searcher,
		deliver:  deliver,
	}
}

// Submit starts a search for query and returns its generation. tag is handed
// back unchanged in the Result. Submit on a closed session returns 0 and does
// nothing.
func (s *Session) Submit(query string, tag any) uint64 {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(ctx, cancel, gen, query, tag)
	return gen
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, gen uint64, query string, tag any) {
	defer s.wg.Done()
	defer cancel()

	start := time.Now()
	matches, err := s.searcher.SearchContext(ctx, query)
	res := Result{
		Query:      query,
		Matches:    matches,
		Err:        err,
		Elapsed:    time.Since(start),
		Generation: gen,
		Tag:        tag,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		return
	}
	s.deliver(res)
}

// Latest returns the generation of the most recent Submit.
func (s *Session) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Wait blocks until every submitted search has finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels the search in flight, stops delivery and waits for running
// searches to return.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
