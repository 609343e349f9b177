package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bastiangx/wordfind/internal/logger"
	"github.com/bastiangx/wordfind/internal/utils"
	"github.com/bastiangx/wordfind/pkg/config"
	"github.com/bastiangx/wordfind/pkg/dictionary"
	"github.com/bastiangx/wordfind/pkg/query"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"
)

const outboxSize = 64

// Reloader produces a fresh word list for the "reload" action.
type Reloader func() (*dictionary.Store, error)

// Server handles IPC for word search over a pair of streams.
type Server struct {
	engine       *query.Engine
	config       config.ServerConfig
	reload       Reloader
	in           io.Reader
	out          io.Writer
	logger       *log.Logger
	reloading    atomic.Bool
	requestCount atomic.Int64
}

// NewServer creates a server on stdin and stdout. reload may be nil, in
// which case the reload action is rejected.
func NewServer(engine *query.Engine, cfg config.ServerConfig, reload Reloader) *Server {
	return NewServerWithIO(engine, cfg, reload, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server on the given streams.
func NewServerWithIO(engine *query.Engine, cfg config.ServerConfig, reload Reloader, in io.Reader, out io.Writer) *Server {
	return &Server{
		engine: engine,
		config: cfg,
		reload: reload,
		in:     in,
		out:    out,
		logger: logger.New("ipc"),
	}
}

// conn is the state of one Start call.
type conn struct {
	srv     *Server
	ctx     context.Context
	outbox  chan<- any
	session *query.Session
	workers sync.WaitGroup
}

type searchTag struct {
	id    string
	limit int
}

// Start serves requests until the input ends, ctx is done or the output
// fails. Responses are written by a single writer goroutine in the order
// they are produced.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Debug("Starting server")

	g, ctx := errgroup.WithContext(ctx)
	outbox := make(chan any, outboxSize)

	g.Go(func() error {
		return s.writeLoop(outbox)
	})
	g.Go(func() error {
		defer close(outbox)
		c := &conn{srv: s, ctx: ctx, outbox: outbox}
		c.session = query.NewSession(s.engine, c.deliver)
		return c.serve()
	})
	return g.Wait()
}

func (s *Server) writeLoop(outbox <-chan any) error {
	w := bufio.NewWriter(s.out)
	enc := msgpack.NewEncoder(w)
	for msg := range outbox {
		if err := enc.Encode(msg); err != nil {
			s.logger.Errorf("Encoding response: %v", err)
			return fmt.Errorf("encode response: %w", err)
		}
		if err := w.Flush(); err != nil {
			s.logger.Errorf("Writing response: %v", err)
			return fmt.Errorf("write response: %w", err)
		}
	}
	return nil
}

func (c *conn) serve() error {
	readyCtx, stopReady := context.WithCancel(c.ctx)
	defer func() {
		stopReady()
		c.workers.Wait()
		if c.ctx.Err() == nil {
			c.session.Wait()
		}
		c.session.Close()
	}()

	if c.srv.engine.Ready() {
		c.send(StatusResponse{Status: "ready"})
	} else {
		c.workers.Add(1)
		go func() {
			defer c.workers.Done()
			if err := c.srv.engine.Wait(readyCtx); err == nil {
				c.send(StatusResponse{Status: "ready"})
			}
		}()
	}

	dec := msgpack.NewDecoder(bufio.NewReader(c.srv.in))
	for {
		if c.ctx.Err() != nil {
			return nil
		}
		raw, err := dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.srv.logger.Debug("Input closed")
				return nil
			}
			c.srv.logger.Errorf("Reading request: %v", err)
			return fmt.Errorf("read request: %w", err)
		}

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			c.srv.logger.Warnf("Malformed request: %v", err)
			c.sendError("", "invalid request: expected a map with id, a, q and l", CodeBadRequest)
			continue
		}
		c.handleRequest(req)
	}
}

func (c *conn) handleRequest(req Request) {
	n := c.srv.requestCount.Add(1)
	c.srv.logger.Debug("Request", "n", n, "id", req.ID, "action", req.Action, "query", req.Query)

	switch req.Action {
	case "", ActionSearch:
		c.handleSearch(req)
	case ActionStats:
		c.handleStats(req)
	case ActionHealth:
		c.send(StatusResponse{ID: req.ID, Status: "ok"})
	case ActionReload:
		c.handleReload(req)
	default:
		c.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), CodeUnknownAction)
	}
}

func (c *conn) handleSearch(req Request) {
	if err := utils.ValidateQuery(req.Query, c.srv.config.MaxQuery); err != nil {
		c.sendError(req.ID, err.Error(), CodeBadRequest)
		return
	}
	if req.Limit < 0 {
		c.sendError(req.ID, "limit must not be negative", CodeBadRequest)
		return
	}
	limit := utils.ClampLimit(req.Limit, c.srv.config.DefaultLimit, c.srv.config.MaxLimit)
	c.session.Submit(req.Query, searchTag{id: req.ID, limit: limit})
}

// deliver receives the results the session lets through.
func (c *conn) deliver(r query.Result) {
	tag := r.Tag.(searchTag)
	if r.Err != nil {
		if errors.Is(r.Err, query.ErrNotReady) {
			c.sendError(tag.id, "index not ready", CodeNotReady)
			return
		}
		c.srv.logger.Errorf("Search %q failed: %v", r.Query, r.Err)
		c.sendError(tag.id, "search failed", CodeInternal)
		return
	}

	shown := r.Matches
	if len(shown) > tag.limit {
		shown = shown[:tag.limit]
	}
	items := make([]MatchItem, len(shown))
	for i, m := range shown {
		items[i] = MatchItem{Word: m.Word, Index: m.Index, Offset: m.Offset}
	}
	c.send(SearchResponse{
		ID:        tag.id,
		Matches:   items,
		Count:     len(r.Matches),
		TimeTaken: r.Elapsed.Microseconds(),
	})
}

func (c *conn) handleStats(req Request) {
	stats := c.srv.engine.Stats()
	resp := StatsResponse{
		ID:     req.ID,
		Status: "ok",
		Words:  stats["totalWords"],
		Nodes:  stats["nodes"],
		Leaves: stats["leaves"],
	}
	if stats["ready"] == 0 {
		resp.Status = "not_ready"
	}
	for k, v := range stats {
		if strings.HasPrefix(k, "cache") {
			if resp.Cache == nil {
				resp.Cache = make(map[string]int)
			}
			resp.Cache[k] = v
		}
	}
	c.send(resp)
}

// handleReload rebuilds the index in the background. Searches keep using
// the old index until the new one is published.
func (c *conn) handleReload(req Request) {
	if c.srv.reload == nil {
		c.sendError(req.ID, "reload is not configured", CodeBadRequest)
		return
	}
	if !c.srv.reloading.CompareAndSwap(false, true) {
		c.sendError(req.ID, "reload already running", CodeConflict)
		return
	}

	c.workers.Add(1)
	go func() {
		defer c.workers.Done()
		defer c.srv.reloading.Store(false)

		start := time.Now()
		store, err := c.srv.reload()
		if err != nil {
			c.srv.logger.Errorf("Reload failed: %v", err)
			c.sendError(req.ID, fmt.Sprintf("reload failed: %v", err), CodeInternal)
			return
		}
		c.srv.engine.Build(store)
		elapsed := time.Since(start)
		c.srv.logger.Infof("Reloaded %d words in %v", store.Len(), elapsed)
		c.send(StatusResponse{
			ID:        req.ID,
			Status:    "reloaded",
			Words:     store.Len(),
			TimeTaken: elapsed.Microseconds(),
		})
	}()
}

func (c *conn) send(msg any) {
	select {
	case c.outbox <- msg:
	case <-c.ctx.Done():
	}
}

func (c *conn) sendError(id, message string, code int) {
	c.send(ErrorResponse{ID: id, Error: message, Code: code})
}
