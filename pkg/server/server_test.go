package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/bastiangx/wordfind/pkg/config"
	"github.com/bastiangx/wordfind/pkg/dictionary"
	"github.com/bastiangx/wordfind/pkg/query"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

var squire = []string{"squire", "quire", "square", "acquire"}

func builtEngine(words []string) *query.Engine {
	e := query.NewEngine(32, true)
	e.Build(dictionary.NewStore(words))
	return e
}

func encodeRequests(t *testing.T, reqs ...any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	for _, r := range reqs {
		require.NoError(t, enc.Encode(r))
	}
	return &buf
}

func decodeResponses(t *testing.T, out *bytes.Buffer) []Response {
	t.Helper()
	dec := msgpack.NewDecoder(out)
	var resps []Response
	for {
		var r Response
		err := dec.Decode(&r)
		if errors.Is(err, io.EOF) {
			return resps
		}
		require.NoError(t, err)
		resps = append(resps, r)
	}
}

func byID(resps []Response, id string) (Response, bool) {
	for _, r := range resps {
		if r.ID == id {
			return r, true
		}
	}
	return Response{}, false
}

func serve(t *testing.T, e *query.Engine, reload Reloader, reqs ...any) []Response {
	t.Helper()
	var out bytes.Buffer
	srv := NewServerWithIO(e, config.DefaultConfig().Server, reload, encodeRequests(t, reqs...), &out)
	require.NoError(t, srv.Start(context.Background()))
	return decodeResponses(t, &out)
}

func TestServerSearch(t *testing.T) {
	resps := serve(t, builtEngine(squire), nil, Request{ID: "r1", Query: "quire", Limit: 2})

	require.Len(t, resps, 2)
	assert.Equal(t, "ready", resps[0].Status)

	r := resps[1]
	assert.Equal(t, "r1", r.ID)
	assert.Empty(t, r.Error)
	assert.Equal(t, 3, r.Count, "count is the total before the limit")
	assert.Equal(t, []MatchItem{
		{Word: "squire", Index: 0, Offset: 1},
		{Word: "quire", Index: 1, Offset: 0},
	}, r.Matches)
}

func TestServerSearchDefaults(t *testing.T) {
	words := make([]string, 300)
	for i := range words {
		words[i] = fmt.Sprintf("word%03d", i)
	}
	resps := serve(t, builtEngine(words), nil, Request{ID: "r1", Action: ActionSearch, Query: "word"})

	r, ok := byID(resps, "r1")
	require.True(t, ok)
	assert.Equal(t, 300, r.Count)
	assert.Len(t, r.Matches, config.DefaultConfig().Server.DefaultLimit)

	resps = serve(t, builtEngine(words), nil, Request{ID: "r2", Query: "word", Limit: 10000})
	r, ok = byID(resps, "r2")
	require.True(t, ok)
	assert.Len(t, r.Matches, config.DefaultConfig().Server.MaxLimit)
}

func TestServerEmptyQuery(t *testing.T) {
	resps := serve(t, builtEngine(squire), nil, Request{ID: "r1", Query: ""})

	r, ok := byID(resps, "r1")
	require.True(t, ok)
	assert.Empty(t, r.Error)
	assert.Equal(t, 0, r.Count)
	assert.Empty(t, r.Matches)
}

func TestServerTabQuery(t *testing.T) {
	resps := serve(t, builtEngine([]string{"key\tvalue", "keyvalue"}), nil, Request{ID: "r1", Query: "y\tv"})

	r, ok := byID(resps, "r1")
	require.True(t, ok)
	assert.Empty(t, r.Error)
	assert.Equal(t, []MatchItem{{Word: "key\tvalue", Index: 0, Offset: 2}}, r.Matches)
}

func TestServerErrors(t *testing.T) {
	testCases := []struct {
		name string
		req  Request
		code int
	}{
		{"unknown action", Request{ID: "e1", Action: "complete"}, CodeUnknownAction},
		{"query too long", Request{ID: "e2", Query: strings.Repeat("q", 61)}, CodeBadRequest},
		{"control characters", Request{ID: "e3", Query: "qu\x00"}, CodeBadRequest},
		{"negative limit", Request{ID: "e4", Query: "qu", Limit: -1}, CodeBadRequest},
		{"reload without reloader", Request{ID: "e5", Action: ActionReload}, CodeBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resps := serve(t, builtEngine(squire), nil, tc.req)
			r, ok := byID(resps, tc.req.ID)
			require.True(t, ok)
			assert.NotEmpty(t, r.Error)
			assert.Equal(t, tc.code, r.Count)
		})
	}
}

func TestServerMalformedRequest(t *testing.T) {
	resps := serve(t, builtEngine(squire), nil, "not a map", Request{ID: "h1", Action: ActionHealth})

	require.Len(t, resps, 3)
	assert.Equal(t, "", resps[1].ID)
	assert.Equal(t, CodeBadRequest, resps[1].Count)
	assert.Equal(t, "h1", resps[2].ID)
	assert.Equal(t, "ok", resps[2].Status)
}

func TestServerStats(t *testing.T) {
	resps := serve(t, builtEngine(squire), nil,
		Request{ID: "r1", Query: "qu"},
		Request{ID: "s1", Action: ActionStats},
	)

	r, ok := byID(resps, "s1")
	require.True(t, ok)
	assert.Equal(t, "ok", r.Status)
	assert.Equal(t, 4, r.Words)
	assert.Greater(t, r.Nodes, r.Leaves)
	assert.Contains(t, r.Cache, "cacheEntries")
}

func TestServerNotReady(t *testing.T) {
	resps := serve(t, query.NewEngine(0, false), nil,
		Request{ID: "r1", Query: "quire"},
		Request{ID: "s1", Action: ActionStats},
	)

	for _, r := range resps {
		assert.NotEqual(t, "ready", r.Status)
	}
	r, ok := byID(resps, "r1")
	require.True(t, ok)
	assert.Equal(t, CodeNotReady, r.Count)

	r, ok = byID(resps, "s1")
	require.True(t, ok)
	assert.Equal(t, "not_ready", r.Status)
}

func TestServerReload(t *testing.T) {
	e := builtEngine(squire)
	reload := func() (*dictionary.Store, error) {
		return dictionary.NewStore([]string{"queue", "aqua", "quay"}), nil
	}

	resps := serve(t, e, reload, Request{ID: "d1", Action: ActionReload})

	r, ok := byID(resps, "d1")
	require.True(t, ok)
	assert.Equal(t, "reloaded", r.Status)
	assert.Equal(t, 3, r.Words)

	words, err := e.Words("qu")
	require.NoError(t, err)
	assert.Equal(t, []string{"queue", "aqua", "quay"}, words)
}

func TestServerReloadFailureKeepsIndex(t *testing.T) {
	e := builtEngine(squire)
	reload := func() (*dictionary.Store, error) {
		return nil, dictionary.ErrSourceUnavailable
	}

	resps := serve(t, e, reload, Request{ID: "d1", Action: ActionReload})

	r, ok := byID(resps, "d1")
	require.True(t, ok)
	assert.Equal(t, CodeInternal, r.Count)
	assert.Contains(t, r.Error, "unavailable")

	words, err := e.Words("squ")
	require.NoError(t, err)
	assert.Equal(t, []string{"squire", "square"}, words)
}

func TestServerLatestWins(t *testing.T) {
	typed := "acquire"
	var reqs []any
	for i := 1; i <= len(typed); i++ {
		reqs = append(reqs, Request{ID: fmt.Sprintf("k%d", i), Query: typed[:i]})
	}

	resps := serve(t, builtEngine(squire), nil, reqs...)

	last, ok := byID(resps, fmt.Sprintf("k%d", len(typed)))
	require.True(t, ok, "the newest search always gets a response")
	assert.Equal(t, []MatchItem{{Word: "acquire", Index: 3, Offset: 0}}, last.Matches)

	searches := 0
	for _, r := range resps {
		if r.Status != "" {
			continue
		}
		searches++
		assert.Empty(t, r.Error)
	}
	assert.LessOrEqual(t, searches, len(typed))
	assert.Equal(t, last.ID, resps[len(resps)-1].ID, "no stale result after the newest")
}
