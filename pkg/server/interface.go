/*
Package server implements msgpack IPC for substring word search.

Clients write a stream of msgpack maps to stdin and read a stream of msgpack
maps from stdout. Every request carries an ID that is echoed in its response.
Logs go to stderr.

# IPC

A search request names the substring and, optionally, how many matches to
return:

	{"id": "r1", "q": "quire", "l": 24}

The response lists the matching words in dictionary order, each with its
dictionary index and the byte offset of the first occurrence of the query,
plus the total number of matches before the limit and the search time in
microseconds:

	{"id": "r1", "m": [{"w": "squire", "i": 0, "o": 1}, {"w": "quire", "i": 1, "o": 0}], "c": 2, "t": 38}

Searches are latest-wins: a new search supersedes any search still running,
and the superseded search gets no response. An empty query answers with no
matches and clears whatever was in flight.

Other actions are selected with "a":

	{"id": "s1", "a": "stats"}
	{"id": "h1", "a": "health"}
	{"id": "d1", "a": "reload"}

Failures are reported as {"id": ..., "e": message, "c": code}, with codes
modelled on HTTP: 400 bad request, 404 unknown action, 409 reload already
running, 500 internal error, 503 index not built yet.

On start the server writes {"status": "ready"} once the index is available.
*/
package server

// Error codes sent in ErrorResponse.
const (
	CodeBadRequest    = 400
	CodeUnknownAction = 404
	CodeConflict      = 409
	CodeInternal      = 500
	CodeNotReady      = 503
)

// Actions understood by the server. An empty action is a search.
const (
	ActionSearch = "search"
	ActionStats  = "stats"
	ActionHealth = "health"
	ActionReload = "reload"
)

// Request - any client message
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"a,omitempty"`
	Query  string `msgpack:"q,omitempty"`
	Limit  int    `msgpack:"l,omitempty"`
}

// MatchItem - one matching word
type MatchItem struct {
	Word   string `msgpack:"w"`
	Index  int    `msgpack:"i"`
	Offset int    `msgpack:"o"`
}

// SearchResponse - search results, Count is the total before the limit
type SearchResponse struct {
	ID        string      `msgpack:"id"`
	Matches   []MatchItem `msgpack:"m"`
	Count     int         `msgpack:"c"`
	TimeTaken int64       `msgpack:"t"`
}

// StatsResponse - index statistics
type StatsResponse struct {
	ID     string         `msgpack:"id"`
	Status string         `msgpack:"status"`
	Words  int            `msgpack:"words"`
	Nodes  int            `msgpack:"nodes"`
	Leaves int            `msgpack:"leaves"`
	Cache  map[string]int `msgpack:"cache,omitempty"`
}

// StatusResponse - health checks, reload results and the ready signal
type StatusResponse struct {
	ID        string `msgpack:"id,omitempty"`
	Status    string `msgpack:"status"`
	Words     int    `msgpack:"words,omitempty"`
	TimeTaken int64  `msgpack:"t,omitempty"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

// Response is the union of every server message, for clients reading a
// mixed stream. Count holds the match count of a search or the code of an
// error, telling them apart by Error being set.
type Response struct {
	ID        string         `msgpack:"id"`
	Status    string         `msgpack:"status"`
	Matches   []MatchItem    `msgpack:"m"`
	Count     int            `msgpack:"c"`
	TimeTaken int64          `msgpack:"t"`
	Error     string         `msgpack:"e"`
	Words     int            `msgpack:"words"`
	Nodes     int            `msgpack:"nodes"`
	Leaves    int            `msgpack:"leaves"`
	Cache     map[string]int `msgpack:"cache"`
}
