package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/bastiangx/wordfind/pkg/dictionary"
	"github.com/bastiangx/wordfind/pkg/query"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func runCLI(t *testing.T, e query.ISearcher, input string, limit int) string {
	t.Helper()
	var out bytes.Buffer
	h := NewInputHandlerWithIO(e, strings.NewReader(input), &out, 60, limit, true)
	require.NoError(t, h.Start(context.Background()))
	return out.String()
}

func squireEngine() *query.Engine {
	e := query.NewEngine(16, true)
	e.Build(dictionary.NewStore([]string{"squire", "quire", "square", "acquire"}))
	return e
}

func TestInputHandlerSearch(t *testing.T) {
	out := runCLI(t, squireEngine(), "quire\n", 0)

	assert.Contains(t, out, "Found 3 words containing 'quire'")
	assert.Contains(t, out, "1. squire\n")
	assert.Contains(t, out, "2. quire\n")
	assert.Contains(t, out, "3. acquire\n")
	assert.NotContains(t, out, "square")
}

func TestInputHandlerLimit(t *testing.T) {
	out := runCLI(t, squireEngine(), "re", 2)

	assert.Contains(t, out, "Found 4 words")
	assert.Contains(t, out, "2. quire\n")
	assert.NotContains(t, out, "3. ")
	assert.Contains(t, out, "... and 2 more")
}

func TestInputHandlerNoMatchAndClear(t *testing.T) {
	out := runCLI(t, squireEngine(), "xyz\n\n", 0)

	assert.Contains(t, out, "No words contain 'xyz'")
	assert.NotContains(t, out, "Found")
}

func TestInputHandlerCommands(t *testing.T) {
	out := runCLI(t, squireEngine(), ":stats\n:q\nquire\n", 0)

	assert.Regexp(t, `totalWords\s+4`, out)
	assert.NotContains(t, out, "Found", "nothing runs after :q")
}

func TestInputHandlerRejectsLongQuery(t *testing.T) {
	var out bytes.Buffer
	h := NewInputHandlerWithIO(squireEngine(), strings.NewReader("quire\n"), &out, 3, 0, false)
	require.NoError(t, h.Start(context.Background()))
	assert.NotContains(t, out.String(), "Found")
}

func TestInputHandlerNotReady(t *testing.T) {
	out := runCLI(t, query.NewEngine(0, false), "quire\n", 0)
	assert.NotContains(t, out, "Found")
}

func TestHighlight(t *testing.T) {
	r := lipgloss.NewRenderer(&bytes.Buffer{})
	r.SetColorProfile(termenv.ANSI256)
	th := newTheme(r)

	testCases := []struct {
		word    string
		offset  int
		n       int
		colored bool
	}{
		{"squire", 1, 5, true},
		{"quire", 0, 5, true},
		{"ñandú", 2, 3, true},
		{"quire", 3, 9, false},
		{"quire", -1, 2, false},
	}

	for _, tc := range testCases {
		t.Run(tc.word, func(t *testing.T) {
			got := th.highlight(tc.word, tc.offset, tc.n)
			assert.Equal(t, tc.word, ansi.ReplaceAllString(got, ""))
			if tc.colored {
				span := th.match.Render(tc.word[tc.offset : tc.offset+tc.n])
				assert.Contains(t, got, span)
			}
		})
	}
}

func TestFormatWithCommas(t *testing.T) {
	testCases := map[int]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		123456:   "123,456",
		1234567:  "1,234,567",
		-1234567: "-1,234,567",
	}
	for n, want := range testCases {
		assert.Equal(t, want, formatWithCommas(n))
	}
}
