// Package cli provides a line-mode front end: type a substring, press Enter, see every word containing it.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordfind/internal/utils"
	"github.com/bastiangx/wordfind/pkg/query"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// InputHandler reads one query per line and prints the matching words with
// the matched span highlighted. An empty line clears the results. ":stats"
// prints index statistics and ":q" quits.
type InputHandler struct {
	searcher     query.ISearcher
	in           io.Reader
	out          io.Writer
	theme        theme
	maxQueryLen  int
	displayLimit int
	highlight    bool
	requestCount int
}

// NewInputHandler creates a handler on stdin and stdout.
func NewInputHandler(searcher query.ISearcher, maxQueryLen, limit int, highlight bool) *InputHandler {
	return NewInputHandlerWithIO(searcher, os.Stdin, os.Stdout, maxQueryLen, limit, highlight)
}

// NewInputHandlerWithIO creates a handler on the given streams. Color is used
// only when highlight is set and out is a terminal.
func NewInputHandlerWithIO(searcher query.ISearcher, in io.Reader, out io.Writer, maxQueryLen, limit int, highlight bool) *InputHandler {
	return &InputHandler{
		searcher:     searcher,
		in:           in,
		out:          out,
		theme:        newTheme(lipgloss.NewRenderer(out)),
		maxQueryLen:  maxQueryLen,
		displayLimit: limit,
		highlight:    highlight,
	}
}

// Start runs the input loop until EOF, ":q" or ctx is done.
func (h *InputHandler) Start(ctx context.Context) error {
	log.Print("wordfind CLI")
	log.Print("type part of a word and press Enter (empty line clears, :stats, :q or Ctrl+C to exit):")

	reader := bufio.NewReader(h.in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(h.out, "> ")
		line, err := reader.ReadString('\n')
		if line != "" || err == nil {
			if quit := h.handleInput(ctx, utils.TrimLineEnding(line)); quit {
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// handleInput runs one line. It reports whether the user asked to quit.
func (h *InputHandler) handleInput(ctx context.Context, input string) bool {
	switch input {
	case "":
		fmt.Fprintln(h.out)
		return false
	case ":q", ":quit":
		return true
	case ":stats":
		h.printStats()
		return false
	}

	h.requestCount++
	if err := utils.ValidateQuery(input, h.maxQueryLen); err != nil {
		log.Errorf("Rejected query: %v", err)
		return false
	}

	log.Debug("Processing request", "query", input, "n", h.requestCount)
	start := time.Now()
	matches, err := h.searcher.SearchContext(ctx, input)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, query.ErrNotReady) {
			log.Warn("Index is still building, try again")
			return false
		}
		log.Errorf("Search failed: %v", err)
		return false
	}
	log.Debugf("Took [ %v ] for query '%s'", elapsed, input)

	if len(matches) == 0 {
		fmt.Fprintf(h.out, "No words contain '%s'\n", input)
		return false
	}

	fmt.Fprintln(h.out, h.theme.info.Render(fmt.Sprintf("Found %s words containing '%s' [ %v ]",
		formatWithCommas(len(matches)), input, elapsed.Round(time.Microsecond))))

	shown := matches
	if h.displayLimit > 0 && len(shown) > h.displayLimit {
		shown = shown[:h.displayLimit]
	}
	width := len(fmt.Sprint(len(shown)))
	for i, m := range shown {
		word := m.Word
		if h.highlight {
			word = h.theme.highlight(m.Word, m.Offset, len(input))
		}
		fmt.Fprintf(h.out, "%s %s\n", h.theme.index.Render(fmt.Sprintf("%*d.", width, i+1)), word)
	}
	if rest := len(matches) - len(shown); rest > 0 {
		fmt.Fprintln(h.out, h.theme.info.Render(fmt.Sprintf("... and %s more", formatWithCommas(rest))))
	}
	return false
}

func (h *InputHandler) printStats() {
	stats := h.searcher.Stats()
	keys := make([]string, 0, len(stats))
	width := 0
	for k := range stats {
		keys = append(keys, k)
		width = max(width, utf8.RuneCountInString(k))
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(h.out, "%s%s  %s\n", k, strings.Repeat(" ", width-len(k)), formatWithCommas(stats[k]))
	}
}
