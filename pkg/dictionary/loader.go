/*
Package dictionary loads the ordered word list that the index is built from.

A dictionary is UTF-8 text with one word per line. Words keep the position
they were read at as their index; nothing is sorted, trimmed or deduplicated,
and empty lines are words too. Whether empty words are shown is up to the
front end.
*/
package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// DefaultMaxLineBytes bounds a single dictionary line.
const DefaultMaxLineBytes = 1 << 20

var (
	// ErrSourceUnavailable is returned when the dictionary cannot be opened or read.
	ErrSourceUnavailable = errors.New("dictionary source unavailable")
	// ErrLineTooLong is returned when a line exceeds the configured limit.
	ErrLineTooLong = errors.New("dictionary line too long")
)

// Store is an immutable, ordered word list.
type Store struct {
	words  []string
	source string
}

// NewStore creates a store from words already in memory.
func NewStore(words []string) *Store {
	return &Store{
		words:  append([]string(nil), words...),
		source: "memory",
	}
}

// Load reads the dictionary at path. maxLineBytes <= 0 uses DefaultMaxLineBytes.
func Load(path string, maxLineBytes int) (*Store, error) {
	format, err := DetectFileFormat(path)
	switch {
	case errors.Is(err, ErrSourceUnavailable):
		return nil, err
	case err != nil:
		log.Warnf("Dictionary %s: %v, reading it as plain text", path, err)
	default:
		info, _ := GetFormatInfo(format)
		log.Debugf("Dictionary %s: %s", path, info.Description)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer file.Close()

	store, err := LoadReader(file, maxLineBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	store.source = path
	log.Debugf("Loaded %d words from %s", store.Len(), path)
	return store, nil
}

// LoadReader reads one word per line from r. Only the line terminator is
// stripped ("\n" or "\r\n"). Invalid UTF-8 is replaced with U+FFFD so the
// stored word and its indexed codepoints agree.
func LoadReader(r io.Reader, maxLineBytes int) (*Store, error) {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLineBytes)), maxLineBytes)

	var words []string
	for scanner.Scan() {
		line := scanner.Text()
		if !utf8.ValidString(line) {
			log.Warnf("Line %d is not valid UTF-8, replacing invalid bytes", len(words)+1)
			line = strings.ToValidUTF8(line, string(utf8.RuneError))
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: line %d exceeds %d bytes", ErrLineTooLong, len(words)+1, maxLineBytes)
		}
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return &Store{words: words, source: "reader"}, nil
}

// Len returns the number of words.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// Word returns the word at index i.
func (s *Store) Word(i int) string {
	return s.words[i]
}

// Words returns a copy of the word list in load order.
func (s *Store) Words() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.words...)
}

// Source describes where the words came from.
func (s *Store) Source() string {
	return s.source
}
