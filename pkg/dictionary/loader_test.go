package dictionary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func writeDict(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadReader(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty source", "", nil},
		{"single word no newline", "squire", []string{"squire"}},
		{"trailing newline", "squire\nquire\n", []string{"squire", "quire"}},
		{"crlf terminators", "squire\r\nquire\r\n", []string{"squire", "quire"}},
		{"order kept", "zeta\nalpha\nmid\n", []string{"zeta", "alpha", "mid"}},
		{"empty lines are words", "a\n\nb\n", []string{"a", "", "b"}},
		{"duplicates kept", "quire\nquire\n", []string{"quire", "quire"}},
		{"inner spaces kept", " two words \n", []string{" two words "}},
		{"invalid utf8 replaced", "ca\xfffe\n", []string{"ca\uFFFDfe"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, err := LoadReader(strings.NewReader(tc.input), 0)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, store.Words())
			assert.Equal(t, len(tc.expected), store.Len())
		})
	}
}

func TestLoadReaderLineTooLong(t *testing.T) {
	input := "short\n" + strings.Repeat("x", 200) + "\n"
	_, err := LoadReader(strings.NewReader(input), 64)
	assert.ErrorIs(t, err, ErrLineTooLong)
}

func TestLoad(t *testing.T) {
	path := writeDict(t, "small-words.txt", "squire\nquire\nsquare\nacquire\n")

	store, err := Load(path, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, store.Len())
	assert.Equal(t, "acquire", store.Word(3))
	assert.Equal(t, path, store.Source())
}

func TestLoadUnknownExtensionStillLoads(t *testing.T) {
	path := writeDict(t, "words.data", "one\ntwo\n")

	store, err := Load(path, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, store.Words())
}

func TestLoadSourceUnavailable(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"), 0)
	assert.ErrorIs(t, err, ErrSourceUnavailable)

	_, err = Load(t.TempDir(), 0)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestStoreIsImmutable(t *testing.T) {
	words := []string{"a", "b"}
	store := NewStore(words)
	words[0] = "changed"
	assert.Equal(t, "a", store.Word(0))

	out := store.Words()
	out[1] = "changed"
	assert.Equal(t, "b", store.Word(1))
}

func TestDetectFileFormat(t *testing.T) {
	format, err := DetectFileFormat(writeDict(t, "words.lst", "a\n"))
	require.NoError(t, err)
	assert.Equal(t, FormatText, format)

	info, ok := GetFormatInfo(format)
	require.True(t, ok)
	assert.Contains(t, info.Extensions, ".lst")

	format, err = DetectFileFormat(writeDict(t, "words.bin", "a\n"))
	assert.Error(t, err)
	assert.Equal(t, FormatUnknown, format)
}

func TestDetectFileFormatUnavailable(t *testing.T) {
	format, err := DetectFileFormat(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Equal(t, FormatUnknown, format)

	format, err = DetectFileFormat(t.TempDir())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Equal(t, FormatUnknown, format)
}
