package cli

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// theme holds the styles for one output; the renderer decides whether the
// output supports color.
type theme struct {
	word  lipgloss.Style
	match lipgloss.Style
	index lipgloss.Style
	info  lipgloss.Style
}

func newTheme(r *lipgloss.Renderer) theme {
	return theme{
		word:  r.NewStyle().Foreground(lipgloss.Color("75")),
		match: r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		index: r.NewStyle().Faint(true),
		info:  r.NewStyle().Italic(true).Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}),
	}
}

// highlight renders word with the byte range [offset, offset+n) emphasized.
// An out of range span leaves the word plain.
func (th theme) highlight(word string, offset, n int) string {
	if offset < 0 || n <= 0 || offset+n > len(word) {
		return th.word.Render(word)
	}
	out := ""
	if offset > 0 {
		out += th.word.Render(word[:offset])
	}
	out += th.match.Render(word[offset : offset+n])
	if rest := word[offset+n:]; rest != "" {
		out += th.word.Render(rest)
	}
	return out
}

// formatWithCommas formats an integer with comma separators
func formatWithCommas(n int) string {
	str := strconv.Itoa(n)
	if n < 0 {
		return "-" + formatWithCommas(-n)
	}
	if n < 1000 {
		return str
	}
	result := make([]byte, 0, len(str)+len(str)/3)
	for i := 0; i < len(str); i++ {
		if i > 0 && (len(str)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, str[i])
	}
	return string(result)
}
