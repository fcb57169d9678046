package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/qbsearch/internal/search"
	"github.com/rebeliceyang/qbsearch/internal/ui/theme"
)

// FuzzyMatch performs fuzzy subsequence matching
// Returns whether the pattern matches and the positions of matched characters
// Matching is case-insensitive
func FuzzyMatch(pattern, target string) (bool, []int) {
	if pattern == "" {
		return true, []int{}
	}

	patternLower := strings.ToLower(pattern)
	targetLower := strings.ToLower(target)

	positions := make([]int, 0, len(pattern))
	patternIdx := 0

	for i := 0; i < len(targetLower) && patternIdx < len(patternLower); i++ {
		if targetLower[i] == patternLower[patternIdx] {
			positions = append(positions, i)
			patternIdx++
		}
	}

	if patternIdx == len(patternLower) {
		return true, positions
	}
	return false, nil
}

// TypedFragment returns the part of the input the current suggestions complete:
// the text after the last space or comma
func TypedFragment(input string) string {
	i := strings.LastIndexAny(input, " ,")
	if i < 0 {
		return input
	}
	return input[i+1:]
}

// Highlight renders label with the characters at positions in the match style
func Highlight(label string, positions []int, base, match lipgloss.Style) string {
	if len(positions) == 0 {
		return base.Render(label)
	}

	marked := make(map[int]bool, len(positions))
	for _, p := range positions {
		marked[p] = true
	}

	var b strings.Builder
	for i := 0; i < len(label); i++ {
		ch := label[i : i+1]
		if marked[i] {
			b.WriteString(match.Render(ch))
		} else {
			b.WriteString(base.Render(ch))
		}
	}
	return b.String()
}

// SuggestionList renders the dropdown below the search input
type SuggestionList struct {
	Theme    theme.Theme
	Width    int
	MaxShown int

	selected int
	offset   int
}

// Selected returns the highlighted index
func (l *SuggestionList) Selected() int {
	return l.selected
}

// Reset moves the highlight back to the first entry
func (l *SuggestionList) Reset() {
	l.selected = 0
	l.offset = 0
}

// Move shifts the highlight by delta, clamped to n entries
func (l *SuggestionList) Move(delta, n int) {
	if n == 0 {
		l.Reset()
		return
	}
	l.selected += delta
	if l.selected < 0 {
		l.selected = 0
	}
	if l.selected >= n {
		l.selected = n - 1
	}

	if l.selected < l.offset {
		l.offset = l.selected
	}
	if l.MaxShown > 0 && l.selected >= l.offset+l.MaxShown {
		l.offset = l.selected - l.MaxShown + 1
	}
}

// View renders opts, highlighting the fragment being typed
func (l *SuggestionList) View(opts []search.Option, fragment string) string {
	if len(opts) == 0 {
		return ""
	}

	end := len(opts)
	if l.MaxShown > 0 && l.offset+l.MaxShown < end {
		end = l.offset + l.MaxShown
	}

	base := lipgloss.NewStyle().Foreground(l.Theme.Foreground)
	match := lipgloss.NewStyle().Foreground(l.Theme.Match).Bold(true)

	var lines []string
	for i := l.offset; i < end; i++ {
		label := opts[i].Label
		_, positions := FuzzyMatch(fragment, label)

		b, m := base, match
		prefix := "  "
		if i == l.selected {
			b = b.Background(l.Theme.Selection)
			m = m.Background(l.Theme.Selection)
			prefix = "> "
		}
		lines = append(lines, prefix+Highlight(label, positions, b, m))
	}

	if end < len(opts) || l.offset > 0 {
		more := lipgloss.NewStyle().Foreground(l.Theme.Metadata).Italic(true)
		lines = append(lines, more.Render(fmt.Sprintf("  %d/%d", l.selected+1, len(opts))))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(l.Theme.Border).
		Width(l.Width).
		Render(strings.Join(lines, "\n"))
}
