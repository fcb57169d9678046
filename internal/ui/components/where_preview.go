package components

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/rebeliceyang/qbsearch/internal/ui/theme"
)

// UnknownCount marks a match count that has not been computed
const UnknownCount int64 = -1

// WherePreview shows the expression and SQL of the current filter
type WherePreview struct {
	Width int
	Theme theme.Theme

	Expression string
	SQL        string
	Args       []interface{}
	MatchCount int64
	Counting   bool

	style lipgloss.Style
}

// NewWherePreview creates a new preview
func NewWherePreview(th theme.Theme) *WherePreview {
	return &WherePreview{
		Width:      80,
		Theme:      th,
		MatchCount: UnknownCount,
		style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(th.Border).
			Padding(0, 1),
	}
}

// SetContent replaces the rendered filter; the match count is reset
func (p *WherePreview) SetContent(expression, sql string, args []interface{}) {
	p.Expression = expression
	p.SQL = sql
	p.Args = args
	p.MatchCount = UnknownCount
}

// CopyContent copies the SQL, or the expression when no SQL is available, to the clipboard
func (p *WherePreview) CopyContent() error {
	content := p.SQL
	if content == "" {
		content = p.Expression
	}
	if content == "" {
		return fmt.Errorf("nothing to copy")
	}
	return clipboard.WriteAll(content)
}

// wrapText wraps text to fit within maxWidth
func wrapText(text string, maxWidth int) []string {
	var result []string
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		if runewidth.StringWidth(line) <= maxWidth {
			result = append(result, line)
			continue
		}

		// Wrap long lines
		current := ""
		currentWidth := 0
		for _, r := range line {
			rWidth := runewidth.RuneWidth(r)
			if currentWidth+rWidth > maxWidth {
				result = append(result, current)
				current = string(r)
				currentWidth = rWidth
			} else {
				current += string(r)
				currentWidth += rWidth
			}
		}
		if current != "" {
			result = append(result, current)
		}
	}

	return result
}

func formatArgs(args []interface{}) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("$%d=%v", i+1, a)
	}
	return strings.Join(parts, " ")
}

// View renders the preview
func (p *WherePreview) View() string {
	contentWidth := p.Width - p.style.GetHorizontalFrameSize()
	if contentWidth < 10 {
		contentWidth = 10
	}

	titleStyle := lipgloss.NewStyle().Foreground(p.Theme.Info).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(p.Theme.Foreground)
	metaStyle := lipgloss.NewStyle().Foreground(p.Theme.Metadata).Italic(true)

	header := titleStyle.Render("Filter")
	switch {
	case p.Counting:
		header += metaStyle.Render("  counting...")
	case p.MatchCount >= 0:
		header += lipgloss.NewStyle().Foreground(p.Theme.Success).Render(fmt.Sprintf("  %d matching rows", p.MatchCount))
	}

	parts := []string{header}
	if p.Expression == "" {
		parts = append(parts, metaStyle.Render("no filter"))
	} else {
		for _, line := range wrapText(wordwrap.String(p.Expression, contentWidth), contentWidth) {
			parts = append(parts, textStyle.Render(line))
		}
	}

	if p.SQL != "" {
		for _, line := range wrapText(p.SQL, contentWidth) {
			parts = append(parts, metaStyle.Render(line))
		}
		if len(p.Args) > 0 {
			for _, line := range wrapText(formatArgs(p.Args), contentWidth) {
				parts = append(parts, metaStyle.Render(line))
			}
		}
	}

	return p.style.Width(p.Width - p.style.GetHorizontalFrameSize()).Render(strings.Join(parts, "\n"))
}
