package views

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"partrep/internal/domain"
)

// ChecksRenderer draws coverage checks as labelled bars
type ChecksRenderer struct {
	styles *Styles
}

// NewChecksRenderer creates a new checks renderer
func NewChecksRenderer(styles *Styles) *ChecksRenderer {
	return &ChecksRenderer{styles: styles}
}

// RenderChecks renders one line per check. The highlighted check gets a
// marker and, when enabled, its info text underneath.
func (cr *ChecksRenderer) RenderChecks(items []domain.CoverageItem, cursor, barWidth, width int, tooltips bool) string {
	nameWidth := 0
	for _, it := range items {
		nameWidth = max(nameWidth, lipgloss.Width(it.Name))
	}
	nameWidth = min(nameWidth, 32)
	if barWidth <= 0 {
		barWidth = 30
	}
	if width > 0 {
		// marker, name, two gaps and the percent label
		if room := width - 4 - nameWidth - 4 - 5; room < barWidth {
			barWidth = max(room, 5)
		}
	}

	lines := make([]string, 0, len(items)+1)
	for i, it := range items {
		selected := i == cursor
		lines = append(lines, cr.renderCheck(it, selected, nameWidth, barWidth))
		if selected && tooltips && it.Info != "" {
			lines = append(lines, cr.styles.Tooltip.Render(it.Info))
		}
	}
	return strings.Join(lines, "\n")
}

func (cr *ChecksRenderer) renderCheck(it domain.CoverageItem, selected bool, nameWidth, barWidth int) string {
	marker := "  "
	name := truncate(it.Name, nameWidth)
	name += strings.Repeat(" ", max(0, nameWidth-lipgloss.Width(name)))
	nameText := cr.styles.CheckName.Render(name)
	if selected {
		marker = cr.styles.Highlight.Render("▸ ")
		nameText = cr.styles.HighlightBg.Render(cr.styles.Highlight.Render(name))
	}

	filled := BarCells(it.Percentage, barWidth)
	bar := cr.styles.BarFill.Render(strings.Repeat("█", filled)) +
		cr.styles.BarEmpty.Render(strings.Repeat("░", barWidth-filled))

	return fmt.Sprintf("%s%s  %s  %s", marker, nameText, bar, cr.styles.Percent.Render(FormatPercent(it.Percentage)))
}

// BarCells converts a percentage into filled cells of a bar
func BarCells(percentage float64, width int) int {
	if width <= 0 {
		return 0
	}
	p := math.Max(0, math.Min(100, percentage))
	return int(math.Round(p / 100 * float64(width)))
}

// FormatPercent renders a percentage right-aligned in four columns
func FormatPercent(p float64) string {
	return fmt.Sprintf("%3.0f%%", math.Round(p))
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
