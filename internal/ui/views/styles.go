package views

import (
	"github.com/charmbracelet/lipgloss"
)

// barColor is the fill colour of coverage bars
const barColor = lipgloss.Color("#3EB1CB")

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Dim           lipgloss.Style
	Status        lipgloss.Style
	Filter        lipgloss.Style
	Help          lipgloss.Style
	Main          lipgloss.Style
	Tab           lipgloss.Style
	TabActive     lipgloss.Style
	CheckName     lipgloss.Style
	Percent       lipgloss.Style
	BarFill       lipgloss.Style
	BarEmpty      lipgloss.Style
	Tooltip       lipgloss.Style
	Popup         lipgloss.Style
	Highlight     lipgloss.Style
	HighlightBg   lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusLoading lipgloss.Style
	StatusSuccess lipgloss.Style
}

// NewStyles creates a new Styles instance. accent colours the header and
// the active tabs; it follows the configured deployment preset.
func NewStyles(accent lipgloss.Color) *Styles {
	if accent == "" {
		accent = lipgloss.Color("99")
	}
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),
		Dim: lipgloss.NewStyle().Faint(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Filter: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Help:   lipgloss.NewStyle().Faint(true),
		Main: lipgloss.NewStyle().
			Padding(1, 2),
		Tab: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1),
		TabActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(accent).
			Padding(0, 1),
		CheckName: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Percent:   lipgloss.NewStyle().Bold(true),
		BarFill:   lipgloss.NewStyle().Foreground(barColor),
		BarEmpty:  lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		Tooltip: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true).
			PaddingLeft(2),
		Popup: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(1, 2),
		Highlight:     lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		HighlightBg:   lipgloss.NewStyle().Background(lipgloss.Color("238")),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		StatusLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("241")), // gray
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
	}
}
