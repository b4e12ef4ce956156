package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"partrep/internal/domain"
)

// Suggestion is one rendered autocomplete entry
type Suggestion struct {
	Title string
	ISSN  string
}

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width  int
	Height int

	Member       string
	Preset       string
	ContentTypes []string
	Selection    domain.FilterSelection
	Totals       map[string]float64

	Items        []domain.CoverageItem
	Cursor       int
	BarWidth     int
	ShowTooltips bool

	Mounted      bool
	LoadState    domain.LoadState
	Spinner      string
	ErrorFlag    bool
	ErrorMessage string
	Pending      bool // the checks for Selection are still loading

	SearchActive    bool
	TextInput       string
	Suggestions     []Suggestion
	SuggestionIndex int
	TitlesLoading   bool

	StatusMessage string
	ShowHelp      bool
	HelpModel     help.Model
	Keys          help.KeyMap
}

// Renderer handles all view rendering
type Renderer struct {
	styles       *Styles
	checksRender *ChecksRenderer
	popupRender  *PopupRenderer
}

// NewRenderer creates a new renderer
func NewRenderer(accent lipgloss.Color) *Renderer {
	styles := NewStyles(accent)
	return &Renderer{
		styles:       styles,
		checksRender: NewChecksRenderer(styles),
		popupRender:  NewPopupRenderer(styles),
	}
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	if state.ShowHelp && state.Keys != nil {
		helpModel := state.HelpModel
		helpModel.ShowAll = true
		content := r.styles.Title.Render("partrep help") + "\n\n" + helpModel.View(state.Keys)
		return r.popupRender.RenderPopup(content, state.Width, state.Height)
	}

	content := &strings.Builder{}
	content.WriteString(r.renderTitleLine(state))
	content.WriteString("\n\n")

	if !state.Mounted {
		if state.ErrorFlag {
			content.WriteString(r.styles.StatusError.Render(state.ErrorMessage))
		} else {
			content.WriteString(r.styles.Dim.Render(state.Spinner + " Loading participation report..."))
		}
		return r.finish(content, state)
	}

	content.WriteString(r.renderContentTypes(state))
	content.WriteString("\n")
	content.WriteString(r.renderDateRanges(state))
	content.WriteString("\n")
	content.WriteString(r.renderTitleInput(state))
	content.WriteString("\n\n")

	switch {
	case state.Pending:
		content.WriteString(r.styles.Dim.Render(state.Spinner + " Loading checks..."))
	case state.ErrorFlag:
		content.WriteString(r.styles.StatusWarning.Render(state.ErrorMessage))
	case len(state.Items) == 0:
		content.WriteString(r.styles.Dim.Render("No checks to show."))
	default:
		checks := r.checksRender.RenderChecks(state.Items, state.Cursor, state.BarWidth, state.Width, state.ShowTooltips)
		if state.LoadState == domain.LoadStateLoadedDelayed {
			checks = r.styles.Dim.Render(checks)
		}
		content.WriteString(checks)
	}

	return r.finish(content, state)
}

// finish pushes the status and help lines to the bottom and applies the
// main container style
func (r *Renderer) finish(content *strings.Builder, state ViewState) string {
	footer := []string{}
	if state.StatusMessage != "" {
		footer = append(footer, r.styles.Status.Render(state.StatusMessage))
	}
	if state.Keys != nil {
		footer = append(footer, r.styles.Help.Render(state.HelpModel.View(state.Keys)))
	} else {
		footer = append(footer, r.styles.Help.Render("Press ? for help"))
	}

	currentLines := strings.Count(content.String(), "\n") + 1
	availableLines := state.Height - 2 // Main padding
	if availableLines <= 0 {
		availableLines = 22
	}
	if pad := availableLines - currentLines - len(footer); pad > 0 {
		content.WriteString(strings.Repeat("\n", pad))
	}
	content.WriteString("\n")
	content.WriteString(strings.Join(footer, "\n"))

	mainStyle := r.styles.Main
	if state.Height > 0 {
		mainStyle = mainStyle.MaxHeight(state.Height)
	}
	return mainStyle.Render(content.String())
}

// renderTitleLine builds the header with right-aligned indicators
func (r *Renderer) renderTitleLine(state ViewState) string {
	logo := r.styles.Title.Render("partrep")
	if state.Member != "" {
		logo += r.styles.Dim.Render("  " + state.Member)
	}

	indicators := []string{}
	if state.LoadState == domain.LoadStateLoadedDelayed {
		indicators = append(indicators, r.styles.StatusLoading.Render(state.Spinner+" Loading"))
	}
	if state.Selection.HasTitle() {
		indicators = append(indicators, r.styles.Filter.Render(fmt.Sprintf("[Title: %s]", state.Selection.Title)))
	}
	if state.Preset != "" {
		indicators = append(indicators, r.styles.Dim.Render(state.Preset))
	}
	if len(indicators) == 0 {
		return logo
	}

	right := strings.Join(indicators, "  ")
	termWidth := state.Width
	if termWidth <= 0 {
		termWidth = 80
	}
	padding := termWidth - 4 - lipgloss.Width(logo) - lipgloss.Width(right)
	if padding < 2 {
		padding = 2
	}
	return logo + strings.Repeat(" ", padding) + right
}

func (r *Renderer) renderContentTypes(state ViewState) string {
	tabs := make([]string, 0, len(state.ContentTypes))
	for _, ct := range state.ContentTypes {
		if ct == state.Selection.ContentType {
			tabs = append(tabs, r.styles.TabActive.Render(ct))
		} else {
			tabs = append(tabs, r.styles.Tab.Render(ct))
		}
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if state.Width > 4 && lipgloss.Width(line) > state.Width-4 {
		// Too many tabs to fit: show the active one with its position
		for i, ct := range state.ContentTypes {
			if ct == state.Selection.ContentType {
				return r.styles.TabActive.Render(ct) + r.styles.Dim.Render(fmt.Sprintf("  %d/%d  ←/→", i+1, len(state.ContentTypes)))
			}
		}
	}
	return line
}

func (r *Renderer) renderDateRanges(state ViewState) string {
	parts := []string{r.styles.Dim.Render("Date:")}
	for _, dr := range domain.DateRanges() {
		if dr == state.Selection.DateRange {
			parts = append(parts, r.styles.TabActive.Render(dr.String()))
		} else {
			parts = append(parts, r.styles.Tab.Render(dr.String()))
		}
	}
	line := strings.Join(parts, " ")
	if totals := FormatTotals(state.Totals); totals != "" {
		line += r.styles.Dim.Render("   " + totals)
	}
	return line
}

func (r *Renderer) renderTitleInput(state ViewState) string {
	label := r.styles.Dim.Render("Title: ")
	if !state.SearchActive {
		if state.Selection.HasTitle() {
			return label + r.styles.Filter.Render(state.Selection.Title) + r.styles.Dim.Render("  (esc to clear)")
		}
		return label + r.styles.Dim.Render("press / to filter by journal title")
	}

	var b strings.Builder
	b.WriteString(label)
	b.WriteString(state.TextInput)
	if state.TitlesLoading {
		b.WriteString(r.styles.Dim.Render("  " + state.Spinner + " loading titles"))
	}
	for i, s := range state.Suggestions {
		line := s.Title
		if s.ISSN != "" {
			line += r.styles.Dim.Render("  " + s.ISSN)
		}
		b.WriteString("\n")
		if i == state.SuggestionIndex {
			b.WriteString(r.styles.Highlight.Render("  ▸ ") + r.styles.HighlightBg.Render(line))
		} else {
			b.WriteString("    " + line)
		}
	}
	return b.String()
}
