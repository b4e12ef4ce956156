package state

import (
	"partrep/internal/domain"
	"partrep/internal/search"
)

// Frame is the last settled rendering of the coordinator data. It is
// shown while a new load is pending so the view never flashes.
type Frame struct {
	Selection    domain.FilterSelection // what Items were built for
	Items        []domain.CoverageItem
	Totals       map[string]float64
	ErrorFlag    bool
	ErrorMessage string
	Pending      bool // no data for Selection until the load settles
	Valid        bool
}

// Holds reports whether the frame may stand in for sel while a load is in
// flight. Switching content type or dropping the title fetches nothing,
// so the held items would belong to another selection.
func (f Frame) Holds(sel domain.FilterSelection) bool {
	if !f.Valid || f.Selection.ContentType != sel.ContentType {
		return false
	}
	return sel.Title == f.Selection.Title || sel.Title != ""
}

// Suggestion is one entry of the title autocomplete list
type Suggestion struct {
	Record domain.TitleRecord
	Score  float64
}

// AppState contains the UI-only state. Filter data lives in the
// coordinator and is read through its snapshot.
type AppState struct {
	// Check list
	Cursor int   // highlighted check
	Frame  Frame // held while a load is pending

	// Title search
	TitleQuery      string
	Suggestions     []Suggestion
	SuggestionIndex int
	Titles          []domain.TitleRecord // candidates for the current content type
	TitlesFor       string               // content type Titles belong to
	TitlesLoading   bool

	// UI state
	ShowHelp      bool
	StatusMessage string
	Width         int
	Height        int
}

// NewAppState creates a new application state
func NewAppState() *AppState {
	return &AppState{}
}

// MoveCursor moves the highlighted check, clamped to n checks
func (s *AppState) MoveCursor(delta, n int) {
	s.Cursor = clamp(s.Cursor+delta, n)
}

// ClampCursor keeps the cursor inside a list that may have shrunk
func (s *AppState) ClampCursor(n int) {
	s.Cursor = clamp(s.Cursor, n)
}

// SetTitles replaces the title candidates and drops stale suggestions
func (s *AppState) SetTitles(contentType string, records []domain.TitleRecord) {
	s.Titles = records
	s.TitlesFor = contentType
	s.TitlesLoading = false
	s.ClearSuggestions()
}

// ClearSuggestions empties the autocomplete list
func (s *AppState) ClearSuggestions() {
	s.Suggestions = nil
	s.SuggestionIndex = 0
}

// ApplySearch fills the suggestion list from a search response. Matches
// that do not line up with the current titles were computed against an
// older candidate list and are skipped.
func (s *AppState) ApplySearch(resp search.Response) {
	s.ClearSuggestions()
	for m := range resp.Matches() {
		if m.Index < 0 || m.Index >= len(s.Titles) {
			continue
		}
		record := s.Titles[m.Index]
		if search.TitleID(record) != m.Document.ID {
			continue
		}
		s.Suggestions = append(s.Suggestions, Suggestion{Record: record, Score: m.Score})
	}
}

// MoveSuggestion walks the suggestion list, wrapping at both ends
func (s *AppState) MoveSuggestion(delta int) {
	n := len(s.Suggestions)
	if n == 0 {
		s.SuggestionIndex = 0
		return
	}
	s.SuggestionIndex = ((s.SuggestionIndex+delta)%n + n) % n
}

// SelectedSuggestion returns the highlighted suggestion
func (s *AppState) SelectedSuggestion() (Suggestion, bool) {
	if s.SuggestionIndex < 0 || s.SuggestionIndex >= len(s.Suggestions) {
		return Suggestion{}, false
	}
	return s.Suggestions[s.SuggestionIndex], true
}

func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
