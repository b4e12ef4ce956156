package input

import (
	"partrep/internal/domain"
	"partrep/internal/ui/state"
)

// ModelContext implements the Context interface for the input handler
type ModelContext struct {
	State     *state.AppState
	Selection domain.FilterSelection
}

// CheckCount returns the number of rendered checks
func (c *ModelContext) CheckCount() int {
	return len(c.State.Frame.Items)
}

// HasTitleFilter reports whether a title narrows the view
func (c *ModelContext) HasTitleFilter() bool {
	return c.Selection.HasTitle()
}

// SuggestionCount returns the length of the autocomplete list
func (c *ModelContext) SuggestionCount() int {
	return len(c.State.Suggestions)
}
