package modes

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"partrep/internal/ui/input/types"
)

// SearchMode edits the title query. Up and down walk the suggestion list
// instead of reaching the text input.
type SearchMode struct {
	TextInputMode
}

func NewSearchMode(ti *textinput.Model) *SearchMode {
	return &SearchMode{
		TextInputMode: NewTextInputMode(types.ModeSearch, "search", ti),
	}
}

func (m *SearchMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "up", "ctrl+p":
		if ctx.SuggestionCount() > 0 {
			return []types.Action{types.MoveSuggestionAction{Delta: -1}}, true
		}
		return nil, true
	case "down", "ctrl+n", "tab":
		if ctx.SuggestionCount() > 0 {
			return []types.Action{types.MoveSuggestionAction{Delta: 1}}, true
		}
		return nil, true
	}
	return m.TextInputMode.HandleKey(msg, ctx)
}
