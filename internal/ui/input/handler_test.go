package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partrep/internal/domain"
	"partrep/internal/ui/input/types"
	"partrep/internal/ui/state"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newContext() *ModelContext {
	st := state.NewAppState()
	st.Frame.Items = []domain.CoverageItem{{Name: "References"}, {Name: "Abstracts"}}
	return &ModelContext{State: st}
}

func TestNormalModeKeys(t *testing.T) {
	h := New()
	ctx := newContext()

	cases := []struct {
		key  tea.KeyMsg
		want types.Action
	}{
		{runes("d"), types.CycleDateRangeAction{}},
		{runes("l"), types.NextContentTypeAction{Delta: 1}},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, types.NextContentTypeAction{Delta: -1}},
		{runes("j"), types.MoveCursorAction{Delta: 1}},
		{tea.KeyMsg{Type: tea.KeyUp}, types.MoveCursorAction{Delta: -1}},
		{runes("r"), types.OpenReportAction{}},
		{runes("?"), types.ToggleHelpAction{}},
		{runes("q"), types.QuitAction{}},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, types.QuitAction{Force: true}},
	}
	for _, tc := range cases {
		actions, _ := h.HandleKey(tc.key, ctx)
		require.Len(t, actions, 1, tc.key.String())
		assert.Equal(t, tc.want, actions[0], tc.key.String())
	}
}

func TestEscCancelsTitleOnlyWhenSet(t *testing.T) {
	h := New()
	ctx := newContext()

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyEsc}, ctx)
	assert.Empty(t, actions)

	ctx.Selection = domain.FilterSelection{Title: "Nature", TitleISSN: "1234-5678"}
	actions, _ = h.HandleKey(tea.KeyMsg{Type: tea.KeyEsc}, ctx)
	assert.Equal(t, []types.Action{types.CancelTitleAction{}}, actions)
}

func TestCursorKeysIgnoredWithoutChecks(t *testing.T) {
	h := New()
	ctx := &ModelContext{State: state.NewAppState()}

	actions, _ := h.HandleKey(runes("j"), ctx)
	assert.Empty(t, actions)
}

func TestSearchModeEditsAndSubmits(t *testing.T) {
	h := New()
	ctx := newContext()

	actions, cmd := h.HandleKey(runes("/"), ctx)
	assert.Empty(t, actions)
	assert.NotNil(t, cmd, "entering a text mode starts the cursor blink")
	require.Equal(t, types.ModeSearch, h.CurrentMode())
	require.NotNil(t, h.TextInput())

	actions, _ = h.HandleKey(runes("n"), ctx)
	assert.Equal(t, []types.Action{types.UpdateTextAction{Text: "n"}}, actions)
	actions, _ = h.HandleKey(runes("a"), ctx)
	assert.Equal(t, []types.Action{types.UpdateTextAction{Text: "na"}}, actions)

	actions, _ = h.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}, ctx)
	assert.Equal(t, []types.Action{types.SubmitTextAction{Text: "na", Mode: types.ModeSearch}}, actions)
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
	assert.Nil(t, h.TextInput())
}

func TestSearchModeArrowsWalkSuggestions(t *testing.T) {
	h := New()
	ctx := newContext()
	h.HandleKey(runes("/"), ctx)

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyDown}, ctx)
	assert.Empty(t, actions, "nothing to walk yet")

	ctx.State.Suggestions = []state.Suggestion{{}, {}}
	actions, _ = h.HandleKey(tea.KeyMsg{Type: tea.KeyDown}, ctx)
	assert.Equal(t, []types.Action{types.MoveSuggestionAction{Delta: 1}}, actions)
	actions, _ = h.HandleKey(tea.KeyMsg{Type: tea.KeyUp}, ctx)
	assert.Equal(t, []types.Action{types.MoveSuggestionAction{Delta: -1}}, actions)
}

func TestSearchModeEscCancels(t *testing.T) {
	h := New()
	ctx := newContext()
	h.HandleKey(runes("/"), ctx)

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyEsc}, ctx)
	assert.Equal(t, []types.Action{types.CancelTextAction{}}, actions)
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
}

func TestChangeModeSeedsText(t *testing.T) {
	h := New()
	h.ChangeMode(types.ModeSearch, "nat", newContext())
	require.NotNil(t, h.TextInput())
	assert.Equal(t, "nat", h.TextInput().Value())

	h.Reset()
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
}
