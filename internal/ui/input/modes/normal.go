package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"partrep/internal/ui/input/types"
)

type NormalMode struct{}

func NewNormalMode() *NormalMode {
	return &NormalMode{}
}

func (m *NormalMode) Name() string {
	return "normal"
}

func (m *NormalMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return []types.Action{types.QuitAction{Force: true}}, true

	case tea.KeyEsc:
		if ctx.HasTitleFilter() {
			return []types.Action{types.CancelTitleAction{}}, true
		}
		return nil, false

	case tea.KeyUp:
		return m.moveCursor(ctx, -1), true

	case tea.KeyDown:
		return m.moveCursor(ctx, 1), true

	case tea.KeyLeft, tea.KeyShiftTab:
		return []types.Action{types.NextContentTypeAction{Delta: -1}}, true

	case tea.KeyRight, tea.KeyTab:
		return []types.Action{types.NextContentTypeAction{Delta: 1}}, true
	}

	switch msg.String() {
	case "q":
		return []types.Action{types.QuitAction{}}, true

	case "j":
		return m.moveCursor(ctx, 1), true

	case "k":
		return m.moveCursor(ctx, -1), true

	case "h":
		return []types.Action{types.NextContentTypeAction{Delta: -1}}, true

	case "l":
		return []types.Action{types.NextContentTypeAction{Delta: 1}}, true

	case "d":
		return []types.Action{types.CycleDateRangeAction{}}, true

	case "/", "t":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeSearch}}, true

	case "x":
		if ctx.HasTitleFilter() {
			return []types.Action{types.CancelTitleAction{}}, true
		}
		return nil, true

	case "r":
		return []types.Action{types.OpenReportAction{}}, true

	case "?":
		return []types.Action{types.ToggleHelpAction{}}, true
	}

	return nil, false
}

func (m *NormalMode) moveCursor(ctx types.Context, delta int) []types.Action {
	if ctx.CheckCount() == 0 {
		return nil
	}
	return []types.Action{types.MoveCursorAction{Delta: delta}}
}
