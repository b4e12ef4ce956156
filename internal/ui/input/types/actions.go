package types

// Mode transition actions
type ChangeModeAction struct {
	Mode Mode
	Data string // initial text for text modes
}

func (a ChangeModeAction) Type() string { return "change_mode" }

// Text input actions
type UpdateTextAction struct {
	Text string
}

func (a UpdateTextAction) Type() string { return "update_text" }

type SubmitTextAction struct {
	Text string
	Mode Mode // Which mode submitted the text
}

func (a SubmitTextAction) Type() string { return "submit_text" }

type CancelTextAction struct{}

func (a CancelTextAction) Type() string { return "cancel_text" }

// Filter actions
type NextContentTypeAction struct {
	Delta int // +1 next, -1 previous
}

func (a NextContentTypeAction) Type() string { return "next_content_type" }

type CycleDateRangeAction struct{}

func (a CycleDateRangeAction) Type() string { return "cycle_date_range" }

type CancelTitleAction struct{}

func (a CancelTitleAction) Type() string { return "cancel_title" }

// Cursor actions
type MoveCursorAction struct {
	Delta int
}

func (a MoveCursorAction) Type() string { return "move_cursor" }

type MoveSuggestionAction struct {
	Delta int
}

func (a MoveSuggestionAction) Type() string { return "move_suggestion" }

// Command actions
type OpenReportAction struct{}

func (a OpenReportAction) Type() string { return "open_report" }

type ToggleHelpAction struct{}

func (a ToggleHelpAction) Type() string { return "toggle_help" }

type QuitAction struct {
	Force bool
}

func (a QuitAction) Type() string { return "quit" }
