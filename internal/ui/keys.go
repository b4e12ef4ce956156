package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the dashboard bindings for the help views. Dispatch
// happens in the input modes; these only describe it.
type keyMap struct {
	ContentType key.Binding
	DateRange   key.Binding
	Move        key.Binding
	Title       key.Binding
	ClearTitle  key.Binding
	Suggestion  key.Binding
	Select      key.Binding
	Report      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		ContentType: key.NewBinding(key.WithKeys("left", "right", "h", "l", "tab"), key.WithHelp("←/→", "content type")),
		DateRange:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "date range")),
		Move:        key.NewBinding(key.WithKeys("up", "down", "j", "k"), key.WithHelp("↑/↓", "highlight check")),
		Title:       key.NewBinding(key.WithKeys("/", "t"), key.WithHelp("/", "search titles")),
		ClearTitle:  key.NewBinding(key.WithKeys("esc", "x"), key.WithHelp("esc", "clear title")),
		Suggestion:  key.NewBinding(key.WithKeys("up", "down", "tab"), key.WithHelp("↑/↓", "pick suggestion")),
		Select:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply title")),
		Report:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "open report")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ContentType, k.DateRange, k.Title, k.Report, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ContentType, k.DateRange, k.Move},
		{k.Title, k.Suggestion, k.Select, k.ClearTitle},
		{k.Report, k.Help, k.Quit},
	}
}
