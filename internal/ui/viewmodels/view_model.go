package viewmodels

import (
	"github.com/charmbracelet/bubbles/help"

	"partrep/internal/config"
	"partrep/internal/filter"
	"partrep/internal/ui/state"
	"partrep/internal/ui/views"
)

// ViewModel transforms application state into view-ready data
type ViewModel struct {
	state        *state.AppState
	config       *config.Config
	help         help.Model
	keys         help.KeyMap
	spinner      string
	searchActive bool
	textInput    string
}

// NewViewModel creates a new view model
func NewViewModel(appState *state.AppState, cfg *config.Config, keys help.KeyMap) *ViewModel {
	return &ViewModel{
		state:  appState,
		config: cfg,
		help:   help.New(),
		keys:   keys,
	}
}

// SetHelp sets the help model
func (vm *ViewModel) SetHelp(helpModel help.Model) {
	vm.help = helpModel
}

// SetConfig swaps the configuration after a reload
func (vm *ViewModel) SetConfig(cfg *config.Config) {
	vm.config = cfg
}

// SetSpinner sets the current spinner frame
func (vm *ViewModel) SetSpinner(frame string) {
	vm.spinner = frame
}

// SetInput sets the rendered title input and whether it is focused
func (vm *ViewModel) SetInput(active bool, view string) {
	vm.searchActive = active
	vm.textInput = view
}

// Settle records the snapshot as the frame to hold during later loads.
// While a load is in flight the held frame stays, unless the selection
// moved away from it; then the frame waits empty for the load.
func (vm *ViewModel) Settle(snap filter.Snapshot) {
	if snap.LoadState.InFlight() && vm.state.Frame.Valid {
		if vm.state.Frame.Holds(snap.Selection) {
			return
		}
		vm.state.Frame = state.Frame{Selection: snap.Selection, Pending: true, Valid: true}
		vm.state.ClampCursor(0)
		return
	}
	frame := state.Frame{
		Selection: snap.Selection,
		Items:     snap.Items,
		Totals:    snap.Totals,
		ErrorFlag: snap.ErrorFlag,
		Valid:     true,
	}
	if snap.ErrorFlag {
		frame.ErrorMessage = views.ErrorMessage(snap.NothingRegistered, snap.Selection, snap.Err)
	}
	vm.state.Frame = frame
	vm.state.ClampCursor(len(frame.Items))
}

// BuildViewState creates a ViewState for rendering
func (vm *ViewModel) BuildViewState(snap filter.Snapshot) views.ViewState {
	vs := views.ViewState{
		Width:           vm.state.Width,
		Height:          vm.state.Height,
		Member:          vm.memberLabel(),
		Preset:          vm.config.Preset,
		ContentTypes:    snap.ContentTypes,
		Selection:       snap.Selection,
		Totals:          vm.state.Frame.Totals,
		Items:           vm.state.Frame.Items,
		Cursor:          vm.state.Cursor,
		BarWidth:        vm.config.UISettings.BarWidth,
		ShowTooltips:    vm.config.UISettings.ShowTooltips,
		Mounted:         snap.Mounted,
		LoadState:       snap.LoadState,
		Spinner:         vm.spinner,
		ErrorFlag:       vm.state.Frame.ErrorFlag,
		ErrorMessage:    vm.state.Frame.ErrorMessage,
		Pending:         vm.state.Frame.Pending,
		SearchActive:    vm.searchActive,
		TextInput:       vm.textInput,
		SuggestionIndex: vm.state.SuggestionIndex,
		TitlesLoading:   vm.state.TitlesLoading,
		StatusMessage:   vm.state.StatusMessage,
		ShowHelp:        vm.state.ShowHelp,
		HelpModel:       vm.help,
		Keys:            vm.keys,
	}
	if !snap.Mounted && snap.ErrorFlag {
		vs.ErrorFlag = true
		vs.ErrorMessage = views.ErrorMessage(snap.NothingRegistered, snap.Selection, snap.Err)
	}
	for _, s := range vm.state.Suggestions {
		vs.Suggestions = append(vs.Suggestions, views.Suggestion{
			Title: s.Record.Title,
			ISSN:  s.Record.PreferredISSN(),
		})
	}
	return vs
}

func (vm *ViewModel) memberLabel() string {
	m := vm.config.Member
	switch {
	case m.Name != "" && m.ID != "":
		return m.Name + " (" + m.ID + ")"
	case m.Name != "":
		return m.Name
	default:
		return m.ID
	}
}
