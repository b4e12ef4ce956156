package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"partrep/internal/config"
	"partrep/internal/domain"
	"partrep/internal/eventbus"
	"partrep/internal/filter"
	"partrep/internal/search"
	"partrep/internal/ui/input"
	inputtypes "partrep/internal/ui/input/types"
	"partrep/internal/ui/state"
	"partrep/internal/ui/viewmodels"
	"partrep/internal/ui/views"
)

// statusTTL is how long transient status messages stay visible
const statusTTL = 4 * time.Second

// TitleSource lists the journal titles of one content type
type TitleSource interface {
	Publications(ctx context.Context, memberID, contentType string) ([]domain.TitleRecord, error)
}

// Options wires a Model to its collaborators
type Options struct {
	Config      *config.Config
	Coordinator *filter.Coordinator
	Search      *search.Proxy
	Titles      TitleSource
	Bus         eventbus.EventBus // optional
	Logger      *slog.Logger
}

// Model represents the UI state
type Model struct {
	ctx    context.Context
	bus    eventbus.EventBus
	config *config.Config
	state  *state.AppState
	logger *slog.Logger

	coord  *filter.Coordinator
	proxy  *search.Proxy
	titles TitleSource

	keys      keyMap
	help      help.Model
	spinner   spinner.Model
	statusSeq int
	mounted   bool

	// set by the coordinator's focus hook, consumed after each action
	focusRequested atomic.Bool

	renderer     *views.Renderer
	viewModel    *viewmodels.ViewModel
	inputHandler *input.Handler
}

// NewModel creates a new UI model
func NewModel(ctx context.Context, opts Options) *Model {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appState := state.NewAppState()

	m := &Model{
		ctx:          ctx,
		bus:          opts.Bus,
		config:       cfg,
		state:        appState,
		logger:       logger.With("component", "ui"),
		coord:        opts.Coordinator,
		proxy:        opts.Search,
		titles:       opts.Titles,
		keys:         newKeyMap(),
		help:         help.New(),
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		renderer:     views.NewRenderer(cfg.Accent()),
		inputHandler: input.New(),
	}
	m.viewModel = viewmodels.NewViewModel(appState, cfg, m.keys)
	m.viewModel.SetHelp(m.help)

	m.coord.SetFocusFunction(func() {
		m.focusRequested.Store(true)
	})
	return m
}

// SetConfig applies a reloaded configuration to the view
func (m *Model) SetConfig(cfg *config.Config) {
	m.config = cfg
	m.viewModel.SetConfig(cfg)
	m.renderer = views.NewRenderer(cfg.Accent())
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.mount(),
		m.waitForSearch(),
		m.spinner.Tick,
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		m.help.Width = msg.Width - 4
		m.viewModel.SetHelp(m.help)
		return m, nil

	case tea.KeyMsg:
		if m.state.ShowHelp {
			// any key closes the help popup
			m.state.ShowHelp = false
			return m, nil
		}

		ctx := m.inputContext()
		actions, cmd := m.inputHandler.HandleKey(msg, ctx)
		cmds := []tea.Cmd{cmd}
		for _, action := range actions {
			cmds = append(cmds, m.processAction(action))
		}
		if m.focusRequested.Swap(false) {
			cmds = append(cmds, m.inputHandler.ChangeMode(inputtypes.ModeSearch, "", m.inputContext()))
		}
		return m, tea.Batch(cmds...)
	}

	return m.handleNonKeyboardMsg(msg)
}

func (m *Model) View() string {
	textInput := m.inputHandler.TextInput()
	if textInput != nil {
		m.viewModel.SetInput(true, textInput.View())
	} else {
		m.viewModel.SetInput(false, "")
	}
	m.viewModel.SetSpinner(m.spinner.View())
	return m.renderer.Render(m.viewModel.BuildViewState(m.coord.Snapshot()))
}

// processAction processes an action from the input handler
func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	switch a := action.(type) {
	case inputtypes.NextContentTypeAction:
		snap := m.coord.Snapshot()
		next, ok := cycle(snap.ContentTypes, snap.Selection.ContentType, a.Delta)
		if !ok {
			return nil
		}
		if err := m.coord.SetContentType(next); err != nil {
			return m.setStatus(err.Error())
		}
		m.state.Cursor = 0
		m.resetTitleSearch()
		m.settle()
		return m.loadTitles(next)

	case inputtypes.CycleDateRangeAction:
		sel := m.coord.Selection()
		if err := m.coord.SetDateRange(sel.DateRange.Next(), false); err != nil {
			return m.setStatus(err.Error())
		}
		m.settle()
		return nil

	case inputtypes.CancelTitleAction:
		m.coord.CancelTitleFilter()
		m.state.Cursor = 0
		m.settle()
		return nil

	case inputtypes.MoveCursorAction:
		m.state.MoveCursor(a.Delta, len(m.state.Frame.Items))
		return nil

	case inputtypes.MoveSuggestionAction:
		m.state.MoveSuggestion(a.Delta)
		return nil

	case inputtypes.UpdateTextAction:
		return m.search(a.Text)

	case inputtypes.SubmitTextAction:
		if a.Mode != inputtypes.ModeSearch {
			return nil
		}
		return m.selectSuggestion()

	case inputtypes.CancelTextAction:
		m.resetTitleSearch()
		return nil

	case inputtypes.OpenReportAction:
		return m.openReport()

	case inputtypes.ToggleHelpAction:
		m.state.ShowHelp = !m.state.ShowHelp
		return nil

	case inputtypes.QuitAction:
		return tea.Quit
	}
	return nil
}

func (m *Model) handleNonKeyboardMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		return m, m.handleEvent(msg.Event)

	case mountedMsg:
		m.mounted = true
		m.settle()
		if msg.err != nil {
			return m, m.setStatus("Failed to load the report: " + msg.err.Error())
		}
		return m, m.loadTitles(m.coord.Selection().ContentType)

	case titlesLoadedMsg:
		if msg.contentType != m.state.TitlesFor {
			m.logger.Debug("titles_dropped", "content_type", msg.contentType)
			return m, nil
		}
		if msg.err != nil {
			m.state.TitlesFor = ""
			m.state.TitlesLoading = false
			return m, m.setStatus("Failed to load titles: " + msg.err.Error())
		}
		m.state.SetTitles(msg.contentType, msg.records)
		if err := m.proxy.SetCandidates(search.TitleDocuments(msg.records)); err != nil {
			m.logger.Warn("set_candidates_failed", "error", err)
			return m, nil
		}
		// a query typed while titles were loading is answered now
		return m, m.search(m.state.TitleQuery)

	case searchResultMsg:
		if !msg.ok {
			return m, nil
		}
		if msg.resp.Stale(m.state.TitleQuery, m.proxy.ID()) {
			m.logger.Debug("search_response_dropped", "query", msg.resp.Query)
			return m, m.waitForSearch()
		}
		if msg.resp.Err != nil {
			m.logger.Warn("search_failed", "query", msg.resp.Query, "error", msg.resp.Err)
		}
		m.state.ApplySearch(msg.resp)
		return m, m.waitForSearch()

	case reportPagerMsg:
		if msg.err != nil {
			return m, m.setStatus("Pager failed: " + msg.err.Error())
		}
		return m, nil

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.state.StatusMessage = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ConfigReloadedMsg:
		m.SetConfig(msg.Config)
		m.settle()
		return m, nil
	}

	// Cursor blink and other text input messages
	return m, m.inputHandler.Update(msg)
}

// handleEvent reacts to coordinator events forwarded from the bus
func (m *Model) handleEvent(event eventbus.DomainEvent) tea.Cmd {
	switch e := event.(type) {
	case domain.CoverageUpdatedEvent:
		m.settle()
		// the initial date load or a baseline refetch may change the type
		ct := m.coord.Selection().ContentType
		if m.mounted && !e.ErrorFlag && ct != m.state.TitlesFor {
			m.resetTitleSearch()
			return m.loadTitles(ct)
		}
	case domain.LoadStateChangedEvent:
		m.settle()
	case domain.FetchFailedEvent:
		m.settle()
		if errors.Is(e.Err, context.Canceled) {
			return nil
		}
		return m.setStatus(fmt.Sprintf("Fetch failed (%s)", e.Op))
	case domain.ConfigChangedEvent:
		return m.setStatus("Configuration reloaded")
	}
	return nil
}

// settle refreshes the held frame from the coordinator
func (m *Model) settle() {
	m.viewModel.Settle(m.coord.Snapshot())
}

func (m *Model) inputContext() *input.ModelContext {
	return &input.ModelContext{State: m.state, Selection: m.coord.Selection()}
}

func (m *Model) mount() tea.Cmd {
	initial := domain.FilterSelection{ContentType: m.config.Filters.ContentType}
	if r, err := domain.ParseDateRange(m.config.Filters.DateRange); err == nil {
		initial.DateRange = r
	}
	return func() tea.Msg {
		return mountedMsg{err: m.coord.Mount(m.ctx, initial)}
	}
}

func (m *Model) loadTitles(contentType string) tea.Cmd {
	if m.titles == nil || contentType == "" {
		return nil
	}
	if m.state.TitlesFor == contentType {
		return nil
	}
	m.state.Titles = nil
	m.state.TitlesFor = contentType
	m.state.TitlesLoading = true
	if err := m.proxy.SetCandidates(nil); err != nil {
		m.logger.Warn("set_candidates_failed", "error", err)
	}
	memberID := m.config.Member.ID
	return func() tea.Msg {
		records, err := m.titles.Publications(m.ctx, memberID, contentType)
		return titlesLoadedMsg{contentType: contentType, records: records, err: err}
	}
}

func (m *Model) waitForSearch() tea.Cmd {
	responses := m.proxy.Responses()
	return func() tea.Msg {
		resp, ok := <-responses
		return searchResultMsg{resp: resp, ok: ok}
	}
}

func (m *Model) search(q string) tea.Cmd {
	m.state.TitleQuery = q
	if q == "" {
		m.state.ClearSuggestions()
		return nil
	}
	opts := search.Options{
		Keys:      m.config.Search.Keys,
		Fuzziness: m.config.Search.Fuzziness,
		Limit:     m.config.Search.Limit,
	}
	if err := m.proxy.Search(q, opts); err != nil {
		m.logger.Warn("search_enqueue_failed", "query", q, "error", err)
	}
	return nil
}

func (m *Model) selectSuggestion() tea.Cmd {
	sug, ok := m.state.SelectedSuggestion()
	m.resetTitleSearch()
	if !ok {
		return m.setStatus("No matching title")
	}
	if err := m.coord.SelectTitle(sug.Record.Title, sug.Record); err != nil {
		return m.setStatus(err.Error())
	}
	m.state.Cursor = 0
	m.settle()
	return nil
}

func (m *Model) resetTitleSearch() {
	m.state.TitleQuery = ""
	m.state.ClearSuggestions()
}

func (m *Model) openReport() tea.Cmd {
	snap := m.coord.Snapshot()
	if !snap.Mounted {
		return nil
	}
	text := RenderReportText(snap, m.config)
	return tea.Exec(&pagerCommand{content: text}, func(err error) tea.Msg {
		return reportPagerMsg{err: err}
	})
}

func (m *Model) setStatus(text string) tea.Cmd {
	m.statusSeq++
	seq := m.statusSeq
	m.state.StatusMessage = text
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

// ReportFromSnapshot builds the plain-text report of a coordinator state
func ReportFromSnapshot(snap filter.Snapshot, cfg *config.Config) views.Report {
	r := views.Report{
		Member:      cfg.Member.Name,
		ContentType: snap.Selection.ContentType,
		DateRange:   snap.Selection.DateRange,
		Totals:      snap.Totals,
		Items:       snap.Items,
		BarWidth:    cfg.UISettings.BarWidth,
	}
	if r.Member == "" {
		r.Member = cfg.Member.ID
	}
	if snap.Selection.HasTitle() {
		r.Title = snap.Selection.Title
	}
	if snap.ErrorFlag {
		r.Message = views.ErrorMessage(snap.NothingRegistered, snap.Selection, snap.Err)
	}
	return r
}

// RenderReportText renders the plain-text report of a coordinator state
func RenderReportText(snap filter.Snapshot, cfg *config.Config) string {
	return views.RenderReport(ReportFromSnapshot(snap, cfg))
}

// cycle returns the entry delta steps from current, wrapping around
func cycle(list []string, current string, delta int) (string, bool) {
	if len(list) == 0 {
		return "", false
	}
	i := slices.Index(list, current)
	if i < 0 {
		return list[0], true
	}
	n := len(list)
	return list[((i+delta)%n+n)%n], true
}
