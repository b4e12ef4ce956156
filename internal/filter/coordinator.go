// Package filter merges the results of independently triggered report
// fetches into the one dataset the dashboard renders.
package filter

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"partrep/internal/coverage"
	"partrep/internal/domain"
	"partrep/internal/eventbus"
)

// DefaultLoadingDelay is how long a query may load before the loading
// decoration is shown
const DefaultLoadingDelay = time.Second

// SummarySource fetches participation summaries
type SummarySource interface {
	ParticipationSummary(ctx context.Context, memberID string, q domain.SummaryQuery) (*domain.Summary, error)
}

// MetricsSource fetches the registry's auxiliary coverage tables
type MetricsSource interface {
	MemberMetrics(ctx context.Context, memberID string) (*domain.RegistryMetrics, error)
	JournalMetrics(ctx context.Context, issn string) (*domain.RegistryMetrics, error)
}

// Source is everything the coordinator fetches from
type Source interface {
	SummarySource
	MetricsSource
}

// Options configures a Coordinator
type Options struct {
	MemberID     string
	LoadingDelay time.Duration
	FetchTimeout time.Duration // per fetch, zero for none
	Paths        coverage.Paths
	Bus          eventbus.EventBus // optional
	Logger       *slog.Logger
}

// stamp versions each filter dimension. A fetch captures the stamp when
// it starts and may only commit while the stamp is unchanged.
type stamp struct {
	date  uint64
	title uint64
}

// Snapshot is a consistent copy of the coordinator state for rendering
type Snapshot struct {
	Selection         domain.FilterSelection
	Items             []domain.CoverageItem // enriched effective dataset
	ContentTypes      []string
	Totals            map[string]float64
	LoadState         domain.LoadState
	ErrorFlag         bool
	Err               error
	NothingRegistered bool
	Mounted           bool
}

// Coordinator owns the filter selection and every dataset fetched for
// it. All state is guarded by mu; fetches run in their own goroutines and
// commit under the lock after re-validating their stamp.
type Coordinator struct {
	source Source
	opts   Options
	logger *slog.Logger
	bus    eventbus.EventBus

	mu        sync.Mutex
	selection domain.FilterSelection
	stamp     stamp
	mounted   bool

	baseline      *domain.CoverageDataset // nil until a baseline fetch succeeds
	baselineTotal map[string]float64
	baseLoad      domain.LoadState
	baseErr       error

	dateScoped *domain.CoverageDataset // nil when the baseline applies
	dateTotals map[string]float64
	dateLoad   domain.LoadState
	dateErr    error

	titleScoped   []domain.CoverageItem
	titleResolved bool
	titleFound    bool
	titleLoad     domain.LoadState
	titleErr      error

	memberMetrics  *domain.RegistryMetrics
	journalMetrics *domain.RegistryMetrics

	err     error // nil unless the view must show the error state
	guard   loadingGuard
	focusFn func()

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a coordinator. Call Mount before using it.
func New(source Source, opts Options) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.LoadingDelay <= 0 {
		opts.LoadingDelay = DefaultLoadingDelay
	}
	if opts.Paths.DateScopes == nil {
		opts.Paths = coverage.DefaultPaths()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		source: source,
		opts:   opts,
		logger: opts.Logger.With("component", "filter", "member", opts.MemberID),
		bus:    opts.Bus,
		guard:  loadingGuard{delay: opts.LoadingDelay},
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetFocusFunction sets the hook run after the title filter is cancelled
func (c *Coordinator) SetFocusFunction(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focusFn = fn
}

// SetLoadingDelay changes the delay for loads started afterwards
func (c *Coordinator) SetLoadingDelay(d time.Duration) {
	if d <= 0 {
		d = DefaultLoadingDelay
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guard.delay = d
}

// Mount fetches the baseline dataset and the member's registry tables,
// then applies the initial date range. Without the registry tables the
// secondary checks are left out. A failed baseline is refetched by the
// next filter action.
func (c *Coordinator) Mount(ctx context.Context, initial domain.FilterSelection) error {
	summary, metrics, err := c.fetchBaseline(ctx)

	c.mu.Lock()
	c.mounted = true
	c.selection.ContentType = initial.ContentType
	if err != nil {
		c.baseErr = err
		c.baseLoad = domain.LoadStateError
		c.memberMetrics = metrics
		c.failLocked("mount", err)
		c.recomputeLocked()
		c.publishLocked()
		c.mu.Unlock()
		return err
	}

	c.applyBaselineLocked(summary, metrics)
	keys := c.baseline.Keys()
	c.recomputeLocked()
	c.publishLocked()
	c.mu.Unlock()

	c.logger.Info("mounted", "content_types", len(keys), "content_type", c.Selection().ContentType)
	if c.bus != nil {
		c.bus.Publish(domain.MountedEvent{ContentTypes: keys})
	}

	if initial.DateRange != domain.AllTime {
		return c.SetDateRange(initial.DateRange, true)
	}
	return nil
}

// fetchBaseline fetches the undated summary and, alongside, the member's
// registry tables. Only the summary can fail the call.
func (c *Coordinator) fetchBaseline(ctx context.Context) (*domain.Summary, *domain.RegistryMetrics, error) {
	var (
		summary *domain.Summary
		metrics *domain.RegistryMetrics
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := c.source.ParticipationSummary(gctx, c.opts.MemberID, domain.SummaryQuery{})
		if err != nil {
			return fmt.Errorf("failed to fetch baseline: %w", err)
		}
		summary = s
		return nil
	})
	g.Go(func() error {
		m, err := c.source.MemberMetrics(gctx, c.opts.MemberID)
		if err != nil {
			c.logger.Warn("member_metrics_unavailable", "error", err)
			return nil
		}
		metrics = m
		return nil
	})
	err := g.Wait()
	return summary, metrics, err
}

// applyBaselineLocked installs a fetched baseline. A content type it does
// not know falls back to its first key.
func (c *Coordinator) applyBaselineLocked(summary *domain.Summary, metrics *domain.RegistryMetrics) {
	c.baseErr = nil
	c.baseLoad = domain.LoadStateIdle
	c.baseline = datasetOf(summary, c.selection.ContentType)
	c.baselineTotal = summary.Totals
	if metrics != nil {
		c.memberMetrics = metrics
	}
	ct := c.selection.ContentType
	if !c.baseline.Has(ct) && !c.dateScoped.Has(ct) {
		if first, ok := c.baseline.FirstKey(); ok {
			c.selection.ContentType = first
		}
	}
}

// retryBaselineLocked refetches a baseline lost to a failed fetch. It
// reports whether a fetch was started.
func (c *Coordinator) retryBaselineLocked() bool {
	if c.baseErr == nil {
		return false
	}
	c.baseErr = nil
	c.baseLoad = domain.LoadStateLoading

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := c.fetchContext()
		defer cancel()

		summary, metrics, err := c.fetchBaseline(ctx)
		c.commitBaseline(summary, metrics, err)
	}()
	c.logger.Info("baseline_retry")
	return true
}

func (c *Coordinator) commitBaseline(summary *domain.Summary, metrics *domain.RegistryMetrics, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx.Err() != nil {
		return
	}
	if err != nil {
		c.baseErr = err
		c.baseLoad = domain.LoadStateError
		c.failLocked("baseline", err)
	} else {
		c.applyBaselineLocked(summary, metrics)
	}
	c.settleLocked()
	c.recomputeLocked()
	c.publishLocked()
}

// SetContentType switches the content type. Any title filter is cleared
// and its in-flight fetch invalidated; no network call is made.
func (c *Coordinator) SetContentType(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// without a baseline the name cannot be checked until the refetch lands
	checkable := c.baseErr == nil && !c.baseLoad.InFlight()
	if checkable && !c.baseline.Has(name) && !c.dateScoped.Has(name) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownContentType, name)
	}
	c.selection.ContentType = name
	c.clearTitleLocked()
	if c.retryBaselineLocked() {
		c.guard.arm(c.onLoadingDelay)
	} else {
		c.settleLocked()
	}
	c.recomputeLocked()
	c.publishLocked()
	return nil
}

// SetDateRange changes the date range. Current and Backfile fetch the
// year-scoped mapping; with a title set, the title-scoped data is
// refetched for the new range too. AllTime falls back to the baseline.
func (c *Coordinator) SetDateRange(r domain.DateRange, isInitialLoad bool) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %d", domain.ErrUnknownDateRange, int(r))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.selection.DateRange = r
	c.stamp.date++
	hasTitle := c.selection.HasTitle()
	if hasTitle {
		c.stamp.title++
	}
	sel, st := c.selection, c.stamp

	loading := c.retryBaselineLocked()
	if r.RequiresYear() {
		c.dateScoped = nil
		c.dateTotals = nil
		c.dateLoad = domain.LoadStateLoading
		c.dateErr = nil
		c.fetchDateScopedLocked(sel, st, isInitialLoad)
		loading = true
	} else {
		c.dateScoped = nil
		c.dateTotals = nil
		c.dateLoad = domain.LoadStateIdle
		c.dateErr = nil
	}
	if hasTitle {
		c.resetTitleDataLocked()
		c.titleLoad = domain.LoadStateLoading
		c.fetchTitleScopedLocked(sel, st)
		loading = true
	}

	if loading {
		c.guard.arm(c.onLoadingDelay)
	} else {
		c.settleLocked()
	}
	c.logger.Debug("date_range_set", "range", r.String(), "initial", isInitialLoad, "title", hasTitle)
	c.recomputeLocked()
	c.publishLocked()
	return nil
}

// SelectTitle narrows the view to one journal, identified by its print
// ISSN or, failing that, its electronic ISSN
func (c *Coordinator) SelectTitle(titleID string, record domain.TitleRecord) error {
	issn := record.PreferredISSN()
	if issn == "" {
		return fmt.Errorf("%w: %q", domain.ErrNoIdentifier, titleID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.selection.Title = titleID
	c.selection.TitleISSN = issn
	c.stamp.title++
	c.resetTitleDataLocked()
	c.titleLoad = domain.LoadStateLoading
	c.fetchTitleScopedLocked(c.selection, c.stamp)
	c.retryBaselineLocked()
	c.guard.arm(c.onLoadingDelay)

	c.logger.Debug("title_selected", "title", titleID, "issn", issn)
	c.recomputeLocked()
	c.publishLocked()
	return nil
}

// CancelTitleFilter drops the title filter. The focus hook runs once the
// new state is committed and the lock released.
func (c *Coordinator) CancelTitleFilter() {
	defer c.runFocusHook()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearTitleLocked()
	if c.retryBaselineLocked() {
		c.guard.arm(c.onLoadingDelay)
	} else {
		c.settleLocked()
	}
	c.recomputeLocked()
	c.publishLocked()
}

// EffectiveDataset returns the items to render for the current
// selection: title-scoped, else date-scoped, else baseline
func (c *Coordinator) EffectiveDataset() []domain.CoverageItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.effectiveLocked())
}

// DisplayDataset is the effective dataset enriched with the registry
// metrics of the member, or of the journal when a title is selected
func (c *Coordinator) DisplayDataset() []domain.CoverageItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.displayLocked()
}

// Selection returns the current filter selection
func (c *Coordinator) Selection() domain.FilterSelection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// LoadState returns the combined state of the date and title queries
func (c *Coordinator) LoadState() domain.LoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadStateLocked()
}

// ErrorFlag reports whether the view must show its error message
func (c *Coordinator) ErrorFlag() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err != nil
}

// ErrorReason explains the error flag. It matches ErrNetworkFailure,
// ErrEmptyResult or ErrSelectionMismatch, and is nil when the flag is off.
func (c *Coordinator) ErrorReason() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Snapshot returns everything the view needs under one lock
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := c.baseline.Keys()
	for _, k := range c.dateScoped.Keys() {
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	totals := c.baselineTotal
	if c.dateScoped != nil {
		totals = c.dateTotals
	}

	return Snapshot{
		Selection:         c.selection,
		Items:             c.displayLocked(),
		ContentTypes:      keys,
		Totals:            totals,
		LoadState:         c.loadStateLocked(),
		ErrorFlag:         c.err != nil,
		Err:               c.err,
		NothingRegistered: c.mounted && c.baseline != nil && c.baseline.Len() == 0,
		Mounted:           c.mounted,
	}
}

// Wait blocks until every fetch started so far has committed
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Close abandons in-flight fetches and stops the loading timer
func (c *Coordinator) Close() {
	c.cancel()
	c.mu.Lock()
	c.guard.release()
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Coordinator) fetchDateScopedLocked(sel domain.FilterSelection, st stamp, isInitialLoad bool) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := c.fetchContext()
		defer cancel()

		summary, err := c.source.ParticipationSummary(ctx, c.opts.MemberID, domain.SummaryQuery{
			PubYear: sel.DateRange.PubYear(),
		})
		c.commitDateScoped(sel, st, isInitialLoad, summary, err)
	}()
}

func (c *Coordinator) commitDateScoped(sel domain.FilterSelection, st stamp, isInitialLoad bool, summary *domain.Summary, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx.Err() != nil {
		return
	}
	if st.date != c.stamp.date {
		c.logger.Debug("stale_response_dropped", "query", "date", "range", sel.DateRange.String(), "reason", domain.ErrStaleResponse)
		return
	}

	if err != nil {
		c.dateLoad = domain.LoadStateError
		c.dateErr = err
		c.failLocked("date", err)
	} else {
		c.dateLoad = domain.LoadStateIdle
		c.dateErr = nil
		c.dateScoped = datasetOf(summary, sel.ContentType)
		c.dateTotals = summary.Totals
		if isInitialLoad && !c.dateScoped.Has(c.selection.ContentType) {
			if first, ok := c.dateScoped.FirstKey(); ok {
				c.logger.Debug("content_type_fallback", "from", c.selection.ContentType, "to", first)
				c.selection.ContentType = first
				if c.selection.HasTitle() {
					c.clearTitleLocked()
				}
			}
		}
	}
	c.settleLocked()
	c.recomputeLocked()
	c.publishLocked()
}

func (c *Coordinator) fetchTitleScopedLocked(sel domain.FilterSelection, st stamp) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := c.fetchContext()
		defer cancel()

		var (
			summary *domain.Summary
			metrics *domain.RegistryMetrics
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			s, err := c.source.ParticipationSummary(gctx, c.opts.MemberID, domain.SummaryQuery{
				PubYear: sel.DateRange.PubYear(),
				PubID:   sel.TitleISSN,
			})
			summary = s
			return err
		})
		g.Go(func() error {
			m, err := c.source.JournalMetrics(gctx, sel.TitleISSN)
			metrics = m
			return err
		})
		err := g.Wait()
		c.commitTitleScoped(sel, st, summary, metrics, err)
	}()
}

func (c *Coordinator) commitTitleScoped(sel domain.FilterSelection, st stamp, summary *domain.Summary, metrics *domain.RegistryMetrics, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx.Err() != nil {
		return
	}
	if st != c.stamp {
		c.logger.Debug("stale_response_dropped", "query", "title", "issn", sel.TitleISSN, "reason", domain.ErrStaleResponse)
		return
	}

	if err != nil {
		c.titleLoad = domain.LoadStateError
		c.titleErr = err
		c.failLocked("title", err)
	} else {
		items, found := summary.ItemsFor(sel.ContentType)
		c.titleLoad = domain.LoadStateIdle
		c.titleErr = nil
		c.titleScoped = items
		c.titleFound = found
		c.titleResolved = true
		c.journalMetrics = metrics
	}
	c.settleLocked()
	c.recomputeLocked()
	c.publishLocked()
}

func (c *Coordinator) onLoadingDelay(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.guard.current(gen) {
		return
	}
	c.guard.release()

	promoted := false
	if c.baseLoad == domain.LoadStateLoading {
		c.baseLoad = domain.LoadStateLoadedDelayed
		promoted = true
	}
	if c.dateLoad == domain.LoadStateLoading {
		c.dateLoad = domain.LoadStateLoadedDelayed
		promoted = true
	}
	if c.titleLoad == domain.LoadStateLoading {
		c.titleLoad = domain.LoadStateLoadedDelayed
		promoted = true
	}
	if !promoted {
		return
	}
	if c.bus != nil {
		c.bus.Publish(domain.LoadStateChangedEvent{State: c.loadStateLocked()})
	}
	c.publishLocked()
}

// clearTitleLocked drops the title filter and invalidates its fetches
func (c *Coordinator) clearTitleLocked() {
	c.selection.Title = ""
	c.selection.TitleISSN = ""
	c.stamp.title++
	c.resetTitleDataLocked()
	c.titleLoad = domain.LoadStateIdle
}

func (c *Coordinator) resetTitleDataLocked() {
	c.titleScoped = nil
	c.titleResolved = false
	c.titleFound = false
	c.titleErr = nil
	c.journalMetrics = nil
}

// settleLocked releases the loading timer once nothing is in flight
func (c *Coordinator) settleLocked() {
	if !c.baseLoad.InFlight() && !c.dateLoad.InFlight() && !c.titleLoad.InFlight() {
		c.guard.release()
	}
}

func (c *Coordinator) recomputeLocked() {
	c.err = c.evaluateLocked()
}

func (c *Coordinator) evaluateLocked() error {
	switch {
	case c.baseErr != nil:
		return c.baseErr
	case c.dateErr != nil:
		return c.dateErr
	case c.titleErr != nil:
		return c.titleErr
	}
	if !c.mounted || c.baseline == nil {
		return nil
	}

	ct := c.selection.ContentType
	if c.baseline.Len() == 0 {
		return fmt.Errorf("%w: no content registered", domain.ErrEmptyResult)
	}
	if c.selection.HasTitle() && c.titleResolved {
		if !c.titleFound {
			return fmt.Errorf("%w: %q has no %s", domain.ErrSelectionMismatch, c.selection.Title, ct)
		}
		if len(c.titleScoped) == 0 {
			return fmt.Errorf("%w: no %s for %q", domain.ErrEmptyResult, ct, c.selection.Title)
		}
		return nil
	}
	if c.dateScoped != nil {
		if c.dateScoped.Len() == 0 {
			return fmt.Errorf("%w: no content for %s", domain.ErrEmptyResult, c.selection.DateRange)
		}
		if !c.dateScoped.Has(ct) {
			return fmt.Errorf("%w: no %s for %s", domain.ErrSelectionMismatch, ct, c.selection.DateRange)
		}
		return nil
	}
	if !c.baseline.Has(ct) {
		return fmt.Errorf("%w: no %s registered", domain.ErrSelectionMismatch, ct)
	}
	return nil
}

func (c *Coordinator) effectiveLocked() []domain.CoverageItem {
	if c.titleResolved {
		return c.titleScoped
	}
	if items, ok := c.dateScoped.Entry(c.selection.ContentType); ok {
		return items
	}
	items, _ := c.baseline.Entry(c.selection.ContentType)
	return items
}

func (c *Coordinator) displayLocked() []domain.CoverageItem {
	metrics := c.memberMetrics
	if c.titleResolved {
		metrics = c.journalMetrics
	}
	return c.opts.Paths.Enrich(c.effectiveLocked(), metrics, c.selection.DateRange, c.selection.ContentType)
}

func (c *Coordinator) loadStateLocked() domain.LoadState {
	return domain.CombineLoadStates(c.baseLoad, c.dateLoad, c.titleLoad)
}

func (c *Coordinator) publishLocked() {
	if c.bus == nil {
		return
	}
	c.bus.Publish(domain.CoverageUpdatedEvent{
		Selection: c.selection,
		LoadState: c.loadStateLocked(),
		ErrorFlag: c.err != nil,
	})
}

func (c *Coordinator) failLocked(query string, err error) {
	c.logger.Error("fetch_failed", "query", query, "error", err)
	if c.bus != nil {
		c.bus.Publish(domain.FetchFailedEvent{Op: query, Err: err})
	}
}

func (c *Coordinator) runFocusHook() {
	c.mu.Lock()
	fn := c.focusFn
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (c *Coordinator) fetchContext() (context.Context, context.CancelFunc) {
	if c.opts.FetchTimeout > 0 {
		return context.WithTimeout(c.ctx, c.opts.FetchTimeout)
	}
	return context.WithCancel(c.ctx)
}

// datasetOf turns a summary into a per-content-type dataset. A flat
// reply is filed under the content type it was requested for.
func datasetOf(s *domain.Summary, contentType string) *domain.CoverageDataset {
	if s != nil && s.Coverage != nil {
		return s.Coverage
	}
	d := domain.NewCoverageDataset()
	if s != nil && s.Items != nil {
		d.Set(contentType, s.Items)
	}
	return d
}
