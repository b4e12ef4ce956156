package domain

import (
	"fmt"
	"strings"
)

// DateRange is the publication-year scope of a query
type DateRange int

const (
	AllTime DateRange = iota
	Current
	Backfile
)

var dateRangeLabels = map[DateRange]string{
	AllTime:  "All time",
	Current:  "Current content",
	Backfile: "Back file",
}

// DateRanges lists the ranges in display order
func DateRanges() []DateRange {
	return []DateRange{AllTime, Current, Backfile}
}

func (r DateRange) String() string {
	if label, ok := dateRangeLabels[r]; ok {
		return label
	}
	return fmt.Sprintf("DateRange(%d)", int(r))
}

// Valid reports whether r is one of the known ranges
func (r DateRange) Valid() bool {
	_, ok := dateRangeLabels[r]
	return ok
}

// PubYear returns the pubyear query value, empty for AllTime
func (r DateRange) PubYear() string {
	switch r {
	case Current:
		return "current"
	case Backfile:
		return "backfile"
	default:
		return ""
	}
}

// RequiresYear reports whether queries for r carry a pubyear parameter
func (r DateRange) RequiresYear() bool {
	return r.PubYear() != ""
}

// Next cycles through the ranges in display order
func (r DateRange) Next() DateRange {
	ranges := DateRanges()
	for i, candidate := range ranges {
		if candidate == r {
			return ranges[(i+1)%len(ranges)]
		}
	}
	return AllTime
}

// ParseDateRange accepts the pubyear values and the display labels
func ParseDateRange(s string) (DateRange, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(normalized)
	switch normalized {
	case "", "all", "alltime":
		return AllTime, nil
	case "current", "currentcontent":
		return Current, nil
	case "backfile":
		return Backfile, nil
	}
	return AllTime, fmt.Errorf("%w: %q", ErrUnknownDateRange, s)
}

// CoverageItem is one participation check shown as a bar
type CoverageItem struct {
	Name       string
	Percentage float64 // 0..100
	Info       string  // tooltip text
}

// CoverageDataset maps content-type names to their coverage items.
// Keys keep the order they had in the response document. A dataset is
// built once by its producer and treated as read-only afterwards; all
// methods are safe on a nil receiver.
type CoverageDataset struct {
	order   []string
	entries map[string][]CoverageItem
}

// NewCoverageDataset creates an empty dataset
func NewCoverageDataset() *CoverageDataset {
	return &CoverageDataset{entries: make(map[string][]CoverageItem)}
}

// Set stores items under name, keeping first-insertion order
func (d *CoverageDataset) Set(name string, items []CoverageItem) {
	if _, exists := d.entries[name]; !exists {
		d.order = append(d.order, name)
	}
	d.entries[name] = items
}

// Entry returns the items stored under name
func (d *CoverageDataset) Entry(name string) ([]CoverageItem, bool) {
	if d == nil {
		return nil, false
	}
	items, ok := d.entries[name]
	return items, ok
}

// Has reports whether name is a key of the dataset
func (d *CoverageDataset) Has(name string) bool {
	_, ok := d.Entry(name)
	return ok
}

// Keys returns the content-type names in document order
func (d *CoverageDataset) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, len(d.order))
	copy(keys, d.order)
	return keys
}

// FirstKey returns the first content type of the document
func (d *CoverageDataset) FirstKey() (string, bool) {
	if d == nil || len(d.order) == 0 {
		return "", false
	}
	return d.order[0], true
}

// Len returns the number of content types
func (d *CoverageDataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.order)
}

// FilterSelection is the user's current filter choice
type FilterSelection struct {
	ContentType string
	DateRange   DateRange
	Title       string // empty when no title filter is active
	TitleISSN   string
}

// HasTitle reports whether a title filter is active
func (s FilterSelection) HasTitle() bool {
	return s.TitleISSN != ""
}

// LoadState tracks one logical query
type LoadState int

const (
	LoadStateIdle LoadState = iota
	LoadStateLoading
	LoadStateLoadedDelayed // still loading after the decoration delay
	LoadStateError
)

func (s LoadState) String() string {
	switch s {
	case LoadStateIdle:
		return "idle"
	case LoadStateLoading:
		return "loading"
	case LoadStateLoadedDelayed:
		return "loading_delayed"
	case LoadStateError:
		return "error"
	default:
		return "unknown"
	}
}

// InFlight reports whether a fetch is outstanding
func (s LoadState) InFlight() bool {
	return s == LoadStateLoading || s == LoadStateLoadedDelayed
}

// CombineLoadStates folds per-query states into the one shown to the user
func CombineLoadStates(states ...LoadState) LoadState {
	rank := func(s LoadState) int {
		switch s {
		case LoadStateLoadedDelayed:
			return 3
		case LoadStateLoading:
			return 2
		case LoadStateError:
			return 1
		default:
			return 0
		}
	}
	combined := LoadStateIdle
	for _, s := range states {
		if rank(s) > rank(combined) {
			combined = s
		}
	}
	return combined
}

// TitleRecord is a publication entry from the publications endpoint
type TitleRecord struct {
	Title string
	PISSN string
	EISSN string
	DOI   string
}

// PreferredISSN returns the print ISSN, falling back to the electronic one
func (t TitleRecord) PreferredISSN() string {
	if t.PISSN != "" {
		return t.PISSN
	}
	return t.EISSN
}

// SummaryQuery narrows a participation-summary request
type SummaryQuery struct {
	PubYear string // "", "current" or "backfile"
	PubID   string // ISSN of a title
}

// Summary is a parsed participation-summary message
type Summary struct {
	Coverage *CoverageDataset // per content type, nil when the message is flat
	Items    []CoverageItem   // flat item list, set for title-scoped replies
	Totals   map[string]float64
}

// ItemsFor returns the items for one content type. Flat summaries
// already belong to a single content type and are returned as-is.
func (s *Summary) ItemsFor(contentType string) ([]CoverageItem, bool) {
	if s == nil {
		return nil, false
	}
	if s.Coverage == nil {
		return s.Items, s.Items != nil
	}
	return s.Coverage.Entry(contentType)
}

// RegistryMetrics holds the registry's auxiliary coverage tables
type RegistryMetrics struct {
	// date scope -> registry sub-type -> field -> fraction (0..1)
	Coverage map[string]map[string]map[string]float64
	// date scope -> registry sub-type -> item count
	Counts map[string]map[string]float64
}

// CoverageOf returns the fraction for one field, zero when absent
func (m *RegistryMetrics) CoverageOf(dateScope, subType, field string) float64 {
	if m == nil {
		return 0
	}
	return m.Coverage[dateScope][subType][field]
}

// CountOf returns the item count for one sub-type, zero when absent
func (m *RegistryMetrics) CountOf(dateScope, subType string) float64 {
	if m == nil {
		return 0
	}
	return m.Counts[dateScope][subType]
}
