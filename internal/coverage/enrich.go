package coverage

import (
	"math"

	"partrep/internal/domain"
)

// Metric is a check computed from the registry tables
type Metric struct {
	Name  string // item name in the dataset
	Field string // field key inside coverage-type
	Info  string
}

// SecondaryMetrics are merged into every displayed dataset
var SecondaryMetrics = []Metric{
	{
		Name:  "Affiliations",
		Field: "affiliations",
		Info:  "The percentage of content containing affiliation information for at least one contributor.",
	},
	{
		Name:  "ROR IDs",
		Field: "ror-ids",
		Info:  "The percentage of content containing at least one ROR ID for a contributor's affiliation.",
	},
}

// Percentage returns the 0..100 value of field for a content type.
// Aggregate content types use the count-weighted mean of their
// sub-types; sub-types missing from the tables contribute nothing.
func (p Paths) Percentage(m *domain.RegistryMetrics, r domain.DateRange, contentType, field string) float64 {
	scope, ok := p.DateScopes[r]
	if !ok {
		return 0
	}
	subs := p.SubTypes(contentType)
	switch len(subs) {
	case 0:
		return 0
	case 1:
		return math.Round(m.CoverageOf(scope, subs[0], field) * 100)
	}

	var weighted, total float64
	for _, sub := range subs {
		count := m.CountOf(scope, sub)
		if count <= 0 {
			continue
		}
		weighted += m.CoverageOf(scope, sub, field) * 100 * count
		total += count
	}
	if total == 0 {
		return 0
	}
	return math.Round(weighted / total)
}

// Enrich merges the secondary metrics into items. An item with the same
// name is replaced in place, otherwise the metric is appended. The input
// slice is never modified.
func (p Paths) Enrich(items []domain.CoverageItem, m *domain.RegistryMetrics, r domain.DateRange, contentType string) []domain.CoverageItem {
	out := make([]domain.CoverageItem, len(items), len(items)+len(SecondaryMetrics))
	copy(out, items)
	if m == nil || len(p.SubTypes(contentType)) == 0 {
		return out
	}

	for _, metric := range SecondaryMetrics {
		out = upsert(out, domain.CoverageItem{
			Name:       metric.Name,
			Percentage: p.Percentage(m, r, contentType, metric.Field),
			Info:       metric.Info,
		})
	}
	return out
}

func upsert(items []domain.CoverageItem, item domain.CoverageItem) []domain.CoverageItem {
	for i := range items {
		if items[i].Name == item.Name {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}
