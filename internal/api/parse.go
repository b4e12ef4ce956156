package api

import (
	"errors"

	"github.com/tidwall/gjson"

	"partrep/internal/domain"
)

var errInvalidJSON = errors.New("response is not valid JSON")

// parseSummary reads a participation-summary document. Coverage is
// either a content-type mapping or a flat list for title-scoped replies.
func parseSummary(body []byte) (*domain.Summary, error) {
	if !gjson.ValidBytes(body) {
		return nil, errInvalidJSON
	}
	msg := gjson.GetBytes(body, "message")

	summary := &domain.Summary{Totals: make(map[string]float64)}
	coverage := msg.Get("Coverage")
	switch {
	case coverage.IsArray():
		summary.Items = parseItems(coverage)
	case coverage.IsObject():
		summary.Coverage = domain.NewCoverageDataset()
		coverage.ForEach(func(key, value gjson.Result) bool {
			summary.Coverage.Set(key.String(), parseItems(value))
			return true
		})
	default:
		// no coverage at all means nothing registered
		summary.Coverage = domain.NewCoverageDataset()
	}

	msg.Get("totals").ForEach(func(key, value gjson.Result) bool {
		summary.Totals[key.String()] = value.Float()
		return true
	})
	return summary, nil
}

func parseItems(list gjson.Result) []domain.CoverageItem {
	items := make([]domain.CoverageItem, 0, len(list.Array()))
	list.ForEach(func(_, value gjson.Result) bool {
		name := value.Get("name").String()
		if name == "" {
			return true
		}
		items = append(items, domain.CoverageItem{
			Name:       name,
			Percentage: value.Get("percentage").Float(),
			Info:       value.Get("info").String(),
		})
		return true
	})
	return items
}

func parsePublications(body []byte) ([]domain.TitleRecord, error) {
	if !gjson.ValidBytes(body) {
		return nil, errInvalidJSON
	}
	var titles []domain.TitleRecord
	gjson.GetBytes(body, "message").ForEach(func(_, value gjson.Result) bool {
		record := domain.TitleRecord{
			Title: value.Get("title").String(),
			PISSN: value.Get("pissn").String(),
			EISSN: value.Get("eissn").String(),
			DOI:   value.Get("doi").String(),
		}
		if record.Title != "" {
			titles = append(titles, record)
		}
		return true
	})
	return titles, nil
}

// parseRegistryMetrics reads the coverage-type and counts-type tables
// of a member or journal document
func parseRegistryMetrics(body []byte) (*domain.RegistryMetrics, error) {
	if !gjson.ValidBytes(body) {
		return nil, errInvalidJSON
	}
	msg := gjson.GetBytes(body, "message")
	metrics := &domain.RegistryMetrics{
		Coverage: make(map[string]map[string]map[string]float64),
		Counts:   make(map[string]map[string]float64),
	}

	msg.Get("coverage-type").ForEach(func(scope, subTypes gjson.Result) bool {
		bySub := make(map[string]map[string]float64)
		subTypes.ForEach(func(sub, fields gjson.Result) bool {
			values := make(map[string]float64)
			fields.ForEach(func(field, value gjson.Result) bool {
				if value.Type == gjson.Number {
					values[field.String()] = value.Float()
				}
				return true
			})
			bySub[sub.String()] = values
			return true
		})
		metrics.Coverage[scope.String()] = bySub
		return true
	})

	msg.Get("counts-type").ForEach(func(scope, subTypes gjson.Result) bool {
		counts := make(map[string]float64)
		subTypes.ForEach(func(sub, value gjson.Result) bool {
			counts[sub.String()] = value.Float()
			return true
		})
		metrics.Counts[scope.String()] = counts
		return true
	})
	return metrics, nil
}
