package views

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"partrep/internal/domain"
)

// Report is the data of a plain-text coverage report
type Report struct {
	Member      string
	ContentType string
	DateRange   domain.DateRange
	Title       string
	Totals      map[string]float64
	Items       []domain.CoverageItem
	Message     string // shown instead of the checks when set
	BarWidth    int
}

// RenderReport renders a report without colour, for pagers and pipes
func RenderReport(r Report) string {
	var b strings.Builder

	b.WriteString("Participation report")
	if r.Member != "" {
		fmt.Fprintf(&b, ": %s", r.Member)
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Content type: %s\n", r.ContentType)
	fmt.Fprintf(&b, "Date range:   %s\n", r.DateRange)
	if r.Title != "" {
		fmt.Fprintf(&b, "Title:        %s\n", r.Title)
	}
	if line := FormatTotals(r.Totals); line != "" {
		fmt.Fprintf(&b, "Totals:       %s\n", line)
	}
	b.WriteString("\n")

	if r.Message != "" {
		b.WriteString(r.Message)
		b.WriteString("\n")
		return b.String()
	}

	width := r.BarWidth
	if width <= 0 {
		width = 30
	}
	nameWidth := 0
	for _, it := range r.Items {
		nameWidth = max(nameWidth, len([]rune(it.Name)))
	}
	for _, it := range r.Items {
		filled := BarCells(it.Percentage, width)
		fmt.Fprintf(&b, "%-*s  %s%s  %s\n", nameWidth, it.Name,
			strings.Repeat("#", filled), strings.Repeat(".", width-filled), FormatPercent(it.Percentage))
		if it.Info != "" {
			fmt.Fprintf(&b, "%*s  %s\n", nameWidth, "", it.Info)
		}
	}
	return b.String()
}

// FormatTotals renders the summary totals in key order
func FormatTotals(totals map[string]float64) string {
	if len(totals) == 0 {
		return ""
	}
	parts := make([]string, 0, len(totals))
	for _, k := range slices.Sorted(maps.Keys(totals)) {
		parts = append(parts, fmt.Sprintf("%s %s", k, formatCount(totals[k])))
	}
	return strings.Join(parts, ", ")
}

// ErrorMessage picks the text shown while the error flag is set
func ErrorMessage(nothingRegistered bool, sel domain.FilterSelection, err error) string {
	switch {
	case nothingRegistered:
		return "This member has not registered any content yet."
	case errors.Is(err, domain.ErrNetworkFailure):
		return "The report could not be loaded. Change a filter to try again."
	case sel.HasTitle():
		return fmt.Sprintf("No %s for %s in %s. Pick another title or date range.",
			strings.ToLower(sel.ContentType), sel.Title, strings.ToLower(sel.DateRange.String()))
	default:
		return fmt.Sprintf("No %s in %s. Pick another date range.",
			strings.ToLower(sel.ContentType), strings.ToLower(sel.DateRange.String()))
	}
}

func formatCount(v float64) string {
	if v == float64(int64(v)) {
		return groupThousands(int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

func groupThousands(n int64) string {
	s := fmt.Sprint(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var out []byte
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
