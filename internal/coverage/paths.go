// Package coverage derives the registry-backed checks shown next to the
// participation summary.
package coverage

import (
	"strings"

	"partrep/internal/domain"
)

// Paths maps dashboard names onto the registry's table keys
type Paths struct {
	// DateScopes maps each range to its coverage-type key
	DateScopes map[domain.DateRange]string
	// ContentTypes maps a dashboard content type to the registry sub-types
	// it is made of. More than one sub-type makes it an aggregate.
	ContentTypes map[string][]string
}

// DefaultPaths returns the mapping used by the public registry
func DefaultPaths() Paths {
	return Paths{
		DateScopes: map[domain.DateRange]string{
			domain.AllTime:  "all",
			domain.Current:  "current",
			domain.Backfile: "backfile",
		},
		ContentTypes: map[string][]string{
			"Journal articles":  {"journal-article"},
			"Books":             {"monograph", "book", "edited-book", "reference-book"},
			"Book chapters":     {"book-chapter", "book-section", "book-part"},
			"Conference papers": {"proceedings-article"},
			"Datasets":          {"dataset"},
			"Dissertations":     {"dissertation"},
			"Reports":           {"report"},
			"Standards":         {"standard"},
			"Posted content":    {"posted-content"},
			"Peer reviews":      {"peer-review"},
			"Components":        {"component"},
		},
	}
}

// SubTypes returns the registry sub-types behind a content type.
// Lookup falls back to a case-insensitive match.
func (p Paths) SubTypes(contentType string) []string {
	if subs, ok := p.ContentTypes[contentType]; ok {
		return subs
	}
	for name, subs := range p.ContentTypes {
		if strings.EqualFold(name, contentType) {
			return subs
		}
	}
	return nil
}

// IsAggregate reports whether contentType spans several sub-types
func (p Paths) IsAggregate(contentType string) bool {
	return len(p.SubTypes(contentType)) > 1
}
