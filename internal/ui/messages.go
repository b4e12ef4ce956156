package ui

import (
	"partrep/internal/config"
	"partrep/internal/domain"
	"partrep/internal/eventbus"
	"partrep/internal/search"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// mountedMsg reports the end of the initial baseline fetch
type mountedMsg struct {
	err error
}

// titlesLoadedMsg carries the publication list of one content type
type titlesLoadedMsg struct {
	contentType string
	records     []domain.TitleRecord
	err         error
}

// searchResultMsg carries one response of the search worker. ok is false
// once the worker has stopped.
type searchResultMsg struct {
	resp search.Response
	ok   bool
}

// focusSearchMsg is sent by the coordinator's focus hook
type focusSearchMsg struct{}

// reportPagerMsg contains the result of the report pager
type reportPagerMsg struct {
	err error
}

// clearStatusMsg drops a transient status message
type clearStatusMsg struct {
	seq int
}

// ConfigReloadedMsg carries a configuration re-read from disk
type ConfigReloadedMsg struct {
	Config *config.Config
}
