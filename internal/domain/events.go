package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventCoverageUpdated  EventType = "CoverageUpdated"
	EventLoadStateChanged EventType = "LoadStateChanged"
	EventFetchFailed      EventType = "FetchFailed"
	EventMounted          EventType = "Mounted"
	EventConfigLoaded     EventType = "ConfigLoaded"
	EventConfigSaved      EventType = "ConfigSaved"
	EventConfigChanged    EventType = "ConfigChanged"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// CoverageUpdatedEvent is emitted whenever the filter state changes
type CoverageUpdatedEvent struct {
	Selection FilterSelection
	LoadState LoadState
	ErrorFlag bool
}

func (e CoverageUpdatedEvent) Type() EventType { return EventCoverageUpdated }

// LoadStateChangedEvent is emitted when the loading decoration delay elapses
type LoadStateChangedEvent struct {
	State LoadState
}

func (e LoadStateChangedEvent) Type() EventType { return EventLoadStateChanged }

// FetchFailedEvent is emitted when a report fetch fails
type FetchFailedEvent struct {
	Op  string
	Err error
}

func (e FetchFailedEvent) Type() EventType { return EventFetchFailed }

// MountedEvent is emitted once the baseline dataset is known
type MountedEvent struct {
	ContentTypes []string
}

func (e MountedEvent) Type() EventType { return EventMounted }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

// ConfigChangedEvent is emitted when the config file changes on disk
type ConfigChangedEvent struct {
	Path string
}

func (e ConfigChangedEvent) Type() EventType { return EventConfigChanged }
