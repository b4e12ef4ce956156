package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNetworkFailure marks a transport error or non-OK response
	ErrNetworkFailure = errors.New("network failure")
	// ErrEmptyResult marks a successful fetch that carried no content
	ErrEmptyResult = errors.New("empty result")
	// ErrSelectionMismatch marks a dataset lacking the selected content type
	ErrSelectionMismatch = errors.New("selection not present in dataset")
	// ErrStaleResponse marks a response for a superseded selection
	ErrStaleResponse = errors.New("stale response")

	ErrUnknownContentType = errors.New("unknown content type")
	ErrUnknownDateRange   = errors.New("unknown date range")
	ErrNoIdentifier       = errors.New("title has no ISSN")
)

// FetchError describes a failed request to the report API
type FetchError struct {
	Op         string
	URL        string
	StatusCode int // zero for transport errors
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d from %s", e.Op, e.StatusCode, e.URL)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": request failed"
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is makes every FetchError match ErrNetworkFailure
func (e *FetchError) Is(target error) bool {
	return target == ErrNetworkFailure
}
