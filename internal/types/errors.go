package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrEmptyResponse   = errors.New("empty generation response")
	ErrEmptyPrompt     = errors.New("empty prompt")
	ErrNoWinnerPhrase  = errors.New("no winner phrase in response")
	ErrCatalogNotFound = errors.New("catalog file not found")
	ErrNoComparison    = errors.New("no comparison document persisted")
)

// InsufficientDataError signals that the catalog holds fewer products than a
// comparison needs. The whole run aborts; no partial artifact is written.
type InsufficientDataError struct {
	Need int
	Have int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient products for comparison: need %d, have %d", e.Need, e.Have)
}

// CriteriaCountError signals that criteria generation returned the wrong
// number of usable lines even after the retry.
type CriteriaCountError struct {
	Want int
	Got  int
}

func (e *CriteriaCountError) Error() string {
	return fmt.Sprintf("criteria generation returned %d criteria, want %d", e.Got, e.Want)
}

// GenerationError wraps a failure from the text-generation capability with
// the call site that issued it.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation error (%s): %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// StorageError wraps errors from the catalog or comparison stores.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// FetchError wraps errors that occur while fetching a page.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Retryable  bool
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }
