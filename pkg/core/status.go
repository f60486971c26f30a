package core

// SearchStatus is the state of one search call.
// Searching is the only non-terminal state.
type SearchStatus int

const (
	StatusSearching SearchStatus = iota // Gestures still being issued
	StatusSucceeded                     // Target matched and acted on
	StatusFailed                        // Budget exhausted, indeterminate or decode failure
	StatusCancelled                     // Caller aborted through the context
)

// String returns the string representation of SearchStatus
func (s SearchStatus) String() string {
	switch s {
	case StatusSearching:
		return "searching"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if the status is a final state
func (s SearchStatus) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsSuccess returns true if the status indicates success
func (s SearchStatus) IsSuccess() bool {
	return s == StatusSucceeded
}

// StatusOf maps a search error to its terminal status.
func StatusOf(err error) SearchStatus {
	switch {
	case err == nil:
		return StatusSucceeded
	case Code(err) == ErrCancelled.Code:
		return StatusCancelled
	default:
		return StatusFailed
	}
}

// ErrorCategory classifies the type of error for better debugging and reporting
type ErrorCategory int

const (
	ErrCategoryNone       ErrorCategory = iota // No error
	ErrCategorySearch                          // Exhausted, indeterminate, decode, cancelled
	ErrCategoryGesture                         // Swipe or tap did not execute
	ErrCategoryElement                         // Container or item lookup failed
	ErrCategoryConnection                      // Device/server connection lost
	ErrCategoryConfig                          // Invalid configuration, missing required field
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategorySearch:
		return "search"
	case ErrCategoryGesture:
		return "gesture"
	case ErrCategoryElement:
		return "element"
	case ErrCategoryConnection:
		return "connection"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}
