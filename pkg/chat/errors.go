package chat

import (
	"errors"

	"chatd/pkg/completion"
)

var (
	// ErrInvalidInput: the user message is empty after trimming, or
	// exceeds the configured limits.
	ErrInvalidInput = errors.New("message is required")
	// ErrUnauthenticated: no caller identity was supplied.
	ErrUnauthenticated = errors.New("caller identity required")
	// ErrThreadNotFound: the thread does not exist for this caller. An id
	// owned by someone else is rejected with this same error, never
	// redirected to a new thread.
	ErrThreadNotFound = errors.New("thread not found")
)

// CompletionFailedError reports that the completion provider failed after
// the user message was already durably appended. The thread remains
// usable for a retried send.
type CompletionFailedError struct {
	Kind completion.Kind
	Err  error
}

func (e *CompletionFailedError) Error() string {
	return "completion failed (" + string(e.Kind) + "): " + e.Err.Error()
}

func (e *CompletionFailedError) Unwrap() error { return e.Err }
