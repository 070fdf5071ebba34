package completion

import (
	"context"
	"errors"

	"chatd/pkg/models"
)

// Client produces an assistant reply for an ordered conversation history,
// oldest message first. Implementations make a single attempt; retries,
// if any, belong to the caller.
type Client interface {
	Complete(ctx context.Context, history []models.Message) (string, error)
}

// Kind classifies completion failures.
type Kind string

const (
	// KindNotConfigured: the provider credential is missing. Checked
	// before any network attempt.
	KindNotConfigured Kind = "not_configured"
	// KindProviderRejected: the provider returned a non-success response.
	KindProviderRejected Kind = "provider_rejected"
	// KindMalformedResponse: a success response lacking the reply field.
	KindMalformedResponse Kind = "malformed_response"
	// KindTransport: network or timeout failure.
	KindTransport Kind = "transport"
)

// Error is a typed completion failure.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

// NewError builds a typed completion failure; err may be nil.
func NewError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, msg: msg, err: err}
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// AsError returns the typed completion error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
