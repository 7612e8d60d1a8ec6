package core

import "errors"

// Client-facing error taxonomy. These are the only errors the router
// reports to callers; everything else is absorbed into a Response with
// a non-ok status.
var (
	// ErrEmptyMessage rejects a request with missing or blank text
	// before any backend invocation is attempted.
	ErrEmptyMessage = errors.New("message text must not be empty")
	// ErrUnknownProvider rejects a provider override that is not
	// present in the configured provider table.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrUnknownAgent rejects an explicitly requested agent that is
	// not registered.
	ErrUnknownAgent = errors.New("unknown agent")
)
