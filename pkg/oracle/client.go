package oracle

import (
	"errors"
	"strings"
)

// Client is the synchronous request/response boundary to the circuit
// query/simulation oracle. One textual command goes out, the full response
// text up to the next ready prompt comes back. A single client is stateful
// (its current simulation context is global to the session) and must not be
// shared across concurrent callers.
type Client interface {
	// SendCommand issues one command and blocks until the oracle is ready
	// again, returning the response text with the echoed command stripped.
	SendCommand(command string) (string, error)

	// Close terminates the session.
	Close() error
}

var (
	// ErrDesync indicates the oracle response did not echo the command.
	// The session is unusable afterwards; no resynchronization is attempted.
	ErrDesync = errors.New("oracle response missing echoed command")

	// ErrTimeout indicates a command exceeded the per-command time limit.
	// Session state after a timeout is not known to be consistent, so the
	// session is treated as dead rather than retried.
	ErrTimeout = errors.New("oracle command timed out")

	// ErrClosed indicates a command was sent on a closed or dead session.
	ErrClosed = errors.New("oracle session closed")

	// ErrCommandFailed indicates the oracle reported an error for a command.
	ErrCommandFailed = errors.New("oracle command failed")
)

// IsErrorResponse reports whether a response carries the oracle's native
// error marker. Callers treat such responses as "element not found" or
// "command failed" depending on what they asked for.
func IsErrorResponse(response string) bool {
	return strings.Contains(response, "Error")
}
