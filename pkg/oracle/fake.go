package oracle

import (
	"sync"
)

// Fake is a scripted oracle client for tests. Commands are answered from
// the script table, or by the Handler when one is installed; anything
// unscripted answers with the oracle's error marker, which callers already
// treat as "not found". Every command sent is recorded.
type Fake struct {
	mu sync.Mutex

	// Script maps exact command strings to canned responses.
	Script map[string]string

	// Handler, if set, is consulted before the script table. Returning
	// ok=false falls through to the script.
	Handler func(command string) (response string, ok bool)

	// Calls records every command in order.
	Calls []string

	closed bool
}

// NewFake returns a fake with an empty script.
func NewFake() *Fake {
	return &Fake{Script: make(map[string]string)}
}

// On adds a scripted response for one exact command.
func (f *Fake) On(command, response string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Script[command] = response
	return f
}

// SendCommand answers a command from the handler or script.
func (f *Fake) SendCommand(command string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", ErrClosed
	}
	f.Calls = append(f.Calls, command)

	if f.Handler != nil {
		if resp, ok := f.Handler(command); ok {
			return resp, nil
		}
	}
	if resp, ok := f.Script[command]; ok {
		return resp, nil
	}
	return "Error: unscripted command: " + command, nil
}

// Sent reports whether a command was issued at least once.
func (f *Fake) Sent(command string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if c == command {
			return true
		}
	}
	return false
}

// Close marks the fake closed; further commands fail with ErrClosed.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
