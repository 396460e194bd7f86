package circuit

import "errors"

// Sentinel errors for the circuit package.
var (
	// ErrElementNotFound indicates a named pin or gate could not be
	// resolved against the oracle. Topology is static within a session,
	// so this is never retried.
	ErrElementNotFound = errors.New("element not found in design")

	// ErrNotMember indicates a role declaration for a pin that was never
	// added to the circuit. This is a caller logic error.
	ErrNotMember = errors.New("pin is not a member of the circuit")

	// ErrMultipleFanin indicates a gate input pin driven by more than one
	// net, which violates the modeling assumptions for a legal circuit.
	ErrMultipleFanin = errors.New("input pin has multiple fanin pins")

	// ErrBadRecord indicates a persisted circuit record missing a required
	// name or referencing an out-of-range index.
	ErrBadRecord = errors.New("malformed circuit record")
)
