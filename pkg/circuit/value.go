package circuit

import (
	"fmt"
	"strings"
)

// Value represents a simulated logic value on a pin.
type Value int

const (
	X    Value = iota // Unknown
	Zero              // Logic 0
	One               // Logic 1
)

// String returns the oracle's representation of the value.
func (v Value) String() string {
	switch v {
	case X:
		return "X"
	case Zero:
		return "0"
	case One:
		return "1"
	default:
		return "?"
	}
}

// ParseValue converts one oracle value character into a Value.
func ParseValue(s string) (Value, error) {
	switch s {
	case "0":
		return Zero, nil
	case "1":
		return One, nil
	case "X", "x":
		return X, nil
	default:
		return X, fmt.Errorf("unknown logic value %q", s)
	}
}

// ParseValueTuple parses a gate report value token such as "(0-1)" into
// the per-timestep values it lists. For a transition pattern the tuple
// holds the launch and capture values.
func ParseValueTuple(token string) ([]Value, error) {
	inner := strings.Trim(strings.TrimSpace(token), "()")
	if inner == "" {
		return nil, fmt.Errorf("empty value tuple %q", token)
	}
	parts := strings.Split(inner, "-")
	vals := make([]Value, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		v, err := ParseValue(p[:1])
		if err != nil {
			return nil, fmt.Errorf("value tuple %q: %w", token, err)
		}
		vals = append(vals, v)
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("value tuple %q holds no values", token)
	}
	return vals, nil
}

// ValuesString renders a value tuple compactly, e.g. "01" or "0X".
func ValuesString(vals []Value) string {
	var b strings.Builder
	for _, v := range vals {
		b.WriteString(v.String())
	}
	return b.String()
}

// ParseValuesString is the inverse of ValuesString.
func ParseValuesString(s string) ([]Value, error) {
	vals := make([]Value, 0, len(s))
	for i := 0; i < len(s); i++ {
		v, err := ParseValue(s[i : i+1])
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}
