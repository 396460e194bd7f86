package circuit

import (
	"fmt"
	"sync"

	"github.com/fyerfyer/backcone/pkg/oracle"
)

// Registry holds the canonical pin, gate and cell type objects of one
// oracle session. All resolution goes through it, so repeated references
// to the same structural name share one object for the life of the
// session. The lookup-or-insert discipline is lock-protected; the oracle
// session behind it must still be confined to one caller at a time.
type Registry struct {
	session *oracle.Session

	mu        sync.Mutex
	pins      map[string]*Pin
	gates     map[string]*Gate
	celltypes map[string]*CellType
}

// NewRegistry creates an empty registry bound to an oracle session.
func NewRegistry(session *oracle.Session) *Registry {
	return &Registry{
		session:   session,
		pins:      make(map[string]*Pin),
		gates:     make(map[string]*Gate),
		celltypes: make(map[string]*CellType),
	}
}

// Session returns the oracle session the registry resolves against.
func (r *Registry) Session() *oracle.Session {
	return r.session
}

// Pin resolves a pin name to its canonical object, classifying it through
// the oracle on first sight: a resolvable gate pin, else a boundary port,
// else ErrElementNotFound.
func (r *Registry) Pin(name string) (*Pin, error) {
	r.mu.Lock()
	if p, ok := r.pins[name]; ok {
		r.mu.Unlock()
		return p, nil
	}
	r.mu.Unlock()

	p, err := r.resolvePin(name)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.pins[name]; ok {
		return existing, nil
	}
	r.pins[name] = p
	if p.Kind == GatePin {
		g := r.gateLocked(gateName(name))
		g.attach(p)
		p.gate = g
	}
	return p, nil
}

// resolvePin classifies and constructs a pin without touching the maps.
func (r *Registry) resolvePin(name string) (*Pin, error) {
	isPin, err := r.session.PinExists(name)
	if err != nil {
		return nil, fmt.Errorf("resolve pin %s: %w", name, err)
	}
	if isPin {
		dir, err := r.session.PinDirection(name)
		if err != nil {
			return nil, fmt.Errorf("resolve pin %s: %w", name, err)
		}
		d, err := ParseDirection(dir)
		if err != nil {
			return nil, fmt.Errorf("resolve pin %s: %w", name, err)
		}
		return &Pin{Name: name, Kind: GatePin, Direction: d, reg: r}, nil
	}

	isPort, err := r.session.PortExists(name)
	if err != nil {
		return nil, fmt.Errorf("resolve pin %s: %w", name, err)
	}
	if isPort {
		dir, err := r.session.PinDirection(name)
		if err != nil {
			return nil, fmt.Errorf("resolve pin %s: %w", name, err)
		}
		d, err := ParseDirection(dir)
		if err != nil {
			return nil, fmt.Errorf("resolve pin %s: %w", name, err)
		}
		kind := PrimaryInput
		if d == Output {
			kind = PrimaryOutput
		}
		return &Pin{Name: name, Kind: kind, Direction: d, reg: r}, nil
	}

	return nil, fmt.Errorf("%w: pin %s", ErrElementNotFound, name)
}

// Gate resolves a gate name to its canonical object. Gates carry no
// structure of their own until pins referencing them are resolved.
func (r *Registry) Gate(name string) *Gate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gateLocked(name)
}

func (r *Registry) gateLocked(name string) *Gate {
	if g, ok := r.gates[name]; ok {
		return g
	}
	g := &Gate{Name: name, reg: r}
	r.gates[name] = g
	return g
}

// CellType resolves a cell type name to its canonical object.
func (r *Registry) CellType(name string) *CellType {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ct, ok := r.celltypes[name]; ok {
		return ct
	}
	ct := &CellType{Name: name, reg: r}
	r.celltypes[name] = ct
	return ct
}
