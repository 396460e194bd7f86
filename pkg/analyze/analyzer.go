package analyze

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fyerfyer/backcone/pkg/circuit"
)

// Stats collects counters across an analysis run.
type Stats struct {
	Patterns        int           // Patterns analyzed
	CandidateInputs int           // Inputs that transitioned and were injected
	StaticInputs    int           // Inputs skipped for lack of a transition
	ActivatedPaths  int           // Total paths marked activated
	Elapsed         time.Duration // Total analysis time
}

// Analyzer runs the fault-activation analysis for one circuit on one
// oracle session. The loop is strictly sequential per session: a session's
// current simulation context is global, so injections never overlap.
type Analyzer struct {
	Circuit *circuit.Circuit
	Log     *slog.Logger
	Stats   Stats
}

// NewAnalyzer creates an analyzer for a circuit.
func NewAnalyzer(c *circuit.Circuit, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{Circuit: c, Log: log}
}

// Close closes the oracle session the analyzer's circuit resolves
// through. Only callers that own the session should close it, as the
// parallel workers do; the sequential path shares one session and
// closes it itself.
func (a *Analyzer) Close() error {
	return a.Circuit.Registry().Session().Close()
}

// AnalyzePattern determines which enumerated paths the pattern
// sensitized. For every input that transitioned during the pattern, an X
// is injected and propagated; a path from that input to an output that
// went unknown is activated when every pin on it went unknown. Inputs are
// injected one at a time and restored in between, so X attribution stays
// unambiguous. A pattern activating nothing is a legitimate outcome, not
// an error.
func (a *Analyzer) AnalyzePattern(pat *circuit.Pattern) error {
	start := time.Now()
	defer func() { a.Stats.Elapsed += time.Since(start) }()

	c := a.Circuit
	inputs := c.Inputs()
	if len(inputs) == 0 || len(c.Outputs()) == 0 {
		a.Log.Info("skipping pattern: circuit has no declared inputs or outputs",
			"circuit", c.Name, "pattern", pat.Index)
		return nil
	}

	a.Log.Info("analyzing pattern", "circuit", c.Name, "pattern", pat.Index)
	a.Stats.Patterns++

	if err := pat.CreateSimContext(c); err != nil {
		return fmt.Errorf("activation analysis: %w", err)
	}

	for _, in := range inputs {
		if !pat.HasTransition(in) {
			a.Stats.StaticInputs++
			a.Log.Debug("skipping static input", "pattern", pat.Index, "pin", in.Name)
			continue
		}
		a.Stats.CandidateInputs++

		xPins, xOutputs, err := pat.SimulateXAtPin(c, in)
		if err != nil {
			return fmt.Errorf("activation analysis: %w", err)
		}
		a.Log.Debug("injected X", "pattern", pat.Index, "pin", in.Name,
			"unknown_pins", len(xPins), "unknown_outputs", len(xOutputs))
		if len(xOutputs) == 0 {
			continue
		}

		for _, out := range xOutputs {
			paths, err := c.FindPinPaths(in, out)
			if err != nil {
				return fmt.Errorf("activation analysis: %w", err)
			}
			for _, pp := range paths {
				if pp.IsActivated(xPins) {
					pat.AddActivatedPinPath(pp)
					a.Stats.ActivatedPaths++
					a.Log.Debug("activated path", "pattern", pat.Index, "path", pp.Index)
				}
			}
		}
	}

	a.Log.Info("pattern analyzed", "pattern", pat.Index,
		"activated_paths", len(pat.ActivatedPinPaths()))
	return nil
}

// AnalyzePatterns runs AnalyzePattern over a pattern list in order.
func (a *Analyzer) AnalyzePatterns(patterns []*circuit.Pattern) error {
	for _, pat := range patterns {
		if err := a.AnalyzePattern(pat); err != nil {
			return err
		}
	}
	return nil
}
