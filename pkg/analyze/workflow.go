package analyze

import (
	"fmt"
	"log/slog"

	"github.com/fyerfyer/backcone/pkg/circuit"
	"github.com/fyerfyer/backcone/pkg/config"
	"github.com/fyerfyer/backcone/pkg/oracle"
)

// Target groups the failing patterns observed at one scan cell output.
type Target struct {
	Output   *circuit.Pin
	Patterns []*circuit.Pattern
}

// SetupSession prepares a fresh oracle session for diagnosis: scan
// pattern context, flat model, pattern set.
func SetupSession(client oracle.Client, flatModel, patternFile string) (*oracle.Session, error) {
	ses := oracle.NewSession(client)
	for _, cmd := range []string{
		"set_context pattern -scan",
		"read_flat_model " + flatModel,
		"read_patterns " + patternFile,
	} {
		if resp, err := ses.Send(cmd); err != nil {
			return nil, fmt.Errorf("session setup: %w", err)
		} else if oracle.IsErrorResponse(resp) {
			return nil, fmt.Errorf("session setup: %w: %s", oracle.ErrCommandFailed, cmd)
		}
	}
	return ses, nil
}

// Build extracts the backward cone for every failing bit in the config
// and assembles the subcircuit: the scan cell pin becomes a declared
// output, the traced flop boundary pins become inputs, the cone
// membership is added, and configured defect sites are marked.
func Build(cfg *config.Config, reg *circuit.Registry, log *slog.Logger) (*circuit.Circuit, []Target, error) {
	if log == nil {
		log = slog.Default()
	}
	c := circuit.New(cfg.Name, reg)

	defectSites := make(map[string]bool, len(cfg.DefectSites))
	for _, n := range cfg.DefectSites {
		defectSites[n] = true
	}

	var targets []Target
	for _, fb := range cfg.FailBits {
		log.Info("extracting backcone", "circuit", cfg.Name, "chain", fb.Chain, "cell", fb.Cell)

		scPin, err := c.ScanCellPin(fb.Chain, fb.Cell)
		if err != nil {
			return nil, nil, fmt.Errorf("cone extraction: %w", err)
		}
		if err := c.DefineOutput(scPin); err != nil {
			return nil, nil, fmt.Errorf("cone extraction: %w", err)
		}

		flops, err := c.BackconeFlopPins(scPin)
		if err != nil {
			return nil, nil, fmt.Errorf("cone extraction: %w", err)
		}
		for _, p := range flops {
			if err := c.DefineInput(p); err != nil {
				return nil, nil, fmt.Errorf("cone extraction: %w", err)
			}
		}

		cone, err := circuit.Backcone(scPin, flops)
		if err != nil {
			return nil, nil, fmt.Errorf("cone extraction: %w", err)
		}
		for _, p := range cone {
			if err := c.AddPin(p); err != nil {
				return nil, nil, fmt.Errorf("cone extraction: %w", err)
			}
		}
		log.Info("backcone extracted", "output", scPin.Name,
			"flop_inputs", len(flops), "cone_pins", len(cone))

		for _, p := range c.Pins() {
			if defectSites[p.Name] {
				if err := c.DefineDefectSite(p); err != nil {
					return nil, nil, fmt.Errorf("cone extraction: %w", err)
				}
			}
		}

		patterns := make([]*circuit.Pattern, 0, len(fb.FailPatterns))
		for _, idx := range fb.FailPatterns {
			patterns = append(patterns, circuit.NewPattern(idx))
		}
		targets = append(targets, Target{Output: scPin, Patterns: patterns})
	}
	return c, targets, nil
}

// AllPatterns flattens the patterns of every target.
func AllPatterns(targets []Target) []*circuit.Pattern {
	var out []*circuit.Pattern
	for _, t := range targets {
		out = append(out, t.Patterns...)
	}
	return out
}
