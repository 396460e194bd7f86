package analyze

import (
	"fmt"
	"io"

	"github.com/fyerfyer/backcone/pkg/circuit"
)

// WriteFailPaths writes the per-pattern activated path report: for each
// pattern, every activated path with its pins, each pin's cell type and
// captured value string, and a '*' marker on defect sites.
func WriteFailPaths(w io.Writer, c *circuit.Circuit, patterns []*circuit.Pattern) error {
	for _, pat := range patterns {
		if _, err := fmt.Fprintf(w, "Pattern %d\n", pat.Index); err != nil {
			return err
		}
		for i, pp := range pat.ActivatedPinPaths() {
			if _, err := fmt.Fprintf(w, "  Path %d (%d):\n", pp.Index, i+1); err != nil {
				return err
			}
			for _, p := range pp.Pins {
				cellName := "-"
				if g := p.Gate(); g != nil {
					ct, err := g.CellType()
					if err != nil {
						return fmt.Errorf("fail path report: %w", err)
					}
					cellName = ct.Name
				}
				marker := ""
				if c.IsDefectSite(p) {
					marker = "*"
				}
				if _, err := fmt.Fprintf(w, "    %s %s (%s) %s\n",
					p.Name, cellName, circuit.ValuesString(pat.PinValues[p]), marker); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// WritePDFFaults writes the path-delay fault definition stanzas for a
// path list, for use as an oracle fault-site file.
func WritePDFFaults(w io.Writer, paths []*circuit.PinPath) error {
	for _, pp := range paths {
		if _, err := fmt.Fprintf(w, "%s\n\n", pp.PDFString()); err != nil {
			return err
		}
	}
	return nil
}
