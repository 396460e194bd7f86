package oracle

import (
	"fmt"
	"strings"

	"github.com/fyerfyer/backcone/pkg/utils"
)

// Session wraps a Client with the typed command vocabulary the circuit
// model depends on. Each method maps one-to-one onto an oracle-native
// query; none of them retry, and any error-marker response surfaces as
// ErrCommandFailed.
type Session struct {
	client Client
}

// NewSession wraps a client.
func NewSession(client Client) *Session {
	return &Session{client: client}
}

// Send passes a raw command through to the client. Setup commands that
// have no structured result (context selection, model/pattern loading)
// go through here.
func (s *Session) Send(command string) (string, error) {
	return s.client.SendCommand(command)
}

// Close closes the underlying client.
func (s *Session) Close() error {
	return s.client.Close()
}

// query sends a command and converts error-marker responses into errors.
func (s *Session) query(command string) (string, error) {
	resp, err := s.client.SendCommand(command)
	if err != nil {
		return "", err
	}
	if IsErrorResponse(resp) {
		return "", fmt.Errorf("%w: %s: %s", ErrCommandFailed, command, strings.TrimSpace(resp))
	}
	return resp, nil
}

// PinExists reports whether a gate pin resolves in the design.
func (s *Session) PinExists(name string) (bool, error) {
	resp, err := s.client.SendCommand("get_pin " + name)
	if err != nil {
		return false, err
	}
	return !IsErrorResponse(resp), nil
}

// PortExists reports whether a circuit boundary port resolves in the design.
func (s *Session) PortExists(name string) (bool, error) {
	resp, err := s.client.SendCommand("get_port " + name)
	if err != nil {
		return false, err
	}
	return !IsErrorResponse(resp), nil
}

// PinDirection returns "input" or "output" for a pin or port name.
func (s *Session) PinDirection(name string) (string, error) {
	resp, err := s.query(fmt.Sprintf("get_single_attribute_value %s -name direction", name))
	if err != nil {
		return "", err
	}
	dir := strings.TrimSpace(resp)
	if dir != "input" && dir != "output" {
		return "", fmt.Errorf("unknown pin direction %q for %s", dir, name)
	}
	return dir, nil
}

// Fanin lists the names of the pins driving name.
func (s *Session) Fanin(name string) ([]string, error) {
	resp, err := s.query(fmt.Sprintf("get_name_list [get_fanin %s]", name))
	if err != nil {
		return nil, err
	}
	return utils.ParseNameList(resp), nil
}

// Fanout lists the names of the pins driven by name.
func (s *Session) Fanout(name string) ([]string, error) {
	resp, err := s.query(fmt.Sprintf("get_name_list [get_fanout %s]", name))
	if err != nil {
		return nil, err
	}
	return utils.ParseNameList(resp), nil
}

// ObjectType returns the design object type ("pin", "port", "net", ...)
// of a name. Fanout listings include nets, which callers filter out.
func (s *Session) ObjectType(name string) (string, error) {
	resp, err := s.query(fmt.Sprintf("get_attribute_value_list %s -name object_type", name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}

// FaninNet returns the name of the net directly behind an input pin.
func (s *Session) FaninNet(name string) (string, error) {
	resp, err := s.query(fmt.Sprintf("get_fanin %s -stop_on net", name))
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(resp), "{}"), nil
}

// FanoutNet returns the name of the net directly ahead of an output pin.
func (s *Session) FanoutNet(name string) (string, error) {
	resp, err := s.query(fmt.Sprintf("get_fanout %s -stop_on net", name))
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(resp), "{}"), nil
}

// ModuleName maps a gate instance name to its cell type name.
func (s *Session) ModuleName(gate string) (string, error) {
	resp, err := s.query(fmt.Sprintf("get_single_attribute_value %s -name module_name", gate))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}

// ModulePorts lists a cell type's port names for one direction.
func (s *Session) ModulePorts(module, direction string) ([]string, error) {
	resp, err := s.query(fmt.Sprintf("get_ports -of_module %s -direction %s", module, direction))
	if err != nil {
		return nil, err
	}
	return strings.Fields(strings.Trim(strings.TrimSpace(resp), "{}")), nil
}

// ReportScanCell reports the owning gate instance and internal primitive
// for one cell position of a scan chain. The primitive field is the
// oracle's literal token; an empty-string token comes back as `""`.
func (s *Session) ReportScanCell(chain string, cell int) (instance, primitive string, err error) {
	resp, err := s.query(fmt.Sprintf("report_scan_cell %s -range %d %d", chain, cell, cell))
	if err != nil {
		return "", "", err
	}
	lines := strings.Split(strings.TrimSpace(resp), "\n")
	fields := strings.Fields(lines[len(lines)-1])
	if len(fields) < 11 {
		return "", "", fmt.Errorf("malformed scan cell report for %s cell %d: %q", chain, cell, resp)
	}
	return fields[9], fields[10], nil
}

// TraceFlopBoundary traces backward from a pin through the full design
// hierarchy to flop/module boundaries, returning the boundary pin names.
func (s *Session) TraceFlopBoundary(pin string) ([]string, error) {
	resp, err := s.query(fmt.Sprintf(
		"get_attribute_value_list [trace_flat_model -from %s -direction backward -map_tag_to_design_module_boundary on] -name name",
		pin))
	if err != nil {
		return nil, err
	}
	return strings.Fields(resp), nil
}

// SetGateReportPattern switches the gate-level value report to a pattern.
func (s *Session) SetGateReportPattern(index int) error {
	_, err := s.query(fmt.Sprintf("set_gate_report pattern_index %d -external", index))
	return err
}

// GateReportValue returns the raw value token (e.g. "(0-1)") for one pin
// of a gate report. leaf is the pin's name within its gate.
func (s *Session) GateReportValue(pin, leaf string) (string, error) {
	resp, err := s.query("report_gate " + pin)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(resp)
	for i, f := range fields {
		if f == leaf && i+2 < len(fields) {
			return fields[i+2], nil
		}
	}
	return "", fmt.Errorf("pin %s not found in gate report %q", leaf, resp)
}

// AddSimulationContext creates a named simulation context seeded from a
// template context.
func (s *Session) AddSimulationContext(name, copyFrom string) error {
	_, err := s.query(fmt.Sprintf("add_simulation_context %s -copy_from %s", name, copyFrom))
	return err
}

// SetSimulationContext selects the active simulation context.
func (s *Session) SetSimulationContext(name string) error {
	_, err := s.query("set_current_simulation_context " + name)
	return err
}

// AddSimulationForce forces a named pin to a value ("0", "1" or "X") in
// the active context. The force takes effect on the next SimulateForces.
func (s *Session) AddSimulationForce(pin, value string) error {
	_, err := s.query(fmt.Sprintf("add_simulation_forces {%s} -value %s", pin, value))
	return err
}

// SimulateForces propagates all pending forces through the active context.
func (s *Session) SimulateForces() error {
	_, err := s.query("simulate_forces")
	return err
}

// SimulationValue returns the simulated value of a pin in the active
// context ("0", "1" or "X").
func (s *Session) SimulationValue(pin string) (string, error) {
	resp, err := s.query(fmt.Sprintf("get_simulation_value_list {%s}", pin))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}
