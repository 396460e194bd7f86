package oracle

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// Default prompts the shell waits for between commands.
var defaultPrompts = []string{"SETUP> ", "ANALYSIS> "}

var backspaceRe = regexp.MustCompile(".\x08")

// Shell drives an external oracle shell process over its stdin/stdout,
// speaking the line-oriented expect/echo protocol: write one command,
// read everything up to the next ready prompt.
type Shell struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	incoming chan []byte
	readErr  chan error
	prompts  []string
	timeout  time.Duration
	pending  string // output read past the last prompt, kept for the next read
	dead     bool
}

// ShellOption configures a Shell before launch.
type ShellOption func(*shellConfig)

type shellConfig struct {
	executable string
	dofile     string
	logfile    string
	replace    bool
	arguments  map[string]string
	prompts    []string
	timeout    time.Duration
}

// WithExecutable sets the oracle shell executable path.
func WithExecutable(path string) ShellOption {
	return func(c *shellConfig) { c.executable = path }
}

// WithDofile runs the shell with a startup command file.
func WithDofile(path string) ShellOption {
	return func(c *shellConfig) { c.dofile = path }
}

// WithLogfile directs the shell's own log to a file. If replace is true an
// existing logfile is overwritten.
func WithLogfile(path string, replace bool) ShellOption {
	return func(c *shellConfig) { c.logfile = path; c.replace = replace }
}

// WithArguments passes key=value arguments to the shell.
func WithArguments(args map[string]string) ShellOption {
	return func(c *shellConfig) { c.arguments = args }
}

// WithPrompts overrides the ready prompts expected between commands.
func WithPrompts(prompts ...string) ShellOption {
	return func(c *shellConfig) { c.prompts = prompts }
}

// WithTimeout sets the per-command time limit. Zero means no limit.
func WithTimeout(d time.Duration) ShellOption {
	return func(c *shellConfig) { c.timeout = d }
}

// Launch starts the oracle shell process and waits for its first prompt.
func Launch(opts ...ShellOption) (*Shell, error) {
	cfg := shellConfig{
		executable: "tessent",
		prompts:    defaultPrompts,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	args := []string{"-shell"}
	if cfg.dofile != "" {
		args = append(args, "-dofile", cfg.dofile)
	}
	if cfg.logfile != "" {
		args = append(args, "-logfile", cfg.logfile)
		if cfg.replace {
			args = append(args, "-replace")
		}
	}
	if len(cfg.arguments) > 0 {
		args = append(args, "-arguments")
		for k, v := range cfg.arguments {
			args = append(args, fmt.Sprintf("%s=%s", k, v))
		}
	}

	cmd := exec.Command(cfg.executable, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("launch oracle shell: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("launch oracle shell: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("launch oracle shell %q: %w", cfg.executable, err)
	}

	s := &Shell{
		cmd:      cmd,
		stdin:    stdin,
		incoming: make(chan []byte, 16),
		readErr:  make(chan error, 1),
		prompts:  cfg.prompts,
		timeout:  cfg.timeout,
	}
	go s.pump(stdout)

	// Consume the banner up to the first prompt.
	if _, err := s.readUntilPrompt(); err != nil {
		s.dead = true
		return nil, fmt.Errorf("oracle shell startup: %w", err)
	}
	return s, nil
}

// pump moves process output onto the incoming channel.
func (s *Shell) pump(r io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.incoming <- chunk
		}
		if err != nil {
			s.readErr <- err
			close(s.incoming)
			return
		}
	}
}

// SetTimeout changes the per-command time limit for subsequent commands.
func (s *Shell) SetTimeout(d time.Duration) {
	s.timeout = d
}

// SendCommand writes a command and returns the response text that follows
// the echoed command, trimmed of the trailing prompt. A missing echo is a
// protocol desync and permanently kills the session.
func (s *Shell) SendCommand(command string) (string, error) {
	if s.dead {
		return "", ErrClosed
	}
	if _, err := io.WriteString(s.stdin, command+"\n"); err != nil {
		s.dead = true
		return "", fmt.Errorf("send %q: %w", command, err)
	}

	raw, err := s.readUntilPrompt()
	if err != nil {
		s.dead = true
		return "", fmt.Errorf("command %q: %w", command, err)
	}

	// The shell echoes back through a terminal: drop carriage returns and
	// backspace sequences before looking for the echo.
	raw = strings.ReplaceAll(raw, "\r", "")
	raw = backspaceRe.ReplaceAllString(raw, "")

	echo := command + "\n"
	idx := strings.Index(raw, echo)
	if idx < 0 {
		s.dead = true
		return "", fmt.Errorf("%w: command %q, got %q", ErrDesync, command, raw)
	}
	return strings.TrimRight(raw[idx+len(echo):], " \t\n"), nil
}

// readUntilPrompt accumulates output until one of the ready prompts appears,
// returning everything before it. Output past the prompt is retained for the
// next read.
func (s *Shell) readUntilPrompt() (string, error) {
	var deadline <-chan time.Time
	if s.timeout > 0 {
		t := time.NewTimer(s.timeout)
		defer t.Stop()
		deadline = t.C
	}

	text := s.pending
	s.pending = ""
	for {
		if before, after, found := splitAtPrompt(text, s.prompts); found {
			s.pending = after
			return before, nil
		}
		select {
		case chunk, ok := <-s.incoming:
			if !ok {
				return "", io.ErrUnexpectedEOF
			}
			text += string(chunk)
		case <-deadline:
			return "", fmt.Errorf("%w after %s", ErrTimeout, s.timeout)
		}
	}
}

// splitAtPrompt finds the earliest prompt occurrence in text.
func splitAtPrompt(text string, prompts []string) (before, after string, found bool) {
	best := -1
	width := 0
	for _, p := range prompts {
		if i := strings.Index(text, p); i >= 0 && (best < 0 || i < best) {
			best = i
			width = len(p)
		}
	}
	if best < 0 {
		return "", "", false
	}
	return text[:best], text[best+width:], true
}

// closeGrace is how long Close waits for the shell process to exit on
// its own before killing it.
const closeGrace = 5 * time.Second

// Close exits the shell process. The exit command itself is best-effort;
// remaining output is drained so a shell blocked writing into a full
// pipe can still make progress, and a process that does not exit within
// the grace period is killed.
func (s *Shell) Close() error {
	if !s.dead {
		s.dead = true
		io.WriteString(s.stdin, "exit -force\n")
	}
	s.stdin.Close()

	drained := make(chan struct{})
	go func() {
		for range s.incoming {
		}
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(closeGrace):
		s.cmd.Process.Kill()
		<-drained
	}

	err := s.cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// A nonzero exit after "exit -force" or a kill is expected.
			return nil
		}
		return err
	}
	return nil
}
