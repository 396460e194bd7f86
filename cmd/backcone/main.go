package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyerfyer/backcone/pkg/analyze"
	"github.com/fyerfyer/backcone/pkg/circuit"
	"github.com/fyerfyer/backcone/pkg/config"
	"github.com/fyerfyer/backcone/pkg/oracle"
)

type options struct {
	outDir       string
	logFile      string
	verbose      bool
	runAnalysis  bool
	writeNetlist bool
	writeRecord  bool
	writeDOT     bool
	fromRecord   string
	workers      int
	shellPath    string
	timeout      time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "backcone <config.yaml>",
		Short:        "Extract and analyze the backward logic cone of failing scan bits",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.outDir, "out-dir", "", "output directory (default backcone_<name>)")
	f.StringVar(&opts.logFile, "log", "", "log file (default stderr)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	f.BoolVar(&opts.runAnalysis, "analyze", true, "run activation analysis on failing patterns")
	f.BoolVar(&opts.writeNetlist, "write-netlist", false, "write a verilog netlist of the subcircuit")
	f.BoolVar(&opts.writeRecord, "write-record", false, "write a record file of the subcircuit")
	f.BoolVar(&opts.writeDOT, "write-dot", false, "write a DOT graph of the subcircuit")
	f.StringVar(&opts.fromRecord, "from-record", "", "restore the subcircuit from an existing record file")
	f.IntVar(&opts.workers, "workers", 1, "parallel analysis workers (each gets its own oracle session)")
	f.StringVar(&opts.shellPath, "shell", "tessent", "oracle shell executable")
	f.DurationVar(&opts.timeout, "timeout", 0, "per-command oracle timeout (0 = none)")
	return cmd
}

func run(opts *options, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	outDir := opts.outDir
	if outDir == "" {
		outDir = "backcone_" + cfg.Name
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	logger, closeLog, err := newLogger(opts)
	if err != nil {
		return err
	}
	defer closeLog()

	ses, err := launchSession(opts, cfg, filepath.Join(outDir, "tessent.log"))
	if err != nil {
		return err
	}
	defer ses.Close()
	reg := circuit.NewRegistry(ses)

	var c *circuit.Circuit
	var patterns []*circuit.Pattern
	if opts.fromRecord != "" {
		rec, err := circuit.ReadRecordFile(opts.fromRecord)
		if err != nil {
			return err
		}
		c, patterns, err = circuit.Decode(rec, reg, "")
		if err != nil {
			return fmt.Errorf("restore: %w", err)
		}
		logger.Info("restored circuit from record", "record", opts.fromRecord,
			"pins", len(c.Pins()), "patterns", len(patterns))
	} else {
		var targets []analyze.Target
		c, targets, err = analyze.Build(cfg, reg, logger)
		if err != nil {
			return err
		}
		patterns = analyze.AllPatterns(targets)
	}

	paths, err := c.PinPaths()
	if err != nil {
		return fmt.Errorf("path enumeration: %w", err)
	}
	logger.Info("paths enumerated", "circuit", c.Name, "paths", len(paths))

	if opts.runAnalysis {
		if opts.workers > 1 {
			err = analyzeParallel(opts, cfg, c, patterns, outDir, logger)
		} else {
			a := analyze.NewAnalyzer(c, logger)
			err = a.AnalyzePatterns(patterns)
		}
		if err != nil {
			return err
		}
		if err := writeTo(filepath.Join(outDir, "failpaths.txt"), func(w io.Writer) error {
			return analyze.WriteFailPaths(w, c, patterns)
		}); err != nil {
			return err
		}
	}

	if opts.writeRecord {
		rec, err := circuit.Encode(c, patterns)
		if err != nil {
			return fmt.Errorf("persistence: %w", err)
		}
		if err := rec.WriteFile(filepath.Join(outDir, "backcone.json")); err != nil {
			return fmt.Errorf("persistence: %w", err)
		}
	}
	if opts.writeNetlist {
		if err := writeTo(filepath.Join(outDir, "backcone.v"), func(w io.Writer) error {
			return analyze.WriteVerilog(w, c)
		}); err != nil {
			return err
		}
	}
	if opts.writeDOT {
		if err := writeTo(filepath.Join(outDir, "backcone.dot"), func(w io.Writer) error {
			return analyze.WriteDOT(w, c)
		}); err != nil {
			return err
		}
	}

	logger.Info("done", "circuit", c.Name, "pins", len(c.Pins()),
		"gates", len(c.Gates()), "paths", len(paths), "patterns", len(patterns))
	return nil
}

func newLogger(opts *options) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	out := io.Writer(os.Stderr)
	closeLog := func() {}
	if opts.logFile != "" {
		f, err := os.Create(opts.logFile)
		if err != nil {
			return nil, nil, fmt.Errorf("create log file: %w", err)
		}
		out = f
		closeLog = func() { f.Close() }
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), closeLog, nil
}

func launchSession(opts *options, cfg *config.Config, shellLog string) (*oracle.Session, error) {
	shell, err := oracle.Launch(
		oracle.WithExecutable(opts.shellPath),
		oracle.WithLogfile(shellLog, true),
		oracle.WithTimeout(opts.timeout),
	)
	if err != nil {
		return nil, err
	}
	ses, err := analyze.SetupSession(shell, cfg.FlatModel, cfg.PatternFile())
	if err != nil {
		shell.Close()
		return nil, err
	}
	return ses, nil
}

// analyzeParallel snapshots the circuit to a record so every worker can
// restore an identical copy (with identical path indices) on its own
// oracle session, fans the patterns out, and replays the merged results
// onto the local pattern objects.
func analyzeParallel(opts *options, cfg *config.Config, c *circuit.Circuit, patterns []*circuit.Pattern, outDir string, logger *slog.Logger) error {
	rec, err := circuit.Encode(c, nil)
	if err != nil {
		return fmt.Errorf("parallel analysis: %w", err)
	}

	factory := func(ctx context.Context) (*analyze.Analyzer, error) {
		ses, err := launchSession(opts, cfg, filepath.Join(outDir, fmt.Sprintf("tessent_worker_%d.log", time.Now().UnixNano())))
		if err != nil {
			return nil, err
		}
		wc, _, err := circuit.Decode(rec, circuit.NewRegistry(ses), "")
		if err != nil {
			ses.Close()
			return nil, err
		}
		return analyze.NewAnalyzer(wc, logger), nil
	}

	indices := make([]int, len(patterns))
	byIndex := make(map[int]*circuit.Pattern, len(patterns))
	for i, pat := range patterns {
		indices[i] = pat.Index
		byIndex[pat.Index] = pat
	}

	results, err := analyze.AnalyzeParallel(context.Background(), factory, indices, opts.workers)
	if err != nil {
		return err
	}

	paths, err := c.PinPaths()
	if err != nil {
		return err
	}
	for _, res := range results {
		pat := byIndex[res.Pattern]
		for _, idx := range res.ActivatedPaths {
			if idx >= 0 && idx < len(paths) {
				pat.AddActivatedPinPath(paths[idx])
			}
		}
	}
	return nil
}

func writeTo(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}
