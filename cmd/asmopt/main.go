package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/term"

	"asmopt/pkg/cli"
	"asmopt/pkg/config"
	"asmopt/pkg/dump"
	"asmopt/pkg/optimizer"
	"asmopt/pkg/util"
)

func main() {
	app := cli.NewApp("asmopt")
	app.Synopsis = "[options] input.s -o output.s"
	app.Description = "Applies peephole optimizations to textual assembly. Reads stdin when no input file is given; '-' means stdout."

	var (
		inputPath   string
		outputPath  string
		format      string
		optLevels   []string
		enableOpts  []string
		disableOpts []string
		noOptimize  bool
		preserveAll bool
		reportPath  string
		showStats   bool
		cfgPath     string
		dumpIR      bool
		dumpCFG     bool
		verbose     bool
		quiet       bool
		march       string
		mtune       string
		amdOn       bool
		amdOff      bool
	)

	fs := app.FlagSet
	fs.String(&inputPath, "input", "i", "", "Input assembly file.", "file")
	fs.String(&outputPath, "output", "o", "", "Output assembly file ('-' or empty for stdout).", "file")
	fs.String(&format, "format", "f", "", "Syntax format (intel, att); detected when unset.", "format")
	fs.Prefix(&optLevels, "O", "Optimization level (0-4).", "level")
	fs.List(&enableOpts, "enable", "", "Enable a named optimization pass ('all' for every pass).", "opt")
	fs.List(&disableOpts, "disable", "", "Disable a named optimization pass ('all' for every pass).", "opt")
	fs.Bool(&noOptimize, "no-optimize", "", false, "Parse and regenerate without optimizing.")
	fs.Bool(&preserveAll, "preserve-all", "", false, "Preserve comments and formatting.")
	fs.String(&reportPath, "report", "", "", "Write the optimization report ('-' for stderr).", "file")
	fs.Bool(&showStats, "stats", "", false, "Print optimization statistics to stderr.")
	fs.String(&cfgPath, "cfg", "", "", "Write the CFG in Graphviz dot form.", "file")
	fs.Bool(&dumpIR, "dump-ir", "", false, "Dump the IR listing to stderr.")
	fs.Bool(&dumpCFG, "dump-cfg", "", false, "Dump the CFG listing to stderr.")
	fs.Bool(&verbose, "verbose", "v", false, "Verbose output.")
	fs.Bool(&quiet, "quiet", "q", false, "Suppress non-error output.")
	fs.String(&march, "march", "m", "x86-64", "Target architecture.", "arch")
	fs.String(&mtune, "mtune", "", "generic", "Target CPU.", "cpu")
	fs.Bool(&amdOn, "amd-optimize", "", false, "Enable AMD-specific tuning.")
	fs.Bool(&amdOff, "no-amd-optimize", "", false, "Disable AMD-specific tuning.")

	app.Action = func(args []string) error {
		util.Quiet = quiet

		cfg := config.New(march)
		cfg.TargetCPU = mtune
		cfg.SetDialect(format)
		cfg.NoOptimize = noOptimize
		cfg.PreserveAll = preserveAll
		for _, level := range optLevels {
			n, err := strconv.Atoi(level)
			if err != nil {
				util.Error("invalid optimization level -O%s", level)
			}
			cfg.SetLevel(n)
		}
		for _, name := range enableOpts {
			cfg.EnablePass(name)
		}
		for _, name := range disableOpts {
			cfg.DisablePass(name)
		}
		if amdOn {
			cfg.AMDOptimize = true
		}
		if amdOff {
			cfg.AMDOptimize = false
		}

		if inputPath == "" && len(args) > 0 {
			inputPath = args[0]
		}
		if inputPath == "" && term.IsTerminal(int(os.Stdin.Fd())) {
			app.Usage()
			os.Exit(1)
		}

		opt := optimizer.New(cfg)
		if inputPath == "" || inputPath == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				util.Error("failed to read stdin: %v", err)
			}
			opt.Load(string(data))
		} else {
			if err := opt.LoadFile(inputPath); err != nil {
				util.Error("failed to read input: %v", err)
			}
		}

		if verbose {
			util.Info("optimizing %s (dialect %s, level %d)", displayName(inputPath), opt.Dialect(), cfg.Level)
		}

		output, err := opt.Optimize()
		if err != nil {
			util.Error("optimization failed: %v", err)
		}

		if dumpIR {
			fmt.Fprint(os.Stderr, dump.IRText(opt.IR()))
		}
		if dumpCFG {
			fmt.Fprint(os.Stderr, dump.CFGText(opt.CFG()))
		}
		if cfgPath != "" {
			if err := writeOutput(cfgPath, dump.CFGDot(opt.CFG())); err != nil {
				util.Error("failed to write CFG: %v", err)
			}
		}
		if reportPath != "" {
			if err := writeReport(reportPath, opt.Report()); err != nil {
				util.Error("failed to write report: %v", err)
			}
		}
		if showStats {
			s := opt.Stats()
			fmt.Fprintf(os.Stderr,
				"Statistics:\n  original_lines: %d\n  optimized_lines: %d\n  replacements: %d\n  removals: %d\n",
				s.OriginalLines, s.OptimizedLines, s.Replacements, s.Removals)
		}

		if err := writeOutput(outputPath, output); err != nil {
			util.Error("failed to write output: %v", err)
		}
		return nil
	}

	if err := app.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

func displayName(path string) string {
	if path == "" || path == "-" {
		return "<stdin>"
	}
	return path
}

func writeOutput(path, data string) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.WriteString(data)
		return err
	}
	return os.WriteFile(path, []byte(data), 0644)
}

// writeReport defaults to stderr instead of stdout so reports never mix
// with the assembly stream.
func writeReport(path, data string) error {
	if path == "-" {
		_, err := os.Stderr.WriteString(data)
		return err
	}
	return os.WriteFile(path, []byte(data), 0644)
}
