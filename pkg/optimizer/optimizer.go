// Package optimizer ties the pipeline together: it owns the loaded
// source text, runs the peephole engine over it, and caches the IR, the
// CFG and the run statistics until the next load.
package optimizer

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"asmopt/pkg/cfg"
	"asmopt/pkg/config"
	"asmopt/pkg/ir"
	"asmopt/pkg/peephole"
)

// ErrNoSource is returned by Optimize when no assembly has been loaded.
var ErrNoSource = errors.New("no assembly loaded")

// Stats are the counters for one optimization run.
type Stats struct {
	OriginalLines  int
	OptimizedLines int
	Replacements   int
	Removals       int
}

// Optimizer is single-threaded: a load followed by any number of reads.
// A second load discards everything derived from the first.
type Optimizer struct {
	cfg *config.Config

	loaded          bool
	trailingNewline bool
	originalLines   []string
	optimizedLines  []string

	records    []ir.Record
	graph      *cfg.Graph
	stats      Stats
	statsValid bool
}

func New(cfg *config.Config) *Optimizer {
	return &Optimizer{cfg: cfg}
}

func (o *Optimizer) Config() *config.Config { return o.cfg }

// Load replaces the current source text and resets all derived state.
// Whether the input ended in a newline is remembered and reproduced by
// Assembly.
func (o *Optimizer) Load(text string) {
	o.loaded = true
	o.trailingNewline = strings.HasSuffix(text, "\n")
	o.originalLines = splitLines(text)
	o.optimizedLines = nil
	o.records = nil
	o.graph = nil
	o.stats = Stats{}
	o.statsValid = false
}

func (o *Optimizer) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	o.Load(string(data))
	return nil
}

// Optimize runs one pass over the loaded text and returns the resulting
// assembly. The IR and CFG are built regardless of whether any rewrite
// rule runs; they describe the input, not the output.
func (o *Optimizer) Optimize() (string, error) {
	if !o.loaded {
		return "", ErrNoSource
	}
	o.records = ir.Build(o.originalLines)
	o.graph = cfg.Build(o.records)

	if !o.rewriteEnabled() {
		o.optimizedLines = append([]string(nil), o.originalLines...)
		o.stats = Stats{
			OriginalLines:  len(o.originalLines),
			OptimizedLines: len(o.optimizedLines),
		}
		o.statsValid = true
		return o.Assembly(), nil
	}

	res := peephole.Run(o.originalLines, o.Dialect())
	o.optimizedLines = res.Lines
	o.stats = Stats{
		OriginalLines:  len(o.originalLines),
		OptimizedLines: len(o.optimizedLines),
		Replacements:   res.Replacements,
		Removals:       res.Removals,
	}
	o.statsValid = true
	return o.Assembly(), nil
}

func (o *Optimizer) rewriteEnabled() bool {
	if o.cfg.NoOptimize || o.cfg.Level == 0 {
		return false
	}
	return o.cfg.PassEnabled(config.PassPeephole)
}

// Dialect resolves the syntax dialect for the current source: a forced
// override wins, otherwise it is detected from the text.
func (o *Optimizer) Dialect() peephole.Dialect {
	if d, ok := peephole.ParseDialect(o.cfg.Dialect); ok {
		return d
	}
	return peephole.Detect(o.originalLines)
}

// Assembly returns the optimized text, or the original text when no
// optimization has run, re-joined with the trailing newline restored
// exactly as loaded.
func (o *Optimizer) Assembly() string {
	if o.optimizedLines == nil && len(o.originalLines) > 0 {
		o.optimizedLines = append([]string(nil), o.originalLines...)
	}
	text := strings.Join(o.optimizedLines, "\n")
	if o.trailingNewline {
		text += "\n"
	}
	return text
}

// IR returns the per-line records for the current load, building them on
// first use.
func (o *Optimizer) IR() []ir.Record {
	if o.records == nil && len(o.originalLines) > 0 {
		o.records = ir.Build(o.originalLines)
	}
	return o.records
}

// CFG returns the control-flow graph for the current load, building it on
// first use.
func (o *Optimizer) CFG() *cfg.Graph {
	if o.graph == nil {
		o.graph = cfg.Build(o.IR())
	}
	return o.graph
}

// Stats returns the counters for the current load. Before Optimize runs
// they are derived from the line counts alone.
func (o *Optimizer) Stats() Stats {
	if !o.statsValid && len(o.originalLines) > 0 {
		o.stats = Stats{
			OriginalLines:  len(o.originalLines),
			OptimizedLines: len(o.optimizedLines),
		}
	}
	return o.stats
}

// Report formats the run statistics as the four-line report the front
// end writes with --report.
func (o *Optimizer) Report() string {
	s := o.Stats()
	return fmt.Sprintf(
		"Optimization Report\nOriginal lines: %d\nOptimized lines: %d\nReplacements: %d\nRemovals: %d\n",
		s.OriginalLines, s.OptimizedLines, s.Replacements, s.Removals)
}

// Save writes the current assembly to a file.
func (o *Optimizer) Save(path string) error {
	return os.WriteFile(path, []byte(o.Assembly()), 0644)
}

// splitLines mirrors a splitlines-style decomposition: the final newline
// does not open an empty trailing element.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
