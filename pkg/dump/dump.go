// Package dump renders the IR and CFG as text. The formats are consumed
// by the --dump-ir, --dump-cfg and --cfg front-end flags and are kept
// line-exact; change them only together with their goldens.
package dump

import (
	"fmt"
	"strings"

	"asmopt/pkg/cfg"
	"asmopt/pkg/ir"
)

// IRText lists one line per record as "NNNN: kind text", with instruction
// records showing mnemonic and operands instead of raw text.
func IRText(records []ir.Record) string {
	lines := []string{"IR:"}
	for _, rec := range records {
		var body string
		if rec.Kind == ir.KindInstruction {
			body = fmt.Sprintf("%04d: instr %s %s", rec.Line, rec.Mnemonic, strings.Join(rec.Operands, ", "))
		} else {
			body = fmt.Sprintf("%04d: %s %s", rec.Line, rec.Kind, rec.Text)
		}
		lines = append(lines, strings.TrimRight(body, " \t"))
	}
	return strings.Join(lines, "\n") + "\n"
}

// CFGText lists each block with its instructions indented beneath it and
// a "-> a, b" successor line for blocks with outgoing edges.
func CFGText(g *cfg.Graph) string {
	lines := []string{"CFG:"}
	targets := edgeMap(g)
	for _, block := range g.Blocks {
		lines = append(lines, block.Name+":")
		for _, instr := range block.Instructions {
			body := fmt.Sprintf("  %s %s", instr.Mnemonic, strings.Join(instr.Operands, ", "))
			lines = append(lines, strings.TrimRight(body, " \t"))
		}
		if succ, ok := targets[block.Name]; ok {
			lines = append(lines, "  -> "+strings.Join(succ, ", "))
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// CFGDot renders the graph in Graphviz syntax, one boxed node per block
// with left-justified instruction lines.
func CFGDot(g *cfg.Graph) string {
	lines := []string{"digraph cfg {", "  node [shape=box];"}
	for _, block := range g.Blocks {
		labelLines := []string{block.Name + ":"}
		for _, instr := range block.Instructions {
			body := fmt.Sprintf("%s %s", instr.Mnemonic, strings.Join(instr.Operands, ", "))
			labelLines = append(labelLines, strings.TrimRight(body, " \t"))
		}
		label := strings.Join(labelLines, `\l`) + `\l`
		lines = append(lines, fmt.Sprintf("  %s [label=\"%s\"]; ", block.Name, label))
	}
	for _, e := range g.Edges {
		lines = append(lines, fmt.Sprintf("  %s -> %s;", e.From, e.To))
	}
	lines = append(lines, "}")
	return strings.Join(lines, "\n") + "\n"
}

func edgeMap(g *cfg.Graph) map[string][]string {
	targets := make(map[string][]string)
	for _, e := range g.Edges {
		targets[e.From] = append(targets[e.From], e.To)
	}
	return targets
}
