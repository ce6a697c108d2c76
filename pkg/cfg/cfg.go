// Package cfg partitions an IR record stream into basic blocks and
// computes the control-flow edges between them.
package cfg

import (
	"strconv"

	"asmopt/pkg/ir"
)

// Block is a straight-line run of instruction records. Its name is either
// the label that opened it or a synthesized block<N> name.
type Block struct {
	Name         string
	Instructions []ir.Record
}

// Edge is a directed control transfer between two blocks, referenced by
// name. Duplicate edges are kept.
type Edge struct {
	From string
	To   string
}

// Graph is the finished control-flow graph. Blocks appear in source
// order; Edges appear in construction order (by source block, jump edge
// before fallthrough when a block has both).
type Graph struct {
	Blocks []Block
	Edges  []Edge
}

// Successors returns the targets of every edge leaving the named block,
// in construction order.
func (g *Graph) Successors(name string) []string {
	var out []string
	for _, e := range g.Edges {
		if e.From == name {
			out = append(out, e.To)
		}
	}
	return out
}

// Build runs the block state machine over the IR and then derives edges.
// Labels close the open block and name the next one; terminator
// instructions close the block that contains them; blank, directive and
// text records take no part in block membership.
func Build(records []ir.Record) *Graph {
	b := builder{labels: make(map[string]string)}
	for _, rec := range records {
		switch {
		case rec.Kind == ir.KindLabel:
			b.finalize()
			b.pendingLabel = rec.Text
			b.hasLabel = true
		case rec.Kind == ir.KindInstruction:
			b.open = append(b.open, rec)
			if rec.IsTerminator() {
				b.finalize()
			}
		}
	}
	b.finalize()

	if len(b.blocks) == 0 {
		b.blocks = []Block{{Name: "block0"}}
	}

	return &Graph{Blocks: b.blocks, Edges: edges(b.blocks, b.labels)}
}

type builder struct {
	blocks       []Block
	open         []ir.Record
	pendingLabel string
	hasLabel     bool
	labels       map[string]string
}

// finalize closes the open block. A block with no instructions and no
// pending label emits nothing. Synthesized names use the count of blocks
// already finalized, so numbering stays dense for a given input.
func (b *builder) finalize() {
	if len(b.open) == 0 && !b.hasLabel {
		return
	}
	name := b.pendingLabel
	if !b.hasLabel {
		name = "block" + strconv.Itoa(len(b.blocks))
	}
	b.blocks = append(b.blocks, Block{Name: name, Instructions: b.open})
	if b.hasLabel {
		b.labels[b.pendingLabel] = name
	}
	b.open = nil
	b.pendingLabel = ""
	b.hasLabel = false
}

func edges(blocks []Block, labels map[string]string) []Edge {
	var out []Edge
	for idx, block := range blocks {
		if len(block.Instructions) == 0 {
			continue
		}
		last := block.Instructions[len(block.Instructions)-1]
		switch {
		case last.IsJump():
			if target, ok := jumpTarget(last); ok {
				if name, known := labels[target]; known {
					out = append(out, Edge{From: block.Name, To: name})
				}
			}
			if last.IsConditionalJump() && idx+1 < len(blocks) {
				out = append(out, Edge{From: block.Name, To: blocks[idx+1].Name})
			}
		case last.IsReturn():
			// Returns leave the function; no outgoing edges.
		default:
			if idx+1 < len(blocks) {
				out = append(out, Edge{From: block.Name, To: blocks[idx+1].Name})
			}
		}
	}
	return out
}

// jumpTarget resolves the first operand of a jump as a label reference.
// A leading '*' (indirect jump syntax) is stripped before matching; the
// remainder must look like a plain label or the edge is dropped by the
// caller. Indirect targets therefore rarely resolve, which matches the
// observed behavior this package preserves.
func jumpTarget(rec ir.Record) (string, bool) {
	if len(rec.Operands) == 0 {
		return "", false
	}
	target := rec.Operands[0]
	for len(target) > 0 && target[0] == '*' {
		target = target[1:]
	}
	if !isLabelToken(target) {
		return "", false
	}
	return target, true
}

func isLabelToken(s string) bool {
	if s == "" {
		return false
	}
	if !isLabelStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isLabelByte(s[i]) {
			return false
		}
	}
	return true
}

func isLabelStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' || b == '.'
}

func isLabelByte(b byte) bool {
	return isLabelStart(b) || (b >= '0' && b <= '9')
}
