// Package ir holds the per-line intermediate representation built from
// assembly text. Every source line maps to exactly one Record, in order.
package ir

import (
	"strings"

	"asmopt/pkg/source"
)

type Kind int

const (
	KindBlank Kind = iota
	KindDirective
	KindLabel
	KindInstruction
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindDirective:
		return "directive"
	case KindLabel:
		return "label"
	case KindInstruction:
		return "instr"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Record is the IR for a single source line. Line numbers are 1-based.
// Mnemonic and Operands are populated only for KindInstruction; the
// mnemonic keeps its original case.
type Record struct {
	Line     int
	Kind     Kind
	Text     string
	Mnemonic string
	Operands []string
}

// IsJump reports whether the record is a jump instruction. Every mnemonic
// starting with 'j' counts, covering jmp and the conditional family.
func (r Record) IsJump() bool {
	return r.Kind == KindInstruction && hasPrefixFold(r.Mnemonic, "j")
}

// IsConditionalJump reports whether the record is a jump other than the
// unconditional jmp.
func (r Record) IsConditionalJump() bool {
	return r.IsJump() && !strings.EqualFold(r.Mnemonic, "jmp")
}

// IsReturn reports whether the record is a return instruction.
func (r Record) IsReturn() bool {
	return r.Kind == KindInstruction && hasPrefixFold(r.Mnemonic, "ret")
}

// IsTerminator reports whether the record ends a basic block.
func (r Record) IsTerminator() bool {
	return r.IsJump() || r.IsReturn()
}

// Build converts source lines into Records. It is total: code that fails
// instruction parsing degrades to KindText instead of erroring, so any
// input produces an equal-length record sequence.
func Build(lines []string) []Record {
	records := make([]Record, 0, len(lines))
	for i, line := range lines {
		records = append(records, buildRecord(i+1, line))
	}
	return records
}

func buildRecord(lineNo int, line string) Record {
	code, _ := source.SplitComment(line)
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return Record{Line: lineNo, Kind: KindBlank}
	}
	if strings.HasPrefix(trimmed, ".") {
		return Record{Line: lineNo, Kind: KindDirective, Text: trimmed}
	}
	if name, ok := source.LabelName(code); ok {
		return Record{Line: lineNo, Kind: KindLabel, Text: name}
	}
	instr, ok := source.ParseInstruction(code)
	if !ok {
		return Record{Line: lineNo, Kind: KindText, Text: trimmed}
	}
	return Record{
		Line:     lineNo,
		Kind:     KindInstruction,
		Text:     trimmed,
		Mnemonic: instr.Mnemonic,
		Operands: splitOperandList(instr.Operands),
	}
}

func splitOperandList(operands string) []string {
	if operands == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(operands, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
