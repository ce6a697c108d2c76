// Package peephole rewrites single assembly lines in place. Two rules are
// implemented: a self-move (mov r, r) is removed, and a move of literal
// zero into a register is strength-reduced to an xor of the register with
// itself. Rewrites operate on the original text so untouched lines keep
// their exact bytes.
package peephole

import (
	"strings"

	"asmopt/pkg/source"
)

// Dialect selects operand ordering and register sigil conventions.
type Dialect int

const (
	DialectIntel Dialect = iota
	DialectAtt
)

func (d Dialect) String() string {
	if d == DialectAtt {
		return "att"
	}
	return "intel"
}

// ParseDialect maps a configuration string onto a Dialect. Unrecognized
// names report false, which callers treat as "detect from the source".
func ParseDialect(name string) (Dialect, bool) {
	switch name {
	case "intel":
		return DialectIntel, true
	case "att":
		return DialectAtt, true
	}
	return DialectIntel, false
}

// Detect infers the dialect from the source text. The '%' register sigil
// appears in every AT&T operand list; absent that, Intel is assumed.
func Detect(lines []string) Dialect {
	for _, line := range lines {
		if strings.ContainsRune(line, '%') {
			return DialectAtt
		}
	}
	return DialectIntel
}

// LineResult is the outcome of applying the rules to one line. Emit is
// false only for a removal with no trailing comment; a removal that
// carried a comment emits the comment alone on the original indentation.
type LineResult struct {
	Text     string
	Emit     bool
	Replaced bool
	Removed  bool
}

// Result is the fold of LineResults over a whole input.
type Result struct {
	Lines        []string
	Replacements int
	Removals     int
}

// Run applies the rules to every line in order and accumulates the
// rewritten text and counters.
func Run(lines []string, d Dialect) Result {
	res := Result{Lines: make([]string, 0, len(lines))}
	for _, line := range lines {
		lr := Apply(line, d)
		if lr.Emit {
			res.Lines = append(res.Lines, lr.Text)
		}
		if lr.Replaced {
			res.Replacements++
		}
		if lr.Removed {
			res.Removals++
		}
	}
	return res
}

// Apply runs both rules against a single line. Lines that are blank,
// directives, labels, unparseable, or not a two-operand mov variant pass
// through byte for byte.
func Apply(line string, d Dialect) LineResult {
	unchanged := LineResult{Text: line, Emit: true}

	code, comment := source.SplitComment(line)
	if source.SkipsRewrite(code) {
		return unchanged
	}
	instr, ok := source.ParseInstruction(code)
	if !ok {
		return unchanged
	}
	pair, ok := source.SplitOperands(instr.Operands)
	if !ok {
		return unchanged
	}
	suffix, ok := movSuffix(instr.Mnemonic)
	if !ok {
		return unchanged
	}

	dest, src := pair.First, pair.Second
	if d == DialectAtt {
		dest, src = src, dest
	}
	destReg, destOK := normalizeRegister(dest, d)
	srcReg, srcOK := normalizeRegister(src, d)

	// Rule A: moving a register onto itself does nothing; drop the line
	// but never the comment riding on it.
	if destOK && srcOK && destReg == srcReg {
		if comment != "" {
			return LineResult{Text: instr.Indent + comment, Emit: true, Removed: true}
		}
		return LineResult{Removed: true}
	}

	// Rule B: mov of literal zero becomes xor dest, dest with the
	// original spacing around the comma.
	if destOK && isImmediateZero(src, d) {
		mnemonic := "xor" + suffix
		operands := dest + pair.PreComma + "," + pair.PostComma + dest
		rewritten := instr.Indent + mnemonic + instr.Spacing + operands
		if comment != "" {
			rewritten += " " + comment
		}
		return LineResult{Text: strings.TrimRight(rewritten, trimCutset), Emit: true, Replaced: true}
	}

	return unchanged
}

const trimCutset = " \t\v\f\r\n"

// movSuffix recognizes the eligible mnemonics: bare mov, or mov plus a
// single size suffix from {b,w,l,q}. The match is case-insensitive.
func movSuffix(mnemonic string) (string, bool) {
	m := strings.ToLower(mnemonic)
	if m == "mov" {
		return "", true
	}
	if len(m) == 4 && strings.HasPrefix(m, "mov") && strings.ContainsRune("bwlq", rune(m[3])) {
		return m[3:], true
	}
	return "", false
}

// normalizeRegister reduces an operand to a canonical lowercase register
// name. AT&T operands need the '%' sigil; memory references, immediates
// and indirect targets never qualify in either dialect.
func normalizeRegister(operand string, d Dialect) (string, bool) {
	op := strings.TrimSpace(operand)
	if d == DialectAtt {
		if !strings.HasPrefix(op, "%") {
			return "", false
		}
		op = op[1:]
	}
	if strings.HasPrefix(op, "$") || strings.HasPrefix(op, "*") {
		return "", false
	}
	if strings.ContainsAny(op, "[]()") {
		return "", false
	}
	if !isRegisterToken(op) {
		return "", false
	}
	return strings.ToLower(op), true
}

// isImmediateZero recognizes the literal zero source operand. AT&T
// immediates carry a '$' sigil which is required and stripped; Intel
// spells the immediate bare.
func isImmediateZero(operand string, d Dialect) bool {
	op := strings.ToLower(strings.TrimSpace(operand))
	if d == DialectAtt {
		if !strings.HasPrefix(op, "$") {
			return false
		}
		op = op[1:]
	}
	return op == "0" || op == "0x0"
}

func isRegisterToken(s string) bool {
	if s == "" || !isASCIILetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isASCIILetter(s[i]) && !(s[i] >= '0' && s[i] <= '9') {
			return false
		}
	}
	return true
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
