// Package source splits raw assembly lines into code and comment and
// tokenizes instruction-shaped code without touching its spacing.
package source

import "strings"

// commentMarkers are the characters that start a trailing comment.
// Both ';' (Intel-style) and '#' (GNU as) are recognized.
const commentMarkers = ";#"

// SplitComment splits a raw line at the first comment marker. The comment,
// when present, keeps its marker character. Lines without a marker return
// the full line as code and an empty comment.
func SplitComment(line string) (code, comment string) {
	if idx := strings.IndexAny(line, commentMarkers); idx >= 0 {
		return line[:idx], line[idx:]
	}
	return line, ""
}

// IsBlank reports whether the code portion of a line is empty or
// whitespace-only.
func IsBlank(code string) bool {
	return strings.TrimSpace(code) == ""
}

// IsDirective reports whether the code portion starts with an assembler
// directive marker after leading whitespace.
func IsDirective(code string) bool {
	return strings.HasPrefix(strings.TrimSpace(code), ".")
}

// LabelName extracts a label name from the code portion of a line. A label
// is trimmed code ending in ':'; the returned name has the colon removed.
func LabelName(code string) (string, bool) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" || !strings.HasSuffix(trimmed, ":") {
		return "", false
	}
	return strings.TrimRight(trimmed, ":"), true
}

// SkipsRewrite reports whether a code fragment is outside the rewrite
// rules entirely: blank, directive, or label lines are never rewritten.
func SkipsRewrite(code string) bool {
	if IsBlank(code) || IsDirective(code) {
		return true
	}
	_, isLabel := LabelName(code)
	return isLabel
}

// Instruction is the tokenized form of an instruction-shaped code
// fragment. Indent and Spacing keep the original whitespace byte for byte
// so a rewritten line can reproduce the input layout.
type Instruction struct {
	Indent   string
	Mnemonic string
	Spacing  string
	Operands string
}

// ParseInstruction tokenizes code already known not to be blank, a
// directive, or a label. It reports false when the first rune after the
// indentation is not a letter; such lines are carried through untouched.
func ParseInstruction(code string) (Instruction, bool) {
	i := 0
	for i < len(code) && isSpace(code[i]) {
		i++
	}
	indent := code[:i]
	if i == len(code) || !isLetter(code[i]) {
		return Instruction{}, false
	}
	start := i
	for i < len(code) && isMnemonicByte(code[i]) {
		i++
	}
	mnemonic := code[start:i]
	sep := i
	for i < len(code) && isSpace(code[i]) {
		i++
	}
	return Instruction{
		Indent:   indent,
		Mnemonic: mnemonic,
		Spacing:  code[sep:i],
		Operands: code[i:],
	}, true
}

// OperandPair is a two-operand split. PreComma and PostComma hold the
// exact whitespace around the separating comma.
type OperandPair struct {
	First     string
	Second    string
	PreComma  string
	PostComma string
}

// SplitOperands splits a raw operand string at its first comma. Operand
// strings without a comma report false; they are never rewrite candidates.
func SplitOperands(operands string) (OperandPair, bool) {
	idx := strings.IndexByte(operands, ',')
	if idx < 0 {
		return OperandPair{}, false
	}
	before, after := operands[:idx], operands[idx+1:]
	trimmedBefore := strings.TrimRight(before, spaceCutset)
	trimmedAfter := strings.TrimLeft(after, spaceCutset)
	return OperandPair{
		First:     strings.TrimSpace(before),
		Second:    strings.TrimSpace(after),
		PreComma:  before[len(trimmedBefore):],
		PostComma: after[:len(after)-len(trimmedAfter)],
	}, true
}

const spaceCutset = " \t\v\f\r\n"

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\v', '\f', '\r', '\n':
		return true
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isMnemonicByte(b byte) bool {
	return isLetter(b) || isDigit(b) || b == '.'
}
