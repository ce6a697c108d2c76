package peephole

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDetect(t *testing.T) {
	if d := Detect([]string{"mov eax, ebx", "ret"}); d != DialectIntel {
		t.Errorf("Detect = %v; want intel", d)
	}
	if d := Detect([]string{"movl %eax, %ebx"}); d != DialectAtt {
		t.Errorf("Detect = %v; want att", d)
	}
	if d := Detect(nil); d != DialectIntel {
		t.Errorf("Detect(nil) = %v; want intel", d)
	}
}

func TestParseDialect(t *testing.T) {
	if d, ok := ParseDialect("att"); !ok || d != DialectAtt {
		t.Errorf("ParseDialect(att) = %v, %v", d, ok)
	}
	if d, ok := ParseDialect("intel"); !ok || d != DialectIntel {
		t.Errorf("ParseDialect(intel) = %v, %v", d, ok)
	}
	if _, ok := ParseDialect("masm"); ok {
		t.Error("ParseDialect accepted an unknown name")
	}
}

func TestSelfMoveRemoval(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		dialect Dialect
		text    string
		emit    bool
	}{
		{"intel", "    mov eax, eax", DialectIntel, "", false},
		{"intel mixed case", "    MOV EAX, eax", DialectIntel, "", false},
		{"intel suffix", "    movq rax, rax", DialectIntel, "", false},
		{"att", "\tmovl %eax, %eax", DialectAtt, "", false},
		{"intel comment kept", "    mov eax, eax ; keep me", DialectIntel, "    ; keep me", true},
		{"att comment kept", "  movq %rax, %rax # note", DialectAtt, "  # note", true},
	}
	for _, tc := range tests {
		got := Apply(tc.line, tc.dialect)
		if !got.Removed || got.Replaced {
			t.Errorf("%s: Apply(%q) = %+v; want removal", tc.name, tc.line, got)
			continue
		}
		if got.Emit != tc.emit || got.Text != tc.text {
			t.Errorf("%s: Apply(%q) emitted %q, %v; want %q, %v", tc.name, tc.line, got.Text, got.Emit, tc.text, tc.emit)
		}
	}
}

func TestZeroMoveRewrite(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		dialect Dialect
		want    string
	}{
		{"intel", "    mov eax, 0", DialectIntel, "    xor eax, eax"},
		{"intel hex", "    mov ebx, 0x0", DialectIntel, "    xor ebx, ebx"},
		{"intel spacing", "  mov  ecx ,  0", DialectIntel, "  xor  ecx ,  ecx"},
		{"intel comment", "    mov eax, 0 ; clear", DialectIntel, "    xor eax, eax ; clear"},
		{"att", "\tmovl $0, %eax", DialectAtt, "\txorl %eax, %eax"},
		{"att quad", "\tmovq $0x0, %rbx", DialectAtt, "\txorq %rbx, %rbx"},
		{"att comment", "  movl $0, %edx # zero", DialectAtt, "  xorl %edx, %edx # zero"},
		{"uppercase mnemonic", "    MOVL $0, %eax", DialectAtt, "    xorl %eax, %eax"},
	}
	for _, tc := range tests {
		got := Apply(tc.line, tc.dialect)
		if !got.Replaced || got.Removed || !got.Emit {
			t.Errorf("%s: Apply(%q) = %+v; want replacement", tc.name, tc.line, got)
			continue
		}
		if got.Text != tc.want {
			t.Errorf("%s: Apply(%q) = %q; want %q", tc.name, tc.line, got.Text, tc.want)
		}
	}
}

func TestUnchangedLines(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		dialect Dialect
	}{
		{"blank", "   ", DialectIntel},
		{"directive", ".text", DialectIntel},
		{"label", "main:", DialectIntel},
		{"comment only", "; note", DialectIntel},
		{"unparseable", "  @@junk", DialectIntel},
		{"wrong mnemonic", "  add eax, 0", DialectIntel},
		{"long suffix", "  movzx eax, bl", DialectIntel},
		{"no comma", "  mov eax", DialectIntel},
		{"memory dest", "  mov [eax], 0", DialectIntel},
		{"memory self", "  mov [eax], [eax]", DialectIntel},
		{"different regs", "  mov eax, ebx", DialectIntel},
		{"nonzero immediate", "  mov eax, 1", DialectIntel},
		{"att missing sigil", "  mov eax, eax", DialectAtt},
		{"att bare zero", "  movl 0, %eax", DialectAtt},
		{"att dest immediate", "  movl %eax, $0", DialectAtt},
		{"intel zero into memory", "  mov (buffer), 0", DialectIntel},
		{"indirect operand", "  mov *rax, *rax", DialectIntel},
	}
	for _, tc := range tests {
		got := Apply(tc.line, tc.dialect)
		if got.Replaced || got.Removed || !got.Emit || got.Text != tc.line {
			t.Errorf("%s: Apply(%q) = %+v; want unchanged", tc.name, tc.line, got)
		}
	}
}

func TestRunFold(t *testing.T) {
	lines := []string{
		".text",
		"main:",
		"    mov eax, eax",
		"    mov ebx, 0",
		"    mov ecx, edx",
		"    ret",
	}
	res := Run(lines, DialectIntel)

	wantLines := []string{
		".text",
		"main:",
		"    xor ebx, ebx",
		"    mov ecx, edx",
		"    ret",
	}
	if diff := cmp.Diff(wantLines, res.Lines); diff != "" {
		t.Errorf("lines (-want +got):\n%s", diff)
	}
	if res.Replacements != 1 || res.Removals != 1 {
		t.Errorf("counters = %d replacements, %d removals; want 1, 1", res.Replacements, res.Removals)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	lines := []string{
		"main:",
		"    movq %rax, %rax ; gone",
		"    movl $0, %ebx",
		"    ret",
	}
	first := Run(lines, DialectAtt)
	second := Run(first.Lines, DialectAtt)

	if second.Replacements != 0 || second.Removals != 0 {
		t.Errorf("second pass made changes: %+v", second)
	}
	if diff := cmp.Diff(first.Lines, second.Lines); diff != "" {
		t.Errorf("second pass altered text (-first +second):\n%s", diff)
	}
}
