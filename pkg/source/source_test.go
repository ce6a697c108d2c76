package source

import "testing"

func TestSplitComment(t *testing.T) {
	tests := []struct {
		line    string
		code    string
		comment string
	}{
		{"mov eax, ebx", "mov eax, ebx", ""},
		{"mov eax, ebx ; copy", "mov eax, ebx ", "; copy"},
		{"movl %eax, %ebx # copy", "movl %eax, %ebx ", "# copy"},
		{"; whole line", "", "; whole line"},
		{"# hash ; semi", "", "# hash ; semi"},
		{"mov eax, ebx # first ; second", "mov eax, ebx ", "# first ; second"},
		{"", "", ""},
	}
	for _, tc := range tests {
		code, comment := SplitComment(tc.line)
		if code != tc.code || comment != tc.comment {
			t.Errorf("SplitComment(%q) = %q, %q; want %q, %q", tc.line, code, comment, tc.code, tc.comment)
		}
	}
}

func TestClassifiers(t *testing.T) {
	if !IsBlank("   \t") || IsBlank(" x ") {
		t.Error("IsBlank misclassified")
	}
	if !IsDirective("  .text") || IsDirective("text") {
		t.Error("IsDirective misclassified")
	}

	name, ok := LabelName("main:")
	if !ok || name != "main" {
		t.Errorf("LabelName(\"main:\") = %q, %v", name, ok)
	}
	name, ok = LabelName("  .Ldone: ")
	if !ok || name != ".Ldone" {
		t.Errorf("LabelName(\"  .Ldone: \") = %q, %v", name, ok)
	}
	if _, ok := LabelName("mov eax, ebx"); ok {
		t.Error("LabelName matched an instruction")
	}

	for _, code := range []string{"", "  ", ".text", "main:"} {
		if !SkipsRewrite(code) {
			t.Errorf("SkipsRewrite(%q) = false; want true", code)
		}
	}
	if SkipsRewrite("  mov eax, ebx") {
		t.Error("SkipsRewrite skipped an instruction")
	}
}

func TestParseInstruction(t *testing.T) {
	tests := []struct {
		code string
		want Instruction
		ok   bool
	}{
		{"mov eax, ebx", Instruction{"", "mov", " ", "eax, ebx"}, true},
		{"\t  movl\t$0, %eax", Instruction{"\t  ", "movl", "\t", "$0, %eax"}, true},
		{"  ret", Instruction{"  ", "ret", "", ""}, true},
		{"  rep.movsb  ", Instruction{"  ", "rep.movsb", "  ", ""}, true},
		{"  1nvalid", Instruction{}, false},
		{"*eax", Instruction{}, false},
		{"   ", Instruction{}, false},
		{"", Instruction{}, false},
	}
	for _, tc := range tests {
		got, ok := ParseInstruction(tc.code)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseInstruction(%q) = %+v, %v; want %+v, %v", tc.code, got, ok, tc.want, tc.ok)
		}
	}
}

func TestSplitOperands(t *testing.T) {
	tests := []struct {
		operands string
		want     OperandPair
		ok       bool
	}{
		{"eax, ebx", OperandPair{"eax", "ebx", "", " "}, true},
		{"eax,ebx", OperandPair{"eax", "ebx", "", ""}, true},
		{"eax\t, \tebx", OperandPair{"eax", "ebx", "\t", " \t"}, true},
		{"a, b, c", OperandPair{"a", "b, c", "", " "}, true},
		{"eax", OperandPair{}, false},
		{"", OperandPair{}, false},
	}
	for _, tc := range tests {
		got, ok := SplitOperands(tc.operands)
		if ok != tc.ok || got != tc.want {
			t.Errorf("SplitOperands(%q) = %+v, %v; want %+v, %v", tc.operands, got, ok, tc.want, tc.ok)
		}
	}
}
