package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuild(t *testing.T) {
	lines := []string{
		".text",
		"",
		"main:",
		"    mov eax, 0   ; zero it",
		"    jmp done",
		"    @@bogus",
		"done:",
		"    ret",
	}
	want := []Record{
		{Line: 1, Kind: KindDirective, Text: ".text"},
		{Line: 2, Kind: KindBlank},
		{Line: 3, Kind: KindLabel, Text: "main"},
		{Line: 4, Kind: KindInstruction, Text: "mov eax, 0", Mnemonic: "mov", Operands: []string{"eax", "0"}},
		{Line: 5, Kind: KindInstruction, Text: "jmp done", Mnemonic: "jmp", Operands: []string{"done"}},
		{Line: 6, Kind: KindText, Text: "@@bogus"},
		{Line: 7, Kind: KindLabel, Text: "done"},
		{Line: 8, Kind: KindInstruction, Text: "ret", Mnemonic: "ret"},
	}
	got := Build(lines)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildIsTotal(t *testing.T) {
	lines := []string{"!!!", "123", "???; comment", ""}
	got := Build(lines)
	if len(got) != len(lines) {
		t.Fatalf("Build returned %d records for %d lines", len(got), len(lines))
	}
	for i, rec := range got[:3] {
		if rec.Kind != KindText {
			t.Errorf("record %d kind = %v; want text", i, rec.Kind)
		}
	}
	if got[3].Kind != KindBlank {
		t.Errorf("record 3 kind = %v; want blank", got[3].Kind)
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		mnemonic    string
		jump        bool
		conditional bool
		ret         bool
	}{
		{"jmp", true, false, false},
		{"JMP", true, false, false},
		{"je", true, true, false},
		{"jnz", true, true, false},
		{"ret", false, false, true},
		{"retq", false, false, true},
		{"mov", false, false, false},
		{"call", false, false, false},
	}
	for _, tc := range tests {
		rec := Record{Kind: KindInstruction, Mnemonic: tc.mnemonic}
		if rec.IsJump() != tc.jump {
			t.Errorf("IsJump(%q) = %v", tc.mnemonic, rec.IsJump())
		}
		if rec.IsConditionalJump() != tc.conditional {
			t.Errorf("IsConditionalJump(%q) = %v", tc.mnemonic, rec.IsConditionalJump())
		}
		if rec.IsReturn() != tc.ret {
			t.Errorf("IsReturn(%q) = %v", tc.mnemonic, rec.IsReturn())
		}
		if rec.IsTerminator() != (tc.jump || tc.ret) {
			t.Errorf("IsTerminator(%q) = %v", tc.mnemonic, rec.IsTerminator())
		}
	}

	label := Record{Kind: KindLabel, Text: "jmp"}
	if label.IsJump() || label.IsTerminator() {
		t.Error("non-instruction records must never be terminators")
	}
}
