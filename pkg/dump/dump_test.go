package dump

import (
	"testing"

	"asmopt/pkg/cfg"
	"asmopt/pkg/ir"
)

var program = []string{
	".text",
	"main:",
	"  mov eax, 0",
	"  jmp end",
	"end:",
	"  ret",
}

func TestIRText(t *testing.T) {
	want := "IR:\n" +
		"0001: directive .text\n" +
		"0002: label main\n" +
		"0003: instr mov eax, 0\n" +
		"0004: instr jmp end\n" +
		"0005: label end\n" +
		"0006: instr ret\n"
	if got := IRText(ir.Build(program)); got != want {
		t.Errorf("IRText = %q; want %q", got, want)
	}
}

func TestIRTextBlankAndText(t *testing.T) {
	want := "IR:\n" +
		"0001: blank\n" +
		"0002: text @@junk\n"
	if got := IRText(ir.Build([]string{"", "  @@junk"})); got != want {
		t.Errorf("IRText = %q; want %q", got, want)
	}
}

func TestCFGText(t *testing.T) {
	g := cfg.Build(ir.Build(program))
	want := "CFG:\n" +
		"main:\n" +
		"  mov eax, 0\n" +
		"  jmp end\n" +
		"  -> end\n" +
		"end:\n" +
		"  ret\n"
	if got := CFGText(g); got != want {
		t.Errorf("CFGText = %q; want %q", got, want)
	}
}

func TestCFGDot(t *testing.T) {
	g := cfg.Build(ir.Build(program))
	want := "digraph cfg {\n" +
		"  node [shape=box];\n" +
		"  main [label=\"main:\\lmov eax, 0\\ljmp end\\l\"]; \n" +
		"  end [label=\"end:\\lret\\l\"]; \n" +
		"  main -> end;\n" +
		"}\n"
	if got := CFGDot(g); got != want {
		t.Errorf("CFGDot = %q; want %q", got, want)
	}
}
