package compiler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/akhildatla/synvm/pkg/vm"
)

func TestAssemble_SimpleProgram(t *testing.T) {
	input := `out 'A'
halt`

	words, err := Assemble(input)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	want := []vm.Word{19, 65, 0}
	if diff := cmp.Diff(want, words); diff != "" {
		t.Errorf("words mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_Registers(t *testing.T) {
	words, err := Assemble(`set R0, 65
out r0
halt`)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	want := []vm.Word{1, 32768, 65, 19, 32768, 0}
	if diff := cmp.Diff(want, words); diff != "" {
		t.Errorf("words mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_ForwardAndBackwardLabels(t *testing.T) {
	input := `
        jmp main        ; forward reference
greet:  out 'h'
        out 'i'
        ret
main:   call greet
        halt`

	words, err := Assemble(input)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	want := []vm.Word{
		6, 7, // jmp main
		19, 'h', // greet
		19, 'i',
		18,
		17, 2, // call greet
		0,
	}
	if diff := cmp.Diff(want, words); diff != "" {
		t.Errorf("words mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_Directives(t *testing.T) {
	input := `rmem r0, msg
halt
msg: .string "ok"
.word 0xffff, r7, msg`

	words, err := Assemble(input)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	want := []vm.Word{15, 32768, 4, 0, 'o', 'k', 65535, 32775, 4}
	if diff := cmp.Diff(want, words); diff != "" {
		t.Errorf("words mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_AllMnemonics(t *testing.T) {
	for i := 0; i < 22; i++ {
		op := vm.Opcode(i)
		operands := make([]string, op.Arity())
		for j := range operands {
			operands[j] = "r1"
		}
		src := op.String() + " " + strings.Join(operands, ", ")

		words, err := Assemble(src)
		if err != nil {
			t.Errorf("%s: Assemble failed: %v", op, err)
			continue
		}
		if len(words) != 1+op.Arity() || words[0] != vm.Word(op) {
			t.Errorf("%s: unexpected encoding %v", op, words)
		}
	}
}

func TestAssemble_CaseInsensitiveMnemonics(t *testing.T) {
	words, err := Assemble("NOOP\nHalt")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if diff := cmp.Diff([]vm.Word{21, 0}, words); diff != "" {
		t.Errorf("words mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown opcode", "noop\njump 3", "line 2: unknown opcode: jump"},
		{"too few operands", "add r0, 1", "add expects 3 operands, got 2"},
		{"too many operands", "halt 1", "halt expects 0 operands, got 1"},
		{"literal target", "set 1, 2", "first operand must be a register"},
		{"literal out of range", "out 32768", "out of range"},
		{"word out of range", ".word 65536", "out of range"},
		{"undefined label", "jmp nowhere", "undefined label: nowhere"},
		{"string operand", `out "A"`, "string literal not allowed"},
		{"string directive without string", ".string 5", "expected string literal"},
		{"empty word", ".word", ".word needs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestAssemble_TooLarge(t *testing.T) {
	src := strings.Repeat("noop\n", vm.MemorySize+1)
	if _, err := Assemble(src); err == nil {
		t.Fatal("expected error for oversized program")
	}
}

func TestAssemble_Run(t *testing.T) {
	// Echo one line of input back.
	input := `
loop:   in r0
        out r0
        eq r1, r0, '\n'
        jf r1, loop
        halt`

	words, err := Assemble(input)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	machine := vm.NewVM()
	var out bytes.Buffer
	machine.SetInput(strings.NewReader("hello\r\n"))
	machine.SetOutput(&out)
	if err := machine.Load(words); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := machine.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out.String() != "hello\n" {
		t.Errorf("expected %q, got %q", "hello\n", out.String())
	}
}
