package vm

import (
	"errors"
	"testing"
)

func TestWord_Classification(t *testing.T) {
	tests := []struct {
		w        Word
		literal  bool
		register bool
	}{
		{0, true, false},
		{32767, true, false},
		{32768, false, true},
		{32775, false, true},
		{32776, false, false},
		{65535, false, false},
	}

	for _, tt := range tests {
		if got := tt.w.IsLiteral(); got != tt.literal {
			t.Errorf("IsLiteral(%d): expected %v, got %v", tt.w, tt.literal, got)
		}
		if got := tt.w.IsRegister(); got != tt.register {
			t.Errorf("IsRegister(%d): expected %v, got %v", tt.w, tt.register, got)
		}
	}
}

func TestReg(t *testing.T) {
	for i := 0; i < NumRegisters; i++ {
		w := Reg(i)
		if !w.IsRegister() {
			t.Fatalf("Reg(%d) = %d is not a register encoding", i, w)
		}
		if w.Register() != i {
			t.Errorf("Reg(%d).Register() = %d", i, w.Register())
		}
	}
}

func TestRegisterFile_Resolve(t *testing.T) {
	rf := NewRegisterFile()
	for i := range rf.R {
		rf.R[i] = Word(100 + i)
	}

	// Every literal resolves to itself.
	for _, w := range []Word{0, 1, 255, 12345, 32767} {
		got, err := rf.Resolve(w)
		if err != nil || got != w {
			t.Errorf("Resolve(%d): expected %d, got %d (%v)", w, w, got, err)
		}
	}

	// Every register encoding resolves to the register's contents.
	for i := 0; i < NumRegisters; i++ {
		got, err := rf.Resolve(Reg(i))
		if err != nil {
			t.Fatalf("Resolve(r%d) failed: %v", i, err)
		}
		if got != Word(100+i) {
			t.Errorf("Resolve(r%d): expected %d, got %d", i, 100+i, got)
		}
	}

	for _, w := range []Word{32776, 40000, 65535} {
		if _, err := rf.Resolve(w); !errors.Is(err, ErrInvalidOperand) {
			t.Errorf("Resolve(%d): expected ErrInvalidOperand, got %v", w, err)
		}
	}
}

func TestRegisterFile_ResolveAddress(t *testing.T) {
	rf := NewRegisterFile()
	rf.R[0] = 32767
	rf.R[1] = 32768

	if got, err := rf.ResolveAddress(Reg(0)); err != nil || got != 32767 {
		t.Errorf("expected 32767, got %d (%v)", got, err)
	}
	if _, err := rf.ResolveAddress(Reg(1)); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
	if _, err := rf.ResolveAddress(32776); !errors.Is(err, ErrInvalidOperand) {
		t.Errorf("expected ErrInvalidOperand, got %v", err)
	}
}
