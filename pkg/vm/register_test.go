package vm

import (
	"errors"
	"testing"
)

func TestRegisterFile_Set(t *testing.T) {
	rf := NewRegisterFile()

	for i := 0; i < NumRegisters; i++ {
		if err := rf.Set(RegisterBase+Word(i), Word(100+i)); err != nil {
			t.Fatalf("Set r%d failed: %v", i, err)
		}
	}
	for i := 0; i < NumRegisters; i++ {
		if rf.R[i] != Word(100+i) {
			t.Errorf("r%d: expected %d, got %d", i, 100+i, rf.R[i])
		}
	}
}

func TestRegisterFile_SetInvalidTarget(t *testing.T) {
	rf := NewRegisterFile()

	for _, target := range []Word{0, 32767, 32776, 65535} {
		if err := rf.Set(target, 1); !errors.Is(err, ErrInvalidRegisterTarget) {
			t.Errorf("target %d: expected ErrInvalidRegisterTarget, got %v", target, err)
		}
	}
	if rf.R != [NumRegisters]Word{} {
		t.Errorf("registers changed by invalid writes: %v", rf.R)
	}
}

func TestRegisterFile_Reset(t *testing.T) {
	rf := NewRegisterFile()
	rf.R[3] = 7
	rf.R[7] = 32767

	rf.Reset()

	if rf.R != [NumRegisters]Word{} {
		t.Errorf("expected zeroed registers, got %v", rf.R)
	}
}
