package vm

import (
	"errors"
	"testing"
)

func TestStack_LIFO(t *testing.T) {
	var s Stack
	for _, v := range []Word{1, 2, 3} {
		s.Push(v)
	}
	if s.Len() != 3 {
		t.Fatalf("expected length 3, got %d", s.Len())
	}

	for _, want := range []Word{3, 2, 1} {
		got, err := s.Pop()
		if err != nil {
			t.Fatalf("Pop failed: %v", err)
		}
		if got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	}

	if _, err := s.Pop(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("expected ErrStackUnderflow, got %v", err)
	}
}

func TestStack_Peak(t *testing.T) {
	var s Stack
	s.Push(1)
	s.Push(2)
	s.Pop()
	s.Push(3)
	if s.Peak() != 2 {
		t.Errorf("expected peak 2, got %d", s.Peak())
	}

	s.Reset()
	if s.Len() != 0 || s.Peak() != 0 {
		t.Errorf("expected empty stack after reset, got len %d peak %d", s.Len(), s.Peak())
	}
}
