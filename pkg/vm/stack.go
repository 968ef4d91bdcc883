package vm

// Stack is the call stack used by push, pop, call and ret.
type Stack struct {
	items []Word
	peak  int
}

// Push appends v to the top of the stack.
func (s *Stack) Push(v Word) {
	s.items = append(s.items, v)
	if len(s.items) > s.peak {
		s.peak = len(s.items)
	}
}

// Pop removes and returns the most recently pushed value.
func (s *Stack) Pop() (Word, error) {
	n := len(s.items)
	if n == 0 {
		return 0, ErrStackUnderflow
	}
	v := s.items[n-1]
	s.items = s.items[:n-1]
	return v, nil
}

// Len returns the number of values on the stack.
func (s *Stack) Len() int {
	return len(s.items)
}

// Peak returns the largest depth the stack has reached.
func (s *Stack) Peak() int {
	return s.peak
}

// Reset empties the stack.
func (s *Stack) Reset() {
	s.items = s.items[:0]
	s.peak = 0
}
