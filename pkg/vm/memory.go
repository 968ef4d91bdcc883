package vm

import "fmt"

// Memory is the program store. Code and data share the same cells and any
// instruction may overwrite any cell, including ones not yet executed.
type Memory struct {
	cells [MemorySize]Word
}

// Load copies words into memory starting at address 0 and zeroes the rest.
func (m *Memory) Load(words []Word) error {
	if len(words) > MemorySize {
		return fmt.Errorf("%w: %d words exceeds memory size %d", ErrMalformedImage, len(words), MemorySize)
	}
	n := copy(m.cells[:], words)
	clear(m.cells[n:])
	return nil
}

// Read returns the word at addr.
func (m *Memory) Read(addr Word) Word {
	return m.cells[addr]
}

// Write stores v at addr.
func (m *Memory) Write(addr Word, v Word) {
	m.cells[addr] = v
}
