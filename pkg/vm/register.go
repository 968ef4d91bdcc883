package vm

// NumRegisters is the size of the register file.
const NumRegisters = 8

// RegisterFile holds the eight general purpose registers.
type RegisterFile struct {
	R [NumRegisters]Word
}

// NewRegisterFile creates a new register file with all registers zeroed.
func NewRegisterFile() *RegisterFile {
	return &RegisterFile{}
}

// Set writes v into the register named by the raw operand target.
func (rf *RegisterFile) Set(target Word, v Word) error {
	if !target.IsRegister() {
		return ErrInvalidRegisterTarget
	}
	rf.R[target.Register()] = v
	return nil
}

// Reset clears all registers.
func (rf *RegisterFile) Reset() {
	for i := range rf.R {
		rf.R[i] = 0
	}
}
