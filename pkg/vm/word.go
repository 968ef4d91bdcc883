package vm

// Word is a 16-bit machine word. Values 0..32767 are literals, 32768..32775
// name registers 0..7 and anything above is invalid as an operand.
type Word uint16

const (
	// MemorySize is the number of cells in the program store (15-bit address space).
	MemorySize = 1 << 15

	// Modulus is applied to every arithmetic result.
	Modulus = 1 << 15

	// MaxLiteral is the largest literal value.
	MaxLiteral Word = Modulus - 1

	// RegisterBase is the raw encoding of register 0.
	RegisterBase Word = 1 << 15

	// MaxOutput bounds the values accepted by the out instruction.
	MaxOutput Word = 1 << 8
)

// IsLiteral reports whether w is a literal value.
func (w Word) IsLiteral() bool {
	return w <= MaxLiteral
}

// IsRegister reports whether w encodes one of the eight registers.
func (w Word) IsRegister() bool {
	return w >= RegisterBase && w < RegisterBase+NumRegisters
}

// Register returns the register index encoded by w. Only meaningful when
// IsRegister is true.
func (w Word) Register() int {
	return int(w - RegisterBase)
}

// Reg returns the raw operand encoding of register r.
func Reg(r int) Word {
	return RegisterBase + Word(r)
}

// Resolve maps a raw operand to its literal value or the contents of the
// register it names.
func (rf *RegisterFile) Resolve(raw Word) (Word, error) {
	switch {
	case raw.IsLiteral():
		return raw, nil
	case raw.IsRegister():
		return rf.R[raw.Register()], nil
	default:
		return 0, ErrInvalidOperand
	}
}

// ResolveAddress resolves raw and checks the result can index the program store.
func (rf *RegisterFile) ResolveAddress(raw Word) (Word, error) {
	v, err := rf.Resolve(raw)
	if err != nil {
		return 0, err
	}
	if v >= MemorySize {
		return 0, ErrInvalidAddress
	}
	return v, nil
}
