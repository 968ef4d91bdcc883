package vm

// Opcode represents a VM instruction opcode.
type Opcode Word

const (
	OpHalt Opcode = 0  // stop execution
	OpSet  Opcode = 1  // R[a] = b
	OpPush Opcode = 2  // push a
	OpPop  Opcode = 3  // R[a] = pop
	OpEq   Opcode = 4  // R[a] = b == c
	OpGt   Opcode = 5  // R[a] = b > c
	OpJmp  Opcode = 6  // pc = a
	OpJt   Opcode = 7  // if a != 0: pc = b
	OpJf   Opcode = 8  // if a == 0: pc = b
	OpAdd  Opcode = 9  // R[a] = (b + c) % 32768
	OpMult Opcode = 10 // R[a] = (b * c) % 32768
	OpMod  Opcode = 11 // R[a] = b % c
	OpAnd  Opcode = 12 // R[a] = b & c
	OpOr   Opcode = 13 // R[a] = b | c
	OpNot  Opcode = 14 // R[a] = ^b & 0x7FFF
	OpRmem Opcode = 15 // R[a] = mem[b]
	OpWmem Opcode = 16 // mem[a] = b
	OpCall Opcode = 17 // push next pc; pc = a
	OpRet  Opcode = 18 // pc = pop
	OpOut  Opcode = 19 // write byte a
	OpIn   Opcode = 20 // R[a] = next input byte
	OpNoop Opcode = 21 // no operation

	numOpcodes = 22
)

type opInfo struct {
	name   string
	arity  int
	target bool // first operand is a register destination
}

var opTable = [numOpcodes]opInfo{
	OpHalt: {"halt", 0, false},
	OpSet:  {"set", 2, true},
	OpPush: {"push", 1, false},
	OpPop:  {"pop", 1, true},
	OpEq:   {"eq", 3, true},
	OpGt:   {"gt", 3, true},
	OpJmp:  {"jmp", 1, false},
	OpJt:   {"jt", 2, false},
	OpJf:   {"jf", 2, false},
	OpAdd:  {"add", 3, true},
	OpMult: {"mult", 3, true},
	OpMod:  {"mod", 3, true},
	OpAnd:  {"and", 3, true},
	OpOr:   {"or", 3, true},
	OpNot:  {"not", 2, true},
	OpRmem: {"rmem", 2, true},
	OpWmem: {"wmem", 2, false},
	OpCall: {"call", 1, false},
	OpRet:  {"ret", 0, false},
	OpOut:  {"out", 1, false},
	OpIn:   {"in", 1, true},
	OpNoop: {"noop", 0, false},
}

// Valid reports whether o is part of the instruction set.
func (o Opcode) Valid() bool {
	return o < numOpcodes
}

// String returns the mnemonic of an opcode.
func (o Opcode) String() string {
	if !o.Valid() {
		return "unknown"
	}
	return opTable[o].name
}

// Arity returns the number of operand words that follow the opcode.
func (o Opcode) Arity() int {
	if !o.Valid() {
		return 0
	}
	return opTable[o].arity
}

// HasTarget reports whether the first operand must be a register encoding.
func (o Opcode) HasTarget() bool {
	return o.Valid() && opTable[o].target
}

// OpcodeFromString returns the opcode for the given mnemonic.
func OpcodeFromString(s string) (Opcode, bool) {
	for i, info := range opTable {
		if info.name == s {
			return Opcode(i), true
		}
	}
	return 0, false
}
