package vm

import (
	"errors"
	"fmt"
)

// Error definitions
var (
	ErrMalformedImage        = errors.New("malformed image")
	ErrInvalidOperand        = errors.New("invalid operand")
	ErrInvalidAddress        = errors.New("invalid address")
	ErrInvalidRegisterTarget = errors.New("invalid register target")
	ErrStackUnderflow        = errors.New("stack underflow")
	ErrInvalidOutputValue    = errors.New("invalid output value")
	ErrInputExhausted        = errors.New("input exhausted")
	ErrArithmetic            = errors.New("arithmetic error")
	ErrTruncatedInstruction  = errors.New("truncated instruction")
	ErrInstructionLimit      = errors.New("instruction limit exceeded")
	ErrInputFailed           = errors.New("input failed")
	ErrOutputFailed          = errors.New("output failed")
	ErrNoProgram             = errors.New("no program loaded")
)

// Fault is a fatal runtime condition. It records where execution stopped
// and unwraps to one of the sentinel errors above (or a context error).
type Fault struct {
	Err    error
	PC     Word
	Opcode Opcode
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%v at pc %d (%s)", f.Err, f.PC, f.Opcode)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
