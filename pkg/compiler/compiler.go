package compiler

import (
	"fmt"

	"github.com/akhildatla/synvm/pkg/vm"
)

// Assemble translates assembly source into a program image.
//
// Example:
//
//	loop:   in r0
//	        out r0
//	        eq r1, r0, '\n'
//	        jf r1, loop
//	        halt
func Assemble(source string) ([]vm.Word, error) {
	parser := NewParser(source)
	asmProgram, err := parser.Parse()
	if err != nil {
		return nil, err
	}
	if asmProgram.Size > vm.MemorySize {
		return nil, fmt.Errorf("program is %d words, memory holds %d", asmProgram.Size, vm.MemorySize)
	}

	compiler := &Compiler{
		labels: asmProgram.Labels,
		code:   make([]vm.Word, 0, asmProgram.Size),
	}

	return compiler.compile(asmProgram)
}

// Compiler emits words for parsed statements.
type Compiler struct {
	labels map[string]int
	code   []vm.Word
}

func (c *Compiler) compile(program *AsmProgram) ([]vm.Word, error) {
	for _, stmt := range program.Statements {
		var err error
		switch stmt.Kind {
		case StmtInstruction:
			err = c.compileInstruction(stmt)
		case StmtWord:
			err = c.compileWords(stmt)
		case StmtString:
			err = c.compileString(stmt)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", stmt.Line, err)
		}
	}

	return c.code, nil
}

func (c *Compiler) compileInstruction(stmt Statement) error {
	opcode, ok := vm.OpcodeFromString(stmt.Mnemonic)
	if !ok {
		return fmt.Errorf("unknown opcode: %s", stmt.Mnemonic)
	}
	if len(stmt.Operands) != opcode.Arity() {
		return fmt.Errorf("%s expects %d operands, got %d", opcode, opcode.Arity(), len(stmt.Operands))
	}

	c.code = append(c.code, vm.Word(opcode))
	for i, op := range stmt.Operands {
		if i == 0 && opcode.HasTarget() && op.Type != OperandRegister {
			return fmt.Errorf("%s: first operand must be a register", opcode)
		}
		w, err := c.encodeOperand(op, vm.MaxLiteral)
		if err != nil {
			return fmt.Errorf("%s operand %d: %w", opcode, i+1, err)
		}
		c.code = append(c.code, w)
	}
	return nil
}

func (c *Compiler) compileWords(stmt Statement) error {
	if len(stmt.Operands) == 0 {
		return fmt.Errorf(".word needs at least one value")
	}
	for _, op := range stmt.Operands {
		w, err := c.encodeOperand(op, 0xFFFF)
		if err != nil {
			return fmt.Errorf(".word: %w", err)
		}
		c.code = append(c.code, w)
	}
	return nil
}

func (c *Compiler) compileString(stmt Statement) error {
	if len(stmt.Operands) == 0 {
		return fmt.Errorf(".string needs a string literal")
	}
	for _, op := range stmt.Operands {
		if op.Type != OperandString {
			return fmt.Errorf(".string: expected string literal")
		}
		for i := 0; i < len(op.StrVal); i++ {
			c.code = append(c.code, vm.Word(op.StrVal[i]))
		}
	}
	return nil
}

// encodeOperand converts an operand to its raw word. Numeric values above
// limit are rejected.
func (c *Compiler) encodeOperand(op Operand, limit vm.Word) (vm.Word, error) {
	switch op.Type {
	case OperandRegister:
		return vm.Reg(op.RegNum), nil

	case OperandInt, OperandChar:
		if op.IntVal < 0 || op.IntVal > int64(limit) {
			return 0, fmt.Errorf("value %d out of range 0..%d", op.IntVal, limit)
		}
		return vm.Word(op.IntVal), nil

	case OperandLabel:
		addr, ok := c.labels[op.StrVal]
		if !ok {
			return 0, fmt.Errorf("undefined label: %s", op.StrVal)
		}
		return vm.Word(addr), nil

	default:
		return 0, fmt.Errorf("string literal not allowed here")
	}
}
