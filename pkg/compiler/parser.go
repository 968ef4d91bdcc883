package compiler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/akhildatla/synvm/pkg/vm"
)

// OperandType represents the type of an operand.
type OperandType uint8

const (
	OperandRegister OperandType = iota
	OperandInt
	OperandChar
	OperandLabel
	OperandString
)

// Operand represents an instruction or directive operand.
type Operand struct {
	Type   OperandType
	RegNum int    // For registers
	IntVal int64  // For integer and character literals
	StrVal string // For labels and strings
}

// StatementKind distinguishes instructions from data directives.
type StatementKind uint8

const (
	StmtInstruction StatementKind = iota
	StmtWord
	StmtString
)

// Statement is one instruction or directive with its assigned address.
type Statement struct {
	Kind     StatementKind
	Mnemonic string // lowercase; empty for directives
	Operands []Operand
	Line     int
	Addr     int
}

// Size returns the number of words the statement occupies.
func (s Statement) Size() int {
	switch s.Kind {
	case StmtString:
		n := 0
		for _, op := range s.Operands {
			n += len(op.StrVal)
		}
		return n
	case StmtWord:
		return len(s.Operands)
	default:
		return 1 + len(s.Operands)
	}
}

// AsmProgram represents a parsed assembly program.
type AsmProgram struct {
	Statements []Statement
	Labels     map[string]int // label -> address
	Size       int            // total words
}

// Parser parses assembly source code.
type Parser struct {
	tokens  []Token
	pos     int
	addr    int
	program *AsmProgram
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	lexer := NewLexer(input)
	tokens := lexer.Tokenize()
	return &Parser{
		tokens: tokens,
		pos:    0,
		program: &AsmProgram{
			Statements: []Statement{},
			Labels:     make(map[string]int),
		},
	}
}

// Parse parses the entire input and returns the program. Addresses are
// assigned as statements are read, so every label is known once Parse
// returns and forward references can be resolved by the compiler.
func (p *Parser) Parse() (*AsmProgram, error) {
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]

		switch tok.Type {
		case TokenEOF:
			p.program.Size = p.addr
			return p.program, nil

		case TokenNewline:
			p.pos++

		case TokenIdent:
			if p.peek(1).Type == TokenColon {
				if err := p.defineLabel(tok); err != nil {
					return nil, err
				}
				p.pos += 2
				continue
			}
			stmt, err := p.parseStatement(StmtInstruction, strings.ToLower(tok.Value))
			if err != nil {
				return nil, err
			}
			p.add(stmt)

		case TokenDirective:
			var kind StatementKind
			switch tok.Value {
			case ".word":
				kind = StmtWord
			case ".string":
				kind = StmtString
			default:
				return nil, fmt.Errorf("line %d: unknown directive: %s", tok.Line, tok.Value)
			}
			stmt, err := p.parseStatement(kind, "")
			if err != nil {
				return nil, err
			}
			p.add(stmt)

		default:
			return nil, fmt.Errorf("line %d: unexpected token: %q", tok.Line, tok.Value)
		}
	}

	p.program.Size = p.addr
	return p.program, nil
}

func (p *Parser) peek(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) add(stmt Statement) {
	stmt.Addr = p.addr
	p.addr += stmt.Size()
	p.program.Statements = append(p.program.Statements, stmt)
}

func (p *Parser) defineLabel(tok Token) error {
	if _, ok := vm.OpcodeFromString(strings.ToLower(tok.Value)); ok {
		return fmt.Errorf("line %d: label %q shadows a mnemonic", tok.Line, tok.Value)
	}
	if _, dup := p.program.Labels[tok.Value]; dup {
		return fmt.Errorf("line %d: duplicate label: %s", tok.Line, tok.Value)
	}
	p.program.Labels[tok.Value] = p.addr
	return nil
}

func (p *Parser) parseStatement(kind StatementKind, mnemonic string) (Statement, error) {
	stmt := Statement{
		Kind:     kind,
		Mnemonic: mnemonic,
		Line:     p.tokens[p.pos].Line,
		Operands: []Operand{},
	}
	p.pos++ // Consume mnemonic or directive

	// Parse operands until newline or EOF
	expectOperand := true
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]

		if tok.Type == TokenNewline || tok.Type == TokenEOF {
			break
		}

		if tok.Type == TokenComma {
			if expectOperand {
				return stmt, fmt.Errorf("line %d: unexpected comma", tok.Line)
			}
			expectOperand = true
			p.pos++
			continue
		}
		if !expectOperand {
			return stmt, fmt.Errorf("line %d: expected comma before %q", tok.Line, tok.Value)
		}

		operand, err := p.parseOperand()
		if err != nil {
			return stmt, err
		}
		stmt.Operands = append(stmt.Operands, operand)
		expectOperand = false
	}

	if expectOperand && len(stmt.Operands) > 0 {
		return stmt, fmt.Errorf("line %d: trailing comma", stmt.Line)
	}
	return stmt, nil
}

func (p *Parser) parseOperand() (Operand, error) {
	tok := p.tokens[p.pos]
	p.pos++

	switch tok.Type {
	case TokenRegister:
		regNum, err := parseRegisterNumber(tok.Value)
		if err != nil {
			return Operand{}, fmt.Errorf("line %d: %w", tok.Line, err)
		}
		return Operand{Type: OperandRegister, RegNum: regNum}, nil

	case TokenInt:
		intVal, err := strconv.ParseInt(tok.Value, 0, 64)
		if err != nil {
			return Operand{}, fmt.Errorf("line %d: invalid integer: %s", tok.Line, tok.Value)
		}
		return Operand{Type: OperandInt, IntVal: intVal}, nil

	case TokenChar:
		s, err := strconv.Unquote(tok.Value)
		if err != nil {
			return Operand{}, fmt.Errorf("line %d: invalid character literal: %s", tok.Line, tok.Value)
		}
		r, size := utf8.DecodeRuneInString(s)
		if size != len(s) || r == utf8.RuneError {
			return Operand{}, fmt.Errorf("line %d: invalid character literal: %s", tok.Line, tok.Value)
		}
		return Operand{Type: OperandChar, IntVal: int64(r)}, nil

	case TokenString:
		s, err := strconv.Unquote(tok.Value)
		if err != nil {
			return Operand{}, fmt.Errorf("line %d: invalid string literal: %s", tok.Line, tok.Value)
		}
		return Operand{Type: OperandString, StrVal: s}, nil

	case TokenIdent:
		return Operand{Type: OperandLabel, StrVal: tok.Value}, nil

	default:
		return Operand{}, fmt.Errorf("line %d: unexpected token: %q", tok.Line, tok.Value)
	}
}

func parseRegisterNumber(value string) (int, error) {
	num, err := strconv.Atoi(value[1:])
	if err != nil || num < 0 || num >= vm.NumRegisters {
		return 0, fmt.Errorf("invalid register: %s", value)
	}
	return num, nil
}
