package compiler

import "strings"

// TokenType represents the type of a token.
type TokenType uint8

const (
	TokenEOF TokenType = iota
	TokenNewline
	TokenIdent     // mnemonics and label names
	TokenInt       // decimal or 0x integer literals
	TokenChar      // 'c' character literals, quotes included
	TokenString    // "quoted strings", quotes included
	TokenComma     // ,
	TokenColon     // : (for labels)
	TokenDirective // .word, .string
	TokenRegister  // r0-r7
	TokenIllegal   // anything the lexer cannot classify
)

// String returns the string representation of a token type.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenNewline:
		return "NEWLINE"
	case TokenIdent:
		return "IDENT"
	case TokenInt:
		return "INT"
	case TokenChar:
		return "CHAR"
	case TokenString:
		return "STRING"
	case TokenComma:
		return "COMMA"
	case TokenColon:
		return "COLON"
	case TokenDirective:
		return "DIRECTIVE"
	case TokenRegister:
		return "REGISTER"
	case TokenIllegal:
		return "ILLEGAL"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token.
type Token struct {
	Type  TokenType
	Value string
	Line  int
}

// Lexer tokenizes assembly source code.
type Lexer struct {
	input  string
	pos    int
	line   int
	tokens []Token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		pos:    0,
		line:   1,
		tokens: []Token{},
	}
}

// Tokenize tokenizes the entire input and returns the tokens.
func (l *Lexer) Tokenize() []Token {
	for l.pos < len(l.input) {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			break
		}

		ch := l.input[l.pos]

		switch {
		case ch == '\n':
			l.emit(TokenNewline, "\n")
			l.line++
			l.pos++

		case ch == ';' || ch == '#':
			// Comment - skip to end of line
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}

		case ch == ',':
			l.emit(TokenComma, ",")
			l.pos++

		case ch == ':':
			l.emit(TokenColon, ":")
			l.pos++

		case ch == '"':
			l.scanQuoted('"', TokenString)

		case ch == '\'':
			l.scanQuoted('\'', TokenChar)

		case ch == '.':
			l.scanDirective()

		case isDigit(ch):
			l.scanNumber()

		case isLetter(ch) || ch == '_':
			l.scanIdentOrRegister()

		default:
			l.emit(TokenIllegal, string(ch))
			l.pos++
		}
	}

	l.emit(TokenEOF, "")
	return l.tokens
}

func (l *Lexer) emit(t TokenType, value string) {
	l.tokens = append(l.tokens, Token{Type: t, Value: value, Line: l.line})
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == ' ' || ch == '\t' || ch == '\r' {
			l.pos++
		} else {
			break
		}
	}
}

// scanQuoted scans a literal delimited by quote. The token value keeps the
// quotes and escape sequences so the parser can unquote it. A literal that
// runs into the end of the line is illegal.
func (l *Lexer) scanQuoted(quote byte, t TokenType) {
	start := l.pos
	l.pos++ // Skip opening quote

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == '\n':
			l.emit(TokenIllegal, l.input[start:l.pos])
			return
		case ch == '\\' && l.pos+1 < len(l.input):
			l.pos += 2
		case ch == quote:
			l.pos++
			l.emit(t, l.input[start:l.pos])
			return
		default:
			l.pos++
		}
	}

	l.emit(TokenIllegal, l.input[start:l.pos])
}

func (l *Lexer) scanNumber() {
	start := l.pos

	// Hex and decimal share one scan; the parser validates the digits.
	for l.pos < len(l.input) && (isLetter(l.input[l.pos]) || isDigit(l.input[l.pos])) {
		l.pos++
	}

	l.emit(TokenInt, l.input[start:l.pos])
}

func (l *Lexer) scanDirective() {
	start := l.pos
	l.pos++ // Skip dot

	for l.pos < len(l.input) && (isLetter(l.input[l.pos]) || l.input[l.pos] == '_') {
		l.pos++
	}

	value := l.input[start:l.pos]
	if len(value) == 1 {
		l.emit(TokenIllegal, value)
		return
	}
	l.emit(TokenDirective, strings.ToLower(value))
}

func (l *Lexer) scanIdentOrRegister() {
	start := l.pos

	// First character
	l.pos++

	// Continue with alphanumeric or underscore
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if isLetter(ch) || isDigit(ch) || ch == '_' {
			l.pos++
		} else {
			break
		}
	}

	value := l.input[start:l.pos]
	l.emit(classifyIdent(value), value)
}

// classifyIdent reports whether an identifier names a register: an r (either
// case) followed only by digits. Out-of-range numbers are rejected by the parser.
func classifyIdent(value string) TokenType {
	if len(value) < 2 || (value[0] != 'r' && value[0] != 'R') {
		return TokenIdent
	}
	for i := 1; i < len(value); i++ {
		if !isDigit(value[i]) {
			return TokenIdent
		}
	}
	return TokenRegister
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
