package parser

import (
	"strings"
	"unicode"

	"github.com/leapstack-labs/leapoql/pkg/token"
)

// Mode selects the separator granularity of the lexer.
type Mode int

const (
	// ModeClause splits on whitespace, operators and punctuation; a dotted
	// path such as p.address.city is a single PATH token.
	ModeClause Mode = iota
	// ModePath additionally treats '.' as a separator, yielding the
	// segments of one path expression.
	ModePath
)

// Lexer tokenizes object query clause text.
type Lexer struct {
	input   string
	mode    Mode
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)
	space   bool // whitespace was skipped before the current token
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string, mode Mode) *Lexer {
	l := &Lexer{
		input: input,
		mode:  mode,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token. Lexical errors are reported as ILLEGAL
// tokens whose literal is the offending text.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	tok := token.Token{Pos: l.currentPos(), Space: l.space}
	if l.pos >= len(l.input) {
		tok.Type = token.EOF
		return tok
	}

	start := l.pos
	switch l.ch {
	case '+':
		tok.Type = token.PLUS
	case '-':
		tok.Type = token.MINUS
	case '*':
		tok.Type = token.STAR
	case '/':
		tok.Type = token.SLASH
	case '%':
		tok.Type = token.PERCENT
	case '=':
		tok.Type = token.EQ
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok.Type = token.LE
		case '>':
			l.readChar()
			tok.Type = token.NE
		default:
			tok.Type = token.LT
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type = token.GE
		} else {
			tok.Type = token.GT
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type = token.NE
		} else {
			tok.Type = token.ILLEGAL
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok.Type = token.DPIPE
		} else {
			tok.Type = token.ILLEGAL
		}
	case '.':
		if l.mode == ModeClause && isDigit(l.peekChar()) {
			tok.Type = token.NUMBER
			tok.Literal = l.readNumber()
			return tok
		}
		tok.Type = token.DOT
	case ',':
		tok.Type = token.COMMA
	case '(':
		tok.Type = token.LPAREN
	case ')':
		tok.Type = token.RPAREN
	case '[':
		tok.Type = token.LBRACKET
	case ']':
		tok.Type = token.RBRACKET
	case '?':
		tok.Type = token.PARAM
	case ':':
		if isIdentStart(l.peekChar()) {
			l.readChar()
			l.readName()
			tok.Type = token.PARAM
			tok.Literal = l.input[start:l.pos]
			return tok
		}
		tok.Type = token.ILLEGAL
	case '\'':
		if l.readString() {
			tok.Type = token.STRING
		} else {
			tok.Type = token.ILLEGAL
		}
		tok.Literal = l.input[start:l.pos]
		return tok
	default:
		switch {
		case isIdentStart(l.ch):
			tok.Type, tok.Literal = l.readIdentifier()
			return tok
		case isDigit(l.ch):
			tok.Type = token.NUMBER
			tok.Literal = l.readNumber()
			return tok
		default:
			tok.Type = token.ILLEGAL
		}
	}

	l.readChar()
	tok.Literal = l.input[start:l.pos]
	return tok
}

// skipWhitespace skips whitespace and records whether any was skipped.
func (l *Lexer) skipWhitespace() {
	l.space = false
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f' {
		l.space = true
		l.readChar()
	}
}

// readString consumes a single-quoted string literal, handling doubled
// single quotes as escape. It returns false if the string is unterminated.
func (l *Lexer) readString() bool {
	l.readChar() // skip opening quote
	for l.pos < len(l.input) {
		if l.ch == '\'' {
			if l.peekChar() == '\'' {
				l.readChar() // skip first quote
				l.readChar() // skip second quote
				continue
			}
			l.readChar() // skip closing quote
			return true
		}
		l.readChar()
	}
	return false
}

// readName consumes one name segment.
func (l *Lexer) readName() {
	for isIdentStart(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
}

// readIdentifier reads an identifier, keyword or, in clause mode, a dotted
// path.
func (l *Lexer) readIdentifier() (token.TokenType, string) {
	start := l.pos
	l.readName()
	dotted := false
	for l.mode == ModeClause && l.ch == '.' && isIdentStart(l.peekChar()) {
		dotted = true
		l.readChar() // skip '.'
		l.readName()
	}
	literal := l.input[start:l.pos]
	if dotted {
		return token.PATH, literal
	}
	return token.LookupIdent(strings.ToLower(literal)), literal
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) readNumber() string {
	start := l.pos

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '+' || l.peekChar() == '-') {
		l.readChar() // skip 'e' or 'E'
		if l.ch == '+' || l.ch == '-' {
			l.readChar() // skip sign
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	// type suffixes: 10L, 1.5f, 2.0d
	switch l.ch {
	case 'l', 'L', 'f', 'F', 'd', 'D':
		if !isIdentStart(l.peekChar()) && !isDigit(l.peekChar()) {
			l.readChar()
		}
	}

	return l.input[start:l.pos]
}

// isIdentStart returns true if ch can start an identifier.
func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' || (ch < 0x80 && unicode.IsLetter(rune(ch))) || ch >= 0x80
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens of the input, excluding the terminating EOF.
// The first lexical error aborts tokenization.
func Tokenize(input string, mode Mode) ([]token.Token, error) {
	l := NewLexer(input, mode)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		switch tok.Type {
		case token.EOF:
			return tokens, nil
		case token.ILLEGAL:
			if strings.HasPrefix(tok.Literal, "'") {
				return nil, grammarError("", tok, ErrUnterminatedString)
			}
			return nil, grammarError("", tok, ErrIllegalCharacter, tok.Literal)
		}
		tokens = append(tokens, tok)
	}
}
