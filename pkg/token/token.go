// Package token defines the token types for object query parsing.
//
// The lexer classifies every lexeme into a TokenType; each TokenType belongs
// to exactly one Category so clause parsers never compare lowered strings.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Identifiers
	IDENT // name
	PATH  // name.name[.name...]

	// Literals
	NUMBER // 123, 45.67, 1e10
	STRING // 'hello'

	// Parameters
	PARAM // ? or :name

	// Operators
	PLUS     // +
	MINUS    // -
	STAR     // *
	SLASH    // /
	PERCENT  // %
	DPIPE    // ||
	EQ       // =
	NE       // != or <>
	LT       // <
	GT       // >
	LE       // <=
	GE       // >=
	DOT      // .
	COMMA    // ,
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Keywords (alphabetical)
	ALL
	AND
	ANY
	AS
	ASC
	BETWEEN
	BY
	CASE
	DESC
	DISTINCT
	ELSE
	END
	ESCAPE
	EXISTS
	FALSE
	FETCH
	FROM
	FULL
	GROUP
	HAVING
	IN
	INNER
	IS
	JOIN
	LEFT
	LIKE
	NEW
	NOT
	NULL
	ON
	OR
	ORDER
	OUTER
	RIGHT
	SELECT
	SOME
	THEN
	TRUE
	WHEN
	WHERE
)

// Category is the coarse lexical class of a token.
type Category int

const (
	CategoryEOF Category = iota
	CategoryIllegal
	CategoryIdentifier
	CategoryLiteral
	CategoryParameter
	CategoryOperator
	CategoryKeyword
)

// String returns a human-readable name for the category.
func (c Category) String() string {
	switch c {
	case CategoryEOF:
		return "eof"
	case CategoryIllegal:
		return "illegal"
	case CategoryIdentifier:
		return "identifier"
	case CategoryLiteral:
		return "literal"
	case CategoryParameter:
		return "parameter"
	case CategoryOperator:
		return "operator"
	case CategoryKeyword:
		return "keyword"
	default:
		return "unknown"
	}
}

// Category returns the lexical category of the token type.
func (t TokenType) Category() Category {
	switch {
	case t == EOF:
		return CategoryEOF
	case t == IDENT || t == PATH:
		return CategoryIdentifier
	case t == NUMBER || t == STRING:
		return CategoryLiteral
	case t == PARAM:
		return CategoryParameter
	case IsOperator(t):
		return CategoryOperator
	case IsKeyword(t):
		return CategoryKeyword
	default:
		return CategoryIllegal
	}
}

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps token types to their string representations.
var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	PATH:   "PATH",
	NUMBER: "NUMBER",
	STRING: "STRING",
	PARAM:  "PARAM",

	PLUS:     "+",
	MINUS:    "-",
	STAR:     "*",
	SLASH:    "/",
	PERCENT:  "%",
	DPIPE:    "||",
	EQ:       "=",
	NE:       "!=",
	LT:       "<",
	GT:       ">",
	LE:       "<=",
	GE:       ">=",
	DOT:      ".",
	COMMA:    ",",
	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",

	ALL:      "ALL",
	AND:      "AND",
	ANY:      "ANY",
	AS:       "AS",
	ASC:      "ASC",
	BETWEEN:  "BETWEEN",
	BY:       "BY",
	CASE:     "CASE",
	DESC:     "DESC",
	DISTINCT: "DISTINCT",
	ELSE:     "ELSE",
	END:      "END",
	ESCAPE:   "ESCAPE",
	EXISTS:   "EXISTS",
	FALSE:    "FALSE",
	FETCH:    "FETCH",
	FROM:     "FROM",
	FULL:     "FULL",
	GROUP:    "GROUP",
	HAVING:   "HAVING",
	IN:       "IN",
	INNER:    "INNER",
	IS:       "IS",
	JOIN:     "JOIN",
	LEFT:     "LEFT",
	LIKE:     "LIKE",
	NEW:      "NEW",
	NOT:      "NOT",
	NULL:     "NULL",
	ON:       "ON",
	OR:       "OR",
	ORDER:    "ORDER",
	OUTER:    "OUTER",
	RIGHT:    "RIGHT",
	SELECT:   "SELECT",
	SOME:     "SOME",
	THEN:     "THEN",
	TRUE:     "TRUE",
	WHEN:     "WHEN",
	WHERE:    "WHERE",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]TokenType{
	"all":      ALL,
	"and":      AND,
	"any":      ANY,
	"as":       AS,
	"asc":      ASC,
	"between":  BETWEEN,
	"by":       BY,
	"case":     CASE,
	"desc":     DESC,
	"distinct": DISTINCT,
	"else":     ELSE,
	"end":      END,
	"escape":   ESCAPE,
	"exists":   EXISTS,
	"false":    FALSE,
	"fetch":    FETCH,
	"from":     FROM,
	"full":     FULL,
	"group":    GROUP,
	"having":   HAVING,
	"in":       IN,
	"inner":    INNER,
	"is":       IS,
	"join":     JOIN,
	"left":     LEFT,
	"like":     LIKE,
	"new":      NEW,
	"not":      NOT,
	"null":     NULL,
	"on":       ON,
	"or":       OR,
	"order":    ORDER,
	"outer":    OUTER,
	"right":    RIGHT,
	"select":   SELECT,
	"some":     SOME,
	"then":     THEN,
	"true":     TRUE,
	"when":     WHEN,
	"where":    WHERE,
}

// LookupIdent returns the token type for the given lowercase identifier.
// If the identifier is a keyword, the keyword token type is returned.
// Otherwise, IDENT is returned.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= ALL && t <= WHERE
}

// IsOperator returns true if the token type is an operator or punctuation.
func IsOperator(t TokenType) bool {
	return t >= PLUS && t <= RBRACKET
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
	Space   bool // whitespace preceded the token in the source text
}

// Category returns the lexical category of the token.
func (t Token) Category() Category {
	return t.Type.Category()
}

// IsPath reports whether the token can name a path expression.
func (t Token) IsPath() bool {
	return t.Type == IDENT || t.Type == PATH
}

// String returns the token literal, or its type for EOF.
func (t Token) String() string {
	if t.Type == EOF {
		return "end of input"
	}
	return t.Literal
}
