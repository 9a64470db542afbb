package parser

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapoql/pkg/token"
)

// Kind classifies a query compilation error.
type Kind int

const (
	// KindPath is an unknown or invalid property or association segment.
	KindPath Kind = iota + 1
	// KindFunction is an unknown or misused SQL function.
	KindFunction
	// KindGrammar is a token that violates a clause's grammar.
	KindGrammar
	// KindClass is an unresolvable constructor result class.
	KindClass
)

// Sentinel errors, matched by errors.Is against any *Error of the same kind.
var (
	ErrPathResolution     = errors.New("path resolution error")
	ErrFunctionResolution = errors.New("function resolution error")
	ErrGrammar            = errors.New("grammar error")
	ErrClassResolution    = errors.New("class resolution error")
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return "query error"
}

func (k Kind) sentinel() error {
	switch k {
	case KindPath:
		return ErrPathResolution
	case KindFunction:
		return ErrFunctionResolution
	case KindGrammar:
		return ErrGrammar
	case KindClass:
		return ErrClassResolution
	}
	return nil
}

// Error is a query compilation error carrying the offending token or path.
type Error struct {
	Kind    Kind
	Clause  string
	Token   string
	Pos     token.Position
	Message string
}

func (e *Error) Error() string {
	where := ""
	if e.Clause != "" {
		where = " in " + e.Clause + " clause"
	}
	if e.Token != "" {
		where += fmt.Sprintf(" near %q", e.Token)
	}
	if e.Pos.IsValid() {
		where += fmt.Sprintf(" at line %d, column %d", e.Pos.Line, e.Pos.Column)
	}
	return fmt.Sprintf("%s%s: %s", e.Kind, where, e.Message)
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func newError(kind Kind, clause string, tok token.Token, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Clause:  clause,
		Token:   tok.Literal,
		Pos:     tok.Pos,
		Message: fmt.Sprintf(format, args...),
	}
}

func grammarError(clause string, tok token.Token, format string, args ...any) *Error {
	return newError(KindGrammar, clause, tok, format, args...)
}

func pathError(clause, path string, format string, args ...any) *Error {
	return &Error{Kind: KindPath, Clause: clause, Token: path, Message: fmt.Sprintf(format, args...)}
}

// Common error messages
const (
	ErrUnexpectedToken     = "unexpected %s"
	ErrUnterminatedString  = "unterminated string literal"
	ErrIllegalCharacter    = "illegal character %q"
	ErrUnknownAlias        = "alias %q is not defined"
	ErrUnknownProperty     = "could not resolve property %q of %s"
	ErrNotDereferenceable  = "%s is a value and cannot be dereferenced with %q"
	ErrCollectionIndex     = "illegal syntax near collection-valued path expression in %s: %s"
	ErrCollectionUnindexed = "collection %s is not indexed"
	ErrCollectionUnaddress = "collection-valued path %s must be dereferenced with elements or indices"
	ErrScalarElement       = "elements of collection %s are values and cannot be dereferenced with %q"
	ErrJoinColumns         = "cannot join %s: %d columns compared against %d"
)
