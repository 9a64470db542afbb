package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		ident string
		want  TokenType
	}{
		{"select", SELECT},
		{"distinct", DISTINCT},
		{"new", NEW},
		{"all", ALL},
		{"person", IDENT},
		{"count", IDENT},
	}

	for _, tt := range tests {
		t.Run(tt.ident, func(t *testing.T) {
			assert.Equal(t, tt.want, LookupIdent(tt.ident))
		})
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		typ  TokenType
		want Category
	}{
		{EOF, CategoryEOF},
		{ILLEGAL, CategoryIllegal},
		{IDENT, CategoryIdentifier},
		{PATH, CategoryIdentifier},
		{NUMBER, CategoryLiteral},
		{STRING, CategoryLiteral},
		{PARAM, CategoryParameter},
		{COMMA, CategoryOperator},
		{LPAREN, CategoryOperator},
		{DISTINCT, CategoryKeyword},
		{WHERE, CategoryKeyword},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.Category())
		})
	}
}

func TestPositionAdvance(t *testing.T) {
	p := Position{Line: 1, Column: 1}
	p = p.Advance("ab\ncd")

	assert.Equal(t, 2, p.Line)
	assert.Equal(t, 3, p.Column)
	assert.Equal(t, 5, p.Offset)
}

func TestTokenString(t *testing.T) {
	assert.Equal(t, "end of input", Token{Type: EOF}.String())
	assert.Equal(t, "p.name", Token{Type: PATH, Literal: "p.name"}.String())
	assert.True(t, Token{Type: PATH}.IsPath())
	assert.False(t, Token{Type: STRING}.IsPath())
}
