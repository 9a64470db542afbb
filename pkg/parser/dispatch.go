package parser

import "github.com/leapstack-labs/leapoql/pkg/token"

// Parser receives the tokens of one clause.
//
// Start is called once before the first token and must reset any state
// left by a previous clause, so a Parser value can be reused.
type Parser interface {
	Start(ctx Context) error
	Token(tok token.Token, ctx Context) error
	End(ctx Context) error
}

// Dispatch tokenizes text and feeds the tokens to p. The first error
// returned by the lexer or by p aborts the dispatch.
func Dispatch(text string, mode Mode, p Parser, ctx Context) error {
	tokens, err := Tokenize(text, mode)
	if err != nil {
		return err
	}
	if err := p.Start(ctx); err != nil {
		return err
	}
	for _, tok := range tokens {
		if err := p.Token(tok, ctx); err != nil {
			return err
		}
	}
	return p.End(ctx)
}
