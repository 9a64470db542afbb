package parser

import (
	"strings"

	"github.com/leapstack-labs/leapoql/pkg/dialect"
	"github.com/leapstack-labs/leapoql/pkg/token"
)

// ConditionParser compiles a boolean condition. Alias-rooted paths are
// resolved to columns and parameters are replaced by positional
// placeholders; keywords, operators and literals are copied through.
type ConditionParser struct {
	clause Clause
	depth  int
	first  bool
	open   token.Token
}

var _ Parser = (*ConditionParser)(nil)

// NewConditionParser creates a condition parser writing to clause.
func NewConditionParser(clause Clause) *ConditionParser {
	return &ConditionParser{clause: clause}
}

// NewWhereParser creates a condition parser for the WHERE clause.
func NewWhereParser() *ConditionParser {
	return NewConditionParser(ClauseWhere)
}

// Start resets the parser.
func (p *ConditionParser) Start(Context) error {
	p.depth = 0
	p.first = true
	return nil
}

// Token translates one token of the condition.
func (p *ConditionParser) Token(tok token.Token, ctx Context) error {
	text := tok.Literal
	switch {
	case tok.Type == token.LPAREN:
		if p.depth == 0 {
			p.open = tok
		}
		p.depth++
	case tok.Type == token.RPAREN:
		if p.depth == 0 {
			return grammarError(p.clause.String(), tok, ErrUnexpectedToken, tok)
		}
		p.depth--
	case tok.Type == token.PARAM:
		name := strings.TrimPrefix(tok.Literal, ":")
		ctx.AddParameter(name)
		text = "?"
	case tok.IsPath() && ctx.IsAlias(rootName(tok.Literal)):
		res, err := ResolvePath(ctx, tok.Literal, PathOptions{
			Clause:    p.clause,
			Policy:    PolicyBase,
			JoinStyle: dialect.JoinTheta,
		})
		if err != nil {
			return err
		}
		if err := res.AddJoins(ctx); err != nil {
			return err
		}
		text = strings.Join(res.Columns, ", ")
		if len(res.Columns) > 1 {
			text = "(" + text + ")"
		}
	}
	if !p.first && tok.Space {
		text = " " + text
	}
	p.first = false
	ctx.Append(p.clause, text)
	return nil
}

// End checks that every parenthesis was closed.
func (p *ConditionParser) End(Context) error {
	if p.depth > 0 {
		return grammarError(p.clause.String(), p.open, "unclosed (")
	}
	return nil
}
