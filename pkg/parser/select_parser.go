package parser

import (
	"strings"

	"github.com/leapstack-labs/leapoql/pkg/token"
)

// SelectParser compiles a select list. Tokens are buffered until End, which
// parses the list into a SelectClause, resolves it and only then writes to
// the context, so a failing clause leaves the context untouched.
type SelectParser struct {
	tokens []token.Token
}

var _ Parser = (*SelectParser)(nil)

// NewSelectParser creates a select parser.
func NewSelectParser() *SelectParser {
	return &SelectParser{}
}

// Start resets the parser.
func (p *SelectParser) Start(Context) error {
	p.tokens = p.tokens[:0]
	return nil
}

// Token buffers one token.
func (p *SelectParser) Token(tok token.Token, _ Context) error {
	p.tokens = append(p.tokens, tok)
	return nil
}

// End compiles the buffered select list.
func (p *SelectParser) End(ctx Context) error {
	clause, err := ParseSelect(p.tokens, ctx)
	if err != nil {
		return err
	}
	plan, err := resolveSelect(ctx, clause)
	if err != nil {
		return err
	}
	return plan.emit(ctx)
}

// ParseSelect parses the tokens of a select list. The context decides
// which names are functions and which are aliases.
func ParseSelect(tokens []token.Token, ctx Context) (*SelectClause, error) {
	g := &selectGrammar{tokens: tokens, ctx: ctx}
	if n := len(tokens); n > 0 {
		last := tokens[n-1]
		g.eof = token.Token{Type: token.EOF, Pos: last.Pos.Advance(last.Literal)}
	}
	return g.parseClause()
}

type selectGrammar struct {
	tokens []token.Token
	pos    int
	eof    token.Token
	ctx    Context
}

func (g *selectGrammar) peek() token.Token {
	if g.pos < len(g.tokens) {
		return g.tokens[g.pos]
	}
	return g.eof
}

func (g *selectGrammar) next() token.Token {
	tok := g.peek()
	if g.pos < len(g.tokens) {
		g.pos++
	}
	return tok
}

func (g *selectGrammar) errorf(tok token.Token, format string, args ...any) error {
	return grammarError(ClauseSelect.String(), tok, format, args...)
}

// isFunction reports whether tok opens a function call. Aliases shadow
// function names.
func (g *selectGrammar) isFunction(tok token.Token) bool {
	return tok.Type == token.IDENT && !g.ctx.IsAlias(tok.Literal) && g.ctx.Dialect().IsFunction(tok.Literal)
}

func (g *selectGrammar) parseClause() (*SelectClause, error) {
	clause := &SelectClause{}
	if tok := g.peek(); tok.Type == token.DISTINCT || tok.Type == token.ALL {
		clause.Modifier = g.next()
	}
	for {
		item, err := g.parseItem(false)
		if err != nil {
			return nil, err
		}
		clause.Items = append(clause.Items, item)

		tok := g.peek()
		switch tok.Type {
		case token.EOF:
			return clause, nil
		case token.COMMA:
			clause.Items = append(clause.Items, &Separator{Tok: g.next()})
		default:
			return nil, g.unexpected(tok)
		}
	}
}

// unexpected reports a token found where a comma or the end of a list was
// expected.
func (g *selectGrammar) unexpected(tok token.Token) error {
	switch tok.Type {
	case token.LPAREN:
		return g.errorf(tok, "aggregate function expected before (")
	case token.RPAREN:
		return g.errorf(tok, ErrUnexpectedToken, tok)
	}
	return g.errorf(tok, "expected , before %s", tok)
}

// isPath reports whether tok is a path expression. Entities named like a
// keyword, such as Order, declare their short name as an implicit alias,
// which then lexes as that keyword.
func (g *selectGrammar) isPath(tok token.Token) bool {
	return tok.IsPath() || (token.IsKeyword(tok.Type) && g.ctx.IsAlias(tok.Literal))
}

func (g *selectGrammar) parseItem(inConstructor bool) (Node, error) {
	tok := g.peek()
	switch {
	case tok.Type == token.NEW:
		if inConstructor {
			return nil, g.errorf(tok, "constructor expressions cannot be nested")
		}
		return g.parseConstructor()
	case tok.Type == token.LPAREN:
		return nil, g.errorf(tok, "aggregate function expected before (")
	case tok.Type == token.DISTINCT || tok.Type == token.ALL:
		return nil, g.errorf(tok, "%s is only allowed at the start of the select clause", strings.ToLower(tok.Literal))
	case tok.Type == token.EOF || tok.Type == token.COMMA || tok.Type == token.RPAREN:
		return nil, g.errorf(tok, ErrUnexpectedToken, tok)
	case g.isFunction(tok):
		return g.parseCall()
	case g.isPath(tok):
		return &PathExpr{Tok: g.next()}, nil
	}
	return &Literal{Tok: g.next()}, nil
}

func (g *selectGrammar) parseConstructor() (Node, error) {
	expr := &ConstructorExpr{New: g.next()}
	if tok := g.peek(); !tok.IsPath() {
		return nil, g.errorf(tok, "class name expected after new")
	}
	expr.Class = g.next()
	open := g.peek()
	if open.Type != token.LPAREN {
		return nil, g.errorf(open, "( expected after new %s", expr.Class.Literal)
	}
	g.next()

	for {
		item, err := g.parseItem(true)
		if err != nil {
			return nil, err
		}
		expr.Args = append(expr.Args, item)

		tok := g.peek()
		switch tok.Type {
		case token.RPAREN:
			g.next()
			return expr, nil
		case token.COMMA:
			expr.Args = append(expr.Args, &Separator{Tok: g.next()})
		case token.EOF:
			return nil, g.errorf(open, "unclosed (")
		default:
			return nil, g.unexpected(tok)
		}
	}
}

func (g *selectGrammar) parseCall() (Node, error) {
	name := g.next()
	fn, _ := g.ctx.Dialect().Function(name.Literal)
	call := &FunctionCall{Name: name, Func: fn}

	if !fn.HasArguments {
		if fn.HasParentheses {
			if g.peek().Type != token.LPAREN {
				return nil, g.errorf(g.peek(), "( expected after %s", name.Literal)
			}
			g.next()
			if tok := g.next(); tok.Type != token.RPAREN {
				return nil, newError(KindFunction, ClauseSelect.String(), tok, "function %s takes no arguments", name.Literal)
			}
			call.Parens = true
		}
		return call, nil
	}

	open := g.peek()
	if open.Type != token.LPAREN {
		return nil, newError(KindFunction, ClauseSelect.String(), name, "function %s requires an argument list", name.Literal)
	}
	g.next()
	args, _, err := g.parseArgs(open)
	if err != nil {
		return nil, err
	}
	call.Args = args
	call.Parens = true
	return call, nil
}

// parseArgs parses up to the parenthesis matching open and returns the
// closing token. Parenthesized groups that are not calls are kept as
// literal text.
func (g *selectGrammar) parseArgs(open token.Token) ([]Node, token.Token, error) {
	var args []Node
	for {
		tok := g.peek()
		switch {
		case tok.Type == token.EOF:
			return nil, tok, g.errorf(open, "unclosed (")
		case tok.Type == token.RPAREN:
			return args, g.next(), nil
		case tok.Type == token.NEW:
			return nil, tok, g.errorf(tok, "constructor expressions are not allowed in function arguments")
		case tok.Type == token.COMMA:
			args = append(args, &Separator{Tok: g.next()})
		case tok.Type == token.LPAREN:
			g.next()
			inner, closing, err := g.parseArgs(tok)
			if err != nil {
				return nil, closing, err
			}
			args = append(args, &Literal{Tok: tok})
			args = append(args, inner...)
			args = append(args, &Literal{Tok: closing})
		case g.isFunction(tok):
			call, err := g.parseCall()
			if err != nil {
				return nil, tok, err
			}
			args = append(args, call)
		case g.isPath(tok):
			args = append(args, &PathExpr{Tok: g.next()})
		default:
			// DISTINCT, ALL, * and any other SQL text
			args = append(args, &Literal{Tok: g.next()})
		}
	}
}
