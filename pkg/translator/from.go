package translator

import (
	"fmt"

	"github.com/leapstack-labs/leapoql/pkg/parser"
	"github.com/leapstack-labs/leapoql/pkg/token"
)

// fromParser declares the aliases of a FROM clause:
//
//	from   = item { "," item | join }
//	item   = Entity [ [as] alias ]
//	join   = [ inner | left [outer] ] join [fetch] path [ [as] alias ]
type fromParser struct {
	c      *compilation
	tokens []token.Token
	pos    int
}

func (c *compilation) from(text string) error {
	tokens, err := parser.Tokenize(text, parser.ModeClause)
	if err != nil {
		return err
	}
	f := &fromParser{c: c, tokens: tokens}
	if f.done() {
		return f.errorf(token.Token{}, "from clause is empty")
	}
	if err := f.item(); err != nil {
		return err
	}
	for !f.done() {
		tok := f.peek()
		switch tok.Type {
		case token.COMMA:
			f.next()
			err = f.item()
		case token.JOIN, token.INNER, token.LEFT:
			err = f.join()
		case token.RIGHT, token.FULL:
			err = f.errorf(tok, "%s joins are not supported", tok.Literal)
		default:
			err = f.errorf(tok, parser.ErrUnexpectedToken, tok)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (f *fromParser) done() bool {
	return f.pos >= len(f.tokens)
}

func (f *fromParser) peek() token.Token {
	if f.done() {
		return token.Token{Type: token.EOF}
	}
	return f.tokens[f.pos]
}

func (f *fromParser) next() token.Token {
	tok := f.peek()
	if !f.done() {
		f.pos++
	}
	return tok
}

func (f *fromParser) errorf(tok token.Token, format string, args ...any) error {
	return &parser.Error{
		Kind:    parser.KindGrammar,
		Clause:  parser.ClauseFrom.String(),
		Token:   tok.Literal,
		Pos:     tok.Pos,
		Message: fmt.Sprintf(format, args...),
	}
}

// alias reads an optional alias declaration.
func (f *fromParser) alias() (token.Token, error) {
	if f.peek().Type == token.AS {
		f.next()
		if f.peek().Type != token.IDENT {
			return token.Token{}, f.errorf(f.peek(), "alias expected after as")
		}
	}
	if f.peek().Type != token.IDENT {
		return token.Token{}, nil
	}
	tok := f.next()
	if f.c.IsAlias(tok.Literal) {
		return token.Token{}, f.errorf(tok, "alias %s is already defined", tok.Literal)
	}
	return tok, nil
}

func (f *fromParser) item() error {
	tok := f.next()
	if !tok.IsPath() && !token.IsKeyword(tok.Type) {
		return f.errorf(tok, "entity name expected")
	}
	e, ok := f.c.t.model.Entity(tok.Literal)
	if !ok {
		return &parser.Error{
			Kind:    parser.KindClass,
			Clause:  parser.ClauseFrom.String(),
			Token:   tok.Literal,
			Pos:     tok.Pos,
			Message: fmt.Sprintf("could not resolve entity %s", tok.Literal),
		}
	}
	aliasTok, err := f.alias()
	if err != nil {
		return err
	}
	name := aliasTok.Literal
	if name == "" {
		name = e.ShortName()
		if f.c.IsAlias(name) {
			return f.errorf(tok, "alias %s is already defined", name)
		}
	}

	r := &root{name: name, table: e.Table, alias: f.c.NextAlias(e.Table)}
	f.c.roots = append(f.c.roots, r)
	f.c.rootOf[r.alias] = r
	f.c.aliases[name] = parser.Alias{Name: name, SQLAlias: r.alias, Entity: e}
	return nil
}

func (f *fromParser) join() error {
	kind := parser.InnerJoin
	switch f.peek().Type {
	case token.INNER:
		f.next()
	case token.LEFT:
		f.next()
		kind = parser.LeftJoin
		if f.peek().Type == token.OUTER {
			f.next()
		}
	}
	if tok := f.next(); tok.Type != token.JOIN {
		return f.errorf(tok, "join expected")
	}
	fetch := false
	if f.peek().Type == token.FETCH {
		f.next()
		fetch = true
	}
	pathTok := f.next()
	if !pathTok.IsPath() {
		return f.errorf(pathTok, "path expression expected after join")
	}

	pp := parser.NewFromPathParser(f.c.t.dialect.PreferredJoinStyle(), kind)
	if err := parser.Dispatch(pathTok.Literal, parser.ModePath, pp, f.c); err != nil {
		return err
	}
	res := pp.Result()

	var alias parser.Alias
	if entity, ok := res.Entity(); ok {
		e, _ := f.c.t.model.Entity(entity)
		alias = parser.Alias{SQLAlias: res.SelectName, Entity: e}
	} else if res.CollectionValued {
		coll, _ := f.c.t.model.Collection(res.CollectionRole)
		alias = parser.Alias{SQLAlias: res.CollectionAlias, Collection: coll}
	} else {
		return f.errorf(pathTok, "%s is not an association or collection", pathTok.Literal)
	}

	aliasTok, err := f.alias()
	if err != nil {
		return err
	}
	if err := res.AddJoins(f.c); err != nil {
		return err
	}
	if fetch && res.CollectionValued {
		f.c.AddCollection(res.CollectionRole, res.CollectionAlias)
	}
	if aliasTok.Literal != "" {
		alias.Name = aliasTok.Literal
		f.c.aliases[alias.Name] = alias
	}
	return nil
}
