package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapoql/pkg/dialect"
	"github.com/leapstack-labs/leapoql/pkg/mapping"
	"github.com/leapstack-labs/leapoql/pkg/token"
)

// selectPlan is a resolved select list ready to be written to a context.
type selectPlan struct {
	modifier token.Token
	holder   string
	items    []selectItem
	joins    []Join
}

type selectItem struct {
	columns []string
	typ     mapping.Type
	path    *Resolution // nil for function items
}

// joinScope shares implicit joins between the paths of one select list
// before they are committed.
type joinScope struct {
	Context
	pending map[string]string
	joins   []Join
}

func (s *joinScope) JoinAlias(path string) (string, bool) {
	if alias, ok := s.pending[path]; ok {
		return alias, true
	}
	return s.Context.JoinAlias(path)
}

func (s *joinScope) add(res *Resolution) {
	for _, j := range res.Joins {
		if j.Path != "" {
			s.pending[j.Path] = j.Alias
		}
		s.joins = append(s.joins, j)
	}
}

type selectResolver struct {
	ctx   Context
	scope *joinScope
	plan  *selectPlan
}

func resolveSelect(ctx Context, clause *SelectClause) (*selectPlan, error) {
	r := &selectResolver{
		ctx:   ctx,
		scope: &joinScope{Context: ctx, pending: make(map[string]string)},
		plan:  &selectPlan{modifier: clause.Modifier},
	}
	for _, n := range clause.Items {
		if err := r.item(n); err != nil {
			return nil, err
		}
	}
	r.plan.joins = r.scope.joins
	return r.plan, nil
}

func (r *selectResolver) item(n Node) error {
	switch n := n.(type) {
	case *Separator:
		return nil
	case *PathExpr:
		res, err := ResolvePath(r.scope, n.Tok.Literal, PathOptions{
			Clause:    ClauseSelect,
			Policy:    PolicySelect,
			JoinStyle: dialect.JoinTheta,
			Shallow:   r.ctx.IsShallow(),
		})
		if err != nil {
			return err
		}
		r.scope.add(res)
		r.plan.items = append(r.plan.items, selectItem{columns: res.Columns, typ: res.Type, path: res})
	case *FunctionCall:
		sql, typ, err := r.call(n)
		if err != nil {
			return err
		}
		r.plan.items = append(r.plan.items, selectItem{columns: []string{sql}, typ: typ})
	case *ConstructorExpr:
		class, ok := r.ctx.ImportedClass(n.Class.Literal)
		if !ok {
			return newError(KindClass, ClauseSelect.String(), n.Class, "could not resolve class %s", n.Class.Literal)
		}
		r.plan.holder = class
		for _, arg := range n.Args {
			if err := r.item(arg); err != nil {
				return err
			}
		}
	case *Literal:
		return pathError(ClauseSelect.String(), n.Tok.Literal, "%s is not a path expression", n.Tok)
	}
	return nil
}

// call renders a function call and infers its return type from the first
// path or nested call among its arguments, falling back to the type of
// the first typed literal.
func (r *selectResolver) call(c *FunctionCall) (string, mapping.Type, error) {
	var (
		b          strings.Builder
		argType    mapping.Type
		literal    mapping.Type
		hasOperand bool
	)
	b.WriteString(c.Name.Literal)
	if c.Parens {
		b.WriteByte('(')
	}
	for i, arg := range c.Args {
		text, typ, operand, err := r.arg(arg)
		if err != nil {
			return "", nil, err
		}
		if i > 0 && arg.Token().Space {
			b.WriteByte(' ')
		}
		b.WriteString(text)
		switch {
		case operand && !hasOperand:
			argType, hasOperand = typ, true
		case !operand && literal == nil:
			literal = typ
		}
	}
	if c.Parens {
		b.WriteByte(')')
	}
	if !hasOperand {
		argType = literal
	}

	typ, ok := c.Func.ReturnType(argType)
	if !ok {
		return "", nil, newError(KindFunction, ClauseSelect.String(), c.Name, "could not determine the return type of %s", c.Name.Literal)
	}
	return b.String(), typ, nil
}

// arg renders one call argument. Operands are resolved paths and nested
// calls; everything else is literal SQL.
func (r *selectResolver) arg(n Node) (string, mapping.Type, bool, error) {
	switch n := n.(type) {
	case *FunctionCall:
		sql, typ, err := r.call(n)
		return sql, typ, true, err
	case *PathExpr:
		// inside a call only identifiers are needed, so associations are
		// never joined. A path that does not resolve is a literal constant.
		res, err := ResolvePath(r.scope, n.Tok.Literal, PathOptions{
			Clause:    ClauseSelect,
			Policy:    PolicySelect,
			JoinStyle: dialect.JoinTheta,
			Shallow:   true,
		})
		if err != nil {
			r.ctx.Logger().Debug("call argument kept as literal", "argument", n.Tok.Literal, "error", err)
			return n.Tok.Literal, nil, false, nil
		}
		r.scope.add(res)
		return strings.Join(res.Columns, ", "), res.Type, true, nil
	}
	tok := n.Token()
	return tok.Literal, literalType(tok), false, nil
}

// literalType returns the mapped type of a literal token, or nil.
func literalType(tok token.Token) mapping.Type {
	switch tok.Type {
	case token.STRING:
		return mapping.String
	case token.TRUE, token.FALSE:
		return mapping.Boolean
	case token.NUMBER:
		lit := strings.ToLower(tok.Literal)
		switch {
		case strings.HasSuffix(lit, "l"):
			return mapping.Long
		case strings.HasSuffix(lit, "f"):
			return mapping.Float
		case strings.ContainsAny(lit, ".ed"):
			return mapping.Double
		}
		return mapping.Integer
	}
	return nil
}

func (p *selectPlan) emit(ctx Context) error {
	switch p.modifier.Type {
	case token.DISTINCT:
		ctx.SetDistinct(true)
	case token.ALL:
		ctx.SetDistinct(false)
	}
	if p.holder != "" {
		ctx.SetHolderClass(p.holder)
	}
	for _, j := range p.joins {
		if err := ctx.AddJoin(j, dialect.JoinTheta); err != nil {
			return err
		}
	}

	var fragments []string
	for i, item := range p.items {
		aliases := make([]string, len(item.columns))
		for j, col := range item.columns {
			aliases[j] = fmt.Sprintf("col_%d_%d_", i, j)
			fragments = append(fragments, col+" as "+aliases[j])
		}
		if res := item.path; res != nil {
			if res.CollectionValued {
				ctx.AddCollection(res.CollectionRole, res.CollectionAlias)
			}
			if entity, ok := res.Entity(); ok {
				ctx.AddSelectClass(res.SelectName, entity)
			}
		}
		ctx.AddScalar(Scalar{Columns: item.columns, Aliases: aliases, Type: item.typ})
	}
	ctx.Append(ClauseSelect, strings.Join(fragments, ", "))
	return nil
}
