package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapoql/pkg/dialect"
	"github.com/leapstack-labs/leapoql/pkg/mapping"
	"github.com/leapstack-labs/leapoql/pkg/token"
)

// Policy decides how a path expression is completed after its last segment.
type Policy int

const (
	// PolicyBase keeps the foreign key of a terminal association and
	// rejects collections not addressed with elements or indices.
	PolicyBase Policy = iota
	// PolicyFrom joins a terminal association and defaults an unaddressed
	// collection to its elements. Index addressing is rejected.
	PolicyFrom
	// PolicySelect behaves like PolicyFrom, except that a terminal
	// association is only joined when the query is not shallow.
	PolicySelect
)

// Collection pseudo-properties.
const (
	elementsProperty = "elements"
	indicesProperty  = "indices"
	indexProperty    = "index"
)

// PathOptions configure one path resolution.
type PathOptions struct {
	Clause    Clause
	Policy    Policy
	JoinStyle dialect.JoinStyle
	JoinKind  JoinKind

	// Shallow skips the join of a terminal association under PolicySelect.
	Shallow bool
}

// Resolution is the result of resolving a path expression.
type Resolution struct {
	Path    string
	Columns []string // qualified by SQL alias
	Type    mapping.Type

	CollectionValued bool
	CollectionRole   string
	CollectionAlias  string

	// SelectName is the SQL alias of the entity the path ends on, if that
	// entity's table is part of the query.
	SelectName string

	Joins     []Join
	JoinStyle dialect.JoinStyle
}

// Entity returns the entity name for entity-typed resolutions.
func (r *Resolution) Entity() (string, bool) {
	if et, ok := r.Type.(*mapping.EntityType); ok {
		return et.Entity, true
	}
	return "", false
}

// AddJoins commits the joins of the resolution to ctx.
func (r *Resolution) AddJoins(ctx Context) error {
	for _, j := range r.Joins {
		if err := ctx.AddJoin(j, r.JoinStyle); err != nil {
			return err
		}
	}
	return nil
}

// ResolvePath resolves a dotted path expression rooted at a query alias.
// It has no effect on ctx other than allocating SQL aliases; joins are
// returned in the Resolution and committed with AddJoins.
func ResolvePath(ctx Context, path string, opts PathOptions) (*Resolution, error) {
	segments, err := pathSegments(path, opts.Clause)
	if err != nil {
		return nil, err
	}
	return resolveSegments(ctx, path, segments, opts)
}

// pathSegments splits a path into its names using the path-mode lexer.
func pathSegments(path string, clause Clause) ([]string, error) {
	tokens, err := Tokenize(path, ModePath)
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.Clause = clause.String()
		}
		return nil, err
	}
	segments := make([]string, 0, len(tokens)/2+1)
	for i, tok := range tokens {
		wantName := i%2 == 0
		if wantName != isName(tok) || (!wantName && tok.Type != token.DOT) {
			return nil, grammarError(clause.String(), tok, ErrUnexpectedToken, tok)
		}
		if wantName {
			segments = append(segments, tok.Literal)
		}
	}
	if len(segments) == 0 || len(tokens)%2 == 0 {
		return nil, &Error{Kind: KindGrammar, Clause: clause.String(), Token: path, Message: "incomplete path expression"}
	}
	return segments, nil
}

func isName(tok token.Token) bool {
	return tok.Type == token.IDENT || token.IsKeyword(tok.Type)
}

type nodeKind int

const (
	atEntity      nodeKind = iota // entity table joined under alias
	atAssociation                 // many-to-one whose target is not joined
	atComponent
	atCollection
	atValue
)

type resolver struct {
	ctx  Context
	opts PathOptions
	path string
	res  *Resolution

	kind   nodeKind
	prefix string // path consumed so far, used as the join key
	alias  string // SQL alias of the table holding the current node

	entity     *mapping.Entity // current entity, or owner of a component or collection
	target     *mapping.Entity
	component  *mapping.ComponentType
	collection *mapping.Collection

	columns []string
	typ     mapping.Type
}

func resolveSegments(ctx Context, path string, segments []string, opts PathOptions) (*Resolution, error) {
	r := &resolver{
		ctx:  ctx,
		opts: opts,
		path: path,
		res:  &Resolution{Path: path, JoinStyle: opts.JoinStyle},
	}
	if err := r.root(segments[0]); err != nil {
		return nil, err
	}
	for _, seg := range segments[1:] {
		if err := r.step(seg); err != nil {
			return nil, err
		}
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return r.res, nil
}

func (r *resolver) errorf(format string, args ...any) error {
	return pathError(r.opts.Clause.String(), r.path, format, args...)
}

func (r *resolver) root(name string) error {
	a, ok := r.ctx.AliasFor(name)
	if !ok {
		return r.errorf(ErrUnknownAlias, name)
	}
	r.prefix = name
	if a.Entity != nil {
		r.enter(a.Entity, a.SQLAlias)
		return nil
	}
	// alias over a collection of values
	r.kind = atValue
	r.alias = a.SQLAlias
	r.columns = qualify(a.SQLAlias, a.Collection.ElementColumns)
	r.typ = a.Collection.ElementType
	return nil
}

func (r *resolver) enter(e *mapping.Entity, alias string) {
	r.kind = atEntity
	r.entity = e
	r.alias = alias
	r.columns = qualify(alias, e.Identifier.Columns)
	r.typ = e.Type()
}

func (r *resolver) step(seg string) error {
	switch r.kind {
	case atAssociation:
		if r.target.IsIdentifier(seg) {
			// the foreign key already holds the identifier
			r.prefix += "." + seg
			r.kind = atValue
			r.typ = r.target.Identifier.Type
			return nil
		}
		if err := r.joinTarget(); err != nil {
			return err
		}
		return r.property(seg)

	case atCollection:
		switch seg {
		case elementsProperty:
			return r.joinElements()
		case indicesProperty, indexProperty:
			return r.index(seg)
		}
		role := r.collection.Role
		if err := r.joinElements(); err != nil {
			return err
		}
		if r.kind == atValue {
			return r.errorf(ErrScalarElement, role, seg)
		}
		if r.kind == atAssociation {
			if err := r.joinTarget(); err != nil {
				return err
			}
		}
		return r.property(seg)

	case atValue:
		return r.errorf(ErrNotDereferenceable, r.prefix, seg)
	}
	return r.property(seg)
}

func (r *resolver) property(seg string) error {
	var (
		p     *mapping.Property
		ok    bool
		owner string
	)
	if r.kind == atComponent {
		p, ok = r.component.Property(seg)
		owner = r.component.Class
	} else {
		p, ok = r.entity.Property(seg)
		owner = r.entity.Name
	}
	if !ok {
		return r.errorf(ErrUnknownProperty, seg, owner)
	}
	r.prefix += "." + seg

	model := r.ctx.Model()
	switch t := p.Type.(type) {
	case *mapping.EntityType:
		target, ok := model.Entity(t.Entity)
		if !ok {
			return r.errorf("unknown entity %s", t.Entity)
		}
		r.kind = atAssociation
		r.target = target
		r.columns = qualify(r.alias, p.Columns)
		r.typ = t
	case *mapping.CollectionType:
		c, ok := model.Collection(t.Role)
		if !ok {
			return r.errorf("unknown collection role %s", t.Role)
		}
		r.kind = atCollection
		r.collection = c
		r.columns = qualify(r.alias, r.entity.Identifier.Columns)
		r.typ = t
		r.res.CollectionValued = true
		r.res.CollectionRole = c.Role
	case *mapping.ComponentType:
		r.kind = atComponent
		r.component = t
		r.columns = qualify(r.alias, t.Columns())
		r.typ = t
	default:
		r.kind = atValue
		r.columns = qualify(r.alias, p.Columns)
		r.typ = p.Type
	}
	return nil
}

// join records a join of table unless an equal implicit join was already
// committed, and returns the SQL alias of the joined table. The two column
// lists are compared pairwise and must have the same length.
func (r *resolver) join(table string, lhs, rhs []string) (string, error) {
	if len(lhs) != len(rhs) {
		return "", r.errorf(ErrJoinColumns, table, len(lhs), len(rhs))
	}
	key := r.prefix
	if r.opts.Policy == PolicyFrom {
		key = ""
	} else if alias, ok := r.ctx.JoinAlias(key); ok {
		return alias, nil
	}
	alias := r.ctx.NextAlias(table)
	r.res.Joins = append(r.res.Joins, Join{
		Path:     key,
		Table:    table,
		Alias:    alias,
		Kind:     r.opts.JoinKind,
		LHSAlias: r.alias,
		LHS:      lhs,
		RHS:      qualify(alias, rhs),
	})
	return alias, nil
}

func (r *resolver) joinTarget() error {
	alias, err := r.join(r.target.Table, r.columns, r.target.Identifier.Columns)
	if err != nil {
		return err
	}
	r.enter(r.target, alias)
	return nil
}

func (r *resolver) joinElements() error {
	c := r.collection
	ownerID := qualify(r.alias, r.entity.Identifier.Columns)
	alias, err := r.join(c.Table, ownerID, c.KeyColumns)
	if err != nil {
		return err
	}
	r.prefix += "." + elementsProperty
	r.res.CollectionAlias = alias

	name, isEntity := c.ElementEntity()
	var target *mapping.Entity
	if isEntity {
		var ok bool
		if target, ok = r.ctx.Model().Entity(name); !ok {
			return r.errorf("unknown entity %s", name)
		}
	}
	switch {
	case c.OneToMany:
		r.enter(target, alias)
	case isEntity:
		r.kind = atAssociation
		r.target = target
		r.alias = alias
		r.columns = qualify(alias, c.ElementColumns)
		r.typ = c.ElementType
	default:
		r.kind = atValue
		r.alias = alias
		r.columns = qualify(alias, c.ElementColumns)
		r.typ = c.ElementType
	}
	return nil
}

func (r *resolver) index(seg string) error {
	c := r.collection
	if r.opts.Policy != PolicyBase {
		clause := r.opts.Clause.String()
		return &Error{
			Kind:    KindGrammar,
			Clause:  clause,
			Token:   r.path,
			Message: fmt.Sprintf(ErrCollectionIndex, clause, c.Role),
		}
	}
	if !c.IsIndexed() {
		return r.errorf(ErrCollectionUnindexed, c.Role)
	}
	ownerID := qualify(r.alias, r.entity.Identifier.Columns)
	alias, err := r.join(c.Table, ownerID, c.KeyColumns)
	if err != nil {
		return err
	}
	r.prefix += "." + seg
	r.res.CollectionAlias = alias
	r.kind = atValue
	r.alias = alias
	r.columns = qualify(alias, c.IndexColumns)
	r.typ = c.IndexType
	return nil
}

func (r *resolver) finish() error {
	if r.kind == atCollection {
		if r.opts.Policy == PolicyBase {
			return r.errorf(ErrCollectionUnaddress, r.collection.Role)
		}
		if err := r.joinElements(); err != nil {
			return err
		}
	}
	if r.kind == atAssociation {
		if r.opts.Policy == PolicyFrom || (r.opts.Policy == PolicySelect && !r.opts.Shallow) {
			if err := r.joinTarget(); err != nil {
				return err
			}
		}
	}
	if r.kind == atEntity {
		r.res.SelectName = r.alias
	}
	r.res.Columns = r.columns
	r.res.Type = r.typ
	return nil
}

// PathParser resolves one path expression fed to it segment by segment
// through the Parser protocol. Use it with ModePath tokens.
type PathParser struct {
	opts       PathOptions
	segments   []string
	expectName bool
	result     *Resolution
}

var _ Parser = (*PathParser)(nil)

// NewPathParser creates a path parser with the given options.
func NewPathParser(opts PathOptions) *PathParser {
	return &PathParser{opts: opts}
}

// NewFromPathParser creates a path parser for joins declared in the FROM
// clause.
func NewFromPathParser(style dialect.JoinStyle, kind JoinKind) *PathParser {
	return NewPathParser(PathOptions{
		Clause:    ClauseFrom,
		Policy:    PolicyFrom,
		JoinStyle: style,
		JoinKind:  kind,
	})
}

// NewSelectPathParser creates a path parser for select items. Shallowness
// is taken from the context when the path ends.
func NewSelectPathParser() *PathParser {
	return NewPathParser(PathOptions{
		Clause:    ClauseSelect,
		Policy:    PolicySelect,
		JoinStyle: dialect.JoinTheta,
	})
}

// Start resets the parser.
func (p *PathParser) Start(Context) error {
	p.segments = p.segments[:0]
	p.expectName = true
	p.result = nil
	return nil
}

// Token consumes one segment or separator.
func (p *PathParser) Token(tok token.Token, _ Context) error {
	switch {
	case tok.Type == token.DOT && !p.expectName:
		p.expectName = true
	case isName(tok) && p.expectName:
		p.segments = append(p.segments, tok.Literal)
		p.expectName = false
	default:
		return grammarError(p.opts.Clause.String(), tok, ErrUnexpectedToken, tok)
	}
	return nil
}

// End resolves the accumulated path.
func (p *PathParser) End(ctx Context) error {
	path := strings.Join(p.segments, ".")
	if len(p.segments) == 0 || p.expectName {
		return &Error{Kind: KindGrammar, Clause: p.opts.Clause.String(), Token: path, Message: "incomplete path expression"}
	}
	opts := p.opts
	if opts.Policy == PolicySelect {
		opts.Shallow = ctx.IsShallow()
	}
	res, err := resolveSegments(ctx, path, p.segments, opts)
	if err != nil {
		return err
	}
	p.result = res
	return nil
}

// Result returns the resolution of the last completed path, or nil.
func (p *PathParser) Result() *Resolution {
	return p.result
}
