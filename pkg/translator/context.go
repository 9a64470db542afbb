package translator

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapoql/pkg/dialect"
	"github.com/leapstack-labs/leapoql/pkg/mapping"
	"github.com/leapstack-labs/leapoql/pkg/parser"
)

// maxAliasPrefix bounds the table-derived part of generated SQL aliases.
const maxAliasPrefix = 10

// compilation is the state of compiling one query.
type compilation struct {
	t *Translator

	aliases     map[string]parser.Alias
	aliasCount  int
	joinAliases map[string]string // implicit join path -> SQL alias

	roots           []*root
	rootOf          map[string]*root // SQL alias -> FROM item holding it
	thetaTables     []string
	thetaConditions []string

	buffers map[parser.Clause]*strings.Builder
	query   *Query
}

// root is one comma-separated FROM item with its ANSI joins.
type root struct {
	name  string
	table string
	alias string
	joins []string
}

var _ parser.Context = (*compilation)(nil)

func newCompilation(t *Translator) *compilation {
	return &compilation{
		t:           t,
		aliases:     make(map[string]parser.Alias),
		joinAliases: make(map[string]string),
		rootOf:      make(map[string]*root),
		buffers:     make(map[parser.Clause]*strings.Builder),
		query:       &Query{},
	}
}

func (c *compilation) Model() *mapping.Model     { return c.t.model }
func (c *compilation) Dialect() *dialect.Dialect { return c.t.dialect }
func (c *compilation) Logger() *slog.Logger      { return c.t.logger }
func (c *compilation) IsShallow() bool           { return c.t.shallow }

func (c *compilation) IsAlias(name string) bool {
	_, ok := c.aliases[name]
	return ok
}

func (c *compilation) AddParameter(name string) {
	c.query.Parameters = append(c.query.Parameters, name)
}

func (c *compilation) SetHolderClass(class string) {
	c.query.HolderClass = class
}

func (c *compilation) SetDistinct(distinct bool) {
	c.query.Distinct = distinct
}

func (c *compilation) AddScalar(s parser.Scalar) {
	c.query.Scalars = append(c.query.Scalars, s)
}

func (c *compilation) buffer(clause parser.Clause) string {
	if b, ok := c.buffers[clause]; ok {
		return b.String()
	}
	return ""
}

func (c *compilation) AliasFor(name string) (parser.Alias, bool) {
	a, ok := c.aliases[name]
	return a, ok
}

func (c *compilation) ImportedClass(name string) (string, bool) {
	return c.t.model.Import(name)
}

// NextAlias derives a SQL alias from the table name and a per-query
// counter, e.g. person0_.
func (c *compilation) NextAlias(table string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(table) {
		if b.Len() == maxAliasPrefix {
			break
		}
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9' && b.Len() > 0) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		b.WriteString("x")
	}
	alias := b.String() + strconv.Itoa(c.aliasCount) + "_"
	c.aliasCount++
	return alias
}

func (c *compilation) JoinAlias(path string) (string, bool) {
	a, ok := c.joinAliases[path]
	return a, ok
}

// AddJoin places a join in the FROM clause. ANSI joins follow the FROM
// item they hang off; theta joins are appended as extra FROM items with
// their condition added to WHERE.
func (c *compilation) AddJoin(j parser.Join, style dialect.JoinStyle) error {
	if _, dup := c.rootOf[j.Alias]; dup {
		return nil
	}
	r := c.rootOf[j.LHSAlias]
	theta := style == dialect.JoinTheta || r == nil
	if theta && j.Kind == parser.LeftJoin {
		return &parser.Error{
			Kind:    parser.KindGrammar,
			Clause:  parser.ClauseFrom.String(),
			Token:   j.Table,
			Message: fmt.Sprintf("outer joins require ANSI join support, which dialect %s lacks", c.t.dialect.GetName()),
		}
	}
	if j.Path != "" {
		c.joinAliases[j.Path] = j.Alias
	}

	if theta {
		c.thetaTables = append(c.thetaTables, j.Fragment(dialect.JoinTheta))
		c.thetaConditions = append(c.thetaConditions, j.Condition())
		c.rootOf[j.Alias] = nil
		return nil
	}
	r.joins = append(r.joins, j.Fragment(dialect.JoinANSI))
	c.rootOf[j.Alias] = r
	return nil
}

func (c *compilation) Append(clause parser.Clause, sql string) {
	b, ok := c.buffers[clause]
	if !ok {
		b = &strings.Builder{}
		c.buffers[clause] = b
	}
	b.WriteString(sql)
}

func (c *compilation) AddSelectClass(alias, entity string) {
	c.query.SelectClasses = append(c.query.SelectClasses, SelectClass{Alias: alias, Entity: entity})
}

func (c *compilation) AddCollection(role, alias string) {
	c.query.Collections = append(c.query.Collections, Collection{Role: role, Alias: alias})
}
