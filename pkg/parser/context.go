// Package parser compiles the clauses of an object query into SQL fragments.
//
// Clause text is tokenized by the Lexer and pushed through a Parser by
// Dispatch. Every path expression (p.address.city) is resolved by
// ResolvePath against the mapping model supplied by the Context, which also
// receives the generated SQL and result metadata.
package parser

import (
	"log/slog"

	"github.com/leapstack-labs/leapoql/pkg/dialect"
	"github.com/leapstack-labs/leapoql/pkg/mapping"
)

// Clause identifies a clause of the query and its SQL output buffer.
type Clause int

const (
	ClauseSelect Clause = iota
	ClauseFrom
	ClauseWhere
	ClauseGroupBy
	ClauseHaving
	ClauseOrderBy
)

var clauseNames = [...]string{
	ClauseSelect:  "select",
	ClauseFrom:    "from",
	ClauseWhere:   "where",
	ClauseGroupBy: "group by",
	ClauseHaving:  "having",
	ClauseOrderBy: "order by",
}

func (c Clause) String() string {
	if c >= 0 && int(c) < len(clauseNames) {
		return clauseNames[c]
	}
	return "unknown"
}

// Alias is a query alias declared in the FROM clause.
type Alias struct {
	Name     string
	SQLAlias string

	// Entity is the aliased entity; nil for aliases over value collections.
	Entity *mapping.Entity

	// Collection is set when the alias was declared by joining a collection.
	Collection *mapping.Collection
}

// Scalar is one entry of the select list: the SQL expressions producing one
// result value and its mapped type.
type Scalar struct {
	Columns []string
	Aliases []string
	Type    mapping.Type
}

// Context is the query-translation state a clause parser reads from and
// writes to. One Context belongs to exactly one compilation.
type Context interface {
	Model() *mapping.Model
	Dialect() *dialect.Dialect
	Logger() *slog.Logger

	// IsShallow reports whether associated entities are fetched by
	// identifier only.
	IsShallow() bool

	// AliasFor returns the alias declared under name.
	AliasFor(name string) (Alias, bool)
	IsAlias(name string) bool

	// NextAlias returns a fresh SQL alias for table.
	NextAlias(table string) string

	// JoinAlias returns the SQL alias of an implicit join already committed
	// for path, so repeated navigations share one join.
	JoinAlias(path string) (string, bool)

	// ImportedClass resolves a class name through the import map.
	ImportedClass(name string) (string, bool)

	// AddJoin adds j to the FROM clause rendered in the given style.
	AddJoin(j Join, style dialect.JoinStyle) error

	// Append appends SQL text to the clause's output buffer.
	Append(clause Clause, sql string)

	// AddParameter records a query parameter in order of appearance.
	AddParameter(name string)

	AddScalar(s Scalar)
	AddSelectClass(alias, entity string)
	SetHolderClass(class string)
	SetDistinct(distinct bool)
	AddCollection(role, alias string)
}
