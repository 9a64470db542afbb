package parser

import (
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapoql/internal/testutil"
	"github.com/leapstack-labs/leapoql/pkg/dialect"
	"github.com/leapstack-labs/leapoql/pkg/mapping"
	"github.com/stretchr/testify/require"
)

// recordingContext is a Context that records everything written to it.
// The aliases p (Person), c (Company), o (Order) and n (Person.nicknames)
// are declared with SQL aliases p_, c_, o_ and n_.
type recordingContext struct {
	model   *mapping.Model
	dialect *dialect.Dialect
	logger  *slog.Logger
	shallow bool

	aliases     map[string]Alias
	counter     int
	joinAliases map[string]string

	joins         []Join
	joinStyles    []dialect.JoinStyle
	out           map[Clause]*strings.Builder
	params        []string
	scalars       []Scalar
	selectClasses []string
	holder        string
	distinct      bool
	collections   []string
}

var _ Context = (*recordingContext)(nil)

func newRecordingContext(t *testing.T) *recordingContext {
	t.Helper()
	m := testutil.NewModel(t)
	ctx := &recordingContext{
		model:       m,
		dialect:     dialect.ANSI,
		logger:      testutil.NewTestLogger(t),
		aliases:     make(map[string]Alias),
		joinAliases: make(map[string]string),
		out:         make(map[Clause]*strings.Builder),
	}
	for name, entity := range map[string]string{"p": "Person", "c": "Company", "o": "Order"} {
		e, ok := m.Entity(entity)
		require.True(t, ok, entity)
		ctx.aliases[name] = Alias{Name: name, SQLAlias: name + "_", Entity: e}
	}
	nicknames, ok := m.Collection("org.acme.Person.nicknames")
	require.True(t, ok)
	ctx.aliases["n"] = Alias{Name: "n", SQLAlias: "n_", Collection: nicknames}
	return ctx
}

func (c *recordingContext) Model() *mapping.Model     { return c.model }
func (c *recordingContext) Dialect() *dialect.Dialect { return c.dialect }
func (c *recordingContext) Logger() *slog.Logger      { return c.logger }
func (c *recordingContext) IsShallow() bool           { return c.shallow }

func (c *recordingContext) AliasFor(name string) (Alias, bool) {
	a, ok := c.aliases[name]
	return a, ok
}

func (c *recordingContext) IsAlias(name string) bool {
	_, ok := c.aliases[name]
	return ok
}

func (c *recordingContext) NextAlias(table string) string {
	alias := fmt.Sprintf("%s%d_", table, c.counter)
	c.counter++
	return alias
}

func (c *recordingContext) JoinAlias(path string) (string, bool) {
	a, ok := c.joinAliases[path]
	return a, ok
}

func (c *recordingContext) ImportedClass(name string) (string, bool) {
	return c.model.Import(name)
}

func (c *recordingContext) AddJoin(j Join, style dialect.JoinStyle) error {
	if j.Path != "" {
		c.joinAliases[j.Path] = j.Alias
	}
	c.joins = append(c.joins, j)
	c.joinStyles = append(c.joinStyles, style)
	return nil
}

func (c *recordingContext) Append(clause Clause, sql string) {
	b, ok := c.out[clause]
	if !ok {
		b = &strings.Builder{}
		c.out[clause] = b
	}
	b.WriteString(sql)
}

func (c *recordingContext) AddParameter(name string) { c.params = append(c.params, name) }
func (c *recordingContext) AddScalar(s Scalar)       { c.scalars = append(c.scalars, s) }
func (c *recordingContext) SetHolderClass(cl string) { c.holder = cl }
func (c *recordingContext) SetDistinct(d bool)       { c.distinct = d }

func (c *recordingContext) AddSelectClass(alias, entity string) {
	c.selectClasses = append(c.selectClasses, alias+":"+entity)
}

func (c *recordingContext) AddCollection(role, alias string) {
	c.collections = append(c.collections, role+":"+alias)
}

// output returns the SQL written to clause.
func (c *recordingContext) output(clause Clause) string {
	if b, ok := c.out[clause]; ok {
		return b.String()
	}
	return ""
}
