// Package translator compiles complete object queries into SQL.
// It splits a query into clauses, declares FROM aliases, runs the clause
// parsers of package parser and assembles their output.
package translator

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapoql/pkg/dialect"
	"github.com/leapstack-labs/leapoql/pkg/mapping"
	"github.com/leapstack-labs/leapoql/pkg/parser"
)

// Translator compiles queries against one mapping model. It holds no
// per-query state and is safe for concurrent use.
type Translator struct {
	model   *mapping.Model
	dialect *dialect.Dialect
	shallow bool
	logger  *slog.Logger
}

// Config holds translator configuration.
type Config struct {
	// Dialect is the target SQL dialect (default dialect if nil)
	Dialect *dialect.Dialect
	// Shallow queries select associated entities by identifier only
	Shallow bool
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates a translator for model.
func New(model *mapping.Model, cfg Config) (*Translator, error) {
	if model == nil {
		return nil, fmt.Errorf("mapping model is required")
	}
	d := cfg.Dialect
	if d == nil {
		d = dialect.Default()
	}
	if d == nil {
		return nil, dialect.ErrDialectRequired
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Translator{model: model, dialect: d, shallow: cfg.Shallow, logger: logger}, nil
}

// Dialect returns the target dialect.
func (t *Translator) Dialect() *dialect.Dialect {
	return t.dialect
}

// Compile compiles one query.
func (t *Translator) Compile(oql string) (*Query, error) {
	clauses, err := splitClauses(oql)
	if err != nil {
		return nil, fmt.Errorf("failed to compile query: %w", err)
	}
	c := newCompilation(t)

	if err := c.from(clauses[parser.ClauseFrom]); err != nil {
		return nil, fmt.Errorf("failed to compile query: %w", err)
	}

	selectText, ok := clauses[parser.ClauseSelect]
	if !ok {
		// without a select list the first declared entity is selected
		selectText = c.roots[0].name
	}
	steps := []struct {
		clause parser.Clause
		text   string
		parser parser.Parser
	}{
		{parser.ClauseSelect, selectText, parser.NewSelectParser()},
		{parser.ClauseWhere, clauses[parser.ClauseWhere], parser.NewWhereParser()},
		{parser.ClauseGroupBy, clauses[parser.ClauseGroupBy], parser.NewGroupByParser()},
		{parser.ClauseHaving, clauses[parser.ClauseHaving], parser.NewHavingParser()},
		{parser.ClauseOrderBy, clauses[parser.ClauseOrderBy], parser.NewOrderByParser()},
	}
	for _, s := range steps {
		if _, present := clauses[s.clause]; !present && s.clause != parser.ClauseSelect {
			continue
		}
		if err := parser.Dispatch(s.text, parser.ModeClause, s.parser, c); err != nil {
			return nil, fmt.Errorf("failed to compile query: %w", err)
		}
	}

	q := c.query
	q.OQL = oql
	q.SQL = c.render()
	t.logger.Debug("compiled query", "oql", oql, "sql", q.SQL, "scalars", len(q.Scalars))
	return q, nil
}

// render assembles the SQL statement from the clause buffers.
func (c *compilation) render() string {
	var b strings.Builder
	b.WriteString("select ")
	if c.query.Distinct {
		b.WriteString("distinct ")
	}
	b.WriteString(c.buffer(parser.ClauseSelect))

	b.WriteString(" from ")
	for i, r := range c.roots {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.table + " " + r.alias)
		for _, j := range r.joins {
			b.WriteString(j)
		}
	}
	for _, t := range c.thetaTables {
		b.WriteString(t)
	}

	conditions := append([]string(nil), c.thetaConditions...)
	if where := c.buffer(parser.ClauseWhere); where != "" {
		if len(conditions) > 0 {
			where = "(" + where + ")"
		}
		conditions = append(conditions, where)
	}
	if len(conditions) > 0 {
		b.WriteString(" where " + strings.Join(conditions, " and "))
	}

	for _, clause := range []parser.Clause{parser.ClauseGroupBy, parser.ClauseHaving, parser.ClauseOrderBy} {
		if text := c.buffer(clause); text != "" {
			b.WriteString(" " + clause.String() + " " + text)
		}
	}
	return b.String()
}
