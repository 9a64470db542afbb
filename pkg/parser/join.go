package parser

import (
	"strings"

	"github.com/leapstack-labs/leapoql/pkg/dialect"
)

// JoinKind is the SQL join type.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
)

func (k JoinKind) String() string {
	if k == LeftJoin {
		return "left outer join"
	}
	return "inner join"
}

// Join is one table joined while resolving a path expression.
type Join struct {
	// Path is the path prefix that produced the join, e.g. p.employer.
	// Empty for joins that must never be shared.
	Path string

	Table string
	Alias string
	Kind  JoinKind

	// LHSAlias is the SQL alias the join hangs off.
	LHSAlias string
	// LHS and RHS are qualified columns compared pairwise.
	LHS []string
	RHS []string
}

// Condition renders the join predicate.
func (j Join) Condition() string {
	parts := make([]string, len(j.LHS))
	for i := range j.LHS {
		parts[i] = j.LHS[i] + "=" + j.RHS[i]
	}
	return strings.Join(parts, " and ")
}

// Fragment renders the join for the FROM clause. Theta-style joins only
// contribute the table; their Condition belongs in the WHERE clause.
func (j Join) Fragment(style dialect.JoinStyle) string {
	if style == dialect.JoinTheta {
		return ", " + j.Table + " " + j.Alias
	}
	return " " + j.Kind.String() + " " + j.Table + " " + j.Alias + " on " + j.Condition()
}

func qualify(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return out
}
