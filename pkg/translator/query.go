package translator

import (
	"github.com/leapstack-labs/leapoql/pkg/parser"
)

// Query is a compiled object query.
type Query struct {
	OQL string `json:"oql"`
	SQL string `json:"sql"`

	// Scalars describe the result columns, one entry per select item.
	Scalars []parser.Scalar `json:"-"`

	// SelectClasses are the entities materialized from the result row.
	SelectClasses []SelectClass `json:"select_classes,omitempty"`

	// HolderClass is the constructor result class, if any.
	HolderClass string `json:"holder_class,omitempty"`

	Distinct    bool         `json:"distinct,omitempty"`
	Collections []Collection `json:"collections,omitempty"`

	// Parameters lists parameter names in placeholder order. Positional
	// parameters are named "?".
	Parameters []string `json:"parameters,omitempty"`
}

// SelectClass is an entity selected under a SQL alias. Alias is empty
// when the entity is selected shallow, through a foreign key of another
// table.
type SelectClass struct {
	Alias  string `json:"alias,omitempty"`
	Entity string `json:"entity"`
}

// Collection is a collection fetched by the query.
type Collection struct {
	Role  string `json:"role"`
	Alias string `json:"alias"`
}

// ScalarTypes returns the type names of the result columns.
func (q *Query) ScalarTypes() []string {
	out := make([]string, len(q.Scalars))
	for i, s := range q.Scalars {
		if s.Type != nil {
			out[i] = s.Type.Name()
		}
	}
	return out
}
