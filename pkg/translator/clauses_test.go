package translator

import (
	"testing"

	"github.com/leapstack-labs/leapoql/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitClauses(t *testing.T) {
	clauses, err := splitClauses("select p.name from Person p where p.age > (select max(x) from y)  group by p.name having count(*) > 1 order by p.name desc")
	require.NoError(t, err)
	assert.Equal(t, map[parser.Clause]string{
		parser.ClauseSelect:  "p.name",
		parser.ClauseFrom:    "Person p",
		parser.ClauseWhere:   "p.age > (select max(x) from y)",
		parser.ClauseGroupBy: "p.name",
		parser.ClauseHaving:  "count(*) > 1",
		parser.ClauseOrderBy: "p.name desc",
	}, clauses)
}

func TestSplitClauses_FromOnly(t *testing.T) {
	clauses, err := splitClauses("FROM Person")
	require.NoError(t, err)
	assert.Equal(t, map[parser.Clause]string{parser.ClauseFrom: "Person"}, clauses)
}

func TestSplitClauses_KeywordNames(t *testing.T) {
	clauses, err := splitClauses("select o.total from Order o where o.quantity > 1 order by o.total")
	require.NoError(t, err)
	assert.Equal(t, map[parser.Clause]string{
		parser.ClauseSelect:  "o.total",
		parser.ClauseFrom:    "Order o",
		parser.ClauseWhere:   "o.quantity > 1",
		parser.ClauseOrderBy: "o.total",
	}, clauses)

	clauses, err = splitClauses("from Group g group by g.name")
	require.NoError(t, err)
	assert.Equal(t, "Group g", clauses[parser.ClauseFrom])
	assert.Equal(t, "g.name", clauses[parser.ClauseGroupBy])
}

func TestSplitClauses_Errors(t *testing.T) {
	tests := []struct {
		oql     string
		message string
	}{
		{"", "query must start with select or from"},
		{"p.name from Person p", "query must start with select or from"},
		{"select p.name", "from clause is required"},
		{"select p.name from Person p where p.age > 1 where p.age < 3", "where clause is misplaced"},
		{"select p.name from Person p order by p.name group by p.name", "group by clause is misplaced"},
		{"select p.name from Person p where p.name = 'x", parser.ErrUnterminatedString},
	}

	for _, tt := range tests {
		t.Run(tt.oql, func(t *testing.T) {
			_, err := splitClauses(tt.oql)
			require.Error(t, err)
			assert.ErrorIs(t, err, parser.ErrGrammar)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
