package translator

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/leapstack-labs/leapoql/internal/testutil"
	"github.com/leapstack-labs/leapoql/pkg/dialect"
	"github.com/leapstack-labs/leapoql/pkg/mapping"
	"github.com/leapstack-labs/leapoql/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTranslator(t *testing.T, cfg Config) *Translator {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = testutil.NewTestLogger(t)
	}
	tr, err := New(testutil.NewModel(t), cfg)
	require.NoError(t, err)
	return tr
}

func TestNew(t *testing.T) {
	_, err := New(nil, Config{})
	require.Error(t, err)

	tr, err := New(testutil.NewModel(t), Config{})
	require.NoError(t, err)
	assert.Equal(t, dialect.Default(), tr.Dialect())
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		dialect *dialect.Dialect
		oql     string
		sql     string
	}{
		{
			name: "where and order by",
			oql:  "select p.name from Person p where p.age > :age order by p.name",
			sql:  "select person0_.name as col_0_0_ from person person0_ where person0_.age > ? order by person0_.name",
		},
		{
			name: "implicit join in select",
			oql:  "select p.employer.name from Person p where p.age > 1",
			sql: "select company1_.name as col_0_0_ from person person0_, company company1_" +
				" where person0_.employer_id=company1_.company_id and (person0_.age > 1)",
		},
		{
			name: "explicit ansi join",
			oql:  "select c.name from Person p join p.employer c where p.name = 'x'",
			sql: "select company1_.name as col_0_0_ from person person0_" +
				" inner join company company1_ on person0_.employer_id=company1_.company_id" +
				" where person0_.name = 'x'",
		},
		{
			name:    "explicit join without ansi support",
			dialect: dialect.Legacy,
			oql:     "select c.name from Person p join p.employer c where p.name = 'x'",
			sql: "select company1_.name as col_0_0_ from person person0_, company company1_" +
				" where person0_.employer_id=company1_.company_id and (person0_.name = 'x')",
		},
		{
			name: "left join selects root by default",
			oql:  "from Person p left outer join p.employer c",
			sql: "select person0_.person_id as col_0_0_ from person person0_" +
				" left outer join company company1_ on person0_.employer_id=company1_.company_id",
		},
		{
			name: "group by and having",
			oql:  "select p.address.city, count(*) from Person p group by p.address.city having count(*) > 1",
			sql: "select person0_.addr_city as col_0_0_, count(*) as col_1_0_ from person person0_" +
				" group by person0_.addr_city having count(*) > 1",
		},
		{
			name: "value collection alias",
			oql:  "select n from Person p join p.nicknames n where n like 'A%'",
			sql: "select person_nic1_.nickname as col_0_0_ from person person0_" +
				" inner join person_nickname person_nic1_ on person0_.person_id=person_nic1_.person_id" +
				" where person_nic1_.nickname like 'A%'",
		},
		{
			name: "many-to-many join",
			oql:  "select f.name from Person p join p.friends f",
			sql: "select person2_.name as col_0_0_ from person person0_" +
				" inner join person_friend person_fri1_ on person0_.person_id=person_fri1_.person_id" +
				" inner join person person2_ on person_fri1_.friend_id=person2_.person_id",
		},
		{
			name: "several roots",
			oql:  "select p.name, c.name from Person p, Company c where p.employer = c",
			sql: "select person0_.name as col_0_0_, company1_.name as col_1_0_ from person person0_, company company1_" +
				" where person0_.employer_id = company1_.company_id",
		},
		{
			name: "default alias",
			oql:  "from Person",
			sql:  "select person0_.person_id as col_0_0_ from person person0_",
		},
		{
			name: "qualified entity name",
			oql:  "select o.total from org.acme.Order as o",
			sql:  "select orders0_.total as col_0_0_ from orders orders0_",
		},
		{
			name: "entity named like a keyword",
			oql:  "select o.total from Order o",
			sql:  "select orders0_.total as col_0_0_ from orders orders0_",
		},
		{
			name: "keyword entity with default alias",
			oql:  "from Order where Order.quantity > 1 order by Order.total",
			sql:  "select orders0_.order_id as col_0_0_ from orders orders0_ where orders0_.quantity > 1 order by orders0_.total",
		},
		{
			name: "unresolved call argument kept verbatim",
			oql:  "select upper(p.nosuch) from Person p",
			sql:  "select upper(p.nosuch) as col_0_0_ from person person0_",
		},
		{
			name: "distinct",
			oql:  "SELECT DISTINCT p.name FROM Person p",
			sql:  "select distinct person0_.name as col_0_0_ from person person0_",
		},
		{
			name: "shared implicit joins",
			oql:  "select p.employer.name from Person p where p.employer.city = 'Oslo' order by p.employer.name",
			sql: "select company1_.name as col_0_0_ from person person0_, company company1_" +
				" where person0_.employer_id=company1_.company_id and (company1_.city = 'Oslo') order by company1_.name",
		},
		{
			name: "clause keywords inside parentheses",
			oql:  "select p.name from Person p where p.age in (select 1 from dual)",
			sql:  "select person0_.name as col_0_0_ from person person0_ where person0_.age in (select 1 from dual)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTranslator(t, Config{Dialect: tt.dialect})
			q, err := tr.Compile(tt.oql)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, q.SQL)
			assert.Equal(t, tt.oql, q.OQL)
		})
	}
}

func TestCompile_Metadata(t *testing.T) {
	tr := newTranslator(t, Config{})

	q, err := tr.Compile("select distinct new PersonSummary(p.id, p.name), p from Person p where p.name = :name or p.age = ?")
	require.NoError(t, err)
	assert.True(t, q.Distinct)
	assert.Equal(t, "org.acme.dto.PersonSummary", q.HolderClass)
	assert.Equal(t, []string{"long", "string", "org.acme.Person"}, q.ScalarTypes())
	assert.Equal(t, []SelectClass{{Alias: "person0_", Entity: "org.acme.Person"}}, q.SelectClasses)
	assert.Equal(t, []string{"name", "?"}, q.Parameters)

	q, err = tr.Compile("from Person p left join fetch p.orders")
	require.NoError(t, err)
	assert.Equal(t, []Collection{{Role: "org.acme.Person.orders", Alias: "orders1_"}}, q.Collections)
}

func TestCompile_Aggregates(t *testing.T) {
	tr := newTranslator(t, Config{})

	q, err := tr.Compile("select count(*), sum(p.amount), avg(sum(p.amount)) from Person p")
	require.NoError(t, err)
	require.Len(t, q.Scalars, 3)
	assert.Equal(t, []mapping.Type{mapping.Long, mapping.BigDecimal, mapping.Double},
		[]mapping.Type{q.Scalars[0].Type, q.Scalars[1].Type, q.Scalars[2].Type})
}

func TestCompile_Shallow(t *testing.T) {
	deep := newTranslator(t, Config{})
	q, err := deep.Compile("select p.employer from Person p")
	require.NoError(t, err)
	assert.Equal(t, "select company1_.company_id as col_0_0_ from person person0_, company company1_"+
		" where person0_.employer_id=company1_.company_id", q.SQL)

	shallow := newTranslator(t, Config{Shallow: true})
	q, err = shallow.Compile("select p.employer from Person p")
	require.NoError(t, err)
	assert.Equal(t, "select person0_.employer_id as col_0_0_ from person person0_", q.SQL)
	// the company table is not in the query, so there is no alias to name
	assert.Equal(t, []SelectClass{{Entity: "org.acme.Company"}}, q.SelectClasses)

	out, err := json.Marshal(q.SelectClasses)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"entity":"org.acme.Company"}]`, string(out))
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		dialect *dialect.Dialect
		oql     string
		kind    error
		message string
	}{
		{"missing from", nil, "select p.name", parser.ErrGrammar, "from clause is required"},
		{"bad start", nil, "where p.name = 1 from Person p", parser.ErrGrammar, "query must start with select or from"},
		{"misplaced clause", nil, "from Person p select p.name", parser.ErrGrammar, "select clause is misplaced"},
		{"group without by", nil, "select p.name from Person p group p.name", parser.ErrGrammar, "unexpected"},
		{"unknown entity", nil, "from Nope n", parser.ErrClassResolution, "could not resolve entity Nope"},
		{"duplicate alias", nil, "from Person p, Company p", parser.ErrGrammar, "alias p is already defined"},
		{"join on scalar", nil, "from Person p join p.name x", parser.ErrGrammar, "not an association or collection"},
		{"right join", nil, "from Person p right join p.employer e", parser.ErrGrammar, "right joins are not supported"},
		{"outer join without ansi", dialect.Legacy, "from Person p left join p.employer e", parser.ErrGrammar, "outer joins require ANSI join support"},
		{"empty from", nil, "select p.name from", parser.ErrGrammar, "from clause is empty"},
		{"unknown alias", nil, "select x.name from Person p", parser.ErrPathResolution, `alias "x" is not defined`},
		{"bad select", nil, "select (p.name) from Person p", parser.ErrGrammar, "aggregate function expected before ("},
		{"unknown class", nil, "select new Nope(p.id) from Person p", parser.ErrClassResolution, "Nope"},
		{"unbalanced where", nil, "from Person p where (p.age > 1", parser.ErrGrammar, "unclosed ("},
		{"index in from", nil, "from Person p join p.nicknames.index i", parser.ErrGrammar, "illegal syntax near collection-valued path expression in from"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTranslator(t, Config{Dialect: tt.dialect})
			q, err := tr.Compile(tt.oql)
			require.Error(t, err)
			assert.Nil(t, q)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestCompile_Concurrent(t *testing.T) {
	tr := newTranslator(t, Config{})

	var g errgroup.Group
	results := make([]string, 16)
	for i := range results {
		g.Go(func() error {
			q, err := tr.Compile(fmt.Sprintf("select p.employer.name from Person p where p.age > %d", i))
			if err != nil {
				return err
			}
			results[i] = q.SQL
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for i, sql := range results {
		assert.Equal(t, fmt.Sprintf("select company1_.name as col_0_0_ from person person0_, company company1_"+
			" where person0_.employer_id=company1_.company_id and (person0_.age > %d)", i), sql)
	}
}

func TestNextAlias(t *testing.T) {
	c := newCompilation(newTranslator(t, Config{}))
	assert.Equal(t, "person0_", c.NextAlias("person"))
	assert.Equal(t, "person_nic1_", c.NextAlias("person_nickname"))
	assert.Equal(t, "schemaorde2_", c.NextAlias("Schema.Orders"))
	assert.Equal(t, "x3_", c.NextAlias("42"))
}

func TestCompile_LogsQueries(t *testing.T) {
	logger, logs := testutil.NewCaptureLogger()
	tr := newTranslator(t, Config{Logger: logger})

	_, err := tr.Compile("from Person p")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "compiled query")
	assert.Contains(t, logs.String(), "from person person0_")
}

func TestCompile_MismatchedJoinColumns(t *testing.T) {
	m := mapping.NewModel()
	company := mapping.NewEntity("Company", "company", &mapping.Property{Name: "id", Columns: []string{"company_id"}, Type: mapping.Long})
	require.NoError(t, company.AddProperty(&mapping.Property{Name: "name", Columns: []string{"name"}, Type: mapping.String}))
	person := mapping.NewEntity("Person", "person", &mapping.Property{Name: "id", Columns: []string{"person_id"}, Type: mapping.Long})
	require.NoError(t, person.AddProperty(&mapping.Property{Name: "employer", Columns: []string{"emp_a", "emp_b"}, Type: &mapping.EntityType{Entity: "Company"}}))
	require.NoError(t, m.AddEntity(company))
	require.NoError(t, m.AddEntity(person))

	tr, err := New(m, Config{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)

	for _, oql := range []string{
		"select p.employer.name from Person p",
		"select c.name from Person p join p.employer c",
		"from Person p where p.employer.name = 'x'",
	} {
		_, err := tr.Compile(oql)
		require.Error(t, err, oql)
		assert.True(t, errors.Is(err, parser.ErrPathResolution), "got %v", err)
		assert.Contains(t, err.Error(), "cannot join company")
	}
}
