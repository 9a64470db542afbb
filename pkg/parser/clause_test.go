package parser

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/leapoql/pkg/dialect"
	"github.com/leapstack-labs/leapoql/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// callRecorder records the Parser callbacks it receives.
type callRecorder struct {
	calls  []string
	failAt string
}

func (r *callRecorder) Start(Context) error {
	r.calls = append(r.calls, "start")
	return nil
}

func (r *callRecorder) Token(tok token.Token, _ Context) error {
	r.calls = append(r.calls, tok.Literal)
	if tok.Literal == r.failAt {
		return errors.New("boom")
	}
	return nil
}

func (r *callRecorder) End(Context) error {
	r.calls = append(r.calls, "end")
	return nil
}

func TestDispatch(t *testing.T) {
	ctx := newRecordingContext(t)
	r := &callRecorder{}
	require.NoError(t, Dispatch("p.name, max(p.age)", ModeClause, r, ctx))
	assert.Equal(t, []string{"start", "p.name", ",", "max", "(", "p.age", ")", "end"}, r.calls)
}

func TestDispatch_AbortsOnError(t *testing.T) {
	ctx := newRecordingContext(t)
	r := &callRecorder{failAt: "max"}
	err := Dispatch("p.name, max(p.age)", ModeClause, r, ctx)
	require.EqualError(t, err, "boom")
	assert.Equal(t, []string{"start", "p.name", ",", "max"}, r.calls)

	r = &callRecorder{}
	err = Dispatch("p.name = 'x", ModeClause, r, ctx)
	assert.True(t, errors.Is(err, ErrGrammar))
	assert.Empty(t, r.calls, "lexical errors abort before start")
}

func TestGroupByParser(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		joins int
	}{
		{"paths", "p.name, p.address.city", "p_.name, p_.addr_city", 0},
		{"bare alias", "p", "p_.person_id", 0},
		{"component", "p.address", "p_.addr_street, p_.addr_city, p_.addr_country_id", 0},
		{"association key", "p.employer", "p_.employer_id", 0},
		{"implicit join", "p.employer.name", "company0_.name", 1},
		{"expression passes through", "p.name, length(p.name) + 1", "p_.name, length(p_.name) + 1", 0},
		{"non-alias names pass through", "foo.bar, baz", "foo.bar, baz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newRecordingContext(t)
			require.NoError(t, Dispatch(tt.input, ModeClause, NewGroupByParser(), ctx))
			assert.Equal(t, tt.want, ctx.output(ClauseGroupBy))
			assert.Len(t, ctx.joins, tt.joins)
			for _, style := range ctx.joinStyles {
				assert.Equal(t, dialect.JoinTheta, style)
			}
		})
	}
}

func TestGroupByParser_Reuse(t *testing.T) {
	p := NewGroupByParser()

	first := newRecordingContext(t)
	require.NoError(t, Dispatch("p.name", ModeClause, p, first))
	second := newRecordingContext(t)
	require.NoError(t, Dispatch("p.age", ModeClause, p, second))

	assert.Equal(t, "p_.name", first.output(ClauseGroupBy))
	assert.Equal(t, "p_.age", second.output(ClauseGroupBy))
}

func TestGroupByParser_Errors(t *testing.T) {
	ctx := newRecordingContext(t)
	err := Dispatch("p.nicknames", ModeClause, NewGroupByParser(), ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPathResolution))
	assert.Contains(t, err.Error(), "group by")
}

func TestOrderByParser(t *testing.T) {
	ctx := newRecordingContext(t)
	require.NoError(t, Dispatch("p.name desc, p.address.country.name asc", ModeClause, NewOrderByParser(), ctx))
	assert.Equal(t, "p_.name desc, country0_.name asc", ctx.output(ClauseOrderBy))
	assert.Len(t, ctx.joins, 1)
}

func TestConditionParser(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		params []string
		joins  int
	}{
		{"comparison", "p.name = 'O''Brien'", "p_.name = 'O''Brien'", nil, 0},
		{"parameters", "p.name = :name and p.age > ?", "p_.name = ? and p_.age > ?", []string{"name", "?"}, 0},
		{"association key", "p.employer = c", "p_.employer_id = c_.company_id", nil, 0},
		{"implicit join", "p.address.country.name like 'N%'", "country0_.name like 'N%'", nil, 1},
		{"component tuple", "p.address is not null", "(p_.addr_street, p_.addr_city, p_.addr_country_id) is not null", nil, 0},
		{"nested parens", "(p.age > 1 or (p.age < 0))", "(p_.age > 1 or (p_.age < 0))", nil, 0},
		{"functions pass through", "upper(p.name) = 'X'", "upper(p_.name) = 'X'", nil, 0},
		{"one-to-many element", "p.orders.total > 10", "orders0_.total > 10", nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newRecordingContext(t)
			require.NoError(t, Dispatch(tt.input, ModeClause, NewWhereParser(), ctx))
			assert.Equal(t, tt.want, ctx.output(ClauseWhere))
			assert.Equal(t, tt.params, ctx.params)
			assert.Len(t, ctx.joins, tt.joins)
		})
	}
}

func TestConditionParser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    error
		message string
	}{
		{"unclosed", "(p.age > 1", ErrGrammar, "unclosed ("},
		{"unopened", "p.age > 1)", ErrGrammar, "unexpected )"},
		{"unknown property", "p.nosuch = 1", ErrPathResolution, "nosuch"},
		{"collection", "p.orders = 1", ErrPathResolution, "must be dereferenced"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newRecordingContext(t)
			err := Dispatch(tt.input, ModeClause, NewWhereParser(), ctx)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestHavingParser(t *testing.T) {
	ctx := newRecordingContext(t)
	require.NoError(t, Dispatch("count(p.id) > :min", ModeClause, NewHavingParser(), ctx))
	assert.Equal(t, "count(p_.person_id) > ?", ctx.output(ClauseHaving))
	assert.Empty(t, ctx.output(ClauseWhere))
	assert.Equal(t, []string{"min"}, ctx.params)

	err := Dispatch("count(p.id", ModeClause, NewHavingParser(), ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "having")
}
