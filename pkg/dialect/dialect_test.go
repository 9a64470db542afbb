package dialect

import (
	"testing"

	"github.com/leapstack-labs/leapoql/pkg/mapping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinStyleString(t *testing.T) {
	assert.Equal(t, "theta", JoinTheta.String())
	assert.Equal(t, "ansi", JoinANSI.String())
	assert.Equal(t, "unknown", JoinStyle(42).String())
}

func TestFunctionLookup(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"count", true},
		{"COUNT", true}, // case insensitive
		{"Sum", true},
		{"current_date", true},
		{"now", false}, // postgres only
		{"p", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ANSI.IsFunction(tt.name))
		})
	}
}

func TestReturnTypes(t *testing.T) {
	tests := []struct {
		fn   string
		arg  mapping.Type
		want mapping.Type
	}{
		{"count", nil, mapping.Long},
		{"count", mapping.String, mapping.Long},
		{"sum", mapping.Integer, mapping.Long},
		{"sum", mapping.Float, mapping.Double},
		{"sum", mapping.BigDecimal, mapping.BigDecimal},
		{"avg", mapping.Integer, mapping.Double},
		{"max", mapping.Date, mapping.Date},
		{"upper", mapping.String, mapping.String},
		{"length", mapping.String, mapping.Integer},
		{"current_date", nil, mapping.Date},
	}

	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			f, ok := ANSI.Function(tt.fn)
			require.True(t, ok)
			got, ok := f.ReturnType(tt.arg)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReturnType_Unresolvable(t *testing.T) {
	f, ok := ANSI.Function("max")
	require.True(t, ok)
	_, ok = f.ReturnType(nil)
	assert.False(t, ok)
}

func TestFunctionFlags(t *testing.T) {
	cd, ok := ANSI.Function("current_date")
	require.True(t, ok)
	assert.False(t, cd.HasArguments)
	assert.False(t, cd.HasParentheses)

	now, ok := Postgres.Function("now")
	require.True(t, ok)
	assert.False(t, now.HasArguments)
	assert.True(t, now.HasParentheses)

	assert.True(t, ANSI.IsAggregate("avg"))
	assert.False(t, ANSI.IsAggregate("upper"))
}

func TestAliases(t *testing.T) {
	f, ok := Postgres.Function("SUBSTR")
	require.True(t, ok)
	assert.Equal(t, "substring", f.Name)

	_, ok = ANSI.Function("substr")
	assert.False(t, ok, "aliases must not leak into the base dialect")
}

func TestExtend_DoesNotMutateBase(t *testing.T) {
	d := Extend("custom", ANSI).
		ANSIJoins(false).
		Functions(Typed("soundex", mapping.String)).
		Build()

	assert.True(t, d.IsFunction("soundex"))
	assert.True(t, d.IsFunction("count"))
	assert.False(t, ANSI.IsFunction("soundex"))
	assert.True(t, ANSI.SupportsANSIJoins())
	assert.Equal(t, JoinTheta, d.PreferredJoinStyle())
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"ansi", "legacy", "postgres", "sqlite"}, List())

	d, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "ansi", d.GetName())

	d, err = Lookup("Postgres")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)

	_, err = Lookup("oracle")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: ansi, legacy, postgres, sqlite")

	assert.Equal(t, JoinTheta, Legacy.PreferredJoinStyle())
}

func TestFunctionsSorted(t *testing.T) {
	fns := ANSI.Functions()
	require.NotEmpty(t, fns)
	for i := 1; i < len(fns); i++ {
		assert.Less(t, fns[i-1].Name, fns[i].Name)
	}
}
