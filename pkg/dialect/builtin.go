package dialect

import "github.com/leapstack-labs/leapoql/pkg/mapping"

// ANSI is the default dialect: SQL-92 functions and explicit joins.
var ANSI = NewDialect("ansi").
	ANSIJoins(true).
	Functions(standardAggregates()...).
	Functions(standardScalars()...).
	Build()

// Postgres extends ANSI with PostgreSQL functions.
var Postgres = Extend("postgres", ANSI).
	Functions(
		NoArgs("now", mapping.Timestamp, true),
		NoArgs("random", mapping.Double, true),
		NoArgs("localtimestamp", mapping.Timestamp, false),
		Typed("concat", mapping.String),
		Typed("initcap", mapping.String),
		Typed("char_length", mapping.Integer),
		Typed("to_char", mapping.String),
		Aggregate("string_agg", Fixed(mapping.String)),
		Aggregate("bool_and", Fixed(mapping.Boolean)),
		Aggregate("bool_or", Fixed(mapping.Boolean)),
		Aggregate("stddev", Fixed(mapping.Double)),
		Aggregate("variance", Fixed(mapping.Double)),
	).
	Aliases(map[string]string{
		"every":  "bool_and",
		"ucase":  "upper",
		"lcase":  "lower",
		"substr": "substring",
		"ifnull": "coalesce",
		"len":    "length",
	}).
	Build()

// SQLite extends ANSI with SQLite functions.
var SQLite = Extend("sqlite", ANSI).
	Functions(
		Standard("ifnull"),
		Typed("instr", mapping.Integer),
		Typed("printf", mapping.String),
		NoArgs("random", mapping.Long, true),
		Aggregate("total", Fixed(mapping.Double)),
		Aggregate("group_concat", Fixed(mapping.String)),
	).
	Aliases(map[string]string{
		"substr": "substring",
	}).
	Build()

// Legacy models databases that only understand theta-style joins.
var Legacy = Extend("legacy", ANSI).
	ANSIJoins(false).
	Functions(
		NoArgs("sysdate", mapping.Timestamp, false),
		Standard("nvl"),
	).
	Build()

func init() {
	Register(ANSI)
	Register(Postgres)
	Register(SQLite)
	Register(Legacy)
	SetDefault(ANSI)
}
