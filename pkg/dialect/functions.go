package dialect

import "github.com/leapstack-labs/leapoql/pkg/mapping"

// This file contains the function "toolbox": constructors and return-type
// rules that can be composed into any dialect.

// Standard returns a function whose result has the type of its argument.
func Standard(name string) *Function {
	return &Function{Name: name, HasArguments: true, HasParentheses: true, returnType: SameAsArgument}
}

// Typed returns a function with a fixed result type.
func Typed(name string, t mapping.Type) *Function {
	return &Function{Name: name, HasArguments: true, HasParentheses: true, returnType: Fixed(t)}
}

// NoArgs returns an argument-less function with a fixed result type.
// parens reports whether the function is written with "()".
func NoArgs(name string, t mapping.Type, parens bool) *Function {
	return &Function{Name: name, HasParentheses: parens, returnType: Fixed(t)}
}

// Aggregate returns an aggregate function using rt for type inference.
func Aggregate(name string, rt ReturnTypeFunc) *Function {
	return &Function{Name: name, HasArguments: true, HasParentheses: true, Aggregate: true, returnType: rt}
}

// Custom returns a function with an arbitrary return-type rule.
func Custom(name string, rt ReturnTypeFunc) *Function {
	return &Function{Name: name, HasArguments: true, HasParentheses: true, returnType: rt}
}

// Fixed returns a rule that ignores the argument type.
func Fixed(t mapping.Type) ReturnTypeFunc {
	return func(mapping.Type) mapping.Type { return t }
}

// SameAsArgument returns the argument type unchanged.
func SameAsArgument(arg mapping.Type) mapping.Type {
	return arg
}

// SumType widens the argument type the way SQL SUM does: integral types sum
// to long, floating point to double, exact decimals stay exact.
func SumType(arg mapping.Type) mapping.Type {
	switch arg {
	case mapping.Short, mapping.Integer, mapping.Long:
		return mapping.Long
	case mapping.Float, mapping.Double:
		return mapping.Double
	}
	return arg
}

// standardAggregates are supported by every dialect.
func standardAggregates() []*Function {
	return []*Function{
		Aggregate("count", Fixed(mapping.Long)),
		Aggregate("sum", SumType),
		Aggregate("avg", Fixed(mapping.Double)),
		Aggregate("min", SameAsArgument),
		Aggregate("max", SameAsArgument),
	}
}

// standardScalars are the SQL-92 scalar functions.
func standardScalars() []*Function {
	return []*Function{
		Typed("upper", mapping.String),
		Typed("lower", mapping.String),
		Typed("trim", mapping.String),
		Typed("substring", mapping.String),
		Typed("length", mapping.Integer),
		Typed("bit_length", mapping.Integer),
		Typed("locate", mapping.Integer),
		Typed("sqrt", mapping.Double),
		Typed("mod", mapping.Integer),
		Standard("abs"),
		Standard("coalesce"),
		Standard("nullif"),
		NoArgs("current_date", mapping.Date, false),
		NoArgs("current_time", mapping.Time, false),
		NoArgs("current_timestamp", mapping.Timestamp, false),
	}
}
