// Package dialect provides SQL dialect configuration: the SQL functions a
// query may call, how their result types are inferred, and which join
// syntax the target database accepts.
//
// Concrete dialects are registered in builtin.go; additional dialects can be
// registered with Register.
package dialect

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/leapoql/pkg/mapping"
)

// JoinStyle selects how association joins are rendered.
type JoinStyle int

const (
	// JoinTheta renders joins as an implicit cross product plus WHERE-clause
	// equality predicates.
	JoinTheta JoinStyle = iota
	// JoinANSI renders explicit "inner join ... on ..." syntax.
	JoinANSI
)

// String returns the string representation of JoinStyle.
func (s JoinStyle) String() string {
	switch s {
	case JoinTheta:
		return "theta"
	case JoinANSI:
		return "ansi"
	default:
		return "unknown"
	}
}

// Dialect represents a SQL dialect configuration.
type Dialect struct {
	Name string

	ansiJoins bool
	functions map[string]*Function
	aliases   map[string]string
}

// GetName returns the dialect name.
func (d *Dialect) GetName() string {
	return d.Name
}

// SupportsANSIJoins reports whether the dialect accepts "join ... on" syntax.
func (d *Dialect) SupportsANSIJoins() bool {
	return d.ansiJoins
}

// PreferredJoinStyle returns ANSI joins when supported, theta joins otherwise.
func (d *Dialect) PreferredJoinStyle() JoinStyle {
	if d.ansiJoins {
		return JoinANSI
	}
	return JoinTheta
}

// NormalizeName normalizes a function name. Function names are case
// insensitive.
func (d *Dialect) NormalizeName(name string) string {
	return strings.ToLower(name)
}

// Function returns the SQL function registered under name or one of its
// aliases.
func (d *Dialect) Function(name string) (*Function, bool) {
	normalized := d.NormalizeName(name)
	if target, ok := d.aliases[normalized]; ok {
		normalized = target
	}
	f, ok := d.functions[normalized]
	return f, ok
}

// IsFunction returns true if name is a registered SQL function.
func (d *Dialect) IsFunction(name string) bool {
	_, ok := d.Function(name)
	return ok
}

// IsAggregate returns true if the function is an aggregate function.
func (d *Dialect) IsAggregate(name string) bool {
	f, ok := d.Function(name)
	return ok && f.Aggregate
}

// Functions returns all registered functions sorted by name.
func (d *Dialect) Functions() []*Function {
	out := make([]*Function, 0, len(d.functions))
	for _, f := range d.functions {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Aliases returns a copy of the alias map (alias -> function name).
func (d *Dialect) Aliases() map[string]string {
	result := make(map[string]string, len(d.aliases))
	for k, v := range d.aliases {
		result[k] = v
	}
	return result
}

// Function is a registered SQL function.
type Function struct {
	Name string

	// HasArguments is false for functions that take no arguments at all.
	HasArguments bool
	// HasParentheses is false for argument-less functions written without
	// parentheses, such as current_date.
	HasParentheses bool
	// Aggregate marks functions that aggregate rows.
	Aggregate bool

	returnType ReturnTypeFunc
}

// ReturnTypeFunc infers a function's result type from the type of its first
// resolved argument. arg is nil when no argument could be resolved.
type ReturnTypeFunc func(arg mapping.Type) mapping.Type

// ReturnType infers the function's result type. It returns false when the
// type cannot be determined from arg.
func (f *Function) ReturnType(arg mapping.Type) (mapping.Type, bool) {
	t := f.returnType(arg)
	return t, t != nil
}

// ---------- Builder ----------

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	dialect *Dialect
}

// NewDialect creates a new dialect builder with the given name.
func NewDialect(name string) *Builder {
	return &Builder{
		dialect: &Dialect{
			Name:      name,
			functions: make(map[string]*Function),
			aliases:   make(map[string]string),
		},
	}
}

// Extend creates a builder seeded with a copy of an existing dialect.
func Extend(name string, base *Dialect) *Builder {
	b := NewDialect(name)
	b.dialect.ansiJoins = base.ansiJoins
	for k, f := range base.functions {
		b.dialect.functions[k] = f
	}
	for k, v := range base.aliases {
		b.dialect.aliases[k] = v
	}
	return b
}

// ANSIJoins sets whether the dialect supports explicit ANSI joins.
func (b *Builder) ANSIJoins(enabled bool) *Builder {
	b.dialect.ansiJoins = enabled
	return b
}

// Functions registers functions, replacing any with the same name.
func (b *Builder) Functions(funcs ...*Function) *Builder {
	for _, f := range funcs {
		b.dialect.functions[b.dialect.NormalizeName(f.Name)] = f
	}
	return b
}

// Aliases registers alternative names for functions.
func (b *Builder) Aliases(aliases map[string]string) *Builder {
	for alias, target := range aliases {
		b.dialect.aliases[b.dialect.NormalizeName(alias)] = b.dialect.NormalizeName(target)
	}
	return b
}

// Build returns the constructed dialect.
func (b *Builder) Build() *Dialect {
	return b.dialect
}
