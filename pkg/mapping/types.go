// Package mapping describes the object-relational mapping model that object
// queries are resolved against: persistent entities, their properties and
// columns, embedded components, and collections.
//
// A Model is built once (usually by Load) and is read-only afterwards, so a
// single Model can be shared by any number of concurrent compilations.
package mapping

import (
	"sort"
	"strings"
)

// Type is the mapped type of a property, path expression or select item.
type Type interface {
	// Name returns the type name used in error messages and result metadata.
	Name() string
	IsEntity() bool
	IsCollection() bool
	IsComponent() bool
}

// ScalarType is a value type mapped to a single column.
type ScalarType struct {
	name string
}

func (t *ScalarType) Name() string      { return t.name }
func (t *ScalarType) IsEntity() bool     { return false }
func (t *ScalarType) IsCollection() bool { return false }
func (t *ScalarType) IsComponent() bool  { return false }

// Built-in scalar types.
var (
	String     = &ScalarType{name: "string"}
	Character  = &ScalarType{name: "character"}
	Boolean    = &ScalarType{name: "boolean"}
	Short      = &ScalarType{name: "short"}
	Integer    = &ScalarType{name: "integer"}
	Long       = &ScalarType{name: "long"}
	Float      = &ScalarType{name: "float"}
	Double     = &ScalarType{name: "double"}
	BigDecimal = &ScalarType{name: "big_decimal"}
	BigInteger = &ScalarType{name: "big_integer"}
	Date       = &ScalarType{name: "date"}
	Time       = &ScalarType{name: "time"}
	Timestamp  = &ScalarType{name: "timestamp"}
	Binary     = &ScalarType{name: "binary"}
)

var scalarTypes = map[string]*ScalarType{}

func init() {
	for _, t := range []*ScalarType{
		String, Character, Boolean, Short, Integer, Long, Float, Double,
		BigDecimal, BigInteger, Date, Time, Timestamp, Binary,
	} {
		scalarTypes[t.name] = t
	}
	// common aliases
	scalarTypes["int"] = Integer
	scalarTypes["text"] = String
	scalarTypes["decimal"] = BigDecimal
	scalarTypes["bool"] = Boolean
}

// ScalarTypeByName returns the built-in scalar type with the given name.
func ScalarTypeByName(name string) (*ScalarType, bool) {
	t, ok := scalarTypes[strings.ToLower(name)]
	return t, ok
}

// ScalarTypeNames returns the names of all built-in scalar types, sorted.
func ScalarTypeNames() []string {
	names := make([]string, 0, len(scalarTypes))
	for name := range scalarTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsNumeric reports whether t is one of the numeric scalar types.
func IsNumeric(t Type) bool {
	switch t {
	case Short, Integer, Long, Float, Double, BigDecimal, BigInteger:
		return true
	}
	return false
}

// IsIntegral reports whether t is a whole-number scalar type.
func IsIntegral(t Type) bool {
	switch t {
	case Short, Integer, Long, BigInteger:
		return true
	}
	return false
}

// EntityType is the type of a reference to a persistent entity, for example
// a many-to-one association or a selected alias.
type EntityType struct {
	Entity string // fully qualified entity name
}

func (t *EntityType) Name() string      { return t.Entity }
func (t *EntityType) IsEntity() bool     { return true }
func (t *EntityType) IsCollection() bool { return false }
func (t *EntityType) IsComponent() bool  { return false }

// CollectionType is the type of a collection-valued property.
type CollectionType struct {
	Role string
}

func (t *CollectionType) Name() string      { return "collection(" + t.Role + ")" }
func (t *CollectionType) IsEntity() bool     { return false }
func (t *CollectionType) IsCollection() bool { return true }
func (t *CollectionType) IsComponent() bool  { return false }

// ComponentType is an embedded value whose properties are stored in the
// owning table.
type ComponentType struct {
	Class      string
	properties []*Property
	byName     map[string]*Property
}

// NewComponentType creates a component type from its properties.
func NewComponentType(class string, props ...*Property) *ComponentType {
	c := &ComponentType{Class: class, byName: make(map[string]*Property, len(props))}
	for _, p := range props {
		c.properties = append(c.properties, p)
		c.byName[p.Name] = p
	}
	return c
}

func (t *ComponentType) Name() string      { return t.Class }
func (t *ComponentType) IsEntity() bool     { return false }
func (t *ComponentType) IsCollection() bool { return false }
func (t *ComponentType) IsComponent() bool  { return true }

// Property returns the component property with the given name.
func (t *ComponentType) Property(name string) (*Property, bool) {
	p, ok := t.byName[name]
	return p, ok
}

// Properties returns the component properties in declaration order.
func (t *ComponentType) Properties() []*Property {
	return t.properties
}

// Columns returns every column of the component, in declaration order.
func (t *ComponentType) Columns() []string {
	var cols []string
	for _, p := range t.properties {
		cols = append(cols, p.Columns...)
	}
	return cols
}
