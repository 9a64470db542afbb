package mapping

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// IdentifierName is the reserved property name that always denotes an
// entity's identifier, whatever the identifier property is called.
const IdentifierName = "id"

// Property is a mapped persistent property.
type Property struct {
	Name    string
	Columns []string // unqualified column names; empty for collections
	Type    Type
}

// Entity is a mapped persistent class.
type Entity struct {
	Name       string // fully qualified name, e.g. org.acme.Person
	Table      string
	Identifier *Property

	properties []*Property
	byName     map[string]*Property
}

// NewEntity creates an entity mapped to table with the given identifier.
func NewEntity(name, table string, id *Property) *Entity {
	return &Entity{
		Name:       name,
		Table:      table,
		Identifier: id,
		byName:     make(map[string]*Property),
	}
}

// AddProperty adds a property to the entity.
func (e *Entity) AddProperty(p *Property) error {
	if _, dup := e.byName[p.Name]; dup {
		return fmt.Errorf("duplicate property %q in entity %s", p.Name, e.Name)
	}
	e.properties = append(e.properties, p)
	e.byName[p.Name] = p
	return nil
}

// Property returns the named property. The reserved name "id" and the
// identifier property name both return the identifier.
func (e *Entity) Property(name string) (*Property, bool) {
	if e.IsIdentifier(name) {
		return e.Identifier, true
	}
	p, ok := e.byName[name]
	return p, ok
}

// IsIdentifier reports whether name denotes the identifier property.
func (e *Entity) IsIdentifier(name string) bool {
	return name == IdentifierName || (e.Identifier != nil && name == e.Identifier.Name)
}

// Properties returns the non-identifier properties in declaration order.
func (e *Entity) Properties() []*Property {
	return e.properties
}

// ShortName returns the unqualified entity name.
func (e *Entity) ShortName() string {
	return unqualify(e.Name)
}

// Type returns the entity type referencing e.
func (e *Entity) Type() *EntityType {
	return &EntityType{Entity: e.Name}
}

// Collection is a mapped collection, addressed by its role.
type Collection struct {
	Role  string // <owner entity>.<property>
	Table string

	// KeyColumns reference the owner's identifier.
	KeyColumns []string

	// ElementColumns hold the element value; for entity elements they
	// reference the element's identifier.
	ElementColumns []string
	ElementType    Type

	// IndexColumns are set for indexed collections (lists, maps).
	IndexColumns []string
	IndexType    Type

	// OneToMany collections live in the element entity's own table.
	OneToMany bool
}

// IsIndexed reports whether the collection has an index.
func (c *Collection) IsIndexed() bool {
	return len(c.IndexColumns) > 0
}

// ElementEntity returns the element entity name for entity collections.
func (c *Collection) ElementEntity() (string, bool) {
	if et, ok := c.ElementType.(*EntityType); ok {
		return et.Entity, true
	}
	return "", false
}

// Model is the mapping model: entities, collections and imported names.
type Model struct {
	entities    map[string]*Entity
	collections map[string]*Collection
	imports     map[string]string
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{
		entities:    make(map[string]*Entity),
		collections: make(map[string]*Collection),
		imports:     make(map[string]string),
	}
}

// AddEntity registers an entity and auto-imports its short name.
func (m *Model) AddEntity(e *Entity) error {
	if e.Identifier == nil || len(e.Identifier.Columns) == 0 {
		return fmt.Errorf("entity %s has no identifier", e.Name)
	}
	if _, dup := m.entities[e.Name]; dup {
		return fmt.Errorf("duplicate entity %s", e.Name)
	}
	m.entities[e.Name] = e
	short := e.ShortName()
	if _, taken := m.imports[short]; !taken {
		m.imports[short] = e.Name
	}
	return nil
}

// AddCollection registers a collection under its role.
func (m *Model) AddCollection(c *Collection) error {
	if _, dup := m.collections[c.Role]; dup {
		return fmt.Errorf("duplicate collection role %s", c.Role)
	}
	m.collections[c.Role] = c
	return nil
}

// AddImport makes a class available under a short name.
func (m *Model) AddImport(short, class string) {
	m.imports[short] = class
}

// Entity returns the entity with the given fully qualified or imported name.
func (m *Model) Entity(name string) (*Entity, bool) {
	if e, ok := m.entities[name]; ok {
		return e, true
	}
	if full, ok := m.imports[name]; ok {
		e, ok := m.entities[full]
		return e, ok
	}
	return nil, false
}

// Collection returns the collection with the given role.
func (m *Model) Collection(role string) (*Collection, bool) {
	c, ok := m.collections[role]
	return c, ok
}

// Import resolves a class name through the import map. Fully qualified
// names of imported classes and entities resolve to themselves.
func (m *Model) Import(name string) (string, bool) {
	if full, ok := m.imports[name]; ok {
		return full, true
	}
	if _, ok := m.entities[name]; ok {
		return name, true
	}
	for _, full := range m.imports {
		if full == name {
			return full, true
		}
	}
	return "", false
}

// Entities returns all entities sorted by name.
func (m *Model) Entities() []*Entity {
	out := make([]*Entity, 0, len(m.entities))
	for _, e := range m.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Collections returns all collections sorted by role.
func (m *Model) Collections() []*Collection {
	out := make([]*Collection, 0, len(m.collections))
	for _, c := range m.collections {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out
}

// Validate checks that every association and collection refers to mapped
// entities and collections, and that join columns line up with the
// identifier columns they reference.
func (m *Model) Validate() error {
	var errs []error
	for _, e := range m.Entities() {
		for _, p := range e.Properties() {
			errs = append(errs, m.validateProperty(e.Name+"."+p.Name, p))
		}
	}
	for _, c := range m.Collections() {
		if len(c.KeyColumns) == 0 {
			errs = append(errs, fmt.Errorf("collection %s has no key columns", c.Role))
		}
		if err := m.validateType(c.Role+".elements", c.ElementType); err != nil {
			errs = append(errs, err)
			continue
		}
		errs = append(errs, m.validateCollectionColumns(c))
	}
	return errors.Join(errs...)
}

func (m *Model) validateProperty(where string, p *Property) error {
	if err := m.validateType(where, p.Type); err != nil {
		return err
	}
	switch t := p.Type.(type) {
	case *EntityType:
		return matchIdentifier(where, p.Columns, m.entities[t.Entity])
	case *ComponentType:
		var errs []error
		for _, cp := range t.Properties() {
			errs = append(errs, m.validateProperty(where+"."+cp.Name, cp))
		}
		return errors.Join(errs...)
	}
	return nil
}

func (m *Model) validateCollectionColumns(c *Collection) error {
	var errs []error
	if i := strings.LastIndexByte(c.Role, '.'); i > 0 {
		if owner, ok := m.entities[c.Role[:i]]; ok && len(c.KeyColumns) > 0 {
			errs = append(errs, matchIdentifier(c.Role+" key", c.KeyColumns, owner))
		}
	}
	if name, ok := c.ElementEntity(); ok && !c.OneToMany {
		errs = append(errs, matchIdentifier(c.Role+" elements", c.ElementColumns, m.entities[name]))
	}
	return errors.Join(errs...)
}

// matchIdentifier checks that columns can be compared pairwise with the
// identifier columns of target.
func matchIdentifier(where string, columns []string, target *Entity) error {
	if n := len(target.Identifier.Columns); len(columns) != n {
		return fmt.Errorf("%s: %d columns do not match the %d identifier columns of %s",
			where, len(columns), n, target.Name)
	}
	return nil
}

func (m *Model) validateType(where string, t Type) error {
	switch typ := t.(type) {
	case *EntityType:
		if _, ok := m.entities[typ.Entity]; !ok {
			return fmt.Errorf("%s: unknown entity %s", where, typ.Entity)
		}
	case *CollectionType:
		if _, ok := m.collections[typ.Role]; !ok {
			return fmt.Errorf("%s: unknown collection role %s", where, typ.Role)
		}
	case nil:
		return fmt.Errorf("%s: missing type", where)
	}
	return nil
}

func unqualify(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
