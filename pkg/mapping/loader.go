package mapping

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the YAML representation of a mapping document.
// Unknown fields cause load errors.
type File struct {
	Package  string            `yaml:"package"`
	Imports  map[string]string `yaml:"imports"`
	Entities []EntityDef       `yaml:"entities"`
}

// EntityDef maps one entity.
type EntityDef struct {
	Name       string        `yaml:"name"`
	Table      string        `yaml:"table"`
	ID         PropertyDef   `yaml:"id"`
	Properties []PropertyDef `yaml:"properties"`
}

// PropertyDef maps one property. Exactly one of Type, ManyToOne, Component
// or Collection is set.
type PropertyDef struct {
	Name       string         `yaml:"name"`
	Column     string         `yaml:"column"`
	Columns    []string       `yaml:"columns"`
	Type       string         `yaml:"type"`
	ManyToOne  string         `yaml:"many-to-one"`
	Component  *ComponentDef  `yaml:"component"`
	Collection *CollectionDef `yaml:"collection"`
}

// ComponentDef maps an embedded component.
type ComponentDef struct {
	Class      string        `yaml:"class"`
	Properties []PropertyDef `yaml:"properties"`
}

// CollectionDef maps a collection property.
type CollectionDef struct {
	Table      string     `yaml:"table"`
	Key        []string   `yaml:"key"`
	OneToMany  string     `yaml:"one-to-many"`
	ManyToMany string     `yaml:"many-to-many"`
	Element    *ColumnDef `yaml:"element"`
	Index      *ColumnDef `yaml:"index"`
}

// ColumnDef maps the element or index of a collection.
type ColumnDef struct {
	Column  string   `yaml:"column"`
	Columns []string `yaml:"columns"`
	Type    string   `yaml:"type"`
}

func (c *ColumnDef) columns() []string {
	if len(c.Columns) > 0 {
		return c.Columns
	}
	if c.Column != "" {
		return []string{c.Column}
	}
	return nil
}

func (p *PropertyDef) columns() []string {
	if len(p.Columns) > 0 {
		return p.Columns
	}
	if p.Column != "" {
		return []string{p.Column}
	}
	return []string{p.Name}
}

// LoadFile reads and builds a model from a YAML mapping file.
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided by design
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", path, err)
	}
	return m, nil
}

// Load reads and builds a model from YAML.
func Load(r io.Reader) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping: %w", err)
	}
	return Parse(data)
}

// Parse builds a model from YAML mapping content.
func Parse(data []byte) (*Model, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid mapping YAML: %w", err)
	}
	return Build(&f)
}

// Build builds and validates a model from a decoded mapping document.
func Build(f *File) (*Model, error) {
	b := &builder{pkg: f.Package, model: NewModel()}
	for i := range f.Entities {
		if err := b.entity(&f.Entities[i]); err != nil {
			return nil, err
		}
	}
	if err := b.model.resolveOneToMany(); err != nil {
		return nil, fmt.Errorf("invalid mapping: %w", err)
	}
	for short, class := range f.Imports {
		b.model.AddImport(short, b.qualify(class))
	}
	if err := b.model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mapping: %w", err)
	}
	return b.model, nil
}

type builder struct {
	pkg   string
	model *Model
}

// qualify prefixes unqualified names with the document package.
func (b *builder) qualify(name string) string {
	if b.pkg == "" || strings.Contains(name, ".") {
		return name
	}
	return b.pkg + "." + name
}

func (b *builder) entity(def *EntityDef) error {
	if def.Name == "" {
		return errors.New("entity without name")
	}
	name := b.qualify(def.Name)
	table := def.Table
	if table == "" {
		table = unqualify(name)
	}
	idName := def.ID.Name
	if idName == "" {
		idName = IdentifierName
	}
	idType := Long
	if def.ID.Type != "" {
		t, ok := ScalarTypeByName(def.ID.Type)
		if !ok {
			return fmt.Errorf("entity %s: unknown identifier type %q", name, def.ID.Type)
		}
		idType = t
	}
	id := &Property{Name: idName, Columns: (&PropertyDef{Name: idName, Column: def.ID.Column, Columns: def.ID.Columns}).columns(), Type: idType}

	e := NewEntity(name, table, id)
	for i := range def.Properties {
		p, err := b.property(name, &def.Properties[i], true)
		if err != nil {
			return fmt.Errorf("entity %s: %w", name, err)
		}
		if err := e.AddProperty(p); err != nil {
			return err
		}
	}
	return b.model.AddEntity(e)
}

func (b *builder) property(owner string, def *PropertyDef, allowCollections bool) (*Property, error) {
	if def.Name == "" {
		return nil, errors.New("property without name")
	}
	switch {
	case def.Collection != nil:
		if !allowCollections {
			return nil, fmt.Errorf("property %s: collections are not allowed in components", def.Name)
		}
		role := owner + "." + def.Name
		if err := b.collection(role, def.Collection); err != nil {
			return nil, err
		}
		return &Property{Name: def.Name, Type: &CollectionType{Role: role}}, nil

	case def.Component != nil:
		props := make([]*Property, 0, len(def.Component.Properties))
		for i := range def.Component.Properties {
			p, err := b.property(owner, &def.Component.Properties[i], false)
			if err != nil {
				return nil, fmt.Errorf("component %s: %w", def.Name, err)
			}
			props = append(props, p)
		}
		class := def.Component.Class
		if class == "" {
			class = def.Name
		}
		comp := NewComponentType(b.qualify(class), props...)
		return &Property{Name: def.Name, Columns: comp.Columns(), Type: comp}, nil

	case def.ManyToOne != "":
		cols := def.columns()
		if def.Column == "" && len(def.Columns) == 0 {
			cols = []string{def.Name + "_id"}
		}
		return &Property{Name: def.Name, Columns: cols, Type: &EntityType{Entity: b.qualify(def.ManyToOne)}}, nil

	default:
		typeName := def.Type
		if typeName == "" {
			typeName = String.Name()
		}
		t, ok := ScalarTypeByName(typeName)
		if !ok {
			return nil, fmt.Errorf("property %s: unknown type %q", def.Name, def.Type)
		}
		return &Property{Name: def.Name, Columns: def.columns(), Type: t}, nil
	}
}

func (b *builder) collection(role string, def *CollectionDef) error {
	if len(def.Key) == 0 {
		return fmt.Errorf("collection %s: key columns required", role)
	}
	c := &Collection{Role: role, Table: def.Table, KeyColumns: def.Key}

	switch {
	case def.OneToMany != "":
		target := b.qualify(def.OneToMany)
		c.OneToMany = true
		c.ElementType = &EntityType{Entity: target}
		// element columns are resolved against the target's identifier
		// once every entity is known; see resolveOneToMany.
	case def.ManyToMany != "":
		if def.Element == nil || len(def.Element.columns()) == 0 {
			return fmt.Errorf("collection %s: many-to-many element column required", role)
		}
		c.ElementType = &EntityType{Entity: b.qualify(def.ManyToMany)}
		c.ElementColumns = def.Element.columns()
	case def.Element != nil:
		t, ok := ScalarTypeByName(def.Element.Type)
		if !ok {
			return fmt.Errorf("collection %s: unknown element type %q", role, def.Element.Type)
		}
		c.ElementType = t
		c.ElementColumns = def.Element.columns()
		if len(c.ElementColumns) == 0 {
			c.ElementColumns = []string{"elt"}
		}
	default:
		return fmt.Errorf("collection %s: one of one-to-many, many-to-many or element required", role)
	}

	if !c.OneToMany && c.Table == "" {
		return fmt.Errorf("collection %s: table required", role)
	}

	if def.Index != nil {
		c.IndexColumns = def.Index.columns()
		c.IndexType = Integer
		if def.Index.Type != "" {
			t, ok := ScalarTypeByName(def.Index.Type)
			if !ok {
				return fmt.Errorf("collection %s: unknown index type %q", role, def.Index.Type)
			}
			c.IndexType = t
		}
	}
	return b.model.AddCollection(c)
}

// OneToMany collections are stored in the element table and their element
// columns are the element identifier; both are only known after every
// entity has been built.
func (m *Model) resolveOneToMany() error {
	for _, c := range m.collections {
		if !c.OneToMany {
			continue
		}
		name, _ := c.ElementEntity()
		target, ok := m.entities[name]
		if !ok {
			return fmt.Errorf("collection %s: unknown entity %s", c.Role, name)
		}
		c.Table = target.Table
		c.ElementColumns = target.Identifier.Columns
	}
	return nil
}
