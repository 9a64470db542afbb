package sqlcheck

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapoql/pkg/mapping"
)

// table collects the columns of one mapped table in declaration order.
type table struct {
	name    string
	columns []string
	types   map[string]string
}

func (t *table) add(column, sqlType string) {
	if _, dup := t.types[column]; dup {
		return
	}
	t.columns = append(t.columns, column)
	t.types[column] = sqlType
}

func (t *table) ddl() string {
	defs := make([]string, len(t.columns))
	for i, col := range t.columns {
		defs[i] = fmt.Sprintf("%q %s", col, t.types[col])
	}
	return fmt.Sprintf("CREATE TABLE %q (%s)", t.name, strings.Join(defs, ", "))
}

type schemaBuilder struct {
	model  *mapping.Model
	tables map[string]*table
}

// Schema derives CREATE TABLE statements for every table the model maps,
// sorted by table name. Tables shared by several entities or collections
// are merged.
func Schema(model *mapping.Model) ([]string, error) {
	b := &schemaBuilder{model: model, tables: make(map[string]*table)}
	for _, e := range model.Entities() {
		t := b.table(e.Table)
		if err := b.property(t, e.Identifier); err != nil {
			return nil, fmt.Errorf("failed to map %s: %w", e.Name, err)
		}
		for _, p := range e.Properties() {
			if err := b.property(t, p); err != nil {
				return nil, fmt.Errorf("failed to map %s: %w", e.Name, err)
			}
		}
	}
	for _, c := range model.Collections() {
		if err := b.collection(c); err != nil {
			return nil, fmt.Errorf("failed to map collection %s: %w", c.Role, err)
		}
	}

	names := make([]string, 0, len(b.tables))
	for name := range b.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	stmts := make([]string, len(names))
	for i, name := range names {
		stmts[i] = b.tables[name].ddl()
	}
	return stmts, nil
}

func (b *schemaBuilder) table(name string) *table {
	t, ok := b.tables[name]
	if !ok {
		t = &table{name: name, types: make(map[string]string)}
		b.tables[name] = t
	}
	return t
}

func (b *schemaBuilder) property(t *table, p *mapping.Property) error {
	if p == nil {
		return nil
	}
	if c, ok := p.Type.(*mapping.ComponentType); ok {
		for _, sub := range c.Properties() {
			if err := b.property(t, sub); err != nil {
				return err
			}
		}
		return nil
	}
	return b.columns(t, p.Columns, p.Type)
}

func (b *schemaBuilder) collection(c *mapping.Collection) error {
	t := b.table(c.Table)
	owner := c.Role[:strings.LastIndexByte(c.Role, '.')]
	ownerEntity, ok := b.model.Entity(owner)
	if !ok {
		return fmt.Errorf("unknown owner %s", owner)
	}
	if err := b.columns(t, c.KeyColumns, ownerEntity.Type()); err != nil {
		return err
	}
	if len(c.IndexColumns) > 0 {
		if err := b.columns(t, c.IndexColumns, c.IndexType); err != nil {
			return err
		}
	}
	if c.OneToMany {
		return nil
	}
	if comp, ok := c.ElementType.(*mapping.ComponentType); ok {
		for _, sub := range comp.Properties() {
			if err := b.property(t, sub); err != nil {
				return err
			}
		}
		return nil
	}
	return b.columns(t, c.ElementColumns, c.ElementType)
}

// columns adds columns of type typ. Association columns take the types
// of the target identifier columns.
func (b *schemaBuilder) columns(t *table, cols []string, typ mapping.Type) error {
	if et, ok := typ.(*mapping.EntityType); ok {
		target, ok := b.model.Entity(et.Entity)
		if !ok {
			return fmt.Errorf("unknown entity %s", et.Entity)
		}
		typ = target.Identifier.Type
	}
	for _, col := range cols {
		t.add(col, sqlType(typ))
	}
	return nil
}

// sqlType maps a scalar type to a SQLite column type.
func sqlType(t mapping.Type) string {
	switch {
	case mapping.IsIntegral(t), t == mapping.Boolean:
		return "INTEGER"
	case t == mapping.BigDecimal:
		return "NUMERIC"
	case mapping.IsNumeric(t):
		return "REAL"
	case t == mapping.Binary:
		return "BLOB"
	}
	return "TEXT"
}
