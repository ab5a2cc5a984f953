// Package metadata implements the relational metadata engine: per-column
// type inference, table and key registration, the derived relationship
// graph, and lossless (de)serialization of the schema document.
package metadata

import (
	"fmt"
	"strings"

	"metaforge/internal/source"
)

// MetadataStore owns the registered table schemas (insertion order
// preserved) and the relationship graph derived from their reference
// fields. Mutations are atomic: a failed AddTable leaves the store exactly
// as it was. The store performs no internal locking; exclusive access
// during mutation is the caller's responsibility.
type MetadataStore struct {
	rootPath string
	order    []string
	tables   map[string]*TableSchema
	graph    *RelationshipGraph
}

// New returns an empty store.
func New() *MetadataStore {
	m := &MetadataStore{tables: make(map[string]*TableSchema)}
	m.graph = buildGraph(nil, m.tables)
	return m
}

type relationDecl struct {
	parent     string
	foreignKey string
}

type tableOptions struct {
	primaryKey   string
	pkDeclared   int
	relations    []relationDecl
	overrides    map[string]FieldDescriptor
	overrideErr  error
	orphanParent string // WithParent called with an empty half
}

// TableOption configures a single AddTable call.
type TableOption func(*tableOptions)

// WithPrimaryKey declares the table's primary-key field.
func WithPrimaryKey(field string) TableOption {
	return func(o *tableOptions) {
		o.primaryKey = field
		o.pkDeclared++
	}
}

// WithParent declares a foreign key: foreignKey in the new table references
// the primary key of parent. Both halves are required; the declaration is
// atomic. A table may declare several foreign keys to different parents.
func WithParent(parent, foreignKey string) TableOption {
	return func(o *tableOptions) {
		if parent == "" || foreignKey == "" {
			o.orphanParent = parent + foreignKey
			return
		}
		o.relations = append(o.relations, relationDecl{parent: parent, foreignKey: foreignKey})
	}
}

// WithFieldOverrides supplies explicit descriptors that replace the inferred
// descriptor of the matching fields. Fields not listed are still inferred
// normally. Overriding the same field twice is a conflict.
func WithFieldOverrides(fields map[string]FieldDescriptor) TableOption {
	return func(o *tableOptions) {
		if o.overrides == nil {
			o.overrides = make(map[string]FieldDescriptor)
		}
		for name, desc := range fields {
			if _, dup := o.overrides[name]; dup {
				o.overrideErr = fmt.Errorf("%w: field %q overridden twice", ErrSchemaConflict, name)
				return
			}
			o.overrides[name] = desc
		}
	}
}

// AddTable infers a descriptor for every column of data, applies overrides
// and key declarations, validates relationships against the registered
// tables and registers the result. On any error the store is unchanged.
func (m *MetadataStore) AddTable(name string, data *source.Table, opts ...TableOption) (*TableSchema, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: table name must not be empty", ErrSchemaConflict)
	}
	if _, exists := m.tables[name]; exists {
		return nil, fmt.Errorf("%w: table %q is already registered", ErrSchemaConflict, name)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: table %q has no data", ErrSchemaConflict, name)
	}

	var o tableOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.overrideErr != nil {
		return nil, o.overrideErr
	}
	if o.pkDeclared > 1 {
		return nil, fmt.Errorf("%w: primary key declared twice for table %q", ErrSchemaConflict, name)
	}
	if o.orphanParent != "" {
		return nil, fmt.Errorf("%w: a relationship needs both a parent table and a foreign-key field", ErrReference)
	}

	t := newTableSchema(name)

	// Inference pass, column order preserved.
	for _, col := range data.Columns {
		t.setField(col.Name, Infer(col.Name, col.Values))
	}

	// Overrides replace the whole descriptor of the targeted field.
	for _, fieldName := range t.fieldOrder {
		desc, ok := o.overrides[fieldName]
		if !ok {
			continue
		}
		if err := desc.Validate(); err != nil {
			return nil, fmt.Errorf("%w: override for field %q: %v", ErrSchemaConflict, fieldName, err)
		}
		if desc.Ref != nil {
			return nil, fmt.Errorf("%w: override for field %q carries a reference; declare relationships with WithParent", ErrSchemaConflict, fieldName)
		}
		t.fields[fieldName] = desc.clone()
	}
	for fieldName := range o.overrides {
		if !t.HasField(fieldName) {
			return nil, fmt.Errorf("%w: override targets unknown field %q", ErrSchemaConflict, fieldName)
		}
	}

	if o.primaryKey != "" {
		if err := m.applyPrimaryKey(t, data, o.primaryKey); err != nil {
			return nil, err
		}
	}

	for _, rel := range o.relations {
		if err := m.applyRelation(t, data, rel); err != nil {
			return nil, err
		}
	}

	// Commit.
	m.tables[name] = t
	m.order = append(m.order, name)
	m.graph = buildGraph(m.order, m.tables)
	return t, nil
}

func (m *MetadataStore) applyPrimaryKey(t *TableSchema, data *source.Table, field string) error {
	col, ok := data.Column(field)
	if !ok {
		return fmt.Errorf("%w: declared primary key %q is absent from table %q", ErrKeyViolation, field, t.name)
	}

	seen := make(map[string]bool, len(col.Values))
	for i, v := range col.Values {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: primary key %q of table %q is null at row %d", ErrKeyViolation, field, t.name, i+1)
		}
		if seen[v] {
			return fmt.Errorf("%w: primary key %q of table %q has duplicate value %q", ErrKeyViolation, field, t.name, v)
		}
		seen[v] = true
	}

	// The primary key is forced to an identifier regardless of what
	// inference or an override produced. Relations are applied after this,
	// so no field can carry a reference yet.
	if t.fields[field].Type != TypeID {
		t.fields[field] = InferKey(col.Values)
	}
	t.primaryKey = field
	return nil
}

func (m *MetadataStore) applyRelation(t *TableSchema, data *source.Table, rel relationDecl) error {
	if rel.parent == t.name {
		return fmt.Errorf("%w: table %q cannot reference itself", ErrReference, t.name)
	}
	parent, ok := m.tables[rel.parent]
	if !ok {
		return fmt.Errorf("%w: parent table %q is not registered", ErrReference, rel.parent)
	}
	if parent.primaryKey == "" {
		return fmt.Errorf("%w: parent table %q has no primary key", ErrReference, rel.parent)
	}
	col, ok := data.Column(rel.foreignKey)
	if !ok {
		return fmt.Errorf("%w: foreign-key field %q is absent from table %q", ErrReference, rel.foreignKey, t.name)
	}
	if rel.foreignKey == t.primaryKey {
		return fmt.Errorf("%w: field %q of table %q is the primary key and cannot also be a foreign key", ErrReference, rel.foreignKey, t.name)
	}
	if cur := t.fields[rel.foreignKey]; cur.Ref != nil {
		return fmt.Errorf("%w: field %q of table %q already references %s.%s", ErrReference, rel.foreignKey, t.name, cur.Ref.Table, cur.Ref.Field)
	}

	parentKey := parent.fields[parent.primaryKey]
	childSub := keySubtype(t.fields[rel.foreignKey], col.Values)
	if childSub != parentKey.Subtype {
		return fmt.Errorf("%w: foreign key %s.%s is %s but parent key %s.%s is %s",
			ErrReference, t.name, rel.foreignKey, childSub, rel.parent, parent.primaryKey, parentKey.Subtype)
	}

	t.fields[rel.foreignKey] = FieldDescriptor{
		Type:    TypeID,
		Subtype: parentKey.Subtype,
		Ref:     &Reference{Table: rel.parent, Field: parent.primaryKey},
	}
	return nil
}

// ValidateRelationship reports whether declaring childField of the
// registered table child as a foreign key to parent would be accepted. It
// checks the same invariants AddTable enforces, against the descriptors
// already on record.
func (m *MetadataStore) ValidateRelationship(child, childField, parent string) error {
	c, ok := m.tables[child]
	if !ok {
		return fmt.Errorf("%w: table %q is not registered", ErrReference, child)
	}
	if parent == child {
		return fmt.Errorf("%w: table %q cannot reference itself", ErrReference, child)
	}
	p, ok := m.tables[parent]
	if !ok {
		return fmt.Errorf("%w: parent table %q is not registered", ErrReference, parent)
	}
	if p.primaryKey == "" {
		return fmt.Errorf("%w: parent table %q has no primary key", ErrReference, parent)
	}
	desc, ok := c.fields[childField]
	if !ok {
		return fmt.Errorf("%w: foreign-key field %q is absent from table %q", ErrReference, childField, child)
	}
	if childField == c.primaryKey {
		return fmt.Errorf("%w: field %q of table %q is the primary key and cannot also be a foreign key", ErrReference, childField, child)
	}
	if desc.Ref != nil {
		return fmt.Errorf("%w: field %q of table %q already references %s.%s", ErrReference, childField, child, desc.Ref.Table, desc.Ref.Field)
	}
	if sub, parentSub := recordedSubtype(desc), p.fields[p.primaryKey].Subtype; sub != parentSub {
		return fmt.Errorf("%w: foreign key %s.%s is %s but parent key %s.%s is %s",
			ErrReference, child, childField, sub, parent, p.primaryKey, parentSub)
	}
	return nil
}

// recordedSubtype resolves the subtype a registered field would take as a
// key, without re-sampling: ids and integral numericals stay integer,
// anything else keys as a string.
func recordedSubtype(desc FieldDescriptor) Subtype {
	switch {
	case desc.Type == TypeID:
		return desc.Subtype
	case desc.Type == TypeNumerical && desc.Subtype == SubtypeInteger:
		return SubtypeInteger
	default:
		return SubtypeString
	}
}

// keySubtype resolves the subtype a field would have as a key: a declared
// id subtype wins, otherwise the sampled values decide.
func keySubtype(desc FieldDescriptor, values []string) Subtype {
	if desc.Type == TypeID {
		return desc.Subtype
	}
	return InferKey(values).Subtype
}

// Table returns a registered table schema.
func (m *MetadataStore) Table(name string) (*TableSchema, bool) {
	t, ok := m.tables[name]
	return t, ok
}

// Tables returns all table schemas in registration order.
func (m *MetadataStore) Tables() []*TableSchema {
	out := make([]*TableSchema, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.tables[name])
	}
	return out
}

// TableNames returns the registered table names in registration order.
func (m *MetadataStore) TableNames() []string {
	return append([]string(nil), m.order...)
}

// Graph returns the relationship graph derived from the current registry.
func (m *MetadataStore) Graph() *RelationshipGraph {
	return m.graph
}

// RootPath returns the directory used to resolve relative file locations at
// load time. It carries no schema semantics.
func (m *MetadataStore) RootPath() string { return m.rootPath }

// Summary renders a short human-readable description of the store.
func (m *MetadataStore) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tables: %d\n", len(m.order))
	for _, name := range m.order {
		t := m.tables[name]
		fmt.Fprintf(&b, "  %s: %d fields", name, len(t.fieldOrder))
		if t.primaryKey != "" {
			fmt.Fprintf(&b, " (primary key: %s)", t.primaryKey)
		}
		for _, e := range t.references() {
			fmt.Fprintf(&b, "\n    -> references %s.%s via %s", e.Parent, e.ParentField, e.ChildField)
		}
		b.WriteString("\n")
	}
	return b.String()
}
