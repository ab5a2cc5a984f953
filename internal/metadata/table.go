package metadata

// TableSchema owns the field descriptors of one registered table. Field
// order matches the original column order and is preserved through
// serialization. Instances are created atomically by AddTable (or document
// reconstruction) and are immutable afterwards.
type TableSchema struct {
	name       string
	fieldOrder []string
	fields     map[string]FieldDescriptor
	primaryKey string
}

func newTableSchema(name string) *TableSchema {
	return &TableSchema{
		name:   name,
		fields: make(map[string]FieldDescriptor),
	}
}

func (t *TableSchema) setField(name string, desc FieldDescriptor) {
	if _, exists := t.fields[name]; !exists {
		t.fieldOrder = append(t.fieldOrder, name)
	}
	t.fields[name] = desc
}

// Name returns the table name, unique within its store.
func (t *TableSchema) Name() string { return t.name }

// PrimaryKey returns the primary-key field name, or "" when none is set.
func (t *TableSchema) PrimaryKey() string { return t.primaryKey }

// FieldNames returns the field names in original column order.
func (t *TableSchema) FieldNames() []string {
	out := make([]string, len(t.fieldOrder))
	copy(out, t.fieldOrder)
	return out
}

// Field returns the descriptor for one field.
func (t *TableSchema) Field(name string) (FieldDescriptor, bool) {
	desc, ok := t.fields[name]
	if !ok {
		return FieldDescriptor{}, false
	}
	return desc.clone(), true
}

// HasField reports whether the table has a field with the given name.
func (t *TableSchema) HasField(name string) bool {
	_, ok := t.fields[name]
	return ok
}

// references lists the table's foreign-key edges in field order.
func (t *TableSchema) references() []Edge {
	var edges []Edge
	for _, name := range t.fieldOrder {
		desc := t.fields[name]
		if desc.Ref != nil {
			edges = append(edges, Edge{
				Child:       t.name,
				ChildField:  name,
				Parent:      desc.Ref.Table,
				ParentField: desc.Ref.Field,
			})
		}
	}
	return edges
}
