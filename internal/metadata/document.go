package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is the serialized form of a MetadataStore:
//
//	{"tables": {name: {"fields": {field: descriptor}, "primary_key": k}}}
//
// Tables and fields keep their insertion order through marshal and
// unmarshal, so re-serializing a round-tripped document reproduces it
// byte for byte.
type Document struct {
	Tables TableDocs `json:"tables"`
}

// TableDoc is one table entry of a Document.
type TableDoc struct {
	Name       string    `json:"-"`
	Fields     FieldDocs `json:"fields"`
	PrimaryKey string    `json:"primary_key,omitempty"`
}

// FieldDoc is one field entry, keyed by name inside the fields object.
type FieldDoc struct {
	Name string
	FieldDescriptor
}

// TableDocs marshals as a JSON object keyed by table name, in slice order.
type TableDocs []TableDoc

// FieldDocs marshals as a JSON object keyed by field name, in slice order.
type FieldDocs []FieldDoc

func (d TableDocs) MarshalJSON() ([]byte, error) {
	return marshalOrdered(len(d), func(i int) (string, any) {
		return d[i].Name, d[i]
	})
}

func (d *TableDocs) UnmarshalJSON(b []byte) error {
	return unmarshalOrdered(b, func(name string, dec *json.Decoder) error {
		var t TableDoc
		if err := dec.Decode(&t); err != nil {
			return err
		}
		t.Name = name
		*d = append(*d, t)
		return nil
	})
}

func (d FieldDocs) MarshalJSON() ([]byte, error) {
	return marshalOrdered(len(d), func(i int) (string, any) {
		return d[i].Name, d[i].FieldDescriptor
	})
}

func (d *FieldDocs) UnmarshalJSON(b []byte) error {
	return unmarshalOrdered(b, func(name string, dec *json.Decoder) error {
		var f FieldDescriptor
		if err := dec.Decode(&f); err != nil {
			return err
		}
		*d = append(*d, FieldDoc{Name: name, FieldDescriptor: f})
		return nil
	})
}

// marshalOrdered writes a JSON object whose keys appear in index order,
// which encoding/json's map encoding cannot guarantee.
func marshalOrdered(n int, entry func(i int) (string, any)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, value := entry(i)
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// unmarshalOrdered walks a JSON object token by token so key order survives.
func unmarshalOrdered(b []byte, entry func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected an object key, got %v", keyTok)
		}
		if err := entry(key, dec); err != nil {
			return err
		}
	}
	_, err = dec.Token() // closing brace
	return err
}

// ToDocument serializes the store. The result shares no state with the
// store and can be mutated freely.
func (m *MetadataStore) ToDocument() *Document {
	doc := &Document{Tables: TableDocs{}}
	for _, name := range m.order {
		t := m.tables[name]
		td := TableDoc{Name: name, PrimaryKey: t.primaryKey}
		for _, fieldName := range t.fieldOrder {
			td.Fields = append(td.Fields, FieldDoc{
				Name:            fieldName,
				FieldDescriptor: t.fields[fieldName].clone(),
			})
		}
		doc.Tables = append(doc.Tables, td)
	}
	return doc
}

// Describe returns a single table as a document entry, without relationship
// information; consumers needing relationships query the graph directly.
func (m *MetadataStore) Describe(name string) (*TableDoc, error) {
	t, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: table %q is not registered", ErrReference, name)
	}
	td := &TableDoc{Name: name, PrimaryKey: t.primaryKey}
	for _, fieldName := range t.fieldOrder {
		desc := t.fields[fieldName].clone()
		desc.Ref = nil
		td.Fields = append(td.Fields, FieldDoc{Name: fieldName, FieldDescriptor: desc})
	}
	return td, nil
}

// FromDocument reconstructs a store from a document without re-running
// inference: every descriptor is taken verbatim and validated. Relationships
// are rebuilt in document order under the same rules AddTable enforces. A
// malformed document fails reconstruction entirely; no partially valid store
// is ever returned.
func FromDocument(doc *Document, rootPath string) (*MetadataStore, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", ErrMalformedDocument)
	}
	if len(doc.Tables) == 0 {
		return nil, fmt.Errorf("%w: document declares no tables", ErrMalformedDocument)
	}

	m := New()
	m.rootPath = rootPath

	// First pass: materialize every table so references can resolve
	// regardless of document order.
	for _, td := range doc.Tables {
		if td.Name == "" {
			return nil, fmt.Errorf("%w: table with empty name", ErrMalformedDocument)
		}
		if _, dup := m.tables[td.Name]; dup {
			return nil, fmt.Errorf("%w: table %q appears twice", ErrMalformedDocument, td.Name)
		}
		if len(td.Fields) == 0 {
			return nil, fmt.Errorf("%w: table %q has no fields", ErrMalformedDocument, td.Name)
		}

		t := newTableSchema(td.Name)
		for _, f := range td.Fields {
			if t.HasField(f.Name) {
				return nil, fmt.Errorf("%w: table %q declares field %q twice", ErrMalformedDocument, td.Name, f.Name)
			}
			if err := f.FieldDescriptor.Validate(); err != nil {
				return nil, fmt.Errorf("%w: table %q, field %q: %v", ErrMalformedDocument, td.Name, f.Name, err)
			}
			t.setField(f.Name, f.FieldDescriptor.clone())
		}
		if td.PrimaryKey != "" {
			if !t.HasField(td.PrimaryKey) {
				return nil, fmt.Errorf("%w: table %q names absent field %q as primary key", ErrMalformedDocument, td.Name, td.PrimaryKey)
			}
			if t.fields[td.PrimaryKey].Type != TypeID {
				return nil, fmt.Errorf("%w: primary key %q of table %q is not an id field", ErrMalformedDocument, td.PrimaryKey, td.Name)
			}
			t.primaryKey = td.PrimaryKey
		}
		m.tables[td.Name] = t
		m.order = append(m.order, td.Name)
	}

	// Second pass: validate relationships in document order.
	for _, td := range doc.Tables {
		t := m.tables[td.Name]
		for _, e := range t.references() {
			if err := m.validateLoadedEdge(e); err != nil {
				return nil, err
			}
		}
	}

	m.graph = buildGraph(m.order, m.tables)
	return m, nil
}

func (m *MetadataStore) validateLoadedEdge(e Edge) error {
	if e.Parent == e.Child {
		return fmt.Errorf("%w: table %q references itself", ErrMalformedDocument, e.Child)
	}
	parent, ok := m.tables[e.Parent]
	if !ok {
		return fmt.Errorf("%w: %s.%s references unknown table %q", ErrMalformedDocument, e.Child, e.ChildField, e.Parent)
	}
	if parent.primaryKey == "" {
		return fmt.Errorf("%w: %s.%s references table %q which has no primary key", ErrMalformedDocument, e.Child, e.ChildField, e.Parent)
	}
	if e.ParentField != parent.primaryKey {
		return fmt.Errorf("%w: %s.%s references %s.%s, but the primary key of %q is %q",
			ErrMalformedDocument, e.Child, e.ChildField, e.Parent, e.ParentField, e.Parent, parent.primaryKey)
	}
	child := m.tables[e.Child]
	if e.ChildField == child.primaryKey {
		return fmt.Errorf("%w: field %q of table %q is both primary and foreign key", ErrMalformedDocument, e.ChildField, e.Child)
	}
	if child.fields[e.ChildField].Subtype != parent.fields[parent.primaryKey].Subtype {
		return fmt.Errorf("%w: foreign key %s.%s is %s but parent key %s.%s is %s",
			ErrMalformedDocument, e.Child, e.ChildField, child.fields[e.ChildField].Subtype,
			e.Parent, parent.primaryKey, parent.fields[parent.primaryKey].Subtype)
	}
	return nil
}
