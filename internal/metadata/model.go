package metadata

import "fmt"

// FieldType is the semantic type of a column. The set is closed.
type FieldType string

const (
	TypeID          FieldType = "id"
	TypeCategorical FieldType = "categorical"
	TypeNumerical   FieldType = "numerical"
	TypeBoolean     FieldType = "boolean"
	TypeDatetime    FieldType = "datetime"
)

// Subtype refines a field type: integer/string for id, integer/float for
// numerical. Other types carry no subtype.
type Subtype string

const (
	SubtypeInteger Subtype = "integer"
	SubtypeFloat   Subtype = "float"
	SubtypeString  Subtype = "string"
)

// Reference points a foreign-key field at the primary-key field of its
// parent table.
type Reference struct {
	Table string `json:"table"`
	Field string `json:"field"`
}

// FieldDescriptor is the classified type information for one column.
// Subtype, Format and Ref are mutually exclusive attributes tied to Type;
// Validate enforces the presence rules.
type FieldDescriptor struct {
	Type    FieldType  `json:"type"`
	Subtype Subtype    `json:"subtype,omitempty"`
	Format  string     `json:"format,omitempty"`
	Ref     *Reference `json:"ref,omitempty"`
}

// Validate checks the type/subtype/format/ref presence rules.
func (f FieldDescriptor) Validate() error {
	switch f.Type {
	case TypeID:
		if f.Subtype != SubtypeInteger && f.Subtype != SubtypeString {
			return fmt.Errorf("id fields require an integer or string subtype, got %q", f.Subtype)
		}
	case TypeNumerical:
		if f.Subtype != SubtypeInteger && f.Subtype != SubtypeFloat {
			return fmt.Errorf("numerical fields require an integer or float subtype, got %q", f.Subtype)
		}
	case TypeCategorical, TypeBoolean, TypeDatetime:
		if f.Subtype != "" {
			return fmt.Errorf("%s fields carry no subtype, got %q", f.Type, f.Subtype)
		}
	default:
		return fmt.Errorf("unknown field type %q", f.Type)
	}

	if f.Format != "" && f.Type != TypeDatetime {
		return fmt.Errorf("format is only valid on datetime fields, not %s", f.Type)
	}
	if f.Ref != nil {
		if f.Type != TypeID {
			return fmt.Errorf("only id fields may carry a reference, not %s", f.Type)
		}
		if f.Ref.Table == "" || f.Ref.Field == "" {
			return fmt.Errorf("reference requires both table and field")
		}
	}
	return nil
}

// clone returns a deep copy so callers cannot mutate stored descriptors
// through the shared Ref pointer.
func (f FieldDescriptor) clone() FieldDescriptor {
	c := f
	if f.Ref != nil {
		ref := *f.Ref
		c.Ref = &ref
	}
	return c
}
