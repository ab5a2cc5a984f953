package metadata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"metaforge/internal/metadata"
)

func TestInfer_KeyLikeName(t *testing.T) {
	desc := metadata.Infer("user_id", []string{"0", "1", "2"})
	assert.Equal(t, metadata.TypeID, desc.Type)
	assert.Equal(t, metadata.SubtypeInteger, desc.Subtype)

	desc = metadata.Infer("order_uid", []string{"a-1", "a-2"})
	assert.Equal(t, metadata.TypeID, desc.Type)
	assert.Equal(t, metadata.SubtypeString, desc.Subtype)

	// "paid" ends in "id" but is not a key name.
	desc = metadata.Infer("paid", []string{"true", "false"})
	assert.Equal(t, metadata.TypeBoolean, desc.Type)
}

func TestInfer_Datetime(t *testing.T) {
	desc := metadata.Infer("start", []string{"2019-01-01 12:34:32", "2019-01-07 17:23:11"})
	assert.Equal(t, metadata.TypeDatetime, desc.Type)
	assert.Equal(t, "%Y-%m-%d %H:%M:%S", desc.Format)
	assert.Empty(t, desc.Subtype)

	desc = metadata.Infer("day", []string{"2020-05-01", "2020-06-15"})
	assert.Equal(t, metadata.TypeDatetime, desc.Type)
	assert.Equal(t, "%Y-%m-%d", desc.Format)

	// One value outside the format falls through to categorical.
	desc = metadata.Infer("day", []string{"2020-05-01", "soon"})
	assert.Equal(t, metadata.TypeCategorical, desc.Type)
}

func TestInfer_Boolean(t *testing.T) {
	assert.Equal(t, metadata.TypeBoolean, metadata.Infer("active", []string{"true", "false", "true"}).Type)
	assert.Equal(t, metadata.TypeBoolean, metadata.Infer("opt_in", []string{"Yes", "no"}).Type)

	// Bare digits are boolean only when both values occur.
	assert.Equal(t, metadata.TypeBoolean, metadata.Infer("flag", []string{"0", "1", "0"}).Type)
	zeros := metadata.Infer("count", []string{"0", "0", "0"})
	assert.Equal(t, metadata.TypeNumerical, zeros.Type)
	assert.Equal(t, metadata.SubtypeInteger, zeros.Subtype)
}

func TestInfer_Numerical(t *testing.T) {
	ints := metadata.Infer("age", []string{"18", "44", "70"})
	assert.Equal(t, metadata.TypeNumerical, ints.Type)
	assert.Equal(t, metadata.SubtypeInteger, ints.Subtype)

	floats := metadata.Infer("amount", []string{"12.50", "3", "0.99"})
	assert.Equal(t, metadata.TypeNumerical, floats.Type)
	assert.Equal(t, metadata.SubtypeFloat, floats.Subtype)
}

func TestInfer_CategoricalFallback(t *testing.T) {
	// Mixed parseability must not error, only degrade.
	desc := metadata.Infer("note", []string{"1", "two", "3"})
	assert.Equal(t, metadata.TypeCategorical, desc.Type)
	assert.Empty(t, desc.Subtype)
	assert.Empty(t, desc.Format)
	assert.Nil(t, desc.Ref)
}

func TestInfer_EmptyColumn(t *testing.T) {
	assert.Equal(t, metadata.FieldDescriptor{Type: metadata.TypeCategorical}, metadata.Infer("blank", nil))
	assert.Equal(t, metadata.FieldDescriptor{Type: metadata.TypeCategorical}, metadata.Infer("blank", []string{"", "", ""}))
}

func TestInfer_NullsAreSkipped(t *testing.T) {
	desc := metadata.Infer("age", []string{"18", "", "70"})
	assert.Equal(t, metadata.TypeNumerical, desc.Type)
	assert.Equal(t, metadata.SubtypeInteger, desc.Subtype)
}

func TestInfer_Deterministic(t *testing.T) {
	values := []string{"2019-01-01 12:34:32", "2019-01-07 17:23:11"}
	first := metadata.Infer("ts", values)
	second := metadata.Infer("ts", values)
	assert.Equal(t, first, second)
}

func TestFieldDescriptorValidate(t *testing.T) {
	valid := metadata.FieldDescriptor{Type: metadata.TypeID, Subtype: metadata.SubtypeInteger}
	assert.NoError(t, valid.Validate())

	cases := []metadata.FieldDescriptor{
		{Type: "identifier"},
		{Type: metadata.TypeID},
		{Type: metadata.TypeID, Subtype: metadata.SubtypeFloat},
		{Type: metadata.TypeNumerical, Subtype: metadata.SubtypeString},
		{Type: metadata.TypeBoolean, Subtype: metadata.SubtypeInteger},
		{Type: metadata.TypeCategorical, Format: "%Y-%m-%d"},
		{Type: metadata.TypeNumerical, Subtype: metadata.SubtypeFloat, Ref: &metadata.Reference{Table: "a", Field: "b"}},
		{Type: metadata.TypeID, Subtype: metadata.SubtypeInteger, Ref: &metadata.Reference{Table: "a"}},
	}
	for _, c := range cases {
		assert.Error(t, c.Validate(), "descriptor %+v should be rejected", c)
	}
}
