package source_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metaforge/internal/source"
)

func TestReadCSV(t *testing.T) {
	data := strings.NewReader("user_id,country,age\n0,US,31\n1,FR,44\n2,DE,28\n")

	table, err := source.ReadCSV("users", data, 0)
	require.NoError(t, err)

	assert.Equal(t, "users", table.Name)
	assert.Equal(t, []string{"user_id", "country", "age"}, table.ColumnNames())
	assert.Equal(t, 3, table.Rows())

	col, ok := table.Column("country")
	require.True(t, ok)
	assert.Equal(t, []string{"US", "FR", "DE"}, col.Values)
}

func TestReadCSV_SampleLimit(t *testing.T) {
	data := strings.NewReader("id\n0\n1\n2\n3\n4\n")
	table, err := source.ReadCSV("nums", data, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Rows())
}

func TestReadCSV_RaggedRowsBecomeNulls(t *testing.T) {
	data := strings.NewReader("a,b\n1,2\n3\n")
	table, err := source.ReadCSV("ragged", data, 0)
	require.NoError(t, err)

	col, _ := table.Column("b")
	assert.Equal(t, []string{"2", ""}, col.Values)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := source.ReadCSV("empty", strings.NewReader(""), 0)
	assert.Error(t, err)
}

func TestFromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(path, []byte("user_id,name\n0,ann\n1,bob\n"), 0o644))

	table, err := source.FromCSV("users", path, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Rows())

	_, err = source.FromCSV("users", filepath.Join(t.TempDir(), "missing.csv"), 0)
	assert.Error(t, err)
}

func TestTable_AddColumnDuplicate(t *testing.T) {
	table := source.New("users")
	require.NoError(t, table.AddColumn("id", []string{"0"}))
	assert.Error(t, table.AddColumn("id", []string{"1"}))
}
