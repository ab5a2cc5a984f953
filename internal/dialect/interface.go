// Package dialect abstracts the database-specific SQL needed to introspect
// a relational schema: table, column, key and foreign-key catalogs, plus row
// sampling for type inference.
package dialect

// Dialect abstracts database-specific introspection queries. Every catalog
// query takes the schema name as its single bind parameter.
type Dialect interface {
	TablesQuery(schema string) string
	ColumnsQuery(schema string) string
	PrimaryKeysQuery(schema string) string
	ForeignKeysQuery(schema string) string

	// SampleQuery wraps a SELECT so that at most limit rows are returned.
	SampleQuery(query string, limit int) string

	// NormalizeType folds a driver-specific type name onto a common one.
	NormalizeType(sqlType string) string

	// SchemaName resolves an empty schema argument to the driver default.
	SchemaName(input string) string
}
