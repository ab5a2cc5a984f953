package source

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"metaforge/internal/dialect"
)

// ForeignKey is a declared reference from a column to another table's column.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// ExtractedTable bundles a sampled table with the keys declared in the
// database catalog, ready to be registered with the metadata store.
// DeclaredTypes maps column names to their normalized catalog type; callers
// can fall back on it when a column's sample is too sparse to classify.
type ExtractedTable struct {
	Data          *Table
	PrimaryKey    string
	ForeignKeys   []ForeignKey
	Dependencies  []string
	DeclaredTypes map[string]string

	catalogOrder []string
}

// Extractor walks a live schema through a Dialect and samples rows for
// type inference.
type Extractor struct {
	db      *sql.DB
	dialect dialect.Dialect
	schema  string
}

func NewExtractor(db *sql.DB, d dialect.Dialect, schemaName string) *Extractor {
	return &Extractor{db: db, dialect: d, schema: schemaName}
}

// Extract reads the table catalog, declared keys and a sample of up to
// sampleLimit rows per table. onTable, when non-nil, is called once per
// sampled table for progress reporting. Lookups use normalized (uppercase)
// keys so case-folding databases like Oracle resolve correctly.
func (e *Extractor) Extract(sampleLimit int, onTable func(name string)) ([]*ExtractedTable, error) {
	target := e.dialect.SchemaName(e.schema)

	tableMap := make(map[string]*ExtractedTable)
	var tables []*ExtractedTable

	rows, err := e.db.Query(e.dialect.TablesQuery(target), target)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		t := &ExtractedTable{
			Data:          New(name),
			Dependencies:  []string{},
			DeclaredTypes: make(map[string]string),
		}
		tableMap[strings.ToUpper(name)] = t
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}

	if err := e.loadColumns(target, tableMap); err != nil {
		return nil, err
	}
	if err := e.loadPrimaryKeys(target, tableMap); err != nil {
		return nil, err
	}
	if err := e.loadForeignKeys(target, tableMap); err != nil {
		return nil, err
	}

	for _, t := range tables {
		if err := e.sampleTable(t, sampleLimit); err != nil {
			return nil, err
		}
		if onTable != nil {
			onTable(t.Data.Name)
		}
	}

	return tables, nil
}

func (e *Extractor) loadColumns(target string, tableMap map[string]*ExtractedTable) error {
	rows, err := e.db.Query(e.dialect.ColumnsQuery(target), target)
	if err != nil {
		return fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tName, cName, cType sql.NullString
		if err := rows.Scan(&tName, &cName, &cType); err != nil {
			return fmt.Errorf("failed to scan column: %w", err)
		}
		if !tName.Valid || !cName.Valid {
			continue
		}
		t, ok := tableMap[strings.ToUpper(tName.String)]
		if !ok {
			continue
		}
		t.catalogOrder = append(t.catalogOrder, cName.String)
		t.DeclaredTypes[cName.String] = e.dialect.NormalizeType(cType.String)
	}
	return rows.Err()
}

func (e *Extractor) loadPrimaryKeys(target string, tableMap map[string]*ExtractedTable) error {
	rows, err := e.db.Query(e.dialect.PrimaryKeysQuery(target), target)
	if err != nil {
		return fmt.Errorf("failed to query primary keys: %w", err)
	}
	defer rows.Close()

	keyColumns := make(map[string]int)
	for rows.Next() {
		var tName, cName sql.NullString
		if err := rows.Scan(&tName, &cName); err != nil {
			return fmt.Errorf("failed to scan primary key: %w", err)
		}
		if !tName.Valid || !cName.Valid {
			continue
		}
		key := strings.ToUpper(tName.String)
		if t, ok := tableMap[key]; ok {
			keyColumns[key]++
			if keyColumns[key] == 1 {
				t.PrimaryKey = cName.String
			} else {
				// Composite keys cannot uniquely reference a single
				// field; treat the table as unkeyed.
				t.PrimaryKey = ""
			}
		}
	}
	return rows.Err()
}

func (e *Extractor) loadForeignKeys(target string, tableMap map[string]*ExtractedTable) error {
	rows, err := e.db.Query(e.dialect.ForeignKeysQuery(target), target)
	if err != nil {
		return fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tName, cConst, cName, rTable, rCol sql.NullString
		if err := rows.Scan(&tName, &cConst, &cName, &rTable, &rCol); err != nil {
			return fmt.Errorf("failed to scan foreign key: %w", err)
		}
		if !tName.Valid || !rTable.Valid || tName.String == rTable.String {
			continue
		}
		t, ok := tableMap[strings.ToUpper(tName.String)]
		if !ok {
			continue
		}
		ref, ok := tableMap[strings.ToUpper(rTable.String)]
		if !ok {
			continue // reference to a table outside the target schema
		}
		t.Dependencies = append(t.Dependencies, ref.Data.Name)
		t.ForeignKeys = append(t.ForeignKeys, ForeignKey{
			Column:    cName.String,
			RefTable:  ref.Data.Name,
			RefColumn: rCol.String,
		})
	}
	return rows.Err()
}

func (e *Extractor) sampleTable(t *ExtractedTable, limit int) error {
	query := e.dialect.SampleQuery(fmt.Sprintf("SELECT * FROM %s", t.Data.Name), limit)
	rows, err := e.db.Query(query)
	if err != nil {
		return fmt.Errorf("failed to sample table %s: %w", t.Data.Name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to read columns of %s: %w", t.Data.Name, err)
	}

	values := make([][]string, len(cols))
	scan := make([]any, len(cols))
	for rows.Next() {
		raw := make([]any, len(cols))
		for i := range raw {
			scan[i] = &raw[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return fmt.Errorf("failed to scan row of %s: %w", t.Data.Name, err)
		}
		for i, v := range raw {
			values[i] = append(values[i], formatValue(v))
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows of %s: %w", t.Data.Name, err)
	}

	if len(cols) == 0 {
		// Some drivers report no result columns for an empty table; the
		// catalog still knows its shape.
		for _, name := range t.catalogOrder {
			if err := t.Data.AddColumn(name, nil); err != nil {
				return err
			}
		}
		return nil
	}
	for i, name := range cols {
		if err := t.Data.AddColumn(name, values[i]); err != nil {
			return err
		}
	}
	return nil
}

// formatValue renders a driver value as a string sample. NULL becomes the
// empty string, which the inferrer treats as null.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
