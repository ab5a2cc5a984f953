package cmd

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"metaforge/internal/dialect"
	"metaforge/internal/metadata"
	"metaforge/internal/source"
)

var (
	extractOut    string
	extractRows   int
	extractTables []string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract schema metadata from a live database",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := connectDB(); err != nil {
			return err
		}
		defer DB.Close()

		fmt.Printf("Connected via %s\n", DriverName)

		d := dialect.ForDriver(DriverName)
		log.Printf("Using dialect: %s", DriverName)

		sampleRows := viper.GetInt("settings.sample_rows")
		if extractRows > 0 {
			sampleRows = extractRows
		}

		log.Println("Analyzing schema...")
		start := time.Now()

		uiprogress.Start()
		bar := uiprogress.AddBar(100).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return "Sampling:   "
		})

		extractor := source.NewExtractor(DB, d, SchemaName)
		tables, err := extractor.Extract(sampleRows, func(string) {
			bar.Incr()
		})
		uiprogress.Stop()
		if err != nil {
			return err
		}

		tables = filterTables(tables, extractTables)
		if len(tables) == 0 {
			return fmt.Errorf("no matching tables found")
		}
		tables = source.SortByDependencies(tables)

		store := metadata.New()
		registered := make(map[string]*source.ExtractedTable)
		for _, t := range tables {
			opts := []metadata.TableOption{}
			if t.PrimaryKey != "" {
				opts = append(opts, metadata.WithPrimaryKey(t.PrimaryKey))
			}
			unmet := source.UnmetForeignKeys(t, registered)
			fkColumns := make(map[string]bool)
			for _, fk := range t.ForeignKeys {
				if containsFK(unmet, fk) {
					log.Printf("Warning: dropping %s.%s -> %s.%s (%s)",
						t.Data.Name, fk.Column, fk.RefTable, fk.RefColumn, dropReason(fk, registered))
					continue
				}
				fkColumns[fk.Column] = true
				opts = append(opts, metadata.WithParent(fk.RefTable, fk.Column))
			}
			if overrides := declaredTypeOverrides(t, fkColumns); len(overrides) > 0 {
				opts = append(opts, metadata.WithFieldOverrides(overrides))
			}
			if _, err := store.AddTable(t.Data.Name, t.Data, opts...); err != nil {
				return fmt.Errorf("failed to register table %s: %w", t.Data.Name, err)
			}
			registered[t.Data.Name] = t
		}

		fmt.Println("\nExtraction summary:")
		fmt.Print(store.Summary())

		if err := store.SaveJSON(extractOut); err != nil {
			return err
		}
		color.Green("Metadata written to %s (%d tables, %s elapsed)",
			extractOut, len(tables), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "metadata.json", "Output path for the metadata document")
	extractCmd.Flags().IntVar(&extractRows, "rows", 0, "Rows to sample per table for inference (overrides config)")
	extractCmd.Flags().StringSliceVarP(&extractTables, "tables", "t", []string{}, "Specific tables to extract (comma-separated)")

	viper.SetDefault("settings.sample_rows", 100)
}

func filterTables(tables []*source.ExtractedTable, wanted []string) []*source.ExtractedTable {
	if len(wanted) == 0 {
		return tables
	}
	requested := make(map[string]bool)
	for _, name := range wanted {
		requested[strings.ToLower(name)] = true
	}
	var out []*source.ExtractedTable
	for _, t := range tables {
		if requested[strings.ToLower(t.Data.Name)] {
			out = append(out, t)
		}
	}
	return out
}

// declaredTypeOverrides maps the catalog type of a column onto a field
// descriptor when its sample is entirely null, so empty columns keep a
// useful type instead of degrading to categorical. Key columns are left
// alone; registration types them anyway.
func declaredTypeOverrides(t *source.ExtractedTable, fkColumns map[string]bool) map[string]metadata.FieldDescriptor {
	overrides := make(map[string]metadata.FieldDescriptor)
	for _, col := range t.Data.Columns {
		if col.Name == t.PrimaryKey || fkColumns[col.Name] || !allNull(col.Values) {
			continue
		}
		if desc, ok := descriptorForSQLType(t.DeclaredTypes[col.Name]); ok {
			overrides[col.Name] = desc
		}
	}
	return overrides
}

func allNull(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func descriptorForSQLType(normalized string) (metadata.FieldDescriptor, bool) {
	switch strings.ToLower(normalized) {
	case "int", "integer", "bigint", "smallint", "tinyint":
		return metadata.FieldDescriptor{Type: metadata.TypeNumerical, Subtype: metadata.SubtypeInteger}, true
	case "decimal", "float", "double", "real", "numeric":
		return metadata.FieldDescriptor{Type: metadata.TypeNumerical, Subtype: metadata.SubtypeFloat}, true
	case "boolean", "bool":
		return metadata.FieldDescriptor{Type: metadata.TypeBoolean}, true
	case "date", "datetime", "timestamp":
		return metadata.FieldDescriptor{Type: metadata.TypeDatetime}, true
	}
	return metadata.FieldDescriptor{}, false
}

func dropReason(fk source.ForeignKey, registered map[string]*source.ExtractedTable) string {
	parent, ok := registered[fk.RefTable]
	switch {
	case !ok:
		return "parent not registered, likely a cycle"
	case parent.PrimaryKey == "":
		return "parent has no single-column primary key"
	default:
		return "reference bypasses the parent's primary key"
	}
}

func containsFK(fks []source.ForeignKey, fk source.ForeignKey) bool {
	for _, f := range fks {
		if f == fk {
			return true
		}
	}
	return false
}
