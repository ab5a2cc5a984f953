package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"metaforge/internal/metadata"
	"metaforge/internal/source"
)

var (
	inferOut       string
	inferRows      int
	inferTables    []string
	inferKeys      []string
	inferRelations []string
)

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Infer schema metadata from CSV files",
	Long: `Builds a metadata document from CSV samples.

Tables are declared as name=path pairs and registered in the order given,
so parents must be listed before the tables that reference them:

  metaforge infer \
    --table users=data/users.csv --table sessions=data/sessions.csv \
    --primary-key users=user_id --primary-key sessions=session_id \
    --relation sessions.user_id=users
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(inferTables) == 0 {
			return fmt.Errorf("at least one --table name=path is required")
		}

		primaryKeys := make(map[string]string)
		for _, spec := range inferKeys {
			table, field, err := splitPair(spec, "=")
			if err != nil {
				return fmt.Errorf("invalid --primary-key %q: want table=field", spec)
			}
			primaryKeys[table] = field
		}

		relations := make(map[string][]metadata.TableOption)
		for _, spec := range inferRelations {
			childRef, parent, err := splitPair(spec, "=")
			if err != nil {
				return fmt.Errorf("invalid --relation %q: want child.field=parent", spec)
			}
			child, field, err := splitPair(childRef, ".")
			if err != nil {
				return fmt.Errorf("invalid --relation %q: want child.field=parent", spec)
			}
			relations[child] = append(relations[child], metadata.WithParent(parent, field))
		}

		store := metadata.New()
		for _, spec := range inferTables {
			name, path, err := splitPair(spec, "=")
			if err != nil {
				return fmt.Errorf("invalid --table %q: want name=path", spec)
			}
			table, err := source.FromCSV(name, path, inferRows)
			if err != nil {
				return err
			}

			opts := []metadata.TableOption{}
			if pk, ok := primaryKeys[name]; ok {
				opts = append(opts, metadata.WithPrimaryKey(pk))
			}
			opts = append(opts, relations[name]...)

			if _, err := store.AddTable(name, table, opts...); err != nil {
				return fmt.Errorf("failed to register table %s: %w", name, err)
			}
			fmt.Printf("  registered %s (%d columns, %d sample rows)\n", name, len(table.Columns), table.Rows())
		}

		fmt.Println("\nInference summary:")
		fmt.Print(store.Summary())

		if err := store.SaveJSON(inferOut); err != nil {
			return err
		}
		color.Green("Metadata written to %s", inferOut)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(inferCmd)

	inferCmd.Flags().StringVarP(&inferOut, "out", "o", "metadata.json", "Output path for the metadata document")
	inferCmd.Flags().IntVar(&inferRows, "rows", 0, "Rows to sample per CSV (0 = all)")
	inferCmd.Flags().StringSliceVar(&inferTables, "table", []string{}, "Table to load, as name=path (repeatable)")
	inferCmd.Flags().StringSliceVar(&inferKeys, "primary-key", []string{}, "Primary key declaration, as table=field (repeatable)")
	inferCmd.Flags().StringSliceVar(&inferRelations, "relation", []string{}, "Foreign key declaration, as child.field=parent (repeatable)")
}

func splitPair(s, sep string) (string, string, error) {
	left, right, found := strings.Cut(s, sep)
	if !found || left == "" || right == "" {
		return "", "", fmt.Errorf("missing %q separator", sep)
	}
	return left, right, nil
}
