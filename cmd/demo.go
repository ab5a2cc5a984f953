package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"metaforge/internal/demo"
	"metaforge/internal/source"
)

var (
	demoOut    string
	demoCSVDir string
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Write the bundled demo dataset's metadata document",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := demo.Store()
		if err != nil {
			return err
		}

		fmt.Print(store.Summary())
		if err := store.SaveJSON(demoOut); err != nil {
			return err
		}
		color.Green("Demo metadata written to %s", demoOut)

		if demoCSVDir != "" {
			if err := os.MkdirAll(demoCSVDir, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", demoCSVDir, err)
			}
			for _, table := range demo.Dataset() {
				path := filepath.Join(demoCSVDir, table.Name+".csv")
				if err := writeCSV(path, table); err != nil {
					return err
				}
			}
			color.Green("Demo CSVs written to %s", demoCSVDir)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(demoCmd)

	demoCmd.Flags().StringVarP(&demoOut, "out", "o", "metadata.json", "Output path for the metadata document")
	demoCmd.Flags().StringVar(&demoCSVDir, "csv-dir", "", "Also write the demo tables as CSV files into this directory")
}

func writeCSV(path string, table *source.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(table.ColumnNames()); err != nil {
		return err
	}
	rows := table.Rows()
	for i := 0; i < rows; i++ {
		record := make([]string, len(table.Columns))
		for j, col := range table.Columns {
			if i < len(col.Values) {
				record[j] = col.Values[i]
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
