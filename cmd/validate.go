package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"metaforge/internal/metadata"
)

var validateTable string

var validateCmd = &cobra.Command{
	Use:   "validate <metadata.json>",
	Short: "Validate a metadata document and print its summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := metadata.LoadJSON(args[0])
		if err != nil {
			color.Red("Document is invalid: %v", err)
			return err
		}

		if validateTable != "" {
			doc, err := store.Describe(validateTable)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Print(store.Summary())

		order := store.Graph().TopoOrder()
		fmt.Printf("Generation order: %s\n", strings.Join(order, " -> "))

		color.Green("Document is valid (%d tables, %d relationships)",
			len(store.TableNames()), len(store.Graph().Edges()))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateTable, "table", "t", "", "Describe a single table as JSON instead of the full summary")
}
