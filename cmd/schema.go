package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wundergraph/graphql-anonymizer/pkg/anonymizer"
)

var schemaFormatOnly bool

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:     "schema",
	Short:   "schema anonymizes a graphql schema file and prints it to std out",
	Example: "graphql-anonymizer schema starwars.schema.graphql > anonymized.graphql",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("schema: must provide 1 arg (fileName)")
		}

		schema, err := anonymizer.NewSchemaFromFile(args[0])
		if err != nil {
			return err
		}

		if schemaFormatOnly {
			pretty, err := schema.Pretty()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), pretty)
			return err
		}

		renaming, err := anonymizer.RenameSchema(schema)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), renaming.Schema.String())
		return err
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().BoolVar(&schemaFormatOnly, "format-only", false, "only formats the schema without renaming it")
}
