package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// set with -ldflags "-X github.com/wundergraph/graphql-anonymizer/cmd.version=..."
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "prints the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "graphql-anonymizer %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
