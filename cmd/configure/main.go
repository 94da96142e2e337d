package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stackit-qa/stackit-api/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:           "stackit-configure",
		Short:         "Configuration tool for the StackIt API",
		Long:          "CLI tool for bootstrapping the schema, tuning the rate limit and inspecting route groups",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().Bool("verbose", false, "Log progress to stderr")

	rootCmd.AddCommand(commands.NewSchemaCmd())
	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewRoutesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
