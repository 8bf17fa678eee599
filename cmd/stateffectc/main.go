package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the entry point for the stateffectc tool.
var rootCmd = &cobra.Command{
	Use:   "stateffectc",
	Short: "Validate and apply effect descriptions",
	Long: `stateffectc works with declarative effect descriptions: validate them
against the built-in shape catalog, or apply them to a state document
and print the result.

Examples:
  # Validate effect files
  stateffectc check effects.yaml more-effects.json

  # Apply an effect file to a state document
  stateffectc apply effects.yaml --state state.json`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
