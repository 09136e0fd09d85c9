package main

import (
	"os"

	"github.com/pycfg-go/pycfg/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pycfg",
	Short: "A control-flow graph builder for Python",
	Long: `pycfg parses Python source with tree-sitter and builds a
control-flow graph for each module, function, and class it finds -
rendered as text, JSON, YAML, or Graphviz DOT.`,
	Version: version.Short(),
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewBuildCmd())
	rootCmd.AddCommand(NewDotCmd())
	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(NewInitCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
