package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for phyloreport.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phyloreport",
		Short: "Render phylogenetic analyses of cancer samples as HTML reports",
		Long: `phyloreport renders the results of a phylogenetic analysis of cancer samples
into a self-contained HTML report: sequencing statistics, genetic similarity
tables, the evolutionary conflict graph, incompatible mutation patterns and
putative data artifacts.

Analyses are read from snapshot files (YAML/JSON documents, Excel workbooks
or SQLite databases). Plots are referenced by path and never generated.

Patient identifiers are masked in log output unless --show-identifiers is set.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("show-identifiers", false,
		"Do not mask patient identifiers in log output")

	cmd.AddCommand(NewRenderCmd())
	cmd.AddCommand(NewBatchCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
