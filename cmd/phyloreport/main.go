// Package main provides the entry point for the phyloreport CLI.
//
// phyloreport renders the results of a phylogenetic analysis of cancer
// samples into a self-contained HTML report.
//
// Usage:
//
//	phyloreport render <snapshot>
//	phyloreport batch <snapshot>...
//
// See --help for all available options.
package main

// main is the entry point for phyloreport.
func main() {
	Execute()
}
