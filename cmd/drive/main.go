// Command drive is the CLI for the tabular document engine: it creates
// documents, manages their schema and data, runs the filter/search/sort
// pipeline over a document and duplicates whole documents.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
