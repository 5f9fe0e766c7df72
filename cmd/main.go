package main

// Entry point: runs the cobra command tree and exits non-zero on error.

import (
	"fmt"
	"os"

	"grafica-energia/cmd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
