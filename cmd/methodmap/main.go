// Package main is the entry point for the methodmap CLI.
package main

import (
	"os"

	"github.com/runger/methodmap/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
