// Package main provides the entry point for the spatialmatch CLI.
package main

import (
	"os"

	"github.com/carmenstack/spatialmatch/cmd/spatialmatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
