// Package main is the entry point for the fsm CLI tool.
package main

import (
	"os"

	"github.com/aidanlsb/fsm/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
