// Package main provides the CLI for polyjson tooling.
package main

import (
	"os"

	"github.com/iv-soft/polyjson/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
