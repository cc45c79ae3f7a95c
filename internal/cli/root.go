// Package cli provides the command-line interface for polyjson tooling.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand assembles the polyjson command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "polyjson",
		Short: "Tools for discriminator-tagged polymorphic JSON",
	}

	rootCmd.AddCommand(newLintCommand())
	rootCmd.AddCommand(newManifestCommand())

	return rootCmd
}

// Execute creates and runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}
