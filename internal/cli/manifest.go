package cli

import (
	"github.com/spf13/cobra"

	"github.com/iv-soft/polyjson/internal/manifest"
)

func newManifestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Type group manifest utilities",
	}
	cmd.AddCommand(newManifestValidateCommand())
	return cmd
}

func newManifestValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Validate a type group manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(args[0])
			if err != nil {
				return err
			}
			cmd.Printf("%s: %d groups, %d discriminators\n", args[0], len(m.Groups), len(m.Tags()))
			return nil
		},
	}
}
