package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iv-soft/polyjson/internal/manifest"
)

func newLintCommand() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "lint [files...]",
		Short: "Check JSON documents' $type tags against a group manifest",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(manifestPath)
			if err != nil {
				return err
			}
			tags := m.Tags()

			failed := 0
			for _, path := range args {
				problems, err := lintFile(path, tags)
				if err != nil {
					return err
				}
				if len(problems) == 0 {
					cmd.Printf("%s: ok\n", path)
					continue
				}
				failed++
				for _, p := range problems {
					cmd.Printf("%s: %s\n", path, p)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "groups.yaml", "Path to the type group manifest")

	return cmd
}

// lintFile checks one JSON document: the root must be an object (or an array
// of objects) carrying a "$type" member declared in the manifest.
func lintFile(path string, tags map[string]string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return []string{fmt.Sprintf("invalid JSON: %v", err)}, nil
		}
		var problems []string
		for i, elem := range elems {
			for _, p := range lintValue(elem, tags) {
				problems = append(problems, fmt.Sprintf("element %d: %s", i, p))
			}
		}
		return problems, nil
	}

	return lintValue(trimmed, tags), nil
}

func lintValue(data []byte, tags map[string]string) []string {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return []string{fmt.Sprintf("invalid JSON object: %v", err)}
	}
	raw, ok := members["$type"]
	if !ok {
		return []string{`missing "$type" member`}
	}
	key, err := tagKeyFromJSON(raw)
	if err != nil {
		return []string{err.Error()}
	}
	if _, ok := tags[key]; !ok {
		return []string{fmt.Sprintf("unknown discriminator %s", key)}
	}
	return nil
}

// tagKeyFromJSON canonicalizes a raw JSON "$type" value the same way the
// manifest canonicalizes declarations.
func tagKeyFromJSON(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", fmt.Errorf(`empty "$type" value`)
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", fmt.Errorf(`invalid "$type" string: %v`, err)
		}
		return manifest.TagKey(s)
	}
	i, err := strconv.ParseInt(string(trimmed), 10, 32)
	if err != nil {
		return "", fmt.Errorf(`"$type" must be a string or 32-bit integer, got %s`, trimmed)
	}
	return manifest.TagKey(int(i))
}
