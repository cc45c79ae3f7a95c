package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `
groups:
  - name: shapes
    types:
      - name: Circle
        discriminator: circle
      - name: UnitShape
        discriminator: 1
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runLint(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"lint"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestLintValidDocuments(t *testing.T) {
	dir := t.TempDir()
	mf := writeFile(t, dir, "groups.yaml", testManifest)
	doc := writeFile(t, dir, "ok.json", `{"$type":"circle","Radius":5}`)
	arr := writeFile(t, dir, "list.json", `[{"$type":"circle"},{"$type":1}]`)

	out, err := runLint(t, "--manifest", mf, doc, arr)
	require.NoError(t, err)
	assert.Contains(t, out, "ok.json: ok")
	assert.Contains(t, out, "list.json: ok")
}

func TestLintFailures(t *testing.T) {
	dir := t.TempDir()
	mf := writeFile(t, dir, "groups.yaml", testManifest)

	tests := []struct {
		name    string
		content string
		problem string
	}{
		{
			name:    "unknown discriminator",
			content: `{"$type":"hexagon"}`,
			problem: "unknown discriminator",
		},
		{
			name:    "missing discriminator",
			content: `{"Radius":5}`,
			problem: `missing "$type"`,
		},
		{
			name:    "non-scalar discriminator",
			content: `{"$type":{}}`,
			problem: `"$type" must be a string or 32-bit integer`,
		},
		{
			name:    "invalid json",
			content: `{`,
			problem: "invalid JSON",
		},
		{
			name:    "bad element in array",
			content: `[{"$type":"circle"},{"$type":"hexagon"}]`,
			problem: "element 1: unknown discriminator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := writeFile(t, dir, "doc.json", tt.content)
			out, err := runLint(t, "--manifest", mf, doc)
			assert.Error(t, err)
			assert.Contains(t, out, tt.problem)
		})
	}
}

func TestLintMissingManifest(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.json", `{"$type":"circle"}`)
	_, err := runLint(t, "--manifest", filepath.Join(dir, "nope.yaml"), doc)
	assert.Error(t, err)
}

func TestManifestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	mf := writeFile(t, dir, "groups.yaml", testManifest)

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"manifest", "validate", mf})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "1 groups, 2 discriminators")
}
