// Package manifest loads and validates YAML descriptions of type groups for
// tooling that has no access to the compiled Go declarations.
package manifest

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Manifest mirrors a registration list: one entry per type group, each
// enumerating the concrete types it declares and their discriminators.
type Manifest struct {
	Groups []Group `yaml:"groups"`
}

// Group is one declared type group.
type Group struct {
	Name  string     `yaml:"name"`
	Types []TypeDecl `yaml:"types"`
}

// TypeDecl declares one concrete type. Discriminator must be a YAML string
// or integer; a missing discriminator means the type is declared but never
// advertised polymorphically.
type TypeDecl struct {
	Name          string      `yaml:"name"`
	Discriminator interface{} `yaml:"discriminator"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks structural rules: non-empty unique group names, non-empty
// type names, string-or-int32 discriminators, and no duplicate discriminators
// across groups (duplicates fail the compiled resolution, so the manifest
// rejects them too).
func (m *Manifest) Validate() error {
	if len(m.Groups) == 0 {
		return fmt.Errorf("manifest declares no groups")
	}
	groupNames := make(map[string]bool)
	tags := make(map[string]string)
	for gi, g := range m.Groups {
		if g.Name == "" {
			return fmt.Errorf("group %d has no name", gi)
		}
		if groupNames[g.Name] {
			return fmt.Errorf("duplicate group name %q", g.Name)
		}
		groupNames[g.Name] = true
		for ti, decl := range g.Types {
			if decl.Name == "" {
				return fmt.Errorf("group %q: type %d has no name", g.Name, ti)
			}
			if decl.Discriminator == nil {
				continue
			}
			key, err := TagKey(decl.Discriminator)
			if err != nil {
				return fmt.Errorf("group %q, type %q: %w", g.Name, decl.Name, err)
			}
			owner := g.Name + "/" + decl.Name
			if prev, ok := tags[key]; ok {
				return fmt.Errorf("duplicate discriminator %s declared by %s and %s", key, prev, owner)
			}
			tags[key] = owner
		}
	}
	return nil
}

// Tags returns every declared discriminator, keyed canonically, mapped to
// the "group/type" that declares it.
func (m *Manifest) Tags() map[string]string {
	tags := make(map[string]string)
	for _, g := range m.Groups {
		for _, decl := range g.Types {
			if decl.Discriminator == nil {
				continue
			}
			key, err := TagKey(decl.Discriminator)
			if err != nil {
				continue
			}
			if _, ok := tags[key]; !ok {
				tags[key] = g.Name + "/" + decl.Name
			}
		}
	}
	return tags
}

// TagKey canonicalizes a discriminator value so string "1" and integer 1
// never collide: strings are quoted, integers rendered in decimal.
func TagKey(v interface{}) (string, error) {
	switch d := v.(type) {
	case string:
		return strconv.Quote(d), nil
	case int:
		if d < math.MinInt32 || d > math.MaxInt32 {
			return "", fmt.Errorf("discriminator %d overflows int32", d)
		}
		return strconv.Itoa(d), nil
	case int64:
		if d < math.MinInt32 || d > math.MaxInt32 {
			return "", fmt.Errorf("discriminator %d overflows int32", d)
		}
		return strconv.FormatInt(d, 10), nil
	default:
		return "", fmt.Errorf("discriminator must be a string or integer, got %T", v)
	}
}
