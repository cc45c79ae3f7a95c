package polyjson

import "github.com/go-playground/validator/v10"

// Options is the caller-supplied base configuration. The library never
// mutates it; two structurally identical but distinct Options values are
// deliberately treated as distinct cache keys (reference identity).
type Options struct {
	// Indent, when non-empty, pretty-prints encoded output with the given
	// per-level indentation string.
	Indent string

	// DisallowUnknownFields makes decoding fail on JSON members that do not
	// map to a field of the matched concrete type.
	DisallowUnknownFields bool

	// Validator overrides the shared validator instance used for
	// required-member checks after decode. Nil selects the cached default.
	Validator *validator.Validate
}
