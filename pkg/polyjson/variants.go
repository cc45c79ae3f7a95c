package polyjson

import "reflect"

// VariantEntry pairs a concrete type with the discriminator it is advertised
// under for one base type. Entries are ephemeral: they are recomputed per
// resolution request and compiled into an immutable resolution.
type VariantEntry struct {
	Type reflect.Type
	Tag  Discriminator
}

// resolveVariants filters every group's declared types down to those
// assignable to base and carrying at least one discriminator.
//
// Order is significant and stable: group-registration order, then declaration
// order within a group. When a declaration carries several discriminators
// only the first is taken (first-declared wins); this is a tie-break, not an
// error.
func resolveVariants(base reflect.Type, groups []TypeGroup) []VariantEntry {
	var entries []VariantEntry
	for _, g := range groups {
		for _, d := range g.DeclaredTypes() {
			if len(d.Discriminators) == 0 {
				continue
			}
			if !d.Type.AssignableTo(base) {
				continue
			}
			entries = append(entries, VariantEntry{Type: d.Type, Tag: d.Discriminators[0]})
		}
	}
	return entries
}
