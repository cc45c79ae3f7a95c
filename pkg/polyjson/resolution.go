package polyjson

import "reflect"

// compiledResolution is the immutable, precomputed strategy telling the
// engine how to encode and decode one base type polymorphically: which
// variants exist, under which discriminators, and in which order.
//
// Unknown discriminators during decode and undeclared runtime types during
// encode always fail; there is no tolerant fallback.
type compiledResolution struct {
	base    reflect.Type
	entries []VariantEntry
	byTag   map[Discriminator]reflect.Type
	byType  map[reflect.Type]Discriminator
}

// compileResolution builds the resolution for base from the ordered variant
// entries. Duplicate discriminators across merged groups fail fast here with
// a configuration error rather than inheriting engine-dependent behavior.
func compileResolution(base reflect.Type, entries []VariantEntry) (*compiledResolution, error) {
	res := &compiledResolution{
		base:    base,
		entries: entries,
		byTag:   make(map[Discriminator]reflect.Type, len(entries)),
		byType:  make(map[reflect.Type]Discriminator, len(entries)),
	}
	for _, e := range entries {
		if prev, ok := res.byTag[e.Tag]; ok {
			if prev == e.Type {
				continue
			}
			return nil, configErrorf("duplicate discriminator %s for %s and %s under base %s",
				e.Tag, prev, e.Type, base)
		}
		res.byTag[e.Tag] = e.Type
		if _, ok := res.byType[e.Type]; !ok {
			res.byType[e.Type] = e.Tag
		}
	}
	return res, nil
}

// tagFor returns the discriminator advertised for the runtime type t. It
// accepts both the declared form and its pointer/value counterpart, since an
// interface value may hold either.
func (r *compiledResolution) tagFor(t reflect.Type) (Discriminator, reflect.Type, bool) {
	if tag, ok := r.byType[t]; ok {
		return tag, t, true
	}
	if t.Kind() == reflect.Ptr {
		if tag, ok := r.byType[t.Elem()]; ok {
			return tag, t.Elem(), true
		}
	} else if tag, ok := r.byType[reflect.PtrTo(t)]; ok {
		return tag, reflect.PtrTo(t), true
	}
	return Discriminator{}, nil, false
}

// typeFor returns the concrete type registered under tag.
func (r *compiledResolution) typeFor(tag Discriminator) (reflect.Type, bool) {
	t, ok := r.byTag[tag]
	return t, ok
}
