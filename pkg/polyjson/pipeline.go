package polyjson

import (
	"encoding/json"
	"reflect"
	"sort"
	"sync"
)

// Pipeline is a combined, fully compiled configuration for one base type:
// the base type's polymorphic resolution first, then every group's native
// resolver in registration order, then the engine default. It is immutable
// once built (the lazy per-type caches are internally synchronized) and safe
// for concurrent use.
type Pipeline struct {
	base      reflect.Type
	opts      *Options
	groups    []TypeGroup
	resolvers []TypeResolver

	resolutions sync.Map // reflect.Type -> resolutionResult
	infos       sync.Map // reflect.Type -> *TypeInfo
	variants    sync.Map // reflect.Type -> bool
	walk        sync.Map // reflect.Type -> bool
	fields      sync.Map // reflect.Type -> fieldMap
}

type resolutionResult struct {
	res *compiledResolution
	err error
}

// combine merges the compiled resolution for base with each group's native
// resolver into a single resolution pipeline. When opts is nil the groups'
// shared default resolvers are used; otherwise each group builds a fresh
// resolver honoring opts.
func combine(base reflect.Type, groups []TypeGroup, opts *Options) (*Pipeline, error) {
	primary, err := compileResolution(base, resolveVariants(base, groups))
	if err != nil {
		return nil, err
	}
	resolvers := make([]TypeResolver, 0, len(groups))
	for _, g := range groups {
		if opts == nil {
			resolvers = append(resolvers, g.DefaultResolver())
		} else {
			resolvers = append(resolvers, g.ResolverFor(opts))
		}
	}
	p := &Pipeline{base: base, opts: opts, groups: groups, resolvers: resolvers}
	p.resolutions.Store(base, resolutionResult{res: primary})
	return p, nil
}

// Base returns the base type this pipeline was compiled for.
func (p *Pipeline) Base() reflect.Type {
	return p.base
}

// Variants returns the ordered variant entries compiled for the base type.
func (p *Pipeline) Variants() []VariantEntry {
	res, err := p.resolutionFor(p.base)
	if err != nil {
		return nil
	}
	cp := make([]VariantEntry, len(res.entries))
	copy(cp, res.entries)
	return cp
}

// resolutionFor returns the compiled resolution for base, compiling and
// caching it on first use. Nested polymorphic members hit this path for
// their own base interfaces.
func (p *Pipeline) resolutionFor(base reflect.Type) (*compiledResolution, error) {
	if v, ok := p.resolutions.Load(base); ok {
		r := v.(resolutionResult)
		return r.res, r.err
	}
	res, err := compileResolution(base, resolveVariants(base, p.groups))
	v, _ := p.resolutions.LoadOrStore(base, resolutionResult{res: res, err: err})
	r := v.(resolutionResult)
	return r.res, r.err
}

// hasVariants reports whether t is an interface with at least one declared
// variant in the registered groups.
func (p *Pipeline) hasVariants(t reflect.Type) bool {
	if t.Kind() != reflect.Interface {
		return false
	}
	if v, ok := p.variants.Load(t); ok {
		return v.(bool)
	}
	has := len(resolveVariants(t, p.groups)) > 0
	p.variants.Store(t, has)
	return has
}

// typeInfoFor walks the resolver chain for t, falling back to the engine
// default when no group answers.
func (p *Pipeline) typeInfoFor(t reflect.Type) *TypeInfo {
	if v, ok := p.infos.Load(t); ok {
		return v.(*TypeInfo)
	}
	var info *TypeInfo
	for _, r := range p.resolvers {
		if ti, ok := r.ResolveTypeInfo(t); ok {
			info = ti
			break
		}
	}
	if info == nil {
		info = engineTypeInfo(t, p.opts)
	}
	v, _ := p.infos.LoadOrStore(t, info)
	return v.(*TypeInfo)
}

var (
	jsonMarshalerType   = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	jsonUnmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
)

// needsWalk reports whether encoding or decoding t requires the pipeline to
// walk its structure member by member because a polymorphic interface hides
// somewhere inside it. Types without polymorphic members are handed to the
// resolver chain whole.
func (p *Pipeline) needsWalk(t reflect.Type) bool {
	if v, ok := p.walk.Load(t); ok {
		return v.(bool)
	}
	result := p.computeWalk(t, make(map[reflect.Type]bool))
	p.walk.Store(t, result)
	return result
}

func (p *Pipeline) computeWalk(t reflect.Type, seen map[reflect.Type]bool) bool {
	if seen[t] {
		// Recursive types terminate here; the recursion point itself was
		// already classified by its own kind.
		return false
	}
	seen[t] = true
	switch t.Kind() {
	case reflect.Interface:
		return p.hasVariants(t)
	case reflect.Ptr, reflect.Slice, reflect.Array:
		return p.computeWalk(t.Elem(), seen)
	case reflect.Map:
		return p.computeWalk(t.Elem(), seen)
	case reflect.Struct:
		if t.Implements(jsonMarshalerType) || reflect.PtrTo(t).Implements(jsonMarshalerType) ||
			t.Implements(jsonUnmarshalerType) || reflect.PtrTo(t).Implements(jsonUnmarshalerType) {
			// Custom codecs own their representation whole.
			return false
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.PkgPath != "" && !f.Anonymous {
				continue
			}
			if _, _, skip := fieldJSONName(f); skip {
				continue
			}
			if p.computeWalk(f.Type, seen) {
				return true
			}
		}
	}
	return false
}

// fieldRef locates one JSON-visible field of a struct, following anonymous
// embedded structs.
type fieldRef struct {
	name      string
	index     []int
	typ       reflect.Type
	omitEmpty bool
}

type fieldMap struct {
	ordered []fieldRef
	byName  map[string]fieldRef
}

// fieldsOf returns the JSON field layout of struct type t, cached per
// pipeline. Anonymous embedded structs without a json tag are flattened the
// way the engine flattens them, including its conflict rules: a shallower
// field shadows deeper ones, a single json-tagged field wins a same-depth
// tie, and an unresolved same-depth conflict drops the name entirely.
func (p *Pipeline) fieldsOf(t reflect.Type) fieldMap {
	if v, ok := p.fields.Load(t); ok {
		return v.(fieldMap)
	}
	fm := buildFieldMap(t)
	v, _ := p.fields.LoadOrStore(t, fm)
	return v.(fieldMap)
}

type fieldCandidate struct {
	fieldRef
	tagged bool
}

func buildFieldMap(t reflect.Type) fieldMap {
	var cands []fieldCandidate
	collectFieldCandidates(t, nil, map[reflect.Type]bool{}, &cands)

	byName := make(map[string][]fieldCandidate)
	for _, c := range cands {
		byName[c.name] = append(byName[c.name], c)
	}
	fm := fieldMap{byName: make(map[string]fieldRef)}
	for _, c := range cands {
		if _, done := fm.byName[c.name]; done {
			continue
		}
		ref, ok := dominantField(byName[c.name])
		if !ok {
			continue
		}
		fm.ordered = append(fm.ordered, ref)
		fm.byName[c.name] = ref
	}
	sort.Slice(fm.ordered, func(i, j int) bool {
		return indexLess(fm.ordered[i].index, fm.ordered[j].index)
	})
	return fm
}

func collectFieldCandidates(t reflect.Type, prefix []int, visited map[reflect.Type]bool, out *[]fieldCandidate) {
	if visited[t] {
		return
	}
	visited[t] = true
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" && !f.Anonymous {
			continue
		}
		index := append(append([]int(nil), prefix...), i)
		if f.Anonymous && f.Tag.Get("json") == "" {
			ft := f.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				collectFieldCandidates(ft, index, visited, out)
				continue
			}
		}
		name, omitEmpty, skip := fieldJSONName(f)
		if skip {
			continue
		}
		tag := f.Tag.Get("json")
		tagged := tag != "" && splitTag(tag)[0] != ""
		*out = append(*out, fieldCandidate{
			fieldRef: fieldRef{name: name, index: index, typ: f.Type, omitEmpty: omitEmpty},
			tagged:   tagged,
		})
	}
}

// dominantField picks the surviving field among same-name candidates using
// the engine's rules: least depth wins; at equal depth exactly one tagged
// field wins; anything else is a conflict and the name is not serialized.
func dominantField(cands []fieldCandidate) (fieldRef, bool) {
	depth := len(cands[0].index)
	for _, c := range cands[1:] {
		if len(c.index) < depth {
			depth = len(c.index)
		}
	}
	var shallow []fieldCandidate
	for _, c := range cands {
		if len(c.index) == depth {
			shallow = append(shallow, c)
		}
	}
	if len(shallow) == 1 {
		return shallow[0].fieldRef, true
	}
	var tagged []fieldCandidate
	for _, c := range shallow {
		if c.tagged {
			tagged = append(tagged, c)
		}
	}
	if len(tagged) == 1 {
		return tagged[0].fieldRef, true
	}
	return fieldRef{}, false
}

func indexLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// fieldJSONName resolves the JSON member name for a struct field from its
// json tag, mirroring the engine's rules for "-" and omitempty.
func fieldJSONName(f reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name = f.Name
	if tag != "" {
		parts := splitTag(tag)
		if parts[0] != "" {
			name = parts[0]
		}
		for _, opt := range parts[1:] {
			if opt == "omitempty" {
				omitEmpty = true
			}
		}
	}
	return name, omitEmpty, false
}

func splitTag(tag string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			parts = append(parts, tag[start:i])
			start = i + 1
		}
	}
	return append(parts, tag[start:])
}
