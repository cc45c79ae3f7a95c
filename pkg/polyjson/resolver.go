package polyjson

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// TypeInfo carries the encode/decode hooks the pipeline uses for a single
// concrete type. The stock hooks delegate to encoding/json; custom TypeGroup
// implementations may return hand-rolled hooks (fixed-precision timestamps,
// legacy field aliases, and so on).
type TypeInfo struct {
	Type      reflect.Type
	Marshal   func(v interface{}) ([]byte, error)
	Unmarshal func(data []byte, v interface{}) error
}

// TypeResolver is a group-native metadata provider. The combined pipeline
// consults resolvers in group-registration order for every type that is not
// handled by a compiled polymorphic resolution.
type TypeResolver interface {
	// ResolveTypeInfo returns the metadata for t, or false if this resolver
	// does not know t.
	ResolveTypeInfo(t reflect.Type) (*TypeInfo, bool)
}

// groupResolver is the stock TypeResolver: it answers for exactly the types
// its group declares, delegating the byte-level work to the engine.
type groupResolver struct {
	infos map[reflect.Type]*TypeInfo
}

func newGroupResolver(decls []DeclaredType, opts *Options) *groupResolver {
	infos := make(map[reflect.Type]*TypeInfo, len(decls))
	for _, d := range decls {
		if _, ok := infos[d.Type]; ok {
			continue
		}
		infos[d.Type] = engineTypeInfo(d.Type, opts)
	}
	return &groupResolver{infos: infos}
}

func (r *groupResolver) ResolveTypeInfo(t reflect.Type) (*TypeInfo, bool) {
	info, ok := r.infos[t]
	return info, ok
}

// engineTypeInfo builds the default encoding/json-backed metadata for t.
func engineTypeInfo(t reflect.Type, opts *Options) *TypeInfo {
	strict := opts != nil && opts.DisallowUnknownFields
	return &TypeInfo{
		Type:    t,
		Marshal: json.Marshal,
		Unmarshal: func(data []byte, v interface{}) error {
			if strict {
				dec := json.NewDecoder(bytes.NewReader(data))
				dec.DisallowUnknownFields()
				return dec.Decode(v)
			}
			return json.Unmarshal(data, v)
		},
	}
}
