package polyjson

import (
	"reflect"
	"sync"
)

// DeclaredType associates one concrete variant type with the discriminators
// it is registered under. A type may carry several discriminators (it is
// then decodable from any of them), or none at all, in which case it only
// participates in the group's native type resolution and is never advertised
// as a polymorphic variant.
type DeclaredType struct {
	Type           reflect.Type
	Discriminators []Discriminator
}

// Variant declares T under a string discriminator.
func Variant[T any](tag string) DeclaredType {
	return DeclaredType{
		Type:           reflect.TypeOf((*T)(nil)).Elem(),
		Discriminators: []Discriminator{StringDiscriminator(tag)},
	}
}

// IntVariant declares T under an integer discriminator.
func IntVariant[T any](tag int32) DeclaredType {
	return DeclaredType{
		Type:           reflect.TypeOf((*T)(nil)).Elem(),
		Discriminators: []Discriminator{IntDiscriminator(tag)},
	}
}

// TaggedVariant declares T under zero or more explicit discriminators.
func TaggedVariant[T any](tags ...Discriminator) DeclaredType {
	return DeclaredType{
		Type:           reflect.TypeOf((*T)(nil)).Elem(),
		Discriminators: tags,
	}
}

// TypeGroup is the unit of registration: an immutable bundle of concrete
// variant types and their discriminators, plus the group's native type
// resolution capability.
//
// DefaultResolver returns the group's shareable resolver used when no base
// configuration was supplied; implementations should build it once and reuse
// it. ResolverFor returns a resolver customized for the given configuration
// and must not retain or mutate opts.
type TypeGroup interface {
	// Name identifies the group in error messages and diagnostics.
	Name() string
	// DeclaredTypes returns the group's declarations in declaration order.
	DeclaredTypes() []DeclaredType
	// DefaultResolver returns the group's shared default metadata provider.
	DefaultResolver() TypeResolver
	// ResolverFor returns a metadata provider honoring the supplied options.
	ResolverFor(opts *Options) TypeResolver
}

// typeGroup is the stock TypeGroup implementation produced by NewTypeGroup.
type typeGroup struct {
	name  string
	decls []DeclaredType

	defaultOnce     sync.Once
	defaultResolver TypeResolver
}

// NewTypeGroup constructs an immutable type group from static declarations.
// Every declared type must be a struct or pointer-to-struct; anything else
// cannot carry the discriminator envelope and is a configuration error.
func NewTypeGroup(name string, decls ...DeclaredType) (TypeGroup, error) {
	if name == "" {
		return nil, configErrorf("type group name must not be empty")
	}
	copied := make([]DeclaredType, len(decls))
	for i, d := range decls {
		if d.Type == nil {
			return nil, configErrorf("group %q: declaration %d has no type", name, i)
		}
		st := d.Type
		if st.Kind() == reflect.Ptr {
			st = st.Elem()
		}
		if st.Kind() != reflect.Struct {
			return nil, configErrorf("group %q: %s is not a struct or pointer-to-struct", name, d.Type)
		}
		tags := make([]Discriminator, len(d.Discriminators))
		copy(tags, d.Discriminators)
		copied[i] = DeclaredType{Type: d.Type, Discriminators: tags}
	}
	return &typeGroup{name: name, decls: copied}, nil
}

// MustTypeGroup is like NewTypeGroup but panics on a configuration error.
// Intended for package-level registration of static declarations.
func MustTypeGroup(name string, decls ...DeclaredType) TypeGroup {
	g, err := NewTypeGroup(name, decls...)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *typeGroup) Name() string {
	return g.name
}

func (g *typeGroup) DeclaredTypes() []DeclaredType {
	cp := make([]DeclaredType, len(g.decls))
	copy(cp, g.decls)
	return cp
}

func (g *typeGroup) DefaultResolver() TypeResolver {
	g.defaultOnce.Do(func() {
		g.defaultResolver = newGroupResolver(g.decls, nil)
	})
	return g.defaultResolver
}

func (g *typeGroup) ResolverFor(opts *Options) TypeResolver {
	if opts == nil {
		return g.DefaultResolver()
	}
	return newGroupResolver(g.decls, opts)
}
