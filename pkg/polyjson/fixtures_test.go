package polyjson

import "testing"

// Shared test model: a small shape hierarchy with string and integer
// discriminators, a nested polymorphic member, a pointer variant, and an
// undeclared implementation.

type shape interface {
	area() float64
}

type circle struct {
	Radius float64
}

func (c circle) area() float64 { return 3 * c.Radius * c.Radius }

type square struct {
	Side float64 `json:"side"`
}

func (s square) area() float64 { return s.Side * s.Side }

type unitShape struct {
	Scale float64 `json:"scale"`
}

func (u unitShape) area() float64 { return u.Scale }

// widget nests a polymorphic member of its own base type.
type widget struct {
	Label string `json:"label,omitempty"`
	Child shape  `json:"child"`
}

func (w widget) area() float64 {
	if w.Child == nil {
		return 0
	}
	return w.Child.area()
}

// blueprint is declared as a pointer variant.
type blueprint struct {
	Name string `json:"name"`
}

func (b *blueprint) area() float64 { return 0 }

// namedShape carries a required member.
type namedShape struct {
	Name string `json:"name" validate:"required"`
}

func (n namedShape) area() float64 { return 0 }

// assembly nests polymorphic members behind integer map keys.
type assembly struct {
	Parts map[int]shape `json:"parts"`
}

func (a assembly) area() float64 {
	var sum float64
	for _, p := range a.Parts {
		sum += p.area()
	}
	return sum
}

// triangle implements shape but is never declared in any group.
type triangle struct {
	Base float64
}

func (t triangle) area() float64 { return t.Base }

func newShapeGroup(t *testing.T) TypeGroup {
	t.Helper()
	g, err := NewTypeGroup("shapes",
		Variant[circle]("circle"),
		Variant[square]("square"),
		IntVariant[unitShape](1),
		Variant[widget]("widget"),
		Variant[*blueprint]("blueprint"),
		Variant[namedShape]("named"),
	)
	if err != nil {
		t.Fatalf("NewTypeGroup: %v", err)
	}
	return g
}

func newShapeRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	if err := reg.RegisterTypeGroup(newShapeGroup(t)); err != nil {
		t.Fatalf("RegisterTypeGroup: %v", err)
	}
	return reg
}
