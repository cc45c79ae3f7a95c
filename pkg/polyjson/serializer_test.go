package polyjson

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

var shapeType = reflect.TypeOf((*shape)(nil)).Elem()

func TestEncodeEmitsDiscriminatorFirst(t *testing.T) {
	s := NewSerializer(newShapeRegistry(t))

	tests := []struct {
		name  string
		value shape
		want  string
	}{
		{
			name:  "string discriminator",
			value: circle{Radius: 5.5},
			want:  `{"$type":"circle","Radius":5.5}`,
		},
		{
			name:  "renamed member",
			value: square{Side: 2},
			want:  `{"$type":"square","side":2}`,
		},
		{
			name:  "integer discriminator",
			value: unitShape{Scale: 3},
			want:  `{"$type":1,"scale":3}`,
		},
		{
			name:  "pointer variant",
			value: &blueprint{Name: "hull"},
			want:  `{"$type":"blueprint","name":"hull"}`,
		},
		{
			name:  "nested polymorphic member",
			value: widget{Child: circle{Radius: 1}},
			want:  `{"$type":"widget","child":{"$type":"circle","Radius":1}}`,
		},
		{
			name:  "nested two levels deep",
			value: widget{Label: "outer", Child: widget{Child: square{Side: 4}}},
			want:  `{"$type":"widget","label":"outer","child":{"$type":"widget","child":{"$type":"square","side":4}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Encode(shapeType, tt.value, nil)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	s := NewSerializer(newShapeRegistry(t))

	tests := []struct {
		name  string
		value shape
	}{
		{name: "circle", value: circle{Radius: 5.5}},
		{name: "square", value: square{Side: 2}},
		{name: "integer-tagged shape", value: unitShape{Scale: 7}},
		{name: "pointer variant", value: &blueprint{Name: "hull"}},
		{name: "required member present", value: namedShape{Name: "ok"}},
		{name: "nested", value: widget{Child: circle{Radius: 1}}},
		{name: "deeply nested", value: widget{Label: "outer", Child: widget{Child: square{Side: 4}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := s.Encode(shapeType, tt.value, nil)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := s.Decode(shapeType, data, nil)
			if err != nil {
				t.Fatalf("Decode(%s): %v", data, err)
			}
			if !reflect.DeepEqual(got, shape(tt.value)) {
				t.Errorf("round trip: got %#v, want %#v", got, tt.value)
			}
		})
	}
}

func TestEncodeUnsupportedType(t *testing.T) {
	s := NewSerializer(newShapeRegistry(t))

	_, err := s.Encode(shapeType, triangle{Base: 1}, nil)
	if err == nil {
		t.Fatal("expected unsupported-type error")
	}
	var ute *UnsupportedTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("error %v is not an *UnsupportedTypeError", err)
	}
	if ute.Type != reflect.TypeOf(triangle{}) || ute.Base != shapeType {
		t.Errorf("error carries %v/%v", ute.Base, ute.Type)
	}
}

func TestDecodeFormatErrors(t *testing.T) {
	s := NewSerializer(newShapeRegistry(t))

	tests := []struct {
		name string
		data string
	}{
		{name: "missing discriminator", data: `{"Radius":5}`},
		{name: "unknown string discriminator", data: `{"$type":"unknown"}`},
		{name: "unknown integer discriminator", data: `{"$type":99}`},
		{name: "discriminator of wrong kind", data: `{"$type":true}`},
		{name: "missing required member", data: `{"$type":"named"}`},
		{name: "malformed JSON", data: `{"$type":"circle"`},
		{name: "not an object", data: `[1,2]`},
		{name: "nested unknown discriminator", data: `{"$type":"widget","child":{"$type":"unknown"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Decode(shapeType, []byte(tt.data), nil)
			if err == nil {
				t.Fatal("expected format error")
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Errorf("error %v is not a *FormatError", err)
			}
		})
	}
}

func TestNestedPolymorphicMapMembers(t *testing.T) {
	reg := NewRegistry()
	g, err := NewTypeGroup("assemblies",
		Variant[circle]("circle"),
		Variant[square]("square"),
		Variant[assembly]("assembly"),
	)
	if err != nil {
		t.Fatalf("NewTypeGroup: %v", err)
	}
	if err := reg.RegisterTypeGroup(g); err != nil {
		t.Fatal(err)
	}
	s := NewSerializer(reg)

	value := assembly{Parts: map[int]shape{
		2:  circle{Radius: 1},
		10: square{Side: 2},
	}}
	data, err := s.Encode(shapeType, value, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// Keys sort by their member-name form, the engine's order.
	want := `{"$type":"assembly","parts":{"10":{"$type":"square","side":2},"2":{"$type":"circle","Radius":1}}}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	got, err := s.Decode(shapeType, data, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, shape(value)) {
		t.Errorf("round trip: got %#v, want %#v", got, value)
	}
}

func TestDecodeNull(t *testing.T) {
	s := NewSerializer(newShapeRegistry(t))
	got, err := s.Decode(shapeType, []byte(`null`), nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != nil {
		t.Errorf("got %#v, want nil", got)
	}
}

func TestDecodeStrictUnknownFields(t *testing.T) {
	s := NewSerializer(newShapeRegistry(t))
	data := []byte(`{"$type":"circle","Radius":1,"bogus":2}`)

	if _, err := s.Decode(shapeType, data, nil); err != nil {
		t.Fatalf("lenient decode: %v", err)
	}

	opts := &Options{DisallowUnknownFields: true}
	_, err := s.Decode(shapeType, data, opts)
	if err == nil {
		t.Fatal("expected unknown-member error in strict mode")
	}
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Errorf("error %v is not a *FormatError", err)
	}

	// Strict mode must still accept the discriminator member itself, at any
	// nesting level.
	nested := []byte(`{"$type":"widget","child":{"$type":"square","side":3}}`)
	if _, err := s.Decode(shapeType, nested, opts); err != nil {
		t.Fatalf("strict nested decode: %v", err)
	}
}

func TestEncodeIndent(t *testing.T) {
	s := NewSerializer(newShapeRegistry(t))
	opts := &Options{Indent: "  "}
	got, err := s.Encode(shapeType, square{Side: 2}, opts)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := "{\n  \"$type\": \"square\",\n  \"side\": 2\n}"
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEncodeTo(t *testing.T) {
	s := NewSerializer(newShapeRegistry(t))
	var buf bytes.Buffer
	if err := s.EncodeTo(shapeType, circle{Radius: 2}, &buf, nil); err != nil {
		t.Fatalf("EncodeTo: %v", err)
	}
	if buf.String() != `{"$type":"circle","Radius":2}` {
		t.Errorf("got %s", buf.String())
	}
}

func TestDecodeFrom(t *testing.T) {
	s := NewSerializer(newShapeRegistry(t))
	got, err := s.DecodeFrom(shapeType, bytes.NewReader([]byte(`{"$type":"square","side":4}`)), nil)
	if err != nil {
		t.Fatalf("DecodeFrom: %v", err)
	}
	if !reflect.DeepEqual(got, shape(square{Side: 4})) {
		t.Errorf("got %#v", got)
	}
}

func TestDuplicateDiscriminatorFailsAtConfig(t *testing.T) {
	reg := NewRegistry()
	a, err := NewTypeGroup("a", Variant[circle]("shape"))
	if err != nil {
		t.Fatalf("NewTypeGroup: %v", err)
	}
	b, err := NewTypeGroup("b", Variant[square]("shape"))
	if err != nil {
		t.Fatalf("NewTypeGroup: %v", err)
	}
	if err := reg.RegisterTypeGroup(a); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterTypeGroup(b); err != nil {
		t.Fatal(err)
	}

	s := NewSerializer(reg)
	_, err = s.Config(shapeType, nil)
	if err == nil {
		t.Fatal("expected duplicate discriminator to fail at compile time")
	}
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Errorf("error %v is not a *ConfigError", err)
	}
}
