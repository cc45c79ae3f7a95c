package polyjson

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseDiscriminator(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Discriminator
		wantErr bool
	}{
		{
			name: "string value",
			raw:  `"circle"`,
			want: StringDiscriminator("circle"),
		},
		{
			name: "escaped string value",
			raw:  `"a\"b"`,
			want: StringDiscriminator(`a"b`),
		},
		{
			name: "integer value",
			raw:  `42`,
			want: IntDiscriminator(42),
		},
		{
			name: "negative integer value",
			raw:  `-7`,
			want: IntDiscriminator(-7),
		},
		{
			name:    "float is rejected",
			raw:     `1.5`,
			wantErr: true,
		},
		{
			name:    "bool is rejected",
			raw:     `true`,
			wantErr: true,
		},
		{
			name:    "null is rejected",
			raw:     `null`,
			wantErr: true,
		},
		{
			name:    "object is rejected",
			raw:     `{}`,
			wantErr: true,
		},
		{
			name:    "int32 overflow is rejected",
			raw:     `2147483648`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDiscriminator(json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var fe *FormatError
				if !errors.As(err, &fe) {
					t.Errorf("error %v is not a *FormatError", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiscriminatorMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		d    Discriminator
		want string
	}{
		{name: "string", d: StringDiscriminator("circle"), want: `"circle"`},
		{name: "string needing escapes", d: StringDiscriminator(`a"b`), want: `"a\"b"`},
		{name: "integer", d: IntDiscriminator(1), want: `1`},
		{name: "negative integer", d: IntDiscriminator(-12), want: `-12`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.d)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDiscriminatorAccessors(t *testing.T) {
	s := StringDiscriminator("x")
	if s.Kind() != StringDiscriminatorKind || s.StringValue() != "x" {
		t.Errorf("string discriminator accessors: %v %q", s.Kind(), s.StringValue())
	}
	n := IntDiscriminator(9)
	if n.Kind() != IntDiscriminatorKind || n.IntValue() != 9 {
		t.Errorf("int discriminator accessors: %v %d", n.Kind(), n.IntValue())
	}
}
