package polyjson

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// DiscriminatorField is the reserved JSON member naming the concrete variant.
// It is always emitted first and is not configurable.
const DiscriminatorField = "$type"

// DiscriminatorKind identifies the JSON shape of a discriminator value.
type DiscriminatorKind int

const (
	// StringDiscriminatorKind tags variants with a JSON string.
	StringDiscriminatorKind DiscriminatorKind = iota
	// IntDiscriminatorKind tags variants with a signed 32-bit JSON integer.
	IntDiscriminatorKind
)

// Discriminator is the scalar value embedded in encoded output that
// identifies which concrete variant a polymorphic value is. It is either a
// UTF-8 string or a 32-bit signed integer. The zero value is the empty
// string discriminator.
//
// Discriminator is comparable and usable as a map key.
type Discriminator struct {
	kind DiscriminatorKind
	str  string
	num  int32
}

// StringDiscriminator returns a string-valued discriminator.
func StringDiscriminator(v string) Discriminator {
	return Discriminator{kind: StringDiscriminatorKind, str: v}
}

// IntDiscriminator returns an integer-valued discriminator.
func IntDiscriminator(v int32) Discriminator {
	return Discriminator{kind: IntDiscriminatorKind, num: v}
}

// Kind reports whether the discriminator is a string or an integer.
func (d Discriminator) Kind() DiscriminatorKind {
	return d.kind
}

// StringValue returns the string form. It is only meaningful when Kind is
// StringDiscriminatorKind.
func (d Discriminator) StringValue() string {
	return d.str
}

// IntValue returns the integer form. It is only meaningful when Kind is
// IntDiscriminatorKind.
func (d Discriminator) IntValue() int32 {
	return d.num
}

// String returns a human-readable rendering for error messages.
func (d Discriminator) String() string {
	if d.kind == IntDiscriminatorKind {
		return strconv.FormatInt(int64(d.num), 10)
	}
	return strconv.Quote(d.str)
}

// MarshalJSON emits the discriminator as a JSON string or integer literal.
func (d Discriminator) MarshalJSON() ([]byte, error) {
	if d.kind == IntDiscriminatorKind {
		return strconv.AppendInt(nil, int64(d.num), 10), nil
	}
	return json.Marshal(d.str)
}

// parseDiscriminator interprets the raw JSON value of a "$type" member.
// Anything other than a string or a 32-bit integer is a format error.
func parseDiscriminator(raw json.RawMessage) (Discriminator, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Discriminator{}, formatErrorf("empty %q value", DiscriminatorField)
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Discriminator{}, wrapFormatError(err, "invalid %q value", DiscriminatorField)
		}
		return StringDiscriminator(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return Discriminator{}, formatErrorf("%q must be a string or integer, got %s", DiscriminatorField, trimmed)
	}
	i, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return Discriminator{}, formatErrorf("%q must be a string or integer, got %s", DiscriminatorField, n)
	}
	if i < math.MinInt32 || i > math.MaxInt32 {
		return Discriminator{}, formatErrorf("%q integer %d overflows int32", DiscriminatorField, i)
	}
	return IntDiscriminator(int32(i)), nil
}
