package polyjson

import (
	"bytes"
	"encoding"
	"encoding/json"
	"reflect"
	"sort"
	"strconv"
)

// encodePoly writes v as a polymorphic instance of base: a JSON object whose
// first member is the discriminator, followed by the concrete value's own
// members in declaration order.
func (p *Pipeline) encodePoly(base reflect.Type, rv reflect.Value, buf *bytes.Buffer) error {
	if !rv.IsValid() {
		buf.WriteString("null")
		return nil
	}
	res, err := p.resolutionFor(base)
	if err != nil {
		return err
	}
	concrete := rv.Type()
	if concrete.Kind() == reflect.Ptr && rv.IsNil() {
		buf.WriteString("null")
		return nil
	}
	tag, _, ok := res.tagFor(concrete)
	if !ok {
		return &UnsupportedTypeError{Base: base, Type: concrete}
	}

	buf.WriteByte('{')
	buf.WriteByte('"')
	buf.WriteString(DiscriminatorField)
	buf.WriteString(`":`)
	tagJSON, err := tag.MarshalJSON()
	if err != nil {
		return err
	}
	buf.Write(tagJSON)

	sv := rv
	if sv.Kind() == reflect.Ptr {
		sv = sv.Elem()
	}
	if p.needsWalk(sv.Type()) {
		first := false
		if err := p.encodeFields(sv, buf, &first); err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil
	}

	// No polymorphic members inside: let the resolver chain produce the body
	// and splice it after the discriminator.
	body, err := p.typeInfoFor(concrete).Marshal(rv.Interface())
	if err != nil {
		return err
	}
	body = bytes.TrimSpace(body)
	if len(body) < 2 || body[0] != '{' {
		return configErrorf("variant %s does not encode to a JSON object", concrete)
	}
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1 : len(body)-1])
	}
	buf.WriteByte('}')
	return nil
}

// encodeFields appends the JSON members of struct value sv to buf, flattening
// anonymous embedded structs and recursing through polymorphic members.
func (p *Pipeline) encodeFields(sv reflect.Value, buf *bytes.Buffer, first *bool) error {
	fm := p.fieldsOf(sv.Type())
	for _, ref := range fm.ordered {
		fv, ok := fieldByIndexRead(sv, ref.index)
		if !ok {
			continue
		}
		if ref.omitEmpty && isEmptyValue(fv) {
			continue
		}
		if *first {
			*first = false
		} else {
			buf.WriteByte(',')
		}
		nameJSON, err := json.Marshal(ref.name)
		if err != nil {
			return err
		}
		buf.Write(nameJSON)
		buf.WriteByte(':')
		if err := p.encodeValue(ref.typ, fv, buf); err != nil {
			return err
		}
	}
	return nil
}

// encodeValue appends one value to buf. static is the declared type of the
// slot holding the value; it decides whether the slot is polymorphic.
func (p *Pipeline) encodeValue(static reflect.Type, v reflect.Value, buf *bytes.Buffer) error {
	if static.Kind() == reflect.Interface {
		if v.IsNil() {
			buf.WriteString("null")
			return nil
		}
		if p.hasVariants(static) {
			return p.encodePoly(static, v.Elem(), buf)
		}
		elem := v.Elem()
		return p.encodeValue(elem.Type(), elem, buf)
	}
	if !p.needsWalk(static) {
		b, err := p.typeInfoFor(static).Marshal(v.Interface())
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
	switch static.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			buf.WriteString("null")
			return nil
		}
		return p.encodeValue(static.Elem(), v.Elem(), buf)
	case reflect.Slice:
		if v.IsNil() {
			buf.WriteString("null")
			return nil
		}
		return p.encodeList(static.Elem(), v, buf)
	case reflect.Array:
		return p.encodeList(static.Elem(), v, buf)
	case reflect.Map:
		return p.encodeMap(static, v, buf)
	case reflect.Struct:
		buf.WriteByte('{')
		first := true
		if err := p.encodeFields(v, buf, &first); err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil
	default:
		b, err := p.typeInfoFor(static).Marshal(v.Interface())
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
}

func (p *Pipeline) encodeList(elem reflect.Type, v reflect.Value, buf *bytes.Buffer) error {
	buf.WriteByte('[')
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := p.encodeValue(elem, v.Index(i), buf); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func (p *Pipeline) encodeMap(static reflect.Type, v reflect.Value, buf *bytes.Buffer) error {
	if v.IsNil() {
		buf.WriteString("null")
		return nil
	}
	type member struct {
		name string
		val  reflect.Value
	}
	members := make([]member, 0, v.Len())
	for _, k := range v.MapKeys() {
		name, err := mapKeyName(k)
		if err != nil {
			return err
		}
		members = append(members, member{name: name, val: v.MapIndex(k)})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].name < members[j].name })
	buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(m.name)
		if err != nil {
			return err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		if err := p.encodeValue(static.Elem(), m.val, buf); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// mapKeyName renders one map key as its JSON member name, accepting the key
// types the engine accepts: string kinds, integer kinds, and text marshalers.
func mapKeyName(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		b, err := tm.MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", configErrorf("unsupported map key type %s", k.Type())
}

// fieldByIndexRead resolves an embedded field path for reading. It reports
// false when a nil embedded pointer makes the field unreachable.
func fieldByIndexRead(sv reflect.Value, index []int) (reflect.Value, bool) {
	v := sv
	for i, idx := range index {
		if i > 0 {
			if v.Kind() == reflect.Ptr {
				if v.IsNil() {
					return reflect.Value{}, false
				}
				v = v.Elem()
			}
		}
		v = v.Field(idx)
	}
	return v, true
}

// isEmptyValue mirrors the engine's omitempty test.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	}
	return false
}
