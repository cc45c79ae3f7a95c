package polyjson

import (
	"bytes"
	"encoding"
	"encoding/json"
	"reflect"
	"strconv"
)

var jsonNull = []byte("null")

// decodePoly decodes one polymorphic instance of base from data: the object's
// "$type" member selects the concrete variant, the remaining members are
// decoded into a fresh instance of it, and required members are validated.
func (p *Pipeline) decodePoly(base reflect.Type, data []byte) (interface{}, error) {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		return nil, nil
	}
	res, err := p.resolutionFor(base)
	if err != nil {
		return nil, err
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, wrapFormatError(err, "expected a JSON object for %s", base)
	}
	rawTag, ok := members[DiscriminatorField]
	if !ok {
		return nil, formatErrorf("missing %q member decoding %s", DiscriminatorField, base)
	}
	tag, err := parseDiscriminator(rawTag)
	if err != nil {
		return nil, err
	}
	variant, ok := res.typeFor(tag)
	if !ok {
		return nil, formatErrorf("unknown discriminator %s for %s", tag, base)
	}

	structType := variant
	isPtr := variant.Kind() == reflect.Ptr
	if isPtr {
		structType = variant.Elem()
	}
	pv := reflect.New(structType)

	if p.needsWalk(structType) {
		if err := p.decodeFields(pv.Elem(), members); err != nil {
			return nil, err
		}
	} else {
		body := data
		if p.opts != nil && p.opts.DisallowUnknownFields {
			// The engine would reject the discriminator itself as an unknown
			// member, so strip it before handing the body over.
			delete(members, DiscriminatorField)
			if body, err = json.Marshal(members); err != nil {
				return nil, err
			}
		}
		if err := p.typeInfoFor(variant).Unmarshal(body, pv.Interface()); err != nil {
			return nil, wrapFormatError(err, "decoding %s variant %s", base, variant)
		}
	}

	if err := p.validateDecoded(pv.Interface()); err != nil {
		return nil, wrapFormatError(err, "variant %s is missing required members", variant)
	}
	if isPtr {
		return pv.Interface(), nil
	}
	return pv.Elem().Interface(), nil
}

// decodeFields decodes the members map into struct value sv member by
// member, recursing through polymorphic slots.
func (p *Pipeline) decodeFields(sv reflect.Value, members map[string]json.RawMessage) error {
	fm := p.fieldsOf(sv.Type())
	if p.opts != nil && p.opts.DisallowUnknownFields {
		for name := range members {
			if name == DiscriminatorField {
				continue
			}
			if _, ok := fm.byName[name]; !ok {
				return formatErrorf("unknown member %q decoding %s", name, sv.Type())
			}
		}
	}
	for _, ref := range fm.ordered {
		raw, ok := members[ref.name]
		if !ok {
			continue
		}
		fv, err := fieldByIndexAlloc(sv, ref.index)
		if err != nil {
			return err
		}
		if err := p.decodeValue(ref.typ, fv, raw); err != nil {
			return err
		}
	}
	return nil
}

// decodeValue decodes raw into the settable value fv of declared type static.
func (p *Pipeline) decodeValue(static reflect.Type, fv reflect.Value, raw json.RawMessage) error {
	if static.Kind() == reflect.Interface && p.hasVariants(static) {
		decoded, err := p.decodePoly(static, raw)
		if err != nil {
			return err
		}
		if decoded == nil {
			fv.Set(reflect.Zero(static))
			return nil
		}
		fv.Set(reflect.ValueOf(decoded))
		return nil
	}
	if !p.needsWalk(static) {
		if err := p.typeInfoFor(static).Unmarshal(raw, fv.Addr().Interface()); err != nil {
			return wrapFormatError(err, "decoding member of type %s", static)
		}
		return nil
	}
	switch static.Kind() {
	case reflect.Ptr:
		if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
			fv.Set(reflect.Zero(static))
			return nil
		}
		nv := reflect.New(static.Elem())
		if err := p.decodeValue(static.Elem(), nv.Elem(), raw); err != nil {
			return err
		}
		fv.Set(nv)
		return nil
	case reflect.Slice:
		var raws []json.RawMessage
		if err := json.Unmarshal(raw, &raws); err != nil {
			return wrapFormatError(err, "expected a JSON array for %s", static)
		}
		if raws == nil {
			fv.Set(reflect.Zero(static))
			return nil
		}
		out := reflect.MakeSlice(static, len(raws), len(raws))
		for i, r := range raws {
			if err := p.decodeValue(static.Elem(), out.Index(i), r); err != nil {
				return err
			}
		}
		fv.Set(out)
		return nil
	case reflect.Array:
		var raws []json.RawMessage
		if err := json.Unmarshal(raw, &raws); err != nil {
			return wrapFormatError(err, "expected a JSON array for %s", static)
		}
		for i := 0; i < len(raws) && i < fv.Len(); i++ {
			if err := p.decodeValue(static.Elem(), fv.Index(i), raws[i]); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		var raws map[string]json.RawMessage
		if err := json.Unmarshal(raw, &raws); err != nil {
			return wrapFormatError(err, "expected a JSON object for %s", static)
		}
		if raws == nil {
			fv.Set(reflect.Zero(static))
			return nil
		}
		out := reflect.MakeMapWithSize(static, len(raws))
		for k, r := range raws {
			kp := reflect.New(static.Key())
			if err := parseMapKey(kp, k); err != nil {
				return err
			}
			ev := reflect.New(static.Elem()).Elem()
			if err := p.decodeValue(static.Elem(), ev, r); err != nil {
				return err
			}
			out.SetMapIndex(kp.Elem(), ev)
		}
		fv.Set(out)
		return nil
	case reflect.Struct:
		var sub map[string]json.RawMessage
		if err := json.Unmarshal(raw, &sub); err != nil {
			return wrapFormatError(err, "expected a JSON object for %s", static)
		}
		return p.decodeFields(fv, sub)
	default:
		if err := p.typeInfoFor(static).Unmarshal(raw, fv.Addr().Interface()); err != nil {
			return wrapFormatError(err, "decoding member of type %s", static)
		}
		return nil
	}
}

// parseMapKey fills the freshly allocated key pointed to by kp from a JSON
// member name, mirroring the engine's key rules: text unmarshalers first,
// then string and integer kinds.
func parseMapKey(kp reflect.Value, name string) error {
	if tu, ok := kp.Interface().(encoding.TextUnmarshaler); ok {
		if err := tu.UnmarshalText([]byte(name)); err != nil {
			return wrapFormatError(err, "decoding map key %q", name)
		}
		return nil
	}
	kv := kp.Elem()
	switch kv.Kind() {
	case reflect.String:
		kv.SetString(name)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(name, 10, 64)
		if err != nil || kv.OverflowInt(n) {
			return formatErrorf("invalid map key %q for %s", name, kv.Type())
		}
		kv.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(name, 10, 64)
		if err != nil || kv.OverflowUint(n) {
			return formatErrorf("invalid map key %q for %s", name, kv.Type())
		}
		kv.SetUint(n)
		return nil
	}
	return formatErrorf("unsupported map key type %s", kv.Type())
}

// fieldByIndexAlloc resolves an embedded field path for writing, allocating
// nil embedded pointers along the way.
func fieldByIndexAlloc(sv reflect.Value, index []int) (reflect.Value, error) {
	v := sv
	for i, idx := range index {
		if i > 0 {
			if v.Kind() == reflect.Ptr {
				if v.IsNil() {
					if !v.CanSet() {
						return reflect.Value{}, formatErrorf("cannot allocate embedded %s", v.Type())
					}
					v.Set(reflect.New(v.Type().Elem()))
				}
				v = v.Elem()
			}
		}
		v = v.Field(idx)
	}
	return v, nil
}
