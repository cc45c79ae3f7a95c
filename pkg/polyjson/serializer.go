package polyjson

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"reflect"
)

// Serializer is the non-generic facade: every operation takes the base type
// as an explicit reflect.Type. Use it when the base type is not statically
// known; otherwise prefer Typed.
//
// A Serializer is intended to be a long-lived, shared object. Its
// configuration cache grows with the number of distinct Options values
// callers construct and is never evicted.
type Serializer struct {
	cache *configCache
}

// NewSerializer constructs a serializer over the groups registered in reg.
// A nil reg selects the package default registry. The registry freezes at
// this point; groups registered later are rejected.
func NewSerializer(reg *Registry) *Serializer {
	if reg == nil {
		reg = defaultRegistry
	}
	return &Serializer{cache: &configCache{groups: reg.freeze()}}
}

// Config returns the compiled, combined configuration for base. A nil opts
// yields the shared default pipeline for base, computed once; a non-nil opts
// is keyed by pointer identity, so repeated calls with the same Options value
// return the identical pipeline.
func (s *Serializer) Config(base reflect.Type, opts *Options) (*Pipeline, error) {
	if base == nil {
		return nil, configErrorf("base type must not be nil")
	}
	return s.cache.getOrCompute(base, opts)
}

// Encode encodes v as a polymorphic instance of base and returns UTF-8 JSON.
func (s *Serializer) Encode(base reflect.Type, v interface{}, opts *Options) ([]byte, error) {
	p, err := s.Config(base, opts)
	if err != nil {
		return nil, err
	}
	return encodeWith(p, v)
}

// EncodeTo encodes v into w.
func (s *Serializer) EncodeTo(base reflect.Type, v interface{}, w io.Writer, opts *Options) error {
	b, err := s.Encode(base, v, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// EncodeContext encodes v into w, aborting the write when ctx is done.
func (s *Serializer) EncodeContext(ctx context.Context, base reflect.Type, v interface{}, w io.Writer, opts *Options) error {
	b, err := s.Encode(base, v, opts)
	if err != nil {
		return err
	}
	_, err = (&contextWriter{ctx: ctx, w: w}).Write(b)
	return err
}

// Decode decodes one polymorphic instance of base from data. The returned
// value's runtime type is the variant named by the "$type" member.
func (s *Serializer) Decode(base reflect.Type, data []byte, opts *Options) (interface{}, error) {
	p, err := s.Config(base, opts)
	if err != nil {
		return nil, err
	}
	return p.decodePoly(base, data)
}

// DecodeFrom decodes a single polymorphic value from r.
func (s *Serializer) DecodeFrom(base reflect.Type, r io.Reader, opts *Options) (interface{}, error) {
	return s.DecodeContext(context.Background(), base, r, opts)
}

// DecodeContext decodes a single polymorphic value from r, aborting reads
// when ctx is done.
func (s *Serializer) DecodeContext(ctx context.Context, base reflect.Type, r io.Reader, opts *Options) (interface{}, error) {
	p, err := s.Config(base, opts)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(&contextReader{ctx: ctx, r: r})
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, wrapFormatError(err, "reading value of %s", base)
	}
	return p.decodePoly(base, raw)
}

// encodeWith runs one encode through a compiled pipeline, applying the
// pipeline's output options.
func encodeWith(p *Pipeline, v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.encodePoly(p.base, reflect.ValueOf(v), &buf); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if p.opts != nil && p.opts.Indent != "" {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, out, "", p.opts.Indent); err != nil {
			return nil, err
		}
		out = pretty.Bytes()
	}
	return out, nil
}
