package polyjson

import (
	"context"
	"encoding/json"
	"io"
	"iter"
	"reflect"
)

// Typed is the generic facade for a single base type T. The default pipeline
// is compiled once at construction and reused for every call without a
// custom configuration, so the common path does no resolution work at all.
type Typed[T any] struct {
	base reflect.Type
	s    *Serializer
	def  *Pipeline
}

// NewTyped constructs the generic facade over the groups registered in reg
// (nil selects the package default registry) and precompiles the default
// configuration for T.
func NewTyped[T any](reg *Registry) (*Typed[T], error) {
	base := reflect.TypeOf((*T)(nil)).Elem()
	s := NewSerializer(reg)
	def, err := s.Config(base, nil)
	if err != nil {
		return nil, err
	}
	return &Typed[T]{base: base, s: s, def: def}, nil
}

// Config returns the compiled configuration for T. Nil opts returns the
// pipeline precompiled at construction; the same non-nil opts pointer always
// returns the identical cached pipeline.
func (t *Typed[T]) Config(opts *Options) (*Pipeline, error) {
	if opts == nil {
		return t.def, nil
	}
	return t.s.Config(t.base, opts)
}

// Encode encodes v and returns UTF-8 JSON with the discriminator first.
func (t *Typed[T]) Encode(v T, opts *Options) ([]byte, error) {
	p, err := t.Config(opts)
	if err != nil {
		return nil, err
	}
	return encodeWith(p, v)
}

// EncodeTo encodes v into w.
func (t *Typed[T]) EncodeTo(v T, w io.Writer, opts *Options) error {
	b, err := t.Encode(v, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// EncodeContext encodes v into w, aborting the write when ctx is done.
func (t *Typed[T]) EncodeContext(ctx context.Context, v T, w io.Writer, opts *Options) error {
	b, err := t.Encode(v, opts)
	if err != nil {
		return err
	}
	_, err = (&contextWriter{ctx: ctx, w: w}).Write(b)
	return err
}

// Decode decodes one polymorphic instance of T from data.
func (t *Typed[T]) Decode(data []byte, opts *Options) (T, error) {
	var zero T
	p, err := t.Config(opts)
	if err != nil {
		return zero, err
	}
	decoded, err := p.decodePoly(t.base, data)
	if err != nil || decoded == nil {
		return zero, err
	}
	return decoded.(T), nil
}

// DecodeContext decodes a single polymorphic value from r, aborting reads
// when ctx is done.
func (t *Typed[T]) DecodeContext(ctx context.Context, r io.Reader, opts *Options) (T, error) {
	var zero T
	decoded, err := t.s.DecodeContext(ctx, t.base, r, opts)
	if err != nil || decoded == nil {
		return zero, err
	}
	return decoded.(T), nil
}

// DecodeStream lazily decodes successive elements of a root-level JSON array
// from r, suspending between elements as bytes arrive. The sequence is
// finite, consumes the stream once, and is not restartable. Iteration stops
// after the first error; cancellation of ctx surfaces as that error.
func (t *Typed[T]) DecodeStream(ctx context.Context, r io.Reader, opts *Options) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		p, err := t.Config(opts)
		if err != nil {
			yield(zero, err)
			return
		}
		dec := json.NewDecoder(&contextReader{ctx: ctx, r: r})
		tok, err := dec.Token()
		if err != nil {
			yield(zero, streamErr(ctx, err))
			return
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			yield(zero, formatErrorf("expected a root-level JSON array, got %v", tok))
			return
		}
		for dec.More() {
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				yield(zero, streamErr(ctx, err))
				return
			}
			decoded, err := p.decodePoly(t.base, raw)
			if err != nil {
				yield(zero, err)
				return
			}
			elem := zero
			if decoded != nil {
				elem = decoded.(T)
			}
			if !yield(elem, nil) {
				return
			}
		}
		if _, err := dec.Token(); err != nil {
			yield(zero, streamErr(ctx, err))
		}
	}
}

// streamErr prefers the cancellation cause over the read error it provoked.
func streamErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return wrapFormatError(err, "reading stream")
}
