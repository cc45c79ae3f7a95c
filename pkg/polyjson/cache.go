package polyjson

import (
	"reflect"
	"sync"
)

// configKey identifies a compiled pipeline: the base type plus the identity
// of the caller-supplied options pointer. Two structurally identical Options
// values at different addresses are distinct keys on purpose.
type configKey struct {
	base reflect.Type
	opts *Options
}

// configCache memoizes combined pipelines for the lifetime of its serializer.
// Entries are never evicted; keys are expected to be few and long-lived.
//
// Concurrent getOrCompute calls for the same new key may compute duplicates;
// pipelines are pure functions of their key, so whichever copy is published
// first serves everyone. Entries are only published fully built.
type configCache struct {
	groups   []TypeGroup
	defaults sync.Map // reflect.Type -> *Pipeline, the nil-options pipelines
	entries  sync.Map // configKey -> *Pipeline
}

func (c *configCache) getOrCompute(base reflect.Type, opts *Options) (*Pipeline, error) {
	if opts == nil {
		// reflect.Type is already an interface, so this lookup does not box
		// its key; repeated default-config calls stay allocation-free.
		if v, ok := c.defaults.Load(base); ok {
			return v.(*Pipeline), nil
		}
		p, err := combine(base, c.groups, nil)
		if err != nil {
			return nil, err
		}
		v, _ := c.defaults.LoadOrStore(base, p)
		return v.(*Pipeline), nil
	}
	key := configKey{base: base, opts: opts}
	if v, ok := c.entries.Load(key); ok {
		return v.(*Pipeline), nil
	}
	p, err := combine(base, c.groups, opts)
	if err != nil {
		return nil, err
	}
	v, _ := c.entries.LoadOrStore(key, p)
	return v.(*Pipeline), nil
}
