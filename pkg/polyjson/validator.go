package polyjson

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

// validatorInstance is a cached validator to avoid recreation on each decode.
var (
	validatorInstance *validator.Validate
	validatorOnce     sync.Once
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInstance = validator.New()
	})
	return validatorInstance
}

// validateDecoded runs required-member validation over a freshly decoded
// variant. A missing required member is a format error, same as any other
// malformed input.
func (p *Pipeline) validateDecoded(v interface{}) error {
	validate := getValidator()
	if p.opts != nil && p.opts.Validator != nil {
		validate = p.opts.Validator
	}
	return validate.Struct(v)
}
