// Package validation wraps the go-playground validator for request structs.
package validation

import "github.com/go-playground/validator/v10"

// Validator wraps a validator.Validate instance so handlers can take it as
// an injected dependency.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator.
func New() *Validator {
	return &Validator{v: validator.New()}
}

// Struct validates a struct based on its validation tags.
func (val *Validator) Struct(s any) error {
	return val.v.Struct(s)
}
