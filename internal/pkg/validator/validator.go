// Package validator wraps go-playground/validator for struct-tag-driven
// validation of solve-request fields and interest-profile weights.
package validator

import (
	"math"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// "finite" rejects NaN/±Inf on a float field; min/max alone let a
	// non-finite value slip past the built-in numeric comparisons on some
	// platforms, so coordinate fields pair it with min/max explicitly.
	_ = validate.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		v := fl.Field().Float()
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	})
}

// Validate runs struct-tag validation over s.
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// Var validates a single value against a tag expression, for cases where a
// dynamic shape (e.g. map values) doesn't fit a struct.
func Var(value interface{}, tag string) error {
	return validate.Var(value, tag)
}

// GetValidator returns the shared validator instance for custom registration.
func GetValidator() *validator.Validate {
	return validate
}
