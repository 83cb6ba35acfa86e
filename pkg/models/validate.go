package models

import "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a model's struct tags. Stores call this before
// persisting so malformed documents never reach disk.
func Validate(v any) error {
	return validate.Struct(v)
}
