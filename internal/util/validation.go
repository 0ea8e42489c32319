package util

import (
	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func InitValidator() {
	Validate = validator.New()
}

func ValidateStruct(s any) error {
	if Validate == nil {
		InitValidator()
	}
	return Validate.Struct(s)
}

// ValidateEmail checks that s is a syntactically valid email address.
func ValidateEmail(s string) error {
	if Validate == nil {
		InitValidator()
	}
	return Validate.Var(s, "required,email")
}
