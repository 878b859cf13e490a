package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("palette", validatePaletteColor)
}

func validatePaletteColor(fl validator.FieldLevel) bool {
	_, ok := ColorByID(fl.Field().String())
	return ok
}

// ValidateStruct checks v against its validate tags and converts the first
// failure into an ErrValidation error with a readable message.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &Error{Kind: ErrValidation, Message: err.Error()}
	}
	return &Error{Kind: ErrValidation, Message: describeFieldError(fieldErrs[0])}
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "printascii":
		return fmt.Sprintf("%s must contain only printable ASCII characters", field)
	case "palette":
		return fmt.Sprintf("%s %q is not in the color palette", field, fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
