package binder

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// constraintMessage turns a validator field error into a human-readable
// message. The failing field is identified by the error key, so messages
// describe only the violated rule.
func constraintMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return boundMessage(fe, "at least")
	case "max":
		return boundMessage(fe, "at most")
	case "len":
		return boundMessage(fe, "exactly")
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// boundMessage phrases min/max/len by the kind of the validated value:
// characters for strings, items for collections, plain bounds for numbers.
func boundMessage(fe validator.FieldError, qualifier string) string {
	switch fe.Kind() {
	case reflect.String:
		return fmt.Sprintf("must be %s %s characters", qualifier, fe.Param())
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("must contain %s %s items", qualifier, fe.Param())
	default:
		return fmt.Sprintf("must be %s %s", qualifier, fe.Param())
	}
}
