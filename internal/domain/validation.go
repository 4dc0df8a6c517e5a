package domain

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// structValidator checks the declarative rules carried in `validate` tags.
// Field names in reported errors come from the json tag.
var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the tag rules on data and converts failures into a
// ValidationError naming each offending field.
func validateStruct(data any) *ValidationError {
	err := structValidator.Struct(data)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewValidationError("", err.Error())
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		field := fieldName(fe)
		out.Add(field, ruleMessage(field, fe))
	}
	return out
}

// fieldName strips the struct prefix and any slice index, so "Event.agenda[0]" becomes "agenda".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if i := strings.Index(ns, "["); i >= 0 {
		ns = ns[:i]
	}
	return ns
}

func ruleMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.String && fe.Field() != field {
			return field + " items must not be empty"
		}
		return field + " is required"
	case "min":
		return field + " must contain at least one item"
	default:
		return field + " is invalid"
	}
}
