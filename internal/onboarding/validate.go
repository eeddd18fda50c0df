package onboarding

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "kayit/pkg/domain-errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateCommunication, Communication{})
	return v
}

// validateCommunication checks the value format for channels that have one.
func validateCommunication(sl validator.StructLevel) {
	c := sl.Current().Interface().(Communication)
	if c.Value == "" {
		return
	}
	if c.Type == "EMAIL" {
		if err := sl.Validator().Var(c.Value, "email"); err != nil {
			sl.ReportError(c.Value, "value", "Value", "email", "")
		}
	}
}

// Validate checks the draft before anything is sent. The returned error is a
// CodeValidation domain error whose message lists every problem.
func Validate(d Draft) error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "draft could not be validated")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return dErrors.New(dErrors.CodeValidation, strings.Join(msgs, "; "))
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	// Drop the root type and the embedded customer segment.
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.TrimPrefix(ns, "Customer.")
}

func fieldMessage(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return field + " is required for this customer type"
	case "email":
		return field + " must be a valid email address"
	case "numeric":
		return field + " must contain only digits"
	case "len":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must have %s entries", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "excluded_without":
		return fmt.Sprintf("%s requires %s", field, parentField(fe.Param()))
	default:
		return field + " is invalid"
	}
}

func parentField(param string) string {
	switch param {
	case "StateCode":
		return "stateCode"
	case "CityCode":
		return "cityCode"
	}
	return param
}
