package order

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// structValidator returns the shared validator with the order specific tags registered.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("country_code", func(fl validator.FieldLevel) bool {
			return IsCountryCode(fl.Field().String())
		})
		_ = v.RegisterValidation("iso_datetime", func(fl validator.FieldLevel) bool {
			return IsISODateTime(fl.Field().String())
		})
		v.RegisterStructValidation(validatePeriod, DateTimePeriod{})
		validate = v
	})
	return validate
}

// validatePeriod rejects windows that end before they start.
func validatePeriod(sl validator.StructLevel) {
	p := sl.Current().Interface().(DateTimePeriod)
	start, okStart := ParseDateTime(p.Start.String())
	end, okEnd := ParseDateTime(p.End.String())
	if okStart && okEnd && end.Before(start) {
		sl.ReportError(p.End, "end", "End", "end_after_start", "")
	}
}

// ValidateStruct runs the field level checks declared on Input and returns one
// readable message per violation.
func ValidateStruct(in *Input) []string {
	if in == nil {
		return []string{"order data is missing"}
	}

	err := structValidator().Struct(in)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return msgs
}

func describeFieldError(fe validator.FieldError) string {
	path := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "notblank", "required":
		return fmt.Sprintf("%s is required", path)
	case "country_code":
		return fmt.Sprintf("%s must be a 2-letter uppercase ISO country code, got %q", path, fe.Value())
	case "iso_datetime":
		return fmt.Sprintf("%s must be an ISO 8601 date-time such as 2025-09-25T00:00:00+02:00, got %q", path, fe.Value())
	case "end_after_start":
		return fmt.Sprintf("%s must not be before start", path)
	default:
		return fmt.Sprintf("%s failed %q validation", path, fe.Tag())
	}
}

// fieldPath drops the root struct name from a validator namespace:
// "Input.stops[0].location.city" becomes "stops[0].location.city".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
