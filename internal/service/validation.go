package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/bloglist/internal/apperror"
)

// validate is shared by every service. A *validator.Validate caches struct
// metadata and is safe for concurrent use, so one instance per process is enough.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name ("url", not "URL") so error messages
	// match what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// validateStruct runs the validate tags of s and turns any failure into an
// apperror.ErrValidation whose message lists every failing field:
//
//	Blog validation failed: title: Path `title` is required., url: Path `url` is required.
//
// schema names the document ("Blog", "User"). An empty schema gives the plain
// "Validation failed" prefix used for partial updates.
func validateStruct(schema string, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating %T: %w", s, err)
	}

	prefix := "Validation failed"
	if schema != "" {
		prefix = schema + " validation failed"
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fe.Field()+": "+fieldMessage(fe))
	}

	return apperror.ValidationFailed(fieldErrs[0].Field(), prefix+": "+strings.Join(parts, ", "))
}

// fieldMessage renders one failed rule.
func fieldMessage(fe validator.FieldError) string {
	path := fe.Field()
	value := reflect.Indirect(reflect.ValueOf(fe.Value()))

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Path `%s` is required.", path)

	case "min", "gte":
		if !value.IsValid() {
			return fmt.Sprintf("Path `%s` is required.", path)
		}
		if value.Kind() == reflect.String {
			if value.Len() == 0 {
				return fmt.Sprintf("Path `%s` is required.", path)
			}
			return fmt.Sprintf("Path `%s` (`%s`) is shorter than the minimum allowed length (%s).",
				path, value.String(), fe.Param())
		}
		return fmt.Sprintf("Path `%s` (%v) is less than minimum allowed value (%s).",
			path, value.Interface(), fe.Param())

	default:
		return fmt.Sprintf("Path `%s` failed the %q rule.", path, fe.Tag())
	}
}
