// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report failures under the yaml key, not the Go field name, so
	// diagnostics match what users actually write in their sources.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// validateSection runs struct validation for one section and converts every
// failure into a diagnostic naming the section, the offending key, and the
// violated rule. keyPrefix scopes keys of nested sub-configurations (e.g.
// "anthropic" for the llm backend structs); empty for top-level sections.
func validateSection(section, keyPrefix string, v any) []Diagnostic {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Diagnostic{{Section: section, Severity: SeverityError, Message: err.Error()}}
	}

	diags := make([]Diagnostic, 0, len(verrs))
	for _, fe := range verrs {
		diags = append(diags, Diagnostic{
			Section:  section,
			Key:      joinKey(keyPrefix, fieldPath(fe)),
			Severity: SeverityError,
			Message:  describeRule(fe),
		})
	}

	return diags
}

// fieldPath strips the leading Go type name from the validator namespace,
// leaving the dotted key path within the section.
func fieldPath(fe validator.FieldError) string {
	parts := strings.SplitN(fe.Namespace(), ".", 2)
	if len(parts) == 2 {
		return parts[1]
	}

	return fe.Field()
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "." + key
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field missing"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
