// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by configuration loading and by the
// analytics execution options. Field names in messages come from the koanf
// tag when one is present, so errors read the same way as the YAML keys:
//
//	type ReportingConfig struct {
//	    BaseURL  string `koanf:"base_url" validate:"required,url"`
//	    MaxPages int    `koanf:"max_pages" validate:"gte=0"`
//	}
//
//	if verr := validation.ValidateStruct(&cfg.Reporting); verr != nil {
//	    return fmt.Errorf("reporting: %w", verr)
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// namespacePattern matches report namespaces such as "ga:" or "mcf:".
var namespacePattern = regexp.MustCompile(`^[a-z]+:$`)

// FieldError is one failed rule.
type FieldError struct {
	// Path is the dotted koanf path below the validated struct, e.g.
	// "reporting.base_url".
	Path string

	// Field is the last element of Path.
	Field string

	Tag   string
	Param string
	Value any

	message string
}

func (e FieldError) Error() string {
	return e.message
}

// Errors collects every failed rule of one ValidateStruct call.
type Errors []FieldError

func (es Errors) Error() string {
	if len(es) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(es))
	for i := range es {
		messages[i] = es[i].message
	}
	return strings.Join(messages, "; ")
}

// HasField reports whether any error concerns name, matched against either
// the full path or the last path element.
func (es Errors) HasField(name string) bool {
	for i := range es {
		if es[i].Path == name || es[i].Field == name {
			return true
		}
	}
	return false
}

// GetValidator returns the shared validator instance.
var GetValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("namespace", func(fl validator.FieldLevel) bool {
		return namespacePattern.MatchString(fl.Field().String())
	})

	return v
})

// ValidateStruct validates s and returns nil or an Errors value.
func ValidateStruct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{{Path: "unknown", Field: "unknown", Tag: "unknown", message: err.Error()}}
	}

	out := make(Errors, len(fieldErrs))
	for i, fe := range fieldErrs {
		path := fe.Namespace()
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		out[i] = FieldError{
			Path:    path,
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			message: describe(path, fe),
		}
	}
	return out
}

// describe renders a failed rule as "<path> <requirement>".
func describe(path string, fe validator.FieldError) string {
	p := fe.Param()
	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", path, p)
	case "url":
		return path + " must be a valid URL"
	case "http_url":
		return path + " must be a valid http or https URL"
	case "namespace":
		return path + " must be a lowercase namespace ending in ':' (e.g. ga:)"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", path, p)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", path, p)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", path, p)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", path, p)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", path, p)
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be %s %s characters", path, bound, p)
		}
		return fmt.Sprintf("%s must be %s %s", path, bound, p)
	default:
		return fmt.Sprintf("%s failed %s validation", path, fe.Tag())
	}
}
