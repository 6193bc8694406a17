package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid record")

// FieldError names a field (by JSON key) and the rule it broke.
type FieldError struct {
	Field string
	Rule  string
	Param string
}

func (f FieldError) String() string {
	if f.Param == "" {
		return f.Field + " " + f.Rule
	}
	return fmt.Sprintf("%s %s=%s", f.Field, f.Rule, f.Param)
}

// InvalidError lists every broken rule of a record.
type InvalidError struct {
	Fields []FieldError
}

func (e *InvalidError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return "invalid: " + strings.Join(parts, ", ")
}

func (e *InvalidError) Unwrap() error { return ErrInvalid }

var (
	serverRules = sync.OnceValue(func() *validator.Validate { return newValidator("validate") })
	draftRules  = sync.OnceValue(func() *validator.Validate { return newValidator("draft") })
)

func newValidator(tag string) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName(tag)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks v against its `validate` struct tags, the rules the
// server accepts records by.
func Validate(v any) error {
	return check(serverRules(), v)
}

// ValidateDraft checks v against its `draft` struct tags. Anything else is
// left for the server to judge.
func ValidateDraft(v any) error {
	return check(draftRules(), v)
}

func check(val *validator.Validate, v any) error {
	err := val.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := &InvalidError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}
