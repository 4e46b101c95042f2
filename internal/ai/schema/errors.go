package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	RuleRequired = "required"
	RuleType     = "type"
	RuleNonEmpty = "non_empty"
	RuleURL      = "url"
)

// Violation is one failed constraint. Index is the list position for element
// level failures and -1 for field level ones.
type Violation struct {
	Field   string `json:"field"`
	Index   int    `json:"index"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

type ValidationError struct {
	Shape      string      `json:"shape"`
	Violations []Violation `json:"violations"`
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Index >= 0 {
			parts = append(parts, fmt.Sprintf("%s[%d]: %s", v.Field, v.Index, v.Message))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return fmt.Sprintf("schema validation failed for %s: %s", e.Shape, strings.Join(parts, "; "))
}

// Droppable reports whether every violation sits inside a list element, so the
// offending elements can be removed without losing the rest of the object.
func (e *ValidationError) Droppable() bool {
	if e == nil || len(e.Violations) == 0 {
		return false
	}
	for _, v := range e.Violations {
		if v.Index < 0 {
			return false
		}
	}
	return true
}

func (e *ValidationError) add(field string, idx int, rule, msg string) {
	e.Violations = append(e.Violations, Violation{Field: field, Index: idx, Rule: rule, Message: msg})
}

// AsValidationError unwraps err into a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

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
	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// ValidateStruct checks a typed flow input against its `validate` tags and
// reports failures as a *ValidationError named after shape.
func ValidateStruct(shape string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{
			Shape:      shape,
			Violations: []Violation{{Field: "", Index: -1, Rule: RuleType, Message: err.Error()}},
		}
	}
	verr := &ValidationError{Shape: shape}
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		msg := fmt.Sprintf("failed %q", rule)
		switch rule {
		case "required":
			rule, msg = RuleRequired, "is required"
		case "nonblank":
			rule, msg = RuleNonEmpty, "must not be empty"
		case "url", "http_url":
			rule, msg = RuleURL, "must be a valid URL"
		}
		verr.add(fe.Field(), -1, rule, msg)
	}
	return verr
}
