package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInUse             = errors.New("still referenced")
	ErrIllegalTransition = errors.New("illegal transition")
)

// FieldError is one rejected input field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// ValidationError collects every rejected field of one request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Invalid builds a single-field ValidationError.
func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

// Validation flattens accumulated field errors into a *ValidationError, or
// returns nil when there are none.
func Validation(errs *multierror.Error) error {
	if errs.ErrorOrNil() == nil {
		return nil
	}
	ve := &ValidationError{Fields: make(map[string]string, len(errs.Errors))}
	for _, err := range errs.Errors {
		var fe *FieldError
		if errors.As(err, &fe) {
			if _, dup := ve.Fields[fe.Field]; !dup {
				ve.Fields[fe.Field] = fe.Reason
			}
			continue
		}
		ve.Fields["_"] = err.Error()
	}
	return ve
}
