package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrAuthenticationRequired = errors.New("authentication credentials were not provided")
	ErrPermissionDenied       = errors.New("you do not have permission to perform this action")
	ErrNotFound               = errors.New("not found")
)

// Field messages reported inside a ValidationError.
const (
	MsgRequired = "This field is required."
	MsgUnique   = "This field must be unique."
	MsgBlank    = "This field may not be blank."
	MsgNull     = "This field may not be null."
)

func msgInvalidChoice(value string) string {
	return fmt.Sprintf("%q is not a valid choice.", value)
}

func msgMaxLength(n int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", n)
}

func msgDoesNotExist(key string) string {
	return fmt.Sprintf("Object with key=%s does not exist.", key)
}

// ValidationError maps each offending input field to its messages.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg against field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Err returns e when it carries messages and nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func fieldError(field, msg string) error {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}
