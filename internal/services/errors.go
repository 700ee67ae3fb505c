package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrUserNotFound     = errors.New("user not found")

	// ErrNoChange reports that the requested state already holds. Nothing was
	// written and no event was recorded.
	ErrNoChange = errors.New("no change")

	ErrCategoryInUse = errors.New("category is referenced by tasks")
	ErrUserInUse     = errors.New("user is referenced by tasks")
)

// ValidationError carries per-field messages for rejected input.
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
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add records a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// OrNil returns e when at least one field failed.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func fieldError(field, message string) error {
	verr := &ValidationError{}
	verr.Add(field, message)
	return verr
}
