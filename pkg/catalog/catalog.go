// Package catalog manages the records the entry forms refer to: cards, banks,
// suppliers and sub-categories. The upstream API owns them; this package validates
// input and shapes the requests.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	StatusActive   = "Ativo"
	StatusInactive = "Inativo"
)

var ErrInvalidInput = errors.New("invalid input")

// ValidationError lists the rejected fields with their error keys ("required", "option").
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return fmt.Sprintf("invalid %s", strings.Join(names, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// invalid wraps the failed fields of a validation run, or returns nil when none failed.
func invalid(fields map[string][]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func statusOf(active bool) string {
	if active {
		return StatusActive
	}
	return StatusInactive
}
