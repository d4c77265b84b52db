package questions

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by NotFoundError via errors.Is.
var ErrNotFound = errors.New("source not found")

// NotFoundError indicates a question source does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("source not found: %s", e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
