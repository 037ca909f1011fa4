package memory

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("memory: parse error")

	// ErrExtraction reports a model response with no recognised text payload.
	ErrExtraction = errors.New("memory: unsupported response shape")

	// ErrInvalidBound reports a negative retention bound.
	ErrInvalidBound = errors.New("memory: max messages must not be negative")
)

// ParseError describes a failed load. The store is unchanged when one is returned.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("memory: %s: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrParse) match any ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

func parseErr(op string, err error, msg string) error {
	return &ParseError{Op: op, Err: errors.Wrap(err, msg)}
}
