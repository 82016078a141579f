package executor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDataValidation is matched by every *DataError.
	ErrDataValidation = errors.New("data validation failed")
	// ErrTransformExecution is matched by every *TransformError.
	ErrTransformExecution = errors.New("transform execution failed")
	// ErrInvalidPartitionSize is returned for a partition size below one.
	ErrInvalidPartitionSize = errors.New("partition size must be positive")
	// ErrTransformPanicked is wrapped by a TransformError whose body panicked.
	ErrTransformPanicked = errors.New("transform panicked")
)

// DataError reports an input dataset that cannot be applied. Exactly one
// of Missing, Undeclared or Column is set.
type DataError struct {
	// Missing lists, sorted, the initial variables absent from the dataset.
	Missing []string
	// Undeclared lists dataset columns the plan does not know, when such
	// columns are not allowed.
	Undeclared []string
	// Column names the input column that failed its declared type; Err
	// holds the checker's error.
	Column string
	Err    error
}

func (e *DataError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return fmt.Sprintf("missing required input columns: %s", strings.Join(e.Missing, ", "))
	case len(e.Undeclared) > 0:
		return fmt.Sprintf("undeclared columns not allowed: %s", strings.Join(e.Undeclared, ", "))
	default:
		return fmt.Sprintf("column %q failed validation: %v", e.Column, e.Err)
	}
}

func (e *DataError) Unwrap() error { return e.Err }

func (e *DataError) Is(target error) bool { return target == ErrDataValidation }

// TransformError reports a failing step: either its body returned an error
// or its result did not satisfy the declared type.
type TransformError struct {
	Variable string
	Source   string
	Err      error
}

func (e *TransformError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("transform %q: %v", e.Variable, e.Err)
	}
	return fmt.Sprintf("transform %q (%s): %v", e.Variable, e.Source, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

func (e *TransformError) Is(target error) bool { return target == ErrTransformExecution }
