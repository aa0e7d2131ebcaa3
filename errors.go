package veloxsql

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for the dialect layer.
var (
	// ErrUnsupported is returned when a dialect does not implement a capability,
	// such as auto-increment synchronization or table description.
	ErrUnsupported = errors.New("veloxsql: unsupported operation")

	// ErrInvalidArgument is returned for caller errors such as an empty batch
	// or entities of different types in one batch.
	ErrInvalidArgument = errors.New("veloxsql: invalid argument")

	// ErrNotScalar is returned when a value of an unsupported kind is escaped.
	ErrNotScalar = errors.New("veloxsql: not a scalar type")

	// ErrSchemaNotFound is returned when a table cannot be described.
	ErrSchemaNotFound = errors.New("veloxsql: table not found")
)

// UnsupportedError represents a capability invoked on a dialect that does not implement it.
type UnsupportedError struct {
	Dialect string // Dialect name
	Op      string // Operation (e.g., "auto-increment insert", "describe")
}

// Error returns the error string.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("veloxsql: %s is not supported by dialect %q", e.Op, e.Dialect)
}

// Is reports whether the target error matches UnsupportedError.
func (e *UnsupportedError) Is(err error) bool {
	return err == ErrUnsupported
}

// NewUnsupportedError returns a new UnsupportedError.
func NewUnsupportedError(dialect, op string) *UnsupportedError {
	return &UnsupportedError{Dialect: dialect, Op: op}
}

// IsUnsupported returns true if the error is an UnsupportedError.
func IsUnsupported(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedError
	return errors.As(err, &e) || errors.Is(err, ErrUnsupported)
}

// InvalidArgumentError represents a caller error, e.g. an empty batch.
type InvalidArgumentError struct {
	Op  string // Operation (e.g., "insert", "update")
	Msg string
}

// Error returns the error string.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("veloxsql: %s: invalid argument: %s", e.Op, e.Msg)
}

// Is reports whether the target error matches InvalidArgumentError.
func (e *InvalidArgumentError) Is(err error) bool {
	return err == ErrInvalidArgument
}

// NewInvalidArgumentError returns a new InvalidArgumentError.
func NewInvalidArgumentError(op, format string, args ...any) *InvalidArgumentError {
	return &InvalidArgumentError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// IsInvalidArgument returns true if the error is an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidArgumentError
	return errors.As(err, &e) || errors.Is(err, ErrInvalidArgument)
}

// NotScalarError is returned when escaping a value whose kind has no handler.
type NotScalarError struct {
	Kind string // Go type of the offending value
}

// Error returns the error string.
func (e *NotScalarError) Error() string {
	return fmt.Sprintf("veloxsql: not a scalar type: %s", e.Kind)
}

// Is reports whether the target error matches NotScalarError.
func (e *NotScalarError) Is(err error) bool {
	return err == ErrNotScalar
}

// NewNotScalarError returns a new NotScalarError for the given value.
func NewNotScalarError(v any) *NotScalarError {
	return &NotScalarError{Kind: fmt.Sprintf("%T", v)}
}

// IsNotScalar returns true if the error is a NotScalarError.
func IsNotScalar(err error) bool {
	if err == nil {
		return false
	}
	var e *NotScalarError
	return errors.As(err, &e) || errors.Is(err, ErrNotScalar)
}

// SchemaNotFoundError wraps an introspection failure for a table.
// The original error is kept for diagnostics.
type SchemaNotFoundError struct {
	Table string
	Err   error // Underlying introspection error, may be nil
}

// Error returns the error string.
func (e *SchemaNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("veloxsql: unknown table %q: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("veloxsql: unknown table %q", e.Table)
}

// Unwrap returns the underlying error.
func (e *SchemaNotFoundError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches SchemaNotFoundError.
func (e *SchemaNotFoundError) Is(err error) bool {
	return err == ErrSchemaNotFound
}

// NewSchemaNotFoundError returns a new SchemaNotFoundError.
func NewSchemaNotFoundError(table string, err error) *SchemaNotFoundError {
	return &SchemaNotFoundError{Table: table, Err: err}
}

// IsSchemaNotFound returns true if the error is a SchemaNotFoundError.
func IsSchemaNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *SchemaNotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrSchemaNotFound)
}
