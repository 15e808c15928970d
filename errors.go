package timescape

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for the generation pipeline.
var (
	// ErrInvalidSchema is returned when a schema node is malformed, e.g. a
	// union without alternatives. It is raised before any lowering starts.
	ErrInvalidSchema = errors.New("timescape: invalid schema")

	// ErrReferential is returned when bundle assembly finds a duplicate id
	// or a reference to a handler, module or schema that does not exist.
	ErrReferential = errors.New("timescape: referential integrity violated")

	// ErrIntegrity is returned when a previously produced bundle no longer
	// matches its recorded checksum or signature.
	ErrIntegrity = errors.New("timescape: bundle integrity check failed")

	// ErrInvalidDescriptor is returned when a handler or module descriptor
	// is malformed (bad version identifier, empty path, no verbs).
	ErrInvalidDescriptor = errors.New("timescape: invalid descriptor")
)

// SchemaError represents a malformed schema construction.
type SchemaError struct {
	Schema  string // Schema name, empty for anonymous nodes.
	Path    string // Structural path inside the schema, e.g. "address.zip".
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("timescape: schema error")
	if e.Schema != "" {
		b.WriteString(" in ")
		b.WriteString(e.Schema)
	}
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrInvalidSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError returns a new SchemaError.
func NewSchemaError(schema, path, message string, cause error) *SchemaError {
	return &SchemaError{
		Schema:  schema,
		Path:    path,
		Message: message,
		Cause:   cause,
	}
}

// IsSchemaError reports whether the error is a SchemaError.
func IsSchemaError(err error) bool {
	var e *SchemaError
	return errors.As(err, &e)
}

// ReferentialError represents a broken identity or reference inside the
// handler/module/schema sets that make up a bundle.
type ReferentialError struct {
	Kind    string // "handler", "module" or "schema".
	ID      string // The identifier that carries the reference (or repeats).
	Ref     string // The missing reference, if any.
	Message string
}

// Error implements the error interface.
func (e *ReferentialError) Error() string {
	var b strings.Builder
	b.WriteString("timescape: referential error")
	if e.Kind != "" && e.ID != "" {
		fmt.Fprintf(&b, " on %s %q", e.Kind, e.ID)
	}
	if e.Ref != "" {
		fmt.Fprintf(&b, " (ref %q)", e.Ref)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches ErrReferential.
func (e *ReferentialError) Is(target error) bool {
	return target == ErrReferential
}

// NewReferentialError returns a new ReferentialError.
func NewReferentialError(kind, id, ref, message string) *ReferentialError {
	return &ReferentialError{
		Kind:    kind,
		ID:      id,
		Ref:     ref,
		Message: message,
	}
}

// IsReferentialError reports whether the error is a ReferentialError.
func IsReferentialError(err error) bool {
	var e *ReferentialError
	return errors.As(err, &e)
}

// IntegrityError is returned when a bundle's recorded checksum (or
// signature) does not match the one derived from its content.
type IntegrityError struct {
	Expected string // Value derived from the content.
	Actual   string // Value recorded in the bundle.
	Message  string
}

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "checksum mismatch"
	}
	if e.Expected == "" && e.Actual == "" {
		return "timescape: integrity error: " + msg
	}
	return fmt.Sprintf("timescape: integrity error: %s (expected %s, got %s)", msg, e.Expected, e.Actual)
}

// Is reports whether the target matches ErrIntegrity.
func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}

// NewIntegrityError returns a new IntegrityError.
func NewIntegrityError(expected, actual, message string) *IntegrityError {
	return &IntegrityError{
		Expected: expected,
		Actual:   actual,
		Message:  message,
	}
}

// IsIntegrityError reports whether the error is an IntegrityError.
func IsIntegrityError(err error) bool {
	var e *IntegrityError
	return errors.As(err, &e)
}

// DescriptorError represents a malformed handler or module descriptor.
type DescriptorError struct {
	Kind    string // "handler", "module", "transformer" or "source".
	ID      string
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *DescriptorError) Error() string {
	var b strings.Builder
	b.WriteString("timescape: descriptor error")
	if e.Kind != "" && e.ID != "" {
		fmt.Fprintf(&b, " on %s %q", e.Kind, e.ID)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *DescriptorError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrInvalidDescriptor.
func (e *DescriptorError) Is(target error) bool {
	return target == ErrInvalidDescriptor
}

// NewDescriptorError returns a new DescriptorError.
func NewDescriptorError(kind, id, field, message string, cause error) *DescriptorError {
	return &DescriptorError{
		Kind:    kind,
		ID:      id,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// IsDescriptorError reports whether the error is a DescriptorError.
func IsDescriptorError(err error) bool {
	var e *DescriptorError
	return errors.As(err, &e)
}
