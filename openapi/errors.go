package openapi

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is(). These allow quick category
// checks without type assertions.
var (
	// ErrParse indicates the document bytes could not be parsed.
	ErrParse = errors.New("parse error")

	// ErrUnsupportedReference indicates a $ref pointer form that is not a
	// local schema component reference.
	ErrUnsupportedReference = errors.New("unsupported reference")

	// ErrSchemaNotFound indicates a well-formed $ref whose target schema
	// is not declared in the document.
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrOperationNotFound indicates a path/method pair absent from the
	// document.
	ErrOperationNotFound = errors.New("operation not found")
)

// ParseError represents a failure to parse document bytes into a schema
// document. Tolerated structural defects (missing paths, unknown dialect)
// do not produce a ParseError; only unparseable input does.
type ParseError struct {
	// Message describes the parsing failure
	Message string
	// Cause is the underlying decoder error, if any
	Cause error
}

func (e *ParseError) Error() string {
	msg := "parsing document"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Cause }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// UnsupportedReferenceError represents a $ref pointer that is not a local
// component schema reference (#/components/schemas/Name or
// #/definitions/Name). Callers recover it as an unresolved leaf.
type UnsupportedReferenceError struct {
	// Ref is the pointer string that was rejected
	Ref string
}

func (e *UnsupportedReferenceError) Error() string {
	return fmt.Sprintf("unsupported reference %q: only local schema component references are supported", e.Ref)
}

func (e *UnsupportedReferenceError) Is(target error) bool {
	return target == ErrUnsupportedReference
}

// SchemaNotFoundError represents a well-formed schema reference whose
// target is missing from the document's schema sections.
type SchemaNotFoundError struct {
	// Name is the referenced schema name
	Name string
	// Ref is the full pointer string
	Ref string
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("schema %q not found (referenced as %s)", e.Name, e.Ref)
}

func (e *SchemaNotFoundError) Is(target error) bool {
	return target == ErrSchemaNotFound
}

// OperationNotFoundError represents a lookup for a path/method pair that
// the document does not define. Callers map it to a 404-class result.
type OperationNotFoundError struct {
	Method string
	Path   string
}

func (e *OperationNotFoundError) Error() string {
	return fmt.Sprintf("no operation for %s %s", e.Method, e.Path)
}

func (e *OperationNotFoundError) Is(target error) bool {
	return target == ErrOperationNotFound
}
