// Package docerrors provides the error taxonomy of the documentation generator.
//
// Errors are split by how they propagate:
//
//   - MalformedDirectiveError: a documentation tag payload does not parse. The
//     directive is dropped, the rest of the comment is processed.
//   - InconsistentOperationError: conflicting or missing annotations on a
//     method. The operation is dropped, its resource is kept.
//   - InvalidFilterPatternError: a configured regular expression does not
//     compile. Fatal before any model building starts.
//   - WriterFailureError: a writer could not persist output. Fatal; the
//     remaining pipeline steps are skipped.
//
// The first two are warnings and carry a source position and declaration name
// so the offending source can be located. Use errors.Is with the sentinels or
// errors.As with the concrete types.
package docerrors

import (
	"errors"
	"fmt"

	"github.com/gaborage/restdoc/declaration"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrMalformedDirective indicates a documentation tag could not be parsed.
	ErrMalformedDirective = errors.New("malformed directive")

	// ErrInconsistentOperation indicates a method's annotations contradict each other.
	ErrInconsistentOperation = errors.New("inconsistent operation")

	// ErrInvalidFilterPattern indicates a configured regex filter does not compile.
	ErrInvalidFilterPattern = errors.New("invalid filter pattern")

	// ErrWriterFailure indicates a writer failed to persist output.
	ErrWriterFailure = errors.New("writer failure")
)

// Located is implemented by errors that point at a declaration in the sources.
type Located interface {
	error
	SourcePosition() declaration.Position
	DeclarationName() string
}

// MalformedDirectiveError reports a documentation tag whose payload does not parse.
type MalformedDirectiveError struct {
	// Directive is the tag keyword, e.g. "@responseheader"
	Directive string
	// Declaration names the declaration the comment is attached to
	Declaration string
	// Position is the location of the offending tag line
	Position declaration.Position
	// Message describes the problem
	Message string
}

// Error returns a human-readable error message.
func (e *MalformedDirectiveError) Error() string {
	msg := fmt.Sprintf("malformed %s", e.Directive)
	if e.Declaration != "" {
		msg += " on " + e.Declaration
	}
	if e.Position.IsValid() {
		msg += " at " + e.Position.String()
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *MalformedDirectiveError) Is(target error) bool {
	return target == ErrMalformedDirective
}

// SourcePosition implements Located.
func (e *MalformedDirectiveError) SourcePosition() declaration.Position { return e.Position }

// DeclarationName implements Located.
func (e *MalformedDirectiveError) DeclarationName() string { return e.Declaration }

// InconsistentOperationError reports a method that cannot become an operation.
type InconsistentOperationError struct {
	// Declaration is the qualified method name, e.g. "ItemsResource.Get"
	Declaration string
	// Path is the effective resource path the method was found under
	Path string
	// Position is the method declaration's location
	Position declaration.Position
	// Message describes the inconsistency
	Message string
}

// Error returns a human-readable error message.
func (e *InconsistentOperationError) Error() string {
	msg := "inconsistent operation " + e.Declaration
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Position.IsValid() {
		msg += " at " + e.Position.String()
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *InconsistentOperationError) Is(target error) bool {
	return target == ErrInconsistentOperation
}

// SourcePosition implements Located.
func (e *InconsistentOperationError) SourcePosition() declaration.Position { return e.Position }

// DeclarationName implements Located.
func (e *InconsistentOperationError) DeclarationName() string { return e.Declaration }

// InvalidFilterPatternError reports a filter option that is not a valid regex.
type InvalidFilterPatternError struct {
	// Option is the configuration key, e.g. "doc.pathexclude"
	Option string
	// Pattern is the offending expression
	Pattern string
	// Cause is the compile error
	Cause error
}

// Error returns a human-readable error message.
func (e *InvalidFilterPatternError) Error() string {
	msg := fmt.Sprintf("invalid pattern for '%s' option: '%s' (not a valid regex)", e.Option, e.Pattern)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *InvalidFilterPatternError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *InvalidFilterPatternError) Is(target error) bool {
	return target == ErrInvalidFilterPattern
}

// WriterFailureError reports a writer that could not persist its output.
type WriterFailureError struct {
	// Step is the pipeline step, e.g. "resource", "index", "summary"
	Step string
	// Target identifies what was being written (resource path, type id)
	Target string
	// Cause is the underlying error
	Cause error
}

// Error returns a human-readable error message.
func (e *WriterFailureError) Error() string {
	msg := "failed to write " + e.Step
	if e.Target != "" {
		msg += " " + e.Target
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *WriterFailureError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *WriterFailureError) Is(target error) bool {
	return target == ErrWriterFailure
}

// IsWarning reports whether err is recovered locally (warn and skip) rather
// than aborting generation.
func IsWarning(err error) bool {
	return errors.Is(err, ErrMalformedDirective) || errors.Is(err, ErrInconsistentOperation)
}
