// Package errors provides structured diagnostics for parcelgen.
// It defines error codes, categories, and formatting for both human-readable
// terminal output and machine-parseable JSON for tooling.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique diagnostic code
type ErrorCode string

// ErrorCategory represents the category of compiler error
type ErrorCategory string

const (
	// CategoryResolution represents adapter resolution errors (PRC100-199)
	CategoryResolution ErrorCategory = "resolution"
	// CategoryModel represents field model and schema errors (PRC200-299)
	CategoryModel ErrorCategory = "model"
	// CategoryCodeGen represents code generation errors (PRC600-699)
	CategoryCodeGen ErrorCategory = "codegen"
)

// ErrorSeverity indicates the severity level of an error
type ErrorSeverity string

const (
	// SeverityError indicates an error that prevents generation
	SeverityError ErrorSeverity = "error"
	// SeverityWarning indicates a warning that suggests potential issues
	SeverityWarning ErrorSeverity = "warning"
	// SeverityInfo indicates informational messages (hints, optimizations)
	SeverityInfo ErrorSeverity = "info"
)

// Location is a position in a schema file. Line and Column are 1-based; zero
// means unknown.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// CompilerError represents a structured diagnostic with enough information
// for both human-readable output and tooling
type CompilerError struct {
	// Code is the unique error code (e.g., "PRC100")
	Code ErrorCode `json:"code"`
	// Type is a machine-readable error type identifier
	Type string `json:"type"`
	// Category is the error category
	Category ErrorCategory `json:"category"`
	// Severity is the error severity level
	Severity ErrorSeverity `json:"severity"`
	// Message is the primary error message
	Message string `json:"message"`
	// Location is the schema location of the error
	Location Location `json:"location"`
	// File is the schema file name (optional)
	File string `json:"file,omitempty"`
	// Subject names the type or adapter the error is about (optional)
	Subject string `json:"subject,omitempty"`
	// Field names the field of Subject the error is about (optional)
	Field string `json:"field,omitempty"`
	// Expected describes what was expected (optional)
	Expected string `json:"expected,omitempty"`
	// Actual describes what was actually found (optional)
	Actual string `json:"actual,omitempty"`
	// Suggestion provides a hint for fixing the error (optional)
	Suggestion string `json:"suggestion,omitempty"`
	// Examples provides example fixes (optional)
	Examples []string `json:"examples,omitempty"`
	// Documentation is a URL to detailed error documentation
	Documentation string `json:"documentation,omitempty"`
}

// Error implements the error interface
func (e *CompilerError) Error() string {
	return e.Format()
}

// Format returns a human-readable error message for terminal output
func (e *CompilerError) Format() string {
	return FormatError(e)
}

// Position returns file:line:column, leaving out the parts that are unknown.
func (e *CompilerError) Position() string {
	pos := e.File
	if e.Location.Line > 0 {
		if pos == "" {
			pos = "<schema>"
		}
		pos += fmt.Sprintf(":%d", e.Location.Line)
		if e.Location.Column > 0 {
			pos += fmt.Sprintf(":%d", e.Location.Column)
		}
	}
	return pos
}

// Target returns Subject.Field, or whichever of the two is set.
func (e *CompilerError) Target() string {
	switch {
	case e.Subject != "" && e.Field != "":
		return e.Subject + "." + e.Field
	case e.Field != "":
		return e.Field
	default:
		return e.Subject
	}
}

// WithFile sets the source file name for the error
func (e *CompilerError) WithFile(file string) *CompilerError {
	e.File = file
	return e
}

// WithSubject sets the type or adapter the error is about
func (e *CompilerError) WithSubject(subject string) *CompilerError {
	e.Subject = subject
	return e
}

// WithField sets the field the error is about
func (e *CompilerError) WithField(field string) *CompilerError {
	e.Field = field
	return e
}

// WithLine sets the schema line of the error
func (e *CompilerError) WithLine(line int) *CompilerError {
	e.Location.Line = line
	return e
}

// WithExpected sets the expected value for the error
func (e *CompilerError) WithExpected(expected string) *CompilerError {
	e.Expected = expected
	return e
}

// WithActual sets the actual value for the error
func (e *CompilerError) WithActual(actual string) *CompilerError {
	e.Actual = actual
	return e
}

// WithSuggestion sets a suggestion for fixing the error
func (e *CompilerError) WithSuggestion(suggestion string) *CompilerError {
	e.Suggestion = suggestion
	return e
}

// WithExamples sets example fixes for the error
func (e *CompilerError) WithExamples(examples ...string) *CompilerError {
	e.Examples = examples
	return e
}

// ErrorList is a collection of diagnostics
type ErrorList []*CompilerError

// Error implements the error interface
func (el ErrorList) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	return FormatErrorList(el)
}

// HasErrors returns true if the list contains any errors (excludes warnings/info)
func (el ErrorList) HasErrors() bool {
	for _, err := range el {
		if err.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Collect flattens err into a list of diagnostics. Errors that carry no
// diagnostic become a PRC202 error with err's message.
func Collect(err error) ErrorList {
	if err == nil {
		return nil
	}
	var list ErrorList
	if stderrors.As(err, &list) {
		return list
	}
	var cerr *CompilerError
	if stderrors.As(err, &cerr) {
		return ErrorList{cerr}
	}
	return ErrorList{NewInvalidSchema(Location{}, err.Error())}
}

// ErrorCount returns the number of errors by severity
func (el ErrorList) ErrorCount() (errors, warnings, info int) {
	for _, err := range el {
		switch err.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		case SeverityInfo:
			info++
		}
	}
	return
}

// documentationURL returns the documentation URL for an error code
func documentationURL(code ErrorCode) string {
	return fmt.Sprintf("https://docs.conduit-lang.org/parcelgen/errors/%s", code)
}

// newError creates a new CompilerError with the given parameters
func newError(
	code ErrorCode,
	typ string,
	category ErrorCategory,
	severity ErrorSeverity,
	message string,
	loc Location,
) *CompilerError {
	return &CompilerError{
		Code:          code,
		Type:          typ,
		Category:      category,
		Severity:      severity,
		Message:       message,
		Location:      loc,
		Documentation: documentationURL(code),
	}
}
