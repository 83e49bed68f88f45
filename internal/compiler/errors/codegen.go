package errors

import "fmt"

// Code generation error codes (PRC600-699)
const (
	// ErrCodeGenFailed indicates a general code generation failure
	ErrCodeGenFailed ErrorCode = "PRC600"
	// ErrMissingGoType indicates a type with no Go mapping
	ErrMissingGoType ErrorCode = "PRC601"
)

// NewCodeGenFailed creates a PRC600 error
func NewCodeGenFailed(loc Location, reason string) *CompilerError {
	return newError(
		ErrCodeGenFailed,
		"codegen_failed",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("Code generation failed: %s", reason),
		loc,
	).WithSuggestion("This is likely a generator bug - please report it")
}

// NewMissingGoType creates a PRC601 error
func NewMissingGoType(loc Location, typeName string) *CompilerError {
	return newError(
		ErrMissingGoType,
		"missing_go_type",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("No Go type is known for %s", typeName),
		loc,
	).WithSubject(typeName).
		WithSuggestion("Set go_type on the type declaration")
}
