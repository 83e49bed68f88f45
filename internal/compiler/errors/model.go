package errors

import (
	"fmt"
	"strings"
)

// Field model and schema error codes (PRC200-299)
const (
	// ErrNonReadableField indicates a field with no accessible getter
	ErrNonReadableField ErrorCode = "PRC200"
	// ErrNonWritableFields indicates fields no constructor or setter can assign
	ErrNonWritableFields ErrorCode = "PRC201"
	// ErrInvalidSchema indicates a malformed schema document
	ErrInvalidSchema ErrorCode = "PRC202"
	// ErrUnknownType indicates a reference to a type that was never declared
	ErrUnknownType ErrorCode = "PRC203"
	// ErrReflectAccess reports fields that are read or written via reflection
	ErrReflectAccess ErrorCode = "PRC204"
)

// NewNonReadableField creates a PRC200 error
func NewNonReadableField(loc Location, typeName, field string) *CompilerError {
	return newError(
		ErrNonReadableField,
		"non_readable_field",
		CategoryModel,
		SeverityError,
		"field cannot be read",
		loc,
	).WithSubject(typeName).WithField(field).
		WithSuggestion("Make the field visible or add a getter").
		WithExamples(
			fmt.Sprintf("func (x *%s) %s() ...", shortName(typeName), exported(field)),
			"mark the type with a reflect annotation",
		)
}

// NewNonWritableFields creates a PRC201 error
func NewNonWritableFields(loc Location, typeName string, fields []string) *CompilerError {
	return newError(
		ErrNonWritableFields,
		"non_writable_fields",
		CategoryModel,
		SeverityError,
		fmt.Sprintf("Fields of %s cannot be written: %s", typeName, strings.Join(fields, ", ")),
		loc,
	).WithSubject(typeName).
		WithSuggestion("Add a constructor taking these fields, a setter, or make them visible and non-final")
}

// NewInvalidSchema creates a PRC202 error
func NewInvalidSchema(loc Location, reason string) *CompilerError {
	return newError(
		ErrInvalidSchema,
		"invalid_schema",
		CategoryModel,
		SeverityError,
		fmt.Sprintf("Invalid schema: %s", reason),
		loc,
	)
}

// NewUnknownType creates a PRC203 error
func NewUnknownType(loc Location, typeName string) *CompilerError {
	return newError(
		ErrUnknownType,
		"unknown_type",
		CategoryModel,
		SeverityError,
		fmt.Sprintf("Unknown type %s", typeName),
		loc,
	).WithSubject(typeName).
		WithSuggestion("Declare the type under types: or use its fully qualified name")
}

// NewReflectAccess creates a PRC204 info diagnostic
func NewReflectAccess(loc Location, typeName string, fields []string) *CompilerError {
	return newError(
		ErrReflectAccess,
		"reflect_access",
		CategoryModel,
		SeverityInfo,
		fmt.Sprintf("Fields of %s are accessed via reflection: %s", typeName, strings.Join(fields, ", ")),
		loc,
	).WithSubject(typeName)
}

func shortName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

func exported(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
