package errors

import (
	"fmt"
	"strings"
)

// Resolution error codes (PRC100-199)
const (
	// ErrUnresolvedType indicates no adapter could be resolved for a type
	ErrUnresolvedType ErrorCode = "PRC100"
	// ErrAmbiguousAdapter indicates an adapter declaration whose type
	// parameters cannot all be inferred
	ErrAmbiguousAdapter ErrorCode = "PRC101"
	// ErrCyclicDependency indicates an adapter graph that depends on itself
	ErrCyclicDependency ErrorCode = "PRC102"
	// ErrInvalidAdapter indicates a malformed adapter declaration
	ErrInvalidAdapter ErrorCode = "PRC103"
)

// NewUnresolvedType creates a PRC100 error for field of owner
func NewUnresolvedType(loc Location, owner, field, typeName, reason string) *CompilerError {
	err := newError(
		ErrUnresolvedType,
		"unresolved_type",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("no adapter for %s", typeName),
		loc,
	).WithSubject(owner).WithField(field)
	if reason != "" {
		err.Actual = reason
	}
	return err.WithSuggestion("Declare an adapter for this type or mark the field with a reflect annotation")
}

// NewAmbiguousAdapter creates a PRC101 error
func NewAmbiguousAdapter(loc Location, adapter string, params []string) *CompilerError {
	return newError(
		ErrAmbiguousAdapter,
		"ambiguous_adapter",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("Adapter %s has type parameters that cannot be inferred: %s", adapter, strings.Join(params, ", ")),
		loc,
	).WithSubject(adapter).
		WithSuggestion("Use every type parameter in the adapted type or in another parameter's bound")
}

// NewCyclicDependency creates a PRC102 error
func NewCyclicDependency(loc Location, typeName string, chain []string) *CompilerError {
	err := newError(
		ErrCyclicDependency,
		"cyclic_dependency",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("Adapter graph for %s depends on itself", typeName),
		loc,
	).WithSubject(typeName)
	if len(chain) > 0 {
		err.Actual = strings.Join(chain, " -> ")
	}
	return err.WithSuggestion("Break the cycle with a hand-written adapter for one of the types")
}

// NewInvalidAdapter creates a PRC103 error
func NewInvalidAdapter(loc Location, adapter, reason string) *CompilerError {
	return newError(
		ErrInvalidAdapter,
		"invalid_adapter",
		CategoryResolution,
		SeverityError,
		fmt.Sprintf("Invalid adapter %s: %s", adapter, reason),
		loc,
	).WithSubject(adapter)
}
