package adapter

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnresolvedType is returned when no adapter chain handles a type.
	ErrUnresolvedType = errors.New("unresolved type")
	// ErrAmbiguousAdapter is returned when an adapter declares more than one
	// type parameter that cannot be located in its adapted type.
	ErrAmbiguousAdapter = errors.New("ambiguous adapter")
	// ErrCyclicDependency is returned when an adapter transitively depends on
	// an adapter for the type it is being resolved for.
	ErrCyclicDependency = errors.New("cyclic adapter dependency")
	// ErrInvalidAdapter is returned for malformed adapter declarations.
	ErrInvalidAdapter = errors.New("invalid adapter")
)

// ResolveError describes why a type could not be resolved. Err is one of the
// sentinel errors above; Cause is the failure of a dependency, if any.
type ResolveError struct {
	Type   string
	Reason string
	Err    error
	Cause  error
}

func (e *ResolveError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Err, e.Type)
	if e.Reason != "" {
		fmt.Fprintf(&b, " (%s)", e.Reason)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *ResolveError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// DescriptorError describes a rejected adapter declaration. Params lists the
// offending type parameters of an ambiguous declaration.
type DescriptorError struct {
	Adapter string
	Message string
	Params  []string
	Err     error
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Err, e.Adapter, e.Message)
}

func (e *DescriptorError) Unwrap() error {
	return e.Err
}

func invalid(name, format string, args ...any) error {
	return &DescriptorError{Adapter: name, Message: fmt.Sprintf(format, args...), Err: ErrInvalidAdapter}
}
