// Package fields turns a declared type into the ordered field model the
// plan builder consumes: how each field is read, how it is written back and
// which constructor materializes the value.
package fields

import (
	"fmt"

	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

// Visibility of a member as seen from generated code.
type Visibility int

const (
	// Package members are reachable from generated code in the same package.
	Package Visibility = iota
	// Public members are exported.
	Public
	// Private members are only reachable through accessors or reflection.
	Private
)

// String returns the schema spelling of the visibility.
func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Private:
		return "private"
	default:
		return "package"
	}
}

// ParseVisibility parses a schema visibility; the empty string means package.
func ParseVisibility(s string) (Visibility, error) {
	switch s {
	case "", "package":
		return Package, nil
	case "public":
		return Public, nil
	case "private":
		return Private, nil
	}
	return Package, fmt.Errorf("unknown visibility %q", s)
}

// Param is a named method or constructor parameter.
type Param struct {
	Name string
	Type types.Type
}

// Method is a method declared on a type.
type Method struct {
	Name       string
	Params     []Param
	Returns    types.Type // nil for no result
	Visibility Visibility
}

// Constructor is a function building the type from its parameters.
type Constructor struct {
	Name       string
	Params     []Param
	Visibility Visibility
}

// FieldSpec is a declared field.
type FieldSpec struct {
	Name        string
	Type        types.Type
	Visibility  Visibility
	Final       bool
	Required    bool
	Annotations []string
	Line        int
}

// HasAnnotation reports whether the field carries any of the given annotations.
func (f FieldSpec) HasAnnotation(names ...string) bool {
	for _, a := range f.Annotations {
		for _, n := range names {
			if a == n {
				return true
			}
		}
	}
	return false
}

// TypeSpec is a declared type as delivered by the schema loader.
type TypeSpec struct {
	Name         string
	Fields       []FieldSpec
	Methods      []Method
	Constructors []Constructor
	Singleton    bool
	// Instance is the shared value of a singleton type.
	Instance         string
	NonNullByDefault bool
	File             string
	Line             int
}

// Options tune field analysis.
type Options struct {
	// ReflectAnnotations mark fields that may fall back to reflective access.
	ReflectAnnotations []string
	// NonNullAnnotations mark fields as required.
	NonNullAnnotations []string
}

// DefaultOptions returns the annotation names recognized out of the box.
func DefaultOptions() Options {
	return Options{
		ReflectAnnotations: []string{"Reflect"},
		NonNullAnnotations: []string{"NonNull", "NotNull", "Nonnull"},
	}
}
