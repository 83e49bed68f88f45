// Package adapter resolves field types to the adapters that marshal them.
//
// A Descriptor describes one adapter implementation. The Registry catalogs
// descriptors and caches resolved graphs. The Resolver turns a field type
// into a Graph: the chosen descriptor, its type arguments and the graphs of
// the adapters it needs as constructor arguments.
package adapter

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/parcelgen/internal/compiler/typekey"
	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

// DefaultPriority is the priority of descriptors that do not set one.
const DefaultPriority = 150

// DependencyKind classifies an adapter constructor parameter.
type DependencyKind int

const (
	// DependencyAdapter is another adapter, resolved recursively.
	DependencyAdapter DependencyKind = iota
	// DependencyClass is a class literal for a type argument.
	DependencyClass
	// DependencyFactory is the companion factory of a type argument.
	DependencyFactory
)

func (k DependencyKind) String() string {
	switch k {
	case DependencyAdapter:
		return "adapter"
	case DependencyClass:
		return "class"
	case DependencyFactory:
		return "factory"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k DependencyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseDependencyKind parses the textual kind used in schema files. An empty
// string means adapter.
func ParseDependencyKind(s string) (DependencyKind, error) {
	switch s {
	case "", "adapter":
		return DependencyAdapter, nil
	case "class":
		return DependencyClass, nil
	case "factory":
		return DependencyFactory, nil
	}
	return 0, fmt.Errorf("unknown dependency kind %q", s)
}

// DependencySpec is the textual form of a constructor parameter.
type DependencySpec struct {
	Name string
	Kind DependencyKind
	// Type is the type the dependency is for, in terms of the type parameters.
	Type string
}

// Spec is the textual form of an adapter declaration.
type Spec struct {
	// Name is the qualified adapter identity, for example "parcel.ListAdapter".
	Name string
	// GoExpr is the shared instance for singletons and the constructor
	// function otherwise.
	GoExpr string
	// Import is the Go import path GoExpr lives in, if any.
	Import       string
	TypeParams   []string
	Adapts       string
	Dependencies []DependencySpec
	Singleton    bool
	NullSafe     bool
	// ValueType reports that the adapted Go value cannot be nil, so nullable
	// fields of this type are held through a pointer.
	ValueType bool
	// Priority orders descriptors sharing an erasure. Zero means DefaultPriority.
	Priority int
}

// Dependency is one constructor parameter of an adapter.
type Dependency struct {
	Name string
	Kind DependencyKind
	Type types.Type
}

// StepOp is one operation of an extraction path.
type StepOp int

const (
	// StepSkip descends into the component of an array.
	StepSkip StepOp = iota
	// StepSkipVariable passes through a wildcard to its bound.
	StepSkipVariable
	// StepProcess descends into declared type argument Index.
	StepProcess
)

func (op StepOp) String() string {
	switch op {
	case StepSkip:
		return "SKIP"
	case StepSkipVariable:
		return "SKIP_VARIABLE"
	case StepProcess:
		return "PROCESS"
	default:
		return "?"
	}
}

// Step is a single extraction step.
type Step struct {
	Op    StepOp
	Index int
}

func (s Step) String() string {
	if s.Op == StepProcess {
		return fmt.Sprintf("PROCESS(%d)", s.Index)
	}
	return s.Op.String()
}

// RecipeKind says how a type argument is recovered from a concrete type.
type RecipeKind int

const (
	// RecipeWhole is used when the adapted type is the bare type variable:
	// the argument is the full field type.
	RecipeWhole RecipeKind = iota
	// RecipePath walks Path over the concrete type.
	RecipePath
	// RecipeUnindexed is used for a parameter that does not occur in the
	// adapted type. Its argument comes from the bound bindings of another
	// parameter, or is the full field type.
	RecipeUnindexed
)

func (k RecipeKind) String() string {
	switch k {
	case RecipeWhole:
		return "whole"
	case RecipePath:
		return "path"
	case RecipeUnindexed:
		return "unindexed"
	default:
		return "unknown"
	}
}

// Recipe recovers the type argument for one type parameter.
type Recipe struct {
	Param string
	Kind  RecipeKind
	Path  []Step
}

func (r Recipe) String() string {
	if r.Kind != RecipePath {
		return r.Param + ":" + r.Kind.String()
	}
	steps := make([]string, len(r.Path))
	for i, s := range r.Path {
		steps[i] = s.String()
	}
	return r.Param + ":" + strings.Join(steps, ".")
}

// Extract walks the recipe path over t. The final type has its wildcard
// resolved; an unconstrained wildcard yields false.
func (r Recipe) Extract(t types.Type) (types.Type, bool) {
	current := t
	for _, step := range r.Path {
		switch step.Op {
		case StepProcess:
			d, ok := types.WildcardBound(current).(*types.Declared)
			if !ok || step.Index >= len(d.Args) {
				return nil, false
			}
			current = d.Args[step.Index]
		case StepSkip:
			a, ok := types.WildcardBound(current).(*types.Array)
			if !ok {
				return nil, false
			}
			current = a.Elem
		case StepSkipVariable:
			current = types.WildcardBound(current)
		}
		if types.IsNone(current) {
			return nil, false
		}
	}
	current = types.WildcardBound(current)
	if types.IsNone(current) {
		return nil, false
	}
	return current, true
}

// Descriptor is the immutable description of one adapter.
type Descriptor struct {
	Name         string
	GoExpr       string
	Import       string
	Params       []*types.Variable
	Adapted      types.Type
	Key          typekey.Key
	Erasure      string
	Dependencies []Dependency
	Singleton    bool
	NullSafe     bool
	ValueType    bool
	Priority     int
	Recipes      []Recipe

	order int
}

// NewDescriptor validates spec and computes the descriptor's key, erasure
// and extraction recipes.
func NewDescriptor(spec Spec) (*Descriptor, error) {
	if spec.Name == "" {
		return nil, invalid("<unnamed>", "adapter name is required")
	}
	if spec.Adapts == "" {
		return nil, invalid(spec.Name, "adapted type is required")
	}

	params, scope, err := types.ParseParams(spec.TypeParams)
	if err != nil {
		return nil, invalid(spec.Name, "%v", err)
	}
	adapted, err := types.ParseIn(spec.Adapts, scope)
	if err != nil {
		return nil, invalid(spec.Name, "%v", err)
	}
	if types.IsPrimitive(adapted) {
		return nil, invalid(spec.Name, "primitive type %s is written directly and cannot be adapted", adapted)
	}
	key, err := typekey.Of(adapted)
	if err != nil {
		return nil, invalid(spec.Name, "%v", err)
	}

	d := &Descriptor{
		Name:      spec.Name,
		GoExpr:    spec.GoExpr,
		Import:    spec.Import,
		Params:    params,
		Adapted:   adapted,
		Key:       key,
		Erasure:   types.Erasure(adapted).String(),
		Singleton: spec.Singleton,
		NullSafe:  spec.NullSafe,
		ValueType: spec.ValueType,
		Priority:  spec.Priority,
	}
	if d.GoExpr == "" {
		d.GoExpr = spec.Name
	}
	if d.Priority == 0 {
		d.Priority = DefaultPriority
	}

	for _, dep := range spec.Dependencies {
		t, err := types.ParseIn(dep.Type, scope)
		if err != nil {
			return nil, invalid(spec.Name, "dependency %s: %v", dep.Name, err)
		}
		d.Dependencies = append(d.Dependencies, Dependency{Name: dep.Name, Kind: dep.Kind, Type: t})
	}
	if d.Singleton && len(d.Dependencies) > 0 {
		return nil, invalid(spec.Name, "singleton adapters cannot take constructor arguments")
	}

	if err := d.computeRecipes(); err != nil {
		return nil, err
	}
	return d, nil
}

// MustDescriptor is like NewDescriptor but panics on error.
func MustDescriptor(spec Spec) *Descriptor {
	d, err := NewDescriptor(spec)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Descriptor) computeRecipes() error {
	boundVars := make(map[string]bool)
	for _, p := range d.Params {
		for _, b := range p.Bounds {
			for _, name := range types.Variables(b) {
				if name != p.Name {
					boundVars[name] = true
				}
			}
		}
	}

	var unindexed []string
	for _, p := range d.Params {
		r := Recipe{Param: p.Name}
		if v, ok := d.Adapted.(*types.Variable); ok && v.Name == p.Name {
			r.Kind = RecipeWhole
		} else if path, ok := findPath(d.Adapted, p.Name); ok {
			r.Kind = RecipePath
			r.Path = path
		} else {
			r.Kind = RecipeUnindexed
			if !boundVars[p.Name] {
				unindexed = append(unindexed, p.Name)
			}
		}
		d.Recipes = append(d.Recipes, r)
	}

	if len(unindexed) > 1 {
		return &DescriptorError{
			Adapter: d.Name,
			Message: fmt.Sprintf("type parameters %s do not occur in adapted type %s", strings.Join(unindexed, ", "), d.Adapted),
			Params:  unindexed,
			Err:     ErrAmbiguousAdapter,
		}
	}
	return nil
}

// findPath returns the steps leading to the first occurrence of the variable
// name in t, searching depth first in argument order.
func findPath(t types.Type, name string) ([]Step, bool) {
	switch x := t.(type) {
	case *types.Variable:
		return nil, x.Name == name
	case *types.Declared:
		for i, a := range x.Args {
			if rest, ok := findPath(a, name); ok {
				return append([]Step{{Op: StepProcess, Index: i}}, rest...), true
			}
		}
	case *types.Array:
		if rest, ok := findPath(x.Elem, name); ok {
			return append([]Step{{Op: StepSkip}}, rest...), true
		}
	case *types.Wildcard:
		for _, b := range []types.Type{x.Extends, x.Super} {
			if b == nil {
				continue
			}
			if rest, ok := findPath(b, name); ok {
				return append([]Step{{Op: StepSkipVariable}}, rest...), true
			}
		}
	}
	return nil, false
}

// Whole reports whether the descriptor adapts a bare type variable.
func (d *Descriptor) Whole() bool {
	_, ok := d.Adapted.(*types.Variable)
	return ok
}

// HasAdapterDependencies reports whether any constructor parameter is an adapter.
func (d *Descriptor) HasAdapterDependencies() bool {
	for _, dep := range d.Dependencies {
		if dep.Kind == DependencyAdapter {
			return true
		}
	}
	return false
}

func (d *Descriptor) sameShape(other *Descriptor) bool {
	return d.Name == other.Name &&
		d.GoExpr == other.GoExpr &&
		types.Identical(d.Adapted, other.Adapted) &&
		len(d.Dependencies) == len(other.Dependencies) &&
		d.Singleton == other.Singleton &&
		d.NullSafe == other.NullSafe &&
		d.Priority == other.Priority
}

func (d *Descriptor) String() string {
	var b strings.Builder
	b.WriteString(d.Name)
	if len(d.Params) > 0 {
		names := make([]string, len(d.Params))
		for i, p := range d.Params {
			names[i] = p.Name
		}
		b.WriteString("<" + strings.Join(names, ", ") + ">")
	}
	b.WriteString(" adapts " + d.Adapted.String())
	return b.String()
}
