// Package types implements the type model parcelgen resolves codecs against.
// Types are plain values built from qualified names, so they can be compared
// and cached across processing passes without holding any parser state.
package types

import (
	"strings"
)

// Kind identifies a primitive type.
type Kind int

const (
	Boolean Kind = iota + 1
	Byte
	Short
	Int
	Long
	Char
	Float
	Double
)

var kindNames = map[Kind]string{
	Boolean: "boolean",
	Byte:    "byte",
	Short:   "short",
	Int:     "int",
	Long:    "long",
	Char:    "char",
	Float:   "float",
	Double:  "double",
}

var boxedNames = map[Kind]string{
	Boolean: "lang.Boolean",
	Byte:    "lang.Byte",
	Short:   "lang.Short",
	Int:     "lang.Integer",
	Long:    "lang.Long",
	Char:    "lang.Character",
	Float:   "lang.Float",
	Double:  "lang.Double",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// BoxedName returns the qualified name of the boxed form of k.
func (k Kind) BoxedName() string {
	return boxedNames[k]
}

// KindFromName returns the primitive kind called name.
func KindFromName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Qualified names of the declarations the rest of the compiler refers to directly.
const (
	ObjectName     = "lang.Object"
	StringName     = "lang.String"
	EnumName       = "lang.Enum"
	ParcelableName = "parcel.Parcelable"
)

// Type is a type expression. The set of implementations is closed.
type Type interface {
	// String returns the canonical type name. Identical types have identical names.
	String() string

	isType()
}

// Primitive is a primitive type such as int or boolean.
type Primitive struct {
	Kind Kind
}

// Declared is a class or interface, possibly parameterized.
type Declared struct {
	Name string
	Args []Type
}

// Array is an array of Elem.
type Array struct {
	Elem Type
}

// Variable is a type variable. Bounds are its upper bounds, empty when unbounded.
type Variable struct {
	Name   string
	Bounds []Type
}

// Wildcard is a wildcard type argument. At most one of Extends and Super is set.
type Wildcard struct {
	Extends Type
	Super   Type
}

// noType is the explicit "no type" result.
type noType struct{}

// NoType is returned where a type is required but none exists, such as the
// bound of an unconstrained wildcard.
var NoType Type = noType{}

func (*Primitive) isType() {}
func (*Declared) isType()  {}
func (*Array) isType()     {}
func (*Variable) isType()  {}
func (*Wildcard) isType()  {}
func (noType) isType()     {}

// Constructors

// NewPrimitive returns the primitive type of kind k.
func NewPrimitive(k Kind) *Primitive {
	return &Primitive{Kind: k}
}

// NewDeclared returns the declared type name<args...>.
func NewDeclared(name string, args ...Type) *Declared {
	return &Declared{Name: name, Args: args}
}

// NewArray returns the array type elem[].
func NewArray(elem Type) *Array {
	return &Array{Elem: elem}
}

// NewVariable returns a type variable with the given bounds.
func NewVariable(name string, bounds ...Type) *Variable {
	return &Variable{Name: name, Bounds: bounds}
}

// Object returns the root declared type.
func Object() *Declared {
	return NewDeclared(ObjectName)
}

func (p *Primitive) String() string {
	return p.Kind.String()
}

func (d *Declared) String() string {
	if len(d.Args) == 0 {
		return d.Name
	}
	args := make([]string, len(d.Args))
	for i, a := range d.Args {
		args[i] = a.String()
	}
	return d.Name + "<" + strings.Join(args, ", ") + ">"
}

// SimpleName returns the last segment of the qualified name.
func (d *Declared) SimpleName() string {
	if i := strings.LastIndex(d.Name, "."); i >= 0 {
		return d.Name[i+1:]
	}
	return d.Name
}

func (a *Array) String() string {
	return a.Elem.String() + "[]"
}

func (v *Variable) String() string {
	return v.Name
}

func (w *Wildcard) String() string {
	switch {
	case w.Extends != nil:
		return "? extends " + w.Extends.String()
	case w.Super != nil:
		return "? super " + w.Super.String()
	default:
		return "?"
	}
}

func (noType) String() string {
	return "none"
}

// IsPrimitive reports whether t is a primitive type.
func IsPrimitive(t Type) bool {
	_, ok := t.(*Primitive)
	return ok
}

// IsNone reports whether t is NoType or nil.
func IsNone(t Type) bool {
	return t == nil || t == NoType
}

// Box returns the boxed form of a primitive type and returns t unchanged otherwise.
func Box(t Type) Type {
	if p, ok := t.(*Primitive); ok {
		return NewDeclared(p.Kind.BoxedName())
	}
	return t
}

// Unbox returns the primitive kind of a boxed declared type.
func Unbox(t Type) (Kind, bool) {
	d, ok := t.(*Declared)
	if !ok || len(d.Args) > 0 {
		return 0, false
	}
	for k, name := range boxedNames {
		if name == d.Name {
			return k, true
		}
	}
	return 0, false
}

// Identical reports whether a and b denote the same type.
func Identical(a, b Type) bool {
	switch x := a.(type) {
	case *Primitive:
		y, ok := b.(*Primitive)
		return ok && x.Kind == y.Kind
	case *Declared:
		y, ok := b.(*Declared)
		if !ok || x.Name != y.Name || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Identical(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *Array:
		y, ok := b.(*Array)
		return ok && Identical(x.Elem, y.Elem)
	case *Variable:
		y, ok := b.(*Variable)
		return ok && x.Name == y.Name
	case *Wildcard:
		y, ok := b.(*Wildcard)
		if !ok {
			return false
		}
		return identicalOrNil(x.Extends, y.Extends) && identicalOrNil(x.Super, y.Super)
	case noType:
		return b == NoType
	}
	return false
}

func identicalOrNil(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Identical(a, b)
}

// Erasure strips type arguments. Variables erase to their first bound,
// wildcards to their extends bound, both defaulting to lang.Object.
func Erasure(t Type) Type {
	switch x := t.(type) {
	case *Declared:
		if len(x.Args) == 0 {
			return x
		}
		return NewDeclared(x.Name)
	case *Array:
		return NewArray(Erasure(x.Elem))
	case *Variable:
		if len(x.Bounds) > 0 {
			return Erasure(x.Bounds[0])
		}
		return Object()
	case *Wildcard:
		if x.Extends != nil {
			return Erasure(x.Extends)
		}
		return Object()
	}
	return t
}

// Substitute replaces type variables named in bindings.
func Substitute(t Type, bindings map[string]Type) Type {
	if len(bindings) == 0 {
		return t
	}
	switch x := t.(type) {
	case *Declared:
		if len(x.Args) == 0 {
			return x
		}
		args := make([]Type, len(x.Args))
		for i, a := range x.Args {
			args[i] = Substitute(a, bindings)
		}
		return NewDeclared(x.Name, args...)
	case *Array:
		return NewArray(Substitute(x.Elem, bindings))
	case *Variable:
		if b, ok := bindings[x.Name]; ok {
			return b
		}
		return x
	case *Wildcard:
		w := &Wildcard{}
		if x.Extends != nil {
			w.Extends = Substitute(x.Extends, bindings)
		}
		if x.Super != nil {
			w.Super = Substitute(x.Super, bindings)
		}
		return w
	}
	return t
}

// Variables returns the names of the type variables in t, in order of first appearance.
func Variables(t Type) []string {
	var names []string
	seen := make(map[string]bool)
	var walk func(Type)
	walk = func(t Type) {
		switch x := t.(type) {
		case *Declared:
			for _, a := range x.Args {
				walk(a)
			}
		case *Array:
			walk(x.Elem)
		case *Variable:
			if !seen[x.Name] {
				seen[x.Name] = true
				names = append(names, x.Name)
			}
		case *Wildcard:
			if x.Extends != nil {
				walk(x.Extends)
			}
			if x.Super != nil {
				walk(x.Super)
			}
		}
	}
	walk(t)
	return names
}

// Contains reports whether the type variable name appears anywhere in t.
func Contains(t Type, name string) bool {
	for _, n := range Variables(t) {
		if n == name {
			return true
		}
	}
	return false
}

// IsConcrete reports whether t contains no type variables.
func IsConcrete(t Type) bool {
	return len(Variables(t)) == 0
}

// WildcardBound resolves a wildcard to its extends bound, then its super bound.
// An unconstrained wildcard yields NoType. Non-wildcards are returned as is.
func WildcardBound(t Type) Type {
	w, ok := t.(*Wildcard)
	if !ok {
		return t
	}
	if w.Extends != nil {
		return w.Extends
	}
	if w.Super != nil {
		return w.Super
	}
	return NoType
}
