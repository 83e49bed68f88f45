// Package typekey provides structural fingerprints of types that adapters
// are registered against.
//
// A Key holds only names and child keys. It never refers to a Universe, so
// keys built in one processing pass stay valid and comparable in the next.
// Keys built from type variables (AnyKey, BoundedKey) unify with concrete
// types and report the bindings that a match implies.
package typekey

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

// Key is a comparable type shape. The set of implementations is closed.
type Key interface {
	String() string
	isKey()
}

// ClassKey matches a declared type by qualified name, ignoring its arguments.
type ClassKey struct {
	Name string
}

// ParameterizedKey matches a declared type whose arguments match Args.
type ParameterizedKey struct {
	Raw  *ClassKey
	Args []Key
}

// ArrayKey matches arrays of reference types whose component matches Component.
type ArrayKey struct {
	Component Key
}

// PrimitiveArrayKey matches arrays of exactly one primitive kind.
type PrimitiveArrayKey struct {
	Kind types.Kind
}

// AnyKey is an unconstrained type variable. It matches any type.
type AnyKey struct {
	Name string
}

// BoundedKey is a type variable with upper bounds. It matches a type with a
// supertype matching every bound.
type BoundedKey struct {
	Name   string
	Bounds []Key
}

func (*ClassKey) isKey()          {}
func (*ParameterizedKey) isKey()  {}
func (*ArrayKey) isKey()          {}
func (*PrimitiveArrayKey) isKey() {}
func (*AnyKey) isKey()            {}
func (*BoundedKey) isKey()        {}

func (k *ClassKey) String() string { return k.Name }

func (k *ParameterizedKey) String() string {
	args := make([]string, len(k.Args))
	for i, a := range k.Args {
		args[i] = a.String()
	}
	return k.Raw.Name + "<" + strings.Join(args, ", ") + ">"
}

func (k *ArrayKey) String() string { return k.Component.String() + "[]" }

func (k *PrimitiveArrayKey) String() string { return k.Kind.String() + "[]" }

func (k *AnyKey) String() string { return k.Name }

func (k *BoundedKey) String() string {
	bounds := make([]string, len(k.Bounds))
	for i, b := range k.Bounds {
		bounds[i] = b.String()
	}
	return k.Name + " extends " + strings.Join(bounds, " & ")
}

// Wildcard is the name of the AnyKey an unconstrained wildcard converts to.
// It never produces a binding.
const Wildcard = "?"

// Of converts t into a key. Bounds equal to lang.Object are dropped, so a
// variable bounded only by Object becomes an AnyKey. Occurrences of a
// variable inside its own bounds become AnyKeys. A bounded wildcard converts
// to the key of its bound.
func Of(t types.Type) (Key, error) {
	return of(t, make(map[string]bool))
}

func of(t types.Type, inProgress map[string]bool) (Key, error) {
	switch x := t.(type) {
	case *types.Declared:
		raw := &ClassKey{Name: x.Name}
		if len(x.Args) == 0 {
			return raw, nil
		}
		args := make([]Key, len(x.Args))
		for i, a := range x.Args {
			k, err := of(a, inProgress)
			if err != nil {
				return nil, err
			}
			args[i] = k
		}
		return &ParameterizedKey{Raw: raw, Args: args}, nil
	case *types.Array:
		if p, ok := x.Elem.(*types.Primitive); ok {
			return &PrimitiveArrayKey{Kind: p.Kind}, nil
		}
		component, err := of(x.Elem, inProgress)
		if err != nil {
			return nil, err
		}
		return &ArrayKey{Component: component}, nil
	case *types.Variable:
		if inProgress[x.Name] {
			return &AnyKey{Name: x.Name}, nil
		}
		inProgress[x.Name] = true
		defer delete(inProgress, x.Name)

		var bounds []Key
		for _, b := range x.Bounds {
			k, err := of(b, inProgress)
			if err != nil {
				return nil, err
			}
			if c, ok := k.(*ClassKey); ok && c.Name == types.ObjectName {
				continue
			}
			bounds = append(bounds, k)
		}
		if len(bounds) == 0 {
			return &AnyKey{Name: x.Name}, nil
		}
		return &BoundedKey{Name: x.Name, Bounds: bounds}, nil
	case *types.Wildcard:
		if b := types.WildcardBound(x); !types.IsNone(b) {
			return of(b, inProgress)
		}
		return &AnyKey{Name: Wildcard}, nil
	}
	return nil, fmt.Errorf("no type key for %s", describe(t))
}

func describe(t types.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// Equal reports whether a and b describe the same shape.
func Equal(a, b Key) bool {
	switch x := a.(type) {
	case *ClassKey:
		y, ok := b.(*ClassKey)
		return ok && x.Name == y.Name
	case *ParameterizedKey:
		y, ok := b.(*ParameterizedKey)
		return ok && x.Raw.Name == y.Raw.Name && equalAll(x.Args, y.Args)
	case *ArrayKey:
		y, ok := b.(*ArrayKey)
		return ok && Equal(x.Component, y.Component)
	case *PrimitiveArrayKey:
		y, ok := b.(*PrimitiveArrayKey)
		return ok && x.Kind == y.Kind
	case *AnyKey:
		y, ok := b.(*AnyKey)
		return ok && x.Name == y.Name
	case *BoundedKey:
		y, ok := b.(*BoundedKey)
		return ok && x.Name == y.Name && equalAll(x.Bounds, y.Bounds)
	}
	return false
}

func equalAll(a, b []Key) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
