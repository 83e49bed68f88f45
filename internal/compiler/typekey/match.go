package typekey

import (
	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

// IsMatch reports whether t could be produced by substituting concrete types
// for the variables in k.
func IsMatch(h types.Hierarchy, k Key, t types.Type) bool {
	return bind(h, k, t, make(map[string]types.Type))
}

// Bindings returns the variable bindings implied by matching k against t.
// The second result is false when t does not match or when one variable
// would be bound to two different types.
func Bindings(h types.Hierarchy, k Key, t types.Type) (map[string]types.Type, bool) {
	out := make(map[string]types.Type)
	if !bind(h, k, t, out) {
		return nil, false
	}
	return out, true
}

// BoundView returns the supertype of t, t included, that matches bound. The
// search is breadth first over direct supertypes. It returns types.NoType when
// no supertype matches, including when t is an unconstrained wildcard.
func BoundView(h types.Hierarchy, bound Key, t types.Type) types.Type {
	start := types.WildcardBound(t)
	if types.IsNone(start) {
		return types.NoType
	}
	queue := []types.Type{start}
	seen := make(map[string]bool)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		name := current.String()
		if seen[name] {
			continue
		}
		seen[name] = true
		if IsMatch(h, bound, current) {
			return current
		}
		queue = append(queue, h.DirectSupertypes(current)...)
	}
	return types.NoType
}

func bind(h types.Hierarchy, k Key, t types.Type, out map[string]types.Type) bool {
	t = types.WildcardBound(t)
	if types.IsNone(t) {
		return false
	}

	switch k := k.(type) {
	case *AnyKey:
		return put(out, k.Name, t)
	case *ClassKey:
		d, ok := t.(*types.Declared)
		return ok && d.Name == k.Name
	case *ParameterizedKey:
		d, ok := t.(*types.Declared)
		if !ok || d.Name != k.Raw.Name || len(d.Args) != len(k.Args) {
			return false
		}
		for i, arg := range k.Args {
			if !bind(h, arg, d.Args[i], out) {
				return false
			}
		}
		return true
	case *ArrayKey:
		a, ok := t.(*types.Array)
		if !ok || types.IsPrimitive(a.Elem) {
			return false
		}
		return bind(h, k.Component, a.Elem, out)
	case *PrimitiveArrayKey:
		a, ok := t.(*types.Array)
		if !ok {
			return false
		}
		p, ok := a.Elem.(*types.Primitive)
		return ok && p.Kind == k.Kind
	case *BoundedKey:
		for _, bound := range k.Bounds {
			view := BoundView(h, bound, t)
			if types.IsNone(view) {
				return false
			}
			if !bind(h, bound, view, out) {
				return false
			}
		}
		return put(out, k.Name, t)
	}
	return false
}

func put(out map[string]types.Type, name string, t types.Type) bool {
	if name == Wildcard {
		return true
	}
	if existing, ok := out[name]; ok {
		return types.Identical(existing, t)
	}
	out[name] = t
	return true
}
