package types

import (
	"fmt"
	"sync"
)

// Decl declares a class or interface. Supertypes are written in terms of Params.
type Decl struct {
	Name       string
	Params     []*Variable
	Supertypes []Type
}

// Hierarchy answers supertype questions about types. Universe implements it.
type Hierarchy interface {
	DirectSupertypes(t Type) []Type
}

// Universe holds every declaration known to one run. It only grows.
type Universe struct {
	decls map[string]*Decl
	order []string
	mu    sync.RWMutex
}

// NewUniverse creates a universe preloaded with the builtin declarations.
func NewUniverse() *Universe {
	u := &Universe{decls: make(map[string]*Decl)}
	for _, d := range builtinDecls() {
		u.decls[d.Name] = d
		u.order = append(u.order, d.Name)
	}
	return u
}

// Declare adds d. Re-declaring an identical shape is a no-op so that the same
// schema can be fed through several passes.
func (u *Universe) Declare(d *Decl) error {
	if d == nil || d.Name == "" {
		return fmt.Errorf("declaration must have a name")
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	if existing, ok := u.decls[d.Name]; ok {
		if sameDecl(existing, d) {
			return nil
		}
		return fmt.Errorf("type %s is already declared with a different shape", d.Name)
	}
	u.decls[d.Name] = d
	u.order = append(u.order, d.Name)
	return nil
}

// Lookup returns the declaration called name.
func (u *Universe) Lookup(name string) (*Decl, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	d, ok := u.decls[name]
	return d, ok
}

// Names returns declared names in declaration order.
func (u *Universe) Names() []string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	result := make([]string, len(u.order))
	copy(result, u.order)
	return result
}

// Size returns the number of declarations.
func (u *Universe) Size() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.decls)
}

// DirectSupertypes returns the immediate supertypes of t in declaration order,
// with the type arguments of t substituted in. Arrays of reference types are
// covariant in their element type.
func (u *Universe) DirectSupertypes(t Type) []Type {
	switch x := t.(type) {
	case *Declared:
		if x.Name == ObjectName {
			return nil
		}
		d, ok := u.Lookup(x.Name)
		if !ok || len(d.Supertypes) == 0 {
			return []Type{Object()}
		}
		bindings := make(map[string]Type, len(d.Params))
		raw := len(x.Args) == 0 && len(d.Params) > 0
		for i, p := range d.Params {
			if i < len(x.Args) {
				bindings[p.Name] = x.Args[i]
			}
		}
		result := make([]Type, 0, len(d.Supertypes))
		for _, s := range d.Supertypes {
			if raw {
				result = append(result, Erasure(s))
			} else {
				result = append(result, Substitute(s, bindings))
			}
		}
		return result
	case *Array:
		if IsPrimitive(x.Elem) {
			return []Type{Object()}
		}
		if d, ok := x.Elem.(*Declared); ok && d.Name == ObjectName {
			return []Type{Object()}
		}
		supers := u.DirectSupertypes(x.Elem)
		result := make([]Type, len(supers))
		for i, s := range supers {
			result[i] = NewArray(s)
		}
		return result
	case *Variable:
		if len(x.Bounds) == 0 {
			return []Type{Object()}
		}
		return x.Bounds
	case *Wildcard:
		if b := WildcardBound(x); !IsNone(b) && x.Extends != nil {
			return []Type{b}
		}
		return []Type{Object()}
	}
	return nil
}

// AsSuper views t as its supertype called name, searching breadth first.
func (u *Universe) AsSuper(t Type, name string) (*Declared, bool) {
	return AsSuper(u, t, name)
}

// AsSuper views t as its supertype called name using h, searching breadth first.
func AsSuper(h Hierarchy, t Type, name string) (*Declared, bool) {
	queue := []Type{WildcardBound(t)}
	seen := make(map[string]bool)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if IsNone(current) {
			continue
		}
		key := current.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		if d, ok := current.(*Declared); ok && d.Name == name {
			return d, true
		}
		queue = append(queue, h.DirectSupertypes(current)...)
	}
	return nil, false
}

// IsSubtype reports whether a value of type sub can be used where sup is expected.
func (u *Universe) IsSubtype(sub, sup Type) bool {
	return IsSubtype(u, sub, sup)
}

// IsSubtype reports whether sub is a subtype of sup according to h.
func IsSubtype(h Hierarchy, sub, sup Type) bool {
	if IsNone(sub) || IsNone(sup) {
		return false
	}
	if Identical(sub, sup) {
		return true
	}
	sub = WildcardBound(sub)
	if IsNone(sub) {
		return false
	}
	switch s := sup.(type) {
	case *Declared:
		if IsPrimitive(sub) {
			return false
		}
		if s.Name == ObjectName && len(s.Args) == 0 {
			return true
		}
		if v, ok := sub.(*Variable); ok {
			for _, b := range v.Bounds {
				if IsSubtype(h, b, sup) {
					return true
				}
			}
			return false
		}
		view, ok := AsSuper(h, sub, s.Name)
		if !ok {
			return false
		}
		if len(s.Args) == 0 || len(view.Args) == 0 {
			return true
		}
		if len(s.Args) != len(view.Args) {
			return false
		}
		for i := range s.Args {
			if !containsArg(h, s.Args[i], view.Args[i]) {
				return false
			}
		}
		return true
	case *Array:
		a, ok := sub.(*Array)
		if !ok {
			return false
		}
		if IsPrimitive(s.Elem) || IsPrimitive(a.Elem) {
			return Identical(s.Elem, a.Elem)
		}
		return IsSubtype(h, a.Elem, s.Elem)
	case *Variable:
		if v, ok := sub.(*Variable); ok {
			for _, b := range v.Bounds {
				if IsSubtype(h, b, sup) {
					return true
				}
			}
		}
		return false
	case *Wildcard:
		return containsArg(h, s, sub)
	}
	return false
}

// containsArg reports whether the type argument outer contains inner.
func containsArg(h Hierarchy, outer, inner Type) bool {
	w, ok := outer.(*Wildcard)
	if !ok {
		if _, innerWild := inner.(*Wildcard); innerWild {
			return false
		}
		return Identical(outer, inner)
	}
	switch {
	case w.Extends != nil:
		return IsSubtype(h, WildcardBound(inner), w.Extends)
	case w.Super != nil:
		if iw, ok := inner.(*Wildcard); ok {
			if iw.Super == nil {
				return false
			}
			return IsSubtype(h, w.Super, iw.Super)
		}
		return IsSubtype(h, w.Super, inner)
	}
	return true
}

func sameDecl(a, b *Decl) bool {
	if len(a.Params) != len(b.Params) || len(a.Supertypes) != len(b.Supertypes) {
		return false
	}
	for i := range a.Params {
		if a.Params[i].Name != b.Params[i].Name {
			return false
		}
	}
	for i := range a.Supertypes {
		if !Identical(a.Supertypes[i], b.Supertypes[i]) {
			return false
		}
	}
	return true
}

// DeclFromStrings builds a declaration from textual parameter and supertype expressions.
func DeclFromStrings(name string, params []string, supertypes ...string) (*Decl, error) {
	vars, scope, err := ParseParams(params)
	if err != nil {
		return nil, fmt.Errorf("type %s: %w", name, err)
	}
	d := &Decl{Name: name, Params: vars}
	for _, s := range supertypes {
		st, err := ParseIn(s, scope)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", name, err)
		}
		d.Supertypes = append(d.Supertypes, st)
	}
	return d, nil
}

func builtinDecls() []*Decl {
	specs := []struct {
		name   string
		params []string
		supers []string
	}{
		{ObjectName, nil, nil},
		{"lang.CharSequence", nil, nil},
		{StringName, nil, []string{"lang.CharSequence"}},
		{"lang.Number", nil, nil},
		{"lang.Boolean", nil, nil},
		{"lang.Character", nil, nil},
		{"lang.Byte", nil, []string{"lang.Number"}},
		{"lang.Short", nil, []string{"lang.Number"}},
		{"lang.Integer", nil, []string{"lang.Number"}},
		{"lang.Long", nil, []string{"lang.Number"}},
		{"lang.Float", nil, []string{"lang.Number"}},
		{"lang.Double", nil, []string{"lang.Number"}},
		{EnumName, []string{"E extends lang.Enum<E>"}, nil},
		{"util.Collection", []string{"E"}, nil},
		{"util.List", []string{"E"}, []string{"util.Collection<E>"}},
		{"util.ArrayList", []string{"E"}, []string{"util.List<E>"}},
		{"util.Set", []string{"E"}, []string{"util.Collection<E>"}},
		{"util.HashSet", []string{"E"}, []string{"util.Set<E>"}},
		{"util.Map", []string{"K", "V"}, nil},
		{"util.HashMap", []string{"K", "V"}, []string{"util.Map<K, V>"}},
		{"util.SparseArray", []string{"E"}, nil},
		{"util.SparseBooleanArray", nil, nil},
		{"math.BigInteger", nil, []string{"lang.Number"}},
		{"math.BigDecimal", nil, []string{"lang.Number"}},
		{"time.Date", nil, nil},
		{ParcelableName, nil, nil},
	}
	decls := make([]*Decl, 0, len(specs))
	for _, s := range specs {
		d, err := DeclFromStrings(s.name, s.params, s.supers...)
		if err != nil {
			panic(err)
		}
		decls = append(decls, d)
	}
	return decls
}
