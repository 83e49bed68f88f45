package schema

import (
	"sort"

	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

// Declared returns the names of the types and enums the schema declares.
func (s *Schema) Declared() []string {
	var names []string
	for _, t := range s.AllTypes() {
		names = append(names, t.Name)
	}
	for _, e := range s.Enums {
		names = append(names, e.Name)
	}
	return names
}

// References returns the sorted names of declared types mentioned by the
// schema's fields, methods, constructors, supertypes and adapters, including
// the schema's own declarations. Expressions that do not parse are skipped;
// Decls and TypeSpecs report them.
func (s *Schema) References() []string {
	seen := make(map[string]bool)
	add := func(expr string) {
		if expr == "" {
			return
		}
		t, err := types.Parse(expr)
		if err != nil {
			return
		}
		collect(t, seen)
	}
	params := func(ps []*ParamDecl) {
		for _, p := range ps {
			add(p.Type)
		}
	}

	for _, t := range s.AllTypes() {
		for _, super := range t.Supertypes {
			add(super)
		}
		for _, f := range t.Fields {
			add(f.Type)
		}
		for _, m := range t.Methods {
			params(m.Params)
			add(m.Returns)
		}
		for _, c := range t.Constructors {
			params(c.Params)
		}
	}
	for _, a := range s.Adapters {
		add(a.Adapts)
		for _, d := range a.Dependencies {
			add(d.Type)
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collect(t types.Type, seen map[string]bool) {
	switch x := t.(type) {
	case *types.Declared:
		seen[x.Name] = true
		for _, a := range x.Args {
			collect(a, seen)
		}
	case *types.Array:
		collect(x.Elem, seen)
	case *types.Variable:
		for _, b := range x.Bounds {
			collect(b, seen)
		}
	case *types.Wildcard:
		if x.Extends != nil {
			collect(x.Extends, seen)
		}
		if x.Super != nil {
			collect(x.Super, seen)
		}
	}
}
