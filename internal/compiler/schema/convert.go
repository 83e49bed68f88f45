package schema

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/parcelgen/internal/compiler/adapter"
	cerrors "github.com/conduit-lang/parcelgen/internal/compiler/errors"
	"github.com/conduit-lang/parcelgen/internal/compiler/fields"
	"github.com/conduit-lang/parcelgen/internal/compiler/plan"
	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

func (s *Schema) invalid(line int, format string, args ...any) *cerrors.CompilerError {
	return cerrors.NewInvalidSchema(cerrors.Location{Line: line}, fmt.Sprintf(format, args...)).WithFile(s.Path)
}

// Decls returns the universe declarations of every type and enum.
func (s *Schema) Decls() ([]*types.Decl, error) {
	var decls []*types.Decl
	var errs cerrors.ErrorList
	for _, t := range s.AllTypes() {
		d, err := types.DeclFromStrings(t.Name, t.Params, t.Supertypes...)
		if err != nil {
			errs = append(errs, s.invalid(t.Line, "%v", err))
			continue
		}
		decls = append(decls, d)
	}
	for _, e := range s.Enums {
		decls = append(decls, &types.Decl{
			Name:       e.Name,
			Supertypes: []types.Type{types.NewDeclared(types.EnumName, types.NewDeclared(e.Name))},
		})
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return decls, nil
}

// goType returns the Go type values of t are held as. Parcel and declared
// types default to a pointer to the simple name.
func (t *TypeDecl) goType() string {
	if t.GoType != "" {
		return t.GoType
	}
	return "*" + simpleName(t.Name)
}

func (e *EnumDecl) goType() string {
	if e.GoType != "" {
		return e.GoType
	}
	return simpleName(e.Name)
}

// Map records the Go types and factories of the schema in g. Generated
// types use their generated reader as the factory.
func (s *Schema) Map(g *plan.GoTypes) {
	for _, t := range s.AllTypes() {
		g.Types[t.Name] = t.goType()
		switch {
		case t.Factory != "":
			g.Factories[t.Name] = t.Factory
		case t.Parcel:
			g.Factories[t.Name] = "Read" + simpleName(strings.TrimPrefix(t.goType(), "*"))
		}
	}
	for _, e := range s.Enums {
		g.Types[e.Name] = e.goType()
	}
}

// AdapterSpecs returns the declared adapters followed by one singleton
// adapter per parcel type, naming the generated XAdapter value.
func (s *Schema) AdapterSpecs() ([]adapter.Spec, error) {
	var specs []adapter.Spec
	var errs cerrors.ErrorList
	for _, a := range s.Adapters {
		spec := adapter.Spec{
			Name:       a.Name,
			GoExpr:     a.GoExpr,
			Import:     a.Import,
			TypeParams: a.TypeParams,
			Adapts:     a.Adapts,
			Singleton:  a.Singleton,
			NullSafe:   a.NullSafe,
			ValueType:  a.ValueType,
			Priority:   a.Priority,
		}
		for _, d := range a.Dependencies {
			kind, err := adapter.ParseDependencyKind(d.Kind)
			if err != nil {
				errs = append(errs, s.invalid(a.Line, "adapter %s: %v", a.Name, err))
				continue
			}
			spec.Dependencies = append(spec.Dependencies, adapter.DependencySpec{Name: d.Name, Kind: kind, Type: d.Type})
		}
		specs = append(specs, spec)
	}
	for _, t := range s.AllTypes() {
		if !t.Parcel {
			continue
		}
		expr := s.Package + "." + plan.AdapterVar(simpleName(strings.TrimPrefix(t.goType(), "*")))
		specs = append(specs, adapter.Spec{
			Name:      expr,
			GoExpr:    expr,
			Import:    s.Import,
			Adapts:    t.Name,
			Singleton: true,
		})
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return specs, nil
}

// TypeSpecs returns the field analysis input of every parcel type.
func (s *Schema) TypeSpecs() ([]fields.TypeSpec, error) {
	var specs []fields.TypeSpec
	var errs cerrors.ErrorList
	for _, t := range s.AllTypes() {
		if !t.Parcel {
			continue
		}
		spec, err := s.typeSpec(t)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		specs = append(specs, spec)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return specs, nil
}

func (s *Schema) typeSpec(t *TypeDecl) (fields.TypeSpec, *cerrors.CompilerError) {
	spec := fields.TypeSpec{
		Name:             t.Name,
		Singleton:        t.Singleton,
		Instance:         t.Instance,
		NonNullByDefault: t.NonNullByDefault,
		File:             s.Path,
		Line:             t.Line,
	}
	parse := func(line int, expr string) (types.Type, *cerrors.CompilerError) {
		typ, err := types.Parse(expr)
		if err != nil {
			return nil, s.invalid(line, "type %s: %v", t.Name, err)
		}
		return typ, nil
	}
	params := func(decls []*ParamDecl) ([]fields.Param, *cerrors.CompilerError) {
		var out []fields.Param
		for _, p := range decls {
			typ, err := parse(t.Line, p.Type)
			if err != nil {
				return nil, err
			}
			out = append(out, fields.Param{Name: p.Name, Type: typ})
		}
		return out, nil
	}
	visibility := func(line int, v string) (fields.Visibility, *cerrors.CompilerError) {
		vis, err := fields.ParseVisibility(v)
		if err != nil {
			return 0, s.invalid(line, "type %s: %v", t.Name, err)
		}
		return vis, nil
	}

	for _, f := range t.Fields {
		typ, err := parse(f.Line, f.Type)
		if err != nil {
			return spec, err
		}
		vis, err := visibility(f.Line, f.Visibility)
		if err != nil {
			return spec, err
		}
		spec.Fields = append(spec.Fields, fields.FieldSpec{
			Name:        f.Name,
			Type:        typ,
			Visibility:  vis,
			Final:       f.Final,
			Required:    f.Required,
			Annotations: f.Annotations,
			Line:        f.Line,
		})
	}
	for _, m := range t.Methods {
		ps, err := params(m.Params)
		if err != nil {
			return spec, err
		}
		vis, err := visibility(t.Line, m.Visibility)
		if err != nil {
			return spec, err
		}
		method := fields.Method{Name: m.Name, Params: ps, Visibility: vis}
		if m.Returns != "" {
			if method.Returns, err = parse(t.Line, m.Returns); err != nil {
				return spec, err
			}
		}
		spec.Methods = append(spec.Methods, method)
	}
	for _, c := range t.Constructors {
		ps, err := params(c.Params)
		if err != nil {
			return spec, err
		}
		vis, err := visibility(t.Line, c.Visibility)
		if err != nil {
			return spec, err
		}
		spec.Constructors = append(spec.Constructors, fields.Constructor{Name: c.Name, Params: ps, Visibility: vis})
	}
	return spec, nil
}

func simpleName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
