package plan

import (
	"errors"

	"go.uber.org/zap"

	"github.com/conduit-lang/parcelgen/internal/compiler/adapter"
	cerrors "github.com/conduit-lang/parcelgen/internal/compiler/errors"
	"github.com/conduit-lang/parcelgen/internal/compiler/fields"
	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

// Builder turns field models into plans. It is safe for concurrent use when
// its resolver and mapper are.
type Builder struct {
	resolver *adapter.Resolver
	mapper   Mapper
	logger   *zap.Logger
}

// NewBuilder creates a plan builder.
func NewBuilder(resolver *adapter.Resolver, mapper Mapper, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{resolver: resolver, mapper: mapper, logger: logger}
}

// Build plans model. The first field without an adapter aborts the whole type
// with a *cerrors.CompilerError naming that field.
func (b *Builder) Build(model *fields.Model) (*Plan, error) {
	loc := cerrors.Location{Line: model.Line}
	goType, ok := b.mapper.GoType(types.NewDeclared(model.Type))
	if !ok {
		return nil, cerrors.NewMissingGoType(loc, model.Type).WithFile(model.File)
	}

	p := &Plan{
		Type:         model.Type,
		GoType:       goType,
		Construction: model.Construction,
		File:         model.File,
	}
	d := &declarer{mapper: b.mapper, seen: make(map[string]bool), names: NewNamer()}

	for _, f := range model.Fields {
		fp, err := b.field(model, f, d)
		if err != nil {
			return nil, err
		}
		p.Fields = append(p.Fields, fp)
	}
	p.Decls = d.decls

	b.logger.Debug("planned type",
		zap.String("type", p.Type),
		zap.Int("fields", len(p.Fields)),
		zap.Int("adapters", len(p.Decls)),
	)
	return p, nil
}

func (b *Builder) field(model *fields.Model, f *fields.Field, d *declarer) (*FieldPlan, error) {
	loc := cerrors.Location{Line: f.Line}
	if loc.Line == 0 {
		loc.Line = model.Line
	}

	fp := &FieldPlan{
		Name:  f.Name,
		Type:  f.Type.String(),
		Read:  f.Read,
		Write: f.Write,
		Line:  f.Line,
	}
	goType, hasGoType := b.mapper.GoType(f.Type)

	if p, ok := f.Type.(*types.Primitive); ok {
		fp.Encoding = EncodePrimitive
		fp.Kind = p.Kind
		fp.GoType = goType
		return fp, nil
	}

	g, err := b.resolver.Resolve(f.Type)
	if err != nil {
		return nil, resolveFailure(loc, model, f, err)
	}
	if err := d.declare(g, loc); err != nil {
		return nil, err.WithFile(model.File)
	}

	fp.Encoding = EncodeAdapter
	fp.Adapter = d.ref(g, false)
	fp.NullTag = f.Nullable && !g.NullSafe()
	fp.Pointer = fp.NullTag && g.Descriptor.ValueType

	if hasGoType {
		fp.GoType = goType
		if fp.Pointer {
			fp.GoType = "*" + goType
		}
	} else if f.Read.Kind == fields.ReadReflect {
		return nil, cerrors.NewMissingGoType(loc, f.Type.String()).WithFile(model.File)
	}
	return fp, nil
}

func resolveFailure(loc cerrors.Location, model *fields.Model, f *fields.Field, err error) *cerrors.CompilerError {
	var cerr *cerrors.CompilerError
	if errors.Is(err, adapter.ErrCyclicDependency) {
		var rerr *adapter.ResolveError
		typeName := f.Type.String()
		if errors.As(err, &rerr) {
			typeName = rerr.Type
		}
		cerr = cerrors.NewCyclicDependency(loc, typeName, nil)
		cerr.Actual = "field " + f.Name + " of " + model.Type + ": " + err.Error()
	} else {
		cerr = cerrors.NewUnresolvedType(loc, model.Type, f.Name, f.Type.String(), err.Error())
	}
	return cerr.WithFile(model.File)
}

// declarer accumulates the adapter declarations of one plan.
type declarer struct {
	mapper Mapper
	seen   map[string]bool
	names  *Namer
	decls  []*Decl
}

func (d *declarer) ref(g *adapter.Graph, wrap bool) *Ref {
	r := &Ref{TypeName: g.TypeName, Import: g.Descriptor.Import, Wrap: wrap}
	if g.Singleton() {
		r.Expr = g.Descriptor.GoExpr
	}
	return r
}

// declare appends g and its dependencies depth first, dependencies before
// dependents, skipping TypeNames already declared and singletons.
func (d *declarer) declare(g *adapter.Graph, loc cerrors.Location) *cerrors.CompilerError {
	if d.seen[g.TypeName] {
		return nil
	}
	d.seen[g.TypeName] = true
	for _, dep := range g.Dependencies {
		if err := d.declare(dep, loc); err != nil {
			return err
		}
	}
	if g.Singleton() {
		return nil
	}

	decl := &Decl{
		Name:     d.names.Name(g.TypeName, BaseName(g)),
		TypeName: g.TypeName,
		Func:     g.Descriptor.GoExpr,
		Import:   g.Descriptor.Import,
	}
	for _, a := range g.Args {
		arg := Arg{Name: a.Name, Kind: a.Kind}
		switch a.Kind {
		case adapter.DependencyAdapter:
			arg.Ref = d.ref(a.Graph, !a.Graph.NullSafe())
		case adapter.DependencyClass:
			goType, ok := d.mapper.GoType(a.Type)
			if !ok {
				return cerrors.NewMissingGoType(loc, a.Type.String())
			}
			arg.GoType = goType
		case adapter.DependencyFactory:
			factory, ok := d.mapper.Factory(a.Type)
			if !ok {
				return cerrors.NewMissingGoType(loc, a.Type.String()).
					WithSuggestion("Set factory on the type declaration")
			}
			arg.Factory = factory
		}
		decl.Args = append(decl.Args, arg)
	}
	d.decls = append(d.decls, decl)
	return nil
}
