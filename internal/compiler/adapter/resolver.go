package adapter

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/parcelgen/internal/compiler/typekey"
	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

// Resolver turns field types into adapter graphs. It holds no per-call state
// and may be used from several goroutines at once.
type Resolver struct {
	registry  *Registry
	hierarchy types.Hierarchy
	logger    *zap.Logger
}

// NewResolver creates a resolver over registry, answering supertype
// questions with h.
func NewResolver(registry *Registry, h types.Hierarchy, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{registry: registry, hierarchy: h, logger: logger}
}

// Registry returns the registry the resolver reads from.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve returns the graph for fieldType. Primitive types are boxed first;
// callers normally write primitives directly and never ask for them.
//
// Resolution walks the supertypes of the type breadth first, in declaration
// order within each level, and takes the first descriptor, in priority order,
// that matches and whose dependencies resolve. When every match fails, the
// error of the first one is returned. Resolving the same type twice returns
// the same *Graph.
func (r *Resolver) Resolve(fieldType types.Type) (*Graph, error) {
	return r.resolve(fieldType, nil)
}

func (r *Resolver) resolve(t types.Type, chain []string) (*Graph, error) {
	if types.IsNone(t) {
		return nil, &ResolveError{Type: "none", Reason: "no type", Err: ErrUnresolvedType}
	}
	norm := types.Box(types.WildcardBound(t))
	if types.IsNone(norm) {
		return nil, &ResolveError{Type: t.String(), Reason: "unconstrained wildcard", Err: ErrUnresolvedType}
	}
	if !types.IsConcrete(norm) {
		return nil, &ResolveError{Type: norm.String(), Reason: "type variables cannot be resolved", Err: ErrUnresolvedType}
	}

	name := norm.String()
	if g, ok := r.registry.Graph(name); ok {
		return g, nil
	}
	for _, inFlight := range chain {
		if inFlight == name {
			return nil, &ResolveError{Type: name, Reason: "adapter depends on itself", Err: ErrCyclicDependency}
		}
	}
	chain = append(chain[:len(chain):len(chain)], name)

	var failed error
	for _, m := range r.matches(norm) {
		g, err := r.build(m.Descriptor, m.TypeArgs, norm, chain)
		if err != nil {
			r.logger.Debug("skipping adapter",
				zap.String("type", name),
				zap.String("adapter", m.Descriptor.Name),
				zap.Error(err),
			)
			if failed == nil {
				failed = err
			}
			continue
		}
		committed := r.registry.StoreGraph(name, g)
		r.logger.Debug("resolved adapter",
			zap.String("type", name),
			zap.String("adapter", committed.TypeName),
		)
		return committed, nil
	}
	if failed != nil {
		return nil, failed
	}
	return nil, &ResolveError{Type: name, Reason: "no registered adapter handles it", Err: ErrUnresolvedType}
}

// Match is a descriptor applicable to a type, with the type arguments it is
// instantiated with.
type Match struct {
	Descriptor *Descriptor
	TypeArgs   []types.Type
}

// Matching lists the descriptors applicable to t in the order Resolve tries
// them. Dependencies are not resolved, so Resolve passes over a match whose
// dependencies have no adapter.
func (r *Resolver) Matching(t types.Type) []Match {
	norm := types.Box(types.WildcardBound(t))
	if types.IsNone(norm) || !types.IsConcrete(norm) {
		return nil
	}
	return r.matches(norm)
}

func (r *Resolver) matches(norm types.Type) []Match {
	var result []Match
	for _, view := range supertypeLevels(r.hierarchy, norm) {
		for _, d := range r.registry.ForErasure(types.Erasure(view).String()) {
			if args, ok := r.unify(d, norm, view); ok {
				result = append(result, Match{Descriptor: d, TypeArgs: args})
			}
		}
	}
	return result
}

// unify computes the type arguments of d for norm, seen as its supertype
// view. The subject of matching is norm itself for descriptors adapting a
// bare variable and for arrays, whose supertypes come from covariance rather
// than declarations.
func (r *Resolver) unify(d *Descriptor, norm, view types.Type) ([]types.Type, bool) {
	subject := view
	if _, isArray := view.(*types.Array); isArray || d.Whole() {
		subject = norm
	}

	bindings, ok := typekey.Bindings(r.hierarchy, d.Key, subject)
	if !ok {
		return nil, false
	}

	args := make([]types.Type, len(d.Params))
	sub := make(map[string]types.Type, len(d.Params))
	for i, recipe := range d.Recipes {
		switch recipe.Kind {
		case RecipeWhole:
			args[i] = norm
		case RecipePath:
			arg, ok := recipe.Extract(subject)
			if !ok {
				return nil, false
			}
			args[i] = arg
		case RecipeUnindexed:
			if b, ok := bindings[recipe.Param]; ok {
				args[i] = b
			} else {
				args[i] = norm
			}
		}
		if b, ok := bindings[recipe.Param]; ok && !types.Identical(b, args[i]) {
			return nil, false
		}
		sub[recipe.Param] = args[i]
	}

	for i, p := range d.Params {
		for _, bound := range p.Bounds {
			if !types.IsSubtype(r.hierarchy, args[i], types.Substitute(bound, sub)) {
				return nil, false
			}
		}
	}

	adapted := resolveWildcards(types.Substitute(d.Adapted, sub))
	if !types.Identical(adapted, resolveWildcards(subject)) {
		return nil, false
	}
	return args, true
}

func (r *Resolver) build(d *Descriptor, args []types.Type, norm types.Type, chain []string) (*Graph, error) {
	sub := make(map[string]types.Type, len(d.Params))
	for i, p := range d.Params {
		sub[p.Name] = args[i]
	}

	g := &Graph{
		Descriptor: d,
		TypeArgs:   args,
		TypeName:   typeName(d, args),
		FieldType:  norm,
	}
	for _, dep := range d.Dependencies {
		depType := types.Box(types.Substitute(dep.Type, sub))
		if dep.Kind != DependencyAdapter {
			g.Args = append(g.Args, Argument{Name: dep.Name, Kind: dep.Kind, Type: depType})
			continue
		}
		child, err := r.resolve(depType, chain)
		if err != nil {
			return nil, &ResolveError{
				Type:   norm.String(),
				Reason: fmt.Sprintf("%s needs an adapter for %s", d.Name, depType),
				Err:    ErrUnresolvedType,
				Cause:  err,
			}
		}
		g.Dependencies = append(g.Dependencies, child)
		g.Args = append(g.Args, Argument{Name: dep.Name, Kind: dep.Kind, Graph: child, Type: child.FieldType})
	}
	return g, nil
}

// resolveWildcards replaces every wildcard in t by its bound.
func resolveWildcards(t types.Type) types.Type {
	switch x := t.(type) {
	case *types.Wildcard:
		b := types.WildcardBound(x)
		if types.IsNone(b) {
			return b
		}
		return resolveWildcards(b)
	case *types.Declared:
		if len(x.Args) == 0 {
			return x
		}
		args := make([]types.Type, len(x.Args))
		for i, a := range x.Args {
			args[i] = resolveWildcards(a)
		}
		return types.NewDeclared(x.Name, args...)
	case *types.Array:
		return types.NewArray(resolveWildcards(x.Elem))
	}
	return t
}
