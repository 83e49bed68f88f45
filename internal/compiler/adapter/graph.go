package adapter

import (
	"strings"

	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

// Argument is one resolved constructor argument of an adapter.
type Argument struct {
	Name string
	Kind DependencyKind
	// Graph is set for adapter arguments.
	Graph *Graph
	// Type is the concrete type a class literal or factory argument is for.
	Type types.Type
}

// Graph is the resolved plan for instantiating one adapter for a field type.
// Graphs are immutable once cached and shared by every consumer.
type Graph struct {
	Descriptor *Descriptor
	// TypeArgs are the concrete arguments of Descriptor.Params, in order.
	TypeArgs []types.Type
	// TypeName identifies the adapter instantiation, for example
	// "parcel.ListAdapter<lang.Integer>". Graphs with equal TypeNames are
	// interchangeable.
	TypeName  string
	FieldType types.Type
	// Dependencies are the graphs of the adapter arguments, in constructor order.
	Dependencies []*Graph
	// Args are all constructor arguments in constructor order.
	Args []Argument
}

func typeName(d *Descriptor, args []types.Type) string {
	if len(args) == 0 {
		return d.Name
	}
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.String()
	}
	return d.Name + "<" + strings.Join(names, ", ") + ">"
}

// Singleton reports whether the adapter is referenced through a shared instance.
func (g *Graph) Singleton() bool {
	return g.Descriptor.Singleton
}

// NullSafe reports whether the adapter represents absence itself.
func (g *Graph) NullSafe() bool {
	return g.Descriptor.NullSafe
}

// ClassArgs returns the class literal arguments in constructor order.
func (g *Graph) ClassArgs() []types.Type {
	return g.argTypes(DependencyClass)
}

// Factories returns the types whose factories are constructor arguments.
func (g *Graph) Factories() []types.Type {
	return g.argTypes(DependencyFactory)
}

func (g *Graph) argTypes(kind DependencyKind) []types.Type {
	var result []types.Type
	for _, a := range g.Args {
		if a.Kind == kind {
			result = append(result, a.Type)
		}
	}
	return result
}

// Walk visits the graph depth first, dependencies before dependents. Graphs
// sharing a TypeName are visited once.
func (g *Graph) Walk(visit func(*Graph)) {
	seen := make(map[string]bool)
	var walk func(*Graph)
	walk = func(n *Graph) {
		if seen[n.TypeName] {
			return
		}
		seen[n.TypeName] = true
		for _, dep := range n.Dependencies {
			walk(dep)
		}
		visit(n)
	}
	walk(g)
}

// String renders the graph as an indented tree.
func (g *Graph) String() string {
	var b strings.Builder
	var write func(*Graph, int)
	write = func(n *Graph, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(n.TypeName)
		for _, a := range n.Args {
			if a.Kind != DependencyAdapter {
				b.WriteString(" " + a.Kind.String() + "(" + a.Type.String() + ")")
			}
		}
		b.WriteString("\n")
		for _, dep := range n.Dependencies {
			write(dep, depth+1)
		}
	}
	write(g, 0)
	return b.String()
}
