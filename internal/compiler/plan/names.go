package plan

import (
	"fmt"
	"go/token"
	"strings"
	"unicode"

	"github.com/conduit-lang/parcelgen/internal/compiler/adapter"
	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

// Namer hands out Go identifiers for adapter declarations. The same TypeName
// always gets the same identifier; different TypeNames never share one.
type Namer struct {
	byType map[string]string
	used   map[string]bool
}

// NewNamer returns a namer with reserved identifiers already taken.
func NewNamer(reserved ...string) *Namer {
	n := &Namer{byType: make(map[string]string), used: make(map[string]bool)}
	for _, r := range reserved {
		n.used[r] = true
	}
	return n
}

// Name returns the identifier for typeName, deriving it from base on first use.
func (n *Namer) Name(typeName, base string) string {
	if name, ok := n.byType[typeName]; ok {
		return name
	}
	name := base
	for i := 2; n.used[name]; i++ {
		name = fmt.Sprintf("%s%d", base, i)
	}
	n.used[name] = true
	n.byType[typeName] = name
	return name
}

// Lookup returns the identifier already assigned to typeName.
func (n *Namer) Lookup(typeName string) (string, bool) {
	name, ok := n.byType[typeName]
	return name, ok
}

// BaseName derives a lowerCamel identifier from an adapter graph, for
// example integerListAdapter for parcel.ListAdapter<lang.Integer>.
func BaseName(g *adapter.Graph) string {
	var b strings.Builder
	for _, arg := range g.TypeArgs {
		b.WriteString(simpleName(arg))
	}
	name := g.Descriptor.Name
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	b.WriteString(capitalize(name))
	return identifier(lowerFirst(b.String()))
}

func simpleName(t types.Type) string {
	switch x := t.(type) {
	case *types.Primitive:
		return capitalize(x.Kind.String())
	case *types.Declared:
		var b strings.Builder
		for _, a := range x.Args {
			b.WriteString(simpleName(a))
		}
		b.WriteString(capitalize(x.SimpleName()))
		return b.String()
	case *types.Array:
		return simpleName(x.Elem) + "Array"
	case *types.Wildcard:
		return simpleName(types.WildcardBound(x))
	case *types.Variable:
		return capitalize(x.Name)
	}
	return ""
}

func identifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || unicode.IsDigit(rune(name[0])) {
		name = "adapter" + name
	}
	if token.IsKeyword(name) {
		name += "_"
	}
	return name
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// LocalName returns a lowerCamel Go identifier for s.
func LocalName(s string) string {
	return identifier(lowerFirst(s))
}

// AdapterVar returns the name of the exported adapter value generated for a
// type held as goType, for example UserAdapter for *User. A package qualifier
// is kept.
func AdapterVar(goType string) string {
	return strings.TrimPrefix(goType, "*") + "Adapter"
}
