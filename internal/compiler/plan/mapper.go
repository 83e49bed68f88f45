package plan

import (
	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

// Mapper answers Go-level questions about schema types.
type Mapper interface {
	// GoType returns the Go type holding non-null values of t.
	GoType(t types.Type) (string, bool)
	// Factory returns the Go function creating values of t from a reader.
	Factory(t types.Type) (string, bool)
}

var primitiveGoTypes = map[types.Kind]string{
	types.Boolean: "bool",
	types.Byte:    "int8",
	types.Short:   "int16",
	types.Char:    "rune",
	types.Int:     "int32",
	types.Long:    "int64",
	types.Float:   "float32",
	types.Double:  "float64",
}

var builtinGoTypes = map[string]string{
	types.StringName:          "string",
	"lang.CharSequence":       "string",
	"lang.Boolean":            "bool",
	"lang.Byte":               "int8",
	"lang.Short":              "int16",
	"lang.Character":          "rune",
	"lang.Integer":            "int32",
	"lang.Long":               "int64",
	"lang.Float":              "float32",
	"lang.Double":             "float64",
	"math.BigInteger":         "*big.Int",
	"math.BigDecimal":         "*big.Rat",
	"time.Date":               "time.Time",
	"util.SparseBooleanArray": "map[int32]bool",
}

// GoTypes maps schema types to Go. User entries win over builtins.
type GoTypes struct {
	Types     map[string]string
	Factories map[string]string
}

// NewGoTypes returns an empty mapping with builtin rules only.
func NewGoTypes() *GoTypes {
	return &GoTypes{Types: make(map[string]string), Factories: make(map[string]string)}
}

// GoType implements Mapper.
func (g *GoTypes) GoType(t types.Type) (string, bool) {
	switch x := types.WildcardBound(t).(type) {
	case *types.Primitive:
		return primitiveGoTypes[x.Kind], true
	case *types.Array:
		elem, ok := g.GoType(x.Elem)
		if !ok {
			return "", false
		}
		return "[]" + elem, true
	case *types.Declared:
		if name, ok := g.Types[x.Name]; ok {
			return name, true
		}
		if name, ok := builtinGoTypes[x.Name]; ok {
			return name, true
		}
		return g.container(x)
	}
	return "", false
}

func (g *GoTypes) container(d *types.Declared) (string, bool) {
	args := make([]string, len(d.Args))
	for i, a := range d.Args {
		s, ok := g.GoType(a)
		if !ok {
			return "", false
		}
		args[i] = s
	}
	switch d.Name {
	case "util.List", "util.ArrayList", "util.Collection":
		if len(args) == 1 {
			return "[]" + args[0], true
		}
	case "util.Set", "util.HashSet":
		if len(args) == 1 {
			return "map[" + args[0] + "]struct{}", true
		}
	case "util.Map", "util.HashMap":
		if len(args) == 2 {
			return "map[" + args[0] + "]" + args[1], true
		}
	case "util.SparseArray":
		if len(args) == 1 {
			return "map[int32]" + args[0], true
		}
	}
	return "", false
}

// Factory implements Mapper.
func (g *GoTypes) Factory(t types.Type) (string, bool) {
	d, ok := t.(*types.Declared)
	if !ok {
		return "", false
	}
	f, ok := g.Factories[d.Name]
	return f, ok
}
