package codegen

import (
	"go/scanner"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/parcelgen/internal/compiler/adapter"
	"github.com/conduit-lang/parcelgen/internal/compiler/fields"
	"github.com/conduit-lang/parcelgen/internal/compiler/plan"
	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

const roundtripImport = "github.com/conduit-lang/parcelgen/internal/compiler/codegen/roundtrip"

// roundtripPlans are the plans behind roundtrip/roundtrip_parcel.go.
func roundtripPlans() []*plan.Plan {
	customer := &plan.Plan{
		Type:   "com.example.Customer",
		GoType: "*Customer",
		Fields: []*plan.FieldPlan{
			{
				Name:     "name",
				Type:     "lang.String",
				GoType:   "string",
				Encoding: plan.EncodeAdapter,
				Adapter:  singletonRef("StringAdapter"),
				Read:     fields.ReadInfo{Kind: fields.ReadAccessor, Accessor: "Name"},
				Write:    fields.WriteInfo{Kind: fields.WriteConstructor},
			},
			{
				Name:     "Email",
				Type:     "lang.String",
				GoType:   "*string",
				Encoding: plan.EncodeAdapter,
				Adapter:  singletonRef("StringAdapter"),
				NullTag:  true,
				Pointer:  true,
				Read:     fields.ReadInfo{Kind: fields.ReadDirect},
				Write:    fields.WriteInfo{Kind: fields.WriteDirect},
			},
		},
		Construction: fields.Construction{Kind: fields.ConstructCall, Func: "NewCustomer", Args: []string{"name"}},
	}

	direct := func(f *plan.FieldPlan) *plan.FieldPlan {
		f.Read = fields.ReadInfo{Kind: fields.ReadDirect}
		f.Write = fields.WriteInfo{Kind: fields.WriteDirect}
		return f
	}
	primitive := func(name string, kind types.Kind, goType string) *plan.FieldPlan {
		return direct(&plan.FieldPlan{Name: name, Type: kind.String(), GoType: goType, Encoding: plan.EncodePrimitive, Kind: kind})
	}
	declared := func(typeName string) *plan.Ref {
		return &plan.Ref{TypeName: typeName, Import: adapter.RuntimeImport}
	}
	wrapped := func(name string) *plan.Ref {
		r := singletonRef(name)
		r.Wrap = true
		return r
	}

	order := &plan.Plan{
		Type:   "com.example.Order",
		GoType: "*Order",
		Fields: []*plan.FieldPlan{
			primitive("Number", types.Long, "int64"),
			primitive("Paid", types.Boolean, "bool"),
			primitive("Total", types.Double, "float64"),
			direct(&plan.FieldPlan{
				Name: "Note", Type: "lang.String", GoType: "string",
				Encoding: plan.EncodeAdapter, Adapter: singletonRef("StringAdapter"),
			}),
			direct(&plan.FieldPlan{
				Name: "Coupon", Type: "lang.String", GoType: "*string",
				Encoding: plan.EncodeAdapter, Adapter: singletonRef("StringAdapter"), NullTag: true, Pointer: true,
			}),
			direct(&plan.FieldPlan{
				Name: "Lines", Type: "util.List<lang.Integer>", GoType: "[]int32",
				Encoding: plan.EncodeAdapter, Adapter: declared("parcel.ListAdapter<lang.Integer>"), NullTag: true,
			}),
			direct(&plan.FieldPlan{
				Name: "Labels", Type: "util.Map<lang.String,lang.Integer>", GoType: "map[string]int32",
				Encoding: plan.EncodeAdapter, Adapter: declared("parcel.MapAdapter<lang.String,lang.Integer>"), NullTag: true,
			}),
			direct(&plan.FieldPlan{
				Name: "Status", Type: "com.example.Status", GoType: "Status",
				Encoding: plan.EncodeAdapter, Adapter: declared("parcel.EnumAdapter<com.example.Status>"),
			}),
			direct(&plan.FieldPlan{
				Name: "Customer", Type: "com.example.Customer", GoType: "*Customer",
				Encoding: plan.EncodeAdapter, NullTag: true,
				Adapter: &plan.Ref{TypeName: "roundtrip.CustomerAdapter", Expr: "roundtrip.CustomerAdapter", Import: roundtripImport},
			}),
			{
				Name:     "secret",
				Type:     "lang.String",
				GoType:   "string",
				Encoding: plan.EncodeAdapter,
				Adapter:  singletonRef("StringAdapter"),
				Read:     fields.ReadInfo{Kind: fields.ReadReflect},
				Write:    fields.WriteInfo{Kind: fields.WriteReflect},
			},
		},
		Decls: []*plan.Decl{
			integerListDecl("integerListAdapter"),
			{
				Name:     "stringIntegerMapAdapter",
				TypeName: "parcel.MapAdapter<lang.String,lang.Integer>",
				Func:     "parcel.NewMapAdapter",
				Import:   adapter.RuntimeImport,
				Args: []plan.Arg{
					{Name: "keyAdapter", Kind: adapter.DependencyAdapter, Ref: wrapped("StringAdapter")},
					{Name: "valueAdapter", Kind: adapter.DependencyAdapter, Ref: wrapped("IntegerAdapter")},
				},
			},
			{
				Name:     "statusEnumAdapter",
				TypeName: "parcel.EnumAdapter<com.example.Status>",
				Func:     "parcel.NewEnumAdapter",
				Import:   adapter.RuntimeImport,
				Args:     []plan.Arg{{Name: "enumClass", Kind: adapter.DependencyClass, GoType: "Status"}},
			},
		},
	}
	return []*plan.Plan{customer, order}
}

// goTokens lists the tokens of src, leaving out comments and the semicolons
// the scanner inserts at line ends.
func goTokens(t *testing.T, src []byte) []string {
	t.Helper()
	fset := token.NewFileSet()
	file := fset.AddFile("src.go", fset.Base(), len(src))
	var s scanner.Scanner
	var failed error
	s.Init(file, src, func(pos token.Position, msg string) {
		if failed == nil {
			failed = scanner.Error{Pos: pos, Msg: msg}
		}
	}, 0)

	var out []string
	for {
		_, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}
		if lit == "" {
			lit = tok.String()
		}
		out = append(out, lit)
	}
	require.NoError(t, failed)
	return out
}

func TestGenerate_CheckedInRoundtripPackage(t *testing.T) {
	plans := roundtripPlans()
	src, err := NewGenerator("roundtrip", roundtripImport).Generate(plans)
	require.NoError(t, err)

	checkedIn, err := os.ReadFile(filepath.Join("roundtrip", "roundtrip_parcel.go"))
	require.NoError(t, err)

	assert.Equal(t, goTokens(t, src), goTokens(t, checkedIn),
		"roundtrip/roundtrip_parcel.go is stale; the generator now prints:\n%s", src)
}
