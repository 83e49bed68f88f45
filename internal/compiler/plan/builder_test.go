package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/parcelgen/internal/compiler/adapter"
	cerrors "github.com/conduit-lang/parcelgen/internal/compiler/errors"
	"github.com/conduit-lang/parcelgen/internal/compiler/fields"
	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

type fixture struct {
	universe *types.Universe
	registry *adapter.Registry
	mapper   *GoTypes
	builder  *Builder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	u := types.NewUniverse()
	for _, decl := range []struct {
		name   string
		supers []string
	}{
		{"com.example.Color", []string{"lang.Enum<com.example.Color>"}},
		{"com.example.Point", []string{"parcel.Parcelable"}},
		{"com.example.Blob", nil},
		{"com.example.User", nil},
	} {
		d, err := types.DeclFromStrings(decl.name, nil, decl.supers...)
		require.NoError(t, err)
		require.NoError(t, u.Declare(d))
	}

	registry := adapter.NewRegistry(nil)
	mapper := NewGoTypes()
	mapper.Types["com.example.User"] = "User"
	mapper.Types["com.example.Color"] = "Color"
	mapper.Types["com.example.Point"] = "*Point"
	mapper.Factories["com.example.Point"] = "ReadPoint"

	return &fixture{
		universe: u,
		registry: registry,
		mapper:   mapper,
		builder:  NewBuilder(adapter.NewResolver(registry, u, nil), mapper, nil),
	}
}

func model(fs ...*fields.Field) *fields.Model {
	return &fields.Model{Type: "com.example.User", Fields: fs, Line: 3, File: "user.yaml"}
}

func nullable(name, typ string) *fields.Field {
	t := types.MustParse(typ)
	return &fields.Field{Name: name, Type: t, Boxed: types.Box(t), Nullable: !types.IsPrimitive(t), Primitive: types.IsPrimitive(t)}
}

func required(name, typ string) *fields.Field {
	f := nullable(name, typ)
	f.Nullable = false
	return f
}

func (fx *fixture) build(t *testing.T, m *fields.Model) *Plan {
	t.Helper()
	p, err := fx.builder.Build(m)
	require.NoError(t, err)
	return p
}

func TestBuild_PrimitiveField(t *testing.T) {
	fx := newFixture(t)
	p := fx.build(t, model(required("active", "boolean"), required("count", "long")))

	require.Len(t, p.Fields, 2)
	active := p.Fields[0]
	assert.Equal(t, EncodePrimitive, active.Encoding)
	assert.Equal(t, types.Boolean, active.Kind)
	assert.False(t, active.NullTag)
	assert.Nil(t, active.Adapter)
	assert.Equal(t, "bool", active.GoType)
	assert.Equal(t, "int64", p.Fields[1].GoType)
	assert.Empty(t, p.Decls)
	assert.Equal(t, "User", p.GoType)
}

func TestBuild_NullableString(t *testing.T) {
	fx := newFixture(t)
	p := fx.build(t, model(nullable("nickname", "String"), required("name", "String")))

	nickname := p.Fields[0]
	assert.Equal(t, EncodeAdapter, nickname.Encoding)
	assert.True(t, nickname.NullTag)
	assert.True(t, nickname.Pointer)
	assert.Equal(t, "*string", nickname.GoType)
	require.NotNil(t, nickname.Adapter)
	assert.True(t, nickname.Adapter.Singleton())
	assert.Equal(t, "parcel.StringAdapter", nickname.Adapter.Expr)
	assert.False(t, nickname.Adapter.Wrap)

	name := p.Fields[1]
	assert.False(t, name.NullTag)
	assert.False(t, name.Pointer)
	assert.Equal(t, "string", name.GoType)

	assert.Empty(t, p.Decls, "singletons are referenced, not declared")
}

func TestBuild_MapOfIntegerLists(t *testing.T) {
	fx := newFixture(t)
	p := fx.build(t, model(nullable("scores", "Map<Integer, List<Integer>>")))

	require.Len(t, p.Decls, 2)
	list, mp := p.Decls[0], p.Decls[1]

	assert.Equal(t, "parcel.ListAdapter<lang.Integer>", list.TypeName)
	assert.Equal(t, "integerListAdapter", list.Name)
	assert.Equal(t, "parcel.NewListAdapter", list.Func)
	require.Len(t, list.Args, 1)
	assert.Equal(t, "parcel.IntegerAdapter", list.Args[0].Ref.Expr)
	assert.True(t, list.Args[0].Ref.Wrap)

	assert.Equal(t, "parcel.MapAdapter<lang.Integer, util.List<lang.Integer>>", mp.TypeName)
	assert.Equal(t, "integerIntegerListMapAdapter", mp.Name)
	require.Len(t, mp.Args, 2)
	assert.Equal(t, "keyAdapter", mp.Args[0].Name)
	assert.Equal(t, "parcel.IntegerAdapter", mp.Args[0].Ref.Expr)
	assert.Equal(t, "valueAdapter", mp.Args[1].Name)
	assert.Equal(t, list.TypeName, mp.Args[1].Ref.TypeName)
	assert.False(t, mp.Args[1].Ref.Singleton())

	field := p.Fields[0]
	assert.True(t, field.NullTag)
	assert.False(t, field.Pointer)
	assert.Equal(t, "map[int32][]int32", field.GoType)
	assert.Equal(t, mp.TypeName, field.Adapter.TypeName)
	assert.Equal(t, []string{adapter.RuntimeImport}, p.Imports())
}

func TestBuild_SharedAdaptersDeclaredOnce(t *testing.T) {
	fx := newFixture(t)
	p := fx.build(t, model(
		nullable("tags", "List<Integer>"),
		nullable("index", "Map<Integer, List<Integer>>"),
		nullable("more", "List<Integer>"),
	))

	names := make([]string, len(p.Decls))
	for i, d := range p.Decls {
		names[i] = d.TypeName
	}
	assert.Equal(t, []string{
		"parcel.ListAdapter<lang.Integer>",
		"parcel.MapAdapter<lang.Integer, util.List<lang.Integer>>",
	}, names)
	assert.Equal(t, p.Fields[0].Adapter.TypeName, p.Fields[2].Adapter.TypeName)
}

func TestBuild_NullSafeAdapters(t *testing.T) {
	fx := newFixture(t)
	p := fx.build(t, model(nullable("values", "int[]"), nullable("rows", "List<int[]>")))

	values := p.Fields[0]
	assert.False(t, values.NullTag, "null-safe adapters encode absence themselves")
	assert.Equal(t, "parcel.IntArrayAdapter", values.Adapter.Expr)
	assert.Equal(t, "[]int32", values.GoType)

	require.Len(t, p.Decls, 1)
	assert.False(t, p.Decls[0].Args[0].Ref.Wrap)
	assert.Equal(t, "intArrayListAdapter", p.Decls[0].Name)
}

func TestBuild_EnumClassArgument(t *testing.T) {
	fx := newFixture(t)
	p := fx.build(t, model(nullable("color", "com.example.Color"), required("shade", "com.example.Color")))

	require.Len(t, p.Decls, 1)
	decl := p.Decls[0]
	assert.Equal(t, "parcel.EnumAdapter<com.example.Color>", decl.TypeName)
	assert.Equal(t, "colorEnumAdapter", decl.Name)
	assert.Equal(t, "parcel.NewEnumAdapter", decl.Func)
	require.Len(t, decl.Args, 1)
	assert.Equal(t, adapter.DependencyClass, decl.Args[0].Kind)
	assert.Equal(t, "Color", decl.Args[0].GoType)

	assert.True(t, p.Fields[0].Pointer)
	assert.Equal(t, "*Color", p.Fields[0].GoType)
	assert.Equal(t, "Color", p.Fields[1].GoType)
}

func TestBuild_ParcelableFactory(t *testing.T) {
	fx := newFixture(t)
	p := fx.build(t, model(nullable("origin", "com.example.Point")))

	require.Len(t, p.Decls, 1)
	assert.Equal(t, "ReadPoint", p.Decls[0].Args[0].Factory)
	assert.Equal(t, "*Point", p.Fields[0].GoType)
	assert.False(t, p.Fields[0].Pointer, "parcelables are already pointers")

	delete(fx.mapper.Factories, "com.example.Point")
	fresh := NewBuilder(adapter.NewResolver(adapter.NewRegistry(nil), fx.universe, nil), fx.mapper, nil)
	_, err := fresh.Build(model(nullable("origin", "com.example.Point")))
	var cerr *cerrors.CompilerError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, cerrors.ErrMissingGoType, cerr.Code)
}

func TestBuild_UnresolvedFieldAbortsType(t *testing.T) {
	fx := newFixture(t)
	blob := nullable("payload", "com.example.Blob")
	blob.Line = 9

	_, err := fx.builder.Build(model(required("id", "long"), blob, nullable("other", "List<com.example.Blob>")))
	require.Error(t, err)

	var cerr *cerrors.CompilerError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, cerrors.ErrUnresolvedType, cerr.Code)
	assert.Contains(t, cerr.Message, "com.example.Blob")
	assert.Equal(t, "com.example.User", cerr.Subject)
	assert.Equal(t, "payload", cerr.Field)
	assert.Equal(t, 9, cerr.Location.Line)
	assert.Equal(t, "user.yaml", cerr.File)
}

func TestBuild_UnresolvedDependency(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.builder.Build(model(nullable("blobs", "List<com.example.Blob>")))

	var cerr *cerrors.CompilerError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, cerrors.ErrUnresolvedType, cerr.Code)
	assert.Contains(t, cerr.Message, "util.List<com.example.Blob>")
	assert.Equal(t, 3, cerr.Location.Line, "falls back to the type's line")
}

func TestBuild_CyclicAdapter(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.registry.Register(adapter.Spec{
		Name:         "com.example.BlobAdapter",
		Adapts:       "com.example.Blob",
		Dependencies: []adapter.DependencySpec{{Name: "self", Type: "com.example.Blob"}},
	})
	require.NoError(t, err)

	_, err = fx.builder.Build(model(nullable("blob", "com.example.Blob")))
	var cerr *cerrors.CompilerError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, cerrors.ErrCyclicDependency, cerr.Code)
	assert.Contains(t, cerr.Actual, "field blob")
}

func TestBuild_MissingGoTypeForOwner(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.builder.Build(&fields.Model{Type: "com.example.Blob"})
	var cerr *cerrors.CompilerError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, cerrors.ErrMissingGoType, cerr.Code)
}

func TestBuild_ReflectReadNeedsGoType(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.registry.Register(adapter.Spec{Name: "com.example.BlobAdapter", Adapts: "com.example.Blob", Singleton: true})
	require.NoError(t, err)

	f := nullable("blob", "com.example.Blob")
	f.Read = fields.ReadInfo{Kind: fields.ReadReflect}
	_, err = fx.builder.Build(model(f))
	var cerr *cerrors.CompilerError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, cerrors.ErrMissingGoType, cerr.Code)

	f.Read = fields.ReadInfo{Kind: fields.ReadDirect}
	p := fx.build(t, model(f))
	assert.Empty(t, p.Fields[0].GoType)
	assert.Equal(t, "com.example.BlobAdapter", p.Fields[0].Adapter.Expr)
}

func TestBuild_PreservesDeclaredOrder(t *testing.T) {
	fx := newFixture(t)
	declared := []*fields.Field{
		required("a", "int"), nullable("b", "String"), nullable("c", "List<String>"), required("d", "double"),
	}
	reversed := []*fields.Field{declared[3], declared[2], declared[1], declared[0]}

	for _, order := range [][]*fields.Field{declared, reversed} {
		p := fx.build(t, model(order...))
		require.Len(t, p.Fields, len(order))
		for i, f := range order {
			assert.Equal(t, f.Name, p.Fields[i].Name)
		}
	}
}

func TestBuild_Singleton(t *testing.T) {
	fx := newFixture(t)
	p := fx.build(t, &fields.Model{
		Type:         "com.example.User",
		Construction: fields.Construction{Kind: fields.ConstructSingleton, Func: "DefaultUser"},
	})
	assert.True(t, p.Singleton())
	assert.Empty(t, p.Fields)
}

func TestPlan_Fingerprint(t *testing.T) {
	fx := newFixture(t)
	a := fx.build(t, model(nullable("name", "String"), nullable("tags", "List<Integer>")))
	b := fx.build(t, model(nullable("name", "String"), nullable("tags", "List<Integer>")))
	c := fx.build(t, model(required("name", "String"), nullable("tags", "List<Integer>")))

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.Equal(t, FingerprintAll([]*Plan{a, c}), FingerprintAll([]*Plan{b, c}))
	assert.NotEqual(t, FingerprintAll([]*Plan{a, c}), FingerprintAll([]*Plan{c, a}))
}

func TestPlan_Decl(t *testing.T) {
	fx := newFixture(t)
	p := fx.build(t, model(nullable("tags", "Set<String>")))

	d, ok := p.Decl("parcel.SetAdapter<lang.String>")
	require.True(t, ok)
	assert.Equal(t, "stringSetAdapter", d.Name)

	_, ok = p.Decl("parcel.ListAdapter<lang.String>")
	assert.False(t, ok)
}
