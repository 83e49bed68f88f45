package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUniverse_Builtins(t *testing.T) {
	u := NewUniverse()

	for _, name := range []string{ObjectName, StringName, EnumName, ParcelableName, "util.List", "util.Map", "util.SparseBooleanArray"} {
		_, ok := u.Lookup(name)
		assert.True(t, ok, name)
	}

	enum, _ := u.Lookup(EnumName)
	require.Len(t, enum.Params, 1)
	assert.Equal(t, "lang.Enum<E>", enum.Params[0].Bounds[0].String())
	assert.Equal(t, ObjectName, u.Names()[0])
}

func TestUniverse_Declare(t *testing.T) {
	u := NewUniverse()
	before := u.Size()

	d, err := DeclFromStrings("com.example.Box", []string{"T"}, "util.List<T>")
	require.NoError(t, err)
	require.NoError(t, u.Declare(d))
	assert.Equal(t, before+1, u.Size())

	again, err := DeclFromStrings("com.example.Box", []string{"T"}, "util.List<T>")
	require.NoError(t, err)
	assert.NoError(t, u.Declare(again), "identical redeclaration is accepted")
	assert.Equal(t, before+1, u.Size())

	other, err := DeclFromStrings("com.example.Box", nil)
	require.NoError(t, err)
	assert.Error(t, u.Declare(other))

	assert.Error(t, u.Declare(&Decl{}))
}

func TestUniverse_DirectSupertypes(t *testing.T) {
	u := NewUniverse()

	tests := []struct {
		typ  string
		want []string
	}{
		{"ArrayList<String>", []string{"util.List<lang.String>"}},
		{"ArrayList", []string{"util.List"}},
		{"HashMap<String, Integer>", []string{"util.Map<lang.String, lang.Integer>"}},
		{"Integer", []string{"lang.Number"}},
		{"Number", []string{ObjectName}},
		{"com.example.Unknown", []string{ObjectName}},
		{"Integer[]", []string{"lang.Number[]"}},
		{"Object[]", []string{ObjectName}},
		{"int[]", []string{ObjectName}},
		{"Object", nil},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			var got []string
			for _, s := range u.DirectSupertypes(MustParse(tt.typ)) {
				got = append(got, s.String())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUniverse_AsSuper(t *testing.T) {
	u := NewUniverse()

	view, ok := u.AsSuper(MustParse("ArrayList<Integer>"), "util.Collection")
	require.True(t, ok)
	assert.Equal(t, "util.Collection<lang.Integer>", view.String())

	view, ok = u.AsSuper(MustParse("HashSet<String>"), "util.Set")
	require.True(t, ok)
	assert.Equal(t, "util.Set<lang.String>", view.String())

	_, ok = u.AsSuper(MustParse("String"), "util.List")
	assert.False(t, ok)

	_, ok = u.AsSuper(MustParse("?"), ObjectName)
	assert.False(t, ok)
}

func TestUniverse_AsSuper_UserHierarchy(t *testing.T) {
	u := NewUniverse()
	d, err := DeclFromStrings("com.example.IntList", nil, "util.ArrayList<lang.Integer>")
	require.NoError(t, err)
	require.NoError(t, u.Declare(d))

	view, ok := u.AsSuper(MustParse("com.example.IntList"), "util.List")
	require.True(t, ok)
	assert.Equal(t, "util.List<lang.Integer>", view.String())
}

func TestUniverse_IsSubtype(t *testing.T) {
	u := NewUniverse()

	tests := []struct {
		sub, sup string
		want     bool
	}{
		{"ArrayList<Integer>", "List<Integer>", true},
		{"ArrayList<Integer>", "List<Number>", false},
		{"ArrayList<Integer>", "List<? extends Number>", true},
		{"List<Number>", "List<? super Integer>", true},
		{"List<Integer>", "List<? super Number>", false},
		{"List<String>", "List<?>", true},
		{"ArrayList<Integer>", "List", true},
		{"String", "CharSequence", true},
		{"CharSequence", "String", false},
		{"Integer[]", "Number[]", true},
		{"Integer[]", "Object", true},
		{"int[]", "Object", true},
		{"int[]", "Integer[]", false},
		{"int", "Object", false},
		{"Integer", "Object", true},
	}

	for _, tt := range tests {
		t.Run(tt.sub+" <: "+tt.sup, func(t *testing.T) {
			assert.Equal(t, tt.want, u.IsSubtype(MustParse(tt.sub), MustParse(tt.sup)))
		})
	}
}

func TestUniverse_IsSubtype_Variables(t *testing.T) {
	u := NewUniverse()
	vars, _, err := ParseParams([]string{"T extends Number"})
	require.NoError(t, err)

	assert.True(t, u.IsSubtype(vars[0], MustParse("Number")))
	assert.True(t, u.IsSubtype(vars[0], MustParse("Object")))
	assert.False(t, u.IsSubtype(vars[0], MustParse("String")))
	assert.True(t, u.IsSubtype(vars[0], vars[0]))
}
