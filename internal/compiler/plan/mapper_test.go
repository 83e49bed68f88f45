package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

func TestGoTypes_GoType(t *testing.T) {
	g := NewGoTypes()
	g.Types["com.example.Point"] = "*Point"
	g.Types["util.List"] = "Ignored"

	tests := []struct {
		expr string
		want string
		ok   bool
	}{
		{"boolean", "bool", true},
		{"char", "rune", true},
		{"double[]", "[]float64", true},
		{"String", "string", true},
		{"Integer", "int32", true},
		{"BigDecimal", "*big.Rat", true},
		{"Date", "time.Time", true},
		{"List<String>", "Ignored", true},
		{"ArrayList<com.example.Point>", "[]*Point", true},
		{"Set<Long>", "map[int64]struct{}", true},
		{"Map<String, List<Integer>>", "map[string]Ignored", true},
		{"SparseArray<String>", "map[int32]string", true},
		{"SparseBooleanArray", "map[int32]bool", true},
		{"com.example.Point[][]", "[][]*Point", true},
		{"Set<? extends Number>", "", false},
		{"com.example.Unknown", "", false},
		{"Map<String, com.example.Unknown>", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, ok := g.GoType(types.MustParse(tt.expr))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGoTypes_Factory(t *testing.T) {
	g := NewGoTypes()
	g.Factories["com.example.Point"] = "ReadPoint"

	f, ok := g.Factory(types.MustParse("com.example.Point"))
	assert.True(t, ok)
	assert.Equal(t, "ReadPoint", f)

	_, ok = g.Factory(types.MustParse("com.example.Point[]"))
	assert.False(t, ok)
}
