package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/parcelgen/internal/compiler/adapter"
	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

func TestNamer(t *testing.T) {
	n := NewNamer("reserved")

	assert.Equal(t, "listAdapter", n.Name("a", "listAdapter"))
	assert.Equal(t, "listAdapter", n.Name("a", "ignored"), "same type name keeps its identifier")
	assert.Equal(t, "listAdapter2", n.Name("b", "listAdapter"))
	assert.Equal(t, "listAdapter3", n.Name("c", "listAdapter"))
	assert.Equal(t, "reserved2", n.Name("d", "reserved"))

	name, ok := n.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, "listAdapter2", name)
	_, ok = n.Lookup("zzz")
	assert.False(t, ok)
}

func TestBaseName(t *testing.T) {
	u := types.NewUniverse()
	r := adapter.NewResolver(adapter.NewRegistry(nil), u, nil)

	tests := map[string]string{
		"List<Integer>":              "integerListAdapter",
		"Map<String, Set<Long>>":     "stringLongSetMapAdapter",
		"List<String[]>":             "stringArrayListAdapter",
		"SparseArray<List<Boolean>>": "booleanListSparseArrayAdapter",
		"Collection<Date>":           "dateCollectionAdapter",
	}
	for expr, want := range tests {
		t.Run(expr, func(t *testing.T) {
			g, err := r.Resolve(types.MustParse(expr))
			require.NoError(t, err)
			assert.Equal(t, want, BaseName(g))
		})
	}
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "type_", identifier("type"))
	assert.Equal(t, "adapter9lives", identifier("9lives"))
	assert.Equal(t, "mapAdapter", identifier("map$Adapter"))
	assert.Equal(t, "adapter", identifier(""))
}

func TestLocalNameAndAdapterVar(t *testing.T) {
	assert.Equal(t, "nickname", LocalName("Nickname"))
	assert.Equal(t, "range_", LocalName("Range"))
	assert.Equal(t, "UserAdapter", AdapterVar("*User"))
	assert.Equal(t, "geo.PointAdapter", AdapterVar("*geo.Point"))
}
