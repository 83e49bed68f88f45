package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/parcelgen/internal/compiler/adapter"
)

const moneySchema = `package: shop
import: example.com/shop
types:
  - name: com.example.Money
    go_type: Money
adapters:
  - name: money.Adapter
    go_expr: money.Adapter
    import: example.com/money
    adapts: com.example.Money
    singleton: true
    value_type: true
    priority: 200
`

func TestAdaptersCommand_Builtin(t *testing.T) {
	out, _, err := run(t, "adapters", "--builtin")
	require.NoError(t, err)

	assert.Contains(t, out, "ADAPTER")
	assert.Contains(t, out, "parcel.StringAdapter")
	assert.Contains(t, out, "parcel.ListAdapter<T>")
	assert.Contains(t, out, "util.List<T>")
	assert.Contains(t, out, "singleton, value")
	assert.NotContains(t, out, "money.Adapter")
}

func TestAdaptersCommand_Match(t *testing.T) {
	out, _, err := run(t, "adapters", "--builtin", "--match", "LIST")
	require.NoError(t, err)
	assert.Contains(t, out, "parcel.ListAdapter<T>")
	assert.NotContains(t, out, "parcel.StringAdapter")

	out, _, err = run(t, "adapters", "--builtin", "--match", "nothing-like-this")
	require.NoError(t, err)
	assert.Contains(t, out, "No adapter matches")
}

func TestAdaptersCommand_Project(t *testing.T) {
	dir := writeProject(t, map[string]string{"schema/money.yaml": moneySchema})

	out, _, err := run(t, "adapters", "-C", dir, "--match", "money")
	require.NoError(t, err)
	assert.Contains(t, out, "money.Adapter")
	assert.Contains(t, out, "com.example.Money")
	assert.Contains(t, out, "200")
}

func TestProperties(t *testing.T) {
	assert.Equal(t, "-", properties(&adapter.Descriptor{}))
	assert.Equal(t, "singleton, null-safe", properties(&adapter.Descriptor{Singleton: true, NullSafe: true}))
	assert.Equal(t, "value", properties(&adapter.Descriptor{ValueType: true}))
}

func TestAdaptersCommand_Type(t *testing.T) {
	out, _, err := run(t, "adapters", "--builtin", "--type", "ArrayList<String>")
	require.NoError(t, err)
	assert.Contains(t, out, "TYPE ARGS")
	assert.Contains(t, out, "parcel.ListAdapter<T>")
	assert.Contains(t, out, "parcel.CollectionAdapter<T>")
	assert.Contains(t, out, "lang.String")
	assert.Contains(t, out, "yes")
	assert.NotContains(t, out, "parcel.StringAdapter")

	out, _, err = run(t, "adapters", "--builtin", "--type", "Number")
	require.NoError(t, err)
	assert.Contains(t, out, "No adapter applies to lang.Number")
	assert.Contains(t, out, "does not resolve")

	_, _, err = run(t, "adapters", "--builtin", "--type", "List<")
	assert.ErrorContains(t, err, "invalid type")
}

func TestAdaptersCommand_TypeInProject(t *testing.T) {
	dir := writeProject(t, map[string]string{"schema/money.yaml": moneySchema})

	out, _, err := run(t, "adapters", "-C", dir, "--type", "com.example.Money")
	require.NoError(t, err)
	assert.Contains(t, out, "money.Adapter")
	assert.Contains(t, out, "yes")
}
