package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/parcelgen/internal/cli/config"
	"github.com/conduit-lang/parcelgen/internal/compiler/codegen"
	cerrors "github.com/conduit-lang/parcelgen/internal/compiler/errors"
)

const geoSchema = `package: geo
import: example.com/geo
types:
  - name: com.example.Point
    parcel: true
    fields:
      - name: X
        type: int
      - name: Label
        type: String
`

func project(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func newSystem(t *testing.T, root string, opts BuildOptions) *System {
	t.Helper()
	if opts.Config == nil {
		opts.Config = &config.Config{Schemas: []string{"*.yaml"}}
	}
	opts.Root = root
	s, err := NewSystem(opts)
	require.NoError(t, err)
	return s
}

func TestNewSystem_RequiresConfig(t *testing.T) {
	_, err := NewSystem(BuildOptions{})
	assert.Error(t, err)
}

func TestBuild_WritesAndSkipsUnchanged(t *testing.T) {
	root := project(t, map[string]string{"geo.yaml": geoSchema})
	s := newSystem(t, root, BuildOptions{})

	result, err := s.Build(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Diagnostics)
	require.Len(t, result.Files, 1)

	f := result.Files[0]
	assert.Equal(t, filepath.Join(root, "geo_parcel.go"), f.Path)
	assert.Equal(t, StatusWritten, f.Status)
	assert.Equal(t, []string{"com.example.Point"}, f.Types)
	assert.Equal(t, 1, result.Written())

	src, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(src), "// Code generated by parcelgen. DO NOT EDIT."))
	fp, ok := codegen.ParseFingerprint(src)
	require.True(t, ok)
	assert.Equal(t, f.Fingerprint, fp)

	again, err := s.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, again.Files, 1)
	assert.Equal(t, StatusUnchanged, again.Files[0].Status)
	assert.Nil(t, again.Files[0].Source)
	assert.Equal(t, 1, again.CacheHits)
	assert.Equal(t, 0, again.Written())
}

func TestBuild_Force(t *testing.T) {
	root := project(t, map[string]string{"geo.yaml": geoSchema})
	_, err := newSystem(t, root, BuildOptions{}).Build(context.Background())
	require.NoError(t, err)

	result, err := newSystem(t, root, BuildOptions{Force: true}).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, StatusWritten, result.Files[0].Status)
}

func TestBuild_DryRun(t *testing.T) {
	root := project(t, map[string]string{"geo.yaml": geoSchema})
	result, err := newSystem(t, root, BuildOptions{DryRun: true}).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Files, 1)

	assert.Equal(t, StatusDryRun, result.Files[0].Status)
	assert.Contains(t, string(result.Files[0].Source), "func WritePoint(w *parcel.Writer, x *Point)")
	_, err = os.Stat(result.Files[0].Path)
	assert.True(t, os.IsNotExist(err))
}

func TestBuild_OutputDir(t *testing.T) {
	root := project(t, map[string]string{"schema/geo.yaml": geoSchema})
	cfg := &config.Config{Schemas: []string{"schema/*.yaml"}, OutputDir: "gen"}

	result, err := newSystem(t, root, BuildOptions{Config: cfg}).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, filepath.Join(root, "gen", "geo", "geo_parcel.go"), result.Files[0].Path)
	assert.FileExists(t, result.Files[0].Path)
}

func TestBuild_Diagnostics(t *testing.T) {
	root := project(t, map[string]string{
		"geo.yaml": geoSchema,
		"bad.yaml": "typez: []\n",
		"shop.yaml": `package: shop
import: example.com/shop
types:
  - name: com.example.Cart
    parcel: true
    fields:
      - name: Items
        type: util.Deque<String>
`,
	})
	result, err := newSystem(t, root, BuildOptions{}).Build(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Success)

	var codes []cerrors.ErrorCode
	for _, d := range result.Diagnostics {
		codes = append(codes, d.Code)
		assert.NotEmpty(t, d.File)
	}
	assert.Contains(t, codes, cerrors.ErrInvalidSchema)
	assert.Contains(t, codes, cerrors.ErrUnknownType)

	// Types that could be planned are still generated.
	require.Len(t, result.Files, 1)
	assert.Equal(t, "geo", result.Files[0].Package)
}

func TestBuild_NoSchemas(t *testing.T) {
	root := project(t, nil)
	_, err := newSystem(t, root, BuildOptions{}).Build(context.Background())
	assert.ErrorContains(t, err, "no schema files")
}

func TestBuild_Cancelled(t *testing.T) {
	root := project(t, map[string]string{"geo.yaml": geoSchema})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newSystem(t, root, BuildOptions{}).Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIncrementalBuild(t *testing.T) {
	root := project(t, map[string]string{"geo.yaml": geoSchema})
	s := newSystem(t, root, BuildOptions{})
	first, err := s.Build(context.Background())
	require.NoError(t, err)

	path := filepath.Join(root, "geo.yaml")
	updated := geoSchema + "      - name: Y\n        type: int\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))

	result, err := s.IncrementalBuild(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, StatusWritten, result.Files[0].Status)
	assert.NotEqual(t, first.Files[0].Fingerprint, result.Files[0].Fingerprint)
	assert.Contains(t, string(result.Files[0].Source), "w.WriteInt32(x.Y)")
}

func TestFileStatusString(t *testing.T) {
	assert.Equal(t, "written", StatusWritten.String())
	assert.Equal(t, "unchanged", StatusUnchanged.String())
	assert.Equal(t, "dry-run", StatusDryRun.String())
	assert.Equal(t, "unknown", FileStatus(9).String())
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.go")
	require.NoError(t, writeFileAtomic(path, []byte("package out\n")))
	require.NoError(t, writeFileAtomic(path, []byte("package out\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package out\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPlan_GeneratesNothing(t *testing.T) {
	root := project(t, map[string]string{"geo.yaml": geoSchema})
	result, err := newSystem(t, root, BuildOptions{}).Plan(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Files)

	results := result.Processor.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "com.example.Point", results[0].Type)
	require.NotNil(t, results[0].Plan)

	_, err = os.Stat(filepath.Join(root, "geo_parcel.go"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuild_OrdersByDependency(t *testing.T) {
	root := project(t, map[string]string{
		"a_orders.yaml": ordersSrc,
		"b_money.yaml":  moneySrc,
	})
	s := newSystem(t, root, BuildOptions{})

	result, err := s.Build(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{
		filepath.Join(root, "b_money.yaml"),
		filepath.Join(root, "a_orders.yaml"),
	}, result.Order)

	// Money is declared before Order is planned, so no retry is needed.
	results := result.Processor.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "com.example.Order", results[0].Type)
	assert.Equal(t, 2, results[0].Pass)
	require.NotNil(t, results[0].Plan)

	changed := filepath.Join(root, "b_money.yaml")
	again, err := s.IncrementalBuild(context.Background(), []string{changed})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a_orders.yaml"), changed}, again.Affected)
}
