package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

// syncBuffer is a bytes.Buffer safe for the watcher goroutine to write to
// while a test reads it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func execute(ctx context.Context, stdout, stderr *syncBuffer, args ...string) error {
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	return cmd.ExecuteContext(ctx)
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr syncBuffer
	err := execute(context.Background(), &stdout, &stderr, args...)
	return stdout.String(), stderr.String(), err
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "parcelgen", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, expected := range []string{"version", "init", "generate", "plan", "adapters", "watch", "completion"} {
		assert.Contains(t, names, expected)
	}

	for _, flag := range []string{"config", "dir", "log-level", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	BuildDate = "2026-01-01"
	GoVersion = "go1.23"

	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "parcelgen version: 1.0.0-test")
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, "go1.23")
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "parcelgen")

	_, _, err = run(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestLoadProject_ConfigError(t *testing.T) {
	dir := writeProject(t, map[string]string{"parcelgen.yaml": "workers: -1\n"})

	_, _, err := run(t, "generate", "-C", dir)
	require.Error(t, err)
	var cfgErr *configError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "workers must not be negative")
}

func TestLoadProject_LogLevelOverride(t *testing.T) {
	dir := writeProject(t, map[string]string{"schema/geo.yaml": geoSchema})

	_, _, err := run(t, "plan", "-C", dir, "--log-level", "loud")
	require.Error(t, err)
	var cfgErr *configError
	assert.True(t, errors.As(err, &cfgErr))
}
