package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	// No config file: defaults apply
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir, "")
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg.File != "" {
		t.Errorf("expected no config file, got %s", cfg.File)
	}
	if !reflect.DeepEqual(cfg.Schemas, []string{"schema/*.yaml"}) {
		t.Errorf("expected default schemas, got %v", cfg.Schemas)
	}
	if cfg.Workers != 0 {
		t.Errorf("expected default workers 0, got %d", cfg.Workers)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected default log level 'warn', got %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "console" {
		t.Errorf("expected default log format 'console', got %s", cfg.Log.Format)
	}
	if !reflect.DeepEqual(cfg.ReflectAnnotations, []string{"Reflect"}) {
		t.Errorf("expected default reflect annotations, got %v", cfg.ReflectAnnotations)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	configContent := `
schemas:
  - models/*.yaml
  - extra.yaml
output_dir: gen
workers: 4
reflect_annotations: [Reflect, Hidden]
log:
  level: debug
  format: json
`
	path := filepath.Join(tmpDir, "parcelgen.yaml")
	if err := os.WriteFile(path, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(tmpDir, "")
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if cfg.File != path {
		t.Errorf("expected config file %s, got %s", path, cfg.File)
	}
	if !reflect.DeepEqual(cfg.Schemas, []string{"models/*.yaml", "extra.yaml"}) {
		t.Errorf("unexpected schemas %v", cfg.Schemas)
	}
	if cfg.OutputDir != "gen" {
		t.Errorf("expected output dir 'gen', got %s", cfg.OutputDir)
	}
	if cfg.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Workers)
	}
	if !reflect.DeepEqual(cfg.ReflectAnnotations, []string{"Reflect", "Hidden"}) {
		t.Errorf("unexpected reflect annotations %v", cfg.ReflectAnnotations)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}
	if cfg.Root("/elsewhere") != tmpDir {
		t.Errorf("expected root %s, got %s", tmpDir, cfg.Root("/elsewhere"))
	}
}

func TestLoadExplicitPath(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "custom.yml")
	if err := os.WriteFile(path, []byte("workers: 2\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load("", path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Workers != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.Workers)
	}

	if _, err := Load("", filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadEnvironment(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("PARCELGEN_WORKERS", "8")
	t.Setenv("PARCELGEN_LOG_LEVEL", "info")

	cfg, err := Load(tmpDir, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Workers != 8 {
		t.Errorf("expected PARCELGEN_WORKERS to set 8 workers, got %d", cfg.Workers)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected PARCELGEN_LOG_LEVEL to set 'info', got %s", cfg.Log.Level)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"negative workers", "workers: -1\n", "workers must not be negative"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"no schemas", "schemas: []\n", "schemas must list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			if err := os.WriteFile(filepath.Join(tmpDir, "parcelgen.yaml"), []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			_, err := Load(tmpDir, "")
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSchemaFiles(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yaml", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), nil, 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "dir.yaml"), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	cfg := &Config{Schemas: []string{"*.yaml", "a.yaml"}}
	files, err := cfg.SchemaFiles(tmpDir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []string{filepath.Join(tmpDir, "a.yaml"), filepath.Join(tmpDir, "b.yaml")}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("expected %v, got %v", want, files)
	}

	cfg = &Config{Schemas: []string{"*.json"}}
	if _, err := cfg.SchemaFiles(tmpDir); err == nil {
		t.Error("expected error when nothing matches")
	}
}

func TestOutputPath(t *testing.T) {
	schema := filepath.Join("/project", "schema", "geo.yaml")

	cfg := &Config{}
	if got := cfg.OutputPath("/project", schema, "geo"); got != filepath.Join("/project", "schema") {
		t.Errorf("expected output next to schema, got %s", got)
	}

	cfg = &Config{OutputDir: "gen"}
	if got := cfg.OutputPath("/project", schema, "geo"); got != filepath.Join("/project", "gen", "geo") {
		t.Errorf("expected relative output dir, got %s", got)
	}

	cfg = &Config{OutputDir: "/tmp/out"}
	if got := cfg.OutputPath("/project", schema, "geo"); got != filepath.Join("/tmp/out", "geo") {
		t.Errorf("expected absolute output dir, got %s", got)
	}
}

func TestLogger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		logger, err := LogConfig{Level: "debug", Format: format}.Logger()
		if err != nil {
			t.Fatalf("expected no error for %s, got %v", format, err)
		}
		if !logger.Core().Enabled(-1) {
			t.Errorf("expected debug level enabled for %s", format)
		}
	}

	if _, err := (LogConfig{Level: "loud"}).Logger(); err == nil {
		t.Error("expected error for invalid level")
	}
}
