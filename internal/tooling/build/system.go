// Package build turns the schemas of a project into generated Go files.
package build

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/parcelgen/internal/cli/config"
	"github.com/conduit-lang/parcelgen/internal/compiler/codegen"
	cerrors "github.com/conduit-lang/parcelgen/internal/compiler/errors"
	"github.com/conduit-lang/parcelgen/internal/compiler/fields"
	"github.com/conduit-lang/parcelgen/internal/compiler/plan"
	"github.com/conduit-lang/parcelgen/internal/compiler/processor"
	"github.com/conduit-lang/parcelgen/internal/compiler/schema"
)

// FileSuffix is appended to the package name to form the generated file name.
const FileSuffix = "_parcel.go"

// FileStatus describes what a build did with a generated file
type FileStatus int

const (
	// StatusWritten means the file was (re)written
	StatusWritten FileStatus = iota
	// StatusUnchanged means the file on disk already carries the plan fingerprint
	StatusUnchanged
	// StatusDryRun means the file was generated but not written
	StatusDryRun
)

func (s FileStatus) String() string {
	switch s {
	case StatusWritten:
		return "written"
	case StatusUnchanged:
		return "unchanged"
	case StatusDryRun:
		return "dry-run"
	default:
		return "unknown"
	}
}

// BuildOptions configures the build process
type BuildOptions struct {
	Config *config.Config
	// Root resolves relative schema patterns and the output directory.
	Root   string
	Logger *zap.Logger
	// DryRun generates sources without touching the file system.
	DryRun bool
	// Force rewrites files whose fingerprint is unchanged.
	Force bool
}

// GeneratedFile is one generated Go file
type GeneratedFile struct {
	Path        string
	Package     string
	Import      string
	Types       []string
	Fingerprint uint64
	Status      FileStatus
	// Source is set unless the file was unchanged.
	Source []byte
}

// BuildResult contains information about the build
type BuildResult struct {
	Success     bool
	Duration    time.Duration
	Schemas     []string
	Files       []*GeneratedFile
	Diagnostics cerrors.ErrorList
	Processor   *processor.Processor
	CacheHits   int
	// Order is the pass order of the loaded schemas.
	Order []string
	// Affected lists, for an incremental build, the changed schemas and the
	// schemas depending on them.
	Affected []string
}

// Written returns the number of files that were written.
func (r *BuildResult) Written() int {
	n := 0
	for _, f := range r.Files {
		if f.Status == StatusWritten {
			n++
		}
	}
	return n
}

// System coordinates schema loading, planning and code generation. It is not
// safe for concurrent use; the processor parallelizes planning internally.
type System struct {
	options BuildOptions
	cache   *Cache
	graph   *DependencyGraph
	logger  *zap.Logger
}

// NewSystem creates a new build system
func NewSystem(opts BuildOptions) (*System, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("build requires a configuration")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Root == "" {
		opts.Root = "."
	}
	return &System{options: opts, cache: NewCache(), logger: opts.Logger}, nil
}

// Build performs a full build. Schema, planning and generation problems are
// reported in the result; the error is reserved for failures that stop the
// build as a whole, such as no schema files or a cancelled context.
func (s *System) Build(ctx context.Context) (*BuildResult, error) {
	start := time.Now()
	result, err := s.Plan(ctx)
	if err != nil {
		return nil, err
	}

	for _, pkg := range result.Processor.Packages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := s.generate(pkg)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, cerrors.Collect(err)...)
			continue
		}
		result.Files = append(result.Files, f)
	}

	result.Success = !result.Diagnostics.HasErrors()
	result.Duration = time.Since(start)
	s.logger.Info("build complete",
		zap.Int("schemas", len(result.Schemas)),
		zap.Int("files", len(result.Files)),
		zap.Int("written", result.Written()),
		zap.Int("cache_hits", result.CacheHits),
		zap.Bool("success", result.Success),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// Plan loads and plans every schema without generating code. The result has
// no files.
func (s *System) Plan(ctx context.Context) (*BuildResult, error) {
	start := time.Now()
	cfg := s.options.Config

	files, err := cfg.SchemaFiles(s.options.Root)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{Schemas: files}
	hitsBefore := s.cache.Stats().Hits

	var schemas []*schema.Schema
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sch, err := s.cache.Load(file)
		if err != nil {
			diags := cerrors.Collect(err)
			for _, d := range diags {
				if d.File == "" {
					d.WithFile(file)
				}
			}
			result.Diagnostics = append(result.Diagnostics, diags...)
			continue
		}
		schemas = append(schemas, sch)
	}
	result.CacheHits = s.cache.Stats().Hits - hitsBefore

	s.graph = NewDependencyGraph(schemas)
	order, cyclic := s.graph.TopologicalSort()
	if len(cyclic) > 0 {
		s.logger.Debug("schemas depend on each other", zap.Strings("schemas", cyclic))
	}
	schemas = inOrder(schemas, order)
	result.Order = order

	p, err := processor.Run(schemas, processor.Options{
		Workers: cfg.Workers,
		Fields: fields.Options{
			ReflectAnnotations: cfg.ReflectAnnotations,
			NonNullAnnotations: cfg.NonNullAnnotations,
		},
		Logger: s.logger,
	})
	if err != nil {
		return nil, err
	}
	result.Processor = p
	result.Diagnostics = append(result.Diagnostics, p.Diagnostics()...)
	result.Success = !result.Diagnostics.HasErrors()
	result.Duration = time.Since(start)
	return result, nil
}

// IncrementalBuild rebuilds after changedFiles were modified. Every schema is
// processed again, since any of them may depend on a changed declaration, but
// only changed files are parsed again.
func (s *System) IncrementalBuild(ctx context.Context, changedFiles []string) (*BuildResult, error) {
	paths := make([]string, 0, 2*len(changedFiles))
	for _, file := range changedFiles {
		paths = append(paths, file)
		if abs, err := filepath.Abs(file); err == nil && abs != file {
			paths = append(paths, abs)
		}
	}
	for _, path := range paths {
		s.cache.Invalidate(path)
	}

	var affected []string
	if s.graph != nil {
		affected = s.graph.FindAffected(paths)
		s.logger.Info("schemas changed",
			zap.Strings("changed", changedFiles),
			zap.Strings("affected", affected),
		)
	}

	result, err := s.Build(ctx)
	if err != nil {
		return nil, err
	}
	result.Affected = affected
	return result, nil
}

func inOrder(schemas []*schema.Schema, order []string) []*schema.Schema {
	byPath := make(map[string]*schema.Schema, len(schemas))
	for _, sch := range schemas {
		byPath[sch.Path] = sch
	}
	out := make([]*schema.Schema, 0, len(schemas))
	for _, path := range order {
		if sch, ok := byPath[path]; ok {
			out = append(out, sch)
		}
	}
	return out
}

func (s *System) generate(pkg *processor.Package) (*GeneratedFile, error) {
	cfg := s.options.Config
	f := &GeneratedFile{
		Package:     pkg.Name,
		Import:      pkg.Import,
		Fingerprint: plan.FingerprintAll(pkg.Plans),
	}
	for _, p := range pkg.Plans {
		f.Types = append(f.Types, p.Type)
	}
	sort.Strings(f.Types)

	dir := cfg.OutputPath(s.options.Root, pkg.Plans[0].File, pkg.Name)
	f.Path = filepath.Join(dir, pkg.Name+FileSuffix)

	if !s.options.Force {
		if existing, err := os.ReadFile(f.Path); err == nil {
			if fp, ok := codegen.ParseFingerprint(existing); ok && fp == f.Fingerprint {
				f.Status = StatusUnchanged
				s.logger.Debug("output unchanged", zap.String("file", f.Path))
				return f, nil
			}
		}
	}

	src, err := codegen.NewGenerator(pkg.Name, pkg.Import).Generate(pkg.Plans)
	if err != nil {
		return nil, err
	}
	f.Source = src

	if s.options.DryRun {
		f.Status = StatusDryRun
		return f, nil
	}
	if err := writeFileAtomic(f.Path, src); err != nil {
		return nil, cerrors.NewCodeGenFailed(cerrors.Location{}, err.Error()).WithFile(f.Path)
	}
	f.Status = StatusWritten
	s.logger.Debug("wrote output", zap.String("file", f.Path), zap.Int("types", len(f.Types)))
	return f, nil
}

// writeFileAtomic writes data through a temporary file in the same
// directory, so readers never see a partially written file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return nil
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
