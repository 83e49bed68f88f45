// Package processor runs schema files through analysis and planning.
//
// Every schema file is one pass over a universe and adapter registry shared
// by the whole run. Types whose fields could not be resolved are retried in
// later passes, once a pass has declared new types or adapters.
package processor

import (
	"errors"
	"runtime"
	"sort"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/conduit-lang/parcelgen/internal/compiler/adapter"
	cerrors "github.com/conduit-lang/parcelgen/internal/compiler/errors"
	"github.com/conduit-lang/parcelgen/internal/compiler/fields"
	"github.com/conduit-lang/parcelgen/internal/compiler/plan"
	"github.com/conduit-lang/parcelgen/internal/compiler/schema"
	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

// Options configure a Processor.
type Options struct {
	// Workers bounds the goroutines planning types of one pass. Zero means
	// GOMAXPROCS.
	Workers int
	Fields  fields.Options
	Logger  *zap.Logger
}

// Result is the outcome for one parcel type.
type Result struct {
	Type    string
	Package string
	Import  string
	File    string
	Pass    int
	Plan    *plan.Plan
	// Err is set when the type could not be planned.
	Err      error
	Warnings cerrors.ErrorList
}

// Processor accumulates passes. It is not safe for concurrent use; each
// pass plans its types in parallel internally.
type Processor struct {
	universe *types.Universe
	registry *adapter.Registry
	resolver *adapter.Resolver
	goTypes  *plan.GoTypes
	builder  *plan.Builder
	opts     Options
	logger   *zap.Logger

	pass        int
	results     map[string]*Result
	deferred    map[string]*job
	diagnostics cerrors.ErrorList
}

// job is one type to analyse. generation records the size of the universe
// and registry when the job last failed.
type job struct {
	spec       fields.TypeSpec
	schema     *schema.Schema
	generation int
}

// New creates a processor with the builtin declarations and adapters.
func New(opts Options) *Processor {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Fields.ReflectAnnotations == nil && opts.Fields.NonNullAnnotations == nil {
		opts.Fields = fields.DefaultOptions()
	}
	universe := types.NewUniverse()
	registry := adapter.NewRegistry(opts.Logger)
	resolver := adapter.NewResolver(registry, universe, opts.Logger)
	goTypes := plan.NewGoTypes()
	return &Processor{
		universe: universe,
		registry: registry,
		resolver: resolver,
		goTypes:  goTypes,
		builder:  plan.NewBuilder(resolver, goTypes, opts.Logger),
		opts:     opts,
		logger:   opts.Logger,
		results:  make(map[string]*Result),
		deferred: make(map[string]*job),
	}
}

// Registry returns the shared adapter registry.
func (p *Processor) Registry() *adapter.Registry {
	return p.registry
}

// Universe returns the shared type universe.
func (p *Processor) Universe() *types.Universe {
	return p.universe
}

func (p *Processor) generation() int {
	return p.universe.Size() + p.registry.Size()
}

// Pass processes one schema file. Schema-level problems are recorded as
// diagnostics and the affected declarations skipped; the pass itself only
// fails when the schema cannot be read at all.
func (p *Processor) Pass(s *schema.Schema) error {
	p.pass++
	logger := p.logger.With(zap.Int("pass", p.pass), zap.String("schema", s.Path))

	decls, err := s.Decls()
	if err != nil {
		p.record(err)
	}
	for _, d := range decls {
		if err := p.universe.Declare(d); err != nil {
			p.diagnostics = append(p.diagnostics, cerrors.NewInvalidSchema(cerrors.Location{}, err.Error()).WithFile(s.Path))
		}
	}
	s.Map(p.goTypes)

	specs, err := s.AdapterSpecs()
	if err != nil {
		p.record(err)
	}
	for _, spec := range specs {
		if _, err := p.registry.Register(spec); err != nil {
			p.diagnostics = append(p.diagnostics, adapterError(s, spec, err))
		}
	}

	typeSpecs, err := s.TypeSpecs()
	if err != nil {
		p.record(err)
	}

	gen := p.generation()
	var jobs []*job
	for name, j := range p.deferred {
		if j.generation < gen {
			jobs = append(jobs, j)
			delete(p.deferred, name)
		}
	}
	for _, spec := range typeSpecs {
		jobs = append(jobs, &job{spec: spec, schema: s})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].spec.Name < jobs[j].spec.Name })

	results := p.run(jobs)
	planned, failed := 0, 0
	for i, r := range results {
		if r.Err != nil && retriable(r.Err) {
			jobs[i].generation = gen
			p.deferred[r.Type] = jobs[i]
			p.results[r.Type] = r
			continue
		}
		if r.Err != nil {
			failed++
		} else {
			planned++
		}
		p.results[r.Type] = r
	}

	logger.Info("pass complete",
		zap.Int("types", len(jobs)),
		zap.Int("planned", planned),
		zap.Int("failed", failed),
		zap.Int("deferred", len(p.deferred)),
		zap.Int("adapters", p.registry.Size()),
	)
	return nil
}

func (p *Processor) run(jobs []*job) []*Result {
	pl := pool.NewWithResults[*Result]().WithMaxGoroutines(p.opts.Workers)
	for _, j := range jobs {
		j := j
		pl.Go(func() *Result { return p.process(j) })
	}
	byType := make(map[string]*Result, len(jobs))
	for _, r := range pl.Wait() {
		byType[r.Type] = r
	}
	// Wait returns results in completion order; callers index by job.
	ordered := make([]*Result, len(jobs))
	for i, j := range jobs {
		ordered[i] = byType[j.spec.Name]
	}
	return ordered
}

func (p *Processor) process(j *job) *Result {
	r := &Result{
		Type:    j.spec.Name,
		Package: j.schema.Package,
		Import:  j.schema.Import,
		File:    j.schema.Path,
		Pass:    p.pass,
	}
	model, err := fields.Analyze(p.universe, j.spec, p.opts.Fields)
	if err != nil {
		r.Err = err
		return r
	}
	if names := model.Reflective(); len(names) > 0 {
		r.Warnings = append(r.Warnings, cerrors.NewReflectAccess(cerrors.Location{Line: model.Line}, model.Type, names).WithFile(model.File))
	}
	r.Plan, r.Err = p.builder.Build(model)
	if r.Err != nil {
		p.logger.Debug("type not planned", zap.String("type", r.Type), zap.String("reason", cerrors.Compact(r.Err)))
	}
	return r
}

// retriable reports whether err may go away once more types or adapters are
// declared.
func retriable(err error) bool {
	codes := func(e *cerrors.CompilerError) bool {
		return e.Code == cerrors.ErrUnresolvedType || e.Code == cerrors.ErrUnknownType
	}
	var list cerrors.ErrorList
	if errors.As(err, &list) {
		for _, e := range list {
			if !codes(e) {
				return false
			}
		}
		return len(list) > 0
	}
	var cerr *cerrors.CompilerError
	if errors.As(err, &cerr) {
		return codes(cerr)
	}
	return false
}

func (p *Processor) record(err error) {
	p.diagnostics = append(p.diagnostics, cerrors.Collect(err)...)
}

func adapterError(s *schema.Schema, spec adapter.Spec, err error) *cerrors.CompilerError {
	loc := cerrors.Location{}
	for _, a := range s.Adapters {
		if a.Name == spec.Name {
			loc.Line = a.Line
		}
	}
	var derr *adapter.DescriptorError
	if errors.As(err, &derr) && errors.Is(err, adapter.ErrAmbiguousAdapter) {
		return cerrors.NewAmbiguousAdapter(loc, spec.Name, derr.Params).WithFile(s.Path)
	}
	return cerrors.NewInvalidAdapter(loc, spec.Name, err.Error()).WithFile(s.Path)
}

// Results returns the outcome of every type seen so far, sorted by type name.
func (p *Processor) Results() []*Result {
	out := make([]*Result, 0, len(p.results))
	for _, r := range p.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Diagnostics returns schema and adapter problems followed by the errors and
// warnings of every type, in type order.
func (p *Processor) Diagnostics() cerrors.ErrorList {
	all := append(cerrors.ErrorList{}, p.diagnostics...)
	for _, r := range p.Results() {
		all = append(all, cerrors.Collect(r.Err)...)
		all = append(all, r.Warnings...)
	}
	return all
}

// Package groups the planned types generated into one Go package.
type Package struct {
	Name   string
	Import string
	Plans  []*plan.Plan
}

// Packages returns the successfully planned types grouped by Go import path,
// sorted by import path with plans sorted by type name.
func (p *Processor) Packages() []*Package {
	byImport := make(map[string]*Package)
	for _, r := range p.Results() {
		if r.Plan == nil {
			continue
		}
		pkg, ok := byImport[r.Import]
		if !ok {
			pkg = &Package{Name: r.Package, Import: r.Import}
			byImport[r.Import] = pkg
		}
		pkg.Plans = append(pkg.Plans, r.Plan)
	}
	out := make([]*Package, 0, len(byImport))
	for _, pkg := range byImport {
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Import < out[j].Import })
	return out
}

// Run processes schemas in order, one pass each.
func Run(schemas []*schema.Schema, opts Options) (*Processor, error) {
	p := New(opts)
	for _, s := range schemas {
		if err := p.Pass(s); err != nil {
			return nil, err
		}
	}
	return p, nil
}
