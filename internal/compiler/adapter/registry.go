package adapter

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

// Registry catalogs adapter descriptors and caches resolved graphs.
//
// A registry only grows: descriptors, rejections and cached graphs are never
// removed, so it can be shared by several processing passes and consulted
// concurrently.
type Registry struct {
	entries   []*Descriptor
	byErasure map[string][]*Descriptor
	byName    map[string]*Descriptor
	rejected  map[string]error
	graphs    map[string]*Graph
	seq       int
	logger    *zap.Logger
	mu        sync.RWMutex
}

// NewRegistry creates a registry holding the builtin descriptors.
func NewRegistry(logger *zap.Logger) *Registry {
	r := NewEmptyRegistry(logger)
	for _, spec := range BuiltinSpecs() {
		r.add(MustDescriptor(spec), false)
	}
	return r
}

// NewEmptyRegistry creates a registry without builtin descriptors.
func NewEmptyRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		byErasure: make(map[string][]*Descriptor),
		byName:    make(map[string]*Descriptor),
		rejected:  make(map[string]error),
		graphs:    make(map[string]*Graph),
		logger:    logger,
	}
}

// Register validates spec and adds the resulting descriptor. Registering the
// same declaration again returns the existing descriptor. A declaration that
// was rejected once keeps failing with the same error and is not logged again.
func (r *Registry) Register(spec Spec) (*Descriptor, error) {
	r.mu.RLock()
	if err, ok := r.rejected[spec.Name]; ok {
		r.mu.RUnlock()
		return nil, err
	}
	r.mu.RUnlock()

	d, err := NewDescriptor(spec)
	if err != nil {
		r.reject(spec.Name, err)
		return nil, err
	}
	return r.RegisterDescriptor(d)
}

// RegisterDescriptor adds an already built descriptor.
func (r *Registry) RegisterDescriptor(d *Descriptor) (*Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byName[d.Name]; ok {
		if existing.sameShape(d) {
			return existing, nil
		}
		return nil, invalid(d.Name, "already registered as %s", existing)
	}
	r.add(d, true)
	r.logger.Debug("registered adapter",
		zap.String("adapter", d.Name),
		zap.String("adapts", d.Adapted.String()),
		zap.Int("priority", d.Priority),
		zap.Bool("singleton", d.Singleton),
	)
	return d, nil
}

// add inserts d keeping entries ordered by priority. With ahead set, d goes
// before the entries of equal priority, so a declared adapter overrides a
// builtin one of the same priority; builtins keep their table order.
// Callers hold the write lock or own the registry exclusively.
func (r *Registry) add(d *Descriptor, ahead bool) {
	r.seq++
	d.order = r.seq
	r.byName[d.Name] = d
	r.entries = insertOrdered(r.entries, d, ahead)
	r.byErasure[d.Erasure] = insertOrdered(r.byErasure[d.Erasure], d, ahead)
}

func insertOrdered(list []*Descriptor, d *Descriptor, ahead bool) []*Descriptor {
	i := sort.Search(len(list), func(i int) bool {
		if ahead {
			return list[i].Priority <= d.Priority
		}
		return list[i].Priority < d.Priority
	})
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = d
	return list
}

func (r *Registry) reject(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rejected[name]; ok {
		return
	}
	r.rejected[name] = err
	if errors.Is(err, ErrAmbiguousAdapter) {
		r.logger.Warn("rejected ambiguous adapter", zap.String("adapter", name), zap.Error(err))
		return
	}
	r.logger.Warn("rejected adapter", zap.String("adapter", name), zap.Error(err))
}

// Rejected returns the error a declaration was rejected with, or nil.
func (r *Registry) Rejected(name string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rejected[name]
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}

// Descriptors returns every descriptor in resolution order.
func (r *Registry) Descriptors() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*Descriptor, len(r.entries))
	copy(result, r.entries)
	return result
}

// ForErasure returns the descriptors whose adapted type erases to erasure,
// highest priority first.
func (r *Registry) ForErasure(erasure string) []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.byErasure[erasure]
	if len(list) == 0 {
		return nil
	}
	result := make([]*Descriptor, len(list))
	copy(result, list)
	return result
}

// Size returns the number of registered descriptors. It never decreases, so
// it doubles as a version number for retry decisions.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Graph returns the cached graph for a normalized type name.
func (r *Registry) Graph(typeName string) (*Graph, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.graphs[typeName]
	return g, ok
}

// StoreGraph caches g under typeName unless a graph is already cached there.
// It returns the cached graph, which is g only if it won.
func (r *Registry) StoreGraph(typeName string, g *Graph) *Graph {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.graphs[typeName]; ok {
		return existing
	}
	r.graphs[typeName] = g
	return g
}

// CachedGraphs returns the number of cached graphs.
func (r *Registry) CachedGraphs() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.graphs)
}

// supertypeLevels returns t and its supertypes breadth first, in declaration
// order within each level, without repeats.
func supertypeLevels(h types.Hierarchy, t types.Type) []types.Type {
	var result []types.Type
	seen := make(map[string]bool)
	queue := []types.Type{t}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		name := current.String()
		if seen[name] {
			continue
		}
		seen[name] = true
		result = append(result, current)
		queue = append(queue, h.DirectSupertypes(current)...)
	}
	return result
}

// String summarizes the registry for logs.
func (r *Registry) String() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fmt.Sprintf("registry(%d adapters, %d graphs, %d rejected)", len(r.entries), len(r.graphs), len(r.rejected))
}
