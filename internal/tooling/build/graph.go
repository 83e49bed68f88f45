package build

import (
	"sort"

	"github.com/conduit-lang/parcelgen/internal/compiler/schema"
)

// Node is one schema file in the dependency graph
type Node struct {
	Path string
	// Dependencies are the schemas declaring types this schema uses.
	Dependencies []string
}

// DependencyGraph tracks which schemas declare the types other schemas use.
// A type declared by several schemas belongs to the first one by path. The
// graph is immutable once built.
type DependencyGraph struct {
	nodes      map[string]*Node
	dependents map[string][]string
}

// NewDependencyGraph builds the graph of schemas
func NewDependencyGraph(schemas []*schema.Schema) *DependencyGraph {
	dg := &DependencyGraph{
		nodes:      make(map[string]*Node),
		dependents: make(map[string][]string),
	}

	sorted := make([]*schema.Schema, len(schemas))
	copy(sorted, schemas)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	declaredIn := make(map[string]string)
	for _, s := range sorted {
		dg.nodes[s.Path] = &Node{Path: s.Path}
		for _, name := range s.Declared() {
			if _, ok := declaredIn[name]; !ok {
				declaredIn[name] = s.Path
			}
		}
	}

	for _, s := range sorted {
		node := dg.nodes[s.Path]
		seen := make(map[string]bool)
		for _, ref := range s.References() {
			dep, ok := declaredIn[ref]
			if !ok || dep == s.Path || seen[dep] {
				continue
			}
			seen[dep] = true
			node.Dependencies = append(node.Dependencies, dep)
			dg.dependents[dep] = append(dg.dependents[dep], s.Path)
		}
		sort.Strings(node.Dependencies)
	}
	return dg
}

// GetNode retrieves a node by path
func (dg *DependencyGraph) GetNode(path string) (*Node, bool) {
	node, ok := dg.nodes[path]
	return node, ok
}

// FindAffected returns the changed schemas in the graph and every schema
// that depends on them, directly or not, sorted by path.
func (dg *DependencyGraph) FindAffected(changedFiles []string) []string {
	affected := make(map[string]struct{})
	var visit func(string)
	visit = func(path string) {
		if _, ok := affected[path]; ok {
			return
		}
		affected[path] = struct{}{}
		for _, dependent := range dg.dependents[path] {
			visit(dependent)
		}
	}
	for _, file := range changedFiles {
		if _, ok := dg.nodes[file]; ok {
			visit(file)
		}
	}

	result := make([]string, 0, len(affected))
	for path := range affected {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}

// TopologicalSort returns the schemas in pass order: every schema after the
// schemas it depends on, ties broken by path. Schemas on a cycle, and those
// depending on one, cannot be ordered; they follow the others by path and are
// also returned as cyclic.
func (dg *DependencyGraph) TopologicalSort() (order, cyclic []string) {
	inDegree := make(map[string]int, len(dg.nodes))
	var ready []string
	for path, node := range dg.nodes {
		inDegree[path] = len(node.Dependencies)
		if inDegree[path] == 0 {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)

	order = make([]string, 0, len(dg.nodes))
	for len(ready) > 0 {
		path := ready[0]
		ready = ready[1:]
		order = append(order, path)

		var unlocked []string
		for _, dependent := range dg.dependents[path] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				unlocked = append(unlocked, dependent)
			}
		}
		if len(unlocked) > 0 {
			ready = append(ready, unlocked...)
			sort.Strings(ready)
		}
	}

	if len(order) == len(dg.nodes) {
		return order, nil
	}
	for path, degree := range inDegree {
		if degree > 0 {
			cyclic = append(cyclic, path)
		}
	}
	sort.Strings(cyclic)
	return append(order, cyclic...), cyclic
}
