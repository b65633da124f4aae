// Package domain contains the core domain models of the workspace: packages, the monorepo, and the dependency graph.
package domain

import (
	"cmp"
	"container/heap"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// Graph is the read-only dependency graph of a workspace.
// An edge A -> B means package A depends on package B, so B builds first.
type Graph struct {
	packages   map[string]Package
	names      []string
	dependents map[string][]string
	order      []string
}

// NewGraph builds the graph from the loaded packages.
// It fails on duplicate names, edges to unknown packages, and dependency cycles.
func NewGraph(packages []Package) (*Graph, error) {
	g := &Graph{
		packages:   make(map[string]Package, len(packages)),
		names:      make([]string, 0, len(packages)),
		dependents: make(map[string][]string, len(packages)),
	}

	for i := range packages {
		pkg := packages[i]
		if existing, ok := g.packages[pkg.Name]; ok {
			err := zerr.With(ErrDuplicatePackageName, "name", pkg.Name)
			err = zerr.With(err, "first_occurrence", existing.Dir)
			return nil, zerr.With(err, "duplicate_at", pkg.Dir)
		}
		deps := slices.Clone(pkg.Dependencies)
		slices.Sort(deps)
		pkg.Dependencies = slices.Compact(deps)
		g.packages[pkg.Name] = pkg
		g.names = append(g.names, pkg.Name)
	}
	slices.Sort(g.names)

	for _, name := range g.names {
		for _, dep := range g.packages[name].Dependencies {
			if _, ok := g.packages[dep]; !ok {
				err := zerr.With(ErrPackageNotFound, "package", dep)
				return nil, zerr.With(err, "required_by", name)
			}
			g.dependents[dep] = append(g.dependents[dep], name)
		}
	}

	if err := g.detectCycles(); err != nil {
		return nil, err
	}

	g.order = g.topologicalOrder()
	return g, nil
}

type frame struct {
	name string
	next int
}

// detectCycles runs an iterative depth-first traversal over all packages.
// visiting holds the nodes on the current stack, visited the finished ones.
func (g *Graph) detectCycles() error {
	visiting := make(map[string]bool, len(g.names))
	visited := make(map[string]bool, len(g.names))

	for _, root := range g.names {
		if visited[root] {
			continue
		}

		stack := []frame{{name: root}}
		visiting[root] = true

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := g.packages[top.name].Dependencies

			if top.next == len(deps) {
				visiting[top.name] = false
				visited[top.name] = true
				stack = stack[:len(stack)-1]
				continue
			}

			dep := deps[top.next]
			top.next++

			switch {
			case visiting[dep]:
				return cycleError(stack, dep)
			case !visited[dep]:
				visiting[dep] = true
				stack = append(stack, frame{name: dep})
			}
		}
	}

	return nil
}

// cycleError builds the CycleDetected error from the traversal stack.
// The members start at the revisited node and follow the dependency edges.
func cycleError(stack []frame, dep string) error {
	start := slices.IndexFunc(stack, func(f frame) bool { return f.name == dep })

	members := make([]string, 0, len(stack)-start)
	for _, f := range stack[start:] {
		members = append(members, f.name)
	}

	path := strings.Join(append(slices.Clone(members), dep), " -> ")
	err := zerr.With(ErrCycleDetected, "cycle", path)
	return zerr.With(err, "members", members)
}

// nameHeap is a min-heap of package names.
type nameHeap []string

func (h nameHeap) Len() int           { return len(h) }
func (h nameHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h nameHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *nameHeap) Push(x any)        { *h = append(*h, x.(string)) }
func (h *nameHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topologicalOrder is Kahn's algorithm where the ready set is drained by name ascending.
func (g *Graph) topologicalOrder() []string {
	remaining := make(map[string]int, len(g.names))
	ready := &nameHeap{}

	for _, name := range g.names {
		remaining[name] = len(g.packages[name].Dependencies)
		if remaining[name] == 0 {
			heap.Push(ready, name)
		}
	}

	order := make([]string, 0, len(g.names))
	for ready.Len() > 0 {
		name := heap.Pop(ready).(string)
		order = append(order, name)

		for _, dependent := range g.dependents[name] {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				heap.Push(ready, dependent)
			}
		}
	}

	return order
}

// OverallBuildOrder returns every package name in dependency order.
// Ties are broken by name ascending, so the order is stable across runs.
func (g *Graph) OverallBuildOrder() []string {
	return slices.Clone(g.order)
}

// DependenciesBuildOrder returns the transitive dependencies of name in build order, excluding name itself.
func (g *Graph) DependenciesBuildOrder(name string) ([]string, error) {
	closure, err := g.closure(name)
	if err != nil {
		return nil, err
	}
	delete(closure, name)
	return g.filterOrder(closure), nil
}

// BuildOrder returns the transitive dependencies of name followed by name itself.
func (g *Graph) BuildOrder(name string) ([]string, error) {
	closure, err := g.closure(name)
	if err != nil {
		return nil, err
	}
	return g.filterOrder(closure), nil
}

func (g *Graph) closure(name string) (map[string]bool, error) {
	if _, ok := g.packages[name]; !ok {
		return nil, zerr.With(ErrPackageNotFound, "package", name)
	}

	seen := map[string]bool{name: true}
	stack := []string{name}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, dep := range g.packages[current].Dependencies {
			if !seen[dep] {
				seen[dep] = true
				stack = append(stack, dep)
			}
		}
	}
	return seen, nil
}

func (g *Graph) filterOrder(include map[string]bool) []string {
	out := make([]string, 0, len(include))
	for _, name := range g.order {
		if include[name] {
			out = append(out, name)
		}
	}
	return out
}

// FindActivePackage returns the package whose directory is the most specific ancestor of cwd.
func (g *Graph) FindActivePackage(cwd string) (Package, bool) {
	cwd = filepath.Clean(cwd)

	var (
		best  Package
		found bool
	)
	for _, name := range g.names {
		pkg := g.packages[name]
		if !containsPath(pkg.Dir, cwd) {
			continue
		}
		if !found || len(pkg.Dir) > len(best.Dir) {
			best, found = pkg, true
		}
	}
	return best, found
}

// containsPath reports whether target is dir or lies below it, on a separator boundary.
func containsPath(dir, target string) bool {
	dir = filepath.Clean(dir)
	if dir == target {
		return true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix += string(os.PathSeparator)
	}
	return strings.HasPrefix(target, prefix)
}

// Package returns the package with the given name.
func (g *Graph) Package(name string) (Package, bool) {
	pkg, ok := g.packages[name]
	return pkg, ok
}

// Packages yields all packages sorted by name.
func (g *Graph) Packages() iter.Seq[Package] {
	return func(yield func(Package) bool) {
		for _, name := range g.names {
			if !yield(g.packages[name]) {
				return
			}
		}
	}
}

// Len returns the number of packages in the graph.
func (g *Graph) Len() int {
	return len(g.names)
}

// Dependents returns the sorted names of packages that depend directly on name.
func (g *Graph) Dependents(name string) []string {
	deps := slices.Clone(g.dependents[name])
	slices.Sort(deps)
	return deps
}

// Print writes one line per package: "name -> dep1, dep2", or just "name" for leaf packages.
func (g *Graph) Print(w io.Writer) error {
	for _, name := range g.names {
		deps := g.packages[name].Dependencies
		line := name
		if len(deps) > 0 {
			line += " -> " + strings.Join(deps, ", ")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return zerr.Wrap(err, "failed to print graph")
		}
	}
	return nil
}

// Fingerprint returns a short digest of the graph topology, used to correlate runs.
func (g *Graph) Fingerprint() string {
	h := xxhash.New()
	for _, name := range g.names {
		_, _ = h.WriteString(name)
		_, _ = h.Write([]byte{0})
		for _, dep := range g.packages[name].Dependencies {
			_, _ = h.WriteString(dep)
			_, _ = h.Write([]byte{0})
		}
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// SortPackages orders packages by name in place.
func SortPackages(packages []Package) {
	slices.SortFunc(packages, func(a, b Package) int { return cmp.Compare(a.Name, b.Name) })
}
