package fs

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/monorun/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements the InputResolver interface with doublestar globs over a walked tree.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// ResolveInputs returns the files below dir matched by include and not matched by exclude.
// Patterns are slash-separated and relative to dir; a leading "./" is ignored.
func (r *Resolver) ResolveInputs(dir string, include, exclude []string) ([]string, error) {
	include, err := cleanPatterns(include)
	if err != nil {
		return nil, err
	}
	exclude, err = cleanPatterns(exclude)
	if err != nil {
		return nil, err
	}

	var files []string
	for rel, err := range r.walker.WalkFiles(dir) {
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to walk package inputs"), "dir", dir)
		}
		if matchAny(include, rel) && !matchAny(exclude, rel) {
			files = append(files, rel)
		}
	}

	slices.Sort(files)
	return files, nil
}

func cleanPatterns(patterns []string) ([]string, error) {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		clean := strings.TrimPrefix(filepath.ToSlash(p), "./")
		if !doublestar.ValidatePattern(clean) {
			return nil, zerr.With(zerr.New("invalid input pattern"), "pattern", p)
		}
		out = append(out, clean)
	}
	return out, nil
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if doublestar.MatchUnvalidated(p, rel) {
			return true
		}
	}
	return false
}
