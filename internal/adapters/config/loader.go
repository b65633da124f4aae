package config

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/monorun/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PackageLoader = (*Loader)(nil)

// Loader implements ports.PackageLoader by expanding the workspace globs to package.json files.
type Loader struct {
	Logger ports.Logger
	Reader ports.ManifestReader
}

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger, reader ports.ManifestReader) *Loader {
	return &Loader{Logger: logger, Reader: reader}
}

// Load reads every manifest matched by repo.PackageGlobs.
// Unreadable and nameless manifests are skipped with a warning. Duplicate names are an error.
func (l *Loader) Load(ctx context.Context, repo *domain.Monorepo) ([]domain.Package, error) {
	manifests, err := l.expand(repo)
	if err != nil {
		return nil, err
	}

	base := repo.Settings.Cache
	if base.OutDir == "" {
		base = domain.DefaultCacheConfig()
	}

	seen := make(map[string]string, len(manifests))
	packages := make([]domain.Package, 0, len(manifests))

	for _, rel := range manifests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		abs := filepath.Join(repo.Root, filepath.FromSlash(rel))
		relDir := path.Dir(rel)

		raw, err := l.Reader.Read(abs)
		if err != nil {
			l.Logger.Warn(fmt.Sprintf("skipping %s: %v", rel, err))
			continue
		}

		pkg, warnings, err := decodePackage(filepath.Dir(abs), raw, base)
		if err != nil {
			l.Logger.Warn(fmt.Sprintf("skipping %s: %v", rel, err))
			continue
		}
		for _, w := range warnings {
			l.Logger.Warn(w)
		}

		if first, ok := seen[pkg.Name]; ok {
			err := zerr.With(domain.ErrDuplicatePackageName, "name", pkg.Name)
			err = zerr.With(err, "first_occurrence", first)
			return nil, zerr.With(err, "duplicate_at", relDir)
		}
		seen[pkg.Name] = relDir

		packages = append(packages, pkg)
	}

	domain.SortPackages(packages)
	l.Logger.Debug(fmt.Sprintf("loaded %d package(s) from %d manifest(s)", len(packages), len(manifests)))
	return packages, nil
}

// expand resolves the package globs to slash-separated manifest paths relative to the root.
// Globs starting with "!" remove the package directories they match.
func (l *Loader) expand(repo *domain.Monorepo) ([]string, error) {
	fsys := os.DirFS(repo.Root)

	var include, exclude []string
	for _, glob := range repo.PackageGlobs {
		glob = strings.TrimSpace(glob)
		if neg, ok := strings.CutPrefix(glob, "!"); ok {
			exclude = append(exclude, cleanGlob(neg))
			continue
		}
		if glob != "" {
			include = append(include, cleanGlob(glob))
		}
	}

	found := make(map[string]bool)
	for _, glob := range include {
		pattern := domain.ManifestFileName
		if glob != "." {
			pattern = glob + "/" + domain.ManifestFileName
		}

		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			l.Logger.Warn(fmt.Sprintf("ignoring invalid package glob %q: %v", glob, err))
			continue
		}

		for _, m := range matches {
			if insideNodeModules(m) || excluded(path.Dir(m), exclude) {
				continue
			}
			found[m] = true
		}
	}

	manifests := make([]string, 0, len(found))
	for m := range found {
		manifests = append(manifests, m)
	}
	slices.Sort(manifests)
	return manifests, nil
}

func cleanGlob(glob string) string {
	glob = strings.TrimPrefix(filepath.ToSlash(glob), "./")
	glob = strings.TrimSuffix(glob, "/")
	if glob == "" {
		return "."
	}
	return glob
}

func excluded(dir string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, dir); ok {
			return true
		}
	}
	return false
}

func insideNodeModules(rel string) bool {
	return slices.Contains(strings.Split(rel, "/"), "node_modules")
}
