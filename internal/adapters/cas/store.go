// Package cas implements the content-addressable store of package build outputs.
package cas

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/monorun/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CacheStore = (*Store)(nil)

// tmpPrefix marks entries that are still being written.
const tmpPrefix = ".tmp-"

// Store implements ports.CacheStore with one directory per package and hash.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// IsCached reports whether the entry directory exists and is non-empty.
func (s *Store) IsCached(root, name, hash string) bool {
	entry, err := domain.CacheEntryPath(root, name, hash)
	return err == nil && nonEmptyDir(entry)
}

// Restore removes the package output directory and copies the entry into it.
func (s *Store) Restore(root string, pkg *domain.Package, hash string) error {
	entry, err := domain.CacheEntryPath(root, pkg.Name, hash)
	if err != nil {
		return s.restoreErr(zerr.Wrap(err, domain.ErrCacheRestore.Error()), pkg, hash)
	}
	if !nonEmptyDir(entry) {
		return s.restoreErr(zerr.With(domain.ErrCacheRestore, "reason", "entry missing"), pkg, hash)
	}

	out := pkg.OutPath()
	if err := os.RemoveAll(out); err != nil {
		return s.restoreErr(zerr.Wrap(err, domain.ErrCacheRestore.Error()), pkg, hash)
	}
	if err := copyTree(entry, out); err != nil {
		return s.restoreErr(zerr.Wrap(err, domain.ErrCacheRestore.Error()), pkg, hash)
	}
	return nil
}

func (s *Store) restoreErr(err error, pkg *domain.Package, hash string) error {
	return zerr.With(zerr.With(err, "package", pkg.Name), "hash", hash)
}

// Save copies the package output directory into a temporary sibling of the entry and renames it into place.
// An existing entry is left untouched. A missing or empty output directory is an error.
func (s *Store) Save(root string, pkg *domain.Package, hash string) error {
	entry, err := domain.CacheEntryPath(root, pkg.Name, hash)
	if err != nil {
		return s.saveErr(zerr.Wrap(err, domain.ErrCacheSave.Error()), pkg, hash)
	}
	if nonEmptyDir(entry) {
		return nil
	}

	out := pkg.OutPath()
	info, err := os.Stat(out)
	switch {
	case errors.Is(err, fs.ErrNotExist), err == nil && !info.IsDir():
		return s.saveErr(zerr.With(domain.ErrCacheSave, "reason", "output directory missing"), pkg, hash)
	case err != nil:
		return s.saveErr(zerr.Wrap(err, domain.ErrCacheSave.Error()), pkg, hash)
	case !nonEmptyDir(out):
		return s.saveErr(zerr.With(domain.ErrCacheSave, "reason", "output directory empty"), pkg, hash)
	}

	parent := filepath.Dir(entry)
	if err := os.MkdirAll(parent, domain.DirPerm); err != nil {
		return s.saveErr(zerr.Wrap(err, domain.ErrCacheSave.Error()), pkg, hash)
	}

	tmp, err := os.MkdirTemp(parent, tmpPrefix+hash+"-*")
	if err != nil {
		return s.saveErr(zerr.Wrap(err, domain.ErrCacheSave.Error()), pkg, hash)
	}

	if err := s.fill(tmp, out, entry); err != nil {
		_ = os.RemoveAll(tmp)
		if nonEmptyDir(entry) {
			// Another writer won the rename.
			return nil
		}
		return s.saveErr(zerr.Wrap(err, domain.ErrCacheSave.Error()), pkg, hash)
	}
	return nil
}

func (s *Store) fill(tmp, out, entry string) error {
	if err := os.Chmod(tmp, domain.DirPerm); err != nil {
		return err
	}
	if err := copyTree(out, tmp); err != nil {
		return err
	}
	// A leftover empty entry would make the rename fail.
	_ = os.Remove(entry)
	return os.Rename(tmp, entry)
}

func (s *Store) saveErr(err error, pkg *domain.Package, hash string) error {
	return zerr.With(zerr.With(zerr.With(err, "package", pkg.Name), "hash", hash), "out_dir", pkg.Cache.OutDir)
}

// Clean removes the cache directory of the workspace.
func (s *Store) Clean(root string) error {
	if err := os.RemoveAll(domain.CachePath(root)); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheClean.Error()), "path", domain.CachePath(root))
	}
	return nil
}

// Prune removes the entries whose hash is not keep[name], including every entry of packages absent from keep.
// Abandoned temporary directories are removed too but not counted.
func (s *Store) Prune(root string, keep map[string]string) (int, error) {
	names, err := s.entryNames(root)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range names {
		dir := filepath.Join(domain.CachePath(root), filepath.FromSlash(name))
		entries, err := os.ReadDir(dir)
		if err != nil {
			return removed, zerr.With(zerr.Wrap(err, domain.ErrCacheClean.Error()), "path", dir)
		}

		current, known := keep[name]
		for _, e := range entries {
			if known && e.Name() == current {
				continue
			}
			if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
				return removed, zerr.With(zerr.Wrap(err, domain.ErrCacheClean.Error()), "path", filepath.Join(dir, e.Name()))
			}
			if !strings.HasPrefix(e.Name(), tmpPrefix) {
				removed++
			}
		}

		if !known {
			_ = os.Remove(dir)
			if scope, _, ok := strings.Cut(name, "/"); ok {
				// Only succeeds once the scope is empty.
				_ = os.Remove(filepath.Join(domain.CachePath(root), scope))
			}
		}
	}
	return removed, nil
}

// entryNames lists the package names present in the cache, expanding "@scope/name" directories.
func (s *Store) entryNames(root string) ([]string, error) {
	cacheDir := domain.CachePath(root)
	top, err := os.ReadDir(cacheDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheClean.Error()), "path", cacheDir)
	}

	var names []string
	for _, e := range top {
		if !e.IsDir() {
			continue
		}
		if !strings.HasPrefix(e.Name(), "@") {
			names = append(names, e.Name())
			continue
		}
		scoped, err := os.ReadDir(filepath.Join(cacheDir, e.Name()))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheClean.Error()), "path", filepath.Join(cacheDir, e.Name()))
		}
		for _, child := range scoped {
			if child.IsDir() {
				names = append(names, e.Name()+"/"+child.Name())
			}
		}
	}
	return names, nil
}
