package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"

	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/monorun/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes package content hashes from tracked files and dependency hashes.
type Hasher struct {
	resolver ports.InputResolver
	limit    int
}

// NewHasher creates a new Hasher that digests up to GOMAXPROCS files at once.
func NewHasher(resolver ports.InputResolver) *Hasher {
	return &Hasher{resolver: resolver, limit: runtime.GOMAXPROCS(0)}
}

// HashPackage returns the hex sha256 over each tracked file as path NUL content-digest,
// followed by name NUL hash NUL for every direct dependency in name order.
// Modification times and the package's own output directory never contribute.
func (h *Hasher) HashPackage(ctx context.Context, pkg *domain.Package, depHashes map[string]string) (string, error) {
	files, err := h.resolver.ResolveInputs(pkg.Dir, pkg.Cache.Include, excludes(pkg))
	if err != nil {
		return "", zerr.With(err, "package", pkg.Name)
	}

	digests, err := h.digestFiles(ctx, pkg.Dir, files)
	if err != nil {
		return "", zerr.With(err, "package", pkg.Name)
	}

	sum := sha256.New()
	for i, rel := range files {
		writeField(sum, rel)
		_, _ = sum.Write(digests[i][:])
	}

	for _, dep := range pkg.Dependencies {
		depHash, ok := depHashes[dep]
		if !ok {
			err := zerr.With(domain.ErrMissingDependencyHash, "package", pkg.Name)
			return "", zerr.With(err, "dependency", dep)
		}
		writeField(sum, dep)
		writeField(sum, depHash)
	}

	return hex.EncodeToString(sum.Sum(nil)), nil
}

// digestFiles hashes the files in parallel; the result is indexed like files.
func (h *Hasher) digestFiles(ctx context.Context, dir string, files []string) ([][sha256.Size]byte, error) {
	digests := make([][sha256.Size]byte, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(h.limit)
	for i, rel := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := fileDigest(filepath.Join(dir, filepath.FromSlash(rel)))
			if err != nil {
				return err
			}
			digests[i] = d
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return digests, nil
}

// excludes adds the output directory to the configured excludes so a build never changes its own hash.
func excludes(pkg *domain.Package) []string {
	if pkg.Cache.OutDir == "" {
		return pkg.Cache.Exclude
	}
	return append(slices.Clone(pkg.Cache.Exclude), path.Join(filepath.ToSlash(pkg.Cache.OutDir), "**"))
}

func fileDigest(path string) ([sha256.Size]byte, error) {
	var d [sha256.Size]byte

	f, err := os.Open(path) //nolint:gosec // Path comes from the resolved package inputs
	if err != nil {
		return d, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	sum := sha256.New()
	if _, err := io.Copy(sum, f); err != nil {
		return d, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}
	copy(d[:], sum.Sum(nil))
	return d, nil
}

func writeField(h hash.Hash, s string) {
	_, _ = io.WriteString(h, s)
	_, _ = h.Write([]byte{0})
}
