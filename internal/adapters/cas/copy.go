package cas

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/zerr"
)

// copyTree copies the directory src into dst, creating dst if needed.
// Regular files keep their permission bits and symlinks are recreated as links.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return os.MkdirAll(target, domain.DirPerm)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return copyFile(path, target, info.Mode().Perm())
		default:
			return zerr.With(zerr.New("unsupported file type"), "path", path)
		}
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src) //nolint:gosec // Path comes from walking a trusted directory
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // Best effort close in defer

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm) //nolint:gosec // Path is below a trusted directory
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// nonEmptyDir reports whether path is a directory with at least one entry.
func nonEmptyDir(path string) bool {
	f, err := os.Open(path) //nolint:gosec // Path is constructed from the cache layout
	if err != nil {
		return false
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	names, err := f.Readdirnames(1)
	return err == nil && len(names) > 0
}
