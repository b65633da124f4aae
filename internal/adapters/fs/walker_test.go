package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/monorun/internal/adapters/fs"
)

func collect(t *testing.T, w *fs.Walker, root string) []string {
	t.Helper()
	var files []string
	for rel, err := range w.WalkFiles(root) {
		require.NoError(t, err)
		files = append(files, rel)
	}
	return files
}

func TestWalker_WalkFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "file1.txt", "content1")
	writeFile(t, tmpDir, "dir1/file2.txt", "content2")
	writeFile(t, tmpDir, "dir2/nested/file3.txt", "content3")

	files := collect(t, fs.NewWalker(), tmpDir)

	assert.ElementsMatch(t, []string{"file1.txt", "dir1/file2.txt", "dir2/nested/file3.txt"}, files)
}

func TestWalker_WalkFiles_SkipsVCSAndNodeModules(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, ".git/config", "gitconfig")
	writeFile(t, tmpDir, ".jj/store", "jjstore")
	writeFile(t, tmpDir, "node_modules/react/index.js", "module.exports = {}")
	writeFile(t, tmpDir, "src/node_modules/local/index.js", "x")
	writeFile(t, tmpDir, "src/main.ts", "export {}")

	files := collect(t, fs.NewWalker(), tmpDir)

	assert.Equal(t, []string{"src/main.ts"}, files)
}

func TestWalker_WalkFiles_Symlinks(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "src/real.ts", "real")
	require.NoError(t, os.Symlink(filepath.Join(tmpDir, "src", "real.ts"), filepath.Join(tmpDir, "src", "link.ts")))
	require.NoError(t, os.Symlink(filepath.Join(tmpDir, "src"), filepath.Join(tmpDir, "dirlink")))
	require.NoError(t, os.Symlink(filepath.Join(tmpDir, "missing"), filepath.Join(tmpDir, "dangling")))

	files := collect(t, fs.NewWalker(), tmpDir)

	assert.ElementsMatch(t, []string{"src/link.ts", "src/real.ts"}, files)
}

func TestWalker_WalkFiles_EarlyBreak(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "a.txt", "a")
	writeFile(t, tmpDir, "b.txt", "b")

	count := 0
	for _, err := range fs.NewWalker().WalkFiles(tmpDir) {
		require.NoError(t, err)
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestWalker_WalkFiles_MissingRoot(t *testing.T) {
	var gotErr error
	for _, err := range fs.NewWalker().WalkFiles(filepath.Join(t.TempDir(), "missing")) {
		gotErr = err
	}
	assert.Error(t, gotErr)
}
