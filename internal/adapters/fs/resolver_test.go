package fs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/monorun/internal/adapters/fs"
	"go.trai.ch/monorun/internal/core/domain"
)

func TestResolver_ResolveInputs_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"name": "ui"}`)
	writeFile(t, dir, "src/index.ts", "index")
	writeFile(t, dir, "src/components/button.tsx", "button")
	writeFile(t, dir, "src/components/button.test.tsx", "test")
	writeFile(t, dir, "src/components/button.spec.ts", "spec")
	writeFile(t, dir, "src/__tests__/fixture.ts", "fixture")
	writeFile(t, dir, "src/coverage/lcov.info", "lcov")
	writeFile(t, dir, "src/dist/stale.js", "stale")
	writeFile(t, dir, "dist/index.js", "built")
	writeFile(t, dir, "README.md", "readme")

	cfg := domain.DefaultCacheConfig()
	files, err := fs.NewResolver(fs.NewWalker()).ResolveInputs(dir, cfg.Include, cfg.Exclude)
	require.NoError(t, err)

	assert.Equal(t, []string{"src/components/button.tsx", "src/index.ts"}, files)
}

func TestResolver_ResolveInputs_CustomPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", "{}")
	writeFile(t, dir, "lib/a.ts", "a")
	writeFile(t, dir, "lib/deep/b.ts", "b")
	writeFile(t, dir, "lib/deep/b.snap", "snap")
	writeFile(t, dir, "src/ignored.ts", "ignored")

	files, err := fs.NewResolver(fs.NewWalker()).ResolveInputs(dir,
		[]string{"./lib/**", "package.json", "missing/**"},
		[]string{"**/*.snap"},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"lib/a.ts", "lib/deep/b.ts", "package.json"}, files)
}

func TestResolver_ResolveInputs_NoMatches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", "{}")

	files, err := fs.NewResolver(fs.NewWalker()).ResolveInputs(dir, []string{"src/**/*"}, nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestResolver_ResolveInputs_InvalidPattern(t *testing.T) {
	dir := t.TempDir()

	_, err := fs.NewResolver(fs.NewWalker()).ResolveInputs(dir, []string{"src/[a"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input pattern")

	_, err = fs.NewResolver(fs.NewWalker()).ResolveInputs(dir, []string{"src/**"}, []string{"{a,b"})
	require.Error(t, err)
}
