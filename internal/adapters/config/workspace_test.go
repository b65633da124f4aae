package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/monorun/internal/adapters/config"
	"go.trai.ch/monorun/internal/adapters/manifest"
	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/monorun/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func newResolver(t *testing.T) *config.WorkspaceResolver {
	t.Helper()
	return config.NewWorkspaceResolver(quietLogger(t), manifest.NewReader())
}

func TestResolve_PnpmWorkspaceWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pnpm-workspace.yaml", "packages:\n  - 'packages/*'\n  - '!packages/legacy'\n")
	writeFile(t, root, "package.json", `{"name": "root", "workspaces": ["apps/*"]}`)
	writeFile(t, root, "yarn.lock", "")

	repo, err := newResolver(t).Resolve(t.Context(), root)
	require.NoError(t, err)

	assert.Equal(t, root, repo.Root)
	assert.Equal(t, domain.PNPM, repo.PackageManager.Name)
	assert.Equal(t, []string{"pnpm", "run"}, repo.PackageManager.RunCommand)
	assert.Equal(t, []string{"packages/*", "!packages/legacy"}, repo.PackageGlobs)
}

func TestResolve_ManifestWorkspaces_LockfileDetection(t *testing.T) {
	tests := []struct {
		name     string
		lockfile string
		want     domain.PackageManagerName
	}{
		{name: "pnpm lockfile", lockfile: "pnpm-lock.yaml", want: domain.PNPM},
		{name: "yarn lockfile", lockfile: "yarn.lock", want: domain.Yarn},
		{name: "bun binary lockfile", lockfile: "bun.lockb", want: domain.Bun},
		{name: "bun text lockfile", lockfile: "bun.lock", want: domain.Bun},
		{name: "npm lockfile", lockfile: "package-lock.json", want: domain.NPM},
		{name: "no lockfile falls back to npm", want: domain.NPM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, root, "package.json", `{"name": "root", "workspaces": ["packages/*"]}`)
			if tt.lockfile != "" {
				writeFile(t, root, tt.lockfile, "")
			}

			repo, err := newResolver(t).Resolve(t.Context(), root)
			require.NoError(t, err)
			assert.Equal(t, tt.want, repo.PackageManager.Name)
			assert.Equal(t, []string{"packages/*"}, repo.PackageGlobs)
		})
	}
}

func TestResolve_WorkspacesObjectForm(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"workspaces": {"packages": ["libs/*"], "nohoist": ["**/x"]}}`)

	repo, err := newResolver(t).Resolve(t.Context(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"libs/*"}, repo.PackageGlobs)
}

func TestResolve_WalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"workspaces": ["packages/*"]}`)
	writeFile(t, root, "packages/ui/package.json", `{"name": "ui"}`)
	writeFile(t, root, "packages/ui/src/index.ts", "")

	repo, err := newResolver(t).Resolve(t.Context(), filepath.Join(root, "packages", "ui", "src"))
	require.NoError(t, err)
	assert.Equal(t, root, repo.Root)
}

func TestResolve_MalformedMarkersAreSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"workspaces": ["packages/*"]}`)
	writeFile(t, root, "packages/bad-yaml/pnpm-workspace.yaml", "packages: [unterminated")
	writeFile(t, root, "packages/bad-yaml/nested/package.json", `{"workspaces": `)
	writeFile(t, root, "packages/bad-yaml/nested/deeper/package.json", `{"workspaces": "packages/*"}`)

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).Times(3)

	resolver := config.NewWorkspaceResolver(log, manifest.NewReader())
	repo, err := resolver.Resolve(t.Context(), filepath.Join(root, "packages", "bad-yaml", "nested", "deeper"))
	require.NoError(t, err)
	assert.Equal(t, root, repo.Root)
}

func TestResolve_ManifestWithoutWorkspacesIsNotAMarker(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pnpm-workspace.yaml", "packages:\n  - apps/*\n")
	writeFile(t, root, "apps/web/package.json", `{"name": "web"}`)

	repo, err := newResolver(t).Resolve(t.Context(), filepath.Join(root, "apps", "web"))
	require.NoError(t, err)
	assert.Equal(t, root, repo.Root)
}

func TestResolve_NotFound(t *testing.T) {
	start := filepath.Join(t.TempDir(), "empty")
	writeFile(t, start, "README.md", "")

	_, err := newResolver(t).Resolve(t.Context(), start)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workspace not found")

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, start, zErr.Metadata()["start"])
}

func TestResolve_Cancelled(t *testing.T) {
	ctx, cancel := contextWithCancel(t)
	cancel()

	_, err := newResolver(t).Resolve(ctx, t.TempDir())
	require.Error(t, err)
}
