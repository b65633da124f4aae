package config_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/monorun/internal/adapters/config"
	"go.trai.ch/monorun/internal/adapters/manifest"
	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/monorun/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func contextWithCancel(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithCancel(t.Context())
}

func TestResolve_Settings(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"workspaces": ["packages/*"]}`)
	writeFile(t, root, "package-lock.json", "{}")
	writeFile(t, root, "monorun.toml", `
package_manager = "yarn"
concurrency = 4

[cache]
enabled = false
out_dir = "build"
exclude = ["**/*.stories.*"]
`)

	repo, err := newResolver(t).Resolve(t.Context(), root)
	require.NoError(t, err)

	assert.Equal(t, domain.Yarn, repo.PackageManager.Name)
	assert.Equal(t, 4, repo.Settings.Concurrency)
	assert.False(t, repo.Settings.Cache.Enabled)
	assert.Equal(t, "build", repo.Settings.Cache.OutDir)
	assert.Equal(t, []string{"src/**/*"}, repo.Settings.Cache.Include)
	assert.Contains(t, repo.Settings.Cache.Exclude, "**/node_modules/**")
	assert.Contains(t, repo.Settings.Cache.Exclude, "**/*.stories.*")
}

func TestResolve_Settings_UnknownKeyWarns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"workspaces": ["packages/*"]}`)
	writeFile(t, root, "monorun.toml", "colour = true\n")

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).Times(1)

	_, err := config.NewWorkspaceResolver(log, manifest.NewReader()).Resolve(t.Context(), root)
	require.NoError(t, err)
}

func TestResolve_Settings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "syntax error", content: "package_manager = ", want: "invalid workspace settings"},
		{name: "unknown package manager", content: `package_manager = "deno"`, want: "invalid package manager"},
		{name: "negative concurrency", content: "concurrency = -1", want: "invalid workspace settings"},
		{name: "escaping out_dir", content: "[cache]\nout_dir = \"../outside\"", want: "invalid workspace settings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, root, "package.json", `{"workspaces": ["packages/*"]}`)
			writeFile(t, root, "monorun.toml", tt.content)

			_, err := newResolver(t).Resolve(t.Context(), root)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
