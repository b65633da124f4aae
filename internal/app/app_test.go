package app_test

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/monorun/internal/adapters/linear"
	"go.trai.ch/monorun/internal/adapters/logger"
	"go.trai.ch/monorun/internal/app"
	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/monorun/internal/core/ports/mocks"
	"go.trai.ch/monorun/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

const root = "/repo"

type appTestMocks struct {
	workspace *mocks.MockWorkspaceResolver
	loader    *mocks.MockPackageLoader
	executor  *mocks.MockExecutor
	store     *mocks.MockCacheStore
	hasher    *mocks.MockHasher
	logger    *mocks.MockLogger
	formatter *fakeFormatter
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
}

type fakeFormatter struct {
	format  logger.Format
	verbose bool
}

func (f *fakeFormatter) SetFormat(format logger.Format) { f.format = format }
func (f *fakeFormatter) SetVerbose(verbose bool)        { f.verbose = verbose }

func setupAppTest(t *testing.T) (*app.App, appTestMocks) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	t.Setenv(domain.GuardEnvVar, "")

	ctrl := gomock.NewController(t)
	m := appTestMocks{
		workspace: mocks.NewMockWorkspaceResolver(ctrl),
		loader:    mocks.NewMockPackageLoader(ctrl),
		executor:  mocks.NewMockExecutor(ctrl),
		store:     mocks.NewMockCacheStore(ctrl),
		hasher:    mocks.NewMockHasher(ctrl),
		logger:    mocks.NewMockLogger(ctrl),
		formatter: &fakeFormatter{},
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
	}
	m.logger.EXPECT().Debug(gomock.Any()).AnyTimes()

	sched := scheduler.NewScheduler(m.executor, m.store, m.hasher, m.logger)
	renderer := linear.NewRenderer(m.stdout, m.stderr)
	a := app.New(m.workspace, m.loader, sched, m.hasher, m.store, m.executor, renderer, m.logger, m.formatter).
		WithOutput(m.stdout, m.stderr)
	return a, m
}

func pkg(name string, deps ...string) domain.Package {
	return domain.Package{
		Dir:          filepath.Join(root, "packages", name),
		Name:         name,
		BuildScript:  "tsc",
		Dependencies: deps,
		Cache:        domain.DefaultCacheConfig(),
	}
}

// expectWorkspace makes the workspace at root hold a, b -> a and c -> b.
func expectWorkspace(m appTestMocks) {
	repo := &domain.Monorepo{
		Root:           root,
		PackageManager: domain.NewPackageManager(domain.PNPM),
		PackageGlobs:   []string{"packages/*"},
		Settings:       domain.DefaultSettings(),
	}
	m.workspace.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(repo, nil)
	m.loader.EXPECT().Load(gomock.Any(), repo).Return([]domain.Package{pkg("a"), pkg("b", "a"), pkg("c", "b")}, nil)
}

func hashByName(m appTestMocks) {
	m.hasher.EXPECT().HashPackage(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p *domain.Package, _ map[string]string) (string, error) {
			return "h-" + p.Name, nil
		},
	).AnyTimes()
}

type dirMatcher struct{ dir string }

func (d dirMatcher) Matches(x any) bool {
	cmd, ok := x.(*domain.Command)
	return ok && cmd.Dir == d.dir
}

func (d dirMatcher) String() string { return "command in " + d.dir }

func inPackage(name string) gomock.Matcher {
	return dirMatcher{dir: filepath.Join(root, "packages", name)}
}

func TestBuild_All(t *testing.T) {
	a, m := setupAppTest(t)
	expectWorkspace(m)
	hashByName(m)

	m.store.EXPECT().IsCached(root, gomock.Any(), gomock.Any()).Return(false).Times(3)
	m.store.EXPECT().Save(root, gomock.Any(), gomock.Any()).Return(nil).Times(3)
	gomock.InOrder(
		m.executor.EXPECT().Execute(gomock.Any(), inPackage("a"), gomock.Any(), gomock.Any()).Return(nil),
		m.executor.EXPECT().Execute(gomock.Any(), inPackage("b"), gomock.Any(), gomock.Any()).Return(nil),
		m.executor.EXPECT().Execute(gomock.Any(), inPackage("c"), gomock.Any(), gomock.Any()).Return(nil),
	)
	m.logger.EXPECT().Info("3 built, 0 cached, 0 with nothing to build")

	err := a.Build(context.Background(), app.BuildOptions{Dir: root, Scope: app.ScopeAll})
	require.NoError(t, err)

	assert.Contains(t, m.stderr.String(), "Planning 3 package(s): a, b, c")
	assert.Contains(t, m.stderr.String(), "✓ c (built in")
}

func TestBuild_Cached(t *testing.T) {
	a, m := setupAppTest(t)
	expectWorkspace(m)
	hashByName(m)

	m.store.EXPECT().IsCached(root, gomock.Any(), gomock.Any()).Return(true).Times(3)
	m.store.EXPECT().Restore(root, gomock.Any(), gomock.Any()).Return(nil).Times(3)
	m.logger.EXPECT().Info("0 built, 3 cached, 0 with nothing to build")

	err := a.Build(context.Background(), app.BuildOptions{Dir: root, Scope: app.ScopeAll})
	require.NoError(t, err)
	assert.Contains(t, m.stderr.String(), "● a (cached)")
}

func TestBuild_ActivePackage(t *testing.T) {
	tests := []struct {
		name  string
		scope app.Scope
		want  []string
	}{
		{name: "build", scope: app.ScopeBuild, want: []string{"a", "b"}},
		{name: "deps", scope: app.ScopeDeps, want: []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, m := setupAppTest(t)
			expectWorkspace(m)
			hashByName(m)

			m.store.EXPECT().IsCached(root, gomock.Any(), gomock.Any()).Return(false).AnyTimes()
			m.store.EXPECT().Save(root, gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
			m.logger.EXPECT().Info(gomock.Any())

			var built []string
			m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, cmd *domain.Command, _, _ io.Writer) error {
					built = append(built, filepath.Base(cmd.Dir))
					return nil
				},
			).Times(len(tt.want))

			dir := filepath.Join(root, "packages", "b", "src")
			err := a.Build(context.Background(), app.BuildOptions{Dir: dir, Scope: tt.scope})
			require.NoError(t, err)
			assert.Equal(t, tt.want, built)
		})
	}
}

func TestBuild_PackagesFlag(t *testing.T) {
	a, m := setupAppTest(t)
	expectWorkspace(m)
	hashByName(m)

	m.store.EXPECT().IsCached(root, gomock.Any(), gomock.Any()).Return(true).Times(2)
	m.store.EXPECT().Restore(root, gomock.Any(), gomock.Any()).Return(nil).Times(2)
	m.logger.EXPECT().Info("0 built, 2 cached, 0 with nothing to build")

	err := a.Build(context.Background(), app.BuildOptions{
		Dir:      root,
		Scope:    app.ScopeBuild,
		Packages: []string{"b", "a"},
	})
	require.NoError(t, err)
	assert.Contains(t, m.stderr.String(), "Planning 2 package(s): a, b")
}

func TestBuild_NoActivePackage(t *testing.T) {
	a, m := setupAppTest(t)
	expectWorkspace(m)

	err := a.Build(context.Background(), app.BuildOptions{Dir: root, Scope: app.ScopeBuild})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no active package")
}

func TestBuild_UnknownPackage(t *testing.T) {
	a, m := setupAppTest(t)
	expectWorkspace(m)

	err := a.Build(context.Background(), app.BuildOptions{Dir: root, Scope: app.ScopeBuild, Packages: []string{"nope"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "package not found")
}

func TestBuild_Failure(t *testing.T) {
	a, m := setupAppTest(t)
	expectWorkspace(m)
	hashByName(m)

	m.store.EXPECT().IsCached(root, "a", "h-a").Return(false)
	m.executor.EXPECT().Execute(gomock.Any(), inPackage("a"), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *domain.Command, stdout, _ io.Writer) error {
			_, _ = io.WriteString(stdout, "error TS2304\n")
			return domain.ErrNoCommand
		})

	err := a.Build(context.Background(), app.BuildOptions{Dir: root, Scope: app.ScopeAll})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build script failed")
	assert.Contains(t, m.stdout.String(), "[a] error TS2304")
	assert.Contains(t, m.stderr.String(), "✗ a (failed after")
}

func TestBuild_Orchestrated(t *testing.T) {
	a, m := setupAppTest(t)
	t.Setenv(domain.GuardEnvVar, domain.GuardEnvValue)

	m.workspace.EXPECT().Resolve(gomock.Any(), gomock.Any()).Times(0)
	m.executor.EXPECT().Execute(gomock.Any(), &domain.Command{Args: []string{"tsc", "-p", "."}, Dir: root}, m.stdout, m.stderr).
		Return(nil)

	err := a.Build(context.Background(), app.BuildOptions{
		Dir:         root,
		Scope:       app.ScopeAll,
		Passthrough: []string{"tsc", "-p", "."},
	})
	require.NoError(t, err)
}

func TestBuild_OrchestratedWithoutCommand(t *testing.T) {
	a, m := setupAppTest(t)
	t.Setenv(domain.GuardEnvVar, domain.GuardEnvValue)

	m.workspace.EXPECT().Resolve(gomock.Any(), gomock.Any()).Times(0)
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	m.logger.EXPECT().Warn(gomock.Any()).Times(1)

	err := a.Build(context.Background(), app.BuildOptions{Dir: root, Scope: app.ScopeBuild})
	require.NoError(t, err)
}

func TestClean(t *testing.T) {
	a, m := setupAppTest(t)
	m.workspace.EXPECT().Resolve(gomock.Any(), root).Return(&domain.Monorepo{Root: root}, nil)
	m.store.EXPECT().Clean(root).Return(nil)
	m.logger.EXPECT().Info("removed " + filepath.Join(root, ".cache"))

	require.NoError(t, a.Clean(context.Background(), app.CleanOptions{Dir: root}))
}

func TestClean_Stale(t *testing.T) {
	a, m := setupAppTest(t)
	expectWorkspace(m)
	hashByName(m)

	m.store.EXPECT().Prune(root, map[string]string{"a": "h-a", "b": "h-b", "c": "h-c"}).Return(2, nil)
	m.logger.EXPECT().Info("removed 2 stale cache entries")

	require.NoError(t, a.Clean(context.Background(), app.CleanOptions{Dir: root, Stale: true}))
}

func TestGraph(t *testing.T) {
	a, m := setupAppTest(t)
	expectWorkspace(m)

	var out bytes.Buffer
	require.NoError(t, a.Graph(context.Background(), root, &out))
	assert.Equal(t, "a\nb -> a\nc -> b\n", out.String())
}

func TestOrder(t *testing.T) {
	tests := []struct {
		name string
		pkg  string
		want string
	}{
		{name: "overall", want: "a\nb\nc\n"},
		{name: "dependencies", pkg: "c", want: "a\nb\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, m := setupAppTest(t)
			expectWorkspace(m)

			var out bytes.Buffer
			require.NoError(t, a.Order(context.Background(), root, tt.pkg, &out))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestHash(t *testing.T) {
	a, m := setupAppTest(t)
	expectWorkspace(m)
	hashByName(m)

	var out bytes.Buffer
	require.NoError(t, a.Hash(context.Background(), root, []string{"b"}, &out))
	assert.Equal(t, "b h-b\n", out.String())
}

func TestSetLogFormat(t *testing.T) {
	a, m := setupAppTest(t)

	require.NoError(t, a.SetLogFormat("json"))
	assert.Equal(t, logger.FormatJSON, m.formatter.format)

	err := a.SetLogFormat("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestSetVerbose(t *testing.T) {
	a, m := setupAppTest(t)

	a.SetVerbose(true)
	assert.True(t, m.formatter.verbose)
}
