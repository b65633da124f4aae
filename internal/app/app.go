// Package app implements the application layer for monorun.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/monorun/internal/adapters/detector"
	"go.trai.ch/monorun/internal/adapters/logger"
	"go.trai.ch/monorun/internal/adapters/telemetry"
	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/monorun/internal/core/ports"
	"go.trai.ch/monorun/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// LogFormatter switches the output format and level of the logger.
type LogFormatter interface {
	SetFormat(f logger.Format)
	SetVerbose(verbose bool)
}

// App represents the main application logic.
type App struct {
	workspace ports.WorkspaceResolver
	loader    ports.PackageLoader
	scheduler *scheduler.Scheduler
	hasher    ports.Hasher
	store     ports.CacheStore
	executor  ports.Executor
	renderer  ports.Renderer
	logger    ports.Logger
	formatter LogFormatter

	stdout io.Writer
	stderr io.Writer
}

// New creates a new App instance.
func New(
	workspace ports.WorkspaceResolver,
	loader ports.PackageLoader,
	sched *scheduler.Scheduler,
	hasher ports.Hasher,
	store ports.CacheStore,
	executor ports.Executor,
	renderer ports.Renderer,
	log ports.Logger,
	formatter LogFormatter,
) *App {
	return &App{
		workspace: workspace,
		loader:    loader,
		scheduler: sched,
		hasher:    hasher,
		store:     store,
		executor:  executor,
		renderer:  renderer,
		logger:    log,
		formatter: formatter,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
}

// WithOutput sets the writers used by passthrough commands.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// SetLogFormat applies a --log-format value: auto, pretty or json.
func (a *App) SetLogFormat(flag string) error {
	format, err := detector.ResolveLogFormat(detector.DetectLogFormat(), flag)
	if err != nil {
		return err
	}
	a.formatter.SetFormat(format)
	return nil
}

// SetVerbose enables debug logging.
func (a *App) SetVerbose(verbose bool) {
	a.formatter.SetVerbose(verbose)
}

// workspaceState is a resolved workspace and its validated graph.
type workspaceState struct {
	repo  *domain.Monorepo
	graph *domain.Graph
}

// load resolves the workspace containing dir and builds its dependency graph.
func (a *App) load(ctx context.Context, dir string) (*workspaceState, error) {
	repo, err := a.workspace.Resolve(ctx, dir)
	if err != nil {
		return nil, err
	}

	packages, err := a.loader.Load(ctx, repo)
	if err != nil {
		return nil, err
	}

	graph, err := domain.NewGraph(packages)
	if err != nil {
		return nil, err
	}

	a.logger.Debug(fmt.Sprintf("loaded %d package(s), graph %s", graph.Len(), graph.Fingerprint()))
	return &workspaceState{repo: repo, graph: graph}, nil
}

// BuildOptions configure Build.
type BuildOptions struct {
	// Dir is the working directory. Empty means the process working directory.
	Dir string

	// Scope selects which part of the graph is built.
	Scope Scope

	// Packages replace the active package when set. Their orders are merged.
	Packages []string

	// Concurrency overrides the workspace setting when positive.
	Concurrency int

	// Passthrough is the command run instead of the build when the recursion guard is set.
	Passthrough []string
}

// Build builds the selected scope. Inside an orchestrated build script it runs
// opts.Passthrough instead, without touching the graph or the cache.
func (a *App) Build(ctx context.Context, opts BuildOptions) error {
	dir, err := workingDir(opts.Dir)
	if err != nil {
		return err
	}

	if domain.IsOrchestrated(os.Getenv) {
		return a.passthrough(ctx, dir, opts.Passthrough)
	}

	ws, err := a.load(ctx, dir)
	if err != nil {
		return err
	}

	order, err := plan(ws.graph, opts.Scope, opts.Packages, dir)
	if err != nil {
		return err
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = max(ws.repo.Settings.Concurrency, 1)
	}

	provider := setupOTel(a.renderer)
	defer func() {
		_ = provider.Shutdown(context.WithoutCancel(ctx))
	}()

	tracer := telemetry.NewOTelTracer(
		telemetry.WithProvider(provider),
		telemetry.WithRenderer(a.renderer),
	)

	runID := uuid.NewString()
	a.logger.Debug(fmt.Sprintf("run %s: %d package(s), concurrency %d", runID, len(order), concurrency))

	res, err := a.scheduler.Run(ctx, ws.graph, order, scheduler.Options{
		Root:           ws.repo.Root,
		PackageManager: ws.repo.PackageManager,
		Concurrency:    concurrency,
		RunID:          runID,
		Fingerprint:    ws.graph.Fingerprint(),
		Tracer:         tracer,
	})
	if err != nil {
		return err
	}

	if len(order) > 0 {
		a.logger.Info(fmt.Sprintf("%d built, %d cached, %d with nothing to build",
			len(res.Built), len(res.Cached), len(res.Skipped)))
	}
	return nil
}

// passthrough runs the literal command given after "--".
func (a *App) passthrough(ctx context.Context, dir string, args []string) error {
	if len(args) == 0 {
		a.logger.Warn(domain.GuardEnvVar + " is set but no command was given after --, nothing to run")
		return nil
	}

	a.logger.Debug(fmt.Sprintf("orchestrated, running %s", strings.Join(args, " ")))
	return a.executor.Execute(ctx, &domain.Command{Args: args, Dir: dir}, a.stdout, a.stderr)
}

// CleanOptions configure Clean.
type CleanOptions struct {
	Dir string

	// Stale keeps the entries matching the current hashes and removes the rest.
	Stale bool
}

// Clean removes the workspace cache, or only its stale entries.
func (a *App) Clean(ctx context.Context, opts CleanOptions) error {
	dir, err := workingDir(opts.Dir)
	if err != nil {
		return err
	}

	if !opts.Stale {
		repo, err := a.workspace.Resolve(ctx, dir)
		if err != nil {
			return err
		}
		if err := a.store.Clean(repo.Root); err != nil {
			return err
		}
		a.logger.Info("removed " + domain.CachePath(repo.Root))
		return nil
	}

	ws, err := a.load(ctx, dir)
	if err != nil {
		return err
	}

	memo := scheduler.NewHashMemo(a.hasher, ws.graph)
	for _, name := range ws.graph.OverallBuildOrder() {
		if _, err := memo.Hash(ctx, name); err != nil {
			return zerr.With(err, "package", name)
		}
	}

	removed, err := a.store.Prune(ws.repo.Root, memo.Hashes())
	if err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("removed %d stale cache entr%s", removed, plural(removed, "y", "ies")))
	return nil
}

// Graph prints the adjacency list of the workspace.
func (a *App) Graph(ctx context.Context, dir string, w io.Writer) error {
	ws, err := a.loadFrom(ctx, dir)
	if err != nil {
		return err
	}
	return ws.graph.Print(w)
}

// Order prints the overall build order, or the order of the dependencies of name.
func (a *App) Order(ctx context.Context, dir, name string, w io.Writer) error {
	ws, err := a.loadFrom(ctx, dir)
	if err != nil {
		return err
	}

	order := ws.graph.OverallBuildOrder()
	if name != "" {
		if order, err = ws.graph.DependenciesBuildOrder(name); err != nil {
			return err
		}
	}

	for _, n := range order {
		if _, err := fmt.Fprintln(w, n); err != nil {
			return zerr.Wrap(err, "failed to print order")
		}
	}
	return nil
}

// Hash prints "name hash" for every package, or only for packages, in overall order.
func (a *App) Hash(ctx context.Context, dir string, packages []string, w io.Writer) error {
	ws, err := a.loadFrom(ctx, dir)
	if err != nil {
		return err
	}

	wanted := make(map[string]bool, len(packages))
	for _, name := range packages {
		if _, ok := ws.graph.Package(name); !ok {
			return zerr.With(domain.ErrPackageNotFound, "package", name)
		}
		wanted[name] = true
	}

	memo := scheduler.NewHashMemo(a.hasher, ws.graph)
	for _, name := range ws.graph.OverallBuildOrder() {
		if len(wanted) > 0 && !wanted[name] {
			continue
		}
		h, err := memo.Hash(ctx, name)
		if err != nil {
			return zerr.With(err, "package", name)
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", name, h); err != nil {
			return zerr.Wrap(err, "failed to print hashes")
		}
	}
	return nil
}

func (a *App) loadFrom(ctx context.Context, dir string) (*workspaceState, error) {
	dir, err := workingDir(dir)
	if err != nil {
		return nil, err
	}
	return a.load(ctx, dir)
}

// setupOTel registers a tracer provider that reports spans to the renderer.
func setupOTel(renderer ports.Renderer) *sdktrace.TracerProvider {
	tp := telemetry.NewProvider(renderer)
	otel.SetTracerProvider(tp)
	return tp
}

func workingDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", zerr.Wrap(err, "failed to get working directory")
	}
	return wd, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
