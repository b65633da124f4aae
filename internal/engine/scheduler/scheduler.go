// Package scheduler builds the packages of a plan in dependency order.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/monorun/internal/core/ports"
	"go.trai.ch/zerr"
)

// Scheduler executes build plans against the cache.
type Scheduler struct {
	executor ports.Executor
	store    ports.CacheStore
	hasher   ports.Hasher
	logger   ports.Logger
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(
	executor ports.Executor,
	store ports.CacheStore,
	hasher ports.Hasher,
	logger ports.Logger,
) *Scheduler {
	return &Scheduler{
		executor: executor,
		store:    store,
		hasher:   hasher,
		logger:   logger,
	}
}

// Options configure a single run.
type Options struct {
	// Root is the workspace root holding the cache directory.
	Root string

	// PackageManager runs the build scripts.
	PackageManager domain.PackageManager

	// Concurrency is the number of packages built at once. Values below one mean one.
	Concurrency int

	// RunID and Fingerprint are attached to every package span.
	RunID       string
	Fingerprint string

	// Tracer receives one span per package. It is required.
	Tracer ports.Tracer
}

// Result lists the packages of a run by outcome, in completion order.
type Result struct {
	Built   []string
	Cached  []string
	Skipped []string
}

// Run processes every package of order. A package starts only after all of its
// dependencies in order have finished. The first failure stops scheduling, and Run
// waits for packages already started before returning it.
func (s *Scheduler) Run(
	ctx context.Context,
	graph *domain.Graph,
	order []string,
	opts Options,
) (*Result, error) {
	state, err := s.newRunState(ctx, graph, order, opts)
	if err != nil {
		return nil, err
	}
	defer state.cancel()

	opts.Tracer.EmitPlan(ctx, state.plan)

	return state.runExecutionLoop()
}

type result struct {
	name   string
	status domain.BuildStatus
	err    error
}

type schedulerRunState struct {
	s      *Scheduler
	graph  *domain.Graph
	opts   Options
	memo   *HashMemo
	plan   []string
	pos    map[string]int
	ctx    context.Context
	cancel context.CancelFunc

	inDegree  map[string]int
	ready     []string
	active    int
	resultsCh chan result
	err       error
	res       *Result
}

func (s *Scheduler) newRunState(
	ctx context.Context,
	graph *domain.Graph,
	order []string,
	opts Options,
) (*schedulerRunState, error) {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	plan := make([]string, 0, len(order))
	pos := make(map[string]int, len(order))
	for _, name := range order {
		if _, dup := pos[name]; dup {
			continue
		}
		if _, ok := graph.Package(name); !ok {
			return nil, zerr.With(domain.ErrPackageNotFound, "package", name)
		}
		pos[name] = len(plan)
		plan = append(plan, name)
	}

	inDegree := make(map[string]int, len(plan))
	var ready []string
	for _, name := range plan {
		pkg, _ := graph.Package(name)
		degree := 0
		for _, dep := range pkg.Dependencies {
			if _, ok := pos[dep]; ok {
				degree++
			}
		}
		inDegree[name] = degree
		if degree == 0 {
			ready = append(ready, name)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)

	return &schedulerRunState{
		s:         s,
		graph:     graph,
		opts:      opts,
		memo:      NewHashMemo(s.hasher, graph),
		plan:      plan,
		pos:       pos,
		ctx:       runCtx,
		cancel:    cancel,
		inDegree:  inDegree,
		ready:     ready,
		resultsCh: make(chan result, opts.Concurrency),
		res:       &Result{},
	}, nil
}

func (state *schedulerRunState) isDone() bool {
	return state.active == 0 && (len(state.ready) == 0 || state.stopped())
}

func (state *schedulerRunState) stopped() bool {
	return state.err != nil || state.ctx.Err() != nil
}

func (state *schedulerRunState) runExecutionLoop() (*Result, error) {
	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		state.handleResult(<-state.resultsCh)
	}

	if state.err != nil {
		return state.res, state.err
	}
	if err := state.ctx.Err(); err != nil {
		return state.res, err
	}
	return state.res, nil
}

// schedule dispatches ready packages in plan order up to the concurrency limit.
func (state *schedulerRunState) schedule() {
	for len(state.ready) > 0 && state.active < state.opts.Concurrency && !state.stopped() {
		name := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		go state.executePackage(name)
	}
}

func (state *schedulerRunState) executePackage(name string) {
	// The span ends before the result is sent so renderers see completion first.
	res := func() result {
		ctx, span := state.opts.Tracer.Start(state.ctx, name,
			ports.WithAttribute(domain.AttrPackage, name),
			ports.WithAttribute(domain.AttrRunID, state.opts.RunID),
			ports.WithAttribute(domain.AttrGraph, state.opts.Fingerprint),
		)
		defer span.End()

		status, err := state.process(ctx, name, span)
		span.SetAttribute(domain.AttrStatus, string(status))
		if err != nil {
			span.RecordError(err)
		}
		return result{name: name, status: status, err: err}
	}()

	state.resultsCh <- res
}

func (state *schedulerRunState) process(ctx context.Context, name string, span ports.Span) (domain.BuildStatus, error) {
	pkg, _ := state.graph.Package(name)
	log := state.s.logger

	if !pkg.HasBuildScript() {
		log.Debug(fmt.Sprintf("%s has no build script", name))
		return domain.StatusSkipped, nil
	}

	if !pkg.Cache.Enabled {
		log.Debug(fmt.Sprintf("cache disabled for %s", name))
		if err := state.build(ctx, &pkg, span); err != nil {
			return domain.StatusFailed, err
		}
		return domain.StatusBuilt, nil
	}

	hash, err := state.memo.Hash(ctx, name)
	if err != nil {
		return domain.StatusFailed, zerr.With(err, "package", name)
	}
	span.SetAttribute(domain.AttrHash, hash)

	if state.s.store.IsCached(state.opts.Root, name, hash) {
		err := state.s.store.Restore(state.opts.Root, &pkg, hash)
		if err == nil {
			log.Debug(fmt.Sprintf("restored %s from %s", name, hash))
			return domain.StatusCached, nil
		}
		log.Warn(fmt.Sprintf("rebuilding %s: %v", name, err))
	}

	if err := state.build(ctx, &pkg, span); err != nil {
		return domain.StatusFailed, err
	}

	if err := state.s.store.Save(state.opts.Root, &pkg, hash); err != nil {
		log.Warn(fmt.Sprintf("not caching %s: %v", name, err))
	}
	return domain.StatusBuilt, nil
}

// build runs the package build script with the recursion guard set.
func (state *schedulerRunState) build(ctx context.Context, pkg *domain.Package, span ports.Span) error {
	cmd := &domain.Command{
		Args: state.opts.PackageManager.ScriptCommand(domain.BuildScriptName),
		Dir:  pkg.Dir,
		Env:  []string{domain.GuardEnv()},
	}

	err := state.s.executor.Execute(ctx, cmd, span, span)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	wrapped := zerr.With(zerr.Wrap(err, domain.ErrBuildScriptFailed.Error()), "package", pkg.Name)
	return zerr.With(wrapped, "exit_code", exitCode(err))
}

func (state *schedulerRunState) handleResult(res result) {
	state.active--

	if res.err != nil {
		// Packages cancelled by an earlier failure are not reported again.
		if state.err == nil && !errors.Is(res.err, context.Canceled) {
			state.err = res.err
		}
		state.cancel()
		return
	}

	switch res.status {
	case domain.StatusBuilt:
		state.res.Built = append(state.res.Built, res.name)
	case domain.StatusCached:
		state.res.Cached = append(state.res.Cached, res.name)
	case domain.StatusSkipped:
		state.res.Skipped = append(state.res.Skipped, res.name)
	}

	state.handleSuccess(res.name)
}

func (state *schedulerRunState) handleSuccess(name string) {
	for _, dep := range state.graph.Dependents(name) {
		if _, ok := state.inDegree[dep]; !ok {
			continue
		}
		state.inDegree[dep]--
		if state.inDegree[dep] == 0 {
			state.ready = append(state.ready, dep)
		}
	}

	slices.SortFunc(state.ready, func(a, b string) int {
		return state.pos[a] - state.pos[b]
	})
}

// exitCode reads the exit code attached by the executor, or -1.
func exitCode(err error) any {
	var zErr *zerr.Error
	if errors.As(err, &zErr) {
		if code, ok := zErr.Metadata()["exit_code"]; ok {
			return code
		}
	}
	return -1
}
