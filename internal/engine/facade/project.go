// Package facade implements the cache nodes of semantic analysis and the
// per-request views bound to them.
package facade

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.trai.ch/facades/internal/core/domain"
	"go.trai.ch/facades/internal/core/ports"
	"go.trai.ch/facades/internal/engine/builtins"
	"go.trai.ch/facades/internal/engine/globalctx"
	"go.trai.ch/facades/internal/engine/tracker"
	"go.trai.ch/zerr"
)

// maxReuseDepth bounds upstream chains; real chains are at most a handful long.
const maxReuseDepth = 64

// Config describes a project facade.
type Config struct {
	DebugString       string
	ResolverDebugName string
	GlobalContext     *globalctx.Context
	Settings          domain.PlatformAnalysisSettings

	// ModuleFilter selects the modules this facade is authoritative for.
	ModuleFilter func(domain.ModuleInfo) bool
	// AllModules optionally narrows the filter to an explicit module set.
	AllModules []domain.ModuleInfo

	// SyntheticModule and SyntheticFiles bind in-memory files to one module.
	SyntheticModule domain.ModuleInfo
	SyntheticFiles  []*domain.File

	ReuseDataFrom    *Project
	Dependencies     []ports.ModificationTracker
	InvalidateOnOOCB bool
	// OutOfCodeBlock is added to the dependencies when InvalidateOnOOCB is set.
	OutOfCodeBlock ports.ModificationTracker

	BuiltIns *builtins.Cache
	Analyzer ports.Analyzer
	Tracer   ports.Tracer
}

// Project is the cache node of semantic analysis. It owns or shares a global
// context, answers for the modules its filter selects, and delegates every other
// module to its upstream.
type Project struct {
	cfg     Config
	owner   globalctx.Owner
	deps    []ports.ModificationTracker
	created tracker.Snapshot

	mu         sync.Mutex
	current    tracker.Snapshot
	generation uint64
	disposed   bool
}

// New validates the configuration and creates the facade.
func New(cfg Config) (*Project, error) {
	if cfg.GlobalContext == nil {
		return nil, zerr.With(zerr.New("facade requires a global context"), "facade", cfg.DebugString)
	}
	if cfg.ModuleFilter == nil {
		return nil, zerr.With(zerr.New("facade requires a module filter"), "facade", cfg.DebugString)
	}
	if cfg.Analyzer == nil {
		return nil, zerr.With(zerr.New("facade requires an analyzer"), "facade", cfg.DebugString)
	}
	if err := validateUpstream(cfg); err != nil {
		return nil, err
	}

	deps := slices.Clone(cfg.Dependencies)
	if cfg.InvalidateOnOOCB {
		deps = append(deps, cfg.OutOfCodeBlock)
	}
	deps = append(deps, cfg.GlobalContext.ExceptionTracker())

	snap := tracker.Take(deps...)
	return &Project{
		cfg:        cfg,
		owner:      cfg.GlobalContext.Storage().Register(),
		deps:       snap.Trackers(),
		created:    snap,
		current:    snap,
		generation: 1,
	}, nil
}

func validateUpstream(cfg Config) error {
	up := cfg.ReuseDataFrom
	if up == nil {
		return nil
	}
	if !cfg.GlobalContext.IsDescendantOf(up.cfg.GlobalContext) {
		err := domain.Annotate(domain.ErrContextNotDerived, "facade", cfg.DebugString)
		return zerr.With(err, "upstream", up.cfg.DebugString)
	}

	seen := make(map[*Project]struct{})
	for cur := up; cur != nil; cur = cur.cfg.ReuseDataFrom {
		if _, ok := seen[cur]; ok || len(seen) >= maxReuseDepth {
			return domain.Annotate(domain.ErrReuseCycle, "facade", cfg.DebugString)
		}
		seen[cur] = struct{}{}
	}
	return nil
}

// DebugString returns the diagnostic label.
func (p *Project) DebugString() string { return p.cfg.DebugString }

// ResolverDebugName returns the diagnostic resolver name.
func (p *Project) ResolverDebugName() string { return p.cfg.ResolverDebugName }

// Settings returns the settings partition of the facade.
func (p *Project) Settings() domain.PlatformAnalysisSettings { return p.cfg.Settings }

// GlobalContext returns the facade's context.
func (p *Project) GlobalContext() *globalctx.Context { return p.cfg.GlobalContext }

// ReuseDataFrom returns the upstream facade, or nil.
func (p *Project) ReuseDataFrom() *Project { return p.cfg.ReuseDataFrom }

// InvalidateOnOOCB reports whether out-of-code-block edits invalidate the facade.
func (p *Project) InvalidateOnOOCB() bool { return p.cfg.InvalidateOnOOCB }

// SyntheticFiles returns the in-memory files bound to the synthetic module.
func (p *Project) SyntheticFiles() []*domain.File { return p.cfg.SyntheticFiles }

// Dependencies returns every tracker the facade is invalidated by.
func (p *Project) Dependencies() []ports.ModificationTracker { return p.deps }

// Covers reports whether the facade is authoritative for the module.
func (p *Project) Covers(m domain.ModuleInfo) bool {
	if !p.cfg.ModuleFilter(m) {
		return false
	}
	return len(p.cfg.AllModules) == 0 || slices.Contains(p.cfg.AllModules, m)
}

// UpToDate reports whether no dependency of the facade or of any upstream has
// advanced since construction.
func (p *Project) UpToDate() bool {
	for cur := p; cur != nil; cur = cur.cfg.ReuseDataFrom {
		if !cur.created.UpToDate() {
			return false
		}
	}
	return true
}

// UpstreamDisposed reports whether any facade in the upstream chain was disposed.
// Such a facade no longer memoizes, so work delegated to it is repeated.
func (p *Project) UpstreamDisposed() bool {
	for cur := p.cfg.ReuseDataFrom; cur != nil; cur = cur.cfg.ReuseDataFrom {
		if cur.Disposed() {
			return true
		}
	}
	return false
}

// Generation returns the analysis generation, advancing it first if any
// dependency moved since the last refresh.
func (p *Project) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.current.UpToDate() {
		p.current = p.current.Retake()
		p.generation++
		if !p.disposed {
			p.cfg.GlobalContext.Storage().Prune(p.owner, p.generation)
		}
	}
	return p.generation
}

// Chain returns the facade followed by its upstreams.
func (p *Project) Chain() []*Project {
	var chain []*Project
	for cur := p; cur != nil; cur = cur.cfg.ReuseDataFrom {
		chain = append(chain, cur)
	}
	return chain
}

// AnalyzeModule returns the analysis of a module. Modules outside the facade's
// filter are answered by the upstream chain, so every tier shares one result.
func (p *Project) AnalyzeModule(ctx context.Context, m domain.ModuleInfo) (*domain.ModuleAnalysis, error) {
	if !p.Covers(m) {
		if p.cfg.ReuseDataFrom != nil {
			return p.cfg.ReuseDataFrom.AnalyzeModule(ctx, m)
		}
		err := domain.Annotate(domain.ErrModuleNotCovered, "module", m.String())
		return nil, zerr.With(err, "facade", p.cfg.DebugString)
	}

	generation := p.Generation()
	storage := p.cfg.GlobalContext.Storage()
	return storage.Compute(ctx, p.owner, generation, m, func(ctx context.Context) (*domain.ModuleAnalysis, error) {
		return p.analyze(ctx, m, generation)
	})
}

func (p *Project) analyze(ctx context.Context, m domain.ModuleInfo, generation uint64) (*domain.ModuleAnalysis, error) {
	ctx, span := p.startSpan(ctx, "facade.analyze_module")
	defer span.End()
	span.SetAttribute("module", m.String())
	span.SetAttribute("resolver", p.cfg.ResolverDebugName)

	b, err := p.BuiltIns(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	req := domain.AnalysisRequest{
		Module:     m,
		Settings:   p.cfg.Settings,
		BuiltIns:   b,
		Generation: generation,
		Resolver:   p.cfg.ResolverDebugName,
	}
	if m == p.cfg.SyntheticModule {
		req.SyntheticFiles = p.cfg.SyntheticFiles
	}

	res, err := p.cfg.Analyzer.AnalyzeModule(ctx, req)
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			p.cfg.GlobalContext.ReportException(err)
		}
		span.RecordError(err)
		err = zerr.Wrap(err, domain.ErrAnalysisFailed.Error())
		return nil, zerr.With(err, "module", m.String())
	}
	return res, nil
}

// BuiltIns returns the built-ins bundle for the facade's settings.
func (p *Project) BuiltIns(ctx context.Context) (*domain.BuiltIns, error) {
	key := domain.BuiltInsKeyFor(p.cfg.Settings)
	load := func() (*domain.BuiltIns, error) {
		if key == domain.DefaultBuiltInsKey {
			return domain.DefaultBuiltIns, nil
		}
		ctx, span := p.startSpan(ctx, "builtins.load")
		defer span.End()
		span.SetAttribute("key", key.String())

		b, err := p.cfg.Analyzer.LoadBuiltIns(ctx, key)
		if err != nil {
			span.RecordError(err)
			err = zerr.Wrap(err, domain.ErrBuiltInsLoadFailed.Error())
			return nil, zerr.With(err, "key", key.String())
		}
		return b, nil
	}

	if p.cfg.BuiltIns == nil {
		return load()
	}
	return p.cfg.BuiltIns.GetOrPut(key, load)
}

// Dispose releases the facade's memoized analyses. A disposed facade still
// answers requests but no longer memoizes them.
func (p *Project) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		return
	}
	p.disposed = true
	p.cfg.GlobalContext.Storage().Release(p.owner)
}

// Disposed reports whether Dispose was called.
func (p *Project) Disposed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disposed
}

func (p *Project) startSpan(ctx context.Context, name string) (context.Context, ports.Span) {
	if p.cfg.Tracer == nil {
		return ctx, noopSpan{}
	}
	return p.cfg.Tracer.Start(ctx, name)
}

type noopSpan struct{}

func (noopSpan) End() {}

func (noopSpan) RecordError(error) {}

func (noopSpan) SetAttribute(string, any) {}
