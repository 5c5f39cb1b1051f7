// Package cacheservice decides which project facade services a resolution request,
// building and caching facades per settings partition and per file set.
package cacheservice

import (
	"context"
	"strings"
	"sync/atomic"

	"go.trai.ch/facades/internal/core/domain"
	"go.trai.ch/facades/internal/core/ports"
	"go.trai.ch/facades/internal/engine/builtins"
	"go.trai.ch/facades/internal/engine/cache"
	"go.trai.ch/facades/internal/engine/facade"
	"go.trai.ch/facades/internal/engine/suppress"
	"go.trai.ch/zerr"
)

// filesKey identifies a facade built for a specific file set. The set key follows
// file identity, so in-memory copies and fragments sharing a path get their own facade.
type filesKey struct {
	files    domain.FileSetKey
	module   domain.ModuleInfo
	settings domain.PlatformAnalysisSettings
}

type filesCache = cache.LRU[filesKey, *facade.Project]

// Service owns every facade cache of one project. It is constructed with the
// project and torn down by Close.
type Service struct {
	model    ports.ProjectModel
	analyzer ports.Analyzer
	logger   ports.Logger
	tracer   ports.Tracer
	opts     domain.CacheOptions
	trackers ports.ProjectTrackers

	builtIns      *builtins.Cache
	globals       *cache.LRU[domain.PlatformAnalysisSettings, *globalFacade]
	scriptGlobals *cache.LRU[domain.PlatformAnalysisSettings, *scriptFacades]
	scripts       *cache.Value[*filesCache]
	special       *cache.Value[*filesCache]
	suppress      *suppress.Cache

	built  atomic.Uint64
	closed atomic.Bool
}

// New creates the cache service for a project.
func New(
	model ports.ProjectModel,
	analyzer ports.Analyzer,
	logger ports.Logger,
	tracer ports.Tracer,
	opts domain.CacheOptions,
) (*Service, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	s := &Service{
		model:    model,
		analyzer: analyzer,
		logger:   logger,
		tracer:   tracer,
		opts:     opts,
		trackers: model.Trackers(),
	}
	t := s.trackers

	s.builtIns = builtins.New(domain.DefaultBuiltIns, t.Library, t.ProjectRoot)
	s.suppress = suppress.New(t.Library, t.Modification)

	var err error
	s.globals, err = cache.NewLRU(opts.GlobalFacades,
		cache.WithEvict(func(_ domain.PlatformAnalysisSettings, g *globalFacade) {
			g.dispose(s.closed.Load())
		}),
	)
	if err != nil {
		return nil, err
	}
	s.scriptGlobals, err = cache.NewLRU(opts.ScriptGlobalFacades,
		cache.WithEvict(func(_ domain.PlatformAnalysisSettings, sf *scriptFacades) {
			sf.dispose()
		}),
	)
	if err != nil {
		return nil, err
	}

	s.scripts = cache.NewValue(func() (*filesCache, error) {
		return cache.NewSegmented(opts.ScriptFilesProtected, opts.ScriptFilesProbation,
			cache.WithValidity[filesKey](upstreamAlive),
			cache.WithEvict(disposeFilesEntry))
	}, t.Library, t.ProjectRoot, t.ScriptDependencies).OnDrop(purgeFilesCache)

	s.special = cache.NewValue(func() (*filesCache, error) {
		return cache.NewSegmented(opts.SpecialFilesProtected, opts.SpecialFilesProbation,
			cache.WithValidity[filesKey](upstreamAlive),
			cache.WithEvict(disposeFilesEntry))
	}, t.Library, t.ProjectRoot).OnDrop(purgeFilesCache)

	return s, nil
}

func validateOptions(opts domain.CacheOptions) error {
	sizes := []struct {
		name string
		size int
	}{
		{"global_facades", opts.GlobalFacades},
		{"script_global_facades", opts.ScriptGlobalFacades},
		{"script_files.protected", opts.ScriptFilesProtected},
		{"script_files.probation", opts.ScriptFilesProbation},
		{"special_files.protected", opts.SpecialFilesProtected},
		{"special_files.probation", opts.SpecialFilesProbation},
	}
	for _, s := range sizes {
		if s.size <= 0 {
			return zerr.With(domain.Annotate(domain.ErrInvalidCacheSize, "cache", s.name), "size", s.size)
		}
	}
	return nil
}

// upstreamAlive rejects facades layered on a tier that has since been replaced.
func upstreamAlive(p *facade.Project) bool {
	return !p.UpstreamDisposed()
}

func disposeFilesEntry(_ filesKey, p *facade.Project) {
	p.Dispose()
}

func purgeFilesCache(c *filesCache) {
	c.Purge()
}

// RequestOption adjusts a resolution request.
type RequestOption func(*request)

type request struct {
	platform domain.Platform
}

// WithPlatform resolves under another target platform than the module's own.
func WithPlatform(p domain.Platform) RequestOption {
	return func(r *request) {
		r.platform = p
	}
}

// GetResolutionFacade returns a facade to analyze the given elements.
func (s *Service) GetResolutionFacade(
	ctx context.Context,
	elements []*domain.Element,
	opts ...RequestOption,
) (*facade.Resolution, error) {
	if len(elements) == 0 {
		return nil, domain.ErrEmptyRequest
	}
	files := make([]*domain.File, 0, len(elements))
	for _, el := range elements {
		f, err := el.ContainingFile()
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return s.GetResolutionFacadeForFiles(ctx, files, opts...)
}

// GetResolutionFacadeForFiles returns a facade to analyze the given files.
// Files outside ordinary project source are routed to the script cache if any of
// them is a script, otherwise to the special-file cache. Everything else is
// served by the global facade of the module's settings.
func (s *Service) GetResolutionFacadeForFiles(
	ctx context.Context,
	files []*domain.File,
	opts ...RequestOption,
) (*facade.Resolution, error) {
	if s.closed.Load() {
		return nil, domain.ErrProjectClosed
	}
	if len(files) == 0 {
		return nil, domain.ErrEmptyRequest
	}

	ctx, span := s.tracer.Start(ctx, "cacheservice.resolve", ports.WithAttribute("files", len(files)))
	defer span.End()

	module, err := s.requestModule(files)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	settings, err := s.settingsFor(module, opts)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("module", module.String())
	span.SetAttribute("settings", settings.String())

	var special, scripts []*domain.File
	for _, f := range files {
		if s.inProjectScope(f) {
			continue
		}
		special = append(special, f)
		if f.Script {
			scripts = append(scripts, f)
		}
	}

	var project *facade.Project
	switch {
	case len(scripts) > 0:
		span.SetAttribute("route", "scripts")
		project, err = s.scriptFacade(ctx, scripts, module, settings)
	case len(special) > 0:
		span.SetAttribute("route", "special")
		project, err = s.specialFacade(ctx, special, module, settings)
	default:
		span.SetAttribute("route", "global")
		project, err = s.GlobalFacade(ctx, settings)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return facade.NewResolution(project, module, files), nil
}

// GetResolutionFacadeByModuleInfo returns a facade bound to a module rather than a file set.
func (s *Service) GetResolutionFacadeByModuleInfo(
	ctx context.Context,
	module domain.ModuleInfo,
	opts ...RequestOption,
) (*facade.Resolution, error) {
	if s.closed.Load() {
		return nil, domain.ErrProjectClosed
	}
	settings, err := s.settingsFor(module, opts)
	if err != nil {
		return nil, err
	}

	var project *facade.Project
	switch {
	case domain.IsScriptDependenciesForProject(module):
		project, err = s.scriptDependencies(ctx, settings)
	case domain.IsScriptDependencySourcesForProject(module):
		project, err = s.scriptDependencySources(ctx, settings)
	case module.Kind == domain.KindScriptDependencies && module.IsPerFile():
		script := domain.NewScriptFile(module.ForFile.String())
		project, err = s.perFileDependencies(ctx, settings, script, module)
	default:
		project, err = s.GlobalFacade(ctx, settings)
	}
	if err != nil {
		return nil, err
	}
	return facade.NewResolution(project, module, nil), nil
}

// GlobalFacade returns the modules tier of the global facade for settings.
func (s *Service) GlobalFacade(ctx context.Context, settings domain.PlatformAnalysisSettings) (*facade.Project, error) {
	if s.closed.Load() {
		return nil, domain.ErrProjectClosed
	}
	g, err := s.globalFacadeFor(settings)
	if err != nil {
		return nil, err
	}
	return g.modulesFacade(ctx)
}

// IsSuppressed reports whether a diagnostic is suppressed at an element.
func (s *Service) IsSuppressed(el *domain.Element, diag domain.Diagnostic) bool {
	return s.suppress.IsSuppressed(el, diag)
}

// InvalidateAll drops every cached facade. Later requests rebuild them.
func (s *Service) InvalidateAll() {
	for _, v := range []*cache.Value[*filesCache]{s.scripts, s.special} {
		if inner, ok := v.Peek(); ok {
			inner.Purge()
		}
		v.Invalidate()
	}
	s.globals.Purge()
	s.scriptGlobals.Purge()
	s.suppress.Invalidate()
	s.logger.Debug("all facade caches invalidated")
}

// Close tears the caches down and closes analysis storage. Later requests fail
// with domain.ErrProjectClosed.
func (s *Service) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.InvalidateAll()
}

func (s *Service) globalFacadeFor(settings domain.PlatformAnalysisSettings) (*globalFacade, error) {
	return s.globals.GetOrCreate(settings, func() (*globalFacade, error) {
		return &globalFacade{svc: s, settings: settings}, nil
	})
}

// requestModule returns the single module owning every file of a request.
func (s *Service) requestModule(files []*domain.File) (domain.ModuleInfo, error) {
	var module domain.ModuleInfo
	for i, f := range files {
		root, err := f.RootFile()
		if err != nil {
			return domain.ModuleInfo{}, err
		}
		m, err := s.model.ModuleInfo(root)
		if err != nil {
			return domain.ModuleInfo{}, err
		}
		if i == 0 {
			module = m
			continue
		}
		if m != module {
			err := domain.Annotate(domain.ErrFilesFromDifferentModules, "files", filePaths(files))
			return domain.ModuleInfo{}, zerr.With(err, "modules", module.String()+", "+m.String())
		}
	}
	return module, nil
}

func (s *Service) settingsFor(module domain.ModuleInfo, opts []RequestOption) (domain.PlatformAnalysisSettings, error) {
	settings, err := s.model.Settings(module)
	if err != nil {
		return domain.PlatformAnalysisSettings{}, err
	}
	var req request
	for _, opt := range opts {
		opt(&req)
	}
	if req.platform != "" {
		settings = settings.WithPlatform(req.platform)
	}
	return settings, nil
}

// inProjectScope reports whether a file can be served by the global facade.
func (s *Service) inProjectScope(f *domain.File) bool {
	return f.Physical && !f.IsCodeFragment() && s.model.InProjectSource(f)
}

func (s *Service) newProject(ctx context.Context, cfg facade.Config) (*facade.Project, error) {
	_, span := s.tracer.Start(ctx, "facade.build", ports.WithAttribute("facade", cfg.DebugString))
	defer span.End()

	cfg.BuiltIns = s.builtIns
	cfg.Analyzer = s.analyzer
	cfg.Tracer = s.tracer
	cfg.OutOfCodeBlock = s.trackers.OutOfCodeBlock

	p, err := facade.New(cfg)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.built.Add(1)
	s.logger.Debug("facade built",
		"facade", cfg.DebugString,
		"settings", cfg.Settings.String(),
		"depth", cfg.GlobalContext.Depth(),
	)
	return p, nil
}

func filePaths(files []*domain.File) string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path.String()
	}
	return strings.Join(paths, ", ")
}
