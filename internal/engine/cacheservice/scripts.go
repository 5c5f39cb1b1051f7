package cacheservice

import (
	"context"
	"sync"

	"go.trai.ch/facades/internal/core/domain"
	"go.trai.ch/facades/internal/core/ports"
	"go.trai.ch/facades/internal/engine/cache"
	"go.trai.ch/facades/internal/engine/facade"
)

// scriptFacades holds the project-wide script dependency facades of one settings
// partition. Both reuse the SDK tier of the same partition.
type scriptFacades struct {
	svc      *Service
	settings domain.PlatformAnalysisSettings
	perFile  *cache.LRU[domain.ModuleInfo, *facade.Project]

	mu      sync.Mutex
	deps    *facade.Project
	sources *facade.Project
}

func (s *Service) scriptFacadesFor(settings domain.PlatformAnalysisSettings) (*scriptFacades, error) {
	return s.scriptGlobals.GetOrCreate(settings, func() (*scriptFacades, error) {
		perFile, err := cache.NewLRU(s.opts.ScriptFilesProtected,
			cache.WithValidity[domain.ModuleInfo](func(p *facade.Project) bool {
				return p.UpToDate() && !p.UpstreamDisposed()
			}),
			cache.WithEvict(func(_ domain.ModuleInfo, p *facade.Project) { p.Dispose() }),
		)
		if err != nil {
			return nil, err
		}
		return &scriptFacades{svc: s, settings: settings, perFile: perFile}, nil
	})
}

func (s *Service) scriptDependencies(
	ctx context.Context,
	settings domain.PlatformAnalysisSettings,
) (*facade.Project, error) {
	sf, err := s.scriptFacadesFor(settings)
	if err != nil {
		return nil, err
	}
	return sf.dependencies(ctx)
}

func (s *Service) scriptDependencySources(
	ctx context.Context,
	settings domain.PlatformAnalysisSettings,
) (*facade.Project, error) {
	sf, err := s.scriptFacadesFor(settings)
	if err != nil {
		return nil, err
	}
	return sf.dependencySources(ctx)
}

func (sf *scriptFacades) scriptTrackers() []ports.ModificationTracker {
	t := sf.svc.trackers
	return []ports.ModificationTracker{t.Library, t.ProjectRoot, t.ScriptDependencies}
}

func (sf *scriptFacades) dependencies(ctx context.Context) (*facade.Project, error) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.dependenciesLocked(ctx)
}

func (sf *scriptFacades) dependenciesLocked(ctx context.Context) (*facade.Project, error) {
	global, err := sf.svc.globalFacadeFor(sf.settings)
	if err != nil {
		return nil, err
	}
	sdk, err := global.sdkFacade(ctx)
	if err != nil {
		return nil, err
	}
	if sf.deps != nil && sf.deps.UpToDate() && sf.deps.ReuseDataFrom() == sdk {
		return sf.deps, nil
	}

	p, err := sf.svc.newProject(ctx, facade.Config{
		DebugString:       "facade for script dependencies for " + sf.settings.String(),
		ResolverDebugName: "dependencies of scripts",
		GlobalContext:     sdk.GlobalContext().Derive("script dependencies"),
		Settings:          sf.settings,
		ModuleFilter:      domain.IsScriptDependenciesForProject,
		ReuseDataFrom:     sdk,
		Dependencies:      sf.scriptTrackers(),
	})
	if err != nil {
		return nil, err
	}

	sf.replace(&sf.sources, nil)
	sf.replace(&sf.deps, p)
	return p, nil
}

func (sf *scriptFacades) dependencySources(ctx context.Context) (*facade.Project, error) {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	deps, err := sf.dependenciesLocked(ctx)
	if err != nil {
		return nil, err
	}
	if sf.sources != nil && sf.sources.UpToDate() && sf.sources.ReuseDataFrom() == deps {
		return sf.sources, nil
	}

	p, err := sf.svc.newProject(ctx, facade.Config{
		DebugString:       "facade for script dependency sources for " + sf.settings.String(),
		ResolverDebugName: "dependencies of scripts sources",
		GlobalContext:     deps.GlobalContext().Derive("script dependency sources"),
		Settings:          sf.settings,
		ModuleFilter:      domain.IsScriptDependencySourcesForProject,
		ReuseDataFrom:     deps,
		Dependencies:      sf.scriptTrackers(),
	})
	if err != nil {
		return nil, err
	}

	sf.replace(&sf.sources, p)
	return p, nil
}

func (sf *scriptFacades) replace(slot **facade.Project, p *facade.Project) {
	if old := *slot; old != nil && old != p {
		old.Dispose()
		sf.svc.logger.Debug("facade invalidated", "facade", old.DebugString())
	}
	*slot = p
}

func (sf *scriptFacades) dispose() {
	sf.perFile.Purge()

	sf.mu.Lock()
	defer sf.mu.Unlock()
	sf.replace(&sf.sources, nil)
	sf.replace(&sf.deps, nil)
}

// perFileDependencies returns the facade resolving one script's own dependency
// module. It reuses the modules tier when the script belongs to project modules
// and the SDK tier otherwise.
func (s *Service) perFileDependencies(
	ctx context.Context,
	settings domain.PlatformAnalysisSettings,
	script *domain.File,
	module domain.ModuleInfo,
) (*facade.Project, error) {
	sf, err := s.scriptFacadesFor(settings)
	if err != nil {
		return nil, err
	}
	return sf.perFile.GetOrCreate(module, func() (*facade.Project, error) {
		global, err := s.globalFacadeFor(settings)
		if err != nil {
			return nil, err
		}

		var upstream *facade.Project
		if len(s.model.RelatedModules(script)) > 0 {
			upstream, err = global.modulesFacade(ctx)
		} else {
			upstream, err = global.sdkFacade(ctx)
		}
		if err != nil {
			return nil, err
		}

		return s.newProject(ctx, facade.Config{
			DebugString:       "facade for dependencies of " + script.Path.String(),
			ResolverDebugName: "dependencies of " + module.String(),
			GlobalContext:     upstream.GlobalContext().Derive("script dependencies " + module.String()),
			Settings:          settings,
			ModuleFilter:      func(m domain.ModuleInfo) bool { return m.Kind == domain.KindScriptDependencies },
			AllModules:        []domain.ModuleInfo{module},
			ReuseDataFrom:     upstream,
			Dependencies:      sf.scriptTrackers(),
		})
	})
}

// scriptFacade returns the facade for a set of scripts from the per-file-set cache.
func (s *Service) scriptFacade(
	ctx context.Context,
	scripts []*domain.File,
	module domain.ModuleInfo,
	settings domain.PlatformAnalysisSettings,
) (*facade.Project, error) {
	set := domain.NewFileSet(scripts)
	inner, err := s.scripts.Get()
	if err != nil {
		return nil, err
	}
	key := filesKey{files: set.Key(), module: module, settings: settings}
	return inner.GetOrCreate(key, func() (*facade.Project, error) {
		return s.createScriptFacade(ctx, set, module, settings)
	})
}

func (s *Service) createScriptFacade(
	ctx context.Context,
	set domain.FileSet,
	module domain.ModuleInfo,
	settings domain.PlatformAnalysisSettings,
) (*facade.Project, error) {
	first := set.Files()[0]

	var upstream *facade.Project
	var err error
	if deps, ok := s.model.ScriptDependencies(first); ok {
		upstream, err = s.perFileDependencies(ctx, settings, first, deps)
	} else {
		upstream, err = s.scriptDependencySources(ctx, settings)
	}
	if err != nil {
		return nil, err
	}
	return s.wrapWithSyntheticFiles(ctx, upstream, module, set, "scripts")
}

// wrapWithSyntheticFiles builds a facade analyzing files as part of module on top
// of upstream. Edits inside the files' bodies never reach the upstream.
func (s *Service) wrapWithSyntheticFiles(
	ctx context.Context,
	upstream *facade.Project,
	module domain.ModuleInfo,
	set domain.FileSet,
	label string,
	deps ...ports.ModificationTracker,
) (*facade.Project, error) {
	return s.newProject(ctx, facade.Config{
		DebugString:       label + " facade for " + filePaths(set.Files()),
		ResolverDebugName: label + " " + module.String(),
		GlobalContext:     upstream.GlobalContext().Derive(label),
		Settings:          upstream.Settings(),
		ModuleFilter:      func(m domain.ModuleInfo) bool { return m == module },
		SyntheticModule:   module,
		SyntheticFiles:    set.Files(),
		ReuseDataFrom:     upstream,
		Dependencies:      deps,
		InvalidateOnOOCB:  true,
	})
}
