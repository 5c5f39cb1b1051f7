package cacheservice

import (
	"context"
	"slices"

	"go.trai.ch/facades/internal/core/domain"
	"go.trai.ch/facades/internal/core/ports"
	"go.trai.ch/facades/internal/engine/facade"
	"go.trai.ch/facades/internal/engine/tracker"
)

// specialFacade returns the facade for files with unusual ownership: code
// fragments, in-memory copies and files outside project source.
func (s *Service) specialFacade(
	ctx context.Context,
	files []*domain.File,
	module domain.ModuleInfo,
	settings domain.PlatformAnalysisSettings,
) (*facade.Project, error) {
	set := domain.NewFileSet(files)
	inner, err := s.special.Get()
	if err != nil {
		return nil, err
	}
	key := filesKey{files: set.Key(), module: module, settings: settings}
	return inner.GetOrCreate(key, func() (*facade.Project, error) {
		return s.createSpecialFacade(ctx, set, module, settings)
	})
}

func (s *Service) createSpecialFacade(
	ctx context.Context,
	set domain.FileSet,
	module domain.ModuleInfo,
	settings domain.PlatformAnalysisSettings,
) (*facade.Project, error) {
	filesTracker, err := s.syntheticFilesTracker(set.Files())
	if err != nil {
		return nil, err
	}
	global, err := s.globalFacadeFor(settings)
	if err != nil {
		return nil, err
	}

	switch module.Kind {
	case domain.KindModuleSource:
		upstream, err := global.modulesFacade(ctx)
		if err != nil {
			return nil, err
		}
		dependents := s.model.DependentModules(module)
		if !slices.Contains(dependents, module) {
			dependents = append(dependents, module)
		}
		t := s.trackers
		return s.newProject(ctx, facade.Config{
			DebugString:       "facade for " + filePaths(set.Files()) + " in " + module.String(),
			ResolverDebugName: "special resolve for " + module.String(),
			GlobalContext:     upstream.GlobalContext().Derive("special " + module.String()),
			Settings:          settings,
			ModuleFilter:      func(m domain.ModuleInfo) bool { return slices.Contains(dependents, m) },
			SyntheticModule:   module,
			SyntheticFiles:    set.Files(),
			ReuseDataFrom:     upstream,
			Dependencies:      []ports.ModificationTracker{t.Library, t.ProjectRoot, filesTracker},
			InvalidateOnOOCB:  true,
		})

	case domain.KindScript:
		var upstream *facade.Project
		root, err := set.Files()[0].RootFile()
		if err != nil {
			return nil, err
		}
		if deps, ok := s.model.ScriptDependencies(root); ok {
			upstream, err = s.perFileDependencies(ctx, settings, root, deps)
		} else {
			upstream, err = s.scriptDependencySources(ctx, settings)
		}
		if err != nil {
			return nil, err
		}
		return s.wrapWithSyntheticFiles(ctx, upstream, module, set, "special script", filesTracker)

	case domain.KindScriptDependencies, domain.KindScriptDependencySources:
		upstream, err := s.scriptDependencySources(ctx, settings)
		if err != nil {
			return nil, err
		}
		return s.wrapWithSyntheticFiles(ctx, upstream, module, set, "special script dependencies", filesTracker)

	case domain.KindLibrarySource, domain.KindNotUnderContentRoot:
		upstream, err := global.modulesFacade(ctx)
		if err != nil {
			return nil, err
		}
		return s.wrapWithSyntheticFiles(ctx, upstream, module, set, "special", filesTracker)

	case domain.KindLibrary, domain.KindSdk:
		upstream, err := global.librariesFacade(ctx)
		if err != nil {
			return nil, err
		}
		return s.wrapWithSyntheticFiles(ctx, upstream, module, set, "special library", filesTracker)

	case domain.KindUnknown:
		return nil, domain.Annotate(domain.ErrUnknownModuleKind, "kind", module.Kind.String())

	default:
		return nil, domain.Annotate(domain.ErrUnknownModuleKind, "kind", int(module.Kind))
	}
}

// syntheticFilesTracker sums the out-of-block counts of files, plus the raw
// stamps of in-memory files and fragments and of every file a fragment depends on.
func (s *Service) syntheticFilesTracker(files []*domain.File) (ports.ModificationTracker, error) {
	var stamped []*domain.File
	for _, f := range files {
		if f.Physical && !f.IsCodeFragment() {
			continue
		}
		stamped = append(stamped, f)
		chain, err := f.ContextChain()
		if err != nil {
			return nil, err
		}
		stamped = append(stamped, chain...)
	}

	model := s.model
	return tracker.Func(func() int64 {
		var total int64
		for _, f := range files {
			total += model.OutOfBlockCount(f)
		}
		for _, f := range stamped {
			total += model.ModificationStamp(f)
		}
		return total
	}), nil
}
