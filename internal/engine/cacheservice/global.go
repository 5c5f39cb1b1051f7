package cacheservice

import (
	"context"
	"sync"

	"go.trai.ch/facades/internal/core/domain"
	"go.trai.ch/facades/internal/core/ports"
	"go.trai.ch/facades/internal/engine/facade"
	"go.trai.ch/facades/internal/engine/globalctx"
)

// globalFacade is the three-tier chain of one settings partition:
// SDK, then libraries reusing the SDK, then project modules reusing libraries.
// A stale tier is rebuilt together with every tier below it.
type globalFacade struct {
	svc      *Service
	settings domain.PlatformAnalysisSettings

	mu        sync.Mutex
	sdk       *facade.Project
	libraries *facade.Project
	modules   *facade.Project
}

func (g *globalFacade) sdkFacade(ctx context.Context) (*facade.Project, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sdkLocked(ctx)
}

func (g *globalFacade) librariesFacade(ctx context.Context) (*facade.Project, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.librariesLocked(ctx)
}

func (g *globalFacade) modulesFacade(ctx context.Context) (*facade.Project, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.modulesLocked(ctx)
}

func (g *globalFacade) sdkLocked(ctx context.Context) (*facade.Project, error) {
	if g.sdk != nil && g.sdk.UpToDate() {
		return g.sdk, nil
	}

	t := g.svc.trackers
	p, err := g.svc.newProject(ctx, facade.Config{
		DebugString:       "sdk facade for " + g.settings.String(),
		ResolverDebugName: "sdk",
		GlobalContext:     globalctx.New("sdk " + g.settings.String()),
		Settings:          g.settings,
		ModuleFilter:      domain.IsSdk,
		Dependencies:      []ports.ModificationTracker{t.Library, t.ProjectRoot},
	})
	if err != nil {
		return nil, err
	}

	g.replace(&g.modules, nil)
	g.replace(&g.libraries, nil)
	g.replace(&g.sdk, p)
	return p, nil
}

func (g *globalFacade) librariesLocked(ctx context.Context) (*facade.Project, error) {
	sdk, err := g.sdkLocked(ctx)
	if err != nil {
		return nil, err
	}
	if g.libraries != nil && g.libraries.UpToDate() && g.libraries.ReuseDataFrom() == sdk {
		return g.libraries, nil
	}

	t := g.svc.trackers
	p, err := g.svc.newProject(ctx, facade.Config{
		DebugString:       "facade for libraries for " + g.settings.String(),
		ResolverDebugName: "project libraries",
		GlobalContext:     sdk.GlobalContext().Derive("libraries"),
		Settings:          g.settings,
		ModuleFilter:      domain.IsLibrary,
		ReuseDataFrom:     sdk,
		Dependencies:      []ports.ModificationTracker{t.Library, t.ProjectRoot},
	})
	if err != nil {
		return nil, err
	}

	g.replace(&g.modules, nil)
	g.replace(&g.libraries, p)
	return p, nil
}

func (g *globalFacade) modulesLocked(ctx context.Context) (*facade.Project, error) {
	libraries, err := g.librariesLocked(ctx)
	if err != nil {
		return nil, err
	}
	if g.modules != nil && g.modules.UpToDate() && g.modules.ReuseDataFrom() == libraries {
		return g.modules, nil
	}

	t := g.svc.trackers
	p, err := g.svc.newProject(ctx, facade.Config{
		DebugString:       "facade for modules for " + g.settings.String(),
		ResolverDebugName: "project source roots and libraries",
		GlobalContext:     libraries.GlobalContext().Derive("modules"),
		Settings:          g.settings,
		ModuleFilter:      func(m domain.ModuleInfo) bool { return !domain.IsLibraryClasses(m) },
		ReuseDataFrom:     libraries,
		Dependencies:      []ports.ModificationTracker{t.Library, t.ProjectRoot},
		InvalidateOnOOCB:  true,
	})
	if err != nil {
		return nil, err
	}

	g.replace(&g.modules, p)
	return p, nil
}

// replace swaps a tier, disposing the previous facade.
func (g *globalFacade) replace(slot **facade.Project, p *facade.Project) {
	if old := *slot; old != nil && old != p {
		old.Dispose()
		g.svc.logger.Debug("facade invalidated", "facade", old.DebugString())
	}
	*slot = p
}

// current returns the tiers built so far without rebuilding anything.
func (g *globalFacade) current() (sdk, libraries, modules *facade.Project) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sdk, g.libraries, g.modules
}

// dispose drops every tier. Storage is closed only when the project closes, since
// facades in the file-set caches may still share it.
func (g *globalFacade) dispose(closeStorage bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var storage *globalctx.Storage
	if g.sdk != nil {
		storage = g.sdk.GlobalContext().Storage()
	}
	g.replace(&g.modules, nil)
	g.replace(&g.libraries, nil)
	g.replace(&g.sdk, nil)
	if closeStorage && storage != nil {
		storage.Close()
	}
}
