package facade_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/facades/internal/core/domain"
	"go.trai.ch/facades/internal/core/ports"
	"go.trai.ch/facades/internal/core/ports/mocks"
	"go.trai.ch/facades/internal/engine/builtins"
	"go.trai.ch/facades/internal/engine/facade"
	"go.trai.ch/facades/internal/engine/globalctx"
	"go.trai.ch/facades/internal/engine/tracker"
	"go.uber.org/mock/gomock"
)

var (
	sdkModule = domain.NewModuleInfo("jdk", domain.KindSdk)
	libModule = domain.NewModuleInfo("guava", domain.KindLibrary)
	appModule = domain.NewModuleInfo("app", domain.KindModuleSource)
	settings  = domain.NewPlatformAnalysisSettings(domain.PlatformJVM, domain.NewInternedString("jdk"), false, false)
)

// echoAnalysis answers every request with a fresh analysis carrying the request data.
func echoAnalysis(_ context.Context, req domain.AnalysisRequest) (*domain.ModuleAnalysis, error) {
	return &domain.ModuleAnalysis{Module: req.Module, Resolver: req.Resolver, Generation: req.Generation}, nil
}

type tiers struct {
	sdk, libraries, modules *facade.Project
	roots, oocb             *tracker.Simple
}

func buildTiers(t *testing.T, analyzer *mocks.MockAnalyzer) tiers {
	t.Helper()

	roots := tracker.NewSimple()
	oocb := tracker.NewSimple()
	cache := builtins.New(domain.DefaultBuiltIns, roots)
	sdkCtx := globalctx.New("sdk")

	sdk, err := facade.New(facade.Config{
		DebugString:       "sdk",
		ResolverDebugName: "sdk",
		GlobalContext:     sdkCtx,
		Settings:          settings,
		ModuleFilter:      domain.IsSdk,
		Dependencies:      []ports.ModificationTracker{roots},
		BuiltIns:          cache,
		Analyzer:          analyzer,
	})
	require.NoError(t, err)

	libraries, err := facade.New(facade.Config{
		DebugString:       "libraries",
		ResolverDebugName: "libraries",
		GlobalContext:     sdkCtx.Derive("libraries"),
		Settings:          settings,
		ModuleFilter:      domain.IsLibrary,
		ReuseDataFrom:     sdk,
		Dependencies:      []ports.ModificationTracker{roots},
		BuiltIns:          cache,
		Analyzer:          analyzer,
	})
	require.NoError(t, err)

	modules, err := facade.New(facade.Config{
		DebugString:       "modules",
		ResolverDebugName: "modules",
		GlobalContext:     libraries.GlobalContext().Derive("modules"),
		Settings:          settings,
		ModuleFilter:      func(m domain.ModuleInfo) bool { return !domain.IsLibraryClasses(m) },
		ReuseDataFrom:     libraries,
		Dependencies:      []ports.ModificationTracker{roots},
		InvalidateOnOOCB:  true,
		OutOfCodeBlock:    oocb,
		BuiltIns:          cache,
		Analyzer:          analyzer,
	})
	require.NoError(t, err)

	return tiers{sdk: sdk, libraries: libraries, modules: modules, roots: roots, oocb: oocb}
}

func expectSdkBuiltIns(analyzer *mocks.MockAnalyzer) {
	analyzer.EXPECT().LoadBuiltIns(gomock.Any(), domain.SdkBuiltInsKey(domain.NewInternedString("jdk"), false)).
		Return(&domain.BuiltIns{Key: domain.SdkBuiltInsKey(domain.NewInternedString("jdk"), false)}, nil).
		AnyTimes()
}

func TestNew_RejectsUnderivedContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)

	up, err := facade.New(facade.Config{
		DebugString:   "sdk",
		GlobalContext: globalctx.New("sdk"),
		ModuleFilter:  domain.IsSdk,
		Analyzer:      analyzer,
	})
	require.NoError(t, err)

	_, err = facade.New(facade.Config{
		DebugString:   "libraries",
		GlobalContext: globalctx.New("unrelated"),
		ModuleFilter:  domain.IsLibrary,
		ReuseDataFrom: up,
		Analyzer:      analyzer,
	})
	require.ErrorIs(t, err, domain.ErrContextNotDerived)
}

func TestNew_RequiresFilterAndContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)

	_, err := facade.New(facade.Config{ModuleFilter: domain.IsSdk, Analyzer: analyzer})
	require.Error(t, err)

	_, err = facade.New(facade.Config{GlobalContext: globalctx.New("x"), Analyzer: analyzer})
	require.Error(t, err)
}

func TestProject_LayeringSharesUpstreamAnalysis(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	expectSdkBuiltIns(analyzer)
	analyzer.EXPECT().AnalyzeModule(gomock.Any(), gomock.Any()).DoAndReturn(echoAnalysis).Times(3)

	tt := buildTiers(t, analyzer)

	fromSdk, err := tt.sdk.AnalyzeModule(t.Context(), sdkModule)
	require.NoError(t, err)
	fromModules, err := tt.modules.AnalyzeModule(t.Context(), sdkModule)
	require.NoError(t, err)
	assert.Same(t, fromSdk, fromModules)
	assert.Equal(t, "sdk", fromModules.Resolver)

	fromLibraries, err := tt.modules.AnalyzeModule(t.Context(), libModule)
	require.NoError(t, err)
	assert.Equal(t, "libraries", fromLibraries.Resolver)

	app, err := tt.modules.AnalyzeModule(t.Context(), appModule)
	require.NoError(t, err)
	assert.Equal(t, "modules", app.Resolver)

	again, err := tt.modules.AnalyzeModule(t.Context(), appModule)
	require.NoError(t, err)
	assert.Same(t, app, again)
}

func TestProject_NotCoveredWithoutUpstream(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	tt := buildTiers(t, analyzer)

	_, err := tt.sdk.AnalyzeModule(t.Context(), appModule)
	require.ErrorIs(t, err, domain.ErrModuleNotCovered)
}

func TestProject_OutOfCodeBlockInvalidatesModulesTierOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	tt := buildTiers(t, analyzer)

	tt.oocb.Increment()

	assert.True(t, tt.sdk.UpToDate())
	assert.True(t, tt.libraries.UpToDate())
	assert.False(t, tt.modules.UpToDate())
}

func TestProject_UpstreamStalenessPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	tt := buildTiers(t, analyzer)

	tt.roots.Increment()

	assert.False(t, tt.sdk.UpToDate())
	assert.False(t, tt.modules.UpToDate())
}

func TestProject_GenerationRefreshesAnalysis(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	expectSdkBuiltIns(analyzer)
	analyzer.EXPECT().AnalyzeModule(gomock.Any(), gomock.Any()).DoAndReturn(echoAnalysis).Times(2)

	tt := buildTiers(t, analyzer)

	first, err := tt.modules.AnalyzeModule(t.Context(), appModule)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.Generation)

	tt.oocb.Increment()

	second, err := tt.modules.AnalyzeModule(t.Context(), appModule)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Generation)
	assert.NotSame(t, first, second)
}

func TestProject_AnalysisFailureInvalidates(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	expectSdkBuiltIns(analyzer)
	failure := errors.New("resolver crashed")
	analyzer.EXPECT().AnalyzeModule(gomock.Any(), gomock.Any()).Return(nil, failure)

	tt := buildTiers(t, analyzer)
	require.True(t, tt.modules.UpToDate())

	_, err := tt.modules.AnalyzeModule(t.Context(), appModule)
	require.ErrorIs(t, err, failure)
	assert.ErrorContains(t, err, domain.ErrAnalysisFailed.Error())

	assert.False(t, tt.modules.UpToDate())
	assert.True(t, tt.libraries.UpToDate())
}

func TestProject_CancellationDoesNotInvalidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	expectSdkBuiltIns(analyzer)
	analyzer.EXPECT().AnalyzeModule(gomock.Any(), gomock.Any()).Return(nil, context.Canceled)

	tt := buildTiers(t, analyzer)

	_, err := tt.modules.AnalyzeModule(t.Context(), appModule)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, tt.modules.UpToDate())
}

func TestProject_SyntheticFilesBoundToModule(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	expectSdkBuiltIns(analyzer)
	tt := buildTiers(t, analyzer)

	fragment := domain.NewCodeFragment("fragment://1", domain.NewElement("main", domain.NewFile("/p/Main.kt")))
	wrapped, err := facade.New(facade.Config{
		DebugString:     "synthetic",
		GlobalContext:   tt.modules.GlobalContext().Derive("synthetic"),
		Settings:        settings,
		ModuleFilter:    func(m domain.ModuleInfo) bool { return m == appModule },
		SyntheticModule: appModule,
		SyntheticFiles:  []*domain.File{fragment},
		ReuseDataFrom:   tt.modules,
		Analyzer:        analyzer,
	})
	require.NoError(t, err)

	analyzer.EXPECT().AnalyzeModule(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, req domain.AnalysisRequest) (*domain.ModuleAnalysis, error) {
			if req.Module == appModule {
				assert.Equal(t, []*domain.File{fragment}, req.SyntheticFiles)
			} else {
				assert.Empty(t, req.SyntheticFiles)
			}
			return echoAnalysis(ctx, req)
		}).Times(2)

	_, err = wrapped.AnalyzeModule(t.Context(), appModule)
	require.NoError(t, err)
	_, err = wrapped.AnalyzeModule(t.Context(), libModule)
	require.NoError(t, err)

	assert.Len(t, wrapped.Chain(), 4)
}

func TestProject_BuiltInsLoadedOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	key := domain.SdkBuiltInsKey(domain.NewInternedString("jdk"), false)
	analyzer.EXPECT().LoadBuiltIns(gomock.Any(), key).Return(&domain.BuiltIns{Key: key}, nil).Times(1)

	tt := buildTiers(t, analyzer)

	first, err := tt.sdk.BuiltIns(t.Context())
	require.NoError(t, err)
	second, err := tt.modules.BuiltIns(t.Context())
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestProject_DefaultBuiltInsNeedNoLoading(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)

	p, err := facade.New(facade.Config{
		GlobalContext: globalctx.New("js"),
		Settings:      settings.WithPlatform(domain.PlatformJS),
		ModuleFilter:  domain.IsSdk,
		Analyzer:      analyzer,
	})
	require.NoError(t, err)

	b, err := p.BuiltIns(t.Context())
	require.NoError(t, err)
	assert.Same(t, domain.DefaultBuiltIns, b)
}

func TestProject_Dispose(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	expectSdkBuiltIns(analyzer)
	analyzer.EXPECT().AnalyzeModule(gomock.Any(), gomock.Any()).DoAndReturn(echoAnalysis).Times(3)

	tt := buildTiers(t, analyzer)
	storage := tt.sdk.GlobalContext().Storage()

	_, err := tt.modules.AnalyzeModule(t.Context(), appModule)
	require.NoError(t, err)
	assert.Equal(t, 1, storage.Len())

	tt.modules.Dispose()
	assert.True(t, tt.modules.Disposed())
	assert.Equal(t, 0, storage.Len())

	first, err := tt.modules.AnalyzeModule(t.Context(), appModule)
	require.NoError(t, err)
	second, err := tt.modules.AnalyzeModule(t.Context(), appModule)
	require.NoError(t, err)
	assert.NotSame(t, first, second, "disposed facades do not memoize")
}

func TestProject_UpstreamDisposed(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)

	tt := buildTiers(t, analyzer)
	assert.False(t, tt.modules.UpstreamDisposed())

	tt.modules.Dispose()
	assert.False(t, tt.modules.UpstreamDisposed(), "only upstreams count")

	tt.sdk.Dispose()
	assert.True(t, tt.libraries.UpstreamDisposed())
	assert.True(t, tt.modules.UpstreamDisposed())
	assert.False(t, tt.sdk.UpstreamDisposed())
}

func TestProject_AllModulesNarrowsFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	other := domain.NewModuleInfo("core", domain.KindModuleSource)

	p, err := facade.New(facade.Config{
		DebugString:   "narrow",
		GlobalContext: globalctx.New("narrow"),
		ModuleFilter:  func(m domain.ModuleInfo) bool { return m.Kind == domain.KindModuleSource },
		AllModules:    []domain.ModuleInfo{appModule},
		Analyzer:      analyzer,
	})
	require.NoError(t, err)

	assert.True(t, p.Covers(appModule))
	assert.False(t, p.Covers(other))
	assert.False(t, p.Covers(sdkModule))
}
