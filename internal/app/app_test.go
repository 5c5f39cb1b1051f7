package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/facades/internal/adapters/analysis"
	"go.trai.ch/facades/internal/adapters/telemetry"
	"go.trai.ch/facades/internal/app"
	"go.trai.ch/facades/internal/core/domain"
	"go.trai.ch/facades/internal/core/ports"
	"go.trai.ch/facades/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func workspace(root string) *domain.Workspace {
	jdk := domain.NewInternedString("jdk")
	return &domain.Workspace{
		Root:  root,
		Cache: domain.DefaultCacheOptions(),
		Modules: []domain.ModuleSpec{
			{Info: domain.NewModuleInfo("jdk", domain.KindSdk), Platform: domain.PlatformJVM},
			{
				Info: domain.NewModuleInfo("core", domain.KindModuleSource), Platform: domain.PlatformJVM,
				SDK: jdk, Roots: []string{"src/core"},
			},
			{
				Info: domain.NewModuleInfo("app", domain.KindModuleSource), Platform: domain.PlatformJVM,
				SDK: jdk, Roots: []string{"src/app"}, Dependencies: []domain.ModuleID{domain.NewInternedString("core")},
			},
			{
				Info: domain.NewModuleInfo("build-scripts", domain.KindScript), Platform: domain.PlatformJVM,
				SDK: jdk, Roots: []string{"scripts"}, Related: []domain.ModuleID{domain.NewInternedString("app")},
			},
		},
	}
}

type fixture struct {
	app    *app.App
	loader *mocks.MockConfigLoader
	log    *mocks.MockLogger
	out    *syncBuffer
}

func newFixture(t *testing.T, root string) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()

	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(root).Return(workspace(root), nil).AnyTimes()

	out := &syncBuffer{}
	a := app.New(loader, analysis.NewDigestAnalyzer(log), log, telemetry.NewNoOpTracer()).WithOutput(out)
	return &fixture{app: a, loader: loader, log: log, out: out}
}

// syncBuffer is a bytes.Buffer safe for a writer and a reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) reports(t *testing.T) []app.Report {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var reports []app.Report
	dec := json.NewDecoder(bytes.NewReader(b.buf.Bytes()))
	for dec.More() {
		var r app.Report
		require.NoError(t, dec.Decode(&r))
		reports = append(reports, r)
	}
	return reports
}

func TestApp_Resolve(t *testing.T) {
	root := t.TempDir()
	f := newFixture(t, root)

	err := f.app.Resolve(t.Context(), root,
		[]string{"src/app/Main.kt", "src/core/Core.kt", "scripts/build.kts"},
		app.ResolveOptions{JSON: true},
	)
	require.NoError(t, err)

	reports := f.out.reports(t)
	require.Len(t, reports, 1)
	r := reports[0]
	require.Len(t, r.Files, 3)

	main, core, script := r.Files[0], r.Files[1], r.Files[2]
	assert.Equal(t, "module:app", main.Module)
	assert.Equal(t, "jvm/jdk", main.Settings)
	assert.Equal(t, []string{"project source roots and libraries", "project libraries", "sdk"}, main.Chain)
	assert.Equal(t, main.Facade, core.Facade, "project sources share the global facade")
	assert.NotEqual(t, main.Digest, core.Digest)

	assert.Equal(t, "script:build-scripts", script.Module)
	assert.NotEqual(t, main.Facade, script.Facade)
	assert.Equal(t, "sdk", script.Chain[len(script.Chain)-1])
	assert.Equal(t, "dependencies of scripts sources", script.Chain[1])

	assert.Equal(t, uint64(6), r.Stats.FacadesBuilt)
	assert.Equal(t, uint64(1), r.Stats.Global.Misses)
	assert.Equal(t, uint64(2), r.Stats.Global.Hits)
	assert.Equal(t, 2, r.Stats.BuiltIns)
}

func TestApp_Resolve_Platform(t *testing.T) {
	root := t.TempDir()
	f := newFixture(t, root)

	err := f.app.Resolve(t.Context(), root, []string{"src/app/Main.kt"}, app.ResolveOptions{Platform: "js", JSON: true})
	require.NoError(t, err)

	reports := f.out.reports(t)
	require.Len(t, reports, 1)
	assert.Equal(t, "js/jdk", reports[0].Files[0].Settings)
	assert.Equal(t, 1, reports[0].Stats.BuiltIns, "non-JVM settings use the default built-ins")
}

func TestApp_Resolve_Errors(t *testing.T) {
	root := t.TempDir()

	t.Run("no files", func(t *testing.T) {
		f := newFixture(t, root)
		err := f.app.Resolve(t.Context(), root, nil, app.ResolveOptions{})
		require.ErrorIs(t, err, domain.ErrNoFilesSpecified)
	})

	t.Run("invalid platform", func(t *testing.T) {
		f := newFixture(t, root)
		err := f.app.Resolve(t.Context(), root, []string{"src/app/Main.kt"}, app.ResolveOptions{Platform: "wasm"})
		require.ErrorIs(t, err, domain.ErrInvalidPlatform)
	})

	t.Run("config not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		loader := mocks.NewMockConfigLoader(ctrl)
		loader.EXPECT().Load(root).Return(nil, domain.ErrConfigNotFound)

		a := app.New(loader, nil, mocks.NewMockLogger(ctrl), telemetry.NewNoOpTracer())
		err := a.Resolve(t.Context(), root, []string{"x.kt"}, app.ResolveOptions{})
		require.ErrorIs(t, err, domain.ErrConfigNotFound)
		assert.ErrorContains(t, err, "failed to load configuration")
	})

	t.Run("duplicate module", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ws := workspace(root)
		ws.Modules = append(ws.Modules, ws.Modules[0])
		loader := mocks.NewMockConfigLoader(ctrl)
		loader.EXPECT().Load(root).Return(ws, nil)

		a := app.New(loader, nil, mocks.NewMockLogger(ctrl), telemetry.NewNoOpTracer())
		err := a.Resolve(t.Context(), root, []string{"x.kt"}, app.ResolveOptions{})
		require.ErrorIs(t, err, domain.ErrDuplicateModule)
	})
}

func TestApp_Resolve_Render(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	root := t.TempDir()
	f := newFixture(t, root)

	require.NoError(t, f.app.Resolve(t.Context(), root, []string{"src/app/Main.kt"}, app.ResolveOptions{}))

	f.out.mu.Lock()
	defer f.out.mu.Unlock()
	out := f.out.buf.String()
	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, "src/app/Main.kt")
	assert.Contains(t, out, "project source roots and libraries → project libraries → sdk")
	assert.Contains(t, out, "built=3 built-ins=2")
}

// chanWatcher wires a mock watcher to a channel of events.
func chanWatcher(ctrl *gomock.Controller, root string, events chan ports.WatchEvent) *mocks.MockWatcher {
	w := mocks.NewMockWatcher(ctrl)
	w.EXPECT().Start(gomock.Any(), []string{root}).Return(nil)
	w.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(yield func(ports.WatchEvent) bool) {
		for ev := range events {
			if !yield(ev) {
				return
			}
		}
	}))
	w.EXPECT().Stop().DoAndReturn(func() error {
		close(events)
		return nil
	})
	return w
}

func TestApp_Watch(t *testing.T) {
	root := t.TempDir()
	mainPath := filepath.Join(root, "src", "app", "Main.kt")
	require.NoError(t, os.MkdirAll(filepath.Dir(mainPath), domain.DirPerm))
	require.NoError(t, os.WriteFile(mainPath, []byte("fun main() {}"), domain.FilePerm))

	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, root)
		ctrl := gomock.NewController(t)
		events := make(chan ports.WatchEvent)
		w := chanWatcher(ctrl, root, events)
		f.app.WithWatcherFactory(func() (ports.Watcher, error) { return w, nil })

		f.log.EXPECT().Info("watching " + root)
		f.log.EXPECT().Info("edited src/app/Main.kt")

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() {
			done <- f.app.Watch(ctx, root, []string{"src/app/Main.kt"}, app.ResolveOptions{JSON: true})
		}()
		synctest.Wait()

		// A write that keeps the content is dropped.
		events <- ports.WatchEvent{Path: mainPath, Operation: ports.OpWrite}
		time.Sleep(time.Second)
		synctest.Wait()
		require.Len(t, f.out.reports(t), 1)

		require.NoError(t, os.WriteFile(mainPath, []byte("fun main() { println() }"), domain.FilePerm))
		events <- ports.WatchEvent{Path: mainPath, Operation: ports.OpWrite}
		time.Sleep(time.Second)
		synctest.Wait()

		cancel()
		require.NoError(t, <-done)

		reports := f.out.reports(t)
		require.Len(t, reports, 2)
		assert.Equal(t, uint64(3), reports[0].Stats.FacadesBuilt)
		assert.Equal(t, uint64(4), reports[1].Stats.FacadesBuilt, "an out-of-block edit rebuilds the modules tier only")
		assert.Equal(t, reports[0].Files[0].Module, reports[1].Files[0].Module)
	})
}

func TestApp_Watch_StartFails(t *testing.T) {
	root := t.TempDir()
	f := newFixture(t, root)
	ctrl := gomock.NewController(t)
	w := mocks.NewMockWatcher(ctrl)
	w.EXPECT().Start(gomock.Any(), gomock.Any()).Return(errors.New("too many open files"))
	f.app.WithWatcherFactory(func() (ports.Watcher, error) { return w, nil })

	err := f.app.Watch(t.Context(), root, []string{"src/app/Main.kt"}, app.ResolveOptions{JSON: true})
	require.ErrorContains(t, err, "failed to start watcher")
}
