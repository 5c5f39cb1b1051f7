package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/facades/internal/adapters/config"
	"go.trai.ch/facades/internal/core/domain"
	"go.trai.ch/facades/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const projectfile = `
version: "1"
cache:
  global_facades: 4
  script_files:
    protected: 3
modules:
  jdk:
    kind: sdk
  guava:
    kind: library
    roots: [libs/guava]
  core:
    roots: [src/core]
    sdk: jdk
  app:
    roots: [src/app/]
    sdk: jdk
    release_coroutines: true
    dependencies: [core, guava]
  web:
    platform: js
    roots: [src/web]
  build-scripts:
    kind: script
    related: [app]
    roots: [scripts]
  tools:
    kind: script
    script_dependencies: tools-deps
  tools-deps:
    kind: script-dependencies
files:
  src/app/Main.kt:
    module: app
    suppress: [UNUSED_VARIABLE]
  ./scripts/build.kts:
    module: build-scripts
    script: true
  eval/fragment.kt:
    module: app
    context:
      file: src/app/Main.kt
      element: main
`

func newLoader(t *testing.T, fsys fstest.MapFS) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return config.NewLoaderWithFS(log, config.NewMapFSAdapter("/work", fsys))
}

func projectFS(content string) fstest.MapFS {
	return fstest.MapFS{
		"facades.yaml":    {Data: []byte(content)},
		"src/app/Main.kt": {Data: []byte("fun main() {}")},
		"src/core":        {Mode: os.ModeDir},
		"src/web":         {Mode: os.ModeDir},
		"libs/guava":      {Mode: os.ModeDir},
		"scripts":         {Mode: os.ModeDir},
	}
}

func TestLoader_Load(t *testing.T) {
	ws, err := newLoader(t, projectFS(projectfile)).Load("/work/src/app")
	require.NoError(t, err)

	assert.Equal(t, "/work", ws.Root)

	want := domain.DefaultCacheOptions()
	want.GlobalFacades = 4
	want.ScriptFilesProtected = 3
	assert.Equal(t, want, ws.Cache)

	modules := make(map[string]domain.ModuleSpec, len(ws.Modules))
	var order []string
	for _, m := range ws.Modules {
		modules[m.Info.ID.String()] = m
		order = append(order, m.Info.ID.String())
	}
	assert.Equal(t, []string{"app", "build-scripts", "core", "guava", "jdk", "tools", "tools-deps", "web"}, order)

	app := modules["app"]
	assert.Equal(t, domain.KindModuleSource, app.Info.Kind)
	assert.Equal(t, domain.PlatformJVM, app.Platform)
	assert.Equal(t, "jdk", app.SDK.String())
	assert.True(t, app.ReleaseCoroutines)
	assert.Equal(t, []string{"src/app"}, app.Roots)
	assert.Equal(t, domain.NewInternedStrings([]string{"core", "guava"}), app.Dependencies)

	assert.Equal(t, domain.PlatformJS, modules["web"].Platform)
	assert.Equal(t, domain.KindSdk, modules["jdk"].Info.Kind)
	assert.Equal(t, domain.KindScriptDependencies, modules["tools-deps"].Info.Kind)
	assert.Equal(t, "tools-deps", modules["tools"].ScriptDependencies.String())

	files := make(map[string]domain.FileSpec, len(ws.Files))
	for _, f := range ws.Files {
		files[f.File.Path.String()] = f
	}
	require.Len(t, files, 3)

	main := files["src/app/Main.kt"]
	assert.True(t, main.InSource)
	assert.True(t, main.File.Physical)
	assert.Equal(t, []string{"UNUSED_VARIABLE"}, main.File.Suppressions)

	script := files["scripts/build.kts"]
	assert.True(t, script.File.Script)
	assert.False(t, script.InSource, "scripts are outside source roots by default")

	fragment := files["eval/fragment.kt"]
	require.True(t, fragment.File.IsCodeFragment())
	assert.False(t, fragment.File.Physical)
	assert.Same(t, main.File, fragment.File.Context.File)
	assert.Equal(t, "main", fragment.File.Context.Name)
}

func TestLoader_LoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "unsupported version",
			content: "version: \"2\"\n",
			wantErr: domain.ErrUnsupportedVersion,
		},
		{
			name:    "invalid kind",
			content: "modules:\n  a:\n    kind: plugin\n",
			wantErr: domain.ErrInvalidModuleKind,
		},
		{
			name:    "invalid platform",
			content: "modules:\n  a:\n    platform: wasm\n",
			wantErr: domain.ErrInvalidPlatform,
		},
		{
			name:    "invalid module name",
			content: "modules:\n  \"a b\": {}\n",
			wantErr: domain.ErrInvalidModuleName,
		},
		{
			name:    "unknown dependency",
			content: "modules:\n  a:\n    dependencies: [b]\n",
			wantErr: domain.ErrModuleNotFound,
		},
		{
			name:    "file in unknown module",
			content: "modules:\n  a: {}\nfiles:\n  x.kt:\n    module: b\n",
			wantErr: domain.ErrModuleNotFound,
		},
		{
			name:    "root escapes project",
			content: "modules:\n  a:\n    roots: [../outside]\n",
			wantErr: domain.ErrInvalidFilePath,
		},
		{
			name:    "absolute file path",
			content: "modules:\n  a: {}\nfiles:\n  /etc/x.kt:\n    module: a\n",
			wantErr: domain.ErrInvalidFilePath,
		},
		{
			name:    "duplicate file after cleaning",
			content: "modules:\n  a: {}\nfiles:\n  x.kt:\n    module: a\n  ./x.kt:\n    module: a\n",
			wantErr: domain.ErrDuplicateFile,
		},
		{
			name:    "negative cache size",
			content: "cache:\n  global_facades: -1\n",
			wantErr: domain.ErrInvalidCacheSize,
		},
		{
			name: "fragment context undeclared",
			content: "modules:\n  a: {}\nfiles:\n  f.kt:\n    module: a\n" +
				"    context:\n      file: missing.kt\n      element: e\n",
			wantErr: domain.ErrFileNotFound,
		},
		{
			name: "fragment context cycle",
			content: "modules:\n  a: {}\nfiles:\n" +
				"  f.kt:\n    module: a\n    context:\n      file: g.kt\n      element: e\n" +
				"  g.kt:\n    module: a\n    context:\n      file: f.kt\n      element: e\n",
			wantErr: domain.ErrMissingContainingFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newLoader(t, projectFS(tt.content)).Load("/work")
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoader_ParseError(t *testing.T) {
	_, err := newLoader(t, projectFS("modules: [unclosed")).Load("/work")
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrConfigParseFailed.Error())
}

func TestLoader_MissingRootWarns(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn("root gen of module a is not a directory")

	fsys := fstest.MapFS{"facades.yaml": {Data: []byte("modules:\n  a:\n    roots: [gen]\n")}}
	_, err := config.NewLoaderWithFS(log, config.NewMapFSAdapter("/work", fsys)).Load("/work")
	require.NoError(t, err)
}

func TestLoader_DiscoverRoot(t *testing.T) {
	loader := newLoader(t, projectFS("{}"))

	root, err := loader.DiscoverRoot("/work/src/app")
	require.NoError(t, err)
	assert.Equal(t, "/work", root)

	_, err = newLoader(t, fstest.MapFS{}).DiscoverRoot("/work/src")
	require.ErrorIs(t, err, domain.ErrConfigNotFound)
}

func TestLoader_DiscoverRoot_OS(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte("version: \"1\"\n"), domain.FilePerm))

	ctrl := gomock.NewController(t)
	loader := config.NewLoader(mocks.NewMockLogger(ctrl))

	ws, err := loader.Load(nested)
	require.NoError(t, err)
	assert.Equal(t, dir, ws.Root)
	assert.Equal(t, domain.DefaultCacheOptions(), ws.Cache)
	assert.Empty(t, ws.Modules)
}
