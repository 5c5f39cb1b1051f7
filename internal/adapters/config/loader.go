// Package config loads the project description from facades.yaml.
package config

import (
	"fmt"
	"maps"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/facades/internal/core/domain"
	"go.trai.ch/facades/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
}

// NewLoader creates a new Loader reading from the OS filesystem.
func NewLoader(logger ports.Logger) *Loader {
	return NewLoaderWithFS(logger, NewOSFS())
}

// NewLoaderWithFS creates a new Loader reading from fsys.
func NewLoaderWithFS(logger ports.Logger, fsys FileSystem) *Loader {
	return &Loader{Logger: logger, FS: fsys}
}

var validModuleNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// DiscoverRoot walks up from cwd to the nearest directory containing facades.yaml.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	currentDir := filepath.Clean(cwd)
	for {
		if info, err := l.FS.Stat(filepath.Join(currentDir, domain.ConfigFileName)); err == nil && !info.IsDir() {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}
	return "", domain.Annotate(domain.ErrConfigNotFound, "cwd", cwd)
}

// Load reads facades.yaml found from cwd and returns the workspace it describes.
func (l *Loader) Load(cwd string) (*domain.Workspace, error) {
	dir, err := l.DiscoverRoot(cwd)
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(dir, domain.ConfigFileName)
	var projectfile Projectfile
	if err := readAndUnmarshalYAML(l.FS, configPath, &projectfile); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	ws, err := l.build(configPath, &projectfile)
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	return ws, nil
}

func (l *Loader) build(configPath string, pf *Projectfile) (*domain.Workspace, error) {
	if pf.Version != "" && pf.Version != SupportedVersion {
		return nil, domain.Annotate(domain.ErrUnsupportedVersion, "version", pf.Version)
	}

	cache, err := cacheOptions(pf.Cache)
	if err != nil {
		return nil, err
	}

	ws := &domain.Workspace{
		Root:  resolveRoot(configPath, pf.Root),
		Cache: cache,
	}

	if ws.Modules, err = l.buildModules(ws.Root, pf.Modules); err != nil {
		return nil, err
	}
	if ws.Files, err = buildFiles(pf.Files, pf.Modules); err != nil {
		return nil, err
	}
	return ws, nil
}

func cacheOptions(dto *CacheDTO) (domain.CacheOptions, error) {
	opts := domain.DefaultCacheOptions()
	if dto == nil {
		return opts, nil
	}

	for _, field := range []struct {
		name  string
		value int
		dst   *int
	}{
		{"global_facades", dto.GlobalFacades, &opts.GlobalFacades},
		{"script_global_facades", dto.ScriptGlobalFacades, &opts.ScriptGlobalFacades},
		{"script_files.protected", dto.ScriptFiles.Protected, &opts.ScriptFilesProtected},
		{"script_files.probation", dto.ScriptFiles.Probation, &opts.ScriptFilesProbation},
		{"special_files.protected", dto.SpecialFiles.Protected, &opts.SpecialFilesProtected},
		{"special_files.probation", dto.SpecialFiles.Probation, &opts.SpecialFilesProbation},
	} {
		switch {
		case field.value < 0:
			err := domain.Annotate(domain.ErrInvalidCacheSize, "cache", field.name)
			return domain.CacheOptions{}, zerr.With(err, "value", field.value)
		case field.value > 0:
			*field.dst = field.value
		}
	}
	return opts, nil
}

func (l *Loader) buildModules(root string, dtos map[string]*ModuleDTO) ([]domain.ModuleSpec, error) {
	names := slices.Sorted(maps.Keys(dtos))
	specs := make([]domain.ModuleSpec, 0, len(names))

	for _, name := range names {
		spec, err := buildModule(name, dtos[name], dtos)
		if err != nil {
			return nil, zerr.With(err, "module", name)
		}
		for _, r := range spec.Roots {
			if info, err := l.FS.Stat(filepath.Join(root, filepath.FromSlash(r))); err != nil || !info.IsDir() {
				l.Logger.Warn(fmt.Sprintf("root %s of module %s is not a directory", r, name))
			}
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func buildModule(name string, dto *ModuleDTO, all map[string]*ModuleDTO) (domain.ModuleSpec, error) {
	if !validModuleNameRegex.MatchString(name) {
		return domain.ModuleSpec{}, domain.Annotate(domain.ErrInvalidModuleName, "name", name)
	}
	if dto == nil {
		dto = &ModuleDTO{}
	}

	kind := domain.KindModuleSource
	if dto.Kind != "" {
		var err error
		if kind, err = domain.ParseModuleKind(dto.Kind); err != nil {
			return domain.ModuleSpec{}, err
		}
	}

	platform, err := domain.ParsePlatform(dto.Platform)
	if err != nil {
		return domain.ModuleSpec{}, err
	}

	refs := slices.Concat(dto.Dependencies, dto.Related)
	for _, ref := range []string{dto.SDK, dto.ScriptDependencies} {
		if ref != "" {
			refs = append(refs, ref)
		}
	}
	for _, ref := range refs {
		if _, ok := all[ref]; !ok {
			return domain.ModuleSpec{}, domain.Annotate(domain.ErrModuleNotFound, "reference", ref)
		}
	}

	roots := make([]string, 0, len(dto.Roots))
	for _, r := range dto.Roots {
		clean, err := cleanRelPath(r)
		if err != nil {
			return domain.ModuleSpec{}, err
		}
		roots = append(roots, clean)
	}

	return domain.ModuleSpec{
		Info:               domain.NewModuleInfo(name, kind),
		Platform:           platform,
		SDK:                domain.NewInternedString(dto.SDK),
		ExtraBuiltIns:      dto.ExtraBuiltIns,
		ReleaseCoroutines:  dto.ReleaseCoroutines,
		Dependencies:       domain.NewInternedStrings(dto.Dependencies),
		Related:            domain.NewInternedStrings(dto.Related),
		ScriptDependencies: domain.NewInternedString(dto.ScriptDependencies),
		Roots:              roots,
	}, nil
}

// fileBuilder resolves file entries, including fragments whose context lives in
// another declared file.
type fileBuilder struct {
	dtos     map[string]*FileDTO
	modules  map[string]*ModuleDTO
	built    map[string]*domain.File
	visiting map[string]bool
	specs    []domain.FileSpec
}

func buildFiles(dtos map[string]*FileDTO, modules map[string]*ModuleDTO) ([]domain.FileSpec, error) {
	b := &fileBuilder{
		dtos:     make(map[string]*FileDTO, len(dtos)),
		modules:  modules,
		built:    make(map[string]*domain.File, len(dtos)),
		visiting: make(map[string]bool),
	}

	for raw, dto := range dtos {
		p, err := cleanRelPath(raw)
		if err != nil {
			return nil, err
		}
		if _, ok := b.dtos[p]; ok {
			return nil, domain.Annotate(domain.ErrDuplicateFile, "file", p)
		}
		if dto == nil {
			dto = &FileDTO{}
		}
		b.dtos[p] = dto
	}

	for _, p := range slices.Sorted(maps.Keys(b.dtos)) {
		if _, err := b.file(p); err != nil {
			return nil, zerr.With(err, "file", p)
		}
	}
	return b.specs, nil
}

func (b *fileBuilder) file(p string) (*domain.File, error) {
	if f, ok := b.built[p]; ok {
		return f, nil
	}
	dto, ok := b.dtos[p]
	if !ok {
		return nil, domain.Annotate(domain.ErrFileNotFound, "context_file", p)
	}
	if b.visiting[p] {
		return nil, domain.Annotate(domain.ErrMissingContainingFile, "fragment", p)
	}
	b.visiting[p] = true
	defer delete(b.visiting, p)

	if _, ok := b.modules[dto.Module]; !ok {
		return nil, domain.Annotate(domain.ErrModuleNotFound, "module", dto.Module)
	}

	var f *domain.File
	if dto.Context != nil {
		ctxPath, err := cleanRelPath(dto.Context.File)
		if err != nil {
			return nil, err
		}
		ctxFile, err := b.file(ctxPath)
		if err != nil {
			return nil, err
		}
		f = domain.NewCodeFragment(p, domain.NewElement(dto.Context.Element, ctxFile))
	} else {
		f = domain.NewFile(p)
	}
	f.Script = dto.Script
	if dto.Physical != nil {
		f.Physical = *dto.Physical
	}
	f.Suppressions = dto.Suppress

	inSource := !dto.Script
	if dto.Source != nil {
		inSource = *dto.Source
	}

	b.built[p] = f
	b.specs = append(b.specs, domain.FileSpec{
		File:     f,
		Module:   domain.NewInternedString(dto.Module),
		InSource: inSource,
	})
	return f, nil
}

// cleanRelPath returns p as a clean slash path relative to the project root.
func cleanRelPath(p string) (string, error) {
	slashed := filepath.ToSlash(p)
	if p == "" || filepath.IsAbs(p) || path.IsAbs(slashed) {
		return "", domain.Annotate(domain.ErrInvalidFilePath, "path", p)
	}
	clean := path.Clean(slashed)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", domain.Annotate(domain.ErrInvalidFilePath, "path", p)
	}
	return clean, nil
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](fsys FileSystem, configPath string, target *T) error {
	configFile, err := fsys.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}
	return nil
}
