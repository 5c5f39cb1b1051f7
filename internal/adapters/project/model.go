// Package project provides an in-memory host project model built from a loaded
// workspace. It owns the project trackers and advances them on edits.
package project

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"go.trai.ch/facades/internal/core/domain"
	"go.trai.ch/facades/internal/core/ports"
	"go.trai.ch/facades/internal/engine/tracker"
	"go.trai.ch/zerr"
)

var _ ports.ProjectModel = (*Model)(nil)

// NotUnderContentRoot owns every file outside the roots of all modules.
var NotUnderContentRoot = domain.NewModuleInfo("<not-under-content-root>", domain.KindNotUnderContentRoot)

type fileEntry struct {
	file       *domain.File
	module     domain.ModuleInfo
	inSource   bool
	outOfBlock atomic.Int64
	stamp      atomic.Int64
}

// Model is a ports.ProjectModel over a fixed set of modules and files.
type Model struct {
	root    string
	modules map[domain.ModuleID]domain.ModuleSpec
	order   []domain.ModuleID

	mu    sync.RWMutex
	files map[domain.InternedString]*fileEntry

	outOfCodeBlock     *tracker.Simple
	library            *tracker.Simple
	projectRoot        *tracker.Simple
	scriptDependencies *tracker.Simple
	modification       *tracker.Simple
}

// New builds a model from a workspace.
func New(ws *domain.Workspace) (*Model, error) {
	m := &Model{
		root:               ws.Root,
		modules:            make(map[domain.ModuleID]domain.ModuleSpec, len(ws.Modules)),
		files:              make(map[domain.InternedString]*fileEntry, len(ws.Files)),
		outOfCodeBlock:     tracker.NewSimple(),
		library:            tracker.NewSimple(),
		projectRoot:        tracker.NewSimple(),
		scriptDependencies: tracker.NewSimple(),
		modification:       tracker.NewSimple(),
	}

	for _, spec := range ws.Modules {
		if _, ok := m.modules[spec.Info.ID]; ok {
			return nil, domain.Annotate(domain.ErrDuplicateModule, "module", spec.Info.ID.String())
		}
		m.modules[spec.Info.ID] = spec
		m.order = append(m.order, spec.Info.ID)
	}

	for _, fs := range ws.Files {
		if _, ok := m.files[fs.File.Path]; ok {
			return nil, domain.Annotate(domain.ErrDuplicateFile, "file", fs.File.Path.String())
		}
		spec, ok := m.modules[fs.Module]
		if !ok {
			err := domain.Annotate(domain.ErrModuleNotFound, "module", fs.Module.String())
			return nil, zerr.With(err, "file", fs.File.Path.String())
		}
		m.files[fs.File.Path] = &fileEntry{file: fs.File, module: spec.Info, inSource: fs.InSource}
	}
	return m, nil
}

// Root returns the project root directory.
func (m *Model) Root() string {
	return m.root
}

// File returns the registered file for a path, or a new physical file placed by
// the module roots when the path is unknown.
func (m *Model) File(path string) *domain.File {
	key := domain.NewInternedString(m.normalize(path))
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.files[key]; ok {
		return e.file
	}
	module, inSource := m.locate(key.String())
	f := domain.NewFile(key.String())
	if module.Kind == domain.KindScript {
		f = domain.NewScriptFile(key.String())
	}
	m.files[key] = &fileEntry{file: f, module: module, inSource: inSource}
	return f
}

// Files returns every registered file in path order.
func (m *Model) Files() []*domain.File {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]*domain.File, 0, len(m.files))
	for _, e := range m.files {
		files = append(files, e.file)
	}
	slices.SortFunc(files, func(a, b *domain.File) int { return a.Path.Compare(b.Path) })
	return files
}

// Modules returns the module infos in declaration order.
func (m *Model) Modules() []domain.ModuleInfo {
	infos := make([]domain.ModuleInfo, len(m.order))
	for i, id := range m.order {
		infos[i] = m.modules[id].Info
	}
	return infos
}

// ModuleInfo implements ports.ProjectModel.
func (m *Model) ModuleInfo(file *domain.File) (domain.ModuleInfo, error) {
	if e, ok := m.entry(file); ok {
		return e.module, nil
	}
	module, _ := m.locate(file.Path.String())
	return module, nil
}

// InProjectSource implements ports.ProjectModel.
func (m *Model) InProjectSource(file *domain.File) bool {
	if e, ok := m.entry(file); ok {
		return e.inSource
	}
	_, inSource := m.locate(file.Path.String())
	return inSource
}

// Settings implements ports.ProjectModel.
func (m *Model) Settings(module domain.ModuleInfo) (domain.PlatformAnalysisSettings, error) {
	if module == NotUnderContentRoot {
		return domain.NewPlatformAnalysisSettings(domain.PlatformJVM, domain.ModuleID{}, false, false), nil
	}
	spec, ok := m.modules[module.ID]
	if !ok {
		return domain.PlatformAnalysisSettings{}, domain.Annotate(domain.ErrModuleNotFound, "module", module.String())
	}
	return domain.NewPlatformAnalysisSettings(spec.Platform, spec.SDK, spec.ExtraBuiltIns, spec.ReleaseCoroutines), nil
}

// DependentModules returns the module and every module depending on it, directly
// or transitively, in declaration order.
func (m *Model) DependentModules(module domain.ModuleInfo) []domain.ModuleInfo {
	dependents := map[domain.ModuleID]bool{module.ID: true}
	for changed := true; changed; {
		changed = false
		for _, id := range m.order {
			if dependents[id] {
				continue
			}
			for _, dep := range m.modules[id].Dependencies {
				if dependents[dep] {
					dependents[id] = true
					changed = true
					break
				}
			}
		}
	}

	result := []domain.ModuleInfo{module}
	for _, id := range m.order {
		if id != module.ID && dependents[id] {
			result = append(result, m.modules[id].Info)
		}
	}
	return result
}

// RelatedModules implements ports.ProjectModel.
func (m *Model) RelatedModules(script *domain.File) []domain.ModuleInfo {
	module, err := m.ModuleInfo(script)
	if err != nil {
		return nil
	}
	var related []domain.ModuleInfo
	for _, id := range m.modules[module.ID].Related {
		if spec, ok := m.modules[id]; ok {
			related = append(related, spec.Info)
		}
	}
	return related
}

// ScriptDependencies returns the per-file dependency module of a script whose
// module declares one.
func (m *Model) ScriptDependencies(script *domain.File) (domain.ModuleInfo, bool) {
	module, err := m.ModuleInfo(script)
	if err != nil {
		return domain.ModuleInfo{}, false
	}
	id := m.modules[module.ID].ScriptDependencies
	if id.IsZero() {
		return domain.ModuleInfo{}, false
	}
	return domain.ModuleInfo{ID: id, Kind: domain.KindScriptDependencies, ForFile: script.Path}, true
}

// Trackers implements ports.ProjectModel.
func (m *Model) Trackers() ports.ProjectTrackers {
	return ports.ProjectTrackers{
		OutOfCodeBlock:     m.outOfCodeBlock,
		Library:            m.library,
		ProjectRoot:        m.projectRoot,
		ScriptDependencies: m.scriptDependencies,
		Modification:       m.modification,
	}
}

// OutOfBlockCount implements ports.ProjectModel.
func (m *Model) OutOfBlockCount(file *domain.File) int64 {
	if e, ok := m.entry(file); ok {
		return e.outOfBlock.Load()
	}
	return 0
}

// ModificationStamp implements ports.ProjectModel.
func (m *Model) ModificationStamp(file *domain.File) int64 {
	if e, ok := m.entry(file); ok {
		return e.stamp.Load()
	}
	return 0
}

// Edit records a change to a file. Changes outside function bodies advance the
// out-of-code-block trackers as well.
func (m *Model) Edit(path string, outOfBlock bool) error {
	key := domain.NewInternedString(m.normalize(path))
	m.mu.RLock()
	e, ok := m.files[key]
	m.mu.RUnlock()
	if !ok {
		return domain.Annotate(domain.ErrFileNotFound, "file", path)
	}

	e.stamp.Add(1)
	if outOfBlock {
		e.outOfBlock.Add(1)
		m.outOfCodeBlock.Increment()
	}
	m.modification.Increment()
	return nil
}

// LibrariesChanged records a change in library contents.
func (m *Model) LibrariesChanged() {
	m.library.Increment()
	m.modification.Increment()
}

// RootsChanged records a change in module structure or content roots.
func (m *Model) RootsChanged() {
	m.projectRoot.Increment()
	m.modification.Increment()
}

// ScriptDependenciesChanged records a change in the inferred script classpath.
func (m *Model) ScriptDependenciesChanged() {
	m.scriptDependencies.Increment()
	m.modification.Increment()
}

func (m *Model) entry(file *domain.File) (*fileEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.files[file.Path]
	return e, ok
}

// locate places an unregistered path by the longest matching module root.
func (m *Model) locate(path string) (domain.ModuleInfo, bool) {
	best := -1
	var module domain.ModuleInfo
	for _, id := range m.order {
		spec := m.modules[id]
		for _, root := range spec.Roots {
			root = filepath.ToSlash(filepath.Clean(root))
			if (path == root || strings.HasPrefix(path, root+"/")) && len(root) > best {
				best = len(root)
				module = spec.Info
			}
		}
	}
	if best < 0 {
		return NotUnderContentRoot, false
	}
	return module, module.Kind != domain.KindScript
}

// normalize maps absolute paths under the project root to root-relative slash paths.
func (m *Model) normalize(path string) string {
	if m.root != "" && filepath.IsAbs(path) {
		if rel, err := filepath.Rel(m.root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}
