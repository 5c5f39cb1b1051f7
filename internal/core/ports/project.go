package ports

import "go.trai.ch/facades/internal/core/domain"

// ProjectTrackers groups the project-level modification trackers.
type ProjectTrackers struct {
	// OutOfCodeBlock advances on edits outside function bodies.
	OutOfCodeBlock ModificationTracker
	// Library advances when library contents change.
	Library ModificationTracker
	// ProjectRoot advances when the module structure or content roots change.
	ProjectRoot ModificationTracker
	// ScriptDependencies advances when a script's inferred classpath changes.
	ScriptDependencies ModificationTracker
	// Modification advances on any edit.
	Modification ModificationTracker
}

// ProjectModel is the host project model the cache service classifies files against.
//
//go:generate mockgen -source=project.go -destination=mocks/mock_project.go -package=mocks
type ProjectModel interface {
	// ModuleInfo classifies the unit that owns the file.
	ModuleInfo(file *domain.File) (domain.ModuleInfo, error)

	// InProjectSource reports whether the file lies in the ordinary source or library
	// scope of its module.
	InProjectSource(file *domain.File) bool

	// Settings returns the analysis settings of a module.
	Settings(module domain.ModuleInfo) (domain.PlatformAnalysisSettings, error)

	// DependentModules returns the module itself and every module depending on it.
	DependentModules(module domain.ModuleInfo) []domain.ModuleInfo

	// RelatedModules returns the project modules a script belongs to.
	RelatedModules(script *domain.File) []domain.ModuleInfo

	// ScriptDependencies returns the per-file dependency module of a standalone script.
	ScriptDependencies(script *domain.File) (domain.ModuleInfo, bool)

	// Trackers returns the project-level trackers.
	Trackers() ProjectTrackers

	// OutOfBlockCount returns the out-of-code-block modification count of one file.
	OutOfBlockCount(file *domain.File) int64

	// ModificationStamp returns the raw modification stamp of one file.
	ModificationStamp(file *domain.File) int64
}
