// Package domain contains the core value types of the resolution-facade cache:
// module infos, platform settings, files and analysis results.
package domain

// ModuleID identifies a module-info within a project.
type ModuleID = InternedString

// ModuleKind classifies the unit that owns a file.
// The set is closed; every switch over it must handle each kind and treat the
// zero value as an internal-consistency error.
type ModuleKind uint8

const (
	// KindUnknown is the zero value and never valid on a resolved module.
	KindUnknown ModuleKind = iota
	// KindModuleSource is ordinary project source.
	KindModuleSource
	// KindLibrary is compiled library classes.
	KindLibrary
	// KindLibrarySource is the attached sources of a library.
	KindLibrarySource
	// KindSdk is the platform SDK.
	KindSdk
	// KindScript is a script file outside regular source roots.
	KindScript
	// KindScriptDependencies is the classpath a script depends on.
	KindScriptDependencies
	// KindScriptDependencySources is the sources of a script's dependencies.
	KindScriptDependencySources
	// KindNotUnderContentRoot is a file outside every content root.
	KindNotUnderContentRoot
)

var moduleKindNames = map[ModuleKind]string{
	KindUnknown:                 "unknown",
	KindModuleSource:            "module",
	KindLibrary:                 "library",
	KindLibrarySource:           "library-source",
	KindSdk:                     "sdk",
	KindScript:                  "script",
	KindScriptDependencies:      "script-dependencies",
	KindScriptDependencySources: "script-dependency-sources",
	KindNotUnderContentRoot:     "not-under-content-root",
}

// String returns the configuration name of the kind.
func (k ModuleKind) String() string {
	if name, ok := moduleKindNames[k]; ok {
		return name
	}
	return moduleKindNames[KindUnknown]
}

// ParseModuleKind maps a configuration name to a kind.
func ParseModuleKind(s string) (ModuleKind, error) {
	for kind, name := range moduleKindNames {
		if kind != KindUnknown && name == s {
			return kind, nil
		}
	}
	return KindUnknown, Annotate(ErrInvalidModuleKind, "kind", s)
}

// ModuleInfo is the classification of a file's owning unit.
// It is comparable and used as a map key; ForFile is set only for the
// per-file dependency modules of standalone scripts.
type ModuleInfo struct {
	ID      ModuleID
	Kind    ModuleKind
	ForFile InternedString
}

// NewModuleInfo creates a project-wide module info.
func NewModuleInfo(id string, kind ModuleKind) ModuleInfo {
	return ModuleInfo{ID: NewInternedString(id), Kind: kind}
}

// String returns a diagnostic label.
func (m ModuleInfo) String() string {
	if m.ForFile.IsZero() {
		return m.Kind.String() + ":" + m.ID.String()
	}
	return m.Kind.String() + ":" + m.ID.String() + "@" + m.ForFile.String()
}

// IsPerFile reports whether the module belongs to one script file only.
func (m ModuleInfo) IsPerFile() bool {
	return !m.ForFile.IsZero()
}

// IsSdk reports whether the module is an SDK.
func IsSdk(m ModuleInfo) bool { return m.Kind == KindSdk }

// IsLibrary reports whether the module is compiled library classes.
func IsLibrary(m ModuleInfo) bool { return m.Kind == KindLibrary }

// IsLibraryClasses reports whether the module holds binary classes (SDK or library).
func IsLibraryClasses(m ModuleInfo) bool {
	return m.Kind == KindSdk || m.Kind == KindLibrary
}

// IsScriptDependenciesForProject reports whether the module is the project-wide script classpath.
func IsScriptDependenciesForProject(m ModuleInfo) bool {
	return m.Kind == KindScriptDependencies && !m.IsPerFile()
}

// IsScriptDependencySourcesForProject reports whether the module is the project-wide
// script dependency sources.
func IsScriptDependencySourcesForProject(m ModuleInfo) bool {
	return m.Kind == KindScriptDependencySources && !m.IsPerFile()
}
