package domain

import "go.trai.ch/zerr"

var (
	// ErrEmptyRequest is returned when a resolution request carries no elements.
	ErrEmptyRequest = zerr.New("resolution request has no elements")

	// ErrMissingContainingFile is returned when an element has no owning file, or a
	// code fragment's context chain does not end in a file.
	ErrMissingContainingFile = zerr.New("element has no containing file")

	// ErrFilesFromDifferentModules is returned when a synthetic or script file set spans
	// more than one module.
	ErrFilesFromDifferentModules = zerr.New("files belong to different modules")

	// ErrUnknownModuleKind is returned when a module-info kind has no matching facade policy.
	ErrUnknownModuleKind = zerr.New("unknown module kind")

	// ErrModuleNotCovered is returned when a facade is asked to analyze a module that neither
	// its filter nor any upstream facade covers.
	ErrModuleNotCovered = zerr.New("module is not covered by the facade chain")

	// ErrContextNotDerived is returned when a facade's upstream was built with a context that
	// is not an ancestor of the facade's own context.
	ErrContextNotDerived = zerr.New("facade context is not derived from upstream context")

	// ErrReuseCycle is returned when a facade's upstream chain loops back on itself.
	ErrReuseCycle = zerr.New("cycle detected in facade reuse chain")

	// ErrProjectClosed is returned when a request reaches a cache service that has been closed.
	ErrProjectClosed = zerr.New("project is closed")

	// ErrStorageClosed is returned when analysis storage is used after its project closed.
	ErrStorageClosed = zerr.New("analysis storage is closed")

	// ErrModuleNotFound is returned when a module id is not part of the project model.
	ErrModuleNotFound = zerr.New("module not found")

	// ErrFileNotFound is returned when a path is not part of the project model.
	ErrFileNotFound = zerr.New("file not found")

	// ErrInvalidPlatform is returned when a platform name is not recognized.
	ErrInvalidPlatform = zerr.New("invalid platform, expected 'jvm', 'js', 'native' or 'common'")

	// ErrInvalidModuleKind is returned when a module kind name is not recognized.
	ErrInvalidModuleKind = zerr.New("invalid module kind")

	// ErrInvalidModuleName is returned when a module name contains invalid characters.
	ErrInvalidModuleName = zerr.New("invalid module name")

	// ErrDuplicateModule is returned when a project declares the same module twice.
	ErrDuplicateModule = zerr.New("duplicate module")

	// ErrDuplicateFile is returned when a project declares the same file twice.
	ErrDuplicateFile = zerr.New("duplicate file")

	// ErrInvalidCacheSize is returned when a configured cache capacity is not positive.
	ErrInvalidCacheSize = zerr.New("cache capacity must be positive")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when the config file cannot be found.
	ErrConfigNotFound = zerr.New("could not find facades.yaml")

	// ErrInvalidFilePath is returned when a configured path is absolute or escapes the project root.
	ErrInvalidFilePath = zerr.New("file path must be relative to the project root")

	// ErrUnsupportedVersion is returned when the config file declares an unknown schema version.
	ErrUnsupportedVersion = zerr.New("unsupported config version")

	// ErrNoFilesSpecified is returned when a command needs at least one file argument.
	ErrNoFilesSpecified = zerr.New("no files specified")

	// ErrAnalysisFailed is returned when the analyzer fails for a module.
	ErrAnalysisFailed = zerr.New("module analysis failed")

	// ErrBuiltInsLoadFailed is returned when built-in declarations cannot be loaded.
	ErrBuiltInsLoadFailed = zerr.New("failed to load built-ins")
)

// Annotate attaches metadata to a sentinel error. The result still matches the
// sentinel with errors.Is.
func Annotate(sentinel error, key string, value any) error {
	return zerr.With(zerr.Wrap(sentinel, ""), key, value)
}
