package domain

// CacheOptions holds the capacities of the bounded facade caches.
type CacheOptions struct {
	// GlobalFacades bounds the per-settings global facade cache.
	GlobalFacades int
	// ScriptGlobalFacades bounds the per-settings global script facade cache.
	ScriptGlobalFacades int
	// ScriptFilesProtected and ScriptFilesProbation size the per-file-set script cache.
	ScriptFilesProtected int
	ScriptFilesProbation int
	// SpecialFilesProtected and SpecialFilesProbation size the special-file cache.
	SpecialFilesProtected int
	SpecialFilesProbation int
}

// DefaultCacheOptions returns the reference capacities: two analysis modes times
// three platform kinds times two coroutine states for global facades.
func DefaultCacheOptions() CacheOptions {
	return CacheOptions{
		GlobalFacades:         2 * 3 * 2,
		ScriptGlobalFacades:   2,
		ScriptFilesProtected:  10,
		ScriptFilesProbation:  5,
		SpecialFilesProtected: 2,
		SpecialFilesProbation: 3,
	}
}

// ModuleSpec describes one module of a project.
type ModuleSpec struct {
	Info              ModuleInfo
	Platform          Platform
	SDK               ModuleID
	ExtraBuiltIns     bool
	ReleaseCoroutines bool
	// Dependencies lists direct dependencies by id.
	Dependencies []ModuleID
	// Related lists project modules a script belongs to.
	Related []ModuleID
	// ScriptDependencies names the per-file dependency module of a standalone script.
	ScriptDependencies ModuleID
	// Roots lists directories whose files belong to the module.
	Roots []string
}

// FileSpec places a file in a module.
type FileSpec struct {
	File   *File
	Module ModuleID
	// InSource reports whether the file is under the module's source roots.
	InSource bool
}

// Workspace is a loaded project description.
type Workspace struct {
	Root    string
	Cache   CacheOptions
	Modules []ModuleSpec
	Files   []FileSpec
}
