package config

// SupportedVersion is the only accepted value of the version field.
const SupportedVersion = "1"

// Projectfile represents the structure of the facades.yaml configuration file.
type Projectfile struct {
	Version string                `yaml:"version"`
	Root    string                `yaml:"root"`
	Cache   *CacheDTO             `yaml:"cache"`
	Modules map[string]*ModuleDTO `yaml:"modules"`
	Files   map[string]*FileDTO   `yaml:"files"`
}

// CacheDTO overrides facade cache capacities. Zero values keep the defaults.
type CacheDTO struct {
	GlobalFacades       int        `yaml:"global_facades"`
	ScriptGlobalFacades int        `yaml:"script_global_facades"`
	ScriptFiles         SegmentDTO `yaml:"script_files"`
	SpecialFiles        SegmentDTO `yaml:"special_files"`
}

// SegmentDTO sizes a segmented cache.
type SegmentDTO struct {
	Protected int `yaml:"protected"`
	Probation int `yaml:"probation"`
}

// ModuleDTO represents a module definition in the configuration.
type ModuleDTO struct {
	Kind               string   `yaml:"kind"`
	Platform           string   `yaml:"platform"`
	SDK                string   `yaml:"sdk"`
	ExtraBuiltIns      bool     `yaml:"extra_builtins"`
	ReleaseCoroutines  bool     `yaml:"release_coroutines"`
	Dependencies       []string `yaml:"dependencies"`
	Related            []string `yaml:"related"`
	ScriptDependencies string   `yaml:"script_dependencies"`
	Roots              []string `yaml:"roots"`
}

// FileDTO places a file explicitly. Files not listed are placed by module roots.
type FileDTO struct {
	Module   string      `yaml:"module"`
	Script   bool        `yaml:"script"`
	Physical *bool       `yaml:"physical"`
	Source   *bool       `yaml:"source"`
	Context  *ContextDTO `yaml:"context"`
	Suppress []string    `yaml:"suppress"`
}

// ContextDTO names the element a code fragment is evaluated against.
type ContextDTO struct {
	File    string `yaml:"file"`
	Element string `yaml:"element"`
}
