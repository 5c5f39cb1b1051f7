package cacheservice

import "go.trai.ch/facades/internal/engine/cache"

// Stats is a point-in-time view of the service caches.
type Stats struct {
	Global       cache.Stats `json:"global"`
	ScriptGlobal cache.Stats `json:"script_global"`
	Scripts      cache.Stats `json:"scripts"`
	Special      cache.Stats `json:"special"`

	BuiltIns       int    `json:"builtins"`
	BuiltInsResets uint64 `json:"builtins_resets"`
	FacadesBuilt   uint64 `json:"facades_built"`

	// ScriptsBuilds and SpecialBuilds count how often each file-set cache was
	// created. Every coarse invalidation starts a new one.
	ScriptsBuilds uint64 `json:"scripts_builds"`
	SpecialBuilds uint64 `json:"special_builds"`
}

// Stats reports hit, miss and eviction counters of every cache.
func (s *Service) Stats() Stats {
	st := Stats{
		Global:         s.globals.Stats(),
		ScriptGlobal:   s.scriptGlobals.Stats(),
		BuiltIns:       s.builtIns.Len(),
		BuiltInsResets: s.builtIns.Resets(),
		FacadesBuilt:   s.built.Load(),

		ScriptsBuilds: s.scripts.Computes(),
		SpecialBuilds: s.special.Computes(),
	}
	if inner, ok := s.scripts.Peek(); ok {
		st.Scripts = inner.Stats()
	}
	if inner, ok := s.special.Peek(); ok {
		st.Special = inner.Stats()
	}
	return st
}
