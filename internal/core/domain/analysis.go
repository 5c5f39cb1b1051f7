package domain

import (
	"time"

	"github.com/cespare/xxhash/v2"
)

// BuiltInsKey selects a built-ins bundle. The set is closed: the default bundle,
// or the bundle of one SDK, each with or without extra members.
type BuiltInsKey struct {
	SDK   ModuleID
	Extra bool
}

// DefaultBuiltInsKey selects the platform-independent built-ins.
var DefaultBuiltInsKey = BuiltInsKey{}

// SdkBuiltInsKey selects the built-ins loaded from an SDK.
func SdkBuiltInsKey(sdk ModuleID, extra bool) BuiltInsKey {
	return BuiltInsKey{SDK: sdk, Extra: extra}
}

// BuiltInsKeyFor returns the key a facade with the given settings uses.
func BuiltInsKeyFor(s PlatformAnalysisSettings) BuiltInsKey {
	if s.Platform != PlatformJVM || s.SDK.IsZero() {
		return BuiltInsKey{Extra: s.ExtraBuiltInsSupported}
	}
	return SdkBuiltInsKey(s.SDK, s.ExtraBuiltInsSupported)
}

// String returns a diagnostic label.
func (k BuiltInsKey) String() string {
	label := "default"
	if !k.SDK.IsZero() {
		label = "sdk:" + k.SDK.String()
	}
	if k.Extra {
		label += "+extra"
	}
	return label
}

// BuiltIns is a loaded bundle of implicitly available declarations.
type BuiltIns struct {
	Key         BuiltInsKey
	Fingerprint uint64
	LoadedAt    time.Time
}

// DefaultBuiltIns is the platform-independent bundle. It needs no loading and
// every built-ins cache is seeded with it.
var DefaultBuiltIns = &BuiltIns{
	Key:         DefaultBuiltInsKey,
	Fingerprint: xxhash.Sum64String("builtins:" + DefaultBuiltInsKey.String()),
}

// AnalysisRequest is what a facade hands to the analyzer for one module.
type AnalysisRequest struct {
	Module         ModuleInfo
	Settings       PlatformAnalysisSettings
	SyntheticFiles []*File
	BuiltIns       *BuiltIns
	// Generation increases each time the owning facade's dependencies advance.
	Generation uint64
	// Resolver is the diagnostic name of the facade running the analysis.
	Resolver string
}

// ModuleAnalysis is the opaque result of analyzing one module.
type ModuleAnalysis struct {
	Module     ModuleInfo
	Digest     uint64
	Resolver   string
	Generation uint64
}

// BindingContext is the analysis view of one element.
type BindingContext struct {
	Element  *Element
	Analysis *ModuleAnalysis
}

// Severity is the severity of a diagnostic.
type Severity uint8

const (
	// SeverityError is a compilation error.
	SeverityError Severity = iota
	// SeverityWarning is a warning.
	SeverityWarning
	// SeverityInfo is an informational diagnostic.
	SeverityInfo
)

// Diagnostic identifies a diagnostic that may be suppressed.
type Diagnostic struct {
	ID       string
	Severity Severity
}
