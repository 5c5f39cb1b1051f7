package domain

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Platform is the compilation target of a module.
type Platform string

const (
	// PlatformJVM targets the JVM.
	PlatformJVM Platform = "jvm"
	// PlatformJS targets JavaScript.
	PlatformJS Platform = "js"
	// PlatformNative targets native binaries.
	PlatformNative Platform = "native"
	// PlatformCommon is shared multiplatform code.
	PlatformCommon Platform = "common"
)

// ParsePlatform validates a platform name. The empty string defaults to JVM.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case "":
		return PlatformJVM, nil
	case PlatformJVM, PlatformJS, PlatformNative, PlatformCommon:
		return Platform(s), nil
	default:
		return "", Annotate(ErrInvalidPlatform, "platform", s)
	}
}

// PlatformAnalysisSettings partitions every facade cache. Two requests with
// different settings never share a facade. The struct is comparable and is used
// directly as a map key; it is never mutated after construction.
type PlatformAnalysisSettings struct {
	Platform               Platform
	SDK                    ModuleID
	ExtraBuiltInsSupported bool
	ReleaseCoroutines      bool
}

// NewPlatformAnalysisSettings builds the settings value for a target platform.
func NewPlatformAnalysisSettings(
	platform Platform,
	sdk ModuleID,
	extraBuiltInsSupported bool,
	releaseCoroutines bool,
) PlatformAnalysisSettings {
	return PlatformAnalysisSettings{
		Platform:               platform,
		SDK:                    sdk,
		ExtraBuiltInsSupported: extraBuiltInsSupported,
		ReleaseCoroutines:      releaseCoroutines,
	}
}

// WithPlatform returns a copy of the settings targeting another platform.
func (s PlatformAnalysisSettings) WithPlatform(p Platform) PlatformAnalysisSettings {
	s.Platform = p
	return s
}

// Fingerprint returns a stable 64-bit digest over every field.
func (s PlatformAnalysisSettings) Fingerprint() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(string(s.Platform))
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(s.SDK.String())
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(strconv.FormatBool(s.ExtraBuiltInsSupported))
	_, _ = d.WriteString(strconv.FormatBool(s.ReleaseCoroutines))
	return d.Sum64()
}

// String returns a diagnostic label.
func (s PlatformAnalysisSettings) String() string {
	label := string(s.Platform)
	if !s.SDK.IsZero() {
		label += "/" + s.SDK.String()
	}
	if s.ExtraBuiltInsSupported {
		label += "+builtins"
	}
	if s.ReleaseCoroutines {
		label += "+coroutines"
	}
	return label
}
