package analysis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/facades/internal/adapters/analysis"
	"go.trai.ch/facades/internal/core/domain"
	"go.trai.ch/facades/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newAnalyzer(t *testing.T) *analysis.DigestAnalyzer {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	return analysis.NewDigestAnalyzer(log)
}

func TestDigestAnalyzer_LoadBuiltIns(t *testing.T) {
	a := newAnalyzer(t)

	def, err := a.LoadBuiltIns(t.Context(), domain.DefaultBuiltInsKey)
	require.NoError(t, err)
	assert.Same(t, domain.DefaultBuiltIns, def)

	key := domain.SdkBuiltInsKey(domain.NewInternedString("jdk"), true)
	b1, err := a.LoadBuiltIns(t.Context(), key)
	require.NoError(t, err)
	b2, err := a.LoadBuiltIns(t.Context(), key)
	require.NoError(t, err)

	assert.Equal(t, key, b1.Key)
	assert.Equal(t, b1.Fingerprint, b2.Fingerprint)
	assert.NotEqual(t, def.Fingerprint, b1.Fingerprint)
	assert.False(t, b1.LoadedAt.IsZero())
}

func TestDigestAnalyzer_AnalyzeModule(t *testing.T) {
	a := newAnalyzer(t)
	settings := domain.NewPlatformAnalysisSettings(domain.PlatformJVM, domain.NewInternedString("jdk"), false, false)
	base := domain.AnalysisRequest{
		Module:     domain.NewModuleInfo("app", domain.KindModuleSource),
		Settings:   settings,
		BuiltIns:   domain.DefaultBuiltIns,
		Generation: 1,
		Resolver:   "project source roots and libraries",
	}

	digest := func(t *testing.T, req domain.AnalysisRequest) uint64 {
		t.Helper()
		res, err := a.AnalyzeModule(t.Context(), req)
		require.NoError(t, err)
		assert.Equal(t, req.Module, res.Module)
		assert.Equal(t, req.Resolver, res.Resolver)
		assert.Equal(t, req.Generation, res.Generation)
		return res.Digest
	}

	want := digest(t, base)
	assert.Equal(t, want, digest(t, base), "digests are deterministic")

	tests := []struct {
		name   string
		mutate func(r *domain.AnalysisRequest)
	}{
		{"module", func(r *domain.AnalysisRequest) { r.Module = domain.NewModuleInfo("core", domain.KindModuleSource) }},
		{"settings", func(r *domain.AnalysisRequest) { r.Settings = settings.WithPlatform(domain.PlatformJS) }},
		{"generation", func(r *domain.AnalysisRequest) { r.Generation = 2 }},
		{"synthetic files", func(r *domain.AnalysisRequest) { r.SyntheticFiles = []*domain.File{domain.NewFile("x.kt")} }},
		{"built-ins", func(r *domain.AnalysisRequest) {
			r.BuiltIns = &domain.BuiltIns{Fingerprint: 7}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			assert.NotEqual(t, want, digest(t, req))
		})
	}

	t.Run("resolver does not change the digest", func(t *testing.T) {
		req := base
		req.Resolver = "sdk"
		assert.Equal(t, want, digest(t, req))
	})
}

func TestDigestAnalyzer_Canceled(t *testing.T) {
	a := newAnalyzer(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := a.AnalyzeModule(ctx, domain.AnalysisRequest{})
	require.ErrorIs(t, err, context.Canceled)

	_, err = a.LoadBuiltIns(ctx, domain.DefaultBuiltInsKey)
	require.ErrorIs(t, err, context.Canceled)
}
