package ports

import (
	"context"

	"go.trai.ch/facades/internal/core/domain"
)

// Analyzer runs semantic analysis. The cache layer never analyzes anything itself.
//
//go:generate mockgen -source=analyzer.go -destination=mocks/mock_analyzer.go -package=mocks
type Analyzer interface {
	// LoadBuiltIns loads the built-in declarations selected by key.
	LoadBuiltIns(ctx context.Context, key domain.BuiltInsKey) (*domain.BuiltIns, error)

	// AnalyzeModule analyzes one module together with the request's synthetic files.
	AnalyzeModule(ctx context.Context, req domain.AnalysisRequest) (*domain.ModuleAnalysis, error)
}
