package facade

import (
	"context"

	"go.trai.ch/facades/internal/core/domain"
)

// Resolution binds a project facade to the module and files of one request.
// It is created per request and never cached.
type Resolution struct {
	project *Project
	module  domain.ModuleInfo
	files   []*domain.File
}

// NewResolution creates a view of project for module.
func NewResolution(project *Project, module domain.ModuleInfo, files []*domain.File) *Resolution {
	return &Resolution{project: project, module: module, files: files}
}

// Project returns the underlying cache node.
func (r *Resolution) Project() *Project { return r.project }

// Module returns the target module.
func (r *Resolution) Module() domain.ModuleInfo { return r.module }

// Files returns the files of the request.
func (r *Resolution) Files() []*domain.File { return r.files }

// Settings returns the settings partition the view resolves under.
func (r *Resolution) Settings() domain.PlatformAnalysisSettings { return r.project.Settings() }

// AnalyzeModule analyzes the target module.
func (r *Resolution) AnalyzeModule(ctx context.Context) (*domain.ModuleAnalysis, error) {
	return r.project.AnalyzeModule(ctx, r.module)
}

// Analyze returns the binding context of an element of the target module.
func (r *Resolution) Analyze(ctx context.Context, el *domain.Element) (*domain.BindingContext, error) {
	if _, err := el.ContainingFile(); err != nil {
		return nil, err
	}
	analysis, err := r.AnalyzeModule(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.BindingContext{Element: el, Analysis: analysis}, nil
}

// BuiltIns returns the built-ins the view resolves against.
func (r *Resolution) BuiltIns(ctx context.Context) (*domain.BuiltIns, error) {
	return r.project.BuiltIns(ctx)
}
