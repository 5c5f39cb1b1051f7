package app

import (
	"context"
	"path/filepath"
	"runtime"

	"go.trai.ch/facades/internal/adapters/project"
	"go.trai.ch/facades/internal/core/domain"
	"go.trai.ch/facades/internal/core/ports"
	"go.trai.ch/facades/internal/engine/cacheservice"
	"go.trai.ch/facades/internal/engine/facade"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// session is one loaded project with its cache service.
type session struct {
	cwd   string
	model *project.Model
	svc   *cacheservice.Service
}

func (a *App) open(cwd string) (*session, error) {
	ws, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	model, err := project.New(ws)
	if err != nil {
		return nil, zerr.Wrap(err, "invalid project description")
	}

	svc, err := cacheservice.New(model, a.analyzer, a.logger, a.tracer, ws.Cache)
	if err != nil {
		return nil, err
	}
	return &session{cwd: cwd, model: model, svc: svc}, nil
}

func (s *session) Close() {
	s.svc.Close()
}

// resolveAll resolves every path concurrently and returns the rows in argument order.
func (s *session) resolveAll(ctx context.Context, paths []string, opts []cacheservice.RequestOption) (*Report, error) {
	results := make([]resolved, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, p := range paths {
		g.Go(func() error {
			r, err := s.resolve(ctx, p, opts)
			if err != nil {
				return zerr.With(err, "file", p)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return newReport(results, s.svc.Stats()), nil
}

// resolved is the outcome of resolving one file.
type resolved struct {
	file       *domain.File
	resolution *facade.Resolution
	analysis   *domain.ModuleAnalysis
}

func (s *session) resolve(ctx context.Context, path string, opts []cacheservice.RequestOption) (resolved, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.cwd, path)
	}
	file := s.model.File(path)
	el := domain.NewElement(file.Path.String(), file)

	r, err := s.svc.GetResolutionFacade(ctx, []*domain.Element{el}, opts...)
	if err != nil {
		return resolved{}, err
	}
	analysis, err := r.AnalyzeModule(ctx)
	if err != nil {
		return resolved{}, err
	}
	return resolved{file: file, resolution: r, analysis: analysis}, nil
}

// watchPaths returns the directories to watch: the project root.
func (s *session) watchPaths() []string {
	return []string{s.model.Root()}
}

// absolutePaths returns the on-disk paths of the registered physical files.
func (s *session) absolutePaths() []string {
	var paths []string
	for _, f := range s.model.Files() {
		if f.Physical {
			paths = append(paths, filepath.Join(s.model.Root(), filepath.FromSlash(f.Path.String())))
		}
	}
	return paths
}

// apply feeds file events into the project model.
func (s *session) apply(events []ports.WatchEvent) project.Change {
	return s.model.Apply(events)
}
