// Package app implements the application layer for facades.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.trai.ch/facades/internal/adapters/project"
	"go.trai.ch/facades/internal/adapters/telemetry"
	"go.trai.ch/facades/internal/adapters/watcher"
	"go.trai.ch/facades/internal/core/domain"
	"go.trai.ch/facades/internal/core/ports"
	"go.trai.ch/facades/internal/engine/cacheservice"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	analyzer     ports.Analyzer
	logger       ports.Logger
	tracer       ports.Tracer
	newWatcher   ports.WatcherFactory
	out          io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	analyzer ports.Analyzer,
	log ports.Logger,
	tracer ports.Tracer,
) *App {
	return &App{
		configLoader: loader,
		analyzer:     analyzer,
		logger:       log,
		tracer:       tracer,
		newWatcher: func() (ports.Watcher, error) {
			return watcher.NewWatcher(log)
		},
		out: os.Stdout,
	}
}

// WithOutput redirects reports to w.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// WithWatcherFactory replaces the file watcher used by Watch.
func (a *App) WithWatcherFactory(f ports.WatcherFactory) *App {
	a.newWatcher = f
	return a
}

// ResolveOptions configuration for the Resolve and Watch methods.
type ResolveOptions struct {
	// Platform overrides the target platform of every file.
	Platform string
	// JSON writes machine-readable reports.
	JSON bool
}

func (o ResolveOptions) requestOptions() ([]cacheservice.RequestOption, error) {
	if o.Platform == "" {
		return nil, nil
	}
	p, err := domain.ParsePlatform(o.Platform)
	if err != nil {
		return nil, err
	}
	return []cacheservice.RequestOption{cacheservice.WithPlatform(p)}, nil
}

// Resolve reports which facade serves each of the given files.
func (a *App) Resolve(ctx context.Context, cwd string, paths []string, opts ResolveOptions) error {
	if len(paths) == 0 {
		return domain.ErrNoFilesSpecified
	}
	reqOpts, err := opts.requestOptions()
	if err != nil {
		return err
	}

	s, err := a.open(cwd)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.resolveAll(ctx, paths, reqOpts)
	if err != nil {
		return err
	}
	return a.write(report, opts)
}

// Watch resolves the files, then resolves them again after every batch of
// relevant file changes until ctx is canceled.
func (a *App) Watch(ctx context.Context, cwd string, paths []string, opts ResolveOptions) error {
	if len(paths) == 0 {
		return domain.ErrNoFilesSpecified
	}
	reqOpts, err := opts.requestOptions()
	if err != nil {
		return err
	}

	s, err := a.open(cwd)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.resolveAll(ctx, paths, reqOpts)
	if err != nil {
		return err
	}
	if err := a.write(report, opts); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := a.newWatcher()
	if err != nil {
		return err
	}
	if err := w.Start(ctx, s.watchPaths()); err != nil {
		return zerr.Wrap(err, "failed to start watcher")
	}

	hashes := watcher.NewContentHashes()
	hashes.Seed(s.absolutePaths())

	batches := make(chan []ports.WatchEvent, 1)
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(events []ports.WatchEvent) {
		select {
		case batches <- events:
		case <-ctx.Done():
		}
	})

	go func() {
		for event := range w.Events() {
			debouncer.Add(event)
		}
	}()
	defer func() { _ = w.Stop() }()

	a.logger.Info(fmt.Sprintf("watching %s", s.model.Root()))
	for {
		select {
		case <-ctx.Done():
			return nil
		case events := <-batches:
			events, err := hashes.Filter(events)
			if err != nil {
				a.logger.Error(err)
			}
			change := s.apply(events)
			if change.Empty() {
				continue
			}
			a.logger.Info(describeChange(change))

			report, err := s.resolveAll(ctx, paths, reqOpts)
			if err != nil {
				a.logger.Error(err)
				continue
			}
			if err := a.write(report, opts); err != nil {
				return err
			}
		}
	}
}

// InstallTracing reports finished spans through the logger at debug level.
func (a *App) InstallTracing() {
	otel.SetTracerProvider(telemetry.NewProvider(a.logger))
}

func (a *App) write(report *Report, opts ResolveOptions) error {
	if opts.JSON {
		return report.WriteJSON(a.out)
	}
	return report.Render(a.out)
}

func describeChange(c project.Change) string {
	var parts []string
	if len(c.Edited) > 0 {
		parts = append(parts, "edited "+strings.Join(c.Edited, ", "))
	}
	if c.Libraries {
		parts = append(parts, "libraries changed")
	}
	if c.Scripts {
		parts = append(parts, "script dependencies changed")
	}
	if c.Roots {
		parts = append(parts, "project roots changed")
	}
	return strings.Join(parts, "; ")
}
