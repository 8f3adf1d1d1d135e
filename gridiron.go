// Package gridiron wires the collection pipeline together behind a single
// entry point, for embedding the pipeline without the CLI. A Pipeline owns
// its database connection and page fetcher; Close releases both.
package gridiron

import (
	"context"
	"fmt"

	"github.com/huddlestats/gridiron/internal/config"
	"github.com/huddlestats/gridiron/internal/render"
	"github.com/huddlestats/gridiron/internal/sources"
	"github.com/huddlestats/gridiron/internal/sources/espn"
	"github.com/huddlestats/gridiron/internal/sources/wiki"
	"github.com/huddlestats/gridiron/internal/store"
	"github.com/huddlestats/gridiron/pkg/checkpoint"
	"github.com/huddlestats/gridiron/pkg/collect"
	"github.com/huddlestats/gridiron/pkg/errors"
	"github.com/huddlestats/gridiron/pkg/schedule"
	"github.com/huddlestats/gridiron/pkg/teams"
	"github.com/huddlestats/gridiron/pkg/verify"
)

// Pipeline is a fully wired collection run, ready to execute.
type Pipeline struct {
	cfg       *config.Config
	collector *collect.Collector
	registry  *sources.Registry

	// owned resources released by Close
	db     *store.Postgres
	chrome *render.ChromeFetcher
}

// New builds a Pipeline. Without options it loads configuration from the
// environment, connects to the configured database and registers the default
// sources. Tests inject a store and sources instead.
func New(ctx context.Context, opts ...Option) (*Pipeline, error) {
	s := &settings{}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	cfg := s.cfg
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	normalizer, err := teams.NewNormalizer()
	if err != nil {
		return nil, err
	}

	p := &Pipeline{cfg: cfg}

	gameStore := s.store
	if gameStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, &errors.ValidationError{Field: "database_url", Message: "required when no store is injected"}
		}
		db, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		p.db = db
		gameStore = db
	}

	if len(s.sources) > 0 {
		p.registry = sources.NewRegistry(s.sources...)
	} else {
		var fetcher render.Fetcher
		if cfg.UseBrowser {
			p.chrome = render.NewChromeFetcher(wiki.Name)
			fetcher = p.chrome
		} else {
			fetcher = render.NewHTTPFetcher(wiki.Name)
		}
		p.registry = sources.NewRegistry(
			espn.New(normalizer, espn.Config{BaseURL: cfg.ESPNBaseURL}),
			wiki.New(normalizer, fetcher, wiki.Config{BaseURL: cfg.WikiBaseURL}),
		)
	}

	scheduler := s.scheduler
	if scheduler == nil {
		scheduler = schedule.New(
			schedule.WithDefaultInterval(cfg.RequestInterval),
			schedule.WithInterval(espn.Name, cfg.ESPNInterval),
			schedule.WithInterval(wiki.Name, cfg.WikipediaInterval),
			schedule.WithMaxAttempts(cfg.MaxAttempts),
		)
	}

	checkpoints := s.checkpoints
	if checkpoints == nil {
		checkpoints = checkpoint.NewFileStore(cfg.CheckpointPath)
	}

	collectOpts := []collect.Option{
		collect.WithSeasons(cfg.Seasons...),
		collect.WithMinConfidence(cfg.MinConfidence),
		collect.WithFlushEvery(cfg.FlushEvery),
		collect.WithScheduler(scheduler),
		collect.WithVerifier(verify.New(normalizer)),
	}
	if s.logger != nil {
		collectOpts = append(collectOpts, collect.WithLogger(s.logger))
	}
	p.collector = collect.New(gameStore, p.registry, checkpoints, collectOpts...)

	return p, nil
}

// Config returns the effective configuration.
func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// Sources returns the registered source tags in priority order.
func (p *Pipeline) Sources() []string {
	return p.registry.Names()
}

// Collect runs the pipeline to completion or interruption.
func (p *Pipeline) Collect(ctx context.Context) (*collect.Summary, error) {
	return p.collector.Run(ctx)
}

// Close releases the database connection and browser, if the pipeline owns
// them.
func (p *Pipeline) Close() error {
	if p.chrome != nil {
		p.chrome.Close()
	}
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}
