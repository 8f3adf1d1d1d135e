// Package collect orchestrates a full enrichment run: enumerate games that
// still need data, fan out to every applicable source, verify and merge the
// candidates, and persist results with resumable checkpoints.
//
// Source fetches for one game run concurrently; verification, merging and
// checkpoint mutation stay single-threaded, so no lock discipline leaks into
// the scoring or merge code.
package collect

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/huddlestats/gridiron/internal/sources"
	"github.com/huddlestats/gridiron/internal/store"
	"github.com/huddlestats/gridiron/pkg/checkpoint"
	"github.com/huddlestats/gridiron/pkg/errors"
	"github.com/huddlestats/gridiron/pkg/games"
	"github.com/huddlestats/gridiron/pkg/logging"
	"github.com/huddlestats/gridiron/pkg/merge"
	"github.com/huddlestats/gridiron/pkg/schedule"
	"github.com/huddlestats/gridiron/pkg/teams"
	"github.com/huddlestats/gridiron/pkg/verify"
)

// State is the orchestrator's lifecycle phase, exposed for observability.
type State string

// Lifecycle states, in order.
const (
	StateIdle       State = "idle"
	StateLoading    State = "loading_checkpoint"
	StateProcessing State = "processing"
	StateSaving     State = "saving"
	StateDraining   State = "draining"
	StateDone       State = "done"
)

// DefaultFlushEvery is how many processed games trigger a checkpoint save.
const DefaultFlushEvery = 10

// Summary reports what one run did.
type Summary struct {
	GamesListed    int
	GamesProcessed int
	GamesSkipped   int
	GamesFailed    int
	FieldsUpdated  int
	Counters       checkpoint.Counters
}

// Collector drives one collection run.
type Collector struct {
	store       store.Store
	registry    *sources.Registry
	checkpoints checkpoint.Store

	verifier  *verify.Verifier
	merger    *merge.Merger
	scheduler *schedule.Scheduler

	seasons       []int
	minConfidence float64
	flushEvery    int
	logger        *zerolog.Logger

	state State
}

// Option configures a Collector.
type Option func(*Collector)

// WithSeasons limits the run to the given seasons.
func WithSeasons(seasons ...int) Option {
	return func(c *Collector) {
		c.seasons = seasons
	}
}

// WithMinConfidence overrides the acceptance threshold for both merging and
// the confidence bucket counters.
func WithMinConfidence(min float64) Option {
	return func(c *Collector) {
		c.minConfidence = min
	}
}

// WithFlushEvery overrides the checkpoint flush cadence.
func WithFlushEvery(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.flushEvery = n
		}
	}
}

// WithScheduler overrides the request scheduler.
func WithScheduler(s *schedule.Scheduler) Option {
	return func(c *Collector) {
		c.scheduler = s
	}
}

// WithVerifier overrides the candidate verifier.
func WithVerifier(v *verify.Verifier) Option {
	return func(c *Collector) {
		c.verifier = v
	}
}

// WithLogger overrides the run logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// New creates a Collector. The merger threshold follows the collector's
// minimum confidence, and the source priority follows registry order.
func New(st store.Store, registry *sources.Registry, checkpoints checkpoint.Store, opts ...Option) *Collector {
	c := &Collector{
		store:         st,
		registry:      registry,
		checkpoints:   checkpoints,
		minConfidence: merge.DefaultMinConfidence,
		flushEvery:    DefaultFlushEvery,
		logger:        logging.Default(),
		state:         StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.verifier == nil {
		c.verifier = verify.New(teams.MustNormalizer())
	}
	if c.scheduler == nil {
		c.scheduler = schedule.New()
	}
	if c.merger == nil {
		c.merger = merge.New(
			merge.WithMinConfidence(c.minConfidence),
			merge.WithSourcePriority(registry.Names()...),
		)
	}
	return c
}

// State returns the current lifecycle phase.
func (c *Collector) State() State {
	return c.state
}

// outcome is one source's answer for one game, gathered concurrently and
// applied single-threaded.
type outcome struct {
	source     string
	candidates []games.Candidate
	err        error
}

// Run executes the collection. It returns a summary alongside any fatal
// error; on interruption the summary covers the games completed before the
// cutoff and the checkpoint on disk reflects exactly those games.
func (c *Collector) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	c.state = StateLoading
	cp, err := c.checkpoints.Load()
	if err != nil {
		return summary, err
	}

	list, err := c.store.ListIncomplete(ctx, c.seasons)
	if err != nil {
		return summary, err
	}
	summary.GamesListed = len(list)
	c.logger.Info().Int("games", len(list)).Ints("seasons", c.seasons).Msg("Starting collection")

	c.state = StateProcessing
	sinceFlush := 0
	for _, game := range list {
		if ctx.Err() != nil {
			return c.drain(cp, summary, ctx.Err())
		}
		if cp.IsProcessed(game.GameID) {
			summary.GamesSkipped++
			continue
		}

		if err := c.processGame(ctx, game, cp, summary); err != nil {
			// only interruption propagates; source trouble never does
			return c.drain(cp, summary, err)
		}
		summary.GamesProcessed++

		sinceFlush++
		if sinceFlush >= c.flushEvery {
			c.state = StateSaving
			if err := c.checkpoints.Save(cp); err != nil {
				return summary, err
			}
			sinceFlush = 0
			c.state = StateProcessing
		}
	}

	return c.drain(cp, summary, nil)
}

// drain flushes the checkpoint one last time and finalizes the summary.
// A checkpoint save failure outranks the run error, since it loses progress.
func (c *Collector) drain(cp *checkpoint.Checkpoint, summary *Summary, runErr error) (*Summary, error) {
	c.state = StateDraining
	summary.Counters = cp.Counters
	summary.FieldsUpdated = cp.Counters.FieldsUpdated
	if err := c.checkpoints.Save(cp); err != nil {
		return summary, err
	}
	c.state = StateDone
	c.logger.Info().
		Int("processed", summary.GamesProcessed).
		Int("skipped", summary.GamesSkipped).
		Int("failed", summary.GamesFailed).
		Int("fields_updated", summary.FieldsUpdated).
		Msg("Collection finished")
	return summary, runErr
}

// processGame runs the fan-out, verify, merge, persist sequence for one game.
// The returned error is non-nil only for interruption; per-source failures
// and store write failures are absorbed into counters and the failed list.
func (c *Collector) processGame(ctx context.Context, game *games.Game, cp *checkpoint.Checkpoint, summary *Summary) error {
	log := c.logger.With().Str("game", game.GameID).Int("season", game.Season).Logger()

	applicable := make([]sources.Source, 0, c.registry.Len())
	for _, src := range c.registry.List() {
		if src.Supports(game) {
			applicable = append(applicable, src)
		}
	}

	outcomes := make([]outcome, len(applicable))
	query := sources.QueryFor(game)

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range applicable {
		i, src := i, src
		g.Go(func() error {
			candidates, err := c.scheduler.Call(gctx, src.Name(), func(callCtx context.Context) ([]games.Candidate, error) {
				return src.Fetch(callCtx, query)
			})
			outcomes[i] = outcome{source: src.Name(), candidates: candidates, err: err}
			if gctx.Err() != nil {
				return gctx.Err()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// single-threaded from here on
	var results []*verify.Result
	for _, o := range outcomes {
		cp.CountRequest()
		if o.err != nil {
			cp.CountMiss(o.source)
			log.Warn().Err(o.err).Str("source", o.source).Msg("Source failed, recorded as miss")
			continue
		}

		hit := false
		for i := range o.candidates {
			r := c.verifier.Verify(game, &o.candidates[i])
			cp.CountMatch(r.Confidence, c.minConfidence)
			if r.Confidence >= c.minConfidence {
				hit = true
			}
			results = append(results, r)
		}
		if hit {
			cp.CountHit(o.source)
		} else {
			cp.CountMiss(o.source)
		}
	}

	merged := c.merger.Merge(game, results)
	if len(merged.Updated) > 0 {
		if err := c.store.Update(ctx, merged.Game); err != nil {
			summary.GamesFailed++
			cp.MarkFailed(game.GameID)
			cp.MarkProcessed(game.GameID)
			log.Error().Err(err).Msg("Persisting merged game failed")
			return nil
		}
		for _, field := range merged.Updated {
			cp.CountFieldUpdate(string(field))
		}
		log.Info().Int("fields", len(merged.Updated)).Msg("Game enriched")
	} else {
		log.Debug().Msg("No eligible candidates")
	}

	cp.MarkProcessed(game.GameID)
	return nil
}

// Fatal reports whether a run error means the process should exit non-zero.
// Interruption by the caller's context is an orderly stop.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.IsCheckpoint(err) {
		return true
	}
	return err != context.Canceled && err != context.DeadlineExceeded
}
