package gridiron

import (
	"github.com/rs/zerolog"

	"github.com/huddlestats/gridiron/internal/config"
	"github.com/huddlestats/gridiron/internal/sources"
	"github.com/huddlestats/gridiron/internal/store"
	"github.com/huddlestats/gridiron/pkg/checkpoint"
	"github.com/huddlestats/gridiron/pkg/errors"
	"github.com/huddlestats/gridiron/pkg/schedule"
)

// settings collects everything an Option can override before wiring.
type settings struct {
	cfg         *config.Config
	store       store.Store
	sources     []sources.Source
	checkpoints checkpoint.Store
	scheduler   *schedule.Scheduler
	logger      *zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*settings) error

// WithConfig supplies a pre-loaded configuration instead of reading the
// environment.
func WithConfig(cfg *config.Config) Option {
	return func(s *settings) error {
		if cfg == nil {
			return &errors.ValidationError{Field: "config", Message: "must not be nil"}
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		s.cfg = cfg
		return nil
	}
}

// WithStore supplies a game store, bypassing the database connection.
func WithStore(st store.Store) Option {
	return func(s *settings) error {
		s.store = st
		return nil
	}
}

// WithSources supplies the sources to query, in priority order, replacing
// the default registrations.
func WithSources(srcs ...sources.Source) Option {
	return func(s *settings) error {
		s.sources = srcs
		return nil
	}
}

// WithCheckpoints supplies a checkpoint store, replacing the file store at
// the configured path.
func WithCheckpoints(cs checkpoint.Store) Option {
	return func(s *settings) error {
		s.checkpoints = cs
		return nil
	}
}

// WithScheduler supplies a request scheduler, replacing the one built from
// the configured intervals.
func WithScheduler(sched *schedule.Scheduler) Option {
	return func(s *settings) error {
		s.scheduler = sched
		return nil
	}
}

// WithLogger supplies the run logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *settings) error {
		s.logger = logger
		return nil
	}
}
