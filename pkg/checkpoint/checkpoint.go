// Package checkpoint persists collection progress so a multi-hour run can be
// interrupted and resumed without re-fetching or double-applying data. The
// on-disk format is versioned YAML written atomically; compatibility across
// code changes is a deliberate contract, not incidental.
package checkpoint

import (
	"sort"
	"time"
)

// Version is the current on-disk schema version. Bump it when the layout
// changes incompatibly; Load rejects files written by a different version.
const Version = 1

// Confidence buckets for the match counters.
const (
	BucketHigh   = "high"   // >= 0.9
	BucketMedium = "medium" // >= 0.7
	BucketLow    = "low"    // below threshold
)

// Counters aggregates per-run statistics, flushed with the checkpoint and
// reported in the run summary.
type Counters struct {
	GamesProcessed int            `yaml:"games_processed"`
	RequestsMade   int            `yaml:"requests_made"`
	FieldsUpdated  int            `yaml:"fields_updated"`
	MatchBuckets   map[string]int `yaml:"match_buckets,omitempty"`
	FieldsByName   map[string]int `yaml:"fields_by_name,omitempty"`
	SourceHits     map[string]int `yaml:"source_hits,omitempty"`
	SourceMisses   map[string]int `yaml:"source_misses,omitempty"`
}

// Checkpoint is the durable progress record for one collection job. It is a
// plain value passed explicitly through the orchestrator, never shared
// global state.
type Checkpoint struct {
	Version   int       `yaml:"version"`
	StartedAt time.Time `yaml:"started_at"`
	UpdatedAt time.Time `yaml:"updated_at"`

	Processed []string `yaml:"processed_game_ids"`
	Failed    []string `yaml:"failed_game_ids,omitempty"`

	Counters Counters `yaml:"counters"`

	processed map[string]struct{}
	failed    map[string]struct{}
}

// New creates an empty checkpoint for a fresh run.
func New() *Checkpoint {
	now := time.Now().UTC()
	return &Checkpoint{
		Version:   Version,
		StartedAt: now,
		UpdatedAt: now,
		Counters: Counters{
			MatchBuckets: make(map[string]int),
			FieldsByName: make(map[string]int),
			SourceHits:   make(map[string]int),
			SourceMisses: make(map[string]int),
		},
	}
}

// IsProcessed reports whether a game was completed by this or a prior run.
func (c *Checkpoint) IsProcessed(gameID string) bool {
	c.index()
	_, ok := c.processed[gameID]
	return ok
}

// MarkProcessed records a game as fully processed. Idempotent.
func (c *Checkpoint) MarkProcessed(gameID string) {
	c.index()
	if _, ok := c.processed[gameID]; ok {
		return
	}
	c.processed[gameID] = struct{}{}
	c.Processed = append(c.Processed, gameID)
	sort.Strings(c.Processed)
	c.Counters.GamesProcessed++
	c.touch()
}

// MarkFailed records a game whose processing hit a non-source failure.
// Failed games are still marked processed by the orchestrator so they are
// not retried until the checkpoint is explicitly cleared.
func (c *Checkpoint) MarkFailed(gameID string) {
	c.index()
	if _, ok := c.failed[gameID]; ok {
		return
	}
	c.failed[gameID] = struct{}{}
	c.Failed = append(c.Failed, gameID)
	sort.Strings(c.Failed)
	c.touch()
}

// CountRequest bumps the outbound request counter.
func (c *Checkpoint) CountRequest() {
	c.ensureCounters()
	c.Counters.RequestsMade++
	c.touch()
}

// CountHit records that a source produced at least one verified candidate
// for a game.
func (c *Checkpoint) CountHit(source string) {
	c.ensureCounters()
	c.Counters.SourceHits[source]++
	c.touch()
}

// CountMiss records that a source produced nothing usable for a game.
func (c *Checkpoint) CountMiss(source string) {
	c.ensureCounters()
	c.Counters.SourceMisses[source]++
	c.touch()
}

// CountMatch buckets a verification confidence for the summary.
func (c *Checkpoint) CountMatch(confidence, minConfidence float64) {
	c.ensureCounters()
	switch {
	case confidence >= 0.9:
		c.Counters.MatchBuckets[BucketHigh]++
	case confidence >= minConfidence:
		c.Counters.MatchBuckets[BucketMedium]++
	default:
		c.Counters.MatchBuckets[BucketLow]++
	}
	c.touch()
}

// CountFieldUpdate records one merged field for the summary.
func (c *Checkpoint) CountFieldUpdate(field string) {
	c.ensureCounters()
	c.Counters.FieldsUpdated++
	c.Counters.FieldsByName[field]++
	c.touch()
}

func (c *Checkpoint) touch() {
	c.UpdatedAt = time.Now().UTC()
}

// index builds the lookup sets from the serialized slices on first use,
// so a checkpoint loaded from disk behaves like one built in memory.
func (c *Checkpoint) index() {
	if c.processed == nil {
		c.processed = make(map[string]struct{}, len(c.Processed))
		for _, id := range c.Processed {
			c.processed[id] = struct{}{}
		}
	}
	if c.failed == nil {
		c.failed = make(map[string]struct{}, len(c.Failed))
		for _, id := range c.Failed {
			c.failed[id] = struct{}{}
		}
	}
}

func (c *Checkpoint) ensureCounters() {
	if c.Counters.MatchBuckets == nil {
		c.Counters.MatchBuckets = make(map[string]int)
	}
	if c.Counters.FieldsByName == nil {
		c.Counters.FieldsByName = make(map[string]int)
	}
	if c.Counters.SourceHits == nil {
		c.Counters.SourceHits = make(map[string]int)
	}
	if c.Counters.SourceMisses == nil {
		c.Counters.SourceMisses = make(map[string]int)
	}
}
