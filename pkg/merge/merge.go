// Package merge fills missing fields on a canonical game from verified
// candidates. The merger only ever writes fields that are currently unset
// and without provenance; once a source has supplied a field, no later
// candidate revisits it, regardless of confidence.
package merge

import (
	"sort"
	"time"

	"github.com/huddlestats/gridiron/pkg/games"
	"github.com/huddlestats/gridiron/pkg/verify"
)

// DefaultMinConfidence is high enough that no single criterion can clear it
// alone; chosen empirically by the system this replaces.
const DefaultMinConfidence = 0.7

// DefaultSourcePriority breaks confidence ties. Typed JSON values beat
// regex-extracted text, so the structured API source comes first.
var DefaultSourcePriority = []string{"espn", "wikipedia"}

// Merger fills unset canonical fields from verified candidates.
type Merger struct {
	minConfidence  float64
	sourcePriority map[string]int
}

// Option configures a Merger.
type Option func(*Merger)

// WithMinConfidence overrides the default confidence threshold. A candidate
// scoring exactly the threshold is accepted.
func WithMinConfidence(min float64) Option {
	return func(m *Merger) {
		m.minConfidence = min
	}
}

// WithSourcePriority overrides the tie-break order; earlier sources win.
func WithSourcePriority(sources ...string) Option {
	return func(m *Merger) {
		m.sourcePriority = priorityIndex(sources)
	}
}

// New creates a Merger with the default threshold and source priority.
func New(opts ...Option) *Merger {
	m := &Merger{
		minConfidence:  DefaultMinConfidence,
		sourcePriority: priorityIndex(DefaultSourcePriority),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Result reports what one merge call changed.
type Result struct {
	// Game is a copy of the input with the accepted fields filled in. The
	// input game is never mutated.
	Game *games.Game

	// Updated lists the fields actually changed, for audit logging.
	Updated []games.Field
}

// Merge applies verified candidates to a canonical game. Candidates below
// the confidence threshold are discarded; the rest are applied in descending
// confidence order with the fixed source priority breaking ties. A merge
// with zero eligible candidates is a legitimate no-op, not an error.
func (m *Merger) Merge(game *games.Game, results []*verify.Result) *Result {
	merged := game.Clone()
	out := &Result{Game: merged}

	eligible := make([]*verify.Result, 0, len(results))
	for _, r := range results {
		if r.Confidence >= m.minConfidence {
			eligible = append(eligible, r)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].Confidence != eligible[j].Confidence {
			return eligible[i].Confidence > eligible[j].Confidence
		}
		return m.priority(eligible[i].Candidate.Source) < m.priority(eligible[j].Candidate.Source)
	})

	for _, r := range eligible {
		m.apply(merged, r.Candidate, out)
	}
	return out
}

// apply fills every still-unset fillable field the candidate can supply.
func (m *Merger) apply(game *games.Game, candidate *games.Candidate, out *Result) {
	if candidate.Attendance != nil && game.Attendance == nil && !game.Provenanced(games.FieldAttendance) {
		game.Attendance = games.Int(*candidate.Attendance)
		record(game, out, games.FieldAttendance, candidate.Source)
	}

	if candidate.WeatherTemp != nil && game.WeatherTemp == nil && !game.Provenanced(games.FieldWeatherTemp) {
		game.WeatherTemp = games.Int(*candidate.WeatherTemp)
		record(game, out, games.FieldWeatherTemp, candidate.Source)
	}

	if candidate.WeatherCondition != "" && game.WeatherCondition == "" && !game.Provenanced(games.FieldWeatherCondition) {
		game.WeatherCondition = candidate.WeatherCondition
		record(game, out, games.FieldWeatherCondition, candidate.Source)
	}

	if candidate.Venue != "" && game.Venue == "" && !game.Provenanced(games.FieldVenue) {
		game.Venue = candidate.Venue
		record(game, out, games.FieldVenue, candidate.Source)
	}

	// Kickoff is only fillable while the canonical record carries a bare
	// date, and only from a candidate that carries a clock time.
	if candidate.Date != nil && hasClockTime(*candidate.Date) &&
		(game.Kickoff == nil || game.KickoffDateOnly) && !game.Provenanced(games.FieldKickoff) {
		t := *candidate.Date
		game.Kickoff = &t
		game.KickoffDateOnly = false
		record(game, out, games.FieldKickoff, candidate.Source)
	}

	// Scores fill together, and only while the canonical record has neither.
	// Once either score exists they are permanently closed to this pipeline.
	if candidate.HasBothScores() &&
		game.HomeScore == nil && game.AwayScore == nil &&
		!game.Provenanced(games.FieldHomeScore) && !game.Provenanced(games.FieldAwayScore) {
		game.HomeScore = games.Int(*candidate.HomeScore)
		game.AwayScore = games.Int(*candidate.AwayScore)
		record(game, out, games.FieldHomeScore, candidate.Source)
		record(game, out, games.FieldAwayScore, candidate.Source)
	}
}

func record(game *games.Game, out *Result, field games.Field, source string) {
	game.SetProvenance(field, source)
	out.Updated = append(out.Updated, field)
}

// priority returns the tie-break rank of a source; unknown sources sort last.
func (m *Merger) priority(source string) int {
	if rank, ok := m.sourcePriority[source]; ok {
		return rank
	}
	return len(m.sourcePriority)
}

func priorityIndex(sources []string) map[string]int {
	index := make(map[string]int, len(sources))
	for i, s := range sources {
		index[s] = i
	}
	return index
}

// hasClockTime reports whether the timestamp carries more than a bare date.
func hasClockTime(t time.Time) bool {
	return t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0
}
