// Package games defines the canonical data model for the gridiron pipeline:
// the authoritative record for one game, the ephemeral candidate records
// produced by source adapters, and the provenance map that enforces the
// write-once merge discipline.
package games

import (
	"time"

	"github.com/huddlestats/gridiron/pkg/teams"
)

// Type classifies a game within a season.
type Type string

// Game types, in season order.
const (
	Preseason  Type = "preseason"
	Regular    Type = "regular"
	Wildcard   Type = "wildcard"
	Divisional Type = "divisional"
	Conference Type = "conference"
	SuperBowl  Type = "superbowl"
)

// IsPlayoff reports whether the game type is a playoff tier. The heuristic
// HTML source is only consulted for these games.
func (t Type) IsPlayoff() bool {
	switch t {
	case Wildcard, Divisional, Conference, SuperBowl:
		return true
	}
	return false
}

// Field names a settable field on a canonical game. Provenance is keyed by
// Field, and a field with provenance recorded is never written again.
type Field string

// Fillable fields.
const (
	FieldKickoff          Field = "kickoff"
	FieldHomeScore        Field = "home_score"
	FieldAwayScore        Field = "away_score"
	FieldVenue            Field = "venue"
	FieldAttendance       Field = "attendance"
	FieldWeatherTemp      Field = "weather_temp"
	FieldWeatherCondition Field = "weather_condition"
)

// Game is the system of record for one game. GameID, Season, Week,
// HomeTeam and AwayTeam originate from the authoritative schedule feed and
// are never mutated by this pipeline.
type Game struct {
	GameID   string `json:"game_id"`
	Season   int    `json:"season"`
	Week     *int   `json:"week,omitempty"`
	GameType Type   `json:"game_type"`

	// Kickoff may carry only a calendar date until some source supplies a
	// real kickoff time; KickoffDateOnly records which.
	Kickoff         *time.Time `json:"kickoff,omitempty"`
	KickoffDateOnly bool       `json:"kickoff_date_only,omitempty"`

	HomeTeam teams.Key `json:"home_team"`
	AwayTeam teams.Key `json:"away_team"`

	HomeScore *int `json:"home_score,omitempty"`
	AwayScore *int `json:"away_score,omitempty"`

	Venue            string `json:"venue,omitempty"`
	Attendance       *int   `json:"attendance,omitempty"`
	WeatherTemp      *int   `json:"weather_temp,omitempty"`
	WeatherCondition string `json:"weather_condition,omitempty"`

	// Provenance maps each filled field to the source tag that supplied it.
	// An entry here is permanent: the merger skips any field already present.
	Provenance map[Field]string `json:"provenance,omitempty"`
}

// HasBothScores reports whether both final scores are recorded.
func (g *Game) HasBothScores() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// Provenanced reports whether the field has already been supplied by a source.
func (g *Game) Provenanced(field Field) bool {
	_, ok := g.Provenance[field]
	return ok
}

// SetProvenance records the source that supplied a field, allocating the map
// on first use. It does not overwrite an existing entry.
func (g *Game) SetProvenance(field Field, source string) {
	if g.Provenance == nil {
		g.Provenance = make(map[Field]string)
	}
	if _, ok := g.Provenance[field]; !ok {
		g.Provenance[field] = source
	}
}

// Clone returns a deep copy of the game. The merger operates on a copy so a
// failed run never leaves a half-mutated record behind.
func (g *Game) Clone() *Game {
	out := *g
	out.Week = cloneInt(g.Week)
	out.HomeScore = cloneInt(g.HomeScore)
	out.AwayScore = cloneInt(g.AwayScore)
	out.Attendance = cloneInt(g.Attendance)
	out.WeatherTemp = cloneInt(g.WeatherTemp)
	if g.Kickoff != nil {
		t := *g.Kickoff
		out.Kickoff = &t
	}
	if g.Provenance != nil {
		out.Provenance = make(map[Field]string, len(g.Provenance))
		for k, v := range g.Provenance {
			out.Provenance[k] = v
		}
	}
	return &out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

// Candidate is an unverified, source-specific description of what might be
// the same game. Candidates are produced per adapter call and never
// persisted.
type Candidate struct {
	// Source is the tag of the adapter that produced this candidate.
	Source string

	// RawTeams holds the team strings exactly as the source printed them.
	RawTeams []string

	// HomeTeam and AwayTeam are set when the adapter resolved the raw
	// strings through the normalizer; empty otherwise.
	HomeTeam teams.Key
	AwayTeam teams.Key

	// UnverifiedTeams is set when any raw team string failed normalization.
	// The verifier forces the team contribution to zero for such candidates.
	UnverifiedTeams bool

	Date *time.Time

	// Scores are keyed by resolved home/away, not by source print order.
	HomeScore *int
	AwayScore *int

	Attendance       *int
	WeatherTemp      *int
	WeatherCondition string
	Venue            string

	Season int
	Week   *int
}

// HasBothScores reports whether the candidate carries both scores.
func (c *Candidate) HasBothScores() bool {
	return c.HomeScore != nil && c.AwayScore != nil
}

// Int returns a pointer to v, for building optional fields in literals.
func Int(v int) *int {
	return &v
}

// Date builds a UTC midnight timestamp for date-only values.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
