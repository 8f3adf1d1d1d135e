// Package verify scores how likely a candidate record from an external
// source describes the same game as a canonical record. Scoring is additive
// and deterministic; the verifier performs no I/O and has no side effects.
//
// The weights were carried over from the collection system this replaces and
// have not been tuned against a labeled sample; treat them as a starting
// point, not ground truth.
package verify

import (
	"fmt"
	"time"

	"github.com/huddlestats/gridiron/pkg/games"
	"github.com/huddlestats/gridiron/pkg/teams"
)

// Criterion identifies one matched signal between candidate and canonical.
type Criterion string

// Match criteria, in scoring order.
const (
	ExactDate  Criterion = "exact_date"
	NearDate   Criterion = "near_date"
	BothTeams  Criterion = "both_teams"
	OneTeam    Criterion = "one_team"
	ScoreMatch Criterion = "score_match"
	Season     Criterion = "season_match"
	Week       Criterion = "week_match"
)

// Contribution of each criterion to the confidence score.
const (
	exactDateWeight  = 0.5
	nearDateWeight   = 0.3
	bothTeamsWeight  = 0.4
	oneTeamWeight    = 0.2
	scoreMatchWeight = 0.3
	seasonWeight     = 0.1
	weekWeight       = 0.1
)

// Result is the outcome of verifying one candidate against one game.
type Result struct {
	// Candidate retains the record that was scored, so the merger can pull
	// field values from accepted results without re-fetching.
	Candidate *games.Candidate

	// Confidence is the additive score, capped at 1.0.
	Confidence float64

	// Matched lists the criteria that contributed to the score.
	Matched []Criterion

	// Notes carries human-readable mismatch diagnostics for the audit log.
	// Nothing reads Notes programmatically.
	Notes []string
}

// Has reports whether a criterion contributed to the score.
func (r *Result) Has(c Criterion) bool {
	for _, m := range r.Matched {
		if m == c {
			return true
		}
	}
	return false
}

// Verifier scores candidates against canonical games. It holds a normalizer
// for candidates whose adapters passed team strings through unresolved.
type Verifier struct {
	normalizer *teams.Normalizer
}

// New creates a Verifier backed by the given normalizer.
func New(normalizer *teams.Normalizer) *Verifier {
	return &Verifier{normalizer: normalizer}
}

// Verify scores one candidate against one canonical game.
func (v *Verifier) Verify(game *games.Game, candidate *games.Candidate) *Result {
	result := &Result{Candidate: candidate}

	v.scoreDate(game, candidate, result)
	v.scoreTeams(game, candidate, result)
	v.scoreScores(game, candidate, result)
	v.scoreSeason(game, candidate, result)
	v.scoreWeek(game, candidate, result)

	if result.Confidence > 1.0 {
		result.Confidence = 1.0
	}
	return result
}

// scoreDate awards the date contribution. A one-day difference still scores:
// sources on opposite sides of a timezone boundary record the same kickoff
// on different calendar days.
func (v *Verifier) scoreDate(game *games.Game, candidate *games.Candidate, result *Result) {
	if game.Kickoff == nil || candidate.Date == nil {
		return
	}

	diff := calendarDays(*game.Kickoff, *candidate.Date)
	switch {
	case diff == 0:
		result.Confidence += exactDateWeight
		result.Matched = append(result.Matched, ExactDate)
	case diff == 1:
		result.Confidence += nearDateWeight
		result.Matched = append(result.Matched, NearDate)
		result.Notes = append(result.Notes, "date within 1 day of canonical kickoff")
	default:
		result.Notes = append(result.Notes, fmt.Sprintf("date mismatch: %d days from canonical kickoff", diff))
	}
}

// scoreTeams awards the team contribution, side-independent: a source listing
// away before home still counts as both teams matching.
func (v *Verifier) scoreTeams(game *games.Game, candidate *games.Candidate, result *Result) {
	if candidate.UnverifiedTeams {
		result.Notes = append(result.Notes, "unverified team strings; team contribution forced to zero")
		return
	}

	resolved := v.resolvedKeys(candidate)
	if len(resolved) == 0 {
		return
	}

	var homeMatched, awayMatched bool
	for _, key := range resolved {
		if key == game.HomeTeam {
			homeMatched = true
		}
		if key == game.AwayTeam {
			awayMatched = true
		}
	}

	switch {
	case homeMatched && awayMatched:
		result.Confidence += bothTeamsWeight
		result.Matched = append(result.Matched, BothTeams)
	case homeMatched || awayMatched:
		result.Confidence += oneTeamWeight
		result.Matched = append(result.Matched, OneTeam)
		result.Notes = append(result.Notes, "only one team matched")
	default:
		result.Notes = append(result.Notes, "no candidate team matched canonical teams")
	}
}

// scoreScores awards the score contribution only when both sides already
// have both scores. A mismatch is noted and never subtracted; the merge
// invariant keeps mismatched scores from ever being written anyway.
func (v *Verifier) scoreScores(game *games.Game, candidate *games.Candidate, result *Result) {
	if !game.HasBothScores() || !candidate.HasBothScores() {
		return
	}

	if *game.HomeScore == *candidate.HomeScore && *game.AwayScore == *candidate.AwayScore {
		result.Confidence += scoreMatchWeight
		result.Matched = append(result.Matched, ScoreMatch)
		return
	}

	result.Notes = append(result.Notes, fmt.Sprintf(
		"score mismatch: canonical %d-%d vs %s %d-%d",
		*game.HomeScore, *game.AwayScore,
		candidate.Source, *candidate.HomeScore, *candidate.AwayScore))
}

func (v *Verifier) scoreSeason(game *games.Game, candidate *games.Candidate, result *Result) {
	if candidate.Season == 0 {
		return
	}
	if candidate.Season == game.Season {
		result.Confidence += seasonWeight
		result.Matched = append(result.Matched, Season)
	} else {
		result.Notes = append(result.Notes, fmt.Sprintf("season mismatch: canonical %d vs %d", game.Season, candidate.Season))
	}
}

// scoreWeek tolerates a one-week difference; some sources number the
// preseason and bye weeks differently.
func (v *Verifier) scoreWeek(game *games.Game, candidate *games.Candidate, result *Result) {
	if game.Week == nil || candidate.Week == nil {
		return
	}
	diff := *game.Week - *candidate.Week
	if diff < 0 {
		diff = -diff
	}
	if diff <= 1 {
		result.Confidence += weekWeight
		result.Matched = append(result.Matched, Week)
	} else {
		result.Notes = append(result.Notes, fmt.Sprintf("week mismatch: canonical %d vs %d", *game.Week, *candidate.Week))
	}
}

// resolvedKeys returns the candidate's canonical team keys, resolving raw
// strings through the normalizer when the adapter did not.
func (v *Verifier) resolvedKeys(candidate *games.Candidate) []teams.Key {
	var keys []teams.Key
	if candidate.HomeTeam != "" {
		keys = append(keys, candidate.HomeTeam)
	}
	if candidate.AwayTeam != "" {
		keys = append(keys, candidate.AwayTeam)
	}
	if len(keys) > 0 {
		return keys
	}

	for _, raw := range candidate.RawTeams {
		if key, err := v.normalizer.Normalize(raw); err == nil {
			keys = append(keys, key)
		}
	}
	return keys
}

// calendarDays returns the absolute difference in calendar days between two
// timestamps, ignoring the time of day.
func calendarDays(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	diff := int(ad.Sub(bd).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}
	return diff
}
