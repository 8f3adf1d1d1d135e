// Package store is the boundary to the canonical game database. The pipeline
// reads games that still have unset fillable fields and writes back merged
// values with their provenance; identity fields are never written.
package store

import (
	"context"

	"github.com/huddlestats/gridiron/pkg/games"
)

// Store enumerates games needing enrichment and persists merge results.
type Store interface {
	// ListIncomplete returns the games in the given seasons that still have
	// at least one unset fillable field, in stable order. An empty seasons
	// slice means all seasons.
	ListIncomplete(ctx context.Context, seasons []int) ([]*games.Game, error)

	// Update persists the fillable fields and provenance of the game.
	// Identity fields are used only to locate the row.
	Update(ctx context.Context, game *games.Game) error
}

// Incomplete reports whether a game still has an unset fillable field. A
// date-only kickoff counts as unset because a source may supply the clock
// time.
func Incomplete(g *games.Game) bool {
	switch {
	case g.Kickoff == nil || g.KickoffDateOnly:
		return true
	case g.HomeScore == nil || g.AwayScore == nil:
		return true
	case g.Venue == "":
		return true
	case g.Attendance == nil:
		return true
	case g.WeatherTemp == nil || g.WeatherCondition == "":
		return true
	}
	return false
}
