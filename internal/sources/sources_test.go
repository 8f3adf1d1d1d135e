package sources_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huddlestats/gridiron/internal/sources"
	"github.com/huddlestats/gridiron/pkg/games"
	"github.com/huddlestats/gridiron/pkg/teams"
)

type named string

func (n named) Name() string              { return string(n) }
func (n named) Supports(*games.Game) bool { return true }
func (n named) Fetch(context.Context, sources.Query) ([]games.Candidate, error) {
	return nil, nil
}

func TestRegistryKeepsOrder(t *testing.T) {
	r := sources.NewRegistry(named("espn"), named("wikipedia"))

	assert.Equal(t, []string{"espn", "wikipedia"}, r.Names())
	assert.Equal(t, 2, r.Len())
}

func TestRegistryAddReplacesInPlace(t *testing.T) {
	r := sources.NewRegistry(named("espn"), named("wikipedia"))
	r.Add(named("espn"))

	// replacing does not demote the source's priority
	assert.Equal(t, []string{"espn", "wikipedia"}, r.Names())
	assert.Equal(t, 2, r.Len())
}

func TestQueryFor(t *testing.T) {
	kickoff := games.Date(2023, time.January, 15)
	week := 18
	g := &games.Game{
		GameID:   "g1",
		Season:   2022,
		Week:     &week,
		GameType: games.Wildcard,
		Kickoff:  &kickoff,
		HomeTeam: teams.Bills,
		AwayTeam: teams.Dolphins,
	}

	q := sources.QueryFor(g)
	require.NotNil(t, q.Date)
	assert.Equal(t, kickoff, *q.Date)
	assert.Equal(t, 2022, q.Season)
	assert.Equal(t, games.Wildcard, q.GameType)
	assert.Equal(t, teams.Bills, q.HomeTeam)

	// the query holds a copy of the kickoff
	*q.Date = time.Time{}
	assert.Equal(t, kickoff, *g.Kickoff)
}

func TestQueryForDatelessGame(t *testing.T) {
	q := sources.QueryFor(&games.Game{GameID: "g1", Season: 2022})
	assert.Nil(t, q.Date)
}
