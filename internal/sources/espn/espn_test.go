package espn_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huddlestats/gridiron/internal/sources"
	"github.com/huddlestats/gridiron/internal/sources/espn"
	"github.com/huddlestats/gridiron/pkg/errors"
	"github.com/huddlestats/gridiron/pkg/games"
	"github.com/huddlestats/gridiron/pkg/teams"
)

const scoreboardFixture = `{
  "events": [
    {
      "id": "401438004",
      "date": "2023-01-15T18:00Z",
      "season": {"year": 2022},
      "week": {"number": 1},
      "competitions": [
        {
          "attendance": 66997,
          "venue": {"fullName": "Highmark Stadium"},
          "weather": {"temperature": 28, "conditionId": 6, "displayValue": "Snow"},
          "competitors": [
            {
              "homeAway": "home",
              "team": {"displayName": "Buffalo Bills"},
              "score": {"value": 34}
            },
            {
              "homeAway": "away",
              "team": {"displayName": "Miami Dolphins"},
              "score": {"value": 31}
            }
          ]
        }
      ]
    },
    {
      "id": "401438005",
      "date": "2023-01-15T22:30Z",
      "season": {"year": 2022},
      "week": {"number": 1},
      "competitions": [
        {
          "weather": {"temperature": 45, "conditionId": 12},
          "competitors": [
            {
              "homeAway": "home",
              "team": {"displayName": "Cincinnati Bengals"},
              "score": {"value": 24}
            },
            {
              "homeAway": "away",
              "team": {"displayName": "Hamilton Tiger-Cats"},
              "score": {"value": 17}
            }
          ]
        }
      ]
    }
  ]
}`

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *espn.Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return espn.New(teams.MustNormalizer(), espn.Config{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
}

func queryForDate(t time.Time) sources.Query {
	return sources.Query{Date: &t, Season: 2022}
}

func TestFetchMapsScoreboard(t *testing.T) {
	var gotPath, gotQuery string
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(scoreboardFixture))
	})

	date := games.Date(2023, time.January, 15)
	candidates, err := adapter.Fetch(context.Background(), queryForDate(date))
	require.NoError(t, err)

	assert.Equal(t, "/scoreboard", gotPath)
	assert.Equal(t, "dates=20230115", gotQuery)
	require.Len(t, candidates, 2)

	c := candidates[0]
	assert.Equal(t, "espn", c.Source)
	assert.Equal(t, teams.Bills, c.HomeTeam)
	assert.Equal(t, teams.Dolphins, c.AwayTeam)
	assert.False(t, c.UnverifiedTeams)
	assert.Equal(t, []string{"Buffalo Bills", "Miami Dolphins"}, c.RawTeams)
	require.NotNil(t, c.Date)
	assert.Equal(t, time.Date(2023, time.January, 15, 18, 0, 0, 0, time.UTC), *c.Date)
	require.NotNil(t, c.HomeScore)
	assert.Equal(t, 34, *c.HomeScore)
	require.NotNil(t, c.AwayScore)
	assert.Equal(t, 31, *c.AwayScore)
	require.NotNil(t, c.Attendance)
	assert.Equal(t, 66997, *c.Attendance)
	assert.Equal(t, "Highmark Stadium", c.Venue)
	require.NotNil(t, c.WeatherTemp)
	assert.Equal(t, 28, *c.WeatherTemp)
	assert.Equal(t, "snow", c.WeatherCondition)
	assert.Equal(t, 2022, c.Season)
	require.NotNil(t, c.Week)
	assert.Equal(t, 1, *c.Week)
}

func TestFetchFlagsUnresolvableTeams(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(scoreboardFixture))
	})

	date := games.Date(2023, time.January, 15)
	candidates, err := adapter.Fetch(context.Background(), queryForDate(date))
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	c := candidates[1]
	assert.True(t, c.UnverifiedTeams)
	assert.Equal(t, teams.Bengals, c.HomeTeam)
	assert.Empty(t, c.AwayTeam)
	// unmapped weather code is preserved, not dropped
	assert.Equal(t, "condition_12", c.WeatherCondition)
	// no attendance entry means no attendance value
	assert.Nil(t, c.Attendance)
}

func TestFetchEmptyScoreboard(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"events": []}`))
	})

	date := games.Date(2023, time.June, 1)
	candidates, err := adapter.Fetch(context.Background(), queryForDate(date))
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestFetchWithoutDateReturnsNothing(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for a dateless query")
	})

	candidates, err := adapter.Fetch(context.Background(), sources.Query{Season: 2022})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestFetchServerErrorIsTransient(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	date := games.Date(2023, time.January, 15)
	_, err := adapter.Fetch(context.Background(), queryForDate(date))
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
}

func TestFetchNotFoundIsPermanent(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	date := games.Date(2023, time.January, 15)
	_, err := adapter.Fetch(context.Background(), queryForDate(date))
	require.Error(t, err)
	assert.True(t, errors.IsPermanent(err))
}

func TestFetchRateLimited(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	date := games.Date(2023, time.January, 15)
	_, err := adapter.Fetch(context.Background(), queryForDate(date))
	require.Error(t, err)
	assert.True(t, errors.IsRateLimited(err))
	assert.True(t, errors.IsTransient(err))
}

func TestSupportsRequiresDate(t *testing.T) {
	adapter := espn.New(teams.MustNormalizer(), espn.Config{})

	kickoff := games.Date(2023, time.January, 15)
	assert.True(t, adapter.Supports(&games.Game{Kickoff: &kickoff}))
	assert.False(t, adapter.Supports(&games.Game{}))
}
