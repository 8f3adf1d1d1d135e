package games_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huddlestats/gridiron/pkg/games"
	"github.com/huddlestats/gridiron/pkg/teams"
)

func TestTypeIsPlayoff(t *testing.T) {
	assert.False(t, games.Preseason.IsPlayoff())
	assert.False(t, games.Regular.IsPlayoff())
	assert.True(t, games.Wildcard.IsPlayoff())
	assert.True(t, games.Divisional.IsPlayoff())
	assert.True(t, games.Conference.IsPlayoff())
	assert.True(t, games.SuperBowl.IsPlayoff())
}

func TestSetProvenanceDoesNotOverwrite(t *testing.T) {
	g := &games.Game{GameID: "g1"}

	g.SetProvenance(games.FieldAttendance, "espn")
	g.SetProvenance(games.FieldAttendance, "wikipedia")

	assert.Equal(t, "espn", g.Provenance[games.FieldAttendance])
	assert.True(t, g.Provenanced(games.FieldAttendance))
	assert.False(t, g.Provenanced(games.FieldVenue))
}

func TestCloneIsDeep(t *testing.T) {
	kickoff := games.Date(2023, time.January, 8)
	g := &games.Game{
		GameID:     "g1",
		Season:     2022,
		Week:       games.Int(18),
		HomeTeam:   teams.Bills,
		AwayTeam:   teams.Patriots,
		Kickoff:    &kickoff,
		HomeScore:  games.Int(35),
		AwayScore:  games.Int(23),
		Attendance: games.Int(70000),
		Provenance: map[games.Field]string{games.FieldAttendance: "espn"},
	}

	clone := g.Clone()
	*clone.HomeScore = 0
	*clone.Attendance = 1
	clone.Provenance[games.FieldVenue] = "wikipedia"

	assert.Equal(t, 35, *g.HomeScore)
	assert.Equal(t, 70000, *g.Attendance)
	assert.NotContains(t, g.Provenance, games.FieldVenue)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		week *int
		want games.Type
	}{
		{"august is preseason", games.Date(2023, time.August, 12), nil, games.Preseason},
		{"august preseason even with week", games.Date(2023, time.August, 26), games.Int(3), games.Preseason},
		{"early september week zero", games.Date(2023, time.September, 2), games.Int(0), games.Preseason},
		{"early september no week", games.Date(2023, time.September, 5), nil, games.Preseason},
		{"week one", games.Date(2023, time.September, 10), games.Int(1), games.Regular},
		{"week eighteen in january", games.Date(2024, time.January, 7), games.Int(18), games.Regular},
		{"october no week defaults regular", games.Date(2023, time.October, 15), nil, games.Regular},
		{"early january no week", games.Date(2024, time.January, 6), nil, games.Regular},
		{"wildcard window", games.Date(2024, time.January, 14), nil, games.Wildcard},
		{"divisional window", games.Date(2024, time.January, 21), nil, games.Divisional},
		{"conference window", games.Date(2024, time.January, 28), nil, games.Conference},
		{"super bowl window", games.Date(2024, time.February, 11), nil, games.SuperBowl},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, games.Classify(tt.date, tt.week))
		})
	}
}

func TestHasBothScores(t *testing.T) {
	g := &games.Game{}
	require.False(t, g.HasBothScores())

	g.HomeScore = games.Int(24)
	assert.False(t, g.HasBothScores())

	g.AwayScore = games.Int(17)
	assert.True(t, g.HasBothScores())
}
