package collect_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huddlestats/gridiron/internal/sources"
	"github.com/huddlestats/gridiron/internal/store"
	"github.com/huddlestats/gridiron/pkg/checkpoint"
	"github.com/huddlestats/gridiron/pkg/collect"
	"github.com/huddlestats/gridiron/pkg/errors"
	"github.com/huddlestats/gridiron/pkg/games"
	"github.com/huddlestats/gridiron/pkg/logging"
	"github.com/huddlestats/gridiron/pkg/schedule"
	"github.com/huddlestats/gridiron/pkg/teams"
)

var logNop = logging.Nop

// stubSource serves canned candidates or a canned error.
type stubSource struct {
	name       string
	candidates []games.Candidate
	err        error
	calls      int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Supports(*games.Game) bool { return true }

func (s *stubSource) Fetch(context.Context, sources.Query) ([]games.Candidate, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

func incompleteGame(id string) *games.Game {
	kickoff := games.Date(2022, time.October, 2)
	return &games.Game{
		GameID:          id,
		Season:          2022,
		GameType:        games.Regular,
		Kickoff:         &kickoff,
		KickoffDateOnly: true,
		HomeTeam:        teams.Bills,
		AwayTeam:        teams.Dolphins,
	}
}

func strongCandidate(source string) games.Candidate {
	date := time.Date(2022, time.October, 2, 17, 0, 0, 0, time.UTC)
	return games.Candidate{
		Source:           source,
		RawTeams:         []string{"Buffalo Bills", "Miami Dolphins"},
		HomeTeam:         teams.Bills,
		AwayTeam:         teams.Dolphins,
		Date:             &date,
		HomeScore:        games.Int(24),
		AwayScore:        games.Int(17),
		Attendance:       games.Int(68123),
		Venue:            "Highmark Stadium",
		WeatherTemp:      games.Int(58),
		WeatherCondition: "cloudy",
		Season:           2022,
	}
}

func fastScheduler() *schedule.Scheduler {
	return schedule.New(
		schedule.WithDefaultInterval(time.Millisecond),
		schedule.WithMaxAttempts(2),
		schedule.WithBaseDelay(time.Millisecond),
	)
}

func newCollector(t *testing.T, mem *store.Memory, srcs ...sources.Source) (*collect.Collector, *checkpoint.FileStore) {
	t.Helper()
	cps := checkpoint.NewFileStore(filepath.Join(t.TempDir(), "cp.yaml"))
	c := collect.New(mem, sources.NewRegistry(srcs...), cps,
		collect.WithScheduler(fastScheduler()),
		collect.WithLogger(&logNop),
	)
	return c, cps
}

func TestRunEnrichesIncompleteGames(t *testing.T) {
	mem := store.NewMemory()
	mem.Seed(incompleteGame("2022-g1"))
	src := &stubSource{name: "espn", candidates: []games.Candidate{strongCandidate("espn")}}
	c, cps := newCollector(t, mem, src)

	summary, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.GamesProcessed)
	assert.Equal(t, 0, summary.GamesFailed)
	assert.Equal(t, collect.StateDone, c.State())

	got := mem.Get("2022-g1")
	require.NotNil(t, got)
	require.NotNil(t, got.HomeScore)
	assert.Equal(t, 24, *got.HomeScore)
	assert.Equal(t, "Highmark Stadium", got.Venue)
	assert.False(t, got.KickoffDateOnly)
	assert.Equal(t, 17, got.Kickoff.Hour())
	assert.Equal(t, "espn", got.Provenance[games.FieldAttendance])

	cp, err := cps.Load()
	require.NoError(t, err)
	assert.True(t, cp.IsProcessed("2022-g1"))
	assert.Equal(t, 1, cp.Counters.SourceHits["espn"])
	assert.Positive(t, cp.Counters.FieldsUpdated)
}

func TestRunSkipsCheckpointedGames(t *testing.T) {
	mem := store.NewMemory()
	mem.Seed(incompleteGame("2022-g1"))
	src := &stubSource{name: "espn", candidates: []games.Candidate{strongCandidate("espn")}}
	c, cps := newCollector(t, mem, src)

	prior := checkpoint.New()
	prior.MarkProcessed("2022-g1")
	require.NoError(t, cps.Save(prior))

	summary, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.GamesProcessed)
	assert.Equal(t, 1, summary.GamesSkipped)
	assert.Zero(t, src.calls)
	// the game was never touched
	assert.Nil(t, mem.Get("2022-g1").HomeScore)
}

func TestRunIsIdempotent(t *testing.T) {
	mem := store.NewMemory()
	mem.Seed(incompleteGame("2022-g1"))
	src := &stubSource{name: "espn", candidates: []games.Candidate{strongCandidate("espn")}}
	c, _ := newCollector(t, mem, src)

	_, err := c.Run(context.Background())
	require.NoError(t, err)
	first := mem.Get("2022-g1")

	summary, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.GamesProcessed)
	assert.Equal(t, first, mem.Get("2022-g1"))
}

func TestRunSourceFailureIsMissNotGameFailure(t *testing.T) {
	mem := store.NewMemory()
	mem.Seed(incompleteGame("2022-g1"))
	good := &stubSource{name: "espn", candidates: []games.Candidate{strongCandidate("espn")}}
	bad := &stubSource{name: "wikipedia", err: errors.NewAdapterError("wikipedia", 503, "down", nil)}
	c, cps := newCollector(t, mem, good, bad)

	summary, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.GamesProcessed)
	assert.Equal(t, 0, summary.GamesFailed)
	require.NotNil(t, mem.Get("2022-g1").HomeScore)

	cp, err := cps.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cp.Counters.SourceMisses["wikipedia"])
	assert.Equal(t, 1, cp.Counters.SourceHits["espn"])
	assert.True(t, cp.IsProcessed("2022-g1"))
	// the transient failure was retried before giving up
	assert.Equal(t, 2, bad.calls)
}

func TestRunLowConfidenceCandidatesAreNotMerged(t *testing.T) {
	mem := store.NewMemory()
	mem.Seed(incompleteGame("2022-g1"))

	// wrong date and unverifiable teams: scores at most season match
	weak := strongCandidate("espn")
	far := time.Date(2022, time.December, 25, 13, 0, 0, 0, time.UTC)
	weak.Date = &far
	weak.HomeTeam = ""
	weak.AwayTeam = ""
	weak.RawTeams = []string{"Scranton Eagles", "Utica Comets"}
	weak.UnverifiedTeams = true
	src := &stubSource{name: "espn", candidates: []games.Candidate{weak}}
	c, cps := newCollector(t, mem, src)

	summary, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.GamesProcessed)
	assert.Equal(t, 0, summary.FieldsUpdated)
	assert.Nil(t, mem.Get("2022-g1").HomeScore)
	assert.True(t, mem.Get("2022-g1").KickoffDateOnly)

	cp, err := cps.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cp.Counters.MatchBuckets[checkpoint.BucketLow])
	assert.Equal(t, 1, cp.Counters.SourceMisses["espn"])
}

func TestRunStopsBetweenGamesOnCancellation(t *testing.T) {
	mem := store.NewMemory()
	mem.Seed(incompleteGame("2022-g1"), incompleteGame("2022-g2"))
	src := &stubSource{name: "espn", candidates: []games.Candidate{strongCandidate("espn")}}
	c, cps := newCollector(t, mem, src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, collect.Fatal(err))
	assert.Equal(t, 0, summary.GamesProcessed)

	// the checkpoint was still flushed
	cp, loadErr := cps.Load()
	require.NoError(t, loadErr)
	assert.NotNil(t, cp)
}

func TestRunStoreFailureMarksGameFailed(t *testing.T) {
	mem := store.NewMemory()
	mem.Seed(incompleteGame("2022-g1"))
	src := &stubSource{name: "espn", candidates: []games.Candidate{strongCandidate("espn")}}

	failing := &failingStore{Memory: mem}
	cps := checkpoint.NewFileStore(filepath.Join(t.TempDir(), "cp.yaml"))
	c := collect.New(failing, sources.NewRegistry(src), cps,
		collect.WithScheduler(fastScheduler()),
		collect.WithLogger(&logNop),
	)

	summary, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.GamesProcessed)
	assert.Equal(t, 1, summary.GamesFailed)

	cp, err := cps.Load()
	require.NoError(t, err)
	assert.True(t, cp.IsProcessed("2022-g1"))
	assert.Equal(t, []string{"2022-g1"}, cp.Failed)
}

func TestRunSeasonsFilter(t *testing.T) {
	mem := store.NewMemory()
	g2021 := incompleteGame("2021-g1")
	g2021.Season = 2021
	mem.Seed(g2021, incompleteGame("2022-g1"))
	src := &stubSource{name: "espn", candidates: []games.Candidate{strongCandidate("espn")}}

	cps := checkpoint.NewFileStore(filepath.Join(t.TempDir(), "cp.yaml"))
	c := collect.New(mem, sources.NewRegistry(src), cps,
		collect.WithScheduler(fastScheduler()),
		collect.WithSeasons(2022),
		collect.WithLogger(&logNop),
	)

	summary, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.GamesListed)
	assert.Equal(t, 1, summary.GamesProcessed)
	assert.Nil(t, mem.Get("2021-g1").HomeScore)
}

// failingStore accepts reads but rejects writes.
type failingStore struct {
	*store.Memory
}

func (f *failingStore) Update(context.Context, *games.Game) error {
	return &errors.StoreError{Operation: "update", Err: errors.New("disk full")}
}
