package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/huddlestats/gridiron/pkg/errors"
	"github.com/huddlestats/gridiron/pkg/games"
	"github.com/huddlestats/gridiron/pkg/teams"
)

// schema is the canonical games table. Identity columns are populated by the
// schedule importer; this pipeline only fills the nullable result columns.
const schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id           TEXT PRIMARY KEY,
	season            INTEGER NOT NULL,
	week              INTEGER,
	game_type         TEXT NOT NULL,
	kickoff           TIMESTAMPTZ,
	kickoff_date_only BOOLEAN NOT NULL DEFAULT FALSE,
	home_team         TEXT NOT NULL,
	away_team         TEXT NOT NULL,
	home_score        INTEGER,
	away_score        INTEGER,
	venue             TEXT,
	attendance        INTEGER,
	weather_temp      INTEGER,
	weather_condition TEXT,
	provenance        JSONB NOT NULL DEFAULT '{}'::jsonb
);
CREATE INDEX IF NOT EXISTS games_season_idx ON games (season);
`

const selectColumns = `game_id, season, week, game_type, kickoff, kickoff_date_only,
	home_team, away_team, home_score, away_score, venue, attendance,
	weather_temp, weather_condition, provenance`

// Postgres implements Store against the canonical games database.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects to the database and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, &errors.StoreError{Operation: "open", Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &errors.StoreError{Operation: "open", Err: err}
	}
	return &Postgres{db: db}, nil
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the games table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return &errors.StoreError{Operation: "migrate", Err: err}
	}
	return nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// ListIncomplete implements Store. The incompleteness predicate mirrors
// Incomplete so both implementations agree on which games need work.
func (p *Postgres) ListIncomplete(ctx context.Context, seasons []int) ([]*games.Game, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM games
		WHERE (kickoff IS NULL OR kickoff_date_only
			OR home_score IS NULL OR away_score IS NULL
			OR venue IS NULL OR venue = ''
			OR attendance IS NULL
			OR weather_temp IS NULL
			OR weather_condition IS NULL OR weather_condition = '')`, selectColumns)

	var (
		rows *sql.Rows
		err  error
	)
	if len(seasons) > 0 {
		query += ` AND season = ANY($1) ORDER BY season, game_id`
		rows, err = p.db.QueryContext(ctx, query, pq.Array(seasons))
	} else {
		query += ` ORDER BY season, game_id`
		rows, err = p.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, &errors.StoreError{Operation: "list", Err: err}
	}
	defer rows.Close()

	var out []*games.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, &errors.StoreError{Operation: "list", Err: err}
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, &errors.StoreError{Operation: "list", Err: err}
	}
	return out, nil
}

// Update implements Store. Only result columns and provenance are written.
func (p *Postgres) Update(ctx context.Context, game *games.Game) error {
	provenance, err := json.Marshal(game.Provenance)
	if err != nil {
		return &errors.StoreError{Operation: "update", GameID: game.GameID, Err: err}
	}

	res, err := p.db.ExecContext(ctx, `
		UPDATE games SET
			kickoff = $2,
			kickoff_date_only = $3,
			home_score = $4,
			away_score = $5,
			venue = NULLIF($6, ''),
			attendance = $7,
			weather_temp = $8,
			weather_condition = NULLIF($9, ''),
			provenance = $10
		WHERE game_id = $1`,
		game.GameID,
		game.Kickoff,
		game.KickoffDateOnly,
		game.HomeScore,
		game.AwayScore,
		game.Venue,
		game.Attendance,
		game.WeatherTemp,
		game.WeatherCondition,
		provenance,
	)
	if err != nil {
		return &errors.StoreError{Operation: "update", GameID: game.GameID, Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &errors.StoreError{Operation: "update", GameID: game.GameID, Err: err}
	}
	if affected == 0 {
		return &errors.StoreError{Operation: "update", GameID: game.GameID, Err: errors.New("no such game")}
	}
	return nil
}

func scanGame(rows *sql.Rows) (*games.Game, error) {
	var (
		g                games.Game
		week             sql.NullInt64
		kickoff          sql.NullTime
		homeScore        sql.NullInt64
		awayScore        sql.NullInt64
		venue            sql.NullString
		attendance       sql.NullInt64
		weatherTemp      sql.NullInt64
		weatherCondition sql.NullString
		homeTeam         string
		awayTeam         string
		gameType         string
		provenance       []byte
	)

	err := rows.Scan(
		&g.GameID, &g.Season, &week, &gameType, &kickoff, &g.KickoffDateOnly,
		&homeTeam, &awayTeam, &homeScore, &awayScore, &venue, &attendance,
		&weatherTemp, &weatherCondition, &provenance,
	)
	if err != nil {
		return nil, err
	}

	g.GameType = games.Type(gameType)
	g.HomeTeam = teams.Key(homeTeam)
	g.AwayTeam = teams.Key(awayTeam)
	if week.Valid {
		g.Week = games.Int(int(week.Int64))
	}
	if kickoff.Valid {
		t := kickoff.Time.UTC()
		g.Kickoff = &t
	}
	if homeScore.Valid {
		g.HomeScore = games.Int(int(homeScore.Int64))
	}
	if awayScore.Valid {
		g.AwayScore = games.Int(int(awayScore.Int64))
	}
	if venue.Valid {
		g.Venue = venue.String
	}
	if attendance.Valid {
		g.Attendance = games.Int(int(attendance.Int64))
	}
	if weatherTemp.Valid {
		g.WeatherTemp = games.Int(int(weatherTemp.Int64))
	}
	if weatherCondition.Valid {
		g.WeatherCondition = weatherCondition.String
	}
	if len(provenance) > 0 {
		if err := json.Unmarshal(provenance, &g.Provenance); err != nil {
			return nil, fmt.Errorf("provenance for %s: %w", g.GameID, err)
		}
	}
	return &g, nil
}
