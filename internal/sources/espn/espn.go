// Package espn fetches game candidates from the public scoreboard API. It is
// the structured source: typed JSON, queried by calendar date, and the only
// source that supplies kickoff clock times.
package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/huddlestats/gridiron/internal/sources"
	"github.com/huddlestats/gridiron/pkg/errors"
	"github.com/huddlestats/gridiron/pkg/games"
	"github.com/huddlestats/gridiron/pkg/logging"
	"github.com/huddlestats/gridiron/pkg/teams"
)

// Name is the source tag recorded in provenance.
const Name = "espn"

// DefaultBaseURL is the public scoreboard API root.
const DefaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports/football/nfl"

const defaultTimeout = 15 * time.Second

// eventDateLayout matches the scoreboard's minute-precision timestamps,
// e.g. "2023-01-15T18:00Z".
const eventDateLayout = "2006-01-02T15:04Z07:00"

// conditionNames maps the scoreboard's numeric weather codes to stable
// condition strings. Unmapped codes are preserved as "condition_<id>" so no
// upstream data is silently dropped.
var conditionNames = map[int]string{
	1: "sunny",
	2: "partly_cloudy",
	3: "cloudy",
	4: "overcast",
	5: "rain",
	6: "snow",
	7: "clear",
}

// Config controls how the adapter reaches the upstream API.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Adapter implements sources.Source against the scoreboard API.
type Adapter struct {
	baseURL    string
	httpClient *http.Client
	normalizer *teams.Normalizer
}

// New constructs an adapter. A zero Config uses the public API with a
// 15 second timeout.
func New(normalizer *teams.Normalizer, cfg Config) *Adapter {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Adapter{
		baseURL:    baseURL,
		httpClient: httpClient,
		normalizer: normalizer,
	}
}

// Name implements sources.Source.
func (a *Adapter) Name() string {
	return Name
}

// Supports reports whether the game can be queried. The scoreboard is keyed
// by calendar date, so a game with no date at all cannot be looked up.
func (a *Adapter) Supports(game *games.Game) bool {
	return game.Kickoff != nil
}

// Fetch retrieves every game the scoreboard lists for the query date and maps
// each to a candidate. A date with no games is an empty result, not an error.
func (a *Adapter) Fetch(ctx context.Context, query sources.Query) ([]games.Candidate, error) {
	if query.Date == nil {
		return nil, nil
	}

	url := fmt.Sprintf("%s/scoreboard?dates=%s", a.baseURL, query.Date.Format("20060102"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewAdapterError(Name, 0, "building request", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewAdapterError(Name, 0, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.NewAdapterError(Name, resp.StatusCode, strings.TrimSpace(string(body)), nil)
	}

	var payload scoreboardResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.NewAdapterError(Name, resp.StatusCode, "decoding scoreboard response", err)
	}

	var candidates []games.Candidate
	for _, event := range payload.Events {
		for _, competition := range event.Competitions {
			c, ok := a.mapCompetition(event, competition, query)
			if !ok {
				continue
			}
			candidates = append(candidates, c)
		}
	}

	logging.Ctx(ctx).Debug().
		Str("source", Name).
		Str("date", query.Date.Format("2006-01-02")).
		Int("candidates", len(candidates)).
		Msg("Fetched scoreboard")

	return candidates, nil
}

// mapCompetition builds one candidate from a competition entry. Entries
// without two sided competitors are skipped rather than failing the fetch.
func (a *Adapter) mapCompetition(event eventResponse, competition competitionResponse, query sources.Query) (games.Candidate, bool) {
	var home, away *competitorResponse
	for i := range competition.Competitors {
		comp := &competition.Competitors[i]
		switch comp.HomeAway {
		case "home":
			home = comp
		case "away":
			away = comp
		}
	}
	if home == nil || away == nil {
		return games.Candidate{}, false
	}

	c := games.Candidate{
		Source:   Name,
		RawTeams: []string{home.Team.DisplayName, away.Team.DisplayName},
		Season:   query.Season,
		Week:     query.Week,
	}

	if key, err := a.normalizer.Normalize(home.Team.DisplayName); err == nil {
		c.HomeTeam = key
	} else {
		c.UnverifiedTeams = true
	}
	if key, err := a.normalizer.Normalize(away.Team.DisplayName); err == nil {
		c.AwayTeam = key
	} else {
		c.UnverifiedTeams = true
	}

	if event.Date != "" {
		if t, err := parseEventDate(event.Date); err == nil {
			c.Date = &t
		}
	}
	if event.Season != nil && event.Season.Year != 0 {
		c.Season = event.Season.Year
	}
	if event.Week != nil {
		week := event.Week.Number
		c.Week = &week
	}

	if home.Score != nil && home.Score.Value != nil {
		c.HomeScore = games.Int(int(*home.Score.Value))
	}
	if away.Score != nil && away.Score.Value != nil {
		c.AwayScore = games.Int(int(*away.Score.Value))
	}

	if competition.Attendance > 0 {
		c.Attendance = games.Int(competition.Attendance)
	}
	if competition.Venue != nil && competition.Venue.FullName != "" {
		c.Venue = competition.Venue.FullName
	}
	if w := competition.Weather; w != nil {
		if w.Temperature != nil {
			c.WeatherTemp = games.Int(*w.Temperature)
		}
		if w.ConditionID != 0 {
			name, ok := conditionNames[w.ConditionID]
			if !ok {
				name = fmt.Sprintf("condition_%d", w.ConditionID)
			}
			c.WeatherCondition = name
		}
	}

	return c, true
}

func parseEventDate(raw string) (time.Time, error) {
	t, err := time.Parse(eventDateLayout, raw)
	if err == nil {
		return t.UTC(), nil
	}
	t, err = time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
