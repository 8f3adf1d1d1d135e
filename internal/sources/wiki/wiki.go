// Package wiki extracts game candidates from reference-site pages. It is the
// heuristic source: plain text patterns over rendered HTML, consulted only
// for playoff-tier games, where dedicated per-game or per-tournament pages
// exist.
package wiki

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/huddlestats/gridiron/internal/render"
	"github.com/huddlestats/gridiron/internal/sources"
	"github.com/huddlestats/gridiron/pkg/games"
	"github.com/huddlestats/gridiron/pkg/logging"
	"github.com/huddlestats/gridiron/pkg/teams"
)

// Name is the source tag recorded in provenance.
const Name = "wikipedia"

// DefaultBaseURL is the article root.
const DefaultBaseURL = "https://en.wikipedia.org/wiki"

// firstSuperBowlSeason anchors the championship numbering: the 1966 season
// ended in championship number I, so season N maps to number N-1965.
const firstSuperBowlSeason = 1966

// Plausibility bounds for extracted values. Anything outside is a false
// positive from an unrelated number on the page.
const (
	minAttendance = 10000
	maxAttendance = 100000
	minTempF      = 0
	maxTempF      = 120
)

var attendancePatterns = []*regexp.Regexp{
	regexp.MustCompile(`attendance[:\s]*([0-9,]+)`),
	regexp.MustCompile(`([0-9,]+)\s+in attendance`),
	regexp.MustCompile(`crowd of ([0-9,]+)`),
}

var temperaturePatterns = []*regexp.Regexp{
	regexp.MustCompile(`temperature[:\s]*([0-9]+)\s*°?\s*f`),
	regexp.MustCompile(`([0-9]+)\s*°f`),
}

var conditionPattern = regexp.MustCompile(`weather[:\s]*([^.]+)`)

// maxConditionLen rejects captures that ran past a phrase into body prose.
const maxConditionLen = 50

// Adapter implements sources.Source over reference-site pages.
type Adapter struct {
	baseURL    string
	fetcher    render.Fetcher
	normalizer *teams.Normalizer
}

// Config controls which pages the adapter reads and how.
type Config struct {
	// BaseURL overrides the article root, for tests.
	BaseURL string
}

// New constructs an adapter reading pages through the given fetcher.
func New(normalizer *teams.Normalizer, fetcher render.Fetcher, cfg Config) *Adapter {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Adapter{
		baseURL:    baseURL,
		fetcher:    fetcher,
		normalizer: normalizer,
	}
}

// Name implements sources.Source.
func (a *Adapter) Name() string {
	return Name
}

// Supports reports whether the game is playoff tier. Regular-season games
// have no dedicated pages worth scraping.
func (a *Adapter) Supports(game *games.Game) bool {
	return game.GameType.IsPlayoff()
}

// Fetch tries the page URLs for the queried game in order and returns at most
// one candidate, built from the first page that both mentions a queried team
// and yields at least one extractable value. Pages that fail either check are
// skipped; a query where every page fails both is an empty result.
func (a *Adapter) Fetch(ctx context.Context, query sources.Query) ([]games.Candidate, error) {
	if !query.GameType.IsPlayoff() || query.Season == 0 {
		return nil, nil
	}

	var lastErr error
	for _, url := range a.pageURLs(query) {
		text, err := a.fetcher.FetchText(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}

		content := strings.ToLower(text)
		if a.teamMentions(content, query) == 0 {
			logging.Ctx(ctx).Debug().Str("source", Name).Str("url", url).Msg("Page mentions neither team")
			continue
		}

		c := a.extract(content, query)
		if c == nil {
			continue
		}
		logging.Ctx(ctx).Debug().Str("source", Name).Str("url", url).Msg("Extracted candidate")
		return []games.Candidate{*c}, nil
	}

	// every page failed to load; report the last failure so transient
	// errors can be retried
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

// pageURLs lists the articles that may describe the queried game, most
// specific first.
func (a *Adapter) pageURLs(query sources.Query) []string {
	if query.GameType == games.SuperBowl {
		number := query.Season - firstSuperBowlSeason + 1
		return []string{fmt.Sprintf("%s/Super_Bowl_%s", a.baseURL, romanNumeral(number))}
	}
	return []string{
		fmt.Sprintf("%s/%d_NFL_playoffs", a.baseURL, query.Season),
		fmt.Sprintf("%s/%d_%d_NFL_playoffs", a.baseURL, query.Season, query.Season+1),
	}
}

// teamMentions counts how many of the queried teams appear in the page text.
func (a *Adapter) teamMentions(content string, query sources.Query) int {
	mentions := 0
	for _, key := range []teams.Key{query.HomeTeam, query.AwayTeam} {
		if key == "" {
			continue
		}
		for _, alias := range a.normalizer.Aliases(key) {
			if strings.Contains(content, strings.ToLower(alias)) {
				mentions++
				break
			}
		}
	}
	return mentions
}

// extract pulls attendance and weather out of the page text. Returns nil when
// nothing usable was found, so the caller can fall through to the next page.
func (a *Adapter) extract(content string, query sources.Query) *games.Candidate {
	c := games.Candidate{
		Source:   Name,
		HomeTeam: query.HomeTeam,
		AwayTeam: query.AwayTeam,
		Date:     query.Date,
		Season:   query.Season,
		Week:     query.Week,
	}
	if query.HomeTeam != "" {
		c.RawTeams = append(c.RawTeams, fullName(a.normalizer, query.HomeTeam))
	}
	if query.AwayTeam != "" {
		c.RawTeams = append(c.RawTeams, fullName(a.normalizer, query.AwayTeam))
	}

	for _, pattern := range attendancePatterns {
		m := pattern.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		if v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil &&
			v >= minAttendance && v <= maxAttendance {
			c.Attendance = games.Int(v)
			break
		}
	}

	for _, pattern := range temperaturePatterns {
		m := pattern.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		if v, err := strconv.Atoi(m[1]); err == nil && v >= minTempF && v <= maxTempF {
			c.WeatherTemp = games.Int(v)
			break
		}
	}
	if c.WeatherTemp == nil {
		if m := conditionPattern.FindStringSubmatch(content); m != nil {
			desc := strings.TrimSpace(m[1])
			if desc != "" && len(desc) < maxConditionLen {
				c.WeatherCondition = desc
			}
		}
	}

	if c.Attendance == nil && c.WeatherTemp == nil && c.WeatherCondition == "" {
		return nil
	}
	return &c
}

// fullName returns the canonical display name for a key, which is curated to
// be the first alias.
func fullName(n *teams.Normalizer, key teams.Key) string {
	aliases := n.Aliases(key)
	if len(aliases) > 0 {
		return aliases[0]
	}
	return key.String()
}

// romanNumeral renders a championship number. Numbers below one clamp to "I";
// the symbol table covers every number the league has reached.
func romanNumeral(num int) string {
	if num <= 0 {
		return "I"
	}
	values := []int{100, 90, 50, 40, 10, 9, 5, 4, 1}
	symbols := []string{"C", "XC", "L", "XL", "X", "IX", "V", "IV", "I"}

	var b strings.Builder
	for i, value := range values {
		for num >= value {
			b.WriteString(symbols[i])
			num -= value
		}
	}
	return b.String()
}
