// Package teams maps free-text team identifiers from external sources to
// canonical team keys. Every source spells teams differently (full name,
// city only, mascot only, abbreviation, pre-relocation franchise name), so
// lookup is case-insensitive substring containment in both directions.
//
// The alias table is curated so that no alias can match two different teams;
// Normalizer construction verifies this and fails rather than allowing an
// ambiguous table to ship.
package teams

import (
	"fmt"
	"strings"

	"github.com/huddlestats/gridiron/pkg/errors"
)

// Key is the canonical identifier for a franchise.
type Key string

// String returns the string representation of a team key.
func (k Key) String() string {
	return string(k)
}

// Canonical team keys for all 32 franchises.
const (
	Cardinals  Key = "ARI"
	Falcons    Key = "ATL"
	Ravens     Key = "BAL"
	Bills      Key = "BUF"
	Panthers   Key = "CAR"
	Bears      Key = "CHI"
	Bengals    Key = "CIN"
	Browns     Key = "CLE"
	Cowboys    Key = "DAL"
	Broncos    Key = "DEN"
	Lions      Key = "DET"
	Packers    Key = "GB"
	Texans     Key = "HOU"
	Colts      Key = "IND"
	Jaguars    Key = "JAX"
	Chiefs     Key = "KC"
	Raiders    Key = "LV"
	Chargers   Key = "LAC"
	Rams       Key = "LAR"
	Dolphins   Key = "MIA"
	Vikings    Key = "MIN"
	Patriots   Key = "NE"
	Saints     Key = "NO"
	Giants     Key = "NYG"
	Jets       Key = "NYJ"
	Eagles     Key = "PHI"
	Steelers   Key = "PIT"
	FortyNiners Key = "SF"
	Seahawks   Key = "SEA"
	Buccaneers Key = "TB"
	Titans     Key = "TEN"
	Commanders Key = "WAS"
)

// aliases lists accepted spellings per franchise: full name, city, mascot,
// legacy abbreviations, and historical names for relocated or renamed
// franchises. Aliases must stay unambiguous across teams: the two Los
// Angeles and two New York franchises keep their city prefix, and short
// abbreviations that are substrings of another team's alias (CAR inside
// Cardinals, CHI inside Chiefs, PHI inside Dolphins) are deliberately
// excluded.
var aliases = map[Key][]string{
	Cardinals:  {"Arizona Cardinals", "Arizona", "Cardinals", "ARI"},
	Falcons:    {"Atlanta Falcons", "Atlanta", "Falcons", "ATL"},
	Ravens:     {"Baltimore Ravens", "Baltimore", "Ravens", "BAL"},
	Bills:      {"Buffalo Bills", "Buffalo", "Bills", "BUF"},
	Panthers:   {"Carolina Panthers", "Carolina", "Panthers"},
	Bears:      {"Chicago Bears", "Chicago", "Bears"},
	Bengals:    {"Cincinnati Bengals", "Cincinnati", "Bengals", "CIN"},
	Browns:     {"Cleveland Browns", "Cleveland", "Browns", "CLE"},
	Cowboys:    {"Dallas Cowboys", "Dallas", "Cowboys", "DAL"},
	Broncos:    {"Denver Broncos", "Denver", "Broncos", "DEN"},
	Lions:      {"Detroit Lions", "Detroit", "Lions", "DET"},
	Packers:    {"Green Bay Packers", "Green Bay", "Packers", "GNB"},
	Texans:     {"Houston Texans", "Houston", "Texans", "HOU"},
	Colts:      {"Indianapolis Colts", "Indianapolis", "Colts", "IND"},
	Jaguars:    {"Jacksonville Jaguars", "Jacksonville", "Jaguars", "JAX"},
	Chiefs:     {"Kansas City Chiefs", "Kansas City", "Chiefs", "KAN"},
	Raiders:    {"Las Vegas Raiders", "Las Vegas", "Raiders", "LVR", "Oakland Raiders", "Oakland"},
	Chargers:   {"Los Angeles Chargers", "Chargers", "LAC", "San Diego Chargers", "San Diego"},
	Rams:       {"Los Angeles Rams", "Rams", "LAR", "St. Louis Rams", "St. Louis"},
	Dolphins:   {"Miami Dolphins", "Miami", "Dolphins", "MIA"},
	Vikings:    {"Minnesota Vikings", "Minnesota", "Vikings", "MIN"},
	Patriots:   {"New England Patriots", "New England", "Patriots", "NWE"},
	Saints:     {"New Orleans Saints", "New Orleans", "Saints", "NOR"},
	Giants:     {"New York Giants", "Giants", "NYG"},
	Jets:       {"New York Jets", "Jets", "NYJ"},
	Eagles:     {"Philadelphia Eagles", "Philadelphia", "Eagles"},
	Steelers:   {"Pittsburgh Steelers", "Pittsburgh", "Steelers", "PIT"},
	FortyNiners: {"San Francisco 49ers", "San Francisco", "49ers", "SFO"},
	Seahawks:   {"Seattle Seahawks", "Seattle", "Seahawks", "SEA"},
	Buccaneers: {"Tampa Bay Buccaneers", "Tampa Bay", "Buccaneers", "TAM"},
	Titans:     {"Tennessee Titans", "Tennessee", "Titans", "OTI"},
	Commanders: {"Washington Commanders", "Washington", "Commanders", "WAS", "Redskins", "Football Team"},
}

// Normalizer resolves free-text team strings to canonical keys.
type Normalizer struct {
	// ordered key list keeps lookups deterministic when iterating the table
	keys    []Key
	aliases map[Key][]string
}

// NewNormalizer builds a Normalizer from the curated alias table, verifying
// that no alias could resolve to two different teams.
func NewNormalizer() (*Normalizer, error) {
	return newNormalizer(aliases)
}

// MustNormalizer builds a Normalizer and panics on an ambiguous table.
// The table is static, so a panic here is a programming error.
func MustNormalizer() *Normalizer {
	n, err := NewNormalizer()
	if err != nil {
		panic(err)
	}
	return n
}

func newNormalizer(table map[Key][]string) (*Normalizer, error) {
	if err := checkAmbiguity(table); err != nil {
		return nil, err
	}

	keys := make([]Key, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	// stable iteration order: alphabetical by key
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}

	return &Normalizer{keys: keys, aliases: table}, nil
}

// checkAmbiguity rejects tables where one team's alias is a substring of
// another team's alias (in either direction). Such a pair would let a single
// raw string match both teams at lookup time.
func checkAmbiguity(table map[Key][]string) error {
	for keyA, aliasesA := range table {
		for keyB, aliasesB := range table {
			if keyA >= keyB {
				continue
			}
			for _, a := range aliasesA {
				for _, b := range aliasesB {
					la, lb := strings.ToLower(a), strings.ToLower(b)
					if strings.Contains(la, lb) || strings.Contains(lb, la) {
						return &errors.ValidationError{
							Field:   "aliases",
							Message: fmt.Sprintf("alias %q of %s collides with alias %q of %s", a, keyA, b, keyB),
						}
					}
				}
			}
		}
	}
	return nil
}

// Normalize maps a raw team string to its canonical key. A raw string
// matches when it contains an alias or an alias contains it,
// case-insensitively. Returns ErrUnknownTeam when nothing matches; callers
// must treat that as "cannot verify", never guess.
func (n *Normalizer) Normalize(raw string) (Key, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return "", &errors.NormalizationError{Raw: raw}
	}

	for _, key := range n.keys {
		for _, alias := range n.aliases[key] {
			la := strings.ToLower(alias)
			if strings.Contains(trimmed, la) || strings.Contains(la, trimmed) {
				return key, nil
			}
		}
	}

	return "", &errors.NormalizationError{Raw: raw}
}

// Aliases returns the accepted aliases for a canonical key.
func (n *Normalizer) Aliases(key Key) []string {
	out := make([]string, len(n.aliases[key]))
	copy(out, n.aliases[key])
	return out
}

// Keys returns all canonical keys in stable order.
func (n *Normalizer) Keys() []Key {
	out := make([]Key, len(n.keys))
	copy(out, n.keys)
	return out
}
