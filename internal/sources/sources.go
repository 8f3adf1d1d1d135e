// Package sources defines the adapter contract for external game-data
// sources and a registry for managing them. Adapters differ in protocol
// (typed JSON API, text-pattern extraction from rendered pages) but expose
// the same contract: given a query, return zero or more candidate records.
//
// An empty result is a legitimate answer, never an error. Adapters
// normalize team strings before returning; a string that cannot be
// normalized is kept raw and the candidate is flagged unverified.
package sources

import (
	"context"
	"sync"
	"time"

	"github.com/huddlestats/gridiron/pkg/games"
	"github.com/huddlestats/gridiron/pkg/teams"
)

// Query identifies the game a caller wants candidates for. Adapters use
// whichever fields their protocol supports; the structured API queries by
// calendar date, the reference-site adapter by season and game type.
type Query struct {
	Date     *time.Time
	Season   int
	Week     *int
	GameType games.Type
	HomeTeam teams.Key
	AwayTeam teams.Key
}

// QueryFor builds the query for one canonical game.
func QueryFor(game *games.Game) Query {
	q := Query{
		Season:   game.Season,
		Week:     game.Week,
		GameType: game.GameType,
		HomeTeam: game.HomeTeam,
		AwayTeam: game.AwayTeam,
	}
	if game.Kickoff != nil {
		d := *game.Kickoff
		q.Date = &d
	}
	return q
}

// Source is a single external data source.
type Source interface {
	// Name returns the source tag recorded in provenance.
	Name() string

	// Supports reports whether this source is worth querying for the game.
	// The heuristic HTML source only covers playoff-tier games.
	Supports(game *games.Game) bool

	// Fetch returns candidate records for the query. Failures are
	// *errors.AdapterError values; "no data for this query" is ([]
	// or nil, nil), not an error.
	Fetch(ctx context.Context, query Query) ([]games.Candidate, error)
}

// Registry is a thread-safe, ordered collection of sources. Order is
// registration order and doubles as the merge tie-break priority.
type Registry struct {
	mu      sync.RWMutex
	ordered []Source
}

// NewRegistry creates an empty registry.
func NewRegistry(srcs ...Source) *Registry {
	r := &Registry{}
	for _, s := range srcs {
		r.Add(s)
	}
	return r
}

// Add appends a source. Re-adding a name replaces the original in place.
func (r *Registry) Add(src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.ordered {
		if existing.Name() == src.Name() {
			r.ordered[i] = src
			return
		}
	}
	r.ordered = append(r.ordered, src)
}

// List returns the sources in priority order.
func (r *Registry) List() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Source, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Names returns the source tags in priority order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.ordered))
	for i, s := range r.ordered {
		names[i] = s.Name()
	}
	return names
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}
