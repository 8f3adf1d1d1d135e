package store

import (
	"context"
	"sort"
	"sync"

	"github.com/huddlestats/gridiron/pkg/errors"
	"github.com/huddlestats/gridiron/pkg/games"
)

// Memory is an in-memory Store for tests and dry runs. All games are deep
// copied on the way in and out so callers never share state with the store.
type Memory struct {
	mu    sync.RWMutex
	games map[string]*games.Game
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{games: make(map[string]*games.Game)}
}

// Seed inserts games, replacing any with the same ID.
func (m *Memory) Seed(gs ...*games.Game) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range gs {
		m.games[g.GameID] = g.Clone()
	}
}

// Get returns a copy of one game, or nil if absent.
func (m *Memory) Get(gameID string) *games.Game {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[gameID]
	if !ok {
		return nil
	}
	return g.Clone()
}

// ListIncomplete implements Store.
func (m *Memory) ListIncomplete(_ context.Context, seasons []int) ([]*games.Game, error) {
	wanted := make(map[int]bool, len(seasons))
	for _, s := range seasons {
		wanted[s] = true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*games.Game
	for _, g := range m.games {
		if len(seasons) > 0 && !wanted[g.Season] {
			continue
		}
		if !Incomplete(g) {
			continue
		}
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return out[i].Season < out[j].Season
		}
		return out[i].GameID < out[j].GameID
	})
	return out, nil
}

// Update implements Store.
func (m *Memory) Update(_ context.Context, game *games.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[game.GameID]; !ok {
		return &errors.StoreError{Operation: "update", GameID: game.GameID, Err: errors.New("no such game")}
	}
	m.games[game.GameID] = game.Clone()
	return nil
}
