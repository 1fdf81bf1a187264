// Package store provides PlayerStore implementations for the game
// extension: an in-memory store and a JSON file-backed store.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/luciancaetano/chathub"
)

// ErrNotFound is returned by FindOne for an unknown nickname.
var ErrNotFound = errors.New("player not found")

// MemoryStore is a process-local PlayerStore. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	players map[string]chathub.Player
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{players: make(map[string]chathub.Player)}
}

// Put inserts or replaces a player record. Used for seeding models.
func (s *MemoryStore) Put(player chathub.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.Nickname] = player
}

// UpdatePosition stores the player's position, creating the record if the
// nickname is unknown. The stored model is preserved.
func (s *MemoryStore) UpdatePosition(ctx context.Context, nickname, position string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.players[nickname]
	p.Nickname = nickname
	p.Position = position
	s.players[nickname] = p
	return nil
}

// FindOne returns the stored player for nickname.
func (s *MemoryStore) FindOne(ctx context.Context, nickname string) (chathub.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[nickname]
	if !ok {
		return chathub.Player{}, ErrNotFound
	}
	return p, nil
}

// FindAll returns every stored player.
func (s *MemoryStore) FindAll(ctx context.Context) ([]chathub.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]chathub.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	return players, nil
}
