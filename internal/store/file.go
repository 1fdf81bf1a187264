package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/luciancaetano/chathub"
)

// FileStore is a PlayerStore backed by a single JSON snapshot file. The
// snapshot is loaded on open and rewritten after every mutation. Positions
// survive process restarts, which is all the game extension needs.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	players map[string]chathub.Player
}

// NewFileStore opens or creates the snapshot at path.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	fs := &FileStore{
		path:    path,
		players: make(map[string]chathub.Player),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	if len(data) == 0 {
		return fs, nil
	}

	var players []chathub.Player
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, fmt.Errorf("failed to unmarshal store file: %w", err)
	}
	for _, p := range players {
		fs.players[p.Nickname] = p
	}
	return fs, nil
}

// Put inserts or replaces a player record and persists the snapshot.
func (s *FileStore) Put(player chathub.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.Nickname] = player
	return s.persist()
}

// UpdatePosition stores the player's position, creating the record if the
// nickname is unknown, and persists the snapshot.
func (s *FileStore) UpdatePosition(ctx context.Context, nickname, position string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.players[nickname]
	p.Nickname = nickname
	p.Position = position
	s.players[nickname] = p
	return s.persist()
}

// FindOne returns the stored player for nickname.
func (s *FileStore) FindOne(ctx context.Context, nickname string) (chathub.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[nickname]
	if !ok {
		return chathub.Player{}, ErrNotFound
	}
	return p, nil
}

// FindAll returns every stored player.
func (s *FileStore) FindAll(ctx context.Context) ([]chathub.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]chathub.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	return players, nil
}

// persist writes the snapshot. Callers must hold the write lock.
func (s *FileStore) persist() error {
	players := make([]chathub.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	data, err := json.MarshalIndent(players, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store snapshot: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	return nil
}
