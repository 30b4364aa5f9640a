// Package memory keeps player profiles in process memory. Data is lost on
// restart; it backs the server when no database path is configured.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"targetgame/internal/game"
)

type profile struct {
	settings     []byte
	highScore    int
	bestReaction float64
	leaderboard  []game.LeaderboardEntry
}

// Store holds every profile.
type Store struct {
	mu       sync.Mutex
	profiles map[string]*profile
	now      func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		profiles: make(map[string]*profile),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Profile returns the persistence gateway of one profile.
func (s *Store) Profile(id string) game.Persistence {
	return &Profile{store: s, id: strings.TrimSpace(id)}
}

func (s *Store) get(id string) (*profile, error) {
	if id == "" {
		return nil, fmt.Errorf("profile id is required")
	}
	p, ok := s.profiles[id]
	if !ok {
		p = &profile{}
		s.profiles[id] = p
	}
	return p, nil
}

// Profile implements game.Persistence for one profile.
type Profile struct {
	store *Store
	id    string
}

func (p *Profile) LoadSettings(context.Context) (game.Settings, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	prof, err := p.store.get(p.id)
	if err != nil {
		return game.DefaultSettings(), err
	}
	return game.DecodeSettings(prof.settings), nil
}

func (p *Profile) SaveSettings(_ context.Context, settings game.Settings) error {
	data, err := game.EncodeSettings(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	prof, err := p.store.get(p.id)
	if err != nil {
		return err
	}
	prof.settings = data
	return nil
}

func (p *Profile) LoadHighScore(context.Context) (int, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	prof, err := p.store.get(p.id)
	if err != nil {
		return 0, err
	}
	return prof.highScore, nil
}

func (p *Profile) SaveHighScore(_ context.Context, score int) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	prof, err := p.store.get(p.id)
	if err != nil {
		return err
	}
	prof.highScore = score
	return nil
}

func (p *Profile) LoadBestReaction(context.Context) (float64, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	prof, err := p.store.get(p.id)
	if err != nil {
		return 0, err
	}
	return prof.bestReaction, nil
}

func (p *Profile) SaveBestReaction(_ context.Context, seconds float64) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	prof, err := p.store.get(p.id)
	if err != nil {
		return err
	}
	prof.bestReaction = seconds
	return nil
}

func (p *Profile) LoadLeaderboard(context.Context) ([]game.LeaderboardEntry, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	prof, err := p.store.get(p.id)
	if err != nil {
		return nil, err
	}
	out := make([]game.LeaderboardEntry, len(prof.leaderboard))
	copy(out, prof.leaderboard)
	return out, nil
}

func (p *Profile) AppendScore(_ context.Context, name string, score int, mode game.Mode) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	prof, err := p.store.get(p.id)
	if err != nil {
		return err
	}
	entry := game.LeaderboardEntry{
		Name:  game.NormalizePlayerName(name),
		Score: score,
		Mode:  mode,
		Date:  p.store.now(),
	}
	prof.leaderboard = game.RankLeaderboard(append(prof.leaderboard, entry))
	return nil
}

func (p *Profile) ClearLeaderboard(context.Context) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	prof, err := p.store.get(p.id)
	if err != nil {
		return err
	}
	prof.leaderboard = nil
	return nil
}
