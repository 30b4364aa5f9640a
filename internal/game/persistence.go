package game

import "context"

// Persistence stores one profile's settings, records and leaderboard.
// The engine treats every error as recoverable: it logs and falls back to
// defaults.
type Persistence interface {
	LoadSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, settings Settings) error
	LoadHighScore(ctx context.Context) (int, error)
	SaveHighScore(ctx context.Context, score int) error
	LoadBestReaction(ctx context.Context) (float64, error)
	SaveBestReaction(ctx context.Context, seconds float64) error
	// LoadLeaderboard returns at most LeaderboardSize entries, best first.
	LoadLeaderboard(ctx context.Context) ([]LeaderboardEntry, error)
	// AppendScore inserts an entry, re-sorts and truncates the leaderboard.
	AppendScore(ctx context.Context, name string, score int, mode Mode) error
	ClearLeaderboard(ctx context.Context) error
}

type nopPersistence struct{}

func (nopPersistence) LoadSettings(context.Context) (Settings, error) {
	return DefaultSettings(), nil
}
func (nopPersistence) SaveSettings(context.Context, Settings) error         { return nil }
func (nopPersistence) LoadHighScore(context.Context) (int, error)           { return 0, nil }
func (nopPersistence) SaveHighScore(context.Context, int) error             { return nil }
func (nopPersistence) LoadBestReaction(context.Context) (float64, error)    { return 0, nil }
func (nopPersistence) SaveBestReaction(context.Context, float64) error      { return nil }
func (nopPersistence) AppendScore(context.Context, string, int, Mode) error { return nil }
func (nopPersistence) ClearLeaderboard(context.Context) error               { return nil }
func (nopPersistence) LoadLeaderboard(context.Context) ([]LeaderboardEntry, error) {
	return nil, nil
}
