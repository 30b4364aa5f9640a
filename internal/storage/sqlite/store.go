// Package sqlite persists player profiles (settings, records, leaderboard)
// in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"targetgame/internal/game"
	"targetgame/internal/storage/sqlite/migrations"
	"targetgame/internal/storage/sqlitemigrate"

	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for player profiles.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens and migrates a profile store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer keeps append-then-truncate free of lock contention.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{
		sqlDB: sqlDB,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Profile returns the persistence gateway of one profile.
func (s *Store) Profile(id string) game.Persistence {
	return &Profile{store: s, id: strings.TrimSpace(id)}
}

// Profiles lists the ids of every profile with leaderboard entries.
func (s *Store) Profiles(ctx context.Context) ([]string, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT DISTINCT profile_id FROM leaderboard_entries ORDER BY profile_id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) check() error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// Profile implements game.Persistence for one profile.
type Profile struct {
	store *Store
	id    string
}

func (p *Profile) db() (*sql.DB, error) {
	if err := p.store.check(); err != nil {
		return nil, err
	}
	if p.id == "" {
		return nil, fmt.Errorf("profile id is required")
	}
	return p.store.sqlDB, nil
}

// LoadSettings returns the stored settings merged over the defaults.
// Corrupt payloads decode to the defaults.
func (p *Profile) LoadSettings(ctx context.Context) (game.Settings, error) {
	db, err := p.db()
	if err != nil {
		return game.DefaultSettings(), err
	}
	var payload []byte
	err = db.QueryRowContext(ctx,
		`SELECT payload_json FROM profile_settings WHERE profile_id = ?`, p.id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return game.DefaultSettings(), nil
	}
	if err != nil {
		return game.DefaultSettings(), fmt.Errorf("get settings: %w", err)
	}
	return game.DecodeSettings(payload), nil
}

// SaveSettings upserts the profile's settings.
func (p *Profile) SaveSettings(ctx context.Context, settings game.Settings) error {
	db, err := p.db()
	if err != nil {
		return err
	}
	payload, err := game.EncodeSettings(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO profile_settings (profile_id, payload_json, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(profile_id) DO UPDATE SET
		    payload_json = excluded.payload_json,
		    updated_at = excluded.updated_at`,
		p.id, payload, p.store.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}

func (p *Profile) loadRecords(ctx context.Context) (highScore int, bestReaction float64, err error) {
	db, err := p.db()
	if err != nil {
		return 0, 0, err
	}
	err = db.QueryRowContext(ctx,
		`SELECT high_score, best_reaction FROM profile_records WHERE profile_id = ?`, p.id,
	).Scan(&highScore, &bestReaction)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("get records: %w", err)
	}
	return highScore, bestReaction, nil
}

// LoadHighScore returns the best score ever recorded, zero if none.
func (p *Profile) LoadHighScore(ctx context.Context) (int, error) {
	highScore, _, err := p.loadRecords(ctx)
	return highScore, err
}

// SaveHighScore stores the best score.
func (p *Profile) SaveHighScore(ctx context.Context, score int) error {
	db, err := p.db()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO profile_records (profile_id, high_score, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(profile_id) DO UPDATE SET
		    high_score = excluded.high_score,
		    updated_at = excluded.updated_at`,
		p.id, score, p.store.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put high score: %w", err)
	}
	return nil
}

// LoadBestReaction returns the fastest reaction in seconds, zero if none.
func (p *Profile) LoadBestReaction(ctx context.Context) (float64, error) {
	_, best, err := p.loadRecords(ctx)
	return best, err
}

// SaveBestReaction stores the fastest reaction in seconds.
func (p *Profile) SaveBestReaction(ctx context.Context, seconds float64) error {
	db, err := p.db()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO profile_records (profile_id, best_reaction, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(profile_id) DO UPDATE SET
		    best_reaction = excluded.best_reaction,
		    updated_at = excluded.updated_at`,
		p.id, seconds, p.store.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put best reaction: %w", err)
	}
	return nil
}

// LoadLeaderboard returns the top entries, best first; equal scores keep
// insertion order.
func (p *Profile) LoadLeaderboard(ctx context.Context) ([]game.LeaderboardEntry, error) {
	db, err := p.db()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT name, score, mode, created_at
		 FROM leaderboard_entries
		 WHERE profile_id = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		p.id, game.LeaderboardSize,
	)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []game.LeaderboardEntry
	for rows.Next() {
		var entry game.LeaderboardEntry
		var mode string
		var createdAt int64
		if err := rows.Scan(&entry.Name, &entry.Score, &mode, &createdAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entry.Mode = game.ParseMode(mode)
		entry.Date = time.UnixMilli(createdAt).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}
	return entries, nil
}

// AppendScore inserts an entry and drops everything below the top ten.
func (p *Profile) AppendScore(ctx context.Context, name string, score int, mode game.Mode) error {
	db, err := p.db()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append score: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO leaderboard_entries (profile_id, name, score, mode, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		p.id, game.NormalizePlayerName(name), score, string(mode), p.store.now().UnixMilli(),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert leaderboard entry: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM leaderboard_entries
		 WHERE profile_id = ?
		   AND id NOT IN (
		     SELECT id FROM leaderboard_entries
		     WHERE profile_id = ?
		     ORDER BY score DESC, id ASC
		     LIMIT ?
		   )`,
		p.id, p.id, game.LeaderboardSize,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("truncate leaderboard: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append score: %w", err)
	}
	return nil
}

// ClearLeaderboard deletes the profile's leaderboard.
func (p *Profile) ClearLeaderboard(ctx context.Context) error {
	db, err := p.db()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx,
		`DELETE FROM leaderboard_entries WHERE profile_id = ?`, p.id,
	); err != nil {
		return fmt.Errorf("clear leaderboard: %w", err)
	}
	return nil
}
