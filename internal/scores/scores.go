// Package scores inspects and resets leaderboards stored in SQLite.
package scores

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"targetgame/internal/config"
	"targetgame/internal/game"
	"targetgame/internal/storage/sqlite"
)

// Config holds scores command configuration.
type Config struct {
	DBPath     string
	ProfileID  string
	Clear      bool
	JSONOutput bool
	Timeout    time.Duration
}

type envConfig struct {
	DBPath  string        `env:"TARGETGAME_DB_PATH"`
	Timeout time.Duration `env:"TARGETGAME_SCORES_TIMEOUT" envDefault:"30s"`
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var envCfg envConfig
	if err := config.ParseEnv(&envCfg); err != nil {
		return Config{}, err
	}
	cfg := Config{
		DBPath:  envCfg.DBPath,
		Timeout: envCfg.Timeout,
	}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to the sqlite database (default: TARGETGAME_DB_PATH)")
	fs.StringVar(&cfg.ProfileID, "profile", "", "profile to show or clear (default: every profile with scores)")
	fs.BoolVar(&cfg.Clear, "clear", false, "delete the leaderboard of -profile")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output JSON")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Board is one profile's leaderboard.
type Board struct {
	ProfileID string                  `json:"profileId"`
	Entries   []game.LeaderboardEntry `json:"entries"`
}

// Run executes the scores command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return errors.New("-db-path is required")
	}
	profileID := strings.TrimSpace(cfg.ProfileID)
	if cfg.Clear && profileID == "" {
		return errors.New("-clear requires -profile")
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	if cfg.Clear {
		if err := store.Profile(profileID).ClearLeaderboard(ctx); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "cleared leaderboard of %s\n", profileID)
		return err
	}

	ids := []string{profileID}
	if profileID == "" {
		if ids, err = store.Profiles(ctx); err != nil {
			return err
		}
	}
	boards := make([]Board, 0, len(ids))
	for _, id := range ids {
		entries, err := store.Profile(id).LoadLeaderboard(ctx)
		if err != nil {
			return fmt.Errorf("load leaderboard %s: %w", id, err)
		}
		boards = append(boards, Board{ProfileID: id, Entries: entries})
	}

	if cfg.JSONOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(boards)
	}
	return writeTable(out, boards)
}

func writeTable(out io.Writer, boards []Board) error {
	if len(boards) == 0 {
		_, err := fmt.Fprintln(out, "no scores")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, board := range boards {
		fmt.Fprintf(tw, "profile %s\n", board.ProfileID)
		fmt.Fprintln(tw, "#\tNAME\tSCORE\tMODE\tDATE")
		for i, entry := range board.Entries {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", i+1, entry.Name, entry.Score, entry.Mode.Label(), entry.Date.Format("2006-01-02"))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
