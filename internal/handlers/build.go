package handlers

import (
	"fmt"
	"math"

	"targetgame/internal/game"
	"targetgame/internal/viewmodel"
)

const dateLayout = "2006-01-02"

func buildScreen(session *game.Session, snapshot game.Snapshot) viewmodel.Screen {
	screen := viewmodel.Screen{
		State:        string(snapshot.State),
		SelectedMode: string(snapshot.SelectedMode),
		LastMode:     snapshot.Settings.LastMode.Label(),
		HighScore:    snapshot.HUD.HighScore,
		BestReaction: formatSeconds(snapshot.BestReaction),
		HasSummary:   snapshot.HasSummary,
	}
	switch snapshot.State {
	case game.StateModeSelect:
		screen.Modes = buildModes(snapshot.SelectedMode)
	case game.StateLeaderboard:
		screen.Leaderboard = buildLeaderboard(session.Leaderboard())
	case game.StateSettings:
		screen.Settings = buildSettings(snapshot.Settings)
	}
	if snapshot.HasSummary {
		screen.Summary = buildSummary(snapshot.Summary)
	}
	return screen
}

func buildModes(selected game.Mode) []viewmodel.ModeOption {
	modes := game.Modes()
	out := make([]viewmodel.ModeOption, 0, len(modes))
	for _, m := range modes {
		cfg := game.ConfigFor(m)
		out = append(out, viewmodel.ModeOption{
			Value:       string(m),
			Label:       cfg.Label,
			Description: cfg.Description,
			Selected:    m == selected,
			Playable:    cfg.Playable,
		})
	}
	return out
}

func buildLeaderboard(entries []game.LeaderboardEntry) []viewmodel.LeaderboardRow {
	out := make([]viewmodel.LeaderboardRow, 0, len(entries))
	for i, entry := range entries {
		row := viewmodel.LeaderboardRow{
			Rank:  i + 1,
			Name:  entry.Name,
			Score: entry.Score,
			Mode:  entry.Mode.Label(),
		}
		if !entry.Date.IsZero() {
			row.Date = entry.Date.Format(dateLayout)
		}
		out = append(out, row)
	}
	return out
}

func buildSettings(s game.Settings) viewmodel.SettingsForm {
	return viewmodel.SettingsForm{
		PlayerName:       s.PlayerName,
		MaxNameLength:    game.MaxPlayerName,
		SoundEnabled:     s.SoundEnabled,
		ParticlesEnabled: s.ParticlesEnabled,
		MasterVolume:     int(math.Round(s.MasterVolume * 100)),
		TimeBonusEnabled: s.TimeBonusEnabled,
	}
}

func buildSummary(s game.Summary) viewmodel.Summary {
	return viewmodel.Summary{
		Mode:          s.Mode.Label(),
		Reason:        s.Reason,
		Score:         s.Score,
		Level:         s.Level,
		Hits:          s.Hits,
		Misses:        s.Misses,
		Elapsed:       formatClock(s.Elapsed),
		Accuracy:      fmt.Sprintf("%.0f%%", s.Accuracy*100),
		BestReaction:  formatSeconds(s.BestReaction),
		NewHighScore:  s.NewHighScore,
		NewBestTime:   s.NewBestTime,
		OnLeaderboard: s.OnLeaderboard,
	}
}

func buildHUD(snapshot game.Snapshot) viewmodel.HUD {
	hud := snapshot.HUD
	out := viewmodel.HUD{
		Visible:      snapshot.State.InRound(),
		Paused:       snapshot.State == game.StatePaused,
		Mode:         hud.Mode.Label(),
		Score:        hud.Score,
		HighScore:    hud.HighScore,
		Level:        hud.Level,
		Combo:        hud.Combo,
		Multiplier:   game.Multiplier(hud.Combo),
		Lives:        hud.Lives,
		ShowLives:    hud.ShowLives,
		Reaction:     formatSeconds(hud.Reaction),
		BestReaction: formatSeconds(hud.BestReaction),
		Shape:        hud.Shape.Title(),
		Changing:     snapshot.ShapeChanging,
	}
	if hud.HasTimeLimit {
		out.ClockLabel = "Time"
		out.Clock = fmt.Sprintf("%ds", hud.TimeRemaining)
	} else {
		out.ClockLabel = "Elapsed"
		out.Clock = formatClock(hud.Elapsed)
	}
	return out
}

func buildTarget(t game.Target) viewmodel.Target {
	return viewmodel.Target{
		Visible:      t.Visible,
		X:            t.X,
		Y:            t.Y,
		Scale:        t.Scale,
		Opacity:      t.Opacity,
		ParticleSize: t.ParticleSize,
		Shape:        string(t.Shape),
		Color:        fmt.Sprintf("#%06x", t.Color),
	}
}

func buildNotice(n game.Notice) viewmodel.Notice {
	return viewmodel.Notice{Text: n.Text, Category: string(n.Category)}
}

// formatSeconds renders a reaction time with two decimals, empty when unset.
func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%.2f", seconds)
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
