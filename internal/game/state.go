package game

// State is the screen a session is on. Exactly one is active at a time.
type State string

const (
	StateMenu        State = "menu"
	StateModeSelect  State = "mode_select"
	StatePlaying     State = "playing"
	StatePaused      State = "paused"
	StateGameOver    State = "game_over"
	StateLeaderboard State = "leaderboard"
	StateSettings    State = "settings"
)

// InRound reports whether a round is live (running or paused).
func (s State) InRound() bool {
	return s == StatePlaying || s == StatePaused
}

// isMenu reports whether side screens (leaderboard, settings) may be opened from s.
func (s State) isMenu() bool {
	switch s {
	case StateMenu, StateModeSelect, StateGameOver:
		return true
	}
	return false
}
