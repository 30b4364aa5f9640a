package game

import (
	"strings"
	"time"
)

// Mode names a ruleset selected before a session starts.
type Mode string

const (
	ModeClassic     Mode = "classic"
	ModeTimeAttack  Mode = "time_attack"
	ModeSurvival    Mode = "survival"
	ModePrecision   Mode = "precision"
	ModeMultiplayer Mode = "multiplayer"
)

// Modes lists every mode in menu order.
func Modes() []Mode {
	return []Mode{ModeClassic, ModeTimeAttack, ModeSurvival, ModePrecision, ModeMultiplayer}
}

// ParseMode resolves a stored or submitted mode name. Unknown names fall back
// to Classic.
func ParseMode(value string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeTimeAttack:
		return ModeTimeAttack
	case ModeSurvival:
		return ModeSurvival
	case ModePrecision:
		return ModePrecision
	case ModeMultiplayer:
		return ModeMultiplayer
	default:
		return ModeClassic
	}
}

// MissPenalty is what a miss costs in a mode.
type MissPenalty int

const (
	PenaltyLife MissPenalty = iota
	PenaltyTime
	PenaltyCount
	PenaltyFatal
)

// ModeConfig is the immutable ruleset of a mode, read when a session starts.
type ModeConfig struct {
	Mode        Mode
	Label       string
	Description string
	// TimeLimit is zero for modes without a countdown.
	TimeLimit  time.Duration
	SpawnDelay time.Duration
	Lives      int
	// MissLimit ends the session once misses reach it; zero disables it.
	MissLimit   int
	Penalty     MissPenalty
	TimePenalty time.Duration
	// TimeBonuses reports whether fast hits may extend the countdown.
	TimeBonuses bool
	// EscapeIsMiss counts a target that outlives its spawn delay as a miss.
	EscapeIsMiss bool
	TargetScale  float64
	Playable     bool
}

// HasTimeLimit reports whether the mode counts down.
func (c ModeConfig) HasTimeLimit() bool {
	return c.TimeLimit > 0
}

// UsesLives reports whether the HUD should show lives.
func (c ModeConfig) UsesLives() bool {
	return c.Penalty == PenaltyLife || c.Penalty == PenaltyCount
}

var modeConfigs = map[Mode]ModeConfig{
	ModeClassic: {
		Mode:        ModeClassic,
		Label:       "Classic",
		Description: "30 seconds, 3 lives. Targets speed up as you level.",
		TimeLimit:   30 * time.Second,
		SpawnDelay:  1500 * time.Millisecond,
		Lives:       3,
		Penalty:     PenaltyLife,
		TimeBonuses: true,
		TargetScale: 1.0,
		Playable:    true,
	},
	ModeTimeAttack: {
		Mode:        ModeTimeAttack,
		Label:       "Time Attack",
		Description: "60 seconds, bigger targets. Every miss costs 2 seconds.",
		TimeLimit:   60 * time.Second,
		SpawnDelay:  800 * time.Millisecond,
		Penalty:     PenaltyTime,
		TimePenalty: 2 * time.Second,
		TargetScale: 1.3,
		Playable:    true,
	},
	ModeSurvival: {
		Mode:         ModeSurvival,
		Label:        "Survival",
		Description:  "No clock. Five misses and you're out.",
		SpawnDelay:   1200 * time.Millisecond,
		Lives:        5,
		MissLimit:    5,
		Penalty:      PenaltyCount,
		EscapeIsMiss: true,
		TargetScale:  1.0,
		Playable:     true,
	},
	ModePrecision: {
		Mode:        ModePrecision,
		Label:       "Precision",
		Description: "45 seconds, small targets. One miss ends the run.",
		TimeLimit:   45 * time.Second,
		SpawnDelay:  2000 * time.Millisecond,
		Penalty:     PenaltyFatal,
		TimeBonuses: true,
		TargetScale: 0.6,
		Playable:    true,
	},
	ModeMultiplayer: {
		Mode:        ModeMultiplayer,
		Label:       "Multiplayer",
		Description: "Coming soon.",
		TargetScale: 1.0,
	},
}

// ConfigFor returns the ruleset of m. Unknown modes get Classic rules.
func ConfigFor(m Mode) ModeConfig {
	if cfg, ok := modeConfigs[m]; ok {
		return cfg
	}
	return modeConfigs[ModeClassic]
}

// Label returns the display name of m.
func (m Mode) Label() string {
	return ConfigFor(m).Label
}
