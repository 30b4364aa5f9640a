package game

import (
	"encoding/json"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	DefaultPlayerName = "Anonymous"
	MaxPlayerName     = 20
	DefaultVolume     = 0.7
)

// Settings are the player's persisted preferences.
type Settings struct {
	PlayerName       string  `json:"playerName"`
	SoundEnabled     bool    `json:"soundEnabled"`
	ParticlesEnabled bool    `json:"particlesEnabled"`
	MasterVolume     float64 `json:"masterVolume"`
	TimeBonusEnabled bool    `json:"timeBonusEnabled"`
	LastMode         Mode    `json:"lastMode"`
}

// DefaultSettings returns the settings of a first-time player.
func DefaultSettings() Settings {
	return Settings{
		PlayerName:       DefaultPlayerName,
		SoundEnabled:     true,
		ParticlesEnabled: true,
		MasterVolume:     DefaultVolume,
		TimeBonusEnabled: true,
		LastMode:         ModeClassic,
	}
}

// Normalize clamps every field into its valid range.
func (s Settings) Normalize() Settings {
	s.PlayerName = NormalizePlayerName(s.PlayerName)
	if math.IsNaN(s.MasterVolume) || s.MasterVolume < 0 {
		s.MasterVolume = 0
	}
	if s.MasterVolume > 1 {
		s.MasterVolume = 1
	}
	s.LastMode = ParseMode(string(s.LastMode))
	return s
}

// NormalizePlayerName trims name, caps its length and substitutes the
// default for blank input.
func NormalizePlayerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultPlayerName
	}
	if utf8.RuneCountInString(name) > MaxPlayerName {
		name = string([]rune(name)[:MaxPlayerName])
	}
	return name
}

// EncodeSettings serializes settings for storage.
func EncodeSettings(s Settings) ([]byte, error) {
	return json.Marshal(s.Normalize())
}

// DecodeSettings parses stored settings over the defaults, so missing fields
// keep their default value. Corrupt payloads yield the defaults.
func DecodeSettings(data []byte) Settings {
	s := DefaultSettings()
	if len(data) == 0 {
		return s
	}
	parsed := DefaultSettings()
	if err := json.Unmarshal(data, &parsed); err != nil {
		return s
	}
	return parsed.Normalize()
}
