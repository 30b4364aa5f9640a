package viewmodel

// GamePage holds data for the single game page.
type GamePage struct {
	Title  string
	Screen Screen
	HUD    HUD
	// Client carries the settings the browser needs to render the target.
	Client ClientSettings
}

// ClientSettings are the player preferences applied by the browser.
type ClientSettings struct {
	SoundEnabled     bool    `json:"soundEnabled"`
	ParticlesEnabled bool    `json:"particlesEnabled"`
	MasterVolume     float64 `json:"masterVolume"`
	// HitRadius is the target radius at scale 1, in world units.
	HitRadius float64 `json:"hitRadius"`
}

// Screen holds data for the active screen fragment.
type Screen struct {
	State        string
	Modes        []ModeOption
	SelectedMode string
	LastMode     string
	HighScore    int
	BestReaction string
	Leaderboard  []LeaderboardRow
	Settings     SettingsForm
	Summary      Summary
	HasSummary   bool
}

// ModeOption is one entry of the mode selection list.
type ModeOption struct {
	Value       string
	Label       string
	Description string
	Selected    bool
	Playable    bool
}

// LeaderboardRow is one ranked leaderboard entry.
type LeaderboardRow struct {
	Rank  int
	Name  string
	Score int
	Mode  string
	Date  string
}

// SettingsForm holds the values of the settings screen.
type SettingsForm struct {
	PlayerName       string
	MaxNameLength    int
	SoundEnabled     bool
	ParticlesEnabled bool
	MasterVolume     int
	TimeBonusEnabled bool
}

// Summary holds the game-over panel.
type Summary struct {
	Mode          string
	Reason        string
	Score         int
	Level         int
	Hits          int
	Misses        int
	Elapsed       string
	Accuracy      string
	BestReaction  string
	NewHighScore  bool
	NewBestTime   bool
	OnLeaderboard bool
}

// HUD holds the live counters shown over the play field.
type HUD struct {
	Visible      bool
	Paused       bool
	Mode         string
	Score        int
	HighScore    int
	Level        int
	Combo        int
	Multiplier   int
	Lives        int
	ShowLives    bool
	Clock        string
	ClockLabel   string
	Reaction     string
	BestReaction string
	Shape        string
	Changing     bool
}

// Target is the renderer payload for the particle target.
type Target struct {
	Visible      bool    `json:"visible"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Scale        float64 `json:"scale"`
	Opacity      float64 `json:"opacity"`
	ParticleSize float64 `json:"particleSize"`
	Shape        string  `json:"shape"`
	Color        string  `json:"color"`
}

// Notice is a transient message over the play field.
type Notice struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}
