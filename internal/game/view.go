package game

// NoticeCategory groups transient HUD messages.
type NoticeCategory string

const (
	NoticeBonus    NoticeCategory = "bonus"
	NoticeCombo    NoticeCategory = "combo"
	NoticeReaction NoticeCategory = "reaction"
	NoticeLevel    NoticeCategory = "level"
	NoticeMiss     NoticeCategory = "miss"
	NoticePenalty  NoticeCategory = "penalty"
)

// Notice is a short message shown over the play field.
type Notice struct {
	Text     string
	Category NoticeCategory
}

// HUD is the live counter readout of a session.
type HUD struct {
	Mode          Mode
	Score         int
	HighScore     int
	Level         int
	Combo         int
	Misses        int
	Lives         int
	ShowLives     bool
	TimeRemaining int
	TimeLimit     int
	HasTimeLimit  bool
	Elapsed       int
	Reaction      float64
	BestReaction  float64
	Shape         Shape
}

// Summary describes a finished session.
type Summary struct {
	Mode          Mode
	Reason        string
	Score         int
	Level         int
	Hits          int
	Misses        int
	Elapsed       int
	BestReaction  float64
	Accuracy      float64
	NewHighScore  bool
	NewBestTime   bool
	OnLeaderboard bool
}

// View receives one-way notifications from a session. Calls are made while
// the session is locked; implementations must not call back into it.
type View interface {
	StateChanged(state State)
	ScoreChanged(hud HUD)
	TargetChanged(target Target)
	Notify(notice Notice)
	GameOver(summary Summary)
}

type nopView struct{}

func (nopView) StateChanged(State)   {}
func (nopView) ScoreChanged(HUD)     {}
func (nopView) TargetChanged(Target) {}
func (nopView) Notify(Notice)        {}
func (nopView) GameOver(Summary)     {}
