package game

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"targetgame/pkg/realtime"
)

const (
	// TickInterval is the game clock period.
	TickInterval = time.Second
	// GraceWindow ignores clicks right after play starts or resumes, so the
	// click on a menu button never lands on the target.
	GraceWindow = 500 * time.Millisecond
	// ShapeChangeWindow suspends scoring while the target swaps shape.
	ShapeChangeWindow = 500 * time.Millisecond

	persistTimeout = 2 * time.Second
)

// ClickResult reports how a pointer event was resolved.
type ClickResult int

const (
	ClickIgnored ClickResult = iota
	ClickHit
	ClickMiss
)

// Options wires a session to its collaborators. Nil fields get no-op
// stand-ins; a nil HitTester means clicks never resolve.
type Options struct {
	Persistence Persistence
	View        View
	HitTester   HitTester
	Rand        *rand.Rand
}

// Session is one player's game: screen state, the live round and its timers.
// Every method takes the current time and first catches up on timers that
// came due before it, so clicks and clock ticks interleave in time order.
type Session struct {
	mu sync.Mutex
	ID string

	state    State
	selected Mode
	mode     Mode
	cfg      ModeConfig

	progress      Progress
	lives         int
	timeRemaining int
	elapsed       int
	spawnDelay    time.Duration
	target        Target
	shape         Shape
	pausedAt      time.Time

	tick        realtime.Timer
	comboDecay  realtime.Timer
	shapeChange realtime.Timer
	escape      realtime.Timer
	grace       realtime.Timer

	settings     Settings
	highScore    int
	bestReaction float64
	summary      *Summary

	store Persistence
	view  View
	hits  HitTester
	rng   *rand.Rand
}

// NewSession creates a session on the main menu and loads the player's
// settings and records. Storage failures fall back to defaults.
func NewSession(id string, opts Options) *Session {
	s := &Session{
		ID:       id,
		state:    StateMenu,
		selected: ModeClassic,
		mode:     ModeClassic,
		cfg:      ConfigFor(ModeClassic),
		progress: NewProgress(),
		shape:    ShapeSphere,
		store:    opts.Persistence,
		view:     opts.View,
		hits:     opts.HitTester,
		rng:      opts.Rand,
	}
	if s.store == nil {
		s.store = nopPersistence{}
	}
	if s.view == nil {
		s.view = nopView{}
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.target.Shape = s.shape
	s.load()
	return s
}

func (s *Session) load() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	settings, err := s.store.LoadSettings(ctx)
	if err != nil {
		s.logStorage("load settings", err)
		settings = DefaultSettings()
	}
	s.settings = settings.Normalize()
	if ConfigFor(s.settings.LastMode).Playable {
		s.selected = s.settings.LastMode
	}

	if s.highScore, err = s.store.LoadHighScore(ctx); err != nil || s.highScore < 0 {
		s.logStorage("load high score", err)
		s.highScore = 0
	}
	if s.bestReaction, err = s.store.LoadBestReaction(ctx); err != nil || s.bestReaction < 0 {
		s.logStorage("load best reaction", err)
		s.bestReaction = 0
	}
}

func (s *Session) logStorage(op string, err error) {
	if err == nil {
		return
	}
	log.Printf("storage error session=%s op=%q err=%v", s.ID, op, err)
}

// State returns the active screen.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Play leaves the main menu for mode selection.
func (s *Session) Play(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(now)
	if s.state != StateMenu {
		return false
	}
	s.setStateLocked(StateModeSelect)
	return true
}

// QuickPlay starts a round straight from the main menu in the last played mode.
func (s *Session) QuickPlay(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(now)
	if s.state != StateMenu || !ConfigFor(s.settings.LastMode).Playable {
		return false
	}
	s.beginLocked(s.settings.LastMode, now)
	return true
}

// SelectMode picks the mode to start from the mode selection screen and
// remembers it in the settings.
func (s *Session) SelectMode(m Mode, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(now)
	if s.state != StateModeSelect {
		return false
	}
	s.selected = m
	if ConfigFor(m).Playable && s.settings.LastMode != m {
		s.settings.LastMode = m
		s.saveSettingsLocked()
	}
	return true
}

// Start begins a round in the selected mode. Modes that are not playable
// (multiplayer) keep the player on mode selection.
func (s *Session) Start(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(now)
	if s.state != StateModeSelect || !ConfigFor(s.selected).Playable {
		return false
	}
	s.beginLocked(s.selected, now)
	return true
}

// PlayAgain starts a fresh round in the same mode after a game over.
func (s *Session) PlayAgain(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(now)
	if s.state != StateGameOver {
		return false
	}
	s.beginLocked(s.mode, now)
	return true
}

// Restart abandons a paused round and starts over in the same mode. The
// abandoned round is not recorded.
func (s *Session) Restart(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(now)
	if s.state != StatePaused {
		return false
	}
	s.beginLocked(s.mode, now)
	return true
}

// Pause freezes a running round: the clock, combo decay and every other
// session timer stop, counters are kept.
func (s *Session) Pause(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(now)
	if s.state != StatePlaying {
		return false
	}
	s.pauseLocked(now)
	return true
}

func (s *Session) pauseLocked(now time.Time) {
	for _, t := range s.timers() {
		t.Suspend(now)
	}
	s.pausedAt = now
	s.setStateLocked(StatePaused)
}

// Resume continues a paused round. Time spent paused does not count toward
// the reaction time of the current target.
func (s *Session) Resume(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(now)
	if s.state != StatePaused {
		return false
	}
	s.resumeLocked(now)
	return true
}

// TogglePause pauses a running round or resumes a paused one.
func (s *Session) TogglePause(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(now)
	switch s.state {
	case StatePlaying:
		s.pauseLocked(now)
		return true
	case StatePaused:
		s.resumeLocked(now)
		return true
	}
	return false
}

func (s *Session) resumeLocked(now time.Time) {
	for _, t := range s.timers() {
		t.Resume(now)
	}
	if !s.pausedAt.IsZero() && !s.target.SpawnedAt.IsZero() {
		s.target.SpawnedAt = s.target.SpawnedAt.Add(now.Sub(s.pausedAt))
	}
	s.pausedAt = time.Time{}
	s.grace.Schedule(now, GraceWindow)
	s.setStateLocked(StatePlaying)
}

// MainMenu returns to the main menu from a game over or a paused round. A
// paused round is abandoned without being recorded.
func (s *Session) MainMenu(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(now)
	switch s.state {
	case StateGameOver, StatePaused, StateModeSelect:
		s.enterMenuLocked()
		return true
	}
	return false
}

// OpenLeaderboard shows the leaderboard from any menu screen.
func (s *Session) OpenLeaderboard(now time.Time) bool {
	return s.openSide(StateLeaderboard, now)
}

// OpenSettings shows the settings screen from any menu screen.
func (s *Session) OpenSettings(now time.Time) bool {
	return s.openSide(StateSettings, now)
}

func (s *Session) openSide(target State, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(now)
	if !s.state.isMenu() {
		return false
	}
	s.setStateLocked(target)
	return true
}

// Back leaves the leaderboard or settings screen for the main menu.
func (s *Session) Back(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(now)
	if s.state != StateLeaderboard && s.state != StateSettings {
		return false
	}
	s.enterMenuLocked()
	return true
}

// Click resolves a pointer event at world position (x, y). Clicks outside a
// running round, during the grace window or a shape change are ignored.
func (s *Session) Click(x, y float64, now time.Time) ClickResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(now)
	if s.state != StatePlaying || s.grace.Armed() || s.shapeChange.Armed() || s.hits == nil {
		return ClickIgnored
	}
	if s.hits.TestHit(s.target, x, y) {
		s.hitLocked(now)
		return ClickHit
	}
	s.missLocked(now, "Miss!")
	return ClickMiss
}

// ChangeShape swaps the target to the next particle shape. The combo is
// reset and scoring pauses until the target respawns.
func (s *Session) ChangeShape(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(now)
	if s.state != StatePlaying || s.shapeChange.Armed() {
		return false
	}
	s.shape = s.shape.Next()
	s.target.Shape = s.shape
	s.target.Color = ColorFor(s.progress.Level)
	s.progress.BreakCombo()
	s.comboDecay.Cancel()
	s.escape.Cancel()
	s.shapeChange.Schedule(now, ShapeChangeWindow)
	s.view.TargetChanged(s.target)
	s.view.ScoreChanged(s.hudLocked())
	return true
}

// UpdateSettings edits the settings and saves them immediately.
func (s *Session) UpdateSettings(edit func(*Settings)) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.settings
	edit(&next)
	s.settings = next.Normalize()
	s.saveSettingsLocked()
	return s.settings
}

// Settings returns the current settings.
func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Leaderboard loads the player's leaderboard, empty on storage failure.
func (s *Session) Leaderboard() []LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leaderboardLocked()
}

func (s *Session) leaderboardLocked() []LeaderboardEntry {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	entries, err := s.store.LoadLeaderboard(ctx)
	if err != nil {
		s.logStorage("load leaderboard", err)
		return nil
	}
	return RankLeaderboard(entries)
}

// ClearLeaderboard deletes every leaderboard entry.
func (s *Session) ClearLeaderboard() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.store.ClearLeaderboard(ctx); err != nil {
		s.logStorage("clear leaderboard", err)
		return false
	}
	return true
}

// Advance fires every timer due at now and reports whether any did.
func (s *Session) Advance(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked(now)
}

// NextTimer returns when the session next needs Advance. ok is false when
// nothing is scheduled (menus, pause).
func (s *Session) NextTimer(now time.Time) (next time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(now)
	return realtime.Earliest(s.timers()...)
}

// LastSummary returns the summary of the most recent game over.
func (s *Session) LastSummary() (Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == nil {
		return Summary{}, false
	}
	return *s.summary, true
}

func (s *Session) timers() []*realtime.Timer {
	return []*realtime.Timer{&s.tick, &s.comboDecay, &s.shapeChange, &s.escape, &s.grace}
}

func (s *Session) cancelTimersLocked() {
	for _, t := range s.timers() {
		t.Cancel()
	}
}

// advanceLocked fires due timers in deadline order, each at its own
// deadline, until none is due or the round ends.
func (s *Session) advanceLocked(now time.Time) bool {
	fired := false
	for s.state == StatePlaying {
		var next *realtime.Timer
		var nextAt time.Time
		for _, t := range s.timers() {
			if !t.Due(now) {
				continue
			}
			at, _ := t.Deadline()
			if next == nil || at.Before(nextAt) {
				next, nextAt = t, at
			}
		}
		if next == nil {
			return fired
		}
		at, _ := next.Fire(now)
		fired = true
		switch next {
		case &s.tick:
			s.onTickLocked(at)
		case &s.comboDecay:
			s.progress.BreakCombo()
			s.view.ScoreChanged(s.hudLocked())
		case &s.shapeChange:
			s.spawnLocked(at)
		case &s.escape:
			s.onEscapeLocked(at)
		}
	}
	return fired
}

func (s *Session) onTickLocked(at time.Time) {
	s.elapsed++
	if s.cfg.HasTimeLimit() {
		s.timeRemaining--
		if s.timeRemaining <= 0 {
			s.timeRemaining = 0
			s.endLocked("Time's up!", at)
			return
		}
	}
	s.view.ScoreChanged(s.hudLocked())
}

func (s *Session) onEscapeLocked(at time.Time) {
	if s.cfg.EscapeIsMiss {
		s.missLocked(at, "Too slow!")
		if s.state != StatePlaying {
			return
		}
	}
	s.spawnLocked(at)
}

func (s *Session) beginLocked(m Mode, now time.Time) {
	s.cancelTimersLocked()
	s.mode = m
	s.selected = m
	s.cfg = ConfigFor(m)
	s.progress = NewProgress()
	s.lives = s.cfg.Lives
	s.timeRemaining = int(s.cfg.TimeLimit / time.Second)
	s.elapsed = 0
	s.spawnDelay = s.cfg.SpawnDelay
	s.pausedAt = time.Time{}
	s.summary = nil

	s.setStateLocked(StatePlaying)
	s.tick.Every(now, TickInterval)
	s.grace.Schedule(now, GraceWindow)
	s.spawnLocked(now)
	s.view.ScoreChanged(s.hudLocked())
	log.Printf("session start id=%s mode=%s", s.ID, s.mode)
}

// spawnLocked moves the target to a new random spot and restarts its
// escape timer. Only a running round has a target.
func (s *Session) spawnLocked(now time.Time) {
	if s.state != StatePlaying {
		return
	}
	s.target.Shape = s.shape
	s.target.place(s.rng, LookFor(s.progress.Level, s.cfg), now)
	s.escape.Schedule(now, s.spawnDelay)
	s.view.TargetChanged(s.target)
}

func (s *Session) hitLocked(now time.Time) {
	reaction := s.target.ReactionTime(now)
	bonuses := s.settings.TimeBonusEnabled && s.cfg.TimeBonuses && s.cfg.HasTimeLimit()
	out := s.progress.ApplyHit(reaction, bonuses)
	s.comboDecay.Schedule(now, ComboWindow)

	if out.LeveledUp {
		s.spawnDelay = SpawnDelayFor(s.cfg.SpawnDelay, out.Level)
		if !bonuses {
			s.view.Notify(Notice{Text: fmt.Sprintf("Level %d!", out.Level), Category: NoticeLevel})
		}
	}
	for _, b := range out.Bonuses {
		s.timeRemaining += b.Seconds
		s.view.Notify(b.Notice)
	}
	s.spawnLocked(now)
	s.view.ScoreChanged(s.hudLocked())
}

func (s *Session) missLocked(now time.Time, text string) {
	s.progress.ApplyMiss()
	s.comboDecay.Cancel()
	s.view.Notify(Notice{Text: text, Category: NoticeMiss})

	switch s.cfg.Penalty {
	case PenaltyLife:
		s.lives--
		s.view.Notify(Notice{Text: "-1 life", Category: NoticePenalty})
		if s.lives <= 0 {
			s.lives = 0
			s.endLocked("No lives left!", now)
			return
		}
	case PenaltyTime:
		penalty := int(s.cfg.TimePenalty / time.Second)
		s.timeRemaining -= penalty
		s.view.Notify(Notice{Text: fmt.Sprintf("-%ds", penalty), Category: NoticePenalty})
		if s.timeRemaining <= 0 {
			s.timeRemaining = 0
			s.endLocked("Time's up!", now)
			return
		}
	case PenaltyCount:
		s.lives = s.cfg.MissLimit - s.progress.Misses
		if s.lives < 0 {
			s.lives = 0
		}
		if s.progress.Misses >= s.cfg.MissLimit {
			s.endLocked("Too many misses!", now)
			return
		}
	case PenaltyFatal:
		s.endLocked("Missed a precision shot!", now)
		return
	}
	s.view.ScoreChanged(s.hudLocked())
}

// endLocked finishes the round: timers stop, records and the leaderboard are
// updated. Ending an already finished round is a no-op.
func (s *Session) endLocked(reason string, now time.Time) {
	if s.state == StateGameOver || !s.state.InRound() {
		return
	}
	s.cancelTimersLocked()
	s.target.Visible = false

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	summary := Summary{
		Mode:         s.mode,
		Reason:       reason,
		Score:        s.progress.Score,
		Level:        s.progress.Level,
		Hits:         s.progress.Hits,
		Misses:       s.progress.Misses,
		Elapsed:      s.elapsed,
		BestReaction: s.progress.BestReaction,
		Accuracy:     s.progress.Accuracy(),
	}
	if s.progress.Score > s.highScore {
		s.highScore = s.progress.Score
		summary.NewHighScore = true
		if err := s.store.SaveHighScore(ctx, s.highScore); err != nil {
			s.logStorage("save high score", err)
		}
	}
	if s.progress.Hits > 0 && (s.bestReaction == 0 || s.progress.BestReaction < s.bestReaction) {
		s.bestReaction = s.progress.BestReaction
		summary.NewBestTime = true
		if err := s.store.SaveBestReaction(ctx, s.bestReaction); err != nil {
			s.logStorage("save best reaction", err)
		}
	}
	before, err := s.store.LoadLeaderboard(ctx)
	if err != nil {
		s.logStorage("load leaderboard", err)
	}
	summary.OnLeaderboard = s.progress.Score > 0 && Qualifies(RankLeaderboard(before), s.progress.Score)
	if err := s.store.AppendScore(ctx, s.settings.PlayerName, s.progress.Score, s.mode); err != nil {
		s.logStorage("append score", err)
	}
	s.summary = &summary

	s.setStateLocked(StateGameOver)
	s.view.GameOver(summary)
	log.Printf("session over id=%s mode=%s score=%d level=%d reason=%q at=%s",
		s.ID, s.mode, summary.Score, summary.Level, reason, now.Format(time.RFC3339))
}

func (s *Session) enterMenuLocked() {
	s.cancelTimersLocked()
	s.progress = NewProgress()
	s.lives = 0
	s.timeRemaining = 0
	s.elapsed = 0
	s.pausedAt = time.Time{}
	s.target.Visible = false
	s.setStateLocked(StateMenu)
}

func (s *Session) setStateLocked(next State) {
	if s.state == next {
		return
	}
	s.state = next
	s.view.StateChanged(next)
}

func (s *Session) saveSettingsLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.store.SaveSettings(ctx, s.settings); err != nil {
		s.logStorage("save settings", err)
	}
}

func (s *Session) hudLocked() HUD {
	return HUD{
		Mode:          s.mode,
		Score:         s.progress.Score,
		HighScore:     s.highScore,
		Level:         s.progress.Level,
		Combo:         s.progress.Combo,
		Misses:        s.progress.Misses,
		Lives:         s.lives,
		ShowLives:     s.cfg.UsesLives(),
		TimeRemaining: s.timeRemaining,
		TimeLimit:     int(s.cfg.TimeLimit / time.Second),
		HasTimeLimit:  s.cfg.HasTimeLimit(),
		Elapsed:       s.elapsed,
		Reaction:      s.progress.Reaction,
		BestReaction:  s.progress.BestReaction,
		Shape:         s.shape,
	}
}

// Snapshot captures the state needed for rendering.
type Snapshot struct {
	ID            string
	State         State
	Mode          Mode
	SelectedMode  Mode
	HUD           HUD
	Target        Target
	ShapeChanging bool
	Settings      Settings
	BestReaction  float64
	Summary       Summary
	HasSummary    bool
}

// Snapshot returns a consistent view of the session at now.
func (s *Session) Snapshot(now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(now)
	snap := Snapshot{
		ID:            s.ID,
		State:         s.state,
		Mode:          s.mode,
		SelectedMode:  s.selected,
		HUD:           s.hudLocked(),
		Target:        s.target,
		ShapeChanging: s.shapeChange.Armed(),
		Settings:      s.settings,
		BestReaction:  s.bestReaction,
	}
	if s.summary != nil {
		snap.Summary = *s.summary
		snap.HasSummary = true
	}
	return snap
}
