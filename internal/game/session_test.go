package game

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func ms(n int) time.Time {
	return t0.Add(time.Duration(n) * time.Millisecond)
}

type recordingView struct {
	states    []State
	notices   []Notice
	targets   []Target
	huds      []HUD
	summaries []Summary
}

func (v *recordingView) StateChanged(state State)    { v.states = append(v.states, state) }
func (v *recordingView) ScoreChanged(hud HUD)        { v.huds = append(v.huds, hud) }
func (v *recordingView) TargetChanged(target Target) { v.targets = append(v.targets, target) }
func (v *recordingView) Notify(notice Notice)        { v.notices = append(v.notices, notice) }
func (v *recordingView) GameOver(summary Summary)    { v.summaries = append(v.summaries, summary) }

func (v *recordingView) noticed(text string) bool {
	for _, n := range v.notices {
		if n.Text == text {
			return true
		}
	}
	return false
}

type fakePersistence struct {
	mu           sync.Mutex
	settings     Settings
	highScore    int
	bestReaction float64
	leaderboard  []LeaderboardEntry
	appends      int
	settingSaves int
}

func newFakePersistence() *fakePersistence {
	return &fakePersistence{settings: DefaultSettings()}
}

func (p *fakePersistence) LoadSettings(context.Context) (Settings, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings, nil
}

func (p *fakePersistence) SaveSettings(_ context.Context, s Settings) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings = s
	p.settingSaves++
	return nil
}

func (p *fakePersistence) LoadHighScore(context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.highScore, nil
}

func (p *fakePersistence) SaveHighScore(_ context.Context, score int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.highScore = score
	return nil
}

func (p *fakePersistence) LoadBestReaction(context.Context) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bestReaction, nil
}

func (p *fakePersistence) SaveBestReaction(_ context.Context, seconds float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bestReaction = seconds
	return nil
}

func (p *fakePersistence) LoadLeaderboard(context.Context) ([]LeaderboardEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return RankLeaderboard(p.leaderboard), nil
}

func (p *fakePersistence) AppendScore(_ context.Context, name string, score int, mode Mode) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.appends++
	p.leaderboard = RankLeaderboard(append(p.leaderboard, LeaderboardEntry{
		Name: NormalizePlayerName(name), Score: score, Mode: mode, Date: t0,
	}))
	return nil
}

func (p *fakePersistence) ClearLeaderboard(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.leaderboard = nil
	return nil
}

// aim decides whether the next click lands on the target.
type aim struct{ onTarget bool }

func (a *aim) TestHit(target Target, x, y float64) bool {
	return target.Visible && a.onTarget
}

type fixture struct {
	s     *Session
	view  *recordingView
	store *fakePersistence
	aim   *aim
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		view:  &recordingView{},
		store: newFakePersistence(),
		aim:   &aim{onTarget: true},
	}
	f.s = NewSession("p1", Options{
		Persistence: f.store,
		View:        f.view,
		HitTester:   f.aim,
		Rand:        rand.New(rand.NewSource(1)),
	})
	return f
}

// start plays mode from the main menu at t0.
func (f *fixture) start(t *testing.T, m Mode) {
	t.Helper()
	if !f.s.Play(t0) {
		t.Fatal("Play from menu returned false")
	}
	if !f.s.SelectMode(m, t0) {
		t.Fatal("SelectMode returned false")
	}
	if !f.s.Start(t0) {
		t.Fatalf("Start %s returned false", m)
	}
}

func (f *fixture) click(t *testing.T, hit bool, at time.Time) ClickResult {
	t.Helper()
	f.aim.onTarget = hit
	return f.s.Click(0, 0, at)
}

func TestNewSession_StartsOnMenuWithDefaults(t *testing.T) {
	f := newFixture(t)
	snap := f.s.Snapshot(t0)
	if snap.State != StateMenu {
		t.Errorf("State %q, want menu", snap.State)
	}
	if snap.HUD.Score != 0 || snap.HUD.Level != 1 || snap.HUD.Combo != 0 {
		t.Errorf("HUD %+v, want score 0 level 1 combo 0", snap.HUD)
	}
	if snap.Target.Visible {
		t.Error("target visible on menu")
	}
	if snap.Settings.PlayerName != DefaultPlayerName {
		t.Errorf("PlayerName %q, want %q", snap.Settings.PlayerName, DefaultPlayerName)
	}
}

func TestSession_ScoringAndLevels(t *testing.T) {
	f := newFixture(t)
	f.start(t, ModeClassic)

	wantScores := []int{1, 3, 6, 10, 15}
	for i, want := range wantScores {
		if got := f.click(t, true, ms(600+100*i)); got != ClickHit {
			t.Fatalf("click %d: %v, want hit", i, got)
		}
		if hud := f.s.Snapshot(ms(600 + 100*i)).HUD; hud.Score != want {
			t.Errorf("after hit %d score %d, want %d", i+1, hud.Score, want)
		}
	}
	hud := f.s.Snapshot(ms(1000)).HUD
	if hud.Level != 3 {
		t.Errorf("Level %d, want 3", hud.Level)
	}
	if hud.Combo != 5 {
		t.Errorf("Combo %d, want 5", hud.Combo)
	}
	// 30 + quick(1) + 4*(lightning+quick) + 5x combo(2) + two level ups(6)
	if hud.TimeRemaining != 47 {
		t.Errorf("TimeRemaining %d, want 47", hud.TimeRemaining)
	}
	for _, text := range []string{"Quick shot! +1s", "Lightning fast! +1s", "5x combo! +2s", "Level up! +3s"} {
		if !f.view.noticed(text) {
			t.Errorf("missing notice %q", text)
		}
	}
	if hud.BestReaction != 0.1 {
		t.Errorf("BestReaction %v, want 0.1", hud.BestReaction)
	}
}

func TestSession_LevelUpTightensSpawnDelayAndLook(t *testing.T) {
	f := newFixture(t)
	f.start(t, ModeClassic)
	for i := 0; i < 4; i++ {
		f.click(t, true, ms(600+100*i))
	}
	snap := f.s.Snapshot(ms(900))
	if snap.HUD.Level != 2 {
		t.Fatalf("Level %d, want 2", snap.HUD.Level)
	}
	want := LookFor(2, ConfigFor(ModeClassic))
	if snap.Target.Scale != want.Scale || snap.Target.Color != want.Color {
		t.Errorf("target scale=%v color=%x, want %v %x", snap.Target.Scale, snap.Target.Color, want.Scale, want.Color)
	}
	// Spawned at 900ms with the level 2 delay of 1300ms: still there at 2200.
	if got := f.s.Snapshot(ms(2200)).Target.SpawnedAt; !got.Equal(ms(900)) {
		t.Errorf("SpawnedAt %v at 2200ms, want %v", got, ms(900))
	}
	if got := f.s.Snapshot(ms(2201)).Target.SpawnedAt; !got.Equal(ms(2200)) {
		t.Errorf("SpawnedAt %v at 2201ms, want %v", got, ms(2200))
	}
}

func TestSession_ClassicEndsAfterThreeMisses(t *testing.T) {
	f := newFixture(t)
	f.start(t, ModeClassic)

	for i := 0; i < 3; i++ {
		if got := f.click(t, false, ms(600+100*i)); got != ClickMiss {
			t.Fatalf("click %d: %v, want miss", i, got)
		}
	}
	if got := f.s.State(); got != StateGameOver {
		t.Fatalf("State %q, want game_over", got)
	}
	summary, ok := f.s.LastSummary()
	if !ok {
		t.Fatal("no summary after game over")
	}
	if summary.Reason != "No lives left!" {
		t.Errorf("Reason %q, want No lives left!", summary.Reason)
	}
	if summary.Misses != 3 {
		t.Errorf("Misses %d, want 3", summary.Misses)
	}
	if !f.view.noticed("-1 life") {
		t.Error("missing -1 life notice")
	}
	if len(f.view.summaries) != 1 {
		t.Errorf("GameOver called %d times, want 1", len(f.view.summaries))
	}
}

func TestSession_MissKeepsTargetAndBreaksCombo(t *testing.T) {
	f := newFixture(t)
	f.start(t, ModeClassic)
	f.click(t, true, ms(600))
	before := f.s.Snapshot(ms(600)).Target
	f.click(t, false, ms(700))
	snap := f.s.Snapshot(ms(700))
	if snap.HUD.Combo != 0 {
		t.Errorf("Combo %d after miss, want 0", snap.HUD.Combo)
	}
	if snap.HUD.Score != 1 {
		t.Errorf("Score %d after miss, want 1", snap.HUD.Score)
	}
	if snap.Target.X != before.X || snap.Target.Y != before.Y {
		t.Error("miss moved the target")
	}
	if snap.HUD.Lives != 2 {
		t.Errorf("Lives %d, want 2", snap.HUD.Lives)
	}
}

func TestSession_PrecisionEndsOnFirstMiss(t *testing.T) {
	f := newFixture(t)
	f.start(t, ModePrecision)
	f.click(t, true, ms(600))
	f.click(t, false, ms(700))

	summary, ok := f.s.LastSummary()
	if !ok {
		t.Fatal("no summary after precision miss")
	}
	if summary.Reason != "Missed a precision shot!" {
		t.Errorf("Reason %q, want Missed a precision shot!", summary.Reason)
	}
	if summary.Score != 1 {
		t.Errorf("Score %d, want 1", summary.Score)
	}
}

func TestSession_TimeAttackHasNoBonuses(t *testing.T) {
	f := newFixture(t)
	f.start(t, ModeTimeAttack)
	for i := 0; i < 4; i++ {
		f.click(t, true, ms(600+100*i))
	}
	hud := f.s.Snapshot(ms(900)).HUD
	if hud.TimeRemaining != 60 {
		t.Errorf("TimeRemaining %d, want 60", hud.TimeRemaining)
	}
	if !f.view.noticed("Level 2!") {
		t.Error("missing Level 2! notice")
	}
	for _, n := range f.view.notices {
		if n.Category == NoticeReaction || n.Category == NoticeCombo {
			t.Errorf("unexpected bonus notice %q", n.Text)
		}
	}

	f.click(t, false, ms(1000))
	hud = f.s.Snapshot(ms(1000)).HUD
	if hud.TimeRemaining != 58 {
		t.Errorf("TimeRemaining %d after miss, want 58", hud.TimeRemaining)
	}
	if !f.view.noticed("-2s") {
		t.Error("missing -2s notice")
	}
}

func TestSession_TimeBonusSettingDisablesBonuses(t *testing.T) {
	f := newFixture(t)
	f.s.UpdateSettings(func(s *Settings) { s.TimeBonusEnabled = false })
	f.start(t, ModeClassic)
	f.click(t, true, ms(600))
	if hud := f.s.Snapshot(ms(600)).HUD; hud.TimeRemaining != 30 {
		t.Errorf("TimeRemaining %d, want 30", hud.TimeRemaining)
	}
}

func TestSession_SurvivalMissLimit(t *testing.T) {
	f := newFixture(t)
	f.start(t, ModeSurvival)
	for i := 0; i < 4; i++ {
		f.click(t, false, ms(600+100*i))
	}
	hud := f.s.Snapshot(ms(900)).HUD
	if hud.Lives != 1 || !hud.ShowLives {
		t.Errorf("Lives %d ShowLives %v, want 1 true", hud.Lives, hud.ShowLives)
	}
	if f.click(t, true, ms(1000)) != ClickHit {
		t.Fatal("hit did not register")
	}
	if f.s.State() != StatePlaying {
		t.Fatalf("State %q after hit, want playing", f.s.State())
	}
	f.click(t, false, ms(1100))
	summary, ok := f.s.LastSummary()
	if !ok {
		t.Fatal("no summary after fifth miss")
	}
	if summary.Reason != "Too many misses!" {
		t.Errorf("Reason %q, want Too many misses!", summary.Reason)
	}
	if summary.Hits != 1 || summary.Misses != 5 {
		t.Errorf("hits=%d misses=%d, want 1 5", summary.Hits, summary.Misses)
	}
	if summary.Accuracy != 1.0/6 {
		t.Errorf("Accuracy %v, want %v", summary.Accuracy, 1.0/6)
	}
}

func TestSession_SurvivalEscapeCountsAsMiss(t *testing.T) {
	f := newFixture(t)
	f.start(t, ModeSurvival)
	snap := f.s.Snapshot(ms(1201))
	if snap.HUD.Misses != 1 {
		t.Errorf("Misses %d after escape, want 1", snap.HUD.Misses)
	}
	if !snap.Target.SpawnedAt.Equal(ms(1200)) {
		t.Errorf("SpawnedAt %v, want respawn at 1200ms", snap.Target.SpawnedAt)
	}
	if !f.view.noticed("Too slow!") {
		t.Error("missing Too slow! notice")
	}
	if snap.HUD.HasTimeLimit {
		t.Error("survival shows a time limit")
	}
}

func TestSession_ClassicEscapeRespawnsWithoutMiss(t *testing.T) {
	f := newFixture(t)
	f.start(t, ModeClassic)
	first := f.s.Snapshot(t0).Target
	snap := f.s.Snapshot(ms(1501))
	if snap.HUD.Misses != 0 {
		t.Errorf("Misses %d, want 0", snap.HUD.Misses)
	}
	if !snap.Target.SpawnedAt.Equal(ms(1500)) {
		t.Errorf("SpawnedAt %v, want %v", snap.Target.SpawnedAt, ms(1500))
	}
	if snap.Target.X == first.X && snap.Target.Y == first.Y {
		t.Error("target did not move on respawn")
	}
}

func TestSession_ComboDecay(t *testing.T) {
	f := newFixture(t)
	f.start(t, ModeClassic)
	f.click(t, true, ms(600))
	f.click(t, true, ms(2000))
	if got := f.s.Snapshot(ms(5000)).HUD.Combo; got != 2 {
		t.Errorf("Combo %d exactly at window end, want 2", got)
	}
	if got := f.s.Snapshot(ms(5001)).HUD.Combo; got != 0 {
		t.Errorf("Combo %d after window, want 0", got)
	}
	if got := f.s.Snapshot(ms(5001)).HUD.Misses; got != 0 {
		t.Errorf("Misses %d, decay must not count a miss", got)
	}
}

func TestSession_ShapeChange(t *testing.T) {
	f := newFixture(t)
	f.start(t, ModeClassic)
	f.click(t, true, ms(600))
	if !f.s.ChangeShape(ms(700)) {
		t.Fatal("ChangeShape returned false")
	}
	if f.s.ChangeShape(ms(800)) {
		t.Error("second ChangeShape during the window should be refused")
	}
	snap := f.s.Snapshot(ms(700))
	if snap.HUD.Combo != 0 {
		t.Errorf("Combo %d after shape change, want 0", snap.HUD.Combo)
	}
	if snap.HUD.Shape != ShapeCube || snap.Target.Shape != ShapeCube {
		t.Errorf("shape %q/%q, want cube", snap.HUD.Shape, snap.Target.Shape)
	}
	if !snap.ShapeChanging {
		t.Error("ShapeChanging false during the window")
	}
	if got := f.click(t, true, ms(800)); got != ClickIgnored {
		t.Errorf("click during shape change %v, want ignored", got)
	}
	if got := f.click(t, true, ms(1300)); got != ClickHit {
		t.Errorf("click after respawn %v, want hit", got)
	}
	if got := f.s.Snapshot(ms(1300)).Target.Shape; got != ShapeCube {
		t.Errorf("respawned shape %q, want cube", got)
	}
}

func TestSession_GraceWindow(t *testing.T) {
	f := newFixture(t)
	f.start(t, ModeClassic)
	if got := f.click(t, true, ms(100)); got != ClickIgnored {
		t.Errorf("click at 100ms %v, want ignored", got)
	}
	if got := f.click(t, false, ms(500)); got != ClickIgnored {
		t.Errorf("click at 500ms %v, want ignored", got)
	}
	if got := f.click(t, true, ms(501)); got != ClickHit {
		t.Errorf("click at 501ms %v, want hit", got)
	}
}

func TestSession_PauseFreezesClock(t *testing.T) {
	f := newFixture(t)
	f.start(t, ModeClassic)
	if !f.s.Pause(ms(600)) {
		t.Fatal("Pause returned false")
	}
	if got := f.click(t, true, ms(700)); got != ClickIgnored {
		t.Errorf("click while paused %v, want ignored", got)
	}
	if next, ok := f.s.NextTimer(ms(5000)); ok {
		t.Errorf("NextTimer while paused %v, want none", next)
	}
	snap := f.s.Snapshot(ms(10000))
	if snap.HUD.TimeRemaining != 30 || snap.HUD.Elapsed != 0 {
		t.Errorf("paused clock moved: remaining=%d elapsed=%d", snap.HUD.TimeRemaining, snap.HUD.Elapsed)
	}
	if !f.s.Resume(ms(10000)) {
		t.Fatal("Resume returned false")
	}
	if got := f.click(t, true, ms(10200)); got != ClickIgnored {
		t.Errorf("click inside resume grace %v, want ignored", got)
	}
	if got := f.click(t, true, ms(10600)); got != ClickHit {
		t.Fatalf("click after resume %v, want hit", got)
	}
	hud := f.s.Snapshot(ms(10600)).HUD
	if hud.Reaction != 1.2 {
		t.Errorf("Reaction %v, want 1.2 with pause excluded", hud.Reaction)
	}
	if hud.Elapsed != 1 {
		t.Errorf("Elapsed %d, want 1", hud.Elapsed)
	}
}

func TestSession_PausedComboDoesNotDecay(t *testing.T) {
	f := newFixture(t)
	f.start(t, ModeClassic)
	f.click(t, true, ms(600))
	f.s.Pause(ms(1000))
	f.s.Resume(ms(60000))
	if got := f.s.Snapshot(ms(60000)).HUD.Combo; got != 1 {
		t.Errorf("Combo %d after pause, want 1", got)
	}
	// 2.6s of the window were left at pause.
	if got := f.s.Snapshot(ms(62601)).HUD.Combo; got != 0 {
		t.Errorf("Combo %d after remaining window, want 0", got)
	}
}

func TestSession_TogglePause(t *testing.T) {
	f := newFixture(t)
	if f.s.TogglePause(t0) {
		t.Error("TogglePause on menu should be refused")
	}
	f.start(t, ModeClassic)
	if !f.s.TogglePause(ms(600)) || f.s.State() != StatePaused {
		t.Fatalf("State %q, want paused", f.s.State())
	}
	if !f.s.TogglePause(ms(700)) || f.s.State() != StatePlaying {
		t.Fatalf("State %q, want playing", f.s.State())
	}
}

func TestSession_TimeUp(t *testing.T) {
	f := newFixture(t)
	f.start(t, ModeClassic)
	f.s.Advance(ms(30000))
	if f.s.State() != StatePlaying {
		t.Fatalf("State %q at exactly 30s, want playing", f.s.State())
	}
	f.s.Advance(ms(30001))
	summary, ok := f.s.LastSummary()
	if !ok {
		t.Fatalf("State %q, want game over", f.s.State())
	}
	if summary.Reason != "Time's up!" {
		t.Errorf("Reason %q, want Time's up!", summary.Reason)
	}
	if summary.Elapsed != 30 {
		t.Errorf("Elapsed %d, want 30", summary.Elapsed)
	}
	if _, ok := f.s.NextTimer(ms(30001)); ok {
		t.Error("timers still armed after game over")
	}
}

func TestSession_GameOverRecordsOnce(t *testing.T) {
	f := newFixture(t)
	f.store.highScore = 2
	f.start(t, ModeClassic)
	for i := 0; i < 5; i++ {
		f.click(t, true, ms(600+100*i))
	}
	for i := 0; i < 3; i++ {
		f.click(t, false, ms(1100+100*i))
	}
	f.s.Advance(ms(60000))
	f.click(t, false, ms(60100))

	if f.store.appends != 1 {
		t.Errorf("AppendScore called %d times, want 1", f.store.appends)
	}
	if f.store.highScore != 15 {
		t.Errorf("stored high score %d, want 15", f.store.highScore)
	}
	if f.store.bestReaction != 0.1 {
		t.Errorf("stored best reaction %v, want 0.1", f.store.bestReaction)
	}
	summary, _ := f.s.LastSummary()
	if !summary.NewHighScore || !summary.NewBestTime || !summary.OnLeaderboard {
		t.Errorf("summary flags %+v, want all new", summary)
	}
	if summary.Level != 3 {
		t.Errorf("Level %d, want 3", summary.Level)
	}
	if got := f.s.Snapshot(ms(60100)).HUD.HighScore; got != 15 {
		t.Errorf("HUD HighScore %d, want 15", got)
	}
}

func TestSession_ZeroScoreIsStillListed(t *testing.T) {
	f := newFixture(t)
	f.store.bestReaction = 0.3
	f.start(t, ModeClassic)
	for i := 0; i < 3; i++ {
		f.click(t, false, ms(600+100*i))
	}
	entries := f.s.Leaderboard()
	if len(entries) != 1 || entries[0].Score != 0 {
		t.Fatalf("leaderboard %+v, want one zero entry", entries)
	}
	if entries[0].Name != DefaultPlayerName {
		t.Errorf("Name %q, want %q", entries[0].Name, DefaultPlayerName)
	}
	summary, _ := f.s.LastSummary()
	if summary.OnLeaderboard || summary.NewHighScore || summary.NewBestTime {
		t.Errorf("summary flags %+v, want none for a zero score", summary)
	}
	if f.store.bestReaction != 0.3 {
		t.Errorf("best reaction %v overwritten without hits", f.store.bestReaction)
	}
}

func TestSession_Transitions(t *testing.T) {
	f := newFixture(t)
	s := f.s
	if s.Start(t0) || s.Pause(t0) || s.Resume(t0) || s.Back(t0) {
		t.Fatal("round transitions accepted on menu")
	}
	if !s.OpenLeaderboard(t0) || s.State() != StateLeaderboard {
		t.Fatalf("State %q, want leaderboard", s.State())
	}
	if s.OpenSettings(t0) {
		t.Error("OpenSettings from leaderboard should be refused")
	}
	if !s.Back(t0) || s.State() != StateMenu {
		t.Fatalf("State %q, want menu", s.State())
	}
	if !s.Play(t0) || s.Play(t0) {
		t.Fatal("Play should succeed once")
	}
	if !s.MainMenu(t0) || s.State() != StateMenu {
		t.Fatalf("State %q, want menu", s.State())
	}

	f.start(t, ModeClassic)
	if s.Play(t0) || s.OpenSettings(t0) || s.MainMenu(t0) {
		t.Fatal("menu transitions accepted while playing")
	}
	s.Pause(ms(600))
	if !s.Restart(ms(700)) {
		t.Fatal("Restart from pause returned false")
	}
	snap := s.Snapshot(ms(700))
	if snap.State != StatePlaying || snap.HUD.Elapsed != 0 || snap.Mode != ModeClassic {
		t.Errorf("after restart %+v", snap)
	}
	s.Pause(ms(800))
	if !s.MainMenu(ms(900)) {
		t.Fatal("MainMenu from pause returned false")
	}
	if f.store.appends != 0 {
		t.Errorf("abandoned rounds recorded %d times", f.store.appends)
	}
	if s.Snapshot(ms(900)).Target.Visible {
		t.Error("target visible on menu")
	}

	want := []State{StateLeaderboard, StateMenu, StateModeSelect, StateMenu, StateModeSelect, StatePlaying, StatePaused, StatePlaying, StatePaused, StateMenu}
	if len(f.view.states) != len(want) {
		t.Fatalf("states %v, want %v", f.view.states, want)
	}
	for i := range want {
		if f.view.states[i] != want[i] {
			t.Errorf("states[%d] %q, want %q", i, f.view.states[i], want[i])
		}
	}
}

func TestSession_PlayAgainKeepsMode(t *testing.T) {
	f := newFixture(t)
	f.start(t, ModePrecision)
	f.click(t, false, ms(600))
	if f.s.State() != StateGameOver {
		t.Fatalf("State %q, want game_over", f.s.State())
	}
	if !f.s.OpenLeaderboard(ms(700)) {
		t.Fatal("OpenLeaderboard from game over returned false")
	}
	f.s.Back(ms(700))
	f.s.Play(ms(700))
	f.s.Start(ms(700))
	f.click(t, false, ms(1300))
	if !f.s.PlayAgain(ms(1400)) {
		t.Fatal("PlayAgain returned false")
	}
	snap := f.s.Snapshot(ms(1400))
	if snap.Mode != ModePrecision || snap.State != StatePlaying {
		t.Errorf("mode=%q state=%q, want precision playing", snap.Mode, snap.State)
	}
	if snap.HasSummary {
		t.Error("summary kept into a new round")
	}
	if snap.Target.Scale != 0.6 {
		t.Errorf("target scale %v, want 0.6", snap.Target.Scale)
	}
}

func TestSession_MultiplayerIsNotStartable(t *testing.T) {
	f := newFixture(t)
	f.s.Play(t0)
	f.s.SelectMode(ModeMultiplayer, t0)
	if f.s.Start(t0) {
		t.Error("Start multiplayer returned true")
	}
	if f.s.State() != StateModeSelect {
		t.Errorf("State %q, want mode_select", f.s.State())
	}
	if f.store.settings.LastMode == ModeMultiplayer {
		t.Error("multiplayer remembered as last mode")
	}
}

func TestSession_QuickPlayUsesLastMode(t *testing.T) {
	f := newFixture(t)
	f.s.Play(t0)
	f.s.SelectMode(ModeSurvival, t0)
	if f.store.settings.LastMode != ModeSurvival {
		t.Errorf("stored LastMode %q, want survival", f.store.settings.LastMode)
	}
	f.s.MainMenu(t0)
	if !f.s.QuickPlay(t0) {
		t.Fatal("QuickPlay returned false")
	}
	if got := f.s.Snapshot(t0).Mode; got != ModeSurvival {
		t.Errorf("Mode %q, want survival", got)
	}
}

func TestSession_NilHitTesterIgnoresClicks(t *testing.T) {
	s := NewSession("p1", Options{Rand: rand.New(rand.NewSource(1))})
	s.Play(t0)
	s.Start(t0)
	if got := s.Click(0, 0, ms(600)); got != ClickIgnored {
		t.Errorf("click %v, want ignored", got)
	}
}

func TestSession_SettingsAreSaved(t *testing.T) {
	f := newFixture(t)
	got := f.s.UpdateSettings(func(s *Settings) {
		s.PlayerName = "   "
		s.MasterVolume = 3
		s.SoundEnabled = false
	})
	if got.PlayerName != DefaultPlayerName || got.MasterVolume != 1 || got.SoundEnabled {
		t.Errorf("settings %+v", got)
	}
	if f.store.settings != got {
		t.Errorf("stored %+v, want %+v", f.store.settings, got)
	}
	if !f.s.ClearLeaderboard() {
		t.Error("ClearLeaderboard returned false")
	}
}

func TestSession_NextTimer(t *testing.T) {
	f := newFixture(t)
	if _, ok := f.s.NextTimer(t0); ok {
		t.Error("NextTimer on menu reported a deadline")
	}
	f.start(t, ModeClassic)
	next, ok := f.s.NextTimer(t0)
	if !ok || !next.Equal(ms(500)) {
		t.Errorf("NextTimer %v %v, want grace end at 500ms", next, ok)
	}
	next, _ = f.s.NextTimer(ms(501))
	if !next.Equal(ms(1000)) {
		t.Errorf("NextTimer %v, want first tick at 1s", next)
	}
}
