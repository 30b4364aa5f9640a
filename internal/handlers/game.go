package handlers

import (
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"targetgame/internal/game"
	"targetgame/views/components"
)

// transitionFunc is a session operation driven by a button.
type transitionFunc func(s *game.Session, now time.Time) bool

type GameHandler struct {
	store *game.Store
}

func NewGameHandler(store *game.Store) *GameHandler {
	return &GameHandler{store: store}
}

func (h *GameHandler) RegisterRoutes(r chi.Router) {
	r.Get("/screen", h.screenFragment)
	r.Get("/hud", h.hudFragment)

	r.Post("/play", h.transition("play", (*game.Session).Play))
	r.Post("/quickplay", h.transition("quickplay", (*game.Session).QuickPlay))
	r.Post("/mode", h.selectMode)
	r.Post("/start", h.transition("start", (*game.Session).Start))
	r.Post("/pause", h.transition("pause", (*game.Session).Pause))
	r.Post("/resume", h.transition("resume", (*game.Session).Resume))
	r.Post("/toggle-pause", h.transition("toggle-pause", (*game.Session).TogglePause))
	r.Post("/restart", h.transition("restart", (*game.Session).Restart))
	r.Post("/again", h.transition("again", (*game.Session).PlayAgain))
	r.Post("/menu", h.transition("menu", (*game.Session).MainMenu))
	r.Post("/back", h.transition("back", (*game.Session).Back))
	r.Post("/leaderboard", h.transition("leaderboard", (*game.Session).OpenLeaderboard))
	r.Post("/leaderboard/clear", h.clearLeaderboard)
	r.Post("/settings", h.transition("settings", (*game.Session).OpenSettings))
	r.Post("/settings/save", h.saveSettings)
	r.Post("/shape", h.transition("shape", (*game.Session).ChangeShape))
	r.Post("/click", h.click)
}

// RegisterStream mounts the event stream. It is kept apart from the other
// routes so it can skip request timeouts.
func (h *GameHandler) RegisterStream(r chi.Router) {
	r.Get("/stream", h.stream)
}

func (h *GameHandler) transition(name string, op transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := profileID(w, r)
		session := h.store.Session(id)
		ok := op(session, h.store.Now())
		log.Printf("session action profile=%s action=%s ok=%t", id, name, ok)
		if ok {
			h.store.Wake(id)
		}
		respond(w, r)
	}
}

func (h *GameHandler) selectMode(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id := profileID(w, r)
	session := h.store.Session(id)
	mode := game.ParseMode(r.FormValue("mode"))
	if session.SelectMode(mode, h.store.Now()) {
		// Selection does not change the screen; viewers still need the
		// highlighted mode.
		h.store.Publish(id, game.Event{Kind: game.EventState, State: session.State()})
	}
	respond(w, r)
}

func (h *GameHandler) clearLeaderboard(w http.ResponseWriter, r *http.Request) {
	id := profileID(w, r)
	session := h.store.Session(id)
	ok := session.ClearLeaderboard()
	log.Printf("session action profile=%s action=clear-leaderboard ok=%t", id, ok)
	h.store.Publish(id, game.Event{Kind: game.EventState, State: session.State()})
	respond(w, r)
}

func (h *GameHandler) saveSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id := profileID(w, r)
	session := h.store.Session(id)
	volume := parseInt(r.FormValue("masterVolume"), int(math.Round(session.Settings().MasterVolume*100)))
	saved := session.UpdateSettings(func(s *game.Settings) {
		s.PlayerName = r.FormValue("playerName")
		s.SoundEnabled = r.FormValue("soundEnabled") != ""
		s.ParticlesEnabled = r.FormValue("particlesEnabled") != ""
		s.TimeBonusEnabled = r.FormValue("timeBonusEnabled") != ""
		s.MasterVolume = float64(volume) / 100
	})
	log.Printf("settings saved profile=%s name=%q sound=%t volume=%.2f", id, saved.PlayerName, saved.SoundEnabled, saved.MasterVolume)
	h.store.Publish(id, game.Event{Kind: game.EventState, State: session.State()})
	respond(w, r)
}

func (h *GameHandler) click(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	x, errX := strconv.ParseFloat(r.FormValue("x"), 64)
	y, errY := strconv.ParseFloat(r.FormValue("y"), 64)
	if errX != nil || errY != nil || math.IsNaN(x) || math.IsNaN(y) {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return
	}
	id := profileID(w, r)
	result := h.store.Session(id).Click(x, y, h.store.Now())
	if result != game.ClickIgnored {
		h.store.Wake(id)
	}
	writeJSON(w, map[string]string{"result": clickResultName(result)})
}

func (h *GameHandler) screenFragment(w http.ResponseWriter, r *http.Request) {
	session := h.store.Session(profileID(w, r))
	snapshot := session.Snapshot(h.store.Now())
	render(w, r, components.Screen(buildScreen(session, snapshot)))
}

func (h *GameHandler) hudFragment(w http.ResponseWriter, r *http.Request) {
	session := h.store.Session(profileID(w, r))
	render(w, r, components.HUD(buildHUD(session.Snapshot(h.store.Now()))))
}

func clickResultName(result game.ClickResult) string {
	switch result {
	case game.ClickHit:
		return "hit"
	case game.ClickMiss:
		return "miss"
	default:
		return "ignored"
	}
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
