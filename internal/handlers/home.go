package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"targetgame/internal/game"
	"targetgame/internal/viewmodel"
	"targetgame/views/pages"
)

const pageTitle = "Target Rush"

type HomeHandler struct {
	store *game.Store
}

func NewHomeHandler(store *game.Store) *HomeHandler {
	return &HomeHandler{store: store}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
}

func (h *HomeHandler) home(w http.ResponseWriter, r *http.Request) {
	id := profileID(w, r)
	session := h.store.Session(id)
	snapshot := session.Snapshot(h.store.Now())

	data := viewmodel.GamePage{
		Title:  pageTitle,
		Screen: buildScreen(session, snapshot),
		HUD:    buildHUD(snapshot),
		Client: viewmodel.ClientSettings{
			SoundEnabled:     snapshot.Settings.SoundEnabled,
			ParticlesEnabled: snapshot.Settings.ParticlesEnabled,
			MasterVolume:     snapshot.Settings.MasterVolume,
			HitRadius:        h.store.HitRadius(),
		},
	}
	render(w, r, pages.GamePage(data))
}
