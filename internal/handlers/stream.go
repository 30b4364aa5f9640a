package handlers

import (
	"net/http"
	"time"

	"targetgame/internal/game"
	"targetgame/views/components"
)

const keepAliveInterval = 25 * time.Second

func (h *GameHandler) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	id := profileID(w, r)
	session := h.store.Session(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	hub := h.store.Broadcaster(id)
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	sendSnapshot := func(includeScreen bool, includeHUD bool, includeTarget bool) {
		snapshot := session.Snapshot(h.store.Now())
		if includeScreen {
			writeSSE(w, "state", renderToString(r, components.Screen(buildScreen(session, snapshot))))
		}
		if includeHUD {
			writeSSE(w, "hud", renderToString(r, components.HUD(buildHUD(snapshot))))
		}
		if includeTarget {
			writeSSEJSON(w, "target", buildTarget(snapshot.Target))
		}
		flusher.Flush()
	}

	sendSnapshot(true, true, true)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-sub:
			if !open {
				return
			}
			switch event.Kind {
			case game.EventState, game.EventGameOver:
				sendSnapshot(true, true, true)
			case game.EventHUD:
				sendSnapshot(false, true, false)
			case game.EventTarget:
				writeSSEJSON(w, "target", buildTarget(event.Target))
				flusher.Flush()
			case game.EventNotice:
				writeSSEJSON(w, "notice", buildNotice(event.Notice))
				flusher.Flush()
			}
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}
