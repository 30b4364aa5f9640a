package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"targetgame/internal/config"
	"targetgame/internal/game"
	"targetgame/internal/handlers"
	"targetgame/internal/storage/memory"
	"targetgame/internal/storage/sqlite"
	"targetgame/pkg/realtime"
)

func main() {
	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	open, closeStorage, err := openStorage(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStorage()

	store := game.NewStore(realtime.SystemClock{}, open, game.RadiusHitTester{Radius: cfg.HitRadius})
	defer store.Close()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		log.Fatal(err)
	}

	homeHandler := handlers.NewHomeHandler(store)
	gameHandler := handlers.NewGameHandler(store)

	// The event stream outlives any request timeout.
	gameHandler.RegisterStream(r)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Mount("/static", http.StripPrefix("/static", http.FileServer(http.FS(staticFS))))
		homeHandler.RegisterRoutes(r)
		gameHandler.RegisterRoutes(r)
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepSessions(ctx, store, cfg.SessionIdle)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error err=%v", err)
		}
	}()

	log.Printf("listening on http://localhost%s storage=%s", cfg.ListenAddr(), storageName(cfg.DBPath))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// sweepSessions drops idle sessions until ctx is done.
func sweepSessions(ctx context.Context, store *game.Store, idle time.Duration) {
	ticker := time.NewTicker(max(idle/4, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Evict(idle); n > 0 {
				log.Printf("evicted idle sessions count=%d live=%d", n, store.Len())
			}
		}
	}
}

// openStorage picks SQLite when a path is configured and process memory
// otherwise.
func openStorage(path string) (game.PersistenceFactory, func(), error) {
	if path == "" {
		return memory.New().Profile, func() {}, nil
	}
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Printf("close storage error err=%v", err)
		}
	}
	return db.Profile, closeDB, nil
}

func storageName(path string) string {
	if path == "" {
		return "memory"
	}
	return path
}

//go:embed static/*
var embeddedStatic embed.FS
