package game

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
	"time"

	"targetgame/pkg/realtime"
)

// Event kinds published to a session's viewers.
const (
	EventState    = "state"
	EventHUD      = "hud"
	EventTarget   = "target"
	EventNotice   = "notice"
	EventGameOver = "gameover"
)

// Event is one notification from a session to its viewers.
type Event struct {
	Kind    string
	Notice  Notice
	Target  Target
	HUD     HUD
	State   State
	Summary Summary
}

// PersistenceFactory opens the storage of one player profile.
type PersistenceFactory func(profileID string) Persistence

// Store holds one session per player profile and delegates to
// realtime.SessionStore for broadcast and timing loops.
type Store struct {
	r    *realtime.SessionStore[*Session, Event]
	open PersistenceFactory
	hits HitTester
}

// NewStore creates an in-memory session registry. open may be nil for
// sessions without storage.
func NewStore(clock realtime.Clock, open PersistenceFactory, hits HitTester) *Store {
	return &Store{
		r:    realtime.NewSessionStore[*Session, Event](clock),
		open: open,
		hits: hits,
	}
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.r.Clock().Now()
}

// Session returns the profile's session, creating it on first use.
func (s *Store) Session(profileID string) *Session {
	entry, created := s.r.GetOrCreate(profileID, func() *Session {
		var store Persistence
		if s.open != nil {
			store = s.open(profileID)
		}
		return NewSession(profileID, Options{
			Persistence: store,
			View:        &hubView{store: s, id: profileID},
			HitTester:   s.hits,
		})
	})
	if created {
		s.EnsureLoop(profileID)
	}
	return entry.State
}

// GetSession returns a session by profile ID if it exists.
func (s *Store) GetSession(profileID string) (*Session, bool) {
	entry, ok := s.r.Get(profileID)
	if !ok {
		return nil, false
	}
	return entry.State, true
}

// Broadcaster returns the event broadcaster of a profile's session.
func (s *Store) Broadcaster(profileID string) *realtime.Broadcaster[Event] {
	s.Session(profileID)
	entry, ok := s.r.Get(profileID)
	if !ok {
		// Deleted concurrently; hand out a hub nobody publishes to.
		return realtime.NewBroadcaster[Event]()
	}
	return entry.Hub()
}

// Publish notifies the session's viewers.
func (s *Store) Publish(profileID string, event Event) {
	s.r.Publish(profileID, event)
}

// EnsureLoop starts the timing loop of a session if not already running.
// The loop sleeps until the session's next deadline and advances it.
func (s *Store) EnsureLoop(profileID string) {
	tick := func(session *Session, now time.Time) (time.Time, bool) {
		if session == nil {
			return time.Time{}, false
		}
		session.Advance(now)
		return session.NextTimer(now)
	}
	s.r.RunLoop(profileID, tick)
}

// Wake makes the session loop recompute its next deadline, e.g. after a
// round starts or resumes.
func (s *Store) Wake(profileID string) {
	s.r.Wake(profileID)
}

// Evict drops sessions nobody has touched for idle and nobody is watching,
// stopping their loops. It returns how many were dropped. Persisted records
// survive; the next request for the profile starts a fresh session.
func (s *Store) Evict(idle time.Duration) int {
	return len(s.r.Evict(idle))
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.r.Len()
}

// HitRadius returns the target radius used for hit tests, for clients that
// draw the target.
func (s *Store) HitRadius() float64 {
	if rt, ok := s.hits.(RadiusHitTester); ok && rt.Radius > 0 {
		return rt.Radius
	}
	return DefaultHitRadius
}

// Close stops every session loop.
func (s *Store) Close() {
	for _, id := range s.r.IDs() {
		s.r.Delete(id)
	}
}

// hubView forwards session notifications to the profile's subscribers.
type hubView struct {
	store *Store
	id    string
}

func (v *hubView) StateChanged(state State) {
	v.store.Publish(v.id, Event{Kind: EventState, State: state})
}

func (v *hubView) ScoreChanged(hud HUD) {
	v.store.Publish(v.id, Event{Kind: EventHUD, HUD: hud})
}

func (v *hubView) TargetChanged(target Target) {
	v.store.Publish(v.id, Event{Kind: EventTarget, Target: target})
}

func (v *hubView) Notify(notice Notice) {
	v.store.Publish(v.id, Event{Kind: EventNotice, Notice: notice})
}

func (v *hubView) GameOver(summary Summary) {
	v.store.Publish(v.id, Event{Kind: EventGameOver, Summary: summary})
}

// NewID returns a short random url-safe identifier.
func NewID() string {
	// 10 bytes -> 16 chars of base32, short and url-safe.
	buf := make([]byte, 10)
	_, _ = rand.Read(buf)
	encoder := base32.StdEncoding.WithPadding(base32.NoPadding)
	return strings.ToLower(encoder.EncodeToString(buf))
}
