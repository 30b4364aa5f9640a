package realtime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Entry holds one session's state and the broadcaster its viewers listen on.
type Entry[T any, E any] struct {
	ID    string
	State T
	hub   *Broadcaster[E]
	seen  atomic.Int64
}

// LastSeen returns when the entry was last created or looked up through
// GetOrCreate.
func (e *Entry[T, E]) LastSeen() time.Time {
	return time.Unix(0, e.seen.Load())
}

func (e *Entry[T, E]) touch(now time.Time) {
	e.seen.Store(now.UnixNano())
}

// Hub returns the entry's broadcaster.
func (e *Entry[T, E]) Hub() *Broadcaster[E] {
	return e.hub
}

// SessionStore keeps live sessions keyed by ID, each with a broadcaster and
// at most one timing loop.
type SessionStore[T any, E any] struct {
	mu      sync.RWMutex
	clock   Clock
	entries map[string]*Entry[T, E]
	loops   map[string]context.CancelFunc
	wakes   map[string]chan struct{}
}

// NewSessionStore creates an empty store reading time from clock.
func NewSessionStore[T any, E any](clock Clock) *SessionStore[T, E] {
	if clock == nil {
		clock = SystemClock{}
	}
	return &SessionStore[T, E]{
		clock:   clock,
		entries: make(map[string]*Entry[T, E]),
		loops:   make(map[string]context.CancelFunc),
		wakes:   make(map[string]chan struct{}),
	}
}

// Clock returns the store's time source.
func (s *SessionStore[T, E]) Clock() Clock {
	return s.clock
}

// Create adds an entry with the given id and state, and a new Broadcaster.
// An existing entry with the same id is replaced and its loop stopped.
func (s *SessionStore[T, E]) Create(id string, state T) *Entry[T, E] {
	s.Stop(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &Entry[T, E]{ID: id, State: state, hub: NewBroadcaster[E]()}
	e.touch(s.clock.Now())
	s.entries[id] = e
	return e
}

// GetOrCreate returns the entry for id, building its state with create when
// missing, and marks it as seen. create runs under the store lock and must
// not call back into it.
func (s *SessionStore[T, E]) GetOrCreate(id string, create func() T) (*Entry[T, E], bool) {
	now := s.clock.Now()
	if e, ok := s.Get(id); ok {
		e.touch(now)
		return e, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		e.touch(now)
		return e, false
	}
	e := &Entry[T, E]{ID: id, State: create(), hub: NewBroadcaster[E]()}
	e.touch(now)
	s.entries[id] = e
	return e, true
}

// Get returns the entry by ID if it exists.
func (s *SessionStore[T, E]) Get(id string) (*Entry[T, E], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// Len returns the number of live entries.
func (s *SessionStore[T, E]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// IDs returns the ids of all live entries.
func (s *SessionStore[T, E]) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	return ids
}

// Delete stops the entry's loop, closes its subscribers and forgets it.
func (s *SessionStore[T, E]) Delete(id string) {
	s.Stop(id)
	s.mu.Lock()
	e, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()
	if ok {
		e.hub.Close()
	}
}

// Evict deletes every entry not seen for at least idle that has no
// subscribers, stopping its loop. It returns the evicted ids.
func (s *SessionStore[T, E]) Evict(idle time.Duration) []string {
	now := s.clock.Now()
	var (
		ids     []string
		hubs    []*Broadcaster[E]
		cancels []context.CancelFunc
	)
	s.mu.Lock()
	for id, e := range s.entries {
		if now.Sub(e.LastSeen()) < idle || e.hub.Subscribers() > 0 {
			continue
		}
		delete(s.entries, id)
		if cancel, ok := s.loops[id]; ok {
			cancels = append(cancels, cancel)
			delete(s.loops, id)
			delete(s.wakes, id)
		}
		ids = append(ids, id)
		hubs = append(hubs, e.hub)
	}
	s.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
	for _, hub := range hubs {
		hub.Close()
	}
	return ids
}

// Publish notifies subscribers of the entry's broadcaster. Unknown ids are ignored.
func (s *SessionStore[T, E]) Publish(id string, event E) {
	if e, ok := s.Get(id); ok {
		e.hub.Publish(event)
	}
}

// TickFunc is called by RunLoop with the current time. It returns when the
// loop should wake next; ok false means nothing is scheduled and the loop
// sleeps until woken.
type TickFunc[T any] func(state T, now time.Time) (next time.Time, ok bool)

// RunLoop starts a timing loop for the entry. If a loop already exists for
// id, it is not started again. The loop lives until Stop, Delete or Evict.
func (s *SessionStore[T, E]) RunLoop(id string, tick TickFunc[T]) {
	s.mu.Lock()
	if _, ok := s.loops[id]; ok {
		s.mu.Unlock()
		return
	}
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	wake := make(chan struct{}, 1)
	s.loops[id] = cancel
	s.wakes[id] = wake
	s.mu.Unlock()

	go func() {
		for {
			now := s.clock.Now()
			next, ok := tick(e.State, now)
			if !ok {
				select {
				case <-ctx.Done():
					return
				case <-wake:
					continue
				}
			}
			wait := next.Sub(now)
			if wait < 0 {
				wait = 0
			}
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				// Deadline reached; tick catches the session up.
			case <-wake:
				timer.Stop()
			}
		}
	}()
}

// Running reports whether a loop is active for id.
func (s *SessionStore[T, E]) Running(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.loops[id]
	return ok
}

// Wake unblocks the entry's loop so it recomputes immediately.
func (s *SessionStore[T, E]) Wake(id string) {
	s.mu.RLock()
	wake, ok := s.wakes[id]
	s.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case wake <- struct{}{}:
	default:
	}
}

// Stop cancels the entry's loop if one is running.
func (s *SessionStore[T, E]) Stop(id string) {
	s.mu.Lock()
	cancel, ok := s.loops[id]
	if ok {
		delete(s.loops, id)
		delete(s.wakes, id)
	}
	s.mu.Unlock()
	if ok {
		cancel()
	}
}
