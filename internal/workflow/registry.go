package workflow

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type registryEntry struct {
	coordinator *Coordinator
	lastSeen    time.Time
}

// Registry keeps one Coordinator per session id. Every Get counts as
// activity for the idle sweep.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*registryEntry
	build    func(id string) *Coordinator
	newID    func() string
	now      func() time.Time
}

// NewRegistry builds coordinators with build. Each call receives a fresh
// session id.
func NewRegistry(build func(id string) *Coordinator) *Registry {
	return &Registry{
		sessions: make(map[string]*registryEntry),
		build:    build,
		newID:    uuid.NewString,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *Registry) Create() *Coordinator {
	id := r.newID()
	coordinator := r.build(id)
	r.mu.Lock()
	r.sessions[id] = &registryEntry{coordinator: coordinator, lastSeen: r.now()}
	r.mu.Unlock()
	return coordinator
}

func (r *Registry) Get(id string) (*Coordinator, error) {
	id = strings.TrimSpace(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	entry.lastSeen = r.now()
	return entry.coordinator, nil
}

func (r *Registry) Remove(id string) bool {
	id = strings.TrimSpace(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Close drops session id. A session with a lookup or submission in flight
// is kept and ErrBusy is returned.
func (r *Registry) Close(id string) error {
	id = strings.TrimSpace(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if entry.coordinator.Busy() {
		return ErrBusy
	}
	delete(r.sessions, id)
	return nil
}

// Sweep drops sessions not touched for idle and returns their ids. Busy
// sessions are skipped.
func (r *Registry) Sweep(idle time.Duration) []string {
	if idle <= 0 {
		return nil
	}
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []string
	for id, entry := range r.sessions {
		if entry.lastSeen.After(cutoff) || entry.coordinator.Busy() {
			continue
		}
		delete(r.sessions, id)
		removed = append(removed, id)
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot returns the current snapshot of session id.
func (r *Registry) Snapshot(id string) (Snapshot, error) {
	coordinator, err := r.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	return coordinator.Snapshot(), nil
}
