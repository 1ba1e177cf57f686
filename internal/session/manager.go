package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/maruel/jsonledit/internal/metrics"
	"github.com/maruel/ksid"
)

// Manager tracks the open editing sessions.
type Manager struct {
	store Store
	ttl   time.Duration

	mu       sync.RWMutex
	sessions map[ksid.ID]*Editor
	stop     chan struct{}
	once     sync.Once
}

// NewManager returns a Manager that opens files through store. Sessions idle
// for longer than ttl are dropped; a zero ttl keeps them until closed.
func NewManager(store Store, ttl time.Duration) *Manager {
	m := &Manager{
		store:    store,
		ttl:      ttl,
		sessions: map[ksid.ID]*Editor{},
		stop:     make(chan struct{}),
	}
	if ttl > 0 {
		go m.cleanupLoop(min(ttl, time.Minute))
	}
	return m
}

// Open loads path and registers a new session for it.
func (m *Manager) Open(path string) (ksid.ID, *Editor, error) {
	e, err := Open(path, m.store)
	if err != nil {
		return 0, nil, err
	}
	id := ksid.NewID()
	m.mu.Lock()
	m.sessions[id] = e
	n := len(m.sessions)
	m.mu.Unlock()
	metrics.Sessions.Set(float64(n))
	slog.Info("Opened session", "id", id.String(), "path", path, "count", e.Records().Len())
	return id, e, nil
}

// Get returns the session id.
func (m *Manager) Get(id ksid.ID) (*Editor, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// Close drops the session id. Uncommitted buffers are discarded.
func (m *Manager) Close(id ksid.ID) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	metrics.Sessions.Set(float64(n))
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Stop ends the cleanup goroutine.
func (m *Manager) Stop() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Manager) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			m.expire(now)
		case <-m.stop:
			return
		}
	}
}

// expire drops the sessions idle since before now-ttl. Editors are inspected
// without holding m.mu, since an editor stays locked during a rewrite.
func (m *Manager) expire(now time.Time) int {
	threshold := now.Add(-m.ttl)
	m.mu.RLock()
	candidates := make(map[ksid.ID]*Editor, len(m.sessions))
	for id, e := range m.sessions {
		candidates[id] = e
	}
	m.mu.RUnlock()
	var idle []ksid.ID
	for id, e := range candidates {
		if e.LastUsed().Before(threshold) {
			idle = append(idle, id)
		}
	}
	if len(idle) == 0 {
		return 0
	}
	m.mu.Lock()
	var dropped int
	for _, id := range idle {
		// The session may have been closed or replaced meanwhile.
		if e, ok := m.sessions[id]; ok && e == candidates[id] {
			delete(m.sessions, id)
			dropped++
			slog.Info("Expired idle session", "id", id.String(), "path", e.Path())
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()
	if dropped > 0 {
		metrics.Sessions.Set(float64(n))
	}
	return dropped
}
