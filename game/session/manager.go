package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/game2048/game/engine"
	"github.com/wricardo/game2048/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

const (
	maxSessionIDLength = 64

	// generated IDs widen by one byte after this many collisions in a row
	idAttemptsPerWidth = 32
)

// Manager handles game session lifecycle. Sessions live in memory only.
// Every session it hands out is a copy taken under its lock; the copies
// share the session's engine.
type Manager struct {
	sessions map[string]*service.Session
	mu       sync.RWMutex
}

// NewManager creates a new session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
	}
}

// Create creates a new session. An empty id gets a generated one, a nil
// layout starts a regular random game.
func (m *Manager) Create(id string, seed int64, layout *engine.Layout) (*service.Session, error) {
	if id != "" {
		if err := validateSessionID(id); err != nil {
			return nil, err
		}
	}

	var (
		eng  *engine.GameEngine
		name string
	)
	rng := engine.NewSeededSource(seed)
	if layout != nil {
		var err error
		eng, err = engine.NewEngineFromLayout(layout, rng)
		if err != nil {
			return nil, fmt.Errorf("failed to create engine: %w", err)
		}
		name = layout.Name
	} else {
		eng = engine.NewEngine(rng)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
	}
	key := strings.ToLower(id)
	if _, exists := m.sessions[key]; exists {
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	sess := &service.Session{
		ID:             id,
		Seed:           seed,
		Layout:         name,
		Engine:         eng,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key] = sess
	return snapshot(sess), nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return snapshot(sess), nil
}

// Touch marks a session as accessed now and returns it
func (m *Manager) Touch(id string) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	sess.LastAccessedAt = time.Now()
	return snapshot(sess), nil
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, snapshot(sess))
	}
	return result
}

// Delete removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.sessions[key]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, key)
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for key, sess := range m.sessions {
		if sess.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, key)
			removed++
		}
	}
	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID returns a random hex ID not yet in use. IDs start at 4
// characters and grow by two whenever a width keeps colliding.
// Callers hold m.mu.
func (m *Manager) generateSessionID() string {
	for width := 2; ; width++ {
		bytes := make([]byte, width)
		for i := 0; i < idAttemptsPerWidth; i++ {
			rand.Read(bytes)
			id := hex.EncodeToString(bytes)
			if _, taken := m.sessions[id]; !taken {
				return id
			}
		}
	}
}

func snapshot(sess *service.Session) *service.Session {
	cp := *sess
	return &cp
}

func validateSessionID(id string) error {
	if len(id) > maxSessionIDLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidSessionID, maxSessionIDLength)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
		}
	}
	return nil
}
