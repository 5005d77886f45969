// Package session owns the per-user in-memory state: the cached State
// document and the playback player. State is write-through persisted on every
// mutation; the player's queue is ephemeral and dies with the session.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"mini-music/internal/player"
	"mini-music/internal/state"
	"mini-music/internal/store"
)

// Session is the single logical actor for one user: all state mutations and
// transport operations for that user funnel through it.
type Session struct {
	mu     sync.Mutex
	userID string
	key    string
	store  store.Store
	state  *state.State
	player *player.Player
}

// UserID returns the identity the session was created for.
func (s *Session) UserID() string {
	return s.userID
}

// State returns the current state. The returned value is immutable by
// convention: mutations produce a new state via Update.
func (s *Session) State() *state.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Player returns the session's transport.
func (s *Session) Player() *player.Player {
	return s.player
}

// Update applies a mutation and persists the result. The mutation returns the
// new state (or the old one unchanged for no-ops); the save is best-effort
// write-through, so a storage hiccup costs durability, not availability.
func (s *Session) Update(ctx context.Context, fn func(*state.State) (*state.State, error)) (*state.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.state)
	if err != nil {
		return s.state, err
	}
	if next == s.state {
		return s.state, nil
	}
	s.state = next
	s.persist(ctx)
	return s.state, nil
}

func (s *Session) persist(ctx context.Context) {
	data, err := json.Marshal(s.state)
	if err != nil {
		log.Printf("mini-music: marshal state for %s: %v", s.userID, err)
		return
	}
	if err := s.store.Save(ctx, s.key, data); err != nil {
		log.Printf("mini-music: save state for %s: %v", s.userID, err)
	}
}

// Manager hands out sessions, loading and normalizing persisted state on
// first touch.
type Manager struct {
	mu       sync.Mutex
	store    store.Store
	sessions map[string]*Session
	newMedia func(userID string) player.Media
}

func NewManager(st store.Store, newMedia func(userID string) player.Media) *Manager {
	return &Manager{
		store:    st,
		sessions: make(map[string]*Session),
		newMedia: newMedia,
	}
}

// Get returns the session for a user, creating it on first use. A fresh
// session loads the persisted document, normalizes it, and persists the
// normalized result right away so future loads skip the migration.
func (m *Manager) Get(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		userID = store.AnonUserID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		return s, nil
	}

	key := store.UserKey(userID)
	data, err := m.store.Load(ctx, key)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	s := &Session{
		userID: userID,
		key:    key,
		store:  m.store,
		state:  state.Normalize(data),
		player: player.New(m.newMedia(userID)),
	}
	s.persist(ctx)

	m.sessions[userID] = s
	return s, nil
}
