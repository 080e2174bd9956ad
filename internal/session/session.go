// Package session keeps one calculator per client: its input history, its
// variable bindings and its graph viewport, persisted through a
// storage.Store after every change.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"calculat0r-api/internal/brain"
	"calculat0r-api/internal/graph"
	"calculat0r-api/internal/storage"
)

// MemoryVariable is the variable bound by the calculator's memory key.
const MemoryVariable = "M"

const keyPrefix = "session/"

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID        string
	Brain     *brain.Brain
	Variables map[string]float64
	Viewport  graph.Viewport
}

// snapshot is the persisted form of a Session.
type snapshot struct {
	Program   brain.Program      `json:"program"`
	Variables map[string]float64 `json:"variables,omitempty"`
	Viewport  graph.Viewport     `json:"viewport"`
}

func newSession(id string) *Session {
	return &Session{
		ID:        id,
		Brain:     brain.New(),
		Variables: map[string]float64{},
		Viewport:  graph.DefaultViewport(),
	}
}

// SetVariable binds name to v for later evaluations.
func (s *Session) SetVariable(name string, v float64) {
	s.Variables[name] = v
}

// Manager owns the sessions stored in a Store. Access is serialised so that
// a read-modify-write of one session is never interleaved with another.
type Manager struct {
	mu    sync.Mutex
	store storage.Store
	newID func() string
}

func NewManager(store storage.Store) *Manager {
	return &Manager{
		store: store,
		newID: func() string { return uuid.New().String() },
	}
}

func (m *Manager) Create(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := newSession(m.newID())
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.load(ctx, id)
}

// Update loads a session, applies fn and persists the result. Nothing is
// saved when fn returns an error.
func (m *Manager) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.store.Get(ctx, keyPrefix+id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if err := m.store.Delete(ctx, keyPrefix+id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// List returns the ids of all stored sessions.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	keys, err := m.store.Keys(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, keyPrefix))
	}
	return ids, nil
}

func (m *Manager) load(ctx context.Context, id string) (*Session, error) {
	data, err := m.store.Get(ctx, keyPrefix+id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}

	s := newSession(id)
	s.Brain.SetProgram(snap.Program)
	for k, v := range snap.Variables {
		s.Variables[k] = v
	}
	s.Viewport = snap.Viewport.Normalize()
	return s, nil
}

func (m *Manager) save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(snapshot{
		Program:   s.Brain.Program(),
		Variables: s.Variables,
		Viewport:  s.Viewport.Normalize(),
	})
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	if err := m.store.Put(ctx, keyPrefix+s.ID, data); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}
