package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calculat0r-api/internal/storage"
)

func TestCreateAssignsUUID(t *testing.T) {
	m := NewManager(storage.NewMemory())

	s, err := m.Create(context.Background())
	require.NoError(t, err)

	_, err = uuid.Parse(s.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0, s.Brain.Len())
	assert.Equal(t, 1.0, s.Viewport.Scale)
}

func TestUpdatePersistsHistoryVariablesAndViewport(t *testing.T) {
	ctx := context.Background()
	m := NewManager(storage.NewMemory())

	s, err := m.Create(ctx)
	require.NoError(t, err)

	_, err = m.Update(ctx, s.ID, func(s *Session) error {
		s.Brain.AppendVariable(MemoryVariable)
		s.Brain.AppendOperation("×")
		s.Brain.AppendOperand(2)
		s.Brain.AppendOperation("=")
		s.SetVariable(MemoryVariable, 21)
		s.Viewport.Zoom(3)
		return nil
	})
	require.NoError(t, err)

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)

	res := got.Brain.Evaluate(got.Variables, nil)
	assert.Equal(t, 42.0, res.Value)
	assert.Equal(t, "M×2", res.Description)
	assert.Equal(t, 3.0, got.Viewport.Scale)
}

func TestUpdateDiscardsOnError(t *testing.T) {
	ctx := context.Background()
	m := NewManager(storage.NewMemory())

	s, err := m.Create(ctx)
	require.NoError(t, err)

	_, err = m.Update(ctx, s.ID, func(s *Session) error {
		s.Brain.AppendOperand(1)
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Brain.Len())
}

func TestMissingSession(t *testing.T) {
	ctx := context.Background()
	m := NewManager(storage.NewMemory())

	_, err := m.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Update(ctx, "nope", func(*Session) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, m.Delete(ctx, "nope"), ErrNotFound)
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	m := NewManager(storage.NewMemory())

	ids := []string{"a", "b", "c"}
	next := 0
	m.newID = func() string {
		id := ids[next]
		next++
		return id
	}

	for range ids {
		_, err := m.Create(ctx)
		require.NoError(t, err)
	}

	got, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids, got)

	require.NoError(t, m.Delete(ctx, "b"))
	got, err = m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, got)
}

func TestSessionsSurviveBadgerReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := storage.OpenBadger(storage.DefaultBadgerConfig(dir))
	require.NoError(t, err)

	m := NewManager(store)
	s, err := m.Create(ctx)
	require.NoError(t, err)
	_, err = m.Update(ctx, s.ID, func(s *Session) error {
		s.Brain.AppendOperand(16)
		s.Brain.AppendOperation("√")
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = storage.OpenBadger(storage.DefaultBadgerConfig(dir))
	require.NoError(t, err)
	defer store.Close()

	got, err := NewManager(store).Get(ctx, s.ID)
	require.NoError(t, err)
	res := got.Brain.Evaluate(got.Variables, nil)
	assert.Equal(t, 4.0, res.Value)
	assert.Equal(t, "√(16)", res.Description)
}
