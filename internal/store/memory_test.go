package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/damage-control/apps/go-client/internal/session"
)

func TestMemoryStore_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	s := session.New(nil, session.WithID("abc"))

	require.NoError(t, st.Save(ctx, s))
	got, err := st.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, st.Delete(ctx, "abc"))
	_, err = st.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SweepDropsIdleSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	m := &memory{sessions: map[string]*entry{}, now: func() time.Time { return now }}

	require.NoError(t, m.Save(ctx, session.New(nil, session.WithID("old"))))
	now = now.Add(time.Hour)
	require.NoError(t, m.Save(ctx, session.New(nil, session.WithID("fresh"))))

	dropped := m.Sweep(ctx, now.Add(-30*time.Minute))
	assert.Equal(t, 1, dropped)

	_, err := m.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestMemoryStore_GetRefreshesLastSeen(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	m := &memory{sessions: map[string]*entry{}, now: func() time.Time { return now }}

	require.NoError(t, m.Save(ctx, session.New(nil, session.WithID("s"))))
	now = now.Add(time.Hour)
	_, err := m.Get(ctx, "s")
	require.NoError(t, err)

	assert.Zero(t, m.Sweep(ctx, now.Add(-time.Minute)))
}
