package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndRecent(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	j.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := j.Record(ctx, "users.ban", "u1", "production", true)
	require.NoError(t, err)
	assert.Len(t, first.ID, 26)

	_, err = j.Record(ctx, "posts.delete", "p9", "production", false)
	require.NoError(t, err)
	_, err = j.Record(ctx, "insurance.approve", "i3", "staging", true)
	require.NoError(t, err)

	entries, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "insurance.approve", entries[0].Action)
	assert.Equal(t, "posts.delete", entries[1].Action)
	assert.False(t, entries[1].Success)
	assert.Equal(t, base.Add(2*time.Minute), entries[1].RequestedAt.UTC())
}

func TestRecent_DefaultLimitAndEmpty(t *testing.T) {
	j := openTemp(t)

	entries, err := j.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	j, err := Open(path)
	require.NoError(t, err)
	_, err = j.Record(context.Background(), "garages.delete", "g1", "local", true)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "g1", entries[0].Target)
}
