package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndRecent(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	base := time.Unix(1700000000, 0)
	for i, rec := range []Record{
		{BuildID: "a", StartedAt: base, Duration: 120 * time.Millisecond, Pages: 3, Components: 2, Success: true},
		{BuildID: "b", StartedAt: base.Add(time.Minute), Duration: 80 * time.Millisecond, Pages: 3, Components: 2, Success: false},
		{BuildID: "c", StartedAt: base.Add(2 * time.Minute), Duration: 95 * time.Millisecond, Pages: 4, Components: 2, Success: true},
	} {
		require.NoError(t, s.Append(ctx, rec), "record %d", i)
	}

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "c", got[0].BuildID, "newest first")
	assert.Equal(t, "b", got[1].BuildID)
	assert.Equal(t, "a", got[2].BuildID)

	assert.Equal(t, base.Add(2*time.Minute).Unix(), got[0].StartedAt.Unix())
	assert.Equal(t, 95*time.Millisecond, got[0].Duration)
	assert.Equal(t, 4, got[0].Pages)
	assert.True(t, got[0].Success)
	assert.False(t, got[1].Success)
}

func TestRecentLimit(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	base := time.Unix(1700000000, 0)
	for i := 0; i < 5; i++ {
		rec := Record{
			BuildID:   string(rune('a' + i)),
			StartedAt: base.Add(time.Duration(i) * time.Second),
			Success:   true,
		}
		require.NoError(t, s.Append(ctx, rec))
	}

	got, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "e", got[0].BuildID)
	assert.Equal(t, "d", got[1].BuildID)
}

func TestOpenCreatesFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "builds.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Append(context.Background(), Record{BuildID: "x", StartedAt: time.Now(), Success: true}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := s.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].BuildID)
}
