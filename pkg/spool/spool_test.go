package spool

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Spool, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "spool.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestReplacePrefix(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.ReplacePrefix(ctx, "alarm-", []Delivery{
		{Tag: "alarm-m1-1", ItemID: "m1", FireAt: base, Payload: []byte(`{}`)},
		{Tag: "alarm-m1-2", ItemID: "m1", FireAt: base.Add(5 * time.Minute), Payload: []byte(`{}`)},
	}))
	require.NoError(t, s.ReplacePrefix(ctx, "trigger-", []Delivery{
		{Tag: "trigger-08:00", ItemID: "m1", FireAt: base, Payload: []byte(`{}`)},
	}))

	require.NoError(t, s.ReplacePrefix(ctx, "alarm-", []Delivery{
		{Tag: "alarm-m2-3", ItemID: "m2", FireAt: base.Add(time.Hour), Payload: []byte(`{"x":1}`)},
	}))

	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "trigger-08:00", pending[0].Tag)
	assert.Equal(t, "alarm-m2-3", pending[1].Tag)
	assert.True(t, pending[1].FireAt.Equal(base.Add(time.Hour)))
	assert.JSONEq(t, `{"x":1}`, string(pending[1].Payload))
}

func TestMarkDeliveredAndRemove(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.ReplacePrefix(ctx, "alarm-", []Delivery{
		{Tag: "alarm-a", ItemID: "a", FireAt: base, Payload: []byte(`{}`)},
		{Tag: "alarm-b", ItemID: "b", FireAt: base, Payload: []byte(`{}`)},
	}))
	require.NoError(t, s.MarkDelivered(ctx, "alarm-a"))
	require.NoError(t, s.Remove(ctx, "alarm-b"))

	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPurge(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.ReplacePrefix(ctx, "alarm-", []Delivery{
		{Tag: "alarm-old", ItemID: "a", FireAt: base.Add(-48 * time.Hour), Payload: []byte(`{}`)},
		{Tag: "alarm-new", ItemID: "a", FireAt: base, Payload: []byte(`{}`)},
	}))

	n, err := s.Purge(ctx, base.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSurvivesReopen(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.ReplacePrefix(ctx, "alarm-", []Delivery{
		{Tag: "alarm-a", ItemID: "a", FireAt: time.Now(), Payload: []byte(`{}`)},
	}))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	pending, err := reopened.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
