package core

import (
	"errors"
	"testing"
	"time"

	"github.com/huangsam/peerrank/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestAppendKeepsChronologicalOrder(t *testing.T) {
	history := schema.History{Category: schema.GamesCategory}

	var err error
	for i := range 5 {
		history, err = Append(history, nil, t0.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	require.Equal(t, 5, history.Len())
	for i := 1; i < history.Len(); i++ {
		assert.True(t, history.Snapshots[i].Timestamp.After(history.Snapshots[i-1].Timestamp))
		assert.Equal(t, schema.GamesCategory, history.Snapshots[i].Category)
	}
}

func TestAppendRejectsOutOfOrder(t *testing.T) {
	history, err := Append(schema.History{Category: schema.MoviesCategory}, nil, t0)
	require.NoError(t, err)

	for _, ts := range []time.Time{t0, t0.Add(-time.Minute)} {
		got, err := Append(history, []schema.TitleGroup{{MainTitle: "X"}}, ts)
		require.Error(t, err)
		assert.True(t, errors.Is(err, schema.ErrOutOfOrderSnapshot))
		assert.Equal(t, history, got)
	}
	assert.Equal(t, 1, history.Len())
}

func TestAppendSnapshotDoesNotMutateInput(t *testing.T) {
	original := schema.History{
		Category:  schema.MoviesCategory,
		Snapshots: make([]schema.Snapshot, 1, 4),
	}
	original.Snapshots[0] = schema.Snapshot{Timestamp: t0}

	first, err := AppendSnapshot(original, schema.Snapshot{Timestamp: t0.Add(time.Hour), RunID: "a"})
	require.NoError(t, err)
	second, err := AppendSnapshot(original, schema.Snapshot{Timestamp: t0.Add(2 * time.Hour), RunID: "b"})
	require.NoError(t, err)

	assert.Equal(t, 1, original.Len())
	assert.Equal(t, "a", first.Snapshots[1].RunID)
	assert.Equal(t, "b", second.Snapshots[1].RunID)
	assert.Equal(t, schema.MoviesCategory, first.Snapshots[1].Category)
}
