package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryRanksByCosineSimilarity(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "a", []float32{1, 0}, map[string]any{"name": "a"}))
	require.NoError(t, idx.Upsert(ctx, "b", []float32{0, 1}, map[string]any{"name": "b"}))
	require.NoError(t, idx.Upsert(ctx, "c", []float32{0.9, 0.1}, map[string]any{"name": "c"}))

	matches, err := idx.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
	assert.Equal(t, "c", matches[1].ID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestQueryZeroVectorKeepsInsertionOrder(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	for _, id := range []string{"first", "second", "third"} {
		require.NoError(t, idx.Upsert(ctx, id, []float32{1, 1}, nil))
	}

	matches, err := idx.Query(ctx, []float32{0, 0}, 10)
	require.NoError(t, err)

	require.Len(t, matches, 3)
	assert.Equal(t, "first", matches[0].ID)
	assert.Equal(t, "second", matches[1].ID)
	assert.Equal(t, "third", matches[2].ID)
	assert.Zero(t, matches[0].Score)
}

func TestFetchMissingIsNil(t *testing.T) {
	idx := NewIndex()

	match, err := idx.Fetch(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestUpsertOverwritesInPlace(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "a", []float32{1, 0}, map[string]any{"name": "old"}))
	require.NoError(t, idx.Upsert(ctx, "b", []float32{1, 0}, map[string]any{"name": "b"}))
	require.NoError(t, idx.Upsert(ctx, "a", []float32{1, 0}, map[string]any{"name": "new"}))

	match, err := idx.Fetch(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "new", match.Metadata["name"])

	// overwrite keeps the original position
	matches, err := idx.Query(ctx, []float32{0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
}

func TestQueryMetadataIsCopied(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "a", []float32{1, 0}, map[string]any{"name": "a"}))

	matches, err := idx.Query(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	matches[0].Metadata["name"] = "mutated"

	match, err := idx.Fetch(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", match.Metadata["name"])
}
