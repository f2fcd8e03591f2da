package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kakao-store-bot/index"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vector, f.err
}

type fakeIndex struct {
	matches []index.Match
	err     error

	lastTopK int
}

func (f *fakeIndex) Query(ctx context.Context, vector []float32, topK int) ([]index.Match, error) {
	f.lastTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	if len(f.matches) > topK {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

func (f *fakeIndex) Fetch(ctx context.Context, id string) (*index.Match, error) {
	return nil, nil
}

func (f *fakeIndex) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]any) error {
	return nil
}

func storeMatch(id, name string, lat, lon float64) index.Match {
	return index.Match{
		ID: id,
		Metadata: map[string]any{
			"surveyId":  id,
			"name":      name,
			"latitude":  lat,
			"longitude": lon,
		},
	}
}

func TestByTextKeepsIndexOrder(t *testing.T) {
	idx := &fakeIndex{matches: []index.Match{
		{ID: "s1", Score: 0.91, Metadata: map[string]any{"name": "한식당"}},
		{ID: "s2", Score: 0.84, Metadata: map[string]any{"name": "분식집"}},
	}}

	svc := New(&fakeEmbedder{vector: []float32{0.1, 0.2}}, idx, zap.NewNop(), 2, 10)

	records := svc.ByText(context.Background(), "한식 맛집", 5)

	require.Len(t, records, 2)
	assert.Equal(t, "한식당", records[0].Name)
	assert.Equal(t, 0.91, records[0].Score)
	assert.Equal(t, "s1", records[0].ID)
	assert.Equal(t, "분식집", records[1].Name)
	assert.Equal(t, 5, idx.lastTopK)
}

func TestByTextEmbeddingFailureIsEmpty(t *testing.T) {
	svc := New(
		&fakeEmbedder{err: errors.New("quota exceeded")},
		&fakeIndex{},
		zap.NewNop(), 2, 10,
	)

	records := svc.ByText(context.Background(), "맛집", 5)
	assert.Empty(t, records)
}

func TestByTextQueryFailureIsEmpty(t *testing.T) {
	svc := New(
		&fakeEmbedder{vector: []float32{0.1}},
		&fakeIndex{err: errors.New("connection refused")},
		zap.NewNop(), 1, 10,
	)

	records := svc.ByText(context.Background(), "맛집", 5)
	assert.Empty(t, records)
}

func TestByLocationFiltersAndSorts(t *testing.T) {
	// s1 ~0.09km away, s2 ~0.9km, s3 far outside the radius, s4 has
	// no coordinates at all.
	idx := &fakeIndex{matches: []index.Match{
		storeMatch("s2", "중간집", 37.508, 127.03),
		storeMatch("s1", "가까운집", 37.5008, 127.03),
		storeMatch("s3", "먼집", 37.70, 127.03),
		{ID: "s4", Metadata: map[string]any{"name": "좌표없는집"}},
	}}

	svc := New(&fakeEmbedder{vector: []float32{0}}, idx, zap.NewNop(), 1, 100)

	records := svc.ByLocation(context.Background(), 37.50, 127.03, 5.0, 5)

	require.Len(t, records, 2)
	assert.Equal(t, "가까운집", records[0].Name)
	assert.Equal(t, "중간집", records[1].Name)

	require.NotNil(t, records[0].DistanceKm)
	require.NotNil(t, records[1].DistanceKm)
	assert.Less(t, *records[0].DistanceKm, *records[1].DistanceKm)
	assert.Equal(t, 100, idx.lastTopK)
}

func TestByLocationTruncatesToTopK(t *testing.T) {
	idx := &fakeIndex{matches: []index.Match{
		storeMatch("s1", "일번집", 37.5001, 127.03),
		storeMatch("s2", "이번집", 37.5002, 127.03),
		storeMatch("s3", "삼번집", 37.5003, 127.03),
	}}

	svc := New(&fakeEmbedder{}, idx, zap.NewNop(), 1, 100)

	records := svc.ByLocation(context.Background(), 37.50, 127.03, 5.0, 2)

	require.Len(t, records, 2)
	assert.Equal(t, "일번집", records[0].Name)
	assert.Equal(t, "이번집", records[1].Name)
}

func TestByLocationStableOnEqualDistance(t *testing.T) {
	// same coordinates: scan order breaks the tie
	idx := &fakeIndex{matches: []index.Match{
		storeMatch("s1", "먼저온집", 37.5001, 127.03),
		storeMatch("s2", "나중온집", 37.5001, 127.03),
	}}

	svc := New(&fakeEmbedder{}, idx, zap.NewNop(), 1, 100)

	records := svc.ByLocation(context.Background(), 37.50, 127.03, 5.0, 5)

	require.Len(t, records, 2)
	assert.Equal(t, "먼저온집", records[0].Name)
	assert.Equal(t, "나중온집", records[1].Name)
}

func TestByLocationScanFailureIsEmpty(t *testing.T) {
	svc := New(
		&fakeEmbedder{},
		&fakeIndex{err: errors.New("timeout")},
		zap.NewNop(), 1, 100,
	)

	records := svc.ByLocation(context.Background(), 37.50, 127.03, 5.0, 5)
	assert.Empty(t, records)
}
